package isynclogrepo

import (
	"context"
	"time"

	"github.com/corray333/marketsync/internal/service/models/synclog"
)

// ISyncLogRepository defines the interface for the sync log.
type ISyncLogRepository interface {
	// Start appends a running entry and returns its id.
	Start(ctx context.Context, t synclog.Type) (int64, error)

	// Complete transitions a running entry to success or failed.
	Complete(ctx context.Context, id int64, status synclog.Status, processed int, errorMessage string) error

	// LastSuccess returns the completion time of the most recent successful
	// entry of the given type, or nil when none exists yet.
	LastSuccess(ctx context.Context, t synclog.Type) (*time.Time, error)

	Recent(ctx context.Context, limit int) ([]synclog.Entry, error)
}
