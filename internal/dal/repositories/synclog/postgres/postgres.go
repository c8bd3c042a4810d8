package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/marketsync/internal/service/models/synclog"
	"github.com/jmoiron/sqlx"
)

// SyncLogDal represents the sync log row.
type SyncLogDal struct {
	ID               int64        `db:"id"`
	SyncType         string       `db:"sync_type"`
	Status           string       `db:"status"`
	StartedAt        time.Time    `db:"started_at"`
	CompletedAt      sql.NullTime `db:"completed_at"`
	RecordsProcessed int          `db:"records_processed"`
	ErrorMessage     string       `db:"error_message"`
}

// ToModel converts SyncLogDal to the service layer model.
func (d *SyncLogDal) ToModel() synclog.Entry {
	e := synclog.Entry{
		ID:               d.ID,
		Type:             synclog.Type(d.SyncType),
		Status:           synclog.Status(d.Status),
		StartedAt:        d.StartedAt,
		RecordsProcessed: d.RecordsProcessed,
		ErrorMessage:     d.ErrorMessage,
	}
	if d.CompletedAt.Valid {
		at := d.CompletedAt.Time
		e.CompletedAt = &at
	}

	return e
}

type PostgresSyncLogRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresSyncLogRepository(conn sqlx.ExtContext) *PostgresSyncLogRepository {
	return &PostgresSyncLogRepository{
		conn: conn,
	}
}

// Start appends a running entry and returns its id.
func (r *PostgresSyncLogRepository) Start(ctx context.Context, t synclog.Type) (int64, error) {
	query, args, err := sq.Insert("sync_log").
		Columns("sync_type", "status", "started_at", "records_processed", "error_message").
		Values(t, synclog.StatusRunning, time.Now(), 0, "").
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert sync log entry: %w", err)
	}

	return id, nil
}

// Complete transitions a running entry to its terminal status. This is the
// single status transition an entry ever makes.
func (r *PostgresSyncLogRepository) Complete(
	ctx context.Context,
	id int64,
	status synclog.Status,
	processed int,
	errorMessage string,
) error {
	query, args, err := sq.Update("sync_log").
		Set("status", status).
		Set("completed_at", time.Now()).
		Set("records_processed", processed).
		Set("error_message", errorMessage).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to complete sync log entry: %w", err)
	}

	return nil
}

// LastSuccess returns the watermark: the completion time of the most recent
// successful entry of the given type, or nil on first run.
func (r *PostgresSyncLogRepository) LastSuccess(ctx context.Context, t synclog.Type) (*time.Time, error) {
	query, args, err := sq.Select("completed_at").
		From("sync_log").
		Where(sq.Eq{"sync_type": t}).
		Where(sq.Eq{"status": synclog.StatusSuccess}).
		OrderBy("completed_at DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var completedAt time.Time
	if err := r.conn.QueryRowxContext(ctx, query, args...).Scan(&completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query last successful sync: %w", err)
	}

	return &completedAt, nil
}

// Recent retrieves the latest entries, newest first.
func (r *PostgresSyncLogRepository) Recent(ctx context.Context, limit int) ([]synclog.Entry, error) {
	query, args, err := sq.Select(
		"id",
		"sync_type",
		"status",
		"started_at",
		"completed_at",
		"records_processed",
		"error_message",
	).
		From("sync_log").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync log: %w", err)
	}
	defer rows.Close()

	var result []synclog.Entry
	for rows.Next() {
		var dal SyncLogDal
		if err := rows.StructScan(&dal); err != nil {
			return nil, fmt.Errorf("failed to scan sync log entry: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
