package synclog

import (
	"database/sql/driver"
	"time"
)

// Type names the kind of synchronization a log entry belongs to.
type Type string

const (
	TypeOffers Type = "offers"
	TypeOrders Type = "orders"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) Value() (driver.Value, error) {
	return t.String(), nil
}

// Status is the lifecycle of one sync run. An entry is appended as running
// and transitions exactly once to success or failed.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Entry is one sync job invocation. The completion time of the most recent
// successful orders entry is the watermark for the next incremental pull.
type Entry struct {
	ID               int64      `json:"id"`
	Type             Type       `json:"syncType"`
	Status           Status     `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	RecordsProcessed int        `json:"recordsProcessed"`
	ErrorMessage     string     `json:"errorMessage,omitempty"`
}
