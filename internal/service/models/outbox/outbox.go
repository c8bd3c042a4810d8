package outbox

import (
	"time"
)

// Routing keys for order lifecycle events published by the sync jobs.
const (
	RoutingKeyOrderImported = "order.imported"
	RoutingKeyOrderUpdated  = "order.updated"
)

const defaultMaxRetries = 5

// OutboxMessage represents an event waiting to be published to RabbitMQ.
// Rows are written in the same transaction as the state change they
// describe; the outbox worker drains them.
type OutboxMessage struct {
	ID           int64
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// NewOrderEventMessage builds an outbox message for an order lifecycle event.
func NewOrderEventMessage(exchange, routingKey string, payload []byte) OutboxMessage {
	now := time.Now()

	return OutboxMessage{
		ExchangeName: exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   defaultMaxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}
}
