package imarketorderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/corray333/marketsync/internal/service/models/marketorder"
)

// ErrNotFound is returned when no order exists for the given marketplace id.
var ErrNotFound = errors.New("market order not found")

// IMarketOrderRepository defines the interface for market order storage.
type IMarketOrderRepository interface {
	// Upsert inserts the order or, when the marketplace order id already
	// exists, updates state, customer, address, lines and price in place.
	// AcceptedAt and ShippedAt are never touched by the upsert. The bool
	// reports whether a new row was inserted.
	Upsert(ctx context.Context, order marketorder.MarketOrder) (marketorder.MarketOrder, bool, error)

	Query(ctx context.Context, filter *marketorder.QueryOrdersModel) ([]marketorder.MarketOrder, error)

	GetByMarketplaceID(ctx context.Context, marketplaceOrderID string) (marketorder.MarketOrder, error)

	// MarkAccepted records the local acceptance time and moves the order to
	// the shipping state.
	MarkAccepted(ctx context.Context, marketplaceOrderID string, at time.Time) error

	// MarkShipped records the local shipment time and moves the order to the
	// shipped state.
	MarkShipped(ctx context.Context, marketplaceOrderID string, at time.Time) error
}
