package postgresrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/service/models/currency"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/jmoiron/sqlx"
)

var orderColumns = []string{
	"id",
	"marketplace_order_id",
	"order_state",
	"customer_name",
	"shipping_address",
	"order_lines",
	"total_price_cents",
	"total_price_currency",
	"created_at",
	"accepted_at",
	"shipped_at",
	"updated_at",
}

// MarketOrderDal represents the market order row.
type MarketOrderDal struct {
	ID                 int64        `db:"id"`
	MarketplaceOrderID string       `db:"marketplace_order_id"`
	OrderState         string       `db:"order_state"`
	CustomerName       string       `db:"customer_name"`
	ShippingAddress    []byte       `db:"shipping_address"`
	OrderLines         []byte       `db:"order_lines"`
	TotalPriceCents    int64        `db:"total_price_cents"`
	TotalPriceCurrency string       `db:"total_price_currency"`
	CreatedAt          time.Time    `db:"created_at"`
	AcceptedAt         sql.NullTime `db:"accepted_at"`
	ShippedAt          sql.NullTime `db:"shipped_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

// ToModel converts MarketOrderDal to the service layer model.
func (d *MarketOrderDal) ToModel() (*marketorder.MarketOrder, error) {
	state, err := marketorder.ParseState(d.OrderState)
	if err != nil {
		return nil, err
	}

	cur, err := currency.ParseCurrency(d.TotalPriceCurrency)
	if err != nil {
		return nil, err
	}

	var lines []marketorder.OrderLine
	if len(d.OrderLines) > 0 {
		if err := json.Unmarshal(d.OrderLines, &lines); err != nil {
			return nil, fmt.Errorf("unmarshal order lines: %w", err)
		}
	}

	m := &marketorder.MarketOrder{
		ID:                 d.ID,
		MarketplaceOrderID: d.MarketplaceOrderID,
		State:              state,
		CustomerName:       d.CustomerName,
		ShippingAddress:    d.ShippingAddress,
		OrderLines:         lines,
		TotalPriceCents:    d.TotalPriceCents,
		TotalPriceCurrency: cur,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.AcceptedAt.Valid {
		at := d.AcceptedAt.Time
		m.AcceptedAt = &at
	}
	if d.ShippedAt.Valid {
		at := d.ShippedAt.Time
		m.ShippedAt = &at
	}

	return m, nil
}

type PostgresMarketOrderRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresMarketOrderRepository(conn sqlx.ExtContext) *PostgresMarketOrderRepository {
	return &PostgresMarketOrderRepository{
		conn: conn,
	}
}

// Upsert inserts the order or updates the existing row keyed by the
// marketplace order id. Only remote-origin columns are overwritten;
// accepted_at and shipped_at belong to local actions and survive re-fetch.
func (r *PostgresMarketOrderRepository) Upsert(
	ctx context.Context,
	order marketorder.MarketOrder,
) (marketorder.MarketOrder, bool, error) {
	lines, err := json.Marshal(order.OrderLines)
	if err != nil {
		return marketorder.MarketOrder{}, false, fmt.Errorf("marshal order lines: %w", err)
	}

	now := time.Now()

	query, args, err := sq.Insert("market_orders").
		Columns(
			"marketplace_order_id",
			"order_state",
			"customer_name",
			"shipping_address",
			"order_lines",
			"total_price_cents",
			"total_price_currency",
			"created_at",
			"updated_at",
		).
		Values(
			order.MarketplaceOrderID,
			order.State,
			order.CustomerName,
			[]byte(order.ShippingAddress),
			lines,
			order.TotalPriceCents,
			order.TotalPriceCurrency,
			order.CreatedAt,
			now,
		).
		Suffix(`ON CONFLICT (marketplace_order_id) DO UPDATE SET
			order_state = EXCLUDED.order_state,
			customer_name = EXCLUDED.customer_name,
			shipping_address = EXCLUDED.shipping_address,
			order_lines = EXCLUDED.order_lines,
			total_price_cents = EXCLUDED.total_price_cents,
			total_price_currency = EXCLUDED.total_price_currency,
			updated_at = EXCLUDED.updated_at
			RETURNING id, (xmax = 0) AS inserted`).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return marketorder.MarketOrder{}, false, fmt.Errorf("failed to build upsert query: %w", err)
	}

	var (
		id       int64
		inserted bool
	)
	if err := r.conn.QueryRowxContext(ctx, query, args...).Scan(&id, &inserted); err != nil {
		return marketorder.MarketOrder{}, false, fmt.Errorf("failed to upsert market order: %w", err)
	}

	order.ID = id
	order.UpdatedAt = now

	return order, inserted, nil
}

// Query retrieves market orders based on filter criteria.
func (r *PostgresMarketOrderRepository) Query(
	ctx context.Context,
	filter *marketorder.QueryOrdersModel,
) ([]marketorder.MarketOrder, error) {
	builder := sq.Select(orderColumns...).
		From("market_orders").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.MarketplaceOrderIDs) > 0 {
		builder = builder.Where(sq.Eq{"marketplace_order_id": filter.MarketplaceOrderIDs})
	}
	if len(filter.States) > 0 {
		states := make([]string, 0, len(filter.States))
		for _, s := range filter.States {
			states = append(states, s.String())
		}
		builder = builder.Where(sq.Eq{"order_state": states})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query market orders: %w", err)
	}
	defer rows.Close()

	var result []marketorder.MarketOrder
	for rows.Next() {
		var dal MarketOrderDal
		if err := rows.StructScan(&dal); err != nil {
			return nil, fmt.Errorf("failed to scan market order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert market order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByMarketplaceID retrieves one order by its natural key.
func (r *PostgresMarketOrderRepository) GetByMarketplaceID(
	ctx context.Context,
	marketplaceOrderID string,
) (marketorder.MarketOrder, error) {
	query, args, err := sq.Select(orderColumns...).
		From("market_orders").
		Where(sq.Eq{"marketplace_order_id": marketplaceOrderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return marketorder.MarketOrder{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal MarketOrderDal
	if err := r.conn.QueryRowxContext(ctx, query, args...).StructScan(&dal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return marketorder.MarketOrder{}, imarketorderrepo.ErrNotFound
		}

		return marketorder.MarketOrder{}, fmt.Errorf("failed to get market order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return marketorder.MarketOrder{}, fmt.Errorf("failed to convert market order dal to model: %w", err)
	}

	return *model, nil
}

// MarkAccepted records the local acceptance and moves the order to SHIPPING.
func (r *PostgresMarketOrderRepository) MarkAccepted(
	ctx context.Context,
	marketplaceOrderID string,
	at time.Time,
) error {
	return r.markLifecycle(ctx, marketplaceOrderID, "accepted_at", at, marketorder.StateShipping)
}

// MarkShipped records the local shipment and moves the order to SHIPPED.
func (r *PostgresMarketOrderRepository) MarkShipped(
	ctx context.Context,
	marketplaceOrderID string,
	at time.Time,
) error {
	return r.markLifecycle(ctx, marketplaceOrderID, "shipped_at", at, marketorder.StateShipped)
}

func (r *PostgresMarketOrderRepository) markLifecycle(
	ctx context.Context,
	marketplaceOrderID string,
	column string,
	at time.Time,
	state marketorder.State,
) error {
	query, args, err := sq.Update("market_orders").
		Set(column, at).
		Set("order_state", state).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"marketplace_order_id": marketplaceOrderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update market order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return imarketorderrepo.ErrNotFound
	}

	return nil
}
