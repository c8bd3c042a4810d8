package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/marketsync/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/marketsync/internal/service/models/currency"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/jmoiron/sqlx"
)

var productColumns = []string{
	"id",
	"internal_sku",
	"marketplace_sku",
	"marketplace_offer_id",
	"price_cents",
	"price_currency",
	"quantity",
	"description",
	"leadtime_days",
	"active",
	"last_synced_at",
	"created_at",
	"updated_at",
}

// ProductDal represents the product mapping row.
type ProductDal struct {
	ID                 int64        `db:"id"`
	InternalSKU        string       `db:"internal_sku"`
	MarketplaceSKU     string       `db:"marketplace_sku"`
	MarketplaceOfferID string       `db:"marketplace_offer_id"`
	PriceCents         int64        `db:"price_cents"`
	PriceCurrency      string       `db:"price_currency"`
	Quantity           int          `db:"quantity"`
	Description        string       `db:"description"`
	LeadtimeDays       int          `db:"leadtime_days"`
	Active             bool         `db:"active"`
	LastSyncedAt       sql.NullTime `db:"last_synced_at"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

// ToModel converts ProductDal to the service layer model.
func (d *ProductDal) ToModel() (*product.Product, error) {
	cur, err := currency.ParseCurrency(d.PriceCurrency)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:                 d.ID,
		InternalSKU:        d.InternalSKU,
		MarketplaceSKU:     d.MarketplaceSKU,
		MarketplaceOfferID: d.MarketplaceOfferID,
		PriceCents:         d.PriceCents,
		PriceCurrency:      cur,
		Quantity:           d.Quantity,
		Description:        d.Description,
		LeadtimeDays:       d.LeadtimeDays,
		Active:             d.Active,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.LastSyncedAt.Valid {
		at := d.LastSyncedAt.Time
		p.LastSyncedAt = &at
	}

	return p, nil
}

type PostgresProductRepository struct {
	conn sqlx.ExtContext
}

func NewPostgresProductRepository(conn sqlx.ExtContext) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// Insert adds a new product mapping and returns it with its id.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	now := time.Now()

	query, args, err := sq.Insert("products").
		Columns(
			"internal_sku",
			"marketplace_sku",
			"marketplace_offer_id",
			"price_cents",
			"price_currency",
			"quantity",
			"description",
			"leadtime_days",
			"active",
			"created_at",
			"updated_at",
		).
		Values(
			p.InternalSKU,
			p.MarketplaceSKU,
			p.MarketplaceOfferID,
			p.PriceCents,
			p.PriceCurrency,
			p.Quantity,
			p.Description,
			p.LeadtimeDays,
			p.Active,
			now,
			now,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRowxContext(ctx, query, args...).Scan(&p.ID); err != nil {
		return product.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now

	return p, nil
}

// Update overwrites a product mapping.
func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) error {
	query, args, err := sq.Update("products").
		Set("internal_sku", p.InternalSKU).
		Set("marketplace_sku", p.MarketplaceSKU).
		Set("marketplace_offer_id", p.MarketplaceOfferID).
		Set("price_cents", p.PriceCents).
		Set("price_currency", p.PriceCurrency).
		Set("quantity", p.Quantity).
		Set("description", p.Description).
		Set("leadtime_days", p.LeadtimeDays).
		Set("active", p.Active).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": p.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return iproductrepo.ErrNotFound
	}

	return nil
}

// Delete removes a product mapping.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// GetByID retrieves one product mapping.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (product.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal ProductDal
	if err := r.conn.QueryRowxContext(ctx, query, args...).StructScan(&dal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product.Product{}, iproductrepo.ErrNotFound
		}

		return product.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to convert product dal to model: %w", err)
	}

	return *model, nil
}

// List retrieves every product mapping.
func (r *PostgresProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return r.list(ctx, sq.Select(productColumns...).From("products").OrderBy("id"))
}

// ListEligible retrieves the active mappings the offer sync pushes.
func (r *PostgresProductRepository) ListEligible(ctx context.Context) ([]product.Product, error) {
	builder := sq.Select(productColumns...).
		From("products").
		Where(sq.Eq{"active": true}).
		Where(sq.NotEq{"marketplace_sku": ""}).
		OrderBy("id")

	return r.list(ctx, builder)
}

func (r *PostgresProductRepository) list(ctx context.Context, builder sq.SelectBuilder) ([]product.Product, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		if err := rows.StructScan(&dal); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert product dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// MarkSynced stamps the given mappings with the time of a successful push.
func (r *PostgresProductRepository) MarkSynced(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sq.Update("products").
		Set("last_synced_at", at).
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark products synced: %w", err)
	}

	return nil
}
