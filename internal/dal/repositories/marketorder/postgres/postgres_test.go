package postgresrepo

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/service/models/currency"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PostgresMarketOrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")

	return NewPostgresMarketOrderRepository(db), mock
}

func sampleOrder() marketorder.MarketOrder {
	return marketorder.MarketOrder{
		MarketplaceOrderID: "ORD-1",
		State:              marketorder.StateWaitingAcceptance,
		CustomerName:       "Jane Doe",
		ShippingAddress:    json.RawMessage(`{"city":"Toronto"}`),
		OrderLines: []marketorder.OrderLine{
			{LineID: "L1", SKU: "SKU-1", Quantity: 2, PriceCents: 999},
		},
		TotalPriceCents:    1998,
		TotalPriceCurrency: currency.CurrencyCAD,
		CreatedAt:          time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsertReportsInsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO market_orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(int64(7), true))

	saved, inserted, err := repo.Upsert(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, int64(7), saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReportsUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO market_orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(int64(7), false))

	_, inserted, err := repo.Upsert(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPreservesLifecycleColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	// The upsert must never write accepted_at or shipped_at; they belong to
	// local lifecycle actions only.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO market_orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow(int64(1), true))

	now := time.Now()
	order := sampleOrder()
	order.AcceptedAt = &now
	order.ShippedAt = &now

	_, _, err := repo.Upsert(context.Background(), order)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByMarketplaceIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WillReturnRows(sqlmock.NewRows(orderColumns))

	_, err := repo.GetByMarketplaceID(context.Background(), "ORD-MISSING")
	require.ErrorIs(t, err, imarketorderrepo.ErrNotFound)
}

func TestGetByMarketplaceID(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(orderColumns).AddRow(
		int64(7),
		"ORD-1",
		"SHIPPING",
		"Jane Doe",
		[]byte(`{"city":"Toronto"}`),
		[]byte(`[{"lineId":"L1","sku":"SKU-1","quantity":2,"priceCents":999}]`),
		int64(1998),
		"CAD",
		created,
		created.Add(time.Hour),
		nil,
		created.Add(time.Hour),
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnRows(rows)

	got, err := repo.GetByMarketplaceID(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, marketorder.StateShipping, got.State)
	require.Equal(t, int64(1998), got.TotalPriceCents)
	require.NotNil(t, got.AcceptedAt)
	require.Nil(t, got.ShippedAt)
	require.Len(t, got.OrderLines, 1)
	require.Equal(t, "SKU-1", got.OrderLines[0].SKU)
}

func TestMarkAccepted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE market_orders SET accepted_at")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkAccepted(context.Background(), "ORD-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkShippedNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE market_orders SET shipped_at")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkShipped(context.Background(), "ORD-MISSING", time.Now())
	require.ErrorIs(t, err, imarketorderrepo.ErrNotFound)
}
