package uow

import (
	"context"

	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/marketsync/internal/dal/postgres"
	marketorderrepo "github.com/corray333/marketsync/internal/dal/repositories/marketorder/postgres"
	outboxrepo "github.com/corray333/marketsync/internal/dal/repositories/outbox/postgres"

	"github.com/jmoiron/sqlx"
)

// unitOfWork scopes the market order and outbox repositories to one
// transaction, so an ingested order and its event row commit atomically.
type unitOfWork struct {
	db         *sqlx.DB
	tx         *sqlx.Tx
	orderRepo  imarketorderrepo.IMarketOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

func (u *unitOfWork) MarketOrderRepository() imarketorderrepo.IMarketOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func NewUnitOfWork(db *postgres.Client) *unitOfWork {
	return &unitOfWork{
		db:         db.DB(),
		orderRepo:  marketorderrepo.NewPostgresMarketOrderRepository(db.DB()),
		outboxRepo: outboxrepo.NewOutboxRepository(db.DB()),
	}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = marketorderrepo.NewPostgresMarketOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit()
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback()
}
