package syncsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/marketsync/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/marketsync/internal/dal/interfaces/isynclogrepo"
	"github.com/corray333/marketsync/internal/dal/postgres"
	"github.com/corray333/marketsync/internal/dal/uow"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/corray333/marketsync/internal/service/models/outbox"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/corray333/marketsync/internal/service/models/synclog"
)

// marketplace is the part of the marketplace client the sync jobs consume.
type marketplace interface {
	FetchOrders(ctx context.Context, since *time.Time) ([]marketorder.MarketOrder, error)
	SyncOffers(ctx context.Context, products []product.Product) (mirakl.SyncResult, error)
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	MarketOrderRepository() imarketorderrepo.IMarketOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Result summarizes one sync cycle.
type Result struct {
	Type        synclog.Type `json:"syncType"`
	Processed   int          `json:"processed"`
	Failed      int          `json:"failed"`
	StartedAt   time.Time    `json:"startedAt"`
	CompletedAt time.Time    `json:"completedAt"`
}

// SyncService runs the incremental order import and the offer sync cycles.
type SyncService struct {
	pgClient      *postgres.Client
	client        marketplace
	syncLogRepo   isynclogrepo.ISyncLogRepository
	productRepo   iproductrepo.IProductRepository
	newUOW        func() unitOfWork
	eventExchange string
}

// option is a function that configures the SyncService.
type option func(*SyncService)

// MustNewSyncService creates a new SyncService.
func MustNewSyncService(opts ...option) *SyncService {
	s := &SyncService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the SyncService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *SyncService) {
		s.pgClient = pgClient
	}
}

// WithMarketplaceClient sets the marketplace client for the SyncService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarketplaceClient(client marketplace) option {
	return func(s *SyncService) {
		s.client = client
	}
}

// WithSyncLogRepository sets the sync log repository for the SyncService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSyncLogRepository(repo isynclogrepo.ISyncLogRepository) option {
	return func(s *SyncService) {
		s.syncLogRepo = repo
	}
}

// WithProductRepository sets the product repository for the SyncService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *SyncService) {
		s.productRepo = repo
	}
}

// WithUnitOfWorkFactory overrides how transactions are opened.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *SyncService) {
		s.newUOW = factory
	}
}

// WithEventExchange sets the exchange order events are routed to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventExchange(exchange string) option {
	return func(s *SyncService) {
		s.eventExchange = exchange
	}
}

// orderEvent is the payload published for every ingested order.
type orderEvent struct {
	MarketplaceOrderID string    `json:"marketplaceOrderId"`
	State              string    `json:"state"`
	TotalPriceCents    int64     `json:"totalPriceCents"`
	OccurredAt         time.Time `json:"occurredAt"`
}

// RunOrderImport performs one incremental pull-and-persist cycle. Orders are
// upserted independently: one bad order is logged and skipped, the cycle
// goes on. A fetch-level failure aborts the cycle and marks the sync log
// entry failed.
func (s *SyncService) RunOrderImport(ctx context.Context) (Result, error) {
	result := Result{Type: synclog.TypeOrders, StartedAt: time.Now()}

	entryID, err := s.syncLogRepo.Start(ctx, synclog.TypeOrders)
	if err != nil {
		return result, fmt.Errorf("start sync log entry: %w", err)
	}

	since, err := s.syncLogRepo.LastSuccess(ctx, synclog.TypeOrders)
	if err != nil {
		return s.fail(ctx, entryID, result, fmt.Errorf("read watermark: %w", err))
	}

	orders, err := s.client.FetchOrders(ctx, since)
	if err != nil {
		return s.fail(ctx, entryID, result, fmt.Errorf("fetch orders: %w", err))
	}

	for _, o := range orders {
		if err := s.importOrder(ctx, o); err != nil {
			slog.Error("Failed to import marketplace order",
				"marketplace_order_id", o.MarketplaceOrderID,
				"error", err,
			)
			result.Failed++

			continue
		}
		result.Processed++
	}

	if err := s.syncLogRepo.Complete(ctx, entryID, synclog.StatusSuccess, result.Processed, ""); err != nil {
		return result, fmt.Errorf("complete sync log entry: %w", err)
	}

	result.CompletedAt = time.Now()
	slog.Info("Order import finished",
		"processed", result.Processed,
		"failed", result.Failed,
		"duration", result.CompletedAt.Sub(result.StartedAt).String(),
	)

	return result, nil
}

// importOrder upserts one order and queues its event in the same
// transaction.
func (s *SyncService) importOrder(ctx context.Context, o marketorder.MarketOrder) error {
	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return err
	}

	saved, inserted, err := work.MarketOrderRepository().Upsert(ctx, o)
	if err != nil {
		_ = work.Rollback()

		return err
	}

	payload, err := json.Marshal(orderEvent{
		MarketplaceOrderID: saved.MarketplaceOrderID,
		State:              saved.State.String(),
		TotalPriceCents:    saved.TotalPriceCents,
		OccurredAt:         time.Now(),
	})
	if err != nil {
		_ = work.Rollback()

		return fmt.Errorf("marshal order event: %w", err)
	}

	routingKey := outbox.RoutingKeyOrderUpdated
	if inserted {
		routingKey = outbox.RoutingKeyOrderImported
	}

	msg := outbox.NewOrderEventMessage(s.eventExchange, routingKey, payload)
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		_ = work.Rollback()

		return err
	}

	return work.Commit()
}

// RunOfferSync pushes a snapshot of every eligible product mapping as one
// offer batch.
func (s *SyncService) RunOfferSync(ctx context.Context) (Result, error) {
	result := Result{Type: synclog.TypeOffers, StartedAt: time.Now()}

	entryID, err := s.syncLogRepo.Start(ctx, synclog.TypeOffers)
	if err != nil {
		return result, fmt.Errorf("start sync log entry: %w", err)
	}

	products, err := s.productRepo.ListEligible(ctx)
	if err != nil {
		return s.fail(ctx, entryID, result, fmt.Errorf("load eligible products: %w", err))
	}

	if len(products) > 0 {
		syncResult, err := s.client.SyncOffers(ctx, products)
		if err != nil {
			return s.fail(ctx, entryID, result, err)
		}

		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		if err := s.productRepo.MarkSynced(ctx, ids, time.Now()); err != nil {
			slog.Error("Failed to stamp products after offer sync", "error", err)
		}

		result.Processed = len(products)
		slog.Info("Offer sync accepted by marketplace",
			"offers", len(products),
			"import_id", syncResult.ImportID,
		)
	}

	if err := s.syncLogRepo.Complete(ctx, entryID, synclog.StatusSuccess, result.Processed, ""); err != nil {
		return result, fmt.Errorf("complete sync log entry: %w", err)
	}

	result.CompletedAt = time.Now()

	return result, nil
}

// Status returns the most recent sync log entries, newest first.
func (s *SyncService) Status(ctx context.Context, limit int) ([]synclog.Entry, error) {
	return s.syncLogRepo.Recent(ctx, limit)
}

func (s *SyncService) fail(ctx context.Context, entryID int64, result Result, err error) (Result, error) {
	slog.Error("Sync cycle failed", "sync_type", result.Type, "error", err)

	if cerr := s.syncLogRepo.Complete(ctx, entryID, synclog.StatusFailed, result.Processed, err.Error()); cerr != nil {
		slog.Error("Failed to mark sync log entry failed", "sync_log_id", entryID, "error", cerr)
	}

	result.CompletedAt = time.Now()

	return result, err
}
