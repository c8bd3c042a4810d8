package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/marketsync/internal/service/services/syncsvc"
	"github.com/spf13/viper"
)

// Worker drives the two periodic sync cycles. Each cycle runs on its own
// ticker; a cycle never overlaps itself because ticks are consumed by the
// same goroutine.
type Worker struct {
	syncService   *syncsvc.SyncService
	orderInterval time.Duration
	offerInterval time.Duration
	stopCh        chan struct{}
}

// NewWorker creates a new scheduler worker.
func NewWorker(syncService *syncsvc.SyncService) *Worker {
	orderIntervalSeconds := viper.GetInt("sync.order_interval_seconds")
	if orderIntervalSeconds == 0 {
		orderIntervalSeconds = 300
	}

	offerIntervalSeconds := viper.GetInt("sync.offer_interval_seconds")
	if offerIntervalSeconds == 0 {
		offerIntervalSeconds = 900
	}

	return &Worker{
		syncService:   syncService,
		orderInterval: time.Duration(orderIntervalSeconds) * time.Second,
		offerInterval: time.Duration(offerIntervalSeconds) * time.Second,
		stopCh:        make(chan struct{}),
	}
}

// Start begins running the sync cycles on their schedules. An order import
// runs immediately on startup so a fresh deployment catches up without
// waiting a full interval.
func (w *Worker) Start(ctx context.Context) {
	orderTicker := time.NewTicker(w.orderInterval)
	defer orderTicker.Stop()

	offerTicker := time.NewTicker(w.offerInterval)
	defer offerTicker.Stop()

	slog.Info("Scheduler started",
		"order_interval", w.orderInterval,
		"offer_interval", w.offerInterval,
	)

	w.runOrderImport(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scheduler shutting down")

			return
		case <-w.stopCh:
			slog.Info("Scheduler stopped")

			return
		case <-orderTicker.C:
			w.runOrderImport(ctx)
		case <-offerTicker.C:
			w.runOfferSync(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) runOrderImport(ctx context.Context) {
	if _, err := w.syncService.RunOrderImport(ctx); err != nil {
		slog.Error("Scheduled order import failed", "error", err)
	}
}

func (w *Worker) runOfferSync(ctx context.Context) {
	if _, err := w.syncService.RunOfferSync(ctx); err != nil {
		slog.Error("Scheduled offer sync failed", "error", err)
	}
}
