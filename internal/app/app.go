package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/marketsync/internal/dal/postgres"
	"github.com/corray333/marketsync/internal/dal/rabbitmq"
	marketorderrepo "github.com/corray333/marketsync/internal/dal/repositories/marketorder/postgres"
	outboxrepo "github.com/corray333/marketsync/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/corray333/marketsync/internal/dal/repositories/product/postgres"
	synclogrepo "github.com/corray333/marketsync/internal/dal/repositories/synclog/postgres"
	"github.com/corray333/marketsync/internal/jaeger"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/services/mappingsvc"
	"github.com/corray333/marketsync/internal/service/services/ordersvc"
	"github.com/corray333/marketsync/internal/service/services/syncsvc"
	httptransport "github.com/corray333/marketsync/internal/transport/http"
	outboxworker "github.com/corray333/marketsync/internal/worker/outbox"
	"github.com/corray333/marketsync/internal/worker/scheduler"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	scheduler      *scheduler.Worker
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracerProvider := setupTracing()

	postgresClient := postgres.MustNewClient()

	rabbitClient := rabbitmq.MustNewClient()
	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		exchange = "marketsync.events"
	}
	if err := rabbitClient.DeclareExchange(exchange); err != nil {
		panic("failed to declare exchange: " + err.Error())
	}

	miraklClient := mirakl.NewClient(mirakl.Config{
		BaseURL:        viper.GetString("mirakl.base_url"),
		APIKey:         os.Getenv("MIRAKL_API_KEY"),
		ShopID:         viper.GetString("mirakl.shop_id"),
		Timeout:        viper.GetDuration("mirakl.timeout"),
		MaxAttempts:    viper.GetInt("mirakl.max_attempts"),
		BaseRetryDelay: viper.GetDuration("mirakl.base_retry_delay"),
		PageDelay:      viper.GetDuration("mirakl.page_delay"),
	})

	orderRepo := marketorderrepo.NewPostgresMarketOrderRepository(postgresClient.DB())
	productRepo := productrepo.NewPostgresProductRepository(postgresClient.DB())
	syncLogRepo := synclogrepo.NewPostgresSyncLogRepository(postgresClient.DB())
	outboxRepo := outboxrepo.NewOutboxRepository(postgresClient.DB())

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithMarketOrderRepository(orderRepo),
		ordersvc.WithMarketplaceClient(miraklClient),
	)

	mappingSvc := mappingsvc.MustNewMappingService(
		mappingsvc.WithProductRepository(productRepo),
		mappingsvc.WithMarketplaceClient(miraklClient),
	)

	syncSvc := syncsvc.MustNewSyncService(
		syncsvc.WithPostgresClient(postgresClient),
		syncsvc.WithMarketplaceClient(miraklClient),
		syncsvc.WithSyncLogRepository(syncLogRepo),
		syncsvc.WithProductRepository(productRepo),
		syncsvc.WithEventExchange(exchange),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, mappingSvc, syncSvc)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		scheduler:      scheduler.NewWorker(syncSvc),
		outboxWorker:   outboxworker.NewWorker(outboxRepo, rabbitClient),
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		tracerProvider: tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())

	go a.scheduler.Start(workerCtx)
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.postgresClient.Close(); err != nil {
		slog.Error("Database connection close error", "error", err)
	} else {
		slog.Info("Database connection closed gracefully")
	}

	slog.Info("Application shutdown complete")
}

func setupTracing() *sdktrace.TracerProvider {
	exporter := jaeger.MustNewJaeger()

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("marketsync"),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp
}
