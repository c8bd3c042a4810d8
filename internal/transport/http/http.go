package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/corray333/marketsync/internal/service/models/synclog"
	"github.com/corray333/marketsync/internal/service/services/syncsvc"
	acceptorder "github.com/corray333/marketsync/internal/transport/http/accept_order"
	listorders "github.com/corray333/marketsync/internal/transport/http/list_orders"
	"github.com/corray333/marketsync/internal/transport/http/products"
	shiporder "github.com/corray333/marketsync/internal/transport/http/ship_order"
	syncstatus "github.com/corray333/marketsync/internal/transport/http/sync_status"
	synctrigger "github.com/corray333/marketsync/internal/transport/http/sync_trigger"
	"github.com/corray333/marketsync/pkg/http/middleware/trace"
	"github.com/corray333/marketsync/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type orderService interface {
	GetOrders(ctx context.Context, filter *marketorder.QueryOrdersModel) ([]marketorder.MarketOrder, error)
	AcceptOrder(ctx context.Context, marketplaceOrderID string) (mirakl.AcceptResult, error)
	ShipOrder(ctx context.Context, marketplaceOrderID, trackingNumber, carrierCode string) (mirakl.ShipmentResult, error)
}

type mappingService interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	LookupOffer(ctx context.Context, id int64) (*mirakl.Offer, error)
	PushInventory(ctx context.Context, id int64) (mirakl.SyncResult, error)
}

type syncService interface {
	RunOrderImport(ctx context.Context) (syncsvc.Result, error)
	RunOfferSync(ctx context.Context) (syncsvc.Result, error)
	Status(ctx context.Context, limit int) ([]synclog.Entry, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	mappings mappingService
	sync     syncService
}

func NewHTTPTransport(orders orderService, mappings mappingService, sync syncService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		orders:   orders,
		mappings: mappings,
		sync:     sync,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/{orderID}/accept", h.acceptOrder)
			r.Post("/{orderID}/ship", h.shipOrder)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{productID}", h.getProduct)
			r.Put("/{productID}", h.updateProduct)
			r.Delete("/{productID}", h.deleteProduct)
			r.Get("/{productID}/offer", h.lookupOffer)
			r.Post("/{productID}/inventory", h.pushInventory)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/orders", h.triggerOrderImport)
			r.Post("/offers", h.triggerOfferSync)
			r.Get("/status", h.syncStatus)
		})
	})
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) acceptOrder(w http.ResponseWriter, r *http.Request) {
	acceptorder.AcceptOrder(w, r, chi.URLParam(r, "orderID"), h.orders)
}

func (h *HTTPTransport) shipOrder(w http.ResponseWriter, r *http.Request) {
	shiporder.ShipOrder(w, r, chi.URLParam(r, "orderID"), h.orders)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	products.List(w, r, h.mappings)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	products.Create(w, r, h.mappings)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	products.Get(w, r, chi.URLParam(r, "productID"), h.mappings)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	products.Update(w, r, chi.URLParam(r, "productID"), h.mappings)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	products.Delete(w, r, chi.URLParam(r, "productID"), h.mappings)
}

func (h *HTTPTransport) lookupOffer(w http.ResponseWriter, r *http.Request) {
	products.LookupOffer(w, r, chi.URLParam(r, "productID"), h.mappings)
}

func (h *HTTPTransport) pushInventory(w http.ResponseWriter, r *http.Request) {
	products.PushInventory(w, r, chi.URLParam(r, "productID"), h.mappings)
}

func (h *HTTPTransport) triggerOrderImport(w http.ResponseWriter, r *http.Request) {
	synctrigger.TriggerOrderImport(w, r, h.sync)
}

func (h *HTTPTransport) triggerOfferSync(w http.ResponseWriter, r *http.Request) {
	synctrigger.TriggerOfferSync(w, r, h.sync)
}

func (h *HTTPTransport) syncStatus(w http.ResponseWriter, r *http.Request) {
	syncstatus.SyncStatus(w, r, h.sync)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
