package products

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/marketsync/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/corray333/marketsync/internal/service/services/mappingsvc"
)

type service interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	LookupOffer(ctx context.Context, id int64) (*mirakl.Offer, error)
	PushInventory(ctx context.Context, id int64) (mirakl.SyncResult, error)
}

func List(w http.ResponseWriter, r *http.Request, service service) {
	list, err := service.ListProducts(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error listing products", "error", err)

		return
	}

	respond(w, list)
}

func Create(w http.ResponseWriter, r *http.Request, service service) {
	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	created, err := service.CreateProduct(r.Context(), p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error creating product", "error", err)

		return
	}

	w.WriteHeader(http.StatusCreated)
	respond(w, created)
}

func Get(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, ok := parseID(w, rawID)
	if !ok {
		return
	}

	p, err := service.GetProduct(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)

		return
	}

	respond(w, p)
}

func Update(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, ok := parseID(w, rawID)
	if !ok {
		return
	}

	var p product.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}
	p.ID = id

	if err := service.UpdateProduct(r.Context(), p); err != nil {
		writeRepoError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func Delete(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, ok := parseID(w, rawID)
	if !ok {
		return
	}

	if err := service.DeleteProduct(r.Context(), id); err != nil {
		writeRepoError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func LookupOffer(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, ok := parseID(w, rawID)
	if !ok {
		return
	}

	offer, err := service.LookupOffer(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)

		return
	}

	if offer == nil {
		http.Error(w, "no live offer for this product", http.StatusNotFound)

		return
	}

	respond(w, offer)
}

func PushInventory(w http.ResponseWriter, r *http.Request, rawID string, service service) {
	id, ok := parseID(w, rawID)
	if !ok {
		return
	}

	result, err := service.PushInventory(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, iproductrepo.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, mappingsvc.ErrNoOffer):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
			slog.Error("Error pushing inventory", "product_id", id, "error", err)
		}

		return
	}

	respond(w, result)
}

func parseID(w http.ResponseWriter, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, iproductrepo.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	http.Error(w, err.Error(), http.StatusInternalServerError)
	slog.Error("Product mapping operation failed", "error", err)
}

func respond(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
