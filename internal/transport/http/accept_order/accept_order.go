package acceptorder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/services/ordersvc"
)

type service interface {
	AcceptOrder(ctx context.Context, marketplaceOrderID string) (mirakl.AcceptResult, error)
}

func AcceptOrder(w http.ResponseWriter, r *http.Request, orderID string, service service) {
	result, err := service.AcceptOrder(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, imarketorderrepo.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ordersvc.ErrNotAcceptable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
			slog.Error("Error accepting order", "marketplace_order_id", orderID, "error", err)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
