package shiporder

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
	ShipOrder(ctx context.Context, marketplaceOrderID, trackingNumber, carrierCode string) (mirakl.ShipmentResult, error)
}

type shipOrderRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"carrierCode"`
}

func ShipOrder(w http.ResponseWriter, r *http.Request, orderID string, service service) {
	var req shipOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	if req.TrackingNumber == "" || req.CarrierCode == "" {
		http.Error(w, "trackingNumber and carrierCode are required", http.StatusBadRequest)

		return
	}

	result, err := service.ShipOrder(r.Context(), orderID, req.TrackingNumber, req.CarrierCode)
	if err != nil {
		switch {
		case errors.Is(err, imarketorderrepo.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ordersvc.ErrNotShippable):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
			slog.Error("Error shipping order", "marketplace_order_id", orderID, "error", err)
		}

		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
