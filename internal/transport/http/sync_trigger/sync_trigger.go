package synctrigger

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/marketsync/internal/service/services/syncsvc"
)

type service interface {
	RunOrderImport(ctx context.Context) (syncsvc.Result, error)
	RunOfferSync(ctx context.Context) (syncsvc.Result, error)
}

// TriggerOrderImport runs one order import cycle synchronously and reports
// its result.
func TriggerOrderImport(w http.ResponseWriter, r *http.Request, service service) {
	result, err := service.RunOrderImport(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		slog.Error("Manual order import failed", "error", err)

		return
	}

	respond(w, result)
}

// TriggerOfferSync runs one offer sync cycle synchronously and reports its
// result.
func TriggerOfferSync(w http.ResponseWriter, r *http.Request, service service) {
	result, err := service.RunOfferSync(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		slog.Error("Manual offer sync failed", "error", err)

		return
	}

	respond(w, result)
}

func respond(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
