package syncstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/marketsync/internal/service/models/synclog"
)

const defaultLimit = 20

type service interface {
	Status(ctx context.Context, limit int) ([]synclog.Entry, error)
}

// SyncStatus returns the most recent sync cycles, newest first.
func SyncStatus(w http.ResponseWriter, r *http.Request, service service) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)

			return
		}
		limit = parsed
	}

	entries, err := service.Status(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error reading sync status", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
