package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/gorilla/schema"
)

type service interface {
	GetOrders(ctx context.Context, filter *marketorder.QueryOrdersModel) ([]marketorder.MarketOrder, error)
}

type queryOrdersRequest struct {
	MarketplaceOrderIds []string `schema:"marketplaceOrderIds,omitempty"`
	States              []string `schema:"states,omitempty"`
	Limit               int      `schema:"limit,omitempty"`
	Offset              int      `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() (*marketorder.QueryOrdersModel, error) {
	states := make([]marketorder.State, 0, len(q.States))
	for _, s := range q.States {
		state, err := marketorder.ParseState(s)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return &marketorder.QueryOrdersModel{
		MarketplaceOrderIDs: q.MarketplaceOrderIds,
		States:              states,
		Limit:               q.Limit,
		Offset:              q.Offset,
	}, nil
}

func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	decoder := schema.NewDecoder()
	query := &queryOrdersRequest{}
	err := decoder.Decode(query, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		slog.Error("Error decoding request", "error", err)

		return
	}

	filter, err := query.ToModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	orders, err := service.GetOrders(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting orders", "error", err)

		return
	}

	if err := json.NewEncoder(w).Encode(orders); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}
