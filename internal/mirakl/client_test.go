package mirakl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at the given server with sleeps disabled so
// pagination and retry tests run instantly.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	c := NewClient(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		ShopID:         "2003",
		MaxAttempts:    3,
		BaseRetryDelay: time.Millisecond,
		PageDelay:      time.Millisecond,
	})
	c.exec.sleep = func(context.Context, time.Duration) error { return nil }

	return c
}

func TestFetchOrdersPaginates(t *testing.T) {
	const total = 250

	var requests []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.Equal(t, "2003", r.URL.Query().Get("shop_id"))
		require.Contains(t, r.URL.Query().Get("order_state_codes"), "WAITING_ACCEPTANCE")

		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)
		requests = append(requests, offset)

		count := pageSize
		if offset+count > total {
			count = total - offset
		}

		page := map[string]any{"total_count": total}
		orders := make([]map[string]any, 0, count)
		for i := 0; i < count; i++ {
			orders = append(orders, map[string]any{
				"order_id":     fmt.Sprintf("ORD-%d", offset+i),
				"order_state":  "WAITING_ACCEPTANCE",
				"total_price":  "19.98",
				"created_date": time.Now().UTC().Format(time.RFC3339),
				"customer":     map[string]string{"firstname": "Jane", "lastname": "Doe"},
				"order_lines": []map[string]any{
					{"order_line_id": "L1", "offer_sku": "SKU-1", "quantity": 2, "price": "9.99"},
				},
			})
		}
		page["orders"] = orders

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	orders, err := client.FetchOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, orders, total)
	require.Equal(t, []int{0, 100, 200}, requests)

	first := orders[0]
	require.Equal(t, "ORD-0", first.MarketplaceOrderID)
	require.Equal(t, marketorder.StateWaitingAcceptance, first.State)
	require.Equal(t, "Jane Doe", first.CustomerName)
	require.Equal(t, int64(1998), first.TotalPriceCents)
	require.Len(t, first.OrderLines, 1)
	require.Equal(t, int64(999), first.OrderLines[0].PriceCents)
}

func TestFetchOrdersStopsOnShortPage(t *testing.T) {
	// The remote claims more orders than it actually returns; the short page
	// terminates the walk.
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page := map[string]any{
			"total_count": 5000,
			"orders": []map[string]any{
				{
					"order_id":     "ORD-1",
					"order_state":  "SHIPPING",
					"total_price":  "5.00",
					"created_date": time.Now().UTC().Format(time.RFC3339),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	orders, err := client.FetchOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 1, calls)
}

func TestFetchOrdersPassesWatermark(t *testing.T) {
	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("start_update_date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[],"total_count":0}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	orders, err := client.FetchOrders(context.Background(), &since)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestFetchOrdersRejectsUnknownState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := map[string]any{
			"total_count": 1,
			"orders": []map[string]any{
				{
					"order_id":     "ORD-1",
					"order_state":  "TELEPORTED",
					"total_price":  "5.00",
					"created_date": time.Now().UTC().Format(time.RFC3339),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.FetchOrders(context.Background(), nil)
	require.ErrorIs(t, err, marketorder.ErrInvalidState)
}

func TestSyncOffersPayload(t *testing.T) {
	var got offerImportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/offers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"import_id":42}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	result, err := client.SyncOffers(context.Background(), []product.Product{
		{MarketplaceSKU: "SKU-1", PriceCents: 999, Quantity: 5},
		{MarketplaceSKU: "SKU-2", PriceCents: 45000, Quantity: 0, LeadtimeDays: 4},
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), result.ImportID)

	require.Len(t, got.Offers, 2)

	require.Equal(t, "SKU-1", got.Offers[0].ShopSKU)
	require.Equal(t, "9.99", got.Offers[0].Price)
	require.Equal(t, 5, got.Offers[0].Quantity)
	require.Equal(t, offerStateCodeAvailable, got.Offers[0].StateCode)
	require.Equal(t, defaultLeadtimeDays, got.Offers[0].LeadtimeToShip)
	require.Equal(t, defaultMinQuantityAlert, got.Offers[0].MinQuantityAlert)

	require.Equal(t, "450.00", got.Offers[1].Price)
	require.Equal(t, offerStateCodeUnavailable, got.Offers[1].StateCode)
	require.Equal(t, 4, got.Offers[1].LeadtimeToShip)
}

func TestSyncOffersRetriesOnRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"import_id":7}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	result, err := client.SyncOffers(context.Background(), []product.Product{{MarketplaceSKU: "SKU-1"}})
	require.NoError(t, err)
	require.Equal(t, int64(7), result.ImportID)
	require.Equal(t, 3, calls)
}

func TestSyncOffersAuthFailureIsTerminal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.SyncOffers(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, 1, calls)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, KindAuth, apiErr.Kind)
	require.Contains(t, apiErr.Message, "invalid api key")
}

func TestAcceptOrderAcceptsEveryLine(t *testing.T) {
	var got acceptRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/orders/ORD-9/accept", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	result, err := client.AcceptOrder(context.Background(), "ORD-9", []marketorder.OrderLine{
		{LineID: "L1"}, {LineID: "L2"},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-9", result.OrderID)
	require.Equal(t, 2, result.LinesAccepted)

	require.Len(t, got.OrderLines, 2)
	for _, l := range got.OrderLines {
		require.True(t, l.Accepted)
	}
}

func TestCreateShipmentRegistersTrackingThenShips(t *testing.T) {
	var paths []string
	var tracking trackingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/orders/ORD-9/tracking" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&tracking))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	result, err := client.CreateShipment(context.Background(), "ORD-9", "1Z999", "UPS")
	require.NoError(t, err)
	require.Equal(t, []string{"/api/orders/ORD-9/tracking", "/api/orders/ORD-9/ship"}, paths)
	require.Equal(t, "UPS", tracking.CarrierCode)
	require.Equal(t, "United Parcel Service", tracking.CarrierName)
	require.Equal(t, "1Z999", tracking.TrackingNumber)
	require.Equal(t, "United Parcel Service", result.CarrierName)
}

func TestGetOfferBySKU(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("sku") == "SKU-1" {
			_, _ = w.Write([]byte(`{"offers":[{"offer_id":"OF-1","shop_sku":"SKU-1","price":"24.99","quantity":3,"state_code":"11"}],"total_count":1}`))
			return
		}
		_, _ = w.Write([]byte(`{"offers":[],"total_count":0}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	offer, err := client.GetOfferBySKU(context.Background(), "SKU-1")
	require.NoError(t, err)
	require.NotNil(t, offer)
	require.Equal(t, "OF-1", offer.OfferID)
	require.Equal(t, int64(2499), offer.PriceCents)
	require.Equal(t, 3, offer.Quantity)

	missing, err := client.GetOfferBySKU(context.Background(), "SKU-MISSING")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestUpdateInventory(t *testing.T) {
	var got offerImportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"import_id":11}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.UpdateInventory(context.Background(), "OF-1", 0)
	require.NoError(t, err)

	require.Len(t, got.Offers, 1)
	require.Equal(t, "OF-1", got.Offers[0].OfferID)
	require.Equal(t, 0, got.Offers[0].Quantity)
	require.Equal(t, offerStateCodeUnavailable, got.Offers[0].StateCode)
	require.Equal(t, "update", got.Offers[0].UpdateDelete)
}

func TestMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"import_id": "not a number"`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)

	_, err := client.SyncOffers(context.Background(), nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, KindUnclassified, apiErr.Kind)
}
