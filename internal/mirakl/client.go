// Package mirakl is the typed client for the Mirakl-style marketplace API.
// Every operation goes through a bounded-retry executor; the paginated order
// fetch wraps each page individually so a transient fault mid-pagination
// only re-fetches the failing page.
package mirakl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/marketsync/internal/service/models/currency"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/corray333/marketsync/internal/service/models/product"
	"github.com/go-resty/resty/v2"
)

const (
	pageSize         = 100
	defaultTimeout   = 30 * time.Second
	defaultPageDelay = 150 * time.Millisecond
)

// Operation names used in error messages and retry logs.
const (
	opSyncOffers      = "sync offers"
	opFetchOrders     = "fetch orders"
	opAcceptOrder     = "accept order"
	opCreateShipment  = "create shipment"
	opGetOffer        = "get offer"
	opUpdateInventory = "update inventory"
)

// Config carries the connection settings for one marketplace shop.
type Config struct {
	BaseURL string
	APIKey  string
	ShopID  string

	// Timeout bounds every single request; in-flight requests complete or
	// fail on this timeout even if the caller stops waiting.
	Timeout time.Duration

	MaxAttempts    int
	BaseRetryDelay time.Duration

	// PageDelay is the pause between order pages, keeping the fetch under
	// the per-second request ceiling.
	PageDelay time.Duration
}

// Client is the façade over the remote marketplace. It is an explicitly
// constructed value carrying its own credentials; inject it rather than
// sharing global state.
type Client struct {
	http      *resty.Client
	exec      *executor
	pageDelay time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	pageDelay := cfg.PageDelay
	if pageDelay <= 0 {
		pageDelay = defaultPageDelay
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", cfg.APIKey).
		SetHeader("Accept", "application/json")
	if cfg.ShopID != "" {
		httpClient.SetQueryParam("shop_id", cfg.ShopID)
	}

	return &Client{
		http:      httpClient,
		exec:      newExecutor(cfg.MaxAttempts, cfg.BaseRetryDelay),
		pageDelay: pageDelay,
	}
}

// SyncOffers pushes a snapshot of the given products as one offer import
// batch. Prices are converted to major units; the core never mutates the
// snapshots, it only transmits them.
func (c *Client) SyncOffers(ctx context.Context, products []product.Product) (SyncResult, error) {
	body := offerImportRequest{Offers: make([]apiOffer, 0, len(products))}
	for _, p := range products {
		body.Offers = append(body.Offers, offerFromProduct(p))
	}

	var result SyncResult
	err := c.exec.do(ctx, opSyncOffers, func() error {
		resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/api/offers")
		if err != nil {
			return fmt.Errorf("send offer import: %w", err)
		}
		if resp.IsError() {
			return classify(opSyncOffers, resp)
		}

		return decode(opSyncOffers, resp, &result)
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync offers: %w", err)
	}

	return result, nil
}

// FetchOrders pulls all open orders page by page, oldest first, optionally
// bounded by an update-since watermark. Pages are fetched strictly in
// increasing offset order. The result is the full aggregate; a hard failure
// after page k is not resumable, the caller re-invokes from offset zero.
func (c *Client) FetchOrders(ctx context.Context, since *time.Time) ([]marketorder.MarketOrder, error) {
	states := make([]string, 0, len(marketorder.OpenStates()))
	for _, s := range marketorder.OpenStates() {
		states = append(states, s.String())
	}
	stateFilter := strings.Join(states, ",")

	var orders []marketorder.MarketOrder
	for offset := 0; ; offset += pageSize {
		if offset > 0 {
			if err := c.exec.sleep(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}

		params := map[string]string{
			"order_state_codes": stateFilter,
			"sort":              "dateCreated",
			"max":               strconv.Itoa(pageSize),
			"offset":            strconv.Itoa(offset),
		}
		if since != nil {
			params["start_update_date"] = since.UTC().Format(time.RFC3339)
		}

		var page orderPage
		err := c.exec.do(ctx, opFetchOrders, func() error {
			page = orderPage{}
			resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get("/api/orders")
			if err != nil {
				return fmt.Errorf("request order page: %w", err)
			}
			if resp.IsError() {
				return classify(opFetchOrders, resp)
			}

			return decode(opFetchOrders, resp, &page)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch orders at offset %d: %w", offset, err)
		}

		for _, o := range page.Orders {
			m, err := o.toModel()
			if err != nil {
				return nil, fmt.Errorf("fetch orders at offset %d: %w", offset, err)
			}
			orders = append(orders, m)
		}

		// The short-page clause guards against an inconsistent total count
		// reported by the remote.
		if offset+pageSize >= page.TotalCount || len(page.Orders) < pageSize {
			break
		}
	}

	return orders, nil
}

// AcceptOrder marks every supplied line as accepted so the order becomes
// shippable.
func (c *Client) AcceptOrder(ctx context.Context, orderID string, lines []marketorder.OrderLine) (AcceptResult, error) {
	body := acceptRequest{OrderLines: make([]acceptLine, 0, len(lines))}
	for _, l := range lines {
		body.OrderLines = append(body.OrderLines, acceptLine{ID: l.LineID, Accepted: true})
	}

	err := c.exec.do(ctx, opAcceptOrder, func() error {
		resp, err := c.http.R().SetContext(ctx).SetBody(body).Put("/api/orders/" + orderID + "/accept")
		if err != nil {
			return fmt.Errorf("send acceptance: %w", err)
		}
		if resp.IsError() {
			return classify(opAcceptOrder, resp)
		}

		return nil
	})
	if err != nil {
		return AcceptResult{}, fmt.Errorf("accept order %s: %w", orderID, err)
	}

	return AcceptResult{OrderID: orderID, LinesAccepted: len(lines)}, nil
}

// CreateShipment registers tracking for an order and confirms the shipment.
// The carrier code is resolved to its display name; unknown codes ship under
// the code itself.
func (c *Client) CreateShipment(ctx context.Context, orderID, trackingNumber, carrierCode string) (ShipmentResult, error) {
	carrierName := CarrierName(carrierCode)
	body := trackingRequest{
		CarrierCode:    carrierCode,
		CarrierName:    carrierName,
		TrackingNumber: trackingNumber,
	}

	err := c.exec.do(ctx, opCreateShipment, func() error {
		resp, err := c.http.R().SetContext(ctx).SetBody(body).Put("/api/orders/" + orderID + "/tracking")
		if err != nil {
			return fmt.Errorf("send tracking: %w", err)
		}
		if resp.IsError() {
			return classify(opCreateShipment, resp)
		}

		return nil
	})
	if err != nil {
		return ShipmentResult{}, fmt.Errorf("create shipment for order %s: %w", orderID, err)
	}

	err = c.exec.do(ctx, opCreateShipment, func() error {
		resp, err := c.http.R().SetContext(ctx).Put("/api/orders/" + orderID + "/ship")
		if err != nil {
			return fmt.Errorf("confirm shipment: %w", err)
		}
		if resp.IsError() {
			return classify(opCreateShipment, resp)
		}

		return nil
	})
	if err != nil {
		return ShipmentResult{}, fmt.Errorf("confirm shipment for order %s: %w", orderID, err)
	}

	return ShipmentResult{
		OrderID:        orderID,
		TrackingNumber: trackingNumber,
		CarrierName:    carrierName,
	}, nil
}

// GetOfferBySKU looks up the shop's live offer for a SKU. A SKU with no
// offer returns nil rather than an error.
func (c *Client) GetOfferBySKU(ctx context.Context, sku string) (*Offer, error) {
	var page offerLookupPage
	err := c.exec.do(ctx, opGetOffer, func() error {
		page = offerLookupPage{}
		resp, err := c.http.R().SetContext(ctx).SetQueryParam("sku", sku).Get("/api/offers")
		if err != nil {
			return fmt.Errorf("request offer: %w", err)
		}
		if resp.IsError() {
			return classify(opGetOffer, resp)
		}

		return decode(opGetOffer, resp, &page)
	})
	if err != nil {
		return nil, fmt.Errorf("get offer by sku %s: %w", sku, err)
	}

	if len(page.Offers) == 0 {
		return nil, nil
	}

	listing := page.Offers[0]
	priceCents, err := currency.MajorToMinor(listing.Price.String())
	if err != nil {
		return nil, fmt.Errorf("get offer by sku %s: %w", sku, err)
	}

	return &Offer{
		OfferID:    listing.OfferID,
		ShopSKU:    listing.ShopSKU,
		PriceCents: priceCents,
		Quantity:   listing.Quantity,
		StateCode:  listing.StateCode,
	}, nil
}

// UpdateInventory adjusts the quantity of one live offer.
func (c *Client) UpdateInventory(ctx context.Context, offerID string, quantity int) (SyncResult, error) {
	stateCode := offerStateCodeAvailable
	if quantity == 0 {
		stateCode = offerStateCodeUnavailable
	}

	body := offerImportRequest{Offers: []apiOffer{{
		OfferID:      offerID,
		Quantity:     quantity,
		StateCode:    stateCode,
		UpdateDelete: "update",
	}}}

	var result SyncResult
	err := c.exec.do(ctx, opUpdateInventory, func() error {
		resp, err := c.http.R().SetContext(ctx).SetBody(body).Post("/api/offers")
		if err != nil {
			return fmt.Errorf("send inventory update: %w", err)
		}
		if resp.IsError() {
			return classify(opUpdateInventory, resp)
		}

		return decode(opUpdateInventory, resp, &result)
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("update inventory for offer %s: %w", offerID, err)
	}

	return result, nil
}
