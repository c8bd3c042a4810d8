package mirakl

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/corray333/marketsync/internal/service/models/currency"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/corray333/marketsync/internal/service/models/product"
)

// Offer state codes of the marketplace catalog.
const (
	offerStateCodeAvailable   = "11"
	offerStateCodeUnavailable = "14"
)

const (
	defaultLeadtimeDays     = 2
	defaultMinQuantityAlert = 1
)

// customerNameFallback is stored when the remote order carries no customer
// name at all.
const customerNameFallback = "Marketplace customer"

type offerImportRequest struct {
	Offers []apiOffer `json:"offers"`
}

type apiOffer struct {
	ShopSKU          string `json:"shop_sku,omitempty"`
	OfferID          string `json:"offer_id,omitempty"`
	Price            string `json:"price,omitempty"`
	Quantity         int    `json:"quantity"`
	StateCode        string `json:"state_code"`
	LeadtimeToShip   int    `json:"leadtime_to_ship,omitempty"`
	MinQuantityAlert int    `json:"min_quantity_alert,omitempty"`
	Description      string `json:"description,omitempty"`
	UpdateDelete     string `json:"update_delete,omitempty"`
}

// offerFromProduct maps a product snapshot to the remote offer schema.
// Quantity zero marks the offer unavailable; lead time and the minimum
// quantity alert get defaults when the mapping leaves them unset.
func offerFromProduct(p product.Product) apiOffer {
	stateCode := offerStateCodeAvailable
	if p.Quantity == 0 {
		stateCode = offerStateCodeUnavailable
	}

	leadtime := p.LeadtimeDays
	if leadtime == 0 {
		leadtime = defaultLeadtimeDays
	}

	return apiOffer{
		ShopSKU:          p.MarketplaceSKU,
		OfferID:          p.MarketplaceOfferID,
		Price:            currency.MinorToMajor(p.PriceCents),
		Quantity:         p.Quantity,
		StateCode:        stateCode,
		LeadtimeToShip:   leadtime,
		MinQuantityAlert: defaultMinQuantityAlert,
		Description:      p.Description,
	}
}

// SyncResult is the remote's acknowledgement of an offer import.
type SyncResult struct {
	ImportID int64 `json:"import_id"`
}

type orderPage struct {
	Orders     []apiOrder `json:"orders"`
	TotalCount int        `json:"total_count"`
}

type apiCustomer struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type apiOrderLine struct {
	OrderLineID string      `json:"order_line_id"`
	OfferSKU    string      `json:"offer_sku"`
	Quantity    int         `json:"quantity"`
	Price       json.Number `json:"price"`
}

type apiOrder struct {
	OrderID         string          `json:"order_id"`
	State           string          `json:"order_state"`
	Customer        apiCustomer     `json:"customer"`
	ShippingAddress json.RawMessage `json:"shipping_address"`
	OrderLines      []apiOrderLine  `json:"order_lines"`
	TotalPrice      json.Number     `json:"total_price"`
	CreatedDate     time.Time       `json:"created_date"`
}

// toModel validates a remote order at the client boundary and converts its
// decimal amounts to minor units.
func (o apiOrder) toModel() (marketorder.MarketOrder, error) {
	state, err := marketorder.ParseState(o.State)
	if err != nil {
		return marketorder.MarketOrder{}, fmt.Errorf("order %s: state %q: %w", o.OrderID, o.State, err)
	}

	totalCents, err := currency.MajorToMinor(o.TotalPrice.String())
	if err != nil {
		return marketorder.MarketOrder{}, fmt.Errorf("order %s: total price: %w", o.OrderID, err)
	}

	lines := make([]marketorder.OrderLine, 0, len(o.OrderLines))
	for _, l := range o.OrderLines {
		priceCents, err := currency.MajorToMinor(l.Price.String())
		if err != nil {
			return marketorder.MarketOrder{}, fmt.Errorf("order %s: line %s price: %w", o.OrderID, l.OrderLineID, err)
		}
		lines = append(lines, marketorder.OrderLine{
			LineID:     l.OrderLineID,
			SKU:        l.OfferSKU,
			Quantity:   l.Quantity,
			PriceCents: priceCents,
		})
	}

	name := strings.TrimSpace(o.Customer.Firstname + " " + o.Customer.Lastname)
	if name == "" {
		name = customerNameFallback
	}

	return marketorder.MarketOrder{
		MarketplaceOrderID: o.OrderID,
		State:              state,
		CustomerName:       name,
		ShippingAddress:    o.ShippingAddress,
		OrderLines:         lines,
		TotalPriceCents:    totalCents,
		TotalPriceCurrency: currency.CurrencyCAD,
		CreatedAt:          o.CreatedDate,
	}, nil
}

type acceptLine struct {
	ID       string `json:"id"`
	Accepted bool   `json:"accepted"`
}

type acceptRequest struct {
	OrderLines []acceptLine `json:"order_lines"`
}

// AcceptResult reports a successful order-line acceptance.
type AcceptResult struct {
	OrderID       string `json:"orderId"`
	LinesAccepted int    `json:"linesAccepted"`
}

type trackingRequest struct {
	CarrierCode    string `json:"carrier_code"`
	CarrierName    string `json:"carrier_name"`
	TrackingNumber string `json:"tracking_number"`
}

// ShipmentResult reports a successfully registered and confirmed shipment.
type ShipmentResult struct {
	OrderID        string `json:"orderId"`
	TrackingNumber string `json:"trackingNumber"`
	CarrierName    string `json:"carrierName"`
}

type offerLookupPage struct {
	Offers     []apiOfferListing `json:"offers"`
	TotalCount int               `json:"total_count"`
}

type apiOfferListing struct {
	OfferID   string      `json:"offer_id"`
	ShopSKU   string      `json:"shop_sku"`
	Price     json.Number `json:"price"`
	Quantity  int         `json:"quantity"`
	StateCode string      `json:"state_code"`
}

// Offer is a live listing as reported by the marketplace.
type Offer struct {
	OfferID    string `json:"offerId"`
	ShopSKU    string `json:"shopSku"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
	StateCode  string `json:"stateCode"`
}
