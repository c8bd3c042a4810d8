package marketorder

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/corray333/marketsync/internal/service/models/currency"
)

// State is the marketplace-controlled lifecycle state of an order.
type State string

const (
	StateWaitingAcceptance State = "WAITING_ACCEPTANCE"
	StateShipping          State = "SHIPPING"
	StateShipped           State = "SHIPPED"
	StateToCollect         State = "TO_COLLECT"
	StateReceived          State = "RECEIVED"
	StateClosed            State = "CLOSED"
	StateRefused           State = "REFUSED"
	StateCanceled          State = "CANCELED"
)

var ErrInvalidState = errors.New("invalid order state")

func (s State) String() string {
	return string(s)
}

func (s State) Value() (driver.Value, error) {
	return s.String(), nil
}

func ParseState(v string) (State, error) {
	switch State(v) {
	case StateWaitingAcceptance, StateShipping, StateShipped, StateToCollect,
		StateReceived, StateClosed, StateRefused, StateCanceled:
		return State(v), nil
	default:
		return "", ErrInvalidState
	}
}

// OpenStates is the set of states an order still in flight can be in.
// The incremental order import filters on exactly this set.
func OpenStates() []State {
	return []State{StateWaitingAcceptance, StateShipping, StateShipped, StateToCollect}
}

// OrderLine is a single line item of a marketplace order. The line id is
// required later by the accept and shipment payloads.
type OrderLine struct {
	LineID     string `json:"lineId"`
	SKU        string `json:"sku"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// MarketOrder mirrors one marketplace order locally. MarketplaceOrderID is
// the natural key: re-ingesting the same id updates the row in place.
// AcceptedAt and ShippedAt are set only by local actions, never by re-fetch.
type MarketOrder struct {
	ID                 int64             `json:"id"`
	MarketplaceOrderID string            `json:"marketplaceOrderId"`
	State              State             `json:"state"`
	CustomerName       string            `json:"customerName"`
	ShippingAddress    json.RawMessage   `json:"shippingAddress,omitempty"`
	OrderLines         []OrderLine       `json:"orderLines"`
	TotalPriceCents    int64             `json:"totalPriceCents"`
	TotalPriceCurrency currency.Currency `json:"totalPriceCurrency"`
	CreatedAt          time.Time         `json:"createdAt"`
	AcceptedAt         *time.Time        `json:"acceptedAt,omitempty"`
	ShippedAt          *time.Time        `json:"shippedAt,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}
