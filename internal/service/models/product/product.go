package product

import (
	"time"

	"github.com/corray333/marketsync/internal/service/models/currency"
)

// Product maps one internal product to its marketplace listing. The sync
// jobs only read these rows and transmit snapshots; price and quantity are
// owned by the mapping CRUD surface.
type Product struct {
	ID                 int64             `json:"id"`
	InternalSKU        string            `json:"internalSku"`
	MarketplaceSKU     string            `json:"marketplaceSku"`
	MarketplaceOfferID string            `json:"marketplaceOfferId,omitempty"`
	PriceCents         int64             `json:"priceCents"`
	PriceCurrency      currency.Currency `json:"priceCurrency"`
	Quantity           int               `json:"quantity"`
	Description        string            `json:"description,omitempty"`
	LeadtimeDays       int               `json:"leadtimeDays"`
	Active             bool              `json:"active"`
	LastSyncedAt       *time.Time        `json:"lastSyncedAt,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}
