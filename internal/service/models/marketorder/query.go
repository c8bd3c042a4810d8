package marketorder

// QueryOrdersModel represents filter parameters for querying market orders
type QueryOrdersModel struct {
	MarketplaceOrderIDs []string `json:"marketplaceOrderIds,omitempty"`
	States              []State  `json:"states,omitempty"`
	Limit               int      `json:"limit,omitempty"`
	Offset              int      `json:"offset,omitempty"`
}
