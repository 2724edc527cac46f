package domain

// CartStatusActive marks the cart records that participate in merging. A user
// may legitimately own several active records at once; together they form one
// logical cart.
const CartStatusActive = "active"

// RawLineItem is a (productId, quantity) pair as stored by the cart service.
type RawLineItem struct {
	ProductID FlexID `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CartRecord is one stored cart document owned by a user.
type CartRecord struct {
	ID     FlexID        `json:"_id"`
	UserID FlexID        `json:"userId"`
	Status string        `json:"status"`
	Items  []RawLineItem `json:"items"`
}

// LineState tracks a line item through an optimistic mutation.
type LineState string

const (
	LineStateStable     LineState = "stable"
	LineStatePending    LineState = "pending"
	LineStateRolledBack LineState = "rolled_back"
)

// LineKey identifies a line item independently of its slice position.
// Positional indexes go stale the moment a concurrent removal shifts the
// slice, so every mutation captures a LineKey at initiation and resolves the
// target through it when the remote call completes.
type LineKey struct {
	ProductID  string `json:"productId"`
	CartRef    string `json:"cartRef"`
	Occurrence int    `json:"occurrence"`
}

// EnrichedLineItem is a cart line joined with its catalog snapshot.
// Quantity is the locally observed value; the server-side value stays
// authoritative and rollback restores it on a failed mutation. Quantity is
// always >= 1 while the line exists; reaching 0 means removal.
type EnrichedLineItem struct {
	Key LineKey `json:"key"`
	// ProductID is the cart line's identifier verbatim, even when the
	// catalog spells the same id differently.
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   Product   `json:"product"`
	State     LineState `json:"state"`
}

// PriceSummary is derived from the current line sequence on every read and
// never persisted.
//
// Subtotal sums current (already discounted) unit prices, so Discount is
// informational only and does not subtract from Total.
type PriceSummary struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Fee      float64 `json:"fee"`
	Total    float64 `json:"total"`
	Items    int     `json:"items"`
}
