package sync

import "time"

// Event types broadcast on the feed.
const (
	EventCatalogLoaded = "catalog.loaded"
	EventCartUpdate    = "cart.update"
	EventCartClear     = "cart.clear"
	EventSaleFinalized = "sale.finalized"
)

// Event tells subscribers that inventory or cart state changed and they
// should re-derive whatever view they hold.
type Event struct {
	Type    string    `json:"type"`
	Key     string    `json:"key,omitempty"` // selection key for cart updates
	Qty     int       `json:"qty,omitempty"`
	Cards   int       `json:"cards,omitempty"`
	Units   int       `json:"units,omitempty"`
	Sources int       `json:"sources,omitempty"`
	OrderID string    `json:"order_id,omitempty"`
	At      time.Time `json:"at"`
}
