package cart

import (
	"sync"

	"cardstore/pkg/models"
)

// Cart tracks the requested quantity per selection key for one session.
// It is never persisted; a fresh catalog load invalidates it.
//
// Stored quantities are clamped against availability at write time, but
// SelectedRows re-clamps against the listing's current quantity anyway:
// stock can shrink after a selection was made, and a stale selection must
// never exceed current stock.
type Cart struct {
	mu  sync.Mutex
	qty map[string]int
}

func New() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// SetQty records the requested quantity for a selection key, clamped into
// [0, available]. A clamped quantity of zero removes the entry entirely.
// Returns the quantity actually stored.
func (c *Cart) SetQty(key string, qty, available int) int {
	if available < 0 {
		available = 0
	}
	if qty < 0 {
		qty = 0
	}
	if qty > available {
		qty = available
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if qty == 0 {
		delete(c.qty, key)
		return 0
	}
	c.qty[key] = qty
	return qty
}

// QtyFor returns the clamped selection quantity for a listing,
// recomputed against its current availability.
func (c *Cart) QtyFor(l *models.CardListing) int {
	c.mu.Lock()
	stored := c.qty[l.SelectionKey()]
	c.mu.Unlock()

	if stored < 0 {
		stored = 0
	}
	max := l.Quantity
	if max < 0 {
		max = 0
	}
	if stored > max {
		return max
	}
	return stored
}

// SelectedRows returns every listing with a positive clamped selection,
// in catalog order. Pointers aim into the caller's slice so finalize can
// decrement stock through them.
func (c *Cart) SelectedRows(rows []models.CardListing) []models.SelectedRow {
	var out []models.SelectedRow
	for i := range rows {
		if q := c.QtyFor(&rows[i]); q > 0 {
			out = append(out, models.SelectedRow{Listing: &rows[i], Qty: q})
		}
	}
	return out
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.qty = make(map[string]int)
	c.mu.Unlock()
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.qty)
}

// Snapshot copies the raw stored quantities, unclamped.
func (c *Cart) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.qty))
	for k, v := range c.qty {
		out[k] = v
	}
	return out
}
