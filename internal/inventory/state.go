package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"cardstore/internal/cart"
	"cardstore/internal/catalog"
	"cardstore/internal/order"
	"cardstore/internal/overrides"
	"cardstore/pkg/models"
)

var (
	// ErrLoadInFlight rejects a reload while another one is running
	// instead of letting the two interleave.
	ErrLoadInFlight = errors.New("catalog load already in progress")

	// ErrEmptySelection rejects finalize with nothing in the cart.
	ErrEmptySelection = errors.New("no cards selected")
)

// State is the one application-state value: the merged catalog, the
// session cart, and the persisted quantity overrides. Everything is
// owned here explicitly; there are no package globals.
//
// The catalog slice is mutated in exactly two places: override
// application at load time and finalize-sale. Both happen under the
// write lock.
type State struct {
	loader    *catalog.Loader
	overrides *overrides.Store
	pageSize  int

	loading atomic.Bool

	mu      sync.RWMutex
	rows    []models.CardListing
	byKey   map[string]*models.CardListing // selection key -> listing
	sources []string
	cart    *cart.Cart
}

func NewState(loader *catalog.Loader, ov *overrides.Store, pageSize int) *State {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &State{
		loader:    loader,
		overrides: ov,
		pageSize:  pageSize,
		byKey:     make(map[string]*models.CardListing),
		cart:      cart.New(),
	}
}

// Load runs the loader and swaps in the result: overrides applied, cart
// cleared (a fresh catalog invalidates any in-progress selection). A
// failed load swaps in an empty catalog instead of keeping the previous
// one. Only one load may be in flight at a time.
func (s *State) Load(ctx context.Context) (*catalog.Result, error) {
	if !s.loading.CompareAndSwap(false, true) {
		return nil, ErrLoadInFlight
	}
	defer s.loading.Store(false)

	res, err := s.loader.Load(ctx)
	if err != nil {
		// A total load failure empties the catalog and the cart. Stale
		// rows must not stay sellable: a selection made against them
		// could finalize and persist overrides from outdated quantities.
		s.mu.Lock()
		s.rows = nil
		s.byKey = make(map[string]*models.CardListing)
		s.sources = nil
		s.cart.Clear()
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = res.Rows
	s.sources = res.Sources
	s.overrides.Apply(s.rows)
	s.byKey = make(map[string]*models.CardListing, len(s.rows))
	for i := range s.rows {
		s.byKey[s.rows[i].SelectionKey()] = &s.rows[i]
	}
	s.cart.Clear()
	return res, nil
}

// Query derives the visible page for the current filters.
func (s *State) Query(q catalog.ListQuery) catalog.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	return catalog.Apply(s.rows, s.cart.QtyFor, q)
}

// Sports returns the distinct non-blank sport labels, sorted, for the
// sport filter options.
func (s *State) Sports() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for i := range s.rows {
		sport := strings.TrimSpace(s.rows[i].Sport)
		if sport == "" {
			continue
		}
		if _, ok := seen[sport]; ok {
			continue
		}
		seen[sport] = struct{}{}
		out = append(out, sport)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// TotalRows is the size of the full merged catalog.
func (s *State) TotalRows() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// SetQty updates the cart for one listing, clamped to its availability.
// Returns the applied quantity, or ok=false for an unknown key.
func (s *State) SetQty(key string, qty int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byKey[key]
	if !ok {
		return 0, false
	}
	return s.cart.SetQty(key, qty, l.Quantity), true
}

func (s *State) ClearCart() {
	s.cart.Clear()
}

// SelectedRows re-clamps the cart against current stock. The returned
// listings are copies; they outlive the read lock, so they must not
// alias rows a concurrent Finalize may be writing.
func (s *State) SelectedRows() []models.SelectedRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel := s.cart.SelectedRows(s.rows)
	out := make([]models.SelectedRow, len(sel))
	for i, x := range sel {
		l := *x.Listing
		out[i] = models.SelectedRow{Listing: &l, Qty: x.Qty}
	}
	return out
}

func (s *State) CartSnapshot() map[string]int {
	return s.cart.Snapshot()
}

// Summary renders the order report for the current selection.
func (s *State) Summary(buyer models.BuyerInfo, method string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return order.BuildSummary(s.cart.SelectedRows(s.rows), buyer, method, time.Now())
}

// CSV renders the order export for the current selection.
func (s *State) CSV() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return order.BuildCSV(s.cart.SelectedRows(s.rows))
}

// FinalizeResult reports what a committed sale did.
type FinalizeResult struct {
	OrderID string
	Summary string
	Cards   int
	Units   int
}

// Finalize commits the current selection as sold: every selected listing
// is decremented (floored at zero), the resulting quantities are written
// to the override store and persisted once, and the cart is cleared. The
// whole batch happens under the write lock, so no other finalize or load
// can interleave with it. The caller must have obtained the buyer's
// confirmation first.
func (s *State) Finalize(ctx context.Context, buyer models.BuyerInfo, method string) (*FinalizeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := s.cart.SelectedRows(s.rows)
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	// Selection quantities are already clamped to stock, so nextQty only
	// hits the floor if something outside this lock corrupted state.
	units := 0
	for _, x := range selected {
		units += x.Qty
		nextQty := x.Listing.Quantity - x.Qty
		if nextQty < 0 {
			nextQty = 0
		}
		x.Listing.Quantity = nextQty
		s.overrides.Set(x.Listing.SelectionKey(), nextQty)
	}
	s.overrides.Save(ctx)
	s.cart.Clear()

	return &FinalizeResult{
		OrderID: uuid.NewString(),
		Summary: order.BuildSummary(selected, buyer, method, time.Now()),
		Cards:   len(selected),
		Units:   units,
	}, nil
}
