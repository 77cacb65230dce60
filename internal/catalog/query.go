package catalog

import (
	"math"
	"sort"
	"strings"

	"cardstore/internal/pricing"
	"cardstore/pkg/models"
)

// Sort modes for ListQuery.SortBy.
const (
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
	SortSetAsc      = "set_asc"
	SortSportAsc    = "sport_asc"
	SortQtyAsc      = "qty_asc"
	SortQtyDesc     = "qty_desc"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
	SortMyPriceAsc  = "my_price_asc"
	SortMyPriceDesc = "my_price_desc"
)

const DefaultPageSize = 50

// SelectedFn reports the buyer's clamped selection quantity for a
// listing. The engine never reads cart state directly.
type SelectedFn func(l *models.CardListing) int

// ListQuery is the current catalog view: filters, sort and page. All
// filter predicates are conjunctive.
type ListQuery struct {
	Q            string
	Sport        string
	MinPrice     *float64 // bounds apply to the derived price
	MaxPrice     *float64
	MinQty       *int
	InStockOnly  bool
	SelectedOnly bool
	SortBy       string
	Page         int
	PageSize     int
}

// Page is one derived view of the catalog.
type Page struct {
	Items    []models.CardListing `json:"items"`
	Total    int                  `json:"total"` // filtered row count
	Units    int                  `json:"units"` // sum of quantities over the filtered rows
	Page     int                  `json:"page"`
	Pages    int                  `json:"pages"`
	PageSize int                  `json:"page_size"`
}

// Apply derives the visible page from the full catalog and a query. Pure:
// rows are copied into the result, never mutated. Callers re-run it after
// any state change; nothing here assumes an attached UI.
func Apply(rows []models.CardListing, selected SelectedFn, q ListQuery) Page {
	text := strings.ToLower(strings.TrimSpace(q.Q))
	sport := strings.ToLower(strings.TrimSpace(q.Sport))

	var filtered []models.CardListing
	units := 0
	for i := range rows {
		r := &rows[i]
		if text != "" && !strings.Contains(r.SearchText(), text) {
			continue
		}
		if sport != "" && strings.ToLower(r.Sport) != sport {
			continue
		}
		mine := pricing.InternalPrice(r.TCDBPrice)
		if q.MinPrice != nil && (mine == nil || *mine < *q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && (mine == nil || *mine > *q.MaxPrice) {
			continue
		}
		if q.MinQty != nil && r.Quantity < *q.MinQty {
			continue
		}
		if q.InStockOnly && r.Quantity < 1 {
			continue
		}
		if q.SelectedOnly && (selected == nil || selected(r) < 1) {
			continue
		}
		filtered = append(filtered, *r)
		units += r.Quantity
	}

	sortRows(filtered, q.SortBy)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (len(filtered) + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Items:    filtered[start:end],
		Total:    len(filtered),
		Units:    units,
		Page:     page,
		Pages:    pages,
		PageSize: pageSize,
	}
}

// sortRows applies a total order from the fixed comparator set. The sort
// is stable, so catalog order breaks ties.
func sortRows(rows []models.CardListing, mode string) {
	var less func(a, b *models.CardListing) bool

	switch mode {
	case SortNameDesc:
		less = func(a, b *models.CardListing) bool { return textLess(b.CardName, a.CardName) }
	case SortSetAsc:
		less = func(a, b *models.CardListing) bool { return textLess(a.SetName, b.SetName) }
	case SortSportAsc:
		less = func(a, b *models.CardListing) bool { return textLess(a.Sport, b.Sport) }
	case SortQtyAsc:
		less = func(a, b *models.CardListing) bool { return a.Quantity < b.Quantity }
	case SortQtyDesc:
		less = func(a, b *models.CardListing) bool { return b.Quantity < a.Quantity }
	case SortPriceAsc:
		less = func(a, b *models.CardListing) bool {
			return priceOr(a.TCDBPrice, math.Inf(1)) < priceOr(b.TCDBPrice, math.Inf(1))
		}
	case SortPriceDesc:
		less = func(a, b *models.CardListing) bool {
			return priceOr(b.TCDBPrice, -1) < priceOr(a.TCDBPrice, -1)
		}
	case SortMyPriceAsc:
		less = func(a, b *models.CardListing) bool {
			return priceOr(pricing.InternalPrice(a.TCDBPrice), math.Inf(1)) < priceOr(pricing.InternalPrice(b.TCDBPrice), math.Inf(1))
		}
	case SortMyPriceDesc:
		less = func(a, b *models.CardListing) bool {
			return priceOr(pricing.InternalPrice(b.TCDBPrice), -1) < priceOr(pricing.InternalPrice(a.TCDBPrice), -1)
		}
	default: // SortNameAsc
		less = func(a, b *models.CardListing) bool { return textLess(a.CardName, b.CardName) }
	}

	sort.SliceStable(rows, func(i, j int) bool { return less(&rows[i], &rows[j]) })
}

// textLess compares case-insensitively, falling back to a raw compare so
// the order stays total.
func textLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// priceOr substitutes a sentinel for unknown prices so they sort last
// both ascending and descending.
func priceOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
