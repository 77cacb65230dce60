package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardstore/pkg/models"
)

func queryRows() []models.CardListing {
	p := func(v float64) *float64 { return &v }
	return []models.CardListing{
		{Sport: "Hockey", CardURL: "u1", CardName: "Wayne Gretzky", Player: "Wayne Gretzky", SetName: "1990 Topps", CardNumber: "1", Quantity: 3, TCDBPrice: p(2.00)},
		{Sport: "Hockey", CardURL: "u2", CardName: "Mario Lemieux", Player: "Mario Lemieux", SetName: "1990 Topps", CardNumber: "2", Quantity: 0, TCDBPrice: p(0.10)},
		{Sport: "Baseball", CardURL: "u3", CardName: "Ken Griffey Jr", Player: "Ken Griffey Jr", SetName: "1989 Upper Deck", CardNumber: "1", Quantity: 5, TCDBPrice: nil},
		{Sport: "Baseball", CardURL: "u4", CardName: "Cal Ripken", Player: "Cal Ripken", SetName: "1991 Fleer", CardNumber: "95", Quantity: 2, TCDBPrice: p(10.00)},
	}
}

func TestApplyNoFilters(t *testing.T) {
	page := Apply(queryRows(), nil, ListQuery{})

	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 10, page.Units)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	// default sort is name ascending
	require.Len(t, page.Items, 4)
	assert.Equal(t, "Cal Ripken", page.Items[0].CardName)
	assert.Equal(t, "Wayne Gretzky", page.Items[3].CardName)
}

func TestApplyTextSearch(t *testing.T) {
	page := Apply(queryRows(), nil, ListQuery{Q: "  GRETZKY "})
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].CardURL)

	// sport is not part of the searchable text
	page = Apply(queryRows(), nil, ListQuery{Q: "hockey"})
	assert.Zero(t, page.Total)
}

func TestApplySportFilter(t *testing.T) {
	page := Apply(queryRows(), nil, ListQuery{Sport: "baseball"})
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 7, page.Units)
}

func TestApplyPriceBounds(t *testing.T) {
	min, max := 0.50, 5.00
	page := Apply(queryRows(), nil, ListQuery{MinPrice: &min, MaxPrice: &max})

	// bounds compare against the derived price: 2.00 -> 1.70, 0.10 -> 0.08,
	// 10.00 -> 9.50, unknown fails both bounds
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "u1", page.Items[0].CardURL)
}

func TestApplyUnknownPriceFailsBounds(t *testing.T) {
	min := 0.0
	page := Apply(queryRows(), nil, ListQuery{MinPrice: &min})
	for _, it := range page.Items {
		assert.NotNil(t, it.TCDBPrice)
	}
	assert.Equal(t, 3, page.Total)
}

func TestApplyStockAndQtyFilters(t *testing.T) {
	page := Apply(queryRows(), nil, ListQuery{InStockOnly: true})
	assert.Equal(t, 3, page.Total)

	minQty := 3
	page = Apply(queryRows(), nil, ListQuery{MinQty: &minQty})
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 8, page.Units)
}

func TestApplyFiltersAreConjunctive(t *testing.T) {
	min := 0.05
	page := Apply(queryRows(), nil, ListQuery{
		Q:           "topps",
		Sport:       "hockey",
		MinPrice:    &min,
		InStockOnly: true,
	})

	// u2 matches text+sport+price but is out of stock; only u1 passes all
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "u1", page.Items[0].CardURL)
}

func TestApplySelectedOnly(t *testing.T) {
	sel := func(l *models.CardListing) int {
		if l.CardURL == "u4" {
			return 2
		}
		return 0
	}
	page := Apply(queryRows(), sel, ListQuery{SelectedOnly: true})
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "u4", page.Items[0].CardURL)

	// without a selection source nothing matches
	page = Apply(queryRows(), nil, ListQuery{SelectedOnly: true})
	assert.Zero(t, page.Total)
}

func TestApplySortModes(t *testing.T) {
	urls := func(p Page) []string {
		out := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			out = append(out, it.CardURL)
		}
		return out
	}

	rows := queryRows()

	assert.Equal(t, []string{"u1", "u2", "u3", "u4"},
		urls(Apply(rows, nil, ListQuery{SortBy: SortNameDesc})))
	assert.Equal(t, []string{"u2", "u4", "u1", "u3"},
		urls(Apply(rows, nil, ListQuery{SortBy: SortQtyAsc})))
	assert.Equal(t, []string{"u3", "u1", "u4", "u2"},
		urls(Apply(rows, nil, ListQuery{SortBy: SortQtyDesc})))

	// unknown prices sort last both directions
	asc := urls(Apply(rows, nil, ListQuery{SortBy: SortPriceAsc}))
	assert.Equal(t, []string{"u2", "u1", "u4", "u3"}, asc)
	desc := urls(Apply(rows, nil, ListQuery{SortBy: SortPriceDesc}))
	assert.Equal(t, []string{"u4", "u1", "u2", "u3"}, desc)
}

func TestApplyPagination(t *testing.T) {
	rows := queryRows()

	page := Apply(rows, nil, ListQuery{PageSize: 3, Page: 2})
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 4, page.Total)

	// out-of-range pages clamp instead of erroring
	page = Apply(rows, nil, ListQuery{PageSize: 3, Page: 99})
	assert.Equal(t, 2, page.Page)
	page = Apply(rows, nil, ListQuery{PageSize: 3, Page: -1})
	assert.Equal(t, 1, page.Page)
}

func TestApplyEmptyCatalog(t *testing.T) {
	page := Apply(nil, nil, ListQuery{Page: 5})
	assert.Zero(t, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.Pages)
	assert.Empty(t, page.Items)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rows := queryRows()
	Apply(rows, nil, ListQuery{SortBy: SortQtyDesc})
	assert.Equal(t, "u1", rows[0].CardURL)
	assert.Equal(t, "u4", rows[3].CardURL)
}
