package order

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"cardstore/internal/pricing"
	"cardstore/internal/shipping"
	"cardstore/pkg/models"
)

// Totals aggregates a selection for display and for the summary footer.
// Unknown unit prices contribute nothing to KnownSubtotal and are counted
// separately instead of being silently treated as zero.
type Totals struct {
	Cards         int              `json:"cards"`
	Units         int              `json:"units"`
	KnownSubtotal float64          `json:"known_subtotal"`
	UnpricedCards int              `json:"unpriced_cards"`
	UnpricedUnits int              `json:"unpriced_units"`
	Shipping      shipping.Details `json:"shipping"`
	TotalWithShip *float64         `json:"total_with_shipping"` // nil while shipping is pending
}

// Tally computes selection totals under a shipping method.
func Tally(rows []models.SelectedRow, method string) Totals {
	t := Totals{Cards: len(rows)}
	for _, x := range rows {
		t.Units += x.Qty
		unit := pricing.InternalPrice(x.Listing.TCDBPrice)
		if unit == nil {
			t.UnpricedCards++
			t.UnpricedUnits += x.Qty
			continue
		}
		t.KnownSubtotal += *unit * float64(x.Qty)
	}
	t.Shipping = shipping.Estimate(method, t.Units)
	if t.Shipping.Estimate != nil {
		total := t.KnownSubtotal + *t.Shipping.Estimate
		t.TotalWithShip = &total
	}
	return t
}

// BuildSummary renders the deterministic multi-line order report the
// buyer sends to the seller.
func BuildSummary(rows []models.SelectedRow, buyer models.BuyerInfo, method string, now time.Time) string {
	t := Tally(rows, method)

	lines := []string{
		"TCDB CARD ORDER REQUEST",
		"Created: " + now.Format("2006-01-02 15:04:05"),
		"",
		"Buyer: " + orPlaceholder(buyer.Name, "(not provided)"),
		"Email: " + orPlaceholder(buyer.Email, "(not provided)"),
		"Payment: " + orPlaceholder(buyer.Payment, "(not provided)"),
		"Shipping preference: " + t.Shipping.Label,
		"Shipping estimate: " + pendingOr(t.Shipping.Estimate, "Pending approval"),
		"Shipping note: " + t.Shipping.Note,
		"Notes: " + orPlaceholder(buyer.Notes, "(none)"),
		"",
		"Items:",
	}

	if len(rows) == 0 {
		lines = append(lines, "(no items selected)")
	}
	for i, x := range rows {
		r := x.Listing
		unit := pricing.InternalPrice(r.TCDBPrice)
		unitV := pricing.Known(unit, 0)
		lineV := unitV * float64(x.Qty)
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s #%s | Qty %d x %s = %s",
			i+1,
			r.DisplayName(),
			r.Sport,
			orPlaceholder(r.SetName, "(set unknown)"),
			orPlaceholder(r.CardNumber, "-"),
			x.Qty,
			pricing.Money(&unitV),
			pricing.Money(&lineV),
		))
	}

	lines = append(lines,
		"",
		fmt.Sprintf("Selected cards: %d", t.Cards),
		fmt.Sprintf("Selected units: %d", t.Units),
		fmt.Sprintf("Cards subtotal (known prices): %s", pricing.Money(&t.KnownSubtotal)),
		"Known total + shipping estimate: "+pendingOr(t.TotalWithShip, "Pending shipping approval"),
	)
	if t.UnpricedCards > 0 {
		lines = append(lines, fmt.Sprintf(
			"Unpriced items selected: %d card(s), %d unit(s). Final card pricing will be sent for approval.",
			t.UnpricedCards, t.UnpricedUnits,
		))
	}

	return strings.Join(lines, "\n")
}

// BuildCSV renders the fixed 8-column export. encoding/csv handles the
// RFC 4180 quoting (quote wrap, internal quotes doubled). Unknown unit
// prices export as 0.00; the summary is where they get called out.
func BuildCSV(rows []models.SelectedRow) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	_ = w.Write([]string{"Card Name", "Sport", "Set", "Card #", "Qty", "Unit Price", "Line Total", "Link"})
	for _, x := range rows {
		r := x.Listing
		unit := pricing.Known(pricing.InternalPrice(r.TCDBPrice), 0)
		name := r.CardName
		if name == "" {
			name = r.Player
		}
		_ = w.Write([]string{
			name,
			r.Sport,
			r.SetName,
			r.CardNumber,
			fmt.Sprintf("%d", x.Qty),
			fmt.Sprintf("%.2f", unit),
			fmt.Sprintf("%.2f", unit*float64(x.Qty)),
			r.CardURL,
		})
	}
	w.Flush()
	return b.String()
}

// CSVFilename is the timestamped download name for an export.
func CSVFilename(now time.Time) string {
	return "tcdb-order-" + now.Format("2006-01-02T15-04-05") + ".csv"
}

func orPlaceholder(s, placeholder string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return placeholder
	}
	return s
}

func pendingOr(v *float64, pending string) string {
	if v == nil {
		return pending
	}
	return pricing.Money(v)
}
