package pricing

import (
	"fmt"
	"math"
)

// InternalPrice maps a source reference price to our sale price.
// nil means no price is known; that stays unknown rather than
// defaulting to zero.
//
// Tiers, first match wins:
//
//	<= 0.20        flat 0.08 (price floor for near-zero listings)
//	0.20 .. 1.00   x 0.70
//	1.00 .. 5.00   x 0.85
//	>= 5.00        x 0.95
//
// The function is cheap and the source price never changes after load,
// so callers recompute it instead of caching.
func InternalPrice(source *float64) *float64 {
	if source == nil {
		return nil
	}
	p := *source
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return nil
	}

	var mine float64
	switch {
	case p <= 0.20:
		mine = 0.08
	case p < 1:
		mine = p * 0.70
	case p < 5:
		mine = p * 0.85
	default:
		mine = p * 0.95
	}
	return &mine
}

// Money formats a price for display. Unknown prices render as "-".
// Rounding to two decimals happens here, never in storage.
func Money(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

// Known returns v's value, or fallback when the price is unknown.
// Totals use fallback 0 and report the unpriced units separately.
func Known(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
