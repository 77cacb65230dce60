package shipping

import "fmt"

// Known shipping methods. Anything else gets a "to be confirmed" estimate.
const (
	MethodLocalPickup = "Local pickup"
	MethodPWE         = "PWE"  // plain white envelope
	MethodBMWT        = "BMWT" // bubble mailer with tracking
)

// Per-envelope PWE cost and capacity, and the bulk threshold above which
// BMWT orders need manual pricing.
const (
	pweCardsPerEnvelope = 15
	pweCostPerEnvelope  = 2
	bmwtFlatCost        = 8
	bulkUnitThreshold   = 80
)

// Details is a shipping cost estimate. A nil Estimate means the cost is
// pending manual approval, not free.
type Details struct {
	Label    string   `json:"label"`
	Estimate *float64 `json:"estimate"`
	Note     string   `json:"note"`
}

// Estimate computes the shipping estimate for a method and a total
// selected unit count.
func Estimate(method string, units int) Details {
	switch method {
	case MethodLocalPickup:
		return Details{Label: MethodLocalPickup, Estimate: f(0), Note: "No shipping charge."}

	case MethodPWE:
		envelopes := (units + pweCardsPerEnvelope - 1) / pweCardsPerEnvelope
		if envelopes < 1 {
			envelopes = 1
		}
		est := 0.0
		if units > 0 {
			est = float64(envelopes * pweCostPerEnvelope)
		}
		note := "Estimated $2 for one envelope."
		if units > pweCardsPerEnvelope {
			note = fmt.Sprintf("Estimated %d envelopes x $2.", envelopes)
		}
		return Details{Label: MethodPWE, Estimate: &est, Note: note}

	case MethodBMWT:
		if units >= bulkUnitThreshold {
			return Details{
				Label: "Priority Mail",
				Note:  "80+ cards ship via Priority Mail flat-rate envelope/box. Final shipping cost requires approval.",
			}
		}
		est := 0.0
		if units > 0 {
			est = bmwtFlatCost
		}
		return Details{Label: MethodBMWT, Estimate: &est, Note: "Estimated $8 (under 80 cards)."}
	}

	return Details{Label: method, Note: "Shipping cost to be confirmed."}
}

func f(v float64) *float64 { return &v }
