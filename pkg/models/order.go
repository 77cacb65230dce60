package models

// SelectedRow pairs a catalog listing with the quantity the buyer chose.
// The pointer aims into the live catalog slice so finalize can decrement
// stock in place.
type SelectedRow struct {
	Listing *CardListing `json:"listing"`
	Qty     int          `json:"qty"`
}

// BuyerInfo carries the free-form checkout fields. All of them are
// optional; the composer substitutes explicit placeholders for blanks.
type BuyerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Payment string `json:"payment"`
	Notes   string `json:"notes"`
}
