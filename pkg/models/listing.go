package models

import "strings"

// CardListing is the normalized, internal form of one tradable card entry
// used by the loader, query engine and order composer.
//
// All external source files are mapped into this structure first,
// then everything downstream works from this representation.
type CardListing struct {
	CardURL         string   `json:"card_url"`          // external reference page (may be empty)
	Sport           string   `json:"sport"`             // category label
	SetName         string   `json:"set_name"`
	CardNumber      string   `json:"card_number"`
	CardName        string   `json:"card_name"`
	Player          string   `json:"player"`
	Team            string   `json:"team"`
	Quantity        int      `json:"quantity"`          // units available for sale, >= 0
	TCDBPrice       *float64 `json:"tcdb_price"`        // source reference price; nil = unknown
	TCDBPriceSource string   `json:"tcdb_price_source"` // provenance tag, informational only
}

// MergeKey identifies a listing during ingestion merge. First occurrence
// across sources wins; later duplicates are discarded.
func (l *CardListing) MergeKey() string {
	return l.Sport + "|" + l.CardURL
}

// SelectionKey is the finer identity used by the cart and the quantity
// override store. CardURL can be empty for manually entered cards, so the
// extra descriptive fields reduce collision risk. Two listings differing
// only in player/team still collide; the source data never disambiguates
// that case.
func (l *CardListing) SelectionKey() string {
	return strings.Join([]string{l.Sport, l.CardURL, l.SetName, l.CardNumber, l.CardName}, "|")
}

// SearchText is the lowercased haystack the free-text filter matches against.
func (l *CardListing) SearchText() string {
	return strings.ToLower(l.SetName + " " + l.CardNumber + " " + l.CardName + " " + l.Player + " " + l.Team)
}

// DisplayName falls back from card name to player name for cards that were
// entered with only a player field.
func (l *CardListing) DisplayName() string {
	if l.CardName != "" {
		return l.CardName
	}
	if l.Player != "" {
		return l.Player
	}
	return "(unnamed card)"
}
