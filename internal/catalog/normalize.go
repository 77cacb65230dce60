package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"cardstore/pkg/models"
)

// ErrMalformedPayload marks a source file whose JSON lacks the expected
// cards array. The loader skips such sources; they are never fatal on
// their own.
var ErrMalformedPayload = errors.New("payload missing cards array")

// Normalize maps one raw source payload into canonical listings.
//
// Expected shape:
//
//	{
//	  "source": { "sport": "Baseball" },   // optional
//	  "cards": [ { ...loosely typed... } ] // required
//	}
//
// Every descriptive field defaults to "" when missing or not a string.
// quantity defaults to 1 when missing or unparseable. tcdb_price stays
// unknown (nil) when the source value is null or not a number; it is
// never defaulted. A blank per-record sport falls back to the
// payload-level source sport.
func Normalize(data []byte) ([]models.CardListing, error) {
	var payload struct {
		Source *struct {
			Sport string `json:"sport"`
		} `json:"source"`
		Cards *json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Cards == nil {
		return nil, ErrMalformedPayload
	}

	var raw []map[string]any
	if err := json.Unmarshal(*payload.Cards, &raw); err != nil {
		return nil, fmt.Errorf("%w: cards is not an array", ErrMalformedPayload)
	}

	sourceSport := ""
	if payload.Source != nil {
		sourceSport = payload.Source.Sport
	}

	out := make([]models.CardListing, 0, len(raw))
	for _, r := range raw {
		l := models.CardListing{
			CardURL:         asString(r["card_url"]),
			Sport:           asString(r["sport"]),
			SetName:         asString(r["set_name"]),
			CardNumber:      asString(r["card_number"]),
			CardName:        asString(r["card_name"]),
			Player:          asString(r["player"]),
			Team:            asString(r["team"]),
			Quantity:        int(asNum(r["quantity"], 1)),
			TCDBPrice:       asPrice(r["tcdb_price"]),
			TCDBPriceSource: asString(r["tcdb_price_source"]),
		}
		if l.Sport == "" {
			l.Sport = sourceSport
		}
		if l.Quantity < 0 {
			l.Quantity = 0
		}
		out = append(out, l)
	}
	return out, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asNum accepts JSON numbers and numeric strings; anything else yields
// the fallback.
func asNum(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

// asPrice keeps null / non-numeric source prices as explicitly unknown.
func asPrice(v any) *float64 {
	if v == nil {
		return nil
	}
	const sentinel = math.MaxFloat64
	f := asNum(v, sentinel)
	if f == sentinel {
		return nil
	}
	return &f
}
