package catalog

import "cardstore/pkg/models"

// Merge deduplicates listings from multiple sources into one catalog.
//
// Sources arrive in enumeration order, which puts canonical inventory
// files before ad hoc ones, so first-write-wins makes the canonical copy
// of a card beat any manual re-entry of the same card. Output keeps
// first-seen order. An empty input yields an empty catalog.
func Merge(sources [][]models.CardListing) []models.CardListing {
	seen := make(map[string]struct{})
	var out []models.CardListing

	for _, rows := range sources {
		for _, r := range rows {
			key := r.MergeKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
