package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardstore/pkg/models"
)

func listing(sport, url, name string, qty int) models.CardListing {
	return models.CardListing{Sport: sport, CardURL: url, CardName: name, Quantity: qty}
}

func TestMergeFirstSourceWins(t *testing.T) {
	canonical := listing("Hockey", "https://example.com/1", "From canonical file", 4)
	manual := listing("Hockey", "https://example.com/1", "From manual file", 99)

	merged := Merge([][]models.CardListing{
		{canonical},
		{manual},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "From canonical file", merged[0].CardName)
	assert.Equal(t, 4, merged[0].Quantity)
}

func TestMergeKeepsFirstSeenOrder(t *testing.T) {
	merged := Merge([][]models.CardListing{
		{listing("Hockey", "u1", "a", 1), listing("Hockey", "u2", "b", 1)},
		{listing("Baseball", "u1", "c", 1), listing("Hockey", "u1", "dupe", 1)},
	})

	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].CardName)
	assert.Equal(t, "b", merged[1].CardName)
	// same url but different sport is a different card
	assert.Equal(t, "c", merged[2].CardName)
}

func TestMergeEmptyInput(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([][]models.CardListing{{}, {}}))
}
