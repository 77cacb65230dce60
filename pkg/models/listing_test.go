package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	l := CardListing{
		Sport: "Hockey", CardURL: "https://example.com/1",
		SetName: "1990 Topps", CardNumber: "1", CardName: "Wayne Gretzky",
	}

	assert.Equal(t, "Hockey|https://example.com/1", l.MergeKey())
	assert.Equal(t, "Hockey|https://example.com/1|1990 Topps|1|Wayne Gretzky", l.SelectionKey())
}

func TestSearchTextExcludesSport(t *testing.T) {
	l := CardListing{Sport: "Hockey", SetName: "1990 Topps", CardName: "Wayne Gretzky", Player: "Wayne Gretzky", Team: "Oilers"}
	got := l.SearchText()
	assert.Contains(t, got, "1990 topps")
	assert.Contains(t, got, "oilers")
	assert.NotContains(t, got, "hockey")
}

func TestDisplayNameFallback(t *testing.T) {
	assert.Equal(t, "Wayne Gretzky", (&CardListing{CardName: "Wayne Gretzky", Player: "x"}).DisplayName())
	assert.Equal(t, "Cal Ripken", (&CardListing{Player: "Cal Ripken"}).DisplayName())
	assert.Equal(t, "(unnamed card)", (&CardListing{}).DisplayName())
}
