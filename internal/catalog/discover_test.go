package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPEnumeratorScrapesIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<a href="manual_cards.json">manual</a>
			<a href="tcdb_inventory_hockey.json?v=2">hockey</a>
			<a href="notes.txt">skip</a>
			<a href="../escape.json">skip</a>
			<a href="extra.json">extra</a>
			<a href="manual_cards.json">dupe</a>
		</body></html>`))
	}))
	defer srv.Close()

	got := NewHTTPEnumerator(srv.URL).Enumerate(context.Background())
	require.Len(t, got, 3)
	// canonical inventory first, then manual, then the rest
	assert.Equal(t, srv.URL+"/tcdb_inventory_hockey.json", got[0])
	assert.Equal(t, srv.URL+"/manual_cards.json", got[1])
	assert.Equal(t, srv.URL+"/extra.json", got[2])
}

func TestHTTPEnumeratorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := NewHTTPEnumerator(srv.URL).Enumerate(context.Background())
	require.Len(t, got, len(FallbackSources))
	assert.Equal(t, srv.URL+"/tcdb_inventory_baseball.json", got[0])
	assert.Equal(t, srv.URL+"/manual_cards.json", got[len(got)-1])
}

func TestDirEnumerator(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"extra.json", "tcdb_inventory_hockey.json", "manual_cards.json", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}

	got := NewDirEnumerator(dir).Enumerate(context.Background())
	require.Len(t, got, 3)
	assert.Equal(t, filepath.Join(dir, "tcdb_inventory_hockey.json"), got[0])
	assert.Equal(t, filepath.Join(dir, "manual_cards.json"), got[1])
	assert.Equal(t, filepath.Join(dir, "extra.json"), got[2])
}

func TestSortPreferredKeepsDiscoveredOrderWithinGroups(t *testing.T) {
	names := []string{
		"zz.json",
		"tcdb_inventory_z.json",
		"manual_cards.json",
		"aa.json",
		"tcdb_inventory_a.json",
	}
	sortPreferred(names)

	// groups move, but order inside each group is the discovered order
	assert.Equal(t, []string{
		"tcdb_inventory_z.json",
		"tcdb_inventory_a.json",
		"manual_cards.json",
		"zz.json",
		"aa.json",
	}, names)
}

func TestDirEnumeratorMissingDirFallsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	got := NewDirEnumerator(dir).Enumerate(context.Background())
	require.Len(t, got, len(FallbackSources))
	assert.Equal(t, filepath.Join(dir, "tcdb_inventory_baseball.json"), got[0])
}
