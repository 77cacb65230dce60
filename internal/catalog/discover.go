package catalog

import (
	"context"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FallbackSources is the fixed list of known inventory filenames, used
// whenever discovery fails. Enumeration order matters: canonical
// tcdb_inventory files come before the manual additions file so they win
// the ingestion merge.
var FallbackSources = []string{
	"tcdb_inventory_baseball.json",
	"tcdb_inventory_basketball.json",
	"tcdb_inventory_football.json",
	"tcdb_inventory_gaming.json",
	"tcdb_inventory_golf.json",
	"tcdb_inventory_hockey.json",
	"tcdb_inventory_mma.json",
	"tcdb_inventory_multi-sport.json",
	"tcdb_inventory_non-sport.json",
	"tcdb_inventory_racing.json",
	"tcdb_inventory_socce.json",
	"manual_cards.json",
}

// Enumerator lists the resource addresses likely to contain catalog JSON,
// in priority order. Implementations degrade to FallbackSources on any
// failure instead of returning an error.
type Enumerator interface {
	Enumerate(ctx context.Context) []string
}

var hrefJSON = regexp.MustCompile(`(?i)href="([^"]+\.json)"`)

// HTTPEnumerator scrapes .json links out of a directory listing served at
// BaseURL. Works against data-server or any plain file server that still
// renders an index page.
type HTTPEnumerator struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPEnumerator(baseURL string) *HTTPEnumerator {
	return &HTTPEnumerator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *HTTPEnumerator) Enumerate(ctx context.Context) []string {
	fallback := prefix(FallbackSources, e.BaseURL+"/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/", nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := e.Client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallback
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallback
	}

	var names []string
	seen := make(map[string]struct{})
	for _, m := range hrefJSON.FindAllStringSubmatch(string(body), -1) {
		name := m[1]
		// strip query/fragment, refuse path escapes
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		if name == "" || strings.Contains(name, "..") {
			continue
		}
		name = path.Base(name)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return fallback
	}

	sortPreferred(names)
	return prefix(names, e.BaseURL+"/")
}

// DirEnumerator lists *.json files in a local data directory.
type DirEnumerator struct {
	Dir string
}

func NewDirEnumerator(dir string) *DirEnumerator {
	return &DirEnumerator{Dir: dir}
}

func (e *DirEnumerator) Enumerate(ctx context.Context) []string {
	entries, err := os.ReadDir(e.Dir)
	if err != nil {
		return joinAll(e.Dir, FallbackSources)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return joinAll(e.Dir, FallbackSources)
	}

	sortPreferred(names)
	return joinAll(e.Dir, names)
}

// sortPreferred orders canonical inventory files first, then the manual
// cards file, then everything else. Discovered order is kept within each
// group; the merge is order-dependent, so re-sorting inside a group
// could change which copy of a duplicate card wins.
func sortPreferred(names []string) {
	rank := func(n string) int {
		switch {
		case strings.HasPrefix(n, "tcdb_inventory"):
			return 0
		case n == "manual_cards.json":
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return rank(names[i]) < rank(names[j])
	})
}

func prefix(names []string, base string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = base + n
	}
	return out
}

func joinAll(dir string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out
}
