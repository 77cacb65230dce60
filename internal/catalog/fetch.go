package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Fetcher retrieves the raw bytes of one source address. Implementations
// must bypass caches; the whole point of a reload is to see fresh data.
type Fetcher interface {
	Fetch(ctx context.Context, addr string) ([]byte, error)
}

// HTTPFetcher fetches sources over HTTP with a no-store cache directive.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// FileFetcher reads sources straight off the local filesystem.
type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, addr string) ([]byte, error) {
	b, err := os.ReadFile(addr)
	if err != nil {
		return nil, err
	}
	return b, nil
}
