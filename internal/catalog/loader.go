package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cardstore/pkg/models"
)

const failureSampleCap = 3

// NoDataError is the fatal load outcome: every source failed on every
// attempt. It carries a capped sample of per-source failure reasons for
// diagnostics.
type NoDataError struct {
	Attempts int
	Total    int      // total failed sources on the last attempt
	Failures []string // sample, at most failureSampleCap entries
}

func (e *NoDataError) Error() string {
	msg := fmt.Sprintf("no catalog data loaded after %d attempts", e.Attempts)
	if len(e.Failures) > 0 {
		msg += ": " + strings.Join(e.Failures, "; ")
	}
	return msg
}

// Result is one successful load: the merged catalog plus which sources
// contributed and which failed.
type Result struct {
	Rows     []models.CardListing
	Sources  []string
	Failures []string
}

// Loader orchestrates enumerate -> fetch+parse -> merge. A failing source
// is recorded and skipped; only an attempt that yields zero listings is
// retried, and only total failure across all attempts is an error.
type Loader struct {
	Enum     Enumerator
	Fetch    Fetcher
	Attempts int           // total attempts, default 3
	Backoff  time.Duration // delay grows linearly: Backoff, 2*Backoff, ...
}

func NewLoader(enum Enumerator, fetch Fetcher) *Loader {
	return &Loader{
		Enum:     enum,
		Fetch:    fetch,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

// Load runs the full pipeline. The caller is responsible for not running
// two loads concurrently; results of a load it abandoned must be
// discarded, there is no cancellation beyond ctx.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	attempts := l.Attempts
	if attempts <= 0 {
		attempts = 3
	}

	var lastFailures []string
	for attempt := 1; attempt <= attempts; attempt++ {
		addrs := l.Enum.Enumerate(ctx)
		perSource, sources, failures := l.fetchAll(ctx, addrs)
		lastFailures = failures

		if len(sources) > 0 {
			rows := Merge(perSource)
			log.Printf("[loader] loaded %d cards from %d file(s), %d failed", len(rows), len(sources), len(failures))
			return &Result{Rows: rows, Sources: sources, Failures: failures}, nil
		}

		if attempt < attempts {
			log.Printf("[loader] no sources loaded, retrying (%d/%d)", attempt, attempts-1)
			select {
			case <-time.After(l.Backoff * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	sample := lastFailures
	if len(sample) > failureSampleCap {
		sample = sample[:failureSampleCap]
	}
	return nil, &NoDataError{Attempts: attempts, Total: len(lastFailures), Failures: sample}
}

// fetchAll fetches and normalizes every address concurrently. Results
// keep enumeration order; the merge depends on it.
func (l *Loader) fetchAll(ctx context.Context, addrs []string) (perSource [][]models.CardListing, sources, failures []string) {
	type outcome struct {
		rows []models.CardListing
		err  error
	}
	outcomes := make([]outcome, len(addrs))

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			data, err := l.Fetch.Fetch(ctx, addr)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return
			}
			rows, err := Normalize(data)
			outcomes[i] = outcome{rows: rows, err: err}
		}(i, addr)
	}
	wg.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, fmt.Sprintf("%s (%v)", addrs[i], o.err))
			continue
		}
		perSource = append(perSource, o.rows)
		sources = append(sources, addrs[i])
	}
	return perSource, sources, failures
}
