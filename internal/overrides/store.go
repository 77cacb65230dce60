package overrides

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sync"

	"cardstore/pkg/models"
)

// StorageKey is the single logical key the whole override mapping lives
// under. Versioned so a future format change can start clean.
const StorageKey = "tcdb_inventory_qty_overrides_v1"

// KV is the persisted key-value capability the store needs. The sqlite
// implementation lives in pkg/database; tests inject a map.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store is the persisted mapping from selection key to corrected
// quantity. It is written only when a sale is finalized and applied on
// every catalog load, so a sold-out card stays sold out across reloads no
// matter what the source files say. Entries are never removed; stale keys
// for listings that no longer exist are harmless.
//
// Persistence failures degrade to in-memory-only behavior. They are
// logged and swallowed, never surfaced: the session state stays correct
// either way.
type Store struct {
	kv KV

	mu      sync.Mutex
	entries map[string]int
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, entries: make(map[string]int)}
}

// Load reads the persisted mapping. Absent or corrupt data means "no
// overrides"; it never fails upward.
func (s *Store) Load(ctx context.Context) {
	entries := make(map[string]int)
	defer func() {
		s.mu.Lock()
		s.entries = entries
		s.mu.Unlock()
	}()

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		log.Printf("[overrides] load failed, starting empty: %v", err)
		return
	}
	if !ok || raw == "" {
		return
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("[overrides] corrupt override data ignored: %v", err)
		return
	}
	for k, v := range parsed {
		entries[k] = clampQty(v)
	}
}

// Save writes the full mapping back, overwriting prior contents.
func (s *Store) Save(ctx context.Context) {
	s.mu.Lock()
	payload, err := json.Marshal(s.entries)
	s.mu.Unlock()
	if err != nil {
		log.Printf("[overrides] marshal failed: %v", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(payload)); err != nil {
		log.Printf("[overrides] persist failed, keeping in-memory state: %v", err)
	}
}

// Set records a corrected quantity, floored and clamped to >= 0.
func (s *Store) Set(key string, qty int) {
	if qty < 0 {
		qty = 0
	}
	s.mu.Lock()
	s.entries[key] = qty
	s.mu.Unlock()
}

// Get reports the stored quantity for a selection key.
func (s *Store) Get(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qty, ok := s.entries[key]
	return qty, ok
}

// Apply replaces the quantity of every listing whose selection key has an
// override. Listings without one are untouched.
func (s *Store) Apply(rows []models.CardListing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range rows {
		if qty, ok := s.entries[rows[i].SelectionKey()]; ok {
			rows[i].Quantity = qty
		}
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func clampQty(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Floor(v))
}
