package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cardstore/internal/catalog"
	"cardstore/internal/overrides"
	"cardstore/internal/pricing"
	"cardstore/pkg/database"
	"cardstore/pkg/models"
)

// Offline full-inventory snapshot: loads the catalog straight from the
// data directory, applies persisted quantity overrides, and writes CSV
// and JSON exports without needing the api-server running.
func main() {
	var (
		dataDir = flag.String("data", "data", "directory of catalog JSON files")
		csvOut  = flag.String("csv", "data/inventory.csv", "output CSV path")
		jsonOut = flag.String("json", "data/inventory.json", "output JSON path")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	ov := overrides.NewStore(database.NewKV(db))
	ov.Load(ctx)

	loader := catalog.NewLoader(catalog.NewDirEnumerator(*dataDir), catalog.FileFetcher{})
	loader.Attempts = 1 // local files, retrying won't help

	res, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("catalog load failed: %v", err)
	}
	ov.Apply(res.Rows)
	for _, f := range res.Failures {
		log.Printf("skipped source: %s", f)
	}

	if err := exportCSV(*csvOut, res.Rows); err != nil {
		log.Fatalf("export csv failed: %v", err)
	}
	if err := exportJSON(*jsonOut, res.Rows); err != nil {
		log.Fatalf("export json failed: %v", err)
	}

	log.Printf("✅ exported %d cards to %s and %s", len(res.Rows), *csvOut, *jsonOut)
}

func exportCSV(outPath string, rows []models.CardListing) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"card_name", "player", "team", "sport", "set_name", "card_number",
		"quantity", "tcdb_price", "my_price", "tcdb_price_source", "card_url",
	}); err != nil {
		return err
	}

	for i := range rows {
		r := &rows[i]
		tcdb := ""
		if r.TCDBPrice != nil {
			tcdb = fmt.Sprintf("%.2f", *r.TCDBPrice)
		}
		mine := ""
		if p := pricing.InternalPrice(r.TCDBPrice); p != nil {
			mine = fmt.Sprintf("%.2f", *p)
		}

		if err := w.Write([]string{
			r.CardName,
			r.Player,
			r.Team,
			r.Sport,
			r.SetName,
			r.CardNumber,
			fmt.Sprintf("%d", r.Quantity),
			tcdb,
			mine,
			r.TCDBPriceSource,
			r.CardURL,
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(outPath string, rows []models.CardListing) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, b, 0o644)
}
