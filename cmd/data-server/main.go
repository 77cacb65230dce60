package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Serves the local data directory the way a plain static host would:
// an index page with href links to every .json file, plus the files
// themselves. The api-server's HTTP discovery scrapes that index.
func main() {
	var (
		addr    = flag.String("addr", ":9000", "listen address")
		dataDir = flag.String("data", "data", "directory of catalog JSON files")
	)
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			writeIndex(w, *dataDir)
			return
		}

		name := filepath.Base(r.URL.Path)
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			http.NotFound(w, r)
			return
		}

		b, err := os.ReadFile(filepath.Join(*dataDir, name))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		// validate so a bad file doesn't silently break clients
		var tmp any
		if err := json.Unmarshal(b, &tmp); err != nil {
			http.Error(w, name+" invalid JSON: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
	})

	log.Printf("data-server listening on %s, serving %s", *addr, *dataDir)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

func writeIndex(w http.ResponseWriter, dataDir string) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		http.Error(w, "cannot read data dir: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("<html><body><ul>\n")
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`+"\n", entry.Name(), entry.Name())
	}
	b.WriteString("</ul></body></html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
