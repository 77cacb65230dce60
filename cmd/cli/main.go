package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"cardstore/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type listedCard struct {
	models.CardListing
	Key         string   `json:"key"`
	MyPrice     *float64 `json:"my_price"`
	SelectedQty int      `json:"selected_qty"`
}

type cardListResponse struct {
	Total     int          `json:"total"`
	Units     int          `json:"units"`
	Page      int          `json:"page"`
	Pages     int          `json:"pages"`
	PageSize  int          `json:"page_size"`
	TotalRows int          `json:"total_rows"`
	Items     []listedCard `json:"items"`
}

func main() {
	global := flag.NewFlagSet("cardstore", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "cards":
		handleCards(ctx, client, *baseURL, sub, args[2:])
	case "cart":
		handleCart(ctx, client, *baseURL, sub, args[2:])
	case "order":
		handleOrder(ctx, client, *baseURL, sub, args[2:])
	case "watch":
		handleWatch(*baseURL, args[1:])
	case "export":
		handleExport(ctx, client, *baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleCards(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "search":
		fs := flag.NewFlagSet("cards search", flag.ExitOnError)
		query := fs.String("q", "", "free-text search")
		sport := fs.String("sport", "", "sport filter")
		minPrice := fs.String("min-price", "", "minimum derived price")
		maxPrice := fs.String("max-price", "", "maximum derived price")
		minQty := fs.String("min-qty", "", "minimum available quantity")
		inStock := fs.Bool("in-stock", false, "in stock only")
		selected := fs.Bool("selected", false, "selected only")
		sortBy := fs.String("sort", "", "sort mode")
		page := fs.Int("page", 1, "page number")
		pageSize := fs.Int("page-size", 0, "page size (0 = server default)")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/cards")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		setIf(qv, "q", *query)
		setIf(qv, "sport", *sport)
		setIf(qv, "min_price", *minPrice)
		setIf(qv, "max_price", *maxPrice)
		setIf(qv, "min_qty", *minQty)
		setIf(qv, "sort", *sortBy)
		if *inStock {
			qv.Set("in_stock", "1")
		}
		if *selected {
			qv.Set("selected", "1")
		}
		qv.Set("page", fmt.Sprintf("%d", *page))
		if *pageSize > 0 {
			qv.Set("page_size", fmt.Sprintf("%d", *pageSize))
		}
		u.RawQuery = qv.Encode()

		var resp cardListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "sports":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/cards/sports", nil, &resp); err != nil {
			log.Fatalf("sports failed: %v", err)
		}
		printJSON(resp)
	case "reload":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/cards/reload", nil, &resp); err != nil {
			log.Fatalf("reload failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: cardstore cards <search|sports|reload>")
	}
}

func handleCart(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "set":
		fs := flag.NewFlagSet("cart set", flag.ExitOnError)
		key := fs.String("key", "", "selection key (from cards search)")
		qty := fs.Int("qty", 0, "requested quantity (0 removes)")
		_ = fs.Parse(args)
		if *key == "" {
			log.Fatal("key is required")
		}

		payload := map[string]any{"key": *key, "qty": *qty}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/cart/items", payload, &resp); err != nil {
			log.Fatalf("set failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("cart list", flag.ExitOnError)
		shippingMethod := fs.String("shipping", "", "shipping method for totals")
		_ = fs.Parse(args)

		u := baseURL + "/cart"
		if *shippingMethod != "" {
			u += "?shipping=" + url.QueryEscape(*shippingMethod)
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "clear":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/cart", nil, &resp); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: cardstore cart <set|list|clear>")
	}
}

func buyerFlags(fs *flag.FlagSet) (name, email, payment, shippingMethod, notes *string) {
	name = fs.String("name", "", "buyer name")
	email = fs.String("email", "", "buyer email")
	payment = fs.String("payment", "", "payment method")
	shippingMethod = fs.String("shipping", "", "shipping method (Local pickup, PWE, BMWT)")
	notes = fs.String("notes", "", "order notes")
	return
}

func buyerQuery(name, email, payment, shippingMethod, notes string) url.Values {
	qv := url.Values{}
	setIf(qv, "name", name)
	setIf(qv, "email", email)
	setIf(qv, "payment", payment)
	setIf(qv, "shipping", shippingMethod)
	setIf(qv, "notes", notes)
	return qv
}

func handleOrder(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "preview":
		fs := flag.NewFlagSet("order preview", flag.ExitOnError)
		name, email, payment, shippingMethod, notes := buyerFlags(fs)
		_ = fs.Parse(args)

		body, err := doText(ctx, client, baseURL+"/order/summary?"+buyerQuery(*name, *email, *payment, *shippingMethod, *notes).Encode())
		if err != nil {
			log.Fatalf("preview failed: %v", err)
		}
		fmt.Println(body)
	case "csv":
		fs := flag.NewFlagSet("order csv", flag.ExitOnError)
		out := fs.String("out", "", "output path (default: print to stdout)")
		_ = fs.Parse(args)

		body, err := doText(ctx, client, baseURL+"/order/csv")
		if err != nil {
			log.Fatalf("csv failed: %v", err)
		}
		if *out == "" {
			fmt.Print(body)
			return
		}
		if err := writeFile(*out, []byte(body)); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("✅ order CSV written to %s", *out)
	case "email":
		fs := flag.NewFlagSet("order email", flag.ExitOnError)
		name, email, payment, shippingMethod, notes := buyerFlags(fs)
		_ = fs.Parse(args)

		var resp map[string]any
		u := baseURL + "/order/email?" + buyerQuery(*name, *email, *payment, *shippingMethod, *notes).Encode()
		if err := doJSON(ctx, client, http.MethodGet, u, nil, &resp); err != nil {
			log.Fatalf("email failed: %v", err)
		}
		printJSON(resp)
	case "finalize":
		fs := flag.NewFlagSet("order finalize", flag.ExitOnError)
		name, email, payment, shippingMethod, notes := buyerFlags(fs)
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		_ = fs.Parse(args)

		if !*yes && !confirmFinalize(ctx, client, baseURL) {
			fmt.Println("aborted")
			return
		}

		payload := map[string]any{
			"confirm":  true,
			"name":     *name,
			"email":    *email,
			"payment":  *payment,
			"shipping": *shippingMethod,
			"notes":    *notes,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/order/finalize", payload, &resp); err != nil {
			log.Fatalf("finalize failed: %v", err)
		}
		printJSON(resp)
		log.Println("✅ sale finalized, inventory reduced locally")
	default:
		log.Fatal("usage: cardstore order <preview|csv|email|finalize>")
	}
}

// confirmFinalize shows what is about to be sold and asks for an
// explicit yes. Finalize reduces inventory, so no silent commits.
func confirmFinalize(ctx context.Context, client *http.Client, baseURL string) bool {
	var cartResp struct {
		Totals struct {
			Cards int `json:"cards"`
			Units int `json:"units"`
		} `json:"totals"`
	}
	if err := doJSON(ctx, client, http.MethodGet, baseURL+"/cart", nil, &cartResp); err != nil {
		log.Fatalf("cart lookup failed: %v", err)
	}
	if cartResp.Totals.Cards == 0 {
		log.Fatal("no cards selected")
	}

	fmt.Printf("Finalize sale for %d card(s) / %d unit(s)? This reduces available inventory. [y/N] ",
		cartResp.Totals.Cards, cartResp.Totals.Units)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	addr := fs.String("addr", "", "TCP feed address (default: WebSocket on the API host)")
	pretty := fs.Bool("pretty", true, "pretty print JSON events")
	_ = fs.Parse(args)

	if *addr != "" {
		for {
			if err := runFeedTCP(*addr, *pretty); err != nil {
				log.Printf("[watch] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	}

	endpoint, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("ws url: %v", err)
	}
	if err := runWebSocket(endpoint); err != nil {
		log.Fatalf("watch failed: %v", err)
	}
}

func handleExport(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/cards.json", "output JSON path")
		limit := fs.Int("limit", 1000, "max cards to export")
		_ = fs.Parse(args)

		items, err := fetchCards(ctx, client, baseURL, *limit)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		b, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			log.Fatalf("marshal failed: %v", err)
		}
		if err := writeFile(*out, b); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("✅ exported %d cards to %s", len(items), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/cards.csv", "output CSV path")
		limit := fs.Int("limit", 1000, "max cards to export")
		_ = fs.Parse(args)

		items, err := fetchCards(ctx, client, baseURL, *limit)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCardsCSV(*out, items); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("✅ exported %d cards to %s", len(items), *out)
	default:
		log.Fatal("usage: cardstore export <json|csv>")
	}
}

func runFeedTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func fetchCards(ctx context.Context, client *http.Client, baseURL string, limit int) ([]listedCard, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	var out []listedCard
	page := 1
	for len(out) < limit {
		u, err := url.Parse(baseURL + "/cards")
		if err != nil {
			return nil, err
		}
		qv := u.Query()
		qv.Set("page", fmt.Sprintf("%d", page))
		qv.Set("page_size", "100")
		u.RawQuery = qv.Encode()

		var resp cardListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			break
		}
		out = append(out, resp.Items...)
		if page >= resp.Pages {
			break
		}
		page++
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func writeCardsCSV(path string, items []listedCard) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"key", "card_name", "player", "sport", "set_name", "card_number", "quantity", "my_price", "card_url",
	}); err != nil {
		return err
	}
	for _, item := range items {
		myPrice := ""
		if item.MyPrice != nil {
			myPrice = fmt.Sprintf("%.2f", *item.MyPrice)
		}
		if err := writer.Write([]string{
			item.Key,
			item.CardName,
			item.Player,
			item.Sport,
			item.SetName,
			item.CardNumber,
			fmt.Sprintf("%d", item.Quantity),
			myPrice,
			item.CardURL,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func doText(ctx context.Context, client *http.Client, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s failed: %s", endpoint, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("cardstore <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  cards search|sports|reload")
	fmt.Println("  cart set|list|clear")
	fmt.Println("  order preview|csv|email|finalize")
	fmt.Println("  watch [-addr host:port]")
	fmt.Println("  export json|csv")
}

func setIf(qv url.Values, key, val string) {
	if val != "" {
		qv.Set(key, val)
	}
}
