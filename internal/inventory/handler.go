package inventory

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cardstore/internal/catalog"
	"cardstore/internal/order"
	"cardstore/internal/pricing"
	synchub "cardstore/internal/sync"
	"cardstore/pkg/models"
)

type Handler struct {
	State       *State
	Hub         *synchub.Hub
	SellerEmail string
}

func NewHandler(state *State, hub *synchub.Hub, sellerEmail string) *Handler {
	return &Handler{State: state, Hub: hub, SellerEmail: sellerEmail}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	cards := r.Group("/cards")
	cards.GET("", h.list)
	cards.GET("/sports", h.sports)
	cards.POST("/reload", h.reload)

	cartGroup := r.Group("/cart")
	cartGroup.GET("", h.cartList)
	cartGroup.PUT("/items", h.cartSet)
	cartGroup.DELETE("", h.cartClear)

	orderGroup := r.Group("/order")
	orderGroup.GET("/summary", h.orderSummary)
	orderGroup.GET("/csv", h.orderCSV)
	orderGroup.GET("/email", h.orderEmail)
	orderGroup.POST("/finalize", h.finalize)
}

// listedCard is a catalog row plus its derived sale price and the
// current selection, so clients never recompute policy themselves.
type listedCard struct {
	models.CardListing
	Key         string   `json:"key"`
	MyPrice     *float64 `json:"my_price"`
	SelectedQty int      `json:"selected_qty"`
}

func (h *Handler) list(c *gin.Context) {
	q := catalog.ListQuery{
		Q:            c.Query("q"),
		Sport:        c.Query("sport"),
		MinPrice:     parseFloat(c.Query("min_price")),
		MaxPrice:     parseFloat(c.Query("max_price")),
		MinQty:       parseIntPtr(c.Query("min_qty")),
		InStockOnly:  parseBool(c.Query("in_stock")),
		SelectedOnly: parseBool(c.Query("selected")),
		SortBy:       c.Query("sort"),
		Page:         parseInt(c.Query("page"), 1),
		PageSize:     parseInt(c.Query("page_size"), 0),
	}

	page := h.State.Query(q)

	items := make([]listedCard, 0, len(page.Items))
	for i := range page.Items {
		r := &page.Items[i]
		items = append(items, listedCard{
			CardListing: *r,
			Key:         r.SelectionKey(),
			MyPrice:     pricing.InternalPrice(r.TCDBPrice),
			SelectedQty: h.State.cart.QtyFor(r),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      page.Total,
		"units":      page.Units,
		"page":       page.Page,
		"pages":      page.Pages,
		"page_size":  page.PageSize,
		"total_rows": h.State.TotalRows(),
		"items":      items,
	})
}

func (h *Handler) sports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sports": h.State.Sports()})
}

func (h *Handler) reload(c *gin.Context) {
	res, err := h.State.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrLoadInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "load already in progress"})
			return
		}
		var noData *catalog.NoDataError
		if errors.As(err, &noData) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    "no catalog data loaded",
				"attempts": noData.Attempts,
				"failed":   noData.Total,
				"failures": noData.Failures,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	if h.Hub != nil {
		ev := synchub.Event{
			Type:    synchub.EventCatalogLoaded,
			Cards:   len(res.Rows),
			Sources: len(res.Sources),
			At:      time.Now().UTC(),
		}
		go h.Hub.Broadcast(ev)
	}

	c.JSON(http.StatusOK, gin.H{
		"cards":    len(res.Rows),
		"sources":  res.Sources,
		"failures": res.Failures,
	})
}

func (h *Handler) cartList(c *gin.Context) {
	rows := h.State.SelectedRows()
	t := order.Tally(rows, c.Query("shipping"))
	c.JSON(http.StatusOK, gin.H{
		"items":  rows,
		"totals": t,
	})
}

type cartSetReq struct {
	Key string `json:"key"`
	Qty int    `json:"qty"`
}

func (h *Handler) cartSet(c *gin.Context) {
	var req cartSetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}

	applied, ok := h.State.SetQty(req.Key, req.Qty)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown card"})
		return
	}

	if h.Hub != nil {
		ev := synchub.Event{
			Type: synchub.EventCartUpdate,
			Key:  req.Key,
			Qty:  applied,
			At:   time.Now().UTC(),
		}
		go h.Hub.Broadcast(ev)
	}

	c.JSON(http.StatusOK, gin.H{"key": req.Key, "qty": applied})
}

func (h *Handler) cartClear(c *gin.Context) {
	h.State.ClearCart()

	if h.Hub != nil {
		go h.Hub.Broadcast(synchub.Event{Type: synchub.EventCartClear, At: time.Now().UTC()})
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

func buyerFromQuery(c *gin.Context) models.BuyerInfo {
	return models.BuyerInfo{
		Name:    c.Query("name"),
		Email:   c.Query("email"),
		Payment: c.Query("payment"),
		Notes:   c.Query("notes"),
	}
}

func (h *Handler) orderSummary(c *gin.Context) {
	summary := h.State.Summary(buyerFromQuery(c), c.Query("shipping"))
	c.String(http.StatusOK, summary)
}

func (h *Handler) orderCSV(c *gin.Context) {
	filename := order.CSVFilename(time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(h.State.CSV()))
}

// orderEmail hands back a pre-addressed mailto URL; opening it is the
// caller's job.
func (h *Handler) orderEmail(c *gin.Context) {
	summary := h.State.Summary(buyerFromQuery(c), c.Query("shipping"))
	subject := "Card Order Request"
	c.JSON(http.StatusOK, gin.H{
		"subject": subject,
		"body":    summary,
		"mailto":  mailtoURL("", subject, summary),
	})
}

type finalizeReq struct {
	Confirm  bool   `json:"confirm"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Payment  string `json:"payment"`
	Shipping string `json:"shipping"`
	Notes    string `json:"notes"`
}

func (h *Handler) finalize(c *gin.Context) {
	var req finalizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "finalize requires confirm: true"})
		return
	}

	buyer := models.BuyerInfo{Name: req.Name, Email: req.Email, Payment: req.Payment, Notes: req.Notes}
	res, err := h.State.Finalize(c.Request.Context(), buyer, req.Shipping)
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			c.JSON(http.StatusConflict, gin.H{"error": "no cards selected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "finalize failed"})
		return
	}

	if h.Hub != nil {
		ev := synchub.Event{
			Type:    synchub.EventSaleFinalized,
			OrderID: res.OrderID,
			Cards:   res.Cards,
			Units:   res.Units,
			At:      time.Now().UTC(),
		}
		go h.Hub.Broadcast(ev)
	}

	body := res.Summary + "\n\nInventory has been reduced locally in the store app."
	c.JSON(http.StatusOK, gin.H{
		"order_id": res.OrderID,
		"cards":    res.Cards,
		"units":    res.Units,
		"summary":  res.Summary,
		"mailto":   mailtoURL(h.SellerEmail, "New Card Order To Fulfill", body),
	})
}

func mailtoURL(to, subject, body string) string {
	// mail clients want percent-encoded spaces, not '+'
	esc := func(s string) string {
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	}
	return "mailto:" + to + "?subject=" + esc(subject) + "&body=" + esc(body)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseIntPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
