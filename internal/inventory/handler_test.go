package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *State) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := newTestState(memKV{})
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	r := gin.New()
	NewHandler(s, nil, "seller@example.com").RegisterRoutes(r)
	return r, s
}

func do(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListCards(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/cards?sport=hockey&sort=qty_desc", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w)
	assert.EqualValues(t, 2, got["total"])
	assert.EqualValues(t, 8, got["units"])
	assert.EqualValues(t, 3, got["total_rows"])

	items := got["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Wayne Gretzky", first["card_name"])
	assert.NotEmpty(t, first["key"])
	assert.InDelta(t, 1.70, first["my_price"].(float64), 1e-9)
	assert.EqualValues(t, 0, first["selected_qty"])
}

func TestListSports(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/cards/sports", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sports":["Baseball","Hockey"]}`, w.Body.String())
}

func TestCartRoundTrip(t *testing.T) {
	r, s := newTestRouter(t)
	key := keyFor(s, "u1")

	body, _ := json.Marshal(map[string]any{"key": key, "qty": 99})
	w := do(r, http.MethodPut, "/cart/items", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 5, got["qty"]) // clamped to stock

	w = do(r, http.MethodGet, "/cart?shipping=PWE", "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)
	totals := got["totals"].(map[string]any)
	assert.EqualValues(t, 1, totals["cards"])
	assert.EqualValues(t, 5, totals["units"])

	w = do(r, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.CartSnapshot())
}

func TestCartSetUnknownKey(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPut, "/cart/items", `{"key":"no|such|key","qty":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartSetRequiresKey(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPut, "/cart/items", `{"qty":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderSummaryRoute(t *testing.T) {
	r, s := newTestRouter(t)
	s.SetQty(keyFor(s, "u1"), 2)

	w := do(r, http.MethodGet, "/order/summary?name=Pat&shipping=PWE", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "TCDB CARD ORDER REQUEST"))
	assert.Contains(t, w.Body.String(), "Buyer: Pat")
}

func TestOrderCSVRoute(t *testing.T) {
	r, s := newTestRouter(t)
	s.SetQty(keyFor(s, "u1"), 1)

	w := do(r, http.MethodGet, "/order/csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "tcdb-order-")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "Wayne Gretzky")
}

func TestFinalizeRequiresConfirm(t *testing.T) {
	r, s := newTestRouter(t)
	s.SetQty(keyFor(s, "u1"), 1)

	w := do(r, http.MethodPost, "/order/finalize", `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinalizeEmptyCartConflicts(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/order/finalize", `{"confirm":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFinalizeCommitsSale(t *testing.T) {
	r, s := newTestRouter(t)
	s.SetQty(keyFor(s, "u1"), 3)

	w := do(r, http.MethodPost, "/order/finalize", `{"confirm":true,"name":"Pat","shipping":"PWE"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.NotEmpty(t, got["order_id"])
	assert.EqualValues(t, 1, got["cards"])
	assert.EqualValues(t, 3, got["units"])
	assert.Contains(t, got["mailto"], "mailto:seller@example.com?subject=")
	assert.NotContains(t, got["mailto"], "+")

	assert.Empty(t, s.CartSnapshot())
}

func TestMailtoURL(t *testing.T) {
	got := mailtoURL("a@b.c", "Card Order Request", "line one\nline two")
	assert.Equal(t, "mailto:a@b.c?subject=Card%20Order%20Request&body=line%20one%0Aline%20two", got)
}
