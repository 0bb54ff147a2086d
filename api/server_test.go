package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/pos"
	"bitbucket.org/mmdatafocus/foodpos/sheetsync"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSync struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSync) Status() sheetsync.Status {
	return sheetsync.Status{Online: true, Configured: true}
}

func (f *fakeSync) SyncNow(context.Context) sheetsync.Status {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.Status()
}

type testServer struct {
	router   *gin.Engine
	terminal *pos.Terminal
	sync     *fakeSync
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	term, err := pos.NewTerminal(context.Background(), pos.Options{
		Store:  store.New(store.NewMemoryStore(), logger),
		Logger: logger,
		Now:    func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	fs := &fakeSync{}
	return &testServer{
		router: NewRouter(Options{
			Terminal: term,
			Sync:     fs,
			Tokens:   utils.NewTokenIssuer("test-secret", time.Hour),
			Logger:   logger,
			Now:      func() time.Time { return fixedNow },
		}),
		terminal: term,
		sync:     fs,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/admin/login", gin.H{"pin": "1234"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthzAndCorrelationId(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get(correlationHeader))

	w = s.do(t, http.MethodGet, "/healthz", nil, correlationHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(correlationHeader))
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/catalog/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Samoussas", "Bonbons piment", "Boissons"}, decode(t, w)["categories"])

	w = s.do(t, http.MethodGet, "/api/catalog/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Samoussas", body["category"])
	assert.Len(t, body["products"], 3)

	w = s.do(t, http.MethodGet, "/api/catalog/products?category=Boissons", nil)
	assert.Len(t, decode(t, w)["products"], 3)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "S-FRO", "qty": "2"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "BO-EAU"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(300), decode(t, w)["total"])

	w = s.do(t, http.MethodPut, "/api/cart/items/BO-EAU", gin.H{"qty": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), decode(t, w)["total"])

	w = s.do(t, http.MethodDelete, "/api/cart/items/S-FRO", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])

	w = s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/cart/items", gin.H{"qty": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"addItemRequest.ProductId": "required"}, decode(t, w)["fields"])
}

func TestCartRoutes_QuantityInput(t *testing.T) {
	s := newTestServer(t)
	qtyOf := func(id string) int {
		for _, l := range s.terminal.CartLines() {
			if l.ProductId == id {
				return l.Quantity
			}
		}
		return 0
	}

	w := s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "S-FRO", "qty": "abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, qtyOf("S-FRO"))

	w = s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "S-POU", "qty": 2.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, qtyOf("S-POU"))

	w = s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "S-POI", "qty": nil})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, qtyOf("S-POI"))

	tests := []struct {
		name string
		body gin.H
		want int
	}{
		{"number", gin.H{"qty": 3}, 3},
		{"decimal is truncated", gin.H{"qty": 2.5}, 2},
		{"non-numeric is ignored", gin.H{"qty": "abc"}, 2},
		{"missing is ignored", gin.H{}, 2},
		{"boolean is ignored", gin.H{"qty": true}, 2},
		{"leading digits", gin.H{"qty": "4 pcs"}, 4},
	}
	for _, tt := range tests {
		w = s.do(t, http.MethodPut, "/api/cart/items/S-FRO", tt.body)
		require.Equal(t, http.StatusOK, w.Code, tt.name)
		assert.Equal(t, tt.want, qtyOf("S-FRO"), tt.name)
	}

	w = s.do(t, http.MethodPut, "/api/cart/items/S-FRO", gin.H{"qty": "0"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, qtyOf("S-FRO"))
	assert.Len(t, s.terminal.CartLines(), 2)
}

func TestCheckoutRoutes_CardSale(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "S-FRO", "qty": 2})
	s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "BO-EAU", "qty": 1})

	w := s.do(t, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(pos.StateAwaitingMode), decode(t, w)["state"])

	w = s.do(t, http.MethodPost, "/api/checkout/mode", gin.H{"mode": "CB"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["can_validate"])

	w = s.do(t, http.MethodPost, "/api/checkout/validate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	sale := body["sale"].(map[string]any)
	assert.Equal(t, float64(300), sale["total_cents"])
	assert.Equal(t, "CB", sale["paiement"])
	assert.Equal(t, false, sale["synced"])
	assert.Len(t, sale["lignes"], 2)
	assert.Equal(t, float64(1), body["pending"])

	w = s.do(t, http.MethodPost, "/api/checkout/validate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, s.terminal.Sales(), 1)
}

func TestCheckoutRoutes_CashNeedsEnough(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "BO-COC", "qty": 1})
	s.do(t, http.MethodPost, "/api/checkout", nil)
	s.do(t, http.MethodPost, "/api/checkout/mode", gin.H{"mode": "cash"})

	w := s.do(t, http.MethodPost, "/api/checkout/tender", gin.H{"received": "2,00"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Insufficient amount.", decode(t, w)["hint"])

	w = s.do(t, http.MethodPost, "/api/checkout/validate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, pos.ErrInsufficientCash.Error(), decode(t, w)["error"])
	assert.Empty(t, s.terminal.Sales())

	w = s.do(t, http.MethodPost, "/api/checkout/tender", gin.H{"received": "5"})
	assert.Equal(t, "Change: 2,50 €", decode(t, w)["hint"])
	w = s.do(t, http.MethodPost, "/api/checkout/validate", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCheckoutRoutes_Errors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/checkout", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w), "checkout")

	s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "BO-COC"})
	w = s.do(t, http.MethodPost, "/api/checkout/mode", gin.H{"mode": "CASH"})
	assert.Equal(t, http.StatusConflict, w.Code)

	s.do(t, http.MethodPost, "/api/checkout", nil)
	w = s.do(t, http.MethodPost, "/api/checkout/mode", gin.H{"mode": "CHEQUE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/checkout", nil)
	assert.Equal(t, string(pos.StateIdle), decode(t, w)["state"])
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/products", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/products", nil, "token", "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/admin/login", gin.H{"pin": "0000"}).Code)

	token := s.login(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/products", nil, "token", token).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/products", nil, "Authorization", "Bearer "+token).Code)
}

func TestAdminRoutes_Products(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/admin/products", gin.H{"name": "Jus", "category": "Boissons", "price": "2,50"}, "token", token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := created["id"].(string)
	assert.True(t, strings.HasPrefix(id, "P-"))
	assert.Equal(t, float64(250), created["price_cents"])

	w = s.do(t, http.MethodPost, "/api/admin/products", gin.H{"name": "Jus"}, "token", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/admin/products/"+id, gin.H{"name": "Jus mangue", "category": "Boissons", "price": "3"}, "token", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jus mangue", decode(t, w)["name"])

	w = s.do(t, http.MethodPut, "/api/admin/products/"+id+"/active", gin.H{"active": false}, "token", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["active"])

	w = s.do(t, http.MethodPut, "/api/admin/products/NOPE/active", gin.H{"active": true}, "token", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes_PinSyncReset(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(t, http.MethodPost, "/api/admin/pin", gin.H{"current": "9999", "next": "1111"}, "token", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, s.terminal.VerifyPin("1234"))

	w = s.do(t, http.MethodPost, "/api/admin/pin", gin.H{"current": "1234", "next": "1111"}, "token", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, s.terminal.VerifyPin("1111"))

	w = s.do(t, http.MethodPost, "/api/admin/sync", nil, "token", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.sync.calls)

	w = s.do(t, http.MethodPost, "/api/admin/reset", nil, "token", token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, s.terminal.VerifyPin("1234"))
}

func TestReportRoutes(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/cart/items", gin.H{"product_id": "BO-COC", "qty": 2})
	s.do(t, http.MethodPost, "/api/checkout", nil)
	s.do(t, http.MethodPost, "/api/checkout/mode", gin.H{"mode": "CB"})
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/checkout/validate", nil).Code)

	w := s.do(t, http.MethodGet, "/api/reports/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(500), body["total_cents"])
	assert.Equal(t, float64(500), body["card_cents"])

	w = s.do(t, http.MethodGet, "/api/reports/daily.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvContentType, w.Header().Get("Content-Type"))
	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "DATE,SALE_ID,PAYMENT_METHOD,TOTAL,DETAIL", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], `,CB,5.00,"Coca x2"`))

	w = s.do(t, http.MethodGet, "/api/reports/daily.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/admin/sales.csv", nil).Code)
	w = s.do(t, http.MethodGet, "/api/admin/sales.csv", nil, "token", s.login(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "SALE_ID,DATE_ISO,TOTAL,PAYMENT_METHOD,DETAIL\n"))
}

func TestStatusRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(0), body["pending"])
	assert.Equal(t, true, body["sync"].(map[string]any)["online"])
}
