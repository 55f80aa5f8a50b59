package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/pos-register/internal/infrastructure/render"
	redisRepo "github.com/DRSN-tech/pos-register/internal/repository/redis"
	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/clients"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	r "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler http.Handler
	sink    *render.SnapshotSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimit(t, 0, false)
}

func newTestEnvWithLimit(t *testing.T, rateLimit int, trustProxy bool) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &clients.RedisClient{Client: r.NewClient(&r.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewSlogLoggerWithWriter(io.Discard, "text", "info")
	sink := render.NewSnapshotSink()
	uc := usecase.NewRegisterUC(redisRepo.NewKVRepo(client, "test", log), sink, nil, log)
	_, err := uc.Init(context.Background())
	require.NoError(t, err)

	mux := chi.NewRouter()
	NewRouter(mux, log, rateLimit, trustProxy).Init(uc)

	return &testEnv{handler: mux, sink: sink}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

type viewBody struct {
	Products []struct {
		Code  string `json:"code"`
		Stock int    `json:"stock"`
	} `json:"products"`
	Cart []struct {
		Code     string `json:"code"`
		Quantity int    `json:"quantity"`
		Subtotal string `json:"subtotal"`
	} `json:"cart"`
	Message string `json:"message"`
	Total   string `json:"total"`
	Change  string `json:"change"`
}

func (v viewBody) stock(code string) int {
	for _, p := range v.Products {
		if p.Code == code {
			return p.Stock
		}
	}
	return -1
}

type operationBody struct {
	View    viewBody `json:"view"`
	Receipt *struct {
		ReceiptID string `json:"receipt_id"`
		Total     string `json:"total"`
		Change    string `json:"change"`
	} `json:"receipt"`
}

type errorBody struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	View    *viewBody `json:"view"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&out), rec.Body.String())
	return out
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P001","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	op := decode[operationBody](t, rec)
	assert.Equal(t, 18, op.View.stock("P001"))
	assert.Equal(t, "100", op.View.Total)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P001","quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", `{"cash":"300"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	op = decode[operationBody](t, rec)
	require.NotNil(t, op.Receipt)
	assert.Equal(t, "250", op.Receipt.Total)
	assert.Equal(t, "50", op.Receipt.Change)
	assert.Empty(t, op.View.Cart)
	assert.Equal(t, 15, op.View.stock("P001"))

	last := env.sink.Last()
	require.NotNil(t, last)
	assert.Equal(t, "50.00", last.Change.StringFixed(2))
}

func TestAddToCartErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P404","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[errorBody](t, rec)
	require.NotNil(t, body.View)
	assert.Equal(t, "Product not found!", body.View.Message)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P003","quantity":16}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = decode[errorBody](t, rec)
	assert.Equal(t, 15, body.View.stock("P003"))

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P003","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, decode[errorBody](t, rec).View)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P001","qty":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart/items", ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/checkout", `{"cash":100}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P002","quantity":2}`)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", `{"cash":49.99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Message, "short by 0.01")
	require.NotNil(t, body.View)
	assert.Equal(t, "Not enough cash! Total: 50.00", body.View.Message)
	assert.Len(t, body.View.Cart, 1)

	rec = env.do(t, http.MethodPost, "/api/v1/checkout", `{"cash":"10.001"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearCartOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P002","quantity":5}`)

	rec := env.do(t, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	op := decode[operationBody](t, rec)
	assert.Empty(t, op.View.Cart)
	assert.Equal(t, 30, op.View.stock("P002"))
	assert.Equal(t, "Cart cleared!", op.View.Message)
}

func TestProductLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/products", `{"code":"P004","name":"Brush","price":"15","stock":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[operationBody](t, rec).View.Products, 4)

	rec = env.do(t, http.MethodPost, "/api/v1/products", `{"code":"P004","name":"Brush","price":15,"stock":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, decode[errorBody](t, rec).View.Products, 4)

	rec = env.do(t, http.MethodPost, "/api/v1/products", `{"code":"P005","name":"Comb","price":-1,"stock":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products", `{"code":"P005","name":"Comb","price":1,"stock":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products", `{"code":"P005","name":"Comb","price":"1.999","stock":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P004","quantity":1}`)
	rec = env.do(t, http.MethodDelete, "/api/v1/products/P004", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.do(t, http.MethodDelete, "/api/v1/cart", "")
	rec = env.do(t, http.MethodDelete, "/api/v1/products/P004", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[operationBody](t, rec).View.Products, 3)

	rec = env.do(t, http.MethodDelete, "/api/v1/products/P004", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetAndViewOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/cart/items", `{"code":"P001","quantity":20}`)
	env.do(t, http.MethodDelete, "/api/v1/products/P002", "")

	rec := env.do(t, http.MethodPost, "/api/v1/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	op := decode[operationBody](t, rec)
	assert.Len(t, op.View.Products, 3)
	assert.Empty(t, op.View.Cart)
	assert.Equal(t, 20, op.View.stock("P001"))

	rec = env.do(t, http.MethodGet, "/api/v1/register", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[viewBody](t, rec)
	assert.Len(t, view.Products, 3)
	assert.Empty(t, view.Message)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	first := env.do(t, http.MethodGet, "/api/v1/register?format=text", "")
	second := env.do(t, http.MethodGet, "/api/v1/register?format=text", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, first.Body.String(), "No items yet")
	assert.True(t, strings.HasPrefix(first.Header().Get("Content-Type"), "text/plain"))
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	env := newTestEnvWithLimit(t, 2, false)

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/register", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitUsesForwardedHeadersBehindProxy(t *testing.T) {
	env := newTestEnvWithLimit(t, 1, true)

	for i := range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/register", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))

		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
