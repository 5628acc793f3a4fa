package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjoshi/otp/pkg/application/services"
	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/domain/repositories"
	"github.com/sjoshi/otp/pkg/infrastructure/repositories/memory"
)

// Monday 2026-03-02 10:00 UTC, before the 14:00 cutoff
var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fakeOrderWriter struct {
	orders map[string]bool
}

func (w *fakeOrderWriter) SalesOrderExists(_ context.Context, id string) (bool, error) {
	return w.orders[id], nil
}

func (w *fakeOrderWriter) SetPromiseFields(_ context.Context, _ string, _ time.Time, _ entities.ConfidenceLevel) error {
	return nil
}

func (w *fakeOrderWriter) AddComment(_ context.Context, _, _ string) error {
	return nil
}

type failingProvider struct{}

func (failingProvider) GetStock(_ context.Context, _ entities.ItemCode, _ entities.Warehouse) ([]*entities.StockPosition, error) {
	return nil, errors.New("connection refused")
}

func (failingProvider) GetIncomingSupply(_ context.Context, _ entities.ItemCode) ([]*entities.IncomingSupply, error) {
	return nil, errors.New("connection refused")
}

func newTestRouter(t *testing.T, provider repositories.SupplyProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	promiseSvc := services.NewPromiseServiceWithClock(provider, nil, func() time.Time { return fixedNow })
	applySvc := services.NewApplyService(&fakeOrderWriter{orders: map[string]bool{"SO-001": true}}, nil)
	handlers := NewHandlers(promiseSvc, applySvc, entities.DefaultBusinessRules(), nil)
	return NewRouter(handlers)
}

func seededProvider() *memory.SupplyRepository {
	repo := memory.NewSupplyRepository()
	repo.AddStock(entities.StockPosition{
		ItemCode: "WIDGET-100", Warehouse: "Stores - WH",
		ActualQty: decimal.NewFromInt(10),
	})
	repo.AddSupply(entities.IncomingSupply{
		ItemCode: "WIDGET-100", Warehouse: "Stores - WH",
		Qty:          decimal.NewFromInt(50),
		ExpectedDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Reference:    "PO-00012",
	})
	return repo
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePromise_StockOnly(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PromiseResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "HIGH", resp.Confidence)
	assert.True(t, resp.FullyFulfillable)
	require.Len(t, resp.Items, 1)
	// Next business day after the Monday-morning clock is Tuesday,
	// plus the default one buffer day lands on Wednesday.
	assert.Equal(t, "2026-03-04", resp.Items[0].PromiseDate)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandlePromise_SupplyBacked(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": 30}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PromiseResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MEDIUM", resp.Confidence)
	require.Len(t, resp.Items, 1)
	require.Len(t, resp.Items[0].Sources, 2)
	assert.Equal(t, "STOCK", resp.Items[0].Sources[0].Kind)
	assert.Equal(t, "SUPPLY", resp.Items[0].Sources[1].Kind)
}

func TestHandlePromise_MissingCustomer(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"items": []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePromise_NegativeQty(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": -5}},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestHandlePromise_StrictFailShortage(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": 500}},
		"rules":    gin.H{"fulfillment_mode": "STRICT_FAIL"},
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SHORTAGE", resp.Code)
}

func TestHandlePromise_BadCutoffOverride(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
		"rules":    gin.H{"cutoff_time": "25:99"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, "rules.cutoff_time", resp.Field)
}

func TestHandlePromise_SupplyUnavailable(t *testing.T) {
	router := newTestRouter(t, failingProvider{})

	rec := postJSON(t, router, "/v1/promise", gin.H{
		"customer": "ACME Corp",
		"items":    []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
	})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SUPPLY_UNAVAILABLE", resp.Code)
}

func TestHandleApply(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise/apply", gin.H{
		"sales_order_id": "SO-001",
		"customer":       "ACME Corp",
		"items":          []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ApplyResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SO-001", resp.SalesOrderID)
	assert.Equal(t, []string{"set promise custom fields"}, resp.ActionsTaken)
	assert.Equal(t, "HIGH", resp.Plan.Confidence)
}

func TestHandleApply_MissingOrder(t *testing.T) {
	router := newTestRouter(t, seededProvider())

	rec := postJSON(t, router, "/v1/promise/apply", gin.H{
		"sales_order_id": "SO-404",
		"customer":       "ACME Corp",
		"items":          []gin.H{{"item_code": "WIDGET-100", "qty": 5}},
	})

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "WRITE_BACK_FAILED", resp.Code)
}

func TestHandleHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	promiseSvc := services.NewPromiseService(memory.NewSupplyRepository(), nil)

	healthy := NewRouter(NewHandlers(promiseSvc, nil, entities.DefaultBusinessRules(), nil))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	degraded := NewRouter(NewHandlers(promiseSvc, nil, entities.DefaultBusinessRules(), func(context.Context) error {
		return errors.New("erpnext unreachable")
	}))
	rec = httptest.NewRecorder()
	degraded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
