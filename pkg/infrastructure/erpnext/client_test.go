package erpnext

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "key", "secret", WithBackoff(time.Millisecond))
}

func TestClient_AuthHeader(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.NoError(t, err)
	assert.Equal(t, "token key:secret", gotAuth)
}

func TestClient_GetBins(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resource/Bin", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filters"), "WIDGET-100")
		w.Write([]byte(`{"data": [
			{"item_code": "WIDGET-100", "warehouse": "Stores - WH", "actual_qty": 10, "reserved_qty": 2}
		]}`))
	})

	bins, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, "Stores - WH", bins[0].Warehouse)
	assert.Equal(t, 10.0, bins[0].ActualQty)
	assert.Equal(t, 2.0, bins[0].ReservedQty)
}

func TestClient_GetBins_WarehouseFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("filters"), "Stores - EAST")
		w.Write([]byte(`{"data": []}`))
	})

	_, err := client.GetBins(context.Background(), "WIDGET-100", "Stores - EAST")
	require.NoError(t, err)
}

func TestClient_GetIncomingPurchaseOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resource/Purchase Order":
			w.Write([]byte(`{"data": [{"name": "PO-00012", "schedule_date": "2026-03-09"}]}`))
		case "/api/resource/Purchase Order/PO-00012":
			w.Write([]byte(`{"data": {"name": "PO-00012", "schedule_date": "2026-03-09", "items": [
				{"item_code": "WIDGET-100", "qty": 50, "received_qty": 10, "schedule_date": "2026-03-09", "warehouse": "Stores - WH"},
				{"item_code": "OTHER-200", "qty": 5, "received_qty": 0, "schedule_date": "2026-03-09"}
			]}}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	})

	lines, err := client.GetIncomingPurchaseOrders(context.Background(), "WIDGET-100")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "PO-00012", lines[0].POID)
	assert.Equal(t, 40.0, lines[0].PendingQty)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), lines[0].ScheduleDate)
}

func TestClient_GetIncomingPurchaseOrders_SkipsFullyReceived(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"name": "PO-00013", "schedule_date": "2026-03-09", "items": [
			{"item_code": "WIDGET-100", "qty": 10, "received_qty": 10, "schedule_date": "2026-03-09"}
		]}]}`))
	})

	lines, err := client.GetIncomingPurchaseOrders(context.Background(), "WIDGET-100")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestClient_ERPNextErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exc_type": "ValidationError", "exception": "frappe.exceptions.ValidationError: bad filter"}`))
	})

	_, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ValidationError")
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	_, err := client.GetSalesOrder(context.Background(), "SO-404")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

type flakyTransport struct {
	failures int
	attempts int
	fallback http.RoundTripper
}

func (ft *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ft.attempts++
	if ft.attempts <= ft.failures {
		return nil, errors.New("connection reset by peer")
	}
	return ft.fallback.RoundTrip(req)
}

func TestClient_RetriesTransportErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	transport := &flakyTransport{failures: 2, fallback: http.DefaultTransport}
	client := NewClient(server.URL, "key", "secret",
		WithBackoff(time.Millisecond),
		WithHTTPClient(&http.Client{Transport: transport}))

	_, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.NoError(t, err)
	assert.Equal(t, 3, transport.attempts)
}

func TestClient_RetriesExhausted(t *testing.T) {
	transport := &flakyTransport{failures: 100, fallback: http.DefaultTransport}
	client := NewClient("http://erpnext.invalid", "key", "secret",
		WithBackoff(time.Millisecond),
		WithHTTPClient(&http.Client{Transport: transport}))

	_, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	transport := &flakyTransport{failures: 1000, fallback: http.DefaultTransport}
	client := NewClient("http://erpnext.invalid", "key", "secret",
		WithBackoff(time.Millisecond),
		WithHTTPClient(&http.Client{Transport: transport}))

	// Two failing requests of three attempts each cross the threshold
	// of five recorded failures.
	for i := 0; i < 2; i++ {
		_, err := client.GetBins(context.Background(), "WIDGET-100", "")
		require.Error(t, err)
	}

	state, _ := client.BreakerStatus()
	assert.Equal(t, "open", state)

	before := transport.attempts
	_, err := client.GetBins(context.Background(), "WIDGET-100", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, before, transport.attempts, "open breaker must not issue requests")
}

func TestClient_CreateMaterialRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Purchase", body["material_request_type"])
		assert.Equal(t, "HIGH", body["priority"])
		w.Write([]byte(`{"data": {"name": "MR-00042"}}`))
	})

	name, err := client.CreateMaterialRequest(context.Background(), []MaterialRequestItem{
		{ItemCode: "WIDGET-100", Qty: "15", ScheduleDate: "2026-03-09"},
	}, "HIGH")
	require.NoError(t, err)
	assert.Equal(t, "MR-00042", name)
}

func TestClient_HealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/method/frappe.auth.get_logged_user", r.URL.Path)
		w.Write([]byte(`{"message": "Administrator"}`))
	})

	assert.NoError(t, client.HealthCheck(context.Background()))
}

func TestCircuitBreaker_HalfOpenAfterCooldown(t *testing.T) {
	breaker := newCircuitBreaker(2, 10*time.Millisecond)
	breaker.recordFailure()
	breaker.recordFailure()
	assert.False(t, breaker.allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, breaker.allow(), "breaker must probe after the cooldown")

	breaker.recordSuccess()
	state, failures := breaker.Status()
	assert.Equal(t, "closed", state)
	assert.Zero(t, failures)
}
