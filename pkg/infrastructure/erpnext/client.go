package erpnext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultBackoff   = time.Second
	breakerThreshold = 5
	breakerCooldown  = 60 * time.Second
)

// StatusError reports a non-2xx response from ERPNext
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// IsNotFound reports whether err is a 404 from ERPNext
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// Client is an HTTP client for the ERPNext REST API. Requests are
// authenticated with a token header, retried with exponential backoff on
// transport errors, and gated by a circuit breaker so a dead ERP backend
// does not absorb the whole request budget.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	breaker    *circuitBreaker
	retries    int
	backoff    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the base retry backoff
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithRetries sets the number of attempts per request
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// NewClient creates an ERPNext client authenticated with an API key pair
func NewClient(baseURL, apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: fmt.Sprintf("token %s:%s", apiKey, apiSecret),
		httpClient: &http.Client{Timeout: defaultTimeout},
		breaker:    newCircuitBreaker(breakerThreshold, breakerCooldown),
		retries:    defaultRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope covers the response shapes ERPNext uses: resource endpoints
// wrap payloads in "data", method endpoints in "message", and errors
// carry "exception" or "exc_type".
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Message   json.RawMessage `json:"message"`
	Exception string          `json:"exception"`
	ExcType   string          `json:"exc_type"`
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (json.RawMessage, error) {
	if !c.breaker.allow() {
		return nil, fmt.Errorf("circuit breaker is open, ERPNext temporarily unavailable")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying ERPNext request", "attempt", attempt+1, "path", path)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport errors are retryable; give up early if the
			// context itself was cancelled.
			c.breaker.recordFailure()
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		raw, err := c.readResponse(resp)
		if err != nil {
			c.breaker.recordFailure()
			return nil, err
		}
		c.breaker.recordSuccess()
		return raw, nil
	}

	return nil, fmt.Errorf("request to ERPNext failed after %d attempts: %w", c.retries, lastErr)
}

func (c *Client) readResponse(resp *http.Response) (json.RawMessage, error) {
	defer resp.Body.Close()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		// Not an object envelope; hand back the raw payload.
		return bodyBytes, nil
	}
	if env.Exception != "" || env.ExcType != "" {
		msg := env.Exception
		if msg == "" {
			msg = env.ExcType
		}
		return nil, fmt.Errorf("ERPNext error: %s", msg)
	}
	if len(env.Data) > 0 {
		return env.Data, nil
	}
	if len(env.Message) > 0 {
		return env.Message, nil
	}
	return bodyBytes, nil
}

// Bin is one warehouse-level stock ledger row
type Bin struct {
	ItemCode    string  `json:"item_code"`
	Warehouse   string  `json:"warehouse"`
	ActualQty   float64 `json:"actual_qty"`
	ReservedQty float64 `json:"reserved_qty"`
}

// GetBins returns the stock ledger rows for an item. Pass an empty
// warehouse to fetch rows across all warehouses.
func (c *Client) GetBins(ctx context.Context, itemCode, warehouse string) ([]Bin, error) {
	filters := [][]string{{"item_code", "=", itemCode}}
	if warehouse != "" {
		filters = append(filters, []string{"warehouse", "=", warehouse})
	}

	params := url.Values{}
	params.Set("filters", mustJSON(filters))
	params.Set("fields", mustJSON([]string{"item_code", "warehouse", "actual_qty", "reserved_qty"}))
	params.Set("limit_page_length", "0")

	raw, err := c.do(ctx, http.MethodGet, "/api/resource/Bin", params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bins for %s: %w", itemCode, err)
	}

	var bins []Bin
	if err := json.Unmarshal(raw, &bins); err != nil {
		return nil, fmt.Errorf("failed to decode bin list: %w", err)
	}
	return bins, nil
}

// PurchaseOrderLine is one open purchase order line for an item
type PurchaseOrderLine struct {
	POID         string
	ItemCode     string
	Warehouse    string
	PendingQty   float64
	ScheduleDate time.Time
}

type poItemRow struct {
	ItemCode     string  `json:"item_code"`
	Qty          float64 `json:"qty"`
	ReceivedQty  float64 `json:"received_qty"`
	ScheduleDate string  `json:"schedule_date"`
	Warehouse    string  `json:"warehouse"`
}

type poRow struct {
	Name         string      `json:"name"`
	ScheduleDate string      `json:"schedule_date"`
	Items        []poItemRow `json:"items"`
}

// GetIncomingPurchaseOrders returns open, submitted purchase order lines
// for an item, ordered by schedule date
func (c *Client) GetIncomingPurchaseOrders(ctx context.Context, itemCode string) ([]PurchaseOrderLine, error) {
	params := url.Values{}
	params.Set("filters", mustJSON([]any{
		[]any{"docstatus", "=", 1},
		[]any{"status", "in", []string{"To Receive and Bill", "To Receive"}},
	}))
	params.Set("fields", mustJSON([]string{"name", "schedule_date"}))
	params.Set("order_by", "schedule_date asc")
	params.Set("limit_page_length", "100")

	raw, err := c.do(ctx, http.MethodGet, "/api/resource/Purchase Order", params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch purchase orders for %s: %w", itemCode, err)
	}

	var pos []poRow
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, fmt.Errorf("failed to decode purchase order list: %w", err)
	}

	var result []PurchaseOrderLine
	for _, po := range pos {
		items := po.Items
		if len(items) == 0 {
			// The list endpoint omits child tables; fetch the full doc.
			docRaw, err := c.do(ctx, http.MethodGet, "/api/resource/Purchase Order/"+url.PathEscape(po.Name), nil, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch purchase order %s: %w", po.Name, err)
			}
			var doc poRow
			if err := json.Unmarshal(docRaw, &doc); err != nil {
				return nil, fmt.Errorf("failed to decode purchase order %s: %w", po.Name, err)
			}
			items = doc.Items
		}

		for _, item := range items {
			if item.ItemCode != itemCode || item.Qty <= item.ReceivedQty {
				continue
			}
			dateStr := item.ScheduleDate
			if dateStr == "" {
				dateStr = po.ScheduleDate
			}
			scheduleDate, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return nil, fmt.Errorf("purchase order %s: invalid schedule date %q: %w", po.Name, dateStr, err)
			}
			result = append(result, PurchaseOrderLine{
				POID:         po.Name,
				ItemCode:     item.ItemCode,
				Warehouse:    item.Warehouse,
				PendingQty:   item.Qty - item.ReceivedQty,
				ScheduleDate: scheduleDate,
			})
		}
	}
	return result, nil
}

// GetSalesOrder fetches a sales order document
func (c *Client) GetSalesOrder(ctx context.Context, salesOrderID string) (map[string]any, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/resource/Sales Order/"+url.PathEscape(salesOrderID), nil, nil)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode sales order %s: %w", salesOrderID, err)
	}
	return doc, nil
}

// UpdateSalesOrderFields updates fields on a sales order document
func (c *Client) UpdateSalesOrderFields(ctx context.Context, salesOrderID string, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPut, "/api/resource/Sales Order/"+url.PathEscape(salesOrderID), nil, fields)
	if err != nil {
		return fmt.Errorf("failed to update sales order %s: %w", salesOrderID, err)
	}
	return nil
}

// AddComment appends a comment to a document
func (c *Client) AddComment(ctx context.Context, doctype, docname, text string) error {
	body := map[string]any{
		"reference_doctype": doctype,
		"reference_name":    docname,
		"content":           text,
		"comment_type":      "Comment",
	}
	_, err := c.do(ctx, http.MethodPost, "/api/resource/Comment", nil, body)
	if err != nil {
		return fmt.Errorf("failed to add comment to %s %s: %w", doctype, docname, err)
	}
	return nil
}

// MaterialRequestItem is one line of a material request to create
type MaterialRequestItem struct {
	ItemCode     string `json:"item_code"`
	Qty          string `json:"qty"`
	ScheduleDate string `json:"schedule_date"`
	Warehouse    string `json:"warehouse,omitempty"`
}

// CreateMaterialRequest creates a purchase-type material request and
// returns the created document name
func (c *Client) CreateMaterialRequest(ctx context.Context, items []MaterialRequestItem, priority string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("material request needs at least one item")
	}
	body := map[string]any{
		"doctype":               "Material Request",
		"material_request_type": "Purchase",
		"transaction_date":      time.Now().Format("2006-01-02"),
		"schedule_date":         items[0].ScheduleDate,
		"priority":              priority,
		"items":                 items,
	}

	raw, err := c.do(ctx, http.MethodPost, "/api/resource/Material Request", nil, body)
	if err != nil {
		return "", fmt.Errorf("failed to create material request: %w", err)
	}
	var doc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("failed to decode material request response: %w", err)
	}
	return doc.Name, nil
}

// HealthCheck reports whether ERPNext is reachable and the token is
// accepted
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/method/frappe.auth.get_logged_user", nil, nil)
	return err
}

// BreakerStatus reports the circuit breaker state for monitoring
func (c *Client) BreakerStatus() (string, int) {
	return c.breaker.Status()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
