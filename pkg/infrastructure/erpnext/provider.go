package erpnext

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/domain/repositories"
)

// SupplyAdapter exposes ERPNext bins and purchase orders through the
// domain's supply provider interface
type SupplyAdapter struct {
	client *Client
}

// NewSupplyAdapter creates a supply adapter over an ERPNext client
func NewSupplyAdapter(client *Client) *SupplyAdapter {
	return &SupplyAdapter{client: client}
}

var _ repositories.SupplyProvider = (*SupplyAdapter)(nil)

// GetStock returns current stock positions for an item from ERPNext bins
func (a *SupplyAdapter) GetStock(ctx context.Context, itemCode entities.ItemCode, warehouse entities.Warehouse) ([]*entities.StockPosition, error) {
	bins, err := a.client.GetBins(ctx, string(itemCode), string(warehouse))
	if err != nil {
		return nil, err
	}

	positions := make([]*entities.StockPosition, 0, len(bins))
	for _, bin := range bins {
		positions = append(positions, &entities.StockPosition{
			ItemCode:    entities.ItemCode(bin.ItemCode),
			Warehouse:   entities.Warehouse(bin.Warehouse),
			ActualQty:   decimal.NewFromFloat(bin.ActualQty),
			ReservedQty: decimal.NewFromFloat(bin.ReservedQty),
		})
	}
	return positions, nil
}

// GetIncomingSupply returns pending purchase order lines for an item
func (a *SupplyAdapter) GetIncomingSupply(ctx context.Context, itemCode entities.ItemCode) ([]*entities.IncomingSupply, error) {
	lines, err := a.client.GetIncomingPurchaseOrders(ctx, string(itemCode))
	if err != nil {
		return nil, err
	}

	supplies := make([]*entities.IncomingSupply, 0, len(lines))
	for _, line := range lines {
		supplies = append(supplies, &entities.IncomingSupply{
			ItemCode:     entities.ItemCode(line.ItemCode),
			Warehouse:    entities.Warehouse(line.Warehouse),
			Qty:          decimal.NewFromFloat(line.PendingQty),
			ExpectedDate: line.ScheduleDate,
			Reference:    line.POID,
		})
	}
	return supplies, nil
}

// OrderAdapter writes promises back to ERPNext sales orders and raises
// material requests for shortages
type OrderAdapter struct {
	client *Client
}

// NewOrderAdapter creates an order adapter over an ERPNext client
func NewOrderAdapter(client *Client) *OrderAdapter {
	return &OrderAdapter{client: client}
}

var (
	_ repositories.SalesOrderWriter     = (*OrderAdapter)(nil)
	_ repositories.ProcurementSuggester = (*OrderAdapter)(nil)
)

// SalesOrderExists reports whether a sales order exists in ERPNext
func (a *OrderAdapter) SalesOrderExists(ctx context.Context, salesOrderID string) (bool, error) {
	_, err := a.client.GetSalesOrder(ctx, salesOrderID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetPromiseFields writes the promise date and confidence onto the
// sales order's custom fields
func (a *OrderAdapter) SetPromiseFields(ctx context.Context, salesOrderID string, promiseDate time.Time, confidence entities.ConfidenceLevel) error {
	return a.client.UpdateSalesOrderFields(ctx, salesOrderID, map[string]any{
		"custom_otp_promise_date": promiseDate.Format("2006-01-02"),
		"custom_otp_confidence":   confidence.String(),
	})
}

// AddComment appends a comment to the sales order
func (a *OrderAdapter) AddComment(ctx context.Context, salesOrderID, comment string) error {
	return a.client.AddComment(ctx, "Sales Order", salesOrderID, comment)
}

// CreateMaterialRequest raises a purchase material request covering the
// given shortage lines and returns its document name
func (a *OrderAdapter) CreateMaterialRequest(ctx context.Context, lines []repositories.MaterialRequestLine, priority string) (string, error) {
	items := make([]MaterialRequestItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, MaterialRequestItem{
			ItemCode:     string(line.ItemCode),
			Qty:          line.Qty.String(),
			ScheduleDate: line.RequiredBy.Format("2006-01-02"),
		})
	}
	name, err := a.client.CreateMaterialRequest(ctx, items, priority)
	if err != nil {
		return "", fmt.Errorf("material request for %d lines: %w", len(lines), err)
	}
	return name, nil
}
