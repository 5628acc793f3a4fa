package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockPosition represents on-hand stock for an item at a warehouse
type StockPosition struct {
	ItemCode    ItemCode
	Warehouse   Warehouse
	ActualQty   decimal.Decimal
	ReservedQty decimal.Decimal
}

// NewStockPosition creates a validated StockPosition
func NewStockPosition(itemCode ItemCode, warehouse Warehouse, actualQty, reservedQty decimal.Decimal) (*StockPosition, error) {
	if itemCode == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if warehouse == "" {
		return nil, fmt.Errorf("warehouse cannot be empty")
	}

	return &StockPosition{
		ItemCode:    itemCode,
		Warehouse:   warehouse,
		ActualQty:   actualQty,
		ReservedQty: reservedQty,
	}, nil
}

// Available returns actual minus reserved quantity. The result may be
// negative when reservations exceed the physical count; it is not clamped.
func (s *StockPosition) Available() decimal.Decimal {
	return s.ActualQty.Sub(s.ReservedQty)
}
