package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IncomingSupply represents expected supply from an open purchase order
type IncomingSupply struct {
	ItemCode     ItemCode
	Warehouse    Warehouse
	Qty          decimal.Decimal
	ExpectedDate time.Time
	Reference    string
}

// NewIncomingSupply creates a validated IncomingSupply
func NewIncomingSupply(itemCode ItemCode, warehouse Warehouse, qty decimal.Decimal, expectedDate time.Time, reference string) (*IncomingSupply, error) {
	if itemCode == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if reference == "" {
		return nil, fmt.Errorf("supply reference cannot be empty")
	}
	if !qty.IsPositive() {
		return nil, fmt.Errorf("supply quantity must be positive, got %s", qty)
	}
	if expectedDate.IsZero() {
		return nil, fmt.Errorf("expected date cannot be zero")
	}

	return &IncomingSupply{
		ItemCode:     itemCode,
		Warehouse:    warehouse,
		Qty:          qty,
		ExpectedDate: expectedDate,
		Reference:    reference,
	}, nil
}
