package entities

import (
	"github.com/shopspring/decimal"
)

// LineItemRequest is one item line in a promise request
type LineItemRequest struct {
	ItemCode  ItemCode
	Qty       decimal.Decimal
	Warehouse Warehouse // optional warehouse constraint
}

// PromiseRequest asks for a delivery promise for a customer order
type PromiseRequest struct {
	Customer string
	Items    []LineItemRequest
	Rules    BusinessRules
}

// Validate rejects malformed requests before any calculation runs
func (r *PromiseRequest) Validate() error {
	if r.Customer == "" {
		return &ValidationError{Field: "customer", Reason: "customer is required"}
	}
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for i, item := range r.Items {
		if item.ItemCode == "" {
			return &ValidationError{
				Field:  "items",
				Reason: "item code is required",
				Index:  i,
			}
		}
		if !item.Qty.IsPositive() {
			return &ValidationError{
				Field:  "items",
				Reason: "quantity must be positive, got " + item.Qty.String(),
				Index:  i,
			}
		}
	}
	return r.Rules.Validate()
}
