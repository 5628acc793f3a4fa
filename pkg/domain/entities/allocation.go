package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceKind represents the origin of an allocation
type SourceKind int

const (
	SourceStock SourceKind = iota
	SourceSupply
)

// String method for SourceKind enum
func (k SourceKind) String() string {
	switch k {
	case SourceStock:
		return "STOCK"
	case SourceSupply:
		return "SUPPLY"
	default:
		return "Unknown"
	}
}

// AllocationSource represents a quantity contribution from stock or
// incoming supply toward a requested quantity
type AllocationSource struct {
	Kind          SourceKind
	Warehouse     Warehouse
	Reference     string // purchase order id for SUPPLY sources
	Qty           decimal.Decimal
	AvailableDate time.Time
}

// AllocationResult represents the outcome of allocating one line item.
// Sources are ordered chronologically by available date.
type AllocationResult struct {
	ItemCode    ItemCode
	Requested   decimal.Decimal
	Sources     []AllocationSource
	Unallocated decimal.Decimal
}

// Allocated returns the total quantity covered by sources
func (r *AllocationResult) Allocated() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Sources {
		total = total.Add(s.Qty)
	}
	return total
}

// Fulfilled reports whether the full requested quantity was covered
func (r *AllocationResult) Fulfilled() bool {
	return r.Unallocated.IsZero()
}

// StockOnly reports whether every source is on-hand stock
func (r *AllocationResult) StockOnly() bool {
	for _, s := range r.Sources {
		if s.Kind != SourceStock {
			return false
		}
	}
	return true
}

// LatestDate returns the latest available date across sources, or the
// zero time when nothing was allocated
func (r *AllocationResult) LatestDate() time.Time {
	var latest time.Time
	for _, s := range r.Sources {
		if s.AvailableDate.After(latest) {
			latest = s.AvailableDate
		}
	}
	return latest
}
