package entities

import (
	"time"
)

// PromiseOption is a suggested alternative that could improve the
// promise date or its confidence
type PromiseOption struct {
	Type        string
	ItemCode    ItemCode
	Warehouse   Warehouse
	Reference   string
	Description string
	Impact      string
}

// ItemPromiseResult is the per-line outcome of a promise calculation
type ItemPromiseResult struct {
	ItemCode    ItemCode
	PromiseDate time.Time
	Confidence  ConfidenceLevel
	Allocation  AllocationResult
	Reasons     []string
	Blockers    []string
	Options     []PromiseOption
	// Unfulfillable marks residual shortage under non-strict modes.
	// PromiseDate is the zero time in that case; no fallback date is
	// ever fabricated.
	Unfulfillable bool
}

// PromisePlan is the order-level result returned to the caller
type PromisePlan struct {
	Customer         string
	Items            []ItemPromiseResult
	PromiseDate      time.Time
	Confidence       ConfidenceLevel
	Mode             FulfillmentMode
	GeneratedAt      time.Time
	FullyFulfillable bool
}
