package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed promise request, rejected before
// any calculation runs
type ValidationError struct {
	Field  string
	Reason string
	Index  int
}

func (e *ValidationError) Error() string {
	if e.Field == "items" && e.Reason != "" && e.Index >= 0 {
		return fmt.Sprintf("invalid request: items[%d]: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// ShortageError aborts a STRICT_FAIL calculation when demand cannot be
// fully allocated. No partial plan accompanies it.
type ShortageError struct {
	ItemCode ItemCode
	ShortQty decimal.Decimal
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("shortage of %s units for item %s", e.ShortQty, e.ItemCode)
}

// SupplyUnavailableError wraps a failed stock or supply fetch. The
// engine never fabricates data; the underlying cause is propagated
// unmodified.
type SupplyUnavailableError struct {
	ItemCode ItemCode
	Err      error
}

func (e *SupplyUnavailableError) Error() string {
	return fmt.Sprintf("supply data unavailable for item %s: %v", e.ItemCode, e.Err)
}

func (e *SupplyUnavailableError) Unwrap() error {
	return e.Err
}

// WriteBackError reports a failed apply for one order. It is recovered
// locally so a batch continues past individual failures.
type WriteBackError struct {
	SalesOrderID string
	Err          error
}

func (e *WriteBackError) Error() string {
	return fmt.Sprintf("write-back failed for sales order %s: %v", e.SalesOrderID, e.Err)
}

func (e *WriteBackError) Unwrap() error {
	return e.Err
}
