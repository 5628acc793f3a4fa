package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// FulfillmentMode controls how per-item promise dates roll up to an order
type FulfillmentMode int

const (
	// ModeEarliest lets each item keep its own promise date; the order
	// ships complete at the latest of them.
	ModeEarliest FulfillmentMode = iota
	// ModeNoEarlyDelivery forces every item onto the shared latest date.
	ModeNoEarlyDelivery
	// ModeStrictFail aborts the whole computation on any shortage.
	ModeStrictFail
)

// String method for FulfillmentMode enum
func (m FulfillmentMode) String() string {
	switch m {
	case ModeEarliest:
		return "EARLIEST"
	case ModeNoEarlyDelivery:
		return "NO_EARLY_DELIVERY"
	case ModeStrictFail:
		return "STRICT_FAIL"
	default:
		return "Unknown"
	}
}

// ParseFulfillmentMode parses the wire representation of a mode
func ParseFulfillmentMode(s string) (FulfillmentMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "EARLIEST":
		return ModeEarliest, nil
	case "NO_EARLY_DELIVERY":
		return ModeNoEarlyDelivery, nil
	case "STRICT_FAIL":
		return ModeStrictFail, nil
	default:
		return ModeEarliest, fmt.Errorf("unknown fulfillment mode %q", s)
	}
}

// CutoffTime is a time-of-day boundary after which same-day fulfillment
// is disallowed
type CutoffTime struct {
	Hour   int
	Minute int
}

// ParseCutoffTime parses a "HH:MM" cutoff string
func ParseCutoffTime(s string) (CutoffTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return CutoffTime{}, fmt.Errorf("cutoff time must be HH:MM, got %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return CutoffTime{}, fmt.Errorf("invalid cutoff hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return CutoffTime{}, fmt.Errorf("invalid cutoff minute in %q", s)
	}
	return CutoffTime{Hour: hour, Minute: minute}, nil
}

// String returns the HH:MM representation
func (c CutoffTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MinutesOfDay returns the cutoff as minutes since midnight
func (c CutoffTime) MinutesOfDay() int {
	return c.Hour*60 + c.Minute
}

// BusinessRules holds the policy values driving a promise calculation.
// Thresholds and warehouse priority are inputs, not constants, so the
// engine stays testable against varying policies.
type BusinessRules struct {
	SkipWeekends         bool
	Cutoff               CutoffTime
	LeadTimeBufferDays   int
	Mode                 FulfillmentMode
	NearSupplyWindowDays int
	WarehousePriority    []Warehouse
}

// DefaultBusinessRules returns the stock business policy: weekends
// skipped, 14:00 cutoff, one buffer day, seven-day confidence window.
func DefaultBusinessRules() BusinessRules {
	return BusinessRules{
		SkipWeekends:         true,
		Cutoff:               CutoffTime{Hour: 14},
		LeadTimeBufferDays:   1,
		Mode:                 ModeEarliest,
		NearSupplyWindowDays: 7,
	}
}

// Validate checks rule values for consistency
func (r BusinessRules) Validate() error {
	if r.LeadTimeBufferDays < 0 {
		return fmt.Errorf("lead time buffer days cannot be negative, got %d", r.LeadTimeBufferDays)
	}
	if r.NearSupplyWindowDays <= 0 {
		return fmt.Errorf("near supply window days must be positive, got %d", r.NearSupplyWindowDays)
	}
	return nil
}

// PriorityIndex returns the rank of a warehouse in the configured
// priority order, or len(priority) for unranked warehouses so they sort
// after every ranked one.
func (r BusinessRules) PriorityIndex(warehouse Warehouse) int {
	for i, w := range r.WarehousePriority {
		if w == warehouse {
			return i
		}
	}
	return len(r.WarehousePriority)
}
