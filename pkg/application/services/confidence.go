package services

import (
	"time"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// ConfidenceClassifier grades allocation results:
//
//   - HIGH: fully allocated, every source on-hand stock
//   - MEDIUM: fully allocated with supply, latest supply inside the
//     configured near-supply window
//   - LOW: any supply beyond the window, or residual shortage
//
// The window is a policy value from BusinessRules, not a constant.
type ConfidenceClassifier struct {
	windowDays int
}

// NewConfidenceClassifier creates a classifier for the given rules
func NewConfidenceClassifier(rules entities.BusinessRules) *ConfidenceClassifier {
	return &ConfidenceClassifier{windowDays: rules.NearSupplyWindowDays}
}

// Classify grades one allocation result against today's date
func (c *ConfidenceClassifier) Classify(result *entities.AllocationResult, today time.Time) entities.ConfidenceLevel {
	if !result.Fulfilled() {
		return entities.ConfidenceLow
	}
	if result.StockOnly() {
		return entities.ConfidenceHigh
	}

	horizon := midnight(today).AddDate(0, 0, c.windowDays)
	for _, src := range result.Sources {
		if src.Kind == entities.SourceSupply && src.AvailableDate.After(horizon) {
			return entities.ConfidenceLow
		}
	}
	return entities.ConfidenceMedium
}

// LateSupply returns the supply sources arriving beyond the window,
// for blocker generation
func (c *ConfidenceClassifier) LateSupply(result *entities.AllocationResult, today time.Time) []entities.AllocationSource {
	horizon := midnight(today).AddDate(0, 0, c.windowDays)
	var late []entities.AllocationSource
	for _, src := range result.Sources {
		if src.Kind == entities.SourceSupply && src.AvailableDate.After(horizon) {
			late = append(late, src)
		}
	}
	return late
}
