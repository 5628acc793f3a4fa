package services

import (
	"fmt"
	"time"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// ExplanationBuilder turns allocation results into the human-readable
// reasons, blockers and options carried on each item result
type ExplanationBuilder struct {
	classifier *ConfidenceClassifier
}

// NewExplanationBuilder creates a builder sharing the classifier's
// near-supply window
func NewExplanationBuilder(classifier *ConfidenceClassifier) *ExplanationBuilder {
	return &ExplanationBuilder{classifier: classifier}
}

// Reasons describes every allocation source of a result
func (b *ExplanationBuilder) Reasons(result *entities.AllocationResult) []string {
	if len(result.Sources) == 0 {
		return []string{fmt.Sprintf("Item %s: no stock or incoming supply available", result.ItemCode)}
	}

	reasons := make([]string, 0, len(result.Sources))
	for _, src := range result.Sources {
		switch src.Kind {
		case entities.SourceStock:
			reasons = append(reasons, fmt.Sprintf(
				"Item %s: %s units from stock at %s, ready %s",
				result.ItemCode, src.Qty, src.Warehouse, src.AvailableDate.Format(dateLayout)))
		case entities.SourceSupply:
			reasons = append(reasons, fmt.Sprintf(
				"Item %s: %s units from %s, arriving %s",
				result.ItemCode, src.Qty, src.Reference, src.AvailableDate.Format(dateLayout)))
		}
	}
	return reasons
}

// Blockers lists what prevents a better promise: residual shortage and
// supply arriving beyond the confidence window. A shortage must always
// surface here; silent truncation of unmet demand is forbidden.
func (b *ExplanationBuilder) Blockers(result *entities.AllocationResult, today time.Time) []string {
	var blockers []string

	if !result.Fulfilled() {
		blockers = append(blockers, fmt.Sprintf(
			"Item %s: shortage of %s units after exhausting stock and incoming supply",
			result.ItemCode, result.Unallocated))
	}

	for _, src := range b.classifier.LateSupply(result, today) {
		daysOut := int(src.AvailableDate.Sub(midnight(today)).Hours() / 24)
		blockers = append(blockers, fmt.Sprintf(
			"Item %s: %s arrives in %d days, beyond the %d-day window",
			result.ItemCode, src.Reference, daysOut, b.classifier.windowDays))
	}
	return blockers
}

// Options suggests alternatives that could improve the date or the
// confidence: warehouses still holding unused stock, and expediting of
// late purchase orders.
func (b *ExplanationBuilder) Options(result *entities.AllocationResult, leftover []StockAvailability, today time.Time) []entities.PromiseOption {
	var options []entities.PromiseOption

	if !result.Fulfilled() || !result.StockOnly() {
		for _, alt := range leftover {
			options = append(options, entities.PromiseOption{
				Type:      "alternate_warehouse",
				ItemCode:  result.ItemCode,
				Warehouse: alt.Warehouse,
				Description: fmt.Sprintf(
					"%s units of %s available at %s", alt.Qty, result.ItemCode, alt.Warehouse),
				Impact: "Could improve the promise date or confidence if allocated from this warehouse",
			})
		}
	}

	for _, src := range b.classifier.LateSupply(result, today) {
		options = append(options, entities.PromiseOption{
			Type:      "expedite_supply",
			ItemCode:  result.ItemCode,
			Reference: src.Reference,
			Description: fmt.Sprintf(
				"Expedite %s for %s", src.Reference, result.ItemCode),
			Impact: fmt.Sprintf(
				"Arrival before %s would lift confidence above LOW",
				midnight(today).AddDate(0, 0, b.classifier.windowDays).Format(dateLayout)),
		})
	}
	return options
}
