package services

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

func newTestBuilder() *ExplanationBuilder {
	return NewExplanationBuilder(NewConfidenceClassifier(testRules()))
}

func TestExplanationBuilder_Reasons(t *testing.T) {
	builder := newTestBuilder()

	result := entities.AllocationResult{
		ItemCode:  "WIDGET-100",
		Requested: qty("15"),
		Sources: []entities.AllocationSource{
			{Kind: entities.SourceStock, Warehouse: "Stores - WH", Qty: qty("10"), AvailableDate: midnight(testNow).AddDate(0, 0, 1)},
			{Kind: entities.SourceSupply, Reference: "PO-00123", Qty: qty("5"), AvailableDate: midnight(testNow).AddDate(0, 0, 3)},
		},
	}

	reasons := builder.Reasons(&result)
	if len(reasons) != 2 {
		t.Fatalf("Expected 2 reasons, got %d: %v", len(reasons), reasons)
	}
	if !strings.Contains(reasons[0], "10 units from stock at Stores - WH") {
		t.Errorf("Stock reason missing quantity/location: %q", reasons[0])
	}
	if !strings.Contains(reasons[0], "2026-03-03") {
		t.Errorf("Stock reason missing date: %q", reasons[0])
	}
	if !strings.Contains(reasons[1], "PO-00123") || !strings.Contains(reasons[1], "2026-03-05") {
		t.Errorf("Supply reason missing reference/date: %q", reasons[1])
	}
}

func TestExplanationBuilder_Reasons_NothingAvailable(t *testing.T) {
	builder := newTestBuilder()
	result := entities.AllocationResult{
		ItemCode:    "WIDGET-100",
		Requested:   qty("5"),
		Unallocated: qty("5"),
	}

	reasons := builder.Reasons(&result)
	if len(reasons) != 1 || !strings.Contains(reasons[0], "no stock or incoming supply") {
		t.Errorf("Expected a single empty-allocation reason, got %v", reasons)
	}
}

func TestExplanationBuilder_Blockers(t *testing.T) {
	builder := newTestBuilder()

	result := entities.AllocationResult{
		ItemCode:  "WIDGET-100",
		Requested: qty("20"),
		Sources: []entities.AllocationSource{
			{Kind: entities.SourceSupply, Reference: "PO-00999", Qty: qty("5"), AvailableDate: midnight(testNow).AddDate(0, 0, 10)},
		},
		Unallocated: qty("15"),
	}

	blockers := builder.Blockers(&result, testNow)
	if len(blockers) != 2 {
		t.Fatalf("Expected shortage + late supply blockers, got %d: %v", len(blockers), blockers)
	}
	if !strings.Contains(blockers[0], "shortage of 15 units") {
		t.Errorf("Shortage blocker = %q", blockers[0])
	}
	if !strings.Contains(blockers[1], "PO-00999") || !strings.Contains(blockers[1], "10 days") {
		t.Errorf("Late supply blocker = %q", blockers[1])
	}
}

func TestExplanationBuilder_NoBlockersWhenClean(t *testing.T) {
	builder := newTestBuilder()
	result := entities.AllocationResult{
		ItemCode:  "WIDGET-100",
		Requested: qty("10"),
		Sources: []entities.AllocationSource{
			{Kind: entities.SourceStock, Warehouse: "Stores - WH", Qty: qty("10"), AvailableDate: midnight(testNow).AddDate(0, 0, 1)},
		},
		Unallocated: decimal.Zero,
	}

	if blockers := builder.Blockers(&result, testNow); len(blockers) != 0 {
		t.Errorf("Expected no blockers, got %v", blockers)
	}
}

func TestExplanationBuilder_Options(t *testing.T) {
	builder := newTestBuilder()

	result := entities.AllocationResult{
		ItemCode:    "WIDGET-100",
		Requested:   qty("20"),
		Sources:     []entities.AllocationSource{{Kind: entities.SourceStock, Warehouse: "Stores - EAST", Qty: qty("5"), AvailableDate: midnight(testNow).AddDate(0, 0, 1)}},
		Unallocated: qty("15"),
	}
	leftover := []StockAvailability{{Warehouse: "Stores - WEST", Qty: qty("8")}}

	options := builder.Options(&result, leftover, testNow)
	if len(options) != 1 {
		t.Fatalf("Expected 1 option, got %d: %v", len(options), options)
	}
	if options[0].Type != "alternate_warehouse" || options[0].Warehouse != "Stores - WEST" {
		t.Errorf("Option = %+v, want alternate_warehouse at Stores - WEST", options[0])
	}
}

func TestExplanationBuilder_Options_ExpediteLateSupply(t *testing.T) {
	builder := newTestBuilder()

	result := entities.AllocationResult{
		ItemCode:  "WIDGET-100",
		Requested: qty("5"),
		Sources: []entities.AllocationSource{
			{Kind: entities.SourceSupply, Reference: "PO-00999", Qty: qty("5"), AvailableDate: midnight(testNow).AddDate(0, 0, 10)},
		},
		Unallocated: decimal.Zero,
	}

	options := builder.Options(&result, nil, testNow)
	if len(options) != 1 {
		t.Fatalf("Expected 1 expedite option, got %d", len(options))
	}
	if options[0].Type != "expedite_supply" || options[0].Reference != "PO-00999" {
		t.Errorf("Option = %+v, want expedite_supply for PO-00999", options[0])
	}
}

func TestExplanationBuilder_NoOptionsForCleanStockResult(t *testing.T) {
	builder := newTestBuilder()

	result := entities.AllocationResult{
		ItemCode:  "WIDGET-100",
		Requested: qty("10"),
		Sources: []entities.AllocationSource{
			{Kind: entities.SourceStock, Warehouse: "Stores - WH", Qty: qty("10"), AvailableDate: midnight(testNow).AddDate(0, 0, 1)},
		},
		Unallocated: decimal.Zero,
	}
	leftover := []StockAvailability{{Warehouse: "Stores - WEST", Qty: qty("8")}}

	if options := builder.Options(&result, leftover, testNow); len(options) != 0 {
		t.Errorf("Fully stocked item needs no options, got %v", options)
	}
}
