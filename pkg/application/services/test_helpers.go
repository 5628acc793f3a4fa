package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// Test fixtures shared across the service tests. The fixed clock is a
// Monday morning before the cutoff so NextBusinessDay is Tuesday.

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday 10:00

func testClock() time.Time { return testNow }

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRules() entities.BusinessRules {
	rules := entities.DefaultBusinessRules()
	rules.LeadTimeBufferDays = 0
	return rules
}

func testEngine(rules entities.BusinessRules) *AllocationEngine {
	cal := NewCalendarWithClock(rules, testClock)
	return NewAllocationEngine(rules, entities.NewWarehouseMap(nil, nil), cal)
}

func stockPos(item entities.ItemCode, warehouse entities.Warehouse, actual, reserved string) *entities.StockPosition {
	return &entities.StockPosition{
		ItemCode:    item,
		Warehouse:   warehouse,
		ActualQty:   qty(actual),
		ReservedQty: qty(reserved),
	}
}

func incoming(item entities.ItemCode, warehouse entities.Warehouse, quantity string, daysOut int, reference string) *entities.IncomingSupply {
	return &entities.IncomingSupply{
		ItemCode:     item,
		Warehouse:    warehouse,
		Qty:          qty(quantity),
		ExpectedDate: testNow.AddDate(0, 0, daysOut),
		Reference:    reference,
	}
}
