package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// AllocationEngine matches requested quantities against on-hand stock,
// then chronologically ordered incoming supply.
//
// The engine owns a mutable working pool of quantities, loaded once per
// item from the provider's snapshot. Consuming the pool never touches
// the snapshot itself, so one engine instance serves exactly one
// calculation and concurrent calculations share nothing. Line items are
// allocated in request order: later lines see supply already consumed
// by earlier ones.
type AllocationEngine struct {
	rules      entities.BusinessRules
	warehouses *entities.WarehouseMap
	calendar   *Calendar
	stock      []*stockLine
	supply     []*supplyLine
	loaded     map[entities.ItemCode]bool
}

// stockLine is a working copy of one stock position's available quantity
type stockLine struct {
	itemCode  entities.ItemCode
	warehouse entities.Warehouse
	available decimal.Decimal
}

// supplyLine is a working copy of one incoming supply entry
type supplyLine struct {
	itemCode     entities.ItemCode
	warehouse    entities.Warehouse
	remaining    decimal.Decimal
	expectedDate time.Time
	reference    string
}

// NewAllocationEngine creates an engine for a single calculation run
func NewAllocationEngine(rules entities.BusinessRules, warehouses *entities.WarehouseMap, calendar *Calendar) *AllocationEngine {
	return &AllocationEngine{
		rules:      rules,
		warehouses: warehouses,
		calendar:   calendar,
		loaded:     make(map[entities.ItemCode]bool),
	}
}

// Loaded reports whether an item's snapshot is already in the pool
func (e *AllocationEngine) Loaded(itemCode entities.ItemCode) bool {
	return e.loaded[itemCode]
}

// Load copies an item's stock and supply snapshot into the working pool
func (e *AllocationEngine) Load(itemCode entities.ItemCode, stock []*entities.StockPosition, supply []*entities.IncomingSupply) {
	for _, pos := range stock {
		e.stock = append(e.stock, &stockLine{
			itemCode:  pos.ItemCode,
			warehouse: pos.Warehouse,
			available: pos.Available(),
		})
	}
	for _, sup := range supply {
		e.supply = append(e.supply, &supplyLine{
			itemCode:     sup.ItemCode,
			warehouse:    sup.Warehouse,
			remaining:    sup.Qty,
			expectedDate: midnight(sup.ExpectedDate),
			reference:    sup.Reference,
		})
	}
	e.loaded[itemCode] = true
}

// Allocate satisfies one line item from the pool. Stock is consumed
// first in warehouse-priority order, then incoming supply in expected
// date order. Any remainder is recorded as unallocated, never dropped.
func (e *AllocationEngine) Allocate(line entities.LineItemRequest) entities.AllocationResult {
	remaining := line.Qty
	var sources []entities.AllocationSource

	stockDate := e.calendar.NextBusinessDay()
	for _, ln := range e.stockCandidates(line.ItemCode, line.Warehouse) {
		if !remaining.IsPositive() {
			break
		}
		if !ln.available.IsPositive() {
			continue
		}
		take := decimal.Min(ln.available, remaining)
		sources = append(sources, entities.AllocationSource{
			Kind:          entities.SourceStock,
			Warehouse:     ln.warehouse,
			Qty:           take,
			AvailableDate: stockDate,
		})
		ln.available = ln.available.Sub(take)
		remaining = remaining.Sub(take)
	}

	for _, ln := range e.supplyCandidates(line.ItemCode) {
		if !remaining.IsPositive() {
			break
		}
		if !ln.remaining.IsPositive() {
			continue
		}
		take := decimal.Min(ln.remaining, remaining)
		sources = append(sources, entities.AllocationSource{
			Kind:          entities.SourceSupply,
			Warehouse:     ln.warehouse,
			Reference:     ln.reference,
			Qty:           take,
			AvailableDate: ln.expectedDate,
		})
		ln.remaining = ln.remaining.Sub(take)
		remaining = remaining.Sub(take)
	}

	sortSourcesChronologically(sources)

	return entities.AllocationResult{
		ItemCode:    line.ItemCode,
		Requested:   line.Qty,
		Sources:     sources,
		Unallocated: remaining,
	}
}

// StockAvailability is a leftover availability snapshot, used to
// surface alternative warehouses in explanations
type StockAvailability struct {
	Warehouse entities.Warehouse
	Qty       decimal.Decimal
}

// RemainingStock returns sellable warehouses still holding unused stock
// for an item, in warehouse-priority order
func (e *AllocationEngine) RemainingStock(itemCode entities.ItemCode) []StockAvailability {
	var lines []*stockLine
	for _, ln := range e.stock {
		if ln.itemCode == itemCode && ln.available.IsPositive() && e.warehouses.Sellable(ln.warehouse) {
			lines = append(lines, ln)
		}
	}
	e.sortByPriority(lines)

	result := make([]StockAvailability, 0, len(lines))
	for _, ln := range lines {
		result = append(result, StockAvailability{Warehouse: ln.warehouse, Qty: ln.available})
	}
	return result
}

// stockCandidates returns the pool's stock lines eligible for a line
// item. A warehouse constraint restricts to that warehouse; otherwise
// every sellable warehouse is a candidate, ordered by the configured
// priority with warehouse code as the tie-break.
func (e *AllocationEngine) stockCandidates(itemCode entities.ItemCode, constraint entities.Warehouse) []*stockLine {
	var candidates []*stockLine
	for _, ln := range e.stock {
		if ln.itemCode != itemCode {
			continue
		}
		if constraint != "" {
			if ln.warehouse == constraint {
				candidates = append(candidates, ln)
			}
			continue
		}
		if e.warehouses.Sellable(ln.warehouse) {
			candidates = append(candidates, ln)
		}
	}
	e.sortByPriority(candidates)
	return candidates
}

// supplyCandidates returns the pool's supply lines for an item in
// expected-date order, reference as the tie-break. Supply is not
// filtered by warehouse constraint: a purchase order can be redirected
// at receipt.
func (e *AllocationEngine) supplyCandidates(itemCode entities.ItemCode) []*supplyLine {
	var candidates []*supplyLine
	for _, ln := range e.supply {
		if ln.itemCode == itemCode {
			candidates = append(candidates, ln)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].expectedDate.Equal(candidates[j].expectedDate) {
			return candidates[i].expectedDate.Before(candidates[j].expectedDate)
		}
		return candidates[i].reference < candidates[j].reference
	})
	return candidates
}

func (e *AllocationEngine) sortByPriority(lines []*stockLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		pi, pj := e.rules.PriorityIndex(lines[i].warehouse), e.rules.PriorityIndex(lines[j].warehouse)
		if pi != pj {
			return pi < pj
		}
		return lines[i].warehouse < lines[j].warehouse
	})
}

// sortSourcesChronologically orders sources by available date, stock
// before supply on equal dates, then warehouse and reference
func sortSourcesChronologically(sources []entities.AllocationSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if !a.AvailableDate.Equal(b.AvailableDate) {
			return a.AvailableDate.Before(b.AvailableDate)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Warehouse != b.Warehouse {
			return a.Warehouse < b.Warehouse
		}
		return a.Reference < b.Reference
	})
}
