package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/domain/repositories"
)

// PromiseService computes order-level delivery promises. It is
// stateless across calls: every computation builds a fresh allocation
// engine over a fresh snapshot, so concurrent calls share nothing.
type PromiseService struct {
	provider   repositories.SupplyProvider
	warehouses *entities.WarehouseMap
	now        func() time.Time
}

// NewPromiseService creates a promise service over a supply provider
func NewPromiseService(provider repositories.SupplyProvider, warehouses *entities.WarehouseMap) *PromiseService {
	return NewPromiseServiceWithClock(provider, warehouses, time.Now)
}

// NewPromiseServiceWithClock creates a promise service with an
// injected clock
func NewPromiseServiceWithClock(provider repositories.SupplyProvider, warehouses *entities.WarehouseMap, now func() time.Time) *PromiseService {
	if warehouses == nil {
		warehouses = entities.NewWarehouseMap(nil, nil)
	}
	return &PromiseService{provider: provider, warehouses: warehouses, now: now}
}

// ComputePromise calculates a delivery promise plan for one order.
//
// Line items are processed in request order; later lines see supply
// already consumed by earlier ones. In STRICT_FAIL mode any shortage
// aborts the computation with a ShortageError and no plan is returned.
// Provider failures propagate as SupplyUnavailableError; the engine
// never fabricates data for a missing snapshot.
func (s *PromiseService) ComputePromise(ctx context.Context, req *entities.PromiseRequest) (*entities.PromisePlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rules := req.Rules
	calendar := NewCalendarWithClock(rules, s.now)
	classifier := NewConfidenceClassifier(rules)
	builder := NewExplanationBuilder(classifier)
	engine := NewAllocationEngine(rules, s.warehouses, calendar)
	today := calendar.Today()

	items := make([]entities.ItemPromiseResult, 0, len(req.Items))
	for _, line := range req.Items {
		if !engine.Loaded(line.ItemCode) {
			stock, err := s.provider.GetStock(ctx, line.ItemCode, "")
			if err != nil {
				return nil, &entities.SupplyUnavailableError{ItemCode: line.ItemCode, Err: err}
			}
			supply, err := s.provider.GetIncomingSupply(ctx, line.ItemCode)
			if err != nil {
				return nil, &entities.SupplyUnavailableError{ItemCode: line.ItemCode, Err: err}
			}
			engine.Load(line.ItemCode, stock, supply)
		}

		result := engine.Allocate(line)
		if !result.Fulfilled() && rules.Mode == entities.ModeStrictFail {
			return nil, &entities.ShortageError{ItemCode: line.ItemCode, ShortQty: result.Unallocated}
		}

		item := entities.ItemPromiseResult{
			ItemCode:   line.ItemCode,
			Confidence: classifier.Classify(&result, today),
			Allocation: result,
			Reasons:    builder.Reasons(&result),
			Blockers:   builder.Blockers(&result, today),
			Options:    builder.Options(&result, engine.RemainingStock(line.ItemCode), today),
		}
		if result.Fulfilled() {
			item.PromiseDate = calendar.Apply(result.LatestDate())
		} else {
			item.Unfulfillable = true
		}

		slog.Debug("allocated line item",
			"item_code", line.ItemCode,
			"requested", line.Qty,
			"allocated", result.Allocated(),
			"unallocated", result.Unallocated,
			"confidence", item.Confidence)

		items = append(items, item)
	}

	plan := s.assemble(req, items)
	slog.Info("promise plan computed",
		"customer", req.Customer,
		"items", len(plan.Items),
		"promise_date", plan.PromiseDate.Format(dateLayout),
		"confidence", plan.Confidence,
		"fulfillable", plan.FullyFulfillable)
	return plan, nil
}

// assemble rolls per-item results up to the order level under the
// requested fulfillment mode. The overall date is the latest item date
// (an order ships complete); overall confidence is the weakest link.
func (s *PromiseService) assemble(req *entities.PromiseRequest, items []entities.ItemPromiseResult) *entities.PromisePlan {
	plan := &entities.PromisePlan{
		Customer:         req.Customer,
		Items:            items,
		Mode:             req.Rules.Mode,
		Confidence:       entities.ConfidenceHigh,
		GeneratedAt:      s.now(),
		FullyFulfillable: true,
	}

	for _, item := range items {
		plan.Confidence = plan.Confidence.Min(item.Confidence)
		if item.Unfulfillable {
			plan.FullyFulfillable = false
			continue
		}
		if item.PromiseDate.After(plan.PromiseDate) {
			plan.PromiseDate = item.PromiseDate
		}
	}

	if req.Rules.Mode == entities.ModeNoEarlyDelivery {
		for i := range plan.Items {
			if !plan.Items[i].Unfulfillable {
				plan.Items[i].PromiseDate = plan.PromiseDate
			}
		}
	}
	return plan
}
