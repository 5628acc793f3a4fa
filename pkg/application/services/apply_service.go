package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/domain/repositories"
)

// ApplyService writes computed promises back onto sales orders. A
// failed write is recovered locally as a WriteBackError so batch
// processing continues past individual orders.
type ApplyService struct {
	writer    repositories.SalesOrderWriter
	suggester repositories.ProcurementSuggester
}

// NewApplyService creates an apply service. The suggester may be nil
// when procurement suggestions are not wired up.
func NewApplyService(writer repositories.SalesOrderWriter, suggester repositories.ProcurementSuggester) *ApplyService {
	return &ApplyService{writer: writer, suggester: suggester}
}

// ApplyOutcome reports what one write-back did
type ApplyOutcome struct {
	SalesOrderID string
	ActionsTaken []string
	Err          error
}

// ApplyRequest pairs a computed plan with its originating sales order
type ApplyRequest struct {
	SalesOrderID string
	Plan         *entities.PromisePlan
}

// ApplyPromise persists one plan to its sales order. The promise goes
// to the order's custom fields when they exist; otherwise a note is
// appended. Setting a field twice with the same value is a no-op on the
// ERP side, which keeps the write-back idempotent.
func (s *ApplyService) ApplyPromise(ctx context.Context, salesOrderID string, plan *entities.PromisePlan) (*ApplyOutcome, error) {
	outcome := &ApplyOutcome{SalesOrderID: salesOrderID}

	exists, err := s.writer.SalesOrderExists(ctx, salesOrderID)
	if err != nil {
		return outcome, &entities.WriteBackError{SalesOrderID: salesOrderID, Err: err}
	}
	if !exists {
		return outcome, &entities.WriteBackError{
			SalesOrderID: salesOrderID,
			Err:          fmt.Errorf("sales order not found"),
		}
	}

	if err := s.writer.SetPromiseFields(ctx, salesOrderID, plan.PromiseDate, plan.Confidence); err != nil {
		slog.Warn("promise fields not writable, falling back to comment",
			"sales_order", salesOrderID, "error", err)
		comment := fmt.Sprintf("Order promise date: %s (confidence: %s). Calculated by the OTP engine.",
			plan.PromiseDate.Format(dateLayout), plan.Confidence)
		if err := s.writer.AddComment(ctx, salesOrderID, comment); err != nil {
			return outcome, &entities.WriteBackError{SalesOrderID: salesOrderID, Err: err}
		}
		outcome.ActionsTaken = append(outcome.ActionsTaken, "added promise comment")
		return outcome, nil
	}

	outcome.ActionsTaken = append(outcome.ActionsTaken, "set promise custom fields")
	return outcome, nil
}

// ApplyBatch persists many plans, continuing past per-order failures.
// Each outcome carries its own error; the batch itself never aborts.
func (s *ApplyService) ApplyBatch(ctx context.Context, requests []ApplyRequest) []ApplyOutcome {
	outcomes := make([]ApplyOutcome, 0, len(requests))
	for _, req := range requests {
		outcome, err := s.ApplyPromise(ctx, req.SalesOrderID, req.Plan)
		if err != nil {
			slog.Error("write-back failed, continuing batch",
				"sales_order", req.SalesOrderID, "error", err)
			outcome.Err = err
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes
}

// SuggestProcurement raises a material request covering every
// unfulfillable line in a plan and returns its identifier. Returns an
// empty id when the plan has no shortages.
func (s *ApplyService) SuggestProcurement(ctx context.Context, plan *entities.PromisePlan, priority string) (string, error) {
	if s.suggester == nil {
		return "", fmt.Errorf("procurement suggester not configured")
	}

	var lines []repositories.MaterialRequestLine
	for _, item := range plan.Items {
		if !item.Unfulfillable {
			continue
		}
		requiredBy := plan.PromiseDate
		if requiredBy.IsZero() {
			requiredBy = plan.GeneratedAt
		}
		lines = append(lines, repositories.MaterialRequestLine{
			ItemCode:   item.ItemCode,
			Qty:        item.Allocation.Unallocated,
			RequiredBy: requiredBy,
			Reason:     fmt.Sprintf("shortage for customer %s", plan.Customer),
		})
	}
	if len(lines) == 0 {
		return "", nil
	}

	id, err := s.suggester.CreateMaterialRequest(ctx, lines, priority)
	if err != nil {
		return "", fmt.Errorf("failed to create material request: %w", err)
	}
	slog.Info("material request created", "id", id, "lines", len(lines))
	return id, nil
}
