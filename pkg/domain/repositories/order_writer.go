package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// SalesOrderWriter persists computed promises back onto the originating
// sales order in the ERP backend
type SalesOrderWriter interface {
	// SalesOrderExists verifies the target order before any write.
	SalesOrderExists(ctx context.Context, salesOrderID string) (bool, error)

	// SetPromiseFields writes the promise date and confidence to the
	// order's custom fields.
	SetPromiseFields(
		ctx context.Context,
		salesOrderID string,
		promiseDate time.Time,
		confidence entities.ConfidenceLevel,
	) error

	// AddComment appends a note to the order.
	AddComment(ctx context.Context, salesOrderID, comment string) error
}

// ProcurementSuggester raises procurement paperwork for shortages
type ProcurementSuggester interface {
	// CreateMaterialRequest creates a material request covering the
	// given shortage lines and returns its identifier.
	CreateMaterialRequest(
		ctx context.Context,
		lines []MaterialRequestLine,
		priority string,
	) (string, error)
}

// MaterialRequestLine is one shortage line in a material request
type MaterialRequestLine struct {
	ItemCode   entities.ItemCode
	Qty        decimal.Decimal
	RequiredBy time.Time
	Reason     string
}
