package repositories

import (
	"context"

	"github.com/sjoshi/otp/pkg/domain/entities"
)

// SupplyProvider exposes the stock and incoming-supply snapshots the
// promise engine allocates against. Implementations fetch from the ERP
// backend or from local data; the engine itself never talks to the
// network. A fetch failure must be returned as-is so the engine can
// propagate it unmodified.
//
// Cross-order reservation, if a deployment needs it, belongs behind
// this boundary; the engine only consumes a per-call snapshot.
type SupplyProvider interface {
	// GetStock returns stock positions for an item. When warehouse is
	// empty, positions for all warehouses are returned.
	GetStock(
		ctx context.Context,
		itemCode entities.ItemCode,
		warehouse entities.Warehouse,
	) ([]*entities.StockPosition, error)

	// GetIncomingSupply returns open incoming supply for an item,
	// sorted ascending by expected date.
	GetIncomingSupply(
		ctx context.Context,
		itemCode entities.ItemCode,
	) ([]*entities.IncomingSupply, error)
}
