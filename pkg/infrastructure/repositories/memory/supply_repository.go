package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sjoshi/otp/pkg/domain/entities"
	"github.com/sjoshi/otp/pkg/domain/repositories"
)

// SupplyRepository provides in-memory stock and supply snapshots, used
// for tests, demos and mock-supply deployments where the ERP backend is
// unavailable
type SupplyRepository struct {
	mu     sync.RWMutex
	stock  []entities.StockPosition
	supply []entities.IncomingSupply
}

// NewSupplyRepository creates an empty in-memory supply repository
func NewSupplyRepository() *SupplyRepository {
	return &SupplyRepository{}
}

// Verify interface compliance
var _ repositories.SupplyProvider = (*SupplyRepository)(nil)

// AddStock adds a stock position to the repository
func (r *SupplyRepository) AddStock(pos entities.StockPosition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock = append(r.stock, pos)
}

// AddSupply adds an incoming supply entry to the repository
func (r *SupplyRepository) AddSupply(sup entities.IncomingSupply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supply = append(r.supply, sup)
}

// LoadStock loads stock positions into the repository
func (r *SupplyRepository) LoadStock(positions []*entities.StockPosition) {
	for _, pos := range positions {
		r.AddStock(*pos)
	}
}

// LoadSupply loads incoming supply entries into the repository
func (r *SupplyRepository) LoadSupply(supplies []*entities.IncomingSupply) {
	for _, sup := range supplies {
		r.AddSupply(*sup)
	}
}

// GetStock returns stock positions for an item, optionally filtered to
// one warehouse
func (r *SupplyRepository) GetStock(_ context.Context, itemCode entities.ItemCode, warehouse entities.Warehouse) ([]*entities.StockPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.StockPosition
	for i := range r.stock {
		pos := r.stock[i]
		if pos.ItemCode != itemCode {
			continue
		}
		if warehouse != "" && pos.Warehouse != warehouse {
			continue
		}
		result = append(result, &pos)
	}
	return result, nil
}

// GetIncomingSupply returns incoming supply for an item sorted
// ascending by expected date, reference as the tie-break
func (r *SupplyRepository) GetIncomingSupply(_ context.Context, itemCode entities.ItemCode) ([]*entities.IncomingSupply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.IncomingSupply
	for i := range r.supply {
		sup := r.supply[i]
		if sup.ItemCode == itemCode {
			result = append(result, &sup)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ExpectedDate.Equal(result[j].ExpectedDate) {
			return result[i].ExpectedDate.Before(result[j].ExpectedDate)
		}
		return result[i].Reference < result[j].Reference
	})
	return result, nil
}
