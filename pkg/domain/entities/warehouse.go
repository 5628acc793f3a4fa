package entities

import (
	"strings"
)

// WarehouseType classifies how a warehouse's stock can satisfy demand.
// Only sellable warehouses contribute to immediate availability; transit
// stock surfaces as future supply, and WIP or rejected stock never
// satisfies demand.
type WarehouseType int

const (
	WarehouseSellable WarehouseType = iota
	WarehouseNeedsProcessing
	WarehouseInTransit
	WarehouseNotAvailable
	WarehouseGroup
)

// String method for WarehouseType enum
func (t WarehouseType) String() string {
	switch t {
	case WarehouseSellable:
		return "SELLABLE"
	case WarehouseNeedsProcessing:
		return "NEEDS_PROCESSING"
	case WarehouseInTransit:
		return "IN_TRANSIT"
	case WarehouseNotAvailable:
		return "NOT_AVAILABLE"
	case WarehouseGroup:
		return "GROUP"
	default:
		return "Unknown"
	}
}

// WarehouseMap holds warehouse classification overrides and the group
// hierarchy used to expand logical container warehouses.
type WarehouseMap struct {
	Classifications map[string]WarehouseType
	Hierarchy       map[string][]Warehouse
}

// NewWarehouseMap creates a WarehouseMap with the given overrides
func NewWarehouseMap(classifications map[string]WarehouseType, hierarchy map[string][]Warehouse) *WarehouseMap {
	if classifications == nil {
		classifications = map[string]WarehouseType{}
	}
	if hierarchy == nil {
		hierarchy = map[string][]Warehouse{}
	}
	return &WarehouseMap{Classifications: classifications, Hierarchy: hierarchy}
}

// Classify determines the type of a warehouse. Explicit overrides win;
// otherwise the name is pattern matched, defaulting to SELLABLE for
// stores-like warehouses.
func (m *WarehouseMap) Classify(warehouse Warehouse) WarehouseType {
	name := strings.ToLower(strings.TrimSpace(string(warehouse)))
	if name == "" {
		return WarehouseSellable
	}
	if t, ok := m.Classifications[name]; ok {
		return t
	}

	switch {
	case strings.Contains(name, "transit"):
		return WarehouseInTransit
	case strings.Contains(name, "wip"), strings.Contains(name, "work in progress"):
		return WarehouseNotAvailable
	case strings.Contains(name, "scrap"), strings.Contains(name, "reject"):
		return WarehouseNotAvailable
	case strings.Contains(name, "finished"):
		return WarehouseNeedsProcessing
	case strings.Contains(name, "all "), strings.Contains(name, "group"):
		return WarehouseGroup
	}
	return WarehouseSellable
}

// Expand replaces group warehouses with their children, preserving
// order and dropping duplicates
func (m *WarehouseMap) Expand(warehouses []Warehouse) []Warehouse {
	var expanded []Warehouse
	for _, w := range warehouses {
		if m.Classify(w) == WarehouseGroup {
			children := m.Hierarchy[strings.ToLower(strings.TrimSpace(string(w)))]
			expanded = append(expanded, children...)
			continue
		}
		expanded = append(expanded, w)
	}

	seen := make(map[string]bool, len(expanded))
	result := expanded[:0]
	for _, w := range expanded {
		key := strings.ToLower(strings.TrimSpace(string(w)))
		if !seen[key] {
			seen[key] = true
			result = append(result, w)
		}
	}
	return result
}

// Sellable reports whether a warehouse's stock can satisfy demand now
func (m *WarehouseMap) Sellable(warehouse Warehouse) bool {
	t := m.Classify(warehouse)
	return t == WarehouseSellable || t == WarehouseNeedsProcessing
}
