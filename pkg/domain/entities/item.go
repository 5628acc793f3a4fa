package entities

// ItemCode represents a unique item identifier in the ERP backend
type ItemCode string

// Warehouse represents a warehouse identifier
type Warehouse string
