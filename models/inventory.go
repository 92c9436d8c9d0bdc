package models

import "time"

// InventoryItem is the authoritative stock record for one ingredient
// of one company. Quantity never goes below zero; consumption that
// would drive it negative is rejected atomically.
type InventoryItem struct {
	ID          string  `json:"ingredient_id" db:"id"`
	CompanyID   string  `json:"company_id" db:"company_id"`
	Name        string  `json:"name" db:"name"`
	Unit        string  `json:"unit" db:"unit"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	MinQuantity float64 `json:"min_quantity" db:"min_quantity"`
}

// LowStock reports whether the item has fallen to or below its
// configured minimum.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// InventoryMovement is an audit record of one stock change: positive
// for replenishment, negative for consumption.
type InventoryMovement struct {
	ID              string    `json:"id" db:"id"`
	InventoryItemID string    `json:"inventory_item_id" db:"inventory_item_id"`
	QuantityChange  float64   `json:"quantity_change" db:"quantity_change"`
	Reason          string    `json:"reason" db:"reason"`
	CreatedBy       string    `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
