package models

import "time"

// MenuCategory groups a company's products. Inactive categories are
// hidden from the public menu but remain editable by staff.
type MenuCategory struct {
	ID          string    `json:"id" db:"id"`
	CompanyID   string    `json:"company_id" db:"company_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product is a sellable item. AvailableQuantity is derived from the
// recipe and current stock on every read, never stored; nil means the
// recipe is empty and availability is governed by the flag alone.
type Product struct {
	ID                string       `json:"product_id" db:"id"`
	CompanyID         string       `json:"company_id" db:"company_id"`
	CategoryID        string       `json:"category_id" db:"category_id"`
	Name              string       `json:"name" db:"name"`
	Price             float64      `json:"price" db:"price"`
	IsAvailable       bool         `json:"is_available" db:"is_available"`
	Recipe            []RecipeLine `json:"recipe,omitempty"`
	AvailableQuantity *int         `json:"available_quantity,omitempty"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// RecipeLine maps a product to one inventory item it consumes per
// unit sold. A product's recipe is replaced wholesale on update.
type RecipeLine struct {
	InventoryItemID string  `json:"inventory_item_id" db:"inventory_item_id"`
	AmountPerUnit   float64 `json:"amount_per_unit" db:"amount_per_unit"`
}

// MenuCategoryView is one category with its products, as served to
// clients browsing the menu.
type MenuCategoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Products    []Product `json:"products"`
}
