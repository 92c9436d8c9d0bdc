package repositories

import (
	"context"
	"time"

	"github.com/Gomonuka/cafe-management/models"
)

// InventoryRepositoryInterface is the stock ledger storage contract.
type InventoryRepositoryInterface interface {
	GetAll(ctx context.Context, companyID string) ([]*models.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Add(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, id string, item *models.InventoryItem) error
	// AdjustQuantity applies a signed stock change as a conditional
	// update: a change that would drive quantity below zero fails with
	// InsufficientStockError and leaves the row untouched. A movement
	// audit record is written with the adjustment.
	AdjustQuantity(ctx context.Context, id string, change float64, reason, actor string) (*models.InventoryItem, error)
	Delete(ctx context.Context, id string) error
	GetMovements(ctx context.Context, itemID string) ([]*models.InventoryMovement, error)
}

// MenuRepositoryInterface stores categories, products and recipes.
type MenuRepositoryInterface interface {
	GetCategories(ctx context.Context, companyID string) ([]*models.MenuCategory, error)
	AddCategory(ctx context.Context, category *models.MenuCategory) error
	UpdateCategory(ctx context.Context, id string, category *models.MenuCategory) error
	DeleteCategory(ctx context.Context, id string) error

	GetProducts(ctx context.Context, companyID string) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	AddProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id string, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// ReplaceRecipe swaps a product's recipe wholesale; partial patch
	// is not supported.
	ReplaceRecipe(ctx context.Context, productID string, lines []models.RecipeLine) error
}

// OrderRepositoryInterface persists orders and their status history.
type OrderRepositoryInterface interface {
	// Create persists the order and applies the aggregated inventory
	// consumption (inventory item id -> amount) as one atomic unit.
	// When any decrement would drive stock negative the whole call
	// fails with InsufficientStockError and nothing is written.
	Create(ctx context.Context, order *models.Order, consumption map[string]float64) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListByClient(ctx context.Context, clientID string) ([]*models.Order, error)
	ListByCompany(ctx context.Context, companyID string) ([]*models.Order, error)
	// UpdateStatus moves an order from an expected current status to a
	// new one. The update is conditional on the expected status so two
	// racing staff actions cannot both succeed; the loser gets
	// ConflictError.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, completedAt *time.Time) error
	GetStatusHistory(ctx context.Context, orderID string) ([]*models.StatusChange, error)
}

// CartStoreInterface holds carts as ephemeral session state, keyed by
// client. Get returns (nil, nil) when the client has no cart.
type CartStoreInterface interface {
	Get(ctx context.Context, clientID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, clientID string) error
}
