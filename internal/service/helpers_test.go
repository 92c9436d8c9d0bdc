package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// capturePublisher records board events for assertions.
type capturePublisher struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (p *capturePublisher) PublishOrderCreated(order *models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, order.ID)
}

func (p *capturePublisher) PublishStatusChanged(order *models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, order.ID)
}

type fixture struct {
	store     *repositories.MemoryStore
	cartStore *repositories.MemoryCartStore
	menu      *MenuService
	inventory *InventoryService
	cart      *CartService
	orders    *OrderService
	stats     *StatsService
	publisher *capturePublisher

	admin  models.Caller
	client models.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stdout"})
	store := repositories.NewMemoryStore(log)
	cartStore := repositories.NewMemoryCartStore(log)
	publisher := &capturePublisher{}

	menu := NewMenuService(store, store, log)
	inventory := NewInventoryService(store, log)
	cart := NewCartService(cartStore, menu, log)
	orders := NewOrderService(store, menu, cartStore, publisher, time.Minute, log)
	stats := NewStatsService(store, log)

	return &fixture{
		store:     store,
		cartStore: cartStore,
		menu:      menu,
		inventory: inventory,
		cart:      cart,
		orders:    orders,
		stats:     stats,
		publisher: publisher,
		admin:     models.Caller{UserID: "admin-1", Role: models.RoleCompanyAdmin, CompanyID: "c1"},
		client:    models.Caller{UserID: "client-1", Role: models.RoleClient},
	}
}

// seedProduct creates an inventory item, a category and a product with
// a one-line recipe consuming amountPerUnit of the item.
func (f *fixture) seedProduct(t *testing.T, name string, price, stock, amountPerUnit float64) (*models.Product, *models.InventoryItem) {
	t.Helper()
	ctx := context.Background()

	item, err := f.inventory.CreateItem(ctx, f.admin, CreateInventoryItemRequest{
		Name: name + " base", Unit: "g", Quantity: stock,
	})
	require.NoError(t, err)

	category, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: name + " category"})
	require.NoError(t, err)

	product, err := f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID,
		Name:       name,
		Price:      price,
		Recipe:     []models.RecipeLine{{InventoryItemID: item.ID, AmountPerUnit: amountPerUnit}},
	})
	require.NoError(t, err)

	return product, item
}

func (f *fixture) fillCart(t *testing.T, productID string, amount int) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), f.client, CartItemRequest{
		CompanyID: "c1", ProductID: productID, Amount: amount,
	})
	require.NoError(t, err)
}

func (f *fixture) checkout(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.orders.Checkout(context.Background(), f.client, CheckoutRequest{OrderType: models.OrderTypeTakeaway})
	require.NoError(t, err)
	return order
}
