package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stdout"})
}

func setupStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(testLogger(t))
}

func addItem(t *testing.T, store *MemoryStore, companyID, name string, qty float64) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{CompanyID: companyID, Name: name, Unit: "g", Quantity: qty}
	require.NoError(t, store.Add(context.Background(), item))
	return item
}

func TestInventory_AddAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	item := addItem(t, store, "c1", "espresso beans", 500)
	require.NotEmpty(t, item.ID)

	got, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, "espresso beans", got.Name)
	require.Equal(t, 500.0, got.Quantity)

	_, err = store.GetByID(ctx, "missing")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestInventory_AdjustQuantity(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	item := addItem(t, store, "c1", "milk", 10)

	updated, err := store.AdjustQuantity(ctx, item.ID, -4, "spillage", "emp-1")
	require.NoError(t, err)
	require.Equal(t, 6.0, updated.Quantity)

	// Over-draw is rejected and leaves the quantity untouched.
	_, err = store.AdjustQuantity(ctx, item.ID, -7, "spillage", "emp-1")
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 6.0, stockErr.Available)

	current, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, 6.0, current.Quantity)

	moves, err := store.GetMovements(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.Equal(t, -4.0, moves[0].QuantityChange)
	require.Equal(t, "spillage", moves[0].Reason)
}

func TestOrder_CreateConsumesStock(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	beans := addItem(t, store, "c1", "beans", 100)
	milk := addItem(t, store, "c1", "milk", 50)

	order := &models.Order{
		CompanyID: "c1",
		ClientID:  "u1",
		Status:    models.StatusNew,
		OrderType: models.OrderTypeTakeaway,
		Items:     []models.OrderItem{{ProductID: "p1", ProductName: "latte", Quantity: 2, UnitPrice: 4.5}},
		CreatedAt: time.Now().UTC(),
	}
	consumption := map[string]float64{beans.ID: 30, milk.ID: 40}

	require.NoError(t, store.Create(ctx, order, consumption))
	require.NotEmpty(t, order.ID)

	gotBeans, _ := store.GetByID(ctx, beans.ID)
	gotMilk, _ := store.GetByID(ctx, milk.ID)
	require.Equal(t, 70.0, gotBeans.Quantity)
	require.Equal(t, 10.0, gotMilk.Quantity)

	history, err := store.GetStatusHistory(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.StatusNew, history[0].Status)
}

func TestOrder_CreateShortfallLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	beans := addItem(t, store, "c1", "beans", 100)
	milk := addItem(t, store, "c1", "milk", 5)

	order := &models.Order{
		CompanyID: "c1",
		ClientID:  "u1",
		Status:    models.StatusNew,
		OrderType: models.OrderTypeDineIn,
		Items:     []models.OrderItem{{ProductID: "p1", ProductName: "latte", Quantity: 1, UnitPrice: 4.5}},
		CreatedAt: time.Now().UTC(),
	}

	err := store.Create(ctx, order, map[string]float64{beans.ID: 30, milk.ID: 40})
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, milk.ID, stockErr.InventoryItemID)

	// Neither ingredient was decremented and no order was stored.
	gotBeans, _ := store.GetByID(ctx, beans.ID)
	require.Equal(t, 100.0, gotBeans.Quantity)
	orders, err := store.ListByClient(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestOrder_UpdateStatusCAS(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	item := addItem(t, store, "c1", "beans", 100)

	order := &models.Order{
		CompanyID: "c1",
		ClientID:  "u1",
		Status:    models.StatusNew,
		OrderType: models.OrderTypeDineIn,
		Items:     []models.OrderItem{{ProductID: "p1", ProductName: "latte", Quantity: 1, UnitPrice: 4.5}},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Create(ctx, order, map[string]float64{item.ID: 1}))

	require.NoError(t, store.UpdateStatus(ctx, order.ID, models.StatusNew, models.StatusInProgress, nil))

	// The second actor expected NEW and must lose the race.
	err := store.UpdateStatus(ctx, order.ID, models.StatusNew, models.StatusCancelled, nil)
	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, got.Status)

	history, _ := store.GetStatusHistory(ctx, order.ID)
	require.Len(t, history, 2)
}

func TestProduct_RecipeRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	item := addItem(t, store, "c1", "beans", 100)

	require.NoError(t, store.AddCategory(ctx, &models.MenuCategory{CompanyID: "c1", Name: "Coffee", IsActive: true}))

	product := &models.Product{CompanyID: "c1", Name: "espresso", Price: 3}
	require.NoError(t, store.AddProduct(ctx, product))

	lines := []models.RecipeLine{{InventoryItemID: item.ID, AmountPerUnit: 18}}
	require.NoError(t, store.ReplaceRecipe(ctx, product.ID, lines))

	got, err := store.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, got.Recipe, 1)
	require.Equal(t, 18.0, got.Recipe[0].AmountPerUnit)

	// Rejected lines never partially apply.
	err = store.ReplaceRecipe(ctx, product.ID, []models.RecipeLine{{InventoryItemID: item.ID, AmountPerUnit: 0}})
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestCartStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCartStore(testLogger(t))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got)

	cart := &models.Cart{
		ClientID:  "u1",
		CompanyID: "c1",
		Items:     []models.CartItem{{ProductID: "p1", ProductName: "latte", Quantity: 2, UnitPrice: 4.5}},
	}
	require.NoError(t, store.Save(ctx, cart))

	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "c1", got.CompanyID)
	require.Len(t, got.Items, 1)

	// The stored cart is isolated from later mutation of the copy.
	got.Items[0].Quantity = 99
	again, _ := store.Get(ctx, "u1")
	require.Equal(t, 2, again.Items[0].Quantity)

	require.NoError(t, store.Delete(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got)
}
