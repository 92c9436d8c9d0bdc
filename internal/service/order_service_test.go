package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/models"
)

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Checkout(context.Background(), f.client, CheckoutRequest{OrderType: models.OrderTypeDineIn})
	require.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckout_CreatesOrderAndConsumesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, item := f.seedProduct(t, "latte", 4.5, 100, 10)

	f.fillCart(t, product.ID, 3)
	order := f.checkout(t)

	require.Equal(t, models.StatusNew, order.Status)
	require.Equal(t, 13.5, order.TotalAmount)
	require.Len(t, order.Items, 1)
	require.Equal(t, 3, order.Items[0].Quantity)

	// 3 units x 10 per unit consumed.
	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, 70.0, got.Quantity)

	// Cart is cleared only after the order committed.
	view, err := f.cart.GetCart(ctx, f.client)
	require.NoError(t, err)
	require.Empty(t, view.Items)

	require.Equal(t, []string{order.ID}, f.publisher.created)
}

func TestCheckout_RepricesFromCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)

	f.fillCart(t, product.ID, 2)

	// Price changes between add and checkout; the live price wins.
	newPrice := 6.0
	require.NoError(t, f.menu.UpdateProduct(ctx, f.admin, product.ID, UpdateProductRequest{Price: &newPrice}))

	order := f.checkout(t)
	require.Equal(t, 12.0, order.TotalAmount)
	require.Equal(t, 6.0, order.Items[0].UnitPrice)
}

func TestCheckout_ProductSwitchedOff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)

	f.fillCart(t, product.ID, 1)

	off := false
	require.NoError(t, f.menu.UpdateProduct(ctx, f.admin, product.ID, UpdateProductRequest{IsAvailable: &off}))

	_, err := f.orders.Checkout(ctx, f.client, CheckoutRequest{OrderType: models.OrderTypeDineIn})
	var unavailableErr *models.ProductUnavailableError
	require.ErrorAs(t, err, &unavailableErr)
	require.Equal(t, product.ID, unavailableErr.ProductID)

	// The cart survives a failed checkout.
	view, err := f.cart.GetCart(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, item := f.seedProduct(t, "latte", 4.5, 15, 10)

	f.fillCart(t, product.ID, 2) // needs 20, only 15 in stock

	_, err := f.orders.Checkout(ctx, f.client, CheckoutRequest{OrderType: models.OrderTypeDineIn})
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, item.ID, stockErr.InventoryItemID)
	require.Equal(t, 20.0, stockErr.Requested)

	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, 15.0, got.Quantity)
}

func TestCheckout_AggregatesSharedIngredient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item, err := f.inventory.CreateItem(ctx, f.admin, CreateInventoryItemRequest{Name: "milk", Unit: "ml", Quantity: 100})
	require.NoError(t, err)
	category, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Drinks"})
	require.NoError(t, err)

	latte, err := f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "latte", Price: 4,
		Recipe: []models.RecipeLine{{InventoryItemID: item.ID, AmountPerUnit: 30}},
	})
	require.NoError(t, err)
	flat, err := f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "flat white", Price: 4.5,
		Recipe: []models.RecipeLine{{InventoryItemID: item.ID, AmountPerUnit: 40}},
	})
	require.NoError(t, err)

	// Combined demand 2x30 + 1x40 = 100 exactly drains the stock.
	f.fillCart(t, latte.ID, 2)
	f.fillCart(t, flat.ID, 1)
	f.checkout(t)

	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Quantity)
}

func TestCheckout_ConcurrentOversellBlocked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, item := f.seedProduct(t, "latte", 4.5, 10, 10)

	// Stock supports exactly one unit; two clients race for it.
	clients := []models.Caller{
		{UserID: "racer-1", Role: models.RoleClient},
		{UserID: "racer-2", Role: models.RoleClient},
	}
	for _, c := range clients {
		_, err := f.cart.AddItem(ctx, c, CartItemRequest{CompanyID: "c1", ProductID: product.ID, Amount: 1})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	results := make([]error, len(clients))
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c models.Caller) {
			defer wg.Done()
			_, results[i] = f.orders.Checkout(ctx, c, CheckoutRequest{OrderType: models.OrderTypeTakeaway})
		}(i, c)
	}
	wg.Wait()

	var failures int
	for _, err := range results {
		if err != nil {
			var stockErr *models.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			failures++
		}
	}
	require.Equal(t, 1, failures, "exactly one checkout must lose the race")

	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Quantity)
}

func TestAdvance_HappyPathAndIllegalJump(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)
	f.fillCart(t, product.ID, 1)
	order := f.checkout(t)

	// NEW -> READY skips a step and is rejected.
	_, err := f.orders.Advance(ctx, f.admin, order.ID, models.StatusReady)
	var transitionErr *models.IllegalTransitionError
	require.ErrorAs(t, err, &transitionErr)

	for _, next := range []models.OrderStatus{models.StatusInProgress, models.StatusReady, models.StatusDone} {
		updated, err := f.orders.Advance(ctx, f.admin, order.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, updated.Status)
	}

	got, err := f.orders.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)

	// Terminal orders admit no further moves.
	_, err = f.orders.Advance(ctx, f.admin, order.ID, models.StatusInProgress)
	require.ErrorAs(t, err, &transitionErr)

	history, err := f.orders.GetStatusHistory(ctx, f.admin, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
}

func TestAdvance_RequiresCompanyStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)
	f.fillCart(t, product.ID, 1)
	order := f.checkout(t)

	_, err := f.orders.Advance(ctx, f.client, order.ID, models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrForbidden)

	otherStaff := models.Caller{UserID: "emp-9", Role: models.RoleEmployee, CompanyID: "c2"}
	_, err = f.orders.Advance(ctx, otherStaff, order.ID, models.StatusInProgress)
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestCancel_OnlyClientAndOnlyFromNew(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, item := f.seedProduct(t, "latte", 4.5, 100, 10)
	f.fillCart(t, product.ID, 1)
	order := f.checkout(t)

	// Staff cannot use the client cancel path.
	_, err := f.orders.Cancel(ctx, f.admin, order.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	cancelled, err := f.orders.Cancel(ctx, f.client, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, cancelled.Status)

	// Consumed stock stays consumed after cancellation.
	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, 90.0, got.Quantity)

	// A started order is no longer cancellable.
	f.fillCart(t, product.ID, 1)
	second := f.checkout(t)
	_, err = f.orders.Advance(ctx, f.admin, second.ID, models.StatusInProgress)
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, f.client, second.ID)
	var transitionErr *models.IllegalTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestBoard_ActiveAndFinishedSplit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)

	f.fillCart(t, product.ID, 1)
	open := f.checkout(t)

	f.fillCart(t, product.ID, 1)
	done := f.checkout(t)
	for _, next := range []models.OrderStatus{models.StatusInProgress, models.StatusReady, models.StatusDone} {
		_, err := f.orders.Advance(ctx, f.admin, done.ID, next)
		require.NoError(t, err)
	}

	f.fillCart(t, product.ID, 1)
	cancelled := f.checkout(t)
	_, err := f.orders.Cancel(ctx, f.client, cancelled.ID)
	require.NoError(t, err)

	// The DONE order completed moments ago, so it still shows on the
	// active board inside the display window.
	active, err := f.orders.ListActive(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, active, 2)
	ids := map[string]bool{}
	for _, o := range active {
		ids[o.ID] = true
	}
	require.True(t, ids[open.ID])
	require.True(t, ids[done.ID])

	finished, err := f.orders.ListFinished(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, finished, 1)
	require.Equal(t, cancelled.ID, finished[0].ID)
}

func TestBoard_DoneLeavesActiveAfterWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.orders.doneVisibleFor = 10 * time.Millisecond

	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)
	f.fillCart(t, product.ID, 1)
	order := f.checkout(t)
	for _, next := range []models.OrderStatus{models.StatusInProgress, models.StatusReady, models.StatusDone} {
		_, err := f.orders.Advance(ctx, f.admin, order.ID, next)
		require.NoError(t, err)
	}

	time.Sleep(20 * time.Millisecond)

	active, err := f.orders.ListActive(ctx, f.admin)
	require.NoError(t, err)
	require.Empty(t, active)

	finished, err := f.orders.ListFinished(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, finished, 1)
}

func TestGetOrder_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)
	f.fillCart(t, product.ID, 1)
	order := f.checkout(t)

	// Placing client and company staff can read; strangers cannot.
	_, err := f.orders.GetOrder(ctx, f.client, order.ID)
	require.NoError(t, err)
	_, err = f.orders.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)

	stranger := models.Caller{UserID: "other", Role: models.RoleClient}
	_, err = f.orders.GetOrder(ctx, stranger, order.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	mine, err := f.orders.ListMyOrders(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, mine.Active, 1)
}

func TestListMyOrders_SplitsActiveFinished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)

	f.fillCart(t, product.ID, 1)
	open := f.checkout(t)

	f.fillCart(t, product.ID, 1)
	cancelled := f.checkout(t)
	_, err := f.orders.Cancel(ctx, f.client, cancelled.ID)
	require.NoError(t, err)

	f.fillCart(t, product.ID, 1)
	done := f.checkout(t)
	for _, next := range []models.OrderStatus{models.StatusInProgress, models.StatusReady, models.StatusDone} {
		_, err := f.orders.Advance(ctx, f.admin, done.ID, next)
		require.NoError(t, err)
	}

	// The fresh DONE order sits in active until the window lapses.
	mine, err := f.orders.ListMyOrders(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, mine.Active, 2)
	require.Len(t, mine.Finished, 1)
	require.Equal(t, cancelled.ID, mine.Finished[0].ID)

	activeIDs := map[string]bool{}
	for _, o := range mine.Active {
		activeIDs[o.ID] = true
	}
	require.True(t, activeIDs[open.ID])
	require.True(t, activeIDs[done.ID])

	f.orders.doneVisibleFor = 0
	mine, err = f.orders.ListMyOrders(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, mine.Active, 1)
	require.Len(t, mine.Finished, 2)
}
