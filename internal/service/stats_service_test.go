package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/models"
)

func TestStats_EmptyCompany(t *testing.T) {
	f := newFixture(t)

	stats, err := f.stats.GetOrderStats(context.Background(), f.admin)
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalOrders)
	require.Equal(t, 0.0, stats.AvgOrderAmount)
	require.Nil(t, stats.MostPopularProduct)
	require.Empty(t, stats.TopProducts)
	require.Empty(t, stats.SalesByDay)
}

func TestStats_AggregatesAndExcludesCancelled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	latte, _ := f.seedProduct(t, "latte", 4.0, 1000, 1)
	tea, _ := f.seedProduct(t, "tea", 2.0, 1000, 1)

	// Order 1: 2 lattes = 8.00
	f.fillCart(t, latte.ID, 2)
	f.checkout(t)

	// Order 2: 1 latte + 3 teas = 10.00
	f.fillCart(t, latte.ID, 1)
	f.fillCart(t, tea.ID, 3)
	f.checkout(t)

	// Order 3 is cancelled and must not count.
	f.fillCart(t, tea.ID, 5)
	cancelled := f.checkout(t)
	_, err := f.orders.Cancel(ctx, f.client, cancelled.ID)
	require.NoError(t, err)

	stats, err := f.stats.GetOrderStats(ctx, f.admin)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalOrders)
	require.Equal(t, 9.0, stats.AvgOrderAmount)

	// Both products sold 3 units; the tie breaks toward the lowest id.
	require.NotNil(t, stats.MostPopularProduct)
	expected := latte.ID
	if tea.ID < latte.ID {
		expected = tea.ID
	}
	require.Equal(t, expected, stats.MostPopularProduct.ProductID)

	require.Len(t, stats.TopProducts, 2)
	require.Len(t, stats.SalesByDay, 1)
	require.Equal(t, 18.0, stats.SalesByDay[0].Total)
}

func TestStats_StaffOnly(t *testing.T) {
	f := newFixture(t)

	_, err := f.stats.GetOrderStats(context.Background(), f.client)
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestStats_TopProductsCapped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	category, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Menu"})
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		product, err := f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
			CategoryID: category.ID,
			Name:       string(rune('a'+i)) + "-drink",
			Price:      1,
		})
		require.NoError(t, err)
		f.fillCart(t, product.ID, i+1)
		f.checkout(t)
	}

	stats, err := f.stats.GetOrderStats(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, stats.TopProducts, 10)
	// Ranked by quantity sold, best seller first.
	require.Equal(t, 12, stats.TopProducts[0].TotalQty)
	require.Equal(t, 3, stats.TopProducts[9].TotalQty)
}
