package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/models"
)

func TestPublicMenu_AvailabilityDerivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	beans, err := f.inventory.CreateItem(ctx, f.admin, CreateInventoryItemRequest{Name: "beans", Unit: "g", Quantity: 95})
	require.NoError(t, err)
	milk, err := f.inventory.CreateItem(ctx, f.admin, CreateInventoryItemRequest{Name: "milk", Unit: "ml", Quantity: 350})
	require.NoError(t, err)

	category, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Coffee"})
	require.NoError(t, err)

	// floor(95/18)=5 espressos, but milk floor(350/150)=2 bounds lattes.
	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "espresso", Price: 3,
		Recipe: []models.RecipeLine{{InventoryItemID: beans.ID, AmountPerUnit: 18}},
	})
	require.NoError(t, err)
	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "latte", Price: 4.5,
		Recipe: []models.RecipeLine{
			{InventoryItemID: beans.ID, AmountPerUnit: 18},
			{InventoryItemID: milk.ID, AmountPerUnit: 150},
		},
	})
	require.NoError(t, err)
	// No recipe: availability is unconstrained by stock.
	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "bottled water", Price: 1.5,
	})
	require.NoError(t, err)

	menu, err := f.menu.GetPublicMenu(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	require.Len(t, menu[0].Products, 3)

	byName := map[string]models.Product{}
	for _, p := range menu[0].Products {
		byName[p.Name] = p
	}

	require.NotNil(t, byName["espresso"].AvailableQuantity)
	require.Equal(t, 5, *byName["espresso"].AvailableQuantity)
	require.NotNil(t, byName["latte"].AvailableQuantity)
	require.Equal(t, 2, *byName["latte"].AvailableQuantity)
	require.Nil(t, byName["bottled water"].AvailableQuantity)
}

func TestPublicMenu_HidesInactiveAndUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	active, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Visible"})
	require.NoError(t, err)
	inactive := false
	hidden, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Hidden", IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{CategoryID: active.ID, Name: "shown", Price: 2})
	require.NoError(t, err)
	off := false
	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{CategoryID: active.ID, Name: "switched off", Price: 2, IsAvailable: &off})
	require.NoError(t, err)
	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{CategoryID: hidden.ID, Name: "in hidden", Price: 2})
	require.NoError(t, err)

	menu, err := f.menu.GetPublicMenu(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, menu, 1)
	require.Equal(t, "Visible", menu[0].Name)
	require.Len(t, menu[0].Products, 1)
	require.Equal(t, "shown", menu[0].Products[0].Name)
}

func TestMenu_StaffOnlyWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.menu.CreateCategory(ctx, f.client, CreateCategoryRequest{Name: "Nope"})
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.menu.CreateProduct(ctx, f.client, CreateProductRequest{Name: "Nope", Price: 1})
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestMenu_RecipeRejectsUnknownIngredient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	category, err := f.menu.CreateCategory(ctx, f.admin, CreateCategoryRequest{Name: "Coffee"})
	require.NoError(t, err)

	_, err = f.menu.CreateProduct(ctx, f.admin, CreateProductRequest{
		CategoryID: category.ID, Name: "latte", Price: 4,
		Recipe: []models.RecipeLine{{InventoryItemID: "ghost", AmountPerUnit: 1}},
	})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestMenu_CrossCompanyProductHidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product, _ := f.seedProduct(t, "latte", 4.5, 100, 1)

	// A different company cannot see the product through the public API.
	_, err := f.menu.GetProduct(ctx, "c2", product.ID)
	require.ErrorIs(t, err, models.ErrNotFound)

	otherAdmin := models.Caller{UserID: "a2", Role: models.RoleCompanyAdmin, CompanyID: "c2"}
	err = f.menu.DeleteProduct(ctx, otherAdmin, product.ID)
	require.ErrorIs(t, err, models.ErrForbidden)
}
