package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/models"
)

func TestInventory_ItemDefinitionIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	employee := models.Caller{UserID: "emp-1", Role: models.RoleEmployee, CompanyID: "c1"}

	item, err := f.inventory.CreateItem(ctx, f.admin, CreateInventoryItemRequest{
		Name: "beans", Unit: "g", Quantity: 100,
	})
	require.NoError(t, err)

	// Employees cannot create, rename or delete items.
	_, err = f.inventory.CreateItem(ctx, employee, CreateInventoryItemRequest{
		Name: "sugar", Unit: "g", Quantity: 10,
	})
	require.ErrorIs(t, err, models.ErrForbidden)

	newName := "renamed"
	err = f.inventory.UpdateItem(ctx, employee, item.ID, UpdateInventoryItemRequest{Name: &newName})
	require.ErrorIs(t, err, models.ErrForbidden)

	err = f.inventory.DeleteItem(ctx, employee, item.ID)
	require.ErrorIs(t, err, models.ErrForbidden)

	// The item is untouched after the rejected rename.
	got, err := f.inventory.GetItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, "beans", got.Name)

	// Quantity adjustments remain open to employees.
	adjusted, err := f.inventory.AdjustQuantity(ctx, employee, item.ID, AdjustQuantityRequest{
		Change: -20, Reason: "prep",
	})
	require.NoError(t, err)
	require.Equal(t, 80.0, adjusted.Quantity)

	// Admins keep full definition access.
	err = f.inventory.UpdateItem(ctx, f.admin, item.ID, UpdateInventoryItemRequest{Name: &newName})
	require.NoError(t, err)
	err = f.inventory.DeleteItem(ctx, f.admin, item.ID)
	require.NoError(t, err)
}
