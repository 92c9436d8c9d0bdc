package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Gomonuka/cafe-management/internal/handler"
	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/internal/router"
	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/internal/ws"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

type testAPI struct {
	mux   *http.ServeMux
	store *repositories.MemoryStore
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stdout"})
	store := repositories.NewMemoryStore(log)
	cartStore := repositories.NewMemoryCartStore(log)
	hub := ws.NewHub(log)
	go hub.Run()

	menuService := service.NewMenuService(store, store, log)
	inventoryService := service.NewInventoryService(store, log)
	cartService := service.NewCartService(cartStore, menuService, log)
	orderService := service.NewOrderService(store, menuService, cartStore, hub, time.Minute, log)
	statsService := service.NewStatsService(store, log)

	mux := router.NewRouter(
		handler.NewOrderHandler(orderService, log),
		handler.NewMenuHandler(menuService, log),
		handler.NewCartHandler(cartService, log),
		handler.NewInventoryHandler(inventoryService, log),
		handler.NewStatsHandler(statsService, log),
		handler.NewBoardHandler(hub, log),
	)

	return &testAPI{mux: mux, store: store}
}

func (api *testAPI) do(t *testing.T, method, path string, caller *models.Caller, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if caller != nil {
		req.Header.Set("X-User-ID", caller.UserID)
		req.Header.Set("X-User-Role", string(caller.Role))
		req.Header.Set("X-Company-ID", caller.CompanyID)
	}

	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(target))
}

var (
	adminCaller    = models.Caller{UserID: "admin-1", Role: models.RoleCompanyAdmin, CompanyID: "c1"}
	employeeCaller = models.Caller{UserID: "emp-1", Role: models.RoleEmployee, CompanyID: "c1"}
	clientCaller   = models.Caller{UserID: "client-1", Role: models.RoleClient}
)

func seedCatalog(t *testing.T, api *testAPI) *models.Product {
	t.Helper()

	rec := api.do(t, http.MethodPost, "/api/v1/inventory", &adminCaller, map[string]interface{}{
		"name": "beans", "unit": "g", "quantity": 100.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var item models.InventoryItem
	decode(t, rec, &item)

	rec = api.do(t, http.MethodPost, "/api/v1/menu/categories", &adminCaller, map[string]interface{}{
		"name": "Coffee",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var category models.MenuCategory
	decode(t, rec, &category)

	rec = api.do(t, http.MethodPost, "/api/v1/menu/products", &adminCaller, map[string]interface{}{
		"category_id": category.ID,
		"name":        "latte",
		"price":       4.5,
		"recipe":      []map[string]interface{}{{"inventory_item_id": item.ID, "amount_per_unit": 10.0}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var product models.Product
	decode(t, rec, &product)

	return &product
}

func TestAPI_RequiresIdentityHeaders(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cart", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/inventory", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_StaffEndpointsRejectClients(t *testing.T) {
	api := setupAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/inventory", &clientCaller, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/stats/orders", &clientCaller, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_InventoryDefinitionAdminOnly(t *testing.T) {
	api := setupAPI(t)
	seedCatalog(t, api)

	rec := api.do(t, http.MethodGet, "/api/v1/inventory", &employeeCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.InventoryItem
	decode(t, rec, &items)
	require.Len(t, items, 1)

	// Employees may not create, redefine or delete items.
	rec = api.do(t, http.MethodPost, "/api/v1/inventory", &employeeCaller, map[string]interface{}{
		"name": "sugar", "unit": "g", "quantity": 10.0,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	itemPath := fmt.Sprintf("/api/v1/inventory/%s", items[0].ID)
	rec = api.do(t, http.MethodPut, itemPath, &employeeCaller, map[string]interface{}{
		"name": "renamed by employee", "unit": "gab",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodDelete, itemPath, &employeeCaller, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// The item keeps its definition after the rejected calls.
	rec = api.do(t, http.MethodGet, itemPath, &adminCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item models.InventoryItem
	decode(t, rec, &item)
	require.Equal(t, "beans", item.Name)

	// Quantity adjustment stays open to employees.
	rec = api.do(t, http.MethodPost, itemPath+"/adjust", &employeeCaller, map[string]interface{}{
		"change": -10.0, "reason": "prep",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_PublicMenuNeedsNoIdentity(t *testing.T) {
	api := setupAPI(t)
	seedCatalog(t, api)

	rec := api.do(t, http.MethodGet, "/api/v1/companies/c1/menu", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var menu []models.MenuCategoryView
	decode(t, rec, &menu)
	require.Len(t, menu, 1)
	require.Len(t, menu[0].Products, 1)
	require.NotNil(t, menu[0].Products[0].AvailableQuantity)
	require.Equal(t, 10, *menu[0].Products[0].AvailableQuantity)
}

func TestAPI_CartCheckoutFlow(t *testing.T) {
	api := setupAPI(t)
	product := seedCatalog(t, api)

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", &clientCaller, map[string]interface{}{
		"company_id": "c1", "product_id": product.ID, "amount": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var view models.CartView
	decode(t, rec, &view)
	require.Equal(t, 9.0, view.TotalAmount)

	rec = api.do(t, http.MethodPost, "/api/v1/orders", &clientCaller, map[string]interface{}{
		"order_type": "takeaway",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	decode(t, rec, &order)
	require.Equal(t, models.StatusNew, order.Status)
	require.Equal(t, 9.0, order.TotalAmount)

	// Checkout on the now-empty cart fails.
	rec = api.do(t, http.MethodPost, "/api/v1/orders", &clientCaller, map[string]interface{}{
		"order_type": "takeaway",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The client's order history comes back split into buckets.
	rec = api.do(t, http.MethodGet, "/api/v1/orders", &clientCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine models.ClientOrders
	decode(t, rec, &mine)
	require.Len(t, mine.Active, 1)
	require.Empty(t, mine.Finished)
	require.Equal(t, order.ID, mine.Active[0].ID)
}

func TestAPI_ErrorStatusMapping(t *testing.T) {
	api := setupAPI(t)
	product := seedCatalog(t, api)

	// Unknown order id maps to 404.
	rec := api.do(t, http.MethodGet, "/api/v1/orders/nope", &clientCaller, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Stock shortfall maps to 409.
	rec = api.do(t, http.MethodPost, "/api/v1/cart/items", &clientCaller, map[string]interface{}{
		"company_id": "c1", "product_id": product.ID, "amount": 11,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/v1/orders", &clientCaller, map[string]interface{}{
		"order_type": "dine_in",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Malformed JSON maps to 400.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("{nope"))
	req.Header.Set("X-User-ID", clientCaller.UserID)
	req.Header.Set("X-User-Role", string(clientCaller.Role))
	rr := httptest.NewRecorder()
	api.mux.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPI_StatusTransitions(t *testing.T) {
	api := setupAPI(t)
	product := seedCatalog(t, api)

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", &clientCaller, map[string]interface{}{
		"company_id": "c1", "product_id": product.ID, "amount": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/v1/orders", &clientCaller, map[string]interface{}{
		"order_type": "dine_in",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	decode(t, rec, &order)

	statusPath := fmt.Sprintf("/api/v1/orders/%s/status", order.ID)

	// Skipping a step maps to 422.
	rec = api.do(t, http.MethodPost, statusPath, &adminCaller, map[string]interface{}{"status": "READY"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, statusPath, &adminCaller, map[string]interface{}{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code)

	// The client cannot cancel a started order.
	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", order.ID), &clientCaller, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The board shows the order as active.
	rec = api.do(t, http.MethodGet, "/api/v1/board/active", &adminCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var active []models.OrderSummary
	decode(t, rec, &active)
	require.Len(t, active, 1)
	require.Equal(t, models.StatusInProgress, active[0].Status)
}

func TestAPI_InventoryAdjustment(t *testing.T) {
	api := setupAPI(t)
	seedCatalog(t, api)

	rec := api.do(t, http.MethodGet, "/api/v1/inventory", &adminCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.InventoryItem
	decode(t, rec, &items)
	require.Len(t, items, 1)

	adjustPath := fmt.Sprintf("/api/v1/inventory/%s/adjust", items[0].ID)
	rec = api.do(t, http.MethodPost, adjustPath, &adminCaller, map[string]interface{}{
		"change": -150.0, "reason": "audit",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, adjustPath, &adminCaller, map[string]interface{}{
		"change": 50.0, "reason": "delivery",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var item models.InventoryItem
	decode(t, rec, &item)
	require.Equal(t, 150.0, item.Quantity)

	movementsPath := fmt.Sprintf("/api/v1/inventory/%s/movements", items[0].ID)
	rec = api.do(t, http.MethodGet, movementsPath, &adminCaller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movements []models.InventoryMovement
	decode(t, rec, &movements)
	require.Len(t, movements, 1)
	require.Equal(t, 50.0, movements[0].QuantityChange)
}
