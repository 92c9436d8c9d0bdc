package router

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/handler"
)

// NewRouter wires every API route to its handler.
func NewRouter(
	orderHandler *handler.OrderHandler,
	menuHandler *handler.MenuHandler,
	cartHandler *handler.CartHandler,
	inventoryHandler *handler.InventoryHandler,
	statsHandler *handler.StatsHandler,
	boardHandler *handler.BoardHandler,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Public menu
	mux.HandleFunc("GET /api/v1/companies/{company_id}/menu", menuHandler.GetPublicMenu)
	mux.HandleFunc("GET /api/v1/companies/{company_id}/products/{id}", menuHandler.GetProduct)

	// Staff catalog management
	mux.HandleFunc("GET /api/v1/menu/categories", menuHandler.GetCategories)
	mux.HandleFunc("POST /api/v1/menu/categories", menuHandler.CreateCategory)
	mux.HandleFunc("PUT /api/v1/menu/categories/{id}", menuHandler.UpdateCategory)
	mux.HandleFunc("DELETE /api/v1/menu/categories/{id}", menuHandler.DeleteCategory)
	mux.HandleFunc("GET /api/v1/menu/products", menuHandler.GetProducts)
	mux.HandleFunc("POST /api/v1/menu/products", menuHandler.CreateProduct)
	mux.HandleFunc("PUT /api/v1/menu/products/{id}", menuHandler.UpdateProduct)
	mux.HandleFunc("DELETE /api/v1/menu/products/{id}", menuHandler.DeleteProduct)
	mux.HandleFunc("PUT /api/v1/menu/products/{id}/recipe", menuHandler.ReplaceRecipe)

	// Client cart
	mux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart)
	mux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart)
	mux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/v1/cart/items/{product_id}", cartHandler.SetQuantity)
	mux.HandleFunc("POST /api/v1/cart/items/{product_id}/decrement", cartHandler.DecrementItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{product_id}", cartHandler.RemoveItem)

	// Orders
	mux.HandleFunc("POST /api/v1/orders", orderHandler.Checkout)
	mux.HandleFunc("GET /api/v1/orders", orderHandler.ListMyOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetOrder)
	mux.HandleFunc("GET /api/v1/orders/{id}/history", orderHandler.GetStatusHistory)
	mux.HandleFunc("POST /api/v1/orders/{id}/status", orderHandler.Advance)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", orderHandler.Cancel)

	// Staff board
	mux.HandleFunc("GET /api/v1/board/active", orderHandler.ListActive)
	mux.HandleFunc("GET /api/v1/board/finished", orderHandler.ListFinished)
	mux.HandleFunc("GET /api/v1/board/ws", boardHandler.Subscribe)

	// Inventory
	mux.HandleFunc("GET /api/v1/inventory", inventoryHandler.GetAll)
	mux.HandleFunc("POST /api/v1/inventory", inventoryHandler.CreateItem)
	mux.HandleFunc("GET /api/v1/inventory/low-stock", inventoryHandler.GetLowStock)
	mux.HandleFunc("GET /api/v1/inventory/{id}", inventoryHandler.GetItem)
	mux.HandleFunc("PUT /api/v1/inventory/{id}", inventoryHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/inventory/{id}", inventoryHandler.DeleteItem)
	mux.HandleFunc("POST /api/v1/inventory/{id}/adjust", inventoryHandler.AdjustQuantity)
	mux.HandleFunc("GET /api/v1/inventory/{id}/movements", inventoryHandler.GetMovements)

	// Stats
	mux.HandleFunc("GET /api/v1/stats/orders", statsHandler.GetOrderStats)

	return mux
}
