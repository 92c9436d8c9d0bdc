package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// InventoryHandler serves the staff stock ledger endpoints.
type InventoryHandler struct {
	base
	inventoryService service.InventoryServiceInterface
}

func NewInventoryHandler(inventoryService service.InventoryServiceInterface, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		base:             base{logger: log.WithComponent("inventory_handler")},
		inventoryService: inventoryService,
	}
}

// GetAll handles GET /api/v1/inventory
func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	items, err := h.inventoryService.GetAll(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, items)
	h.finishRequest(reqCtx, http.StatusOK)
}

// GetItem handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	item, err := h.inventoryService.GetItem(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, item)
	h.finishRequest(reqCtx, http.StatusOK)
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CreateInventoryItemRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for create inventory item", "error", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	item, err := h.inventoryService.CreateItem(r.Context(), caller, req)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, item)
	h.finishRequest(reqCtx, http.StatusCreated)
}

// UpdateItem handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.UpdateInventoryItemRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	if err := h.inventoryService.UpdateItem(r.Context(), caller, r.PathValue("id"), req); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
	h.finishRequest(reqCtx, http.StatusOK)
}

// AdjustQuantity handles POST /api/v1/inventory/{id}/adjust
func (h *InventoryHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.AdjustQuantityRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	item, err := h.inventoryService.AdjustQuantity(r.Context(), caller, r.PathValue("id"), req)
	if err != nil {
		h.logger.Warn("Inventory adjustment failed", "item_id", r.PathValue("id"), "error", err)
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, item)
	h.finishRequest(reqCtx, http.StatusOK)
}

// DeleteItem handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	if err := h.inventoryService.DeleteItem(r.Context(), caller, r.PathValue("id")); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusNoContent, nil)
	h.finishRequest(reqCtx, http.StatusNoContent)
}

// GetMovements handles GET /api/v1/inventory/{id}/movements
func (h *InventoryHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	movements, err := h.inventoryService.GetMovements(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, movements)
	h.finishRequest(reqCtx, http.StatusOK)
}

// GetLowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	items, err := h.inventoryService.GetLowStock(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, items)
	h.finishRequest(reqCtx, http.StatusOK)
}
