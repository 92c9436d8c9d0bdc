package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// CartHandler serves the client cart endpoints.
type CartHandler struct {
	base
	cartService service.CartServiceInterface
}

func NewCartHandler(cartService service.CartServiceInterface, log *logger.Logger) *CartHandler {
	return &CartHandler{
		base:        base{logger: log.WithComponent("cart_handler")},
		cartService: cartService,
	}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	view, err := h.cartService.GetCart(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
	h.finishRequest(reqCtx, http.StatusOK)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CartItemRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for add cart item", "error", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	view, err := h.cartService.AddItem(r.Context(), caller, req)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
	h.finishRequest(reqCtx, http.StatusOK)
}

// SetQuantity handles PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CartItemRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}
	req.ProductID = r.PathValue("product_id")

	view, err := h.cartService.SetQuantity(r.Context(), caller, req)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
	h.finishRequest(reqCtx, http.StatusOK)
}

// DecrementItem handles POST /api/v1/cart/items/{product_id}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CartItemRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	view, err := h.cartService.DecrementItem(r.Context(), caller, r.PathValue("product_id"), req.Amount)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
	h.finishRequest(reqCtx, http.StatusOK)
}

// RemoveItem handles DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	view, err := h.cartService.RemoveItem(r.Context(), caller, r.PathValue("product_id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
	h.finishRequest(reqCtx, http.StatusOK)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	if err := h.cartService.ClearCart(r.Context(), caller); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusNoContent, nil)
	h.finishRequest(reqCtx, http.StatusNoContent)
}
