package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// OrderHandler serves checkout, order queries and status transitions.
type OrderHandler struct {
	base
	orderService service.OrderServiceInterface
}

func NewOrderHandler(orderService service.OrderServiceInterface, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		base:         base{logger: log.WithComponent("order_handler")},
		orderService: orderService,
	}
}

// Checkout handles POST /api/v1/orders
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CheckoutRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for checkout", "error", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	order, err := h.orderService.Checkout(r.Context(), caller, req)
	if err != nil {
		h.logger.Warn("Checkout failed", "client_id", caller.UserID, "error", err)
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, order)
	h.finishRequest(reqCtx, http.StatusCreated)
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, order)
	h.finishRequest(reqCtx, http.StatusOK)
}

// GetStatusHistory handles GET /api/v1/orders/{id}/history
func (h *OrderHandler) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	history, err := h.orderService.GetStatusHistory(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, history)
	h.finishRequest(reqCtx, http.StatusOK)
}

// ListMyOrders handles GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	orders, err := h.orderService.ListMyOrders(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, orders)
	h.finishRequest(reqCtx, http.StatusOK)
}

// ListActive handles GET /api/v1/board/active
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	orders, err := h.orderService.ListActive(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, orders)
	h.finishRequest(reqCtx, http.StatusOK)
}

// ListFinished handles GET /api/v1/board/finished
func (h *OrderHandler) ListFinished(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	orders, err := h.orderService.ListFinished(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, orders)
	h.finishRequest(reqCtx, http.StatusOK)
}

// Advance handles POST /api/v1/orders/{id}/status
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	order, err := h.orderService.Advance(r.Context(), caller, r.PathValue("id"), req.Status)
	if err != nil {
		h.logger.Warn("Status advance failed", "order_id", r.PathValue("id"), "error", err)
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, order)
	h.finishRequest(reqCtx, http.StatusOK)
}

// Cancel handles POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	order, err := h.orderService.Cancel(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		h.logger.Warn("Cancel failed", "order_id", r.PathValue("id"), "error", err)
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, order)
	h.finishRequest(reqCtx, http.StatusOK)
}
