package handler

import (
	"net/http"

	"github.com/Gomonuka/cafe-management/internal/service"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// MenuHandler serves the public menu and the staff catalog endpoints.
type MenuHandler struct {
	base
	menuService service.MenuServiceInterface
}

func NewMenuHandler(menuService service.MenuServiceInterface, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		base:        base{logger: log.WithComponent("menu_handler")},
		menuService: menuService,
	}
}

// GetPublicMenu handles GET /api/v1/companies/{company_id}/menu
func (h *MenuHandler) GetPublicMenu(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	companyID := r.PathValue("company_id")
	menu, err := h.menuService.GetPublicMenu(r.Context(), companyID)
	if err != nil {
		h.logger.Warn("Failed to build public menu", "company_id", companyID, "error", err)
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, menu)
	h.finishRequest(reqCtx, http.StatusOK)
}

// GetProduct handles GET /api/v1/companies/{company_id}/products/{id}
func (h *MenuHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	product, err := h.menuService.GetProduct(r.Context(), r.PathValue("company_id"), r.PathValue("id"))
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, product)
	h.finishRequest(reqCtx, http.StatusOK)
}

// GetCategories handles GET /api/v1/menu/categories
func (h *MenuHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	categories, err := h.menuService.GetCategories(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, categories)
	h.finishRequest(reqCtx, http.StatusOK)
}

// CreateCategory handles POST /api/v1/menu/categories
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CreateCategoryRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for create category", "error", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	category, err := h.menuService.CreateCategory(r.Context(), caller, req)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, category)
	h.finishRequest(reqCtx, http.StatusCreated)
}

// UpdateCategory handles PUT /api/v1/menu/categories/{id}
func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.UpdateCategoryRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	if err := h.menuService.UpdateCategory(r.Context(), caller, r.PathValue("id"), req); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
	h.finishRequest(reqCtx, http.StatusOK)
}

// DeleteCategory handles DELETE /api/v1/menu/categories/{id}
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	if err := h.menuService.DeleteCategory(r.Context(), caller, r.PathValue("id")); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusNoContent, nil)
	h.finishRequest(reqCtx, http.StatusNoContent)
}

// GetProducts handles GET /api/v1/menu/products
func (h *MenuHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	products, err := h.menuService.GetProducts(r.Context(), caller)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, products)
	h.finishRequest(reqCtx, http.StatusOK)
}

// CreateProduct handles POST /api/v1/menu/products
func (h *MenuHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.CreateProductRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for create product", "error", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	product, err := h.menuService.CreateProduct(r.Context(), caller, req)
	if err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, product)
	h.finishRequest(reqCtx, http.StatusCreated)
}

// UpdateProduct handles PUT /api/v1/menu/products/{id}
func (h *MenuHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var req service.UpdateProductRequest
	if err := h.parseRequestBody(r, &req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	if err := h.menuService.UpdateProduct(r.Context(), caller, r.PathValue("id"), req); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
	h.finishRequest(reqCtx, http.StatusOK)
}

// DeleteProduct handles DELETE /api/v1/menu/products/{id}
func (h *MenuHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	if err := h.menuService.DeleteProduct(r.Context(), caller, r.PathValue("id")); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusNoContent, nil)
	h.finishRequest(reqCtx, http.StatusNoContent)
}

// ReplaceRecipe handles PUT /api/v1/menu/products/{id}/recipe
func (h *MenuHandler) ReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	reqCtx := h.startRequest(r)

	caller, ok := requireUser(w, r, &h.base)
	if !ok {
		h.finishRequest(reqCtx, http.StatusUnauthorized)
		return
	}

	var lines []models.RecipeLine
	if err := h.parseRequestBody(r, &lines); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		h.finishRequest(reqCtx, http.StatusBadRequest)
		return
	}

	if err := h.menuService.ReplaceRecipe(r.Context(), caller, r.PathValue("id"), lines); err != nil {
		h.finishRequest(reqCtx, h.writeError(w, err))
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
	h.finishRequest(reqCtx, http.StatusOK)
}
