package service

import (
	"context"
	"fmt"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateProductRequest struct {
	CategoryID  string              `json:"category_id"`
	Name        string              `json:"name"`
	Price       float64             `json:"price"`
	IsAvailable *bool               `json:"is_available"`
	Recipe      []models.RecipeLine `json:"recipe"`
}

type UpdateProductRequest struct {
	CategoryID  *string  `json:"category_id"`
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"is_available"`
}

type MenuServiceInterface interface {
	GetPublicMenu(ctx context.Context, companyID string) ([]models.MenuCategoryView, error)
	GetProduct(ctx context.Context, companyID, productID string) (*models.Product, error)

	GetCategories(ctx context.Context, caller models.Caller) ([]*models.MenuCategory, error)
	CreateCategory(ctx context.Context, caller models.Caller, req CreateCategoryRequest) (*models.MenuCategory, error)
	UpdateCategory(ctx context.Context, caller models.Caller, id string, req UpdateCategoryRequest) error
	DeleteCategory(ctx context.Context, caller models.Caller, id string) error

	GetProducts(ctx context.Context, caller models.Caller) ([]*models.Product, error)
	CreateProduct(ctx context.Context, caller models.Caller, req CreateProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, caller models.Caller, id string, req UpdateProductRequest) error
	DeleteProduct(ctx context.Context, caller models.Caller, id string) error
	ReplaceRecipe(ctx context.Context, caller models.Caller, productID string, lines []models.RecipeLine) error
}

type MenuService struct {
	menuRepo      repositories.MenuRepositoryInterface
	inventoryRepo repositories.InventoryRepositoryInterface
	logger        *logger.Logger
}

func NewMenuService(menuRepo repositories.MenuRepositoryInterface, inventoryRepo repositories.InventoryRepositoryInterface, logger *logger.Logger) *MenuService {
	return &MenuService{
		menuRepo:      menuRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.WithComponent("menu_service"),
	}
}

// GetPublicMenu builds the client-facing menu for one company: active
// categories with their products, each product carrying a derived
// available quantity computed from current stock.
func (s *MenuService) GetPublicMenu(ctx context.Context, companyID string) ([]models.MenuCategoryView, error) {
	s.logger.Info("Building public menu", "company_id", companyID)

	if companyID == "" {
		return nil, &models.ValidationError{Field: "company_id", Message: "company is required"}
	}

	categories, err := s.menuRepo.GetCategories(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to get menu categories", "error", err, "company_id", companyID)
		return nil, err
	}

	products, err := s.menuRepo.GetProducts(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to get products", "error", err, "company_id", companyID)
		return nil, err
	}

	stock, err := s.stockLevels(ctx, companyID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]models.Product)
	for _, p := range products {
		if !p.IsAvailable {
			continue
		}
		p.AvailableQuantity = availableQuantity(p, stock)
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], *p)
	}

	var views []models.MenuCategoryView
	for _, c := range categories {
		if !c.IsActive {
			continue
		}
		views = append(views, models.MenuCategoryView{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Products:    byCategory[c.ID],
		})
	}

	s.logger.Info("Built public menu", "company_id", companyID, "categories", len(views))
	return views, nil
}

// GetProduct returns one product with derived availability, scoped to
// the given company.
func (s *MenuService) GetProduct(ctx context.Context, companyID, productID string) (*models.Product, error) {
	product, err := s.menuRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}

	stock, err := s.stockLevels(ctx, companyID)
	if err != nil {
		return nil, err
	}
	product.AvailableQuantity = availableQuantity(product, stock)

	return product, nil
}

func (s *MenuService) GetCategories(ctx context.Context, caller models.Caller) ([]*models.MenuCategory, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	return s.menuRepo.GetCategories(ctx, caller.CompanyID)
}

func (s *MenuService) CreateCategory(ctx context.Context, caller models.Caller, req CreateCategoryRequest) (*models.MenuCategory, error) {
	s.logger.Info("Creating menu category", "name", req.Name, "company_id", caller.CompanyID)

	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	category := &models.MenuCategory{
		CompanyID:   caller.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
	}

	if err := s.menuRepo.AddCategory(ctx, category); err != nil {
		s.logger.Error("Failed to create menu category", "name", req.Name, "error", err)
		return nil, err
	}

	s.logger.Info("Menu category created successfully", "category_id", category.ID, "name", category.Name)
	return category, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, caller models.Caller, id string, req UpdateCategoryRequest) error {
	s.logger.Info("Updating menu category", "category_id", id)

	existing, err := s.findCategory(ctx, caller, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.menuRepo.UpdateCategory(ctx, id, existing); err != nil {
		s.logger.Error("Failed to update menu category", "category_id", id, "error", err)
		return err
	}

	s.logger.Info("Menu category updated successfully", "category_id", id)
	return nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, caller models.Caller, id string) error {
	s.logger.Info("Deleting menu category", "category_id", id)

	if _, err := s.findCategory(ctx, caller, id); err != nil {
		return err
	}
	if err := s.menuRepo.DeleteCategory(ctx, id); err != nil {
		s.logger.Error("Failed to delete menu category", "category_id", id, "error", err)
		return err
	}

	s.logger.Info("Menu category deleted successfully", "category_id", id)
	return nil
}

func (s *MenuService) GetProducts(ctx context.Context, caller models.Caller) ([]*models.Product, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	products, err := s.menuRepo.GetProducts(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}

	stock, err := s.stockLevels(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		p.AvailableQuantity = availableQuantity(p, stock)
	}

	return products, nil
}

func (s *MenuService) CreateProduct(ctx context.Context, caller models.Caller, req CreateProductRequest) (*models.Product, error) {
	s.logger.Info("Creating product", "name", req.Name, "company_id", caller.CompanyID)

	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	if err := s.validateRecipe(ctx, caller.CompanyID, req.Recipe); err != nil {
		s.logger.Warn("Create failed: invalid recipe", "name", req.Name, "error", err)
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product := &models.Product{
		CompanyID:   caller.CompanyID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		IsAvailable: available,
		Recipe:      req.Recipe,
	}

	if err := s.menuRepo.AddProduct(ctx, product); err != nil {
		s.logger.Error("Failed to create product", "name", req.Name, "error", err)
		return nil, err
	}

	s.logger.Info("Product created successfully", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *MenuService) UpdateProduct(ctx context.Context, caller models.Caller, id string, req UpdateProductRequest) error {
	s.logger.Info("Updating product", "product_id", id)

	existing, err := s.findProduct(ctx, caller, id)
	if err != nil {
		return err
	}

	if req.CategoryID != nil {
		existing.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.IsAvailable != nil {
		existing.IsAvailable = *req.IsAvailable
	}

	if err := s.menuRepo.UpdateProduct(ctx, id, existing); err != nil {
		s.logger.Error("Failed to update product", "product_id", id, "error", err)
		return err
	}

	s.logger.Info("Product updated successfully", "product_id", id)
	return nil
}

func (s *MenuService) DeleteProduct(ctx context.Context, caller models.Caller, id string) error {
	s.logger.Info("Deleting product", "product_id", id)

	if _, err := s.findProduct(ctx, caller, id); err != nil {
		return err
	}
	if err := s.menuRepo.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", "product_id", id, "error", err)
		return err
	}

	s.logger.Info("Product deleted successfully", "product_id", id)
	return nil
}

// ReplaceRecipe swaps a product's recipe wholesale after checking each
// referenced inventory item exists in the caller's company.
func (s *MenuService) ReplaceRecipe(ctx context.Context, caller models.Caller, productID string, lines []models.RecipeLine) error {
	s.logger.Info("Replacing product recipe", "product_id", productID, "lines", len(lines))

	if _, err := s.findProduct(ctx, caller, productID); err != nil {
		return err
	}
	if err := s.validateRecipe(ctx, caller.CompanyID, lines); err != nil {
		s.logger.Warn("Recipe replacement failed: invalid recipe", "product_id", productID, "error", err)
		return err
	}

	if err := s.menuRepo.ReplaceRecipe(ctx, productID, lines); err != nil {
		s.logger.Error("Failed to replace recipe", "product_id", productID, "error", err)
		return err
	}

	s.logger.Info("Recipe replaced successfully", "product_id", productID)
	return nil
}

func (s *MenuService) findCategory(ctx context.Context, caller models.Caller, id string) (*models.MenuCategory, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	categories, err := s.menuRepo.GetCategories(ctx, caller.CompanyID)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("menu category %s: %w", id, models.ErrNotFound)
}

func (s *MenuService) findProduct(ctx context.Context, caller models.Caller, id string) (*models.Product, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	product, err := s.menuRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != caller.CompanyID {
		s.logger.Warn("Cross-company product access denied", "product_id", id, "company_id", caller.CompanyID)
		return nil, fmt.Errorf("product %s: %w", id, models.ErrForbidden)
	}
	return product, nil
}

// validateRecipe rejects lines referencing inventory items that do not
// belong to the company.
func (s *MenuService) validateRecipe(ctx context.Context, companyID string, lines []models.RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}

	items, err := s.inventoryRepo.GetAll(ctx, companyID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	for i, line := range lines {
		if !known[line.InventoryItemID] {
			return &models.ValidationError{
				Field:   fmt.Sprintf("recipe[%d].inventory_item_id", i),
				Message: fmt.Sprintf("unknown inventory item %s", line.InventoryItemID),
			}
		}
	}
	return nil
}

func (s *MenuService) stockLevels(ctx context.Context, companyID string) (map[string]float64, error) {
	items, err := s.inventoryRepo.GetAll(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to get inventory for availability", "error", err, "company_id", companyID)
		return nil, err
	}

	stock := make(map[string]float64, len(items))
	for _, item := range items {
		stock[item.ID] = item.Quantity
	}
	return stock, nil
}
