package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

type CreateInventoryItemRequest struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	MinQuantity float64 `json:"min_quantity"`
}

type UpdateInventoryItemRequest struct {
	Name        *string  `json:"name"`
	Unit        *string  `json:"unit"`
	MinQuantity *float64 `json:"min_quantity"`
}

type AdjustQuantityRequest struct {
	Change float64 `json:"change"`
	Reason string  `json:"reason"`
}

type InventoryServiceInterface interface {
	GetAll(ctx context.Context, caller models.Caller) ([]*models.InventoryItem, error)
	GetItem(ctx context.Context, caller models.Caller, id string) (*models.InventoryItem, error)
	CreateItem(ctx context.Context, caller models.Caller, req CreateInventoryItemRequest) (*models.InventoryItem, error)
	UpdateItem(ctx context.Context, caller models.Caller, id string, req UpdateInventoryItemRequest) error
	AdjustQuantity(ctx context.Context, caller models.Caller, id string, req AdjustQuantityRequest) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, caller models.Caller, id string) error
	GetMovements(ctx context.Context, caller models.Caller, itemID string) ([]*models.InventoryMovement, error)
	GetLowStock(ctx context.Context, caller models.Caller) ([]*models.InventoryItem, error)
}

type InventoryService struct {
	inventoryRepo repositories.InventoryRepositoryInterface
	logger        *logger.Logger
}

func NewInventoryService(inventoryRepo repositories.InventoryRepositoryInterface, logger *logger.Logger) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		logger:        logger.WithComponent("inventory_service"),
	}
}

// GetAll retrieves the caller's company stock ledger
func (s *InventoryService) GetAll(ctx context.Context, caller models.Caller) ([]*models.InventoryItem, error) {
	s.logger.Info("Fetching inventory items", "company_id", caller.CompanyID)

	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	items, err := s.inventoryRepo.GetAll(ctx, caller.CompanyID)
	if err != nil {
		s.logger.Error("Failed to get inventory items from repository", "error", err)
		return nil, err
	}

	s.logger.Info("Fetched inventory items", "count", len(items))
	return items, nil
}

func (s *InventoryService) GetItem(ctx context.Context, caller models.Caller, id string) (*models.InventoryItem, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.CompanyID != caller.CompanyID {
		s.logger.Warn("Cross-company inventory access denied", "item_id", id, "company_id", caller.CompanyID)
		return nil, fmt.Errorf("inventory item %s: %w", id, models.ErrForbidden)
	}

	return item, nil
}

// CreateItem creates a stock record for the caller's company.
// Item definition changes are reserved to company admins; employees
// only adjust quantities.
func (s *InventoryService) CreateItem(ctx context.Context, caller models.Caller, req CreateInventoryItemRequest) (*models.InventoryItem, error) {
	s.logger.Info("Creating inventory item", "name", req.Name, "company_id", caller.CompanyID)

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		CompanyID:   caller.CompanyID,
		Name:        req.Name,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
	}

	if err := s.inventoryRepo.Add(ctx, item); err != nil {
		s.logger.Error("Failed to create inventory item in repository", "name", req.Name, "error", err)
		return nil, err
	}

	s.logger.Info("Inventory item created successfully", "item_id", item.ID, "name", item.Name)
	return item, nil
}

// UpdateItem updates descriptive fields; quantity changes go through
// AdjustQuantity so every change leaves a movement record.
func (s *InventoryService) UpdateItem(ctx context.Context, caller models.Caller, id string, req UpdateInventoryItemRequest) error {
	s.logger.Info("Updating inventory item", "item_id", id)

	if err := requireAdmin(caller); err != nil {
		return err
	}

	existing, err := s.GetItem(ctx, caller, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.MinQuantity != nil {
		existing.MinQuantity = *req.MinQuantity
	}

	if err := s.inventoryRepo.Update(ctx, id, existing); err != nil {
		s.logger.Error("Failed to update inventory item", "item_id", id, "error", err)
		return err
	}

	s.logger.Info("Inventory item updated successfully", "item_id", id)
	return nil
}

// AdjustQuantity applies a signed stock correction or replenishment.
func (s *InventoryService) AdjustQuantity(ctx context.Context, caller models.Caller, id string, req AdjustQuantityRequest) (*models.InventoryItem, error) {
	s.logger.Info("Adjusting inventory quantity", "item_id", id, "change", req.Change)

	if _, err := s.GetItem(ctx, caller, id); err != nil {
		return nil, err
	}
	if req.Change == 0 {
		return nil, &models.ValidationError{Field: "change", Message: "change must be non-zero"}
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual adjustment"
	}

	item, err := s.inventoryRepo.AdjustQuantity(ctx, id, req.Change, reason, caller.UserID)
	if err != nil {
		s.logger.Warn("Inventory adjustment failed", "item_id", id, "change", req.Change, "error", err)
		return nil, err
	}

	if item.LowStock() {
		s.logger.Warn("Inventory item at or below minimum",
			"item_id", item.ID, "name", item.Name, "quantity", item.Quantity, "min_quantity", item.MinQuantity)
	}

	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, caller models.Caller, id string) error {
	s.logger.Info("Deleting inventory item", "item_id", id)

	if err := requireAdmin(caller); err != nil {
		return err
	}
	if _, err := s.GetItem(ctx, caller, id); err != nil {
		return err
	}

	if err := s.inventoryRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete inventory item", "item_id", id, "error", err)
		return err
	}

	s.logger.Info("Inventory item deleted successfully", "item_id", id)
	return nil
}

func (s *InventoryService) GetMovements(ctx context.Context, caller models.Caller, itemID string) ([]*models.InventoryMovement, error) {
	if _, err := s.GetItem(ctx, caller, itemID); err != nil {
		return nil, err
	}
	return s.inventoryRepo.GetMovements(ctx, itemID)
}

// GetLowStock lists items at or below their configured minimum.
func (s *InventoryService) GetLowStock(ctx context.Context, caller models.Caller) ([]*models.InventoryItem, error) {
	items, err := s.GetAll(ctx, caller)
	if err != nil {
		return nil, err
	}

	var low []*models.InventoryItem
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// availableQuantity derives how many units of a product the current
// stock supports: the minimum over recipe lines of floor(stock/amount).
// An empty recipe places no stock constraint, reported as nil.
func availableQuantity(product *models.Product, stock map[string]float64) *int {
	if len(product.Recipe) == 0 {
		return nil
	}

	limit := math.MaxInt
	for _, line := range product.Recipe {
		units := int(math.Floor(stock[line.InventoryItemID] / line.AmountPerUnit))
		if units < limit {
			limit = units
		}
	}
	if limit < 0 {
		limit = 0
	}
	return &limit
}

func requireStaff(caller models.Caller) error {
	if !caller.Staff() || caller.CompanyID == "" {
		return fmt.Errorf("staff access required: %w", models.ErrForbidden)
	}
	return nil
}

func requireAdmin(caller models.Caller) error {
	if caller.Role != models.RoleCompanyAdmin || caller.CompanyID == "" {
		return fmt.Errorf("company admin access required: %w", models.ErrForbidden)
	}
	return nil
}
