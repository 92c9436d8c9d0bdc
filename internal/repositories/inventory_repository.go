package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/database"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// InventoryRepository is the PostgreSQL-backed stock ledger.
type InventoryRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewInventoryRepository(log *logger.Logger, db *database.DB) *InventoryRepository {
	return &InventoryRepository{
		logger: log.WithComponent("inventory_repository"),
		db:     db,
	}
}

func (r *InventoryRepository) GetAll(ctx context.Context, companyID string) ([]*models.InventoryItem, error) {
	r.logger.Debug("Retrieving inventory items", "company_id", companyID)

	query := `
		SELECT id, company_id, name, unit, quantity, min_quantity
		FROM inventory_items
		WHERE company_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to query inventory items", "error", err, "company_id", companyID)
		return nil, fmt.Errorf("failed to query inventory items: %v", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		item := &models.InventoryItem{}
		err := rows.Scan(&item.ID, &item.CompanyID, &item.Name, &item.Unit, &item.Quantity, &item.MinQuantity)
		if err != nil {
			r.logger.Error("Failed to scan inventory item", "error", err)
			return nil, fmt.Errorf("failed to scan inventory item: %v", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating inventory rows", "error", err)
		return nil, fmt.Errorf("error iterating inventory rows: %v", err)
	}

	r.logger.Info("Retrieved inventory items", "company_id", companyID, "count", len(items))
	return items, nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	r.logger.Debug("Retrieving inventory item", "item_id", id)

	query := `
		SELECT id, company_id, name, unit, quantity, min_quantity
		FROM inventory_items
		WHERE id = $1
	`

	item := &models.InventoryItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.CompanyID, &item.Name, &item.Unit, &item.Quantity, &item.MinQuantity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Inventory item not found", "item_id", id)
			return nil, fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve inventory item", "error", err, "item_id", id)
		return nil, fmt.Errorf("failed to retrieve inventory item: %v", err)
	}

	return item, nil
}

func (r *InventoryRepository) Add(ctx context.Context, item *models.InventoryItem) error {
	r.logger.Debug("Adding inventory item", "item_name", item.Name, "company_id", item.CompanyID)

	if err := validateInventoryItem(item); err != nil {
		r.logger.Error("Failed to validate inventory item", "error", err, "item_name", item.Name)
		return err
	}

	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	query := `
		INSERT INTO inventory_items (id, company_id, name, unit, quantity, min_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.CompanyID, item.Name, item.Unit, item.Quantity, item.MinQuantity)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value") || strings.Contains(err.Error(), "violates unique constraint") {
			r.logger.Warn("Attempted to add duplicate inventory item", "item_name", item.Name)
			return fmt.Errorf("inventory item with name %s already exists", item.Name)
		}
		r.logger.Error("Failed to add inventory item", "error", err, "item_name", item.Name)
		return fmt.Errorf("failed to add inventory item: %v", err)
	}

	r.logger.Info("Added inventory item", "item_id", item.ID, "name", item.Name)
	return nil
}

func (r *InventoryRepository) Update(ctx context.Context, id string, item *models.InventoryItem) error {
	r.logger.Debug("Updating inventory item", "item_id", id)

	if id == "" {
		return &models.ValidationError{Field: "id", Message: "inventory item ID is required"}
	}
	if err := validateInventoryItem(item); err != nil {
		r.logger.Error("Failed to validate inventory item", "error", err, "item_id", id)
		return err
	}

	item.ID = id

	query := `
		UPDATE inventory_items
		SET name = $1, unit = $2, min_quantity = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, item.Name, item.Unit, item.MinQuantity, id)
	if err != nil {
		r.logger.Error("Failed to update inventory item", "error", err, "item_id", id)
		return fmt.Errorf("failed to update inventory item: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent inventory item", "item_id", id)
		return fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated inventory item", "item_id", id, "name", item.Name)
	return nil
}

// AdjustQuantity applies a signed stock change conditionally so the
// quantity can never go negative, then records a movement audit row.
func (r *InventoryRepository) AdjustQuantity(ctx context.Context, id string, change float64, reason, actor string) (*models.InventoryItem, error) {
	r.logger.Debug("Adjusting inventory quantity", "item_id", id, "change", change)

	var updated *models.InventoryItem
	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE inventory_items
			SET quantity = quantity + $1
			WHERE id = $2 AND quantity + $1 >= 0
			RETURNING id, company_id, name, unit, quantity, min_quantity
		`

		item := &models.InventoryItem{}
		err := tx.QueryRowContext(ctx, query, change, id).Scan(
			&item.ID, &item.CompanyID, &item.Name, &item.Unit, &item.Quantity, &item.MinQuantity,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Either missing or the change would go negative.
				current, getErr := r.GetByID(ctx, id)
				if getErr != nil {
					return getErr
				}
				return &models.InsufficientStockError{
					InventoryItemID: id,
					Requested:       -change,
					Available:       current.Quantity,
				}
			}
			return fmt.Errorf("failed to adjust inventory quantity: %v", err)
		}

		if err := insertMovement(ctx, tx, id, change, reason, actor); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		r.logger.Warn("Inventory adjustment rejected", "item_id", id, "change", change, "error", err)
		return nil, err
	}

	r.logger.Info("Adjusted inventory quantity",
		"item_id", id, "change", change, "remaining", updated.Quantity, "reason", reason)
	return updated, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting inventory item", "item_id", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete inventory item", "error", err, "item_id", id)
		return fmt.Errorf("failed to delete inventory item: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent inventory item", "item_id", id)
		return fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Deleted inventory item", "item_id", id)
	return nil
}

func (r *InventoryRepository) GetMovements(ctx context.Context, itemID string) ([]*models.InventoryMovement, error) {
	r.logger.Debug("Retrieving inventory movements", "item_id", itemID)

	query := `
		SELECT id, inventory_item_id, quantity_change, reason, created_by, created_at
		FROM inventory_movements
		WHERE inventory_item_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		r.logger.Error("Failed to query inventory movements", "error", err, "item_id", itemID)
		return nil, fmt.Errorf("failed to query inventory movements: %v", err)
	}
	defer rows.Close()

	var movements []*models.InventoryMovement
	for rows.Next() {
		m := &models.InventoryMovement{}
		err := rows.Scan(&m.ID, &m.InventoryItemID, &m.QuantityChange, &m.Reason, &m.CreatedBy, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory movement: %v", err)
		}
		movements = append(movements, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %v", err)
	}

	return movements, nil
}

// insertMovement writes one audit row inside the caller's transaction.
func insertMovement(ctx context.Context, tx *sql.Tx, itemID string, change float64, reason, actor string) error {
	query := `
		INSERT INTO inventory_movements (id, inventory_item_id, quantity_change, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := tx.ExecContext(ctx, query, uuid.NewString(), itemID, change, reason, actor); err != nil {
		return fmt.Errorf("failed to record inventory movement: %v", err)
	}
	return nil
}

func validateInventoryItem(item *models.InventoryItem) error {
	if item == nil {
		return errors.New("inventory item cannot be nil")
	}
	if item.CompanyID == "" {
		return &models.ValidationError{Field: "company_id", Message: "company is required"}
	}
	if item.Name == "" {
		return &models.ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	if item.Unit == "" {
		return &models.ValidationError{Field: "unit", Message: "unit cannot be empty"}
	}
	if item.Quantity < 0 {
		return &models.ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
	}
	if item.MinQuantity < 0 {
		return &models.ValidationError{Field: "min_quantity", Message: "minimum quantity cannot be negative"}
	}
	return nil
}
