package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/database"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// OrderRepository persists orders, their line-item snapshots and the
// status history in PostgreSQL.
type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(log *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: log.WithComponent("order_repository"),
		db:     db,
	}
}

// Create writes the order and applies the aggregated inventory
// consumption in a single transaction. Each decrement is conditional
// ("quantity >= needed") so a concurrent checkout cannot drive stock
// negative; any shortfall rolls back the whole order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, consumption map[string]float64) error {
	r.logger.Debug("Creating order", "company_id", order.CompanyID, "client_id", order.ClientID)

	if err := validateOrder(order); err != nil {
		r.logger.Error("Failed to validate order", "error", err)
		return err
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO orders (id, company_id, client_id, status, order_type, notes, total_amount, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := tx.ExecContext(ctx, query,
			order.ID, order.CompanyID, order.ClientID, order.Status,
			order.OrderType, order.Notes, order.TotalAmount, order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %v", err)
		}

		itemQuery := `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx, itemQuery,
				order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
			if err != nil {
				return fmt.Errorf("failed to insert order item %s: %v", item.ProductID, err)
			}
		}

		if err := insertStatusChange(ctx, tx, order.ID, order.Status, order.CreatedAt); err != nil {
			return err
		}

		// Apply decrements in a stable order so concurrent checkouts
		// cannot deadlock on row locks.
		itemIDs := make([]string, 0, len(consumption))
		for id := range consumption {
			itemIDs = append(itemIDs, id)
		}
		sort.Strings(itemIDs)

		decrement := `
			UPDATE inventory_items
			SET quantity = quantity - $1
			WHERE id = $2 AND company_id = $3 AND quantity >= $1
		`
		for _, itemID := range itemIDs {
			needed := consumption[itemID]

			result, err := tx.ExecContext(ctx, decrement, needed, itemID, order.CompanyID)
			if err != nil {
				return fmt.Errorf("failed to consume inventory item %s: %v", itemID, err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %v", err)
			}
			if affected == 0 {
				var available float64
				err := tx.QueryRowContext(ctx,
					`SELECT quantity FROM inventory_items WHERE id = $1 AND company_id = $2`,
					itemID, order.CompanyID).Scan(&available)
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("inventory item %s: %w", itemID, models.ErrNotFound)
				}
				if err != nil {
					return fmt.Errorf("failed to read inventory item %s: %v", itemID, err)
				}
				return &models.InsufficientStockError{
					InventoryItemID: itemID,
					Requested:       needed,
					Available:       available,
				}
			}

			reason := fmt.Sprintf("order %s", order.ID)
			if err := insertMovement(ctx, tx, itemID, -needed, reason, order.ClientID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		r.logger.Warn("Order creation rolled back", "order_id", order.ID, "error", err)
		return err
	}

	r.logger.Info("Created order",
		"order_id", order.ID, "company_id", order.CompanyID, "total_amount", order.TotalAmount)
	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	r.logger.Debug("Retrieving order", "order_id", id)

	query := `
		SELECT id, company_id, client_id, status, order_type, notes, total_amount, created_at, completed_at
		FROM orders
		WHERE id = $1
	`

	order := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CompanyID, &order.ClientID, &order.Status, &order.OrderType,
		&order.Notes, &order.TotalAmount, &order.CreatedAt, &order.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to retrieve order: %v", err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

func (r *OrderRepository) ListByClient(ctx context.Context, clientID string) ([]*models.Order, error) {
	return r.list(ctx, `client_id`, clientID)
}

func (r *OrderRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.Order, error) {
	return r.list(ctx, `company_id`, companyID)
}

func (r *OrderRepository) list(ctx context.Context, column, value string) ([]*models.Order, error) {
	r.logger.Debug("Listing orders", "filter", column, "value", value)

	query := fmt.Sprintf(`
		SELECT id, company_id, client_id, status, order_type, notes, total_amount, created_at, completed_at
		FROM orders
		WHERE %s = $1
		ORDER BY created_at DESC
	`, column)

	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err, "filter", column)
		return nil, fmt.Errorf("failed to query orders: %v", err)
	}
	defer rows.Close()

	var orders []*models.Order
	var ids []string
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID, &order.CompanyID, &order.ClientID, &order.Status, &order.OrderType,
			&order.Notes, &order.TotalAmount, &order.CreatedAt, &order.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %v", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Items = itemsByOrder[order.ID]
	}

	r.logger.Info("Listed orders", "filter", column, "count", len(orders))
	return orders, nil
}

// UpdateStatus performs a compare-and-set on the status column. Zero
// rows affected means the order moved (or vanished) underneath the
// caller, which surfaces as ConflictError.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, completedAt *time.Time) error {
	r.logger.Debug("Updating order status", "order_id", id, "from", from, "to", to)

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE orders
			SET status = $1, completed_at = $2
			WHERE id = $3 AND status = $4
		`

		result, err := tx.ExecContext(ctx, query, to, completedAt, id, from)
		if err != nil {
			return fmt.Errorf("failed to update order status: %v", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check order: %v", err)
			}
			if !exists {
				return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
			}
			return &models.ConflictError{Resource: fmt.Sprintf("order %s", id)}
		}

		return insertStatusChange(ctx, tx, id, to, time.Now().UTC())
	})
	if err != nil {
		r.logger.Warn("Order status update rejected", "order_id", id, "from", from, "to", to, "error", err)
		return err
	}

	r.logger.Info("Updated order status", "order_id", id, "from", from, "to", to)
	return nil
}

func (r *OrderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]*models.StatusChange, error) {
	r.logger.Debug("Retrieving order status history", "order_id", orderID)

	query := `
		SELECT order_id, status, changed_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY changed_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %v", err)
	}
	defer rows.Close()

	var history []*models.StatusChange
	for rows.Next() {
		change := &models.StatusChange{}
		if err := rows.Scan(&change.OrderID, &change.Status, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %v", err)
		}
		history = append(history, change)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %v", err)
	}

	return history, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	query := `
		SELECT order_id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %v", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[string][]models.OrderItem)
	for rows.Next() {
		var orderID string
		item := models.OrderItem{}
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %v", err)
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %v", err)
	}

	return itemsByOrder, nil
}

func insertStatusChange(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus, at time.Time) error {
	query := `
		INSERT INTO order_status_history (order_id, status, changed_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, query, orderID, status, at); err != nil {
		return fmt.Errorf("failed to record status change: %v", err)
	}
	return nil
}

func validateOrder(order *models.Order) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	if order.CompanyID == "" {
		return &models.ValidationError{Field: "company_id", Message: "company is required"}
	}
	if order.ClientID == "" {
		return &models.ValidationError{Field: "client_id", Message: "client is required"}
	}
	if !order.Status.Valid() {
		return &models.ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", order.Status)}
	}
	if !order.OrderType.Valid() {
		return &models.ValidationError{Field: "order_type", Message: fmt.Sprintf("invalid order type %q", order.OrderType)}
	}
	if len(order.Items) == 0 {
		return &models.ValidationError{Field: "items", Message: "order must have at least one item"}
	}
	for i, item := range order.Items {
		if item.ProductID == "" {
			return &models.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "product is required"}
		}
		if item.Quantity <= 0 {
			return &models.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be positive"}
		}
	}
	return nil
}
