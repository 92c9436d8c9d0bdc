package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/database"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// MenuRepository stores categories, products and their recipes in
// PostgreSQL. Recipes live in a junction table and are aggregated
// into JSON on read.
type MenuRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewMenuRepository(log *logger.Logger, db *database.DB) *MenuRepository {
	return &MenuRepository{
		logger: log.WithComponent("menu_repository"),
		db:     db,
	}
}

func (r *MenuRepository) GetCategories(ctx context.Context, companyID string) ([]*models.MenuCategory, error) {
	r.logger.Debug("Retrieving menu categories", "company_id", companyID)

	query := `
		SELECT id, company_id, name, description, is_active, created_at
		FROM menu_categories
		WHERE company_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to query menu categories", "error", err, "company_id", companyID)
		return nil, fmt.Errorf("failed to query menu categories: %v", err)
	}
	defer rows.Close()

	var categories []*models.MenuCategory
	for rows.Next() {
		c := &models.MenuCategory{}
		err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu category: %v", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %v", err)
	}

	return categories, nil
}

func (r *MenuRepository) AddCategory(ctx context.Context, category *models.MenuCategory) error {
	r.logger.Debug("Adding menu category", "name", category.Name, "company_id", category.CompanyID)

	if err := validateCategory(category); err != nil {
		return err
	}

	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	query := `
		INSERT INTO menu_categories (id, company_id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.CompanyID, category.Name, category.Description, category.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "violates unique constraint") {
			return fmt.Errorf("category with name %s already exists", category.Name)
		}
		r.logger.Error("Failed to add menu category", "error", err, "name", category.Name)
		return fmt.Errorf("failed to add menu category: %v", err)
	}

	r.logger.Info("Added menu category", "category_id", category.ID, "name", category.Name)
	return nil
}

func (r *MenuRepository) UpdateCategory(ctx context.Context, id string, category *models.MenuCategory) error {
	r.logger.Debug("Updating menu category", "category_id", id)

	if err := validateCategory(category); err != nil {
		return err
	}

	query := `
		UPDATE menu_categories
		SET name = $1, description = $2, is_active = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Description, category.IsActive, id)
	if err != nil {
		r.logger.Error("Failed to update menu category", "error", err, "category_id", id)
		return fmt.Errorf("failed to update menu category: %v", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		r.logger.Warn("Attempted to update non-existent category", "category_id", id)
		return fmt.Errorf("menu category %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated menu category", "category_id", id, "name", category.Name)
	return nil
}

func (r *MenuRepository) DeleteCategory(ctx context.Context, id string) error {
	r.logger.Debug("Deleting menu category", "category_id", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM menu_categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete menu category", "error", err, "category_id", id)
		return fmt.Errorf("failed to delete menu category: %v", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("menu category %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Deleted menu category", "category_id", id)
	return nil
}

const productSelect = `
	SELECT p.id, p.company_id, p.category_id, p.name, p.price, p.is_available, p.created_at,
	       COALESCE(
	           json_agg(
	               json_build_object(
	                   'inventory_item_id', rl.inventory_item_id,
	                   'amount_per_unit', rl.amount_per_unit
	               )
	           ) FILTER (WHERE rl.inventory_item_id IS NOT NULL), '[]'::json
	       ) AS recipe
	FROM products p
	LEFT JOIN recipe_lines rl ON p.id = rl.product_id
`

func (r *MenuRepository) GetProducts(ctx context.Context, companyID string) ([]*models.Product, error) {
	r.logger.Debug("Retrieving products", "company_id", companyID)

	query := productSelect + `
	WHERE p.company_id = $1
	GROUP BY p.id, p.company_id, p.category_id, p.name, p.price, p.is_available, p.created_at
	ORDER BY p.name
	`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to query products", "error", err, "company_id", companyID)
		return nil, fmt.Errorf("failed to query products: %v", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("Failed to scan product", "error", err)
			return nil, err
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %v", err)
	}

	r.logger.Info("Retrieved products", "company_id", companyID, "count", len(products))
	return products, nil
}

func (r *MenuRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	r.logger.Debug("Retrieving product", "product_id", id)

	query := productSelect + `
	WHERE p.id = $1
	GROUP BY p.id, p.company_id, p.category_id, p.name, p.price, p.is_available, p.created_at
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to query product", "error", err, "product_id", id)
		return nil, fmt.Errorf("failed to query product: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query product: %v", err)
		}
		r.logger.Warn("Product not found", "product_id", id)
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}

	product, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *MenuRepository) AddProduct(ctx context.Context, product *models.Product) error {
	r.logger.Debug("Adding product", "name", product.Name, "company_id", product.CompanyID)

	if err := validateProduct(product); err != nil {
		r.logger.Error("Failed to validate product", "error", err, "name", product.Name)
		return err
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products (id, company_id, category_id, name, price, is_available, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
		`

		_, err := tx.ExecContext(ctx, query,
			product.ID, product.CompanyID, product.CategoryID, product.Name, product.Price, product.IsAvailable)
		if err != nil {
			if strings.Contains(err.Error(), "violates unique constraint") {
				return fmt.Errorf("product with name %s already exists", product.Name)
			}
			return fmt.Errorf("failed to add product: %v", err)
		}

		return insertRecipeLines(ctx, tx, product.ID, product.Recipe)
	})
	if err != nil {
		r.logger.Error("Failed to add product", "error", err, "name", product.Name)
		return err
	}

	r.logger.Info("Added product", "product_id", product.ID, "name", product.Name)
	return nil
}

func (r *MenuRepository) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	r.logger.Debug("Updating product", "product_id", id)

	if err := validateProduct(product); err != nil {
		r.logger.Error("Failed to validate product", "error", err, "product_id", id)
		return err
	}

	query := `
		UPDATE products
		SET category_id = $1, name = $2, price = $3, is_available = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		product.CategoryID, product.Name, product.Price, product.IsAvailable, id)
	if err != nil {
		r.logger.Error("Failed to update product", "error", err, "product_id", id)
		return fmt.Errorf("failed to update product: %v", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		r.logger.Warn("Attempted to update non-existent product", "product_id", id)
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated product", "product_id", id, "name", product.Name)
	return nil
}

func (r *MenuRepository) DeleteProduct(ctx context.Context, id string) error {
	r.logger.Debug("Deleting product", "product_id", id)

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_lines WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete recipe lines: %v", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %v", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("Failed to delete product", "error", err, "product_id", id)
		return err
	}

	r.logger.Info("Deleted product", "product_id", id)
	return nil
}

// ReplaceRecipe swaps the product's recipe wholesale inside one
// transaction.
func (r *MenuRepository) ReplaceRecipe(ctx context.Context, productID string, lines []models.RecipeLine) error {
	r.logger.Debug("Replacing product recipe", "product_id", productID, "lines", len(lines))

	for i, line := range lines {
		if line.InventoryItemID == "" {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].inventory_item_id", i), Message: "inventory item is required"}
		}
		if line.AmountPerUnit <= 0 {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].amount_per_unit", i), Message: "amount per unit must be positive"}
		}
	}

	err := r.db.ExecuteInTransaction(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check product: %v", err)
		}
		if !exists {
			return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_lines WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("failed to delete recipe lines: %v", err)
		}
		return insertRecipeLines(ctx, tx, productID, lines)
	})
	if err != nil {
		r.logger.Warn("Failed to replace recipe", "error", err, "product_id", productID)
		return err
	}

	r.logger.Info("Replaced product recipe", "product_id", productID, "lines", len(lines))
	return nil
}

func insertRecipeLines(ctx context.Context, tx *sql.Tx, productID string, lines []models.RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO recipe_lines (product_id, inventory_item_id, amount_per_unit)
		VALUES ($1, $2, $3)
	`

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query, productID, line.InventoryItemID, line.AmountPerUnit); err != nil {
			return fmt.Errorf("failed to insert recipe line for item %s: %v", line.InventoryItemID, err)
		}
	}
	return nil
}

func scanProduct(rows *sql.Rows) (*models.Product, error) {
	product := &models.Product{}
	var recipeJSON string

	err := rows.Scan(&product.ID, &product.CompanyID, &product.CategoryID,
		&product.Name, &product.Price, &product.IsAvailable, &product.CreatedAt, &recipeJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %v", err)
	}

	if recipeJSON == "" || recipeJSON == "[]" {
		product.Recipe = []models.RecipeLine{}
		return product, nil
	}

	if err := json.Unmarshal([]byte(recipeJSON), &product.Recipe); err != nil {
		return nil, fmt.Errorf("invalid recipe JSON for product %s: %v", product.ID, err)
	}
	return product, nil
}

func validateCategory(category *models.MenuCategory) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}
	if category.CompanyID == "" {
		return &models.ValidationError{Field: "company_id", Message: "company is required"}
	}
	if category.Name == "" {
		return &models.ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	return nil
}

func validateProduct(product *models.Product) error {
	if product == nil {
		return errors.New("product cannot be nil")
	}
	if product.CompanyID == "" {
		return &models.ValidationError{Field: "company_id", Message: "company is required"}
	}
	if product.CategoryID == "" {
		return &models.ValidationError{Field: "category_id", Message: "category is required"}
	}
	if product.Name == "" {
		return &models.ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	if product.Price < 0 {
		return &models.ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	for i, line := range product.Recipe {
		if line.InventoryItemID == "" {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].inventory_item_id", i), Message: "inventory item is required"}
		}
		if line.AmountPerUnit <= 0 {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].amount_per_unit", i), Message: "amount per unit must be positive"}
		}
	}
	return nil
}
