package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// MemoryStore is an in-memory storage backend implementing the same
// repository contracts as the PostgreSQL repositories. One write lock
// guards the whole store, which makes the checkout unit (order insert
// plus inventory decrement) atomic by construction.
type MemoryStore struct {
	mu sync.RWMutex

	inventory map[string]*models.InventoryItem
	movements map[string][]*models.InventoryMovement
	category  map[string]*models.MenuCategory
	products  map[string]*models.Product
	orders    map[string]*models.Order
	history   map[string][]*models.StatusChange

	logger *logger.Logger
}

func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		inventory: make(map[string]*models.InventoryItem),
		movements: make(map[string][]*models.InventoryMovement),
		category:  make(map[string]*models.MenuCategory),
		products:  make(map[string]*models.Product),
		orders:    make(map[string]*models.Order),
		history:   make(map[string][]*models.StatusChange),
		logger:    log.WithComponent("memory_store"),
	}
}

// Interface checks
var (
	_ InventoryRepositoryInterface = (*MemoryStore)(nil)
	_ MenuRepositoryInterface      = (*MemoryStore)(nil)
	_ OrderRepositoryInterface     = (*MemoryStore)(nil)
)

// --- InventoryRepositoryInterface ---

func (m *MemoryStore) GetAll(ctx context.Context, companyID string) ([]*models.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*models.InventoryItem
	for _, item := range m.inventory {
		if item.CompanyID == companyID {
			copy := *item
			items = append(items, &copy)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.inventory[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}
	copy := *item
	return &copy, nil
}

func (m *MemoryStore) Add(ctx context.Context, item *models.InventoryItem) error {
	if err := validateInventoryItem(item); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if _, exists := m.inventory[item.ID]; exists {
		return fmt.Errorf("inventory item with id %s already exists", item.ID)
	}

	copy := *item
	m.inventory[item.ID] = &copy
	m.logger.Info("Added inventory item", "item_id", item.ID, "name", item.Name)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, item *models.InventoryItem) error {
	if err := validateInventoryItem(item); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.inventory[id]
	if !ok {
		return fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}

	// Quantity is adjusted only through AdjustQuantity or checkout.
	existing.Name = item.Name
	existing.Unit = item.Unit
	existing.MinQuantity = item.MinQuantity
	return nil
}

func (m *MemoryStore) AdjustQuantity(ctx context.Context, id string, change float64, reason, actor string) (*models.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.inventory[id]
	if !ok {
		return nil, fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}

	if item.Quantity+change < 0 {
		return nil, &models.InsufficientStockError{
			InventoryItemID: id,
			Requested:       -change,
			Available:       item.Quantity,
		}
	}

	item.Quantity += change
	m.recordMovement(id, change, reason, actor)

	m.logger.Info("Adjusted inventory quantity",
		"item_id", id, "change", change, "remaining", item.Quantity, "reason", reason)

	copy := *item
	return &copy, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inventory[id]; !ok {
		return fmt.Errorf("inventory item %s: %w", id, models.ErrNotFound)
	}
	delete(m.inventory, id)
	delete(m.movements, id)
	return nil
}

func (m *MemoryStore) GetMovements(ctx context.Context, itemID string) ([]*models.InventoryMovement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	moves := m.movements[itemID]
	out := make([]*models.InventoryMovement, 0, len(moves))
	for i := len(moves) - 1; i >= 0; i-- { // newest first
		copy := *moves[i]
		out = append(out, &copy)
	}
	return out, nil
}

// recordMovement must be called with the write lock held.
func (m *MemoryStore) recordMovement(itemID string, change float64, reason, actor string) {
	m.movements[itemID] = append(m.movements[itemID], &models.InventoryMovement{
		ID:              uuid.NewString(),
		InventoryItemID: itemID,
		QuantityChange:  change,
		Reason:          reason,
		CreatedBy:       actor,
		CreatedAt:       time.Now().UTC(),
	})
}

// --- MenuRepositoryInterface ---

func (m *MemoryStore) GetCategories(ctx context.Context, companyID string) ([]*models.MenuCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []*models.MenuCategory
	for _, c := range m.category {
		if c.CompanyID == companyID {
			copy := *c
			categories = append(categories, &copy)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MemoryStore) AddCategory(ctx context.Context, category *models.MenuCategory) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	copy := *category
	m.category[category.ID] = &copy
	return nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, id string, category *models.MenuCategory) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.category[id]
	if !ok {
		return fmt.Errorf("menu category %s: %w", id, models.ErrNotFound)
	}
	existing.Name = category.Name
	existing.Description = category.Description
	existing.IsActive = category.IsActive
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.category[id]; !ok {
		return fmt.Errorf("menu category %s: %w", id, models.ErrNotFound)
	}
	delete(m.category, id)
	return nil
}

func (m *MemoryStore) GetProducts(ctx context.Context, companyID string) ([]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var products []*models.Product
	for _, p := range m.products {
		if p.CompanyID == companyID {
			products = append(products, copyProduct(p))
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (m *MemoryStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	return copyProduct(p), nil
}

func (m *MemoryStore) AddProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if _, exists := m.products[product.ID]; exists {
		return fmt.Errorf("product with id %s already exists", product.ID)
	}
	m.products[product.ID] = copyProduct(product)
	return nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, id string, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	existing.CategoryID = product.CategoryID
	existing.Name = product.Name
	existing.Price = product.Price
	existing.IsAvailable = product.IsAvailable
	return nil
}

func (m *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, models.ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryStore) ReplaceRecipe(ctx context.Context, productID string, lines []models.RecipeLine) error {
	for i, line := range lines {
		if line.InventoryItemID == "" {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].inventory_item_id", i), Message: "inventory item is required"}
		}
		if line.AmountPerUnit <= 0 {
			return &models.ValidationError{Field: fmt.Sprintf("recipe[%d].amount_per_unit", i), Message: "amount per unit must be positive"}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	product.Recipe = append([]models.RecipeLine(nil), lines...)
	return nil
}

// --- OrderRepositoryInterface ---

func (m *MemoryStore) Create(ctx context.Context, order *models.Order, consumption map[string]float64) error {
	if err := validateOrder(order); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate every decrement before applying any so a shortfall
	// leaves the ledger untouched.
	itemIDs := make([]string, 0, len(consumption))
	for id := range consumption {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	for _, itemID := range itemIDs {
		item, ok := m.inventory[itemID]
		if !ok || item.CompanyID != order.CompanyID {
			return fmt.Errorf("inventory item %s: %w", itemID, models.ErrNotFound)
		}
		if item.Quantity < consumption[itemID] {
			return &models.InsufficientStockError{
				InventoryItemID: itemID,
				Requested:       consumption[itemID],
				Available:       item.Quantity,
			}
		}
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, exists := m.orders[order.ID]; exists {
		return fmt.Errorf("order with id %s already exists", order.ID)
	}

	for _, itemID := range itemIDs {
		m.inventory[itemID].Quantity -= consumption[itemID]
		m.recordMovement(itemID, -consumption[itemID], fmt.Sprintf("order %s", order.ID), order.ClientID)
	}

	m.orders[order.ID] = copyOrder(order)
	m.history[order.ID] = append(m.history[order.ID], &models.StatusChange{
		OrderID:   order.ID,
		Status:    order.Status,
		ChangedAt: order.CreatedAt,
	})

	m.logger.Info("Created order", "order_id", order.ID, "company_id", order.CompanyID)
	return nil
}

func (m *MemoryStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return copyOrder(order), nil
}

func (m *MemoryStore) ListByClient(ctx context.Context, clientID string) ([]*models.Order, error) {
	return m.listOrders(func(o *models.Order) bool { return o.ClientID == clientID })
}

func (m *MemoryStore) ListByCompany(ctx context.Context, companyID string) ([]*models.Order, error) {
	return m.listOrders(func(o *models.Order) bool { return o.CompanyID == companyID })
}

func (m *MemoryStore) listOrders(match func(*models.Order) bool) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var orders []*models.Order
	for _, o := range m.orders {
		if match(o) {
			orders = append(orders, copyOrder(o))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, completedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if order.Status != from {
		return &models.ConflictError{Resource: fmt.Sprintf("order %s", id)}
	}

	order.Status = to
	order.CompletedAt = completedAt
	m.history[id] = append(m.history[id], &models.StatusChange{
		OrderID:   id,
		Status:    to,
		ChangedAt: time.Now().UTC(),
	})

	m.logger.Info("Updated order status", "order_id", id, "from", from, "to", to)
	return nil
}

func (m *MemoryStore) GetStatusHistory(ctx context.Context, orderID string) ([]*models.StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.history[orderID]
	out := make([]*models.StatusChange, 0, len(history))
	for _, change := range history {
		copy := *change
		out = append(out, &copy)
	}
	return out, nil
}

func copyProduct(p *models.Product) *models.Product {
	copy := *p
	copy.Recipe = append([]models.RecipeLine(nil), p.Recipe...)
	return &copy
}

func copyOrder(o *models.Order) *models.Order {
	copy := *o
	copy.Items = append([]models.OrderItem(nil), o.Items...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		copy.CompletedAt = &t
	}
	return &copy
}
