package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

type CheckoutRequest struct {
	OrderType models.OrderType `json:"order_type"`
	Notes     string           `json:"notes"`
}

// OrderEventPublisher receives order lifecycle notifications for the
// staff board feed. Publishing must not block or fail checkout.
type OrderEventPublisher interface {
	PublishOrderCreated(order *models.Order)
	PublishStatusChanged(order *models.Order)
}

type OrderServiceInterface interface {
	Checkout(ctx context.Context, caller models.Caller, req CheckoutRequest) (*models.Order, error)
	GetOrder(ctx context.Context, caller models.Caller, id string) (*models.Order, error)
	GetStatusHistory(ctx context.Context, caller models.Caller, id string) ([]*models.StatusChange, error)
	ListMyOrders(ctx context.Context, caller models.Caller) (*models.ClientOrders, error)
	ListActive(ctx context.Context, caller models.Caller) ([]models.OrderSummary, error)
	ListFinished(ctx context.Context, caller models.Caller) ([]models.OrderSummary, error)
	Advance(ctx context.Context, caller models.Caller, id string, target models.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, caller models.Caller, id string) (*models.Order, error)
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	menu      MenuServiceInterface
	cartStore repositories.CartStoreInterface
	publisher OrderEventPublisher
	// Finished DONE orders stay visible on the active board for this
	// long so staff see the handover happen.
	doneVisibleFor time.Duration
	logger         *logger.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	menu MenuServiceInterface,
	cartStore repositories.CartStoreInterface,
	publisher OrderEventPublisher,
	doneVisibleFor time.Duration,
	logger *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		menu:           menu,
		cartStore:      cartStore,
		publisher:      publisher,
		doneVisibleFor: doneVisibleFor,
		logger:         logger.WithComponent("order_service"),
	}
}

// Checkout turns the caller's cart into an order. Every line is
// re-validated and re-priced against the live catalog, ingredient
// demand is aggregated across all lines, and the order insert plus
// stock decrement happen as one atomic unit in the repository. The
// cart is cleared only after the order is committed.
func (s *OrderService) Checkout(ctx context.Context, caller models.Caller, req CheckoutRequest) (*models.Order, error) {
	s.logger.Info("Starting checkout", "client_id", caller.UserID, "order_type", req.OrderType)

	if !req.OrderType.Valid() {
		return nil, &models.ValidationError{Field: "order_type", Message: fmt.Sprintf("invalid order type %q", req.OrderType)}
	}

	cart, err := s.cartStore.Get(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("Failed to load cart for checkout", "client_id", caller.UserID, "error", err)
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		s.logger.Warn("Checkout rejected: empty cart", "client_id", caller.UserID)
		return nil, models.ErrEmptyCart
	}

	var (
		orderItems  []models.OrderItem
		total       float64
		consumption = make(map[string]float64)
	)
	for _, line := range cart.Items {
		product, err := s.menu.GetProduct(ctx, cart.CompanyID, line.ProductID)
		if err != nil {
			s.logger.Warn("Checkout rejected: product vanished", "product_id", line.ProductID, "error", err)
			return nil, &models.ProductUnavailableError{ProductID: line.ProductID}
		}
		if !product.IsAvailable {
			s.logger.Warn("Checkout rejected: product switched off", "product_id", line.ProductID)
			return nil, &models.ProductUnavailableError{ProductID: line.ProductID}
		}

		// Current catalog price wins over the cart snapshot.
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
		total += float64(line.Quantity) * product.Price

		for _, rl := range product.Recipe {
			consumption[rl.InventoryItemID] += rl.AmountPerUnit * float64(line.Quantity)
		}
	}

	order := &models.Order{
		CompanyID:   cart.CompanyID,
		ClientID:    caller.UserID,
		Status:      models.StatusNew,
		OrderType:   req.OrderType,
		Notes:       req.Notes,
		TotalAmount: math.Round(total*100) / 100,
		Items:       orderItems,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.orderRepo.Create(ctx, order, consumption); err != nil {
		s.logger.Warn("Checkout failed", "client_id", caller.UserID, "error", err)
		return nil, err
	}

	if err := s.cartStore.Delete(ctx, caller.UserID); err != nil {
		// The order is already committed; a stale cart is recoverable.
		s.logger.Error("Failed to clear cart after checkout", "client_id", caller.UserID, "error", err)
	}

	if s.publisher != nil {
		s.publisher.PublishOrderCreated(order)
	}

	s.logger.Info("Checkout completed",
		"order_id", order.ID, "company_id", order.CompanyID, "total_amount", order.TotalAmount)
	return order, nil
}

// GetOrder returns one order to its client or to that company's staff.
func (s *OrderService) GetOrder(ctx context.Context, caller models.Caller, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(caller, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetStatusHistory(ctx context.Context, caller models.Caller, id string) ([]*models.StatusChange, error) {
	if _, err := s.GetOrder(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.orderRepo.GetStatusHistory(ctx, id)
}

// ListMyOrders returns the caller's order history split into active
// and finished buckets, mirroring the board's DONE display window.
func (s *OrderService) ListMyOrders(ctx context.Context, caller models.Caller) (*models.ClientOrders, error) {
	s.logger.Info("Listing client orders", "client_id", caller.UserID)

	orders, err := s.orderRepo.ListByClient(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-s.doneVisibleFor)
	result := &models.ClientOrders{
		Active:   []*models.Order{},
		Finished: []*models.Order{},
	}
	for _, o := range orders {
		if o.Status.Active() || s.recentlyDone(o, cutoff) {
			result.Active = append(result.Active, o)
		} else {
			result.Finished = append(result.Finished, o)
		}
	}

	return result, nil
}

// ListActive returns the staff board: NEW, IN_PROGRESS and READY
// orders, plus DONE orders completed within the display window.
func (s *OrderService) ListActive(ctx context.Context, caller models.Caller) ([]models.OrderSummary, error) {
	orders, err := s.listCompany(ctx, caller)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-s.doneVisibleFor)
	var active []models.OrderSummary
	for _, o := range orders {
		if o.Status.Active() || s.recentlyDone(o, cutoff) {
			active = append(active, summarize(o))
		}
	}

	s.logger.Info("Listed active orders", "company_id", caller.CompanyID, "count", len(active))
	return active, nil
}

// ListFinished returns DONE orders past the display window and all
// CANCELLED orders.
func (s *OrderService) ListFinished(ctx context.Context, caller models.Caller) ([]models.OrderSummary, error) {
	orders, err := s.listCompany(ctx, caller)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-s.doneVisibleFor)
	var finished []models.OrderSummary
	for _, o := range orders {
		if o.Status == models.StatusCancelled || (o.Status == models.StatusDone && !s.recentlyDone(o, cutoff)) {
			finished = append(finished, summarize(o))
		}
	}

	return finished, nil
}

// Advance moves an order one step forward in the lifecycle on behalf
// of staff. The repository update is conditional on the current
// status, so a racing colleague's transition surfaces as a conflict
// rather than a silent double-apply.
func (s *OrderService) Advance(ctx context.Context, caller models.Caller, id string, target models.OrderStatus) (*models.Order, error) {
	s.logger.Info("Advancing order status", "order_id", id, "target", target)

	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("invalid status %q", target)}
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CompanyID != caller.CompanyID {
		s.logger.Warn("Cross-company order access denied", "order_id", id, "company_id", caller.CompanyID)
		return nil, fmt.Errorf("order %s: %w", id, models.ErrForbidden)
	}

	if !order.Status.CanAdvanceTo(target) {
		s.logger.Warn("Illegal status transition rejected",
			"order_id", id, "from", order.Status, "to", target)
		return nil, &models.IllegalTransitionError{From: order.Status, To: target}
	}

	var completedAt *time.Time
	if target == models.StatusDone {
		now := time.Now().UTC()
		completedAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, order.Status, target, completedAt); err != nil {
		return nil, err
	}

	order.Status = target
	order.CompletedAt = completedAt
	if s.publisher != nil {
		s.publisher.PublishStatusChanged(order)
	}

	s.logger.Info("Order status advanced", "order_id", id, "status", target)
	return order, nil
}

// Cancel lets the placing client withdraw an order that the kitchen
// has not started yet. Only NEW orders are cancellable, and only by
// their own client. Consumed stock is not restored.
func (s *OrderService) Cancel(ctx context.Context, caller models.Caller, id string) (*models.Order, error) {
	s.logger.Info("Cancelling order", "order_id", id, "client_id", caller.UserID)

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ClientID != caller.UserID {
		s.logger.Warn("Cancel denied: not the order's client", "order_id", id, "client_id", caller.UserID)
		return nil, fmt.Errorf("order %s: %w", id, models.ErrForbidden)
	}
	if order.Status != models.StatusNew {
		s.logger.Warn("Cancel rejected: order already started", "order_id", id, "status", order.Status)
		return nil, &models.IllegalTransitionError{From: order.Status, To: models.StatusCancelled}
	}

	now := time.Now().UTC()
	if err := s.orderRepo.UpdateStatus(ctx, id, models.StatusNew, models.StatusCancelled, &now); err != nil {
		return nil, err
	}

	order.Status = models.StatusCancelled
	order.CompletedAt = &now
	if s.publisher != nil {
		s.publisher.PublishStatusChanged(order)
	}

	s.logger.Info("Order cancelled", "order_id", id)
	return order, nil
}

func (s *OrderService) listCompany(ctx context.Context, caller models.Caller) ([]*models.Order, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}
	return s.orderRepo.ListByCompany(ctx, caller.CompanyID)
}

func (s *OrderService) recentlyDone(o *models.Order, cutoff time.Time) bool {
	return o.Status == models.StatusDone && o.CompletedAt != nil && o.CompletedAt.After(cutoff)
}

func (s *OrderService) authorizeRead(caller models.Caller, order *models.Order) error {
	if order.ClientID == caller.UserID {
		return nil
	}
	if caller.Staff() && order.CompanyID == caller.CompanyID {
		return nil
	}
	s.logger.Warn("Order read denied", "order_id", order.ID, "user_id", caller.UserID)
	return fmt.Errorf("order %s: %w", order.ID, models.ErrForbidden)
}

func summarize(o *models.Order) models.OrderSummary {
	return models.OrderSummary{
		ID:          o.ID,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		OrderType:   o.OrderType,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
	}
}
