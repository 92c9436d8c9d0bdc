package service

import (
	"context"
	"math"
	"time"

	"github.com/Gomonuka/cafe-management/internal/repositories"
	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

type CartItemRequest struct {
	CompanyID string `json:"company_id"`
	ProductID string `json:"product_id"`
	Amount    int    `json:"amount"`
}

type CartServiceInterface interface {
	GetCart(ctx context.Context, caller models.Caller) (*models.CartView, error)
	AddItem(ctx context.Context, caller models.Caller, req CartItemRequest) (*models.CartView, error)
	SetQuantity(ctx context.Context, caller models.Caller, req CartItemRequest) (*models.CartView, error)
	DecrementItem(ctx context.Context, caller models.Caller, productID string, amount int) (*models.CartView, error)
	RemoveItem(ctx context.Context, caller models.Caller, productID string) (*models.CartView, error)
	ClearCart(ctx context.Context, caller models.Caller) error
}

type CartService struct {
	cartStore repositories.CartStoreInterface
	menu      MenuServiceInterface
	logger    *logger.Logger
}

func NewCartService(cartStore repositories.CartStoreInterface, menu MenuServiceInterface, logger *logger.Logger) *CartService {
	return &CartService{
		cartStore: cartStore,
		menu:      menu,
		logger:    logger.WithComponent("cart_service"),
	}
}

// GetCart returns the caller's cart view; an absent cart reads as an
// empty one.
func (s *CartService) GetCart(ctx context.Context, caller models.Caller) (*models.CartView, error) {
	cart, err := s.cartStore.Get(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("Failed to load cart", "client_id", caller.UserID, "error", err)
		return nil, err
	}
	if cart == nil {
		return &models.CartView{Items: []models.CartViewItem{}}, nil
	}
	return buildCartView(cart), nil
}

// AddItem adds a product to the cart. A cart holds items for exactly
// one company; adding for a different company discards the old cart
// and starts a fresh one.
func (s *CartService) AddItem(ctx context.Context, caller models.Caller, req CartItemRequest) (*models.CartView, error) {
	s.logger.Info("Adding item to cart",
		"client_id", caller.UserID, "product_id", req.ProductID, "amount", req.Amount)

	if req.Amount <= 0 {
		return nil, &models.ValidationError{Field: "amount", Message: "amount must be positive"}
	}
	if req.CompanyID == "" {
		return nil, &models.ValidationError{Field: "company_id", Message: "company is required"}
	}

	product, err := s.sellableProduct(ctx, req.CompanyID, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartStore.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.CompanyID != req.CompanyID {
		if cart != nil {
			s.logger.Info("Resetting cart for new company",
				"client_id", caller.UserID, "old_company", cart.CompanyID, "new_company", req.CompanyID)
		}
		cart = &models.Cart{ClientID: caller.UserID, CompanyID: req.CompanyID}
	}

	cart.Add(*product, req.Amount)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return buildCartView(cart), nil
}

// SetQuantity sets a line's quantity outright; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, caller models.Caller, req CartItemRequest) (*models.CartView, error) {
	s.logger.Info("Setting cart quantity",
		"client_id", caller.UserID, "product_id", req.ProductID, "amount", req.Amount)

	if req.Amount < 0 {
		return nil, &models.ValidationError{Field: "amount", Message: "amount cannot be negative"}
	}

	cart, err := s.requireCart(ctx, caller)
	if err != nil {
		return nil, err
	}

	product, err := s.sellableProduct(ctx, cart.CompanyID, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart.SetQuantity(*product, req.Amount)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return buildCartView(cart), nil
}

// DecrementItem lowers a line's quantity; reaching zero removes the
// line. Decrementing an absent line is a no-op.
func (s *CartService) DecrementItem(ctx context.Context, caller models.Caller, productID string, amount int) (*models.CartView, error) {
	s.logger.Info("Decrementing cart item",
		"client_id", caller.UserID, "product_id", productID, "amount", amount)

	if amount <= 0 {
		return nil, &models.ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	cart, err := s.requireCart(ctx, caller)
	if err != nil {
		return nil, err
	}

	cart.Decrement(productID, amount)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return buildCartView(cart), nil
}

func (s *CartService) RemoveItem(ctx context.Context, caller models.Caller, productID string) (*models.CartView, error) {
	s.logger.Info("Removing cart item", "client_id", caller.UserID, "product_id", productID)

	cart, err := s.requireCart(ctx, caller)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return buildCartView(cart), nil
}

func (s *CartService) ClearCart(ctx context.Context, caller models.Caller) error {
	s.logger.Info("Clearing cart", "client_id", caller.UserID)
	return s.cartStore.Delete(ctx, caller.UserID)
}

// sellableProduct loads a product and rejects ones switched off or
// belonging to another company.
func (s *CartService) sellableProduct(ctx context.Context, companyID, productID string) (*models.Product, error) {
	product, err := s.menu.GetProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		s.logger.Warn("Rejected unavailable product", "product_id", productID)
		return nil, &models.ProductUnavailableError{ProductID: productID}
	}
	return product, nil
}

func (s *CartService) requireCart(ctx context.Context, caller models.Caller) (*models.Cart, error) {
	cart, err := s.cartStore.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, models.ErrEmptyCart
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	if len(cart.Items) == 0 {
		return s.cartStore.Delete(ctx, cart.ClientID)
	}
	cart.UpdatedAt = time.Now().UTC()
	if err := s.cartStore.Save(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", "client_id", cart.ClientID, "error", err)
		return err
	}
	return nil
}

func buildCartView(cart *models.Cart) *models.CartView {
	view := &models.CartView{
		CompanyID: cart.CompanyID,
		Items:     make([]models.CartViewItem, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		view.Items = append(view.Items, models.CartViewItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   math.Round(float64(item.Quantity)*item.UnitPrice*100) / 100,
		})
	}
	view.TotalAmount = cart.Subtotal()
	return view
}
