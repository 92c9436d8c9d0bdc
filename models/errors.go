package models

import (
	"errors"
	"fmt"
)

// Business-rule errors are typed so handlers can map each kind to a
// distinct HTTP status and an actionable message instead of matching
// on error strings.
var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// InsufficientStockError reports the bottleneck ingredient that made
// a consumption or checkout impossible. No partial decrement is ever
// applied alongside it.
type InsufficientStockError struct {
	InventoryItemID string
	Requested       float64
	Available       float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s: requested %.2f, available %.2f",
		e.InventoryItemID, e.Requested, e.Available)
}

// ProductUnavailableError reports a cart line whose product is no
// longer offered at checkout time.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}

// IllegalTransitionError reports a rejected order status move. The
// order's persisted status is untouched when this is returned.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}

// ConflictError signals a lost optimistic-concurrency race; the
// caller should re-fetch current state and retry once.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict on %s", e.Resource)
}

// ValidationError is a field-level input rejection raised before any
// state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
