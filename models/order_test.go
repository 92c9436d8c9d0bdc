package models

import "testing"

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{StatusNew, StatusInProgress},
		{StatusInProgress, StatusReady},
		{StatusReady, StatusDone},
	}
	for _, tc := range allowed {
		if !tc.from.CanAdvanceTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to OrderStatus }{
		{StatusNew, StatusReady},
		{StatusNew, StatusDone},
		{StatusInProgress, StatusDone},
		{StatusReady, StatusInProgress},
		{StatusDone, StatusReady},
		{StatusCancelled, StatusInProgress},
		{StatusNew, StatusCancelled}, // cancel has its own path, not a staff advance
		{StatusDone, StatusDone},
	}
	for _, tc := range denied {
		if tc.from.CanAdvanceTo(tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestOrderStatus_TerminalAndActive(t *testing.T) {
	for _, s := range []OrderStatus{StatusNew, StatusInProgress, StatusReady} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
		if !s.Active() {
			t.Errorf("%s must be active", s)
		}
	}
	for _, s := range []OrderStatus{StatusDone, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
		if s.Active() {
			t.Errorf("%s must not be active", s)
		}
	}
}

func TestCart_LineManipulation(t *testing.T) {
	cart := &Cart{ClientID: "u1", CompanyID: "c1"}
	latte := Product{ID: "p1", Name: "latte", Price: 4.5}

	cart.Add(latte, 2)
	cart.Add(latte, 1)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("expected one merged line with qty 3, got %+v", cart.Items)
	}
	if got := cart.Subtotal(); got != 13.5 {
		t.Fatalf("subtotal = %v, want 13.5", got)
	}

	cart.Decrement("p1", 2)
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("quantity after decrement = %d, want 1", cart.Items[0].Quantity)
	}

	// Decrementing past zero drops the line entirely.
	cart.Decrement("p1", 5)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}

	cart.SetQuantity(latte, 4)
	if cart.Items[0].Quantity != 4 {
		t.Fatalf("quantity after set = %d, want 4", cart.Items[0].Quantity)
	}
	cart.SetQuantity(latte, 0)
	if len(cart.Items) != 0 {
		t.Fatalf("setting zero must remove the line")
	}
}
