package models

import (
	"math"
	"time"
)

// Cart is a client's in-progress selection for exactly one company.
// It is ephemeral session state: created lazily on first add, cleared
// on checkout or explicit clear, and reset whenever the client starts
// adding items for a different company.
type Cart struct {
	ClientID  string     `json:"client_id"`
	CompanyID string     `json:"company_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem holds the requested quantity and the unit price snapshot
// taken when the line was added or last set. Checkout re-prices
// authoritatively; the snapshot only keeps the visible cart total
// stable across mid-session price changes.
type CartItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the quantity for a product, creating the line if
// absent. The price snapshot is refreshed on every add.
func (c *Cart) Add(product Product, amount int) {
	if i := c.Find(product.ID); i >= 0 {
		c.Items[i].Quantity += amount
		c.Items[i].UnitPrice = product.Price
		return
	}
	c.Items = append(c.Items, CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    amount,
		UnitPrice:   product.Price,
	})
}

// SetQuantity sets a line's quantity outright; zero or negative
// removes the line.
func (c *Cart) SetQuantity(product Product, quantity int) {
	if quantity <= 0 {
		c.Remove(product.ID)
		return
	}
	if i := c.Find(product.ID); i >= 0 {
		c.Items[i].Quantity = quantity
		c.Items[i].UnitPrice = product.Price
		return
	}
	c.Add(product, quantity)
}

// Decrement lowers a line's quantity; at or below zero the line is
// removed so no zero-quantity entries ever persist.
func (c *Cart) Decrement(productID string, amount int) {
	i := c.Find(productID)
	if i < 0 {
		return
	}
	c.Items[i].Quantity -= amount
	if c.Items[i].Quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Remove drops a line unconditionally; removing an absent line is a
// no-op.
func (c *Cart) Remove(productID string) {
	if i := c.Find(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// TotalQuantity sums all requested quantities.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums quantity x snapshot price across all lines, rounded
// to cents.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return math.Round(total*100) / 100
}

// CartViewItem is one cart line as returned to the client.
type CartViewItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// CartView is the cart read response shape.
type CartView struct {
	CompanyID   string         `json:"company_id"`
	Items       []CartViewItem `json:"items"`
	TotalAmount float64        `json:"total_amount"`
}
