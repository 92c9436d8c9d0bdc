package models

import "time"

// OrderStatus is a closed enumeration of order lifecycle states.
// Forward progression is strictly one step at a time; CANCELLED is
// reachable only from NEW and only by the placing client.
type OrderStatus string

const (
	StatusNew        OrderStatus = "NEW"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusDone       OrderStatus = "DONE"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// forwardTransitions is the staff-driven progression table.
var forwardTransitions = map[OrderStatus]OrderStatus{
	StatusNew:        StatusInProgress,
	StatusInProgress: StatusReady,
	StatusReady:      StatusDone,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusReady, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// CanAdvanceTo reports whether staff may move an order from s to next.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	return forwardTransitions[s] == next
}

// Active reports whether the status belongs on the staff board
// (ignoring the DONE display window, which is a service concern).
func (s OrderStatus) Active() bool {
	return s == StatusNew || s == StatusInProgress || s == StatusReady
}

// OrderType distinguishes dine-in from takeaway orders.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeaway
}

// Order is an immutable historical record once created; only Status
// (via legal transitions) and CompletedAt ever change afterwards.
type Order struct {
	ID          string      `json:"order_id" db:"id"`
	CompanyID   string      `json:"company_id" db:"company_id"`
	ClientID    string      `json:"client_id" db:"client_id"`
	Status      OrderStatus `json:"status" db:"status"`
	OrderType   OrderType   `json:"order_type" db:"order_type"`
	Notes       string      `json:"notes" db:"notes"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// OrderItem snapshots product name and unit price at order time.
type OrderItem struct {
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}

// LineTotal is quantity x unit price for one order line.
func (i OrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// ClientOrders is a client's order history split the same way the
// staff board splits it: open orders (plus freshly DONE ones inside
// the display window) versus settled history.
type ClientOrders struct {
	Active   []*Order `json:"active"`
	Finished []*Order `json:"finished"`
}

// StatusChange records one transition in an order's history.
type StatusChange struct {
	OrderID   string      `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	ChangedAt time.Time   `json:"changed_at" db:"changed_at"`
}
