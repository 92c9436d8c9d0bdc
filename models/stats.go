package models

// ProductSales is one product's summed sold quantity and revenue.
type ProductSales struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	TotalQty    int     `json:"total_qty"`
	Revenue     float64 `json:"revenue"`
}

// DailySales is one day's revenue sum for charting.
type DailySales struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// OrderStats is the company dashboard aggregate. Empty data yields
// zeroed fields, never an error.
type OrderStats struct {
	TotalOrders        int            `json:"total_orders"`
	AvgOrderAmount     float64        `json:"avg_order_amount"`
	MostPopularProduct *ProductSales  `json:"most_popular_product"`
	TopProducts        []ProductSales `json:"top_products"`
	SalesByDay         []DailySales   `json:"sales_by_day"`
}

// OrderSummary is the compact shape listed on the staff board.
type OrderSummary struct {
	ID          string      `json:"order_id"`
	CreatedAt   string      `json:"created_at"`
	OrderType   OrderType   `json:"order_type"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
}
