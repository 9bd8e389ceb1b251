package domain

import "time"

// OrderItem is one purchased line within an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is the read-only order record served by the order API.
type Order struct {
	ID            string      `json:"id"`
	Items         []OrderItem `json:"items"`
	Status        string      `json:"status"`
	Total         int64       `json:"total"`
	PaymentStatus string      `json:"payment_status"`
	Address       string      `json:"address"`
	CreatedAt     time.Time   `json:"created_at"`
}
