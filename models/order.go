package models

import "time"

// Checkout is created from a cart snapshot by POST /cart/checkout.
type Checkout struct {
	ID          int            `json:"id"`
	UserID      int            `json:"user_id"`
	TotalAmount float64        `json:"total_amount"`
	Items       []CheckoutItem `json:"items,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type CheckoutItem struct {
	CheckoutID int `json:"checkout_id"`
	ProductID  int `json:"product_id"`
	Quantity   int `json:"quantity"`
}

// Order is created by the direct order endpoint, which also decrements stock.
type Order struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
