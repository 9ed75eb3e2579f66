package dto

import "time"

// OrderItemRequest is one submitted order line. Price is the unit price in
// the smallest currency unit.
type OrderItemRequest struct {
	MenuID   int64 `json:"menu_id"`
	Quantity int64 `json:"quantity"`
	Price    int64 `json:"price"`
}

// CreateOrderRequest is the POST /orders payload. Either customer_id or the
// customer_name/customer_email/customer_phone triple must be supplied.
type CreateOrderRequest struct {
	CustomerID      int64              `json:"customer_id"`
	Username        string             `json:"username"`
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	CustomerPhone   string             `json:"customer_phone"`
	DeliveryAddress string             `json:"delivery_address"`
	PaymentMethod   string             `json:"payment_method"`
	TotalPrice      int64              `json:"total_price"`
	Tax             int64              `json:"tax"`
	Items           []OrderItemRequest `json:"items"`
}

// UpdateOrderRequest is the PUT /orders/:id payload, a full field replace.
type UpdateOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	DeliveryAddress string `json:"delivery_address"`
	PaymentMethod   string `json:"payment_method"`
	TotalPrice      int64  `json:"total_price"`
	Tax             int64  `json:"tax"`
}

// UpdateStatusRequest is the PATCH /orders/:id/status payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrderResponse acknowledges a created order.
type CreateOrderResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// OrderItemResponse is one order line as exposed via transport layers.
// MenuName comes from the local menu copy and can be stale.
type OrderItemResponse struct {
	MenuID   int64  `json:"menu_id"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
	MenuName string `json:"menu_name"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID               int64               `json:"id"`
	CustomerID       int64               `json:"customer_id"`
	CustomerUsername string              `json:"customer_username"`
	CustomerName     string              `json:"customer_name"`
	CustomerEmail    string              `json:"customer_email"`
	CustomerPhone    string              `json:"customer_phone"`
	DeliveryAddress  string              `json:"delivery_address"`
	PaymentMethod    string              `json:"payment_method"`
	TotalPrice       int64               `json:"total_price"`
	Tax              int64               `json:"tax"`
	Status           string              `json:"status"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
