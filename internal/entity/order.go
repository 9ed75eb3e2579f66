package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is a single purchase transaction stored in the relational database.
// Customer fields are a point-in-time snapshot taken at creation; they are
// never refreshed from the customer service afterwards.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID               int64     `bun:",pk,autoincrement"`
	CustomerID       int64     `bun:"customer_id"`
	CustomerUsername string    `bun:"customer_username"`
	CustomerName     string    `bun:"customer_name"`
	CustomerEmail    string    `bun:"customer_email"`
	CustomerPhone    string    `bun:"customer_phone"`
	DeliveryAddress  string    `bun:"delivery_address"`
	PaymentMethod    string    `bun:"payment_method"`
	TotalPrice       int64     `bun:"total_price"`
	Tax              int64     `bun:"tax"`
	Status           Status    `bun:"status"`
	CreatedAt        time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// OrderItem is one line of an order. Price is the unit price in the smallest
// currency unit, snapshotted from the menu service at order time.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID       int64 `bun:",pk,autoincrement"`
	OrderID  int64 `bun:"order_id"`
	MenuID   int64 `bun:"menu_id"`
	Quantity int64 `bun:"quantity"`
	Price    int64 `bun:"price"`

	// MenuName is filled by the read path from the local menu_items copy.
	// It is not a column of order_items.
	MenuName string `bun:"menu_name,scanonly"`
}

// MenuItem is the locally readable copy of the menu service's catalog rows.
// The order service only reads it, to attach menu names on query paths.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID           int64     `bun:",pk,autoincrement"`
	RestaurantID int64     `bun:"restaurant_id"`
	Name         string    `bun:"name"`
	Price        int64     `bun:"price"`
	Description  string    `bun:"description"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
