package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. The admin path may set any of these regardless of the
// current state; the user-facing cancel path only allows pending -> cancelled.
const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPreparing      = "preparing"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// ValidStatus reports whether s is one of the recognized order statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is an immutable snapshot created from a cart at placement time.
// TotalAmount is computed once and never recomputed; only Status changes
// after creation.
type Order struct {
	ID          string          `json:"order_id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"index;type:varchar(36)"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2)"`
	Status      string          `json:"status" gorm:"type:varchar(20)"`
	OrderDate   time.Time       `json:"order_date" gorm:"autoCreateTime"`
	Items       []OrderItem     `json:"items,omitempty"`
	Info        OrderInfo       `json:"order_info"`
}

// OrderItem is a frozen (pizza, quantity) line copied from the cart.
type OrderItem struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID  string `json:"order_id" gorm:"index;type:varchar(36)"`
	PizzaID  string `json:"pizza_id" gorm:"type:varchar(36)"`
	Quantity int    `json:"quantity"`
	Pizza    Pizza  `json:"-"`
}

// OrderInfo is the delivery-contact snapshot taken at placement time. It is
// deliberately a copy, not a reference to the user row, so later profile edits
// do not rewrite order history.
type OrderInfo struct {
	OrderID     string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}
