package models

import "time"

// Cart is a user's single active basket. The unique index on UserID makes the
// lazy get-or-create conflict-safe: a concurrent duplicate insert fails instead
// of producing two carts.
type Cart struct {
	ID        string     `json:"cart_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CartItem is one (pizza, quantity) line in a cart. A pizza appears at most
// once per cart; adding it again increments the existing line's quantity.
type CartItem struct {
	ID       string    `json:"cart_item_id" gorm:"primaryKey;type:varchar(36)"`
	CartID   string    `json:"cart_id" gorm:"uniqueIndex:idx_cart_pizza;type:varchar(36)"`
	PizzaID  string    `json:"pizza_id" gorm:"uniqueIndex:idx_cart_pizza;type:varchar(36)"`
	Quantity int       `json:"quantity" validate:"gte=1"`
	Pizza    Pizza     `json:"-"`
	AddedAt  time.Time `json:"added_at" gorm:"autoCreateTime"`
}
