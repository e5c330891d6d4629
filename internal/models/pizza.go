package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pizza represents a menu item. Prices are stored as fixed-point decimals
// so order totals never drift from float rounding.
type Pizza struct {
	ID          string          `json:"pizza_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2)" validate:"required"`
	ImgURL      string          `json:"img_url" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	SoldOut     bool            `json:"sold_out"`
	Ingredients []Ingredient    `json:"ingredients,omitempty" gorm:"many2many:pizza_ingredients"`
	gorm.Model
}

// Ingredient is a catalog entry shared across pizzas (many-to-many).
type Ingredient struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
}
