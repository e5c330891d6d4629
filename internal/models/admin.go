package models

import "gorm.io/gorm"

// Admin represents a back-office account. Admins live in their own table,
// separate from customers, and log in through the admin endpoint.
type Admin struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	gorm.Model
}
