package repositories

import "pizzeria/internal/models"

// AdminRepository defines the interface for admin account data access.
type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByUsername(username string) (*models.Admin, error)
}
