package repositories

import "pizzeria/internal/models"

// CatalogRepository defines the interface for menu catalog data access
// (pizzas and their ingredients).
type CatalogRepository interface {
	GetAllPizzas() ([]models.Pizza, error)
	GetPizzaByID(id string) (*models.Pizza, error)
	// CreatePizza inserts the pizza together with its ingredient links as one
	// atomic unit; a failure on any ingredient leaves no orphaned pizza row.
	CreatePizza(pizza *models.Pizza, ingredientNames []string) error
	// UpdatePizza updates the pizza fields and, when ingredientNames is
	// non-nil, replaces the ingredient links in the same atomic unit.
	UpdatePizza(pizza *models.Pizza, ingredientNames []string) error
	SetSoldOut(pizzaID string, soldOut bool) error
	GetAllIngredients() ([]models.Ingredient, error)
}
