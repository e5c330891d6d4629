package services

import (
	"pizzeria/internal/models"
	"pizzeria/internal/repositories"

	"github.com/shopspring/decimal"
)

// CatalogService handles business logic for the pizza menu and its
// ingredients.
type CatalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// PizzaView is a pizza flattened for the API: ingredient rows become a plain
// name list.
type PizzaView struct {
	PizzaID     string          `json:"pizza_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImgURL      string          `json:"img_url"`
	SoldOut     bool            `json:"sold_out"`
	Ingredients []string        `json:"ingredients"`
}

// GetMenu retrieves all pizzas with their ingredient names.
func (s *CatalogService) GetMenu() ([]PizzaView, error) {
	pizzas, err := s.repo.GetAllPizzas()
	if err != nil {
		return nil, err
	}

	views := make([]PizzaView, 0, len(pizzas))
	for _, p := range pizzas {
		names := make([]string, 0, len(p.Ingredients))
		for _, ing := range p.Ingredients {
			names = append(names, ing.Name)
		}
		views = append(views, PizzaView{
			PizzaID:     p.ID,
			Name:        p.Name,
			UnitPrice:   p.UnitPrice,
			ImgURL:      p.ImgURL,
			SoldOut:     p.SoldOut,
			Ingredients: names,
		})
	}
	return views, nil
}

// GetPizzaByID retrieves a single pizza by its ID.
func (s *CatalogService) GetPizzaByID(id string) (*models.Pizza, error) {
	return s.repo.GetPizzaByID(id)
}

// CreatePizza creates a new pizza together with its ingredient links.
func (s *CatalogService) CreatePizza(pizza *models.Pizza, ingredientNames []string) error {
	return s.repo.CreatePizza(pizza, ingredientNames)
}

// UpdatePizza updates a pizza and, when ingredient names are given, replaces
// its ingredient links.
func (s *CatalogService) UpdatePizza(pizza *models.Pizza, ingredientNames []string) error {
	return s.repo.UpdatePizza(pizza, ingredientNames)
}

// MarkSoldOut flips the sold-out flag on a pizza.
func (s *CatalogService) MarkSoldOut(pizzaID string, soldOut bool) error {
	return s.repo.SetSoldOut(pizzaID, soldOut)
}

// GetAllIngredients retrieves the full ingredient catalog.
func (s *CatalogService) GetAllIngredients() ([]models.Ingredient, error) {
	return s.repo.GetAllIngredients()
}
