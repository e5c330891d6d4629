package services

import (
	"fmt"
	"strings"

	"pizzeria/internal/repositories"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService handles business logic for a user's active cart.
type CartService struct {
	db          *gorm.DB
	cartRepo    *repositories.CartRepository
	catalogRepo repositories.CatalogRepository
}

// NewCartService creates a new CartService.
func NewCartService(db *gorm.DB, cartRepo *repositories.CartRepository, catalogRepo repositories.CatalogRepository) *CartService {
	return &CartService{
		db:          db,
		cartRepo:    cartRepo,
		catalogRepo: catalogRepo,
	}
}

// CartLineView is one cart line enriched with the current pizza details.
type CartLineView struct {
	CartItemID  string          `json:"cart_item_id"`
	PizzaID     string          `json:"pizza_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ImgURL      string          `json:"img_url"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Ingredients string          `json:"ingredients"`
}

// CartSummary aggregates the cart: total item count and total amount at
// current prices.
type CartSummary struct {
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CartView is the full cart as served to the client.
type CartView struct {
	Items   []CartLineView `json:"items"`
	Summary CartSummary    `json:"summary"`
}

// Add puts a pizza in the user's cart. The cart is created lazily on first
// add; adding a pizza already in the cart increments its line quantity.
func (s *CartService) Add(userID, pizzaID string, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.catalogRepo.GetPizzaByID(pizzaID); err != nil {
		return fmt.Errorf("%w: pizza %s", ErrNotFound, pizzaID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		return s.cartRepo.UpsertLine(tx, cart.ID, pizzaID, quantity)
	})
}

// Get returns the user's cart with each line enriched and a computed summary.
func (s *CartService) Get(userID string) (*CartView, error) {
	cart, err := s.cartRepo.GetCartWithLines(userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		Items: make([]CartLineView, 0, len(cart.Items)),
		Summary: CartSummary{
			TotalAmount: decimal.Zero,
		},
	}
	for _, line := range cart.Items {
		names := make([]string, 0, len(line.Pizza.Ingredients))
		for _, ing := range line.Pizza.Ingredients {
			names = append(names, ing.Name)
		}
		lineTotal := line.Pizza.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Items = append(view.Items, CartLineView{
			CartItemID:  line.ID,
			PizzaID:     line.PizzaID,
			Name:        line.Pizza.Name,
			UnitPrice:   line.Pizza.UnitPrice,
			ImgURL:      line.Pizza.ImgURL,
			Quantity:    line.Quantity,
			TotalPrice:  lineTotal,
			Ingredients: strings.Join(names, ", "),
		})
		view.Summary.TotalItems += line.Quantity
		view.Summary.TotalAmount = view.Summary.TotalAmount.Add(lineTotal)
	}
	view.Summary.TotalAmount = view.Summary.TotalAmount.Round(2)
	return view, nil
}

// UpdateQuantity sets a line's quantity. Quantities below one are rejected;
// removal goes through Remove instead of zeroing.
func (s *CartService) UpdateQuantity(userID, lineID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.cartRepo.UpdateQuantity(tx, userID, lineID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: cart item %s", ErrNotFound, lineID)
		}
		return nil
	})
}

// Remove deletes a line from the user's cart.
func (s *CartService) Remove(userID, lineID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.cartRepo.RemoveLine(tx, userID, lineID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: cart item %s", ErrNotFound, lineID)
		}
		return nil
	})
}

// Clear removes every line from the user's cart and returns how many were
// deleted.
func (s *CartService) Clear(userID string) (int64, error) {
	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = s.cartRepo.ClearCart(tx, userID)
		return err
	})
	return removed, err
}

// Count returns the summed quantity across the user's cart lines.
func (s *CartService) Count(userID string) (int64, error) {
	return s.cartRepo.CountItems(userID)
}
