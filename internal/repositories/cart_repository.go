package repositories

import (
	"errors"
	"fmt"
	"pizzeria/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository provides data access for carts and their lines. Mutating
// methods take the transaction handle so the service layer controls the
// atomic scope.
type CartRepository struct {
	DB *gorm.DB
}

// NewCartRepository creates a new CartRepository.
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{DB: db}
}

// GetOrCreateCart returns the user's cart, creating it on first use. The
// insert tolerates a concurrent duplicate via the unique user_id index, so
// two racing calls converge on the same cart row.
func (r *CartRepository) GetOrCreateCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	cart := models.Cart{ID: uuid.New().String(), UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	if err := tx.First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

// LockCart loads the user's cart row with a row-level write lock, serializing
// concurrent order placement for the same user. Returns gorm.ErrRecordNotFound
// when the user has no cart yet.
func (r *CartRepository) LockCart(tx *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCartWithLines returns the user's cart with lines, pizzas, and pizza
// ingredients preloaded. A user without a cart gets an empty one back so the
// client can always render a cart view.
func (r *CartRepository) GetCartWithLines(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.added_at desc")
		}).
		Preload("Items.Pizza").
		Preload("Items.Pizza.Ingredients").
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetLines returns the cart's lines joined with their pizzas (price and
// sold-out flag included). Runs inside the caller's transaction.
func (r *CartRepository) GetLines(tx *gorm.DB, cartID string) ([]models.CartItem, error) {
	var lines []models.CartItem
	if err := tx.Where("cart_id = ?", cartID).Preload("Pizza").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart lines: %w", err)
	}
	return lines, nil
}

// UpsertLine adds a pizza to the cart, incrementing the quantity if the
// (cart, pizza) line already exists.
func (r *CartRepository) UpsertLine(tx *gorm.DB, cartID, pizzaID string, quantity int) error {
	line := models.CartItem{
		ID:       uuid.New().String(),
		CartID:   cartID,
		PizzaID:  pizzaID,
		Quantity: quantity,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "pizza_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
		}),
	}).Create(&line).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cart line: %w", err)
	}
	return nil
}

// UpdateQuantity sets a line's quantity, scoped to the requesting user's cart.
// Returns the number of rows touched; zero means the line does not exist or
// belongs to someone else.
func (r *CartRepository) UpdateQuantity(tx *gorm.DB, userID, lineID string, quantity int) (int64, error) {
	res := tx.Model(&models.CartItem{}).
		Where("id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)", lineID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update cart line quantity: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RemoveLine deletes a line, scoped to the requesting user's cart.
func (r *CartRepository) RemoveLine(tx *gorm.DB, userID, lineID string) (int64, error) {
	res := tx.Where("id = ? AND cart_id IN (SELECT id FROM carts WHERE user_id = ?)", lineID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove cart line: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClearCart deletes every line in the user's cart and reports how many were
// removed. A user without a cart clears zero lines, not an error.
func (r *CartRepository) ClearCart(tx *gorm.DB, userID string) (int64, error) {
	res := tx.Where("cart_id IN (SELECT id FROM carts WHERE user_id = ?)", userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountItems returns the summed quantity across the user's cart lines.
func (r *CartRepository) CountItems(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
