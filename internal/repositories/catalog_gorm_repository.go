package repositories

import (
	"fmt"
	"pizzeria/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCatalogRepository is a GORM implementation of CatalogRepository.
type GORMCatalogRepository struct {
	db *gorm.DB
}

// NewGORMCatalogRepository creates a new instance of GORMCatalogRepository.
func NewGORMCatalogRepository(db *gorm.DB) *GORMCatalogRepository {
	return &GORMCatalogRepository{
		db: db,
	}
}

// GetAllPizzas retrieves all pizzas with their ingredients preloaded.
func (r *GORMCatalogRepository) GetAllPizzas() ([]models.Pizza, error) {
	var pizzas []models.Pizza
	if err := r.db.Preload("Ingredients").Order("created_at asc").Find(&pizzas).Error; err != nil {
		return nil, fmt.Errorf("failed to get all pizzas: %w", err)
	}
	return pizzas, nil
}

// GetPizzaByID retrieves a single pizza by its ID.
func (r *GORMCatalogRepository) GetPizzaByID(id string) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.Preload("Ingredients").First(&pizza, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("pizza with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get pizza by ID %s: %w", id, err)
	}
	return &pizza, nil
}

// CreatePizza inserts the pizza row, upserts each ingredient by name, and
// links them, all inside one transaction.
func (r *GORMCatalogRepository) CreatePizza(pizza *models.Pizza, ingredientNames []string) error {
	if pizza.ID == "" {
		pizza.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(pizza).Error; err != nil {
			return err
		}
		ingredients, err := upsertIngredients(tx, ingredientNames)
		if err != nil {
			return err
		}
		return tx.Model(pizza).Association("Ingredients").Append(&ingredients)
	})
	if err != nil {
		return fmt.Errorf("failed to create pizza: %w", err)
	}
	return nil
}

// UpdatePizza updates the pizza fields and replaces its ingredient links when
// ingredientNames is non-nil.
func (r *GORMCatalogRepository) UpdatePizza(pizza *models.Pizza, ingredientNames []string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Pizza{}).
			Where("id = ?", pizza.ID).
			Select("name", "unit_price", "img_url", "sold_out").
			Updates(pizza)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if ingredientNames == nil {
			return nil
		}
		ingredients, err := upsertIngredients(tx, ingredientNames)
		if err != nil {
			return err
		}
		return tx.Model(pizza).Association("Ingredients").Replace(&ingredients)
	})
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("pizza with ID %s not found for update", pizza.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update pizza: %w", err)
	}
	return nil
}

// SetSoldOut flips the sold-out flag on a pizza.
func (r *GORMCatalogRepository) SetSoldOut(pizzaID string, soldOut bool) error {
	res := r.db.Model(&models.Pizza{}).Where("id = ?", pizzaID).Update("sold_out", soldOut)
	if res.Error != nil {
		return fmt.Errorf("failed to update sold-out status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pizza with ID %s not found", pizzaID)
	}
	return nil
}

// GetAllIngredients retrieves all ingredients ordered by name.
func (r *GORMCatalogRepository) GetAllIngredients() ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := r.db.Order("name asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to get all ingredients: %w", err)
	}
	return ingredients, nil
}

// upsertIngredients resolves names to ingredient rows, inserting any that do
// not exist yet. The conflict-tolerant insert on the unique name index keeps
// concurrent duplicate creation safe.
func upsertIngredients(tx *gorm.DB, names []string) ([]models.Ingredient, error) {
	ingredients := make([]models.Ingredient, 0, len(names))
	for _, name := range names {
		ing := models.Ingredient{ID: uuid.New().String(), Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&ing).Error; err != nil {
			return nil, err
		}
		// Re-read to pick up the existing row's ID when the insert was skipped.
		if err := tx.First(&ing, "name = ?", name).Error; err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}
