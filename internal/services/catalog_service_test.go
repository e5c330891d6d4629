package services_test

import (
	"fmt"
	"testing"

	"pizzeria/internal/models"
	"pizzeria/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCatalogRepository is a mock implementation of repositories.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetAllPizzas() ([]models.Pizza, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Pizza), args.Error(1)
}

func (m *MockCatalogRepository) GetPizzaByID(id string) (*models.Pizza, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pizza), args.Error(1)
}

func (m *MockCatalogRepository) CreatePizza(pizza *models.Pizza, ingredientNames []string) error {
	args := m.Called(pizza, ingredientNames)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdatePizza(pizza *models.Pizza, ingredientNames []string) error {
	args := m.Called(pizza, ingredientNames)
	return args.Error(0)
}

func (m *MockCatalogRepository) SetSoldOut(pizzaID string, soldOut bool) error {
	args := m.Called(pizzaID, soldOut)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetAllIngredients() ([]models.Ingredient, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

func TestCatalogService_GetMenu(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	catalogService := services.NewCatalogService(mockRepo)

	pizzas := []models.Pizza{
		{
			ID:        "pizza-1",
			Name:      "Margherita",
			UnitPrice: decimal.NewFromFloat(8.50),
			ImgURL:    "https://img.example.com/margherita.jpg",
			SoldOut:   false,
			Ingredients: []models.Ingredient{
				{ID: "ing-1", Name: "tomato sauce"},
				{ID: "ing-2", Name: "mozzarella"},
			},
		},
		{
			ID:          "pizza-2",
			Name:        "Napoli",
			UnitPrice:   decimal.NewFromFloat(10.00),
			SoldOut:     true,
			Ingredients: nil,
		},
	}

	mockRepo.On("GetAllPizzas").Return(pizzas, nil).Once()

	menu, err := catalogService.GetMenu()
	assert.NoError(t, err)
	assert.Len(t, menu, 2)

	// Ingredient rows are flattened to a plain name list
	assert.Equal(t, "pizza-1", menu[0].PizzaID)
	assert.Equal(t, []string{"tomato sauce", "mozzarella"}, menu[0].Ingredients)
	assert.False(t, menu[0].SoldOut)
	assert.True(t, menu[0].UnitPrice.Equal(decimal.NewFromFloat(8.50)))

	// Sold-out pizzas stay in the menu, flagged
	assert.True(t, menu[1].SoldOut)
	assert.Empty(t, menu[1].Ingredients)
	mockRepo.AssertExpectations(t)

	// Repository failure propagates
	mockRepo.On("GetAllPizzas").Return(nil, fmt.Errorf("database connection lost")).Once()
	_, err = catalogService.GetMenu()
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_CreatePizza(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	catalogService := services.NewCatalogService(mockRepo)

	pizza := &models.Pizza{
		Name:      "Diavola",
		UnitPrice: decimal.NewFromFloat(11.00),
	}
	ingredients := []string{"tomato sauce", "mozzarella", "spicy salami"}

	mockRepo.On("CreatePizza", pizza, ingredients).Return(nil).Once()
	err := catalogService.CreatePizza(pizza, ingredients)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_MarkSoldOut(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	catalogService := services.NewCatalogService(mockRepo)

	mockRepo.On("SetSoldOut", "pizza-1", true).Return(nil).Once()
	err := catalogService.MarkSoldOut("pizza-1", true)
	assert.NoError(t, err)

	mockRepo.On("SetSoldOut", "pizza-1", false).Return(nil).Once()
	err = catalogService.MarkSoldOut("pizza-1", false)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_GetAllIngredients(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	catalogService := services.NewCatalogService(mockRepo)

	ingredients := []models.Ingredient{
		{ID: "ing-1", Name: "mozzarella"},
		{ID: "ing-2", Name: "basil"},
	}

	mockRepo.On("GetAllIngredients").Return(ingredients, nil).Once()
	got, err := catalogService.GetAllIngredients()
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	mockRepo.AssertExpectations(t)
}
