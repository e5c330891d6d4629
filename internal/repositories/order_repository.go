package repositories

import (
	"fmt"
	"pizzeria/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository provides data access for orders, their lines, and the
// delivery snapshot. The placement writes take the transaction handle so the
// whole workflow commits or rolls back as one unit.
type OrderRepository struct {
	DB *gorm.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// CreateOrder inserts the order row.
func (r *OrderRepository) CreateOrder(tx *gorm.DB, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := tx.Omit("Items", "Info").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CreateOrderItem inserts one frozen order line.
func (r *OrderRepository) CreateOrderItem(tx *gorm.DB, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := tx.Omit("Pizza").Create(item).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// CreateOrderInfo inserts the delivery-contact snapshot for an order.
func (r *OrderRepository) CreateOrderInfo(tx *gorm.DB, info *models.OrderInfo) error {
	if err := tx.Create(info).Error; err != nil {
		return fmt.Errorf("failed to create order info: %w", err)
	}
	return nil
}

// GetUserOrders returns the user's orders, newest first, with lines, pizzas,
// and the delivery snapshot preloaded.
func (r *OrderRepository) GetUserOrders(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.Where("user_id = ?", userID).
		Preload("Items").
		Preload("Items.Pizza").
		Preload("Info").
		Order("order_date desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetUserOrder returns one order, scoped to its owner. An order belonging to
// a different user reads as not found.
func (r *OrderRepository) GetUserOrder(userID, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.DB.Where("id = ? AND user_id = ?", orderID, userID).
		Preload("Items").
		Preload("Items.Pizza").
		Preload("Info").
		First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	return &order, nil
}

// UpdateStatus sets the status of an owner's order. Returns the number of
// rows touched; zero means no such order for this user.
func (r *OrderRepository) UpdateStatus(tx *gorm.DB, userID, orderID, status string) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND user_id = ?", orderID, userID).
		Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateStatusByID sets the status of any order, regardless of owner. Admin
// path only.
func (r *OrderRepository) UpdateStatusByID(tx *gorm.DB, orderID, status string) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateStatusGuard transitions the order only when its current status equals
// from. RowsAffected tells the caller whether the guard held, which keeps a
// concurrent double-transition from slipping through.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID, from, to string) (int64, error) {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to transition order status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountOrders returns the total number of orders in the store.
func (r *OrderRepository) CountOrders() (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
