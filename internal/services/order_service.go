package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pizzeria/internal/models"
	"pizzeria/internal/repositories"
	"pizzeria/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService handles the order placement workflow and everything that
// happens to an order afterwards: listing, status updates, and cancellation.
type OrderService struct {
	db        *gorm.DB
	orderRepo *repositories.OrderRepository
	cartRepo  *repositories.CartRepository
	userRepo  repositories.UserRepository
	mqClient  *rabbitmq.Client // RabbitMQ client, may be nil
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *gorm.DB, orderRepo *repositories.OrderRepository, cartRepo *repositories.CartRepository, userRepo repositories.UserRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		mqClient:  mqClient,
	}
}

// OrderItemView is a frozen order line enriched with current pizza details
// for display.
type OrderItemView struct {
	PizzaID   string          `json:"pizza_id"`
	PizzaName string          `json:"pizza_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImgURL    string          `json:"img_url"`
	Quantity  int             `json:"quantity"`
}

// DroppedItem records a cart line that was discarded at placement time
// because its pizza was sold out.
type DroppedItem struct {
	PizzaID   string `json:"pizza_id"`
	PizzaName string `json:"pizza_name"`
	Quantity  int    `json:"quantity"`
}

// OrderReceipt is the result of a successful placement.
type OrderReceipt struct {
	OrderID      string           `json:"order_id"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	Status       string           `json:"status"`
	Info         models.OrderInfo `json:"order_info"`
	Items        []OrderItemView  `json:"items"`
	DroppedItems []DroppedItem    `json:"dropped_items"`
}

// OrderView is an order as served to the client.
type OrderView struct {
	OrderID     string            `json:"order_id"`
	OrderDate   time.Time         `json:"order_date"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Status      string            `json:"status"`
	Info        *models.OrderInfo `json:"order_info,omitempty"`
	Items       []OrderItemView   `json:"items"`
}

// PlaceOrder converts the user's cart into a durable order. The whole
// workflow runs in one transaction: either the order, its lines, and the
// delivery snapshot all exist and the cart is empty, or nothing changed.
//
// Sold-out pizzas are excluded from the order and its total, but the cart is
// cleared whole: the dropped lines are reported back, not preserved.
func (s *OrderService) PlaceOrder(userID, address, phoneNumber string) (*OrderReceipt, error) {
	address = strings.TrimSpace(address)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if address == "" || phoneNumber == "" {
		return nil, fmt.Errorf("%w: address and phone number are required", ErrValidation)
	}

	var receipt *OrderReceipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the cart row first. Two concurrent placements for the same
		// user serialize here, so the second sees the emptied cart instead
		// of creating a duplicate order.
		cart, err := s.cartRepo.LockCart(tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		// Delivery snapshot comes from the user profile as it is right now.
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", ErrNotFound, userID)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		lines, err := s.cartRepo.GetLines(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		var available []models.CartItem
		var dropped []DroppedItem
		for _, line := range lines {
			if line.Pizza.SoldOut {
				dropped = append(dropped, DroppedItem{
					PizzaID:   line.PizzaID,
					PizzaName: line.Pizza.Name,
					Quantity:  line.Quantity,
				})
				continue
			}
			available = append(available, line)
		}
		if len(available) == 0 {
			return ErrAllItemsUnavailable
		}

		total := decimal.Zero
		for _, line := range available {
			total = total.Add(line.Pizza.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		total = total.Round(2)

		order := models.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      models.StatusPending,
			OrderDate:   time.Now(),
		}
		if err := s.orderRepo.CreateOrder(tx, &order); err != nil {
			return err
		}

		items := make([]OrderItemView, 0, len(available))
		for _, line := range available {
			item := models.OrderItem{
				OrderID:  order.ID,
				PizzaID:  line.PizzaID,
				Quantity: line.Quantity,
			}
			if err := s.orderRepo.CreateOrderItem(tx, &item); err != nil {
				return err
			}
			items = append(items, OrderItemView{
				PizzaID:   line.PizzaID,
				PizzaName: line.Pizza.Name,
				UnitPrice: line.Pizza.UnitPrice,
				ImgURL:    line.Pizza.ImgURL,
				Quantity:  line.Quantity,
			})
		}

		info := models.OrderInfo{
			OrderID:     order.ID,
			Name:        user.Username,
			Email:       user.Email,
			Address:     address,
			PhoneNumber: phoneNumber,
		}
		if err := s.orderRepo.CreateOrderInfo(tx, &info); err != nil {
			return err
		}

		// The whole cart is cleared, sold-out lines included.
		if _, err := s.cartRepo.ClearCart(tx, userID); err != nil {
			return err
		}

		receipt = &OrderReceipt{
			OrderID:      order.ID,
			TotalAmount:  total,
			Status:       order.Status,
			Info:         info,
			Items:        items,
			DroppedItems: dropped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.created", map[string]interface{}{
		"order_id": receipt.OrderID,
		"user_id":  userID,
		"status":   receipt.Status,
		"total":    receipt.TotalAmount,
	})
	return receipt, nil
}

// GetUserOrders retrieves the user's orders, newest first.
func (s *OrderService) GetUserOrders(userID string) ([]OrderView, error) {
	orders, err := s.orderRepo.GetUserOrders(userID)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderToView(&orders[i]))
	}
	return views, nil
}

// GetOrder retrieves one order, scoped to its owner.
func (s *OrderService) GetOrder(userID, orderID string) (*OrderView, error) {
	order, err := s.orderRepo.GetUserOrder(userID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	view := orderToView(order)
	return &view, nil
}

// UpdateStatus sets an order's status on behalf of its owner. Any of the six
// statuses is accepted from any current state; there is no transition table
// on this path.
func (s *OrderService) UpdateStatus(userID, orderID, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.UpdateStatus(tx, userID, orderID, status)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishOrderEvent("order.status_updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

// Cancel cancels the user's order, allowed only while it is still pending.
// The guarded update closes the race with a concurrent status change.
func (s *OrderService) Cancel(userID, orderID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.orderRepo.GetUserOrder(userID, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
			}
			return err
		}
		affected, err := s.orderRepo.UpdateStatusGuard(tx, orderID, models.StatusPending, models.StatusCancelled)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotCancellable
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishOrderEvent("order.cancelled", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// CountOrders returns the total number of orders. Used by the admin overview.
func (s *OrderService) CountOrders() (int64, error) {
	return s.orderRepo.CountOrders()
}

// AdminUpdateStatus sets any order's status without ownership scoping.
func (s *OrderService) AdminUpdateStatus(orderID, status string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.UpdateStatusByID(tx, orderID, status)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishOrderEvent("order.status_updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

func orderToView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			PizzaID:   item.PizzaID,
			PizzaName: item.Pizza.Name,
			UnitPrice: item.Pizza.UnitPrice,
			ImgURL:    item.Pizza.ImgURL,
			Quantity:  item.Quantity,
		})
	}
	info := order.Info
	return OrderView{
		OrderID:     order.ID,
		OrderDate:   order.OrderDate,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		Info:        &info,
		Items:       items,
	}
}

// publishOrderEvent publishes a best-effort order event. A broker failure is
// logged, never surfaced: the order is already committed.
func (s *OrderService) publishOrderEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.mqClient.Publish("order", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
