package handlers

import (
	"errors"
	"fmt"
	"log"

	"pizzeria/internal/middleware"
	"pizzeria/internal/models"
	"pizzeria/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler handles the back-office HTTP surface: admin login, user
// listing, menu management, and order oversight.
type AdminHandler struct {
	authService    *services.AuthService
	catalogService *services.CatalogService
	orderService   *services.OrderService
	validate       *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService, catalogService *services.CatalogService, orderService *services.OrderService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		catalogService: catalogService,
		orderService:   orderService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the admin routes. Login is public; everything else
// sits behind the admin-role middleware.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Post("/login", h.HandleAdminLogin)

	protected := adminRoutes.Group("", middleware.AdminRequired(h.authService))
	protected.Get("/users", h.HandleGetAllUsers)
	protected.Get("/all-pizzas", h.HandleGetAllPizzas)
	protected.Post("/add-pizza", h.HandleAddPizza)
	protected.Put("/edit-pizza", h.HandleEditPizza)
	protected.Get("/all-ingredients", h.HandleGetAllIngredients)
	protected.Put("/mark-soldout", h.HandleMarkSoldOut)
	protected.Get("/orders/total", h.HandleGetTotalOrders)
	protected.Get("/orders/:user_id", h.HandleGetUserOrders)
	protected.Put("/order/status", h.HandleUpdateOrderStatus)
}

// HandleAdminLogin authenticates against the admin table and issues a token
// carrying the admin role claim.
func (h *AdminHandler) HandleAdminLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username and password are required.",
		})
	}

	token, err := h.authService.LoginAdmin(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during admin login for %s: %v", req.Username, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Wrong username or password.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"message": "Admin logged in successfully.",
	})
}

// HandleGetAllUsers lists every registered user.
func (h *AdminHandler) HandleGetAllUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve users",
			"error":   err.Error(),
		})
	}
	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(fiber.Map{
		"message": "Users fetched successfully.",
		"total":   len(users),
		"users":   users,
	})
}

// HandleGetAllPizzas lists the full catalog, sold-out pizzas included.
func (h *AdminHandler) HandleGetAllPizzas(c *fiber.Ctx) error {
	pizzas, err := h.catalogService.GetMenu()
	if err != nil {
		log.Printf("Error fetching pizzas: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve pizzas",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Pizzas fetched successfully.",
		"total":   len(pizzas),
		"pizzas":  pizzas,
	})
}

// PizzaRequest represents the request body for adding or editing a pizza.
type PizzaRequest struct {
	PizzaID     string          `json:"pizza_id"`
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
	ImgURL      string          `json:"img_url" validate:"required,max=500"`
	SoldOut     bool            `json:"sold_out"`
	Ingredients []string        `json:"ingredients" validate:"required,min=1,dive,required"`
}

// HandleAddPizza creates a pizza with its ingredient links in one atomic
// unit.
func (h *AdminHandler) HandleAddPizza(c *fiber.Ctx) error {
	var req PizzaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "All required fields must be provided.",
		})
	}

	pizza := models.Pizza{
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		ImgURL:    req.ImgURL,
		SoldOut:   req.SoldOut,
	}
	if err := h.catalogService.CreatePizza(&pizza, req.Ingredients); err != nil {
		log.Printf("Error adding pizza: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add pizza",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Pizza added successfully!",
		"pizza_id":    pizza.ID,
		"name":        pizza.Name,
		"unit_price":  pizza.UnitPrice,
		"ingredients": req.Ingredients,
	})
}

// HandleEditPizza updates a pizza and, when ingredients are given, replaces
// its links.
func (h *AdminHandler) HandleEditPizza(c *fiber.Ctx) error {
	var req PizzaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.PizzaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "pizza_id is required",
		})
	}

	pizza := models.Pizza{
		ID:        req.PizzaID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		ImgURL:    req.ImgURL,
		SoldOut:   req.SoldOut,
	}
	var ingredients []string
	if len(req.Ingredients) > 0 {
		ingredients = req.Ingredients
	}
	if err := h.catalogService.UpdatePizza(&pizza, ingredients); err != nil {
		log.Printf("Error editing pizza: %v", err)
		if err.Error() == fmt.Sprintf("pizza with ID %s not found for update", req.PizzaID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Pizza not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update pizza",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Pizza updated successfully!",
	})
}

// HandleGetAllIngredients lists the ingredient catalog.
func (h *AdminHandler) HandleGetAllIngredients(c *fiber.Ctx) error {
	ingredients, err := h.catalogService.GetAllIngredients()
	if err != nil {
		log.Printf("Error fetching ingredients: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve ingredients",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message":     "Ingredients fetched successfully",
		"total":       len(ingredients),
		"ingredients": ingredients,
	})
}

// MarkSoldOutRequest represents the request body for the sold-out toggle.
type MarkSoldOutRequest struct {
	PizzaID string `json:"pizza_id"`
	SoldOut *bool  `json:"sold_out"`
}

// HandleMarkSoldOut flips the sold-out flag on a pizza.
func (h *AdminHandler) HandleMarkSoldOut(c *fiber.Ctx) error {
	var req MarkSoldOutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.PizzaID == "" || req.SoldOut == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Pizza ID and sold_out are required.",
		})
	}

	if err := h.catalogService.MarkSoldOut(req.PizzaID, *req.SoldOut); err != nil {
		log.Printf("Error marking pizza sold-out: %v", err)
		if err.Error() == fmt.Sprintf("pizza with ID %s not found", req.PizzaID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Pizza not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update sold-out status",
			"error":   err.Error(),
		})
	}

	label := "AVAILABLE"
	if *req.SoldOut {
		label = "SOLD OUT"
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Pizza marked as %s successfully!", label),
	})
}

// HandleGetTotalOrders returns the total order count.
func (h *AdminHandler) HandleGetTotalOrders(c *fiber.Ctx) error {
	total, err := h.orderService.CountOrders()
	if err != nil {
		log.Printf("Error counting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not count orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"total_orders": total,
	})
}

// HandleGetUserOrders lists a given user's orders for the back office.
func (h *AdminHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetUserOrders(c.Params("user_id"))
	if err != nil {
		log.Printf("Error fetching user orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	if len(orders) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No orders found for this user.",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Orders fetched successfully.",
		"orders":  orders,
	})
}

// AdminUpdateStatusRequest represents the request body for an admin status
// change.
type AdminUpdateStatusRequest struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// HandleUpdateOrderStatus sets any order's status; no transition validation
// on the admin path.
func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req AdminUpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	err := h.orderService.AdminUpdateStatus(req.OrderID, req.Status)
	if err != nil {
		log.Printf("Error updating order status: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid status!",
			})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update order status",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Order status updated successfully!",
	})
}
