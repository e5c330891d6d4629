package handlers

import (
	"errors"
	"fmt"
	"log"

	"pizzeria/internal/middleware"
	"pizzeria/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the user's cart.
type CartHandler struct {
	service     *services.CartService
	authService *services.AuthService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, authService *services.AuthService) *CartHandler {
	return &CartHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the authenticated cart routes with the Fiber app.
// The count route is registered separately via RegisterPublicRoutes because
// it serves anonymous visitors a zero count instead of a 401.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Post("/add", h.HandleAddToCart)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Put("/item/:id", h.HandleUpdateCartItem)
	cartRoutes.Delete("/item/:id", h.HandleRemoveFromCart)
	cartRoutes.Delete("/clear", h.HandleClearCart)
}

// RegisterPublicRoutes registers the cart routes that tolerate anonymous
// callers.
func (h *CartHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/cart/count", h.HandleGetCartCount)
}

// AddToCartRequest represents the request body for adding a pizza.
type AddToCartRequest struct {
	PizzaID  string `json:"pizza_id"`
	Quantity int    `json:"quantity"`
}

// HandleAddToCart puts a pizza in the cart, merging quantities when the pizza
// is already there.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if req.PizzaID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Pizza ID is required!",
		})
	}

	if err := h.service.Add(middleware.UserID(c), req.PizzaID, req.Quantity); err != nil {
		log.Printf("Error adding to cart: %v", err)
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Pizza not found!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item added to cart!",
	})
}

// HandleGetCart returns the cart with enriched lines and a computed summary.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.Get(middleware.UserID(c))
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// UpdateCartItemRequest represents the request body for a quantity change.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateCartItem sets a cart line's quantity.
func (h *CartHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	var req UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update-cart-item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	err := h.service.UpdateQuantity(middleware.UserID(c), c.Params("id"), req.Quantity)
	if err != nil {
		log.Printf("Error updating cart item: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid quantity!",
			})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Cart item not found!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update cart item",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Cart item updated!",
	})
}

// HandleRemoveFromCart deletes a cart line.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	err := h.service.Remove(middleware.UserID(c), c.Params("id"))
	if err != nil {
		log.Printf("Error removing cart item: %v", err)
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Cart item not found!",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove cart item",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart!",
	})
}

// HandleClearCart removes every line from the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	removed, err := h.service.Clear(middleware.UserID(c))
	if err != nil {
		log.Printf("Error clearing cart: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Cart cleared! %d items removed.", removed),
	})
}

// HandleGetCartCount returns the summed cart quantity for the navbar badge.
// Anonymous callers get a zero count, not an auth error.
func (h *CartHandler) HandleGetCartCount(c *fiber.Ctx) error {
	tokenString := middleware.TokenFromRequest(c)
	if tokenString == "" {
		return c.JSON(fiber.Map{"count": 0})
	}
	claims, err := h.authService.ValidateToken(tokenString)
	if err != nil {
		return c.JSON(fiber.Map{"count": 0})
	}
	userID, _ := claims["user_id"].(string)

	count, err := h.service.Count(userID)
	if err != nil {
		log.Printf("Error counting cart items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not count cart items",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"count": count})
}
