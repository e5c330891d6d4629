package handlers

import (
	"log"

	"pizzeria/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MenuHandler handles HTTP requests for the public menu.
type MenuHandler struct {
	service *services.CatalogService
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(service *services.CatalogService) *MenuHandler {
	return &MenuHandler{
		service: service,
	}
}

// RegisterRoutes registers the menu routes with the Fiber app.
func (h *MenuHandler) RegisterRoutes(router fiber.Router) {
	menuRoutes := router.Group("/menu")
	menuRoutes.Get("/", h.HandleGetMenu)
}

// HandleGetMenu returns every pizza with its ingredient names.
func (h *MenuHandler) HandleGetMenu(c *fiber.Ctx) error {
	pizzas, err := h.service.GetMenu()
	if err != nil {
		log.Printf("Error getting menu: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve menu",
			"error":   err.Error(),
		})
	}
	if len(pizzas) == 0 {
		return c.JSON(fiber.Map{
			"message": "No menu items found",
			"data":    []services.PizzaView{},
		})
	}
	return c.JSON(pizzas)
}
