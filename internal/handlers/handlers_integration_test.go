package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pizzeria/internal/handlers"
	"pizzeria/internal/middleware"
	"pizzeria/internal/models"
	"pizzeria/internal/repositories"
	"pizzeria/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "integration-test-secret"

// newTestApp wires the full HTTP surface against an in-memory database, the
// same way the server entrypoint does.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.Pizza{},
		&models.Ingredient{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderInfo{},
	))

	userRepo := repositories.NewGORMUserRepository(db)
	adminRepo := repositories.NewGORMAdminRepository(db)
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	authService := services.NewAuthService(userRepo, adminRepo, testJWTSecret)
	catalogService := services.NewCatalogService(catalogRepo)
	cartService := services.NewCartService(db, cartRepo, catalogRepo)
	orderService := services.NewOrderService(db, orderRepo, cartRepo, userRepo, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{
		ID:       uuid.New().String(),
		Username: "admin",
		Password: string(hashed),
	}).Error)

	app := fiber.New()

	authHandler := handlers.NewAuthHandler(authService)
	menuHandler := handlers.NewMenuHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService, authService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(authService, catalogService, orderService)

	authHandler.RegisterRoutes(app)
	menuHandler.RegisterRoutes(app)
	cartHandler.RegisterPublicRoutes(app)
	adminHandler.RegisterRoutes(app)

	protected := app.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"username": username,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["token"])

	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			require.True(t, c.HttpOnly)
			return c
		}
	}
	t.Fatal("login response did not set the access_token cookie")
	return nil
}

func seedPizza(t *testing.T, db *gorm.DB, name string, price float64, soldOut bool) *models.Pizza {
	t.Helper()
	pizza := &models.Pizza{
		ID:        uuid.New().String(),
		Name:      name,
		UnitPrice: decimal.NewFromFloat(price),
		SoldOut:   soldOut,
	}
	require.NoError(t, db.Create(pizza).Error)
	return pizza
}

func TestRegisterValidationAndConflict(t *testing.T) {
	app, _ := newTestApp(t)

	// Missing email fails validation
	resp, _ := doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"username": "alice",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same username again conflicts
	resp, _ = doJSON(t, app, http.MethodPost, "/auth/register", fiber.Map{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)
	registerAndLogin(t, app, "alice")

	resp, _ := doJSON(t, app, http.MethodPost, "/auth/login", fiber.Map{
		"username": "alice",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app, _ := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/cart/"},
		{http.MethodPost, "/cart/add"},
		{http.MethodPost, "/order/"},
		{http.MethodGet, "/order/"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestCartCountToleratesAnonymous(t *testing.T) {
	app, db := newTestApp(t)

	// No token at all: zero, not 401
	resp, body := doJSON(t, app, http.MethodGet, "/cart/count", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])

	// Garbage token: still zero
	resp, body = doJSON(t, app, http.MethodGet, "/cart/count", nil,
		&http.Cookie{Name: "access_token", Value: "not-a-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])

	// Authenticated caller gets the real count
	cookie := registerAndLogin(t, app, "alice")
	pizza := seedPizza(t, db, "Margherita", 8.50, false)
	resp, _ = doJSON(t, app, http.MethodPost, "/cart/add", fiber.Map{
		"pizza_id": pizza.ID,
		"quantity": 3,
	}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/cart/count", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["count"])
}

func TestMenuIsPublic(t *testing.T) {
	app, db := newTestApp(t)
	seedPizza(t, db, "Margherita", 8.50, false)

	req := httptest.NewRequest(http.MethodGet, "/menu/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var menu []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&menu))
	require.Len(t, menu, 1)
	assert.Equal(t, "Margherita", menu[0]["name"])
}

func TestCartToOrderFlow(t *testing.T) {
	app, db := newTestApp(t)
	cookie := registerAndLogin(t, app, "alice")
	pizza := seedPizza(t, db, "Margherita", 10.00, false)

	// Ordering with an empty cart is refused
	resp, _ := doJSON(t, app, http.MethodPost, "/order/", fiber.Map{
		"address":      "1 Main St",
		"phone_number": "555-0100",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/cart/add", fiber.Map{
		"pizza_id": pizza.ID,
		"quantity": 2,
	}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/cart/", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["items"], 1)

	// Missing delivery details are refused before anything is written
	resp, _ = doJSON(t, app, http.MethodPost, "/order/", fiber.Map{
		"address": "1 Main St",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/order/", fiber.Map{
		"address":      "1 Main St",
		"phone_number": "555-0100",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := body["order_id"].(string)
	require.NotEmpty(t, orderID)
	assert.Equal(t, "20", body["total_amount"])
	assert.Equal(t, "pending", body["status"])

	// Placement consumed the cart
	resp, body = doJSON(t, app, http.MethodGet, "/cart/", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])

	// The order is readable by its owner
	resp, body = doJSON(t, app, http.MethodGet, "/order/"+orderID, nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := body["order"].(map[string]interface{})
	assert.Equal(t, orderID, order["order_id"])

	// But not by anyone else
	otherCookie := registerAndLogin(t, app, "bob")
	resp, _ = doJSON(t, app, http.MethodGet, "/order/"+orderID, nil, otherCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Pending orders cancel; a second cancel is refused
	resp, _ = doJSON(t, app, http.MethodPut, "/order/"+orderID+"/cancel", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPut, "/order/"+orderID+"/cancel", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminSurface(t *testing.T) {
	app, db := newTestApp(t)
	userCookie := registerAndLogin(t, app, "alice")

	// Admin routes refuse anonymous callers and plain users
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/admin/users", nil, userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin login issues a role-bearing token
	resp, body := doJSON(t, app, http.MethodPost, "/admin/login", fiber.Map{
		"username": "admin",
		"password": "admin-secret",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken, _ := body["token"].(string)
	require.NotEmpty(t, adminToken)
	adminCookie := &http.Cookie{Name: "access_token", Value: adminToken}

	resp, _ = doJSON(t, app, http.MethodPost, "/admin/login", fiber.Map{
		"username": "admin",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// User listing never leaks password hashes
	resp, body = doJSON(t, app, http.MethodGet, "/admin/users", nil, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := body["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Empty(t, users[0].(map[string]interface{})["Password"])

	// Catalog management: add, then flip sold-out
	resp, body = doJSON(t, app, http.MethodPost, "/admin/add-pizza", fiber.Map{
		"name":        "Diavola",
		"unit_price":  "11.00",
		"img_url":     "https://img.example.com/diavola.jpg",
		"ingredients": []string{"tomato sauce", "mozzarella", "spicy salami"},
	}, adminCookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pizzaID, _ := body["pizza_id"].(string)
	require.NotEmpty(t, pizzaID)

	resp, _ = doJSON(t, app, http.MethodPut, "/admin/mark-soldout", fiber.Map{
		"pizza_id": pizzaID,
		"sold_out": true,
	}, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pizza models.Pizza
	require.NoError(t, db.First(&pizza, "id = ?", pizzaID).Error)
	assert.True(t, pizza.SoldOut)

	// Shared ingredients end up in the catalog listing
	resp, body = doJSON(t, app, http.MethodGet, "/admin/all-ingredients", nil, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["total"])

	// Order oversight
	resp, body = doJSON(t, app, http.MethodGet, "/admin/orders/total", nil, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["total_orders"])
}
