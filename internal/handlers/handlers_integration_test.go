package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"grabbler/internal/handlers"
	"grabbler/internal/middleware"
	"grabbler/internal/models"
	"grabbler/internal/repositories"
	"grabbler/internal/services"
	"grabbler/pkg/retry"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp wires the full HTTP surface over an in-memory SQLite database.
// The database is named after the test so parallel tests stay isolated,
// and the handle is returned for direct fixture tweaks (role promotion).
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	assert.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	paymentRepo := repositories.NewGORMPaymentRepository(db)

	retryCfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
	inventoryService := services.NewInventoryService(productRepo)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, inventoryService, retryCfg)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo)
	authService := services.NewAuthService(userRepo, cartService, "test_jwt_secret")
	orderService := services.NewOrderService(orderRepo, cartRepo, inventoryService, paymentService, nil, retryCfg)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	adminOnly := middleware.AdminRequired()
	productHandler.RegisterRoutes(protected, adminOnly)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected, adminOnly)
	paymentHandler.RegisterRoutes(protected, adminOnly)

	return app, db
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerAndLogin creates a user through the API and returns a token.
func registerAndLogin(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	return login(t, app, username, password)
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decode(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// promoteToAdmin flips a user's role directly in the database; there is
// deliberately no API route for this.
func promoteToAdmin(t *testing.T, app *fiber.App, db *gorm.DB, username, password string) string {
	t.Helper()
	err := db.Model(&models.User{}).Where("username = ?", username).Update("role", models.RoleAdmin).Error
	assert.NoError(t, err)
	// Log in again so the new role lands in the token claims
	return login(t, app, username, password)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	token := registerAndLogin(t, app, "testuser", "test@example.com", "password123")
	assert.NotEmpty(t, token)

	// Duplicate registration is rejected
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Registration created an empty cart
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cart models.Cart
	decode(t, resp, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestProductEndpointsRequireAuth(t *testing.T) {
	app, _ := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", "", map[string]interface{}{
		"product_id": "prod-1",
		"quantity":   1,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProductMutationsRequireAdmin(t *testing.T) {
	app, db := setupApp(t)

	shopperToken := registerAndLogin(t, app, "shopper", "shopper@example.com", "password123")

	newProduct := map[string]interface{}{
		"name":  "Forbidden Product",
		"price": 100.0,
		"stock": 10,
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", shopperToken, newProduct)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	registerAndLogin(t, app, "boss", "boss@example.com", "password123")
	adminToken := promoteToAdmin(t, app, db, "boss", "password123")

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", adminToken, newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decode(t, resp, &created)
	assert.NotEmpty(t, created.ID)

	// Reads stay open to any authenticated user
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+created.ID, shopperToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutFlow(t *testing.T) {
	app, db := setupApp(t)

	shopperToken := registerAndLogin(t, app, "buyer", "buyer@example.com", "password123")
	registerAndLogin(t, app, "staff", "staff@example.com", "password123")
	adminToken := promoteToAdmin(t, app, db, "staff", "password123")

	// Admin lists a discounted product
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", adminToken, map[string]interface{}{
		"name":             "Espresso Machine",
		"description":      "Dual boiler",
		"price":            100.0,
		"discount_percent": 10,
		"stock":            5,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)
	assert.Equal(t, 90.0, product.SpecialPrice)

	// Shopper adds 2 units; the cart snapshots the special price
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", shopperToken, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var cart models.Cart
	decode(t, resp, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 90.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 180.0, cart.TotalPrice)

	// The add reserved stock immediately
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+product.ID, shopperToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var inStock models.Product
	decode(t, resp, &inStock)
	assert.Equal(t, 3, inStock.Stock)

	// Adding the same product again is a conflict
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", shopperToken, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Growing past the remaining stock is a conflict too
	resp = doJSON(t, app, http.MethodPut, "/api/v1/cart/items/"+product.ID, shopperToken, map[string]interface{}{
		"quantity": 99,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Quantity bump to 3 reserves just the delta
	resp = doJSON(t, app, http.MethodPut, "/api/v1/cart/items/"+product.ID, shopperToken, map[string]interface{}{
		"quantity": 3,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &cart)
	assert.Equal(t, 270.0, cart.TotalPrice)

	// Checkout converts the cart into a PENDING order
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders", shopperToken, map[string]interface{}{
		"payment_method": "CREDIT_CARD",
		"payment_token":  "tok_visa_test",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 270.0, order.TotalAmount)
	assert.Len(t, order.Items, 1)

	// The cart is empty and the reservation stayed with the order
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", shopperToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+product.ID, shopperToken, nil)
	decode(t, resp, &inStock)
	assert.Equal(t, 2, inStock.Stock)

	// Checking out an empty cart is rejected
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders", shopperToken, map[string]interface{}{
		"payment_method": "CREDIT_CARD",
		"payment_token":  "tok_visa_test",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Another user cannot read the order; the owner and an admin can
	strangerToken := registerAndLogin(t, app, "stranger", "stranger@example.com", "password123")
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Cancelling returns the reserved units to the pool
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", shopperToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+product.ID, shopperToken, nil)
	decode(t, resp, &inStock)
	assert.Equal(t, 5, inStock.Stock)

	// A cancelled order cannot be cancelled again
	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", shopperToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderStatusAndPaymentAdminFlows(t *testing.T) {
	app, db := setupApp(t)

	shopperToken := registerAndLogin(t, app, "buyer", "buyer@example.com", "password123")
	registerAndLogin(t, app, "staff", "staff@example.com", "password123")
	adminToken := promoteToAdmin(t, app, db, "staff", "password123")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", adminToken, map[string]interface{}{
		"name":  "Grinder",
		"price": 40.0,
		"stock": 3,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var product models.Product
	decode(t, resp, &product)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", shopperToken, map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/orders", shopperToken, map[string]interface{}{
		"payment_method": "PAYPAL",
		"payment_token":  "tok_paypal_test",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decode(t, resp, &order)
	assert.NotEmpty(t, order.PaymentID)

	// Status updates are admin territory
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", shopperToken, map[string]string{
		"status": "SHIPPED",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken, map[string]string{
		"status": "SHIPPED",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Order
	decode(t, resp, &updated)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	// Refunding a payment that never completed is rejected
	resp = doJSON(t, app, http.MethodPost, "/api/v1/payments/"+order.PaymentID+"/refund", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Complete it (the gateway callback), then refund
	resp = doJSON(t, app, http.MethodPost, "/api/v1/payments/"+order.PaymentID+"/complete", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/payments/"+order.PaymentID+"/refund", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The refund mirrors onto the order
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, shopperToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &updated)
	assert.Equal(t, models.OrderStatusRefunded, updated.Status)
}
