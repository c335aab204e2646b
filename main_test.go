package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/models"
)

func testConfig(t *testing.T) *viper.Viper {
	v := viper.New()
	v.Set("API_BASE_URL", "http://localhost:5000/api")
	v.Set("STATE_DB_DRIVER", "sqlite")
	v.Set("STATE_DB_DSN", fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano()))
	v.Set("RETURN_URL_BASE", "http://localhost:8373")
	v.Set("PAYMENT_API_URL", "https://api.stripe.com")
	v.Set("PAYMENT_PUBLISHABLE_KEY", "pk_test_123")
	v.Set("RABBITMQ_URL", "")
	return v
}

// startStubBackend serves a storefront backend stand-in on a loopback
// listener and returns its base URL.
func startStubBackend(t *testing.T, register func(app *fiber.App)) string {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	register(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return "http://" + ln.Addr().String() + "/api"
}

func TestNewApp_WiresRuntime(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, app.Fiber)
	assert.NotNil(t, app.Client)
	assert.NotNil(t, app.Sessions)
	assert.NotNil(t, app.Checkout)
	assert.NotNil(t, app.Addresses)
	assert.Nil(t, app.MQ, "no broker configured")

	// A fresh install starts as an uninitialized guest.
	assert.False(t, app.Auth.IsAuthenticated())
	assert.Empty(t, app.Cart.Items())
	assert.False(t, app.Cart.Initialized())
}

func TestExpiredSessionResetsStoresDuringCartSync(t *testing.T) {
	// The backend rejects the restored session on the first cart fetch.
	baseURL := startStubBackend(t, func(app *fiber.App) {
		app.Get("/api/cart", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "Token expired",
			})
		})
	})

	v := testConfig(t)
	v.Set("API_BASE_URL", baseURL)
	app, err := NewApp(v)
	require.NoError(t, err)

	app.Auth.Login(models.User{ID: "user-1", Email: "asha@example.com"}, "stale-token", "")
	require.True(t, app.Auth.IsAuthenticated())

	// The sync holds the cart engine's lock across the 401 response; it must
	// still return instead of contending with the session teardown.
	done := make(chan error, 1)
	go func() {
		done <- app.Cart.SyncCart(context.Background(), "user-1")
	}()
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("SyncCart never returned after a 401 response")
	}

	// The implicit-logout teardown runs after the in-flight operation; both
	// stores end up reset.
	assert.Eventually(t, func() bool {
		return !app.Auth.IsAuthenticated() && app.Cart.UserID() == "" && len(app.Cart.Items()) == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestHealthEndpoint(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestPaymentReturnRouteRegistered(t *testing.T) {
	app, err := NewApp(testConfig(t))
	require.NoError(t, err)

	// Missing processor parameters are rejected before any verification.
	req := httptest.NewRequest(http.MethodGet, "/payment/return", nil)
	resp, err := app.Fiber.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
