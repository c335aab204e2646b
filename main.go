package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"

	"shopfront/internal/api"
	"shopfront/internal/handlers"
	"shopfront/internal/payment"
	"shopfront/internal/repositories"
	"shopfront/internal/services"
	"shopfront/pkg/rabbitmq"
)

// App bundles the wired storefront runtime: the REST client, the two durable
// stores, the cart engine, the checkout orchestrator and the local HTTP
// surface that receives the payment processor's redirect return.
type App struct {
	Fiber     *fiber.App
	Client    *api.Client
	Auth      *services.AuthStore
	Cart      *services.CartEngine
	Sessions  *services.SessionManager
	Checkout  *services.CheckoutOrchestrator
	Addresses *services.AddressService
	MQ        *rabbitmq.Client
}

// NewApp wires the runtime from the given configuration.
func NewApp(v *viper.Viper) (*App, error) {
	// --- Durable client state ---
	db, err := repositories.OpenStateDB(v.GetString("STATE_DB_DRIVER"), v.GetString("STATE_DB_DSN"))
	if err != nil {
		return nil, err
	}
	sessionRepo := repositories.NewGORMSessionRepository(db)
	cartRepo := repositories.NewGORMCartStateRepository(db)

	notifier := services.LogNotifier{}

	// --- Stores ---
	authStore, err := services.NewAuthStore(sessionRepo)
	if err != nil {
		return nil, err
	}

	// --- Backend client ---
	// The token source reads the auth store on every request, so a rotated
	// token is picked up without rebuilding the client.
	client := api.NewClient(v.GetString("API_BASE_URL"), api.WithTokenSource(authStore.Token))

	cartEngine, err := services.NewCartEngine(client, cartRepo, notifier)
	if err != nil {
		return nil, err
	}

	sessions := services.NewSessionManager(client, authStore, cartEngine, notifier)
	client.SetUnauthorizedHook(sessions.HandleUnauthorized)

	// --- Optional checkout event publishing ---
	var mqClient *rabbitmq.Client
	var events services.EventPublisher
	if url := v.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, checkout events disabled: %v", err)
		} else {
			events = mqClient
		}
	}

	// --- Checkout ---
	confirmer := payment.NewHTTPConfirmer(v.GetString("PAYMENT_API_URL"), v.GetString("PAYMENT_PUBLISHABLE_KEY"))
	checkout := services.NewCheckoutOrchestrator(client, confirmer, cartEngine, authStore, events, notifier, v.GetString("RETURN_URL_BASE"))

	addresses := services.NewAddressService(client, notifier)

	// --- Local HTTP surface ---
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.New())

	handlers.NewPaymentReturnHandler(checkout).RegisterRoutes(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return &App{
		Fiber:     app,
		Client:    client,
		Auth:      authStore,
		Cart:      cartEngine,
		Sessions:  sessions,
		Checkout:  checkout,
		Addresses: addresses,
		MQ:        mqClient,
	}, nil
}

func main() {
	// --- Configuration ---
	v := viper.New()
	v.SetDefault("API_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("STATE_DB_DRIVER", "sqlite")
	v.SetDefault("STATE_DB_DSN", "shopfront.db")
	v.SetDefault("LISTEN_ADDR", ":8373")
	v.SetDefault("RETURN_URL_BASE", "http://localhost:8373")
	v.SetDefault("PAYMENT_API_URL", "https://api.stripe.com")
	v.SetDefault("PAYMENT_PUBLISHABLE_KEY", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.AutomaticEnv()

	app, err := NewApp(v)
	if err != nil {
		log.Fatalf("Failed to initialize shopfront: %v", err)
	}
	if app.MQ != nil {
		defer app.MQ.Close()
	}

	// Re-sync the cart for any session restored from durable storage.
	app.Sessions.RestoreSession(context.Background())

	listenAddr := v.GetString("LISTEN_ADDR")
	log.Printf("Starting shopfront on %s", listenAddr)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(listenAddr); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Shopfront stopped")
}
