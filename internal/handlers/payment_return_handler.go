package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
)

// CheckoutResumer re-enters payment verification after the shopper returns
// from an off-site payment step.
type CheckoutResumer interface {
	ResumeFromRedirect(ctx context.Context, orderID, paymentIntentID string) error
}

// PaymentReturnHandler serves the processor's return URL. The browser lands
// here after off-site authentication with only query parameters to go on;
// any in-memory checkout state is assumed lost.
type PaymentReturnHandler struct {
	checkout CheckoutResumer
}

// NewPaymentReturnHandler creates a new PaymentReturnHandler.
func NewPaymentReturnHandler(checkout CheckoutResumer) *PaymentReturnHandler {
	return &PaymentReturnHandler{
		checkout: checkout,
	}
}

// RegisterRoutes registers the payment return route with the Fiber app.
func (h *PaymentReturnHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/payment/return", h.HandlePaymentReturn)
}

// HandlePaymentReturn completes a redirect-based payment. The order ID comes
// from our own return URL; the payment intent and redirect status are
// appended by the processor.
func (h *PaymentReturnHandler) HandlePaymentReturn(c *fiber.Ctx) error {
	orderID := c.Query("orderId")
	paymentIntentID := c.Query("payment_intent")
	redirectStatus := c.Query("redirect_status")

	if orderID == "" || paymentIntentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "orderId and payment_intent are required",
		})
	}

	if redirectStatus == "failed" {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"success": false,
			"orderId": orderID,
			"message": "Payment was not completed. You can retry from your order.",
		})
	}

	if err := h.checkout.ResumeFromRedirect(c.Context(), orderID, paymentIntentID); err != nil {
		log.Printf("Error resuming checkout for order %s: %v", orderID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"orderId": orderID,
			"message": "Payment verification failed",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orderId": orderID,
		"message": "Payment verified, order confirmed",
	})
}
