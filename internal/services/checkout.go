package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"

	"shopfront/internal/api"
	"shopfront/internal/models"
	"shopfront/internal/payment"
)

// CheckoutState is the orchestrator's position in the checkout sequence.
type CheckoutState string

const (
	StateIdle                  CheckoutState = "IDLE"
	StateAddressSelection      CheckoutState = "ADDRESS_SELECTION"
	StateOrderCreation         CheckoutState = "ORDER_CREATION"
	StatePaymentIntentCreation CheckoutState = "PAYMENT_INTENT_CREATION"
	StatePaymentCollection     CheckoutState = "PAYMENT_COLLECTION"
	StatePaymentVerification   CheckoutState = "PAYMENT_VERIFICATION"
	StateSuccess               CheckoutState = "SUCCESS"
	StateFailure               CheckoutState = "FAILURE"
)

// Guard failures: these redirect the shopper to a prior step, they are not
// retryable checkout errors.
var (
	ErrNotAuthenticated = errors.New("checkout requires an authenticated session")
	ErrCartEmpty        = errors.New("checkout requires a non-empty cart")
	ErrNoAddress        = errors.New("a shipping address must be selected first")
	ErrNoOrder          = errors.New("no order has been created yet")
)

// CheckoutBackend is the slice of the REST client the orchestrator needs.
type CheckoutBackend interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error)
	CreatePaymentIntent(ctx context.Context, orderID string) (string, error)
	VerifyPayment(ctx context.Context, paymentIntentID, orderID string) error
}

// checkoutCart is the slice of the cart engine the orchestrator needs.
type checkoutCart interface {
	Items() []models.CartLineItem
	Summary() models.CartSummary
	ClearCart(ctx context.Context) error
}

// sessionState answers the authentication guard.
type sessionState interface {
	IsAuthenticated() bool
	UserID() string
}

// EventPublisher emits order lifecycle events for downstream fulfilment
// tooling. A nil publisher is skipped.
type EventPublisher interface {
	PublishCheckoutCompleted(orderID, userID string, total float64) error
}

// CheckoutResult is the outcome of a payment collection attempt.
type CheckoutResult struct {
	OrderID string
	// RedirectURL is non-empty when the processor sent the shopper off-site;
	// checkout completes later through ResumeFromRedirect.
	RedirectURL string
	Completed   bool
}

// CheckoutOrchestrator drives the linear, mostly irreversible sequence that
// turns a cart into a paid order: create order, obtain a payment intent,
// collect payment, verify with the backend, then finalise.
//
// Once an order ID is held, order creation is never re-issued: retries
// re-enter at payment intent creation against the same order.
type CheckoutOrchestrator struct {
	backend   CheckoutBackend
	confirmer payment.Confirmer
	cart      checkoutCart
	session   sessionState
	events    EventPublisher
	notifier  Notifier

	// returnURLBase is where the processor sends the shopper back after an
	// off-site step; the order ID rides along as a query parameter so the
	// flow can resume from a cold start.
	returnURLBase string

	state          CheckoutState
	address        *models.Address
	orderID        string
	idempotencyKey string
	clientSecret   string
	failureMessage string
}

// NewCheckoutOrchestrator creates an orchestrator in the idle state.
func NewCheckoutOrchestrator(backend CheckoutBackend, confirmer payment.Confirmer, cart checkoutCart, session sessionState, events EventPublisher, notifier Notifier, returnURLBase string) *CheckoutOrchestrator {
	return &CheckoutOrchestrator{
		backend:       backend,
		confirmer:     confirmer,
		cart:          cart,
		session:       session,
		events:        events,
		notifier:      notifier,
		returnURLBase: returnURLBase,
		state:         StateIdle,
	}
}

// Begin checks the preconditions and enters address selection. A guard
// failure means the caller should send the shopper to login or back to the
// cart, not retry.
func (o *CheckoutOrchestrator) Begin() error {
	if !o.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if len(o.cart.Items()) == 0 {
		return ErrCartEmpty
	}
	o.state = StateAddressSelection
	o.address = nil
	o.orderID = ""
	o.idempotencyKey = uuid.New().String()
	o.clientSecret = ""
	o.failureMessage = ""
	return nil
}

// SelectAddress records the shipping address and advances to order creation.
func (o *CheckoutOrchestrator) SelectAddress(address models.Address) error {
	if o.state != StateAddressSelection {
		return fmt.Errorf("cannot select address in state %s", o.state)
	}
	addr := address
	o.address = &addr
	o.state = StateOrderCreation
	return nil
}

// PlaceOrder submits the order. It is deliberately not retried on failure —
// a blind resubmission could create a duplicate order — and once an order ID
// is held, calling PlaceOrder again returns it without touching the backend.
func (o *CheckoutOrchestrator) PlaceOrder(ctx context.Context, paymentMethod string) (string, error) {
	if o.orderID != "" {
		return o.orderID, nil
	}
	if o.state != StateOrderCreation {
		return "", fmt.Errorf("cannot place order in state %s", o.state)
	}
	if o.address == nil {
		return "", ErrNoAddress
	}

	items := o.cart.Items()
	if len(items) == 0 {
		return "", ErrCartEmpty
	}
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}

	order, err := o.backend.CreateOrder(ctx, models.CreateOrderRequest{
		Items:           orderItems,
		ShippingAddress: *o.address,
		PaymentMethod:   paymentMethod,
	}, o.idempotencyKey)
	if err != nil {
		// State stays at ORDER_CREATION: the shopper must explicitly
		// re-trigger the submission.
		o.notifier.Error(api.Message(err, "Failed to place order"))
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	o.orderID = order.ID
	o.state = StatePaymentIntentCreation
	return o.orderID, nil
}

// CollectPayment obtains the payment handle (when not already held) and
// drives the processor's confirmation. On a synchronous success it verifies
// with the backend and finalises; on a redirect it hands back the URL and
// waits for ResumeFromRedirect.
func (o *CheckoutOrchestrator) CollectPayment(ctx context.Context) (*CheckoutResult, error) {
	if o.orderID == "" {
		return nil, ErrNoOrder
	}
	if o.state != StatePaymentIntentCreation && o.state != StatePaymentCollection {
		return nil, fmt.Errorf("cannot collect payment in state %s", o.state)
	}

	if o.clientSecret == "" {
		secret, err := o.backend.CreatePaymentIntent(ctx, o.orderID)
		if err != nil {
			o.fail(api.Message(err, "Failed to start payment"))
			return nil, fmt.Errorf("failed to create payment intent: %w", err)
		}
		o.clientSecret = secret
	}
	o.state = StatePaymentCollection

	result, err := o.confirmer.Confirm(ctx, o.clientSecret, o.returnURL())
	if err != nil {
		var procErr *payment.Error
		if errors.As(err, &procErr) {
			o.fail(procErr.Message)
		} else {
			o.fail("Payment failed. Please try again.")
		}
		return nil, fmt.Errorf("payment confirmation failed: %w", err)
	}

	if result.RedirectURL != "" {
		// The shopper authenticates off-site and comes back through the
		// return URL; in-memory state may be gone by then.
		return &CheckoutResult{OrderID: o.orderID, RedirectURL: result.RedirectURL}, nil
	}

	if result.Status != payment.StatusSucceeded && result.Status != payment.StatusProcessing {
		o.fail(fmt.Sprintf("Payment did not complete (status %s)", result.Status))
		return nil, fmt.Errorf("unexpected payment status %q", result.Status)
	}

	if err := o.verifyAndFinalize(ctx, result.PaymentIntentID, o.orderID); err != nil {
		return nil, err
	}
	return &CheckoutResult{OrderID: o.orderID, Completed: true}, nil
}

// ResumeFromRedirect re-enters payment verification from a cold start, using
// only what the return URL carried. It works on a fresh orchestrator whose
// in-memory state was lost with the redirect.
func (o *CheckoutOrchestrator) ResumeFromRedirect(ctx context.Context, orderID, paymentIntentID string) error {
	if orderID == "" || paymentIntentID == "" {
		return fmt.Errorf("order ID and payment intent ID are required to resume checkout")
	}
	o.orderID = orderID
	return o.verifyAndFinalize(ctx, paymentIntentID, orderID)
}

// Retry re-enters the flow at payment intent creation, reusing the held
// order. Only valid from the failure state.
func (o *CheckoutOrchestrator) Retry(ctx context.Context) (*CheckoutResult, error) {
	if o.state != StateFailure {
		return nil, fmt.Errorf("cannot retry in state %s", o.state)
	}
	if o.orderID == "" {
		return nil, ErrNoOrder
	}
	o.clientSecret = ""
	o.failureMessage = ""
	o.state = StatePaymentIntentCreation
	return o.CollectPayment(ctx)
}

// Abandon leaves checkout, keeping the cart intact. Any created order stays
// pending for the backend to reconcile or expire.
func (o *CheckoutOrchestrator) Abandon() {
	o.state = StateIdle
	o.address = nil
	o.orderID = ""
	o.clientSecret = ""
	o.failureMessage = ""
}

// State returns the orchestrator's current position.
func (o *CheckoutOrchestrator) State() CheckoutState {
	return o.state
}

// OrderID returns the held order ID, empty before order creation succeeds.
func (o *CheckoutOrchestrator) OrderID() string {
	return o.orderID
}

// FailureMessage returns the shopper-facing text for the last failure.
func (o *CheckoutOrchestrator) FailureMessage() string {
	return o.failureMessage
}

// verifyAndFinalize asks the backend to confirm the payment outcome, and
// only then clears the cart and declares success. The processor's own
// "succeeded" signal is never treated as proof of payment.
func (o *CheckoutOrchestrator) verifyAndFinalize(ctx context.Context, paymentIntentID, orderID string) error {
	o.state = StatePaymentVerification

	if err := o.backend.VerifyPayment(ctx, paymentIntentID, orderID); err != nil {
		o.fail("Payment verification failed")
		return fmt.Errorf("failed to verify payment for order %s: %w", orderID, err)
	}

	// Snapshot totals before the cart is emptied.
	total := o.cart.Summary().Total

	if err := o.cart.ClearCart(ctx); err != nil {
		// The order is already paid; a failed cart clear must not fail the
		// checkout. The next sync reconciles.
		log.Printf("Failed to clear cart after checkout: %v", err)
	}

	if o.events != nil {
		if err := o.events.PublishCheckoutCompleted(orderID, o.session.UserID(), total); err != nil {
			log.Printf("Warning: failed to publish checkout completed event for order %s: %v", orderID, err)
		}
	}

	o.state = StateSuccess
	o.notifier.Success("Payment successful!")
	return nil
}

func (o *CheckoutOrchestrator) fail(message string) {
	o.state = StateFailure
	o.failureMessage = message
	o.notifier.Error(message)
}

func (o *CheckoutOrchestrator) returnURL() string {
	if o.returnURLBase == "" {
		return ""
	}
	return fmt.Sprintf("%s/payment/return?orderId=%s", o.returnURLBase, url.QueryEscape(o.orderID))
}
