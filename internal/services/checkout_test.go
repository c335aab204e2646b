package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopfront/internal/api"
	"shopfront/internal/models"
	"shopfront/internal/payment"
	"shopfront/internal/services"
)

// MockCheckoutBackend is a mock implementation of services.CheckoutBackend.
type MockCheckoutBackend struct {
	mock.Mock
}

func (m *MockCheckoutBackend) CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	args := m.Called(req, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockCheckoutBackend) CreatePaymentIntent(ctx context.Context, orderID string) (string, error) {
	args := m.Called(orderID)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutBackend) VerifyPayment(ctx context.Context, paymentIntentID, orderID string) error {
	args := m.Called(paymentIntentID, orderID)
	return args.Error(0)
}

// MockConfirmer is a mock implementation of payment.Confirmer.
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, clientSecret, returnURL string) (*payment.ConfirmResult, error) {
	args := m.Called(clientSecret, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ConfirmResult), args.Error(1)
}

// MockEvents is a mock implementation of services.EventPublisher.
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) PublishCheckoutCompleted(orderID, userID string, total float64) error {
	args := m.Called(orderID, userID, total)
	return args.Error(0)
}

// fakeCart is a minimal in-memory stand-in for the cart engine.
type fakeCart struct {
	items   []models.CartLineItem
	cleared bool
}

func (f *fakeCart) Items() []models.CartLineItem {
	return f.items
}

func (f *fakeCart) Summary() models.CartSummary {
	return models.Summarize(f.items)
}

func (f *fakeCart) ClearCart(ctx context.Context) error {
	f.cleared = true
	f.items = nil
	return nil
}

type fakeSession struct {
	authed bool
	id     string
}

func (f fakeSession) IsAuthenticated() bool { return f.authed }
func (f fakeSession) UserID() string        { return f.id }

func cartWithOneItem() *fakeCart {
	return &fakeCart{items: []models.CartLineItem{
		{ProductID: "prod-1", Name: "Linen Shirt", UnitPrice: 45, Quantity: 2, Size: "M"},
	}}
}

func testAddress() models.Address {
	return models.Address{
		FirstName: "Asha", LastName: "Rao", Street: "12 Hill Rd",
		City: "Chennai", State: "TN", ZipCode: "600001",
		Country: "India", Phone: "+91 98765 43210",
	}
}

func newCheckout(backend *MockCheckoutBackend, confirmer *MockConfirmer, cart *fakeCart, events services.EventPublisher) *services.CheckoutOrchestrator {
	return services.NewCheckoutOrchestrator(
		backend, confirmer, cart,
		fakeSession{authed: true, id: "user-1"},
		events, services.LogNotifier{}, "http://localhost:8373",
	)
}

func TestCheckout_GuardsRedirectBeforeAnyStep(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)

	// Not authenticated
	o := services.NewCheckoutOrchestrator(backend, confirmer, cartWithOneItem(), fakeSession{authed: false}, nil, services.LogNotifier{}, "")
	assert.ErrorIs(t, o.Begin(), services.ErrNotAuthenticated)

	// Empty cart
	o = services.NewCheckoutOrchestrator(backend, confirmer, &fakeCart{}, fakeSession{authed: true, id: "u"}, nil, services.LogNotifier{}, "")
	assert.ErrorIs(t, o.Begin(), services.ErrCartEmpty)

	backend.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckout_PlaceOrderOnceNeverReissues(t *testing.T) {
	backend := new(MockCheckoutBackend)
	cart := cartWithOneItem()
	o := newCheckout(backend, new(MockConfirmer), cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))

	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-1"}, nil).Once()

	orderID, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)

	// A second submission with an order ID held must not reach the backend.
	again, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", again)
	backend.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestCheckout_PlaceOrderFailureStaysAtOrderCreation(t *testing.T) {
	backend := new(MockCheckoutBackend)
	cart := cartWithOneItem()
	o := newCheckout(backend, new(MockConfirmer), cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))

	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, &api.APIError{StatusCode: 500, Message: "boom"}).Once()

	_, err := o.PlaceOrder(context.Background(), "CARD")
	assert.Error(t, err)
	assert.Equal(t, services.StateOrderCreation, o.State())
	assert.Empty(t, o.OrderID())

	// The user re-triggers explicitly, with the same idempotency key both
	// times so the backend can deduplicate.
	var firstKey, secondKey string
	backend.On("CreateOrder", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		secondKey = args.String(1)
	}).Return(&models.Order{ID: "ord-2"}, nil).Once()
	firstKey = backend.Calls[0].Arguments.String(1)

	orderID, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)
	assert.Equal(t, "ord-2", orderID)
	assert.Equal(t, firstKey, secondKey)
}

func TestCheckout_ProcessorFailureRetainsOrderAndCart(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)
	cart := cartWithOneItem()
	o := newCheckout(backend, confirmer, cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))
	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-1"}, nil).Once()
	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)

	// Scenario C: the processor declines.
	backend.On("CreatePaymentIntent", "ord-1").Return("pi_1_secret_abc", nil).Once()
	confirmer.On("Confirm", "pi_1_secret_abc", mock.Anything).
		Return(nil, &payment.Error{Code: "card_declined", Message: "Your card was declined."}).Once()

	_, err = o.CollectPayment(context.Background())
	assert.Error(t, err)
	assert.Equal(t, services.StateFailure, o.State())
	assert.Equal(t, "Your card was declined.", o.FailureMessage())
	assert.Equal(t, "ord-1", o.OrderID())
	assert.False(t, cart.cleared)
	assert.NotEmpty(t, cart.Items())
}

func TestCheckout_RetryReentersAtIntentCreation(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)
	cart := cartWithOneItem()
	o := newCheckout(backend, confirmer, cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))
	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-1"}, nil).Once()
	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)

	backend.On("CreatePaymentIntent", "ord-1").Return("pi_1_secret_abc", nil).Once()
	confirmer.On("Confirm", "pi_1_secret_abc", mock.Anything).
		Return(nil, &payment.Error{Message: "declined"}).Once()
	_, err = o.CollectPayment(context.Background())
	require.Error(t, err)

	// Retry reuses the order but requests a fresh intent.
	backend.On("CreatePaymentIntent", "ord-1").Return("pi_2_secret_def", nil).Once()
	confirmer.On("Confirm", "pi_2_secret_def", mock.Anything).
		Return(&payment.ConfirmResult{PaymentIntentID: "pi_2", Status: payment.StatusSucceeded}, nil).Once()
	backend.On("VerifyPayment", "pi_2", "ord-1").Return(nil).Once()

	result, err := o.Retry(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, services.StateSuccess, o.State())
	backend.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestCheckout_SuccessfulEndToEnd(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)
	events := new(MockEvents)
	cart := cartWithOneItem()
	o := newCheckout(backend, confirmer, cart, events)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))

	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-9"}, nil).Once()
	backend.On("CreatePaymentIntent", "ord-9").Return("pi_9_secret_xyz", nil).Once()
	confirmer.On("Confirm", "pi_9_secret_xyz", "http://localhost:8373/payment/return?orderId=ord-9").
		Return(&payment.ConfirmResult{PaymentIntentID: "pi_9", Status: payment.StatusSucceeded}, nil).Once()
	backend.On("VerifyPayment", "pi_9", "ord-9").Return(nil).Once()
	events.On("PublishCheckoutCompleted", "ord-9", "user-1", mock.Anything).Return(nil).Once()

	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)

	// Scenario D: verified success clears the cart and carries the order ID.
	result, err := o.CollectPayment(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, "ord-9", result.OrderID)
	assert.Equal(t, services.StateSuccess, o.State())
	assert.True(t, cart.cleared)

	backend.AssertExpectations(t)
	confirmer.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCheckout_RedirectFlowResumesFromColdStart(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)
	cart := cartWithOneItem()
	o := newCheckout(backend, confirmer, cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))
	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-5"}, nil).Once()
	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)

	backend.On("CreatePaymentIntent", "ord-5").Return("pi_5_secret_q", nil).Once()
	confirmer.On("Confirm", "pi_5_secret_q", mock.Anything).
		Return(&payment.ConfirmResult{PaymentIntentID: "pi_5", Status: payment.StatusRequiresAction, RedirectURL: "https://bank.example/3ds"}, nil).Once()

	result, err := o.CollectPayment(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Equal(t, "https://bank.example/3ds", result.RedirectURL)
	assert.False(t, cart.cleared)

	// The browser comes back on a fresh orchestrator, with only the query
	// parameters to go on.
	fresh := newCheckout(backend, confirmer, cart, nil)
	backend.On("VerifyPayment", "pi_5", "ord-5").Return(nil).Once()

	require.NoError(t, fresh.ResumeFromRedirect(context.Background(), "ord-5", "pi_5"))
	assert.Equal(t, services.StateSuccess, fresh.State())
	assert.True(t, cart.cleared)
}

func TestCheckout_VerificationFailureDoesNotClearCart(t *testing.T) {
	backend := new(MockCheckoutBackend)
	confirmer := new(MockConfirmer)
	cart := cartWithOneItem()
	o := newCheckout(backend, confirmer, cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))
	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-3"}, nil).Once()
	backend.On("CreatePaymentIntent", "ord-3").Return("pi_3_secret_k", nil).Once()
	confirmer.On("Confirm", "pi_3_secret_k", mock.Anything).
		Return(&payment.ConfirmResult{PaymentIntentID: "pi_3", Status: payment.StatusSucceeded}, nil).Once()
	backend.On("VerifyPayment", "pi_3", "ord-3").Return(&api.APIError{StatusCode: 502}).Once()

	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)
	_, err = o.CollectPayment(context.Background())

	assert.Error(t, err)
	assert.Equal(t, services.StateFailure, o.State())
	assert.False(t, cart.cleared)
	assert.Equal(t, "ord-3", o.OrderID())
}

func TestCheckout_AbandonKeepsCart(t *testing.T) {
	backend := new(MockCheckoutBackend)
	cart := cartWithOneItem()
	o := newCheckout(backend, new(MockConfirmer), cart, nil)

	require.NoError(t, o.Begin())
	require.NoError(t, o.SelectAddress(testAddress()))
	backend.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "ord-7"}, nil).Once()
	_, err := o.PlaceOrder(context.Background(), "CARD")
	require.NoError(t, err)

	o.Abandon()

	assert.Equal(t, services.StateIdle, o.State())
	assert.Empty(t, o.OrderID())
	assert.NotEmpty(t, cart.Items())
}
