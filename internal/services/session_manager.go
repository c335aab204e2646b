package services

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"shopfront/internal/api"
	"shopfront/internal/models"
)

// authBackend is the slice of the REST client the coordinator needs.
type authBackend interface {
	Login(ctx context.Context, creds models.Credentials) (*api.LoginResult, error)
	Register(ctx context.Context, reg models.Registration) (*api.LoginResult, error)
	Logout(ctx context.Context) error
}

// SessionManager owns the pairing between the auth store and the cart
// engine. The two stores are independent and never call into each other;
// the manager is the single place that sequences "set session, then sync
// cart" on sign-in and "clear cart, then clear session" on sign-out, so
// callers cannot forget one half.
type SessionManager struct {
	backend  authBackend
	auth     *AuthStore
	cart     *CartEngine
	notifier Notifier
	validate *validator.Validate
}

// NewSessionManager creates a SessionManager over the given stores.
func NewSessionManager(backend authBackend, auth *AuthStore, cart *CartEngine, notifier Notifier) *SessionManager {
	return &SessionManager{
		backend:  backend,
		auth:     auth,
		cart:     cart,
		notifier: notifier,
		validate: validator.New(),
	}
}

// SignIn authenticates, installs the session, and synchronises the cart to
// the account's server-side cart in one sequenced operation.
func (m *SessionManager) SignIn(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := m.validate.Struct(creds); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials: %w", err)
	}

	result, err := m.backend.Login(ctx, creds)
	if err != nil {
		m.notifier.Error(api.Message(err, "Login failed"))
		return models.User{}, fmt.Errorf("login failed: %w", err)
	}

	m.auth.Login(result.User, result.AccessToken, result.RefreshToken)
	if err := m.cart.SyncCart(ctx, result.User.ID); err != nil {
		// The session is valid even when the first sync fails; the cart was
		// emptied and will reconcile on a later sync.
		log.Printf("Cart sync after sign-in failed: %v", err)
	}

	m.notifier.Success("Welcome back, " + displayName(result.User))
	return result.User, nil
}

// Register creates an account and signs it in, with the same cart pairing as
// SignIn.
func (m *SessionManager) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	if err := m.validate.Struct(reg); err != nil {
		return models.User{}, fmt.Errorf("invalid registration: %w", err)
	}

	result, err := m.backend.Register(ctx, reg)
	if err != nil {
		m.notifier.Error(api.Message(err, "Registration failed"))
		return models.User{}, fmt.Errorf("registration failed: %w", err)
	}

	m.auth.Login(result.User, result.AccessToken, result.RefreshToken)
	if err := m.cart.SyncCart(ctx, result.User.ID); err != nil {
		log.Printf("Cart sync after registration failed: %v", err)
	}

	m.notifier.Success("Account created")
	return result.User, nil
}

// SignOut tears the session down: server-side invalidation is best effort,
// then both stores are reset. Cart first, so a crash between the two can
// never leave the old user's items attached to a live session.
func (m *SessionManager) SignOut(ctx context.Context) {
	if m.auth.IsAuthenticated() {
		if err := m.backend.Logout(ctx); err != nil {
			log.Printf("Server-side logout failed: %v", err)
		}
	}
	m.cart.Logout()
	m.auth.Logout()
}

// HandleUnauthorized is the 401 hook wired into the API client: an invalid
// session resets both stores without a server round-trip.
func (m *SessionManager) HandleUnauthorized() {
	if !m.auth.IsAuthenticated() {
		return
	}
	log.Printf("Session rejected by backend, resetting local session")
	m.cart.Logout()
	m.auth.Logout()
	m.notifier.Error("Your session has expired. Please log in again.")
}

// RestoreSession re-synchronises the cart for a session restored from
// durable storage at process start.
func (m *SessionManager) RestoreSession(ctx context.Context) {
	if err := m.cart.SyncCart(ctx, m.auth.UserID()); err != nil {
		log.Printf("Cart sync on session restore failed: %v", err)
	}
}

func displayName(user models.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
