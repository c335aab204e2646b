package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
)

// CartBackend is the slice of the REST client the cart engine needs.
type CartBackend interface {
	FetchCart(ctx context.Context) ([]models.RemoteCartLine, error)
	AddCartItem(ctx context.Context, productID string, quantity int, size, color string) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// CartEngine reconciles the two possible backings of the cart: purely local
// state for a guest, or the server-persisted cart of an authenticated user.
// It is the only component that knows how to move between the two safely.
//
// A single mutex serialises all cart operations, so a rapid double add can
// never interleave into a lost update or a duplicate network call.
type CartEngine struct {
	mu          sync.Mutex
	items       []models.CartLineItem
	userID      string
	initialized bool

	backend  CartBackend
	repo     repositories.CartStateRepository
	notifier Notifier
}

// NewCartEngine creates a CartEngine and restores the persisted cart. The
// restored state is not considered synchronised: the first SyncCart call
// after start decides whether the items survive an owner change.
func NewCartEngine(backend CartBackend, repo repositories.CartStateRepository, notifier Notifier) (*CartEngine, error) {
	userID, items, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to restore cart: %w", err)
	}
	return &CartEngine{
		items:    items,
		userID:   userID,
		backend:  backend,
		repo:     repo,
		notifier: notifier,
	}, nil
}

// SyncCart moves the cart to the given owner. An empty userID resets to an
// empty guest cart, so logging out never leaks the previous user's items
// into the next guest session. For an authenticated owner the server cart
// replaces local state wholesale: the server wins on login, guest items are
// intentionally not merged into the account cart.
//
// The call is idempotent per owner: once synchronised for a userID, repeated
// calls issue no further fetches.
func (e *CartEngine) SyncCart(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if userID == "" {
		e.resetGuestLocked(true)
		return nil
	}

	if e.initialized && e.userID == userID {
		return nil
	}

	lines, err := e.backend.FetchCart(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			// No valid session after all: behave as a guest.
			e.resetGuestLocked(true)
			return fmt.Errorf("cart sync rejected: %w", err)
		}
		// Clear the items but still mark this owner as synchronised, so a
		// flaky backend does not cause a fetch on every subsequent call.
		e.items = nil
		e.userID = userID
		e.initialized = true
		e.persistLocked()
		e.notifier.Error("Failed to load your cart")
		return fmt.Errorf("failed to sync cart: %w", err)
	}

	e.items = itemsFromRemote(lines)
	e.userID = userID
	e.initialized = true
	e.persistLocked()
	return nil
}

// AddItem adds a line to the cart. Authenticated carts are mutated on the
// server first and then re-fetched wholesale, so local state only ever shows
// server truth; guest carts merge locally on the line-item identity key.
func (e *CartEngine) AddItem(ctx context.Context, item models.CartLineItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if e.userID != "" {
		if err := e.backend.AddCartItem(ctx, item.ProductID, item.Quantity, item.Size, item.Color); err != nil {
			e.notifier.Error(api.Message(err, "Failed to add to cart"))
			return fmt.Errorf("failed to add item to server cart: %w", err)
		}
		if err := e.refreshLocked(ctx); err != nil {
			return err
		}
		e.notifier.Success("Added to cart!")
		return nil
	}

	key := item.Key()
	merged := false
	for i := range e.items {
		if e.items[i].Key() == key {
			e.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		e.items = append(e.items, item)
	}
	e.persistLocked()
	e.notifier.Success("Added to cart!")
	return nil
}

// UpdateQuantity sets a line's quantity exactly. A quantity of zero or less
// removes the line. Stock clamping is not applied here; the server stays
// authoritative for stock.
func (e *CartEngine) UpdateQuantity(ctx context.Context, key models.LineKey, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return e.removeLocked(ctx, key)
	}

	if e.userID != "" {
		itemID, err := e.resolveServerItemLocked(ctx, key)
		if err != nil {
			e.notifier.Error("Failed to update quantity")
			return err
		}
		if itemID == "" {
			return nil
		}
		if err := e.backend.UpdateCartItem(ctx, itemID, quantity); err != nil {
			e.notifier.Error(api.Message(err, "Failed to update quantity"))
			return fmt.Errorf("failed to update server cart item: %w", err)
		}
		return e.refreshLocked(ctx)
	}

	for i := range e.items {
		if e.items[i].Key() == key {
			e.items[i].Quantity = quantity
			break
		}
	}
	e.persistLocked()
	return nil
}

// RemoveItem deletes the line with the given identity key. No-op when the
// line is absent.
func (e *CartEngine) RemoveItem(ctx context.Context, key models.LineKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeLocked(ctx, key)
}

func (e *CartEngine) removeLocked(ctx context.Context, key models.LineKey) error {
	if e.userID != "" {
		itemID, err := e.resolveServerItemLocked(ctx, key)
		if err != nil {
			e.notifier.Error("Failed to remove item")
			return err
		}
		if itemID == "" {
			return nil
		}
		if err := e.backend.RemoveCartItem(ctx, itemID); err != nil {
			e.notifier.Error(api.Message(err, "Failed to remove item"))
			return fmt.Errorf("failed to remove server cart item: %w", err)
		}
		if err := e.refreshLocked(ctx); err != nil {
			return err
		}
		e.notifier.Success("Removed from cart")
		return nil
	}

	filtered := e.items[:0]
	for _, item := range e.items {
		if item.Key() != key {
			filtered = append(filtered, item)
		}
	}
	e.items = filtered
	e.persistLocked()
	e.notifier.Success("Removed from cart")
	return nil
}

// ClearCart empties the cart. The server clear is attempted for
// authenticated carts, but local state is emptied regardless of the outcome:
// a later sync reconciles any divergence.
func (e *CartEngine) ClearCart(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var clearErr error
	if e.userID != "" {
		if err := e.backend.ClearCart(ctx); err != nil {
			e.notifier.Error("Failed to clear cart")
			clearErr = fmt.Errorf("failed to clear server cart: %w", err)
		}
	}
	e.items = nil
	e.persistLocked()
	return clearErr
}

// Logout resets the engine to the pristine guest state. The session
// coordinator calls this alongside the auth store's Logout; the two stores
// never cascade into each other.
func (e *CartEngine) Logout() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	e.userID = ""
	e.initialized = false
	if err := e.repo.Clear(); err != nil {
		log.Printf("Failed to clear persisted cart: %v", err)
	}
}

// Items returns a copy of the current line items.
func (e *CartEngine) Items() []models.CartLineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]models.CartLineItem, len(e.items))
	copy(items, e.items)
	return items
}

// UserID returns the owner the cart is synchronised to, or empty for guest.
func (e *CartEngine) UserID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.userID
}

// Initialized reports whether a sync has completed since start or the last
// owner change.
func (e *CartEngine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// GetTotal returns the sum of unit price times quantity over all lines.
func (e *CartEngine) GetTotal() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total float64
	for _, item := range e.items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// GetItemCount returns the sum of quantities, not the number of lines.
func (e *CartEngine) GetItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var count int
	for _, item := range e.items {
		count += item.Quantity
	}
	return count
}

// Summary computes the checkout totals for the current cart.
func (e *CartEngine) Summary() models.CartSummary {
	return models.Summarize(e.Items())
}

// refreshLocked re-fetches the server cart and replaces local state. Every
// authenticated mutation funnels through it: the latency cost buys the
// guarantee that local and server carts can never diverge.
func (e *CartEngine) refreshLocked(ctx context.Context) error {
	lines, err := e.backend.FetchCart(ctx)
	if err != nil {
		e.notifier.Error("Failed to refresh cart")
		return fmt.Errorf("failed to refresh cart: %w", err)
	}
	e.items = itemsFromRemote(lines)
	e.persistLocked()
	return nil
}

// resolveServerItemLocked finds the backend's item ID for a line key. An
// empty ID with nil error means the line does not exist server-side.
func (e *CartEngine) resolveServerItemLocked(ctx context.Context, key models.LineKey) (string, error) {
	lines, err := e.backend.FetchCart(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve cart item: %w", err)
	}
	for _, line := range lines {
		if line.Item.Key() == key {
			return line.ItemID, nil
		}
	}
	return "", nil
}

func (e *CartEngine) resetGuestLocked(initialized bool) {
	e.items = nil
	e.userID = ""
	e.initialized = initialized
	e.persistLocked()
}

func (e *CartEngine) persistLocked() {
	if err := e.repo.SaveSnapshot(e.userID, e.items); err != nil {
		log.Printf("Failed to persist cart snapshot: %v", err)
	}
}

func itemsFromRemote(lines []models.RemoteCartLine) []models.CartLineItem {
	items := make([]models.CartLineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.Item)
	}
	return items
}
