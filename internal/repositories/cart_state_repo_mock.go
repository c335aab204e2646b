package repositories

import (
	"sync"

	"shopfront/internal/models"
)

// MockCartStateRepository is an in-memory implementation of CartStateRepository.
type MockCartStateRepository struct {
	userID string
	items  []models.CartLineItem
	mu     sync.RWMutex
}

// NewMockCartStateRepository creates a new instance of MockCartStateRepository.
func NewMockCartStateRepository() *MockCartStateRepository {
	return &MockCartStateRepository{}
}

// Load returns the stored owner and line items.
func (r *MockCartStateRepository) Load() (string, []models.CartLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.CartLineItem, len(r.items))
	copy(items, r.items)
	return r.userID, items, nil
}

// SaveSnapshot replaces the stored owner and items wholesale.
func (r *MockCartStateRepository) SaveSnapshot(userID string, items []models.CartLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.userID = userID
	r.items = make([]models.CartLineItem, len(items))
	copy(r.items, items)
	return nil
}

// Clear removes all stored cart state.
func (r *MockCartStateRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.userID = ""
	r.items = nil
	return nil
}
