package repositories

import (
	"time"

	"shopfront/internal/models"
)

// CartStateRecord holds the cart store's scalar state. A single row (ID 1)
// tracks which owner the persisted items belong to: an empty UserID means the
// items are a guest cart.
type CartStateRecord struct {
	ID        uint `gorm:"primaryKey"`
	UserID    string
	UpdatedAt time.Time
}

// CartItemRecord is one persisted cart line. The identity key columns carry a
// unique index so the same (product, size, color) can never be stored twice.
type CartItemRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"uniqueIndex:idx_cart_line_key"`
	Size      string `gorm:"uniqueIndex:idx_cart_line_key"`
	Color     string `gorm:"uniqueIndex:idx_cart_line_key"`
	Name      string
	Slug      string
	UnitPrice float64
	ImageURLs string // comma-separated snapshot, display only
	Stock     int
	Quantity  int
	AddedAt   time.Time
}

// CartStateRepository persists the cart store across restarts. Snapshots are
// written whole: the stores own merging logic, the repository only records
// the result.
type CartStateRepository interface {
	// Load returns the persisted owner and line items. An empty userID with no
	// items is the pristine guest state.
	Load() (userID string, items []models.CartLineItem, err error)
	// SaveSnapshot replaces the persisted owner and items wholesale.
	SaveSnapshot(userID string, items []models.CartLineItem) error
	// Clear removes all persisted cart state.
	Clear() error
}
