package repositories

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopfront/internal/models"
)

// GORMCartStateRepository is a GORM implementation of CartStateRepository.
type GORMCartStateRepository struct {
	db *gorm.DB
}

// NewGORMCartStateRepository creates a new instance of GORMCartStateRepository.
func NewGORMCartStateRepository(db *gorm.DB) *GORMCartStateRepository {
	return &GORMCartStateRepository{
		db: db,
	}
}

// Load returns the persisted owner and line items.
func (r *GORMCartStateRepository) Load() (string, []models.CartLineItem, error) {
	var state CartStateRecord
	if err := r.db.First(&state, "id = ?", 1).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("failed to load cart state: %w", err)
	}

	var records []CartItemRecord
	if err := r.db.Order("added_at asc, id asc").Find(&records).Error; err != nil {
		return "", nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	items := make([]models.CartLineItem, 0, len(records))
	for _, record := range records {
		items = append(items, record.toLineItem())
	}
	return state.UserID, items, nil
}

// SaveSnapshot replaces the persisted owner and items wholesale, in one
// transaction so a crash can never leave a half-written snapshot.
func (r *GORMCartStateRepository) SaveSnapshot(userID string, items []models.CartLineItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		state := CartStateRecord{ID: 1, UserID: userID, UpdatedAt: time.Now()}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&state).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&CartItemRecord{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for i, item := range items {
			record := itemRecordFrom(item)
			record.AddedAt = now.Add(time.Duration(i) * time.Microsecond)
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

// Clear removes all persisted cart state.
func (r *GORMCartStateRepository) Clear() error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CartItemRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&CartStateRecord{}, "id = ?", 1).Error
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart state: %w", err)
	}
	return nil
}

func itemRecordFrom(item models.CartLineItem) CartItemRecord {
	return CartItemRecord{
		ProductID: item.ProductID,
		Size:      item.Size,
		Color:     item.Color,
		Name:      item.Name,
		Slug:      item.Slug,
		UnitPrice: item.UnitPrice,
		ImageURLs: strings.Join(item.Images, ","),
		Stock:     item.Stock,
		Quantity:  item.Quantity,
	}
}

func (r CartItemRecord) toLineItem() models.CartLineItem {
	var images []string
	if r.ImageURLs != "" {
		images = strings.Split(r.ImageURLs, ",")
	}
	return models.CartLineItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Slug:      r.Slug,
		UnitPrice: r.UnitPrice,
		Images:    images,
		Stock:     r.Stock,
		Size:      r.Size,
		Color:     r.Color,
		Quantity:  r.Quantity,
	}
}
