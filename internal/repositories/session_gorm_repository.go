package repositories

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{
		db: db,
	}
}

// Load returns the persisted session, or nil when none is stored.
func (r *GORMSessionRepository) Load() (*SessionRecord, error) {
	var record SessionRecord
	if err := r.db.First(&record, "id = ?", 1).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &record, nil
}

// Save replaces the persisted session wholesale.
func (r *GORMSessionRepository) Save(record SessionRecord) error {
	record.ID = 1
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (r *GORMSessionRepository) Clear() error {
	if err := r.db.Delete(&SessionRecord{}, "id = ?", 1).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
