package repositories

import "shopfront/internal/models"

// SessionRecord is the persisted snapshot of the auth store. A single row
// (ID 1) holds the whole session so that a save replaces it atomically.
type SessionRecord struct {
	ID              uint `gorm:"primaryKey"`
	UserID          string
	FirstName       string
	LastName        string
	Name            string
	Email           string
	Phone           string
	Role            string
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
}

// User rebuilds the user model from the persisted columns.
func (r SessionRecord) User() models.User {
	return models.User{
		ID:        r.UserID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
	}
}

// NewSessionRecord builds the single-row snapshot for a session.
func NewSessionRecord(user models.User, accessToken, refreshToken string) SessionRecord {
	return SessionRecord{
		ID:              1,
		UserID:          user.ID,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Name:            user.Name,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		IsAuthenticated: true,
	}
}

// SessionRepository persists the auth store across restarts.
type SessionRepository interface {
	// Load returns the persisted session, or nil when none is stored.
	Load() (*SessionRecord, error)
	// Save replaces the persisted session wholesale.
	Save(record SessionRecord) error
	// Clear removes the persisted session.
	Clear() error
}
