package repositories

import "sync"

// MockSessionRepository is an in-memory implementation of SessionRepository.
type MockSessionRepository struct {
	record *SessionRecord
	mu     sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

// Load returns the stored session, or nil when none is stored.
func (r *MockSessionRepository) Load() (*SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.record == nil {
		return nil, nil
	}
	record := *r.record
	return &record, nil
}

// Save replaces the stored session.
func (r *MockSessionRepository) Save(record SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = 1
	r.record = &record
	return nil
}

// Clear removes the stored session.
func (r *MockSessionRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record = nil
	return nil
}
