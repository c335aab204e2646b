package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"shopfront/internal/models"
	"shopfront/internal/repositories"
)

// AuthStore holds the current session and keeps it durable across restarts.
// All operations are pure state mutations: network calls happen before Login
// is ever invoked, so nothing here can fail except the storage write, which
// is logged and never blocks the in-memory update.
type AuthStore struct {
	mu              sync.RWMutex
	user            *models.User
	accessToken     string
	refreshToken    string
	isAuthenticated bool

	repo repositories.SessionRepository
}

// NewAuthStore creates an AuthStore and restores any persisted session.
func NewAuthStore(repo repositories.SessionRepository) (*AuthStore, error) {
	store := &AuthStore{repo: repo}

	record, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if record != nil && record.IsAuthenticated {
		user := record.User()
		store.user = &user
		store.accessToken = record.AccessToken
		store.refreshToken = record.RefreshToken
		store.isAuthenticated = true
	}
	return store, nil
}

// Login replaces the session state atomically and persists it. Callers are
// responsible for triggering cart synchronisation afterwards; the store does
// not reach into the cart engine.
func (s *AuthStore) Login(user models.User, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.user = &u
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.isAuthenticated = true

	if err := s.repo.Save(repositories.NewSessionRecord(user, accessToken, refreshToken)); err != nil {
		log.Printf("Failed to persist session: %v", err)
	}
}

// Logout clears the session state and its durable record. It does not clear
// the cart; the session coordinator sequences the two stores.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.accessToken = ""
	s.refreshToken = ""
	s.isAuthenticated = false

	if err := s.repo.Clear(); err != nil {
		log.Printf("Failed to clear persisted session: %v", err)
	}
}

// UpdateUser shallow-merges fields into the current user. No-op when no
// session is active.
func (s *AuthStore) UpdateUser(update models.UserUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return
	}
	update.ApplyTo(s.user)

	if err := s.repo.Save(repositories.NewSessionRecord(*s.user, s.accessToken, s.refreshToken)); err != nil {
		log.Printf("Failed to persist session after user update: %v", err)
	}
}

// UpdateToken rotates the bearer credential in place without touching the
// user record.
func (s *AuthStore) UpdateToken(newToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = newToken
	if s.user != nil {
		if err := s.repo.Save(repositories.NewSessionRecord(*s.user, s.accessToken, s.refreshToken)); err != nil {
			log.Printf("Failed to persist session after token rotation: %v", err)
		}
	}
}

// CurrentUser returns the logged-in user, if any.
func (s *AuthStore) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID returns the logged-in user's ID, or empty when guest.
func (s *AuthStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Token returns the current bearer credential, or empty when guest. It is
// the TokenSource wired into the API client.
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh credential, if one was issued.
func (s *AuthStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// IsAuthenticated reports whether a session is active.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// IsAdmin reports whether the current user holds the admin role.
func (s *AuthStore) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// TokenExpiresWithin reports whether the access token carries an exp claim
// falling within the given window. The token is parsed without signature
// verification: the client has no signing key, and the backend remains the
// authority — this is only a pre-flight hint to refresh early.
func (s *AuthStore) TokenExpiresWithin(window time.Duration) bool {
	s.mu.RLock()
	token := s.accessToken
	s.mu.RUnlock()

	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return time.Until(time.Unix(int64(exp), 0)) <= window
}
