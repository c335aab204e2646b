package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is the designated "session invalid" signal. Callers treat
// it as an implicit logout trigger, not as a generic request failure.
var ErrUnauthorized = errors.New("session invalid or expired")

// APIError is a non-2xx response from the backend, carrying the backend's
// human-readable message when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// IsUnauthorized reports whether the error is the session-invalid signal.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsConflict reports whether the error is a business conflict (insufficient
// stock, duplicate wishlist entry and the like). State was not mutated.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusConflict || apiErr.StatusCode == http.StatusUnprocessableEntity)
}

// IsNotFound reports whether the requested resource does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Message extracts the backend-provided message from an error, falling back
// to the given default. Used when surfacing failures as user notifications.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
