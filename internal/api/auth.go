package api

import (
	"context"

	"shopfront/internal/models"
)

// LoginResult is the session material returned by the auth endpoints.
type LoginResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account and returns the new session.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/auth/register", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the session server-side. Best effort: local teardown
// proceeds regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// Me fetches the current account profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var data struct {
		User models.User `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// UpdateProfile pushes profile changes to the backend and returns the
// updated account.
func (c *Client) UpdateProfile(ctx context.Context, update map[string]interface{}) (*models.User, error) {
	var data struct {
		User models.User `json:"user"`
	}
	if err := c.put(ctx, "/users/profile", update, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}
