package api

import (
	"context"
	"fmt"

	"shopfront/internal/models"
)

// ListAddresses returns the account's address book.
func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var data struct {
		Addresses []models.Address `json:"addresses"`
	}
	if err := c.get(ctx, "/users/addresses", &data); err != nil {
		return nil, err
	}
	return data.Addresses, nil
}

// CreateAddress adds an address to the account's address book.
func (c *Client) CreateAddress(ctx context.Context, address models.Address) (*models.Address, error) {
	var data struct {
		Address models.Address `json:"address"`
	}
	if err := c.post(ctx, "/users/addresses", address, &data); err != nil {
		return nil, err
	}
	return &data.Address, nil
}

// UpdateAddress replaces an existing address.
func (c *Client) UpdateAddress(ctx context.Context, address models.Address) (*models.Address, error) {
	if address.ID == "" {
		return nil, fmt.Errorf("address ID is required for update")
	}
	var data struct {
		Address models.Address `json:"address"`
	}
	if err := c.put(ctx, fmt.Sprintf("/users/addresses/%s", address.ID), address, &data); err != nil {
		return nil, err
	}
	return &data.Address, nil
}

// DeleteAddress removes an address from the address book.
func (c *Client) DeleteAddress(ctx context.Context, addressID string) error {
	return c.delete(ctx, fmt.Sprintf("/users/addresses/%s", addressID))
}
