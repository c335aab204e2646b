package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"shopfront/internal/models"
)

// ListProducts returns a page of the catalog, optionally filtered.
func (c *Client) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Size != "" {
		query.Set("size", filter.Size)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var data struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// GetProduct fetches a single catalog entry.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	var data struct {
		Product models.Product `json:"product"`
	}
	if err := c.get(ctx, fmt.Sprintf("/products/%s", productID), &data); err != nil {
		return nil, err
	}
	return &data.Product, nil
}

// ListWishlist returns the account's wishlist.
func (c *Client) ListWishlist(ctx context.Context) ([]models.Product, error) {
	var data struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, "/users/wishlist", &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// AddToWishlist saves a product to the wishlist. Adding a product twice is a
// conflict on the backend and surfaces through IsConflict.
func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	body := map[string]string{"productId": productID}
	return c.post(ctx, "/users/wishlist", body, nil)
}

// RemoveFromWishlist drops a product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.delete(ctx, fmt.Sprintf("/users/wishlist/%s", productID))
}
