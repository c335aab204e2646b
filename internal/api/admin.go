package api

import (
	"context"
	"fmt"

	"shopfront/internal/models"
)

// AdminStats is the back-office dashboard summary.
type AdminStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	TotalUsers    int     `json:"totalUsers"`
	TotalProducts int     `json:"totalProducts"`
	PendingOrders int     `json:"pendingOrders"`
}

// AdminStats fetches the back-office dashboard numbers.
func (c *Client) AdminStats(ctx context.Context) (*AdminStats, error) {
	var data struct {
		Stats AdminStats `json:"stats"`
	}
	if err := c.get(ctx, "/admin/stats", &data); err != nil {
		return nil, err
	}
	return &data.Stats, nil
}

// AdminListProducts returns the full catalog for the back office.
func (c *Client) AdminListProducts(ctx context.Context) ([]models.Product, error) {
	var data struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, "/admin/products", &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// AdminCreateProduct adds a catalog entry.
func (c *Client) AdminCreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	var data struct {
		Product models.Product `json:"product"`
	}
	if err := c.post(ctx, "/admin/products", product, &data); err != nil {
		return nil, err
	}
	return &data.Product, nil
}

// AdminUpdateProduct replaces a catalog entry.
func (c *Client) AdminUpdateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("product ID is required for update")
	}
	var data struct {
		Product models.Product `json:"product"`
	}
	if err := c.put(ctx, fmt.Sprintf("/admin/products/%s", product.ID), product, &data); err != nil {
		return nil, err
	}
	return &data.Product, nil
}

// AdminDeleteProduct removes a catalog entry.
func (c *Client) AdminDeleteProduct(ctx context.Context, productID string) error {
	return c.delete(ctx, fmt.Sprintf("/admin/products/%s", productID))
}

// AdminListOrders returns all orders across accounts.
func (c *Client) AdminListOrders(ctx context.Context) ([]models.Order, error) {
	var data struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.get(ctx, "/admin/orders", &data); err != nil {
		return nil, err
	}
	return data.Orders, nil
}

// AdminUpdateOrderStatus moves an order through its fulfilment states.
func (c *Client) AdminUpdateOrderStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	var data struct {
		Order models.Order `json:"order"`
	}
	body := map[string]string{"status": status}
	if err := c.put(ctx, fmt.Sprintf("/admin/orders/%s", orderID), body, &data); err != nil {
		return nil, err
	}
	return &data.Order, nil
}

// AdminListUsers returns all registered accounts.
func (c *Client) AdminListUsers(ctx context.Context) ([]models.User, error) {
	var data struct {
		Users []models.User `json:"users"`
	}
	if err := c.get(ctx, "/admin/users", &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}

// AdminUpdateUserRole changes an account's role.
func (c *Client) AdminUpdateUserRole(ctx context.Context, userID, role string) (*models.User, error) {
	var data struct {
		User models.User `json:"user"`
	}
	body := map[string]string{"role": role}
	if err := c.put(ctx, fmt.Sprintf("/admin/users/%s", userID), body, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// AdminDeleteUser removes an account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.delete(ctx, fmt.Sprintf("/admin/users/%s", userID))
}
