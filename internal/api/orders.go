package api

import (
	"context"
	"fmt"
	"net/http"

	"shopfront/internal/models"
)

// CreateOrder places a new order. The idempotency key lets the backend
// recognise a duplicate submission of the same checkout attempt; order
// creation is never retried automatically on the client side regardless.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.Order, error) {
	var data struct {
		Order models.Order `json:"order"`
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	if err := c.do(ctx, http.MethodPost, "/orders", req, &data, headers); err != nil {
		return nil, err
	}
	return &data.Order, nil
}

// ListOrders returns the account's order history.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var data struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.get(ctx, "/orders", &data); err != nil {
		return nil, err
	}
	return data.Orders, nil
}

// GetOrder fetches a single order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var data struct {
		Order models.Order `json:"order"`
	}
	if err := c.get(ctx, fmt.Sprintf("/orders/%s", orderID), &data); err != nil {
		return nil, err
	}
	return &data.Order, nil
}

// CancelOrder transitions an order to cancelled. The backend decides whether
// the current status permits it.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var data struct {
		Order models.Order `json:"order"`
	}
	if err := c.put(ctx, fmt.Sprintf("/orders/%s/cancel", orderID), nil, &data); err != nil {
		return nil, err
	}
	return &data.Order, nil
}
