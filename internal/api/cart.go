package api

import (
	"context"
	"fmt"

	"shopfront/internal/models"
)

// cartItemPayload is one server-side cart line as the backend serialises it:
// the product snapshot is nested, the variant selectors sit beside it.
type cartItemPayload struct {
	ID      string `json:"id"`
	Product struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Slug   string   `json:"slug"`
		Price  float64  `json:"price"`
		Images []string `json:"images"`
		Stock  int      `json:"stock"`
	} `json:"product"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

func (p cartItemPayload) toRemoteLine() models.RemoteCartLine {
	return models.RemoteCartLine{
		ItemID: p.ID,
		Item: models.CartLineItem{
			ProductID: p.Product.ID,
			Name:      p.Product.Name,
			Slug:      p.Product.Slug,
			UnitPrice: p.Product.Price,
			Images:    p.Product.Images,
			Stock:     p.Product.Stock,
			Size:      p.Size,
			Color:     p.Color,
			Quantity:  p.Quantity,
		},
	}
}

// FetchCart retrieves the authenticated user's server-side cart.
func (c *Client) FetchCart(ctx context.Context) ([]models.RemoteCartLine, error) {
	var data struct {
		Cart struct {
			Items []cartItemPayload `json:"items"`
		} `json:"cart"`
	}
	if err := c.get(ctx, "/cart", &data); err != nil {
		return nil, err
	}

	lines := make([]models.RemoteCartLine, 0, len(data.Cart.Items))
	for _, item := range data.Cart.Items {
		lines = append(lines, item.toRemoteLine())
	}
	return lines, nil
}

// AddCartItem adds a product to the server-side cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int, size, color string) error {
	body := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
		"size":      size,
		"color":     color,
	}
	return c.post(ctx, "/cart/add", body, nil)
}

// UpdateCartItem sets the quantity of a server-side cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	body := map[string]interface{}{"quantity": quantity}
	return c.put(ctx, fmt.Sprintf("/cart/items/%s", itemID), body, nil)
}

// RemoveCartItem deletes a server-side cart line.
func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.delete(ctx, fmt.Sprintf("/cart/items/%s", itemID))
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.delete(ctx, "/cart/clear")
}
