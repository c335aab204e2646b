package api

import "context"

// CreatePaymentIntent requests a payment handle for an order. The backend
// creates (or re-uses) a processor payment intent per order, so the call is
// safe to repeat for the same order ID.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID string) (string, error) {
	var data struct {
		ClientSecret string `json:"clientSecret"`
	}
	body := map[string]string{"orderId": orderID}
	if err := c.post(ctx, "/payment/create-intent", body, &data); err != nil {
		return "", err
	}
	return data.ClientSecret, nil
}

// VerifyPayment asks the backend to confirm the payment outcome with the
// processor and finalise the order. This is the only call that turns an
// order paid; the processor's client-side "succeeded" is never enough.
func (c *Client) VerifyPayment(ctx context.Context, paymentIntentID, orderID string) error {
	body := map[string]string{
		"paymentIntentId": paymentIntentID,
		"orderId":         orderID,
	}
	return c.post(ctx, "/payment/verify", body, nil)
}
