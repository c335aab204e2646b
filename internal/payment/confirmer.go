package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Payment intent statuses reported by the processor.
const (
	StatusSucceeded      = "succeeded"
	StatusProcessing     = "processing"
	StatusRequiresAction = "requires_action"
)

// ConfirmResult is the outcome of a client-side confirmation call.
type ConfirmResult struct {
	PaymentIntentID string
	Status          string
	// RedirectURL is set when the processor needs the shopper to authenticate
	// off-site (3-D Secure and the like). The shopper returns through the
	// return URL supplied to Confirm.
	RedirectURL string
}

// Confirmer collects payment for a payment intent identified by its client
// secret. Implementations talk to the processor, never to the backend.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret, returnURL string) (*ConfirmResult, error)
}

// Error is a processor-reported failure carrying the processor's
// human-readable message, which is surfaced to the shopper verbatim.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment failed: %s", e.Message)
	}
	return fmt.Sprintf("payment failed (code %s)", e.Code)
}

// HTTPConfirmer confirms payment intents against the processor's REST API
// using the publishable key and the intent's client secret, the same
// credential pair a browser-side confirmation uses.
type HTTPConfirmer struct {
	baseURL        string
	publishableKey string
	httpClient     *http.Client
}

// NewHTTPConfirmer creates a confirmer for the given processor endpoint.
func NewHTTPConfirmer(baseURL, publishableKey string) *HTTPConfirmer {
	return &HTTPConfirmer{
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishableKey: publishableKey,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// IntentIDFromClientSecret extracts the payment intent ID from a client
// secret of the form "pi_xxx_secret_yyy".
func IntentIDFromClientSecret(clientSecret string) (string, error) {
	idx := strings.Index(clientSecret, "_secret_")
	if idx <= 0 {
		return "", fmt.Errorf("malformed client secret")
	}
	return clientSecret[:idx], nil
}

// Confirm drives the processor's confirmation endpoint for the intent behind
// the client secret.
func (c *HTTPConfirmer) Confirm(ctx context.Context, clientSecret, returnURL string) (*ConfirmResult, error) {
	intentID, err := IntentIDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("key", c.publishableKey)
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}

	endpoint := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", c.baseURL, intentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build confirm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confirm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirm response: %w", err)
	}

	var payload struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		NextAction struct {
			RedirectToURL struct {
				URL string `json:"url"`
			} `json:"redirect_to_url"`
		} `json:"next_action"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode confirm response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || payload.Error.Message != "" {
		return nil, &Error{Code: payload.Error.Code, Message: payload.Error.Message}
	}

	return &ConfirmResult{
		PaymentIntentID: payload.ID,
		Status:          payload.Status,
		RedirectURL:     payload.NextAction.RedirectToURL.URL,
	}, nil
}
