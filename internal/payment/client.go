// Package payment talks to the external checkout provider. The provider
// holds a session per payment attempt, correlated to an order through the
// session metadata, and reports completion or expiry through webhooks.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/otaku-market/internal/config"
)

// LineItem is one purchasable line in a checkout session. UnitAmount is in
// minor currency units.
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

type SessionParams struct {
	OrderID    string     `json:"order_id"`
	Email      string     `json:"email"`
	Items      []LineItem `json:"items"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
}

type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// Client creates checkout sessions with the payment provider.
type Client interface {
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}

// HTTPClient is the production Client over the provider's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	hc         *http.Client
}

func NewHTTPClient(cfg config.PaymentConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:    cfg.APIURL,
		apiKey:     cfg.APIKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		hc:         &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	if params.SuccessURL == "" {
		params.SuccessURL = c.successURL
	}
	if params.CancelURL == "" {
		params.CancelURL = c.cancelURL
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create checkout session: provider returned %d: %s", resp.StatusCode, msg)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &session, nil
}
