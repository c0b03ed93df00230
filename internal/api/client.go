// Package api is the REST client for the HAYAS order backend. The
// backend is the single source of truth for order state; this client
// never interprets responses beyond decoding them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

// OrderAPI is the backend surface the order lifecycle consumes.
type OrderAPI interface {
	// PlaceOrder submits a new order. The server creates it in PENDING
	// and starts its acceptance window.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error)

	// RetryOrder re-opens a timed out order. Only valid when the order
	// is in TIMEOUT; the server resets it to PENDING.
	RetryOrder(ctx context.Context, orderID string) (*model.Order, error)

	// OrdersByEmail returns the identity's orders, newest first.
	OrdersByEmail(ctx context.Context, email string) ([]model.Order, error)

	// DeliveryPartnerByEmail resolves the public details of the
	// delivery partner who accepted an order.
	DeliveryPartnerByEmail(ctx context.Context, email string) (*PartnerDetails, error)
}

// PlaceOrderRequest is the payload for creating an order.
type PlaceOrderRequest struct {
	Products  []model.LineItem `json:"products"`
	Address   model.Address    `json:"address"`
	UserEmail string           `json:"userEmail"`
}

// orderEnvelope is the backend's response shape for place and retry.
type orderEnvelope struct {
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
}

// PartnerDetails is the delivery partner profile shown once an order is
// confirmed.
type PartnerDetails struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// partnerEnvelope is the backend's response shape for partner lookup.
type partnerEnvelope struct {
	UserDetails *PartnerDetails `json:"userDetails"`
}

// BackendError carries a backend failure message verbatim so the UI can
// show exactly what the server said.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// Client implements OrderAPI over JSON/HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg config.APIConfig, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// PlaceOrder submits a new order.
func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*model.Order, error) {
	var resp orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	c.logger.Info().
		Str("order_id", resp.Order.ID).
		Int("item_count", len(resp.Order.Products)).
		Msg("order placed")
	return &resp.Order, nil
}

// RetryOrder re-opens a timed out order.
func (c *Client) RetryOrder(ctx context.Context, orderID string) (*model.Order, error) {
	path := "/orders/" + url.PathEscape(orderID) + "/retry"
	var resp orderEnvelope
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	c.logger.Info().Str("order_id", resp.Order.ID).Msg("order retried")
	return &resp.Order, nil
}

// OrdersByEmail returns the identity's orders, newest first.
func (c *Client) OrdersByEmail(ctx context.Context, email string) ([]model.Order, error) {
	path := "/orders/" + url.PathEscape(email)
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// DeliveryPartnerByEmail resolves a delivery partner's public profile.
func (c *Client) DeliveryPartnerByEmail(ctx context.Context, email string) (*PartnerDetails, error) {
	body := map[string]string{"email": email}
	var resp partnerEnvelope
	if err := c.do(ctx, http.MethodPost, "/delivery-partner/by-email", body, &resp); err != nil {
		return nil, err
	}
	if resp.UserDetails == nil {
		return nil, &BackendError{StatusCode: http.StatusNotFound, Message: "delivery partner not found"}
	}
	return resp.UserDetails, nil
}

// do performs a single JSON request against the backend.
func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		message := string(raw)
		if err := json.Unmarshal(raw, &errResp); err == nil {
			if errResp.Message != "" {
				message = errResp.Message
			} else if errResp.Error != "" {
				message = errResp.Error
			}
		}
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("backend rejected request")
		return &BackendError{StatusCode: resp.StatusCode, Message: message}
	}

	if target != nil {
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
