package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestClient_PlaceOrder(t *testing.T) {
	var got PlaceOrderRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "order placed",
			"order": model.Order{
				ID:        "order-1",
				Status:    model.StatusPending,
				UserEmail: got.UserEmail,
				Products:  got.Products,
			},
		})
	})

	order, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{
		Products: []model.LineItem{
			{Title: "Tomatoes", QuantityType: model.QuantityOne, UnitLabel: "500g", Count: 2},
		},
		Address:   model.Address{Name: "Sadaq", Phone: "9876543210", Street: "12 Main St", Area: "Eruvadi"},
		UserEmail: "user@hayas.app",
	})
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "user@hayas.app", got.UserEmail)
	assert.Len(t, got.Products, 1)
}

func TestClient_PlaceOrder_BackendErrorSurfacedVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "you already have an active order"})
	})

	_, err := client.PlaceOrder(context.Background(), PlaceOrderRequest{UserEmail: "user@hayas.app"})
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusConflict, backendErr.StatusCode)
	assert.Equal(t, "you already have an active order", backendErr.Message)
}

func TestClient_RetryOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/order-1/retry", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "order re-opened",
			"order":   model.Order{ID: "order-1", Status: model.StatusPending},
		})
	})

	order, err := client.RetryOrder(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)
}

func TestClient_OrdersByEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/user@hayas.app", r.URL.Path)
		json.NewEncoder(w).Encode([]model.Order{
			{ID: "new", Status: model.StatusPending},
			{ID: "old", Status: model.StatusDelivered},
		})
	})

	orders, err := client.OrdersByEmail(context.Background(), "user@hayas.app")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "new", orders[0].ID)
}

func TestClient_DeliveryPartnerByEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/delivery-partner/by-email", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"userDetails": PartnerDetails{Name: "Demo Partner", Phone: "+910000000000", Email: "partner@hayas.app"},
		})
	})

	partner, err := client.DeliveryPartnerByEmail(context.Background(), "partner@hayas.app")
	require.NoError(t, err)
	assert.Equal(t, "Demo Partner", partner.Name)
}

func TestClient_DeliveryPartnerByEmail_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "delivery partner not found"})
	})

	_, err := client.DeliveryPartnerByEmail(context.Background(), "nobody@hayas.app")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.OrdersByEmail(ctx, "user@hayas.app")
	require.Error(t, err)
}
