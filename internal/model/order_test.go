package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Classification(t *testing.T) {
	tests := []struct {
		status     OrderStatus
		active     bool
		terminal   bool
		clearsCart bool
	}{
		{StatusPending, true, false, false},
		{StatusConfirmed, true, false, true},
		{StatusDelivered, false, true, true},
		{StatusCancelled, false, true, false},
		{StatusTimeout, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.Valid())
			assert.Equal(t, tt.active, tt.status.Active())
			assert.Equal(t, tt.terminal, tt.status.Terminal())
			assert.Equal(t, tt.clearsCart, tt.status.ClearsCart())
		})
	}

	assert.False(t, OrderStatus("SHIPPED").Valid())
}

func TestOrderStatus_CanTransition(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled, StatusTimeout},
		StatusConfirmed: {StatusDelivered},
		StatusTimeout:   {StatusPending},
		StatusDelivered: {},
		StatusCancelled: {},
	}

	all := []OrderStatus{StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled, StatusTimeout}
	for from, nexts := range allowed {
		ok := make(map[OrderStatus]bool)
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransition(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestOrderStatus_Badge(t *testing.T) {
	for _, s := range []OrderStatus{StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled, StatusTimeout} {
		badge := s.Badge()
		assert.NotEmpty(t, badge.Label, "status %s", s)
		assert.NotEmpty(t, badge.Color, "status %s", s)
	}

	// Unknown backend values get a neutral badge, not a panic.
	badge := OrderStatus("SHIPPED").Badge()
	assert.Equal(t, "SHIPPED", badge.Label)
}

func TestAddress_Complete(t *testing.T) {
	addr := Address{Name: "Sadaq", Phone: "9876543210", Street: "12 Main St", Area: "Eruvadi"}
	assert.True(t, addr.Complete())

	// DefaultAddress is app-provided and not required.
	addr.DefaultAddress = ""
	assert.True(t, addr.Complete())

	for _, clear := range []func(*Address){
		func(a *Address) { a.Name = "" },
		func(a *Address) { a.Phone = "" },
		func(a *Address) { a.Street = "" },
		func(a *Address) { a.Area = "" },
	} {
		a := addr
		clear(&a)
		assert.False(t, a.Complete())
	}
}

func TestOrder_AssignedPartnerEmail(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	order := &Order{
		ID: "o1",
		StatusHistory: []StatusEntry{
			{Email: "user@hayas.app", Status: StatusPending, UpdatedAt: base},
			{Email: "partner-a@hayas.app", Status: StatusConfirmed, UpdatedAt: base.Add(time.Minute)},
			{Email: "partner-b@hayas.app", Status: StatusConfirmed, UpdatedAt: base.Add(2 * time.Minute)},
		},
	}

	assert.Equal(t, "partner-b@hayas.app", order.AssignedPartnerEmail())

	never := &Order{ID: "o2", StatusHistory: []StatusEntry{
		{Email: "user@hayas.app", Status: StatusPending, UpdatedAt: base},
	}}
	assert.Equal(t, "", never.AssignedPartnerEmail())
}

func TestHasActiveOrder(t *testing.T) {
	assert.False(t, HasActiveOrder(nil))
	assert.False(t, HasActiveOrder([]Order{
		{ID: "a", Status: StatusDelivered},
		{ID: "b", Status: StatusCancelled},
	}))
	assert.True(t, HasActiveOrder([]Order{
		{ID: "a", Status: StatusDelivered},
		{ID: "b", Status: StatusTimeout},
	}))
}

func TestLatestActiveOrder(t *testing.T) {
	orders := []Order{
		{ID: "newest", Status: StatusDelivered},
		{ID: "active", Status: StatusPending},
		{ID: "older-active", Status: StatusTimeout},
	}

	got := LatestActiveOrder(orders)
	require.NotNil(t, got)
	assert.Equal(t, "active", got.ID)

	assert.Nil(t, LatestActiveOrder([]Order{{ID: "done", Status: StatusCancelled}}))
}
