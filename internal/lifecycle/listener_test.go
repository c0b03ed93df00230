package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/realtime"
)

// fakeChannel is an in-memory realtime.Channel for driving the
// listener without a socket.
type fakeChannel struct {
	mu         sync.Mutex
	events     chan realtime.Event
	joinedRoom string
	closed     bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan realtime.Event, 8)}
}

func (f *fakeChannel) Join(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinedRoom = identity
	return nil
}

func (f *fakeChannel) Events() <-chan realtime.Event { return f.events }

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeChannel) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeChannel) room() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joinedRoom
}

func placeTestOrder(t *testing.T, controller *Controller, backend *MockOrderAPI, cartStore interface {
	UpdateQuantity(model.CartItem, model.QuantityAction) error
}) {
	t.Helper()
	require.NoError(t, cartStore.UpdateQuantity(model.CartItem{
		ProductID: "p1", Title: "Tomatoes", QuantityType: model.QuantityOne,
	}, model.ActionIncrease))
	backend.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(&model.Order{ID: "o1", Status: model.StatusPending, UserEmail: testIdentity}, nil)
	_, err := controller.PlaceOrder(context.Background(), completeAddress())
	require.NoError(t, err)
}

func TestListener_DispatchesStatusAndTimeoutEvents(t *testing.T) {
	backend := new(MockOrderAPI)
	controller, cartStore := newTestController(backend)
	placeTestOrder(t, controller, backend, cartStore)

	channel := newFakeChannel()
	listener := NewListener(channel, controller, testIdentity, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	require.Eventually(t, func() bool { return channel.room() == testIdentity },
		time.Second, 5*time.Millisecond, "listener joins the identity's room")

	channel.events <- realtime.Event{
		Type:  realtime.EventOrderStatusUpdated,
		Order: model.Order{ID: "o1", Status: model.StatusConfirmed},
	}
	require.Eventually(t, func() bool {
		return controller.Store().CurrentStatus() == model.StatusConfirmed
	}, time.Second, 5*time.Millisecond)

	channel.events <- realtime.Event{
		Type:  realtime.EventOrderTimeout,
		Order: model.Order{ID: "o1"},
	}
	require.Eventually(t, func() bool {
		return controller.Store().CurrentStatus() == model.StatusTimeout
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestListener_TeardownOnCancellation(t *testing.T) {
	backend := new(MockOrderAPI)
	controller, cartStore := newTestController(backend)
	placeTestOrder(t, controller, backend, cartStore)
	require.True(t, controller.Timer().Running())

	channel := newFakeChannel()
	listener := NewListener(channel, controller, testIdentity, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	cancel()
	<-done

	// Every exit path releases the subscription and stops the timer.
	assert.True(t, channel.isClosed(), "channel released on teardown")
	assert.False(t, controller.Timer().Running(), "timer stopped on teardown")
}

func TestListener_StreamEndIsCleanExit(t *testing.T) {
	backend := new(MockOrderAPI)
	controller, _ := newTestController(backend)

	channel := newFakeChannel()
	listener := NewListener(channel, controller, testIdentity, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- listener.Run(context.Background()) }()

	require.Eventually(t, func() bool { return channel.room() == testIdentity },
		time.Second, 5*time.Millisecond)

	channel.Close()
	assert.NoError(t, <-done)
}
