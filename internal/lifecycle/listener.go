package lifecycle

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/realtime"
)

// Listener bridges the per-identity realtime channel to controller
// calls. It owns the channel subscription for the duration of Run:
// join on entry, close and stop the countdown on every exit path.
type Listener struct {
	channel    realtime.Channel
	controller *Controller
	identity   string
	logger     zerolog.Logger
}

// NewListener creates a listener for the identity's room.
func NewListener(channel realtime.Channel, controller *Controller, identity string, logger zerolog.Logger) *Listener {
	return &Listener{
		channel:    channel,
		controller: controller,
		identity:   identity,
		logger:     logger.With().Str("component", "listener").Logger(),
	}
}

// Run joins the room and dispatches events until the context is
// cancelled or the channel ends. Teardown is unconditional: the
// subscription is released and any running timer stopped whether Run
// exits through cancellation, stream end, or a join failure.
func (l *Listener) Run(ctx context.Context) error {
	defer func() {
		if err := l.channel.Close(); err != nil {
			l.logger.Warn().Err(err).Msg("failed to close realtime channel")
		}
		l.controller.Detach()
	}()

	if err := l.channel.Join(ctx, l.identity); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-l.channel.Events():
			if !ok {
				l.logger.Info().Msg("realtime stream ended")
				return nil
			}
			l.dispatch(ev)
		}
	}
}

// dispatch maps one inbound event to a controller transition. Events
// are applied in arrival order; there is no reordering or deduplication
// beyond last-write-wins per order id.
func (l *Listener) dispatch(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventOrderStatusUpdated:
		l.controller.HandleStatusUpdate(ev.Order)
	case realtime.EventOrderTimeout:
		l.controller.HandleTimeout(ev.Order)
	default:
		l.logger.Debug().Str("type", string(ev.Type)).Msg("dropping unrecognised event")
	}
}
