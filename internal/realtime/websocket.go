package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
)

// joinFrame is the outbound subscription message. The room is the
// identity's email; the backend scopes all order events to it.
type joinFrame struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// Socket implements Channel over a websocket connection.
type Socket struct {
	conn         *websocket.Conn
	events       chan Event
	pingInterval time.Duration
	logger       zerolog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to the realtime endpoint. The returned Socket is not
// subscribed to anything until Join is called.
func Dial(ctx context.Context, cfg config.RealtimeConfig, logger zerolog.Logger) (*Socket, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.DialTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to realtime endpoint %s: %w", cfg.URL, err)
	}

	s := &Socket{
		conn:         conn,
		events:       make(chan Event, 16),
		pingInterval: cfg.PingInterval,
		logger:       logger.With().Str("component", "realtime").Logger(),
	}
	s.closed = make(chan struct{})
	return s, nil
}

// Join subscribes to the identity's room and starts the read and ping
// loops. Call at most once per connection.
func (s *Socket) Join(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity is required to join a room")
	}

	frame := joinFrame{Type: "join", Room: identity}
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetWriteDeadline(deadline)
	}
	if err := s.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to join room %s: %w", identity, err)
	}
	s.conn.SetWriteDeadline(time.Time{})

	s.logger.Info().Str("room", identity).Msg("joined realtime room")

	go s.readLoop()
	if s.pingInterval > 0 {
		go s.pingLoop()
	}
	return nil
}

// Events returns the inbound event stream.
func (s *Socket) Events() <-chan Event {
	return s.events
}

// Close tears the connection down. The read loop notices and closes the
// event channel, releasing any listener.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		deadline := time.Now().Add(time.Second)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		err = s.conn.Close()
		s.logger.Info().Msg("realtime connection closed")
	})
	return err
}

// readLoop decodes inbound frames into Events until the connection
// ends. Frames that do not decode, or carry an unknown type, are logged
// and dropped rather than killing the stream.
func (s *Socket) readLoop() {
	defer close(s.events)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				// Expected: Close was called.
			default:
				s.logger.Warn().Err(err).Msg("realtime read failed, stream ended")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.logger.Warn().Err(err).Msg("dropping undecodable realtime frame")
			continue
		}

		switch ev.Type {
		case EventOrderStatusUpdated, EventOrderTimeout:
		default:
			s.logger.Debug().Str("type", string(ev.Type)).Msg("dropping unrecognised realtime event")
			continue
		}

		select {
		case s.events <- ev:
		case <-s.closed:
			return
		}
	}
}

// pingLoop keeps the connection alive through idle periods.
func (s *Socket) pingLoop() {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Warn().Err(err).Msg("realtime ping failed")
				return
			}
		}
	}
}
