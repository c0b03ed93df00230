package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/realtime"
)

// hub fans realtime events out to websocket connections grouped into
// rooms named by identity email.
type hub struct {
	mu       sync.Mutex
	rooms    map[string]map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func newHub(logger zerolog.Logger) *hub {
	return &hub{
		rooms: make(map[string]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// Dev server: accept any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// ServeWS upgrades the request and waits for a join frame, then parks
// the connection in its room until the peer goes away.
func (h *hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	var join struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	if err := conn.ReadJSON(&join); err != nil || join.Type != "join" || join.Room == "" {
		h.logger.Warn().Err(err).Msg("websocket peer did not join a room")
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	h.add(join.Room, conn)
	h.logger.Info().Str("room", join.Room).Msg("peer joined room")

	// Drain inbound frames (pings, close) until the peer disconnects.
	go func() {
		defer h.remove(join.Room, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends an event to every connection in the room.
func (h *hub) Broadcast(room string, eventType realtime.EventType, order model.Order) {
	ev := realtime.Event{Type: eventType, Order: order}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[room]))
	for conn := range h.rooms[room] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn().Err(err).Str("room", room).Msg("broadcast failed, dropping peer")
			h.remove(room, conn)
		}
	}

	h.logger.Debug().
		Str("room", room).
		Str("type", string(eventType)).
		Str("order_id", order.ID).
		Int("peers", len(conns)).
		Msg("event broadcast")
}

// roomSize returns how many peers are parked in the room.
func (h *hub) roomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *hub) add(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[room][conn] = struct{}{}
}

func (h *hub) remove(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.rooms[room]; ok {
		if _, present := peers[conn]; present {
			delete(peers, conn)
			conn.Close()
		}
		if len(peers) == 0 {
			delete(h.rooms, room)
		}
	}
}

// CloseAll drops every connection, used at shutdown.
func (h *hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, peers := range h.rooms {
		for conn := range peers {
			conn.Close()
		}
		delete(h.rooms, room)
	}
}
