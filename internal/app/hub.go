package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/domain"
)

// ConnSink is the transport side of one connection binding. TrySend must
// never block: implementations queue the payload and report failure when
// the queue is full or the connection is closed.
type ConnSink interface {
	TrySend(data []byte) error
	Close()
}

type binding struct {
	room        domain.RoomID
	participant domain.ParticipantID
}

// Hub owns the connection bindings, per room. Broadcast delivers to
// every bound connection; a connection that refuses delivery is
// unregistered and closed, never an error for the broadcast itself.
type Hub struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]map[ConnSink]*binding
	conns map[ConnSink]*binding
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[domain.RoomID]map[ConnSink]*binding),
		conns: make(map[ConnSink]*binding),
	}
}

// Register binds a connection. At most one binding per connection; the
// same participant may hold several connections (multi-tab) and all of
// them receive identical events.
func (h *Hub) Register(room domain.RoomID, participant domain.ParticipantID, conn ConnSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[conn]; ok {
		delete(h.rooms[old.room], conn)
	}
	b := &binding{room: room, participant: participant}
	h.conns[conn] = b
	set, ok := h.rooms[room]
	if !ok {
		set = make(map[ConnSink]*binding)
		h.rooms[room] = set
	}
	set[conn] = b
	log.Info().Str("module", "app.hub").Str("room", string(room)).
		Str("participant", string(participant)).Int("room_conns", len(set)).Msg("connection registered")
}

// Unregister is idempotent: unknown or already removed connections are a
// no-op.
func (h *Hub) Unregister(conn ConnSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(conn)
}

func (h *Hub) unregisterLocked(conn ConnSink) {
	b, ok := h.conns[conn]
	if !ok {
		return
	}
	delete(h.conns, conn)
	if set, ok := h.rooms[b.room]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.rooms, b.room)
		}
	}
	log.Info().Str("module", "app.hub").Str("room", string(b.room)).
		Str("participant", string(b.participant)).Msg("connection unregistered")
}

// Broadcast fans one payload out to every connection bound to the room.
// Delivery is a non-blocking enqueue; connections that fail are treated
// as gone and cleaned up after the fan-out.
func (h *Hub) Broadcast(room domain.RoomID, payload []byte) {
	h.mu.RLock()
	set := h.rooms[room]
	targets := make([]ConnSink, 0, len(set))
	for conn := range set {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	var dead []ConnSink
	for _, conn := range targets {
		if err := conn.TrySend(payload); err != nil {
			dead = append(dead, conn)
		}
	}
	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, conn := range dead {
		h.unregisterLocked(conn)
	}
	h.mu.Unlock()
	for _, conn := range dead {
		conn.Close()
	}
	log.Warn().Str("module", "app.hub").Str("room", string(room)).
		Int("dropped", len(dead)).Msg("dropped broken connections")
}

// RoomConns reports how many connections are bound to a room.
func (h *Hub) RoomConns(room domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
