// Package stream is the WebSocket transport for room events. Clients
// mutate rooms through the HTTP API; the socket only carries outbound
// events, so inbound messages are drained and ignored.
package stream

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pointing/internal/app"
	"github.com/dkeye/Pointing/internal/config"
	"github.com/dkeye/Pointing/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Cfg      *config.Config
	Registry *app.Registry
	Hub      *app.Hub
}

// wsConn adapts one websocket to the hub's ConnSink. TrySend is a
// non-blocking enqueue; the write pump owns the socket.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSubscribe upgrades the request and binds the connection to the
// (room, participant) pair. The participant must already have joined
// over HTTP.
func (ctl *Controller) HandleSubscribe(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("room_id"))
	participantID := domain.ParticipantID(c.Param("participant_id"))

	svc, err := ctl.Registry.Get(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": err.Error(), "code": http.StatusNotFound}})
		return
	}
	if !svc.Has(participantID) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "participant not found", "code": http.StatusNotFound}})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "stream").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "stream").Str("room", string(roomID)).
		Str("participant", string(participantID)).Str("ct", c.GetString("client_token")).
		Msg("new WS subscription")

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, ctl.Cfg.SendBuffer),
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	ctl.Hub.Register(roomID, participantID, conn)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, conn)
}
