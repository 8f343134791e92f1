package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub manages connected WebSocket clients and broadcasts pipeline
// milestones to all of them. The zero value is not usable; call NewHub.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary dev origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and keeps it
// registered until the client disconnects. Inbound messages are echoed,
// matching the original frontend handshake.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	h.add(conn)
	defer h.remove(conn)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.echo(conn, mt, msg); err != nil {
			return
		}
	}
}

// echo writes the reply under the hub lock so it cannot interleave with a
// broadcast on the same connection.
func (h *Hub) echo(conn *websocket.Conn, messageType int, msg []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteMessage(messageType, append([]byte("Response: "), msg...))
}

// Send broadcasts text to every connected client. Connections that fail to
// write are dropped; the send itself never reports an error to the caller.
func (h *Hub) Send(_ context.Context, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			h.logger.Warn("dropping websocket client", "error", err)
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	h.logger.Debug("websocket client connected", "clients", len(h.conns))
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = conn.Close()
	delete(h.conns, conn)
	h.logger.Debug("websocket client disconnected", "clients", len(h.conns))
}

// Compile-time check that Hub implements Notifier.
var _ Notifier = (*Hub)(nil)
