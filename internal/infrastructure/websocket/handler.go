package websocket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// StreamHandler upgrades HTTP requests to websocket subscriptions on
// the market event stream.
type StreamHandler struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewStreamHandler(connManager domain.ConnectionManager, log logger.Logger) *StreamHandler {
	return &StreamHandler{
		connManager: connManager,
		log:         log,
	}
}

func (h *StreamHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.New().String()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewConnection(conn, clientID, h.log)

	if err := h.connManager.RegisterConnection(clientID, wsConn); err != nil {
		h.log.Error("Failed to register connection", "error", err)
		wsConn.Close()
		return
	}

	go h.readLoop(wsConn, clientID)
}

// readLoop drains client messages so pings are answered and closed
// connections are unregistered promptly. The stream is one-way:
// everything except ping is ignored.
func (h *StreamHandler) readLoop(conn *Connection, clientID string) {
	defer func() {
		h.connManager.UnregisterConnection(clientID)
		conn.Close()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.conn.ReadJSON(&msg); err != nil {
			h.log.Debug("Client disconnected", "client_id", clientID, "error", err)
			return
		}

		if msgType, ok := msg["type"].(string); ok && msgType == "ping" {
			conn.Send(map[string]string{"type": "pong"})
		}
	}
}
