package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"nft-marketplace/pkg/logger"
)

// Connection wraps a gorilla websocket connection. Writes are
// serialized because gorilla allows only one concurrent writer.
type Connection struct {
	conn     *websocket.Conn
	clientID string
	log      logger.Logger
	writeMu  sync.Mutex
	closed   bool
}

func NewConnection(conn *websocket.Conn, clientID string, log logger.Logger) *Connection {
	return &Connection{
		conn:     conn,
		clientID: clientID,
		log:      log,
	}
}

func (c *Connection) Send(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(message)
}

func (c *Connection) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Connection) ClientID() string {
	return c.clientID
}
