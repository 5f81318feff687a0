package websocket

import (
	"sync"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// ConnectionManager tracks every client subscribed to the market event
// stream and fans committed state transitions out to all of them.
type ConnectionManager struct {
	connections map[string]domain.WebSocketConnection
	mutex       sync.RWMutex
	log         logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]domain.WebSocketConnection),
		log:         log,
	}
}

func (cm *ConnectionManager) RegisterConnection(clientID string, conn domain.WebSocketConnection) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if existing, ok := cm.connections[clientID]; ok {
		existing.Close()
	}
	cm.connections[clientID] = conn

	cm.log.Info("Connection registered", "client_id", clientID)
	return nil
}

func (cm *ConnectionManager) UnregisterConnection(clientID string) error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	delete(cm.connections, clientID)

	cm.log.Info("Connection unregistered", "client_id", clientID)
	return nil
}

func (cm *ConnectionManager) Broadcast(message interface{}) error {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for clientID, conn := range cm.connections {
		if err := conn.Send(message); err != nil {
			cm.log.Error("Failed to send to client", "client_id", clientID, "error", err)
		}
	}
	return nil
}

func (cm *ConnectionManager) CloseAll() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	for clientID, conn := range cm.connections {
		if err := conn.Close(); err != nil {
			cm.log.Error("Failed to close connection", "client_id", clientID, "error", err)
		}
	}
	cm.connections = make(map[string]domain.WebSocketConnection)
	return nil
}

// ConnectionCount is used by the stream service health endpoint.
func (cm *ConnectionManager) ConnectionCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.connections)
}
