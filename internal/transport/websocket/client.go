package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// connection pairs a socket with its write lock; gorilla connections allow
// only one concurrent writer.
type connection struct {
	conn     *websocket.Conn
	clientID string
	writeMu  sync.Mutex
}

// ConnectionManager tracks open sockets by connection id.
type ConnectionManager struct {
	connections map[string]*connection
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*connection),
	}
}

func (cm *ConnectionManager) AddConnection(connID, clientID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.connections[connID]; exists {
		old.conn.Close()
	}
	cm.connections[connID] = &connection{conn: conn, clientID: clientID}
}

func (cm *ConnectionManager) RemoveConnection(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if c, exists := cm.connections[connID]; exists {
		c.conn.Close()
		delete(cm.connections, connID)
	}
}

// SendMessage writes a JSON message to one connection. Unknown ids are ignored.
func (cm *ConnectionManager) SendMessage(connID string, message ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.connections[connID]
	cm.mu.RUnlock()

	if !exists {
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// Ping sends a ping frame under the connection's write lock.
func (cm *ConnectionManager) Ping(connID string) error {
	cm.mu.RLock()
	c, exists := cm.connections[connID]
	cm.mu.RUnlock()

	if !exists {
		return websocket.ErrCloseSent
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll sends a going-away close frame to every socket and forgets them.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, c := range cm.connections {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
		delete(cm.connections, id)
	}
}
