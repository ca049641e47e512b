package server

import (
	"sync"

	"github.com/coder/websocket"
)

// ConnectionManager maps live sockets to session tokens. A token holds at
// most one connection: binding a new one reports the previous holder so the
// caller can close it.
type ConnectionManager struct {
	connections map[string]*websocket.Conn // connectionID -> socket
	tokens      map[string]string          // connectionID -> token
	byToken     map[string]string          // token -> connectionID
	mu          sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		tokens:      make(map[string]string),
		byToken:     make(map[string]string),
	}
}

func (cm *ConnectionManager) AddConnection(id string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[id] = conn
}

func (cm *ConnectionManager) RemoveConnection(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.connections, id)
	if token, ok := cm.tokens[id]; ok {
		delete(cm.tokens, id)
		if cm.byToken[token] == id {
			delete(cm.byToken, token)
		}
	}
}

// BindToken attaches a token to a connection and returns the connectionID
// that previously held the token, or "".
func (cm *ConnectionManager) BindToken(connectionID, token string) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	previous := cm.byToken[token]
	if previous == connectionID {
		previous = ""
	}
	cm.tokens[connectionID] = token
	cm.byToken[token] = connectionID
	return previous
}

func (cm *ConnectionManager) GetTokenByConnection(connectionID string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.tokens[connectionID]
}

func (cm *ConnectionManager) GetConnectionByToken(token string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.byToken[token]
}

func (cm *ConnectionManager) GetConnection(connectionID string) *websocket.Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.connections[connectionID]
}
