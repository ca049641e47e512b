package server

import (
	"errors"
	"sync"
	"time"
)

var ErrInvalidToken = errors.New("INVALID_TOKEN: Invalid session token")

// SessionInfo ties a reconnect token to a player identity. DisconnectDeadline
// is zero while the player is connected; once set, the room sweeps the player
// out when the deadline passes without a reconnect.
type SessionInfo struct {
	Token              string
	PlayerID           string
	Name               string
	DisconnectDeadline time.Time
}

type SessionManager struct {
	sessions map[string]SessionInfo // token -> SessionInfo
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]SessionInfo),
	}
}

func (sm *SessionManager) StoreSession(info SessionInfo) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[info.Token] = info
}

func (sm *SessionManager) GetSession(token string) (SessionInfo, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[token]
	if !exists {
		return SessionInfo{}, ErrInvalidToken
	}
	return session, nil
}

// TokenForPlayer finds the session token of a player, or "".
func (sm *SessionManager) TokenForPlayer(playerID string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for token, session := range sm.sessions {
		if session.PlayerID == playerID {
			return token
		}
	}
	return ""
}

// SetDisconnectDeadline arms or clears (zero time) the grace deadline.
func (sm *SessionManager) SetDisconnectDeadline(token string, deadline time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[token]; exists {
		session.DisconnectDeadline = deadline
		sm.sessions[token] = session
	}
}

// Used for players who leave or get swept after the grace window.
func (sm *SessionManager) RemoveSession(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

func (sm *SessionManager) GetAllSessions() []SessionInfo {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sessions := make([]SessionInfo, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}
