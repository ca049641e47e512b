package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"ludo-server/internal/history"
	"ludo-server/internal/ludo"
)

const (
	defaultPort            = 8080
	defaultDisconnectGrace = 120 * time.Second

	// Original limits: 30 messages per 10 second window per connection.
	rateLimitMessages = 30
	rateLimitWindow   = 10 * time.Second
)

type Server struct {
	port int

	room              *Room
	connectionManager *ConnectionManager
	sessionManager    *SessionManager
	rateLimiter       *RateLimiter
	connectionHealth  *ConnectionHealth
	historyStore      *history.Store

	cancelRoom context.CancelFunc
}

// NewServer wires the single room and its transport and returns it alongside
// the configured HTTP server.
func NewServer() (*Server, *http.Server) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = defaultPort
	}

	grace := defaultDisconnectGrace
	if raw := os.Getenv("DISCONNECT_GRACE"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			grace = time.Duration(seconds) * time.Second
		}
	}

	var historyStore *history.Store
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		historyStore, err = history.NewStore(ctx, databaseURL)
		cancel()
		if err != nil {
			log.Printf("Warning: history disabled, database unavailable: %v", err)
			historyStore = nil
		} else {
			log.Println("Match history archive enabled")
		}
	}

	connectionManager := NewConnectionManager()
	sessionManager := NewSessionManager()
	game := ludo.NewGame()
	room := NewRoom(game, connectionManager, sessionManager, historyStore, grace)

	s := &Server{
		port:              port,
		room:              room,
		connectionManager: connectionManager,
		sessionManager:    sessionManager,
		rateLimiter:       NewRateLimiter(rateLimitMessages, rateLimitWindow),
		connectionHealth:  NewConnectionHealth(),
		historyStore:      historyStore,
	}

	roomCtx, cancelRoom := context.WithCancel(context.Background())
	s.cancelRoom = cancelRoom
	go room.Run(roomCtx)
	go s.cleanupTask(roomCtx)

	log.Printf("Room %s ready, disconnect grace %s", room.Code(), grace)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, httpServer
}

// Shutdown stops the room goroutine and releases the history pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelRoom()
	if s.historyStore != nil {
		s.historyStore.Close()
	}
	return nil
}

// cleanupTask periodically drops stale rate-limiter entries.
func (s *Server) cleanupTask(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rateLimiter.Cleanup()
			if stale := s.connectionHealth.GetInactiveConnections(30 * time.Minute); len(stale) > 0 {
				log.Printf("[CLEANUP] %d inactive connections", len(stale))
			}
		}
	}
}
