package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.helloHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "ludo-server"}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(jsonResp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status":    "ok",
		"room_code": s.room.Code(),
	}
	if s.historyStore != nil {
		health["history"] = "enabled"
	}
	resp, err := json.Marshal(health)
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connectionManager.AddConnection(connectionID, socket)
	s.connectionHealth.UpdateActivity(connectionID)

	defer func() {
		token := s.connectionManager.GetTokenByConnection(connectionID)

		s.connectionManager.RemoveConnection(connectionID)
		s.rateLimiter.RemoveConnection(connectionID)
		s.connectionHealth.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)

		if token != "" {
			s.room.Do(func() { s.room.handleDisconnect(token) })
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		s.connectionHealth.UpdateActivity(connectionID)
		if !s.rateLimiter.Allow(connectionID) {
			s.sendError(socket, ctx, "RATE_LIMITED: Too many messages, slow down")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			s.sendError(socket, ctx, "Invalid JSON")
			continue
		}

		s.dispatch(socket, ctx, connectionID, msg)
	}
}

// dispatch routes one decoded message. Ping is answered on the read loop;
// everything else is posted into the room goroutine, which serializes all
// game access.
func (s *Server) dispatch(socket *websocket.Conn, ctx context.Context, connectionID string, msg ClientMessage) {
	room := s.room

	switch msg.Type {
	case "ping":
		if err := sendMessage(socket, ctx, ServerMessage{Type: "pong", Payload: struct{}{}}); err != nil {
			log.Printf("Failed to send pong to %s: %v", connectionID, err)
		}

	case "join":
		var req JoinRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(socket, ctx, "Invalid join payload")
			return
		}
		room.Do(func() { room.handleJoin(socket, connectionID, req) })

	case "reconnect":
		var req ReconnectRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(socket, ctx, "Invalid reconnect payload")
			return
		}
		room.Do(func() { room.handleReconnect(socket, connectionID, req) })

	case "select_color":
		var req SelectColorRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(socket, ctx, "Invalid select_color payload")
			return
		}
		room.Do(func() { room.handleSelectColor(socket, connectionID, req) })

	case "set_ready":
		var req SetReadyRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(socket, ctx, "Invalid set_ready payload")
			return
		}
		room.Do(func() { room.handleSetReady(socket, connectionID, req) })

	case "start_game":
		room.Do(func() { room.handleStartGame(socket, connectionID) })

	case "roll_dice":
		room.Do(func() { room.handleRollDice(socket, connectionID) })

	case "move_piece":
		var req MovePieceRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			s.sendError(socket, ctx, "Invalid move_piece payload")
			return
		}
		room.Do(func() { room.handleMovePiece(socket, connectionID, req) })

	case "skip_turn":
		room.Do(func() { room.handleSkipTurn(socket, connectionID) })

	case "new_game":
		room.Do(func() { room.handleNewGame(socket, connectionID) })

	case "end_solo_game":
		room.Do(func() { room.handleEndSoloGame(socket, connectionID) })

	case "leave_lobby":
		room.Do(func() { room.handleLeaveLobby(socket, connectionID) })

	default:
		log.Printf("Unknown message type '%s' from %s", msg.Type, connectionID)
		s.sendError(socket, ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func sendMessage(socket *websocket.Conn, ctx context.Context, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return socket.Write(ctx, websocket.MessageText, data)
}

func (s *Server) sendError(socket *websocket.Conn, ctx context.Context, message string) {
	response := ServerMessage{
		Type:    "error",
		Payload: ErrorMessage{Message: message},
	}
	if err := sendMessage(socket, ctx, response); err != nil {
		log.Printf("Failed to send error message: %v", err)
	}
}
