package server

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"ludo-server/internal/history"
	"ludo-server/internal/ludo"
)

// Room owns the single authoritative game session. Every mutation goes
// through the ops channel and is applied by the one run goroutine, so the
// game never sees concurrent access: client intents, disconnect sweeps and
// bot turns are all serialized in arrival order.
type Room struct {
	code  string
	game  *ludo.Game
	grace time.Duration

	connectionManager *ConnectionManager
	sessionManager    *SessionManager
	historyStore      *history.Store // nil when no DATABASE_URL

	ops chan func()

	timerMu     sync.Mutex
	graceTimers map[string]*time.Timer // playerID -> pending sweep
}

func NewRoom(game *ludo.Game, cm *ConnectionManager, sm *SessionManager, hs *history.Store, grace time.Duration) *Room {
	return &Room{
		code:              GenerateRoomCode(),
		game:              game,
		grace:             grace,
		connectionManager: cm,
		sessionManager:    sm,
		historyStore:      hs,
		ops:               make(chan func(), 64),
		graceTimers:       make(map[string]*time.Timer),
	}
}

func (r *Room) Code() string {
	return r.code
}

// Run drains the op channel until the context ends. Exactly one Run per room.
func (r *Room) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-r.ops:
			op()
		}
	}
}

// Do posts work into the room goroutine.
func (r *Room) Do(op func()) {
	r.ops <- op
}

// identify resolves a connection to its session, or reports why it can't.
func (r *Room) identify(connectionID string) (SessionInfo, error) {
	token := r.connectionManager.GetTokenByConnection(connectionID)
	if token == "" {
		return SessionInfo{}, errors.New("NOT_JOINED: No active game session")
	}
	return r.sessionManager.GetSession(token)
}

func (r *Room) handleJoin(conn *websocket.Conn, connectionID string, req JoinRequest) {
	if err := ValidateName(req.Name); err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if token := r.connectionManager.GetTokenByConnection(connectionID); token != "" {
		r.sendError(conn, "ALREADY_JOINED: Connection already has a player")
		return
	}
	if r.game.Status == ludo.StatusPlaying {
		r.sendError(conn, "GAME_IN_PROGRESS: Game already running, reconnect with a token")
		return
	}
	if r.game.SoloMode {
		r.sendError(conn, "SOLO_ROOM: A solo game is set up in this room")
		return
	}
	if req.SoloMode && len(r.game.Players()) > 0 {
		r.sendError(conn, "NOT_SOLO: Solo mode needs an empty room")
		return
	}

	p, err := r.game.AddPlayer(req.Name, false)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if req.SoloMode {
		r.game.SoloMode = true
		r.game.SoloPlayerID = p.ID
	}

	token := uuid.New().String()
	r.sessionManager.StoreSession(SessionInfo{
		Token:    token,
		PlayerID: p.ID,
		Name:     p.Name,
	})
	r.connectionManager.BindToken(connectionID, token)

	log.Printf("[ROOM %s] %s joined as player %s (solo=%v)", r.code, p.Name, p.ID, req.SoloMode)

	r.sendMessage(conn, ServerMessage{
		Type: "joined",
		Payload: JoinedResponse{
			Token:    token,
			PlayerID: p.ID,
			RoomCode: r.code,
		},
	})
	r.broadcastLobbyState()
}

func (r *Room) handleReconnect(conn *websocket.Conn, connectionID string, req ReconnectRequest) {
	session, err := r.sessionManager.GetSession(req.Token)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}

	r.cancelGraceTimer(session.PlayerID)
	r.sessionManager.SetDisconnectDeadline(req.Token, time.Time{})

	// Newer connection wins; the older holder is told and closed.
	if oldConnectionID := r.connectionManager.BindToken(connectionID, req.Token); oldConnectionID != "" {
		if oldConn := r.connectionManager.GetConnection(oldConnectionID); oldConn != nil {
			r.sendMessage(oldConn, ServerMessage{
				Type: "disconnected_elsewhere",
				Payload: DisconnectedElsewhereMessage{
					Message: "You connected on another device",
				},
			})
			oldConn.Close(websocket.StatusNormalClosure, "Connected from another device")
		}
		r.connectionManager.RemoveConnection(oldConnectionID)
	}

	r.game.MarkConnected(session.PlayerID)
	log.Printf("[ROOM %s] %s reconnected", r.code, session.Name)

	r.sendMessage(conn, ServerMessage{
		Type: "reconnected",
		Payload: ReconnectResponse{
			PlayerID: session.PlayerID,
			RoomCode: r.code,
			Message:  "Successfully reconnected",
		},
	})

	r.broadcast("player_reconnected", PlayerStatusNotification{
		PlayerID: session.PlayerID,
		Name:     session.Name,
	})

	if r.game.Status == ludo.StatusWaiting {
		r.broadcastLobbyState()
	} else {
		r.broadcastGameState()
	}
}

func (r *Room) handleSelectColor(conn *websocket.Conn, connectionID string, req SelectColorRequest) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if err := r.game.SelectColor(session.PlayerID, ludo.Color(req.Color)); err != nil {
		r.sendError(conn, err.Error())
		return
	}
	r.broadcastLobbyState()
}

func (r *Room) handleSetReady(conn *websocket.Conn, connectionID string, req SetReadyRequest) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if err := r.game.SetReady(session.PlayerID, req.Ready); err != nil {
		r.sendError(conn, err.Error())
		return
	}
	r.broadcastLobbyState()
}

func (r *Room) handleStartGame(conn *websocket.Conn, connectionID string) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}

	if r.game.SoloMode {
		if !r.game.CanStart() {
			r.sendError(conn, ludo.ErrCannotStart.Error())
			return
		}
		r.addBots()
	}

	if err := r.game.Start(); err != nil {
		r.sendError(conn, err.Error())
		return
	}

	log.Printf("[ROOM %s] game started by %s with %d players", r.code, session.Name, len(r.game.Players()))

	r.broadcast("game_started", GameStartedNotification{
		Message: "Game is starting!",
	})
	r.broadcastGameState()
	r.driveBots()
}

// addBots fills the solo roster up to the table size with ready bots.
func (r *Room) addBots() {
	names := []string{"Bot 1", "Bot 2", "Bot 3"}
	for i := 0; len(r.game.Players()) < ludo.MaxPlayers && i < len(names); i++ {
		bot, err := r.game.AddPlayer(names[i], true)
		if err != nil {
			log.Printf("[ROOM %s] failed to add bot: %v", r.code, err)
			return
		}
		r.game.SetReady(bot.ID, true)
	}
}

func (r *Room) handleRollDice(conn *websocket.Conn, connectionID string) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	results, err := r.game.RollDice(session.PlayerID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}

	r.announceRoll(r.game.Player(session.PlayerID), results)
	r.broadcastGameState()
	r.driveBots()
}

func (r *Room) handleMovePiece(conn *websocket.Conn, connectionID string, req MovePieceRequest) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	result, err := r.game.MovePiece(session.PlayerID, req.PieceID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}

	r.broadcast("piece_moved", PieceMovedMessage{
		PlayerID: session.PlayerID,
		Result:   *result,
	})
	if r.game.Status == ludo.StatusFinished {
		r.announceGameEnd()
	}
	r.broadcastGameState()
	r.driveBots()
}

func (r *Room) handleSkipTurn(conn *websocket.Conn, connectionID string) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if err := r.game.SkipTurn(session.PlayerID); err != nil {
		r.sendError(conn, err.Error())
		return
	}

	r.broadcast("turn_skipped", TurnSkippedMessage{PlayerID: session.PlayerID})
	r.broadcastGameState()
	r.driveBots()
}

func (r *Room) handleNewGame(conn *websocket.Conn, connectionID string) {
	if _, err := r.identify(connectionID); err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if r.game.Status != ludo.StatusFinished {
		r.sendError(conn, "GAME_NOT_FINISHED: Game is still running")
		return
	}

	r.game.Reset()
	log.Printf("[ROOM %s] reset to lobby for a new game", r.code)
	r.broadcast("game_reset", GameResetMessage{Message: "Back to the lobby for a new game"})
	r.broadcastLobbyState()
}

func (r *Room) handleEndSoloGame(conn *websocket.Conn, connectionID string) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	if !r.game.SoloMode || session.PlayerID != r.game.SoloPlayerID {
		r.sendError(conn, ludo.ErrNotSolo.Error())
		return
	}

	log.Printf("[ROOM %s] solo game ended by %s", r.code, session.Name)
	r.broadcast("solo_game_ended", SoloGameEndedMessage{Message: "Solo game ended"})
	r.game.Reset()
	r.broadcastLobbyState()
}

func (r *Room) handleLeaveLobby(conn *websocket.Conn, connectionID string) {
	session, err := r.identify(connectionID)
	if err != nil {
		r.sendError(conn, err.Error())
		return
	}
	r.removePlayer(session, "left")
}

// handleDisconnect runs when a socket closes while still holding an identity.
// Lobby players are removed outright; in a running game the player keeps
// their seat for the grace window and is swept only if they do not return.
func (r *Room) handleDisconnect(token string) {
	session, err := r.sessionManager.GetSession(token)
	if err != nil {
		return // already removed via leave_lobby
	}

	if r.game.Status != ludo.StatusPlaying {
		r.removePlayer(session, "disconnected")
		return
	}

	turnMoved := r.game.MarkDisconnected(session.PlayerID)
	deadline := time.Now().Add(r.grace)
	r.sessionManager.SetDisconnectDeadline(token, deadline)
	r.armGraceTimer(session.PlayerID, token)

	log.Printf("[ROOM %s] %s disconnected, grace until %s", r.code, session.Name, deadline.Format(time.RFC3339))

	r.broadcast("player_disconnected", PlayerStatusNotification{
		PlayerID: session.PlayerID,
		Name:     session.Name,
	})
	r.broadcastGameState()
	if turnMoved {
		r.driveBots()
	}
}

// removePlayer drops the player from roster and identity maps, resetting the
// session if the game can no longer continue.
func (r *Room) removePlayer(session SessionInfo, reason string) {
	removed, forceReset := r.game.RemovePlayer(session.PlayerID)
	r.sessionManager.RemoveSession(session.Token)
	if connID := r.connectionManager.GetConnectionByToken(session.Token); connID != "" {
		r.connectionManager.RemoveConnection(connID)
	}
	if removed == nil {
		return
	}

	log.Printf("[ROOM %s] %s %s", r.code, session.Name, reason)
	r.broadcast("player_disconnected", PlayerStatusNotification{
		PlayerID: session.PlayerID,
		Name:     session.Name,
	})

	if forceReset {
		r.game.Reset()
		r.broadcast("game_reset", GameResetMessage{Message: "Not enough players, back to the lobby"})
		r.broadcastLobbyState()
		return
	}

	if r.game.Status == ludo.StatusPlaying {
		r.broadcastGameState()
		r.driveBots()
	} else {
		r.broadcastLobbyState()
	}
}

func (r *Room) armGraceTimer(playerID, token string) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
	}
	r.graceTimers[playerID] = time.AfterFunc(r.grace, func() {
		r.Do(func() { r.sweepPlayer(playerID, token) })
	})
}

func (r *Room) cancelGraceTimer(playerID string) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
		delete(r.graceTimers, playerID)
	}
}

// sweepPlayer fires after the grace window. The player is removed only if
// they are still gone: a reconnect clears the deadline before this runs.
func (r *Room) sweepPlayer(playerID, token string) {
	r.cancelGraceTimer(playerID)

	session, err := r.sessionManager.GetSession(token)
	if err != nil || session.DisconnectDeadline.IsZero() {
		return
	}
	if time.Now().Before(session.DisconnectDeadline) {
		return
	}

	log.Printf("[ROOM %s] grace window expired for %s", r.code, session.Name)
	r.removePlayer(session, "timed out")
}

// announceRoll broadcasts every throw of a roll intent, rerolls included.
func (r *Room) announceRoll(p *ludo.Player, results []ludo.RollResult) {
	if p == nil {
		return
	}
	for _, res := range results {
		r.broadcast("dice_rolled", DiceRolledMessage{
			PlayerID:               p.ID,
			PlayerName:             p.Name,
			DiceRoll:               res.Value,
			CanMovePawnIDs:         res.MovablePieceIDs,
			TurnEndedAutomatically: res.TurnEnded,
		})
	}
}

func (r *Room) announceGameEnd() {
	winner := r.game.Winner()
	if winner == nil {
		return
	}
	log.Printf("[ROOM %s] game won by %s", r.code, winner.Name)
	r.broadcast("game_end", GameEndMessage{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
	})
	r.recordResult(winner)
}

// recordResult archives the finished match, fire and forget. History is an
// outcome log only; failures never affect the session.
func (r *Room) recordResult(winner *ludo.Player) {
	if r.historyStore == nil {
		return
	}
	result := history.Result{
		RoomCode:   r.code,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Players:    r.game.PlayerStates(),
		FinishedAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.historyStore.RecordResult(ctx, result); err != nil {
			log.Printf("[HISTORY] failed to record result for room %s: %v", r.code, err)
		}
	}()
}

func (r *Room) buildLobbyState() LobbyStateMessage {
	return LobbyStateMessage{
		RoomCode:        r.code,
		Status:          r.game.Status,
		Players:         r.game.PlayerStates(),
		CanStart:        r.game.CanStart(),
		AvailableColors: r.game.AvailableColors(),
		AllColors:       ludo.Colors,
		SoloMode:        r.game.SoloMode,
	}
}

func (r *Room) broadcastLobbyState() {
	r.broadcast("lobby_state", r.buildLobbyState())
}

func (r *Room) broadcastGameState() {
	r.broadcast("game_state", GameStateMessage{State: r.game.ClientState()})
}

// broadcast sends one message to every live connection with a session.
func (r *Room) broadcast(messageType string, payload interface{}) {
	msg := ServerMessage{Type: messageType, Payload: payload}
	for _, session := range r.sessionManager.GetAllSessions() {
		connID := r.connectionManager.GetConnectionByToken(session.Token)
		if connID == "" {
			continue
		}
		conn := r.connectionManager.GetConnection(connID)
		if conn == nil {
			continue
		}
		r.sendMessage(conn, msg)
	}
}

// writeTimeout bounds every write issued from the room goroutine so one
// stalled socket cannot hold up the whole session.
var writeTimeout = 5 * time.Second

func (r *Room) sendMessage(conn *websocket.Conn, msg ServerMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := sendMessage(conn, ctx, msg); err != nil {
		log.Printf("[ROOM %s] failed to send %s: %v", r.code, msg.Type, err)
	}
}

func (r *Room) sendError(conn *websocket.Conn, message string) {
	r.sendMessage(conn, ServerMessage{
		Type:    "error",
		Payload: ErrorMessage{Message: message},
	})
}

// botPick chooses uniformly among the movable pieces.
func botPick(ids []string) string {
	return ids[rand.IntN(len(ids))]
}
