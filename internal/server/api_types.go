package server

import "ludo-server/internal/ludo"

// Client → server payloads.

type JoinRequest struct {
	Name     string `json:"name"`
	SoloMode bool   `json:"solo_mode"`
}

type ReconnectRequest struct {
	Token string `json:"token"`
}

type SelectColorRequest struct {
	Color string `json:"color"`
}

type SetReadyRequest struct {
	Ready bool `json:"ready"`
}

type MovePieceRequest struct {
	PieceID string `json:"piece_id"`
}

// Server → client payloads.

type JoinedResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"player_id"`
	RoomCode string `json:"room_code"`
}

type ReconnectResponse struct {
	PlayerID string `json:"player_id"`
	RoomCode string `json:"room_code"`
	Message  string `json:"message"`
}

type LobbyStateMessage struct {
	RoomCode        string             `json:"room_code"`
	Status          ludo.GameStatus    `json:"status"`
	Players         []ludo.PlayerState `json:"players"`
	CanStart        bool               `json:"can_start"`
	AvailableColors []ludo.Color       `json:"available_colors"`
	AllColors       []ludo.Color       `json:"all_colors"`
	SoloMode        bool               `json:"solo_mode"`
}

type GameStateMessage struct {
	State ludo.GameState `json:"state"`
}

type DiceRolledMessage struct {
	PlayerID               string   `json:"player_id"`
	PlayerName             string   `json:"player_name"`
	DiceRoll               int      `json:"dice_roll"`
	CanMovePawnIDs         []string `json:"can_move_pawn_ids"`
	TurnEndedAutomatically bool     `json:"turn_ended_automatically"`
}

type PieceMovedMessage struct {
	PlayerID string          `json:"player_id"`
	Result   ludo.MoveResult `json:"result"`
}

type GameEndMessage struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

type TurnSkippedMessage struct {
	PlayerID string `json:"player_id"`
}

type GameResetMessage struct {
	Message string `json:"message"`
}

type SoloGameEndedMessage struct {
	Message string `json:"message"`
}

type PlayerStatusNotification struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type GameStartedNotification struct {
	Message string `json:"message"`
}

type DisconnectedElsewhereMessage struct {
	Message string `json:"message"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
