package ludo

import "errors"

// Validation failures. All of these leave the game untouched and are meant to
// be reported back to the offending sender only.
var (
	ErrNotYourTurn    = errors.New("NOT_YOUR_TURN: It is not your turn")
	ErrRollNotAllowed = errors.New("ROLL_NOT_ALLOWED: A roll is already pending a move")
	ErrNoDiceRolled   = errors.New("NO_DICE_ROLLED: Roll the dice first")
	ErrIllegalMove    = errors.New("ILLEGAL_MOVE: That piece has no legal move for this roll")
	ErrColorTaken     = errors.New("COLOR_TAKEN: That color is already taken")
	ErrInvalidColor   = errors.New("INVALID_COLOR: Unknown color")
	ErrRoomFull       = errors.New("ROOM_FULL: The game already has 4 players")
	ErrNameTaken      = errors.New("NAME_TAKEN: That name is already in use")
	ErrCannotStart    = errors.New("CANNOT_START: Need 2-4 ready players in the lobby")
	ErrNotSolo        = errors.New("NOT_SOLO: Only allowed in solo mode")
	ErrNotPlaying     = errors.New("GAME_NOT_RUNNING: The game is not in progress")
	ErrUnknownPlayer  = errors.New("UNKNOWN_PLAYER: No such player")
	ErrUnknownPiece   = errors.New("UNKNOWN_PIECE: No such piece")
	ErrWrongStatus    = errors.New("WRONG_STATUS: Action not allowed in the current game status")
)
