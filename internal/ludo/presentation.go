package ludo

// Client-facing projections of the session. These carry everything a
// renderer needs to place every piece unambiguously; the server never sends
// less than this.

type PieceState struct {
	PieceID      string      `json:"piece_id"`
	Status       PieceStatus `json:"status"`
	Position     int         `json:"position"`
	HomePosition int         `json:"home_position"`
}

type PlayerState struct {
	PlayerID    string       `json:"player_id"`
	Name        string       `json:"name"`
	Color       Color        `json:"color"`
	Ready       bool         `json:"ready"`
	Connected   bool         `json:"connected"`
	IsBot       bool         `json:"is_bot"`
	PiecesCount int          `json:"pieces_count"`
	Stats       Stats        `json:"stats"`
	Pieces      []PieceState `json:"pieces"`
}

type GameState struct {
	Status          GameStatus    `json:"status"`
	CurrentPlayerID string        `json:"current_player_id"`
	LastDiceRoll    int           `json:"last_dice_roll"`
	CanRollDice     bool          `json:"can_roll_dice"`
	WinnerID        string        `json:"winner_id"`
	SoloMode        bool          `json:"solo_mode"`
	SoloPlayerID    string        `json:"solo_player_id"`
	Players         []PlayerState `json:"players"`
}

func (p *Player) state() PlayerState {
	s := PlayerState{
		PlayerID:    p.ID,
		Name:        p.Name,
		Color:       p.Color,
		Ready:       p.Ready,
		Connected:   p.Connected,
		IsBot:       p.IsBot,
		PiecesCount: p.FinishedCount(),
		Stats:       p.Stats,
	}
	for _, piece := range p.Pieces {
		s.Pieces = append(s.Pieces, PieceState{
			PieceID:      piece.ID,
			Status:       piece.Status,
			Position:     piece.Position,
			HomePosition: piece.HomeSlot,
		})
	}
	return s
}

// PlayerStates projects the full roster in join order.
func (g *Game) PlayerStates() []PlayerState {
	states := make([]PlayerState, 0, len(g.players))
	for _, p := range g.players {
		states = append(states, p.state())
	}
	return states
}

// ClientState projects the whole session for broadcast.
func (g *Game) ClientState() GameState {
	state := GameState{
		Status:       g.Status,
		LastDiceRoll: g.lastRoll,
		CanRollDice:  g.CanRollDice(),
		WinnerID:     g.winnerID,
		SoloMode:     g.SoloMode,
		SoloPlayerID: g.SoloPlayerID,
		Players:      g.PlayerStates(),
	}
	if p := g.CurrentPlayer(); p != nil {
		state.CurrentPlayerID = p.ID
	}
	return state
}
