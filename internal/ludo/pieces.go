package ludo

import "github.com/google/uuid"

type PieceStatus string

const (
	PieceHome     PieceStatus = "home"
	PieceTrack    PieceStatus = "track"
	PieceHomeLane PieceStatus = "home_lane"
	PieceFinished PieceStatus = "finished"
)

// Piece is one of a player's four pawns. Position is interpreted by Status:
// track index 0-51 on the track, lane index 0-3 in the home lane, pinned at
// LaneLen-1 once finished, and the stable home slot while at home.
type Piece struct {
	ID       string
	PlayerID string
	Status   PieceStatus
	HomeSlot int
	Position int
}

type Stats struct {
	Turns       int `json:"turns"`
	Deployments int `json:"deployments"`
	Moves       int `json:"moves"`
	Captures    int `json:"captures"`
	Sixes       int `json:"sixes"`
}

type Player struct {
	ID        string
	Name      string
	Color     Color // empty until assigned
	Ready     bool
	Connected bool
	IsBot     bool
	Stats     Stats
	Pieces    []*Piece
}

func newPlayer(name string, isBot bool) *Player {
	p := &Player{
		ID:        uuid.New().String(),
		Name:      name,
		Connected: true,
		IsBot:     isBot,
	}
	for slot := 0; slot < PiecesPerPlayer; slot++ {
		p.Pieces = append(p.Pieces, &Piece{
			ID:       uuid.New().String(),
			PlayerID: p.ID,
			Status:   PieceHome,
			HomeSlot: slot,
			Position: slot,
		})
	}
	return p
}

// resetPieces returns every piece to its home slot.
func (p *Player) resetPieces() {
	for _, piece := range p.Pieces {
		piece.Status = PieceHome
		piece.Position = piece.HomeSlot
	}
}

func (p *Player) piece(pieceID string) *Piece {
	for _, piece := range p.Pieces {
		if piece.ID == pieceID {
			return piece
		}
	}
	return nil
}

// FinishedCount reports how many of the player's pieces reached the goal.
func (p *Player) FinishedCount() int {
	n := 0
	for _, piece := range p.Pieces {
		if piece.Status == PieceFinished {
			n++
		}
	}
	return n
}

// HasPiecesOnBoard reports whether the player has at least one piece on the
// track or in the home lane. Players without board pieces are in the
// first-deployment phase of their turn.
func (p *Player) HasPiecesOnBoard() bool {
	for _, piece := range p.Pieces {
		if piece.Status == PieceTrack || piece.Status == PieceHomeLane {
			return true
		}
	}
	return false
}
