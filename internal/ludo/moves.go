package ludo

// Move actions reported to clients, matching the wire vocabulary.
const (
	ActionDeployed         = "piece_exited_home"
	ActionDeployedCaptured = "piece_exited_home_and_captured"
	ActionMoved            = "piece_moved"
	ActionMovedCaptured    = "piece_moved_and_captured"
	ActionEnteredLane      = "piece_entered_lane"
	ActionMovedInLane      = "piece_moved_in_lane"
	ActionFinished         = "piece_finished"
)

// MoveResult describes one committed move, with enough detail for a renderer
// to animate it unambiguously.
type MoveResult struct {
	Action           string      `json:"action"`
	PieceID          string      `json:"piece_id"`
	OldStatus        PieceStatus `json:"old_status"`
	OldPosition      int         `json:"old_position"`
	NewStatus        PieceStatus `json:"new_status"`
	NewPosition      int         `json:"new_position"`
	CapturedPieceID  string      `json:"captured_piece_id,omitempty"`
	CapturedPlayerID string      `json:"captured_player_id,omitempty"`
}

// ownPieceAt finds the player's own piece resting in the given state and
// position, or nil.
func ownPieceAt(p *Player, status PieceStatus, pos int) *Piece {
	for _, piece := range p.Pieces {
		if piece.Status == status && piece.Position == pos {
			return piece
		}
	}
	return nil
}

// opponentPieceAt finds an opposing piece resting on the given track cell,
// or nil. At most one piece of any color rests on a cell.
func (g *Game) opponentPieceAt(p *Player, trackPos int) *Piece {
	for _, other := range g.players {
		if other.ID == p.ID {
			continue
		}
		if piece := ownPieceAt(other, PieceTrack, trackPos); piece != nil {
			return piece
		}
	}
	return nil
}

// canMovePiece decides legality of moving one piece by the given roll.
// Pure over the current board state.
func (g *Game) canMovePiece(p *Player, piece *Piece, roll int) bool {
	if roll < 1 || roll > 6 || !ValidColor(p.Color) {
		return false
	}

	switch piece.Status {
	case PieceHome:
		// Deploy needs a six and a start cell free of own pieces; an
		// opposing piece there is captured, not a blocker.
		if roll != 6 {
			return false
		}
		return ownPieceAt(p, PieceTrack, StartIndex(p.Color)) == nil

	case PieceTrack:
		steps := StepsToEntry(p.Color, piece.Position)
		if roll > steps {
			laneIdx := roll - steps - 1
			if laneIdx >= LaneLen {
				return false // overshoot, no partial credit
			}
			return ownPieceAt(p, PieceHomeLane, laneIdx) == nil
		}
		newPos := (piece.Position + roll) % TrackLen
		return ownPieceAt(p, PieceTrack, newPos) == nil

	case PieceHomeLane:
		newIdx := piece.Position + roll
		if newIdx > LaneLen-1 {
			return false // must land exactly on or before the last cell
		}
		if newIdx == LaneLen-1 {
			return true
		}
		return ownPieceAt(p, PieceHomeLane, newIdx) == nil
	}

	return false
}

// MovablePieceIDs enumerates the player's pieces with at least one legal
// destination for the roll, in piece order.
func (g *Game) MovablePieceIDs(p *Player, roll int) []string {
	var ids []string
	for _, piece := range p.Pieces {
		if g.canMovePiece(p, piece, roll) {
			ids = append(ids, piece.ID)
		}
	}
	return ids
}

// applyMove commits a legality-checked move and updates the mover's stats.
func (g *Game) applyMove(p *Player, piece *Piece, roll int) *MoveResult {
	res := &MoveResult{
		PieceID:     piece.ID,
		OldStatus:   piece.Status,
		OldPosition: piece.Position,
	}

	switch piece.Status {
	case PieceHome:
		start := StartIndex(p.Color)
		res.Action = ActionDeployed
		if captured := g.opponentPieceAt(p, start); captured != nil {
			g.capture(p, captured, res)
			res.Action = ActionDeployedCaptured
		}
		piece.Status = PieceTrack
		piece.Position = start
		p.Stats.Deployments++

	case PieceTrack:
		steps := StepsToEntry(p.Color, piece.Position)
		if roll > steps {
			laneIdx := roll - steps - 1
			piece.Status = PieceHomeLane
			piece.Position = laneIdx
			res.Action = ActionEnteredLane
			if laneIdx == LaneLen-1 {
				piece.Status = PieceFinished
				res.Action = ActionFinished
			}
		} else {
			newPos := (piece.Position + roll) % TrackLen
			res.Action = ActionMoved
			if captured := g.opponentPieceAt(p, newPos); captured != nil {
				g.capture(p, captured, res)
				res.Action = ActionMovedCaptured
			}
			piece.Position = newPos
			p.Stats.Moves++
		}

	case PieceHomeLane:
		newIdx := piece.Position + roll
		piece.Position = newIdx
		res.Action = ActionMovedInLane
		if newIdx == LaneLen-1 {
			piece.Status = PieceFinished
			res.Action = ActionFinished
		}
		p.Stats.Moves++
	}

	res.NewStatus = piece.Status
	res.NewPosition = piece.Position
	return res
}

// capture sends an opposing piece back to its home slot.
func (g *Game) capture(p *Player, captured *Piece, res *MoveResult) {
	captured.Status = PieceHome
	captured.Position = captured.HomeSlot
	p.Stats.Captures++
	res.CapturedPieceID = captured.ID
	res.CapturedPlayerID = captured.PlayerID
}
