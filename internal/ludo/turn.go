package ludo

// RollResult is one die throw within a roll_dice intent. A first-deployment
// intent may carry several throws: each failed six attempt is rolled again
// automatically until an attempt succeeds or the counter runs out.
type RollResult struct {
	Value           int
	MovablePieceIDs []string
	TurnEnded       bool // turn passed with no move phase
	AutoReroll      bool // another deployment attempt follows this throw
}

// RollDice performs the current player's roll. It either leaves a roll
// pending a move (non-empty movable set), or ends the turn on the spot:
// no legal move ends it immediately, and a six with no legal move forfeits
// the extra roll. Sixes count toward the sixes stat the moment they are
// thrown, legal move or not.
func (g *Game) RollDice(playerID string) ([]RollResult, error) {
	if g.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	p := g.CurrentPlayer()
	if p == nil || p.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if !g.canRoll {
		return nil, ErrRollNotAllowed
	}

	var results []RollResult
	for {
		v := g.dice.Roll()
		g.lastRoll = v
		if v == 6 {
			p.Stats.Sixes++
		}

		res := RollResult{Value: v, MovablePieceIDs: g.MovablePieceIDs(p, v)}
		if len(res.MovablePieceIDs) > 0 {
			g.canRoll = false
			return append(results, res), nil
		}

		if !p.HasPiecesOnBoard() && v != 6 && g.rollAttempts > 1 {
			g.rollAttempts--
			res.AutoReroll = true
			results = append(results, res)
			continue
		}

		res.TurnEnded = true
		g.endTurn(false)
		return append(results, res), nil
	}
}

// MovePiece applies the pending roll to one of the current player's pieces.
// It returns the committed result; afterwards either the game is finished,
// the same player holds an extra roll (moved on a six), or the turn has
// advanced.
func (g *Game) MovePiece(playerID, pieceID string) (*MoveResult, error) {
	if g.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	p := g.CurrentPlayer()
	if p == nil || p.ID != playerID {
		return nil, ErrNotYourTurn
	}
	if g.canRoll {
		return nil, ErrNoDiceRolled
	}
	piece := p.piece(pieceID)
	if piece == nil {
		return nil, ErrUnknownPiece
	}
	if !g.canMovePiece(p, piece, g.lastRoll) {
		return nil, ErrIllegalMove
	}

	res := g.applyMove(p, piece, g.lastRoll)

	if p.FinishedCount() == PiecesPerPlayer {
		g.Status = StatusFinished
		g.winnerID = p.ID
		g.lastRoll = 0
		g.canRoll = false
		return res, nil
	}

	g.endTurn(true)
	return res, nil
}

// SkipTurn lets the current player decline to move a pending roll. Distinct
// from auto-termination: the player had legal moves and waived them.
func (g *Game) SkipTurn(playerID string) error {
	if g.Status != StatusPlaying {
		return ErrNotPlaying
	}
	p := g.CurrentPlayer()
	if p == nil || p.ID != playerID {
		return ErrNotYourTurn
	}
	if g.canRoll {
		return ErrNoDiceRolled
	}
	g.endTurn(false)
	return nil
}

// endTurn settles the roll: a six that was moved grants the same player an
// extra roll, anything else passes the turn. Turn stats follow the original
// rules: an extra roll does not count as a new turn.
func (g *Game) endTurn(afterMove bool) {
	p := g.CurrentPlayer()
	roll := g.lastRoll
	if p != nil && (!afterMove || roll != 6) {
		p.Stats.Turns++
	}

	if afterMove && roll == 6 {
		g.lastRoll = 0
		g.canRoll = true
		// The six may have finished the player's last board piece, in which
		// case the extra roll opens a fresh deployment phase.
		g.resetAttemptsForCurrent()
		return
	}
	g.advanceTurn()
}

// advanceTurn hands the turn to the next connected player in join order,
// clearing the pending roll and regranting deployment attempts when the new
// player has nothing on the board.
func (g *Game) advanceTurn() {
	g.lastRoll = 0
	g.canRoll = true
	if len(g.players) == 0 {
		return
	}
	for i := 1; i <= len(g.players); i++ {
		idx := (g.currentIndex + i) % len(g.players)
		if g.players[idx].Connected {
			g.currentIndex = idx
			break
		}
	}
	g.resetAttemptsForCurrent()
}
