package ludo_test

import (
	"errors"
	"fmt"
	"testing"

	"ludo-server/internal/ludo"
)

// scriptDice replays a fixed sequence of throws, repeating the last value.
type scriptDice struct {
	rolls []int
}

func (d *scriptDice) Roll() int {
	v := d.rolls[0]
	if len(d.rolls) > 1 {
		d.rolls = d.rolls[1:]
	}
	return v
}

// startedGame builds a running game with n ready human players, first joiner
// to act, rolling the scripted sequence.
func startedGame(t *testing.T, n int, rolls ...int) (*ludo.Game, []*ludo.Player) {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []int{1}
	}
	g := ludo.NewGame(ludo.WithDice(&scriptDice{rolls: rolls}))
	for i := 0; i < n; i++ {
		p, err := g.AddPlayer(fmt.Sprintf("player%d", i+1), false)
		if err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
		if err := g.SetReady(p.ID, true); err != nil {
			t.Fatalf("SetReady: %v", err)
		}
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g, g.Players()
}

// placePiece stages a piece directly on the board.
func placePiece(piece *ludo.Piece, status ludo.PieceStatus, pos int) {
	piece.Status = status
	piece.Position = pos
}

func TestMovablePieceIDs_Deploy(t *testing.T) {
	g, players := startedGame(t, 2)
	p := players[0]

	for roll := 1; roll <= 5; roll++ {
		if ids := g.MovablePieceIDs(p, roll); len(ids) != 0 {
			t.Errorf("roll %d with all pieces home: movable = %v, want none", roll, ids)
		}
	}
	if ids := g.MovablePieceIDs(p, 6); len(ids) != ludo.PiecesPerPlayer {
		t.Errorf("roll 6 with all pieces home: %d movable, want %d", len(ids), ludo.PiecesPerPlayer)
	}
}

func TestMovablePieceIDs_DeployBlockedByOwnPiece(t *testing.T) {
	g, players := startedGame(t, 2)
	p := players[0]
	placePiece(p.Pieces[0], ludo.PieceTrack, ludo.StartIndex(p.Color))

	ids := g.MovablePieceIDs(p, 6)
	if len(ids) != 1 || ids[0] != p.Pieces[0].ID {
		t.Fatalf("own piece on start: movable = %v, want only the track piece %s", ids, p.Pieces[0].ID)
	}
}

func TestMovePiece_DeployCapturesOpponent(t *testing.T) {
	g, players := startedGame(t, 2, 6)
	p, opp := players[0], players[1]
	victim := opp.Pieces[2]
	placePiece(victim, ludo.PieceTrack, ludo.StartIndex(p.Color))

	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	res, err := g.MovePiece(p.ID, p.Pieces[0].ID)
	if err != nil {
		t.Fatalf("MovePiece: %v", err)
	}

	if res.Action != ludo.ActionDeployedCaptured {
		t.Errorf("action = %s, want %s", res.Action, ludo.ActionDeployedCaptured)
	}
	if res.CapturedPieceID != victim.ID || res.CapturedPlayerID != opp.ID {
		t.Errorf("captured %s/%s, want %s/%s", res.CapturedPieceID, res.CapturedPlayerID, victim.ID, opp.ID)
	}
	if victim.Status != ludo.PieceHome || victim.Position != victim.HomeSlot {
		t.Errorf("victim at %s/%d, want back on home slot %d", victim.Status, victim.Position, victim.HomeSlot)
	}
	if p.Stats.Captures != 1 || p.Stats.Deployments != 1 {
		t.Errorf("stats = %+v, want 1 capture and 1 deployment", p.Stats)
	}
	if p.Stats.Moves != 0 {
		t.Errorf("deploy counted as a move: moves = %d, want 0", p.Stats.Moves)
	}
}

func TestMovePiece_TrackMoveAndCapture(t *testing.T) {
	g, players := startedGame(t, 2, 4)
	p, opp := players[0], players[1]
	mover := p.Pieces[0]
	victim := opp.Pieces[0]
	placePiece(mover, ludo.PieceTrack, 10)
	placePiece(victim, ludo.PieceTrack, 14)

	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	res, err := g.MovePiece(p.ID, mover.ID)
	if err != nil {
		t.Fatalf("MovePiece: %v", err)
	}

	if res.Action != ludo.ActionMovedCaptured {
		t.Errorf("action = %s, want %s", res.Action, ludo.ActionMovedCaptured)
	}
	if mover.Position != 14 {
		t.Errorf("mover at %d, want 14", mover.Position)
	}
	if victim.Status != ludo.PieceHome {
		t.Errorf("victim status = %s, want %s", victim.Status, ludo.PieceHome)
	}
	if p.Stats.Moves != 1 || p.Stats.Captures != 1 {
		t.Errorf("stats = %+v, want 1 move and 1 capture", p.Stats)
	}
}

func TestMovePiece_OwnPieceBlocksDestination(t *testing.T) {
	g, players := startedGame(t, 2, 4)
	p := players[0]
	placePiece(p.Pieces[0], ludo.PieceTrack, 10)
	placePiece(p.Pieces[1], ludo.PieceTrack, 14)

	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if _, err := g.MovePiece(p.ID, p.Pieces[0].ID); !errors.Is(err, ludo.ErrIllegalMove) {
		t.Fatalf("MovePiece onto own piece: err = %v, want %v", err, ludo.ErrIllegalMove)
	}
}

func TestMovePiece_TrackWrapsAroundStart(t *testing.T) {
	g, players := startedGame(t, 2, 4)
	// players[1] owns the second color, whose lap crosses cell 0.
	p := players[1]
	mover := p.Pieces[0]
	placePiece(mover, ludo.PieceTrack, 50)

	g.MarkDisconnected(players[0].ID) // hand the turn over
	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	res, err := g.MovePiece(p.ID, mover.ID)
	if err != nil {
		t.Fatalf("MovePiece: %v", err)
	}
	if res.NewPosition != 2 {
		t.Errorf("position after wrap = %d, want 2", res.NewPosition)
	}
}

func TestMovePiece_LaneEntryMath(t *testing.T) {
	tests := []struct {
		name       string
		pos        int // two before entry unless stated; relative to entry
		roll       int
		wantErr    error
		wantStatus ludo.PieceStatus
		wantPos    int
		wantAction string
	}{
		{"exact steps stay on track", -2, 2, nil, ludo.PieceTrack, 0, ludo.ActionMoved},
		{"one past entry lands lane 0", -2, 3, nil, ludo.PieceHomeLane, 0, ludo.ActionEnteredLane},
		{"deep entry lands lane 2", -2, 5, nil, ludo.PieceHomeLane, 2, ludo.ActionEnteredLane},
		{"six from two before entry finishes", -2, 6, nil, ludo.PieceFinished, ludo.LaneLen - 1, ludo.ActionFinished},
		{"overshoot past last lane cell", 0, 5, ludo.ErrIllegalMove, "", 0, ""},
		{"entry cell exact finish", 0, 4, nil, ludo.PieceFinished, ludo.LaneLen - 1, ludo.ActionFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, players := startedGame(t, 2, tt.roll)
			p := players[0]
			mover := p.Pieces[0]
			entry := ludo.EntryIndex(p.Color)
			placePiece(mover, ludo.PieceTrack, (entry+tt.pos+ludo.TrackLen)%ludo.TrackLen)
			// A second piece mid-track keeps the roll pending when the
			// mover itself has no legal destination.
			placePiece(p.Pieces[3], ludo.PieceTrack, 20)

			if _, err := g.RollDice(p.ID); err != nil {
				t.Fatalf("RollDice: %v", err)
			}
			res, err := g.MovePiece(p.ID, mover.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MovePiece: %v", err)
			}
			if mover.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", mover.Status, tt.wantStatus)
			}
			if tt.wantStatus == ludo.PieceTrack {
				want := (entry + tt.pos + tt.roll + ludo.TrackLen) % ludo.TrackLen
				if mover.Position != want {
					t.Errorf("position = %d, want %d", mover.Position, want)
				}
			} else if mover.Position != tt.wantPos {
				t.Errorf("position = %d, want %d", mover.Position, tt.wantPos)
			}
			if res.Action != tt.wantAction {
				t.Errorf("action = %s, want %s", res.Action, tt.wantAction)
			}
		})
	}
}

func TestMovePiece_LaneEntryDoesNotCountAsMove(t *testing.T) {
	// Action names are covered by the table above; this pins the stats side:
	// a lane entry is not counted as a move.
	g, players := startedGame(t, 2, 3)
	p := players[0]
	mover := p.Pieces[0]
	placePiece(mover, ludo.PieceTrack, (ludo.EntryIndex(p.Color)+ludo.TrackLen-2)%ludo.TrackLen)

	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if _, err := g.MovePiece(p.ID, mover.ID); err != nil {
		t.Fatalf("MovePiece: %v", err)
	}
	if p.Stats.Moves != 0 {
		t.Errorf("lane entry counted as move: moves = %d, want 0", p.Stats.Moves)
	}
}

func TestMovePiece_LaneMovement(t *testing.T) {
	tests := []struct {
		name       string
		laneIdx    int
		roll       int
		blockIdx   int // -1 for none
		wantErr    error
		wantStatus ludo.PieceStatus
		wantPos    int
	}{
		{"step within lane", 0, 2, -1, nil, ludo.PieceHomeLane, 2},
		{"exact finish", 1, 2, -1, nil, ludo.PieceFinished, 3},
		{"overshoot illegal", 2, 2, -1, ludo.ErrIllegalMove, "", 0},
		{"own piece blocks lane cell", 0, 2, 2, ludo.ErrIllegalMove, "", 0},
		{"finish ignores occupied intermediate", 0, 3, 2, nil, ludo.PieceFinished, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, players := startedGame(t, 2, tt.roll)
			p := players[0]
			mover := p.Pieces[0]
			placePiece(mover, ludo.PieceHomeLane, tt.laneIdx)
			if tt.blockIdx >= 0 {
				placePiece(p.Pieces[1], ludo.PieceHomeLane, tt.blockIdx)
			}
			// Keeps the roll pending when the mover has no legal destination.
			placePiece(p.Pieces[3], ludo.PieceTrack, 20)

			if _, err := g.RollDice(p.ID); err != nil {
				t.Fatalf("RollDice: %v", err)
			}
			_, err := g.MovePiece(p.ID, mover.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("MovePiece: %v", err)
			}
			if mover.Status != tt.wantStatus || mover.Position != tt.wantPos {
				t.Errorf("piece at %s/%d, want %s/%d", mover.Status, mover.Position, tt.wantStatus, tt.wantPos)
			}
		})
	}
}

func TestCapture_PieceCountPreserved(t *testing.T) {
	g, players := startedGame(t, 2, 4)
	p, opp := players[0], players[1]
	placePiece(p.Pieces[0], ludo.PieceTrack, 10)
	placePiece(opp.Pieces[0], ludo.PieceTrack, 14)

	if _, err := g.RollDice(p.ID); err != nil {
		t.Fatalf("RollDice: %v", err)
	}
	if _, err := g.MovePiece(p.ID, p.Pieces[0].ID); err != nil {
		t.Fatalf("MovePiece: %v", err)
	}

	for _, player := range players {
		if n := len(player.Pieces); n != ludo.PiecesPerPlayer {
			t.Errorf("%s has %d pieces, want %d", player.Name, n, ludo.PiecesPerPlayer)
		}
	}
}
