package ludo

import "strings"

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

const (
	PiecesPerPlayer = 4
	MinPlayers      = 2
	MaxPlayers      = 4

	// DeployAttempts is how many rolls a player with no pieces on the board
	// gets to throw a six before their turn ends.
	DeployAttempts = 3
)

// Game is the single authoritative session: roster, turn state and board.
// It is constructed once per process and reset in place, never replaced.
// Game itself is not goroutine safe; the owning room serializes all access.
type Game struct {
	Status       GameStatus
	SoloMode     bool
	SoloPlayerID string

	players      []*Player
	currentIndex int
	lastRoll     int
	canRoll      bool
	rollAttempts int
	winnerID     string
	dice         Dice
}

type Option func(*Game)

// WithDice substitutes the die, used by tests to script rolls.
func WithDice(d Dice) Option {
	return func(g *Game) {
		g.dice = d
	}
}

func NewGame(opts ...Option) *Game {
	g := &Game{
		Status:  StatusWaiting,
		canRoll: true,
		dice:    randDice{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Players() []*Player {
	return g.players
}

func (g *Game) Player(playerID string) *Player {
	for _, p := range g.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *Game) CurrentPlayer() *Player {
	if g.Status != StatusPlaying || g.currentIndex >= len(g.players) {
		return nil
	}
	return g.players[g.currentIndex]
}

func (g *Game) Winner() *Player {
	if g.winnerID == "" {
		return nil
	}
	return g.Player(g.winnerID)
}

func (g *Game) LastRoll() int {
	return g.lastRoll
}

// CanRollDice reports whether the current player may roll, i.e. no roll is
// pending a move.
func (g *Game) CanRollDice() bool {
	return g.Status == StatusPlaying && g.canRoll
}

// RollAttemptsRemaining is the first-deployment attempt counter for the
// current player.
func (g *Game) RollAttemptsRemaining() int {
	return g.rollAttempts
}

// AddPlayer joins a player to the lobby and assigns the first free color.
func (g *Game) AddPlayer(name string, isBot bool) (*Player, error) {
	if g.Status != StatusWaiting {
		return nil, ErrWrongStatus
	}
	if len(g.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	for _, p := range g.players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrNameTaken
		}
	}

	p := newPlayer(name, isBot)
	if free := g.AvailableColors(); len(free) > 0 {
		p.Color = free[0]
	}
	g.players = append(g.players, p)
	return p, nil
}

// AvailableColors lists colors not held by any player, in assignment order.
func (g *Game) AvailableColors() []Color {
	free := make([]Color, 0, len(Colors))
	for _, c := range Colors {
		taken := false
		for _, p := range g.players {
			if p.Color == c {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, c)
		}
	}
	return free
}

// SelectColor reassigns a player's color atomically: the old color is freed
// and the new one claimed in one step, so no two players ever share a color.
func (g *Game) SelectColor(playerID string, color Color) error {
	if g.Status != StatusWaiting {
		return ErrWrongStatus
	}
	p := g.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !ValidColor(color) {
		return ErrInvalidColor
	}
	for _, other := range g.players {
		if other.ID != playerID && other.Color == color {
			return ErrColorTaken
		}
	}
	p.Color = color
	return nil
}

func (g *Game) SetReady(playerID string, ready bool) error {
	p := g.Player(playerID)
	if p == nil {
		return ErrUnknownPlayer
	}
	p.Ready = ready
	return nil
}

// CanStart reports whether the waiting → playing transition is allowed.
// Solo mode needs a single ready human; bots are added by the caller just
// before Start.
func (g *Game) CanStart() bool {
	if g.Status != StatusWaiting {
		return false
	}
	min := MinPlayers
	if g.SoloMode {
		min = 1
	}
	if len(g.players) < min || len(g.players) > MaxPlayers {
		return false
	}
	for _, p := range g.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Start transitions waiting → playing: colors are finalized, pieces return
// home, stats reset, and the first joiner takes the first turn.
func (g *Game) Start() error {
	if !g.CanStart() {
		return ErrCannotStart
	}
	free := g.AvailableColors()
	for _, p := range g.players {
		if p.Color == "" && len(free) > 0 {
			p.Color = free[0]
			free = free[1:]
		}
		p.resetPieces()
		p.Stats = Stats{}
	}

	g.Status = StatusPlaying
	g.currentIndex = 0
	g.lastRoll = 0
	g.canRoll = true
	g.winnerID = ""
	g.rollAttempts = DeployAttempts
	return nil
}

// Reset returns the session to the lobby in place. Bots are dropped,
// remaining humans stay in the roster but are unreadied.
func (g *Game) Reset() {
	humans := g.players[:0]
	for _, p := range g.players {
		if p.IsBot {
			continue
		}
		p.Ready = false
		p.Stats = Stats{}
		p.resetPieces()
		humans = append(humans, p)
	}
	g.players = humans
	g.Status = StatusWaiting
	g.SoloMode = false
	g.SoloPlayerID = ""
	g.currentIndex = 0
	g.lastRoll = 0
	g.canRoll = true
	g.rollAttempts = 0
	g.winnerID = ""
}

// RemovePlayer drops a player from the roster. It returns the removed player
// and whether the caller must force-reset the session because fewer than two
// connected humans remain in a running game (or the solo human left).
func (g *Game) RemovePlayer(playerID string) (*Player, bool) {
	idx := -1
	for i, p := range g.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}

	removed := g.players[idx]
	wasCurrent := g.Status == StatusPlaying && idx == g.currentIndex
	g.players = append(g.players[:idx], g.players[idx+1:]...)

	if g.Status == StatusPlaying && len(g.players) > 0 {
		if idx < g.currentIndex {
			g.currentIndex--
		}
		g.currentIndex %= len(g.players)
		if wasCurrent {
			// The departed player's turn ends with them.
			g.lastRoll = 0
			g.canRoll = true
			g.resetAttemptsForCurrent()
			if !g.CurrentPlayer().Connected {
				g.advanceTurn()
			}
		}
	}

	if g.Status != StatusPlaying {
		// Losing the solo human in the lobby must free the room again.
		if g.SoloMode && removed.ID == g.SoloPlayerID {
			g.SoloMode = false
			g.SoloPlayerID = ""
		}
		return removed, false
	}
	if g.SoloMode {
		return removed, removed.ID == g.SoloPlayerID
	}
	return removed, g.connectedHumanCount() < MinPlayers
}

// MarkConnected records that the player's connection is live again.
func (g *Game) MarkConnected(playerID string) {
	if p := g.Player(playerID); p != nil {
		p.Connected = true
	}
}

// MarkDisconnected records connection loss. If it is the disconnected
// player's turn in a running game, the turn passes immediately so the
// current index keeps naming a connected player; it returns whether the
// turn moved on.
func (g *Game) MarkDisconnected(playerID string) bool {
	p := g.Player(playerID)
	if p == nil {
		return false
	}
	p.Connected = false
	if g.Status == StatusPlaying && g.CurrentPlayer() == p {
		g.advanceTurn()
		return true
	}
	return false
}

func (g *Game) connectedHumanCount() int {
	n := 0
	for _, p := range g.players {
		if !p.IsBot && p.Connected {
			n++
		}
	}
	return n
}

func (g *Game) resetAttemptsForCurrent() {
	g.rollAttempts = 0
	if p := g.CurrentPlayer(); p != nil && !p.HasPiecesOnBoard() {
		g.rollAttempts = DeployAttempts
	}
}
