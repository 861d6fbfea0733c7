package battleship

import (
	"github.com/google/uuid"
)

const (
	PlayerMatchStatusLost      = -1
	PlayerMatchStatusUndefined = 0
	PlayerMatchStatusWon       = 1
)

type ShotResult uint8

const (
	// Result the receiving side could not classify
	ShotResultUnknown ShotResult = iota
	ShotResultMiss
	ShotResultHit
	ShotResultSunk

	// The shot sank the last ship of the fleet
	ShotResultLastSunk
)

func (r ShotResult) String() string {
	switch r {
	case ShotResultMiss:
		return "Miss"
	case ShotResultHit:
		return "Hit"
	case ShotResultSunk:
		return "Sunk"
	case ShotResultLastSunk:
		return "LastSunk"
	default:
		return "Unknown"
	}
}

func (r ShotResult) IsHit() bool {
	return r == ShotResultHit || r == ShotResultSunk || r == ShotResultLastSunk
}

// Game is the state of one side of a match: its own fleet, what it
// knows about the opponent and whose turn it is.
type Game struct {
	uuid          uuid.UUID
	fleetGrid     *Grid
	trackingGrid  *Grid
	isTurn        bool
	lastShot      *Coordinates
	matchStatus   int
	shotsFired    int
	shotsReceived int
}

// NewGame decodes the fleet from a grid encoding. isTurn is true for
// the side that fires first.
func NewGame(fleetEncoding string, isTurn bool) (*Game, error) {
	fleetGrid, err := DecodeGrid(fleetEncoding)
	if err != nil {
		return nil, err
	}

	return &Game{
		uuid:         uuid.New(),
		fleetGrid:    fleetGrid,
		trackingGrid: NewGrid(),
		isTurn:       isTurn,
		matchStatus:  PlayerMatchStatusUndefined,
	}, nil
}

func (g *Game) Uuid() uuid.UUID {
	return g.uuid
}

func (g *Game) FleetGrid() *Grid {
	return g.fleetGrid
}

func (g *Game) TrackingGrid() *Grid {
	return g.trackingGrid
}

func (g *Game) IsTurn() bool {
	return g.isTurn
}

func (g *Game) MatchStatus() int {
	return g.matchStatus
}

func (g *Game) IsMatchOver() bool {
	return g.matchStatus != PlayerMatchStatusUndefined
}

func (g *Game) ShotsFired() int {
	return g.shotsFired
}

func (g *Game) ShotsReceived() int {
	return g.shotsReceived
}

// LastShot is the coordinate this side fired at most recently.
func (g *Game) LastShot() (Coordinates, bool) {
	if g.lastShot == nil {
		return Coordinates{}, false
	}
	return *g.lastShot, true
}

// Fire records an outgoing shot and hands the turn to the opponent.
func (g *Game) Fire(c Coordinates) {
	g.lastShot = &c
	g.shotsFired++
	g.isTurn = false
}

// ApplyShotResult writes the opponent's verdict on the last shot into
// the tracking grid. Unknown results leave the grid as is.
func (g *Game) ApplyShotResult(result ShotResult) {
	if result == ShotResultLastSunk {
		g.matchStatus = PlayerMatchStatusWon
	}

	if g.lastShot == nil {
		return
	}

	switch {
	case result.IsHit():
		g.trackingGrid.Set(*g.lastShot, CellHit)
	case result == ShotResultMiss:
		g.trackingGrid.Set(*g.lastShot, CellMiss)
	}
}

// ReceiveShot applies the opponent's shot to the fleet grid and gives
// the turn back to this side. Firing at an already hit cell reports a
// plain hit again without re-evaluating sunk or defeat.
func (g *Game) ReceiveShot(c Coordinates) ShotResult {
	g.shotsReceived++
	g.isTurn = true

	switch g.fleetGrid.At(c) {
	case CellShipIntact:
		g.fleetGrid.Set(c, CellShipHit)

		if g.fleetGrid.AllShipsHit() {
			g.matchStatus = PlayerMatchStatusLost
			g.isTurn = false
			return ShotResultLastSunk
		}
		if IsShipSunk(g.fleetGrid, c.X, c.Y) {
			return ShotResultSunk
		}
		return ShotResultHit

	case CellShipHit:
		return ShotResultHit

	default:
		g.fleetGrid.Set(c, CellWater)
		return ShotResultMiss
	}
}
