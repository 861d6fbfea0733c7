package battleship

import (
	"math/rand"
	"time"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
)

const (
	maxGridAttempts = 10000
	maxShipAttempts = 1000
)

// Ship sizes in placement order. Biggest first leaves the most room.
var FleetShipSizes = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// 4-directional neighbours
var directions = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

type FleetGenerator struct {
	rng             *rand.Rand
	MaxGridAttempts int
	MaxShipAttempts int
}

// NewFleetGenerator uses rng for every random choice. A nil rng
// is replaced by one seeded with the current time.
func NewFleetGenerator(rng *rand.Rand) *FleetGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &FleetGenerator{
		rng:             rng,
		MaxGridAttempts: maxGridAttempts,
		MaxShipAttempts: maxShipAttempts,
	}
}

// Generate returns a 100 character grid encoding holding the whole
// fleet, or ErrFleetGenerationFailed.
func (fg *FleetGenerator) Generate() (string, error) {
	grid, err := fg.GenerateGrid()
	if err != nil {
		return "", err
	}
	return grid.Encode(), nil
}

func (fg *FleetGenerator) GenerateGrid() (*Grid, error) {
	for attempt := 0; attempt < fg.MaxGridAttempts; attempt++ {
		grid := NewGrid()
		var occupied [GridSize][GridSize]bool

		if fg.placeShips(grid, &occupied) {
			return grid, nil
		}
	}
	return nil, cerr.ErrFleetGenerationFailed
}

func (fg *FleetGenerator) placeShips(grid *Grid, occupied *[GridSize][GridSize]bool) bool {
	for _, size := range FleetShipSizes {
		if !fg.placeShip(grid, occupied, size) {
			return false
		}
	}
	return true
}

func (fg *FleetGenerator) placeShip(grid *Grid, occupied *[GridSize][GridSize]bool, size int) bool {
	for attempt := 0; attempt < fg.MaxShipAttempts; attempt++ {
		start := NewCoordinates(fg.rng.Intn(GridSize), fg.rng.Intn(GridSize))

		ship := fg.growShip(occupied, start, size)
		if ship == nil {
			continue
		}

		for _, c := range ship {
			grid.Set(c, CellShipIntact)
		}
		markOccupied(occupied, ship)
		return true
	}
	return false
}

// growShip starts from a single cell and keeps adding a random free cell
// next to any cell of the partial ship. Ships may bend. Returns nil when
// the ship gets stuck before reaching size.
func (fg *FleetGenerator) growShip(occupied *[GridSize][GridSize]bool, start Coordinates, size int) []Coordinates {
	if occupied[start.X][start.Y] {
		return nil
	}

	ship := make([]Coordinates, 1, size)
	ship[0] = start

	var inShip [GridSize][GridSize]bool
	inShip[start.X][start.Y] = true

	for len(ship) < size {
		var seen [GridSize][GridSize]bool
		candidates := make([]Coordinates, 0, 4*len(ship))

		for _, c := range ship {
			for _, d := range directions {
				x, y := c.X+d[0], c.Y+d[1]
				if !InGridBound(x, y) || occupied[x][y] || inShip[x][y] || seen[x][y] {
					continue
				}
				seen[x][y] = true
				candidates = append(candidates, NewCoordinates(x, y))
			}
		}

		if len(candidates) == 0 {
			return nil
		}

		chosen := candidates[fg.rng.Intn(len(candidates))]
		inShip[chosen.X][chosen.Y] = true
		ship = append(ship, chosen)
	}

	return ship
}

// Marks the ship and its one cell buffer in all 8 directions
func markOccupied(occupied *[GridSize][GridSize]bool, ship []Coordinates) {
	for _, c := range ship {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				x, y := c.X+dx, c.Y+dy
				if InGridBound(x, y) {
					occupied[x][y] = true
				}
			}
		}
	}
}
