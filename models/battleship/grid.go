package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
)

const (
	GridSize = 10

	// Length of the flat, row-major grid encoding
	GridEncodingLength = GridSize * GridSize

	EncodingShip  = '#'
	EncodingWater = '.'
)

type Cell uint8

const (
	// Untried cell. Also the default for water on a freshly decoded fleet grid.
	CellEmpty Cell = iota
	CellWater
	CellShipIntact

	// Own ship cell that has been hit. Used only on the fleet grid.
	CellShipHit

	// Shot outcomes, used only on the tracking grid
	CellMiss
	CellHit
)

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "Empty"
	case CellWater:
		return "Water"
	case CellShipIntact:
		return "ShipIntact"
	case CellShipHit:
		return "ShipHit"
	case CellMiss:
		return "Miss"
	case CellHit:
		return "Hit"
	default:
		return "Unknown"
	}
}

func (c Cell) IsShip() bool {
	return c == CellShipIntact || c == CellShipHit
}

// Grid is indexed as grid[x][y], x being the row and y the column.
// It is always passed around by pointer and mutated in place.
type Grid [GridSize][GridSize]Cell

// Creates a new default grid
// All indexes are zero/CellEmpty
func NewGrid() *Grid {
	return &Grid{}
}

// DecodeGrid builds a fleet grid from the first 100 characters of a
// grid encoding. '#' becomes CellShipIntact and '.' CellEmpty.
func DecodeGrid(encoding string) (*Grid, error) {
	if len(encoding) < GridEncodingLength {
		return nil, cerr.ErrInvalidGridEncoding(len(encoding))
	}

	grid := NewGrid()
	for i := 0; i < GridEncodingLength; i++ {
		switch encoding[i] {
		case EncodingShip:
			grid[i/GridSize][i%GridSize] = CellShipIntact
		case EncodingWater:
		default:
			return nil, cerr.ErrInvalidGridCharacter(rune(encoding[i]), i)
		}
	}
	return grid, nil
}

// Encode flattens the grid row by row into '#' for ship cells
// and '.' for everything else.
func (g *Grid) Encode() string {
	var sb strings.Builder
	sb.Grow(GridEncodingLength)

	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			if g[x][y].IsShip() {
				sb.WriteByte(EncodingShip)
			} else {
				sb.WriteByte(EncodingWater)
			}
		}
	}
	return sb.String()
}

func (g *Grid) At(c Coordinates) Cell {
	return g[c.X][c.Y]
}

func (g *Grid) Set(c Coordinates, cell Cell) {
	g[c.X][c.Y] = cell
}

// Number of cells in the given state
func (g *Grid) Count(cell Cell) int {
	var n int
	for x := range g {
		for _, c := range g[x] {
			if c == cell {
				n++
			}
		}
	}
	return n
}

// AllShipsHit reports whether no intact ship cell is left.
func (g *Grid) AllShipsHit() bool {
	return g.Count(CellShipIntact) == 0
}

func InGridBound(x, y int) bool {
	return x >= 0 && x < GridSize && y >= 0 && y < GridSize
}
