package battleship

import (
	"slices"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
)

const FleetShipCells = 20

// IsShipSunk is called right after (hitX, hitY) became CellShipHit.
// It walks the ship breadth first and reports false as soon as an
// intact cell of the same ship shows up.
func IsShipSunk(grid *Grid, hitX, hitY int) bool {
	var visited [GridSize][GridSize]bool
	visited[hitX][hitY] = true

	queue := []Coordinates{NewCoordinates(hitX, hitY)}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range directions {
			x, y := current.X+d[0], current.Y+d[1]
			if !InGridBound(x, y) || visited[x][y] {
				continue
			}

			switch grid[x][y] {
			case CellShipIntact:
				return false
			case CellShipHit:
				visited[x][y] = true
				queue = append(queue, NewCoordinates(x, y))
			}
		}
	}
	return true
}

// Ships returns every 4-connected group of ship cells, hit or not,
// scanning the grid row by row.
func Ships(grid *Grid) [][]Coordinates {
	var visited [GridSize][GridSize]bool
	ships := make([][]Coordinates, 0, len(FleetShipSizes))

	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			if visited[x][y] || !grid[x][y].IsShip() {
				continue
			}

			visited[x][y] = true
			ship := []Coordinates{NewCoordinates(x, y)}
			for i := 0; i < len(ship); i++ {
				for _, d := range directions {
					nx, ny := ship[i].X+d[0], ship[i].Y+d[1]
					if InGridBound(nx, ny) && !visited[nx][ny] && grid[nx][ny].IsShip() {
						visited[nx][ny] = true
						ship = append(ship, NewCoordinates(nx, ny))
					}
				}
			}
			ships = append(ships, ship)
		}
	}
	return ships
}

// ValidateFleet checks a fleet grid holds exactly the standard fleet
// with no two ships touching, diagonals included.
func ValidateFleet(grid *Grid) error {
	cells := grid.Count(CellShipIntact) + grid.Count(CellShipHit)
	if cells != FleetShipCells {
		return cerr.ErrInvalidShipCellCount(cells)
	}

	ships := Ships(grid)

	var shipIdx [GridSize][GridSize]int
	sizes := make([]int, 0, len(ships))
	for i, ship := range ships {
		sizes = append(sizes, len(ship))
		for _, c := range ship {
			shipIdx[c.X][c.Y] = i + 1
		}
	}

	slices.Sort(sizes)
	slices.Reverse(sizes)
	if !slices.Equal(sizes, FleetShipSizes) {
		return cerr.ErrInvalidFleetComposition(sizes)
	}

	for x := 0; x < GridSize; x++ {
		for y := 0; y < GridSize; y++ {
			if shipIdx[x][y] == 0 {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					nx, ny := x+dx, y+dy
					if InGridBound(nx, ny) && shipIdx[nx][ny] != 0 && shipIdx[nx][ny] != shipIdx[x][y] {
						return cerr.ErrShipsTouching(x, y)
					}
				}
			}
		}
	}
	return nil
}
