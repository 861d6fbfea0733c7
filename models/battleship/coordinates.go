package battleship

import (
	"strconv"
	"strings"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
)

// Coordinates of a cell. X is the row (token number minus one)
// and Y the column (token letter).
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

// ParseCoordinates accepts tokens such as "A1", "j10" or " c7 ".
// The letter picks the column A-J and the number the row 1-10.
func ParseCoordinates(token string) (Coordinates, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if len(t) < 2 || len(t) > 3 {
		return Coordinates{}, cerr.ErrInvalidCoordinateToken(token)
	}

	col := t[0]
	if col < 'A' || col > 'A'+GridSize-1 {
		return Coordinates{}, cerr.ErrInvalidCoordinateToken(token)
	}

	// Reject "A01", "A+1" and similar that Atoi would accept
	if t[1] < '1' || t[1] > '9' {
		return Coordinates{}, cerr.ErrInvalidCoordinateToken(token)
	}
	row, err := strconv.Atoi(t[1:])
	if err != nil || row < 1 || row > GridSize {
		return Coordinates{}, cerr.ErrInvalidCoordinateToken(token)
	}

	return NewCoordinates(row-1, int(col-'A')), nil
}

func (c Coordinates) IsValid() bool {
	return InGridBound(c.X, c.Y)
}

func (c Coordinates) String() string {
	return string(rune('A'+c.Y)) + strconv.Itoa(c.X+1)
}
