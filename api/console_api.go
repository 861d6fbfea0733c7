package api

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	mb "github.com/saeidalz13/battleship-duel/models/battleship"
	mc "github.com/saeidalz13/battleship-duel/models/connection"
)

const (
	glyphUnknown = "🟦"
	glyphShip    = "🟫"
	glyphHit     = "❌"
	glyphMiss    = "⬜"

	exchangeSeparator = "------------------------------------------"
)

// ConsoleCoordinateSource prompts on out and reads targets from in
// until a valid one is typed.
type ConsoleCoordinateSource struct {
	scanner *bufio.Scanner
	out     io.Writer
}

var _ CoordinateSource = (*ConsoleCoordinateSource)(nil)

func NewConsoleCoordinateSource(in io.Reader, out io.Writer) *ConsoleCoordinateSource {
	return &ConsoleCoordinateSource{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

func (c *ConsoleCoordinateSource) NextCoordinate(ctx context.Context) (mb.Coordinates, error) {
	for {
		if err := ctx.Err(); err != nil {
			return mb.Coordinates{}, err
		}

		fmt.Fprint(c.out, "[AIM]: ")
		if !c.scanner.Scan() {
			if err := c.scanner.Err(); err != nil {
				return mb.Coordinates{}, err
			}
			return mb.Coordinates{}, io.EOF
		}

		target, err := mb.ParseCoordinates(c.scanner.Text())
		if err == nil {
			return target, nil
		}
		fmt.Fprintln(c.out, "Invalid format! Use a letter A-J followed by 1-10, e.g. B7")
	}
}

// ConsoleRenderer prints boards and exchange results as text.
type ConsoleRenderer struct {
	out       io.Writer
	showFleet bool
}

var _ Renderer = (*ConsoleRenderer)(nil)

func NewConsoleRenderer(out io.Writer, showFleet bool) *ConsoleRenderer {
	return &ConsoleRenderer{out: out, showFleet: showFleet}
}

// RenderBoard prints the grid with a letter header and row numbers.
// With hideUnknown intact ship cells are drawn as unknown water.
func (r *ConsoleRenderer) RenderBoard(grid *mb.Grid, hideUnknown bool) {
	var sb strings.Builder

	sb.WriteString("   ")
	for y := 0; y < mb.GridSize; y++ {
		fmt.Fprintf(&sb, "%c  ", 'A'+y)
	}
	sb.WriteString("\n")

	for x := 0; x < mb.GridSize; x++ {
		fmt.Fprintf(&sb, "%2d ", x+1)
		for y := 0; y < mb.GridSize; y++ {
			sb.WriteString(cellGlyph(grid[x][y], hideUnknown))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	fmt.Fprintln(r.out, sb.String())
}

func cellGlyph(cell mb.Cell, hideUnknown bool) string {
	switch cell {
	case mb.CellShipIntact:
		if hideUnknown {
			return glyphUnknown
		}
		return glyphShip
	case mb.CellShipHit, mb.CellHit:
		return glyphHit
	case mb.CellWater, mb.CellMiss:
		return glyphMiss
	default:
		return glyphUnknown
	}
}

func (r *ConsoleRenderer) RenderExchange(report ExchangeReport) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, exchangeSeparator)

	if report.OwnShot != nil {
		fmt.Fprintf(r.out, "[YOU] %s: %s\n", report.OwnShot, describeSignal(report.OwnShotSignal))
	}

	incoming := report.RawIncoming
	if incoming == "" {
		incoming = "???"
	}
	verdict := "MISS"
	if report.IncomingResult.IsHit() {
		verdict = "HIT!"
	}
	fmt.Fprintf(r.out, "[OPPONENT] fired at %s: %s\n", incoming, verdict)

	fmt.Fprintln(r.out, "YOUR SHOTS:")
	r.RenderBoard(report.TrackingGrid, true)
	if r.showFleet {
		fmt.Fprintln(r.out, "YOUR FLEET:")
		r.RenderBoard(report.FleetGrid, false)
	}
}

func (r *ConsoleRenderer) RenderGameOver(outcome Outcome) {
	won := outcome.MatchStatus == mb.PlayerMatchStatusWon

	fmt.Fprintln(r.out)
	if won {
		fmt.Fprintln(r.out, "YOU WIN!")
	} else {
		fmt.Fprintln(r.out, "YOU LOSE :(")
	}

	fmt.Fprintln(r.out, "\nOPPONENT MAP:")
	r.RenderBoard(outcome.TrackingGrid, !won)
	fmt.Fprintln(r.out, "\nYOUR MAP:")
	r.RenderBoard(outcome.FleetGrid, false)
}

// Unknown tokens are shown as received
func describeSignal(signal mc.Signal) string {
	switch signal.Code {
	case mc.CodeMiss:
		return "MISS!"
	case mc.CodeHit:
		return "HIT!"
	case mc.CodeSunk:
		return "HIT AND SUNK!"
	case mc.CodeLastSunk:
		return "LAST SHIP SUNK!"
	default:
		return signal.Token
	}
}
