package api

import (
	"context"
	"io"
	"math/rand"
	"net"
	"strings"
	"sync"
	"testing"

	mb "github.com/saeidalz13/battleship-duel/models/battleship"
	mc "github.com/saeidalz13/battleship-duel/models/connection"
)

// Standard fleet, ships kept apart by empty rows
var testFleetEncoding = strings.Join([]string{
	"####.###.#",
	"..........",
	"###.##.##.",
	"..........",
	"##.#.#.#..",
	"..........",
	"..........",
	"..........",
	"..........",
	"..........",
}, "")

// One single cell ship at A1
var testLoneShipEncoding = "#" + strings.Repeat(".", mb.GridEncodingLength-1)

var errTestTimeout = mc.NewConnErr(mc.ConnLoopRetry).AddDesc("i/o timeout")

type scriptedRead struct {
	line string
	err  error
}

// fakeTransport replays scripted reads and breaks once they run out.
type fakeTransport struct {
	mu    sync.Mutex
	reads []scriptedRead
	sent  []string
}

func newFakeTransport(reads ...scriptedRead) *fakeTransport {
	return &fakeTransport{reads: reads}
}

func scriptLine(l string) scriptedRead {
	return scriptedRead{line: l}
}

func scriptTimeout() scriptedRead {
	return scriptedRead{err: errTestTimeout}
}

func (f *fakeTransport) ReadLine() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.reads) == 0 {
		return "", mc.NewConnErr(mc.ConnLoopBreak).AddDesc(io.EOF.Error())
	}
	r := f.reads[0]
	f.reads = f.reads[1:]
	return r.line, r.err
}

func (f *fakeTransport) SendLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, line)
	return nil
}

func (f *fakeTransport) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.sent...)
}

func (f *fakeTransport) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9191}
}

func (f *fakeTransport) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (f *fakeTransport) Close() error {
	return nil
}

// scriptedCoords hands out targets in order and io.EOF after the last.
type scriptedCoords struct {
	targets []mb.Coordinates
}

func newScriptedCoords(tokens ...string) *scriptedCoords {
	sc := &scriptedCoords{}
	for _, token := range tokens {
		c, err := mb.ParseCoordinates(token)
		if err != nil {
			panic(err)
		}
		sc.targets = append(sc.targets, c)
	}
	return sc
}

func (sc *scriptedCoords) NextCoordinate(ctx context.Context) (mb.Coordinates, error) {
	if len(sc.targets) == 0 {
		return mb.Coordinates{}, io.EOF
	}
	c := sc.targets[0]
	sc.targets = sc.targets[1:]
	return c, nil
}

// sweepCoords fires at every cell once, row by row.
type sweepCoords struct {
	next int
}

func (sc *sweepCoords) NextCoordinate(ctx context.Context) (mb.Coordinates, error) {
	if sc.next >= mb.GridEncodingLength {
		return mb.Coordinates{}, io.EOF
	}
	c := mb.NewCoordinates(sc.next/mb.GridSize, sc.next%mb.GridSize)
	sc.next++
	return c, nil
}

type staticMapSource string

func (s staticMapSource) LoadOrGenerateMap() (string, error) {
	return string(s), nil
}

// recordingRenderer keeps what the engine asked to render.
type recordingRenderer struct {
	exchanges []ExchangeReport
	outcomes  []Outcome
}

func (r *recordingRenderer) RenderExchange(report ExchangeReport) {
	r.exchanges = append(r.exchanges, report)
}

func (r *recordingRenderer) RenderGameOver(outcome Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func generatedFleet(t *testing.T, seed int64) string {
	t.Helper()

	encoding, err := mb.NewFleetGenerator(rand.New(rand.NewSource(seed))).Generate()
	if err != nil {
		t.Fatal(err)
	}
	return encoding
}

func newTestGame(t *testing.T, encoding string, isTurn bool) *mb.Game {
	t.Helper()

	game, err := mb.NewGame(encoding, isTurn)
	if err != nil {
		t.Fatal(err)
	}
	return game
}
