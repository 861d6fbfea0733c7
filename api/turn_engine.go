package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
	mc "github.com/saeidalz13/battleship-duel/models/connection"
)

// Consecutive read timeouts that end the session
const maxReadTimeouts = 3

type EngineState uint8

const (
	// Passive side before the opponent's first shot
	StateAwaitingFirstMove EngineState = iota
	StateWaitingForOpponentReply
	StateFinished
)

func (s EngineState) String() string {
	switch s {
	case StateAwaitingFirstMove:
		return "AwaitingFirstMove"
	case StateWaitingForOpponentReply:
		return "WaitingForOpponentReply"
	case StateFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// CoordinateSource picks this side's next target. It must only return
// valid coordinates.
type CoordinateSource interface {
	NextCoordinate(ctx context.Context) (mb.Coordinates, error)
}

type Renderer interface {
	RenderExchange(report ExchangeReport)
	RenderGameOver(outcome Outcome)
}

// ExchangeReport describes one processed inbound line for the UI.
type ExchangeReport struct {
	// Nil when the line carried no verdict on our shot (start message)
	OwnShot       *mb.Coordinates
	OwnShotSignal mc.Signal

	// Nil when the opponent's target was missing or invalid
	IncomingShot   *mb.Coordinates
	RawIncoming    string
	IncomingResult mb.ShotResult

	FleetGrid    *mb.Grid
	TrackingGrid *mb.Grid
}

type Outcome struct {
	GameUuid      uuid.UUID
	MatchStatus   int
	ShotsFired    int
	ShotsReceived int
	FleetGrid     *mb.Grid
	TrackingGrid  *mb.Grid
}

// TurnEngine drives one game over a transport, one exchange at a time.
type TurnEngine struct {
	game      *mb.Game
	transport mc.Transport
	coords    CoordinateSource
	renderer  Renderer
	logger    *zap.Logger

	state    EngineState
	lastSent string
	timeouts int
}

func NewTurnEngine(game *mb.Game, transport mc.Transport, coords CoordinateSource, renderer Renderer, logger *zap.Logger) *TurnEngine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TurnEngine{
		game:      game,
		transport: transport,
		coords:    coords,
		renderer:  renderer,
		logger:    logger.With(zap.String("game_uuid", game.Uuid().String())),
		state:     StateAwaitingFirstMove,
	}
}

func (te *TurnEngine) State() EngineState {
	return te.state
}

// LastSent is the last line written to the transport.
func (te *TurnEngine) LastSent() string {
	return te.lastSent
}

func (te *TurnEngine) Outcome() Outcome {
	return Outcome{
		GameUuid:      te.game.Uuid(),
		MatchStatus:   te.game.MatchStatus(),
		ShotsFired:    te.game.ShotsFired(),
		ShotsReceived: te.game.ShotsReceived(),
		FleetGrid:     te.game.FleetGrid(),
		TrackingGrid:  te.game.TrackingGrid(),
	}
}

// Run plays until the match is decided or the session breaks. An error
// means there is no verdict: ErrCommunicationTimeout, ErrTransportClosed,
// a failed write or the context error.
func (te *TurnEngine) Run(ctx context.Context) (Outcome, error) {
	if te.game.IsTurn() {
		if err := te.openGame(ctx); err != nil {
			te.state = StateFinished
			return te.Outcome(), err
		}
	} else {
		te.logger.Info("waiting for the opponent's first move")
	}

	for te.state != StateFinished {
		if err := ctx.Err(); err != nil {
			te.state = StateFinished
			return te.Outcome(), err
		}

		line, err := te.transport.ReadLine()
		if err != nil {
			if err := te.handleReadErr(err); err != nil {
				te.state = StateFinished
				return te.Outcome(), err
			}
			continue
		}
		te.timeouts = 0

		if err := te.HandleLine(ctx, line); err != nil {
			te.state = StateFinished
			return te.Outcome(), err
		}
	}

	outcome := te.Outcome()
	te.logger.Info("match over", zap.Int("match_status", outcome.MatchStatus))
	if te.renderer != nil {
		te.renderer.RenderGameOver(outcome)
	}
	return outcome, nil
}

func (te *TurnEngine) openGame(ctx context.Context) error {
	target, err := te.coords.NextCoordinate(ctx)
	if err != nil {
		return err
	}

	msg := mc.NewMessage(mc.NewSignal(mc.CodeStart))
	msg.AddTarget(target)
	if err := te.send(msg); err != nil {
		return err
	}

	te.game.Fire(target)
	te.state = StateWaitingForOpponentReply
	return nil
}

// A timeout resends the last line; the peer tolerates duplicates.
// Anything else ends the session.
func (te *TurnEngine) handleReadErr(err error) error {
	if !mc.IsTimeout(err) {
		te.logger.Info("transport closed", zap.Error(err))
		return fmt.Errorf("%w: %w", cerr.ErrTransportClosed, err)
	}

	te.timeouts++
	if te.timeouts >= maxReadTimeouts {
		te.logger.Error("read timeout limit reached", zap.Int("timeouts", te.timeouts))
		return cerr.ErrCommunicationTimeout
	}

	te.logger.Warn("read timed out; resending last line",
		zap.Int("timeouts", te.timeouts),
		zap.String("line", te.lastSent),
	)
	if te.lastSent == "" {
		return nil
	}
	return te.transport.SendLine(te.lastSent)
}

// HandleLine processes one inbound line: the opponent's verdict on our
// last shot followed by their own shot, and answers it.
func (te *TurnEngine) HandleLine(ctx context.Context, line string) error {
	msg, err := mc.ParseMessage(line)
	if err != nil {
		te.logger.Warn("invalid target in inbound line", zap.String("line", line), zap.Error(err))
	}

	report := ExchangeReport{
		OwnShotSignal: msg.Signal,
		FleetGrid:     te.game.FleetGrid(),
		TrackingGrid:  te.game.TrackingGrid(),
	}

	if !msg.Signal.IsStart() {
		if msg.Signal.Code == mc.CodeUnknown {
			te.logger.Warn("unrecognised result token", zap.String("token", msg.Signal.Token))
		}
		if shot, ok := te.game.LastShot(); ok {
			report.OwnShot = &shot
		}
		te.game.ApplyShotResult(msg.Signal.ShotResult())
	}

	// Our shot sank their last ship
	if te.game.IsMatchOver() {
		te.state = StateFinished
		return nil
	}

	result := mb.ShotResultMiss
	if msg.HasTarget() {
		result = te.game.ReceiveShot(*msg.Target)
	} else {
		te.logger.Warn("inbound line has no usable target; answering as a miss", zap.String("line", line))
	}
	report.IncomingShot = msg.Target
	report.RawIncoming = msg.RawTarget
	report.IncomingResult = result

	if te.renderer != nil {
		te.renderer.RenderExchange(report)
	}

	reply := mc.NewMessage(mc.SignalFromShotResult(result))
	if result == mb.ShotResultLastSunk {
		te.state = StateFinished
		return te.send(reply)
	}

	target, err := te.coords.NextCoordinate(ctx)
	if err != nil {
		return err
	}
	reply.AddTarget(target)
	if err := te.send(reply); err != nil {
		return err
	}

	te.game.Fire(target)
	te.state = StateWaitingForOpponentReply
	return nil
}

func (te *TurnEngine) send(msg mc.Message) error {
	te.lastSent = msg.Encode()
	te.logger.Debug("sending line", zap.String("line", te.lastSent))
	return te.transport.SendLine(te.lastSent)
}
