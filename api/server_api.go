package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"
	"go.uber.org/zap"

	"github.com/saeidalz13/battleship-duel/db/sqlc"
	cerr "github.com/saeidalz13/battleship-duel/internal/error"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
	mc "github.com/saeidalz13/battleship-duel/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	// The server waits for the opponent; the client dials and fires first
	ModeServer = "server"
	ModeClient = "client"

	TransportTCP = "tcp"
	TransportWs  = "ws"

	URLPathBattleship = "/battleship"
)

var (
	defaultPort = 9191
	defaultHost = "localhost"

	upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// one protocol line per frame, tiny
		ReadBufferSize:  512,
		WriteBufferSize: 512,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

// Server sets up the connection to the opponent and plays one game on it.
type Server struct {
	port        int
	host        string
	stage       string
	mode        string
	transport   string
	readTimeout time.Duration
	showFleet   bool

	listener  net.Listener
	mapSource MapSource
	coords    CoordinateSource
	renderer  *ConsoleRenderer
	in        io.Reader
	out       io.Writer
	logger    *zap.Logger
	DbManager *sqlc.DbManager
}

type Option func(*Server) error

func NewServer(optFuncs ...Option) *Server {
	server := Server{
		port:        defaultPort,
		host:        defaultHost,
		stage:       StageDev,
		mode:        ModeServer,
		transport:   TransportTCP,
		readTimeout: mc.DefaultReadTimeout,
		showFleet:   true,
		in:          os.Stdin,
		out:         os.Stdout,
		logger:      zap.NewNop(),
	}

	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	if server.mapSource == nil {
		server.mapSource = NewFileOrRandomMapSource("", nil, server.logger)
	}
	if server.coords == nil {
		server.coords = NewConsoleCoordinateSource(server.in, server.out)
	}
	server.renderer = NewConsoleRenderer(server.out, server.showFleet)

	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("invalid port: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithHost(host string) Option {
	return func(s *Server) error {
		s.host = host
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != StageProd && stage != StageDev {
			return cerr.ErrInvalidStage(stage)
		}
		s.stage = stage
		return nil
	}
}

func WithMode(mode string) Option {
	return func(s *Server) error {
		if mode != ModeServer && mode != ModeClient {
			return cerr.ErrInvalidMode(mode)
		}
		s.mode = mode
		return nil
	}
}

func WithTransport(transport string) Option {
	return func(s *Server) error {
		if transport != TransportTCP && transport != TransportWs {
			return cerr.ErrInvalidTransport(transport)
		}
		s.transport = transport
		return nil
	}
}

func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		s.readTimeout = timeout
		return nil
	}
}

// WithShowFleet prints the own fleet after every exchange.
func WithShowFleet(show bool) Option {
	return func(s *Server) error {
		s.showFleet = show
		return nil
	}
}

// WithListener makes server mode accept on l instead of listening on the port.
func WithListener(l net.Listener) Option {
	return func(s *Server) error {
		s.listener = l
		return nil
	}
}

func WithMapSource(source MapSource) Option {
	return func(s *Server) error {
		s.mapSource = source
		return nil
	}
}

func WithCoordinateSource(coords CoordinateSource) Option {
	return func(s *Server) error {
		s.coords = coords
		return nil
	}
}

func WithConsole(in io.Reader, out io.Writer) Option {
	return func(s *Server) error {
		s.in = in
		s.out = out
		return nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

func WithDb(db *sql.DB) Option {
	return func(s *Server) error {
		dbManager := sqlc.NewDbManager(sqlc.New(db))
		s.DbManager = &dbManager
		return nil
	}
}

func (s *Server) address() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Play prepares the fleet, connects to the opponent and runs the game
// to its end. The returned error is non-nil when there is no verdict.
func (s *Server) Play(ctx context.Context) (Outcome, error) {
	encoding, err := s.mapSource.LoadOrGenerateMap()
	if err != nil {
		return Outcome{}, err
	}

	game, err := mb.NewGame(encoding, s.mode == ModeClient)
	if err != nil {
		return Outcome{}, err
	}
	logger := s.logger.With(zap.String("game_uuid", game.Uuid().String()), zap.String("mode", s.mode), zap.String("stage", s.stage))

	if s.showFleet {
		fmt.Fprintln(s.out, "\n--- YOUR STARTING MAP ---")
		s.renderer.RenderBoard(game.FleetGrid(), false)
	}

	transport, err := s.Connect(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		transport.Close()
		logger.Info("connection closed", zap.String("remote_addr", transport.RemoteAddr().String()))
	}()
	logger.Info("connection established", zap.String("remote_addr", transport.RemoteAddr().String()))

	engine := NewTurnEngine(game, transport, s.coords, s.renderer, logger)
	outcome, runErr := engine.Run(ctx)

	if err := s.recordOutcome(transport, outcome, runErr); err != nil {
		// for now not failing the game for it
		logger.Warn("failed to record game outcome", zap.Error(err))
	}
	return outcome, runErr
}

// Connect accepts the single opponent in server mode or dials it in
// client mode.
func (s *Server) Connect(ctx context.Context) (mc.Transport, error) {
	switch {
	case s.mode == ModeServer && s.transport == TransportWs:
		return s.acceptWs(ctx)
	case s.mode == ModeServer:
		return s.acceptTCP(ctx)
	case s.transport == TransportWs:
		return s.dialWs(ctx)
	default:
		return s.dialTCP(ctx)
	}
}

func (s *Server) listen(ctx context.Context) (net.Listener, error) {
	if s.listener != nil {
		return s.listener, nil
	}

	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", net.JoinHostPort("", strconv.Itoa(s.port)))
}

func (s *Server) acceptTCP(ctx context.Context) (mc.Transport, error) {
	listener, err := s.listen(ctx)
	if err != nil {
		return nil, err
	}
	defer listener.Close()
	s.logger.Info("waiting for the opponent", zap.String("addr", listener.Addr().String()))

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	conn, err := listener.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return mc.NewSession(conn, s.readTimeout, s.logger), nil
}

func (s *Server) dialTCP(ctx context.Context) (mc.Transport, error) {
	s.logger.Info("connecting", zap.String("addr", s.address()))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", s.address())
	if err != nil {
		return nil, err
	}
	return mc.NewSession(conn, s.readTimeout, s.logger), nil
}

// acceptWs serves GET /battleship until the first websocket upgrade
// succeeds. Later upgrade attempts are turned away.
func (s *Server) acceptWs(ctx context.Context) (mc.Transport, error) {
	listener, err := s.listen(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("waiting for the opponent", zap.String("addr", listener.Addr().String()), zap.String("path", URLPathBattleship))

	conns := make(chan *websocket.Conn, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+URLPathBattleship, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("could not open websocket connection", zap.Error(err))
			return
		}

		select {
		case conns <- conn:
		default:
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "game already has two players")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
		}
	})

	httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: time.Second * 5}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	// Hijacked websocket connections survive Close
	defer httpServer.Close()

	select {
	case conn := <-conns:
		return mc.NewWsSession(conn, s.readTimeout, s.logger), nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil, ctx.Err()
		}
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) dialWs(ctx context.Context) (mc.Transport, error) {
	url := "ws://" + s.address() + URLPathBattleship
	s.logger.Info("connecting", zap.String("url", url))

	dialer := websocket.Dialer{HandshakeTimeout: time.Second * 10}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return mc.NewWsSession(conn, s.readTimeout, s.logger), nil
}

func (s *Server) recordOutcome(transport mc.Transport, outcome Outcome, runErr error) error {
	if s.DbManager == nil {
		return nil
	}

	return s.DbManager.RecordFinishedGame(sqlc.GameRecord{
		GameUuid:      outcome.GameUuid,
		ServerIpNet:   inetFromAddr(transport.LocalAddr()),
		PeerIpNet:     inetFromAddr(transport.RemoteAddr()),
		Role:          s.mode,
		Outcome:       outcomeLabel(outcome, runErr),
		ShotsFired:    outcome.ShotsFired,
		ShotsReceived: outcome.ShotsReceived,
	})
}

func outcomeLabel(outcome Outcome, runErr error) string {
	switch {
	case errors.Is(runErr, cerr.ErrCommunicationTimeout):
		return sqlc.OutcomeTimeout
	case errors.Is(runErr, cerr.ErrTransportClosed):
		return sqlc.OutcomeDisconnected
	case runErr != nil:
		return sqlc.OutcomeAborted
	case outcome.MatchStatus == mb.PlayerMatchStatusWon:
		return sqlc.OutcomeWon
	default:
		return sqlc.OutcomeLost
	}
}

// Single host network of the address; invalid when it has no IP.
func inetFromAddr(addr net.Addr) pqtype.Inet {
	if addr == nil {
		return pqtype.Inet{}
	}

	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return pqtype.Inet{}
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return pqtype.Inet{}
	}

	mask := net.CIDRMask(128, 128)
	if ip4 := ip.To4(); ip4 != nil {
		ip = ip4
		mask = net.CIDRMask(32, 32)
	}

	return pqtype.Inet{IPNet: net.IPNet{IP: ip, Mask: mask}, Valid: true}
}
