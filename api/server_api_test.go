package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/saeidalz13/battleship-duel/db/sqlc"
	cerr "github.com/saeidalz13/battleship-duel/internal/error"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

func TestPlayOverLoopback(t *testing.T) {
	for _, transport := range []string{TransportTCP, TransportWs} {
		t.Run(transport, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()

			mock.ExpectExec(`INSERT INTO game_results`).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), ModeServer, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(`INSERT INTO game_server_analytics`).
				WillReturnResult(sqlmock.NewResult(0, 1))

			listener, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatal(err)
			}
			port := listener.Addr().(*net.TCPAddr).Port

			var hostOut, guestOut bytes.Buffer
			host := NewServer(
				WithMode(ModeServer),
				WithTransport(transport),
				WithListener(listener),
				WithReadTimeout(time.Second*5),
				WithMapSource(staticMapSource(generatedFleet(t, 3))),
				WithCoordinateSource(&sweepCoords{}),
				WithConsole(strings.NewReader(""), &hostOut),
				WithDb(db),
			)
			guest := NewServer(
				WithMode(ModeClient),
				WithTransport(transport),
				WithHost("127.0.0.1"),
				WithPort(port),
				WithReadTimeout(time.Second*5),
				WithShowFleet(false),
				WithMapSource(staticMapSource(generatedFleet(t, 4))),
				WithCoordinateSource(&sweepCoords{}),
				WithConsole(strings.NewReader(""), &guestOut),
			)

			type result struct {
				outcome Outcome
				err     error
			}
			hostDone := make(chan result, 1)
			go func() {
				outcome, err := host.Play(context.Background())
				hostDone <- result{outcome: outcome, err: err}
			}()

			guestOutcome, err := guest.Play(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			var hostResult result
			select {
			case hostResult = <-hostDone:
			case <-time.After(time.Second * 10):
				t.Fatal("host never finished")
			}
			if hostResult.err != nil {
				t.Fatal(hostResult.err)
			}

			if guestOutcome.MatchStatus+hostResult.outcome.MatchStatus != 0 || guestOutcome.MatchStatus == mb.PlayerMatchStatusUndefined {
				t.Fatalf("expected one winner and one loser, got guest: %d host: %d", guestOutcome.MatchStatus, hostResult.outcome.MatchStatus)
			}

			for name, out := range map[string]string{"host": hostOut.String(), "guest": guestOut.String()} {
				if !strings.Contains(out, "YOU WIN!") && !strings.Contains(out, "YOU LOSE :(") {
					t.Fatalf("%s output has no verdict:\n%s", name, out)
				}
			}
			if !strings.Contains(hostOut.String(), "YOUR STARTING MAP") {
				t.Fatal("host shows its fleet and must print the starting map")
			}
			if strings.Contains(guestOut.String(), "YOUR FLEET:") {
				t.Fatal("guest hides its fleet between exchanges")
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestPlayStopsWaitingOnContext(t *testing.T) {
	for _, transport := range []string{TransportTCP, TransportWs} {
		t.Run(transport, func(t *testing.T) {
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatal(err)
			}

			server := NewServer(
				WithTransport(transport),
				WithListener(listener),
				WithMapSource(staticMapSource(testFleetEncoding)),
				WithConsole(strings.NewReader(""), io.Discard),
			)

			ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
			defer cancel()

			if _, err := server.Play(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("expected error: %v\tgot: %v", context.DeadlineExceeded, err)
			}
		})
	}
}

func TestPlayFailsWithoutFleet(t *testing.T) {
	fg := mb.NewFleetGenerator(rand.New(rand.NewSource(1)))
	fg.MaxGridAttempts = 0

	server := NewServer(
		WithMapSource(NewFileOrRandomMapSource("", fg, nil)),
		WithConsole(strings.NewReader(""), io.Discard),
	)
	if _, err := server.Play(context.Background()); !errors.Is(err, cerr.ErrFleetGenerationFailed) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrFleetGenerationFailed, err)
	}
}

func TestNewServerPanicsOnInvalidOption(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "mode", opt: WithMode("spectator")},
		{name: "transport", opt: WithTransport("udp")},
		{name: "stage", opt: WithStage("staging")},
		{name: "port", opt: WithPort(70000)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected NewServer to panic")
				}
			}()
			NewServer(test.opt)
		})
	}
}

func TestOutcomeLabel(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		runErr   error
		expected string
	}{
		{name: "won", status: mb.PlayerMatchStatusWon, expected: sqlc.OutcomeWon},
		{name: "lost", status: mb.PlayerMatchStatusLost, expected: sqlc.OutcomeLost},
		{name: "timeout", runErr: cerr.ErrCommunicationTimeout, expected: sqlc.OutcomeTimeout},
		{name: "disconnected", runErr: fmt.Errorf("%w: %w", cerr.ErrTransportClosed, io.EOF), expected: sqlc.OutcomeDisconnected},
		{name: "cancelled", runErr: context.Canceled, expected: sqlc.OutcomeAborted},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := outcomeLabel(Outcome{MatchStatus: test.status}, test.runErr)
			if got != test.expected {
				t.Fatalf("expected label: %s\tgot: %s", test.expected, got)
			}
		})
	}
}

func TestInetFromAddr(t *testing.T) {
	tests := []struct {
		name     string
		addr     net.Addr
		expected string
	}{
		{name: "ipv4", addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 5), Port: 9191}, expected: "10.0.0.5/32"},
		{name: "ipv6", addr: &net.TCPAddr{IP: net.IPv6loopback, Port: 9191}, expected: "::1/128"},
		{name: "nil", addr: nil},
		{name: "no ip", addr: &net.UnixAddr{Name: "/tmp/battleship.sock", Net: "unix"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			inet := inetFromAddr(test.addr)
			if test.expected == "" {
				if inet.Valid {
					t.Fatalf("expected invalid inet, got: %s", inet.IPNet.String())
				}
				return
			}

			if !inet.Valid || inet.IPNet.String() != test.expected {
				t.Fatalf("expected inet: %s\tgot: %s (valid: %t)", test.expected, inet.IPNet.String(), inet.Valid)
			}
		})
	}
}
