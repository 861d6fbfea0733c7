package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saeidalz13/battleship-duel/api"
	"github.com/saeidalz13/battleship-duel/db"
	"github.com/saeidalz13/battleship-duel/internal/config"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

func main() {
	os.Exit(run())
}

func newLogger(stage string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if stage == config.StageProd {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func run() int {
	if os.Getenv("STAGE") != config.StageProd {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	cfg, err := config.Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		return 2
	}

	logger := newLogger(cfg.Stage)
	defer logger.Sync()

	opts := []api.Option{
		api.WithStage(cfg.Stage),
		api.WithMode(cfg.Mode),
		api.WithHost(cfg.Host),
		api.WithPort(cfg.Port),
		api.WithTransport(cfg.Transport),
		api.WithReadTimeout(cfg.ReadTimeout),
		api.WithShowFleet(cfg.ShowFleet),
		api.WithLogger(logger),
		api.WithMapSource(api.NewFileOrRandomMapSource(cfg.MapPath, mb.NewFleetGenerator(nil), logger)),
	}

	if cfg.DatabaseURL != "" {
		psql, err := db.ConnectToDb(cfg.DatabaseURL, db.DefaultMigrationDir, logger)
		if err != nil {
			logger.Warn("database unavailable; game results will not be recorded", zap.Error(err))
		} else {
			defer psql.Close()
			opts = append(opts, api.WithDb(psql))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(opts...)
	outcome, err := server.Play(ctx)
	if err != nil {
		logger.Error("game ended without a verdict", zap.Error(err))
		return 1
	}

	logger.Info("game finished",
		zap.String("game_uuid", outcome.GameUuid.String()),
		zap.Bool("won", outcome.MatchStatus == mb.PlayerMatchStatusWon),
		zap.Int("shots_fired", outcome.ShotsFired),
		zap.Int("shots_received", outcome.ShotsReceived),
	)
	return 0
}
