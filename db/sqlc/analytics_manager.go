package sqlc

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const (
	OutcomeWon          = "won"
	OutcomeLost         = "lost"
	OutcomeTimeout      = "timeout"
	OutcomeDisconnected = "disconnected"
	OutcomeAborted      = "aborted"
)

// GameRecord is what is kept about a finished game. Nothing in it is
// enough to resume the game.
type GameRecord struct {
	GameUuid      uuid.UUID
	ServerIpNet   pqtype.Inet
	PeerIpNet     pqtype.Inet
	Role          string
	Outcome       string
	ShotsFired    int
	ShotsReceived int
}

type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) RecordGame(ctx context.Context, record GameRecord) error {
	if err := a.queries.InsertGameResult(ctx, InsertGameResultParams{
		ID:            record.GameUuid,
		PeerAddr:      record.PeerIpNet,
		Role:          record.Role,
		Outcome:       record.Outcome,
		ShotsFired:    int32(record.ShotsFired),
		ShotsReceived: int32(record.ShotsReceived),
	}); err != nil {
		return err
	}

	return a.queries.IncrementGamesPlayedCount(ctx, record.ServerIpNet)
}

func (a *AnalyticsManager) GetGamesPlayedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesPlayedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetOutcomeCount(ctx context.Context, outcome string) (int64, error) {
	return a.queries.CountGameResultsByOutcome(ctx, outcome)
}
