package sqlc

import (
	"context"
	"time"
)

// Upper bound for every analytics query after a game
const QuerierCtxTimeout = time.Second * 10

type DbManager struct {
	Analytics *AnalyticsManager
}

func NewDbManager(queries Querier) DbManager {
	return DbManager{Analytics: NewAnalyticsManager(queries)}
}

// RecordFinishedGame stores the record under its own timeout. The game's
// context may already be cancelled by the time the game ends.
func (m DbManager) RecordFinishedGame(record GameRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), QuerierCtxTimeout)
	defer cancel()

	return m.Analytics.RecordGame(ctx, record)
}
