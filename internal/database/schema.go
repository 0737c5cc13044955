package database

import (
	"context"
	"fmt"
)

// schemaStatements holds the idempotent DDL for the four tables the
// repositories read and write. EnsureSchema applies them in order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS contests (
		id              UUID PRIMARY KEY,
		sport           TEXT NOT NULL,
		home_team       TEXT NOT NULL,
		away_team       TEXT NOT NULL,
		scheduled_start TIMESTAMPTZ NOT NULL,
		home_score      INTEGER,
		away_score      INTEGER,
		home_odds       DOUBLE PRECISION,
		away_odds       DOUBLE PRECISION,
		status          TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contests_sport_start
		ON contests (sport, scheduled_start)`,
	`CREATE INDEX IF NOT EXISTS idx_contests_matchup
		ON contests (sport, home_team, away_team, scheduled_start)`,
	`CREATE TABLE IF NOT EXISTS wagers (
		id            UUID PRIMARY KEY,
		prediction_id UUID NOT NULL,
		contest_id    UUID NOT NULL REFERENCES contests (id),
		selection     TEXT NOT NULL,
		stake         DOUBLE PRECISION NOT NULL,
		odds          DOUBLE PRECISION NOT NULL,
		result        TEXT NOT NULL DEFAULT 'pending',
		profit        DOUBLE PRECISION NOT NULL DEFAULT 0,
		placed_at     TIMESTAMPTZ NOT NULL,
		settled_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wagers_result ON wagers (result)`,
	`CREATE TABLE IF NOT EXISTS bankroll_snapshots (
		key          TEXT PRIMARY KEY,
		balance      DOUBLE PRECISION NOT NULL,
		total_bets   INTEGER NOT NULL,
		wins         INTEGER NOT NULL,
		losses       INTEGER NOT NULL,
		pushes       INTEGER NOT NULL,
		total_staked DOUBLE PRECISION NOT NULL,
		total_profit DOUBLE PRECISION NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS model_weights (
		version    TEXT PRIMARY KEY,
		weights    BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates any missing tables and indexes. Safe to run on
// every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
