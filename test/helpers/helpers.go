// Package helpers provides shared utilities for the integration tests.
package helpers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/models"
)

// SetupTestDB connects to the test database and applies the schema.
// Connection parameters come from ODDSMITH_TEST_DB_* environment
// variables with local-development defaults.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Host:           GetEnvOrDefault("ODDSMITH_TEST_DB_HOST", "localhost"),
		Port:           getEnvInt("ODDSMITH_TEST_DB_PORT", 5432),
		Name:           GetEnvOrDefault("ODDSMITH_TEST_DB_NAME", "oddsmith_test"),
		User:           GetEnvOrDefault("ODDSMITH_TEST_DB_USER", "oddsmith"),
		Password:       GetEnvOrDefault("ODDSMITH_TEST_DB_PASSWORD", "oddsmith"),
		SSLMode:        "disable",
		MaxConnections: 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewDB(ctx, &cfg)
	require.NoError(t, err, "failed to connect to test database")

	require.NoError(t, db.EnsureSchema(ctx), "failed to apply schema")

	return db
}

// TeardownTestDB truncates all tables and closes the connection.
func TeardownTestDB(t *testing.T, db *database.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{"wagers", "contests", "bankroll_snapshots", "model_weights"}
	for _, table := range tables {
		if _, err := db.GetPool().Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Logf("warning: failed to truncate table %s: %v", table, err)
		}
	}

	db.Close()
}

// CompletedContest builds a finished contest with the given final scores.
func CompletedContest(sport, home, away string, start time.Time, homeScore, awayScore int) *models.Contest {
	h, a := homeScore, awayScore
	return &models.Contest{
		ID:             uuid.New(),
		Sport:          sport,
		HomeTeam:       home,
		AwayTeam:       away,
		ScheduledStart: start,
		HomeScore:      &h,
		AwayScore:      &a,
		Status:         models.ContestStatusCompleted,
	}
}

// ScheduledContest builds an upcoming contest carrying market odds.
func ScheduledContest(sport, home, away string, start time.Time, homeOdds, awayOdds float64) *models.Contest {
	ho, ao := homeOdds, awayOdds
	return &models.Contest{
		ID:             uuid.New(),
		Sport:          sport,
		HomeTeam:       home,
		AwayTeam:       away,
		ScheduledStart: start,
		HomeOdds:       &ho,
		AwayOdds:       &ao,
		Status:         models.ContestStatusScheduled,
	}
}

// PendingWager builds an unsettled wager on the home side of a contest.
func PendingWager(contestID uuid.UUID, stake, odds float64) *models.Wager {
	return &models.Wager{
		ID:           uuid.New(),
		PredictionID: uuid.New(),
		ContestID:    contestID,
		Selection:    models.SelectionHome,
		Stake:        stake,
		Odds:         odds,
		Result:       models.WagerResultPending,
		PlacedAt:     time.Now().UTC(),
	}
}

// CreateTestContext creates a context with a timeout, cancelled on cleanup.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)

	return ctx
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
