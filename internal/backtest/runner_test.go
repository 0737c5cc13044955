package backtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/logger"
	"github.com/yourusername/oddsmith/internal/model"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
	"github.com/yourusername/oddsmith/internal/staking"
)

func testConfig() config.BacktestConfig {
	return config.BacktestConfig{
		StartDate:        "2025-01-01",
		EndDate:          "2025-06-30",
		StartingBankroll: 1000,
		MinConfidence:    0,
		MinExpectedValue: -1,
		SampleSize:       50,
	}
}

// seedHistory fills the repository with a deterministic season: the Hawks
// beat everyone, the Crows lose to everyone, and the rest trade results.
func seedHistory(t *testing.T, repo *repository.MemoryContestRepository, n int) {
	t.Helper()
	teams := []string{"Hawks", "Crows", "Bisons", "Otters"}
	start := time.Date(2025, 1, 5, 19, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		home := teams[i%len(teams)]
		away := teams[(i+1+i/len(teams))%len(teams)]
		if home == away {
			away = teams[(i+2)%len(teams)]
		}

		homeScore, awayScore := 100, 95
		switch {
		case away == "Hawks" || home == "Crows":
			homeScore, awayScore = 92, 104
		case home == "Hawks" || away == "Crows":
			homeScore, awayScore = 104, 92
		case i%2 == 0:
			homeScore, awayScore = 95, 100
		}

		homeOdds, awayOdds := 2.0, 1.9
		require.NoError(t, repo.Create(context.Background(), &models.Contest{
			ID:             uuid.New(),
			Sport:          "basketball_nba",
			HomeTeam:       home,
			AwayTeam:       away,
			ScheduledStart: start.Add(time.Duration(i) * 12 * time.Hour),
			HomeScore:      &homeScore,
			AwayScore:      &awayScore,
			HomeOdds:       &homeOdds,
			AwayOdds:       &awayOdds,
			Status:         models.ContestStatusCompleted,
		}))
	}
}

func newTestRunner(t *testing.T, cfg config.BacktestConfig, repo *repository.MemoryContestRepository) *Runner {
	t.Helper()
	sizer := staking.NewSizer(config.StakingConfig{KellyFraction: 0.25, MaxStakePct: 0.05, MinStake: 1})
	runner, err := NewRunner(cfg, repo, model.NewHeuristicModel(), sizer, logger.NewNop())
	require.NoError(t, err)
	return runner
}

func TestRunRejectsSmallSamples(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 30)

	runner := newTestRunner(t, testConfig(), repo)
	_, err := runner.Run(context.Background(), "basketball_nba")
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRunRejectsBadWindow(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	cfg := testConfig()
	cfg.StartDate = "not-a-date"

	runner := newTestRunner(t, cfg, repo)
	_, err := runner.Run(context.Background(), "basketball_nba")
	assert.Error(t, err)

	cfg = testConfig()
	cfg.EndDate = cfg.StartDate
	runner = newTestRunner(t, cfg, repo)
	_, err = runner.Run(context.Background(), "basketball_nba")
	assert.Error(t, err)
}

func TestRunProfitReconcilesWithBankroll(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 200)

	runner := newTestRunner(t, testConfig(), repo)
	report, err := runner.Run(context.Background(), "basketball_nba")
	require.NoError(t, err)

	assert.Equal(t, 200, report.TotalBets+report.Skipped)
	assert.Greater(t, report.TotalBets, 0)
	assert.InDelta(t, report.FinalBankroll-report.StartingBankroll, report.TotalProfit, 1e-6)
	assert.Equal(t, report.TotalBets, report.Wins+report.Losses+report.Pushes)
	assert.False(t, report.SampleStart.After(report.SampleEnd))
}

func TestRunWindowIncludesFinalDayOnly(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 50)

	// late on the final configured day: inside the window
	lastDay := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC)
	// midnight right after the final day: outside the window
	dayAfter := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	homeScore, awayScore := 100, 95
	homeOdds, awayOdds := 2.0, 1.9
	for _, start := range []time.Time{lastDay, dayAfter} {
		require.NoError(t, repo.Create(context.Background(), &models.Contest{
			ID:             uuid.New(),
			Sport:          "basketball_nba",
			HomeTeam:       "Hawks",
			AwayTeam:       "Crows",
			ScheduledStart: start,
			HomeScore:      &homeScore,
			AwayScore:      &awayScore,
			HomeOdds:       &homeOdds,
			AwayOdds:       &awayOdds,
			Status:         models.ContestStatusCompleted,
		}))
	}

	runner := newTestRunner(t, testConfig(), repo)
	report, err := runner.Run(context.Background(), "basketball_nba")
	require.NoError(t, err)

	assert.Equal(t, 51, report.TotalBets+report.Skipped)
	assert.Equal(t, lastDay, report.SampleEnd)
}

func TestRunConfidenceBandsAndRecentBets(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 200)

	runner := newTestRunner(t, testConfig(), repo)
	report, err := runner.Run(context.Background(), "basketball_nba")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(report.RecentBets), models.MaxRecentBets)
	require.NotEmpty(t, report.ConfidenceBands)

	bandBets := 0
	for key, band := range report.ConfidenceBands {
		assert.Regexp(t, `^0\.\d$`, key)
		assert.LessOrEqual(t, band.Wins, band.Bets)
		bandBets += band.Bets
	}
	assert.Equal(t, report.TotalBets, bandBets)
}

func TestRunMinConfidenceFilterSkipsEverything(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 100)

	cfg := testConfig()
	cfg.MinConfidence = 0.99

	runner := newTestRunner(t, cfg, repo)
	report, err := runner.Run(context.Background(), "basketball_nba")
	require.NoError(t, err)

	assert.Zero(t, report.TotalBets)
	assert.Equal(t, 100, report.Skipped)
	assert.Equal(t, cfg.StartingBankroll, report.FinalBankroll)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, testConfig(), repo)
	_, err := runner.Run(ctx, "basketball_nba")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfidenceBandKeys(t *testing.T) {
	cases := map[float64]string{
		0.55: "0.5",
		0.60: "0.6",
		0.63: "0.6",
		0.85: "0.8",
	}
	for confidence, want := range cases {
		assert.Equal(t, want, models.ConfidenceBand(confidence), fmt.Sprintf("confidence %v", confidence))
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	repo := repository.NewMemoryContestRepository()
	seedHistory(t, repo, 100)

	runner := newTestRunner(t, testConfig(), repo)
	report, err := runner.Run(context.Background(), "basketball_nba")
	require.NoError(t, err)

	out := GenerateConsoleReport(report)
	assert.Contains(t, out, "Backtest Report")
	assert.Contains(t, out, "basketball_nba")
	assert.Contains(t, out, "Confidence Bands")
}
