package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/logger"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
)

type fixture struct {
	ledger   *Ledger
	wagers   *repository.MemoryWagerRepository
	bankroll *repository.MemoryBankrollRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	wagers := repository.NewMemoryWagerRepository()
	bankroll := repository.NewMemoryBankrollRepository()
	l, err := New(context.Background(), wagers, bankroll, 1000, logger.NewNop())
	require.NoError(t, err)
	return &fixture{ledger: l, wagers: wagers, bankroll: bankroll}
}

func testPrediction() *models.Prediction {
	return &models.Prediction{
		ID:              uuid.New(),
		ContestID:       uuid.New(),
		PredictedWinner: models.SelectionHome,
		HomeProb:        0.6,
		AwayProb:        0.4,
		Confidence:      0.6,
		ModelVersion:    "heuristic-v1",
		PredictedAt:     time.Now().UTC(),
	}
}

func TestPlaceDecrementsBankroll(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 50, 2.0, models.SelectionHome)
	require.NoError(t, err)

	assert.Equal(t, 950.0, f.ledger.Balance())
	assert.Equal(t, models.WagerResultPending, wager.Result)

	stored, err := f.wagers.GetByID(context.Background(), wager.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, stored.Stake)
}

func TestPlaceRejectsOversizedStake(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Place(context.Background(), testPrediction(), 2000, 2.0, models.SelectionHome)
	assert.ErrorIs(t, err, models.ErrInvalidStake)
	assert.Equal(t, 1000.0, f.ledger.Balance())
}

func TestPlaceRejectsInvalidTerms(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Place(context.Background(), testPrediction(), 0, 2.0, models.SelectionHome)
	assert.Error(t, err)
	_, err = f.ledger.Place(context.Background(), testPrediction(), 10, 1.0, models.SelectionHome)
	assert.Error(t, err)
}

func TestSettleWin(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Settle(context.Background(), wager, 110, 101))

	assert.Equal(t, models.WagerResultWin, wager.Result)
	assert.Equal(t, 10.0, wager.Profit)
	assert.NotNil(t, wager.SettledAt)
	assert.Equal(t, 1010.0, f.ledger.Balance())
}

func TestSettleLoss(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Settle(context.Background(), wager, 90, 95))

	assert.Equal(t, models.WagerResultLoss, wager.Result)
	assert.Equal(t, -10.0, wager.Profit)
	assert.Equal(t, 990.0, f.ledger.Balance())
}

func TestSettleAwaySelection(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 1.8, models.SelectionAway)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Settle(context.Background(), wager, 90, 95))

	assert.Equal(t, models.WagerResultWin, wager.Result)
	assert.InDelta(t, 8.0, wager.Profit, 1e-9)
}

func TestSettlePushReturnsStake(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Settle(context.Background(), wager, 100, 100))

	assert.Equal(t, models.WagerResultPush, wager.Result)
	assert.Zero(t, wager.Profit)
	assert.Equal(t, 1000.0, f.ledger.Balance())
}

func TestSettleTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Settle(context.Background(), wager, 110, 101))

	balance := f.ledger.Balance()
	stats := f.ledger.Stats()

	require.NoError(t, f.ledger.Settle(context.Background(), wager, 110, 101))
	assert.Equal(t, balance, f.ledger.Balance())
	assert.Equal(t, stats, f.ledger.Stats())
}

func TestSettlePersistenceFailureLeavesWagerPending(t *testing.T) {
	f := newFixture(t)

	wager, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)

	f.wagers.FailSettle[wager.ID] = errors.New("connection reset")

	err = f.ledger.Settle(context.Background(), wager, 110, 101)
	assert.Error(t, err)
	assert.Equal(t, models.WagerResultPending, wager.Result)
	assert.Equal(t, 990.0, f.ledger.Balance())

	// the next pass succeeds once the store recovers
	delete(f.wagers.FailSettle, wager.ID)
	require.NoError(t, f.ledger.Settle(context.Background(), wager, 110, 101))
	assert.Equal(t, 1010.0, f.ledger.Balance())
}

func TestSettlePendingContinuesPastFailures(t *testing.T) {
	f := newFixture(t)

	scores := map[uuid.UUID][2]int{}

	first, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)
	scores[first.ContestID] = [2]int{110, 101}

	second, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)
	scores[second.ContestID] = [2]int{90, 95}

	unresolved, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionHome)
	require.NoError(t, err)

	f.wagers.FailSettle[first.ID] = errors.New("connection reset")

	settled, failed := f.ledger.SettlePending(context.Background(), func(contestID uuid.UUID) (int, int, bool) {
		s, ok := scores[contestID]
		return s[0], s[1], ok
	})

	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, failed)

	pending, err := f.ledger.PendingContests(context.Background())
	require.NoError(t, err)
	assert.True(t, pending[first.ContestID])
	assert.True(t, pending[unresolved.ContestID])
	assert.False(t, pending[second.ContestID])
}

func TestStatsAndFlush(t *testing.T) {
	f := newFixture(t)

	win, err := f.ledger.Place(context.Background(), testPrediction(), 20, 2.5, models.SelectionHome)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Settle(context.Background(), win, 3, 1))

	loss, err := f.ledger.Place(context.Background(), testPrediction(), 10, 2.0, models.SelectionAway)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Settle(context.Background(), loss, 2, 0))

	stats := f.ledger.Stats()
	assert.Equal(t, 2, stats.TotalBets)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 0.5, stats.WinRate)
	assert.Equal(t, 30.0, stats.TotalStaked)
	assert.InDelta(t, 20.0, stats.TotalProfit, 1e-9)
	assert.InDelta(t, 1020.0, stats.Bankroll, 1e-9)

	require.NoError(t, f.ledger.Flush(context.Background()))

	reloaded, err := New(context.Background(), f.wagers, f.bankroll, 5000, logger.NewNop())
	require.NoError(t, err)
	assert.InDelta(t, 1020.0, reloaded.Balance(), 1e-9)
}

func TestNewSeedsMissingSnapshot(t *testing.T) {
	l, err := New(context.Background(), repository.NewMemoryWagerRepository(),
		repository.NewMemoryBankrollRepository(), 250, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 250.0, l.Balance())
}

func TestClassify(t *testing.T) {
	result, profit := Classify(models.SelectionHome, 10, 1.9, 2, 1)
	assert.Equal(t, models.WagerResultWin, result)
	assert.InDelta(t, 9.0, profit, 1e-9)

	result, profit = Classify(models.SelectionAway, 10, 1.9, 2, 1)
	assert.Equal(t, models.WagerResultLoss, result)
	assert.Equal(t, -10.0, profit)

	result, profit = Classify(models.SelectionHome, 10, 1.9, 1, 1)
	assert.Equal(t, models.WagerResultPush, result)
	assert.Zero(t, profit)
}
