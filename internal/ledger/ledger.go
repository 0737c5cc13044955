// Package ledger records wagers and settles them against final scores,
// maintaining the authoritative bankroll state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsmith/internal/metrics"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
)

// Ledger mutates bankroll state through placed and settled wagers.
// All mutations are serialized behind one mutex; settlement of the same
// wager twice is a no-op.
type Ledger struct {
	mu       sync.Mutex
	wagers   repository.WagerRepository
	bankroll repository.BankrollRepository
	state    *models.BankrollState
	logger   *logrus.Logger
}

// New loads the bankroll snapshot and returns a ready ledger. A missing
// snapshot seeds a fresh state with the initial bankroll.
func New(ctx context.Context, wagers repository.WagerRepository, bankroll repository.BankrollRepository, initialBankroll float64, logger *logrus.Logger) (*Ledger, error) {
	if logger == nil {
		logger = logrus.New()
	}

	state, err := bankroll.Load(ctx)
	if errors.Is(err, models.ErrNotFound) {
		state = &models.BankrollState{Balance: initialBankroll}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load bankroll state: %w", err)
	}

	return &Ledger{
		wagers:   wagers,
		bankroll: bankroll,
		state:    state,
		logger:   logger,
	}, nil
}

// Place records a pending wager and decrements the available bankroll
func (l *Ledger) Place(ctx context.Context, prediction *models.Prediction, stake, odds float64, selection models.Selection) (*models.Wager, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if stake <= 0 || odds <= 1 {
		return nil, fmt.Errorf("invalid wager terms: stake=%.2f odds=%.2f", stake, odds)
	}
	if stake > l.state.Balance {
		return nil, models.ErrInvalidStake
	}

	wager := &models.Wager{
		ID:           uuid.New(),
		PredictionID: prediction.ID,
		ContestID:    prediction.ContestID,
		Selection:    selection,
		Stake:        stake,
		Odds:         odds,
		Result:       models.WagerResultPending,
		PlacedAt:     time.Now().UTC(),
	}

	if err := l.wagers.Create(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to persist wager: %w", err)
	}

	l.state.Balance -= stake
	l.state.TotalBets++
	l.state.TotalStaked += stake
	metrics.RecordWagerPlaced()

	l.logger.WithFields(logrus.Fields{
		"wager_id":  wager.ID,
		"selection": selection,
		"stake":     stake,
		"odds":      odds,
		"balance":   l.state.Balance,
	}).Info("Wager placed")

	return wager, nil
}

// Settle resolves a pending wager against final scores. Re-settling an
// already-settled wager is a no-op. A persistence failure leaves the wager
// pending and the bankroll untouched.
func (l *Ledger) Settle(ctx context.Context, wager *models.Wager, homeScore, awayScore int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settleLocked(ctx, wager, homeScore, awayScore)
}

func (l *Ledger) settleLocked(ctx context.Context, wager *models.Wager, homeScore, awayScore int) error {
	if wager.IsSettled() {
		return nil
	}

	result, profit := Classify(wager.Selection, wager.Stake, wager.Odds, homeScore, awayScore)

	settledAt := time.Now().UTC()
	updated := *wager
	updated.Result = result
	updated.Profit = profit
	updated.SettledAt = &settledAt

	if err := l.wagers.Settle(ctx, &updated); err != nil {
		return fmt.Errorf("failed to persist settlement: %w", err)
	}

	*wager = updated
	l.state.Balance += wager.Stake + profit
	l.state.TotalProfit += profit
	switch result {
	case models.WagerResultWin:
		l.state.Wins++
	case models.WagerResultLoss:
		l.state.Losses++
	case models.WagerResultPush:
		l.state.Pushes++
	}
	metrics.RecordWagerSettled(string(result))

	l.logger.WithFields(logrus.Fields{
		"wager_id": wager.ID,
		"result":   result,
		"profit":   profit,
		"balance":  l.state.Balance,
	}).Info("Wager settled")

	return nil
}

// SettlePending settles every pending wager whose final scores resolve.
// Individual failures are logged and skipped; the offending wager stays
// pending for the next pass and earlier settlements are never rolled back.
func (l *Ledger) SettlePending(ctx context.Context, resolve func(contestID uuid.UUID) (homeScore, awayScore int, ok bool)) (settled, failed int) {
	pending, err := l.wagers.GetPending(ctx)
	if err != nil {
		l.logger.WithError(err).Error("Failed to load pending wagers")
		return 0, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, wager := range pending {
		homeScore, awayScore, ok := resolve(wager.ContestID)
		if !ok {
			continue
		}
		if err := l.settleLocked(ctx, wager, homeScore, awayScore); err != nil {
			failed++
			l.logger.WithError(err).WithField("wager_id", wager.ID).Warn("Settlement failed, wager stays pending")
			continue
		}
		settled++
	}

	return settled, failed
}

// PendingContests returns the set of contest IDs with unsettled wagers,
// used to avoid doubling up on a contest across cycles
func (l *Ledger) PendingContests(ctx context.Context) (map[uuid.UUID]bool, error) {
	pending, err := l.wagers.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending wagers: %w", err)
	}
	contests := make(map[uuid.UUID]bool, len(pending))
	for _, wager := range pending {
		contests[wager.ContestID] = true
	}
	return contests, nil
}

// Flush persists the bankroll snapshot; call at cycle end
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := *l.state
	snapshot.UpdatedAt = time.Now().UTC()
	if err := l.bankroll.Save(ctx, &snapshot); err != nil {
		return fmt.Errorf("failed to save bankroll snapshot: %w", err)
	}
	return nil
}

// Balance returns the current available bankroll
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Balance
}

// Stats returns the reporting snapshot of bankroll and counters
func (l *Ledger) Stats() models.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return models.Stats{
		Bankroll:    l.state.Balance,
		TotalBets:   l.state.TotalBets,
		Wins:        l.state.Wins,
		Losses:      l.state.Losses,
		Pushes:      l.state.Pushes,
		WinRate:     l.state.WinRate(),
		TotalStaked: l.state.TotalStaked,
		TotalProfit: l.state.TotalProfit,
		ROI:         l.state.ROI(),
		AvgStake:    l.state.AvgStake(),
	}
}

// Classify derives a wager result and profit from final scores: the home
// side wins on a higher home score, the away side on a higher away score,
// equal scores push with zero profit.
func Classify(selection models.Selection, stake, odds float64, homeScore, awayScore int) (models.WagerResult, float64) {
	if homeScore == awayScore {
		return models.WagerResultPush, 0
	}

	won := (homeScore > awayScore && selection == models.SelectionHome) ||
		(awayScore > homeScore && selection == models.SelectionAway)
	if won {
		return models.WagerResultWin, stake * (odds - 1.0)
	}
	return models.WagerResultLoss, -stake
}
