// Package service runs the scheduled prediction and settlement cycles that
// tie the provider feed, the model pipeline and the ledger together.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/features"
	"github.com/yourusername/oddsmith/internal/ledger"
	"github.com/yourusername/oddsmith/internal/metrics"
	"github.com/yourusername/oddsmith/internal/model"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/oddsfeed"
	"github.com/yourusername/oddsmith/internal/repository"
	"github.com/yourusername/oddsmith/internal/staking"
)

// scoresLookbackDays bounds the settlement score fetch window
const scoresLookbackDays = 3

// Cycle runs the recurring prediction and settlement passes
type Cycle struct {
	cfg       config.CycleConfig
	contests  repository.ContestRepository
	ledger    *ledger.Ledger
	extractor *features.Extractor
	predictor model.Predictor
	sizer     *staking.Sizer
	feed      *oddsfeed.Client
	logger    *logrus.Logger
}

// NewCycle wires the cycle service
func NewCycle(
	cfg config.CycleConfig,
	contests repository.ContestRepository,
	bets *ledger.Ledger,
	extractor *features.Extractor,
	predictor model.Predictor,
	sizer *staking.Sizer,
	feed *oddsfeed.Client,
	logger *logrus.Logger,
) *Cycle {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cycle{
		cfg:       cfg,
		contests:  contests,
		ledger:    bets,
		extractor: extractor,
		predictor: predictor,
		sizer:     sizer,
		feed:      feed,
		logger:    logger,
	}
}

// RunPrediction fetches upcoming events, upserts them into the contest log,
// predicts each one and places wagers that pass the filters. Fallback-origin
// data updates the log but never stakes money.
func (c *Cycle) RunPrediction(ctx context.Context) {
	started := time.Now()
	placed := 0

	alreadyBacked, err := c.ledger.PendingContests(ctx)
	if err != nil {
		c.logger.WithError(err).Error("Failed to load pending contests")
		metrics.RecordCycleError("prediction")
		alreadyBacked = map[uuid.UUID]bool{}
	}

	for _, sport := range c.cfg.Sports {
		result, err := c.feed.FetchOdds(ctx, sport)
		if err != nil {
			c.logger.WithError(err).WithField("sport", sport).Error("Odds fetch failed")
			metrics.RecordCycleError("prediction")
			continue
		}

		for _, event := range result.Events {
			contest, err := c.upsertContest(ctx, sport, event)
			if err != nil {
				c.logger.WithError(err).WithField("event_id", event.ID).Warn("Contest upsert failed")
				metrics.RecordCycleError("prediction")
				continue
			}

			if result.Origin == oddsfeed.OriginFallback {
				continue
			}
			if alreadyBacked[contest.ID] || !contest.ScheduledStart.After(time.Now()) {
				continue
			}

			if c.predictAndStake(ctx, contest) {
				alreadyBacked[contest.ID] = true
				placed++
			}
		}
	}

	if err := c.ledger.Flush(ctx); err != nil {
		c.logger.WithError(err).Error("Failed to save bankroll snapshot")
		metrics.RecordCycleError("prediction")
	}
	metrics.UpdateBankroll(c.ledger.Balance())
	metrics.UpdateFeatureCacheSize(float64(c.extractor.CacheSize()))
	metrics.RecordPredictionCycleDuration(time.Since(started).Seconds())

	c.logger.WithFields(logrus.Fields{
		"placed":   placed,
		"balance":  c.ledger.Balance(),
		"duration": time.Since(started),
	}).Info("Prediction cycle complete")
}

// RunSettlement pulls final scores, completes contests and settles pending
// wagers against them
func (c *Cycle) RunSettlement(ctx context.Context) {
	for _, sport := range c.cfg.Sports {
		result, err := c.feed.FetchScores(ctx, sport, scoresLookbackDays)
		if err != nil {
			c.logger.WithError(err).WithField("sport", sport).Error("Scores fetch failed")
			metrics.RecordCycleError("settlement")
			continue
		}
		if result.Origin == oddsfeed.OriginFallback {
			// synthetic scores must never settle real wagers
			continue
		}

		for _, event := range result.Events {
			if !event.Completed {
				continue
			}
			if err := c.completeContest(ctx, sport, event); err != nil {
				c.logger.WithError(err).WithField("event_id", event.ID).Warn("Contest completion failed")
				metrics.RecordCycleError("settlement")
			}
		}
	}

	settled, failed := c.ledger.SettlePending(ctx, func(contestID uuid.UUID) (int, int, bool) {
		contest, err := c.contests.GetByID(ctx, contestID)
		if err != nil || !contest.IsCompleted() {
			return 0, 0, false
		}
		return *contest.HomeScore, *contest.AwayScore, true
	})

	if err := c.ledger.Flush(ctx); err != nil {
		c.logger.WithError(err).Error("Failed to save bankroll snapshot")
		metrics.RecordCycleError("settlement")
	}
	metrics.UpdateBankroll(c.ledger.Balance())

	if remaining, err := c.ledger.PendingContests(ctx); err == nil {
		metrics.UpdatePendingWagers(float64(len(remaining)))
	}

	c.logger.WithFields(logrus.Fields{
		"settled": settled,
		"failed":  failed,
		"balance": c.ledger.Balance(),
	}).Info("Settlement cycle complete")
}

// upsertContest reconciles a provider event with the stored contest log,
// refreshing best odds on existing rows
func (c *Cycle) upsertContest(ctx context.Context, sport string, event oddsfeed.Event) (*models.Contest, error) {
	var homeOdds, awayOdds *float64
	if home, away, ok := event.BestOdds(); ok {
		homeOdds, awayOdds = &home, &away
	}

	contest, err := c.contests.GetByMatchup(ctx, sport, event.HomeTeam, event.AwayTeam, event.CommenceTime)
	if err == nil {
		if contest.IsCompleted() || homeOdds == nil {
			return contest, nil
		}
		contest.HomeOdds = homeOdds
		contest.AwayOdds = awayOdds
		if err := c.contests.Update(ctx, contest); err != nil {
			return nil, err
		}
		return contest, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	contest = &models.Contest{
		ID:             uuid.New(),
		Sport:          sport,
		HomeTeam:       event.HomeTeam,
		AwayTeam:       event.AwayTeam,
		ScheduledStart: event.CommenceTime,
		HomeOdds:       homeOdds,
		AwayOdds:       awayOdds,
		Status:         models.ContestStatusScheduled,
	}
	if err := c.contests.Create(ctx, contest); err != nil {
		return nil, err
	}
	return contest, nil
}

// completeContest writes final scores onto the stored contest
func (c *Cycle) completeContest(ctx context.Context, sport string, event oddsfeed.Event) error {
	homeScore, awayScore, ok := event.FinalScores()
	if !ok {
		return nil
	}

	contest, err := c.contests.GetByMatchup(ctx, sport, event.HomeTeam, event.AwayTeam, event.CommenceTime)
	if errors.Is(err, models.ErrNotFound) {
		// contest was never ingested; nothing to settle
		return nil
	}
	if err != nil {
		return err
	}
	if contest.IsCompleted() {
		return nil
	}

	contest.HomeScore = &homeScore
	contest.AwayScore = &awayScore
	contest.Status = models.ContestStatusCompleted
	return c.contests.Update(ctx, contest)
}

// predictAndStake runs one contest through predict, filter, size and place.
// It reports whether a wager was placed.
func (c *Cycle) predictAndStake(ctx context.Context, contest *models.Contest) bool {
	fv := c.extractor.Extract(ctx, contest.HomeTeam, contest.AwayTeam, contest.Sport, contest.ScheduledStart)
	outcome := c.predictor.Predict(fv)
	metrics.RecordPrediction(c.predictor.Name())

	if outcome.Confidence < c.cfg.MinConfidence {
		return false
	}
	if contest.HomeOdds == nil || contest.AwayOdds == nil {
		return false
	}

	// value is judged on the better-priced side; the stake stays on the
	// predicted winner
	ev := model.BestExpectedValue(outcome.HomeProb, *contest.HomeOdds, *contest.AwayOdds)
	if ev < c.cfg.MinExpectedValue {
		return false
	}

	prob := outcome.HomeProb
	odds := *contest.HomeOdds
	if outcome.PredictedWinner == models.SelectionAway {
		prob = outcome.AwayProb
		odds = *contest.AwayOdds
	}

	stake, ok := c.sizer.Size(prob, odds, c.ledger.Balance())
	if !ok {
		return false
	}

	prediction := &models.Prediction{
		ID:              uuid.New(),
		ContestID:       contest.ID,
		PredictedWinner: outcome.PredictedWinner,
		HomeProb:        outcome.HomeProb,
		AwayProb:        outcome.AwayProb,
		Confidence:      outcome.Confidence,
		ExpectedValue:   ev,
		ModelVersion:    c.predictor.Version(),
		PredictedAt:     time.Now().UTC(),
	}

	if _, err := c.ledger.Place(ctx, prediction, stake, odds, outcome.PredictedWinner); err != nil {
		c.logger.WithError(err).WithField("contest_id", contest.ID).Warn("Wager placement failed")
		metrics.RecordCycleError("prediction")
		return false
	}
	return true
}
