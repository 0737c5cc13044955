// Package backtest replays completed contests in chronological order and
// simulates the full predict-size-settle pipeline against a local bankroll.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/features"
	"github.com/yourusername/oddsmith/internal/ledger"
	"github.com/yourusername/oddsmith/internal/metrics"
	"github.com/yourusername/oddsmith/internal/model"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
	"github.com/yourusername/oddsmith/internal/staking"
)

// minSampleSize is the floor below which a replay refuses to run
const minSampleSize = 50

// fairOddsVig discounts synthetic fair odds when the historical record
// carries no market price, approximating a bookmaker margin
const fairOddsVig = 0.95

// dateLayout parses the configured replay window bounds
const dateLayout = "2006-01-02"

// Runner replays historical contests for one sport
type Runner struct {
	cfg       config.BacktestConfig
	contests  repository.ContestRepository
	extractor *features.Extractor
	predictor model.Predictor
	sizer     *staking.Sizer
	logger    *logrus.Logger
}

// NewRunner creates a backtest runner. The feature extractor is built
// without memoization so every contest sees features cut off at its own
// start time.
func NewRunner(cfg config.BacktestConfig, contests repository.ContestRepository, predictor model.Predictor, sizer *staking.Sizer, logger *logrus.Logger) (*Runner, error) {
	if contests == nil {
		return nil, fmt.Errorf("contest repository is required")
	}
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if sizer == nil {
		return nil, fmt.Errorf("stake sizer is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Runner{
		cfg:       cfg,
		contests:  contests,
		extractor: features.NewExtractor(contests, 0, logger),
		predictor: predictor,
		sizer:     sizer,
		logger:    logger,
	}, nil
}

// Run replays the configured date range oldest first. Each contest is
// predicted from features cut off at its start time, so no result leaks
// backwards into its own prediction. Fewer usable contests than the sample
// floor is an explicit failure rather than a misleading report.
func (r *Runner) Run(ctx context.Context, sport string) (*models.BacktestReport, error) {
	started := time.Now()

	start, end, err := r.window()
	if err != nil {
		return nil, err
	}

	contests, err := r.contests.GetCompletedBySport(ctx, sport, start, end, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load historical contests: %w", err)
	}

	sample := r.sampleFloor()
	if len(contests) < sample {
		return nil, fmt.Errorf("%w: %d completed contests in range, need %d",
			models.ErrInsufficientData, len(contests), sample)
	}

	r.logger.WithFields(logrus.Fields{
		"sport":    sport,
		"contests": len(contests),
		"start":    start.Format(dateLayout),
		"end":      end.Format(dateLayout),
		"model":    r.predictor.Name(),
	}).Info("Starting backtest replay")

	report := &models.BacktestReport{
		Sport:            sport,
		StartingBankroll: r.cfg.StartingBankroll,
		ConfidenceBands:  make(map[string]*models.BandStats),
		SampleStart:      contests[0].ScheduledStart,
		SampleEnd:        contests[len(contests)-1].ScheduledStart,
	}

	bankroll := r.cfg.StartingBankroll
	var sumOdds float64

	for _, contest := range contests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !contest.IsCompleted() {
			report.Skipped++
			continue
		}

		bet, placed := r.simulate(ctx, contest, bankroll)
		if !placed {
			report.Skipped++
			continue
		}

		bankroll += bet.Profit
		bet.Bankroll = bankroll

		report.TotalBets++
		report.TotalStaked += bet.Stake
		report.TotalProfit += bet.Profit
		sumOdds += bet.Odds

		switch bet.Result {
		case models.WagerResultWin:
			report.Wins++
		case models.WagerResultLoss:
			report.Losses++
		case models.WagerResultPush:
			report.Pushes++
		}

		band := bandFor(report, bet.Confidence)
		band.Bets++
		band.Profit += bet.Profit
		if bet.Result == models.WagerResultWin {
			band.Wins++
		}

		report.RecordBet(bet)
	}

	report.FinalBankroll = bankroll
	if settled := report.Wins + report.Losses + report.Pushes; settled > 0 {
		report.WinRate = float64(report.Wins) / float64(settled)
	}
	if report.TotalStaked > 0 {
		report.ROI = report.TotalProfit / report.TotalStaked * 100
	}
	if report.TotalBets > 0 {
		report.AvgOdds = sumOdds / float64(report.TotalBets)
	}

	metrics.RecordBacktestDuration(time.Since(started).Seconds())

	r.logger.WithFields(logrus.Fields{
		"bets":           report.TotalBets,
		"skipped":        report.Skipped,
		"win_rate":       report.WinRate,
		"roi":            report.ROI,
		"final_bankroll": report.FinalBankroll,
	}).Info("Backtest replay complete")

	return report, nil
}

// simulate runs one contest through the pipeline. The second result is
// false when the contest is skipped by a filter or the sizer.
func (r *Runner) simulate(ctx context.Context, contest *models.Contest, bankroll float64) (models.SimulatedBet, bool) {
	outcome := r.predictor.Predict(
		r.extractor.Extract(ctx, contest.HomeTeam, contest.AwayTeam, contest.Sport, contest.ScheduledStart))

	if outcome.Confidence < r.cfg.MinConfidence {
		return models.SimulatedBet{}, false
	}

	homeOdds := r.marketOdds(contest, models.SelectionHome)
	if homeOdds == 0 {
		homeOdds = staking.FairOdds(outcome.HomeProb) * fairOddsVig
	}
	awayOdds := r.marketOdds(contest, models.SelectionAway)
	if awayOdds == 0 {
		awayOdds = staking.FairOdds(outcome.AwayProb) * fairOddsVig
	}

	if model.BestExpectedValue(outcome.HomeProb, homeOdds, awayOdds) < r.cfg.MinExpectedValue {
		return models.SimulatedBet{}, false
	}

	prob, odds := outcome.HomeProb, homeOdds
	if outcome.PredictedWinner == models.SelectionAway {
		prob, odds = outcome.AwayProb, awayOdds
	}

	stake, ok := r.sizer.Size(prob, odds, bankroll)
	if !ok {
		return models.SimulatedBet{}, false
	}

	result, profit := ledger.Classify(outcome.PredictedWinner, stake, odds, *contest.HomeScore, *contest.AwayScore)

	return models.SimulatedBet{
		ContestID:  contest.ID,
		HomeTeam:   contest.HomeTeam,
		AwayTeam:   contest.AwayTeam,
		Selection:  outcome.PredictedWinner,
		Confidence: outcome.Confidence,
		Odds:       odds,
		Stake:      stake,
		Result:     result,
		Profit:     profit,
		StartTime:  contest.ScheduledStart,
	}, true
}

func (r *Runner) marketOdds(contest *models.Contest, selection models.Selection) float64 {
	switch {
	case selection == models.SelectionHome && contest.HomeOdds != nil:
		return *contest.HomeOdds
	case selection == models.SelectionAway && contest.AwayOdds != nil:
		return *contest.AwayOdds
	}
	return 0
}

func (r *Runner) window() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, r.cfg.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", r.cfg.StartDate, err)
	}
	end, err := time.Parse(dateLayout, r.cfg.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", r.cfg.EndDate, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is not after start date %s", r.cfg.EndDate, r.cfg.StartDate)
	}
	// include the whole final day
	return start, end.Add(24 * time.Hour), nil
}

func (r *Runner) sampleFloor() int {
	if r.cfg.SampleSize > minSampleSize {
		return r.cfg.SampleSize
	}
	return minSampleSize
}

func bandFor(report *models.BacktestReport, confidence float64) *models.BandStats {
	key := models.ConfidenceBand(confidence)
	band, ok := report.ConfidenceBands[key]
	if !ok {
		band = &models.BandStats{}
		report.ConfidenceBands[key] = band
	}
	return band
}
