package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/features"
	"github.com/yourusername/oddsmith/internal/model"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
)

// Trainer builds labeled samples from the contest log and fits the linear
// model. Each sample's features are cut off at that contest's start time, so
// training sees exactly what a live prediction would have seen.
type Trainer struct {
	cfg      config.ModelConfig
	contests repository.ContestRepository
	weights  repository.ModelRepository
	logger   *logrus.Logger
}

// NewTrainer wires the training service
func NewTrainer(cfg config.ModelConfig, contests repository.ContestRepository, weights repository.ModelRepository, logger *logrus.Logger) *Trainer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Trainer{cfg: cfg, contests: contests, weights: weights, logger: logger}
}

// Train fits a fresh linear model on completed contests in the date range
// and persists the winning coefficients
func (t *Trainer) Train(ctx context.Context, sport string, start, end time.Time) (model.TrainResult, error) {
	contests, err := t.contests.GetCompletedBySport(ctx, sport, start, end, 0)
	if err != nil {
		return model.TrainResult{}, fmt.Errorf("failed to load training contests: %w", err)
	}

	extractor := features.NewExtractor(t.contests, 0, t.logger)

	var samples []model.TrainingSample
	for _, contest := range contests {
		if err := ctx.Err(); err != nil {
			return model.TrainResult{}, err
		}
		outcome, ok := contest.Winner()
		if !ok || outcome == models.OutcomePush {
			continue
		}
		fv := extractor.Extract(ctx, contest.HomeTeam, contest.AwayTeam, contest.Sport, contest.ScheduledStart)
		if !fv.Valid {
			continue
		}
		samples = append(samples, model.TrainingSample{
			Features: fv,
			HomeWin:  outcome == models.OutcomeHome,
		})
	}

	t.logger.WithFields(logrus.Fields{
		"sport":    sport,
		"contests": len(contests),
		"samples":  len(samples),
	}).Info("Training sample build complete")

	linear := model.NewLinearModel(0)
	result, err := linear.Train(samples, t.cfg.LearningRate, t.cfg.MaxEpochs, t.cfg.EarlyStopPatience)
	if err != nil {
		return result, err
	}

	data, err := linear.MarshalWeights()
	if err != nil {
		return result, err
	}
	if err := t.weights.SaveWeights(ctx, linear.Version(), data); err != nil {
		return result, fmt.Errorf("failed to save model weights: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"version":  linear.Version(),
		"epochs":   result.Epochs,
		"accuracy": result.BestAccuracy,
	}).Info("Model training complete")

	return result, nil
}

// LoadPredictor builds the configured predictor. A linear model is restored
// from the latest persisted weights; a missing snapshot falls back to the
// heuristic so the pipeline never predicts with untrained coefficients.
func LoadPredictor(ctx context.Context, cfg config.ModelConfig, weights repository.ModelRepository, logger *logrus.Logger) (model.Predictor, error) {
	predictor, err := model.New(cfg)
	if err != nil {
		return nil, err
	}

	linear, ok := predictor.(*model.LinearModel)
	if !ok {
		return predictor, nil
	}

	version, err := weights.LatestVersion(ctx)
	if errors.Is(err, models.ErrNotFound) {
		logger.Warn("No trained weights found, falling back to heuristic model")
		return model.NewHeuristicModel(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up model weights: %w", err)
	}

	data, err := weights.LoadWeights(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load model weights: %w", err)
	}
	if err := linear.UnmarshalWeights(data); err != nil {
		return nil, err
	}

	logger.WithField("version", version).Info("Loaded trained model weights")
	return linear, nil
}
