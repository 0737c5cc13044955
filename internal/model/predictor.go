// Package model maps feature vectors to win probabilities. Two strategies
// live behind the Predictor interface: a deterministic heuristic and a
// trainable linear scorer.
package model

import (
	"fmt"
	"math"

	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/models"
)

// Confidence clamp bounds. Both strategies clamp; the probability never
// leaves this range so downstream staking stays bounded.
const (
	MinConfidence = 0.25
	MaxConfidence = 0.85
)

// Outcome is the result of a single prediction
type Outcome struct {
	HomeProb        float64
	AwayProb        float64
	PredictedWinner models.Selection
	Confidence      float64
}

// Predictor maps a feature vector to a home-win probability
type Predictor interface {
	Name() string
	Version() string
	Predict(features models.FeatureVector) Outcome
}

// New constructs the configured predictor strategy
func New(cfg config.ModelConfig) (Predictor, error) {
	switch cfg.Kind {
	case "heuristic":
		return NewHeuristicModel(), nil
	case "linear":
		return NewLinearModel(0), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", cfg.Kind)
	}
}

// outcomeFromHomeProb derives the full outcome from a clamped home-win
// probability; awayProb is exactly 1 - homeProb
func outcomeFromHomeProb(homeProb float64) Outcome {
	homeProb = ClampProbability(homeProb)
	awayProb := 1.0 - homeProb

	out := Outcome{
		HomeProb:        homeProb,
		AwayProb:        awayProb,
		PredictedWinner: models.SelectionHome,
	}
	if awayProb > homeProb {
		out.PredictedWinner = models.SelectionAway
	}
	out.Confidence = clamp(math.Max(homeProb, awayProb), MinConfidence, MaxConfidence)
	return out
}

// ClampProbability bounds a probability to the configured confidence range,
// substituting a neutral 0.5 for NaN or infinite inputs
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0.5
	}
	return clamp(p, MinConfidence, MaxConfidence)
}

// ExpectedValue returns the probability-weighted net return per unit stake
// for a selection priced at the given decimal odds
func ExpectedValue(prob, odds float64) float64 {
	if odds <= 1 || math.IsNaN(prob) {
		return -1
	}
	return prob*odds - (1 - prob)
}

// BestExpectedValue reports the larger of the home-side and away-side EV
// given the best available price for each selection
func BestExpectedValue(homeProb, homeOdds, awayOdds float64) float64 {
	return math.Max(
		ExpectedValue(homeProb, homeOdds),
		ExpectedValue(1-homeProb, awayOdds),
	)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
