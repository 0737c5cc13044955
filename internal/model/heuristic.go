package model

import (
	"github.com/yourusername/oddsmith/internal/models"
)

// Heuristic contribution weights. Each term nudges the home-win probability
// away from the 0.5 prior.
const (
	homeFieldEdge    = 0.03
	recentFormWeight = 0.15
	winRateWeight    = 0.10
	roleSplitWeight  = 0.10
	headToHeadWeight = 0.05
	restWeight       = 0.03
	streakWeight     = 0.01
	streakClamp      = 3.0
)

// HeuristicModel is the deterministic weighted-contribution strategy
type HeuristicModel struct{}

// NewHeuristicModel creates the heuristic predictor
func NewHeuristicModel() *HeuristicModel {
	return &HeuristicModel{}
}

// Name returns the strategy name
func (m *HeuristicModel) Name() string { return "heuristic" }

// Version returns the model version tag
func (m *HeuristicModel) Version() string { return "heuristic-v1" }

// Predict sums the weighted feature contributions onto the 0.5 prior and
// clamps the result
func (m *HeuristicModel) Predict(f models.FeatureVector) Outcome {
	p := 0.5
	p += homeFieldEdge
	p += f.RecentFormDiff() * recentFormWeight
	p += f.WinPctDiff() * winRateWeight
	p += f.RoleSplitDiff() * roleSplitWeight
	p += f.HeadToHeadDiff() * headToHeadWeight
	p += f.RestAdvantage * restWeight
	p += streakDiff(f) * streakWeight

	return outcomeFromHomeProb(p)
}

func streakDiff(f models.FeatureVector) float64 {
	return clamp(f.HomeStreak, -streakClamp, streakClamp) - clamp(f.AwayStreak, -streakClamp, streakClamp)
}
