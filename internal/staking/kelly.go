// Package staking sizes wagers with the fractional Kelly criterion.
package staking

import (
	"math"

	"github.com/yourusername/oddsmith/internal/config"
)

// Sizer computes bounded stakes from probability, odds and bankroll
type Sizer struct {
	kellyFraction float64
	maxStakePct   float64
	minStake      float64
}

// NewSizer creates a stake sizer from staking configuration
func NewSizer(cfg config.StakingConfig) *Sizer {
	return &Sizer{
		kellyFraction: cfg.KellyFraction,
		maxStakePct:   cfg.MaxStakePct,
		minStake:      cfg.MinStake,
	}
}

// Size returns the stake for a wager, or (0, false) when the bet should be
// skipped: degenerate odds, no Kelly edge, or a stake below the minimum.
// The stake is never negative, never NaN, and never exceeds
// bankroll * maxStakePct.
func (s *Sizer) Size(probability, odds, bankroll float64) (float64, bool) {
	if bankroll <= 0 || math.IsNaN(probability) || math.IsNaN(odds) {
		return 0, false
	}
	if probability <= 0 || probability >= 1 {
		return 0, false
	}

	b := odds - 1.0
	if b <= 0 {
		// No edge is possible at or below even money paid back
		return 0, false
	}

	kelly := (b*probability - (1.0 - probability)) / b
	fractional := kelly * s.kellyFraction
	stake := bankroll * math.Max(0, fractional)

	cap := bankroll * s.maxStakePct
	if stake > cap {
		stake = cap
	}

	if math.IsNaN(stake) || math.IsInf(stake, 0) || stake < s.minStake {
		return 0, false
	}

	return stake, true
}

// FairOdds converts a probability to no-margin decimal odds
func FairOdds(probability float64) float64 {
	if probability <= 0 {
		return 0
	}
	return 1.0 / probability
}
