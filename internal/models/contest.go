package models

import (
	"time"

	"github.com/google/uuid"
)

// ContestStatus represents the lifecycle status of a contest
type ContestStatus string

const (
	ContestStatusScheduled ContestStatus = "scheduled"
	ContestStatusCompleted ContestStatus = "completed"
)

// Selection represents the side of a contest a wager is placed on
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionAway Selection = "away"
)

// Outcome represents the settled result of a completed contest
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomePush Outcome = "push"
)

// Contest represents a paired sporting contest between two teams
type Contest struct {
	ID             uuid.UUID     `db:"id" json:"id" validate:"required,uuid4"`
	Sport          string        `db:"sport" json:"sport" validate:"required"`
	HomeTeam       string        `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam       string        `db:"away_team" json:"away_team" validate:"required"`
	ScheduledStart time.Time     `db:"scheduled_start" json:"scheduled_start" validate:"required"`
	HomeScore      *int          `db:"home_score" json:"home_score"`
	AwayScore      *int          `db:"away_score" json:"away_score"`
	HomeOdds       *float64      `db:"home_odds" json:"home_odds"` // best recorded market price
	AwayOdds       *float64      `db:"away_odds" json:"away_odds"`
	Status         ContestStatus `db:"status" json:"status" validate:"required,oneof=scheduled completed"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// IsCompleted checks whether final scores are known
func (c *Contest) IsCompleted() bool {
	return c.Status == ContestStatusCompleted && c.HomeScore != nil && c.AwayScore != nil
}

// Winner returns the contest outcome derived from final scores.
// The second return value is false while scores are unknown.
func (c *Contest) Winner() (Outcome, bool) {
	if c.HomeScore == nil || c.AwayScore == nil {
		return "", false
	}
	switch {
	case *c.HomeScore > *c.AwayScore:
		return OutcomeHome, true
	case *c.AwayScore > *c.HomeScore:
		return OutcomeAway, true
	default:
		return OutcomePush, true
	}
}

// WonBy reports whether the given team won the contest
func (c *Contest) WonBy(team string) bool {
	outcome, ok := c.Winner()
	if !ok {
		return false
	}
	if outcome == OutcomeHome {
		return c.HomeTeam == team
	}
	if outcome == OutcomeAway {
		return c.AwayTeam == team
	}
	return false
}

// ScoredBy returns the points scored and conceded by the given team
func (c *Contest) ScoredBy(team string) (scored, conceded float64) {
	if c.HomeScore == nil || c.AwayScore == nil {
		return 0, 0
	}
	if c.HomeTeam == team {
		return float64(*c.HomeScore), float64(*c.AwayScore)
	}
	return float64(*c.AwayScore), float64(*c.HomeScore)
}
