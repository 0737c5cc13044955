package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func scoredContest(home, away int) *Contest {
	h, a := home, away
	return &Contest{
		ID:             uuid.New(),
		Sport:          "basketball_nba",
		HomeTeam:       "Lakers",
		AwayTeam:       "Celtics",
		ScheduledStart: time.Now(),
		HomeScore:      &h,
		AwayScore:      &a,
		Status:         ContestStatusCompleted,
	}
}

func TestWinner(t *testing.T) {
	outcome, ok := scoredContest(110, 101).Winner()
	assert.True(t, ok)
	assert.Equal(t, OutcomeHome, outcome)

	outcome, ok = scoredContest(90, 95).Winner()
	assert.True(t, ok)
	assert.Equal(t, OutcomeAway, outcome)

	outcome, ok = scoredContest(100, 100).Winner()
	assert.True(t, ok)
	assert.Equal(t, OutcomePush, outcome)

	_, ok = (&Contest{Status: ContestStatusScheduled}).Winner()
	assert.False(t, ok)
}

func TestWonBy(t *testing.T) {
	c := scoredContest(110, 101)
	assert.True(t, c.WonBy("Lakers"))
	assert.False(t, c.WonBy("Celtics"))
	assert.False(t, scoredContest(100, 100).WonBy("Lakers"))
}

func TestScoredBy(t *testing.T) {
	c := scoredContest(110, 101)

	scored, conceded := c.ScoredBy("Lakers")
	assert.Equal(t, 110.0, scored)
	assert.Equal(t, 101.0, conceded)

	scored, conceded = c.ScoredBy("Celtics")
	assert.Equal(t, 101.0, scored)
	assert.Equal(t, 110.0, conceded)
}

func TestIsCompletedNeedsScores(t *testing.T) {
	c := scoredContest(110, 101)
	assert.True(t, c.IsCompleted())

	c.HomeScore = nil
	assert.False(t, c.IsCompleted())
}
