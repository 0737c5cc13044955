// Package oddsfeed fetches market odds and final scores from the external
// provider, with caching, rate limiting and an optional synthetic fallback.
package oddsfeed

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DataOrigin labels where a fetch result came from, so consumers can tell
// live data from cached or synthetic data
type DataOrigin string

const (
	OriginLive     DataOrigin = "live"
	OriginCache    DataOrigin = "cache"
	OriginFallback DataOrigin = "fallback"
)

// marketHeadToHead is the provider's moneyline market key
const marketHeadToHead = "h2h"

// Event is one contest as the provider reports it
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Completed    bool        `json:"completed"`
	Bookmakers   []Bookmaker `json:"bookmakers,omitempty"`
	Scores       []Score     `json:"scores,omitempty"`
}

// Bookmaker carries one book's markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market is one priced market within a bookmaker
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one priced selection. Prices arrive as decimal odds; they are
// held as decimals at the provider edge and converted once on the way out.
type Outcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Score is one side's final score; the provider sends it as a string
type Score struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// BestOdds scans every bookmaker's moneyline market and returns the best
// available decimal price for each side. ok is false when no book prices
// both sides.
func (e *Event) BestOdds() (home, away float64, ok bool) {
	var bestHome, bestAway decimal.Decimal

	for _, book := range e.Bookmakers {
		for _, market := range book.Markets {
			if market.Key != marketHeadToHead {
				continue
			}
			for _, outcome := range market.Outcomes {
				switch outcome.Name {
				case e.HomeTeam:
					if outcome.Price.GreaterThan(bestHome) {
						bestHome = outcome.Price
					}
				case e.AwayTeam:
					if outcome.Price.GreaterThan(bestAway) {
						bestAway = outcome.Price
					}
				}
			}
		}
	}

	if bestHome.IsZero() || bestAway.IsZero() {
		return 0, 0, false
	}
	return bestHome.InexactFloat64(), bestAway.InexactFloat64(), true
}

// FinalScores parses the event's score entries. ok is false until both
// sides have a numeric score.
func (e *Event) FinalScores() (home, away int, ok bool) {
	var haveHome, haveAway bool
	for _, score := range e.Scores {
		value, err := strconv.Atoi(score.Score)
		if err != nil {
			continue
		}
		switch score.Name {
		case e.HomeTeam:
			home, haveHome = value, true
		case e.AwayTeam:
			away, haveAway = value, true
		}
	}
	return home, away, haveHome && haveAway
}

// FetchResult is a set of events plus the origin they were served from
type FetchResult struct {
	Events []Event
	Origin DataOrigin
}
