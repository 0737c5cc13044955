package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxRecentBets bounds the trailing list of simulated bets kept in a report
const MaxRecentBets = 20

// SimulatedBet is a single simulated wager recorded during a backtest
type SimulatedBet struct {
	ContestID  uuid.UUID   `json:"contest_id"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Selection  Selection   `json:"selection"`
	Confidence float64     `json:"confidence"`
	Odds       float64     `json:"odds"`
	Stake      float64     `json:"stake"`
	Result     WagerResult `json:"result"`
	Profit     float64     `json:"profit"`
	Bankroll   float64     `json:"bankroll"` // running bankroll after settlement
	StartTime  time.Time   `json:"start_time"`
}

// BandStats aggregates simulated bets within one confidence band
type BandStats struct {
	Bets   int     `json:"bets"`
	Wins   int     `json:"wins"`
	Profit float64 `json:"profit"`
}

// BacktestReport holds aggregate metrics for a historical replay
type BacktestReport struct {
	Sport            string                `json:"sport"`
	StartingBankroll float64               `json:"starting_bankroll"`
	FinalBankroll    float64               `json:"final_bankroll"`
	TotalBets        int                   `json:"total_bets"`
	Wins             int                   `json:"wins"`
	Losses           int                   `json:"losses"`
	Pushes           int                   `json:"pushes"`
	Skipped          int                   `json:"skipped"`
	WinRate          float64               `json:"win_rate"`
	TotalStaked      float64               `json:"total_staked"`
	TotalProfit      float64               `json:"total_profit"`
	ROI              float64               `json:"roi"`
	AvgOdds          float64               `json:"avg_odds"`
	ConfidenceBands  map[string]*BandStats `json:"confidence_bands"`
	RecentBets       []SimulatedBet        `json:"recent_bets"`
	SampleStart      time.Time             `json:"sample_start"`
	SampleEnd        time.Time             `json:"sample_end"`
}

// ConfidenceBand returns the band key for a confidence value,
// e.g. 0.63 -> "0.6"
func ConfidenceBand(confidence float64) string {
	band := math.Floor(confidence*10) / 10
	return fmt.Sprintf("%.1f", band)
}

// RecordBet appends a simulated bet, keeping only the trailing MaxRecentBets
func (r *BacktestReport) RecordBet(bet SimulatedBet) {
	r.RecentBets = append(r.RecentBets, bet)
	if len(r.RecentBets) > MaxRecentBets {
		r.RecentBets = r.RecentBets[len(r.RecentBets)-MaxRecentBets:]
	}
}
