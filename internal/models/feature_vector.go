package models

// FeatureVector holds the numeric inputs to the probability model for a
// single (home, away) pairing, computed strictly from contests that started
// before the evaluation time.
type FeatureVector struct {
	Sport string `json:"sport"`

	// Win percentages, 0.5 when no history
	HomeWinPct     float64 `json:"home_win_pct"`
	AwayWinPct     float64 `json:"away_win_pct"`
	HomeHomeWinPct float64 `json:"home_home_win_pct"` // home team's record in the home role
	AwayAwayWinPct float64 `json:"away_away_win_pct"` // away team's record in the away role

	// Win fraction over the last ten completed games
	HomeRecentForm float64 `json:"home_recent_form"`
	AwayRecentForm float64 `json:"away_recent_form"`

	// Scoring averages per game
	HomeAvgScored   float64 `json:"home_avg_scored"`
	HomeAvgConceded float64 `json:"home_avg_conceded"`
	AwayAvgScored   float64 `json:"away_avg_scored"`
	AwayAvgConceded float64 `json:"away_avg_conceded"`

	// Direct prior meetings
	HeadToHeadHomeWins float64 `json:"h2h_home_wins"`
	HeadToHeadAwayWins float64 `json:"h2h_away_wins"`
	HeadToHeadTotal    float64 `json:"h2h_total"`

	// Days since each side's last completed game, 2 by default
	HomeRestDays  float64 `json:"home_rest_days"`
	AwayRestDays  float64 `json:"away_rest_days"`
	RestAdvantage float64 `json:"rest_advantage"` // min(homeRest-awayRest, 2)/4

	// Signed streaks, positive counts of consecutive wins
	HomeStreak float64 `json:"home_streak"`
	AwayStreak float64 `json:"away_streak"`

	// Valid is false when either side had no usable history and the
	// vector carries neutral defaults instead of real aggregates.
	Valid bool `json:"valid"`
}

// RecentFormDiff returns the recent-form differential (home minus away)
func (f *FeatureVector) RecentFormDiff() float64 {
	return f.HomeRecentForm - f.AwayRecentForm
}

// WinPctDiff returns the overall win-rate differential
func (f *FeatureVector) WinPctDiff() float64 {
	return f.HomeWinPct - f.AwayWinPct
}

// RoleSplitDiff returns the home/away role-split differential
func (f *FeatureVector) RoleSplitDiff() float64 {
	return f.HomeHomeWinPct - f.AwayAwayWinPct
}

// HeadToHeadDiff returns the head-to-head win differential normalized by
// total meetings, zero when the sides never met
func (f *FeatureVector) HeadToHeadDiff() float64 {
	if f.HeadToHeadTotal == 0 {
		return 0
	}
	return (f.HeadToHeadHomeWins - f.HeadToHeadAwayWins) / f.HeadToHeadTotal
}
