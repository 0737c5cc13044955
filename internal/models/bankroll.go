package models

import "time"

// BankrollState is the authoritative running total of the betting bank.
// It is persisted as a small key-value snapshot loaded at cycle start and
// saved at cycle end; the read-modify-write is not safe across concurrent
// processes.
type BankrollState struct {
	Balance     float64   `db:"balance" json:"balance"`
	TotalBets   int       `db:"total_bets" json:"total_bets"`
	Wins        int       `db:"wins" json:"wins"`
	Losses      int       `db:"losses" json:"losses"`
	Pushes      int       `db:"pushes" json:"pushes"`
	TotalStaked float64   `db:"total_staked" json:"total_staked"`
	TotalProfit float64   `db:"total_profit" json:"total_profit"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Settled returns the number of wagers that reached a terminal result
func (b *BankrollState) Settled() int {
	return b.Wins + b.Losses + b.Pushes
}

// WinRate returns wins over settled wagers, zero when nothing settled
func (b *BankrollState) WinRate() float64 {
	settled := b.Settled()
	if settled == 0 {
		return 0
	}
	return float64(b.Wins) / float64(settled)
}

// ROI returns total profit over total staked as a percentage
func (b *BankrollState) ROI() float64 {
	if b.TotalStaked == 0 {
		return 0
	}
	return b.TotalProfit / b.TotalStaked * 100
}

// AvgStake returns the average stake per placed wager
func (b *BankrollState) AvgStake() float64 {
	if b.TotalBets == 0 {
		return 0
	}
	return b.TotalStaked / float64(b.TotalBets)
}

// Stats is the reporting snapshot exposed by the ledger
type Stats struct {
	Bankroll    float64 `json:"bankroll"`
	TotalBets   int     `json:"total_bets"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	WinRate     float64 `json:"win_rate"`
	TotalStaked float64 `json:"total_staked"`
	TotalProfit float64 `json:"total_profit"`
	ROI         float64 `json:"roi"`
	AvgStake    float64 `json:"avg_stake"`
}
