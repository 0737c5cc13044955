package models

import (
	"time"

	"github.com/google/uuid"
)

// WagerResult represents the settlement result of a wager
type WagerResult string

const (
	WagerResultPending WagerResult = "pending"
	WagerResultWin     WagerResult = "win"
	WagerResultLoss    WagerResult = "loss"
	WagerResultPush    WagerResult = "push"
)

// Wager represents a monetary stake placed against a prediction
type Wager struct {
	ID           uuid.UUID   `db:"id" json:"id" validate:"required,uuid4"`
	PredictionID uuid.UUID   `db:"prediction_id" json:"prediction_id" validate:"required,uuid4"`
	ContestID    uuid.UUID   `db:"contest_id" json:"contest_id" validate:"required,uuid4"`
	Selection    Selection   `db:"selection" json:"selection" validate:"required,oneof=home away"`
	Stake        float64     `db:"stake" json:"stake" validate:"required,gt=0"`
	Odds         float64     `db:"odds" json:"odds" validate:"required,gt=1"`
	Result       WagerResult `db:"result" json:"result" validate:"required"`
	Profit       float64     `db:"profit" json:"profit"` // zero while pending
	PlacedAt     time.Time   `db:"placed_at" json:"placed_at" validate:"required"`
	SettledAt    *time.Time  `db:"settled_at" json:"settled_at"`
}

// IsSettled checks whether the wager has reached a terminal result
func (w *Wager) IsSettled() bool {
	return w.Result != WagerResultPending && w.SettledAt != nil
}

// PotentialProfit returns the profit if the wager wins
func (w *Wager) PotentialProfit() float64 {
	return w.Stake * (w.Odds - 1.0)
}

// ROI returns the return on stake as a percentage
func (w *Wager) ROI() float64 {
	if w.Stake == 0 {
		return 0
	}
	return (w.Profit / w.Stake) * 100
}
