package models

import (
	"time"

	"github.com/google/uuid"
)

// Prediction represents a model prediction for a contest
type Prediction struct {
	ID              uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	ContestID       uuid.UUID `db:"contest_id" json:"contest_id" validate:"required,uuid4"`
	PredictedWinner Selection `db:"predicted_winner" json:"predicted_winner" validate:"required,oneof=home away"`
	HomeProb        float64   `db:"home_prob" json:"home_prob" validate:"required,gte=0,lte=1"`
	AwayProb        float64   `db:"away_prob" json:"away_prob" validate:"required,gte=0,lte=1"`
	Confidence      float64   `db:"confidence" json:"confidence" validate:"required,gte=0,lte=1"`
	ExpectedValue   float64   `db:"expected_value" json:"expected_value"`
	ModelVersion    string    `db:"model_version" json:"model_version" validate:"required"`
	PredictedAt     time.Time `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// WinnerProb returns the probability assigned to the predicted winner
func (p *Prediction) WinnerProb() float64 {
	if p.PredictedWinner == SelectionAway {
		return p.AwayProb
	}
	return p.HomeProb
}

// MeetsThreshold checks if the confidence meets the given threshold
func (p *Prediction) MeetsThreshold(threshold float64) bool {
	return p.Confidence >= threshold
}
