package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidStake     = errors.New("stake exceeds available bankroll")
	ErrNotTrained       = errors.New("model is not trained")
)
