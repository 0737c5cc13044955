package repository

import (
	"fmt"

	"github.com/yourusername/oddsmith/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Contest  ContestRepository
	Wager    WagerRepository
	Bankroll BankrollRepository
	Model    ModelRepository
}

// NewRepositories creates and returns all Postgres-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Contest:  NewPostgresContestRepository(db),
		Wager:    NewPostgresWagerRepository(db),
		Bankroll: NewPostgresBankrollRepository(db),
		Model:    NewPostgresModelRepository(db),
	}, nil
}
