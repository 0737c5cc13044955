package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/models"
)

// bankrollKey identifies the single bankroll snapshot row
const bankrollKey = "bankroll"

// PostgresBankrollRepository implements BankrollRepository for PostgreSQL
type PostgresBankrollRepository struct {
	db *database.DB
}

// NewPostgresBankrollRepository creates a new bankroll repository
func NewPostgresBankrollRepository(db *database.DB) BankrollRepository {
	return &PostgresBankrollRepository{db: db}
}

// Load reads the bankroll snapshot
func (r *PostgresBankrollRepository) Load(ctx context.Context) (*models.BankrollState, error) {
	query := `
		SELECT balance, total_bets, wins, losses, pushes, total_staked, total_profit, updated_at
		FROM bankroll_snapshots WHERE key = $1
	`

	state := &models.BankrollState{}
	err := r.db.GetPool().QueryRow(ctx, query, bankrollKey).Scan(
		&state.Balance, &state.TotalBets, &state.Wins, &state.Losses, &state.Pushes,
		&state.TotalStaked, &state.TotalProfit, &state.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bankroll snapshot: %w", err)
	}

	return state, nil
}

// Save writes the bankroll snapshot (read-modify-write, single process only)
func (r *PostgresBankrollRepository) Save(ctx context.Context, state *models.BankrollState) error {
	query := `
		INSERT INTO bankroll_snapshots (key, balance, total_bets, wins, losses, pushes,
		                                total_staked, total_profit, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			balance = EXCLUDED.balance, total_bets = EXCLUDED.total_bets,
			wins = EXCLUDED.wins, losses = EXCLUDED.losses, pushes = EXCLUDED.pushes,
			total_staked = EXCLUDED.total_staked, total_profit = EXCLUDED.total_profit,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bankrollKey, state.Balance, state.TotalBets, state.Wins, state.Losses, state.Pushes,
		state.TotalStaked, state.TotalProfit, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save bankroll snapshot: %w", err)
	}

	return nil
}
