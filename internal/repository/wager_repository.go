package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/models"
)

const wagerColumns = `id, prediction_id, contest_id, selection, stake, odds, result, profit,
	placed_at, settled_at`

// PostgresWagerRepository implements WagerRepository for PostgreSQL
type PostgresWagerRepository struct {
	db *database.DB
}

// NewPostgresWagerRepository creates a new wager repository
func NewPostgresWagerRepository(db *database.DB) WagerRepository {
	return &PostgresWagerRepository{db: db}
}

// Create inserts a new pending wager
func (r *PostgresWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (id, prediction_id, contest_id, selection, stake, odds, result, profit, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		wager.ID, wager.PredictionID, wager.ContestID, wager.Selection,
		wager.Stake, wager.Odds, wager.Result, wager.Profit, wager.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}

	return nil
}

// GetByID retrieves a wager by ID
func (r *PostgresWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	query := fmt.Sprintf(`SELECT %s FROM wagers WHERE id = $1`, wagerColumns)

	wager := &models.Wager{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&wager.ID, &wager.PredictionID, &wager.ContestID, &wager.Selection,
		&wager.Stake, &wager.Odds, &wager.Result, &wager.Profit,
		&wager.PlacedAt, &wager.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}

	return wager, nil
}

// GetPending retrieves all unsettled wagers, oldest first
func (r *PostgresWagerRepository) GetPending(ctx context.Context) ([]*models.Wager, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM wagers
		WHERE result = 'pending'
		ORDER BY placed_at ASC
	`, wagerColumns)

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		wager := &models.Wager{}
		err := rows.Scan(
			&wager.ID, &wager.PredictionID, &wager.ContestID, &wager.Selection,
			&wager.Stake, &wager.Odds, &wager.Result, &wager.Profit,
			&wager.PlacedAt, &wager.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, wager)
	}

	return wagers, rows.Err()
}

// Settle writes the one-time settlement update. The result = 'pending' guard
// keeps an already-settled row untouched.
func (r *PostgresWagerRepository) Settle(ctx context.Context, wager *models.Wager) error {
	query := `
		UPDATE wagers SET result = $2, profit = $3, settled_at = $4
		WHERE id = $1 AND result = 'pending'
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		wager.ID, wager.Result, wager.Profit, wager.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to settle wager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Row was already settled or never existed; the ledger treats
		// re-settlement as a no-op so only report missing rows.
		existing, getErr := r.GetByID(ctx, wager.ID)
		if getErr != nil {
			return getErr
		}
		if !existing.IsSettled() {
			return models.ErrNotFound
		}
	}

	return nil
}
