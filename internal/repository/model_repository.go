package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/models"
)

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db *database.DB
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db *database.DB) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// SaveWeights stores serialized model coefficients under a version tag
func (r *PostgresModelRepository) SaveWeights(ctx context.Context, version string, weights []byte) error {
	query := `
		INSERT INTO model_weights (version, weights, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (version) DO UPDATE SET weights = EXCLUDED.weights, created_at = EXCLUDED.created_at
	`

	_, err := r.db.GetPool().Exec(ctx, query, version, weights, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save model weights: %w", err)
	}

	return nil
}

// LoadWeights retrieves serialized model coefficients for a version
func (r *PostgresModelRepository) LoadWeights(ctx context.Context, version string) ([]byte, error) {
	query := `SELECT weights FROM model_weights WHERE version = $1`

	var weights []byte
	err := r.db.GetPool().QueryRow(ctx, query, version).Scan(&weights)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model weights: %w", err)
	}

	return weights, nil
}

// LatestVersion returns the most recently saved model version
func (r *PostgresModelRepository) LatestVersion(ctx context.Context) (string, error) {
	query := `SELECT version FROM model_weights ORDER BY created_at DESC LIMIT 1`

	var version string
	err := r.db.GetPool().QueryRow(ctx, query).Scan(&version)
	if err == pgx.ErrNoRows {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load latest model version: %w", err)
	}

	return version, nil
}
