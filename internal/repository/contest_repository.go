package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/oddsmith/internal/database"
	"github.com/yourusername/oddsmith/internal/models"
)

const contestColumns = `id, sport, home_team, away_team, scheduled_start, home_score, away_score,
	home_odds, away_odds, status, created_at, updated_at`

// PostgresContestRepository implements ContestRepository for PostgreSQL
type PostgresContestRepository struct {
	db *database.DB
}

// NewPostgresContestRepository creates a new contest repository
func NewPostgresContestRepository(db *database.DB) ContestRepository {
	return &PostgresContestRepository{db: db}
}

// Create inserts a new contest
func (r *PostgresContestRepository) Create(ctx context.Context, contest *models.Contest) error {
	query := `
		INSERT INTO contests (id, sport, home_team, away_team, scheduled_start, home_score,
		                      away_score, home_odds, away_odds, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		contest.ID, contest.Sport, contest.HomeTeam, contest.AwayTeam, contest.ScheduledStart,
		contest.HomeScore, contest.AwayScore, contest.HomeOdds, contest.AwayOdds, contest.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}

	return nil
}

// Update updates scores, odds and status of an existing contest
func (r *PostgresContestRepository) Update(ctx context.Context, contest *models.Contest) error {
	query := `
		UPDATE contests SET
			home_score = $2, away_score = $3, home_odds = $4, away_odds = $5,
			status = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		contest.ID, contest.HomeScore, contest.AwayScore, contest.HomeOdds, contest.AwayOdds, contest.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetByID retrieves a contest by ID
func (r *PostgresContestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contest, error) {
	query := fmt.Sprintf(`SELECT %s FROM contests WHERE id = $1`, contestColumns)

	contest := &models.Contest{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&contest.ID, &contest.Sport, &contest.HomeTeam, &contest.AwayTeam, &contest.ScheduledStart,
		&contest.HomeScore, &contest.AwayScore, &contest.HomeOdds, &contest.AwayOdds, &contest.Status,
		&contest.CreatedAt, &contest.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}

	return contest, nil
}

// GetByMatchup retrieves the contest for a pairing at an exact start time
func (r *PostgresContestRepository) GetByMatchup(ctx context.Context, sport, homeTeam, awayTeam string, start time.Time) (*models.Contest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contests
		WHERE sport = $1 AND home_team = $2 AND away_team = $3 AND scheduled_start = $4
	`, contestColumns)

	contest := &models.Contest{}
	err := r.db.GetPool().QueryRow(ctx, query, sport, homeTeam, awayTeam, start).Scan(
		&contest.ID, &contest.Sport, &contest.HomeTeam, &contest.AwayTeam, &contest.ScheduledStart,
		&contest.HomeScore, &contest.AwayScore, &contest.HomeOdds, &contest.AwayOdds, &contest.Status,
		&contest.CreatedAt, &contest.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contest by matchup: %w", err)
	}

	return contest, nil
}

// GetCompletedByTeam retrieves completed contests for a team before the cutoff
func (r *PostgresContestRepository) GetCompletedByTeam(ctx context.Context, sport, team string, role TeamRole, before time.Time, limit int) ([]*models.Contest, error) {
	var roleClause string
	switch role {
	case RoleHome:
		roleClause = "home_team = $2"
	case RoleAway:
		roleClause = "away_team = $2"
	default:
		roleClause = "(home_team = $2 OR away_team = $2)"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM contests
		WHERE sport = $1 AND %s AND status = 'completed' AND scheduled_start < $3
		ORDER BY scheduled_start DESC
	`, contestColumns, roleClause)

	args := []interface{}{sport, team, before}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests by team: %w", err)
	}
	defer rows.Close()

	return scanContests(rows)
}

// GetHeadToHead retrieves completed direct meetings between two teams before the cutoff
func (r *PostgresContestRepository) GetHeadToHead(ctx context.Context, sport, teamA, teamB string, before time.Time) ([]*models.Contest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contests
		WHERE sport = $1
		  AND ((home_team = $2 AND away_team = $3) OR (home_team = $3 AND away_team = $2))
		  AND status = 'completed' AND scheduled_start < $4
		ORDER BY scheduled_start DESC
	`, contestColumns)

	rows, err := r.db.GetPool().Query(ctx, query, sport, teamA, teamB, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query head-to-head contests: %w", err)
	}
	defer rows.Close()

	return scanContests(rows)
}

// GetCompletedBySport retrieves completed contests in chronological order.
// The range is start-inclusive and end-exclusive.
func (r *PostgresContestRepository) GetCompletedBySport(ctx context.Context, sport string, start, end time.Time, limit int) ([]*models.Contest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contests
		WHERE sport = $1 AND status = 'completed'
		  AND scheduled_start >= $2 AND scheduled_start < $3
		ORDER BY scheduled_start ASC
	`, contestColumns)

	args := []interface{}{sport, start, end}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed contests: %w", err)
	}
	defer rows.Close()

	return scanContests(rows)
}

// GetScheduled retrieves upcoming contests for a sport
func (r *PostgresContestRepository) GetScheduled(ctx context.Context, sport string, limit int) ([]*models.Contest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contests
		WHERE sport = $1 AND status = 'scheduled'
		ORDER BY scheduled_start ASC
	`, contestColumns)

	args := []interface{}{sport}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled contests: %w", err)
	}
	defer rows.Close()

	return scanContests(rows)
}

func scanContests(rows pgx.Rows) ([]*models.Contest, error) {
	var contests []*models.Contest
	for rows.Next() {
		contest := &models.Contest{}
		err := rows.Scan(
			&contest.ID, &contest.Sport, &contest.HomeTeam, &contest.AwayTeam, &contest.ScheduledStart,
			&contest.HomeScore, &contest.AwayScore, &contest.HomeOdds, &contest.AwayOdds, &contest.Status,
			&contest.CreatedAt, &contest.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, contest)
	}

	return contests, rows.Err()
}
