package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/oddsmith/internal/models"
)

// TeamRole restricts a historical query to a team's home or away games
type TeamRole string

const (
	RoleHome   TeamRole = "home"
	RoleAway   TeamRole = "away"
	RoleEither TeamRole = "either"
)

// ContestRepository is the queryable log of contests (the historical data store)
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	Update(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contest, error)

	// GetByMatchup finds the contest for a pairing at an exact start time,
	// used to dedupe provider events against the stored log.
	GetByMatchup(ctx context.Context, sport, homeTeam, awayTeam string, start time.Time) (*models.Contest, error)

	// GetCompletedByTeam returns completed contests involving the team in
	// the given role, restricted to start_time < before, ordered by start
	// time descending. limit <= 0 means no limit.
	GetCompletedByTeam(ctx context.Context, sport, team string, role TeamRole, before time.Time, limit int) ([]*models.Contest, error)

	// GetHeadToHead returns completed direct meetings between the two teams
	// in either orientation, restricted to start_time < before, ordered by
	// start time descending.
	GetHeadToHead(ctx context.Context, sport, teamA, teamB string, before time.Time) ([]*models.Contest, error)

	// GetCompletedBySport returns completed contests with start-inclusive,
	// end-exclusive bounds, ordered by start time ascending, for
	// chronological replay.
	GetCompletedBySport(ctx context.Context, sport string, start, end time.Time, limit int) ([]*models.Contest, error)

	// GetScheduled returns upcoming contests for the sport
	GetScheduled(ctx context.Context, sport string, limit int) ([]*models.Contest, error)
}

// WagerRepository persists wagers; rows are append-only apart from the
// one-time settlement update
type WagerRepository interface {
	Create(ctx context.Context, wager *models.Wager) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error)
	GetPending(ctx context.Context) ([]*models.Wager, error)
	Settle(ctx context.Context, wager *models.Wager) error
}

// BankrollRepository persists the bankroll snapshot as a small key-value
// record; load at cycle start, save at cycle end
type BankrollRepository interface {
	Load(ctx context.Context) (*models.BankrollState, error)
	Save(ctx context.Context, state *models.BankrollState) error
}

// ModelRepository persists trained model coefficients by version
type ModelRepository interface {
	SaveWeights(ctx context.Context, version string, weights []byte) error
	LoadWeights(ctx context.Context, version string) ([]byte, error)
	LatestVersion(ctx context.Context) (string, error)
}
