package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/oddsmith/internal/models"
)

// MemoryContestRepository is an in-memory ContestRepository for tests and
// database-free runs
type MemoryContestRepository struct {
	mu       sync.RWMutex
	contests map[uuid.UUID]*models.Contest
}

// NewMemoryContestRepository creates an empty in-memory contest repository
func NewMemoryContestRepository() *MemoryContestRepository {
	return &MemoryContestRepository{contests: make(map[uuid.UUID]*models.Contest)}
}

// Create stores a contest
func (r *MemoryContestRepository) Create(ctx context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contests[contest.ID]; exists {
		return models.ErrDuplicateKey
	}
	clone := *contest
	r.contests[contest.ID] = &clone
	return nil
}

// Update replaces a stored contest
func (r *MemoryContestRepository) Update(ctx context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contests[contest.ID]; !exists {
		return models.ErrNotFound
	}
	clone := *contest
	r.contests[contest.ID] = &clone
	return nil
}

// GetByID retrieves a contest by ID
func (r *MemoryContestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contest, ok := r.contests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *contest
	return &clone, nil
}

// GetByMatchup retrieves the contest for a pairing at an exact start time
func (r *MemoryContestRepository) GetByMatchup(ctx context.Context, sport, homeTeam, awayTeam string, start time.Time) (*models.Contest, error) {
	matches := r.filter(func(c *models.Contest) bool {
		return c.Sport == sport && c.HomeTeam == homeTeam && c.AwayTeam == awayTeam &&
			c.ScheduledStart.Equal(start)
	})
	if len(matches) == 0 {
		return nil, models.ErrNotFound
	}
	return matches[0], nil
}

// GetCompletedByTeam filters completed contests for a team before the cutoff,
// most recent first
func (r *MemoryContestRepository) GetCompletedByTeam(ctx context.Context, sport, team string, role TeamRole, before time.Time, limit int) ([]*models.Contest, error) {
	matches := r.filter(func(c *models.Contest) bool {
		if c.Sport != sport || c.Status != models.ContestStatusCompleted || !c.ScheduledStart.Before(before) {
			return false
		}
		switch role {
		case RoleHome:
			return c.HomeTeam == team
		case RoleAway:
			return c.AwayTeam == team
		default:
			return c.HomeTeam == team || c.AwayTeam == team
		}
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledStart.After(matches[j].ScheduledStart)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetHeadToHead filters completed direct meetings before the cutoff
func (r *MemoryContestRepository) GetHeadToHead(ctx context.Context, sport, teamA, teamB string, before time.Time) ([]*models.Contest, error) {
	matches := r.filter(func(c *models.Contest) bool {
		if c.Sport != sport || c.Status != models.ContestStatusCompleted || !c.ScheduledStart.Before(before) {
			return false
		}
		return (c.HomeTeam == teamA && c.AwayTeam == teamB) || (c.HomeTeam == teamB && c.AwayTeam == teamA)
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledStart.After(matches[j].ScheduledStart)
	})
	return matches, nil
}

// GetCompletedBySport filters completed contests in chronological order
func (r *MemoryContestRepository) GetCompletedBySport(ctx context.Context, sport string, start, end time.Time, limit int) ([]*models.Contest, error) {
	matches := r.filter(func(c *models.Contest) bool {
		return c.Sport == sport && c.Status == models.ContestStatusCompleted &&
			!c.ScheduledStart.Before(start) && c.ScheduledStart.Before(end)
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledStart.Before(matches[j].ScheduledStart)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// GetScheduled filters upcoming contests
func (r *MemoryContestRepository) GetScheduled(ctx context.Context, sport string, limit int) ([]*models.Contest, error) {
	matches := r.filter(func(c *models.Contest) bool {
		return c.Sport == sport && c.Status == models.ContestStatusScheduled
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ScheduledStart.Before(matches[j].ScheduledStart)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *MemoryContestRepository) filter(keep func(*models.Contest) bool) []*models.Contest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*models.Contest
	for _, contest := range r.contests {
		if keep(contest) {
			clone := *contest
			matches = append(matches, &clone)
		}
	}
	return matches
}

// MemoryWagerRepository is an in-memory WagerRepository for tests
type MemoryWagerRepository struct {
	mu     sync.RWMutex
	wagers map[uuid.UUID]*models.Wager

	// FailSettle makes Settle fail for the given wager IDs, to exercise
	// batch settlement retry behavior
	FailSettle map[uuid.UUID]error
}

// NewMemoryWagerRepository creates an empty in-memory wager repository
func NewMemoryWagerRepository() *MemoryWagerRepository {
	return &MemoryWagerRepository{
		wagers:     make(map[uuid.UUID]*models.Wager),
		FailSettle: make(map[uuid.UUID]error),
	}
}

// Create stores a wager
func (r *MemoryWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wagers[wager.ID]; exists {
		return models.ErrDuplicateKey
	}
	clone := *wager
	r.wagers[wager.ID] = &clone
	return nil
}

// GetByID retrieves a wager by ID
func (r *MemoryWagerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wager, ok := r.wagers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *wager
	return &clone, nil
}

// GetPending retrieves unsettled wagers, oldest first
func (r *MemoryWagerRepository) GetPending(ctx context.Context) ([]*models.Wager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pending []*models.Wager
	for _, wager := range r.wagers {
		if wager.Result == models.WagerResultPending {
			clone := *wager
			pending = append(pending, &clone)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].PlacedAt.Before(pending[j].PlacedAt)
	})
	return pending, nil
}

// Settle applies the one-time settlement update; already-settled rows are
// left untouched
func (r *MemoryWagerRepository) Settle(ctx context.Context, wager *models.Wager) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.FailSettle[wager.ID]; ok {
		return err
	}
	existing, ok := r.wagers[wager.ID]
	if !ok {
		return models.ErrNotFound
	}
	if existing.Result != models.WagerResultPending {
		return nil
	}
	clone := *wager
	r.wagers[wager.ID] = &clone
	return nil
}

// MemoryBankrollRepository is an in-memory BankrollRepository for tests
type MemoryBankrollRepository struct {
	mu    sync.RWMutex
	state *models.BankrollState

	// FailSave makes Save return this error, to exercise persistence
	// failure handling
	FailSave error
}

// NewMemoryBankrollRepository creates an in-memory bankroll repository
func NewMemoryBankrollRepository() *MemoryBankrollRepository {
	return &MemoryBankrollRepository{}
}

// Load reads the snapshot
func (r *MemoryBankrollRepository) Load(ctx context.Context) (*models.BankrollState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state == nil {
		return nil, models.ErrNotFound
	}
	clone := *r.state
	return &clone, nil
}

// Save writes the snapshot
func (r *MemoryBankrollRepository) Save(ctx context.Context, state *models.BankrollState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	clone := *state
	r.state = &clone
	return nil
}

// MemoryModelRepository is an in-memory ModelRepository for tests
type MemoryModelRepository struct {
	mu       sync.RWMutex
	weights  map[string][]byte
	versions []string
}

// NewMemoryModelRepository creates an empty in-memory model repository
func NewMemoryModelRepository() *MemoryModelRepository {
	return &MemoryModelRepository{weights: make(map[string][]byte)}
}

// SaveWeights stores serialized coefficients under a version tag
func (r *MemoryModelRepository) SaveWeights(ctx context.Context, version string, weights []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.weights[version]; !exists {
		r.versions = append(r.versions, version)
	}
	r.weights[version] = append([]byte(nil), weights...)
	return nil
}

// LoadWeights retrieves serialized coefficients for a version
func (r *MemoryModelRepository) LoadWeights(ctx context.Context, version string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	weights, ok := r.weights[version]
	if !ok {
		return nil, models.ErrNotFound
	}
	return append([]byte(nil), weights...), nil
}

// LatestVersion returns the most recently saved version
func (r *MemoryModelRepository) LatestVersion(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.versions) == 0 {
		return "", models.ErrNotFound
	}
	return r.versions[len(r.versions)-1], nil
}
