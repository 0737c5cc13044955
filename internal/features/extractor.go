// Package features aggregates historical results into the numeric inputs of
// the probability model.
package features

import (
	"context"
	"fmt"
	"math"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsmith/internal/models"
	"github.com/yourusername/oddsmith/internal/repository"
)

const (
	// recentFormWindow is the number of most recent games used for form
	// and streak calculations
	recentFormWindow = 10

	// defaultRestDays applies when a team has no completed game to
	// measure rest against
	defaultRestDays = 2.0

	// restAdvantageCap bounds the rest differential before scaling
	restAdvantageCap = 2.0
)

// Extractor computes feature vectors from the historical contest log.
// Extraction never fails: any data-access error degrades to neutral defaults
// with Valid=false.
type Extractor struct {
	store  repository.ContestRepository
	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewExtractor creates a feature extractor. ttl <= 0 disables memoization,
// which backtests rely on so that the as-of cutoff stays correct across the
// replay.
func NewExtractor(store repository.ContestRepository, ttl time.Duration, logger *logrus.Logger) *Extractor {
	e := &Extractor{store: store, ttl: ttl, logger: logger}
	if logger == nil {
		e.logger = logrus.New()
	}
	if ttl > 0 {
		e.cache = cache.New(ttl, ttl*2)
	}
	return e
}

// Extract computes the feature vector for a pairing using only contests that
// started strictly before asOf. Cached entries expire on TTL only; callers
// needing freshness must Clear explicitly.
func (e *Extractor) Extract(ctx context.Context, homeTeam, awayTeam, sport string, asOf time.Time) models.FeatureVector {
	key := cacheKey(sport, homeTeam, awayTeam)
	if e.cache != nil {
		if cached, found := e.cache.Get(key); found {
			if fv, ok := cached.(models.FeatureVector); ok {
				return fv
			}
		}
	}

	fv := e.build(ctx, homeTeam, awayTeam, sport, asOf)

	if e.cache != nil {
		e.cache.Set(key, fv, e.ttl)
	}
	return fv
}

// Clear drops all memoized vectors
func (e *Extractor) Clear() {
	if e.cache != nil {
		e.cache.Flush()
	}
}

// CacheSize returns the number of memoized vectors
func (e *Extractor) CacheSize() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.ItemCount()
}

func (e *Extractor) build(ctx context.Context, homeTeam, awayTeam, sport string, asOf time.Time) models.FeatureVector {
	fv := models.FeatureVector{Sport: sport}

	home, homeOK := e.teamAggregates(ctx, sport, homeTeam, asOf)
	away, awayOK := e.teamAggregates(ctx, sport, awayTeam, asOf)
	fv.Valid = homeOK && awayOK

	fv.HomeWinPct = home.winPct
	fv.AwayWinPct = away.winPct
	fv.HomeHomeWinPct = home.homeRoleWinPct
	fv.AwayAwayWinPct = away.awayRoleWinPct
	fv.HomeRecentForm = home.recentForm
	fv.AwayRecentForm = away.recentForm
	fv.HomeAvgScored = home.avgScored
	fv.HomeAvgConceded = home.avgConceded
	fv.AwayAvgScored = away.avgScored
	fv.AwayAvgConceded = away.avgConceded
	fv.HomeRestDays = home.restDays
	fv.AwayRestDays = away.restDays
	fv.HomeStreak = home.streak
	fv.AwayStreak = away.streak

	// Rest advantage: cap the upside so one long layoff cannot dominate
	fv.RestAdvantage = math.Min(fv.HomeRestDays-fv.AwayRestDays, restAdvantageCap) / 4.0

	h2h, err := e.store.GetHeadToHead(ctx, sport, homeTeam, awayTeam, asOf)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"sport": sport, "home": homeTeam, "away": awayTeam,
		}).Debug("head-to-head lookup failed, using zero counts")
		fv.Valid = false
	} else {
		for _, contest := range h2h {
			if contest.WonBy(homeTeam) {
				fv.HeadToHeadHomeWins++
			} else if contest.WonBy(awayTeam) {
				fv.HeadToHeadAwayWins++
			}
			fv.HeadToHeadTotal++
		}
	}

	return fv
}

// teamAggregates collects one side's historical record. The bool result is
// false when the team has no usable history or the lookup errored, in which
// case the returned record carries neutral defaults.
func (e *Extractor) teamAggregates(ctx context.Context, sport, team string, asOf time.Time) (teamRecord, bool) {
	games, err := e.store.GetCompletedByTeam(ctx, sport, team, repository.RoleEither, asOf, 0)
	if err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"sport": sport, "team": team,
		}).Debug("team history lookup failed, using neutral defaults")
		return neutralRecord(sport), false
	}
	if len(games) == 0 {
		return neutralRecord(sport), false
	}

	rec := teamRecord{restDays: defaultRestDays}
	var played, won, homePlayed, homeWon, awayPlayed, awayWon int
	var scored, conceded float64

	for _, game := range games {
		if !game.IsCompleted() {
			continue
		}
		played++
		s, c := game.ScoredBy(team)
		scored += s
		conceded += c

		win := game.WonBy(team)
		if win {
			won++
		}
		if game.HomeTeam == team {
			homePlayed++
			if win {
				homeWon++
			}
		} else {
			awayPlayed++
			if win {
				awayWon++
			}
		}
	}
	if played == 0 {
		return neutralRecord(sport), false
	}

	rec.winPct = float64(won) / float64(played)
	rec.homeRoleWinPct = winPct(homeWon, homePlayed)
	rec.awayRoleWinPct = winPct(awayWon, awayPlayed)
	rec.avgScored = scored / float64(played)
	rec.avgConceded = conceded / float64(played)

	// games arrive ordered most recent first
	recent := games
	if len(recent) > recentFormWindow {
		recent = recent[:recentFormWindow]
	}
	rec.recentForm, rec.streak = formAndStreak(recent, team)

	rec.restDays = asOf.Sub(games[0].ScheduledStart).Hours() / 24.0
	if rec.restDays < 0 {
		rec.restDays = 0
	}

	return rec, true
}

// formAndStreak computes the win fraction over the recent window and the
// signed streak. The streak scan runs most-recent to oldest: the counter
// grows while consecutive outcomes match and flips sign with magnitude one
// on each change.
func formAndStreak(recent []*models.Contest, team string) (form, streak float64) {
	if len(recent) == 0 {
		return 0.5, 0
	}

	wins := 0
	for _, game := range recent {
		win := game.WonBy(team)
		if win {
			wins++
		}
		switch {
		case win && streak > 0:
			streak++
		case win:
			streak = 1
		case !win && streak < 0:
			streak--
		default:
			streak = -1
		}
	}

	return float64(wins) / float64(len(recent)), streak
}

type teamRecord struct {
	winPct         float64
	homeRoleWinPct float64
	awayRoleWinPct float64
	recentForm     float64
	avgScored      float64
	avgConceded    float64
	restDays       float64
	streak         float64
}

func neutralRecord(sport string) teamRecord {
	baseline := baselineScore(sport)
	return teamRecord{
		winPct:         0.5,
		homeRoleWinPct: 0.5,
		awayRoleWinPct: 0.5,
		recentForm:     0.5,
		avgScored:      baseline,
		avgConceded:    baseline,
		restDays:       defaultRestDays,
	}
}

func winPct(won, played int) float64 {
	if played == 0 {
		return 0.5
	}
	return float64(won) / float64(played)
}

func cacheKey(sport, home, away string) string {
	return fmt.Sprintf("%s:%s:%s", sport, home, away)
}
