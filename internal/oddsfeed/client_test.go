package oddsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/logger"
)

const oddsPayload = `[
  {
    "id": "evt1",
    "sport_key": "basketball_nba",
    "commence_time": "2025-11-01T19:00:00Z",
    "home_team": "Lakers",
    "away_team": "Celtics",
    "bookmakers": [
      {
        "key": "bookone",
        "title": "Book One",
        "last_update": "2025-11-01T12:00:00Z",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Lakers", "price": 1.85},
              {"name": "Celtics", "price": 2.05}
            ]
          }
        ]
      },
      {
        "key": "booktwo",
        "title": "Book Two",
        "last_update": "2025-11-01T12:00:00Z",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Lakers", "price": 1.92},
              {"name": "Celtics", "price": 1.98}
            ]
          }
        ]
      }
    ]
  }
]`

const scoresPayload = `[
  {
    "id": "evt1",
    "sport_key": "basketball_nba",
    "commence_time": "2025-11-01T19:00:00Z",
    "home_team": "Lakers",
    "away_team": "Celtics",
    "completed": true,
    "scores": [
      {"name": "Lakers", "score": "112"},
      {"name": "Celtics", "score": "104"}
    ]
  }
]`

func testClientConfig(baseURL string, fallback bool) config.OddsAPIConfig {
	return config.OddsAPIConfig{
		BaseURL:           baseURL,
		APIKey:            "test-key",
		Regions:           "us",
		TimeoutSeconds:    5,
		RequestsPerSecond: 100,
		OddsTTLSeconds:    300,
		ScoresTTLSeconds:  3600,
		FallbackEnabled:   fallback,
	}
}

func TestFetchOddsLiveThenCached(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "h2h", r.URL.Query().Get("markets"))
		fmt.Fprint(w, oddsPayload)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL, false), logger.NewNop())
	defer client.Close()

	result, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	assert.Equal(t, OriginLive, result.Origin)
	require.Len(t, result.Events, 1)

	event := result.Events[0]
	assert.Equal(t, "Lakers", event.HomeTeam)
	assert.Equal(t, time.Date(2025, 11, 1, 19, 0, 0, 0, time.UTC), event.CommenceTime)

	home, away, ok := event.BestOdds()
	require.True(t, ok)
	assert.Equal(t, 1.92, home)
	assert.Equal(t, 2.05, away)

	cached, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, cached.Origin)
	assert.Equal(t, result.Events, cached.Events)
	assert.Equal(t, 1, requests)
}

func TestFetchScores(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/scores")
		assert.Equal(t, "3", r.URL.Query().Get("daysFrom"))
		fmt.Fprint(w, scoresPayload)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL, false), logger.NewNop())
	defer client.Close()

	result, err := client.FetchScores(context.Background(), "basketball_nba", 3)
	require.NoError(t, err)
	assert.Equal(t, OriginLive, result.Origin)
	require.Len(t, result.Events, 1)
	assert.True(t, result.Events[0].Completed)

	home, away, ok := result.Events[0].FinalScores()
	require.True(t, ok)
	assert.Equal(t, 112, home)
	assert.Equal(t, 104, away)
}

func TestFetchOddsServesStaleWhenProviderDown(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "down", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, oddsPayload)
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL, false)
	cfg.OddsTTLSeconds = 1
	client := NewClient(cfg, logger.NewNop())
	defer client.Close()

	live, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	require.Equal(t, OriginLive, live.Origin)

	// let the fresh entry expire, then take the provider down; the expired
	// response is still served rather than erroring out
	healthy.Store(false)
	time.Sleep(1100 * time.Millisecond)

	stale, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, stale.Origin)
	assert.Equal(t, live.Events, stale.Events)
}

func TestFetchOddsFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown sport", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL, true), logger.NewNop())
	defer client.Close()

	result, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	assert.Equal(t, OriginFallback, result.Origin)
	assert.NotEmpty(t, result.Events)

	for _, event := range result.Events {
		_, _, ok := event.BestOdds()
		assert.True(t, ok)
	}
}

func TestFetchOddsFailsWithoutFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown sport", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL, false), logger.NewNop())
	defer client.Close()

	_, err := client.FetchOdds(context.Background(), "basketball_nba")
	assert.Error(t, err)
}

func TestApplyPriceUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, oddsPayload)
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL, false), logger.NewNop())
	defer client.Close()

	_, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)

	applied := client.ApplyPriceUpdate(PriceUpdate{
		EventID:  "evt1",
		SportKey: "basketball_nba",
		Team:     "Lakers",
		Price:    decimal.NewFromFloat(2.10),
	})
	assert.True(t, applied)

	cached, err := client.FetchOdds(context.Background(), "basketball_nba")
	require.NoError(t, err)
	assert.Equal(t, OriginCache, cached.Origin)

	home, _, ok := cached.Events[0].BestOdds()
	require.True(t, ok)
	assert.Equal(t, 2.10, home)

	// unknown events and cold sports are left for the next poll
	assert.False(t, client.ApplyPriceUpdate(PriceUpdate{
		EventID: "evt9", SportKey: "basketball_nba", Team: "Lakers",
		Price: decimal.NewFromFloat(2.0),
	}))
	assert.False(t, client.ApplyPriceUpdate(PriceUpdate{
		EventID: "evt1", SportKey: "icehockey_nhl", Team: "Lakers",
		Price: decimal.NewFromFloat(2.0),
	}))
}

func TestBestOddsRequiresBothSides(t *testing.T) {
	event := Event{
		HomeTeam: "Lakers",
		AwayTeam: "Celtics",
		Bookmakers: []Bookmaker{{
			Markets: []Market{{
				Key:      marketHeadToHead,
				Outcomes: []Outcome{{Name: "Lakers", Price: decimal.NewFromFloat(1.9)}},
			}},
		}},
	}

	_, _, ok := event.BestOdds()
	assert.False(t, ok)
}

func TestFinalScoresIgnoresNonNumeric(t *testing.T) {
	event := Event{
		HomeTeam: "Lakers",
		AwayTeam: "Celtics",
		Scores: []Score{
			{Name: "Lakers", Score: "n/a"},
			{Name: "Celtics", Score: "104"},
		},
	}

	_, _, ok := event.FinalScores()
	assert.False(t, ok)
}
