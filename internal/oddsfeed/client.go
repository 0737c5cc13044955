package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/oddsmith/internal/config"
	"github.com/yourusername/oddsmith/internal/metrics"
)

// Client fetches odds and scores from the provider. Responses are cached
// for their configured TTL; when the provider is unreachable the client
// serves stale cache, then synthetic fallback data if enabled. The origin
// of every result is labeled so nothing synthetic masquerades as live.
type Client struct {
	http            *RateLimitedHTTPClient
	baseURL         string
	apiKey          string
	regions         string
	cache           *cache.Cache
	oddsTTL         time.Duration
	scoresTTL       time.Duration
	fallbackEnabled bool
	logger          *logrus.Logger
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.OddsAPIConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.RateLimit = cfg.RequestsPerSecond

	return &Client{
		http:            NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		regions:         cfg.Regions,
		cache:           cache.New(5*time.Minute, 10*time.Minute),
		oddsTTL:         time.Duration(cfg.OddsTTLSeconds) * time.Second,
		scoresTTL:       time.Duration(cfg.ScoresTTLSeconds) * time.Second,
		fallbackEnabled: cfg.FallbackEnabled,
		logger:          logger,
	}
}

// FetchOdds returns upcoming events with moneyline prices for a sport
func (c *Client) FetchOdds(ctx context.Context, sport string) (FetchResult, error) {
	endpoint := fmt.Sprintf("/v4/sports/%s/odds", url.PathEscape(sport))
	params := url.Values{
		"regions":    {c.regions},
		"markets":    {marketHeadToHead},
		"oddsFormat": {"decimal"},
	}
	return c.fetch(ctx, "odds:"+sport, endpoint, params, c.oddsTTL, sport)
}

// FetchScores returns recent events with final scores for a sport,
// looking back the given number of days
func (c *Client) FetchScores(ctx context.Context, sport string, daysFrom int) (FetchResult, error) {
	endpoint := fmt.Sprintf("/v4/sports/%s/scores", url.PathEscape(sport))
	params := url.Values{
		"daysFrom": {fmt.Sprintf("%d", daysFrom)},
	}
	return c.fetch(ctx, "scores:"+sport, endpoint, params, c.scoresTTL, sport)
}

// staleTTL bounds how long an expired response stays servable when the
// provider is down
const staleTTL = 24 * time.Hour

func (c *Client) fetch(ctx context.Context, key, endpoint string, params url.Values, ttl time.Duration, sport string) (FetchResult, error) {
	if cached, found := c.cache.Get(key); found {
		if events, ok := cached.([]Event); ok {
			metrics.RecordProviderRequest(string(OriginCache))
			return FetchResult{Events: events, Origin: OriginCache}, nil
		}
	}

	events, err := c.request(ctx, endpoint, params)
	if err == nil {
		c.cache.Set(key, events, ttl)
		c.cache.Set("stale:"+key, events, staleTTL)
		metrics.RecordProviderRequest(string(OriginLive))
		return FetchResult{Events: events, Origin: OriginLive}, nil
	}

	c.logger.WithError(err).WithField("endpoint", endpoint).Warn("Provider fetch failed")

	if stale, found := c.cache.Get("stale:" + key); found {
		if events, ok := stale.([]Event); ok {
			c.logger.WithField("endpoint", endpoint).Warn("Serving stale cached response")
			metrics.RecordProviderRequest(string(OriginCache))
			return FetchResult{Events: events, Origin: OriginCache}, nil
		}
	}

	if c.fallbackEnabled {
		metrics.RecordProviderRequest(string(OriginFallback))
		return FetchResult{Events: syntheticEvents(sport, time.Now()), Origin: OriginFallback}, nil
	}

	return FetchResult{}, fmt.Errorf("provider fetch failed: %w", err)
}

func (c *Client) request(ctx context.Context, endpoint string, params url.Values) ([]Event, error) {
	params.Set("apiKey", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	resp, err := c.http.Get(ctx, fullURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return events, nil
}

// ApplyPriceUpdate folds a streamed price change into the cached odds for
// the event's sport, preserving the entry's remaining TTL. Returns false
// when the sport has no cached odds or the event/team is not present; the
// next poll will pick the price up instead.
func (c *Client) ApplyPriceUpdate(update PriceUpdate) bool {
	key := "odds:" + update.SportKey
	cached, expiry, found := c.cache.GetWithExpiration(key)
	if !found {
		return false
	}
	events, ok := cached.([]Event)
	if !ok {
		return false
	}

	applied := false
	for i := range events {
		if events[i].ID != update.EventID {
			continue
		}
		for j := range events[i].Bookmakers {
			markets := events[i].Bookmakers[j].Markets
			for k := range markets {
				if markets[k].Key != marketHeadToHead {
					continue
				}
				for l := range markets[k].Outcomes {
					if markets[k].Outcomes[l].Name == update.Team {
						markets[k].Outcomes[l].Price = update.Price
						applied = true
					}
				}
			}
		}
	}

	if applied {
		c.cache.Set(key, events, time.Until(expiry))
	}
	return applied
}

// Close releases the underlying HTTP client
func (c *Client) Close() error {
	return c.http.Close()
}
