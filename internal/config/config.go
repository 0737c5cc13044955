// Package config provides configuration management for the oddsmith application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Model    ModelConfig    `mapstructure:"model" validate:"required"`
	Staking  StakingConfig  `mapstructure:"staking" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Cycle    CycleConfig    `mapstructure:"cycle" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// OddsAPIConfig represents the external odds/results provider configuration
type OddsAPIConfig struct {
	BaseURL           string  `mapstructure:"base_url" validate:"required,url"`
	StreamURL         string  `mapstructure:"stream_url"`
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	Regions           string  `mapstructure:"regions" validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"required,gt=0"`
	OddsTTLSeconds    int     `mapstructure:"odds_ttl_seconds" validate:"required,gt=0"`
	ScoresTTLSeconds  int     `mapstructure:"scores_ttl_seconds" validate:"required,gt=0"`
	FallbackEnabled   bool    `mapstructure:"fallback_enabled"`
}

// ModelConfig represents probability model configuration
type ModelConfig struct {
	Kind              string  `mapstructure:"kind" validate:"required,modelkind"`
	LearningRate      float64 `mapstructure:"learning_rate" validate:"required,gt=0,lt=1"`
	MaxEpochs         int     `mapstructure:"max_epochs" validate:"required,gt=0"`
	EarlyStopPatience int     `mapstructure:"early_stop_patience" validate:"required,gt=0"`
	FeatureCacheTTL   int     `mapstructure:"feature_cache_ttl_seconds" validate:"gte=0"`
}

// StakingConfig represents fractional Kelly staking configuration
type StakingConfig struct {
	KellyFraction float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MaxStakePct   float64 `mapstructure:"max_stake_pct" validate:"required,gt=0,lte=1"`
	MinStake      float64 `mapstructure:"min_stake" validate:"required,gt=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate        string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	StartingBankroll float64 `mapstructure:"starting_bankroll" validate:"required,gt=0"`
	MinConfidence    float64 `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	MinExpectedValue float64 `mapstructure:"min_expected_value"`
	SampleSize       int     `mapstructure:"sample_size" validate:"required,gt=0"`
}

// CycleConfig represents scheduled prediction/settlement cycle configuration
type CycleConfig struct {
	Sports             []string `mapstructure:"sports" validate:"required,min=1"`
	PredictionSchedule string   `mapstructure:"prediction_schedule" validate:"required"`
	SettlementSchedule string   `mapstructure:"settlement_schedule" validate:"required"`
	MinConfidence      float64  `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	MinExpectedValue   float64  `mapstructure:"min_expected_value"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// OddsAPITimeout returns the provider request timeout as a duration
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// FeatureCacheTTL returns the feature memoization TTL as a duration
func (c *Config) FeatureCacheTTL() time.Duration {
	return time.Duration(c.Model.FeatureCacheTTL) * time.Second
}
