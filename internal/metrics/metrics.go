// Package metrics provides the centralized Prometheus metrics registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "predictions_total",
		Help:      "Total number of predictions produced, by model",
	}, []string{"model"})
	WagersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "wagers_placed_total",
		Help:      "Total number of wagers placed",
	})
	WagersSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "wagers_settled_total",
		Help:      "Total number of wagers settled, by result",
	}, []string{"result"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "provider_requests_total",
		Help:      "Odds provider fetches by data origin (live, cache, fallback)",
	}, []string{"origin"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
	CycleErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oddsmith",
		Name:      "cycle_errors_total",
		Help:      "Errors encountered during scheduled cycles, by cycle",
	}, []string{"cycle"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmith",
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
	PendingWagers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmith",
		Name:      "pending_wagers",
		Help:      "Number of wagers awaiting settlement",
	})
	FeatureCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "oddsmith",
		Name:      "feature_cache_size",
		Help:      "Number of memoized feature vectors",
	})
)

// Histogram metrics
var (
	PredictionCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsmith",
		Name:      "prediction_cycle_duration_seconds",
		Help:      "Duration of prediction cycles in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsmith",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	ProviderRequestLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "oddsmith",
		Name:      "provider_request_latency_seconds",
		Help:      "Latency of odds provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(WagersPlacedTotal)
		registry.MustRegister(WagersSettledTotal)
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(CycleErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(PendingWagers)
		registry.MustRegister(FeatureCacheSize)

		// Register histogram metrics
		registry.MustRegister(PredictionCycleDuration)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(ProviderRequestLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a prediction event for a model.
func RecordPrediction(model string) {
	PredictionsTotal.WithLabelValues(model).Inc()
}

// RecordWagerPlaced records a wager placement event.
func RecordWagerPlaced() {
	WagersPlacedTotal.Inc()
}

// RecordWagerSettled records a wager settlement event by result.
func RecordWagerSettled(result string) {
	WagersSettledTotal.WithLabelValues(result).Inc()
}

// RecordProviderRequest records an odds provider fetch by data origin.
func RecordProviderRequest(origin string) {
	ProviderRequestsTotal.WithLabelValues(origin).Inc()
}

// RecordCircuitBreakerTrip records a provider circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordCycleError records an error during a scheduled cycle.
func RecordCycleError(cycle string) {
	CycleErrorsTotal.WithLabelValues(cycle).Inc()
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdatePendingWagers updates the pending wagers gauge.
func UpdatePendingWagers(count float64) {
	PendingWagers.Set(count)
}

// UpdateFeatureCacheSize updates the feature cache size gauge.
func UpdateFeatureCacheSize(count float64) {
	FeatureCacheSize.Set(count)
}

// RecordPredictionCycleDuration records a prediction cycle duration.
func RecordPredictionCycleDuration(durationSeconds float64) {
	PredictionCycleDuration.Observe(durationSeconds)
}

// RecordBacktestDuration records a backtest run duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// RecordProviderLatency records an odds provider request latency.
func RecordProviderLatency(durationSeconds float64) {
	ProviderRequestLatency.Observe(durationSeconds)
}

// Serve starts the metrics HTTP server on the given address and path.
// It blocks until the server exits.
func Serve(addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return http.ListenAndServe(addr, mux)
}
