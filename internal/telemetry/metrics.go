package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/escuela"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// API metrics
	APIRequestsTotal   metric.Int64Counter
	APIRequestDuration metric.Float64Histogram

	// Auth metrics
	LoginAttemptsTotal metric.Int64Counter
	LoginFailuresTotal metric.Int64Counter
	StaleLoginsTotal   metric.Int64Counter
	LogoutsTotal       metric.Int64Counter

	// Navigation metrics
	GuardDenialsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.APIRequestsTotal, _ = meter.Int64Counter(
		"escuela.api.requests.total",
		metric.WithDescription("Total number of requests sent to the school API"),
		metric.WithUnit("{request}"),
	)

	m.APIRequestDuration, _ = meter.Float64Histogram(
		"escuela.api.requests.duration",
		metric.WithDescription("Duration of requests sent to the school API"),
		metric.WithUnit("ms"),
	)

	m.LoginAttemptsTotal, _ = meter.Int64Counter(
		"escuela.auth.login.attempts.total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)

	m.LoginFailuresTotal, _ = meter.Int64Counter(
		"escuela.auth.login.failures.total",
		metric.WithDescription("Total number of failed login attempts"),
		metric.WithUnit("{attempt}"),
	)

	m.StaleLoginsTotal, _ = meter.Int64Counter(
		"escuela.auth.login.stale.total",
		metric.WithDescription("Total number of login responses discarded because a newer login or logout happened"),
		metric.WithUnit("{attempt}"),
	)

	m.LogoutsTotal, _ = meter.Int64Counter(
		"escuela.auth.logout.total",
		metric.WithDescription("Total number of logouts"),
		metric.WithUnit("{logout}"),
	)

	m.GuardDenialsTotal, _ = meter.Int64Counter(
		"escuela.navigation.denials.total",
		metric.WithDescription("Total number of navigations denied by the route guard"),
		metric.WithUnit("{navigation}"),
	)

	return m
}
