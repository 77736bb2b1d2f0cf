package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate on the host surface.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent HTTP requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap API call rate by status. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// External API latency. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Transport failures by category (timeout, network, circuit_open, ...).
	WeatherAPIErrorsTotal *prometheus.CounterVec

	// Calls cancelled by their caller, normally because a newer lookup
	// superseded them. Not upstream errors.
	WeatherAPIAbandonedTotal prometheus.Counter

	// Lookups issued per trigger (name, coordinate).
	LookupsIssuedTotal *prometheus.CounterVec

	// Lookups whose network call has not completed yet.
	LookupsInFlight prometheus.Gauge

	// Observer deliveries by outcome (success, failure).
	LookupDeliveriesTotal *prometheus.CounterVec

	// Failed deliveries by error kind (invalid_request, transport, decode).
	LookupErrorsTotal *prometheus.CounterVec

	// Results dropped because a newer lookup was issued. Expected, not an error.
	LookupSupersededTotal prometheus.Counter

	// Location collaborator events (fix, failure).
	LocationUpdatesTotal *prometheus.CounterVec

	// Per-city search count (allow-list; others go to "other").
	CitySearchesTotal *prometheus.CounterVec

	// Rate limit denials on trigger endpoints.
	RateLimitDeniedTotal prometheus.Counter

	// Circuit breaker state per component (0 closed, 1 open, 2 half-open).
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions per component.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	trackedCitiesMu sync.RWMutex
	trackedCities   map[string]struct{}

	queueGaugeOnce sync.Once
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	WeatherAPIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiErrorsTotal",
			Help: "OpenWeatherMap transport failures by category",
		},
		[]string{"category"},
	)
	WeatherAPIAbandonedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherApiAbandonedTotal",
			Help: "OpenWeatherMap calls cancelled by the caller (superseded lookups)",
		},
	)
	LookupsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookupsIssuedTotal",
			Help: "Weather lookups issued, by trigger",
		},
		[]string{"trigger"},
	)
	LookupsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookupsInFlight",
			Help: "Lookups whose network call has not completed",
		},
	)
	LookupDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookupDeliveriesTotal",
			Help: "Observer deliveries by outcome",
		},
		[]string{"outcome"},
	)
	LookupErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookupErrorsTotal",
			Help: "Failures delivered to the observer, by error kind",
		},
		[]string{"kind"},
	)
	LookupSupersededTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookupSupersededTotal",
			Help: "Results dropped because a newer lookup was issued",
		},
	)
	LocationUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locationUpdatesTotal",
			Help: "Location collaborator events by result",
		},
		[]string{"result"},
	)
	CitySearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citySearchesTotal",
			Help: "City searches (allow-list; others use city=other)",
		},
		[]string{"city"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration, WeatherAPIErrorsTotal, WeatherAPIAbandonedTotal,
		LookupsIssuedTotal, LookupsInFlight, LookupDeliveriesTotal,
		LookupErrorsTotal, LookupSupersededTotal,
		LocationUpdatesTotal, CitySearchesTotal,
		RateLimitDeniedTotal,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
	)
}

// RegisterDeliveryQueueGauge exposes the delivery queue depth. Only the first
// call registers.
func RegisterDeliveryQueueGauge(depth func() int) {
	queueGaugeOnce.Do(func() {
		registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "deliveryQueueDepth",
					Help: "Observer callbacks waiting on the delivery context",
				},
				func() float64 { return float64(depth()) },
			),
		)
	})
}

// RecordCircuitBreakerTransition counts a transition and updates the state gauge.
func RecordCircuitBreakerTransition(component, from, to string, state int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(state))
}

// SetTrackedCities sets the allow-list for city metrics. Others increment "other".
func SetTrackedCities(cities []string) {
	trackedCitiesMu.Lock()
	defer trackedCitiesMu.Unlock()
	trackedCities = make(map[string]struct{}, len(cities))
	for _, c := range cities {
		trackedCities[normalizeCity(c)] = struct{}{}
	}
}

// RecordCitySearch records a name-triggered lookup for city.
func RecordCitySearch(city string) {
	c := normalizeCity(city)
	trackedCitiesMu.RLock()
	_, ok := trackedCities[c] // nil map read is safe in Go
	trackedCitiesMu.RUnlock()
	if ok {
		CitySearchesTotal.WithLabelValues(c).Inc()
	} else {
		CitySearchesTotal.WithLabelValues("other").Inc()
	}
}

func normalizeCity(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
