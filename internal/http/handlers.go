package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-lookup/internal/circuitbreaker"
	"github.com/kjstillabower/weather-lookup/internal/lifecycle"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/presenter"
	"github.com/kjstillabower/weather-lookup/internal/traffic"
	"github.com/kjstillabower/weather-lookup/internal/validation"
)

// maxBodyBytes bounds trigger request bodies.
const maxBodyBytes = 4 << 10

// CitySearcher starts a name lookup.
type CitySearcher interface {
	SearchCity(ctx context.Context, city string) models.Token
}

// LocationPublisher feeds location events to the location pump.
type LocationPublisher interface {
	Publish(ctx context.Context, fix models.Coordinate) error
	Fail(ctx context.Context, err error) error
}

// ViewSource exposes what the observer last received.
type ViewSource interface {
	Snapshot() presenter.Snapshot
}

// BreakerStater reports the upstream circuit state.
type BreakerStater interface {
	BreakerState() circuitbreaker.State
}

// HealthConfig holds thresholds for the health handler.
type HealthConfig struct {
	ErrorWindow time.Duration
	ErrorPct    int
	StartTime   time.Time
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	searcher     CitySearcher
	locations    LocationPublisher
	view         ViewSource
	breaker      BreakerStater
	healthConfig *HealthConfig
	logger       *zap.Logger
	cityMinLen   int
	cityMaxLen   int

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler. breaker and healthConfig may be nil.
func NewHandler(
	searcher CitySearcher,
	locations LocationPublisher,
	view ViewSource,
	breaker BreakerStater,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	cityMinLen, cityMaxLen int,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		searcher:     searcher,
		locations:    locations,
		view:         view,
		breaker:      breaker,
		healthConfig: healthConfig,
		logger:       logger,
		cityMinLen:   cityMinLen,
		cityMaxLen:   cityMaxLen,
	}
}

type searchRequest struct {
	City string `json:"city"`
}

type locationRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Error string   `json:"error"`
}

// PostSearch handles POST /weather/search, the Name Trigger. The lookup runs
// in the background; the response carries its token.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be JSON {\"city\": \"...\"}")
		return
	}
	city, err := validation.ValidateCity(body.City, h.cityMinLen, h.cityMaxLen)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}

	token := h.searcher.SearchCity(r.Context(), city)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"token":   uint64(token),
		"trigger": "name",
		"city":    city,
	})
}

// PostLocation handles POST /weather/location. A body with lat/lon is a fix;
// a body with error reports a location service failure.
func (h *Handler) PostLocation(w http.ResponseWriter, r *http.Request) {
	var body locationRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be JSON {\"lat\": n, \"lon\": n} or {\"error\": \"...\"}")
		return
	}

	var err error
	switch {
	case body.Error != "":
		err = h.locations.Fail(r.Context(), errors.New(body.Error))
	case body.Lat == nil || body.Lon == nil:
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATE", "lat and lon are required")
		return
	default:
		if verr := validation.ValidateCoordinate(*body.Lat, *body.Lon); verr != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATE", verr.Error())
			return
		}
		err = h.locations.Publish(r.Context(), models.Coordinate{Latitude: *body.Lat, Longitude: *body.Lon})
	}
	if err != nil {
		observability.LoggerFromContext(r.Context(), h.logger).Debug("location event not accepted", zap.Error(err))
		writeError(w, r, http.StatusServiceUnavailable, "LOCATION_UNAVAILABLE", "location feed is not accepting events")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"trigger":  "location",
	})
}

// GetCurrent handles GET /weather/current.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.view.Snapshot())
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	window := h.errorWindow()
	errCount, total := traffic.ErrorRate(window)
	resp := map[string]interface{}{
		"status":  result.status,
		"service": "weather-lookup",
		"version": "dev",
		"checks": map[string]string{
			"weatherApi": h.breakerState().String(),
		},
		"lookups": map[string]interface{}{
			"window":     window.String(),
			"delivered":  total,
			"failed":     errCount,
			"superseded": traffic.SupersededCount(window),
			"denied":     traffic.DenialCount(window),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if result.reason != "" {
		resp["reason"] = result.reason
	}
	if h.healthConfig != nil && !h.healthConfig.StartTime.IsZero() {
		resp["uptime"] = time.Since(h.healthConfig.StartTime).Round(time.Second).String()
	}
	writeJSON(w, result.statusCode, resp)
}

// computeHealthStatus evaluates conditions in priority order:
// shutting-down > circuit open > delivered error rate > healthy.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.breakerState() == circuitbreaker.StateOpen {
		return healthResult{"degraded", http.StatusServiceUnavailable, "circuit_open"}
	}
	if h.healthConfig != nil && h.healthConfig.ErrorPct > 0 {
		errCount, total := traffic.ErrorRate(h.errorWindow())
		if total > 0 {
			pct := float64(errCount) * 100 / float64(total)
			if pct >= float64(h.healthConfig.ErrorPct) {
				return healthResult{"degraded", http.StatusServiceUnavailable, "error_rate_breach"}
			}
		}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

func (h *Handler) breakerState() circuitbreaker.State {
	if h.breaker == nil {
		return circuitbreaker.StateClosed
	}
	return h.breaker.BreakerState()
}

func (h *Handler) errorWindow() time.Duration {
	if h.healthConfig != nil && h.healthConfig.ErrorWindow > 0 {
		return h.healthConfig.ErrorWindow
	}
	return 60 * time.Second
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationID(r.Context()),
		},
	})
}
