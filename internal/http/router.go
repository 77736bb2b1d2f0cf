package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup/internal/observability"
)

// NewRouter mounts the trigger, view, health and metrics routes. Only the
// trigger routes are rate limited.
func NewRouter(h *Handler, limiter *rate.Limiter, requestTimeout time.Duration, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler())

	weatherRouter := router.PathPrefix("/weather").Subrouter()
	weatherRouter.HandleFunc("/current", h.GetCurrent).Methods(http.MethodGet)

	triggers := weatherRouter.NewRoute().Subrouter()
	triggers.Use(RateLimitMiddleware(limiter))
	if requestTimeout > 0 {
		triggers.Use(TimeoutMiddleware(requestTimeout))
	}
	triggers.HandleFunc("/search", h.PostSearch).Methods(http.MethodPost)
	triggers.HandleFunc("/location", h.PostLocation).Methods(http.MethodPost)
	return router
}
