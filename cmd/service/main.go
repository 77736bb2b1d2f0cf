package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-lookup/internal/circuitbreaker"
	"github.com/kjstillabower/weather-lookup/internal/client"
	"github.com/kjstillabower/weather-lookup/internal/config"
	"github.com/kjstillabower/weather-lookup/internal/dispatch"
	httphandler "github.com/kjstillabower/weather-lookup/internal/http"
	"github.com/kjstillabower/weather-lookup/internal/lifecycle"
	"github.com/kjstillabower/weather-lookup/internal/location"
	"github.com/kjstillabower/weather-lookup/internal/lookup"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/presenter"
	"github.com/kjstillabower/weather-lookup/internal/request"
)

func main() {
	bootLogger, err := observability.NewLogger("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal("config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		bootLogger.Fatal("logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	builder, err := request.NewBuilder(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	if err != nil {
		logger.Fatal("request builder", zap.Error(err))
	}
	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	if cfg.CircuitBreakerEnabled {
		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.CircuitFailureThreshold,
			SuccessThreshold: cfg.CircuitSuccessThreshold,
			Timeout:          cfg.CircuitTimeout,
			Component:        "weather_api",
			Ignore:           client.IsClientError,
			OnStateChange: func(from, to circuitbreaker.State) {
				observability.RecordCircuitBreakerTransition("weather_api", from.String(), to.String(), int(to))
				logger.Warn("circuit breaker state change", zap.Stringer("from", from), zap.Stringer("to", to))
			},
		})
		weatherClient.SetCircuitBreaker(cb)
		observability.CircuitBreakerState.WithLabelValues("weather_api").Set(0)
		logger.Info("circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitFailureThreshold),
			zap.Duration("timeout", cfg.CircuitTimeout))
	}

	exec := lookup.NewExecutor(builder, weatherClient, lookup.ExecutorConfig{
		Timeout:          cfg.WeatherAPITimeout,
		CancelSuperseded: cfg.CancelSuperseded,
	}, logger)
	queue := dispatch.NewQueue(cfg.DeliveryQueueSize)
	observability.RegisterDeliveryQueueGauge(queue.Len)
	coord := lookup.NewCoordinator(exec, dispatch.New(exec, queue, logger), logger)
	view := presenter.New(logger)
	coord.SetObserver(view)

	if len(cfg.TrackedCities) > 0 {
		observability.SetTrackedCities(cfg.TrackedCities)
	}

	feed := location.NewFeed(16)
	pumpCtx, stopPump := context.WithCancel(context.Background())
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		location.Pump(pumpCtx, feed, coord, logger)
	}()
	if fix, ok := initialFix(cfg); ok {
		if err := feed.Publish(context.Background(), fix); err != nil {
			logger.Warn("initial location not published", zap.Error(err))
		} else {
			logger.Info("initial location requested", zap.Float64("lat", fix.Latitude), zap.Float64("lon", fix.Longitude))
		}
	}

	healthConfig := &httphandler.HealthConfig{
		ErrorWindow: cfg.HealthErrorWindow,
		ErrorPct:    cfg.HealthErrorPct,
		StartTime:   time.Now(),
	}
	handler := httphandler.NewHandler(coord, feed, view, weatherClient, healthConfig, logger, cfg.CityMinLen, cfg.CityMaxLen)
	router := httphandler.NewRouter(handler, newLimiter(cfg), 5*time.Second, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort), zap.String("env", cfg.EnvName))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.BeginShutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	feed.Close()
	<-pumpDone
	stopPump()

	logger.Info("waiting for in-flight lookups", zap.Int64("count", exec.InFlight()))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.InFlightTimeout)
	defer waitCancel()
	if err := coord.Close(waitCtx); err != nil {
		logger.Warn("in-flight lookups not completed", zap.Error(err), zap.Int64("remaining", exec.InFlight()))
	}
	queue.Close()

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// initialFix returns the configured startup location, if any.
func initialFix(cfg *config.Config) (models.Coordinate, bool) {
	if cfg.InitialLocation == nil {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Latitude: cfg.InitialLocation.Lat, Longitude: cfg.InitialLocation.Lon}, true
}

// newLimiter returns the trigger rate limiter, or nil when disabled.
func newLimiter(cfg *config.Config) *rate.Limiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
}
