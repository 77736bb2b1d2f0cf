//go:build integration
// +build integration

package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/kjstillabower/weather-lookup/internal/circuitbreaker"
	"github.com/kjstillabower/weather-lookup/internal/client"
	"github.com/kjstillabower/weather-lookup/internal/dispatch"
	"github.com/kjstillabower/weather-lookup/internal/lookup"
	"github.com/kjstillabower/weather-lookup/internal/presenter"
	"github.com/kjstillabower/weather-lookup/internal/request"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if WEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}
	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = request.DefaultBaseURL
	}
	return IntegrationTestConfig{APIKey: apiKey, APIURL: apiURL, Timeout: 10 * time.Second}
}

// Stack is a live lookup pipeline wired against the real upstream.
type Stack struct {
	Coordinator *lookup.Coordinator
	Presenter   *presenter.Presenter
	Queue       *dispatch.Queue
}

// Settle waits for in-flight lookups and pending deliveries, then tears the
// stack down. Call once, after triggering.
func (s *Stack) Settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Coordinator.Close(ctx); err != nil {
		t.Errorf("Coordinator.Close() error = %v", err)
	}
	s.Queue.Close()
}

// SetupIntegrationStack builds client, breaker, executor, dispatcher and
// presenter the same way the service does.
func SetupIntegrationStack(t *testing.T, cfg IntegrationTestConfig) *Stack {
	t.Helper()
	logger := zaptest.NewLogger(t)

	builder, err := request.NewBuilder(cfg.APIURL, cfg.APIKey)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	weatherClient, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.Timeout)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	weatherClient.SetCircuitBreaker(circuitbreaker.New(circuitbreaker.Config{
		Component: "weather_api_integration",
		Ignore:    client.IsClientError,
	}))

	exec := lookup.NewExecutor(builder, weatherClient, lookup.ExecutorConfig{
		Timeout:          cfg.Timeout,
		CancelSuperseded: true,
	}, logger)
	queue := dispatch.NewQueue(8)
	coord := lookup.NewCoordinator(exec, dispatch.New(exec, queue, logger), logger)
	view := presenter.New(logger)
	coord.SetObserver(view)
	return &Stack{Coordinator: coord, Presenter: view, Queue: queue}
}
