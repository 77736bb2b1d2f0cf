package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML, .env and the environment.
type Config struct {
	EnvName  string
	LogLevel string

	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	CancelSuperseded  bool
	DeliveryQueueSize int

	CircuitBreakerEnabled   bool
	CircuitFailureThreshold int
	CircuitSuccessThreshold int
	CircuitTimeout          time.Duration

	RateLimitRPS   int
	RateLimitBurst int

	CityMinLen int
	CityMaxLen int

	// InitialLocation, when set, is published to the location feed at startup.
	InitialLocation *Coordinate

	HealthErrorWindow time.Duration
	HealthErrorPct    int

	ShutdownTimeout time.Duration
	InFlightTimeout time.Duration

	TrackedCities []string
}

// Coordinate is a configured latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// envOverrides are read from the process environment after .env is loaded.
type envOverrides struct {
	EnvName       string `envconfig:"ENV_NAME" default:"dev"`
	WeatherAPIKey string `envconfig:"WEATHER_API_KEY"`
	WeatherAPIURL string `envconfig:"WEATHER_API_URL"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort    string `envconfig:"SERVER_PORT"`
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Lookup struct {
		CancelSuperseded  *bool `yaml:"cancel_superseded"`
		DeliveryQueueSize int   `yaml:"delivery_queue_size"`
	} `yaml:"lookup"`

	CircuitBreaker struct {
		Enabled          *bool  `yaml:"enabled"`
		FailureThreshold int    `yaml:"failure_threshold"`
		SuccessThreshold int    `yaml:"success_threshold"`
		Timeout          string `yaml:"timeout"`
	} `yaml:"circuit_breaker"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Validation struct {
		CityMinLen int `yaml:"city_min_len"`
		CityMaxLen int `yaml:"city_max_len"`
	} `yaml:"validation"`

	Location struct {
		Initial *struct {
			Lat float64 `yaml:"lat"`
			Lon float64 `yaml:"lon"`
		} `yaml:"initial"`
	} `yaml:"location"`

	Health struct {
		ErrorWindow string `yaml:"error_window"`
		ErrorPct    int    `yaml:"error_pct"`
	} `yaml:"health"`

	Shutdown struct {
		Timeout         string `yaml:"timeout"`
		InFlightTimeout string `yaml:"in_flight_timeout"`
	} `yaml:"shutdown"`

	Metrics struct {
		TrackedCities []string `yaml:"tracked_cities"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads .env (if present), then config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. Real environment variables win over .env, and
// WEATHER_API_KEY / WEATHER_API_URL / SERVER_PORT win over the files.
// Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	env.EnvName = firstNonEmpty(env.EnvName, "dev")
	env.LogLevel = firstNonEmpty(env.LogLevel, "info")

	configPath := filepath.Join(cwd, "config", env.EnvName+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{
		EnvName:  env.EnvName,
		LogLevel: env.LogLevel,
	}

	cfg.ServerPort = firstNonEmpty(env.ServerPort, fc.Server.Port, "8080")

	cfg.WeatherAPIKey = env.WeatherAPIKey
	if cfg.WeatherAPIKey == "" {
		key, err := readSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.WeatherAPIKey = key
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, .env or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = firstNonEmpty(env.WeatherAPIURL, fc.WeatherAPI.URL, "https://api.openweathermap.org/data/2.5/weather")
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 5*time.Second)

	cfg.CancelSuperseded = true
	if fc.Lookup.CancelSuperseded != nil {
		cfg.CancelSuperseded = *fc.Lookup.CancelSuperseded
	}
	cfg.DeliveryQueueSize = positiveOr(fc.Lookup.DeliveryQueueSize, 64)

	cfg.CircuitBreakerEnabled = true
	if fc.CircuitBreaker.Enabled != nil {
		cfg.CircuitBreakerEnabled = *fc.CircuitBreaker.Enabled
	}
	cfg.CircuitFailureThreshold = positiveOr(fc.CircuitBreaker.FailureThreshold, 5)
	cfg.CircuitSuccessThreshold = positiveOr(fc.CircuitBreaker.SuccessThreshold, 2)
	cfg.CircuitTimeout = parseDuration(fc.CircuitBreaker.Timeout, 30*time.Second)

	cfg.RateLimitRPS = positiveOr(fc.Reliability.RateLimitRPS, 20)
	cfg.RateLimitBurst = positiveOr(fc.Reliability.RateLimitBurst, 40)

	cfg.CityMinLen = positiveOr(fc.Validation.CityMinLen, 1)
	cfg.CityMaxLen = positiveOr(fc.Validation.CityMaxLen, 100)

	if fc.Location.Initial != nil {
		cfg.InitialLocation = &Coordinate{Lat: fc.Location.Initial.Lat, Lon: fc.Location.Initial.Lon}
	}

	cfg.HealthErrorWindow = parseDuration(fc.Health.ErrorWindow, 60*time.Second)
	cfg.HealthErrorPct = positiveOr(fc.Health.ErrorPct, 50)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 10*time.Second)
	cfg.InFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 5*time.Second)

	cfg.TrackedCities = fc.Metrics.TrackedCities

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return sec.WeatherAPIKey, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is so validate can reject them.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.InFlightTimeout > cfg.ShutdownTimeout {
		cfg.InFlightTimeout = cfg.ShutdownTimeout
	}
	if cfg.HealthErrorPct > 100 {
		return fmt.Errorf("health.error_pct must be between 1 and 100, got %d", cfg.HealthErrorPct)
	}
	if cfg.CityMinLen > cfg.CityMaxLen {
		return fmt.Errorf("validation.city_min_len (%d) exceeds city_max_len (%d)", cfg.CityMinLen, cfg.CityMaxLen)
	}
	if loc := cfg.InitialLocation; loc != nil {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
			return fmt.Errorf("location.initial out of range: lat=%v lon=%v", loc.Lat, loc.Lon)
		}
	}
	return nil
}
