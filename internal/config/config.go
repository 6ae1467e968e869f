package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// ErrMissingAPIKey is returned when neither OPENWEATHER_API_KEY nor API_KEY is set.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY (or API_KEY) must be set")

type AppConfig struct {
	OpenWeatherAPIKey string

	GeocodingURL string
	WeatherURL   string

	// HTTPTimeout bounds each outbound call; zero keeps the transport default.
	HTTPTimeout time.Duration

	Breaker providers.BreakerConfig

	// Watch is the single location the scheduler looks up, if any.
	Watch         weather.LocationQuery
	WatchInterval time.Duration

	Port      string
	LogLevel  string
	LogFormat string
}

// WatchEnabled reports whether all three watch fields are set.
func (c *AppConfig) WatchEnabled() bool {
	return c.Watch.City != "" && c.Watch.State != "" && c.Watch.Country != ""
}

// Load reads configuration from the environment (and a .env file if present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	v.SetDefault("GEOCODING_URL", providers.DefaultGeocodingURL)
	v.SetDefault("WEATHER_URL", providers.DefaultWeatherURL)
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("BREAKER_MAX_FAILURES", 0)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", "1m")
	v.SetDefault("WATCH_INTERVAL", "15m")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.AutomaticEnv()

	cfg := &AppConfig{
		OpenWeatherAPIKey: v.GetString("OPENWEATHER_API_KEY"),
		GeocodingURL:      v.GetString("GEOCODING_URL"),
		WeatherURL:        v.GetString("WEATHER_URL"),
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		Watch: weather.LocationQuery{
			City:    strings.TrimSpace(v.GetString("WATCH_CITY")),
			State:   strings.TrimSpace(v.GetString("WATCH_STATE")),
			Country: strings.TrimSpace(v.GetString("WATCH_COUNTRY")),
		},
	}
	if cfg.OpenWeatherAPIKey == "" {
		cfg.OpenWeatherAPIKey = v.GetString("API_KEY")
	}
	if cfg.OpenWeatherAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.WatchInterval, err = parseDuration(v, "WATCH_INTERVAL"); err != nil {
		return nil, err
	}

	openTimeout, err := parseDuration(v, "BREAKER_OPEN_TIMEOUT")
	if err != nil {
		return nil, err
	}
	maxFailures := v.GetInt("BREAKER_MAX_FAILURES")
	if maxFailures < 0 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: %d", maxFailures)
	}
	cfg.Breaker = providers.BreakerConfig{
		MaxFailures: uint32(maxFailures),
		OpenTimeout: openTimeout,
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

// NewLogger creates a slog.Logger from the configured level and format.
func (c *AppConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
