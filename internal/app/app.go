package app

import (
	"log/slog"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/metrics"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// NewService builds the lookup pipeline from configuration. Both providers
// share one REST client and report to the Prometheus recorder.
func NewService(cfg *config.AppConfig, logger *slog.Logger) *weather.Service {
	client := providers.NewRESTClient(cfg.HTTPTimeout)
	rec := metrics.Recorder{}

	opts := []providers.Option{
		providers.WithBreaker(cfg.Breaker),
		providers.WithRecorder(rec),
	}

	resolver := providers.NewOpenWeatherGeocoder(client, cfg.OpenWeatherAPIKey, cfg.GeocodingURL, opts...)
	fetcher := providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey, cfg.WeatherURL, opts...)

	return weather.NewService(resolver, fetcher, rec, logger)
}
