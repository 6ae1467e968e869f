package providers

import (
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultWeatherURL is OpenWeatherMap's current conditions endpoint.
const DefaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements weather.Fetcher for OpenWeatherMap.
type OpenWeatherProvider struct {
	apiKey string
	http   upstream
}

func NewOpenWeatherProvider(client *resty.Client, apiKey, baseURL string, opts ...Option) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}
	return &OpenWeatherProvider{
		apiKey: apiKey,
		http:   newUpstream("weather", baseURL, client, buildOptions(opts)),
	}
}

type conditionPayload struct {
	Main        *string `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// Both sections are pointers so that a missing or null section can be told
// apart from an empty one.
type currentPayload struct {
	Weather *[]conditionPayload `json:"weather"`
	Main    *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
}

// Fetch returns current conditions in metric units. Absent coordinates are
// rejected before any request is made.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, coords weather.Coordinates) (weather.WeatherSnapshot, error) {
	if !coords.Valid() {
		return weather.WeatherSnapshot{}, weather.NewLookupError(weather.KindInvalidCoordinates, nil, nil)
	}

	body, err := p.http.get(ctx, map[string]string{
		"lat":   formatFloat(*coords.Lat),
		"lon":   formatFloat(*coords.Lon),
		"appid": p.apiKey,
		"units": "metric",
	})
	if err != nil {
		return weather.WeatherSnapshot{}, weather.NewLookupError(weather.KindTransport, nil, err)
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.WeatherSnapshot{}, weather.NewLookupError(weather.KindInvalidWeatherData, nil, err)
	}
	if payload.Weather == nil || payload.Main == nil {
		return weather.WeatherSnapshot{}, weather.NewLookupError(weather.KindInvalidWeatherData, nil, nil)
	}

	var cond conditionPayload
	if len(*payload.Weather) > 0 {
		cond = (*payload.Weather)[0]
	}

	snap := weather.WeatherSnapshot{
		Condition:   textOrNA(cond.Main),
		Description: textOrNA(cond.Description),
		IconCode:    textOrNA(cond.Icon),
	}
	if payload.Main.Temp != nil {
		snap.Temperature = *payload.Main.Temp
	}
	return snap, nil
}

func textOrNA(s *string) string {
	if s == nil {
		return weather.NotAvailable
	}
	return *s
}
