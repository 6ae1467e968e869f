package providers

import (
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultGeocodingURL is OpenWeatherMap's direct geocoding endpoint.
const DefaultGeocodingURL = "http://api.openweathermap.org/geo/1.0/direct"

// OpenWeatherGeocoder implements weather.LocationResolver with the
// OpenWeatherMap geocoding API.
type OpenWeatherGeocoder struct {
	apiKey string
	http   upstream
}

func NewOpenWeatherGeocoder(client *resty.Client, apiKey, baseURL string, opts ...Option) *OpenWeatherGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenWeatherGeocoder{
		apiKey: apiKey,
		http:   newUpstream("geocoding", baseURL, client, buildOptions(opts)),
	}
}

type geocodeCandidate struct {
	Name    string   `json:"name"`
	Country string   `json:"country"`
	State   string   `json:"state"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Resolve returns the first candidate's coordinates exactly as reported.
// Further candidates are ignored.
func (g *OpenWeatherGeocoder) Resolve(ctx context.Context, q weather.LocationQuery) (weather.Coordinates, error) {
	body, err := g.http.get(ctx, map[string]string{
		"q":     q.Q(),
		"appid": g.apiKey,
	})
	if err != nil {
		return weather.Coordinates{}, weather.NewLookupError(weather.KindTransport, &q, err)
	}

	var candidates []geocodeCandidate
	if err := json.Unmarshal(body, &candidates); err != nil {
		return weather.Coordinates{}, weather.NewLookupError(weather.KindInvalidLocationData, &q, err)
	}
	if len(candidates) == 0 {
		return weather.Coordinates{}, weather.NewLookupError(weather.KindLocationNotFound, &q, nil)
	}

	first := candidates[0]
	if first.Lat == nil || first.Lon == nil {
		return weather.Coordinates{}, weather.NewLookupError(weather.KindCoordinatesUnavailable, &q, nil)
	}
	return weather.Coordinates{Lat: first.Lat, Lon: first.Lon}, nil
}
