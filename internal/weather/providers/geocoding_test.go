package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func newGeocodeServer(t *testing.T, status int, body string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherGeocoder_Resolve(t *testing.T) {
	query := weather.LocationQuery{City: "Toronto", State: "ON", Country: "Canada"}

	tests := []struct {
		name     string
		status   int
		body     string
		wantLat  float64
		wantLon  float64
		wantKind weather.Kind
		wantErr  error
	}{
		{
			name:    "first candidate is returned unmodified",
			status:  http.StatusOK,
			body:    `[{"name":"Toronto","lat":43.6534817,"lon":-79.3839347},{"name":"Toronto","lat":40.46,"lon":-80.6}]`,
			wantLat: 43.6534817,
			wantLon: -79.3839347,
		},
		{
			name:    "out of range values are not clamped",
			status:  http.StatusOK,
			body:    `[{"lat":123.4,"lon":-500}]`,
			wantLat: 123.4,
			wantLon: -500,
		},
		{
			name:    "integer coordinates",
			status:  http.StatusOK,
			body:    `[{"lat":43,"lon":-79}]`,
			wantLat: 43,
			wantLon: -79,
		},
		{
			name:     "empty candidate list",
			status:   http.StatusOK,
			body:     `[]`,
			wantKind: weather.KindLocationNotFound,
			wantErr:  weather.ErrLocationNotFound,
		},
		{
			name:     "missing lat",
			status:   http.StatusOK,
			body:     `[{"name":"Toronto","lon":-79.4}]`,
			wantKind: weather.KindCoordinatesUnavailable,
			wantErr:  weather.ErrCoordinatesUnavailable,
		},
		{
			name:     "null lon",
			status:   http.StatusOK,
			body:     `[{"lat":43.7,"lon":null}]`,
			wantKind: weather.KindCoordinatesUnavailable,
			wantErr:  weather.ErrCoordinatesUnavailable,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"cod":500}`,
			wantKind: weather.KindTransport,
			wantErr:  weather.ErrTransport,
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"cod":401,"message":"Invalid API key"}`,
			wantKind: weather.KindTransport,
			wantErr:  weather.ErrTransport,
		},
		{
			name:     "object instead of array",
			status:   http.StatusOK,
			body:     `{"lat":1,"lon":2}`,
			wantKind: weather.KindInvalidLocationData,
			wantErr:  weather.ErrInvalidLocationData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeocodeServer(t, tt.status, tt.body, nil)
			g := NewOpenWeatherGeocoder(NewRESTClient(0), "test-key", srv.URL)

			coords, err := g.Resolve(context.Background(), query)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error, got coords %v", coords)
				}
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got := weather.KindOf(err); got != tt.wantKind {
					t.Fatalf("expected kind %q, got %q", tt.wantKind, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !coords.Valid() {
				t.Fatalf("expected valid coordinates, got %v", coords)
			}
			if *coords.Lat != tt.wantLat || *coords.Lon != tt.wantLon {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tt.wantLat, tt.wantLon, *coords.Lat, *coords.Lon)
			}
		})
	}
}

func TestOpenWeatherGeocoder_RequestParameters(t *testing.T) {
	var raw string
	srv := newGeocodeServer(t, http.StatusOK, `[{"lat":1,"lon":2}]`, &raw)
	g := NewOpenWeatherGeocoder(NewRESTClient(0), "secret", srv.URL)

	q := weather.LocationQuery{City: "San Jose", State: "CA", Country: "US"}
	if _, err := g.Resolve(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad query %q: %v", raw, err)
	}
	if got := values.Get("q"); got != "San Jose,CA,US" {
		t.Fatalf("expected q=%q, got %q", "San Jose,CA,US", got)
	}
	if got := values.Get("appid"); got != "secret" {
		t.Fatalf("expected appid=secret, got %q", got)
	}
}

func TestOpenWeatherGeocoder_NotFoundMentionsInput(t *testing.T) {
	srv := newGeocodeServer(t, http.StatusOK, `[]`, nil)
	g := NewOpenWeatherGeocoder(NewRESTClient(0), "k", srv.URL)

	_, err := g.Resolve(context.Background(), weather.LocationQuery{City: "Atlantis", State: "ZZ", Country: "Nowhere"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"Location not found", "Atlantis", "ZZ", "Nowhere"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestOpenWeatherGeocoder_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &fakeUpstreamRecorder{}
	g := NewOpenWeatherGeocoder(NewRESTClient(0), "k", srv.URL,
		WithBreaker(BreakerConfig{MaxFailures: 2, OpenTimeout: time.Hour}),
		WithRecorder(rec),
	)

	q := weather.LocationQuery{City: "a", State: "bb", Country: "c"}
	for i := 0; i < 3; i++ {
		_, err := g.Resolve(context.Background(), q)
		if !errors.Is(err, weather.ErrTransport) {
			t.Fatalf("attempt %d: expected transport error, got %v", i, err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected 2 upstream calls before the circuit opened, got %d", n)
	}
	if got := rec.statuses["geocoding"]; len(got) != 3 || got[2] != "circuit_open" {
		t.Fatalf("unexpected recorded statuses: %v", got)
	}
}

type fakeUpstreamRecorder struct {
	statuses map[string][]string
}

func (f *fakeUpstreamRecorder) ObserveUpstream(upstream, status string) {
	if f.statuses == nil {
		f.statuses = make(map[string][]string)
	}
	f.statuses[upstream] = append(f.statuses[upstream], status)
}

func TestOpenWeatherGeocoder_NoBreakerByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewOpenWeatherGeocoder(NewRESTClient(0), "k", srv.URL)
	q := weather.LocationQuery{City: "a", State: "bb", Country: "c"}
	for i := 0; i < 10; i++ {
		if _, err := g.Resolve(context.Background(), q); !errors.Is(err, weather.ErrTransport) {
			t.Fatalf("attempt %d: expected transport error, got %v", i, err)
		}
	}
	if n := calls.Load(); n != 10 {
		t.Fatalf("expected every request to reach the upstream, got %d of 10", n)
	}
}
