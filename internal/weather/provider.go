package weather

import "context"

// LocationResolver turns a user-entered place into coordinates.
type LocationResolver interface {
	Resolve(ctx context.Context, q LocationQuery) (Coordinates, error)
}

// Fetcher returns current conditions for a pair of coordinates.
type Fetcher interface {
	Fetch(ctx context.Context, coords Coordinates) (WeatherSnapshot, error)
}

// Recorder observes lookup outcomes. A nil Recorder is allowed.
type Recorder interface {
	ObserveLookup(outcome string)
}
