package weather

import (
	"context"
	"errors"
	"log/slog"
)

// Messages shown to end users when a lookup yields nothing.
const (
	MsgInvalidLocation = "Invalid location information provided."
	MsgNoWeatherData   = "Could not retrieve weather data."
)

// OutcomeSuccess is the outcome label recorded for a completed lookup.
const OutcomeSuccess = "success"

// Service runs the geocode-then-weather pipeline for one location.
type Service struct {
	resolver LocationResolver
	fetcher  Fetcher
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a new Service. logger may be nil, in which case slog.Default is used.
func NewService(resolver LocationResolver, fetcher Fetcher, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logger,
	}
}

// FailedLookup is returned by Lookup when no snapshot could be produced.
// Message is safe to show to the user; Cause holds the diagnostic LookupError.
type FailedLookup struct {
	Message string
	Cause   error
}

func (f *FailedLookup) Error() string { return f.Message }

func (f *FailedLookup) Unwrap() error { return f.Cause }

// Lookup resolves q and fetches its current weather. The fetch only runs if
// resolution succeeded. Any error is a *FailedLookup.
func (s *Service) Lookup(ctx context.Context, q LocationQuery) (WeatherSnapshot, error) {
	log := s.logger.With("city", q.City, "state", q.State, "country", q.Country)

	coords, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.fail(log, "location lookup failed", err)
		return WeatherSnapshot{}, &FailedLookup{Message: MsgInvalidLocation, Cause: err}
	}
	if !coords.Valid() {
		err = NewLookupError(KindCoordinatesUnavailable, &q, nil)
		s.fail(log, "location lookup failed", err)
		return WeatherSnapshot{}, &FailedLookup{Message: MsgInvalidLocation, Cause: err}
	}

	snap, err := s.fetcher.Fetch(ctx, coords)
	if err != nil {
		s.fail(log.With("coords", coords.String()), "weather lookup failed", err)
		return WeatherSnapshot{}, &FailedLookup{Message: MsgNoWeatherData, Cause: err}
	}

	log.Debug("weather lookup succeeded", "coords", coords.String(), "condition", snap.Condition, "temp", snap.Temperature)
	s.observe(OutcomeSuccess)
	return snap, nil
}

func (s *Service) fail(log *slog.Logger, msg string, err error) {
	kind := KindOf(err)
	if kind == "" {
		kind = KindTransport
	}
	log.Warn(msg, "kind", string(kind), "error", err)
	s.observe(string(kind))
}

func (s *Service) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveLookup(outcome)
	}
}

// Diagnostic returns the detailed reason behind a failed lookup, falling back to err's text.
func Diagnostic(err error) string {
	var fl *FailedLookup
	if errors.As(err, &fl) && fl.Cause != nil {
		return fl.Cause.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
