package weather

import (
	"errors"
	"fmt"
)

// Kind classifies why a lookup produced no result.
type Kind string

const (
	KindTransport              Kind = "transport"
	KindLocationNotFound       Kind = "location_not_found"
	KindCoordinatesUnavailable Kind = "coordinates_unavailable"
	KindInvalidLocationData    Kind = "invalid_location_data"
	KindInvalidWeatherData     Kind = "invalid_weather_data"
	KindInvalidCoordinates     Kind = "invalid_coordinates"
)

var (
	ErrTransport              = errors.New("upstream request failed")
	ErrLocationNotFound       = errors.New("location not found")
	ErrCoordinatesUnavailable = errors.New("latitude and longitude not available")
	ErrInvalidLocationData    = errors.New("invalid location data received")
	ErrInvalidWeatherData     = errors.New("invalid weather data received")
	ErrInvalidCoordinates     = errors.New("invalid latitude and longitude")
)

var kindErrors = map[Kind]error{
	KindTransport:              ErrTransport,
	KindLocationNotFound:       ErrLocationNotFound,
	KindCoordinatesUnavailable: ErrCoordinatesUnavailable,
	KindInvalidLocationData:    ErrInvalidLocationData,
	KindInvalidWeatherData:     ErrInvalidWeatherData,
	KindInvalidCoordinates:     ErrInvalidCoordinates,
}

// LookupError is returned by the resolver and the fetcher. Query is set when
// the failing step knew the user's input.
type LookupError struct {
	Kind  Kind
	Query *LocationQuery
	Err   error
}

// NewLookupError builds a LookupError; cause may be nil.
func NewLookupError(kind Kind, query *LocationQuery, cause error) *LookupError {
	return &LookupError{Kind: kind, Query: query, Err: cause}
}

func (e *LookupError) sentinel() error {
	if err, ok := kindErrors[e.Kind]; ok {
		return err
	}
	return ErrTransport
}

func (e *LookupError) Error() string {
	msg := e.sentinel().Error()
	if e.Kind == KindLocationNotFound || e.Kind == KindCoordinatesUnavailable {
		msg = capitalize(msg)
		if e.Query != nil {
			msg = fmt.Sprintf("%s for %s", msg, e.Query)
		}
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *LookupError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the failure kind carried by err, or "" if err is not a LookupError.
func KindOf(err error) Kind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
