package weather

import (
	"fmt"
	"strconv"
)

// NotAvailable is the placeholder for any text field the upstream omits.
const NotAvailable = "N/A"

// LocationQuery identifies a place by the three fields a user types in.
// State is expected to be a two-letter code, but validation belongs to the caller.
type LocationQuery struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Q returns the geocoding search string: city, state and country comma-joined.
func (q LocationQuery) Q() string {
	return q.City + "," + q.State + "," + q.Country
}

func (q LocationQuery) String() string {
	return q.City + ", " + q.State + ", " + q.Country
}

// Coordinates is a latitude/longitude pair. A nil field means the value is absent.
type Coordinates struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// NewCoordinates returns a fully populated pair.
func NewCoordinates(lat, lon float64) Coordinates {
	return Coordinates{Lat: &lat, Lon: &lon}
}

// Valid reports whether both coordinates are present.
func (c Coordinates) Valid() bool {
	return c.Lat != nil && c.Lon != nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("lat=%s lon=%s", formatCoord(c.Lat), formatCoord(c.Lon))
}

func formatCoord(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WeatherSnapshot is a single point-in-time reading. It is always fully populated:
// missing text fields hold NotAvailable and a missing temperature is zero.
type WeatherSnapshot struct {
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	IconCode    string  `json:"iconCode"`
	Temperature float64 `json:"temperatureC"`
}

// IconURL returns the pictogram URL for the snapshot's icon code.
func (s WeatherSnapshot) IconURL() string {
	if s.IconCode == "" || s.IconCode == NotAvailable {
		return ""
	}
	return "https://openweathermap.org/img/wn/" + s.IconCode + "@2x.png"
}
