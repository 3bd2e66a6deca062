package weather

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/agro-weather/internal/advisory"
	"github.com/i474232898/agro-weather/internal/forecast"
)

var (
	// ErrLocationRequired is returned when neither a city nor coordinates are given.
	ErrLocationRequired = errors.New("location requires a city or latitude and longitude")
	// ErrNoProviders is returned when no provider is configured or none succeeded.
	ErrNoProviders = errors.New("no weather provider could serve the request")
)

// Location identifies a place by name or by coordinate pair.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// HasCoords reports whether both coordinates are set.
func (l Location) HasCoords() bool {
	return l.Lat != nil && l.Lon != nil
}

// Validate checks that the location can be sent to a provider.
func (l Location) Validate() error {
	if l.HasCoords() || strings.TrimSpace(l.City) != "" {
		return nil
	}
	return ErrLocationRequired
}

// Key returns a canonical string key for indexing this location in caches.
// Coordinates are rounded to two decimals (about 1 km).
func (l Location) Key() string {
	if l.HasCoords() {
		return fmt.Sprintf("geo:%.2f,%.2f", *l.Lat, *l.Lon)
	}
	return strings.ToLower(strings.TrimSpace(l.City)) + ":" + strings.ToLower(strings.TrimSpace(l.Country))
}

// Query renders the location in the provider "q" syntax.
func (l Location) Query() string {
	if l.HasCoords() {
		return fmt.Sprintf("%f,%f", *l.Lat, *l.Lon)
	}
	if l.Country != "" {
		return l.City + "," + l.Country
	}
	return l.City
}

// ProviderForecast is one provider's answer for a location.
type ProviderForecast struct {
	Provider  string                     `json:"provider"`
	FetchedAt time.Time                  `json:"fetchedAt"`
	Current   forecast.CurrentConditions `json:"current"`
	Samples   []forecast.Sample          `json:"samples"`
}

// DigestDay is a digest entry with display fields.
type DigestDay struct {
	forecast.DigestEntry
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Outlook is the full response for a location: current conditions, both
// rain windows, the daily digest and the advisory.
type Outlook struct {
	Location        Location                   `json:"location"`
	Provider        string                     `json:"provider"`
	FetchedAt       time.Time                  `json:"fetchedAt"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
	Current         forecast.CurrentConditions `json:"current"`
	Next24h         forecast.RainWindow        `json:"next24h"`
	Tomorrow        forecast.RainWindow        `json:"tomorrow"`
	Digest          []DigestDay                `json:"digest"`
	Advisory        advisory.Result            `json:"advisory"`
	CropSuitability string                     `json:"cropSuitability"`
}
