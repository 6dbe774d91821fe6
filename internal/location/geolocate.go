package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrGeolocationUnavailable means this host cannot report a position.
	ErrGeolocationUnavailable = errors.New("geolocation is not supported")

	// ErrGeolocationDenied means a position source exists but refused.
	ErrGeolocationDenied = errors.New("geolocation permission denied")
)

// CurrentLocationName labels positions reported by a Geolocator.
const CurrentLocationName = "Current Location"

// Geolocator reports the device position.
type Geolocator interface {
	Position(ctx context.Context) (lat, lon float64, err error)
}

// StaticGeolocator always reports the same position.
type StaticGeolocator struct {
	Lat, Lon float64
}

func (g StaticGeolocator) Position(ctx context.Context) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	return g.Lat, g.Lon, nil
}

// NoGeolocator is used when no position source is configured.
type NoGeolocator struct{}

func (NoGeolocator) Position(context.Context) (float64, float64, error) {
	return 0, 0, ErrGeolocationUnavailable
}

// DefaultLocation is used when geolocation is not available at startup.
var DefaultLocation = weather.Location{
	Name:    "London",
	Lat:     51.5074,
	Lon:     -0.1278,
	Country: "GB",
}

// Initialize seeds the store: the geolocated position when one is
// available, otherwise fallback.
func Initialize(ctx context.Context, store *Store, geo Geolocator, fallback weather.Location, log logger.Logger) weather.Location {
	if geo != nil {
		lat, lon, err := geo.Position(ctx)
		if err == nil {
			loc := weather.Location{Name: CurrentLocationName, Lat: lat, Lon: lon}
			store.Set(loc)
			log.Infof("initial location from geolocation: %.4f,%.4f", lat, lon)
			return loc
		}
		log.Warnf("geolocation failed, using %s: %v", fallback.Name, err)
	}

	store.Set(fallback)
	return fallback
}

// GeocodeFunc resolves an address to coordinates.
type GeocodeFunc func(address geocoder.Address) (geocoder.Location, error)

// ResolveDefault fills in coordinates for a default city configured by name
// only. With no API key, or on lookup failure, DefaultLocation is returned.
func ResolveDefault(name, country, apiKey string, lookup GeocodeFunc) (weather.Location, error) {
	if apiKey == "" || name == "" {
		return DefaultLocation, nil
	}
	if lookup == nil {
		geocoder.ApiKey = apiKey
		lookup = geocoder.Geocoding
	}

	pos, err := lookup(geocoder.Address{City: name, Country: country})
	if err != nil {
		return DefaultLocation, fmt.Errorf("geocode default location %q: %w", name, err)
	}

	return weather.Location{
		Name:    name,
		Lat:     pos.Latitude,
		Lon:     pos.Longitude,
		Country: country,
	}, nil
}
