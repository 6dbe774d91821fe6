package weather

import (
	"context"
	"unicode/utf8"
)

// Provider abstracts a weather data source (OpenWeatherMap, the synthetic
// demo source).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, lat, lon float64) (CurrentWeatherSnapshot, error)
	FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error)
}

// Geocoder resolves free text into candidate places.
type Geocoder interface {
	Search(ctx context.Context, query string, limit int) ([]GeocodeCandidate, error)
}

// Gateway is what views consume. Every method is total: failures degrade to
// synthetic data or empty results instead of surfacing errors.
type Gateway interface {
	CurrentWeather(ctx context.Context, lat, lon float64) CurrentWeatherSnapshot
	Forecast(ctx context.Context, lat, lon float64) Forecast
	Geocode(ctx context.Context, query string) []GeocodeCandidate
}

const (
	// MinQueryLength is the shortest query worth geocoding.
	MinQueryLength = 3

	// SearchLimit caps geocoder results.
	SearchLimit = 5
)

// QueryTooShort reports whether q is below MinQueryLength characters.
func QueryTooShort(q string) bool {
	return utf8.RuneCountInString(q) < MinQueryLength
}
