package providers

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	demoSampleCount = 40
	demoSampleStep  = 3 * time.Hour
	demoCityID      = 2643743
)

var demoConditions = []string{"Clear", "Clouds", "Rain"}

// DemoSource synthesizes plausible weather. It never fails and is safe for
// concurrent use. Seed it for deterministic output.
type DemoSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewDemoSource returns a source seeded with seed. A nil now uses time.Now.
func NewDemoSource(seed int64, now func() time.Time) *DemoSource {
	if now == nil {
		now = time.Now
	}
	return &DemoSource{
		rnd: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

func (d *DemoSource) Name() string {
	return "demo"
}

func (d *DemoSource) FetchCurrent(_ context.Context, lat, lon float64) (weather.CurrentWeatherSnapshot, error) {
	return d.Current(lat, lon), nil
}

func (d *DemoSource) FetchForecast(_ context.Context, lat, lon float64) (weather.Forecast, error) {
	return d.Forecast(lat, lon), nil
}

// Current synthesizes a snapshot for the coordinates.
func (d *DemoSource) Current(lat, lon float64) weather.CurrentWeatherSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	epoch := now.Unix()

	return weather.CurrentWeatherSnapshot{
		Coord: weather.Coord{Lat: lat, Lon: lon},
		Conditions: []weather.Condition{{
			ID:          800,
			Main:        "Clear",
			Description: "clear sky",
			Icon:        "01d",
		}},
		Main: weather.MainMetrics{
			Temp:      d.between(15, 30),
			FeelsLike: d.between(15, 30),
			TempMin:   d.between(10, 20),
			TempMax:   d.between(20, 30),
			Pressure:  d.between(1000, 1050),
			Humidity:  d.between(40, 80),
		},
		Wind: weather.Wind{
			Speed: d.between(2, 12),
			Deg:   d.between(0, 360),
		},
		Clouds: weather.Clouds{All: d.between(0, 50)},
		Dt:     epoch,
		Sys: weather.SystemInfo{
			Country: "GB",
			Sunrise: epoch - 2*3600,
			Sunset:  epoch + 8*3600,
		},
		ID:   demoCityID,
		Name: KnownPlaceName(lat, lon),
	}
}

// Forecast synthesizes 40 samples, 3 hours apart, starting now.
func (d *DemoSource) Forecast(lat, lon float64) weather.Forecast {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().UTC()
	samples := make([]weather.ForecastSample, 0, demoSampleCount)

	for i := 0; i < demoSampleCount; i++ {
		at := now.Add(time.Duration(i) * demoSampleStep)

		s := weather.ForecastSample{
			Dt: at.Unix(),
			Main: weather.MainMetrics{
				Temp:      d.between(10, 25),
				FeelsLike: d.between(10, 25),
				TempMin:   d.between(5, 15),
				TempMax:   d.between(15, 25),
				Pressure:  d.between(1000, 1050),
				Humidity:  d.between(40, 80),
			},
			Conditions: []weather.Condition{{
				ID:          800,
				Main:        demoConditions[d.rnd.Intn(len(demoConditions))],
				Description: "demo weather",
				Icon:        "01d",
			}},
			Clouds:     weather.Clouds{All: d.between(0, 100)},
			Wind:       weather.Wind{Speed: d.between(2, 12), Deg: d.between(0, 360)},
			Visibility: 10000,
			Pop:        d.rnd.Float64() * 0.5,
			DtTxt:      at.Format(weather.SampleTimeLayout),
		}
		if h := at.Hour(); h > 6 && h < 18 {
			s.Sys.Pod = "d"
		} else {
			s.Sys.Pod = "n"
		}

		samples = append(samples, s)
	}

	epoch := now.Unix()
	return weather.Forecast{
		City: weather.City{
			ID:         demoCityID,
			Name:       KnownPlaceName(lat, lon),
			Coord:      weather.Coord{Lat: lat, Lon: lon},
			Country:    "GB",
			Population: 1000000,
			Sunrise:    epoch - 2*3600,
			Sunset:     epoch + 8*3600,
		},
		Samples: samples,
	}
}

// between returns a whole number in [lo, hi]. Callers hold d.mu.
func (d *DemoSource) between(lo, hi float64) float64 {
	return math.Round(d.rnd.Float64()*(hi-lo) + lo)
}

// KnownPlaceName names a handful of well-known coordinate boxes; providers
// that return no place name use it too.
func KnownPlaceName(lat, lon float64) string {
	switch {
	case lat > 51 && lat < 52 && lon > -1 && lon < 0:
		return "London"
	case lat > 40 && lat < 41 && lon > -74 && lon < -73:
		return "New York"
	case lat > 48 && lat < 49 && lon > 2 && lon < 3:
		return "Paris"
	default:
		return "Unknown Location"
	}
}
