package providers

import (
	"context"
	"errors"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrProxyUnsupported is returned by Proxy when the upstream provider cannot
// serve raw lookups by name.
var ErrProxyUnsupported = errors.New("provider does not support proxy lookups")

// Proxier fetches the raw upstream payload for a place name.
type Proxier interface {
	Proxy(ctx context.Context, location string) ([]byte, error)
}

// Gateway implements weather.Gateway. In demo mode every weather call is
// synthesized; otherwise the upstream provider is tried once and any failure
// falls back to the demo source. Geocoding failures yield empty results.
type Gateway struct {
	demo     bool
	upstream weather.Provider
	fallback *DemoSource
	geocoder weather.Geocoder
	log      logger.Logger
}

// NewGateway wires a gateway. upstream and geocoder may be nil.
func NewGateway(upstream weather.Provider, geocoder weather.Geocoder, fallback *DemoSource, demoMode bool, log logger.Logger) *Gateway {
	if fallback == nil {
		fallback = NewDemoSource(1, nil)
	}
	return &Gateway{
		demo:     demoMode || upstream == nil,
		upstream: upstream,
		fallback: fallback,
		geocoder: geocoder,
		log:      log.WithField("component", "gateway"),
	}
}

// DemoMode reports whether weather is always synthesized.
func (g *Gateway) DemoMode() bool {
	return g.demo
}

func (g *Gateway) CurrentWeather(ctx context.Context, lat, lon float64) weather.CurrentWeatherSnapshot {
	if g.demo {
		return g.fallback.Current(lat, lon)
	}

	snap, err := g.upstream.FetchCurrent(ctx, lat, lon)
	if err != nil {
		g.log.Warnf("current weather from %s failed for %.4f,%.4f, using demo data: %v", g.upstream.Name(), lat, lon, err)
		return g.fallback.Current(lat, lon)
	}
	return snap
}

func (g *Gateway) Forecast(ctx context.Context, lat, lon float64) weather.Forecast {
	if g.demo {
		return g.fallback.Forecast(lat, lon)
	}

	fc, err := g.upstream.FetchForecast(ctx, lat, lon)
	if err != nil {
		g.log.Warnf("forecast from %s failed for %.4f,%.4f, using demo data: %v", g.upstream.Name(), lat, lon, err)
		return g.fallback.Forecast(lat, lon)
	}
	return fc
}

func (g *Gateway) Geocode(ctx context.Context, query string) []weather.GeocodeCandidate {
	if weather.QueryTooShort(query) || g.geocoder == nil {
		return []weather.GeocodeCandidate{}
	}

	results, err := g.geocoder.Search(ctx, query, weather.SearchLimit)
	if err != nil {
		g.log.Errorf("error searching locations for %q: %v", query, err)
		return []weather.GeocodeCandidate{}
	}
	if results == nil {
		results = []weather.GeocodeCandidate{}
	}
	return results
}

// Proxy passes a by-name lookup straight to the upstream provider. Unlike
// the other methods it reports failures; the HTTP layer turns them into 500s.
func (g *Gateway) Proxy(ctx context.Context, location string) ([]byte, error) {
	p, ok := g.upstream.(Proxier)
	if !ok {
		return nil, ErrProxyUnsupported
	}
	return p.Proxy(ctx, location)
}
