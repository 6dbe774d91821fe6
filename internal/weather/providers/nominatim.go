package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent        = "weather-lookup/1.0"
)

// NominatimGeocoder implements weather.Geocoder against OpenStreetMap's
// Nominatim search API.
type NominatimGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewNominatimGeocoder builds a geocoder. ratePerSec throttles our own
// outbound calls (Nominatim asks for at most one per second); zero or less
// disables throttling.
func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string, ratePerSec float64) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &NominatimGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client, UserAgent: userAgent},
		circuit: newBreaker("nominatim"),
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]weather.GeocodeCandidate, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("format", "json")
		values.Set("q", query)
		values.Set("limit", strconv.Itoa(limit))
		values.Set("addressdetails", "1")

		u := fmt.Sprintf("%s/search?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var out []weather.GeocodeCandidate
	if err := getJSON(ctx, g.httpCfg, g.circuit, buildRequest, &out); err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
