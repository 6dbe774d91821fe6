package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

var (
	errNoForecastSamples = errors.New("forecast response has no samples")
	errEmptyObservation  = errors.New("current weather response has no observation")
)

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, baseURL, apiKey string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, lat, lon float64) (weather.CurrentWeatherSnapshot, error) {
	var payload weather.CurrentWeatherSnapshot
	if err := p.get(ctx, "weather", coordValues(lat, lon), &payload); err != nil {
		return weather.CurrentWeatherSnapshot{}, err
	}
	// A 2xx body of null, {} or an error object decodes cleanly.
	if len(payload.Conditions) == 0 || payload.Dt == 0 {
		return weather.CurrentWeatherSnapshot{}, errEmptyObservation
	}
	return payload, nil
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	var payload weather.Forecast
	if err := p.get(ctx, "forecast", coordValues(lat, lon), &payload); err != nil {
		return weather.Forecast{}, err
	}
	if len(payload.Samples) == 0 {
		return weather.Forecast{}, errNoForecastSamples
	}
	return payload, nil
}

// Proxy fetches current weather by place name and returns the upstream body
// untouched.
func (p *OpenWeatherProvider) Proxy(ctx context.Context, location string) ([]byte, error) {
	if err := p.checkKey(); err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("q", location)

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, p.requestBuilder("weather", values))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, values url.Values, out interface{}) error {
	if err := p.checkKey(); err != nil {
		return err
	}
	return getJSON(ctx, p.httpCfg, p.circuit, p.requestBuilder(endpoint, values), out)
}

func (p *OpenWeatherProvider) checkKey() error {
	if p.apiKey == "" {
		return fmt.Errorf("openweather api key is not configured")
	}
	return nil
}

func (p *OpenWeatherProvider) requestBuilder(endpoint string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)
		q.Set("units", "metric")

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}
}

func coordValues(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return values
}
