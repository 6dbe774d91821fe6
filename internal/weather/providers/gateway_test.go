package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) FetchCurrent(ctx context.Context, lat, lon float64) (weather.CurrentWeatherSnapshot, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(weather.CurrentWeatherSnapshot), args.Error(1)
}

func (m *mockProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(weather.Forecast), args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Search(ctx context.Context, query string, limit int) ([]weather.GeocodeCandidate, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]weather.GeocodeCandidate), args.Error(1)
}

var fixedNow = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestGateway_DemoModeNeverCallsUpstream(t *testing.T) {
	up := new(mockProvider)
	g := NewGateway(up, nil, NewDemoSource(7, fixedNow), true, logger.Nop())

	snap := g.CurrentWeather(context.Background(), 51.5, -0.12)
	fc := g.Forecast(context.Background(), 51.5, -0.12)

	assert.True(t, g.DemoMode())
	assert.Equal(t, "London", snap.Name)
	assert.Len(t, fc.Samples, 40)
	up.AssertNotCalled(t, "FetchCurrent", mock.Anything, mock.Anything, mock.Anything)
	up.AssertNotCalled(t, "FetchForecast", mock.Anything, mock.Anything, mock.Anything)
}

func TestGateway_UsesUpstreamWhenHealthy(t *testing.T) {
	up := new(mockProvider)
	up.On("FetchCurrent", mock.Anything, 1.0, 2.0).Return(weather.CurrentWeatherSnapshot{Name: "Real"}, nil)

	g := NewGateway(up, nil, NewDemoSource(1, fixedNow), false, logger.Nop())

	assert.Equal(t, "Real", g.CurrentWeather(context.Background(), 1, 2).Name)
	up.AssertExpectations(t)
}

func TestGateway_FallsBackOnFailure(t *testing.T) {
	up := new(mockProvider)
	up.On("FetchCurrent", mock.Anything, 40.7, -73.9).Return(weather.CurrentWeatherSnapshot{}, errors.New("boom"))
	up.On("FetchForecast", mock.Anything, 40.7, -73.9).Return(weather.Forecast{}, errors.New("boom"))

	g := NewGateway(up, nil, NewDemoSource(1, fixedNow), false, logger.Nop())

	snap := g.CurrentWeather(context.Background(), 40.7, -73.9)
	assert.Equal(t, "New York", snap.Name)

	fc := g.Forecast(context.Background(), 40.7, -73.9)
	require.Len(t, fc.Samples, 40)
	assert.Equal(t, "2024-01-01 00:00:00", fc.Samples[0].DtTxt)
	up.AssertExpectations(t)
}

func TestGateway_FallsBackOnEmptyBody(t *testing.T) {
	for _, body := range []string{`null`, `{}`, `{"cod":"404","message":"city not found"}`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer server.Close()

			up := NewOpenWeatherProvider(server.Client(), server.URL, "test-key")
			g := NewGateway(up, nil, NewDemoSource(1, fixedNow), false, logger.Nop())

			snap := g.CurrentWeather(context.Background(), 51.5074, -0.1278)
			assert.Equal(t, "London", snap.Name)
			assert.NotEmpty(t, snap.Conditions)
			assert.Equal(t, fixedNow().Unix(), snap.Dt)

			fc := g.Forecast(context.Background(), 51.5074, -0.1278)
			assert.Len(t, fc.Samples, 40)
		})
	}
}

func TestGateway_NilUpstreamIsDemo(t *testing.T) {
	g := NewGateway(nil, nil, nil, false, logger.Nop())
	assert.True(t, g.DemoMode())

	_, err := g.Proxy(context.Background(), "London")
	assert.ErrorIs(t, err, ErrProxyUnsupported)
}

func TestGateway_Geocode(t *testing.T) {
	t.Run("short query skips the network", func(t *testing.T) {
		geo := new(mockGeocoder)
		g := NewGateway(nil, geo, nil, true, logger.Nop())

		results := g.Geocode(context.Background(), "Lo")
		assert.NotNil(t, results)
		assert.Empty(t, results)
		geo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failure yields empty", func(t *testing.T) {
		geo := new(mockGeocoder)
		geo.On("Search", mock.Anything, "London", 5).Return(nil, errors.New("offline"))
		g := NewGateway(nil, geo, nil, true, logger.Nop())

		results := g.Geocode(context.Background(), "London")
		assert.NotNil(t, results)
		assert.Empty(t, results)
		geo.AssertExpectations(t)
	})

	t.Run("passes results through", func(t *testing.T) {
		geo := new(mockGeocoder)
		geo.On("Search", mock.Anything, "Paris", 5).
			Return([]weather.GeocodeCandidate{{PlaceID: 1, DisplayName: "Paris, France"}}, nil)
		g := NewGateway(nil, geo, nil, true, logger.Nop())

		results := g.Geocode(context.Background(), "Paris")
		require.Len(t, results, 1)
		assert.Equal(t, int64(1), results[0].PlaceID)
	})
}
