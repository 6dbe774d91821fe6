package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMeteoProvider_FetchForecastThinsToThreeHours(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	times := make([]int64, 0, 144)
	temps := make([]float64, 0, 144)
	codes := make([]int, 0, 144)
	for i := 0; i < 144; i++ {
		times = append(times, start.Add(time.Duration(i)*time.Hour).Unix())
		temps = append(temps, float64(i))
		codes = append(codes, 61)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unixtime", r.URL.Query().Get("timeformat"))
		assert.Equal(t, "51.5", r.URL.Query().Get("latitude"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"latitude":  51.5,
			"longitude": -0.12,
			"hourly": map[string]interface{}{
				"time":                      times,
				"temperature_2m":            temps,
				"weather_code":              codes,
				"precipitation_probability": make([]float64, 144),
			},
		})
	}))
	defer server.Close()

	p := NewOpenMeteoProvider(server.Client(), server.URL)
	p.now = func() time.Time { return start.Add(90 * time.Minute) }

	fc, err := p.FetchForecast(context.Background(), 51.5, -0.12)
	require.NoError(t, err)
	require.Len(t, fc.Samples, 40)

	assert.Equal(t, "2024-01-01 03:00:00", fc.Samples[0].DtTxt)
	assert.Equal(t, 3.0, fc.Samples[0].Main.Temp)
	for i := 1; i < len(fc.Samples); i++ {
		assert.Equal(t, int64(3*3600), fc.Samples[i].Dt-fc.Samples[i-1].Dt)
	}
	assert.Equal(t, "Rain", fc.Samples[0].PrimaryCondition().Main)
	assert.Equal(t, "London", fc.City.Name)
}

func TestOpenMeteoProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOpenMeteoProvider(server.Client(), server.URL)

	_, err := p.FetchCurrent(context.Background(), 1, 2)
	assert.ErrorIs(t, err, errServerError)
}

func TestMapOpenMeteoCondition(t *testing.T) {
	tests := []struct {
		code int
		day  bool
		main string
		icon string
	}{
		{0, true, "Clear", "01d"},
		{2, false, "Clouds", "02n"},
		{3, true, "Clouds", "04d"},
		{45, true, "Fog", "50d"},
		{53, true, "Drizzle", "09d"},
		{81, false, "Rain", "10n"},
		{73, true, "Snow", "13d"},
		{95, true, "Thunderstorm", "11d"},
	}

	for _, tt := range tests {
		got := mapOpenMeteoCondition(tt.code, tt.day)
		assert.Equal(t, tt.main, got.Main, "code %d", tt.code)
		assert.Equal(t, tt.icon, got.Icon, "code %d", tt.code)
	}
}

func TestWeatherAPIProvider_FetchCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "1", r.URL.Query().Get("days"))
		w.Write([]byte(`{
			"location":{"name":"Tokyo","country":"Japan","lat":35.68,"lon":139.69,"localtime_epoch":1704067200},
			"current":{"last_updated_epoch":1704067000,"temp_c":8.0,"feelslike_c":6.5,"humidity":55,
				"pressure_mb":1020,"wind_kph":36,"wind_degree":90,"cloud":20,"is_day":1,
				"condition":{"text":"Partly cloudy","code":1003}},
			"forecast":{"forecastday":[{"day":{"maxtemp_c":11,"mintemp_c":3},"hour":[]}]}
		}`))
	}))
	defer server.Close()

	p := NewWeatherAPIProvider(server.Client(), server.URL, "k")

	snap, err := p.FetchCurrent(context.Background(), 35.68, 139.69)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", snap.Name)
	assert.InDelta(t, 10.0, snap.Wind.Speed, 1e-9)
	assert.Equal(t, 3.0, snap.Main.TempMin)
	assert.Equal(t, 11.0, snap.Main.TempMax)
	assert.Equal(t, "Clouds", snap.PrimaryCondition().Main)
	assert.Equal(t, "02d", snap.PrimaryCondition().Icon)
	assert.Equal(t, int64(1704067000), snap.Dt)
}

func TestWeatherAPIProvider_MissingKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "http://127.0.0.1:1", "")

	_, err := p.FetchForecast(context.Background(), 1, 2)
	assert.Error(t, err)
}
