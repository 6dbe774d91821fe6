package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

const openMeteoHourly = "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl," +
	"wind_speed_10m,wind_direction_10m,cloud_cover,precipitation_probability,weather_code,visibility,is_day"

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no
// API key; hourly data is thinned to 3-hour steps to match the forecast
// shape used everywhere else.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time                int64   `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Humidity            float64 `json:"relative_humidity_2m"`
		Pressure            float64 `json:"pressure_msl"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
		CloudCover          float64 `json:"cloud_cover"`
		WeatherCode         int     `json:"weather_code"`
		IsDay               int     `json:"is_day"`
	} `json:"current"`
	Hourly struct {
		Time                     []int64   `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		ApparentTemperature      []float64 `json:"apparent_temperature"`
		Humidity                 []float64 `json:"relative_humidity_2m"`
		Pressure                 []float64 `json:"pressure_msl"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		WindDirection            []float64 `json:"wind_direction_10m"`
		CloudCover               []float64 `json:"cloud_cover"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
		Visibility               []float64 `json:"visibility"`
		IsDay                    []int     `json:"is_day"`
	} `json:"hourly"`
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		Sunrise        []int64   `json:"sunrise"`
		Sunset         []int64   `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, lat, lon float64, values url.Values) (openMeteoPayload, error) {
	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		q.Set("timezone", "UTC")
		q.Set("timeformat", "unixtime")
		q.Set("wind_speed_unit", "ms")

		u := fmt.Sprintf("%s?%s", p.baseURL, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return openMeteoPayload{}, err
	}
	return payload, nil
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, lat, lon float64) (weather.CurrentWeatherSnapshot, error) {
	values := url.Values{}
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl,"+
		"wind_speed_10m,wind_direction_10m,cloud_cover,weather_code,is_day")
	values.Set("daily", "temperature_2m_max,temperature_2m_min,sunrise,sunset")
	values.Set("forecast_days", "1")

	payload, err := p.fetch(ctx, lat, lon, values)
	if err != nil {
		return weather.CurrentWeatherSnapshot{}, err
	}

	cur := payload.Current
	ts := cur.Time
	if ts == 0 {
		ts = p.now().Unix()
	}

	snap := weather.CurrentWeatherSnapshot{
		Coord:      weather.Coord{Lat: payload.Latitude, Lon: payload.Longitude},
		Conditions: []weather.Condition{mapOpenMeteoCondition(cur.WeatherCode, cur.IsDay == 1)},
		Main: weather.MainMetrics{
			Temp:      cur.Temperature,
			FeelsLike: cur.ApparentTemperature,
			TempMin:   cur.Temperature,
			TempMax:   cur.Temperature,
			Pressure:  cur.Pressure,
			Humidity:  cur.Humidity,
		},
		Wind:   weather.Wind{Speed: cur.WindSpeed, Deg: cur.WindDirection},
		Clouds: weather.Clouds{All: cur.CloudCover},
		Dt:     ts,
		Name:   KnownPlaceName(lat, lon),
	}

	if d := payload.Daily; len(d.TemperatureMin) > 0 && len(d.TemperatureMax) > 0 {
		snap.Main.TempMin = d.TemperatureMin[0]
		snap.Main.TempMax = d.TemperatureMax[0]
	}
	if d := payload.Daily; len(d.Sunrise) > 0 && len(d.Sunset) > 0 {
		snap.Sys.Sunrise = d.Sunrise[0]
		snap.Sys.Sunset = d.Sunset[0]
	}

	return snap, nil
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("hourly", openMeteoHourly)
	values.Set("forecast_days", "6")

	payload, err := p.fetch(ctx, lat, lon, values)
	if err != nil {
		return weather.Forecast{}, err
	}

	h := payload.Hourly
	now := p.now().Truncate(time.Hour).Unix()
	samples := make([]weather.ForecastSample, 0, demoSampleCount)

	for i := 0; i < len(h.Time) && len(samples) < demoSampleCount; i++ {
		if h.Time[i] < now || time.Unix(h.Time[i], 0).UTC().Hour()%3 != 0 {
			continue
		}

		at := time.Unix(h.Time[i], 0).UTC()
		isDay := at.Hour() > 6 && at.Hour() < 18
		if i < len(h.IsDay) {
			isDay = h.IsDay[i] == 1
		}

		s := weather.ForecastSample{
			Dt: h.Time[i],
			Main: weather.MainMetrics{
				Temp:      at0(h.Temperature, i),
				FeelsLike: at0(h.ApparentTemperature, i),
				TempMin:   at0(h.Temperature, i),
				TempMax:   at0(h.Temperature, i),
				Pressure:  at0(h.Pressure, i),
				Humidity:  at0(h.Humidity, i),
			},
			Conditions: []weather.Condition{mapOpenMeteoCondition(atInt(h.WeatherCode, i), isDay)},
			Clouds:     weather.Clouds{All: at0(h.CloudCover, i)},
			Wind:       weather.Wind{Speed: at0(h.WindSpeed, i), Deg: at0(h.WindDirection, i)},
			Visibility: int(at0(h.Visibility, i)),
			Pop:        at0(h.PrecipitationProbability, i) / 100,
			DtTxt:      at.Format(weather.SampleTimeLayout),
		}
		if isDay {
			s.Sys.Pod = "d"
		} else {
			s.Sys.Pod = "n"
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return weather.Forecast{}, errNoForecastSamples
	}

	return weather.Forecast{
		City: weather.City{
			Name:  KnownPlaceName(lat, lon),
			Coord: weather.Coord{Lat: payload.Latitude, Lon: payload.Longitude},
		},
		Samples: samples,
	}, nil
}

func at0(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func atInt(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

// mapOpenMeteoCondition translates WMO weather codes into OpenWeather-style
// condition entries, icons included.
func mapOpenMeteoCondition(code int, isDay bool) weather.Condition {
	suffix := "n"
	if isDay {
		suffix = "d"
	}

	c := func(id int, main, desc, icon string) weather.Condition {
		return weather.Condition{ID: id, Main: main, Description: desc, Icon: icon + suffix}
	}

	switch {
	case code == 0:
		return c(800, "Clear", "clear sky", "01")
	case code == 1 || code == 2:
		return c(802, "Clouds", "partly cloudy", "02")
	case code == 3:
		return c(804, "Clouds", "overcast clouds", "04")
	case code == 45 || code == 48:
		return c(741, "Fog", "fog", "50")
	case code >= 51 && code <= 57:
		return c(300, "Drizzle", "drizzle", "09")
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return c(500, "Rain", "rain", "10")
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return c(600, "Snow", "snow", "13")
	case code >= 95:
		return c(200, "Thunderstorm", "thunderstorm", "11")
	default:
		return c(800, "Clear", "unknown", "01")
	}
}
