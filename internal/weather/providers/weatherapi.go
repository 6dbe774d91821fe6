package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/sony/gobreaker"
)

const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewWeatherAPIProvider(client *http.Client, baseURL, apiKey string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("weatherapi"),
		now:     time.Now,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

type weatherAPIReading struct {
	TimeEpoch        int64               `json:"time_epoch"`
	LastUpdatedEpoch int64               `json:"last_updated_epoch"`
	TempC            float64             `json:"temp_c"`
	FeelsLikeC       float64             `json:"feelslike_c"`
	Humidity         float64             `json:"humidity"`
	PressureMb       float64             `json:"pressure_mb"`
	WindKph          float64             `json:"wind_kph"`
	WindDegree       float64             `json:"wind_degree"`
	Cloud            float64             `json:"cloud"`
	ChanceOfRain     float64             `json:"chance_of_rain"`
	VisKm            float64             `json:"vis_km"`
	IsDay            int                 `json:"is_day"`
	Condition        weatherAPICondition `json:"condition"`
}

type weatherAPIPayload struct {
	Location struct {
		Name           string  `json:"name"`
		Country        string  `json:"country"`
		Lat            float64 `json:"lat"`
		Lon            float64 `json:"lon"`
		LocaltimeEpoch int64   `json:"localtime_epoch"`
	} `json:"location"`
	Current  weatherAPIReading `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Day struct {
				MaxTempC float64 `json:"maxtemp_c"`
				MinTempC float64 `json:"mintemp_c"`
			} `json:"day"`
			Hour []weatherAPIReading `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) fetch(ctx context.Context, endpoint string, lat, lon float64, extra url.Values) (weatherAPIPayload, error) {
	if p.apiKey == "" {
		return weatherAPIPayload{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		for k, v := range extra {
			values[k] = v
		}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", lat, lon))

		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload weatherAPIPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weatherAPIPayload{}, err
	}
	return payload, nil
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, lat, lon float64) (weather.CurrentWeatherSnapshot, error) {
	values := url.Values{}
	values.Set("days", "1")

	payload, err := p.fetch(ctx, "forecast.json", lat, lon, values)
	if err != nil {
		return weather.CurrentWeatherSnapshot{}, err
	}

	cur := payload.Current
	ts := cur.LastUpdatedEpoch
	if ts == 0 {
		ts = payload.Location.LocaltimeEpoch
	}
	if ts == 0 {
		ts = p.now().Unix()
	}

	snap := weather.CurrentWeatherSnapshot{
		Coord:      weather.Coord{Lat: payload.Location.Lat, Lon: payload.Location.Lon},
		Conditions: []weather.Condition{mapWeatherAPICondition(cur.Condition, cur.IsDay == 1)},
		Main: weather.MainMetrics{
			Temp:      cur.TempC,
			FeelsLike: cur.FeelsLikeC,
			TempMin:   cur.TempC,
			TempMax:   cur.TempC,
			Pressure:  cur.PressureMb,
			Humidity:  cur.Humidity,
		},
		// Convert wind from kph to m/s.
		Wind:   weather.Wind{Speed: cur.WindKph / 3.6, Deg: cur.WindDegree},
		Clouds: weather.Clouds{All: cur.Cloud},
		Dt:     ts,
		Name:   payload.Location.Name,
	}
	if days := payload.Forecast.ForecastDay; len(days) > 0 {
		snap.Main.TempMin = days[0].Day.MinTempC
		snap.Main.TempMax = days[0].Day.MaxTempC
	}

	return snap, nil
}

func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("days", "6")

	payload, err := p.fetch(ctx, "forecast.json", lat, lon, values)
	if err != nil {
		return weather.Forecast{}, err
	}

	now := p.now().Truncate(time.Hour).Unix()
	samples := make([]weather.ForecastSample, 0, demoSampleCount)

	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			if len(samples) >= demoSampleCount {
				break
			}
			at := time.Unix(h.TimeEpoch, 0).UTC()
			if h.TimeEpoch < now || at.Hour()%3 != 0 {
				continue
			}

			s := weather.ForecastSample{
				Dt: h.TimeEpoch,
				Main: weather.MainMetrics{
					Temp:      h.TempC,
					FeelsLike: h.FeelsLikeC,
					TempMin:   h.TempC,
					TempMax:   h.TempC,
					Pressure:  h.PressureMb,
					Humidity:  h.Humidity,
				},
				Conditions: []weather.Condition{mapWeatherAPICondition(h.Condition, h.IsDay == 1)},
				Clouds:     weather.Clouds{All: h.Cloud},
				Wind:       weather.Wind{Speed: h.WindKph / 3.6, Deg: h.WindDegree},
				Visibility: int(h.VisKm * 1000),
				Pop:        h.ChanceOfRain / 100,
				DtTxt:      at.Format(weather.SampleTimeLayout),
			}
			if h.IsDay == 1 {
				s.Sys.Pod = "d"
			} else {
				s.Sys.Pod = "n"
			}
			samples = append(samples, s)
		}
	}

	if len(samples) == 0 {
		return weather.Forecast{}, errNoForecastSamples
	}

	return weather.Forecast{
		City: weather.City{
			Name:    payload.Location.Name,
			Country: payload.Location.Country,
			Coord:   weather.Coord{Lat: payload.Location.Lat, Lon: payload.Location.Lon},
		},
		Samples: samples,
	}, nil
}

func mapWeatherAPICondition(cond weatherAPICondition, isDay bool) weather.Condition {
	suffix := "n"
	if isDay {
		suffix = "d"
	}

	text := strings.ToLower(cond.Text)
	out := weather.Condition{ID: cond.Code, Description: text}

	switch {
	case text == "":
		out.Main, out.Icon = "Clear", "01"
	case common.HasAny(text, "thunder", "storm"):
		out.Main, out.Icon = "Thunderstorm", "11"
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice"):
		out.Main, out.Icon = "Snow", "13"
	case common.HasAny(text, "drizzle"):
		out.Main, out.Icon = "Drizzle", "09"
	case common.HasAny(text, "rain", "shower"):
		out.Main, out.Icon = "Rain", "10"
	case common.HasAny(text, "fog", "mist"):
		out.Main, out.Icon = "Mist", "50"
	case common.HasAny(text, "overcast"):
		out.Main, out.Icon = "Clouds", "04"
	case common.HasAny(text, "cloud"):
		out.Main, out.Icon = "Clouds", "02"
	default:
		out.Main, out.Icon = "Clear", "01"
	}
	out.Icon += suffix
	return out
}
