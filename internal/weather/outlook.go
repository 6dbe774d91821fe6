package weather

import (
	"fmt"
	"math"
)

const (
	highRainThreshold     = 50.0
	moderateRainThreshold = 20.0
)

// Outlook summarizes a run of daily summaries for the forecast page.
type Outlook struct {
	AverageTemp  float64 `json:"averageTemp"`
	MinHumidity  int     `json:"minHumidity"`
	MaxHumidity  int     `json:"maxHumidity"`
	HighRain     bool    `json:"highRainChance"`
	ModerateRain bool    `json:"moderateRainChance"`
	ClearSkies   bool    `json:"clearSkies"`
}

// BuildOutlook computes the outlook. An empty input yields zero values and
// clear skies.
func BuildOutlook(days []DailyForecastSummary) Outlook {
	if len(days) == 0 {
		return Outlook{ClearSkies: true}
	}

	var (
		sumMid   float64
		minHum   = days[0].AvgHumidity
		maxHum   = days[0].AvgHumidity
		high     bool
		moderate bool
	)

	for _, d := range days {
		sumMid += (d.MaxTemp + d.MinTemp) / 2
		if d.AvgHumidity < minHum {
			minHum = d.AvgHumidity
		}
		if d.AvgHumidity > maxHum {
			maxHum = d.AvgHumidity
		}
		if d.PrecipitationProb > highRainThreshold {
			high = true
		}
		if d.PrecipitationProb > moderateRainThreshold {
			moderate = true
		}
	}

	return Outlook{
		AverageTemp:  sumMid / float64(len(days)),
		MinHumidity:  minHum,
		MaxHumidity:  maxHum,
		HighRain:     high,
		ModerateRain: moderate && !high,
		ClearSkies:   !moderate,
	}
}

// ChartSeries is the 24-hour trend data behind the temperature and humidity
// charts.
type ChartSeries struct {
	Labels       []string  `json:"labels"`
	Temperatures []float64 `json:"temperatures"`
	Humidity     []float64 `json:"humidity"`
}

// BuildChartSeries labels each sample "H:00" and rounds temperatures.
func BuildChartSeries(samples []ForecastSample) ChartSeries {
	cs := ChartSeries{
		Labels:       make([]string, 0, len(samples)),
		Temperatures: make([]float64, 0, len(samples)),
		Humidity:     make([]float64, 0, len(samples)),
	}
	for _, s := range samples {
		cs.Labels = append(cs.Labels, fmt.Sprintf("%d:00", s.Time().Hour()))
		cs.Temperatures = append(cs.Temperatures, math.Round(s.Main.Temp))
		cs.Humidity = append(cs.Humidity, s.Main.Humidity)
	}
	return cs
}

var compassPoints = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection maps degrees onto a 16-point compass.
func WindDirection(deg float64) string {
	i := int(math.Round(deg/22.5)) % len(compassPoints)
	if i < 0 {
		i += len(compassPoints)
	}
	return compassPoints[i]
}

// DefaultIconBaseURL serves provider condition icons.
const DefaultIconBaseURL = "https://openweathermap.org/img/wn"

// IconURL maps an icon code such as "01d" to its PNG.
func IconURL(baseURL, code string) string {
	if baseURL == "" {
		baseURL = DefaultIconBaseURL
	}
	return fmt.Sprintf("%s/%s@2x.png", baseURL, code)
}
