package weather

import (
	"math"
	"time"
)

// nearTolerance is the coordinate distance, in degrees on each axis, under
// which two locations are considered the same place.
const nearTolerance = 0.01

// Location is a named coordinate pair. Identity is by proximity, not name.
type Location struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country,omitempty"`
}

// Near reports whether other lies within 0.01° of l on both axes.
func (l Location) Near(other Location) bool {
	return math.Abs(l.Lat-other.Lat) < nearTolerance &&
		math.Abs(l.Lon-other.Lon) < nearTolerance
}

// Coord is a bare latitude/longitude pair as reported by the provider.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Condition describes one weather condition entry (e.g. "Clear", "01d").
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainMetrics holds the temperature and atmosphere readings of a sample.
type MainMetrics struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
	SeaLevel  float64 `json:"sea_level,omitempty"`
	GrndLevel float64 `json:"grnd_level,omitempty"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

type Clouds struct {
	All float64 `json:"all"`
}

// SystemInfo carries the country code and sun times of an observation.
type SystemInfo struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// CurrentWeatherSnapshot is an immutable point-in-time observation.
// It mirrors the OpenWeather "current weather" payload.
type CurrentWeatherSnapshot struct {
	Coord      Coord       `json:"coord"`
	Conditions []Condition `json:"weather"`
	Main       MainMetrics `json:"main"`
	Wind       Wind        `json:"wind"`
	Clouds     Clouds      `json:"clouds"`
	Dt         int64       `json:"dt"`
	Sys        SystemInfo  `json:"sys"`
	Timezone   int         `json:"timezone"`
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
}

// PrimaryCondition returns the first condition, or a zero value.
func (s CurrentWeatherSnapshot) PrimaryCondition() Condition {
	if len(s.Conditions) == 0 {
		return Condition{}
	}
	return s.Conditions[0]
}

// Volume is a precipitation amount over the last 3 hours, in mm.
type Volume struct {
	ThreeH float64 `json:"3h"`
}

// ForecastSample is a single 3-hour forecast reading.
type ForecastSample struct {
	Dt         int64       `json:"dt"`
	Main       MainMetrics `json:"main"`
	Conditions []Condition `json:"weather"`
	Clouds     Clouds      `json:"clouds"`
	Wind       Wind        `json:"wind"`
	Visibility int         `json:"visibility"`
	Pop        float64     `json:"pop"` // 0..1
	Rain       *Volume     `json:"rain,omitempty"`
	Snow       *Volume     `json:"snow,omitempty"`
	Sys        struct {
		Pod string `json:"pod"`
	} `json:"sys"`
	DtTxt string `json:"dt_txt"` // "2006-01-02 15:04:05", UTC
}

// SampleTimeLayout is the layout of ForecastSample.DtTxt.
const SampleTimeLayout = "2006-01-02 15:04:05"

// Time returns the sample instant in UTC, preferring the formatted
// timestamp and falling back to the epoch seconds.
func (s ForecastSample) Time() time.Time {
	if s.DtTxt != "" {
		if t, err := time.ParseInLocation(SampleTimeLayout, s.DtTxt, time.UTC); err == nil {
			return t
		}
	}
	return time.Unix(s.Dt, 0).UTC()
}

// PrimaryCondition returns the first condition, or a zero value.
func (s ForecastSample) PrimaryCondition() Condition {
	if len(s.Conditions) == 0 {
		return Condition{}
	}
	return s.Conditions[0]
}

// City describes the place a forecast was issued for.
type City struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Coord      Coord  `json:"coord"`
	Country    string `json:"country"`
	Population int64  `json:"population"`
	Timezone   int    `json:"timezone"`
	Sunrise    int64  `json:"sunrise"`
	Sunset     int64  `json:"sunset"`
}

// Forecast is a chronological run of 3-hour samples, typically 40 of them
// covering 5 days.
type Forecast struct {
	City    City             `json:"city"`
	Samples []ForecastSample `json:"list"`
}

// DailyForecastSummary is derived from the samples of one calendar date.
type DailyForecastSummary struct {
	Date              string           `json:"date"` // YYYY-MM-DD
	Samples           []ForecastSample `json:"items"`
	MinTemp           float64          `json:"minTemp"`
	MaxTemp           float64          `json:"maxTemp"`
	Condition         Condition        `json:"mainCondition"`
	AvgHumidity       int              `json:"avgHumidity"`
	AvgPressure       int              `json:"avgPressure"`
	AvgWindSpeed      float64          `json:"avgWindSpeed"`
	PrecipitationProb float64          `json:"precipitationProb"` // 0..100
}

// GeocodeCandidate is one geocoder hit, in Nominatim's JSON shape.
type GeocodeCandidate struct {
	PlaceID     int64    `json:"place_id"`
	Licence     string   `json:"licence,omitempty"`
	OSMType     string   `json:"osm_type,omitempty"`
	OSMID       int64    `json:"osm_id,omitempty"`
	BoundingBox []string `json:"boundingbox"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	Class       string   `json:"class,omitempty"`
	Type        string   `json:"type,omitempty"`
	Importance  float64  `json:"importance"`
}

// SavedLocation is a user-saved Location.
type SavedLocation struct {
	Location
	ID      string    `json:"id"`
	SavedAt time.Time `json:"savedAt"`
}
