package weather

import (
	"math"
	"sort"
)

const (
	// MaxForecastDays caps the number of daily summaries.
	MaxForecastDays = 5

	// HourlyWindow is the number of 3-hour samples covering the next 24 hours.
	HourlyWindow = 8

	middayStartHour = 12
	middayEndHour   = 15
)

// AggregateDaily reduces a time-ordered run of 3-hour samples into at most
// five per-day summaries. Days are keyed by UTC calendar date and kept in
// order of first appearance; samples inside a day are re-sorted by time.
// The result is a pure function of the input.
func AggregateDaily(samples []ForecastSample) []DailyForecastSummary {
	if len(samples) == 0 {
		return []DailyForecastSummary{}
	}

	var (
		order   []string
		buckets = make(map[string][]ForecastSample)
	)

	for _, s := range samples {
		key := s.Time().Format("2006-01-02")
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], s)
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	out := make([]DailyForecastSummary, 0, len(order))
	for _, key := range order {
		out = append(out, summarizeDay(key, buckets[key]))
	}
	return out
}

func summarizeDay(date string, bucket []ForecastSample) DailyForecastSummary {
	items := make([]ForecastSample, len(bucket))
	copy(items, bucket)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time().Before(items[j].Time())
	})

	var (
		minTemp     = math.Inf(1)
		maxTemp     = math.Inf(-1)
		sumHumidity float64
		sumPressure float64
		sumWind     float64
		maxPop      float64
	)

	for _, s := range items {
		minTemp = math.Min(minTemp, s.Main.Temp)
		maxTemp = math.Max(maxTemp, s.Main.Temp)
		sumHumidity += s.Main.Humidity
		sumPressure += s.Main.Pressure
		sumWind += s.Wind.Speed
		maxPop = math.Max(maxPop, s.Pop)
	}

	n := float64(len(items))

	return DailyForecastSummary{
		Date:              date,
		Samples:           items,
		MinTemp:           minTemp,
		MaxTemp:           maxTemp,
		Condition:         representative(items).PrimaryCondition(),
		AvgHumidity:       int(math.Round(sumHumidity / n)),
		AvgPressure:       int(math.Round(sumPressure / n)),
		AvgWindSpeed:      sumWind / n,
		PrecipitationProb: maxPop * 100,
	}
}

// representative picks the first sample whose hour is in [12,15], falling
// back to the one at len/2.
func representative(items []ForecastSample) ForecastSample {
	for _, s := range items {
		if h := s.Time().Hour(); h >= middayStartHour && h <= middayEndHour {
			return s
		}
	}
	return items[len(items)/2]
}

// NextHours returns the first n samples. No aggregation is done.
func NextHours(samples []ForecastSample, n int) []ForecastSample {
	if n > len(samples) {
		n = len(samples)
	}
	if n <= 0 {
		return []ForecastSample{}
	}
	return samples[:n]
}
