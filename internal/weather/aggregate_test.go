package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(t time.Time, temp float64) ForecastSample {
	return ForecastSample{
		Dt:         t.Unix(),
		DtTxt:      t.UTC().Format(SampleTimeLayout),
		Main:       MainMetrics{Temp: temp, Humidity: 50, Pressure: 1010},
		Wind:       Wind{Speed: 3},
		Conditions: []Condition{{Main: t.UTC().Format("15")}},
	}
}

func fortySamples() []ForecastSample {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]ForecastSample, 0, 40)
	for i := 0; i < 40; i++ {
		out = append(out, sampleAt(start.Add(time.Duration(i)*3*time.Hour), float64(10+i)))
	}
	return out
}

func TestAggregateDaily_FiveDays(t *testing.T) {
	days := AggregateDaily(fortySamples())

	require.Len(t, days, 5)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"},
		[]string{days[0].Date, days[1].Date, days[2].Date, days[3].Date, days[4].Date})

	assert.Equal(t, 10.0, days[0].MinTemp)
	assert.Equal(t, 17.0, days[0].MaxTemp)
	assert.Len(t, days[0].Samples, 8)
	assert.Equal(t, "12", days[0].Condition.Main, "midday sample is representative")
}

func TestAggregateDaily_BoundsHoldPerBucket(t *testing.T) {
	for _, d := range AggregateDaily(fortySamples()) {
		for _, s := range d.Samples {
			assert.LessOrEqual(t, d.MinTemp, s.Main.Temp)
			assert.GreaterOrEqual(t, d.MaxTemp, s.Main.Temp)
		}
	}
}

func TestAggregateDaily_Empty(t *testing.T) {
	days := AggregateDaily(nil)
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestAggregateDaily_Idempotent(t *testing.T) {
	in := fortySamples()
	assert.Equal(t, AggregateDaily(in), AggregateDaily(in))
}

func TestAggregateDaily_TruncatesAfterFiveDates(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var in []ForecastSample
	for i := 0; i < 7; i++ {
		in = append(in, sampleAt(start.AddDate(0, 0, i), 20))
	}

	days := AggregateDaily(in)
	require.Len(t, days, 5)
	assert.Equal(t, "2024-03-05", days[4].Date)
}

func TestAggregateDaily_BucketOrderIsFirstAppearance(t *testing.T) {
	jan2 := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	jan1 := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)

	days := AggregateDaily([]ForecastSample{sampleAt(jan2, 5), sampleAt(jan1, 7), sampleAt(jan2.Add(3*time.Hour), 9)})

	require.Len(t, days, 2)
	assert.Equal(t, "2024-01-02", days[0].Date)
	assert.Equal(t, "2024-01-01", days[1].Date)
	assert.Equal(t, 5.0, days[0].MinTemp)
	assert.Equal(t, 9.0, days[0].MaxTemp)
}

func TestAggregateDaily_ResortsWithinBucket(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []ForecastSample{
		sampleAt(day.Add(21*time.Hour), 1),
		sampleAt(day.Add(3*time.Hour), 2),
		sampleAt(day.Add(9*time.Hour), 3),
	}

	days := AggregateDaily(in)
	require.Len(t, days, 1)
	assert.Equal(t, 2.0, days[0].Samples[0].Main.Temp)
	assert.Equal(t, 1.0, days[0].Samples[2].Main.Temp)
	// No midday sample: fall back to index len/2 of the sorted bucket (09:00).
	assert.Equal(t, "09", days[0].Condition.Main)
}

func TestAggregateDaily_SingleSample(t *testing.T) {
	s := sampleAt(time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC), 4)

	days := AggregateDaily([]ForecastSample{s})
	require.Len(t, days, 1)
	assert.Equal(t, 4.0, days[0].MinTemp)
	assert.Equal(t, 4.0, days[0].MaxTemp)
	assert.Equal(t, "21", days[0].Condition.Main)
}

func TestAggregateDaily_Averages(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := sampleAt(day, 10)
	a.Main.Humidity, a.Main.Pressure, a.Wind.Speed, a.Pop = 40, 1000, 2, 0.1
	b := sampleAt(day.Add(3*time.Hour), 12)
	b.Main.Humidity, b.Main.Pressure, b.Wind.Speed, b.Pop = 45, 1003, 3, 0.35

	days := AggregateDaily([]ForecastSample{a, b})
	require.Len(t, days, 1)
	assert.Equal(t, 43, days[0].AvgHumidity)
	assert.Equal(t, 1002, days[0].AvgPressure)
	assert.InDelta(t, 2.5, days[0].AvgWindSpeed, 1e-9)
	assert.InDelta(t, 35.0, days[0].PrecipitationProb, 1e-9)
}

func TestAggregateDaily_FallsBackToEpoch(t *testing.T) {
	s := sampleAt(time.Date(2024, 5, 5, 13, 0, 0, 0, time.UTC), 1)
	s.DtTxt = ""

	days := AggregateDaily([]ForecastSample{s})
	require.Len(t, days, 1)
	assert.Equal(t, "2024-05-05", days[0].Date)
}

func TestNextHours(t *testing.T) {
	in := fortySamples()
	assert.Len(t, NextHours(in, HourlyWindow), 8)
	assert.Equal(t, in[0], NextHours(in, HourlyWindow)[0])
	assert.Len(t, NextHours(in[:3], HourlyWindow), 3)
	assert.Empty(t, NextHours(nil, HourlyWindow))
}

func TestLocationNear(t *testing.T) {
	london := Location{Name: "London", Lat: 51.5074, Lon: -0.1278}

	assert.True(t, london.Near(Location{Lat: 51.51, Lon: -0.13}))
	assert.False(t, london.Near(Location{Lat: 51.52, Lon: -0.1278}))
	assert.False(t, london.Near(Location{Lat: 51.5074, Lon: -0.14}))
}
