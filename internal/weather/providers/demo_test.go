package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/weather"
)

func TestDemoSource_CurrentRanges(t *testing.T) {
	d := NewDemoSource(42, fixedNow)

	for i := 0; i < 50; i++ {
		s := d.Current(48.85, 2.35)

		assert.Equal(t, "Paris", s.Name)
		assert.GreaterOrEqual(t, s.Main.Temp, 15.0)
		assert.LessOrEqual(t, s.Main.Temp, 30.0)
		assert.GreaterOrEqual(t, s.Main.Humidity, 40.0)
		assert.LessOrEqual(t, s.Main.Humidity, 80.0)
		assert.GreaterOrEqual(t, s.Main.Pressure, 1000.0)
		assert.LessOrEqual(t, s.Main.Pressure, 1050.0)
		assert.LessOrEqual(t, s.Clouds.All, 50.0)
		assert.Less(t, s.Sys.Sunrise, s.Dt)
		assert.Greater(t, s.Sys.Sunset, s.Dt)
	}
}

func TestDemoSource_Forecast(t *testing.T) {
	d := NewDemoSource(42, fixedNow)
	fc := d.Forecast(0, 0)

	require.Len(t, fc.Samples, 40)
	assert.Equal(t, "Unknown Location", fc.City.Name)

	for i, s := range fc.Samples {
		assert.Equal(t, fixedNow().Add(time.Duration(i)*3*time.Hour).Unix(), s.Dt)
		assert.GreaterOrEqual(t, s.Pop, 0.0)
		assert.Less(t, s.Pop, 0.5)
		assert.Contains(t, []string{"Clear", "Clouds", "Rain"}, s.PrimaryCondition().Main)
	}

	assert.Equal(t, "n", fc.Samples[0].Sys.Pod)
	assert.Equal(t, "d", fc.Samples[4].Sys.Pod) // 12:00

	days := weather.AggregateDaily(fc.Samples)
	assert.Len(t, days, 5)
}

func TestDemoSource_Deterministic(t *testing.T) {
	a := NewDemoSource(9, fixedNow)
	b := NewDemoSource(9, fixedNow)

	assert.Equal(t, a.Current(1, 1), b.Current(1, 1))
	assert.Equal(t, a.Forecast(1, 1), b.Forecast(1, 1))
}

func TestKnownPlaceName(t *testing.T) {
	assert.Equal(t, "London", KnownPlaceName(51.5074, -0.1278))
	assert.Equal(t, "New York", KnownPlaceName(40.7128, -73.5))
	assert.Equal(t, "Paris", KnownPlaceName(48.8566, 2.3522))
	assert.Equal(t, "Unknown Location", KnownPlaceName(35.67, 139.65))
}
