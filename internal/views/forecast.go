package views

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrUnknownDay is returned by SelectDay for a date not in the forecast.
var ErrUnknownDay = errors.New("no forecast for that day")

// ForecastState is the data behind the forecast page.
type ForecastState struct {
	Location    *weather.Location              `json:"location,omitempty"`
	City        *weather.City                  `json:"city,omitempty"`
	Days        []weather.DailyForecastSummary `json:"days"`
	SelectedDay *weather.DailyForecastSummary  `json:"selectedDay,omitempty"`
	Hourly      []weather.ForecastSample       `json:"hourly"`
	Chart       weather.ChartSeries            `json:"chart"`
	Outlook     weather.Outlook                `json:"outlook"`
	Loading     bool                           `json:"loading"`
}

// ForecastView turns the raw forecast for the current location into daily
// summaries, a 24-hour chart and an outlook.
type ForecastView struct {
	ctx         context.Context
	gw          weather.Gateway
	log         logger.Logger
	unsubscribe func()

	mu       sync.RWMutex
	seq      uint64
	location *weather.Location
	city     *weather.City
	days     []weather.DailyForecastSummary
	selected int
	hourly   []weather.ForecastSample
	chart    weather.ChartSeries
	outlook  weather.Outlook
	loading  bool
}

func NewForecastView(ctx context.Context, gw weather.Gateway, locs *location.Store, log logger.Logger) *ForecastView {
	v := &ForecastView{
		ctx:      ctx,
		gw:       gw,
		log:      log.WithField("view", "forecast"),
		days:     []weather.DailyForecastSummary{},
		hourly:   []weather.ForecastSample{},
		selected: -1,
		loading:  true,
	}
	v.unsubscribe = locs.Subscribe(ctx, v.show)
	return v
}

func (v *ForecastView) show(loc weather.Location) {
	seq, ok := v.begin(&loc)
	if ok {
		go v.fetch(loc, seq)
	}
}

// Refresh reloads the forecast for the current location synchronously.
func (v *ForecastView) Refresh() bool {
	v.mu.RLock()
	cur := v.location
	v.mu.RUnlock()
	if cur == nil {
		return false
	}

	loc := *cur
	seq, ok := v.begin(nil)
	if !ok {
		return false
	}
	v.fetch(loc, seq)
	return true
}

func (v *ForecastView) begin(loc *weather.Location) (uint64, bool) {
	if v.ctx.Err() != nil {
		return 0, false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if loc != nil {
		v.location = loc
	}
	if v.location == nil {
		return 0, false
	}
	v.seq++
	v.loading = true
	return v.seq, true
}

func (v *ForecastView) fetch(loc weather.Location, seq uint64) {
	fc := v.gw.Forecast(v.ctx, loc.Lat, loc.Lon)
	if v.ctx.Err() != nil {
		return
	}

	days := weather.AggregateDaily(fc.Samples)
	hourly := weather.NextHours(fc.Samples, weather.HourlyWindow)
	chart := weather.BuildChartSeries(hourly)
	outlook := weather.BuildOutlook(days)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		v.log.Debugf("discarding stale forecast for %s", loc.Name)
		return
	}

	city := fc.City
	v.city = &city
	v.days = days
	v.hourly = hourly
	v.chart = chart
	v.outlook = outlook
	v.selected = -1
	if len(days) > 0 {
		v.selected = 0
	}
	v.loading = false
}

// SelectDay makes the summary for date (YYYY-MM-DD) the selected day.
func (v *ForecastView) SelectDay(date string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, d := range v.days {
		if d.Date == date {
			v.selected = i
			return nil
		}
	}
	return ErrUnknownDay
}

func (v *ForecastView) State() ForecastState {
	v.mu.RLock()
	defer v.mu.RUnlock()

	st := ForecastState{
		Days:    append([]weather.DailyForecastSummary{}, v.days...),
		Hourly:  append([]weather.ForecastSample{}, v.hourly...),
		Chart:   v.chart,
		Outlook: v.outlook,
		Loading: v.loading,
	}
	if v.location != nil {
		loc := *v.location
		st.Location = &loc
	}
	if v.city != nil {
		city := *v.city
		st.City = &city
	}
	if v.selected >= 0 && v.selected < len(v.days) {
		day := v.days[v.selected]
		st.SelectedDay = &day
	}
	return st
}

func (v *ForecastView) Close() {
	v.unsubscribe()
}
