package views

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// ClockLayout renders sunrise and sunset.
const ClockLayout = "03:04 PM"

// CurrentWeatherState is the data behind a current-conditions panel.
type CurrentWeatherState struct {
	Location *weather.Location                `json:"location,omitempty"`
	Weather  *weather.CurrentWeatherSnapshot `json:"weather,omitempty"`
	IconURL  string                          `json:"iconUrl,omitempty"`
	Loading  bool                            `json:"loading"`
	Error    string                          `json:"error,omitempty"`
}

// currentPanel loads current weather for whatever location it is given.
// Only the newest load is applied, and nothing is applied once ctx ends.
type currentPanel struct {
	ctx      context.Context
	gw       weather.Gateway
	iconBase string
	log      logger.Logger

	mu       sync.RWMutex
	seq      uint64
	location *weather.Location
	snapshot *weather.CurrentWeatherSnapshot
	loading  bool
	errMsg   string
}

// show records loc and fetches its weather in the background.
func (p *currentPanel) show(loc weather.Location) {
	seq, ok := p.begin(&loc)
	if ok {
		go p.fetch(loc, seq)
	}
}

// refresh reloads the current location synchronously. It reports false
// when there is nothing to reload.
func (p *currentPanel) refresh() bool {
	p.mu.RLock()
	cur := p.location
	p.mu.RUnlock()
	if cur == nil {
		return false
	}

	loc := *cur
	seq, ok := p.begin(nil)
	if !ok {
		return false
	}
	p.fetch(loc, seq)
	return true
}

func (p *currentPanel) begin(loc *weather.Location) (uint64, bool) {
	if p.ctx.Err() != nil {
		return 0, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if loc != nil {
		p.location = loc
	}
	if p.location == nil {
		return 0, false
	}
	p.seq++
	p.loading = true
	p.errMsg = ""
	return p.seq, true
}

func (p *currentPanel) fetch(loc weather.Location, seq uint64) {
	snap := p.gw.CurrentWeather(p.ctx, loc.Lat, loc.Lon)
	if p.ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		p.log.Debugf("discarding stale weather for %s", loc.Name)
		return
	}
	p.snapshot = &snap
	p.loading = false
}

func (p *currentPanel) setError(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
}

func (p *currentPanel) state() CurrentWeatherState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := CurrentWeatherState{Loading: p.loading, Error: p.errMsg}
	if p.location != nil {
		loc := *p.location
		st.Location = &loc
	}
	if p.snapshot != nil {
		snap := *p.snapshot
		st.Weather = &snap
		if icon := snap.PrimaryCondition().Icon; icon != "" {
			st.IconURL = weather.IconURL(p.iconBase, icon)
		}
	}
	return st
}

func formatClock(epoch int64) string {
	if epoch == 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format(ClockLayout)
}
