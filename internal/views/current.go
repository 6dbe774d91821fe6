package views

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/search"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	ErrMsgGeolocationDenied      = "Unable to access your location"
	ErrMsgGeolocationUnsupported = "Geolocation is not supported by this browser"
)

// CurrentWeatherView is the detailed current-conditions page with its own
// inline search.
type CurrentWeatherView struct {
	panel       *currentPanel
	search      *search.Controller
	locs        *location.Store
	geo         location.Geolocator
	log         logger.Logger
	unsubscribe func()
}

// CurrentWeatherDetail adds derived display fields to CurrentWeatherState.
type CurrentWeatherDetail struct {
	CurrentWeatherState
	WindDirection string          `json:"windDirection,omitempty"`
	Sunrise       string          `json:"sunrise,omitempty"`
	Sunset        string          `json:"sunset,omitempty"`
	Search        search.Snapshot `json:"search"`
}

func NewCurrentWeatherView(
	ctx context.Context,
	gw weather.Gateway,
	locs *location.Store,
	geo location.Geolocator,
	iconBase string,
	debounce time.Duration,
	log logger.Logger,
) *CurrentWeatherView {
	log = log.WithField("view", "current")
	if geo == nil {
		geo = location.NoGeolocator{}
	}

	v := &CurrentWeatherView{
		panel: &currentPanel{
			ctx:      ctx,
			gw:       gw,
			iconBase: iconBase,
			log:      log,
		},
		search: search.New(ctx, gw, locs, nil, debounce, log),
		locs:   locs,
		geo:    geo,
		log:    log,
	}
	v.unsubscribe = locs.Subscribe(ctx, v.panel.show)
	return v
}

// Search is the inline location search.
func (v *CurrentWeatherView) Search() *search.Controller {
	return v.search
}

// UseCurrentLocation asks the geolocator for a position and makes it the
// current location. Failures are reported in the view's error field and
// returned; no fallback location is substituted.
func (v *CurrentWeatherView) UseCurrentLocation(ctx context.Context) error {
	lat, lon, err := v.geo.Position(ctx)
	if err != nil {
		v.log.Warnf("geolocation error: %v", err)
		if errors.Is(err, location.ErrGeolocationUnavailable) {
			v.panel.setError(ErrMsgGeolocationUnsupported)
		} else {
			v.panel.setError(ErrMsgGeolocationDenied)
		}
		return err
	}

	v.locs.Set(weather.Location{Name: location.CurrentLocationName, Lat: lat, Lon: lon})
	return nil
}

func (v *CurrentWeatherView) Refresh() bool {
	return v.panel.refresh()
}

func (v *CurrentWeatherView) State() CurrentWeatherDetail {
	st := CurrentWeatherDetail{
		CurrentWeatherState: v.panel.state(),
		Search:              v.search.Snapshot(),
	}
	if w := st.Weather; w != nil {
		st.WindDirection = weather.WindDirection(w.Wind.Deg)
		st.Sunrise = formatClock(w.Sys.Sunrise)
		st.Sunset = formatClock(w.Sys.Sunset)
	}
	return st
}

func (v *CurrentWeatherView) Close() {
	v.unsubscribe()
	v.search.Close()
}
