package views

import (
	"context"
	"time"

	"github.com/i474232898/weather-lookup/internal/favorites"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// SessionConfig carries what the views need beyond their collaborators.
type SessionConfig struct {
	IconBaseURL string
	TileBaseURL string
	MapsAPIKey  string
	Debounce    time.Duration
}

// Session owns one of each view. Closing it is the single teardown signal:
// every subscription, debounce timer and in-flight fetch observes it.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Logger

	Dashboard *Dashboard
	Current   *CurrentWeatherView
	Forecast  *ForecastView
	Locations *LocationSearchView
	Maps      *WeatherMapsView
}

func NewSession(
	ctx context.Context,
	gw weather.Gateway,
	locs *location.Store,
	favs *favorites.Store,
	geo location.Geolocator,
	cfg SessionConfig,
	log logger.Logger,
) *Session {
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
		Dashboard: NewDashboard(ctx, gw, locs, cfg.IconBaseURL, log),
		Current:   NewCurrentWeatherView(ctx, gw, locs, geo, cfg.IconBaseURL, cfg.Debounce, log),
		Forecast:  NewForecastView(ctx, gw, locs, log),
		Locations: NewLocationSearchView(ctx, gw, locs, favs, geo, cfg.Debounce, log),
		Maps:      NewWeatherMapsView(ctx, locs, cfg.TileBaseURL, cfg.MapsAPIKey),
	}
}

// Refresh reloads current conditions and the forecast for the current
// location.
func (s *Session) Refresh() {
	if s.ctx.Err() != nil {
		return
	}
	s.Dashboard.Refresh()
	s.Current.Refresh()
	s.Forecast.Refresh()
}

func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}

func (s *Session) Close() {
	s.cancel()
	s.Dashboard.Close()
	s.Current.Close()
	s.Forecast.Close()
	s.Locations.Close()
	s.Maps.Close()
	s.log.Debug("view session closed")
}
