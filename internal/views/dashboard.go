package views

import (
	"context"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// Dashboard shows current conditions for the current location.
type Dashboard struct {
	panel       *currentPanel
	unsubscribe func()
}

func NewDashboard(ctx context.Context, gw weather.Gateway, locs *location.Store, iconBase string, log logger.Logger) *Dashboard {
	d := &Dashboard{
		panel: &currentPanel{
			ctx:      ctx,
			gw:       gw,
			iconBase: iconBase,
			log:      log.WithField("view", "dashboard"),
			loading:  true,
		},
	}
	d.unsubscribe = locs.Subscribe(ctx, d.panel.show)
	return d
}

// Refresh reloads the current location's weather.
func (d *Dashboard) Refresh() bool {
	return d.panel.refresh()
}

func (d *Dashboard) State() CurrentWeatherState {
	return d.panel.state()
}

func (d *Dashboard) Close() {
	d.unsubscribe()
}
