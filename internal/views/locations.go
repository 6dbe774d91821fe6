package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/favorites"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/search"
	"github.com/i474232898/weather-lookup/internal/weather"
)

var (
	// ErrUnknownSaved is returned when a saved location id does not exist.
	ErrUnknownSaved = errors.New("saved location not found")

	// ErrUnknownCity is returned for an out-of-range popular city index.
	ErrUnknownCity = errors.New("popular city not found")

	// ErrUnknownRecent is returned for an out-of-range recent search index.
	ErrUnknownRecent = errors.New("recent search not found")
)

// SavedDateLayout renders when a location was saved ("Jan 2").
const SavedDateLayout = "Jan 2"

// PopularCities are offered as one-tap shortcuts.
var PopularCities = []weather.Location{
	{Name: "New York", Lat: 40.7128, Lon: -74.0060, Country: "US"},
	{Name: "London", Lat: 51.5074, Lon: -0.1278, Country: "GB"},
	{Name: "Paris", Lat: 48.8566, Lon: 2.3522, Country: "FR"},
	{Name: "Tokyo", Lat: 35.6762, Lon: 139.6503, Country: "JP"},
	{Name: "Sydney", Lat: -33.8688, Lon: 151.2093, Country: "AU"},
	{Name: "Dubai", Lat: 25.2048, Lon: 55.2708, Country: "AE"},
	{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777, Country: "IN"},
	{Name: "São Paulo", Lat: -23.5558, Lon: -46.6396, Country: "BR"},
}

// SavedEntry is a saved location with its display date.
type SavedEntry struct {
	weather.SavedLocation
	SavedOn string `json:"savedOn"`
}

// LocationSearchState is the data behind the location search page.
type LocationSearchState struct {
	Current *weather.Location          `json:"current,omitempty"`
	Search  search.Snapshot            `json:"search"`
	Saved   []SavedEntry               `json:"saved"`
	Recent  []weather.GeocodeCandidate `json:"recent"`
	Popular []weather.Location         `json:"popular"`
}

// LocationSearchView combines search with saved, recent and popular places.
type LocationSearchView struct {
	search      *search.Controller
	favs        *favorites.Store
	locs        *location.Store
	geo         location.Geolocator
	log         logger.Logger
	unsubscribe func()

	mu      sync.RWMutex
	current *weather.Location
}

func NewLocationSearchView(
	ctx context.Context,
	gw weather.Gateway,
	locs *location.Store,
	favs *favorites.Store,
	geo location.Geolocator,
	debounce time.Duration,
	log logger.Logger,
) *LocationSearchView {
	log = log.WithField("view", "locations")
	if geo == nil {
		geo = location.NoGeolocator{}
	}

	v := &LocationSearchView{
		search: search.New(ctx, gw, locs, favs, debounce, log),
		favs:   favs,
		locs:   locs,
		geo:    geo,
		log:    log,
	}
	v.unsubscribe = locs.Subscribe(ctx, func(loc weather.Location) {
		v.mu.Lock()
		v.current = &loc
		v.mu.Unlock()
	})
	return v
}

func (v *LocationSearchView) Search() *search.Controller {
	return v.search
}

// SelectSaved makes the saved location with id current.
func (v *LocationSearchView) SelectSaved(id string) (weather.Location, error) {
	saved, ok := v.favs.Find(id)
	if !ok {
		return weather.Location{}, fmt.Errorf("%w: %s", ErrUnknownSaved, id)
	}
	v.locs.Set(saved.Location)
	return saved.Location, nil
}

// SelectPopular makes the i-th popular city current.
func (v *LocationSearchView) SelectPopular(i int) (weather.Location, error) {
	if i < 0 || i >= len(PopularCities) {
		return weather.Location{}, fmt.Errorf("%w: %d", ErrUnknownCity, i)
	}
	city := PopularCities[i]
	v.locs.Set(city)
	return city, nil
}

// SelectRecent selects the i-th recent search as if picked from results.
func (v *LocationSearchView) SelectRecent(ctx context.Context, i int) (weather.Location, error) {
	recent := v.favs.Recent()
	if i < 0 || i >= len(recent) {
		return weather.Location{}, fmt.Errorf("%w: %d", ErrUnknownRecent, i)
	}
	return v.search.Select(ctx, recent[i])
}

func (v *LocationSearchView) SaveCurrent(ctx context.Context) (weather.SavedLocation, bool) {
	return v.favs.SaveCurrentLocation(ctx)
}

func (v *LocationSearchView) RemoveSaved(ctx context.Context, id string) {
	v.favs.Remove(ctx, id)
}

// UseCurrentLocation sets the geolocated position as current. Failures are
// logged and returned without touching view state.
func (v *LocationSearchView) UseCurrentLocation(ctx context.Context) error {
	lat, lon, err := v.geo.Position(ctx)
	if err != nil {
		v.log.Warnf("geolocation error: %v", err)
		return err
	}
	v.locs.Set(weather.Location{Name: location.CurrentLocationName, Lat: lat, Lon: lon})
	return nil
}

func (v *LocationSearchView) State() LocationSearchState {
	saved := v.favs.Saved()
	entries := make([]SavedEntry, 0, len(saved))
	for _, s := range saved {
		entries = append(entries, SavedEntry{SavedLocation: s, SavedOn: s.SavedAt.Format(SavedDateLayout)})
	}

	st := LocationSearchState{
		Search:  v.search.Snapshot(),
		Saved:   entries,
		Recent:  v.favs.Recent(),
		Popular: append([]weather.Location{}, PopularCities...),
	}

	v.mu.RLock()
	if v.current != nil {
		cur := *v.current
		st.Current = &cur
	}
	v.mu.RUnlock()

	return st
}

func (v *LocationSearchView) Close() {
	v.unsubscribe()
	v.search.Close()
}
