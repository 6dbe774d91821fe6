package views

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sync"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	MinZoom     = 1
	MaxZoom     = 10
	DefaultZoom = 6

	// CurrentLocationZoom is used when centering on the current location.
	CurrentLocationZoom = 8

	DefaultTileBaseURL = "https://tile.openweathermap.org/map"
)

// MapLayer is one selectable weather overlay.
type MapLayer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Info        string `json:"info"`
	Color       string `json:"color"`
	Tile        string `json:"-"`
}

// MapRegion is a predefined place to jump to.
type MapRegion struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

var MapLayers = []MapLayer{
	{ID: "temperature", Name: "Temperature", Description: "Current temperature across regions", Color: "#ff6b6b", Tile: "temp_new",
		Info: "Shows current temperature distribution. Red areas are warmer, blue areas are cooler."},
	{ID: "precipitation", Name: "Precipitation", Description: "Rainfall and snow patterns", Color: "#74b9ff", Tile: "precipitation_new",
		Info: "Displays current and forecasted precipitation. Blue indicates rain, white indicates snow."},
	{ID: "clouds", Name: "Cloud Cover", Description: "Cloud coverage and density", Color: "#95a5a6", Tile: "clouds_new",
		Info: "Shows cloud coverage density. Darker areas have more cloud cover."},
	{ID: "wind", Name: "Wind Speed", Description: "Wind patterns and speed", Color: "#00b894", Tile: "wind_new",
		Info: "Visualizes wind speed and direction. Arrows show direction, colors show intensity."},
	{ID: "pressure", Name: "Pressure", Description: "Atmospheric pressure systems", Color: "#6c5ce7", Tile: "pressure_new",
		Info: "Displays atmospheric pressure systems. High pressure (H) and low pressure (L) areas."},
	{ID: "humidity", Name: "Humidity", Description: "Relative humidity levels", Color: "#00cec9", Tile: "humidity_new",
		Info: "Shows relative humidity levels. Higher values indicate more moisture in the air."},
}

var MapRegions = []MapRegion{
	{Name: "Global View", Lat: 20, Lon: 0, Zoom: 2},
	{Name: "North America", Lat: 45, Lon: -100, Zoom: 3},
	{Name: "Europe", Lat: 50, Lon: 10, Zoom: 4},
	{Name: "Asia", Lat: 30, Lon: 100, Zoom: 3},
	{Name: "Australia", Lat: -25, Lon: 135, Zoom: 4},
}

// MapsState is the data behind the maps page.
type MapsState struct {
	Current  *weather.Location `json:"current,omitempty"`
	Layers   []MapLayer        `json:"layers"`
	Selected MapLayer          `json:"selectedLayer"`
	Zoom     int               `json:"zoom"`
	Center   MapRegion         `json:"center"`
	Regions  []MapRegion       `json:"regions"`
	TileURL  string            `json:"tileUrl"`
}

// WeatherMapsView tracks the selected overlay, zoom and map center.
type WeatherMapsView struct {
	tileBase    string
	apiKey      string
	unsubscribe func()

	mu       sync.RWMutex
	current  *weather.Location
	selected string
	zoom     int
	center   MapRegion
}

func NewWeatherMapsView(ctx context.Context, locs *location.Store, tileBase, apiKey string) *WeatherMapsView {
	if tileBase == "" {
		tileBase = DefaultTileBaseURL
	}

	v := &WeatherMapsView{
		tileBase: tileBase,
		apiKey:   apiKey,
		selected: MapLayers[0].ID,
		zoom:     DefaultZoom,
		center:   MapRegions[0],
	}
	v.unsubscribe = locs.Subscribe(ctx, func(loc weather.Location) {
		v.mu.Lock()
		v.current = &loc
		v.mu.Unlock()
	})
	return v
}

// SelectLayer records id as the selected layer. Unknown ids are kept but
// display as the first layer.
func (v *WeatherMapsView) SelectLayer(id string) MapLayer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = id
	return layerByID(id)
}

func (v *WeatherMapsView) ZoomIn() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.zoom < MaxZoom {
		v.zoom++
	}
	return v.zoom
}

func (v *WeatherMapsView) ZoomOut() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.zoom > MinZoom {
		v.zoom--
	}
	return v.zoom
}

// JumpTo centers on the i-th predefined region and takes its zoom.
func (v *WeatherMapsView) JumpTo(i int) (MapRegion, error) {
	if i < 0 || i >= len(MapRegions) {
		return MapRegion{}, fmt.Errorf("unknown map region %d", i)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	r := MapRegions[i]
	v.center = r
	v.zoom = r.Zoom
	return r, nil
}

// CenterOnCurrent centers on the current location, if any.
func (v *WeatherMapsView) CenterOnCurrent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == nil {
		return false
	}
	v.center = MapRegion{Name: v.current.Name, Lat: v.current.Lat, Lon: v.current.Lon, Zoom: CurrentLocationZoom}
	v.zoom = CurrentLocationZoom
	return true
}

func (v *WeatherMapsView) State() MapsState {
	v.mu.RLock()
	defer v.mu.RUnlock()

	layer := layerByID(v.selected)
	st := MapsState{
		Layers:   append([]MapLayer{}, MapLayers...),
		Selected: layer,
		Zoom:     v.zoom,
		Center:   v.center,
		Regions:  append([]MapRegion{}, MapRegions...),
		TileURL:  TileURL(v.tileBase, layer.Tile, v.zoom, v.center.Lat, v.center.Lon, v.apiKey),
	}
	if v.current != nil {
		cur := *v.current
		st.Current = &cur
	}
	return st
}

func (v *WeatherMapsView) Close() {
	v.unsubscribe()
}

func layerByID(id string) MapLayer {
	for _, l := range MapLayers {
		if l.ID == id {
			return l
		}
	}
	return MapLayers[0]
}

// TileURL returns the slippy-map tile containing lat/lon at zoom.
func TileURL(base, tile string, zoom int, lat, lon float64, apiKey string) string {
	n := math.Exp2(float64(zoom))
	x := int(math.Floor((lon + 180) / 360 * n))
	rad := lat * math.Pi / 180
	y := int(math.Floor((1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * n))

	u := fmt.Sprintf("%s/%s/%d/%d/%d.png", base, tile, zoom, x, y)
	if apiKey != "" {
		u += "?appid=" + url.QueryEscape(apiKey)
	}
	return u
}
