package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const testDebounce = 20 * time.Millisecond

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	results []weather.GeocodeCandidate
	gate    chan struct{}
}

func (f *fakeGeocoder) Geocode(ctx context.Context, q string) []weather.GeocodeCandidate {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate
	res := f.results
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res
}

func (f *fakeGeocoder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeLocations struct {
	mu  sync.Mutex
	set []weather.Location
}

func (f *fakeLocations) Set(loc weather.Location) {
	f.mu.Lock()
	f.set = append(f.set, loc)
	f.mu.Unlock()
}

type fakeRecorder struct {
	recorded []weather.GeocodeCandidate
}

func (f *fakeRecorder) RecordSearch(_ context.Context, c weather.GeocodeCandidate) {
	f.recorded = append(f.recorded, c)
}

var londonCandidate = weather.GeocodeCandidate{
	PlaceID:     1,
	DisplayName: "London, Greater London, England, United Kingdom",
	Lat:         "51.5074",
	Lon:         "-0.1278",
}

func newController(t *testing.T, geo *fakeGeocoder) (*Controller, *fakeLocations, *fakeRecorder) {
	t.Helper()
	locs := &fakeLocations{}
	rec := &fakeRecorder{}
	c := New(context.Background(), geo, locs, rec, testDebounce, logger.Nop())
	t.Cleanup(c.Close)
	return c, locs, rec
}

func TestController_ShortQueryNeverGeocodes(t *testing.T) {
	geo := &fakeGeocoder{}
	c, _, _ := newController(t, geo)

	c.Input("L")
	c.Input("Lo")

	assert.Never(t, func() bool { return len(geo.calls()) > 0 }, 10*testDebounce, testDebounce/2)
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Snapshot().ShowResults)
}

func TestController_DistinctConsecutive(t *testing.T) {
	geo := &fakeGeocoder{results: []weather.GeocodeCandidate{londonCandidate}}
	c, _, _ := newController(t, geo)

	c.Input("Lon")
	c.Input("London")
	c.Input("London")

	require.Eventually(t, func() bool { return c.State() == ResultsShown }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"London"}, geo.calls())

	c.Input("Londo")
	c.Input("London")
	assert.Never(t, func() bool { return len(geo.calls()) > 1 }, 10*testDebounce, testDebounce/2)
	assert.Equal(t, ResultsShown, c.State())
	assert.Len(t, c.Results(), 1)
	assert.Equal(t, int64(1), c.Lookups())
}

func TestController_NoResults(t *testing.T) {
	geo := &fakeGeocoder{}
	c, _, _ := newController(t, geo)

	c.Input("Atlantis")

	require.Eventually(t, func() bool { return c.State() == NoResults }, time.Second, 5*time.Millisecond)
	snap := c.Snapshot()
	assert.True(t, snap.ShowResults)
	assert.NotNil(t, snap.Results)
	assert.Empty(t, snap.Results)
}

func TestController_ShortQueryClearsResults(t *testing.T) {
	geo := &fakeGeocoder{results: []weather.GeocodeCandidate{londonCandidate}}
	c, _, _ := newController(t, geo)

	c.Input("London")
	require.Eventually(t, func() bool { return c.State() == ResultsShown }, time.Second, 5*time.Millisecond)

	c.Input("Lo")
	require.Eventually(t, func() bool { return c.State() == Idle }, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.Results())
	assert.False(t, c.Snapshot().ShowResults)
}

func TestController_Select(t *testing.T) {
	geo := &fakeGeocoder{results: []weather.GeocodeCandidate{londonCandidate}}
	c, locs, rec := newController(t, geo)

	c.Input("London")
	require.Eventually(t, func() bool { return c.State() == ResultsShown }, time.Second, 5*time.Millisecond)

	loc, err := c.SelectIndex(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, weather.Location{Name: "London", Lat: 51.5074, Lon: -0.1278, Country: "United Kingdom"}, loc)
	require.Len(t, locs.set, 1)
	assert.Equal(t, loc, locs.set[0])
	require.Len(t, rec.recorded, 1)
	assert.Equal(t, int64(1), rec.recorded[0].PlaceID)

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Query)
	assert.Empty(t, snap.Results)
}

func TestController_SelectInvalid(t *testing.T) {
	c, locs, _ := newController(t, &fakeGeocoder{})

	_, err := c.Select(context.Background(), weather.GeocodeCandidate{DisplayName: "Nowhere", Lat: "north", Lon: "1"})
	assert.ErrorIs(t, err, ErrInvalidCandidate)
	assert.Empty(t, locs.set)

	_, err = c.SelectIndex(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoSuchResult)
}

func TestController_CloseDropsInFlightResults(t *testing.T) {
	geo := &fakeGeocoder{results: []weather.GeocodeCandidate{londonCandidate}, gate: make(chan struct{})}
	c, _, _ := newController(t, geo)

	c.Input("London")
	require.Eventually(t, func() bool { return c.State() == Searching }, time.Second, 5*time.Millisecond)

	c.Close()
	close(geo.gate)

	assert.Never(t, func() bool { return len(c.Results()) > 0 }, 5*testDebounce, testDebounce/2)
	assert.True(t, c.Closed())

	c.Input("Paris")
	assert.Never(t, func() bool { return len(geo.calls()) > 1 }, 5*testDebounce, testDebounce/2)
}

func TestController_ClearDropsInFlightResults(t *testing.T) {
	geo := &fakeGeocoder{results: []weather.GeocodeCandidate{londonCandidate}, gate: make(chan struct{})}
	c, _, _ := newController(t, geo)

	c.Input("London")
	require.Eventually(t, func() bool { return c.State() == Searching }, time.Second, 5*time.Millisecond)

	c.Clear()
	close(geo.gate)

	assert.Never(t, func() bool { return len(c.Results()) > 0 }, 5*testDebounce, testDebounce/2)
	assert.Equal(t, Idle, c.State())
}

func TestController_ParentContextCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := New(ctx, &fakeGeocoder{}, &fakeLocations{}, nil, testDebounce, logger.Nop())

	cancel()
	assert.Eventually(t, c.Closed, time.Second, 5*time.Millisecond)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "no_results", NoResults.String())

	text, err := ResultsShown.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "results", string(text))
}
