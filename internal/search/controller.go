package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/i474232898/weather-lookup/internal/common"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultDebounce is the quiet period before input is searched.
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrInvalidCandidate is returned by Select for candidates whose
	// coordinates do not parse.
	ErrInvalidCandidate = errors.New("invalid geocode candidate")

	// ErrNoSuchResult is returned by SelectIndex for an out-of-range index.
	ErrNoSuchResult = errors.New("no search result at index")
)

type State int

const (
	Idle State = iota
	Debouncing
	Searching
	ResultsShown
	NoResults
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Searching:
		return "searching"
	case ResultsShown:
		return "results"
	case NoResults:
		return "no_results"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Geocoder is the slice of the weather gateway the controller needs.
type Geocoder interface {
	Geocode(ctx context.Context, query string) []weather.GeocodeCandidate
}

// LocationSetter receives selected locations.
type LocationSetter interface {
	Set(loc weather.Location)
}

// Recorder keeps selected candidates as recent searches.
type Recorder interface {
	RecordSearch(ctx context.Context, c weather.GeocodeCandidate)
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State       State                      `json:"state"`
	Query       string                     `json:"query"`
	Results     []weather.GeocodeCandidate `json:"results"`
	ShowResults bool                       `json:"showResults"`
	Searching   bool                       `json:"isSearching"`
}

// Controller debounces free-text input into geocode lookups.
//
// Input restarts a timer; when it fires the pending text is propagated
// unless it equals the previously propagated text. Short text returns to
// Idle, anything else is geocoded. A lookup result is applied only while
// the controller is open and no newer lookup, Select or Clear has happened
// since it started.
type Controller struct {
	gateway   Geocoder
	locations LocationSetter
	recorder  Recorder
	debounce  time.Duration
	log       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	closed *atomic.Bool
	calls  *atomic.Int64

	mu         sync.Mutex
	state      State
	settled    State
	query      string
	timer      *time.Timer
	timerSeq   uint64
	searchSeq  uint64
	last       string
	propagated bool
	results    []weather.GeocodeCandidate
	visible    bool
}

// New builds a controller whose lifetime is bounded by ctx. recorder may be
// nil; debounce <= 0 uses DefaultDebounce.
func New(ctx context.Context, gateway Geocoder, locations LocationSetter, recorder Recorder, debounce time.Duration, log logger.Logger) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	cctx, cancel := context.WithCancel(ctx)

	c := &Controller{
		gateway:   gateway,
		locations: locations,
		recorder:  recorder,
		debounce:  debounce,
		log:       log.WithField("component", "search"),
		ctx:       cctx,
		cancel:    cancel,
		closed:    atomic.NewBool(false),
		calls:     atomic.NewInt64(0),
		results:   []weather.GeocodeCandidate{},
	}
	context.AfterFunc(cctx, c.Close)
	return c
}

// Input records a keystroke: the pending text becomes q and the debounce
// timer restarts.
func (c *Controller) Input(q string) {
	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = q
	if c.state != Debouncing {
		c.settled = c.state
	}
	c.state = Debouncing

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerSeq++
	seq := c.timerSeq
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(seq) })
}

func (c *Controller) fire(seq uint64) {
	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	if seq != c.timerSeq || c.state != Debouncing {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	q := c.query
	if c.propagated && q == c.last {
		c.state = c.settled
		c.mu.Unlock()
		return
	}
	c.last = q
	c.propagated = true

	if weather.QueryTooShort(q) {
		c.state = Idle
		c.results = []weather.GeocodeCandidate{}
		c.visible = false
		c.mu.Unlock()
		return
	}

	c.state = Searching
	c.searchSeq++
	search := c.searchSeq
	c.mu.Unlock()

	c.calls.Inc()
	results := c.gateway.Geocode(c.ctx, q)

	if c.closed.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if search != c.searchSeq {
		c.log.Debugf("dropping stale results for %q", q)
		return
	}
	if results == nil {
		results = []weather.GeocodeCandidate{}
	}
	c.results = results
	c.visible = true

	next := NoResults
	if len(results) > 0 {
		next = ResultsShown
	}
	// Typing resumed while the lookup ran; settle there once the timer
	// fires or is suppressed.
	if c.state == Debouncing {
		c.settled = next
	} else {
		c.state = next
	}
}

// Select makes cand the current location, records it as a recent search and
// resets the controller to Idle.
func (c *Controller) Select(ctx context.Context, cand weather.GeocodeCandidate) (weather.Location, error) {
	lat, err := strconv.ParseFloat(cand.Lat, 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("%w: latitude %q", ErrInvalidCandidate, cand.Lat)
	}
	lon, err := strconv.ParseFloat(cand.Lon, 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("%w: longitude %q", ErrInvalidCandidate, cand.Lon)
	}

	loc := weather.Location{
		Name:    common.ShortName(cand.DisplayName),
		Lat:     lat,
		Lon:     lon,
		Country: common.LastPart(cand.DisplayName),
	}

	c.reset()
	c.locations.Set(loc)
	if c.recorder != nil {
		c.recorder.RecordSearch(ctx, cand)
	}
	return loc, nil
}

// SelectIndex selects the i-th displayed result.
func (c *Controller) SelectIndex(ctx context.Context, i int) (weather.Location, error) {
	c.mu.Lock()
	if i < 0 || i >= len(c.results) {
		c.mu.Unlock()
		return weather.Location{}, fmt.Errorf("%w: %d", ErrNoSuchResult, i)
	}
	cand := c.results[i]
	c.mu.Unlock()

	return c.Select(ctx, cand)
}

// Clear empties the query and results and returns to Idle.
func (c *Controller) Clear() {
	c.reset()
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerSeq++
	c.searchSeq++
	c.query = ""
	c.results = []weather.GeocodeCandidate{}
	c.visible = false
	c.state = Idle
	c.settled = Idle
}

// Close tears the controller down: the pending timer stops and in-flight
// results are discarded. Safe to call more than once.
func (c *Controller) Close() {
	if !c.closed.CAS(false, true) {
		return
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) Closed() bool {
	return c.closed.Load()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Results() []weather.GeocodeCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]weather.GeocodeCandidate{}, c.results...)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.state,
		Query:       c.query,
		Results:     append([]weather.GeocodeCandidate{}, c.results...),
		ShowResults: c.visible,
		Searching:   c.state == Searching,
	}
}

// Lookups reports how many geocode calls have been issued.
func (c *Controller) Lookups() int64 {
	return c.calls.Load()
}
