package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	SavedLocationsKey = "weatherApp_savedLocations"
	RecentSearchesKey = "weatherApp_recentSearches"

	MaxSaved  = 10
	MaxRecent = 5
)

// CurrentLocator exposes the current location, if any.
type CurrentLocator interface {
	Current() (weather.Location, bool)
}

// Store keeps the user's saved locations and recent searches, persisted to
// a KV on every change. Persistence failures are logged; the in-memory
// collections stay authoritative.
type Store struct {
	mu      sync.RWMutex
	kv      store.KV
	current CurrentLocator
	log     logger.Logger

	saved  []weather.SavedLocation
	recent []weather.GeocodeCandidate

	now   func() time.Time
	newID func() string
}

// New loads both collections from kv. Absent or corrupt entries load as
// empty.
func New(ctx context.Context, kv store.KV, current CurrentLocator, log logger.Logger) *Store {
	s := &Store{
		kv:      kv,
		current: current,
		log:     log.WithField("component", "favorites"),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}

	s.saved = load[weather.SavedLocation](ctx, s, SavedLocationsKey)
	s.recent = load[weather.GeocodeCandidate](ctx, s, RecentSearchesKey)
	if len(s.saved) > MaxSaved {
		s.saved = s.saved[:MaxSaved]
	}
	if len(s.recent) > MaxRecent {
		s.recent = s.recent[:MaxRecent]
	}

	return s
}

func load[T any](ctx context.Context, s *Store, key string) []T {
	out := []T{}

	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warnf("failed to load %s: %v", key, err)
		}
		return out
	}

	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		s.log.Debugf("discarding unreadable %s: %v", key, err)
		return []T{}
	}
	return out
}

// SaveCurrentLocation saves the current location at the head of the list.
// It is a no-op, returning false, when no location is set or one within
// 0.01° is already saved.
func (s *Store) SaveCurrentLocation(ctx context.Context) (weather.SavedLocation, bool) {
	loc, ok := s.current.Current()
	if !ok {
		return weather.SavedLocation{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.saved {
		if existing.Location.Near(loc) {
			return weather.SavedLocation{}, false
		}
	}

	entry := weather.SavedLocation{
		Location: loc,
		ID:       s.newID(),
		SavedAt:  s.now(),
	}

	next := make([]weather.SavedLocation, 0, len(s.saved)+1)
	next = append(next, entry)
	next = append(next, s.saved...)
	if len(next) > MaxSaved {
		next = next[:MaxSaved]
	}
	s.saved = next

	s.persist(ctx, SavedLocationsKey, s.saved)
	return entry, true
}

// Remove drops the saved location with id. Unknown ids are ignored.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]weather.SavedLocation, 0, len(s.saved))
	for _, l := range s.saved {
		if l.ID != id {
			next = append(next, l)
		}
	}
	s.saved = next

	s.persist(ctx, SavedLocationsKey, s.saved)
}

// RecordSearch moves c to the head of the recent searches.
func (s *Store) RecordSearch(ctx context.Context, c weather.GeocodeCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]weather.GeocodeCandidate, 0, len(s.recent)+1)
	next = append(next, c)
	for _, r := range s.recent {
		if r.PlaceID != c.PlaceID {
			next = append(next, r)
		}
	}
	if len(next) > MaxRecent {
		next = next[:MaxRecent]
	}
	s.recent = next

	s.persist(ctx, RecentSearchesKey, s.recent)
}

// Saved returns a copy of the saved locations, most recent first.
func (s *Store) Saved() []weather.SavedLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]weather.SavedLocation{}, s.saved...)
}

// Recent returns a copy of the recent searches, most recent first.
func (s *Store) Recent() []weather.GeocodeCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]weather.GeocodeCandidate{}, s.recent...)
}

// Find looks a saved location up by id.
func (s *Store) Find(id string) (weather.SavedLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.saved {
		if l.ID == id {
			return l, true
		}
	}
	return weather.SavedLocation{}, false
}

// persist writes v under key. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("failed to encode %s: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.log.Errorf("failed to persist %s: %v", key, err)
	}
}
