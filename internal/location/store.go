package location

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/atomic"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Store holds the single current location and fans every change out to its
// subscribers. The zero value is not usable; call NewStore.
type Store struct {
	// notify serializes Set so every subscriber sees updates in call order.
	notify sync.Mutex

	mu      sync.RWMutex
	current weather.Location
	has     bool
	nextID  uint64
	subs    map[uint64]*subscription
}

type subscription struct {
	fn     func(weather.Location)
	active *atomic.Bool
}

// deliver runs under Store.notify, so no lock is held while fn runs and fn
// may cancel its own subscription.
func (s *subscription) deliver(loc weather.Location) {
	if s.active.Load() {
		s.fn(loc)
	}
}

func (s *subscription) stop() {
	s.active.Store(false)
}

func NewStore() *Store {
	return &Store{subs: make(map[uint64]*subscription)}
}

// Set replaces the current location and synchronously notifies every live
// subscriber, even when the value is unchanged. Subscriber callbacks must
// not call Set themselves.
func (s *Store) Set(loc weather.Location) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.current = loc
	s.has = true
	subs := make([]*subscription, 0, len(s.subs))
	for _, id := range s.orderedIDs() {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(loc)
	}
}

// Current returns the current location; ok is false until the first Set.
func (s *Store) Current() (weather.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.has
}

// Subscribe registers fn. If a location is already set fn receives it
// before Subscribe returns. The subscription ends when ctx is done or the
// returned cancel func is called; fn is never invoked after that. fn may
// call the cancel func itself.
func (s *Store) Subscribe(ctx context.Context, fn func(weather.Location)) func() {
	sub := &subscription{fn: fn, active: atomic.NewBool(true)}

	// Holding notify keeps a concurrent Set from slipping between the
	// replay and the registration.
	s.notify.Lock()
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	loc, has := s.current, s.has
	s.mu.Unlock()

	if has {
		sub.deliver(loc)
	}
	s.notify.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			sub.stop()
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}

	stopAfter := context.AfterFunc(ctx, cancel)
	return func() {
		stopAfter()
		cancel()
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// orderedIDs returns subscription ids in registration order. Callers hold
// s.mu.
func (s *Store) orderedIDs() []uint64 {
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
