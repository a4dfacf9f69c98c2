// Package values holds the current field values for one form instance and
// publishes change notifications. A batch of simultaneous changes produces a
// single notification carrying the post-change snapshot, so subscribers never
// observe a half-applied batch.
package values

import (
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Change describes one notification batch: the names that changed (set or
// cleared) and a copy of the snapshot after the batch was applied.
type Change struct {
	Names  []string
	Values schema.Snapshot
}

// Store is the form-state container. All mutation goes through Set, SetBatch,
// Clear, and Reset; subscribers are invoked on the mutating goroutine after
// the store's lock is released.
type Store struct {
	mu     sync.RWMutex
	values schema.Snapshot
	subs   map[int]func(Change)
	nextID int
}

// NewStore constructs a store seeded with optional initial data. The initial
// map is copied.
func NewStore(initial schema.Snapshot) *Store {
	s := &Store{
		values: make(schema.Snapshot, len(initial)),
		subs:   make(map[int]func(Change)),
	}
	for k, v := range initial {
		s.values[k] = v
	}
	return s
}

// Get returns the current value for a field and whether it is set.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Snapshot returns a copy of the current values.
func (s *Store) Snapshot() schema.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Set updates a single field and notifies subscribers.
func (s *Store) Set(name string, value any) {
	s.SetBatch(schema.Snapshot{name: value})
}

// SetBatch applies several updates atomically and notifies subscribers once.
func (s *Store) SetBatch(updates schema.Snapshot) {
	if len(updates) == 0 {
		return
	}
	s.mu.Lock()
	names := make([]string, 0, len(updates))
	for name, value := range updates {
		s.values[name] = value
		names = append(names, name)
	}
	change := Change{Names: names, Values: s.copyLocked()}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, change)
}

// Clear removes the named fields from the snapshot. Fields that were already
// unset are skipped; when nothing was actually removed no notification fires,
// which is what lets clear-on-hide cascades terminate.
func (s *Store) Clear(names ...string) {
	if len(names) == 0 {
		return
	}
	s.mu.Lock()
	removed := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := s.values[name]; ok {
			delete(s.values, name)
			removed = append(removed, name)
		}
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return
	}
	change := Change{Names: removed, Values: s.copyLocked()}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, change)
}

// Reset replaces the entire snapshot and notifies subscribers with the union
// of old and new names.
func (s *Store) Reset(initial schema.Snapshot) {
	s.mu.Lock()
	touched := make(map[string]struct{}, len(s.values)+len(initial))
	for name := range s.values {
		touched[name] = struct{}{}
	}
	for name := range initial {
		touched[name] = struct{}{}
	}
	s.values = make(schema.Snapshot, len(initial))
	for k, v := range initial {
		s.values[k] = v
	}
	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	change := Change{Names: names, Values: s.copyLocked()}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if len(names) > 0 {
		notify(subs, change)
	}
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) copyLocked() schema.Snapshot {
	out := make(schema.Snapshot, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Store) subscribersLocked() []func(Change) {
	out := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Change), change Change) {
	for _, fn := range subs {
		fn(change)
	}
}
