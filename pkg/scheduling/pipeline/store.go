package pipeline

import (
	"maps"
	"sync"
)

// ReturnValKey is the reserved variable that receives scalar operation results.
const ReturnValKey = "returnVal"

// Store is the variable context shared by the operations of one pipeline run.
// Operations never write to it; the engine merges their results after each
// step settles.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStore creates a store seeded with a copy of seed.
func NewStore(seed map[string]any) *Store {
	s := &Store{}
	s.Reset(seed)
	return s
}

// Get returns the value stored under name, or nil when absent.
func (s *Store) Get(name string) any {
	v, _ := s.Lookup(name)
	return v
}

// Lookup returns the value stored under name and whether it was present.
func (s *Store) Lookup(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[name]
	return v, ok
}

// Merge overlays values onto the store. Keys not in values are left untouched.
func (s *Store) Merge(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.values, values)
}

// SetReturnVal stores v under ReturnValKey, replacing any previous value.
func (s *Store) SetReturnVal(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[ReturnValKey] = v
}

// Reset clears the store and then copies seed into it.
func (s *Store) Reset(seed map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]any, len(seed))
	maps.Copy(s.values, seed)
}

// Snapshot returns a copy of the current variables.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

// Len returns the number of variables in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.values)
}
