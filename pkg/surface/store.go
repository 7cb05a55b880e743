package surface

import (
	"sync"
	"time"
)

// Store holds live control values written by an input listener.
// Readers take a Snapshot per frame and hand it to the mapper, so a
// parameter set is always computed from one consistent view.
type Store struct {
	mu      sync.RWMutex
	values  Values
	updated time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{values: make(Values)}
}

// Set records a normalized value for a control
func (s *Store) Set(device string, control int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[Key{Device: device, Control: control}] = value
	s.updated = time.Now()
}

// Value reads a single control under the read lock
func (s *Store) Value(device string, control int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[Key{Device: device, Control: control}]
	return v, ok
}

// Snapshot returns a copy of all values
func (s *Store) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Values, len(s.values))
	for k, v := range s.values {
		snap[k] = v
	}
	return snap
}

// Device returns the values of one device keyed by control number
func (s *Store) Device(device string) map[int]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]float64)
	for k, v := range s.values {
		if k.Device == device {
			out[k.Control] = v
		}
	}
	return out
}

// Len returns the number of stored controls
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Updated returns the time of the last Set, zero if none
func (s *Store) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Reset forgets every stored value
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(Values)
	s.updated = time.Time{}
}
