package profile

import (
	"errors"
	"sync"
)

// ErrNoProfile is returned when no documents have been uploaded yet.
var ErrNoProfile = errors.New("no profile uploaded")

// Store exposes the active coaching profile to handlers and sessions.
// Sessions snapshot the profile at open; later uploads do not affect them.
type Store interface {
	Set(p Profile)
	Current() (Profile, bool)
}

// MemoryStore implements Store with a single in-memory profile.
type MemoryStore struct {
	mu      sync.RWMutex
	current Profile
	set     bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set replaces the active profile.
func (s *MemoryStore) Set(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	s.set = true
}

// Current returns the active profile, if one has been uploaded.
func (s *MemoryStore) Current() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.set
}
