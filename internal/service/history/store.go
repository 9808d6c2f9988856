// Package history keeps a bounded record of coaching exchanges per session.
package history

import (
	"sync"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// DefaultCapacity bounds how many exchanges a session retains.
const DefaultCapacity = 20

// Store is a fixed-capacity FIFO of coaching exchanges. Once full, appending
// evicts the oldest entry. All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	entries  []interview.HistoryEntry
	capacity int
}

// NewStore creates a store that retains at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]interview.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Append records one exchange, evicting the oldest entry when full.
func (s *Store) Append(entry interview.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		n := copy(s.entries, s.entries[1:])
		s.entries = s.entries[:n]
	}
	s.entries = append(s.entries, entry)
}

// Recent returns up to k of the most recent entries in chronological order.
// The returned slice is a copy and safe to retain.
func (s *Store) Recent(k int) []interview.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k <= 0 || len(s.entries) == 0 {
		return nil
	}
	if k > len(s.entries) {
		k = len(s.entries)
	}
	out := make([]interview.HistoryEntry, k)
	copy(out, s.entries[len(s.entries)-k:])
	return out
}

// Len reports the number of retained entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}
