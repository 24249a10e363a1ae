// Package state provides the last-known-value snapshot for tracked
// mixer parameters.
//
// This package is internal to KeyGlow. The sync engine records the most
// recently observed value and pushed color for every binding here; the
// root package reads the snapshot back out for its public state accessor.
//
// The main components are:
//
//   - [Snapshot]: concurrency-safe container keyed by trigger
//   - [Entry]: one tracked parameter's last-known state
//
// The snapshot is designed for concurrent access with proper
// synchronization: the engine writes under its own serialization
// boundary while other goroutines may read at any time.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/jpalmerr/keyglow/internal/colormap"
)

// Entry is the stored state of one tracked parameter.
//
// Exactly one of BoolValue or GainValue is meaningful, selected by Kind.
// Color is the value most recently pushed toward the indicator.
type Entry struct {
	Trigger   int
	Name      string
	Strip     int
	Param     string
	Indicator int
	Kind      string
	BoolValue bool
	GainValue float64
	Color     colormap.RGB
	UpdatedAt time.Time
}

// Snapshot is an in-memory, concurrency-safe store of [Entry] values
// keyed by trigger.
//
// Entries are created during engine initialization and replaced on every
// toggle or reconciliation update; the key set is fixed for the lifetime
// of a session.
type Snapshot struct {
	mu      sync.RWMutex
	entries map[int]Entry
}

// NewSnapshot creates an empty [Snapshot], immediately ready for use.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		entries: make(map[int]Entry),
	}
}

// Put stores an entry, replacing any previous entry for the same trigger.
func (s *Snapshot) Put(e Entry) {
	s.mu.Lock()
	s.entries[e.Trigger] = e
	s.mu.Unlock()
}

// Get returns the entry for the given trigger, if one exists.
func (s *Snapshot) Get(trigger int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[trigger]
	return e, ok
}

// All returns a copy of every stored entry, ordered by trigger.
//
// The returned slice is a snapshot; modifications do not affect the store.
func (s *Snapshot) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Trigger < entries[j].Trigger
	})
	return entries
}
