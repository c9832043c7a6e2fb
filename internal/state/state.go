// Package state holds the catalog snapshot shared by concurrent renders and
// the bookkeeping of its refreshes.
package state

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/litescript/ls-skymap/internal/catalog"
)

// EventType represents the type of refresh event.
type EventType string

const (
	EventDatasetAdded   EventType = "DATASET_ADDED"
	EventDatasetRemoved EventType = "DATASET_REMOVED"
	EventDatasetChanged EventType = "DATASET_CHANGED"
	EventRefreshFailed  EventType = "REFRESH_FAILED"
)

// Event represents a change observed at a refresh.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Dataset   string    `json:"dataset,omitempty"`
	OldCount  int       `json:"old_count,omitempty"`
	NewCount  int       `json:"new_count,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Manager publishes catalog snapshots. Readers get the current snapshot
// without locking; a refresh swaps in a new snapshot and never mutates the
// one in-flight renders hold.
type Manager struct {
	current atomic.Pointer[catalog.Snapshot]

	mu              sync.RWMutex
	lastRefresh     time.Time
	lastError       error
	refreshDuration time.Duration
	refreshes       int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:       50,
		RefreshInterval: 6 * time.Hour, // element sets are published a few times a day
	}
}

// NewManager creates a manager serving initial until the first refresh.
// initial may be nil.
func NewManager(cfg Config, initial *catalog.Snapshot) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	m := &Manager{
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
	if initial != nil {
		m.current.Store(initial)
	}
	return m
}

// Catalog returns the current snapshot, or nil before any data.
func (m *Manager) Catalog() *catalog.Snapshot {
	return m.current.Load()
}

// Update records a refresh. A non-nil snapshot replaces the current one; on
// failure (nil snapshot) the previous snapshot stays in service.
func (m *Manager) Update(snap *catalog.Snapshot, refreshDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastRefresh = now
	m.lastError = err
	m.refreshDuration = refreshDuration

	if snap == nil {
		detail := "no snapshot"
		if err != nil {
			detail = err.Error()
		}
		m.addEvent(Event{Type: EventRefreshFailed, Timestamp: now, Detail: detail})
		return
	}

	old := m.current.Swap(snap)
	m.refreshes++
	m.detectEvents(old, snap, now)
}

// detectEvents compares satellite datasets of two snapshots.
func (m *Manager) detectEvents(old, next *catalog.Snapshot, now time.Time) {
	before := datasetCounts(old)
	after := datasetCounts(next)

	for _, ds := range sortedKeys(after) {
		n := after[ds]
		prev, ok := before[ds]
		switch {
		case !ok:
			m.addEvent(Event{Type: EventDatasetAdded, Timestamp: now, Dataset: ds, NewCount: n})
		case prev != n:
			m.addEvent(Event{Type: EventDatasetChanged, Timestamp: now, Dataset: ds, OldCount: prev, NewCount: n})
		}
	}
	for _, ds := range sortedKeys(before) {
		if _, ok := after[ds]; !ok {
			m.addEvent(Event{Type: EventDatasetRemoved, Timestamp: now, Dataset: ds, OldCount: before[ds]})
		}
	}
}

func datasetCounts(s *catalog.Snapshot) map[string]int {
	counts := make(map[string]int)
	if s == nil {
		return counts
	}
	for _, id := range s.SatelliteIDs() {
		set, _ := s.Satellite(id)
		counts[set.Dataset]++
	}
	return counts
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Status is a consistent view of the refresh bookkeeping.
type Status struct {
	LastRefresh     time.Time
	LastError       error
	RefreshDuration time.Duration
	Refreshes       int
	LoadedAt        time.Time
	Stars           int
	Constellations  int
	Satellites      int
	Events          []Event
}

// Status returns the current refresh status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		LastRefresh:     m.lastRefresh,
		LastError:       m.lastError,
		RefreshDuration: m.refreshDuration,
		Refreshes:       m.refreshes,
		Events:          m.getEventsOrdered(),
	}
	if snap := m.current.Load(); snap != nil {
		st.LoadedAt = snap.LoadedAt()
		st.Stars, st.Constellations, st.Satellites = snap.Counts()
	}
	return st
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a snapshot is available.
func (m *Manager) HasData() bool {
	return m.current.Load() != nil
}
