package state

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/tle"
)

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func snapshotWith(t *testing.T, datasets ...string) *catalog.Snapshot {
	t.Helper()
	var sets []tle.ElementSet
	for _, ds := range datasets {
		set, err := tle.ParseLines(ds, "ISS", issLine1, issLine2)
		if err != nil {
			t.Fatal(err)
		}
		sets = append(sets, set)
	}
	return catalog.NewSnapshot(nil, nil, sets, time.Now())
}

func TestNewManager(t *testing.T) {
	cfg := DefaultConfig()
	m := NewManager(cfg, nil)

	if m == nil {
		t.Fatal("NewManager returned nil")
	}

	if m.RefreshInterval() != cfg.RefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), cfg.RefreshInterval)
	}

	if m.HasData() || m.Catalog() != nil {
		t.Error("HasData should be false initially")
	}
}

func TestNewManager_InitialSnapshot(t *testing.T) {
	snap := catalog.DefaultSnapshot()
	m := NewManager(DefaultConfig(), snap)

	if m.Catalog() != snap {
		t.Error("Catalog() should return the initial snapshot")
	}
	st := m.Status()
	if st.Stars == 0 || st.Constellations == 0 {
		t.Errorf("Status counts = %d stars, %d constellations", st.Stars, st.Constellations)
	}
}

func TestManager_Update(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	snap := snapshotWith(t, "stations")

	m.Update(snap, 100*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}
	if m.Catalog() != snap {
		t.Error("Catalog() doesn't return the new snapshot")
	}

	st := m.Status()
	if st.RefreshDuration != 100*time.Millisecond {
		t.Errorf("RefreshDuration = %v, want 100ms", st.RefreshDuration)
	}
	if st.LastError != nil {
		t.Errorf("LastError = %v, want nil", st.LastError)
	}
	if st.Refreshes != 1 || st.Satellites != 1 {
		t.Errorf("Refreshes = %d, Satellites = %d", st.Refreshes, st.Satellites)
	}
}

func TestManager_UpdateWithErrorKeepsSnapshot(t *testing.T) {
	snap := snapshotWith(t, "stations")
	m := NewManager(DefaultConfig(), snap)

	testErr := &testError{msg: "fetch failed"}
	m.Update(nil, 50*time.Millisecond, testErr)

	if m.Catalog() != snap {
		t.Error("failed refresh replaced the snapshot")
	}

	st := m.Status()
	if st.LastError != testErr {
		t.Errorf("LastError = %v, want %v", st.LastError, testErr)
	}
	if len(st.Events) != 1 || st.Events[0].Type != EventRefreshFailed || st.Events[0].Detail != "fetch failed" {
		t.Errorf("events = %+v", st.Events)
	}
}

func TestManager_InFlightReaderKeepsOldSnapshot(t *testing.T) {
	first := snapshotWith(t, "stations")
	m := NewManager(DefaultConfig(), first)

	held := m.Catalog()
	m.Update(snapshotWith(t, "visual"), 0, nil)

	if held != first {
		t.Fatal("held pointer changed")
	}
	if _, ok := held.Satellite("stations_25544"); !ok {
		t.Error("held snapshot was mutated by the refresh")
	}
	if _, ok := m.Catalog().Satellite("visual_25544"); !ok {
		t.Error("new snapshot not served")
	}
}

func TestManager_EventDetection(t *testing.T) {
	m := NewManager(DefaultConfig(), snapshotWith(t, "stations", "weather"))

	m.Update(snapshotWith(t, "stations", "visual"), 0, nil)

	events := m.RecentEvents(10)
	got := map[EventType]string{}
	for _, e := range events {
		got[e.Type] = e.Dataset
	}
	if got[EventDatasetAdded] != "visual" {
		t.Errorf("added = %q, want visual", got[EventDatasetAdded])
	}
	if got[EventDatasetRemoved] != "weather" {
		t.Errorf("removed = %q, want weather", got[EventDatasetRemoved])
	}
	if _, ok := got[EventDatasetChanged]; ok {
		t.Error("unchanged dataset reported as changed")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig(), catalog.DefaultSnapshot())

	var wg sync.WaitGroup
	iterations := 100
	snaps := []*catalog.Snapshot{snapshotWith(t, "ds0"), snapshotWith(t, "ds1"), snapshotWith(t, "ds2")}

	// Writer goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			m.Update(snaps[i%3], time.Duration(i)*time.Millisecond, nil)
		}
	}()

	// Reader goroutines
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				snap := m.Catalog()
				_ = snap.SatelliteIDs()
				_ = m.Status()
				_ = m.RefreshInterval()
				_ = m.RecentEvents(3)
			}
		}()
	}

	wg.Wait()
}

func TestManager_SetRefreshInterval(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)

	newInterval := 30 * time.Second
	m.SetRefreshInterval(newInterval)

	if m.RefreshInterval() != newInterval {
		t.Errorf("RefreshInterval = %v, want %v", m.RefreshInterval(), newInterval)
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestManager_EventRingBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m := NewManager(cfg, nil)

	// Each update replaces the dataset: one removal and one addition.
	for i := 0; i < 10; i++ {
		m.Update(snapshotWith(t, "ds"+strconv.Itoa(i)), 0, nil)
	}

	events := m.RecentEvents(100)
	if len(events) != 5 {
		t.Errorf("events count = %d, want 5 (max)", len(events))
	}

	// Verify events are ordered chronologically
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Errorf("events not in chronological order at index %d", i)
		}
	}

	last := events[len(events)-1]
	if last.Type != EventDatasetRemoved || last.Dataset != "ds8" {
		t.Errorf("last event = %+v, want removal of ds8", last)
	}
}
