package catalog

import (
	"sort"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/tle"
)

// Snapshot is an immutable set of reference data shared by concurrent
// renders. Build a new one to change anything.
type Snapshot struct {
	stars          []astro.Star // brightest first
	starIndex      map[int]int
	constellations []Constellation
	membership     map[int][]string
	satellites     map[string]tle.ElementSet
	loadedAt       time.Time
}

// NewSnapshot copies its inputs into a new snapshot. When several element
// sets share an id, the one with the latest epoch is kept.
func NewSnapshot(stars []astro.Star, constellations []Constellation, sats []tle.ElementSet, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		stars:          append([]astro.Star(nil), stars...),
		starIndex:      make(map[int]int, len(stars)),
		constellations: append([]Constellation(nil), constellations...),
		membership:     make(map[int][]string),
		satellites:     make(map[string]tle.ElementSet, len(sats)),
		loadedAt:       loadedAt,
	}

	sort.SliceStable(s.stars, func(i, j int) bool { return s.stars[i].Mag < s.stars[j].Mag })
	for i, st := range s.stars {
		s.starIndex[st.HIP] = i
	}

	for _, c := range s.constellations {
		seen := make(map[int]bool)
		for _, seg := range c.Segments {
			for _, hip := range seg {
				if !seen[hip] {
					seen[hip] = true
					s.membership[hip] = append(s.membership[hip], c.Abbrev)
				}
			}
		}
	}

	for _, set := range sats {
		if old, ok := s.satellites[set.ID()]; ok && old.Epoch.After(set.Epoch) {
			continue
		}
		s.satellites[set.ID()] = set
	}

	return s
}

// DefaultSnapshot holds the built-in stars and constellation figures and
// no satellites.
func DefaultSnapshot() *Snapshot {
	return NewSnapshot(astro.DefaultStarCatalog().Stars, DefaultConstellations(), nil, time.Now())
}

// Stars returns the stars ordered brightest first. The slice must not be
// modified.
func (s *Snapshot) Stars() []astro.Star {
	return s.stars
}

// Star looks up a star by Hipparcos number.
func (s *Snapshot) Star(hip int) (astro.Star, bool) {
	i, ok := s.starIndex[hip]
	if !ok {
		return astro.Star{}, false
	}
	return s.stars[i], true
}

// Constellations returns the stick figures. The slice must not be modified.
func (s *Snapshot) Constellations() []Constellation {
	return s.constellations
}

// Membership returns the abbreviations of the figures using a star.
func (s *Snapshot) Membership(hip int) []string {
	return s.membership[hip]
}

// Satellite returns the element set for an id "<dataset>_<catalogNumber>".
func (s *Snapshot) Satellite(id string) (tle.ElementSet, bool) {
	set, ok := s.satellites[id]
	return set, ok
}

// SatelliteIDs returns all satellite ids in sorted order.
func (s *Snapshot) SatelliteIDs() []string {
	ids := make([]string, 0, len(s.satellites))
	for id := range s.satellites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SatellitesIn returns the element sets of one dataset.
func (s *Snapshot) SatellitesIn(dataset string) []tle.ElementSet {
	var out []tle.ElementSet
	for _, id := range s.SatelliteIDs() {
		if set := s.satellites[id]; set.Dataset == dataset {
			out = append(out, set)
		}
	}
	return out
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Counts returns the number of stars, constellations and satellites.
func (s *Snapshot) Counts() (stars, constellations, satellites int) {
	return len(s.stars), len(s.constellations), len(s.satellites)
}
