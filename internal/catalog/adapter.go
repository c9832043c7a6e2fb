package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/tle"
)

// Request selects the objects for one render.
type Request struct {
	Bodies       []string // body names, e.g. "sun", "mars_barycenter"
	Satellites   []string // "<dataset>_<catalogNumber>"
	ShowStars    bool
	MaxMagnitude float64
	Observer     astro.Observer
	Time         time.Time
}

// Result is the adapter output.
type Result struct {
	Objects []Object
	Dropped []Dropped
}

// Adapter normalizes bodies, stars and satellites into Objects.
type Adapter struct {
	provider ephem.Provider
}

// NewAdapter creates an adapter resolving bodies through p.
func NewAdapter(p ephem.Provider) *Adapter {
	return &Adapter{provider: p}
}

// Pinned returns an adapter whose Horizons tables stay fixed at the current
// generation, for the queries of a single render.
func (a *Adapter) Pinned() *Adapter {
	return &Adapter{provider: ephem.Pin(a.provider)}
}

// Collect resolves every requested object. Objects that cannot be resolved
// are reported in Dropped and left out; Collect itself never fails.
// Output order is bodies as requested, stars brightest first, then
// satellites as requested.
func (a *Adapter) Collect(snap *Snapshot, req Request) Result {
	var res Result
	seen := make(map[string]bool)

	for _, name := range req.Bodies {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		obj, d, ok := a.body(name, req)
		if !ok {
			res.Dropped = append(res.Dropped, d)
			continue
		}
		res.Objects = append(res.Objects, obj)
	}

	if req.ShowStars && snap != nil {
		for _, s := range FilterStars(snap.Stars(), req.MaxMagnitude) {
			res.Objects = append(res.Objects, Object{
				ID:     s.ID(),
				Kind:   KindStar,
				Name:   s.Label(),
				Coord:  s.OfDate(req.Time),
				Frame:  FrameEquatorial,
				Mag:    s.Mag,
				HasMag: true,
			})
		}
	}

	for _, id := range req.Satellites {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		obj, d, ok := satellite(snap, id, req)
		if !ok {
			res.Dropped = append(res.Dropped, d)
			continue
		}
		res.Objects = append(res.Objects, obj)
	}

	return res
}

func (a *Adapter) body(name string, req Request) (Object, Dropped, bool) {
	b, ok := ephem.LookupBody(name)
	if !ok || a.provider == nil || !a.provider.Available(name) {
		return Object{}, Dropped{ID: name, Reason: ReasonUnknown, Err: fmt.Errorf("%w: %q", ephem.ErrUnknownBody, name)}, false
	}

	pt, err := a.provider.Position(name, req.Time, req.Observer)
	if err != nil || !pt.Valid {
		if err == nil {
			err = errors.New("invalid ephemeris point")
		}
		return Object{}, Dropped{ID: name, Reason: ReasonUnavailable, Err: err}, false
	}

	kind := KindPlanet
	switch b.Class {
	case ephem.ClassSun:
		kind = KindSun
	case ephem.ClassMoon:
		kind = KindMoon
	}

	return Object{
		ID:    b.Name,
		Kind:  kind,
		Name:  b.Label,
		Coord: pt.Coord,
		Frame: FrameHorizontal,
	}, Dropped{}, true
}

func satellite(snap *Snapshot, id string, req Request) (Object, Dropped, bool) {
	if snap == nil {
		return Object{}, Dropped{ID: id, Reason: ReasonMissing, Err: errors.New("no catalog")}, false
	}
	set, ok := snap.Satellite(id)
	if !ok {
		return Object{}, Dropped{ID: id, Reason: ReasonMissing, Err: fmt.Errorf("no element set for %s", id)}, false
	}

	coord, err := tle.Propagate(set, req.Time, req.Observer)
	if err != nil {
		reason := ReasonUnavailable
		if errors.Is(err, tle.ErrStale) {
			reason = ReasonStale
		}
		return Object{}, Dropped{ID: id, Reason: reason, Err: err}, false
	}

	return Object{
		ID:    id,
		Kind:  KindSatellite,
		Name:  set.Label(),
		Coord: coord,
		Frame: FrameHorizontal,
	}, Dropped{}, true
}

// SunPosition returns the Sun as seen by the observer, for time captions and
// the sky background. ok is false when the provider cannot supply it.
func (a *Adapter) SunPosition(obs astro.Observer, t time.Time) (astro.SkyCoord, bool) {
	return a.position("sun", obs, t)
}

// MoonPosition returns the Moon as seen by the observer.
func (a *Adapter) MoonPosition(obs astro.Observer, t time.Time) (astro.SkyCoord, bool) {
	return a.position("moon", obs, t)
}

func (a *Adapter) position(body string, obs astro.Observer, t time.Time) (astro.SkyCoord, bool) {
	if a.provider == nil {
		return astro.SkyCoord{}, false
	}
	pt, err := a.provider.Position(body, t, obs)
	if err != nil || !pt.Valid {
		return astro.SkyCoord{}, false
	}
	return pt.Coord, true
}
