// Package render composes sky map, moon symbol and analemma scenes from
// render parameters and a catalog snapshot.
package render

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skymap/internal/analemma"
	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/lunar"
	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/scene"
)

// Kind names a diagram.
type Kind string

const (
	KindSkyMap   Kind = "skymap"
	KindMoon     Kind = "moon"
	KindAnalemma Kind = "analemma"
)

// ParseKind parses a diagram name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSkyMap, KindMoon, KindAnalemma:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown diagram %q", config.ErrInvalidParam, s)
}

// Renderer renders scenes. It holds no per-request state and is safe for
// concurrent use.
type Renderer struct {
	adapter *catalog.Adapter
	log     *logging.Logger
	now     func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for dropped objects and style warnings.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// WithClock sets the time source used when the parameters name no time.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// New creates a renderer resolving bodies through provider.
func New(provider ephem.Provider, opts ...Option) *Renderer {
	r := &Renderer{
		adapter: catalog.NewAdapter(provider),
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is a rendered scene plus what went into it.
type Result struct {
	Kind     Kind
	Scene    *scene.Scene
	Time     time.Time
	Observer astro.Observer
	Times    astro.TimeSet
	SunAlt   float64 // NaN when the Sun was unavailable

	Objects       []projection.Point // sky map only, in drawing order
	Dropped       []catalog.Dropped
	StyleWarnings []error

	Tilt     lunar.Tilt        // moon only
	Samples  []analemma.Sample // analemma only
	TodayIdx int               // index of the render date in Samples, -1 if none
}

// Render dispatches on the diagram kind.
func (r *Renderer) Render(kind Kind, p config.Params, snap *catalog.Snapshot) (*Result, error) {
	switch kind {
	case KindSkyMap:
		return r.SkyMap(p, snap)
	case KindMoon:
		return r.Moon(p)
	case KindAnalemma:
		return r.Analemma(p)
	}
	return nil, fmt.Errorf("%w: unknown diagram %q", config.ErrInvalidParam, kind)
}

// prepare validates the parameters and resolves the instant, the zone and
// the observer shared by every diagram. The returned adapter is pinned to
// the ephemeris tables current now and serves the rest of the render.
func (r *Renderer) prepare(p config.Params) (*Result, *time.Location, *catalog.Adapter, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, nil, err
	}
	zone, err := p.Zone()
	if err != nil {
		return nil, nil, nil, err
	}
	t, err := p.Instant(r.now())
	if err != nil {
		return nil, nil, nil, err
	}

	adapter := r.adapter.Pinned()

	res := &Result{Time: t, Observer: p.Observer(), SunAlt: math.NaN(), TodayIdx: -1}
	var sunEq *astro.SkyCoord
	if sun, ok := adapter.SunPosition(res.Observer, t); ok {
		sunEq = &sun
		res.SunAlt = sun.ElDeg
	} else {
		r.log.Warn("sun position unavailable at %s; solar time omitted", t.Format(time.RFC3339))
	}
	res.Times = astro.ResolveTimes(t, res.Observer, zone, sunEq)
	return res, zone, adapter, nil
}

// newScene applies the size and embedding hooks of the parameters.
func newScene(p config.Params, halfExtent float64) *scene.Scene {
	s := scene.New(p.Width, p.Height, halfExtent)
	s.ID = p.ID
	s.Class = p.HTMLClass
	s.X = p.X
	s.Y = p.Y
	return s
}

// claimRootID rejects a caller id that an element of the finished scene
// already uses, since hosts address both by id.
func claimRootID(s *scene.Scene) error {
	if s.ID != "" && s.Find(s.ID) != nil {
		return fmt.Errorf("%w: id %q is used by an element of the diagram", config.ErrInvalidParam, s.ID)
	}
	return nil
}

var ordinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Ordinal returns the 16-point compass direction of an azimuth.
func Ordinal(azDeg float64) string {
	if math.IsNaN(azDeg) {
		return "N/A"
	}
	i := int(math.Round(astro.NormalizeDegrees(azDeg)/22.5)) % 16
	return ordinals[i]
}

// Tooltip formats the hover text of an object.
func Tooltip(label string, alt, az float64) string {
	return fmt.Sprintf("%s\nh=%.1f° a=%.1f° %s", label, alt, az, Ordinal(az))
}
