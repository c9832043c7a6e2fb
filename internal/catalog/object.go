// Package catalog turns bodies, stars and satellites into uniform map
// objects and holds the read-only reference data they come from.
package catalog

import (
	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/style"
)

// Kind discriminates object variants. The numeric order is the drawing
// order: later kinds are painted on top.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
	KindSun
	KindMoon
	KindSatellite
)

// String returns the style class name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindSun:
		return "sun"
	case KindMoon:
		return "moon"
	case KindSatellite:
		return "satellite"
	default:
		return "unknown"
	}
}

// Frame tells which part of an object's coordinate is authoritative.
type Frame int

const (
	// FrameEquatorial objects carry RA/Dec only; Az/El are derived when
	// the object is projected.
	FrameEquatorial Frame = iota
	// FrameHorizontal objects already carry topocentric Az/El, as
	// ephemeris providers and SGP4 deliver them.
	FrameHorizontal
)

// Object is one observable object prepared for a single render.
type Object struct {
	ID     string // planet name, "HIP<n>" or "<dataset>_<catalogNumber>"
	Kind   Kind
	Name   string // display label
	Coord  astro.SkyCoord
	Frame  Frame
	Mag    float64
	HasMag bool

	// Override, when set, is applied above every style rule.
	Override *style.Format
}

// Reason explains why a requested object is missing from the result.
type Reason string

const (
	ReasonUnknown     Reason = "unknown"     // id not in any catalog
	ReasonMissing     Reason = "missing"     // no element set loaded for the satellite
	ReasonStale       Reason = "stale"       // element set too old
	ReasonUnavailable Reason = "unavailable" // ephemeris or propagation failed
)

// Dropped records an object left out of a render.
type Dropped struct {
	ID     string
	Reason Reason
	Err    error
}
