// Package ephem provides ephemeris data for solar-system bodies.
package ephem

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

var (
	// ErrUnknownBody is returned for names not in the body table.
	ErrUnknownBody = errors.New("unknown body")

	// ErrNotCached is returned when no fetched table covers the requested time.
	ErrNotCached = errors.New("no cached ephemeris for requested time")

	// ErrUnknownMode is returned by ParseMode for unrecognised names.
	ErrUnknownMode = errors.New("unknown ephemeris mode")
)

// EphemerisPoint represents a body position at a specific time.
type EphemerisPoint struct {
	Time  time.Time
	Coord astro.SkyCoord // RA/Dec, Az/El and range as seen by the observer
	Valid bool           // Whether this point has valid data
}

// EphemerisPath represents a sampled track over time.
type EphemerisPath struct {
	Body   string
	Points []EphemerisPoint
	Start  time.Time
	End    time.Time
}

// Provider defines the interface for ephemeris data sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Position returns the topocentric position of a body. Returns an
	// invalid point and an error if the body is unknown or unavailable.
	Position(body string, t time.Time, obs astro.Observer) (EphemerisPoint, error)

	// Available returns true if this provider can supply data for the body.
	Available(body string) bool
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeAnalytic Mode = iota // Series and Keplerian elements, no network
	ModeHorizons             // Pre-fetched JPL Horizons tables only
	ModeAuto                 // Horizons tables, falling back to analytic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAnalytic:
		return "analytic"
	case ModeHorizons:
		return "horizons"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string. The empty string selects analytic.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "analytic", "":
		return ModeAnalytic, nil
	case "horizons":
		return ModeHorizons, nil
	case "auto":
		return ModeAuto, nil
	default:
		return ModeAnalytic, fmt.Errorf("%w %q: want analytic, horizons or auto", ErrUnknownMode, s)
	}
}

// Pin returns a provider that answers every query from the Horizons tables
// current at the time of the call, so the positions of one render come from
// one table generation. Other providers are returned unchanged.
func Pin(p Provider) Provider {
	switch v := p.(type) {
	case *HorizonsProvider:
		return v.Tables()
	case Chain:
		pinned := make(Chain, len(v))
		for i, c := range v {
			pinned[i] = Pin(c)
		}
		return pinned
	}
	return p
}

// Chain tries each provider in order and returns the first valid point.
type Chain []Provider

// NewProvider assembles the provider for a mode. horizons may be nil, in
// which case every mode degrades to analytic.
func NewProvider(mode Mode, horizons *HorizonsProvider) Provider {
	analytic := NewAnalyticProvider()
	if horizons == nil {
		return analytic
	}
	switch mode {
	case ModeHorizons:
		return horizons
	case ModeAuto:
		return Chain{horizons, analytic}
	default:
		return analytic
	}
}

// Name implements Provider.
func (c Chain) Name() string {
	name := ""
	for i, p := range c {
		if i > 0 {
			name += "+"
		}
		name += p.Name()
	}
	return name
}

// Position implements Provider.
func (c Chain) Position(body string, t time.Time, obs astro.Observer) (EphemerisPoint, error) {
	err := error(ErrUnknownBody)
	for _, p := range c {
		if !p.Available(body) {
			continue
		}
		pt, perr := p.Position(body, t, obs)
		if perr == nil && pt.Valid {
			return pt, nil
		}
		err = perr
	}
	return EphemerisPoint{Valid: false}, err
}

// Available implements Provider.
func (c Chain) Available(body string) bool {
	for _, p := range c {
		if p.Available(body) {
			return true
		}
	}
	return false
}
