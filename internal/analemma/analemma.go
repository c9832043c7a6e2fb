// Package analemma samples the Sun at one clock time on every day of a
// year. Plotted on the sky map the samples trace the analemma figure-eight.
package analemma

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/projection"
)

// ErrBadClock is returned for a clock time outside [0, 24h).
var ErrBadClock = errors.New("clock time outside one day")

// TimeSystem selects how the daily clock time is read.
type TimeSystem int

const (
	LocalMean TimeSystem = iota // mean solar time at the observer's longitude
	UTC
	Civil // wall clock in the given location, daylight saving included
)

// ParseTimeSystem parses "LMT", "UTC" or "civil".
func ParseTimeSystem(s string) (TimeSystem, error) {
	switch s {
	case "LMT", "lmt":
		return LocalMean, nil
	case "UTC", "utc":
		return UTC, nil
	case "civil":
		return Civil, nil
	default:
		return 0, fmt.Errorf("unknown time system %q", s)
	}
}

// String returns the name ParseTimeSystem reads.
func (ts TimeSystem) String() string {
	switch ts {
	case LocalMean:
		return "LMT"
	case UTC:
		return "UTC"
	case Civil:
		return "civil"
	default:
		return "unknown"
	}
}

// Sample is the Sun on one day.
type Sample struct {
	Date time.Time // the sampled instant
	Day  int       // day of the year, from 1

	RAdeg, DecDeg  float64
	AltDeg, AzDeg  float64
	EquationOfTime time.Duration

	X, Y    float64 // position on the sky map disk
	Visible bool    // above the horizon
}

// Options control sampling.
type Options struct {
	Observer astro.Observer
	Clock    time.Duration // time of day, e.g. 12h for noon
	System   TimeSystem
	Civil    *time.Location // zone for Civil; nil means UTC
	Year     int
	Disk     projection.Disk
}

// SampleYear returns one sample per day of the year, in date order.
func SampleYear(opts Options) ([]Sample, error) {
	if err := opts.Observer.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock < 0 || opts.Clock >= 24*time.Hour {
		return nil, fmt.Errorf("%w: %v", ErrBadClock, opts.Clock)
	}
	if opts.Disk.R <= 0 {
		opts.Disk.R = projection.DefaultRadius
	}
	loc := opts.Location()
	h, mi := int(opts.Clock/time.Hour), int(opts.Clock%time.Hour/time.Minute)
	rest := opts.Clock % time.Minute

	var out []Sample
	day := time.Date(opts.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	for n := 1; day.Year() == opts.Year; n++ {
		y, m, d := day.Date()
		// Wall clock, so civil samples follow daylight saving.
		at := time.Date(y, m, d, h, mi, 0, 0, loc).Add(rest)
		out = append(out, sampleAt(at, n, opts))
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}

// Location returns the zone whose wall clock the samples are taken at.
func (opts Options) Location() *time.Location {
	switch opts.System {
	case LocalMean:
		return time.FixedZone("LMT", int(math.Round(opts.Observer.LonDeg*240)))
	case Civil:
		if opts.Civil != nil {
			return opts.Civil
		}
	}
	return time.UTC
}

func sampleAt(t time.Time, day int, opts Options) Sample {
	ra, dec := astro.SunPosition(t)
	h := astro.EquatorialToHorizontal(astro.SkyCoord{RAdeg: ra, DecDeg: dec}, opts.Observer, t)
	x, y := opts.Disk.XY(h.ElDeg, h.AzDeg)
	return Sample{
		Date:           t,
		Day:            day,
		RAdeg:          ra,
		DecDeg:         dec,
		AltDeg:         h.ElDeg,
		AzDeg:          h.AzDeg,
		EquationOfTime: astro.EquationOfTime(t),
		X:              x,
		Y:              y,
		Visible:        h.ElDeg >= 0,
	}
}

// Nearest returns the index of the sample closest in date to t, or -1 for
// no samples.
func Nearest(samples []Sample, t time.Time) int {
	best, bestD := -1, time.Duration(math.MaxInt64)
	for i, s := range samples {
		d := s.Date.Sub(t)
		if d < 0 {
			d = -d
		}
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Bounds returns the declination and equation-of-time extremes.
func Bounds(samples []Sample) (minDec, maxDec float64, minEoT, maxEoT time.Duration) {
	if len(samples) == 0 {
		return 0, 0, 0, 0
	}
	minDec, maxDec = samples[0].DecDeg, samples[0].DecDeg
	minEoT, maxEoT = samples[0].EquationOfTime, samples[0].EquationOfTime
	for _, s := range samples[1:] {
		minDec = math.Min(minDec, s.DecDeg)
		maxDec = math.Max(maxDec, s.DecDeg)
		if s.EquationOfTime < minEoT {
			minEoT = s.EquationOfTime
		}
		if s.EquationOfTime > maxEoT {
			maxEoT = s.EquationOfTime
		}
	}
	return
}
