// Package lunar computes the phase and the apparent orientation of the
// Moon's bright limb as seen by an observer.
//
// The bright limb position angle χ is measured from celestial north toward
// east. What an observer sees depends on where "up" is: the parallactic
// angle q rotates celestial north into the direction of the zenith at the
// Moon, so χ−q is the angle of the bright limb from the local vertical.
package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/parallactic"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-skymap/internal/astro"
)

// SynodicMonth is the mean length of the lunar cycle in days.
const SynodicMonth = 29.530588853

// Tilt describes the Moon as drawn on the symbol.
type Tilt struct {
	PhaseAngle  float64 // i: Sun-Moon-observer angle, degrees
	Illuminated float64 // k: lit fraction of the disk, [0, 1]
	Elongation  float64 // Sun-Moon angle seen from the observer, degrees
	Waxing      bool

	BrightLimb  float64 // χ: from celestial north toward east, [0, 360)
	Parallactic float64 // q: degrees, negative east of the meridian
	ZenithLimb  float64 // χ−q: from the zenith direction, [0, 360)

	AltDeg float64
	AzDeg  float64
}

// Rotation is the clockwise screen rotation, in degrees, that turns a
// symbol drawn with its bright limb at the top into the observed
// orientation. On screen east is to the left of up, so a positive limb
// angle is a counter-clockwise turn.
func (t Tilt) Rotation() float64 {
	return -t.ZenithLimb
}

// AgeDays estimates the days since new moon from the elongation.
func (t Tilt) AgeDays() float64 {
	e := t.Elongation
	if !t.Waxing {
		e = 360 - e
	}
	return e / 360 * SynodicMonth
}

// PhaseName returns the common name of the phase.
func (t Tilt) PhaseName() string {
	k := t.Illuminated
	switch {
	case k < 0.01:
		return "New Moon"
	case k > 0.99:
		return "Full Moon"
	case k >= 0.49 && k <= 0.51:
		if t.Waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case k < 0.5:
		if t.Waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if t.Waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// ComputeTilt returns the Moon's phase and orientation for an observer.
// The Moon's position is topocentric, which matters for the limb angle of
// a thin crescent.
func ComputeTilt(t time.Time, obs astro.Observer) (Tilt, error) {
	if err := obs.Validate(); err != nil {
		return Tilt{}, err
	}
	return TiltFrom(astro.Topocentric(astro.MoonPosition(t), obs, t), astro.SunCoord(t), t, obs)
}

// TiltFrom computes the tilt from Moon and Sun positions supplied by the
// caller, e.g. an ephemeris provider. moon should be topocentric. A missing
// range is replaced by the analytic distance.
func TiltFrom(moon, sun astro.SkyCoord, t time.Time, obs astro.Observer) (Tilt, error) {
	if err := obs.Validate(); err != nil {
		return Tilt{}, err
	}
	if moon.RangeKm <= 0 {
		moon.RangeKm = astro.MoonPosition(t).RangeKm
	}
	if sun.RangeKm <= 0 {
		sun.RangeKm = astro.SunDistanceKm(t)
	}
	ha := astro.LocalSiderealTime(t, obs.LonDeg) - moon.RAdeg

	tilt := Geometry(moon, sun, ha, obs.LatDeg)
	tilt.AzDeg, tilt.AltDeg = astro.HourAngleToHorizontal(ha, moon.DecDeg, obs.LatDeg)
	return tilt, nil
}

// Geometry computes the tilt from equatorial positions with ranges, the
// Moon's local hour angle and the observer's latitude (degrees).
func Geometry(moon, sun astro.SkyCoord, haDeg, latDeg float64) Tilt {
	dec := unit.AngleFromDeg(moon.DecDeg)
	i := moonillum.PhaseAngleEq(
		unit.RAFromDeg(moon.RAdeg), dec, moon.RangeKm,
		unit.RAFromDeg(sun.RAdeg), unit.AngleFromDeg(sun.DecDeg), sun.RangeKm)

	// Bright limb, Meeus 48.5.
	dRA := (sun.RAdeg - moon.RAdeg) * math.Pi / 180
	sinDec, cosDec := math.Sincos(moon.DecDeg * math.Pi / 180)
	sinDec0, cosDec0 := math.Sincos(sun.DecDeg * math.Pi / 180)
	chi := math.Atan2(cosDec0*math.Sin(dRA), sinDec0*cosDec-cosDec0*sinDec*math.Cos(dRA)) * 180 / math.Pi

	q := parallactic.ParallacticAngle(unit.AngleFromDeg(latDeg), dec, unit.HourAngle(haDeg*math.Pi/180)).Deg()

	cosE := sinDec*sinDec0 + cosDec*cosDec0*math.Cos(dRA)
	elong := math.Acos(math.Max(-1, math.Min(1, cosE))) * 180 / math.Pi

	return Tilt{
		PhaseAngle:  i.Deg(),
		Illuminated: base.Illuminated(i),
		Elongation:  elong,
		// The Moon is east of the Sun while waxing.
		Waxing:      math.Sin(-dRA) > 0,
		BrightLimb:  astro.NormalizeDegrees(chi),
		Parallactic: q,
		ZenithLimb:  astro.NormalizeDegrees(chi - q),
	}
}
