package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/eqtime"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent geocentric equatorial coordinates of the
// Sun (of date, corrected for nutation and aberration).
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	ra, dec := solar.ApparentEquatorial(julianEphemerisDate(t))
	return normalizeAngle360(radToDeg(float64(ra))), radToDeg(float64(dec))
}

// SunDistanceKm returns the Earth-Sun distance in kilometers.
func SunDistanceKm(t time.Time) float64 {
	return AUToKm(solar.Radius(base.J2000Century(julianEphemerisDate(t))))
}

// SunCoord returns the Sun as a SkyCoord with range populated.
func SunCoord(t time.Time) SkyCoord {
	ra, dec := SunPosition(t)
	return SkyCoord{RAdeg: ra, DecDeg: dec, RangeKm: SunDistanceKm(t)}
}

// EquationOfTime returns apparent minus mean solar time.
func EquationOfTime(t time.Time) time.Duration {
	e := eqtime.ESmart(julianEphemerisDate(t))
	// e is an hour angle in radians; 2π rad == 24h
	return time.Duration(float64(e) / (2 * math.Pi) * float64(24*time.Hour))
}

// AngularSeparation calculates the angular separation between two points on the celestial sphere.
// All coordinates in degrees. Returns separation in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := degToRad(ra1)
	dec1Rad := degToRad(dec1)
	ra2Rad := degToRad(ra2)
	dec2Rad := degToRad(dec2)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	if a > 1 {
		a = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(a)))
}
