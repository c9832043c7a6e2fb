package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/parallax"
	"github.com/soniakeys/unit"
)

// MoonPosition returns the apparent geocentric equatorial coordinates of the
// Moon and its distance from the Earth's centre in kilometers.
func MoonPosition(t time.Time) SkyCoord {
	jde := julianEphemerisDate(t)
	lon, lat, distKm := moonposition.Position(jde)

	dpsi, deps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + deps
	ra, dec := coord.EclToEq(lon+dpsi, lat, math.Sin(float64(eps)), math.Cos(float64(eps)))

	return SkyCoord{
		RAdeg:   normalizeAngle360(radToDeg(float64(ra))),
		DecDeg:  radToDeg(float64(dec)),
		RangeKm: distKm,
	}
}

// Topocentric applies diurnal parallax to a geocentric position with a known
// range. Positions without range (stars) are returned unchanged.
func Topocentric(geo SkyCoord, obs Observer, t time.Time) SkyCoord {
	if geo.RangeKm <= 0 {
		return geo
	}
	jde := julianEphemerisDate(t)
	s, c := globe.Earth76.ParallaxConstants(unit.AngleFromDeg(obs.LatDeg), obs.ElevationM)

	// Meeus counts longitude positive west
	ra, dec := parallax.Topocentric(
		unit.RAFromDeg(geo.RAdeg), unit.AngleFromDeg(geo.DecDeg),
		KmToAU(geo.RangeKm), s, c,
		unit.AngleFromDeg(-obs.LonDeg), jde)

	out := geo
	out.RAdeg = normalizeAngle360(radToDeg(float64(ra)))
	out.DecDeg = radToDeg(float64(dec))
	return out
}
