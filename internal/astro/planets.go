package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/unit"
)

// keplerElements holds mean orbital elements at J2000 and their rates per
// Julian century (Standish, "Keplerian Elements for Approximate Positions of
// the Major Planets", valid 1800-2050).
type keplerElements struct {
	a, aDot       float64 // semi-major axis (AU)
	e, eDot       float64 // eccentricity
	i, iDot       float64 // inclination (deg)
	l, lDot       float64 // mean longitude (deg)
	peri, periDot float64 // longitude of perihelion (deg)
	node, nodeDot float64 // longitude of ascending node (deg)
}

var planetElements = map[string]keplerElements{
	"mercury": {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749,
		252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	"venus": {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890,
		181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	"earth": {1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668,
		100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0},
	"mars": {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131,
		-4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	"jupiter": {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714,
		34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	"saturn": {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609,
		49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	"uranus": {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939,
		313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	"neptune": {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372,
		-55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	"pluto": {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818,
		238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// lightDaysPerAU is the light travel time across one AU, in days.
const lightDaysPerAU = 0.0057755183

// generalPrecessionDeg is the accumulated precession in ecliptic longitude
// per Julian century.
const generalPrecessionDeg = 1.3969713

// HasPlanet reports whether a planet name has orbital elements.
func HasPlanet(name string) bool {
	_, ok := planetElements[name]
	return ok && name != "earth"
}

// PlanetNames returns the planets with orbital elements in order from the Sun.
func PlanetNames() []string {
	return []string{"mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"}
}

// HeliocentricEcliptic returns the heliocentric ecliptic J2000 position in AU
// of a planet (or "earth", the Earth-Moon barycenter).
func HeliocentricEcliptic(name string, t time.Time) (Vec3, bool) {
	el, ok := planetElements[name]
	if !ok {
		return Vec3{}, false
	}
	return el.position(centuriesSinceJ2000(t)), true
}

// PlanetPosition returns the apparent geocentric equatorial coordinates of
// date for a planet, with light time applied. Range is in kilometers.
func PlanetPosition(name string, t time.Time) (SkyCoord, bool) {
	if !HasPlanet(name) {
		return SkyCoord{}, false
	}
	T := centuriesSinceJ2000(t)
	earth := planetElements["earth"].position(T)
	el := planetElements[name]

	geo := el.position(T).Sub(earth)
	tau := geo.Norm() * lightDaysPerAU
	geo = el.position(T - tau/36525).Sub(earth)

	// Precess the J2000 ecliptic longitude to date, then rotate with the
	// true obliquity of date.
	dist := geo.Norm()
	lon := math.Atan2(geo.Y, geo.X) + degToRad(generalPrecessionDeg*T)
	lat := math.Asin(clampUnit(geo.Z / dist))

	jde := julianEphemerisDate(t)
	dpsi, deps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + deps
	ra, dec := coord.EclToEq(unit.Angle(lon)+dpsi, unit.Angle(lat),
		math.Sin(float64(eps)), math.Cos(float64(eps)))

	return SkyCoord{
		RAdeg:   normalizeAngle360(radToDeg(float64(ra))),
		DecDeg:  radToDeg(float64(dec)),
		RangeKm: AUToKm(dist),
	}, true
}

func centuriesSinceJ2000(t time.Time) float64 {
	return (julianEphemerisDate(t) - 2451545.0) / 36525.0
}

func (k keplerElements) position(T float64) Vec3 {
	a := k.a + k.aDot*T
	e := k.e + k.eDot*T
	inc := degToRad(k.i + k.iDot*T)
	l := k.l + k.lDot*T
	peri := k.peri + k.periDot*T
	node := k.node + k.nodeDot*T

	w := degToRad(peri - node)
	om := degToRad(node)
	m := degToRad(normalizeAngle180(l - peri))

	ea := solveKepler(m, e)
	xp := a * (math.Cos(ea) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ea)

	cw, sw := math.Cos(w), math.Sin(w)
	co, so := math.Cos(om), math.Sin(om)
	ci, si := math.Cos(inc), math.Sin(inc)

	return Vec3{
		X: (cw*co-sw*so*ci)*xp + (-sw*co-cw*so*ci)*yp,
		Y: (cw*so+sw*co*ci)*xp + (-sw*so+cw*co*ci)*yp,
		Z: (sw*si)*xp + (cw*si)*yp,
	}
}

// solveKepler solves M = E - e sin E for E by Newton iteration (radians).
func solveKepler(m, e float64) float64 {
	ea := m + e*math.Sin(m)
	for i := 0; i < 30; i++ {
		d := (ea - e*math.Sin(ea) - m) / (1 - e*math.Cos(ea))
		ea -= d
		if math.Abs(d) < 1e-12 {
			break
		}
	}
	return ea
}
