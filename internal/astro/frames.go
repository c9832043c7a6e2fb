package astro

import (
	"math"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Obliquity is the Earth's axial tilt (J2000 epoch) in radians.
const obliquityRad = 23.439291 * math.Pi / 180

// EquatorialToEcliptic converts equatorial XYZ to ecliptic XYZ.
// Input is in any units (km, AU, etc); output is in the same units.
func EquatorialToEcliptic(eq Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial converts ecliptic XYZ to equatorial XYZ.
func EclipticToEquatorial(ecl Vec3) Vec3 {
	cosE := math.Cos(obliquityRad)
	sinE := math.Sin(obliquityRad)

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// VecToRADec returns the right ascension and declination (degrees) of an
// equatorial vector, along with its length.
func VecToRADec(v Vec3) (raDeg, decDeg, r float64) {
	r = v.Norm()
	if r == 0 {
		return 0, 0, 0
	}
	raDeg = normalizeAngle360(radToDeg(math.Atan2(v.Y, v.X)))
	decDeg = radToDeg(math.Asin(clampUnit(v.Z / r)))
	return raDeg, decDeg, r
}

// EclipticPoint returns the equatorial coordinates of the point on the
// ecliptic at the given longitude (degrees).
func EclipticPoint(lonDeg float64) SkyCoord {
	l := degToRad(lonDeg)
	ra, dec, _ := VecToRADec(EclipticToEquatorial(Vec3{X: math.Cos(l), Y: math.Sin(l)}))
	return SkyCoord{RAdeg: ra, DecDeg: dec}
}

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}
