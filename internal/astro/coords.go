// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// ErrInvalidObserver is returned when an observer location is out of range.
var ErrInvalidObserver = errors.New("invalid observer location")

// deltaT approximates TT-UT for the current era.
const deltaT = 69200 * time.Millisecond

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (apparent, of date unless noted)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)

	// Distance from the observer (0 for stars)
	RangeKm float64
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above the ellipsoid in meters
	Name       string  // Optional name for the site
}

// Validate reports an error wrapping ErrInvalidObserver when the latitude or
// longitude is outside the geographic range.
func (o Observer) Validate() error {
	switch {
	case math.IsNaN(o.LatDeg) || o.LatDeg < -90 || o.LatDeg > 90:
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidObserver, o.LatDeg)
	case math.IsNaN(o.LonDeg) || o.LonDeg < -180 || o.LonDeg > 180:
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidObserver, o.LonDeg)
	case math.IsNaN(o.ElevationM) || math.IsInf(o.ElevationM, 0):
		return fmt.Errorf("%w: elevation %v", ErrInvalidObserver, o.ElevationM)
	}
	return nil
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	lst := LocalSiderealTime(t, obs.LonDeg)
	az, el := HourAngleToHorizontal(lst-eq.RAdeg, eq.DecDeg, obs.LatDeg)

	return SkyCoord{
		RAdeg:   eq.RAdeg,
		DecDeg:  eq.DecDeg,
		AzDeg:   az,
		ElDeg:   el,
		RangeKm: eq.RangeKm,
	}
}

// HourAngleToHorizontal converts a local hour angle and declination to
// azimuth and altitude for the given latitude. All values in degrees.
func HourAngleToHorizontal(haDeg, decDeg, latDeg float64) (azDeg, elDeg float64) {
	lat := degToRad(latDeg)
	dec := degToRad(decDeg)
	ha := degToRad(haDeg)

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clampUnit(sinAlt))

	// At the poles or the zenith the azimuth is undefined; report north.
	den := math.Cos(alt) * math.Cos(lat)
	if math.Abs(den) < 1e-12 {
		return 0, radToDeg(alt)
	}

	cosAz := clampUnit((math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / den)
	az := math.Acos(cosAz)

	// Positive hour angle: object is west of the meridian
	if math.Sin(ha) > 0 {
		az = 2*math.Pi - az
	}

	return radToDeg(az), radToDeg(alt)
}

// HorizontalToEquatorial is the inverse of EquatorialToHorizontal: it returns
// the right ascension and declination of the direction az/el at the observer.
func HorizontalToEquatorial(azDeg, elDeg float64, obs Observer, t time.Time) (raDeg, decDeg float64) {
	lat := degToRad(obs.LatDeg)
	az := degToRad(azDeg)
	el := degToRad(elDeg)

	sinDec := math.Sin(el)*math.Sin(lat) + math.Cos(el)*math.Cos(lat)*math.Cos(az)
	dec := math.Asin(clampUnit(sinDec))

	y := -math.Sin(az) * math.Cos(el)
	x := math.Sin(el)*math.Cos(lat) - math.Cos(el)*math.Sin(lat)*math.Cos(az)
	ha := radToDeg(math.Atan2(y, x))

	return normalizeAngle360(LocalSiderealTime(t, obs.LonDeg) - ha), radToDeg(dec)
}

// NormalizeDegrees reduces an angle to [0, 360).
func NormalizeDegrees(a float64) float64 {
	return normalizeAngle360(a)
}

// LocalSiderealTime returns the local apparent sidereal time in degrees
// for a given instant and east longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichApparentSiderealTime(t) + lonDeg)
}

// greenwichApparentSiderealTime returns GAST in degrees.
func greenwichApparentSiderealTime(t time.Time) float64 {
	return normalizeAngle360(sidereal.Apparent(julianDate(t)).Angle().Deg())
}

// greenwichMeanSiderealTime returns GMST in degrees.
func greenwichMeanSiderealTime(t time.Time) float64 {
	return normalizeAngle360(sidereal.Mean(julianDate(t)).Angle().Deg())
}

// julianDate returns the Julian Date (UT) for a given time.
func julianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// julianEphemerisDate returns the Julian Ephemeris Day (TT) for a given time.
func julianEphemerisDate(t time.Time) float64 {
	return julianDate(t.Add(deltaT))
}

// JulianDate exposes the UT Julian Date for callers outside the package.
func JulianDate(t time.Time) float64 {
	return julianDate(t)
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// normalizeAngle180 normalizes an angle to (-180, 180] degrees.
func normalizeAngle180(a float64) float64 {
	a = normalizeAngle360(a)
	if a > 180 {
		a -= 360
	}
	return a
}
