// Package projection maps horizontal coordinates onto the map disk.
//
// The projection is azimuthal equidistant centred on the zenith: the
// distance from the centre is proportional to the zenith distance, so the
// horizon is the circle of radius R and equal altitude steps are equally
// spaced. The map is seen lying on the ground with the feet to the south:
// north is at the top, south at the bottom, east on the left and west on the
// right. Coordinates follow SVG, with y growing downwards.
package projection

import (
	"math"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/style"
)

// DefaultRadius is the horizon radius in map units.
const DefaultRadius = 90

// Disk is the projection plane.
type Disk struct {
	R float64 // horizon radius
}

// Radius returns the distance from the centre for an altitude: R at the
// horizon, 0 at the zenith, monotonically decreasing in between. Altitudes
// below the horizon map beyond R.
func (d Disk) Radius(altDeg float64) float64 {
	return d.R * (90 - altDeg) / 90
}

// XY maps altitude and azimuth to plane coordinates without clamping.
func (d Disk) XY(altDeg, azDeg float64) (x, y float64) {
	r := d.Radius(altDeg)
	az := azDeg * math.Pi / 180
	return -r * math.Sin(az), -r * math.Cos(az)
}

// Inside reports whether a plane point lies on the disk.
func (d Disk) Inside(x, y float64) bool {
	return math.Hypot(x, y) <= d.R+1e-9
}

// Point is a projected object.
type Point struct {
	ObjectID string
	Label    string
	Kind     catalog.Kind
	X, Y     float64
	Alt, Az  float64
	RangeKm  float64
	Mag      float64
	HasMag   bool
	Visible  bool
	Style    style.Format
}

// Projector projects objects for one observer and instant.
type Projector struct {
	Disk     Disk
	Observer astro.Observer
	Time     time.Time
}

// New creates a projector with the default radius.
func New(obs astro.Observer, t time.Time) Projector {
	return Projector{Disk: Disk{R: DefaultRadius}, Observer: obs, Time: t}
}

// Horizontal returns altitude and azimuth of an object, converting
// equatorial-frame objects with the local sidereal time.
func (p Projector) Horizontal(o catalog.Object) (alt, az float64) {
	if o.Frame == catalog.FrameHorizontal {
		return o.Coord.ElDeg, o.Coord.AzDeg
	}
	h := astro.EquatorialToHorizontal(o.Coord, p.Observer, p.Time)
	return h.ElDeg, h.AzDeg
}

// Project maps an object onto the disk. Objects below the horizon are
// returned with Visible false. Visible points never fall outside R, even
// when rounding puts an object at altitude 0 a hair beyond it. At the
// zenith the point is the centre whatever the azimuth.
func (p Projector) Project(o catalog.Object) Point {
	alt, az := p.Horizontal(o)
	pt := Point{
		ObjectID: o.ID,
		Label:    o.Name,
		Kind:     o.Kind,
		Alt:      alt,
		Az:       az,
		RangeKm:  o.Coord.RangeKm,
		Mag:      o.Mag,
		HasMag:   o.HasMag,
		Visible:  alt >= 0 && !math.IsNaN(alt),
	}

	pt.X, pt.Y = p.Disk.XY(alt, az)
	if pt.Visible {
		if r := math.Hypot(pt.X, pt.Y); r > p.Disk.R {
			pt.X *= p.Disk.R / r
			pt.Y *= p.Disk.R / r
		}
	}
	return pt
}

// ProjectAll projects objects, keeping their order.
func (p Projector) ProjectAll(objs []catalog.Object) []Point {
	out := make([]Point, len(objs))
	for i, o := range objs {
		out[i] = p.Project(o)
	}
	return out
}

// PathPoint is a vertex of a projected curve.
type PathPoint struct {
	X, Y  float64
	Above bool // above the horizon
}

// Path projects a curve given in equatorial coordinates. Vertices below the
// horizon are kept (beyond R) so the caller can clip the whole curve to the
// disk.
func (p Projector) Path(coords []astro.SkyCoord) []PathPoint {
	out := make([]PathPoint, len(coords))
	for i, c := range coords {
		h := astro.EquatorialToHorizontal(c, p.Observer, p.Time)
		x, y := p.Disk.XY(h.ElDeg, h.AzDeg)
		out[i] = PathPoint{X: x, Y: y, Above: h.ElDeg >= 0}
	}
	return out
}

// EclipticPath samples the ecliptic every stepDeg degrees of longitude as
// a closed curve.
func (p Projector) EclipticPath(stepDeg float64) []PathPoint {
	var coords []astro.SkyCoord
	for lon := 0.0; lon <= 360+1e-9; lon += stepDeg {
		coords = append(coords, astro.EclipticPoint(lon))
	}
	return p.Path(coords)
}

// EquatorPath samples the celestial equator every stepDeg degrees of right
// ascension as a closed curve.
func (p Projector) EquatorPath(stepDeg float64) []PathPoint {
	var coords []astro.SkyCoord
	for ra := 0.0; ra <= 360+1e-9; ra += stepDeg {
		coords = append(coords, astro.SkyCoord{RAdeg: ra})
	}
	return p.Path(coords)
}

// AnyAbove reports whether some vertex of a path is above the horizon.
func AnyAbove(path []PathPoint) bool {
	for _, pp := range path {
		if pp.Above {
			return true
		}
	}
	return false
}
