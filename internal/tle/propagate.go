package tle

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/litescript/ls-skymap/internal/astro"
)

// Propagate runs SGP4 for the element set at t and returns the satellite's
// topocentric position for the observer: Az/El and range from the look
// angles, RA/Dec derived from them. Stale elements and non-finite results
// are reported as errors; the propagator is never allowed to panic through.
func Propagate(e ElementSet, t time.Time, obs astro.Observer) (coord astro.SkyCoord, err error) {
	if age := e.Age(t); age > MaxElementAge {
		return astro.SkyCoord{}, fmt.Errorf("%w: %s epoch %s is %.0f days from %s",
			ErrStale, e.ID(), e.Epoch.Format(time.RFC3339), age.Hours()/24, t.UTC().Format(time.RFC3339))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrPropagation, e.ID(), r)
		}
	}()

	sat := satellite.TLEToSat(e.Line1, e.Line2, satellite.GravityWGS72)

	u := t.UTC()
	year, month, day := u.Date()
	hour, min, sec := u.Clock()

	pos, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	if !finite(pos.X, pos.Y, pos.Z) || (pos.X == 0 && pos.Y == 0 && pos.Z == 0) {
		return astro.SkyCoord{}, fmt.Errorf("%w: %s: non-finite position", ErrPropagation, e.ID())
	}

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	site := satellite.LatLong{
		Latitude:  obs.LatDeg * math.Pi / 180,
		Longitude: obs.LonDeg * math.Pi / 180,
	}
	look := satellite.ECIToLookAngles(pos, site, obs.ElevationM/1000, jd)
	if !finite(look.Az, look.El, look.Rg) {
		return astro.SkyCoord{}, fmt.Errorf("%w: %s: non-finite look angles", ErrPropagation, e.ID())
	}

	az := astro.NormalizeDegrees(look.Az * 180 / math.Pi)
	el := look.El * 180 / math.Pi
	ra, dec := astro.HorizontalToEquatorial(az, el, obs, t)

	return astro.SkyCoord{
		RAdeg:   ra,
		DecDeg:  dec,
		AzDeg:   az,
		ElDeg:   el,
		RangeKm: look.Rg,
	}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
