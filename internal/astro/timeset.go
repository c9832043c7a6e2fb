package astro

import (
	"fmt"
	"math"
	"time"
)

// TimeSet holds one instant expressed in the time systems shown on a map.
type TimeSet struct {
	Civil     time.Time // wall clock in the observer's zone
	UTC       time.Time
	LocalMean time.Time // UTC shifted by longitude/15 hours, zone "LMT"

	// ApparentSolar is the true-sun clock reading, zone "LAT". Only
	// meaningful when HasApparentSolar is set.
	ApparentSolar    time.Time
	HasApparentSolar bool
	EquationOfTime   time.Duration // apparent minus mean solar time

	ApparentSidereal time.Duration // local apparent sidereal time in [0, 24h)
	MeanSidereal     time.Duration // local mean sidereal time in [0, 24h)
}

// ResolveTimes derives civil, UTC, local mean, apparent solar and sidereal
// time for an instant at the observer. sun is the Sun's apparent equatorial
// position; when nil the apparent solar fields are left unset.
func ResolveTimes(t time.Time, obs Observer, civil *time.Location, sun *SkyCoord) TimeSet {
	if civil == nil {
		civil = time.UTC
	}
	lmtOffset := int(math.Round(obs.LonDeg * 240))

	ts := TimeSet{
		Civil:            t.In(civil),
		UTC:              t.UTC(),
		LocalMean:        t.In(time.FixedZone("LMT", lmtOffset)),
		ApparentSidereal: degreesToClock(LocalSiderealTime(t, obs.LonDeg)),
		MeanSidereal:     degreesToClock(greenwichMeanSiderealTime(t) + obs.LonDeg),
	}

	if sun == nil {
		return ts
	}

	// Apparent solar time is the Sun's local hour angle plus twelve hours.
	ha := LocalSiderealTime(t, obs.LonDeg) - sun.RAdeg
	solar := degreesToClock(ha + 180)
	eot := wrapHalfDay(solar - clockOf(ts.LocalMean))

	ts.EquationOfTime = eot
	ts.ApparentSolar = t.In(time.FixedZone("LAT", lmtOffset+int(math.Round(eot.Seconds()))))
	ts.HasApparentSolar = true
	return ts
}

// ClockString formats a time-of-day duration as hh:mm:ss.
func ClockString(d time.Duration) string {
	s := int(d.Round(time.Second) / time.Second)
	s = ((s % 86400) + 86400) % 86400
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// degreesToClock converts an angle to a time of day (15 degrees per hour).
func degreesToClock(deg float64) time.Duration {
	return time.Duration(normalizeAngle360(deg) / 360 * float64(24*time.Hour))
}

func clockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

func wrapHalfDay(d time.Duration) time.Duration {
	const day = 24 * time.Hour
	for d > day/2 {
		d -= day
	}
	for d <= -day/2 {
		d += day
	}
	return d
}
