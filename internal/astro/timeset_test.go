package astro

import (
	"testing"
	"time"
)

func TestResolveTimes_Zones(t *testing.T) {
	instant := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	obs := Observer{LatDeg: 48.2, LonDeg: 15}
	vienna := time.FixedZone("CET", 3600)

	ts := ResolveTimes(instant, obs, vienna, nil)

	if !ts.UTC.Equal(instant) || ts.UTC.Location() != time.UTC {
		t.Errorf("UTC = %v, want %v", ts.UTC, instant)
	}
	if h := ts.Civil.Hour(); h != 13 {
		t.Errorf("civil hour = %d, want 13", h)
	}
	if name, off := ts.LocalMean.Zone(); name != "LMT" || off != 3600 {
		t.Errorf("LMT zone = %s %+d, want LMT +3600", name, off)
	}
	if ts.HasApparentSolar {
		t.Error("apparent solar time set without a Sun position")
	}
	if ts.ApparentSidereal < 0 || ts.ApparentSidereal >= 24*time.Hour {
		t.Errorf("sidereal time %v out of range", ts.ApparentSidereal)
	}
}

func TestResolveTimes_NilLocationIsUTC(t *testing.T) {
	instant := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	ts := ResolveTimes(instant, Observer{}, nil, nil)
	if ts.Civil.Location() != time.UTC {
		t.Errorf("civil location = %v, want UTC", ts.Civil.Location())
	}
}

func TestResolveTimes_ApparentSolarMatchesEquationOfTime(t *testing.T) {
	obs := Observer{LatDeg: 51.48, LonDeg: -0.0015}

	for _, instant := range []time.Time{
		time.Date(2024, 2, 11, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 11, 3, 22, 15, 0, 0, time.UTC),
	} {
		sun := SunCoord(instant)
		ts := ResolveTimes(instant, obs, time.UTC, &sun)

		if !ts.HasApparentSolar {
			t.Fatalf("%v: apparent solar time missing", instant)
		}
		want := EquationOfTime(instant)
		if d := ts.EquationOfTime - want; d > 15*time.Second || d < -15*time.Second {
			t.Errorf("%v: equation of time = %v, want %v", instant, ts.EquationOfTime, want)
		}
		if got := ts.ApparentSolar.Sub(ts.LocalMean); got != 0 {
			t.Errorf("ApparentSolar and LocalMean must be the same instant, differ by %v", got)
		}
	}
}

func TestResolveTimes_NoonSunOnMeridian(t *testing.T) {
	// At apparent noon the Sun crosses the meridian: the solar clock reads 12:00.
	obs := Observer{LatDeg: 51.48, LonDeg: 0}
	eot := EquationOfTime(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC).Add(-eot)

	sun := SunCoord(noon)
	ts := ResolveTimes(noon, obs, time.UTC, &sun)

	h, m, _ := ts.ApparentSolar.Clock()
	if !(h == 12 && m == 0) && !(h == 11 && m == 59) {
		t.Errorf("apparent solar time at noon = %s, want ~12:00", ts.ApparentSolar.Format("15:04:05"))
	}
}

func TestClockString(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second + 600*time.Millisecond, "00:00:00"},
		{-time.Minute, "23:59:00"},
	}
	for _, tt := range tests {
		if got := ClockString(tt.d); got != tt.want {
			t.Errorf("ClockString(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
