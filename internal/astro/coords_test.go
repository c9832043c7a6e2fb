package astro

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
		tol      float64
	}{
		{
			name:     "J2000 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
			tol:      0.0001,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
			tol:      0.0001,
		},
		{
			name:     "Non-UTC zone is converted",
			time:     time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			expected: 2460310.5,
			tol:      0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := julianDate(tt.time)
			if math.Abs(got-tt.expected) > tt.tol {
				t.Errorf("julianDate() = %v, want %v (±%v)", got, tt.expected, tt.tol)
			}
		})
	}
}

func TestJulianEphemerisDate(t *testing.T) {
	when := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	gotSec := (julianEphemerisDate(when) - julianDate(when)) * 86400
	if math.Abs(gotSec-69.2) > 0.01 {
		t.Errorf("TT-UT = %.3fs, want 69.2s", gotSec)
	}
}

func TestGreenwichSiderealTime(t *testing.T) {
	t2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

	gmst := greenwichMeanSiderealTime(t2000)
	if math.Abs(gmst-280.46) > 0.1 {
		t.Errorf("GMST at J2000 = %v, want ~280.46", gmst)
	}

	// Apparent and mean differ only by the equation of the equinoxes.
	gast := greenwichApparentSiderealTime(t2000)
	if math.Abs(gast-gmst) > 0.01 {
		t.Errorf("GAST-GMST = %v°, want < 0.01°", gast-gmst)
	}
}

func TestLocalSiderealTime(t *testing.T) {
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	gast := greenwichApparentSiderealTime(testTime)
	lst0 := LocalSiderealTime(testTime, 0)
	if math.Abs(lst0-gast) > 0.001 {
		t.Errorf("LST at lon=0 should equal GAST: got %v, want %v", lst0, gast)
	}

	lst90 := LocalSiderealTime(testTime, 90)
	expected90 := math.Mod(gast+90, 360)
	if math.Abs(lst90-expected90) > 0.001 {
		t.Errorf("LST at lon=90 = %v, want %v", lst90, expected90)
	}

	for lon := -180.0; lon <= 180; lon += 30 {
		lst := LocalSiderealTime(testTime, lon)
		if lst < 0 || lst >= 360 {
			t.Errorf("LST at lon=%v out of range: %v", lon, lst)
		}
	}
}

func TestObserverValidate(t *testing.T) {
	tests := []struct {
		name    string
		obs     Observer
		wantErr bool
	}{
		{"Greenwich", Observer{LatDeg: 51.48, LonDeg: 0}, false},
		{"North pole", Observer{LatDeg: 90, LonDeg: 0}, false},
		{"Date line", Observer{LatDeg: -10, LonDeg: -180}, false},
		{"Latitude too high", Observer{LatDeg: 91, LonDeg: 0}, true},
		{"Longitude too low", Observer{LatDeg: 0, LonDeg: -180.5}, true},
		{"NaN latitude", Observer{LatDeg: math.NaN()}, true},
		{"Infinite elevation", Observer{ElevationM: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.obs.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidObserver) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidObserver", err)
			}
		})
	}
}

func TestEquatorialToHorizontal_Polaris(t *testing.T) {
	polaris := SkyCoord{RAdeg: 37.95, DecDeg: 89.26}
	observer := Observer{LatDeg: 51.48, LonDeg: 0}

	for hour := 0; hour < 24; hour += 3 {
		testTime := time.Date(2024, 6, 15, hour, 0, 0, 0, time.UTC)
		result := EquatorialToHorizontal(polaris, observer, testTime)

		if math.Abs(result.ElDeg-observer.LatDeg) > 1 {
			t.Errorf("hour %d: Polaris elevation = %v°, expected ~%v°", hour, result.ElDeg, observer.LatDeg)
		}
		az := result.AzDeg
		if az > 180 {
			az -= 360
		}
		if math.Abs(az) > 2 {
			t.Errorf("hour %d: Polaris azimuth = %v°, expected ~0°", hour, result.AzDeg)
		}
		if result.RAdeg != polaris.RAdeg || result.DecDeg != polaris.DecDeg {
			t.Error("RA/Dec should be preserved after transformation")
		}
	}
}

func TestEquatorialToHorizontal_ZenithStar(t *testing.T) {
	observer := Observer{LatDeg: 35.0, LonDeg: -117.0}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lst := LocalSiderealTime(testTime, observer.LonDeg)

	zenithStar := SkyCoord{RAdeg: lst, DecDeg: observer.LatDeg}
	result := EquatorialToHorizontal(zenithStar, observer, testTime)

	if math.Abs(result.ElDeg-90) > 1e-4 {
		t.Errorf("Zenith star elevation = %v°, expected 90°", result.ElDeg)
	}
}

func TestEquatorialToHorizontal_SouthernStar(t *testing.T) {
	southernStar := SkyCoord{RAdeg: 0, DecDeg: -60}
	observer := Observer{LatDeg: 35.0, LonDeg: -117.0}

	for hour := 0; hour < 24; hour += 6 {
		testTime := time.Date(2024, 6, 15, hour, 0, 0, 0, time.UTC)
		result := EquatorialToHorizontal(southernStar, observer, testTime)

		// Max elevation = 90 - lat + dec = -5°
		if result.ElDeg > 0 {
			t.Errorf("Star at Dec=-60° visible from 35°N at hour %d: El=%v°", hour, result.ElDeg)
		}
	}
}

func TestHourAngleToHorizontal(t *testing.T) {
	tests := []struct {
		name           string
		ha, dec, lat   float64
		wantAz, wantEl float64
	}{
		{"Meridian south of zenith", 0, 0, 51.5, 180, 38.5},
		{"Meridian north of zenith", 0, 80, 51.5, 0, 61.5},
		{"Rising on equator", -90, 0, 0, 90, 0},
		{"Setting on equator", 90, 0, 0, 270, 0},
		{"Pole star from pole", 45, 90, 90, 0, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			az, el := HourAngleToHorizontal(tt.ha, tt.dec, tt.lat)
			if math.Abs(el-tt.wantEl) > 1e-6 {
				t.Errorf("el = %v, want %v", el, tt.wantEl)
			}
			if math.Abs(az-tt.wantAz) > 1e-3 {
				t.Errorf("az = %v, want %v", az, tt.wantAz)
			}
		})
	}
}

func TestEquatorialToHorizontal_AzimuthRange(t *testing.T) {
	observer := Observer{LatDeg: 35, LonDeg: -117}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	for ra := 0.0; ra < 360; ra += 30 {
		for dec := -80.0; dec <= 80; dec += 20 {
			result := EquatorialToHorizontal(SkyCoord{RAdeg: ra, DecDeg: dec}, observer, testTime)
			if result.AzDeg < 0 || result.AzDeg >= 360 {
				t.Errorf("Azimuth out of range for RA=%v, Dec=%v: Az=%v", ra, dec, result.AzDeg)
			}
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want360, want180 float64
	}{
		{0, 0, 0},
		{370, 10, 10},
		{-10, 350, -10},
		{190, 190, -170},
		{180, 180, 180},
	}
	for _, tt := range tests {
		if got := normalizeAngle360(tt.in); math.Abs(got-tt.want360) > 1e-9 {
			t.Errorf("normalizeAngle360(%v) = %v, want %v", tt.in, got, tt.want360)
		}
		if got := normalizeAngle180(tt.in); math.Abs(got-tt.want180) > 1e-9 {
			t.Errorf("normalizeAngle180(%v) = %v, want %v", tt.in, got, tt.want180)
		}
	}
}

func TestHorizontalToEquatorial_RoundTrip(t *testing.T) {
	obs := Observer{LatDeg: 51.48, LonDeg: -0.0015}
	instant := time.Date(2024, 3, 20, 21, 0, 0, 0, time.UTC)

	for _, eq := range []SkyCoord{
		{RAdeg: 279.235, DecDeg: 38.784},
		{RAdeg: 101.287, DecDeg: -16.716},
		{RAdeg: 10, DecDeg: 80},
	} {
		h := EquatorialToHorizontal(eq, obs, instant)
		ra, dec := HorizontalToEquatorial(h.AzDeg, h.ElDeg, obs, instant)
		if math.Abs(normalizeAngle180(ra-eq.RAdeg)) > 1e-6 || math.Abs(dec-eq.DecDeg) > 1e-6 {
			t.Errorf("round trip of (%v, %v) gave (%v, %v)", eq.RAdeg, eq.DecDeg, ra, dec)
		}
	}
}
