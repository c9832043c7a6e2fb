package ephem

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{"analytic", ModeAnalytic, false},
		{"horizons", ModeHorizons, false},
		{"auto", ModeAuto, false},
		{"", ModeAnalytic, false}, // default
		{"invalid", ModeAnalytic, true},
		{"Horizons", ModeAnalytic, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseMode(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Errorf("ParseMode(%q) err = %v, want ErrUnknownMode", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q): %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("ParseMode(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeAnalytic, "analytic"},
		{ModeHorizons, "horizons"},
		{ModeAuto, "auto"},
		{Mode(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.mode.String(); got != tc.expected {
				t.Errorf("Mode(%d).String() = %q, want %q", tc.mode, got, tc.expected)
			}
		})
	}
}

func TestAnalyticProvider_SunAtGreenwichEquinoxNoon(t *testing.T) {
	p := NewAnalyticProvider()
	obs := astro.Observer{LatDeg: 51.48, LonDeg: 0}
	// 2024 March equinox is 03:06 UTC; local apparent noon is ~12:07 UTC.
	noon := time.Date(2024, 3, 20, 12, 7, 0, 0, time.UTC)

	pt, err := p.Position("sun", noon, obs)
	if err != nil {
		t.Fatalf("Position() error: %v", err)
	}
	if !pt.Valid {
		t.Fatal("Position() returned invalid point")
	}

	// Altitude at equinox noon is 90 - latitude (+ declination ~0.03°).
	if math.Abs(pt.Coord.ElDeg-(90-obs.LatDeg)) > 0.3 {
		t.Errorf("Sun altitude = %.3f°, want ~%.2f°", pt.Coord.ElDeg, 90-obs.LatDeg)
	}
	if math.Abs(pt.Coord.AzDeg-180) > 1 {
		t.Errorf("Sun azimuth = %.3f°, want ~180°", pt.Coord.AzDeg)
	}
}

func TestAnalyticProvider_Bodies(t *testing.T) {
	p := NewAnalyticProvider()
	obs := astro.Observer{LatDeg: -33.9, LonDeg: 18.4}
	now := time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)

	for _, name := range append(DefaultBodies, "mercury", "mars") {
		t.Run(name, func(t *testing.T) {
			pt, err := p.Position(name, now, obs)
			if err != nil {
				t.Fatalf("Position(%q) error: %v", name, err)
			}
			if pt.Coord.ElDeg < -90 || pt.Coord.ElDeg > 90 || pt.Coord.AzDeg < 0 || pt.Coord.AzDeg >= 360 {
				t.Errorf("Position(%q) out of range: %+v", name, pt.Coord)
			}
		})
	}
}

func TestAnalyticProvider_UnknownBody(t *testing.T) {
	p := NewAnalyticProvider()
	_, err := p.Position("vulcan", time.Now(), astro.Observer{})
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("Position(vulcan) error = %v, want ErrUnknownBody", err)
	}
	if p.Available("vulcan") {
		t.Error("Available(vulcan) = true")
	}
}

type stubProvider struct {
	name  string
	point EphemerisPoint
	err   error
	avail bool
}

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Position(string, time.Time, astro.Observer) (EphemerisPoint, error) {
	return s.point, s.err
}
func (s stubProvider) Available(string) bool { return s.avail }

func TestChain_FallsBack(t *testing.T) {
	failing := stubProvider{name: "a", err: ErrNotCached, avail: true}
	working := stubProvider{name: "b", point: EphemerisPoint{Valid: true, Coord: astro.SkyCoord{ElDeg: 12}}, avail: true}

	c := Chain{failing, working}
	if got := c.Name(); got != "a+b" {
		t.Errorf("Name() = %q, want a+b", got)
	}

	pt, err := c.Position("sun", time.Now(), astro.Observer{})
	if err != nil {
		t.Fatalf("Position() error: %v", err)
	}
	if pt.Coord.ElDeg != 12 {
		t.Errorf("Position() came from the wrong provider: %+v", pt)
	}

	_, err = Chain{failing}.Position("sun", time.Now(), astro.Observer{})
	if !errors.Is(err, ErrNotCached) {
		t.Errorf("single failing provider error = %v, want ErrNotCached", err)
	}
}

func TestNewProvider(t *testing.T) {
	if _, ok := NewProvider(ModeAuto, nil).(*AnalyticProvider); !ok {
		t.Error("NewProvider without Horizons should be analytic")
	}
	h := NewHorizonsProvider()
	if got := NewProvider(ModeHorizons, h); got != Provider(h) {
		t.Error("ModeHorizons should return the Horizons provider")
	}
	if _, ok := NewProvider(ModeAuto, h).(Chain); !ok {
		t.Error("ModeAuto should return a chain")
	}
}
