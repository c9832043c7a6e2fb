package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

const sampleTable = `*******************************************************************************
 Date__(UT)__HR:MN     R.A._(a-apparent)__DEC.  delta      deldot
*******************************************************************************
$$SOE
 2025-Dec-05 00:00 *m  359.000000  -1.000000  1.52345678901234  -2.1234567
 2025-Dec-05 01:00 *m    1.000000   1.000000  1.52345678901234  -2.1234567
 2025-Dec-05 02:00 Cm    3.000000   3.000000  1.52345678901234  -2.1234567
$$EOE
*******************************************************************************`

func TestParseEphemerisLine(t *testing.T) {
	tests := []struct {
		line      string
		wantRA    float64
		wantDec   float64
		wantRange float64
		wantErr   bool
	}{
		{
			line:      "2025-Dec-05 00:00 *   211.123456 -10.123456  1.0  -2.1",
			wantRA:    211.123456,
			wantDec:   -10.123456,
			wantRange: astro.AU,
		},
		{
			line:    "2025-Dec-05 01:00     45.5  20.25",
			wantRA:  45.5,
			wantDec: 20.25,
		},
		{
			line:    "invalid",
			wantErr: true,
		},
		{
			line:    "2025-Dec-05 01:00 *m n.a. n.a.",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		name := tc.line
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			pt, err := parseEphemerisLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if pt.Coord.RAdeg != tc.wantRA || pt.Coord.DecDeg != tc.wantDec {
				t.Errorf("RA/Dec = %v/%v, want %v/%v", pt.Coord.RAdeg, pt.Coord.DecDeg, tc.wantRA, tc.wantDec)
			}
			if math.Abs(pt.Coord.RangeKm-tc.wantRange) > 1e-3 {
				t.Errorf("Range = %v, want %v", pt.Coord.RangeKm, tc.wantRange)
			}
		})
	}
}

func TestParseEphemerisTable(t *testing.T) {
	points, err := parseEphemerisTable(sampleTable)
	if err != nil {
		t.Fatalf("parseEphemerisTable() error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	if _, err := parseEphemerisTable("no markers here"); err == nil {
		t.Error("expected error for missing markers")
	}
}

func TestInterpolate(t *testing.T) {
	points, _ := parseEphemerisTable(sampleTable)
	base := points[0].Time

	tests := []struct {
		name    string
		at      time.Time
		wantRA  float64
		wantDec float64
		wantOK  bool
	}{
		{"on a row", base.Add(time.Hour), 1, 1, true},
		{"across RA wrap", base.Add(30 * time.Minute), 0, 0, true},
		{"between rows", base.Add(90 * time.Minute), 2, 2, true},
		{"before table", base.Add(-time.Minute), 0, 0, false},
		{"after table", base.Add(3 * time.Hour), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := interpolate(points, tc.at)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			dRA := math.Mod(c.RAdeg-tc.wantRA+540, 360) - 180
			if math.Abs(dRA) > 1e-9 || math.Abs(c.DecDeg-tc.wantDec) > 1e-9 {
				t.Errorf("interpolate() = %v/%v, want %v/%v", c.RAdeg, c.DecDeg, tc.wantRA, tc.wantDec)
			}
		})
	}
}

func TestHorizonsProvider_PrefetchAndPosition(t *testing.T) {
	var gotCommand string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCommand = r.URL.Query().Get("COMMAND")
		_ = json.NewEncoder(w).Encode(map[string]string{"result": sampleTable})
	}))
	defer srv.Close()

	p := NewHorizonsProvider(WithHorizonsURL(srv.URL), WithHorizonsClient(srv.Client()))
	obs := astro.Observer{LatDeg: 51.48, LonDeg: 0}
	start := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

	if p.Available("mars_barycenter") {
		t.Error("Available() before prefetch should be false")
	}

	if err := p.Prefetch(context.Background(), []string{"mars_barycenter"}, start, start.Add(2*time.Hour), time.Hour, obs); err != nil {
		t.Fatalf("Prefetch() error: %v", err)
	}
	if gotCommand != "'4'" {
		t.Errorf("COMMAND = %s, want '4'", gotCommand)
	}
	if !p.Available("mars_barycenter") {
		t.Error("Available() after prefetch should be true")
	}

	pt, err := p.Position("mars_barycenter", start.Add(90*time.Minute), obs)
	if err != nil {
		t.Fatalf("Position() error: %v", err)
	}
	want := astro.EquatorialToHorizontal(astro.SkyCoord{RAdeg: 2, DecDeg: 2}, obs, start.Add(90*time.Minute))
	if math.Abs(pt.Coord.ElDeg-want.ElDeg) > 1e-6 || math.Abs(pt.Coord.AzDeg-want.AzDeg) > 1e-6 {
		t.Errorf("Position() = %+v, want Az/El %v/%v", pt.Coord, want.AzDeg, want.ElDeg)
	}

	if _, err := p.Position("mars_barycenter", start.Add(5*time.Hour), obs); !errors.Is(err, ErrNotCached) {
		t.Errorf("Position() outside table error = %v, want ErrNotCached", err)
	}
	if _, err := p.Position("mars_barycenter", start, astro.Observer{LatDeg: -30}); !errors.Is(err, ErrNotCached) {
		t.Errorf("Position() for another observer error = %v, want ErrNotCached", err)
	}

	p.InvalidateCache("mars_barycenter")
	if p.Available("mars_barycenter") {
		t.Error("Available() after invalidate should be false")
	}
}

func TestHorizonsProvider_PrefetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHorizonsProvider(WithHorizonsURL(srv.URL))
	err := p.Prefetch(context.Background(), []string{"moon", "vulcan"}, time.Now(), time.Now().Add(time.Hour), time.Hour, astro.Observer{})
	if err == nil {
		t.Fatal("Prefetch() expected error")
	}
	if p.Available("moon") {
		t.Error("failed body should not be cached")
	}
}

const laterTable = `$$SOE
 2025-Dec-05 00:00 *m   19.000000  19.000000  1.52345678901234  -2.1234567
 2025-Dec-05 01:00 *m   21.000000  21.000000  1.52345678901234  -2.1234567
 2025-Dec-05 02:00 Cm   23.000000  23.000000  1.52345678901234  -2.1234567
$$EOE`

func TestHorizonsProvider_TablesKeepGeneration(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		table := sampleTable
		if calls > 1 {
			table = laterTable
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": table})
	}))
	defer srv.Close()

	p := NewHorizonsProvider(WithHorizonsURL(srv.URL), WithHorizonsClient(srv.Client()))
	obs := astro.Observer{LatDeg: 51.48, LonDeg: 0}
	start := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	at := start.Add(time.Hour)

	if err := p.Prefetch(context.Background(), []string{"mars_barycenter"}, start, start.Add(2*time.Hour), time.Hour, obs); err != nil {
		t.Fatalf("Prefetch() error: %v", err)
	}
	first := p.Tables()

	if err := p.Prefetch(context.Background(), []string{"mars_barycenter"}, start, start.Add(2*time.Hour), time.Hour, obs); err != nil {
		t.Fatalf("second Prefetch() error: %v", err)
	}
	if pt, err := p.Position("mars_barycenter", at, obs); err != nil || math.Abs(pt.Coord.DecDeg-21) > 1e-9 {
		t.Errorf("current generation Dec = %v (err %v), want 21", pt.Coord.DecDeg, err)
	}
	p.InvalidateCache("mars_barycenter")

	pt, err := first.Position("mars_barycenter", at, obs)
	if err != nil {
		t.Fatalf("Position() from first generation error: %v", err)
	}
	if math.Abs(pt.Coord.DecDeg-1) > 1e-9 {
		t.Errorf("first generation Dec = %v, want 1", pt.Coord.DecDeg)
	}
	if p.Available("mars_barycenter") {
		t.Error("provider still has mars_barycenter after invalidate")
	}
	if !first.Available("mars_barycenter") {
		t.Error("first generation lost mars_barycenter")
	}
}

func TestPin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": sampleTable})
	}))
	defer srv.Close()

	p := NewHorizonsProvider(WithHorizonsURL(srv.URL), WithHorizonsClient(srv.Client()))
	obs := astro.Observer{LatDeg: 51.48, LonDeg: 0}
	start := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	if err := p.Prefetch(context.Background(), []string{"mars_barycenter"}, start, start.Add(2*time.Hour), time.Hour, obs); err != nil {
		t.Fatalf("Prefetch() error: %v", err)
	}

	analytic := NewAnalyticProvider()
	pinned := Pin(Chain{p, analytic})
	p.InvalidateCache("mars_barycenter")

	chain, ok := pinned.(Chain)
	if !ok || len(chain) != 2 {
		t.Fatalf("Pin(Chain) = %T, want a two element Chain", pinned)
	}
	if _, ok := chain[0].(*Tables); !ok {
		t.Errorf("pinned chain[0] = %T, want *Tables", chain[0])
	}
	if chain[1] != Provider(analytic) {
		t.Errorf("pinned chain[1] = %v, want the analytic provider unchanged", chain[1])
	}

	pt, err := pinned.Position("mars_barycenter", start.Add(time.Hour), obs)
	if err != nil {
		t.Fatalf("Position() error: %v", err)
	}
	if math.Abs(pt.Coord.DecDeg-1) > 1e-9 {
		t.Errorf("pinned Dec = %v, want 1 from the Horizons table", pt.Coord.DecDeg)
	}

	if got := Pin(analytic); got != Provider(analytic) {
		t.Errorf("Pin(analytic) = %v, want it unchanged", got)
	}
}

func TestFormatStepSize(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "30 m"},
		{2 * time.Hour, "2 h"},
		{90 * time.Minute, "90 m"},
		{time.Second, "1 m"},
	}
	for _, tc := range tests {
		if got := formatStepSize(tc.d); got != tc.want {
			t.Errorf("formatStepSize(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
