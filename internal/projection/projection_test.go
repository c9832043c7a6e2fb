package projection

import (
	"math"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
)

func TestRadius_MonotoneWithEndpoints(t *testing.T) {
	d := Disk{R: DefaultRadius}

	if r := d.Radius(90); r != 0 {
		t.Errorf("Radius(90) = %v, want 0", r)
	}
	if r := d.Radius(0); r != d.R {
		t.Errorf("Radius(0) = %v, want %v", r, d.R)
	}

	prev := d.Radius(0)
	for alt := 0.5; alt <= 90; alt += 0.5 {
		r := d.Radius(alt)
		if r >= prev {
			t.Errorf("Radius not decreasing at %v: %v >= %v", alt, r, prev)
		}
		prev = r
	}
}

func TestXY_Orientation(t *testing.T) {
	d := Disk{R: 90}
	tests := []struct {
		name   string
		az     float64
		wantX  float64
		wantY  float64
	}{
		{"north up", 0, 0, -90},
		{"east left", 90, -90, 0},
		{"south down", 180, 0, 90},
		{"west right", 270, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := d.XY(0, tt.az)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("XY(0, %v) = (%v, %v), want (%v, %v)", tt.az, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func horizontal(id string, alt, az float64) catalog.Object {
	return catalog.Object{
		ID:    id,
		Kind:  catalog.KindPlanet,
		Coord: astro.SkyCoord{ElDeg: alt, AzDeg: az},
		Frame: catalog.FrameHorizontal,
	}
}

func TestProject_Culling(t *testing.T) {
	p := New(astro.Observer{LatDeg: 51.48}, time.Now())

	tests := []struct {
		alt     float64
		visible bool
	}{
		{45, true},
		{0, true},
		{-0.01, false},
		{-45, false},
	}
	for _, tt := range tests {
		pt := p.Project(horizontal("x", tt.alt, 123))
		if pt.Visible != tt.visible {
			t.Errorf("alt %v: Visible = %v, want %v", tt.alt, pt.Visible, tt.visible)
		}
		if pt.Visible && math.Hypot(pt.X, pt.Y) > p.Disk.R {
			t.Errorf("alt %v: visible point outside the disk", tt.alt)
		}
	}
}

func TestProject_ZenithAtCentre(t *testing.T) {
	p := New(astro.Observer{}, time.Now())
	for _, az := range []float64{0, 77, 270} {
		pt := p.Project(horizontal("z", 90, az))
		if math.Abs(pt.X) > 1e-9 || math.Abs(pt.Y) > 1e-9 {
			t.Errorf("zenith with az %v projected to (%v, %v)", az, pt.X, pt.Y)
		}
	}
}

func TestProject_ClampsRounding(t *testing.T) {
	p := New(astro.Observer{}, time.Now())
	// Altitude 0 computed with a tiny negative rounding error in the
	// distance must still be drawn on the horizon.
	pt := p.Project(horizontal("h", 1e-15, 200))
	if !pt.Visible || math.Hypot(pt.X, pt.Y) > p.Disk.R {
		t.Errorf("horizon point not clamped: %+v", pt)
	}
}

func TestProject_EquatorialFrame(t *testing.T) {
	obs := astro.Observer{LatDeg: 51.48, LonDeg: 0}
	at := time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)
	p := New(obs, at)

	polaris := catalog.Object{
		ID:    "HIP11767",
		Kind:  catalog.KindStar,
		Coord: astro.SkyCoord{RAdeg: 37.954, DecDeg: 89.264},
		Frame: catalog.FrameEquatorial,
	}
	pt := p.Project(polaris)

	// Polaris sits at the altitude of the latitude, due north.
	if math.Abs(pt.Alt-obs.LatDeg) > 1.0 {
		t.Errorf("Polaris altitude = %v, want ~%v", pt.Alt, obs.LatDeg)
	}
	if pt.Y >= 0 || math.Abs(pt.X) > 2 {
		t.Errorf("Polaris should be straight above the centre, got (%v, %v)", pt.X, pt.Y)
	}
}

func TestEclipticPath(t *testing.T) {
	p := New(astro.Observer{LatDeg: 51.48}, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))
	path := p.EclipticPath(2)

	if len(path) != 181 {
		t.Fatalf("got %d vertices, want 181", len(path))
	}
	first, last := path[0], path[len(path)-1]
	if math.Abs(first.X-last.X) > 1e-6 || math.Abs(first.Y-last.Y) > 1e-6 {
		t.Error("ecliptic path is not closed")
	}

	// A great circle is half above, half below the horizon.
	above := 0
	for _, pp := range path[:180] {
		if pp.Above {
			above++
		}
	}
	if above < 80 || above > 100 {
		t.Errorf("%d of 180 ecliptic vertices above the horizon", above)
	}
	if !AnyAbove(path) {
		t.Error("AnyAbove = false")
	}
}

func TestEquatorPath_MeetsHorizonEastAndWest(t *testing.T) {
	d := Disk{R: 90}
	p := Projector{Disk: d, Observer: astro.Observer{LatDeg: 40}, Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	// The equator crosses the horizon exactly east and west.
	crossings := 0
	path := p.EquatorPath(1)
	for i := 1; i < len(path); i++ {
		if path[i].Above != path[i-1].Above {
			crossings++
			x := (path[i].X + path[i-1].X) / 2
			if math.Abs(math.Abs(x)-90) > 3 {
				t.Errorf("crossing at x=%v, want near +-90", x)
			}
		}
	}
	if crossings != 2 {
		t.Errorf("got %d horizon crossings, want 2", crossings)
	}
}
