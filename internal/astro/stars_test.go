package astro

import (
	"math"
	"testing"
	"time"
)

func TestDefaultStarCatalog_KnownStars(t *testing.T) {
	cat := DefaultStarCatalog()

	knownStars := map[int]struct {
		name           string
		minRA, maxRA   float64
		minDec, maxDec float64
		maxMag         float64
	}{
		32349: {"Sirius", 100, 103, -18, -15, 0},
		91262: {"Vega", 278, 281, 37, 40, 0.5},
		11767: {"Polaris", 35, 40, 88, 90, 2.5},
		30438: {"Canopus", 94, 98, -54, -51, 0},
		27989: {"Betelgeuse", 87, 90, 6, 9, 1.0},
		50583: {"Algieba", 154, 156, 19, 21, 2.5},
	}

	byHIP := make(map[int]Star)
	for _, s := range cat.Stars {
		byHIP[s.HIP] = s
	}

	for hip, expected := range knownStars {
		star, found := byHIP[hip]
		if !found {
			t.Errorf("Expected HIP%d (%s) not in catalog", hip, expected.name)
			continue
		}
		if star.Name != expected.name {
			t.Errorf("HIP%d name = %q, want %q", hip, star.Name, expected.name)
		}
		if star.RAdeg < expected.minRA || star.RAdeg > expected.maxRA {
			t.Errorf("%s RA=%v, expected %v-%v", expected.name, star.RAdeg, expected.minRA, expected.maxRA)
		}
		if star.DecDeg < expected.minDec || star.DecDeg > expected.maxDec {
			t.Errorf("%s Dec=%v, expected %v-%v", expected.name, star.DecDeg, expected.minDec, expected.maxDec)
		}
		if star.Mag > expected.maxMag {
			t.Errorf("%s Mag=%v, expected < %v", expected.name, star.Mag, expected.maxMag)
		}
	}
}

func TestDefaultStarCatalog_ValidCoordinates(t *testing.T) {
	for _, star := range DefaultStarCatalog().Stars {
		if star.RAdeg < 0 || star.RAdeg >= 360 {
			t.Errorf("Star %s has invalid RA: %v", star.Label(), star.RAdeg)
		}
		if star.DecDeg < -90 || star.DecDeg > 90 {
			t.Errorf("Star %s has invalid Dec: %v", star.Label(), star.DecDeg)
		}
		if star.Mag < -2 || star.Mag > 5 {
			t.Errorf("Star %s has unusual magnitude: %v", star.Label(), star.Mag)
		}
		if star.HIP <= 0 {
			t.Errorf("Star %s has no Hipparcos number", star.Label())
		}
	}
}

func TestDefaultStarCatalog_NoDuplicates(t *testing.T) {
	seen := make(map[int]bool)
	for _, star := range DefaultStarCatalog().Stars {
		if seen[star.HIP] {
			t.Errorf("Duplicate star: %s", star.ID())
		}
		seen[star.HIP] = true
	}
}

func TestDefaultStarCatalog_IsCopy(t *testing.T) {
	cat := DefaultStarCatalog()
	cat.Stars[0].Mag = 99

	if DefaultStarCatalog().Stars[0].Mag == 99 {
		t.Error("mutating a returned catalog changed the built-in table")
	}
}

func TestStarIDAndLabel(t *testing.T) {
	tests := []struct {
		star      Star
		wantID    string
		wantLabel string
	}{
		{Star{HIP: 32349, Name: "Sirius"}, "HIP32349", "Sirius"},
		{Star{HIP: 91971}, "HIP91971", "HIP91971"},
	}
	for _, tt := range tests {
		if got := tt.star.ID(); got != tt.wantID {
			t.Errorf("ID() = %q, want %q", got, tt.wantID)
		}
		if got := tt.star.Label(); got != tt.wantLabel {
			t.Errorf("Label() = %q, want %q", got, tt.wantLabel)
		}
	}
}

func TestPrecessFromJ2000(t *testing.T) {
	// Meeus example 21.b, theta Persei, to 2028 Nov 13.19 TD. Proper motion
	// is ignored here, which accounts for a few arcseconds.
	at := time.Date(2028, 11, 13, 4, 32, 27, 0, time.UTC)
	ra, dec := PrecessFromJ2000(41.054063, 49.227750, at)

	if math.Abs(ra-41.547214) > 0.01 || math.Abs(dec-49.348483) > 0.01 {
		t.Errorf("PrecessFromJ2000 = (%.6f, %.6f), want (41.547214, 49.348483)", ra, dec)
	}

	ra, dec = PrecessFromJ2000(123.4, -45.6, time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(ra-123.4) > 1e-4 || math.Abs(dec+45.6) > 1e-4 {
		t.Errorf("precession at J2000 should be identity, got (%v, %v)", ra, dec)
	}
}
