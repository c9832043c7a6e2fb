package ephem

import "testing"

func TestLookupBody(t *testing.T) {
	tests := []struct {
		name      string
		wantOK    bool
		wantNAIF  int
		wantClass BodyClass
		wantLabel string
	}{
		{"sun", true, 10, ClassSun, "Sun"},
		{"Moon", true, 301, ClassMoon, "Moon"},
		{"mars", true, 499, ClassPlanet, "Mars"},
		{"mars_barycenter", true, 4, ClassPlanet, "Mars"},
		{"pluto_barycenter", true, 9, ClassPlanet, "Pluto"},
		{"earth", false, 0, 0, ""},
		{"sun_barycenter", false, 0, 0, ""},
		{"", false, 0, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := LookupBody(tc.name)
			if ok != tc.wantOK {
				t.Fatalf("LookupBody(%q) ok = %v, want %v", tc.name, ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if b.NAIFID != tc.wantNAIF || b.Class != tc.wantClass || b.Label != tc.wantLabel {
				t.Errorf("LookupBody(%q) = %+v", tc.name, b)
			}
		})
	}
}

func TestDefaultBodiesResolve(t *testing.T) {
	for _, name := range DefaultBodies {
		if _, ok := LookupBody(name); !ok {
			t.Errorf("default body %q does not resolve", name)
		}
	}
}
