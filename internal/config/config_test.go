package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

const sampleTOML = `
bodies = ["sun", "moon", "mars_barycenter"]
earth_satellites = ["stations_25544"]
max_magnitude = 4.5
show_ecliptic = false
width = 400
height = 300
location = "Greenwich"
latitude = 51.4769
longitude = -0.0005
timezone = "Europe/London"
time = "2024-03-20T12:00:00Z"
tz = "UTC"

[Formats]
"HIP*" = "0.3, #cccccc"
stations_25544 = ", #00ff00, diamond"
`

func TestDecode(t *testing.T) {
	p, err := Decode(strings.NewReader(sampleTOML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if want := []string{"sun", "moon", "mars_barycenter"}; !reflect.DeepEqual(p.Bodies, want) {
		t.Errorf("Bodies = %v, want %v", p.Bodies, want)
	}
	if p.MaxMagnitude != 4.5 || p.Width != 400 || p.Height != 300 {
		t.Errorf("numbers = %v %d %d", p.MaxMagnitude, p.Width, p.Height)
	}
	if p.ShowEcliptic {
		t.Error("ShowEcliptic should be false")
	}
	// Keys absent from the file keep their defaults.
	if !p.ShowStars || p.StarTooltipMaxMagnitude != Defaults().StarTooltipMaxMagnitude {
		t.Error("defaults lost for absent keys")
	}
	if p.Formats["HIP*"] != "0.3, #cccccc" || len(p.Formats) != 2 {
		t.Errorf("Formats = %v", p.Formats)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDecode_UnknownKey(t *testing.T) {
	_, err := Decode(strings.NewReader("max_magnitud = 3.0\n"))
	if !errors.Is(err, ErrInvalidParam) {
		t.Errorf("err = %v, want ErrInvalidParam", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skymap.toml")
	if err := os.WriteFile(path, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Location != "Greenwich" {
		t.Errorf("Location = %q", p.Location)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestApplyOverrides(t *testing.T) {
	base := Defaults()
	base.Formats = map[string]string{"sun": "4"}

	p, err := base.ApplyOverrides(map[string]string{
		"bodies":           "sun, moon,,jupiter_barycenter",
		"max_magnitude":    "3.5",
		"show_stars":       "false",
		"width":            "640",
		"latitude":         "-33.86",
		"Formats.HIP32349": "2, #aaccff",
	})
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}

	if want := []string{"sun", "moon", "jupiter_barycenter"}; !reflect.DeepEqual(p.Bodies, want) {
		t.Errorf("Bodies = %v, want %v", p.Bodies, want)
	}
	if p.MaxMagnitude != 3.5 || p.ShowStars || p.Width != 640 || p.Latitude != -33.86 {
		t.Errorf("overrides not applied: %+v", p)
	}
	if p.Formats["HIP32349"] != "2, #aaccff" || p.Formats["sun"] != "4" {
		t.Errorf("Formats = %v", p.Formats)
	}
	if _, ok := base.Formats["HIP32349"]; ok {
		t.Error("ApplyOverrides mutated the receiver's Formats")
	}
}

func TestApplyOverrides_Errors(t *testing.T) {
	p, err := Defaults().ApplyOverrides(map[string]string{
		"width":  "wide",
		"bogus":  "1",
		"height": "200",
	})
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("err = %v, want ErrInvalidParam", err)
	}
	if !strings.Contains(err.Error(), "bogus") || !strings.Contains(err.Error(), "width") {
		t.Errorf("error should name both keys: %v", err)
	}
	if p.Height != 200 {
		t.Error("valid keys should still be applied")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"defaults", func(*Params) {}, nil},
		{"latitude", func(p *Params) { p.Latitude = 91 }, astro.ErrInvalidObserver},
		{"longitude", func(p *Params) { p.Longitude = -180.5 }, astro.ErrInvalidObserver},
		{"zero width", func(p *Params) { p.Width = 0 }, ErrInvalidParam},
		{"tz", func(p *Params) { p.TZ = "TAI" }, ErrInvalidParam},
		{"timezone", func(p *Params) { p.Timezone = "Mars/Olympus_Mons" }, ErrInvalidParam},
		{"time", func(p *Params) { p.Time = "yesterday" }, ErrInvalidParam},
		{"moon color", func(p *Params) { p.MoonColors = []string{"#12"} }, ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInstant(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Defaults()
	if got, _ := p.Instant(now); !got.Equal(now) {
		t.Errorf("empty time = %v, want now", got)
	}

	p.Time = "2024-06-21T10:30:00+02:00"
	got, err := p.Instant(now)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2024, 6, 21, 8, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Instant = %v, want %v", got, want)
	}
}

func TestKeysCoverParams(t *testing.T) {
	keys := Keys()
	if len(keys) != reflect.TypeOf(Params{}).NumField()-1 {
		t.Errorf("%d override keys for %d fields (Formats excluded)", len(keys), reflect.TypeOf(Params{}).NumField())
	}
	for _, k := range keys {
		if _, err := Defaults().ApplyOverrides(map[string]string{k: ""}); err != nil && !errors.Is(err, ErrInvalidParam) {
			t.Errorf("key %s: unexpected error type %v", k, err)
		}
	}
}
