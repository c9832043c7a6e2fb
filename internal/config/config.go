// Package config holds the render parameters. Parameters come from a TOML
// file, are overridden per call by query or command-line key/value pairs
// using the same key names, and are validated before rendering.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // hosts without a zoneinfo database

	"github.com/naoina/toml"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/style"
)

// ErrInvalidParam is returned for parameters that cannot be used.
var ErrInvalidParam = errors.New("invalid parameter")

// Time systems for the analemma clock time.
const (
	TZLocalMean = "LMT"
	TZUTC       = "UTC"
	TZCivil     = "civil"
)

// Params are the parameters of one render. TOML keys equal the override
// keys. Floats in the TOML file need a decimal point (max_magnitude = 5.0).
type Params struct {
	Bodies                  []string `toml:"bodies"`
	EarthSatellites         []string `toml:"earth_satellites"`
	MaxMagnitude            float64  `toml:"max_magnitude"`
	StarTooltipMaxMagnitude float64  `toml:"star_tooltip_max_magnitude"`

	ShowStars          bool `toml:"show_stars"`
	ShowTimestamp      bool `toml:"show_timestamp"`
	ShowLocation       bool `toml:"show_location"`
	ShowEcliptic       bool `toml:"show_ecliptic"`
	ShowConstellations bool `toml:"show_constellations"`

	MoonColors     []string `toml:"moon_colors"`     // dark, lit[, limb]
	AnalemmaColors []string `toml:"analemma_colors"` // curve, grid, marker

	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Location  string `toml:"location"` // caption text, e.g. the station name
	Credits   string `toml:"credits"`
	X         string `toml:"x"`
	Y         string `toml:"y"`
	HTMLClass string `toml:"html_class"`
	ID        string `toml:"id"`

	// Formats maps object ids or patterns to "size, color[, shape]".
	Formats map[string]string `toml:"Formats"`

	TZ string `toml:"tz"` // LMT, UTC or civil

	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
	Elevation float64 `toml:"elevation"` // meters
	Timezone  string  `toml:"timezone"`  // IANA name
	Time      string  `toml:"time"`      // RFC 3339; empty means now
}

// Defaults returns the parameters used for keys a request does not set.
func Defaults() Params {
	return Params{
		Bodies:                  append([]string(nil), ephem.DefaultBodies...),
		MaxMagnitude:            5.0,
		StarTooltipMaxMagnitude: 2.0,
		ShowStars:               true,
		ShowTimestamp:           true,
		ShowLocation:            true,
		ShowEcliptic:            true,
		ShowConstellations:      true,
		MoonColors:              []string{"#202020", "#ffecd5", "#808080"},
		AnalemmaColors:          []string{"#ffcc00", "#808080", "#ff4040"},
		Width:                   800,
		Height:                  800,
		TZ:                      TZLocalMean,
		Timezone:                "UTC",
	}
}

// Load reads a TOML parameter file over the defaults. Unknown keys are an
// error so typos do not go unnoticed.
func Load(path string) (Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return Params{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML parameters from r over the defaults.
func Decode(r io.Reader) (Params, error) {
	p := Defaults()
	if err := toml.NewDecoder(r).Decode(&p); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return p, nil
}

// Keys lists the override keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type setter func(p *Params, v string) error

var setters = map[string]setter{
	"bodies":                     func(p *Params, v string) error { p.Bodies = splitList(v); return nil },
	"earth_satellites":           func(p *Params, v string) error { p.EarthSatellites = splitList(v); return nil },
	"max_magnitude":              floatSetter(func(p *Params) *float64 { return &p.MaxMagnitude }),
	"star_tooltip_max_magnitude": floatSetter(func(p *Params) *float64 { return &p.StarTooltipMaxMagnitude }),
	"show_stars":                 boolSetter(func(p *Params) *bool { return &p.ShowStars }),
	"show_timestamp":             boolSetter(func(p *Params) *bool { return &p.ShowTimestamp }),
	"show_location":              boolSetter(func(p *Params) *bool { return &p.ShowLocation }),
	"show_ecliptic":              boolSetter(func(p *Params) *bool { return &p.ShowEcliptic }),
	"show_constellations":        boolSetter(func(p *Params) *bool { return &p.ShowConstellations }),
	"moon_colors":                func(p *Params, v string) error { p.MoonColors = splitList(v); return nil },
	"analemma_colors":            func(p *Params, v string) error { p.AnalemmaColors = splitList(v); return nil },
	"width":                      intSetter(func(p *Params) *int { return &p.Width }),
	"height":                     intSetter(func(p *Params) *int { return &p.Height }),
	"location":                   func(p *Params, v string) error { p.Location = v; return nil },
	"credits":                    func(p *Params, v string) error { p.Credits = v; return nil },
	"x":                          func(p *Params, v string) error { p.X = v; return nil },
	"y":                          func(p *Params, v string) error { p.Y = v; return nil },
	"html_class":                 func(p *Params, v string) error { p.HTMLClass = v; return nil },
	"id":                         func(p *Params, v string) error { p.ID = v; return nil },
	"tz":                         func(p *Params, v string) error { p.TZ = v; return nil },
	"latitude":                   floatSetter(func(p *Params) *float64 { return &p.Latitude }),
	"longitude":                  floatSetter(func(p *Params) *float64 { return &p.Longitude }),
	"elevation":                  floatSetter(func(p *Params) *float64 { return &p.Elevation }),
	"timezone":                   func(p *Params, v string) error { p.Timezone = v; return nil },
	"time":                       func(p *Params, v string) error { p.Time = v; return nil },
}

func floatSetter(field func(*Params) *float64) setter {
	return func(p *Params, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return err
		}
		*field(p) = f
		return nil
	}
}

func intSetter(field func(*Params) *int) setter {
	return func(p *Params, v string) error {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(p) = i
		return nil
	}
}

func boolSetter(field func(*Params) *bool) setter {
	return func(p *Params, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(p) = b
		return nil
	}
}

// splitList splits a comma separated override, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ApplyOverrides returns a copy of p with the given keys replaced. Keys of
// the form "Formats.<id-or-pattern>" add or replace a format rule. Unknown
// keys and unparsable values are reported together; valid keys are still
// applied.
func (p Params) ApplyOverrides(overrides map[string]string) (Params, error) {
	out := p
	out.Formats = make(map[string]string, len(p.Formats))
	for k, v := range p.Formats {
		out.Formats[k] = v
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value := overrides[key]
		if rule, ok := strings.CutPrefix(key, "Formats."); ok && rule != "" {
			out.Formats[rule] = value
			continue
		}
		set, ok := setters[key]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: unknown key %q", ErrInvalidParam, key))
			continue
		}
		if err := set(&out, value); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidParam, key, value, err))
		}
	}
	return out, errors.Join(errs...)
}

// Validate checks ranges and formats. Errors wrap ErrInvalidParam, or
// astro.ErrInvalidObserver for an out-of-range location.
func (p Params) Validate() error {
	if err := p.Observer().Validate(); err != nil {
		return err
	}

	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParam}, args...)...))
	}

	if p.Width <= 0 || p.Height <= 0 {
		bad("size %dx%d must be positive", p.Width, p.Height)
	}
	for name, v := range map[string]float64{
		"max_magnitude":              p.MaxMagnitude,
		"star_tooltip_max_magnitude": p.StarTooltipMaxMagnitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad("%s is not a number", name)
		}
	}
	switch p.TZ {
	case TZLocalMean, TZUTC, TZCivil:
	default:
		bad("tz %q: want %s, %s or %s", p.TZ, TZLocalMean, TZUTC, TZCivil)
	}
	if _, err := p.Zone(); err != nil {
		errs = append(errs, err)
	}
	if _, err := p.Instant(time.Now()); err != nil {
		errs = append(errs, err)
	}
	for i, c := range p.MoonColors {
		if !style.ValidColor(c) {
			bad("moon_colors[%d] %q", i, c)
		}
	}
	for i, c := range p.AnalemmaColors {
		if !style.ValidColor(c) {
			bad("analemma_colors[%d] %q", i, c)
		}
	}
	return errors.Join(errs...)
}

// Observer returns the observer location.
func (p Params) Observer() astro.Observer {
	return astro.Observer{
		LatDeg:     p.Latitude,
		LonDeg:     p.Longitude,
		ElevationM: p.Elevation,
		Name:       p.Location,
	}
}

// Zone loads the civil time zone; an empty name is UTC.
func (p Params) Zone() (*time.Location, error) {
	if p.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidParam, p.Timezone, err)
	}
	return loc, nil
}

// Instant returns the render time, or now when no time is set.
func (p Params) Instant(now time.Time) (time.Time, error) {
	if p.Time == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, p.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q: %v", ErrInvalidParam, p.Time, err)
	}
	return t, nil
}

// Styles compiles the format rules. Bad rules are skipped and returned as
// warnings.
func (p Params) Styles() (*style.Resolver, []error) {
	return style.Compile(p.Formats)
}
