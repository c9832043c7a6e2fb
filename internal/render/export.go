package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

// Export is the JSON-serializable representation of a render.
type Export struct {
	Kind      Kind           `json:"kind"`
	Time      time.Time      `json:"time"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Elevation float64        `json:"elevation_m"`
	Times     TimesExport    `json:"times"`
	SunAlt    *float64       `json:"sun_altitude,omitempty"`
	Objects   []ObjectExport `json:"objects,omitempty"`
	Dropped   []DropExport   `json:"dropped,omitempty"`
	Warnings  []string       `json:"style_warnings,omitempty"`
	Moon      *MoonExport    `json:"moon,omitempty"`
	Analemma  *AnalemmaStats `json:"analemma,omitempty"`
}

// TimesExport holds the instant in every time system.
type TimesExport struct {
	Civil            time.Time `json:"civil"`
	UTC              time.Time `json:"utc"`
	LocalMean        string    `json:"local_mean"`
	ApparentSolar    string    `json:"apparent_solar,omitempty"`
	EquationOfTime   float64   `json:"equation_of_time_minutes"`
	ApparentSidereal string    `json:"apparent_sidereal"`
}

// ObjectExport is a drawn object.
type ObjectExport struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Alt      float64  `json:"altitude"`
	Az       float64  `json:"azimuth"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Mag      *float64 `json:"magnitude,omitempty"`
	Distance float64  `json:"distance_km,omitempty"`
	Format   string   `json:"format"`
}

// DropExport is an object left off the map.
type DropExport struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// MoonExport describes the moon symbol.
type MoonExport struct {
	Phase       string  `json:"phase"`
	Illuminated float64 `json:"illuminated"`
	AgeDays     float64 `json:"age_days"`
	Waxing      bool    `json:"waxing"`
	BrightLimb  float64 `json:"bright_limb_angle"`
	Parallactic float64 `json:"parallactic_angle"`
	ZenithLimb  float64 `json:"zenith_limb_angle"`
	Alt         float64 `json:"altitude"`
	Az          float64 `json:"azimuth"`
}

// AnalemmaStats summarizes the sampled year.
type AnalemmaStats struct {
	Samples    int     `json:"samples"`
	MinDec     float64 `json:"min_declination"`
	MaxDec     float64 `json:"max_declination"`
	MinEoT     float64 `json:"min_equation_of_time_minutes"`
	MaxEoT     float64 `json:"max_equation_of_time_minutes"`
	TodayDec   float64 `json:"today_declination"`
	TodayEoT   float64 `json:"today_equation_of_time_minutes"`
	TodayAlt   float64 `json:"today_altitude"`
	TodayAz    float64 `json:"today_azimuth"`
	TodayShown bool    `json:"today_shown"`
}

// ExportResult converts a render result to its exportable form.
func ExportResult(res *Result) *Export {
	ts := res.Times
	e := &Export{
		Kind:      res.Kind,
		Time:      res.Time.UTC(),
		Latitude:  res.Observer.LatDeg,
		Longitude: res.Observer.LonDeg,
		Elevation: res.Observer.ElevationM,
		Times: TimesExport{
			Civil:            ts.Civil,
			UTC:              ts.UTC,
			LocalMean:        ts.LocalMean.Format("15:04:05"),
			EquationOfTime:   ts.EquationOfTime.Minutes(),
			ApparentSidereal: astro.ClockString(ts.ApparentSidereal),
		},
	}
	if ts.HasApparentSolar {
		e.Times.ApparentSolar = ts.ApparentSolar.Format("15:04:05")
	}
	if alt := res.SunAlt; !math.IsNaN(alt) {
		e.SunAlt = &alt
	}

	for _, pt := range res.Objects {
		o := ObjectExport{
			ID:       pt.ObjectID,
			Label:    pt.Label,
			Kind:     pt.Kind.String(),
			Alt:      pt.Alt,
			Az:       pt.Az,
			X:        pt.X,
			Y:        pt.Y,
			Distance: pt.RangeKm,
			Format:   pt.Style.String(),
		}
		if pt.HasMag {
			m := pt.Mag
			o.Mag = &m
		}
		e.Objects = append(e.Objects, o)
	}
	for _, d := range res.Dropped {
		de := DropExport{ID: d.ID, Reason: string(d.Reason)}
		if d.Err != nil {
			de.Error = d.Err.Error()
		}
		e.Dropped = append(e.Dropped, de)
	}
	for _, w := range res.StyleWarnings {
		e.Warnings = append(e.Warnings, w.Error())
	}

	switch res.Kind {
	case KindMoon:
		t := res.Tilt
		e.Moon = &MoonExport{
			Phase:       t.PhaseName(),
			Illuminated: t.Illuminated,
			AgeDays:     t.AgeDays(),
			Waxing:      t.Waxing,
			BrightLimb:  t.BrightLimb,
			Parallactic: t.Parallactic,
			ZenithLimb:  t.ZenithLimb,
			Alt:         t.AltDeg,
			Az:          t.AzDeg,
		}
	case KindAnalemma:
		e.Analemma = analemmaStats(res)
	}
	return e
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummary writes a text report of a render.
func WriteSummary(w io.Writer, res *Result) {
	e := ExportResult(res)

	fmt.Fprintf(w, "%s @ %s (%.4f, %.4f)\n", res.Kind, e.Time.Format(time.RFC3339), e.Latitude, e.Longitude)
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "Civil %s  LMT %s  LST %s",
		e.Times.Civil.Format("2006-01-02 15:04:05 MST"), e.Times.LocalMean, e.Times.ApparentSidereal)
	if e.Times.ApparentSolar != "" {
		fmt.Fprintf(w, "  LAT %s", e.Times.ApparentSolar)
	}
	fmt.Fprintln(w)
	if e.SunAlt != nil {
		fmt.Fprintf(w, "Sun altitude %.1f°\n", *e.SunAlt)
	}

	switch res.Kind {
	case KindSkyMap:
		writeObjects(w, e)
	case KindMoon:
		m := e.Moon
		fmt.Fprintf(w, "%s, %.0f%% illuminated, %.1f days\n", m.Phase, m.Illuminated*100, m.AgeDays)
		fmt.Fprintf(w, "h=%.1f° a=%.1f° %s, bright limb %.0f° from zenith (χ=%.0f° q=%.0f°)\n",
			m.Alt, m.Az, Ordinal(m.Az), m.ZenithLimb, m.BrightLimb, m.Parallactic)
	case KindAnalemma:
		a := e.Analemma
		fmt.Fprintf(w, "%d samples, δ %.2f°..%.2f°, EoT %+.1f..%+.1f min\n",
			a.Samples, a.MinDec, a.MaxDec, a.MinEoT, a.MaxEoT)
		fmt.Fprintf(w, "Today: δ=%.2f° EoT %+.1f min h=%.1f° a=%.1f°\n",
			a.TodayDec, a.TodayEoT, a.TodayAlt, a.TodayAz)
	}
}

func writeObjects(w io.Writer, e *Export) {
	fmt.Fprintln(w, strings.Repeat("─", 72))
	if len(e.Objects) == 0 {
		fmt.Fprintln(w, "No objects above the horizon")
	} else {
		fmt.Fprintf(w, "%-16s %-20s %-9s %6s %6s %-3s %6s %12s\n",
			"ID", "Label", "Kind", "Alt", "Az", "Dir", "Mag", "Distance")
		for _, o := range e.Objects {
			mag := ""
			if o.Mag != nil {
				mag = fmt.Sprintf("%6.2f", *o.Mag)
			}
			fmt.Fprintf(w, "%-16s %-20s %-9s %6.1f %6.1f %-3s %6s %12s\n",
				truncateStr(o.ID, 16), truncateStr(o.Label, 20), o.Kind,
				o.Alt, o.Az, Ordinal(o.Az), mag, FormatDistance(o.Distance))
		}
	}
	fmt.Fprintf(w, "\nTotal: %d objects", len(e.Objects))
	if len(e.Dropped) > 0 {
		fmt.Fprintf(w, ", %d dropped", len(e.Dropped))
	}
	fmt.Fprintln(w)
	for _, d := range e.Dropped {
		fmt.Fprintf(w, "  dropped %s: %s\n", d.ID, d.Reason)
	}
	for _, warn := range e.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

// FormatDistance formats a distance in km, or "" for none.
func FormatDistance(km float64) string {
	switch {
	case km <= 0:
		return ""
	case km >= 1e9:
		return fmt.Sprintf("%.2f Gkm", km/1e9)
	case km >= 1e6:
		return fmt.Sprintf("%.2f Mkm", km/1e6)
	default:
		return fmt.Sprintf("%.0f km", km)
	}
}

func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-2]) + ".."
}
