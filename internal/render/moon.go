package render

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/lunar"
	"github.com/litescript/ls-skymap/internal/scene"
	"github.com/litescript/ls-skymap/internal/style"
)

const (
	IDMoon     = "moon"
	IDMoonDark = "moonDark"
	IDMoonLit  = "moonLit"
	IDMoonLimb = "moonLimb"

	moonExtent = 50
	moonRadius = 45
)

// Moon renders the moon phase symbol as the observer sees it.
func (r *Renderer) Moon(p config.Params) (*Result, error) {
	res, _, adapter, err := r.prepare(p)
	if err != nil {
		return nil, err
	}
	res.Kind = KindMoon

	tilt, err := r.moonTilt(adapter, res.Observer, res.Time)
	if err != nil {
		return nil, err
	}
	res.Tilt = tilt

	s := newScene(p, moonExtent)
	s.Layers = append(s.Layers, MoonSymbol(tilt, p.MoonColors, moonRadius).WithTitle(moonTitle(tilt)))
	if err := claimRootID(s); err != nil {
		return nil, err
	}
	res.Scene = s
	return res, nil
}

// moonTilt takes the Moon and Sun from the ephemeris provider, so a
// Horizons-backed renderer draws the same Moon as its sky map. When the
// provider has no position the analytic series are used.
func (r *Renderer) moonTilt(adapter *catalog.Adapter, obs astro.Observer, t time.Time) (lunar.Tilt, error) {
	moon, okMoon := adapter.MoonPosition(obs, t)
	sun, okSun := adapter.SunPosition(obs, t)
	if okMoon && okSun {
		return lunar.TiltFrom(moon, sun, t, obs)
	}
	r.log.Warn("moon or sun position unavailable at %s; using analytic series", t.Format(time.RFC3339))
	return lunar.ComputeTilt(t, obs)
}

// MoonSymbol draws the moon centred on the origin. colors are dark, lit and
// an optional limb outline.
//
// The lit region is drawn with its bright limb at the top: the upper
// semicircle of the limb closed by half of the terminator ellipse, whose
// semi-minor axis is r·cos i. The whole region is then rotated into place.
func MoonSymbol(t lunar.Tilt, colors []string, r float64) *scene.Node {
	g := scene.Group(IDMoon)

	g.Add(scene.Circle(0, 0, r).WithID(IDMoonDark).
		Set("fill", style.Palette(colors, 0, "#202020")).Set("stroke", "none"))

	if t.Illuminated > 0 {
		y := r * math.Cos(t.PhaseAngle*math.Pi/180)
		var d scene.Path
		d.MoveTo(-r, 0).
			Arc(r, r, 0, false, true, r, 0).
			Arc(r, math.Abs(y), 0, false, y > 0, -r, 0).
			Close()
		g.Add(scene.PathNode(d.String()).WithID(IDMoonLit).
			Set("fill", style.Palette(colors, 1, "#ffecd5")).Set("stroke", "none").
			Set("transform", "rotate("+scene.Num(t.Rotation())+")"))
	}

	if len(colors) > 2 && style.ValidColor(colors[2]) {
		g.Add(scene.Circle(0, 0, r).WithID(IDMoonLimb).
			Set("fill", "none").Set("stroke", colors[2]).Set("stroke-width", scene.Num(r/45)))
	}
	return g
}

func moonTitle(t lunar.Tilt) string {
	return fmt.Sprintf("%s\n%.0f%% illuminated, %.1f days\nh=%.1f° a=%.1f° %s\nbright limb %.0f° from zenith",
		t.PhaseName(), t.Illuminated*100, t.AgeDays(), t.AltDeg, t.AzDeg, Ordinal(t.AzDeg), t.ZenithLimb)
}
