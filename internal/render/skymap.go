package render

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/scene"
	"github.com/litescript/ls-skymap/internal/style"
)

// Element ids of the sky map. Hosts style and script the picture through
// these, so they do not change.
const (
	IDBackground     = "background"
	IDSky            = "sky"
	IDSkyGradient    = "skyGradient"
	IDDiskClip       = "diskClip"
	IDGrid           = "grid"
	IDHorizon        = "horizon"
	IDAltitudeRings  = "altitudeRings"
	IDAzimuthSpokes  = "azimuthSpokes"
	IDAltitudeLabels = "altitudeLabels"
	IDAzimuthScale   = "azimuthScale"
	IDAzimuthLabels  = "azimuthLabels"
	IDCelestial      = "celestial"
	IDEquator        = "equator"
	IDPole           = "pole"
	IDEcliptic       = "ecliptic"
	IDConstellations = "constellations"
	IDObjects        = "objects"
	IDCaptions       = "captions"
	IDSolarTime      = "solarTime"
	IDSiderealTime   = "siderealTime"
	IDCivilTime      = "civilTime"
	IDLocation       = "location"
	IDCredits        = "credits"
)

const (
	mapExtent = 100 // viewBox half width; the horizon is at 90
	gridColor = "#808080"
	fontSize  = "5px"

	// Below this solar altitude the Sun's upper limb has set.
	sunsetAltitude = -0.27
)

// SkyMap renders the sky for the observer and instant of p.
func (r *Renderer) SkyMap(p config.Params, snap *catalog.Snapshot) (*Result, error) {
	res, _, adapter, err := r.prepare(p)
	if err != nil {
		return nil, err
	}
	res.Kind = KindSkyMap

	styles, warnings := p.Styles()
	res.StyleWarnings = warnings
	for _, w := range warnings {
		r.log.Warn("format rule skipped: %v", w)
	}

	collected := adapter.Collect(snap, catalog.Request{
		Bodies:       p.Bodies,
		Satellites:   p.EarthSatellites,
		ShowStars:    p.ShowStars,
		MaxMagnitude: p.MaxMagnitude,
		Observer:     res.Observer,
		Time:         res.Time,
	})
	res.Dropped = collected.Dropped
	for _, d := range collected.Dropped {
		r.log.Debug("object %s dropped (%s): %v", d.ID, d.Reason, d.Err)
	}

	proj := projection.New(res.Observer, res.Time)
	for _, o := range collected.Objects {
		pt := proj.Project(o)
		if !pt.Visible {
			continue
		}
		pt.Style = resolveStyle(styles, o)
		res.Objects = append(res.Objects, pt)
	}
	SortForDrawing(res.Objects)

	s := newScene(p, mapExtent)
	drawBackground(s, proj.Disk, res.SunAlt)
	drawGrid(s, proj.Disk)
	if math.Abs(res.Observer.LatDeg) > 5 {
		drawCelestial(s, proj)
	}
	if p.ShowEcliptic {
		drawEcliptic(s, proj)
	}
	if p.ShowStars && p.ShowConstellations && snap != nil {
		drawConstellations(s, snap.Constellations(), res.Objects)
	}
	drawObjects(s, res.Objects, p.StarTooltipMaxMagnitude)
	drawCaptions(s, p, res)

	if err := claimRootID(s); err != nil {
		return nil, err
	}
	res.Scene = s
	return res, nil
}

// SortForDrawing orders points for painting: stars, planets, Sun, Moon,
// satellites, so later kinds sit on top. Within a kind farther objects
// come first, and for stars fainter ones.
func SortForDrawing(pts []projection.Point) {
	sort.SliceStable(pts, func(i, j int) bool {
		a, b := pts[i], pts[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.RangeKm != b.RangeKm {
			return a.RangeKm > b.RangeKm
		}
		return a.HasMag && b.HasMag && a.Mag > b.Mag
	})
}

func drawBackground(s *scene.Scene, d projection.Disk, sunAlt float64) {
	if math.IsNaN(sunAlt) {
		sunAlt = -90
	}
	g := style.SkyGradient(sunAlt)

	s.AddDef(scene.El("radialGradient",
		"cx", "0", "cy", "0", "r", scene.Num(d.R), "gradientUnits", "userSpaceOnUse").
		WithID(IDSkyGradient).
		Add(
			scene.El("stop", "offset", "0", "stop-color", g.Zenith),
			scene.El("stop", "offset", "1", "stop-color", g.Horizon),
		))
	s.AddDef(scene.El("clipPath").WithID(IDDiskClip).Add(scene.Circle(0, 0, d.R)))

	day := "night"
	if sunAlt >= sunsetAltitude {
		day = "day"
	}
	sky := scene.Circle(0, 0, d.R).WithID(IDSky).WithClass(day).
		Set("fill", "url(#"+IDSkyGradient+")").Set("stroke", "none")
	s.Layer(IDBackground).Add(sky)
}

func drawGrid(s *scene.Scene, d projection.Disk) {
	grid := s.Layer(IDGrid)

	grid.Add(scene.Circle(0, 0, d.R).WithID(IDHorizon).
		Set("fill", "none").Set("stroke", "currentColor").Set("stroke-width", "0.4"))

	rings := scene.Group(IDAltitudeRings).
		Set("fill", "none").Set("stroke", gridColor).Set("stroke-width", "0.2").Set("stroke-dasharray", "1,1")
	for _, alt := range []float64{30, 60} {
		rings.Add(scene.Circle(0, 0, d.Radius(alt)))
	}
	grid.Add(rings)

	// Cross through the zenith with a tick every 15 degrees of altitude.
	var spokes scene.Path
	spokes.MoveTo(-d.R, 0).HLine(2 * d.R).MoveTo(0, -d.R).VLine(2 * d.R)
	labels := scene.Group(IDAltitudeLabels).
		Set("fill", gridColor).Set("style", "font-size:"+fontSize)
	for alt := 15.0; alt < 90; alt += 15 {
		for _, sign := range []float64{-1, 1} {
			r := sign * d.Radius(alt)
			spokes.MoveTo(r, -1.5).VLine(3).MoveTo(-1.5, r).HLine(3)
		}
		lbl := fmt.Sprintf("%.0f°", alt)
		r := d.Radius(alt)
		labels.Add(
			scene.Text(-r, 6, lbl).Set("text-anchor", "middle").Set("dominant-baseline", "hanging"),
			scene.Text(r, 6, lbl).Set("text-anchor", "middle").Set("dominant-baseline", "hanging"),
			scene.Text(2.5, -r, lbl).Set("text-anchor", "start").Set("dominant-baseline", "middle"),
			scene.Text(2.5, r, lbl).Set("text-anchor", "start").Set("dominant-baseline", "middle"),
		)
	}
	grid.Add(scene.PathNode(spokes.String()).WithID(IDAzimuthSpokes).
		Set("fill", "none").Set("stroke", gridColor).Set("stroke-width", "0.2"))
	grid.Add(labels)

	// Azimuth ring outside the horizon.
	var ticks scene.Path
	azLabels := scene.Group(IDAzimuthLabels).
		Set("fill", "currentColor").Set("style", "font-size:"+fontSize).
		Set("text-anchor", "middle").Set("dominant-baseline", "middle")
	for az := 0.0; az < 360; az += 15 {
		x1, y1 := d.XY(0, az)
		x2, y2 := d.XY(-3, az)
		ticks.MoveTo(x1, y1).LineTo(x2, y2)

		x, y := d.XY(-8, az)
		lbl := fmt.Sprintf("%.0f°", az)
		if int(az)%90 == 0 {
			lbl = Ordinal(az)
		}
		azLabels.Add(scene.Text(x, y, lbl))
	}
	grid.Add(scene.PathNode(ticks.String()).WithID(IDAzimuthScale).
		Set("fill", "none").Set("stroke", "currentColor").Set("stroke-width", "0.4"))
	grid.Add(azLabels)
}

// greatCircle turns projected vertices into path data; the caller clips it
// to the disk.
func greatCircle(path []projection.PathPoint) string {
	var p scene.Path
	for i, v := range path {
		if i == 0 {
			p.MoveTo(v.X, v.Y)
			continue
		}
		p.LineTo(v.X, v.Y)
	}
	return p.String()
}

// drawCelestial draws the celestial equator and the elevated pole.
func drawCelestial(s *scene.Scene, proj projection.Projector) {
	layer := s.Layer(IDCelestial).
		Set("fill", "none").Set("stroke", gridColor).Set("stroke-width", "0.2")

	eq := proj.EquatorPath(2)
	if projection.AnyAbove(eq) {
		layer.Add(scene.PathNode(greatCircle(eq)).WithID(IDEquator).
			Set("clip-path", "url(#"+IDDiskClip+")"))
	}

	lat := proj.Observer.LatDeg
	az, lbl := 0.0, "N"
	if lat < 0 {
		az, lbl = 180, "S"
	}
	x, y := proj.Disk.XY(math.Abs(lat), az)
	var tick scene.Path
	tick.MoveTo(x-2.5, y).HLine(5)
	layer.Add(scene.Group(IDPole,
		scene.PathNode(tick.String()),
		scene.Text(x-3.5, y, lbl).
			Set("fill", gridColor).Set("stroke", "none").Set("style", "font-size:"+fontSize).
			Set("text-anchor", "end").Set("dominant-baseline", "middle"),
	).WithTitle("celestial pole"))
}

func drawEcliptic(s *scene.Scene, proj projection.Projector) {
	path := proj.EclipticPath(2)
	if !projection.AnyAbove(path) {
		return
	}
	s.Layer(IDEcliptic).
		Set("clip-path", "url(#"+IDDiskClip+")").
		Add(scene.PathNode(greatCircle(path)).
			Set("fill", "none").Set("stroke", "#c8b45a").Set("stroke-width", "0.3").
			Set("stroke-dasharray", "0.6,1.2"))
}

// drawConstellations draws a segment only when both of its stars are among
// the drawn points. Figures without any drawable segment are left out.
func drawConstellations(s *scene.Scene, cons []catalog.Constellation, pts []projection.Point) {
	stars := make(map[string]projection.Point)
	for _, pt := range pts {
		if pt.Kind == catalog.KindStar && pt.Visible {
			stars[pt.ObjectID] = pt
		}
	}

	layer := s.Layer(IDConstellations).
		Set("fill", "none").Set("stroke", "#6f86c6").Set("stroke-width", "0.2")
	for _, c := range cons {
		var p scene.Path
		for _, seg := range c.Segments {
			a, okA := stars[hipID(seg[0])]
			b, okB := stars[hipID(seg[1])]
			if !okA || !okB {
				continue
			}
			p.MoveTo(a.X, a.Y).LineTo(b.X, b.Y)
		}
		if p.Empty() {
			continue
		}
		layer.Add(scene.Group(c.ID(), scene.PathNode(p.String())).
			WithClass("constellation").WithTitle(c.Name()))
	}
}

func hipID(hip int) string {
	return fmt.Sprintf("HIP%d", hip)
}

func drawObjects(s *scene.Scene, pts []projection.Point, tooltipMaxMag float64) {
	layer := s.Layer(IDObjects)
	for _, pt := range pts {
		n := marker(pt).WithID(pt.ObjectID).WithClass(pt.Kind.String())
		switch pt.Kind {
		case catalog.KindStar:
			n.Set("fill-opacity", scene.Num(StarOpacity(pt.Mag)))
			if pt.HasMag && pt.Mag <= tooltipMaxMag {
				n.WithTitle(Tooltip(pt.Label, pt.Alt, pt.Az) + fmt.Sprintf("\nmag %.2f", pt.Mag))
			}
		case catalog.KindSatellite:
			n.WithTitle(Tooltip(pt.Label, pt.Alt, pt.Az) + fmt.Sprintf("\nd=%.0f km", pt.RangeKm))
		default:
			n.WithTitle(Tooltip(pt.Label, pt.Alt, pt.Az))
		}
		layer.Add(n)
	}
}

func caption(id string, x, y float64, anchor, text, title string) *scene.Node {
	return scene.Text(x, y, text).WithID(id).WithTitle(title).
		Set("text-anchor", anchor).Set("style", "font-size:"+fontSize).Set("fill", "currentColor")
}

// drawCaptions adds the time, location and credit captions. A caption
// whose toggle is off or whose value is unavailable is not emitted.
func drawCaptions(s *scene.Scene, p config.Params, res *Result) {
	layer := s.Layer(IDCaptions)
	ts := res.Times

	if p.ShowTimestamp {
		if ts.HasApparentSolar {
			layer.Add(caption(IDSolarTime, -98, -94, "start",
				"LAT "+ts.ApparentSolar.Format("15:04:05"),
				fmt.Sprintf("local apparent (sundial) time\nequation of time %s", formatEoT(ts.EquationOfTime))))
		}
		layer.Add(caption(IDSiderealTime, 98, -94, "end",
			"LST "+astro.ClockString(ts.ApparentSidereal),
			"local apparent sidereal time"))

		civil := caption(IDCivilTime, 98, 92, "end", "", "civil time\nLMT "+ts.LocalMean.Format("15:04:05"))
		civil.Add(
			scene.El("tspan", "x", "98", "dy", "0").WithClass("time"),
			scene.El("tspan", "x", "98", "dy", "5").WithClass("date"),
		)
		civil.Children[0].Text = ts.Civil.Format("15:04:05 MST")
		civil.Children[1].Text = ts.Civil.Format("2006-01-02")
		layer.Add(civil)
	}

	if p.ShowLocation && p.Location != "" {
		obs := res.Observer
		layer.Add(caption(IDLocation, -98, 97, "start", p.Location,
			fmt.Sprintf("%s\n%s", p.Location, formatLatLon(obs.LatDeg, obs.LonDeg))))
	}

	if p.Credits != "" {
		layer.Add(caption(IDCredits, 0, 99, "middle", p.Credits, "").Set("style", "font-size:3px"))
	}
}

func formatEoT(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign, d = "-", -d
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%s%dm%02ds", sign, int(d/time.Minute), int(d%time.Minute/time.Second))
}

func formatLatLon(lat, lon float64) string {
	ns, ew := "N", "E"
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f°%s %.4f°%s", lat, ns, lon, ew)
}
