package render

import (
	"fmt"
	"time"

	"github.com/litescript/ls-skymap/internal/analemma"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/scene"
	"github.com/litescript/ls-skymap/internal/style"
)

const (
	IDAnalemma           = "analemma"
	IDAnalemmaCurve      = "analemmaCurve"
	IDAnalemmaToday      = "analemmaToday"
	IDAnalemmaClock      = "analemmaClock"
	IDAnalemmaInset      = "analemmaInset"
	IDAnalemmaInsetAxes  = "analemmaInsetAxes"
	IDAnalemmaInsetCurve = "analemmaInsetCurve"
	IDAnalemmaInsetToday = "analemmaInsetToday"
)

// Inset placement, in map units: a square in the lower right corner,
// outside the horizon circle.
const (
	insetCX   = 83
	insetCY   = 83
	insetHalf = 15

	insetMaxEoT = 17 * time.Minute
	insetMaxDec = 24.0
)

// Analemma renders the Sun's position at the clock time of the render
// instant on every day of its year.
func (r *Renderer) Analemma(p config.Params) (*Result, error) {
	res, zone, _, err := r.prepare(p)
	if err != nil {
		return nil, err
	}
	res.Kind = KindAnalemma

	system, err := analemma.ParseTimeSystem(p.TZ)
	if err != nil {
		return nil, fmt.Errorf("%w: tz: %v", config.ErrInvalidParam, err)
	}
	opts := analemma.Options{
		Observer: res.Observer,
		System:   system,
		Civil:    zone,
		Disk:     projection.Disk{R: projection.DefaultRadius},
	}
	local := res.Time.In(opts.Location())
	opts.Year = local.Year()
	opts.Clock = time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second

	samples, err := analemma.SampleYear(opts)
	if err != nil {
		return nil, err
	}
	res.Samples = samples
	res.TodayIdx = analemma.Nearest(samples, res.Time)

	curve := style.Palette(p.AnalemmaColors, 0, "#ffcc00")
	grid := style.Palette(p.AnalemmaColors, 1, gridColor)
	mark := style.Palette(p.AnalemmaColors, 2, "#ff4040")

	s := newScene(p, mapExtent)
	drawAnalemmaGrid(s, opts.Disk, grid)

	layer := s.Layer(IDAnalemma).Set("clip-path", "url(#"+IDDiskClip+")")
	xy := make([]float64, 0, 2*len(samples)+2)
	for _, smp := range samples {
		xy = append(xy, smp.X, smp.Y)
	}
	if len(samples) > 0 {
		xy = append(xy, samples[0].X, samples[0].Y)
	}
	layer.Add(scene.Polyline(xy...).WithID(IDAnalemmaCurve).
		Set("fill", "none").Set("stroke", curve).Set("stroke-width", "0.6"))

	if res.TodayIdx >= 0 {
		if today := samples[res.TodayIdx]; today.Visible {
			layer.Add(scene.Circle(today.X, today.Y, 1.5).WithID(IDAnalemmaToday).
				Set("fill", mark).Set("stroke", "none").
				WithTitle(sampleTitle(today)))
		}
	}

	s.Layer(IDCaptions).Add(caption(IDAnalemmaClock, -98, -94, "start",
		fmt.Sprintf("%s %s %d", local.Format("15:04"), system, opts.Year),
		"Sun at this clock time on every day of the year"))

	drawInset(s, samples, res.TodayIdx, curve, grid, mark)

	if err := claimRootID(s); err != nil {
		return nil, err
	}
	res.Scene = s
	return res, nil
}

func drawAnalemmaGrid(s *scene.Scene, d projection.Disk, color string) {
	s.AddDef(scene.El("clipPath").WithID(IDDiskClip).Add(scene.Circle(0, 0, d.R)))

	grid := s.Layer(IDGrid).Set("fill", "none").Set("stroke", color)
	grid.Add(scene.Circle(0, 0, d.R).WithID(IDHorizon).Set("stroke-width", "0.4"))

	var spokes scene.Path
	spokes.MoveTo(-d.R, 0).HLine(2 * d.R).MoveTo(0, -d.R).VLine(2 * d.R)
	grid.Add(scene.PathNode(spokes.String()).WithID(IDAzimuthSpokes).Set("stroke-width", "0.2"))

	labels := scene.Group(IDAzimuthLabels).
		Set("fill", color).Set("stroke", "none").Set("style", "font-size:"+fontSize).
		Set("text-anchor", "middle").Set("dominant-baseline", "middle")
	for az := 0.0; az < 360; az += 90 {
		x, y := d.XY(-8, az)
		labels.Add(scene.Text(x, y, Ordinal(az)))
	}
	grid.Add(labels)
}

// insetXY maps an equation of time and a declination into the inset box.
func insetXY(eot time.Duration, dec float64) (x, y float64) {
	x = insetCX + float64(eot)/float64(insetMaxEoT)*insetHalf
	y = insetCY - dec/insetMaxDec*insetHalf
	return clamp(x, insetCX-insetHalf, insetCX+insetHalf), clamp(y, insetCY-insetHalf, insetCY+insetHalf)
}

// drawInset plots declination against the equation of time, the
// analemma with the observer's horizon taken out.
func drawInset(s *scene.Scene, samples []analemma.Sample, today int, curve, grid, mark string) {
	inset := s.Layer(IDAnalemmaInset).
		WithTitle("declination vs equation of time")

	var axes scene.Path
	axes.MoveTo(insetCX-insetHalf, insetCY).HLine(2*insetHalf).
		MoveTo(insetCX, insetCY-insetHalf).VLine(2 * insetHalf)
	inset.Add(
		scene.Rect(insetCX-insetHalf, insetCY-insetHalf, 2*insetHalf, 2*insetHalf).
			Set("fill", "none").Set("stroke", grid).Set("stroke-width", "0.2"),
		scene.PathNode(axes.String()).WithID(IDAnalemmaInsetAxes).
			Set("fill", "none").Set("stroke", grid).Set("stroke-width", "0.2"),
	)

	xy := make([]float64, 0, 2*len(samples))
	for _, smp := range samples {
		x, y := insetXY(smp.EquationOfTime, smp.DecDeg)
		xy = append(xy, x, y)
	}
	inset.Add(scene.Polyline(xy...).WithID(IDAnalemmaInsetCurve).
		Set("fill", "none").Set("stroke", curve).Set("stroke-width", "0.3"))

	if today >= 0 && today < len(samples) {
		x, y := insetXY(samples[today].EquationOfTime, samples[today].DecDeg)
		inset.Add(scene.Circle(x, y, 0.8).WithID(IDAnalemmaInsetToday).
			Set("fill", mark).Set("stroke", "none"))
	}
}

func sampleTitle(s analemma.Sample) string {
	return fmt.Sprintf("%s\nh=%.1f° a=%.1f° %s\nδ=%.2f° EoT %s",
		s.Date.Format("2006-01-02 15:04 MST"), s.AltDeg, s.AzDeg, Ordinal(s.AzDeg),
		s.DecDeg, formatEoT(s.EquationOfTime))
}

func analemmaStats(res *Result) *AnalemmaStats {
	minDec, maxDec, minEoT, maxEoT := analemma.Bounds(res.Samples)
	a := &AnalemmaStats{
		Samples: len(res.Samples),
		MinDec:  minDec,
		MaxDec:  maxDec,
		MinEoT:  minEoT.Minutes(),
		MaxEoT:  maxEoT.Minutes(),
	}
	if i := res.TodayIdx; i >= 0 && i < len(res.Samples) {
		today := res.Samples[i]
		a.TodayDec = today.DecDeg
		a.TodayEoT = today.EquationOfTime.Minutes()
		a.TodayAlt = today.AltDeg
		a.TodayAz = today.AzDeg
		a.TodayShown = today.Visible
	}
	return a
}
