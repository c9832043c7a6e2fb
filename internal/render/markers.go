package render

import (
	"math"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/scene"
	"github.com/litescript/ls-skymap/internal/style"
)

// StarSize maps a magnitude to a marker radius in map units. Brighter
// stars are larger.
func StarSize(mag float64) float64 {
	return clamp(0.9-0.12*mag, 0.15, 1.2)
}

// StarOpacity maps a magnitude to a fill opacity. Brighter stars are more
// opaque.
func StarOpacity(mag float64) float64 {
	return clamp(1-0.1*mag, 0.35, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// resolveStyle picks the visual encoding of one object.
func resolveStyle(styles *style.Resolver, o catalog.Object) style.Format {
	var derived style.Format
	if o.Kind == catalog.KindStar && o.HasMag {
		derived.Size = StarSize(o.Mag)
	}
	f := styles.Resolve(o.ID, o.Kind.String(), derived)
	if o.Override != nil {
		f = o.Override.Fill(f)
	}
	return f
}

// marker draws a point with its resolved shape, centred on the point.
func marker(pt projection.Point) *scene.Node {
	x, y, s := pt.X, pt.Y, pt.Style.Size

	var n *scene.Node
	switch pt.Style.Shape {
	case style.ShapeSquare:
		n = scene.Rect(x-s, y-s, 2*s, 2*s)
	case style.ShapeDiamond:
		n = scene.Polygon(x, y-s, x+s, y, x, y+s, x-s, y)
	case style.ShapeTriangle:
		h := s * math.Sqrt(3) / 2
		n = scene.Polygon(x, y-s, x+h, y+s/2, x-h, y+s/2)
	case style.ShapeCross:
		var p scene.Path
		p.MoveTo(x-s, y).LineTo(x+s, y).MoveTo(x, y-s).LineTo(x, y+s)
		n = scene.PathNode(p.String())
		n.Set("fill", "none").Set("stroke", pt.Style.Color).Set("stroke-width", scene.Num(s/3))
		return n
	default:
		n = scene.Circle(x, y, s)
	}
	n.Set("fill", pt.Style.Color).Set("stroke", "none")
	return n
}
