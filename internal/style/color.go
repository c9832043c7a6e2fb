package style

import (
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors are the CSS keywords accepted besides hex notation.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"gold":    "#ffd700",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"navy":    "#000080",
	"pink":    "#ffc0cb",
	"purple":  "#800080",
	"brown":   "#a52a2a",
	"lime":    "#00ff00",
}

// ValidColor reports whether s is usable as a color: #rgb, #rrggbb, a known
// CSS keyword, "none" or "currentColor".
func ValidColor(s string) bool {
	_, ok := parseColor(s)
	if ok {
		return true
	}
	switch strings.ToLower(s) {
	case "none", "currentcolor":
		return true
	}
	return false
}

func parseColor(s string) (colorful.Color, bool) {
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// Blend mixes two colors in CIE L*a*b* space; t=0 yields a, t=1 yields b.
// Colors that cannot be parsed are returned unchanged (a for t<0.5).
func Blend(a, b string, t float64) string {
	ca, okA := parseColor(a)
	cb, okB := parseColor(b)
	if !okA || !okB {
		if t < 0.5 {
			return a
		}
		return b
	}
	t = math.Max(0, math.Min(1, t))
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// Luminance returns the CIE L* lightness of a color in [0, 1], or 0.5 for
// colors that cannot be parsed.
func Luminance(s string) float64 {
	c, ok := parseColor(s)
	if !ok {
		return 0.5
	}
	l, _, _ := c.Lab()
	return l
}

// Gradient is the sky fill for one solar altitude.
type Gradient struct {
	Zenith  string
	Horizon string
}

type skyStop struct {
	sunAlt  float64
	zenith  string
	horizon string
}

// skyStops are ordered by descending solar altitude. Between stops the colors
// are blended, so dusk and dawn change smoothly.
var skyStops = []skyStop{
	{10, "#8c8cf0", "#c8d2ff"},
	{-0.27, "#6e73d8", "#f0b48c"},
	{-6, "#2a2f7a", "#8a5a78"},
	{-12, "#0d1450", "#2a2a66"},
	{-18, "#000040", "#000848"},
}

// SkyGradient returns the zenith and horizon colors for the Sun at the given
// altitude in degrees.
func SkyGradient(sunAltDeg float64) Gradient {
	first, last := skyStops[0], skyStops[len(skyStops)-1]
	if math.IsNaN(sunAltDeg) || sunAltDeg >= first.sunAlt {
		return Gradient{first.zenith, first.horizon}
	}
	if sunAltDeg <= last.sunAlt {
		return Gradient{last.zenith, last.horizon}
	}

	// First stop at or below the altitude.
	i := sort.Search(len(skyStops), func(i int) bool { return skyStops[i].sunAlt <= sunAltDeg })
	hi, lo := skyStops[i-1], skyStops[i]
	t := (hi.sunAlt - sunAltDeg) / (hi.sunAlt - lo.sunAlt)
	return Gradient{
		Zenith:  Blend(hi.zenith, lo.zenith, t),
		Horizon: Blend(hi.horizon, lo.horizon, t),
	}
}

// Palette returns colors[i], or def when the list is too short or the entry
// is not a valid color.
func Palette(colors []string, i int, def string) string {
	if i < len(colors) && ValidColor(colors[i]) {
		return colors[i]
	}
	return def
}
