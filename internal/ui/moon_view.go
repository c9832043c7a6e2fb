package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/lunar"
	"github.com/litescript/ls-skymap/internal/render"
)

const (
	colorMoonLit  = "#ffecd5"
	colorMoonDark = "#3a3a3a"
)

// MoonViewModel shows the Moon as the observer sees it next to the Sun's
// state.
type MoonViewModel struct {
	width  int
	height int

	moon *render.Result
	sky  *render.Result
}

// NewMoonViewModel creates a new moon view model.
func NewMoonViewModel() MoonViewModel {
	return MoonViewModel{}
}

// SetSize updates the viewport size.
func (m MoonViewModel) SetSize(width, height int) MoonViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData takes a moon render and the sky map render of the same instant.
func (m MoonViewModel) UpdateData(moon, sky *render.Result) MoonViewModel {
	m.moon = moon
	m.sky = sky
	return m
}

// Update handles messages.
func (m MoonViewModel) Update(msg tea.Msg) (MoonViewModel, tea.Cmd) {
	return m, nil
}

// View renders the moon disk and the panels.
func (m MoonViewModel) View() string {
	if m.moon == nil {
		return "Waiting for first render..."
	}

	rows := m.height - 2
	if rows > 15 {
		rows = 15
	}
	if rows < 5 {
		rows = 5
	}
	disk := RenderMoonDisk(m.moon.Tilt, rows)

	info := m.renderInfo()
	return lipgloss.JoinHorizontal(lipgloss.Top, disk, "    ", info)
}

func (m MoonViewModel) renderInfo() string {
	t := m.moon.Tilt
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-7s", label)) + valueStyle.Render(value)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.PhaseName()))
	b.WriteString("\n")
	b.WriteString(row("Lit", fmt.Sprintf("%.1f%%", t.Illuminated*100)))
	b.WriteString("\n")
	b.WriteString(row("Age", fmt.Sprintf("%.1f d", t.AgeDays())))
	b.WriteString("\n")
	b.WriteString(row("Moon", colorByTier(astro.GetElevationTier(t.AltDeg), fmt.Sprintf("h=%.1f° a=%.1f° %s", t.AltDeg, t.AzDeg, render.Ordinal(t.AzDeg)))))
	b.WriteString("\n")
	b.WriteString(row("Limb", fmt.Sprintf("χ=%.1f° q=%.1f° tilt %.1f°", t.BrightLimb, t.Parallactic, t.ZenithLimb)))
	b.WriteString("\n\n")

	b.WriteString(RenderSunPanel(m.moon.Observer, m.moon.Times.Civil, m.moon.SunAlt))
	b.WriteString("\n\n")

	if m.sky != nil {
		var names []string
		var alts []float64
		for _, p := range m.sky.Objects {
			if p.Kind == catalog.KindPlanet {
				names = append(names, p.Label)
				alts = append(alts, p.Alt)
			}
		}
		if len(names) > 0 {
			b.WriteString(RenderVisibilityBar(names, alts))
			b.WriteString("\n")
		}
	}
	b.WriteString(dimStyle.Render(m.moon.Times.Civil.Format("2006-01-02 15:04:05 MST")))
	return b.String()
}

// RenderMoonDisk draws the Moon rows characters tall. Cells are twice as
// tall as wide, so the disk is twice as many columns across.
func RenderMoonDisk(t lunar.Tilt, rows int) string {
	cols := 2 * rows
	litStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMoonLit))
	darkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMoonDark))

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := (float64(c)+0.5)/float64(cols)*2 - 1
			y := (float64(r)+0.5)/float64(rows)*2 - 1
			switch {
			case x*x+y*y > 1:
				b.WriteString(" ")
			case Lit(t, x, y):
				b.WriteString(litStyle.Render("█"))
			default:
				b.WriteString(darkStyle.Render("░"))
			}
		}
		if r < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Lit reports whether a point of the unit disk is sunlit. Coordinates are
// screen-like: x to the right, y down. The test matches the moon symbol:
// the bright limb is drawn at the top and the figure is then turned by
// Tilt.Rotation degrees clockwise.
func Lit(t lunar.Tilt, x, y float64) bool {
	if t.Illuminated <= 0 {
		return false
	}
	theta := t.Rotation() * math.Pi / 180
	sin, cos := math.Sincos(theta)
	u := x*cos + y*sin
	v := x*sin - y*cos // up is positive

	// The terminator is the half ellipse v = -cos(i)·sqrt(1-u²).
	w := 1 - u*u
	if w < 0 {
		w = 0
	}
	return v >= -math.Cos(t.PhaseAngle*math.Pi/180)*math.Sqrt(w)
}
