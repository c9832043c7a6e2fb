package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nathan-osman/go-sunrise"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/style"
)

// Visibility display colors
const (
	colorVisHigh   = "#7CFC00" // Lawn green - high elevation
	colorVisMedium = "#FFD700" // Gold - medium elevation
	colorVisLow    = "#FF6347" // Tomato - low elevation
	colorVisNone   = "#444444" // Dark gray - below horizon

	colorDay   = "#c8d2ff"
	colorNight = "#000848"
)

// SunTimes are the rise and set times of the Sun on one civil date. Both
// are zero during polar day and polar night.
type SunTimes struct {
	Rise time.Time
	Set  time.Time
}

// Valid reports whether the Sun rises and sets on that date.
func (s SunTimes) Valid() bool {
	return !s.Rise.IsZero() && !s.Set.IsZero()
}

// SunTimesOn computes sunrise and sunset for the observer on the civil
// date of t, in the zone of t.
func SunTimesOn(obs astro.Observer, t time.Time) SunTimes {
	rise, set := sunrise.SunriseSunset(obs.LatDeg, obs.LonDeg, t.Year(), t.Month(), t.Day())
	if rise.IsZero() || set.IsZero() {
		return SunTimes{}
	}
	return SunTimes{Rise: rise.In(t.Location()), Set: set.In(t.Location())}
}

// RenderSunPanel renders the Sun's state for the observer.
// Format:
//
//	Sun    h=-8.2°  nautical twilight
//	Dark   [██████░░░░░░░░░░]  41%
//	Rise   06:02   Set 18:14
func RenderSunPanel(obs astro.Observer, civil time.Time, sunAlt float64) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)

	var lines []string
	if math.IsNaN(sunAlt) {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-7s", "Sun"))+dimStyle.Render("No data"))
	} else {
		phase := astro.GetTwilightPhase(sunAlt)
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-7s", "Sun"))+
				colorByTier(astro.GetElevationTier(sunAlt), fmt.Sprintf("h=%.1f°", sunAlt))+
				"  "+dimStyle.Render(phase.String()))
		d := astro.Darkness(sunAlt)
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-7s", "Dark"))+
				RenderDarknessBar(d, 16)+dimStyle.Render(fmt.Sprintf("  %3.0f%%", d*100)))
	}

	st := SunTimesOn(obs, civil)
	line := labelStyle.Render(fmt.Sprintf("%-7s", "Rise"))
	if st.Valid() {
		line += dimStyle.Render(fmt.Sprintf("%s   Set %s", st.Rise.Format("15:04"), st.Set.Format("15:04")))
	} else if !math.IsNaN(sunAlt) && sunAlt > 0 {
		line += dimStyle.Render("Sun up all day")
	} else {
		line += dimStyle.Render("Sun down all day")
	}
	lines = append(lines, line)

	return strings.Join(lines, "\n")
}

// RenderDarknessBar renders darkness in [0, 1] as a bar shaded from the
// daytime to the night sky color.
func RenderDarknessBar(d float64, width int) string {
	filled := int(math.Round(d * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	color := style.Blend(colorDay, colorNight, d)
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return "[" + barStyle.Render(strings.Repeat("█", filled)+strings.Repeat("░", width-filled)) + "]"
}

// RenderVisibilityBar renders a compact bar per object.
// Format: Sun ████   Moon ░░░░   Mars ██░░
func RenderVisibilityBar(names []string, alts []float64) string {
	var parts []string
	for i, name := range names {
		if i >= len(alts) || math.IsNaN(alts[i]) {
			parts = append(parts, renderBarSegment(name, astro.ElevationNone, false))
			continue
		}
		parts = append(parts, renderBarSegment(name, astro.GetElevationTier(alts[i]), true))
	}
	return strings.Join(parts, "   ")
}

// renderBarSegment renders one object's visibility bar segment.
func renderBarSegment(name string, tier astro.ElevationTier, valid bool) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	label := labelStyle.Render(name + " ")

	if !valid {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		return label + dimStyle.Render("····")
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tierToColor(tier)))
	return label + barStyle.Render(tierToBar(tier))
}

// tierToBar converts elevation tier to a 4-character bar representation.
func tierToBar(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return "████"
	case astro.ElevationMedium:
		return "██░░"
	case astro.ElevationLow:
		return "█░░░"
	default:
		return "░░░░"
	}
}

// tierToColor returns the color for an elevation tier.
func tierToColor(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return colorVisHigh
	case astro.ElevationMedium:
		return colorVisMedium
	case astro.ElevationLow:
		return colorVisLow
	default:
		return colorVisNone
	}
}

// colorByTier applies tier-based coloring to text.
func colorByTier(tier astro.ElevationTier, text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(tierToColor(tier))).Render(text)
}
