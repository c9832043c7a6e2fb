package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/render"
)

const (
	// Field of view in degrees
	fovAz = 120.0 // horizontal FOV
	fovEl = 60.0  // vertical FOV

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Target glyphs
	glyphSun       = '☼'
	glyphMoon      = '☾'
	glyphPlanet    = '●'
	glyphSatellite = '✦'
	glyphFocused   = '◆'

	colorTarget        = "#d0c8ff"
	colorTargetFocused = "229" // bright gold

	// Star glyphs by magnitude
	glyphStarBright  = '✶' // mag < 1.5
	glyphStarMedium  = '✸' // mag 1.5-3.0
	glyphStarDim     = '·' // mag 3.0-4.0
	glyphStarVeryDim = '·' // mag > 4.0

	// Star colors (grayscale to not compete with targets)
	colorStarBright  = "255"
	colorStarMedium  = "250"
	colorStarDim     = "244"
	colorStarVeryDim = "240"
)

// LabelMode controls how target labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused target
	LabelAll                      // All targets
)

// kindFilter restricts the targets shown in the sky view.
type kindFilter struct {
	name  string
	kinds []catalog.Kind // nil means all
}

var kindFilters = []kindFilter{
	{"All objects", nil},
	{"Sun & Moon", []catalog.Kind{catalog.KindSun, catalog.KindMoon}},
	{"Planets", []catalog.Kind{catalog.KindPlanet}},
	{"Satellites", []catalog.Kind{catalog.KindSatellite}},
}

func (f kindFilter) match(k catalog.Kind) bool {
	if f.kinds == nil {
		return true
	}
	for _, want := range f.kinds {
		if k == want {
			return true
		}
	}
	return false
}

// SkyViewModel renders a camera view of the sky map objects.
type SkyViewModel struct {
	width  int
	height int

	// Camera position (center of view)
	camAz float64
	camEl float64

	// Animation state
	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	// Everything above the horizon, and the non-star subset focus cycles through.
	points   []projection.Point
	targets  []projection.Point
	focusIdx int
	focusID  string

	filterIdx int
	labelMode LabelMode
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel() SkyViewModel {
	return SkyViewModel{
		camAz:     180,
		camEl:     45,
		labelMode: LabelFocused,
	}
}

// SetSize updates the viewport size.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData takes the objects of a fresh sky map render. Focus follows the
// focused object by id across renders.
func (m SkyViewModel) UpdateData(res *render.Result) SkyViewModel {
	if res == nil {
		return m
	}
	m.points = res.Objects
	m.targets = m.targets[:0:0]
	filter := kindFilters[m.filterIdx]
	for _, p := range res.Objects {
		if p.Kind != catalog.KindStar && filter.match(p.Kind) {
			m.targets = append(m.targets, p)
		}
	}

	m.focusIdx = 0
	for i, p := range m.targets {
		if p.ObjectID == m.focusID {
			m.focusIdx = i
			break
		}
	}
	if len(m.targets) > 0 {
		m.focusID = m.targets[m.focusIdx].ObjectID
	}

	// If not animating, snap camera to the focused target
	if !m.animating && len(m.targets) > 0 {
		p := m.targets[m.focusIdx]
		m.camAz = p.Az
		m.camEl = p.Alt
	}
	return m
}

// Focused returns the focused target, if any.
func (m SkyViewModel) Focused() (projection.Point, bool) {
	if m.focusIdx < 0 || m.focusIdx >= len(m.targets) {
		return projection.Point{}, false
	}
	return m.targets[m.focusIdx], true
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			return m.focusPrev()
		case "down", "j":
			return m.focusNext()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(kindFilters)
			m.focusID = ""
			m = m.UpdateData(&render.Result{Objects: m.points})
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyViewModel) focusNext() (SkyViewModel, tea.Cmd) {
	if len(m.targets) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.targets)
	return m.startAnimation()
}

func (m SkyViewModel) focusPrev() (SkyViewModel, tea.Cmd) {
	if len(m.targets) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.targets) - 1
	}
	return m.startAnimation()
}

func (m SkyViewModel) startAnimation() (SkyViewModel, tea.Cmd) {
	if m.focusIdx >= len(m.targets) {
		return m, nil
	}

	p := m.targets[m.focusIdx]
	m.focusID = p.ObjectID
	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = p.Az
	m.animTargEl = p.Alt
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	// Reserve lines for header and status
	canvas := m.renderSkyCanvas(m.width, m.height-4)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(canvas)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m SkyViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorTarget))

	title := titleStyle.Render("Sky View")

	filterStr := dimStyle.Render(kindFilters[m.filterIdx].name)
	if m.filterIdx > 0 {
		filterStr = accentStyle.Render(kindFilters[m.filterIdx].name)
	}

	var labelStr string
	switch m.labelMode {
	case LabelNone:
		labelStr = dimStyle.Render("Labels: off")
	case LabelFocused:
		labelStr = accentStyle.Render("Labels: focus")
	case LabelAll:
		labelStr = accentStyle.Render("Labels: all")
	}

	compass := dimStyle.Render(fmt.Sprintf("Az:%.0f° El:%.0f°", m.camAz, m.camEl))

	return fmt.Sprintf("%s | %s | %s | %s", title, filterStr, labelStr, compass)
}

func (m SkyViewModel) renderStatus() string {
	p, ok := m.Focused()
	if !ok {
		return "Nothing above the horizon"
	}

	parts := []string{
		fmt.Sprintf(">>> %s [%s]", p.Label, p.Kind),
		fmt.Sprintf("Az:%.1f° %s El:%.1f°", p.Az, render.Ordinal(p.Az), p.Alt),
	}
	if d := render.FormatDistance(p.RangeKm); d != "" {
		parts = append(parts, d)
	}
	if p.HasMag {
		parts = append(parts, fmt.Sprintf("mag %.1f", p.Mag))
	}

	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorTargetFocused))
	status := accentStyle.Render(strings.Join(parts, " | "))

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(colorTarget))
	status += "\n" + dimStyle.Render(fmt.Sprintf("    %d of %d targets, %d stars", m.focusIdx+1, len(m.targets), m.starCount()))
	return status
}

func (m SkyViewModel) starCount() int {
	n := 0
	for _, p := range m.points {
		if p.Kind == catalog.KindStar {
			n++
		}
	}
	return n
}

// targetPos tracks a target's screen position for label rendering
type targetPos struct {
	x, y       int
	name       string
	isFocused  bool
	labelStart int
	labelEnd   int
}

func (m SkyViewModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	horizonY := height - 2

	for _, p := range m.points {
		if p.Kind != catalog.KindStar {
			continue
		}
		x, y, visible := m.projectToScreen(p.Az, p.Alt, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}
		glyph, color := m.starGlyph(p.Mag)
		canvas[y][x] = glyph
		colors[y][x] = color
	}

	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60"
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	var positions []targetPos
	for i, p := range m.targets {
		x, y, visible := m.projectToScreen(p.Az, p.Alt, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}

		isFocused := i == m.focusIdx
		sym, color := targetGlyph(p)
		if isFocused {
			sym = glyphFocused
			color = colorTargetFocused
		}
		canvas[y][x] = sym
		colors[y][x] = color

		positions = append(positions, targetPos{x: x, y: y, name: p.Label, isFocused: isFocused})
	}

	m.renderLabels(canvas, colors, width, horizonY, positions)

	// Observer marker at bottom center
	if stationX := width / 2; height > 0 && stationX < width {
		canvas[height-1][stationX] = '▲'
		colors[height-1][stationX] = "46"
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// targetGlyph picks the glyph of a non-star object. The marker color of
// the map is reused when the terminal can show it.
func targetGlyph(p projection.Point) (rune, lipgloss.Color) {
	color := lipgloss.Color(colorTarget)
	if strings.HasPrefix(p.Style.Color, "#") {
		color = lipgloss.Color(p.Style.Color)
	}
	switch p.Kind {
	case catalog.KindSun:
		return glyphSun, color
	case catalog.KindMoon:
		return glyphMoon, color
	case catalog.KindPlanet:
		return glyphPlanet, color
	default:
		return glyphSatellite, color
	}
}

// renderLabels draws target labels on the canvas based on label mode.
// Focused labels take priority in overlapping regions.
func (m SkyViewModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, positions []targetPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		labelLen := len([]rune(pos.name))
		if pos.isFocused {
			labelLen += 2
		}
		pos.labelEnd = pos.labelStart + labelLen
	}

	focusedClaims := make(map[int]map[int]bool) // y -> x -> claimed
	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if focusedClaims[pos.y] == nil {
			focusedClaims[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			focusedClaims[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}

		labelColor := lipgloss.Color(colorTarget)
		labelText := pos.name
		if pos.isFocused {
			labelColor = colorTargetFocused
			labelText = "◄ " + pos.name
		}

		for i, r := range []rune(labelText) {
			x := pos.labelStart + i
			if x < 0 || x >= width || pos.y < 0 || pos.y >= horizonY {
				continue
			}
			if !pos.isFocused && focusedClaims[pos.y][x] {
				continue
			}
			canvas[pos.y][x] = r
			colors[pos.y][x] = labelColor
		}
	}
}

// starGlyph returns the glyph and color for a star of the given magnitude.
func (m SkyViewModel) starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	case mag < 4.0:
		return glyphStarDim, colorStarDim
	default:
		return glyphStarVeryDim, colorStarVeryDim
	}
}

func (m SkyViewModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, 0, width, height)
	if !visible {
		return
	}
	y := height - 2

	if x >= 0 && x < width && y >= 0 && y < height {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/el to screen coordinates relative to camera
func (m SkyViewModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: +fovEl/2..-fovEl/2 -> 0..horizon (higher el = higher on screen)
	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(horizonY))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
