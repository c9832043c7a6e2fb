// Package ui provides the terminal preview using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/style"
	"github.com/litescript/ls-skymap/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewSky ViewMode = iota
	ViewMoon
	ViewCatalog

	viewCount
)

// renderInterval is how often the views re-render for the current time.
const renderInterval = 5 * time.Second

// Msg types for Bubble Tea
type (
	// TickMsg triggers a re-render.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals that a catalog refresh finished.
	DataUpdateMsg struct {
		Status state.Status
	}

	// ErrorMsg signals a refresh or render error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state    *state.Manager
	renderer *render.Renderer
	params   config.Params

	// UI state
	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int
	lastErr  error
	rendered time.Time
	status   state.Status

	// Sub-models
	skyView   SkyViewModel
	moonView  MoonViewModel
	dashboard DashboardModel
}

// New creates a new root UI model. params are rendered as given; an empty
// params.Time follows the wall clock.
func New(stateMgr *state.Manager, renderer *render.Renderer, params config.Params) Model {
	m := Model{
		state:     stateMgr,
		renderer:  renderer,
		params:    params,
		viewMode:  ViewSky,
		skyView:   NewSkyViewModel(),
		moonView:  NewMoonViewModel(),
		dashboard: NewDashboardModel(),
	}
	m.status = stateMgr.Status()
	m.dashboard = m.dashboard.UpdateStatus(m.status)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		m.dashboard.Init(),
	)
}

// refresh renders the sky map and the moon for the current parameters and
// pushes the results to the views.
func (m *Model) refresh() {
	snap := m.state.Catalog()
	sky, err := m.renderer.SkyMap(m.params, snap)
	if err != nil {
		m.setError(err)
		return
	}
	moon, err := m.renderer.Moon(m.params)
	if err != nil {
		m.setError(err)
		return
	}
	m.lastErr = nil
	m.rendered = sky.Time
	m.skyView = m.skyView.UpdateData(sky)
	m.moonView = m.moonView.UpdateData(moon, sky)
	m.dashboard = m.dashboard.UpdateData(sky).SetError(nil)
}

func (m *Model) setError(err error) {
	m.lastErr = err
	m.dashboard = m.dashboard.SetError(err)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "s":
			m.viewMode = ViewSky
		case "2", "m":
			m.viewMode = ViewMoon
		case "3", "c":
			m.viewMode = ViewCatalog

		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount

		case "r":
			m.refresh()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes 5 lines, tabs and footer 3
		contentHeight := msg.Height - 8
		m.skyView = m.skyView.SetSize(msg.Width, contentHeight)
		m.moonView = m.moonView.SetSize(msg.Width, contentHeight)
		m.dashboard = m.dashboard.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.refresh()

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case DataUpdateMsg:
		m.status = msg.Status
		m.dashboard = m.dashboard.UpdateStatus(msg.Status)
		m.refresh()

	case ErrorMsg:
		m.setError(msg.Error)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewSky:
		m.skyView, cmd = m.skyView.Update(msg)
	case ViewMoon:
		m.moonView, cmd = m.moonView.Update(msg)
	case ViewCatalog:
		m.dashboard, cmd = m.dashboard.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewSky:
		content = m.skyView.View()
	case ViewMoon:
		content = m.moonView.View()
	case ViewCatalog:
		content = m.dashboard.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ╻  ┏━┓   ┏━┓╻┏ ╻ ╻┏┳┓┏━┓┏━┓`,
		`  ┃  ┗━┓╺━╸┗━┓┣┻┓┗┳┛┃┃┃┣━┫┣━┛`,
		`  ┗━╸┗━┛   ┗━┛╹ ╹ ╹ ╹ ╹╹ ╹╹  `,
	}

	var b strings.Builder
	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	tagline := fmt.Sprintf("  Planisphere · Moon · Analemma | v%s", version.Version)
	b.WriteString(muted.Render(tagline))
	b.WriteString("\n")
	return b.String()
}

// logoStops run from the night sky through dusk to the daytime horizon.
var logoStops = []string{"#3B82F6", "#8B5CF6", "#D946EF", "#F0B48C"}

// gradientColor returns a hex color for a position in the logo gradient:
// a horizontal blend across logoStops, darker toward the bottom rows.
func gradientColor(col, row, width, height int) string {
	if width < 2 {
		return logoStops[0]
	}
	x := float64(col) / float64(width-1) * float64(len(logoStops)-1)
	i := int(x)
	if i >= len(logoStops)-1 {
		i = len(logoStops) - 2
	}
	c := style.Blend(logoStops[i], logoStops[i+1], x-float64(i))

	yRatio := float64(row) / float64(height)
	return style.Blend(c, "#000000", yRatio*0.5)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Sky", "[2] Moon & Sun", "[3] Catalog"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.lastErr != nil:
		status = errorStyle.Render("ERROR: " + m.lastErr.Error())
	case m.status.LastError != nil:
		status = errorStyle.Render("refresh failed: " + m.status.LastError.Error())
	case !m.rendered.IsZero():
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+m.rendered.Format("2006-01-02 15:04:05 MST"))
		if m.params.Time != "" {
			status += dimStyle.Render(" (fixed)")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Rendering...")
	}

	var help string
	switch m.viewMode {
	case ViewSky:
		help = dimStyle.Render("j/k: focus | l: labels | f: filter | r: re-render")
	case ViewCatalog:
		help = dimStyle.Render("↑↓: navigate | tab: switch view")
	default:
		help = dimStyle.Render("tab: switch view | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(st state.Status) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Status: st}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var hexColor string
		switch {
		case dist <= 1:
			hexColor = "#B4A0DC"
		case dist <= 3:
			hexColor = "#8C78B4"
		case dist <= 5:
			hexColor = "#6E5A96"
		default:
			hexColor = "#504678"
		}
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(string(r)))
	}

	return result.String()
}
