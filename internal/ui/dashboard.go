package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skymap/internal/projection"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

// maxEventRows is how many refresh events the dashboard lists.
const maxEventRows = 5

// DashboardModel lists the catalog state and the objects of the last render.
type DashboardModel struct {
	width   int
	height  int
	cursor  int
	status  state.Status
	res     *render.Result
	lastErr error
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{}
}

// Init implements the Bubble Tea model interface.
func (m DashboardModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateStatus takes the current refresh status.
func (m DashboardModel) UpdateStatus(st state.Status) DashboardModel {
	m.status = st
	return m
}

// UpdateData takes the result of a sky map render.
func (m DashboardModel) UpdateData(res *render.Result) DashboardModel {
	m.res = res
	if m.cursor >= m.objectCount() {
		m.cursor = max(0, m.objectCount()-1)
	}
	return m
}

// SetError sets the last error for display.
func (m DashboardModel) SetError(err error) DashboardModel {
	m.lastErr = err
	return m
}

func (m DashboardModel) objectCount() int {
	if m.res == nil {
		return 0
	}
	return len(m.res.Objects)
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		n := m.objectCount()
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.res == nil && m.lastErr == nil {
		b.WriteString("Waiting for first render...\n")
		return b.String()
	}

	b.WriteString(m.renderCatalogSummary())
	b.WriteString("\n")
	b.WriteString(m.renderObjectsTable())
	if dropped := m.renderDropped(); dropped != "" {
		b.WriteString("\n")
		b.WriteString(dropped)
	}
	if events := m.renderEvents(); events != "" {
		b.WriteString("\n")
		b.WriteString(events)
	}

	return b.String()
}

func (m DashboardModel) renderCatalogSummary() string {
	var b strings.Builder
	st := m.status

	b.WriteString(titleStyle.Render("Catalog"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %-15s %d\n", "Stars", st.Stars)
	fmt.Fprintf(&b, "  %-15s %d\n", "Constellations", st.Constellations)
	fmt.Fprintf(&b, "  %-15s %d\n", "Satellites", st.Satellites)

	loaded := idleStyle.Render("built-in")
	if !st.LoadedAt.IsZero() {
		loaded = okStyle.Render(st.LoadedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "  %-15s %s\n", "Loaded", loaded)

	if st.Refreshes > 0 {
		fmt.Fprintf(&b, "  %-15s %d (last %s)\n", "Refreshes", st.Refreshes,
			st.RefreshDuration.Round(time.Millisecond))
	}
	if st.LastError != nil {
		b.WriteString("  " + errorStyle.Render("Refresh failed: "+st.LastError.Error()) + "\n")
	}
	return b.String()
}

// renderAltitudeBar shows altitude as a fraction of the way to the zenith.
func (m DashboardModel) renderAltitudeBar(alt float64, width int) string {
	frac := alt / 90
	if frac < 0 {
		frac = 0
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + barStyle.Render(bar) + "]"
}

func (m DashboardModel) renderObjectsTable() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Above the Horizon"))
	b.WriteString("\n")

	header := fmt.Sprintf("%-16s %-9s %-12s %-10s %-12s %-5s",
		"Object", "Kind", "Altitude", "Azimuth", "Distance", "Mag")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if m.objectCount() == 0 {
		b.WriteString("  Nothing above the horizon\n")
		return b.String()
	}

	maxRows := m.height - 16 // Leave room for the summary and events
	if maxRows < 5 {
		maxRows = 5
	}

	objects := m.res.Objects
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(objects))

	for i := startIdx; i < endIdx; i++ {
		row := m.objectRow(objects[i])
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(objects) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d objects", startIdx+1, endIdx, len(objects)))
	}

	return b.String()
}

func (m DashboardModel) objectRow(p projection.Point) string {
	mag := ""
	if p.HasMag {
		mag = fmt.Sprintf("%.1f", p.Mag)
	}
	return fmt.Sprintf("%-16s %-9s %s %5.1f° %-10s %-12s %-5s",
		truncate(p.Label, 16),
		p.Kind,
		m.renderAltitudeBar(p.Alt, 6),
		p.Alt,
		fmt.Sprintf("%.1f° %s", p.Az, render.Ordinal(p.Az)),
		render.FormatDistance(p.RangeKm),
		mag,
	)
}

func (m DashboardModel) renderDropped() string {
	if m.res == nil || len(m.res.Dropped) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Not Drawn"))
	b.WriteString("\n")
	for _, d := range m.res.Dropped {
		line := fmt.Sprintf("  %-16s %s", truncate(d.ID, 16), d.Reason)
		if d.Err != nil {
			line += ": " + d.Err.Error()
		}
		b.WriteString(idleStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m DashboardModel) renderEvents() string {
	events := m.status.Events
	if len(events) == 0 {
		return ""
	}
	if len(events) > maxEventRows {
		events = events[len(events)-maxEventRows:]
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Refresh Events"))
	b.WriteString("\n")
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := fmt.Sprintf("  %s %-16s", e.Timestamp.Format("15:04:05"), e.Type)
		if e.Dataset != "" {
			line += fmt.Sprintf(" %s %d→%d", e.Dataset, e.OldCount, e.NewCount)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		style := rowStyle
		if e.Type == state.EventRefreshFailed {
			style = errorStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// SelectedObject returns the object under the cursor, if any.
func (m DashboardModel) SelectedObject() *projection.Point {
	if m.cursor < 0 || m.cursor >= m.objectCount() {
		return nil
	}
	p := m.res.Objects[m.cursor]
	return &p
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
