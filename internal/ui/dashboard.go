package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/lunas/internal/almanac"
	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/snapshot"
	"github.com/litescript/lunas/internal/state"
)

// Styles for the dashboard
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F2D98D"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// maxEventRows is the number of recent events listed under the panels.
const maxEventRows = 5

// DashboardModel renders the almanac for the viewed day.
type DashboardModel struct {
	width      int
	height     int
	view       state.View
	showEvents bool
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel() DashboardModel {
	return DashboardModel{showEvents: true}
}

// SetSize updates the viewport size.
func (m DashboardModel) SetSize(width, height int) DashboardModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new state.
func (m DashboardModel) UpdateData(view state.View) DashboardModel {
	m.view = view
	return m
}

// Update handles messages.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "e" {
		m.showEvents = !m.showEvents
	}
	return m, nil
}

// View renders the dashboard.
func (m DashboardModel) View() string {
	var b strings.Builder

	if m.view.LastError != nil {
		b.WriteString(errorStyle.Render("Error: " + m.view.LastError.Error()))
		b.WriteString("\n\n")
	}

	snap := m.view.Snapshot
	if snap == nil {
		if m.view.LastError == nil {
			b.WriteString("Computing almanac...\n")
		}
		return b.String()
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  ·  %.4f°, %.4f°  ·  UTC%+g",
		snap.Date, snap.Latitude, snap.Longitude, snap.OffsetHours)))
	b.WriteString("\n")

	loc := snapshot.OffsetZone(snap.OffsetHours)
	sun := m.renderBodyPanel("Sun", snap.Sun, m.view.SunTrace, loc)
	moon := m.renderBodyPanel("Moon", snap.Moon, m.view.MoonTrace, loc)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(sun), " ", panelStyle.Render(moon)))
	b.WriteString("\n")

	b.WriteString(panelStyle.Render(m.renderPhasePanel(snap)))
	b.WriteString("\n")

	if m.showEvents {
		b.WriteString(m.renderEvents())
	}

	return b.String()
}

func (m DashboardModel) renderBodyPanel(name string, ev snapshot.BodyEvents, trace *almanac.AltitudeTrace, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("rise  ") + valueStyle.Render(timeOnly(ev.Rise)) + "\n")
	b.WriteString(labelStyle.Render("set   ") + valueStyle.Render(timeOnly(ev.Set)) + "\n")

	if peak := trace.Peak(); peak != nil {
		b.WriteString(labelStyle.Render("peak  "))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f° at %s", peak.AltDeg, peak.At.In(loc).Format("15:04"))))
		b.WriteString("\n")
	}

	b.WriteString(renderAltitudeSparkline(trace.Values(), SparklineWidth))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(loc.String()))

	return b.String()
}

func (m DashboardModel) renderPhasePanel(snap *snapshot.Snapshot) string {
	var b strings.Builder

	stage := astro.Classify(snap.PhaseAngle)
	b.WriteString(titleStyle.Render(phaseGlyph(stage) + " " + snap.Phase))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  (%.1f°)", snap.PhaseAngle)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("illuminated ") + renderIlluminationBar(snap.IlluminatedFraction, 20))
	b.WriteString(valueStyle.Render(fmt.Sprintf(" %.1f%%", snap.IlluminatedFraction*100)))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("moon  ") + valueStyle.Render(fmt.Sprintf("%.0f km", snap.MoonDistanceKm)))
	b.WriteString(labelStyle.Render("   sun  ") + valueStyle.Render(fmt.Sprintf("%.4f AU", astro.KmToAU(snap.SunDistanceKm))))

	if len(m.view.Illumination) > 1 {
		vals := make([]float64, len(m.view.Illumination))
		for i, p := range m.view.Illumination {
			vals[i] = p.Value
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("viewed days ") + renderFractionSparkline(vals))
	}

	return b.String()
}

func (m DashboardModel) renderEvents() string {
	events := m.view.Events
	if len(events) == 0 {
		return ""
	}
	if len(events) > maxEventRows {
		events = events[len(events)-maxEventRows:]
	}

	var b strings.Builder
	for _, e := range events {
		line := fmt.Sprintf("  %s %-14s %s", e.Date, e.Type, eventDetail(e))
		if e.Type == state.EventComputeFailed {
			b.WriteString(errorStyle.Render(truncate(line, m.lineWidth())))
		} else {
			b.WriteString(labelStyle.Render(truncate(line, m.lineWidth())))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m DashboardModel) lineWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func eventDetail(e state.Event) string {
	if e.Type == state.EventPhaseChange {
		return e.OldPhase + " → " + e.NewPhase
	}
	return e.Detail
}

// renderIlluminationBar draws fraction in [0, 1] as a bracketed bar.
func renderIlluminationBar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1C5"))
	return "[" + style.Render(bar) + "]"
}

var phaseGlyphs = []string{"🌑", "🌒", "🌓", "🌔", "🌕", "🌖", "🌗", "🌘"}

func phaseGlyph(s astro.PhaseStage) string {
	if s < 0 || int(s) >= len(phaseGlyphs) {
		return "?"
	}
	return phaseGlyphs[s]
}

// timeOnly extracts the HH:MM part of a local timestamp.
func timeOnly(ts *string) string {
	if ts == nil {
		return "—"
	}
	if i := strings.LastIndexByte(*ts, ' '); i >= 0 {
		return (*ts)[i+1:]
	}
	return *ts
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
