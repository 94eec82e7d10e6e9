// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/lunas/internal/snapshot"
	"github.com/litescript/lunas/internal/state"
	"github.com/litescript/lunas/internal/version"
)

// ComputeFunc produces the almanac for one request. It runs off the UI
// goroutine.
type ComputeFunc func(req snapshot.Request) (*state.Result, error)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// ComputedMsg carries the outcome of one computation.
	ComputedMsg struct {
		Result   *state.Result
		Duration time.Duration
		Err      error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	compute ComputeFunc

	// UI state
	width     int
	height    int
	ready     bool
	computing bool
	animTick  int

	dashboard DashboardModel
	view      state.View
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, compute ComputeFunc) Model {
	return Model{
		state:     stateMgr,
		compute:   compute,
		dashboard: NewDashboardModel(),
		view:      stateMgr.View(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		m.computeCmd(m.state.Request()),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			cmds = append(cmds, m.startCompute(m.state.StepDays(-1)))
		case "right", "l":
			cmds = append(cmds, m.startCompute(m.state.StepDays(1)))
		case "t":
			cmds = append(cmds, m.startCompute(m.state.Today()))
		default:
			var cmd tea.Cmd
			m.dashboard, cmd = m.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Logo and footer take ~10 lines
		m.dashboard = m.dashboard.SetSize(msg.Width, msg.Height-10)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.view = m.state.View()
		m.dashboard = m.dashboard.UpdateData(m.view)

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case ComputedMsg:
		m.computing = false
		m.state.Update(msg.Result, msg.Duration, msg.Err)
		m.view = m.state.View()
		m.dashboard = m.dashboard.UpdateData(m.view)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) startCompute(req snapshot.Request) tea.Cmd {
	m.computing = true
	m.view.Request = req
	return m.computeCmd(req)
}

func (m Model) computeCmd(req snapshot.Request) tea.Cmd {
	compute := m.compute
	return func() tea.Msg {
		start := time.Now()
		res, err := compute(req)
		return ComputedMsg{Result: res, Duration: time.Since(start), Err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderLogo() + "\n" + m.dashboard.View() + "\n" + m.renderFooter()
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ╦  ╦ ╦╔╗╔╔═╗╔═╗`,
		`  ║  ║ ║║║║╠═╣╚═╗`,
		`  ╩═╝╚═╝╝╚╝╩ ╩╚═╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Sun & Moon almanac · v%s", version.Version)))
	b.WriteString("\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// silver on the left fading to pale gold on the right, dimmer toward the
// bottom row.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Silver (#C0C8D8) -> Pale gold (#F2D98D)
	r := 192 + xRatio*(242-192)
	g := 200 + xRatio*(217-200)
	b := 216 + xRatio*(141-216)

	brightness := 1.0 - (yRatio * 0.4)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return int(v)
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#C9A227"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.computing:
		status = accentStyle.Render(spinner) + dimStyle.Render(" computing "+displayDate(m.view.Request))
	case m.view.LastError != nil:
		status = errStyle.Render("ERROR: " + m.view.LastError.Error())
	case !m.view.LastCompute.IsZero():
		status = dimStyle.Render("computed in " + m.view.ComputeDuration.Round(time.Millisecond).String())
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(" waiting for ephemeris...")
	}

	help := dimStyle.Render("←/→: day | t: today | q: quit")
	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func displayDate(req snapshot.Request) string {
	if req.Date == "" {
		return "today"
	}
	return req.Date
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
