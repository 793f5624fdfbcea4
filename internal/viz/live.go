// Package viz renders a live terminal view of a running environment: a
// body table refreshed from the published snapshot, with pause/resume and
// single-step controls.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/world"
)

const refreshInterval = 50 * time.Millisecond

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	robotStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
)

type TickMsg time.Time

// Model is the bubbletea model of the live view.
type Model struct {
	env      *world.Environment
	stepSize float64
	realTime bool

	states  []body.PublishedState
	robots  map[string]bool
	running bool
}

// NewModel builds a live view over env. The simulation loop is started on
// Init and stopped when the view quits.
func NewModel(env *world.Environment, stepSize float64, realTime bool) Model {
	robots := map[string]bool{}
	for _, r := range env.Robots() {
		robots[r.Name()] = true
	}
	return Model{
		env:      env,
		stepSize: stepSize,
		realTime: realTime,
		robots:   robots,
		running:  true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	m.env.StartSimulation(m.stepSize, m.realTime)
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.states = m.env.PublishedBodies()
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.env.StopSimulation()
			return m, tea.Quit
		case " ":
			if m.running {
				m.env.StopSimulation()
			} else {
				m.env.StartSimulation(m.stepSize, m.realTime)
			}
			m.running = !m.running
		case "s":
			if !m.running {
				m.env.StepSimulation(m.stepSize)
			}
		case "r":
			if !m.running {
				m.env.Reset()
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	status := "running"
	if !m.running {
		status = pausedStyle.Render("paused")
	}
	simTime := float64(m.env.SimulationTime()) / 1e6
	b.WriteString(headerStyle.Render(fmt.Sprintf("simworld  t=%.3fs  %s", simTime, status)))
	b.WriteString("\n")

	for _, s := range m.states {
		name := s.Name
		if m.robots[name] {
			name = robotStyle.Render(name)
		}
		line := fmt.Sprintf("%s %s", labelStyle.Render(name), valueStyle.Render(formatState(s)))
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.states) == 0 {
		b.WriteString(valueStyle.Render("(no bodies)"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause/resume · s step · r reset · q quit"))
	return panelStyle.Render(b.String())
}

func formatState(s body.PublishedState) string {
	p := s.Pose.Trans
	out := fmt.Sprintf("pos=(%7.3f %7.3f %7.3f)", p.X(), p.Y(), p.Z())
	if len(s.JointValues) > 0 {
		vals := make([]string, len(s.JointValues))
		for i, v := range s.JointValues {
			vals[i] = fmt.Sprintf("%.3f", v)
		}
		out += "  q=[" + strings.Join(vals, " ") + "]"
	}
	if !s.Enabled {
		out += "  (disabled)"
	}
	return out
}

// Run blocks displaying the live view until the user quits.
func Run(env *world.Environment, stepSize float64, realTime bool) error {
	p := tea.NewProgram(NewModel(env, stepSize, realTime))
	_, err := p.Run()
	return err
}
