package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/width"
)

// hostModel is the Bubble Tea terminal host: it owns nothing the engine
// doesn't already own, and only calls Engine.Tick on an auto-advance timer or
// a manual step — exactly the "host scheduler calls tick() zero or more times
// per frame" role spec.md §5/§6 assigns to the renderer/UI collaborator.
// Grounded on the teacher's CLIModel (cli.go) and ViewportSystem (viewport.go),
// cut down to the views this simulation actually has.
type hostModel struct {
	engine *Engine

	width, height int
	paused        bool
	showHelp      bool
	selectedView  string
	viewModes     []string

	viewportX, viewportY int
}

type tickMsg time.Time

var hostKeys = struct {
	up, down, left, right key.Binding
	space, enter, help    key.Binding
	quit, view, reset     key.Binding
}{
	up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	space: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
	enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "step once")),
	help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	view:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle view")),
	reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset pan")),
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	gridFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1)

	voidStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	landStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("94"))
	alphaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	betaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("67"))
	stormStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	humanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	speciesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func newHostModel(e *Engine) hostModel {
	return hostModel{
		engine:       e,
		viewModes:    []string{"grid", "stats", "events"},
		selectedView: "grid",
	}
}

func doTick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m hostModel) Init() tea.Cmd {
	return doTick()
}

func (m hostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, hostKeys.quit):
			return m, tea.Quit
		case key.Matches(msg, hostKeys.help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, hostKeys.space):
			m.paused = !m.paused
		case key.Matches(msg, hostKeys.enter):
			m.engine.Tick()
		case key.Matches(msg, hostKeys.view):
			for i, mode := range m.viewModes {
				if mode == m.selectedView {
					m.selectedView = m.viewModes[(i+1)%len(m.viewModes)]
					break
				}
			}
		case key.Matches(msg, hostKeys.left):
			if m.viewportX > 0 {
				m.viewportX--
			}
		case key.Matches(msg, hostKeys.right):
			if m.viewportX < m.engine.Grid.Width-1 {
				m.viewportX++
			}
		case key.Matches(msg, hostKeys.up):
			if m.viewportY > 0 {
				m.viewportY--
			}
		case key.Matches(msg, hostKeys.down):
			if m.viewportY < m.engine.Grid.Height-1 {
				m.viewportY++
			}
		case key.Matches(msg, hostKeys.reset):
			m.viewportX, m.viewportY = 0, 0
		}

	case tickMsg:
		if !m.paused {
			m.engine.Tick()
		}
		cmd = doTick()
	}

	return m, cmd
}

func (m hostModel) View() string {
	if m.showHelp {
		return m.helpView()
	}

	var body string
	switch m.selectedView {
	case "stats":
		body = m.statsView()
	case "events":
		body = m.eventsView()
	default:
		body = m.gridView()
	}

	status := "running"
	if m.paused {
		status = "paused"
	}
	header := titleStyle.Render(fmt.Sprintf(" morphsim — tick %d  cycle %d  [%s] ", m.engine.TimeStep, m.engine.CycleCount, status))
	footer := infoStyle.Render(" space: pause  enter: step  v: view  arrows: pan  ?: help  q: quit ")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// gridView renders a window of the grid, one rune per cell, colored by which
// layer currently dominates that cell's display state.
func (m hostModel) gridView() string {
	g := m.engine.Grid
	viewW, viewH := 60, 24
	if m.width > 10 {
		viewW = m.width - 6
	}
	if m.height > 10 {
		viewH = m.height - 8
	}

	var rows []string
	for dy := 0; dy < viewH; dy++ {
		y := m.viewportY + dy
		if y >= g.Height {
			break
		}
		var row strings.Builder
		for dx := 0; dx < viewW; dx++ {
			x := m.viewportX + dx
			if x >= g.Width {
				break
			}
			row.WriteString(cellGlyph(g.At(x, y)))
		}
		rows = append(rows, row.String())
	}
	return gridFrameStyle.Render(strings.Join(rows, "\n"))
}

func cellGlyph(c *Cell) string {
	if !c.Exists {
		return voidStyle.Render("·")
	}
	if c.HasThunderstorm {
		return stormStyle.Render("⚡")
	}
	switch c.CrystalState {
	case CrystalAlpha:
		return alphaStyle.Render("◆")
	case CrystalBeta:
		return betaStyle.Render("◇")
	case CrystalBio:
		if c.BioAttributes != nil && c.BioAttributes.SpeciesID == 0 {
			return humanStyle.Render("☗")
		}
		return speciesStyle.Render("o")
	default:
		return landStyle.Render("▒")
	}
}

// statsView reports grid-wide aggregates, one label per row, each label padded
// to a fixed display width measured with width.StringWidth.
func (m hostModel) statsView() string {
	g := m.engine.Grid
	var land, alpha, beta, bio, storms int
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			if !c.Exists {
				continue
			}
			land++
			if c.HasThunderstorm {
				storms++
			}
			switch c.CrystalState {
			case CrystalAlpha:
				alpha++
			case CrystalBeta:
				beta++
			case CrystalBio:
				bio++
			}
		}
	}

	rows := []struct {
		label string
		value int
	}{
		{"land cells", land},
		{"alpha crystals", alpha},
		{"beta crystals", beta},
		{"settlements", bio},
		{"active storms", storms},
	}

	var b strings.Builder
	for _, r := range rows {
		label := r.label
		pad := 18 - width.StringWidth(label)
		if pad < 0 {
			pad = 0
		}
		fmt.Fprintf(&b, "%s%s %d\n", label, strings.Repeat(" ", pad), r.value)
	}
	return gridFrameStyle.Render(b.String())
}

func (m hostModel) eventsView() string {
	events := m.engine.Events.Recent(20)
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "[%6d] %-20s %s\n", ev.Tick, ev.Type, ev.Description)
	}
	if len(events) == 0 {
		b.WriteString("no events yet")
	}
	return gridFrameStyle.Render(b.String())
}

func (m hostModel) helpView() string {
	lines := []string{
		"morphsim — controls",
		"",
		"space   pause/resume",
		"enter   step one tick while paused",
		"v       cycle grid/stats/events view",
		"arrows  pan the grid view",
		"r       reset pan",
		"?       toggle this help",
		"q       quit",
	}
	return gridFrameStyle.Render(strings.Join(lines, "\n"))
}

// runTUI starts the Bubble Tea program driving e.
func runTUI(e *Engine) error {
	p := tea.NewProgram(newHostModel(e), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
