package viz

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
)

// sandboxEntry starts from the default configuration without a preset.
const sandboxEntry = "sandbox"

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuIdleDesc = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// paramSteps is the h/l adjustment per parameter.
var paramSteps = map[string]float64{
	"gravity":     0.1,
	"em":          0.1,
	"temperature": 100,
	"seed":        1,
}

type picker struct {
	state, cursor int
	entries       []string
	selected      string
	params        map[string]float64
	paramNames    []string
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	logger        *log.Logger
	live          Model
}

// NewPicker returns the scenario picker that hands over to the live view.
func NewPicker(logger *log.Logger) tea.Model {
	return newPicker(logger)
}

func newPicker(logger *log.Logger) *picker {
	return &picker{
		state:      stateMenu,
		entries:    append([]string{sandboxEntry}, config.ListScenarios()...),
		paramNames: []string{"gravity", "em", "temperature", "seed"},
		logger:     logger,
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m picker) forward(msg tea.Msg) (picker, tea.Cmd) {
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m picker) handleKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.entries[m.cursor]
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
		m.loadParams()
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				m.params[m.paramNames[m.paramCursor]] = val
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	name := m.paramNames[m.paramCursor]
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", m.params[name])
	case "left", "h":
		m.params[name] -= paramSteps[name]
	case "right", "l":
		m.params[name] += paramSteps[name]
	case "s":
		if err := m.start(); err != nil {
			m.err = err
			return m, nil
		}
		cmds := []tea.Cmd{m.live.Init()}
		if m.width > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg { return tea.WindowSizeMsg{Width: w, Height: h} })
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// loadParams seeds the editable parameters from the chosen entry.
func (m *picker) loadParams() {
	cfg := config.DefaultSimulation()
	if s, err := config.GetScenario(m.selected); err == nil {
		cfg = s.Config
	}
	m.params = map[string]float64{
		"gravity":     cfg.GravityStrength,
		"em":          cfg.EMForce,
		"temperature": cfg.Temperature,
		"seed":        float64(time.Now().Unix() % 100000),
	}
}

// build creates the engine for the chosen entry with the edited overrides.
func (m *picker) build() (*engine.Engine, error) {
	eng, err := engine.New(config.DefaultSimulation(),
		engine.WithSeed(int64(m.params["seed"])), engine.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	if m.selected != sandboxEntry {
		s, err := config.GetScenario(m.selected)
		if err != nil {
			return nil, err
		}
		if err := eng.LoadScenario(s); err != nil {
			return nil, err
		}
	}
	g, em, t := m.params["gravity"], m.params["em"], m.params["temperature"]
	if err := eng.UpdateConfig(config.Patch{GravityStrength: &g, EMForce: &em, Temperature: &t}); err != nil {
		return nil, err
	}
	return eng, nil
}

func (m *picker) start() error {
	eng, err := m.build()
	if err != nil {
		return err
	}
	m.live = NewModel(eng, m.selected, m.logger)
	m.state = stateSim
	return nil
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func describe(name string) string {
	if name == sandboxEntry {
		return "default mix, no wells"
	}
	s, err := config.GetScenario(name)
	if err != nil {
		return ""
	}
	return s.Description
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("QUANTASIM") + "\n    " + menuSub.Render("particle physics sandbox") + "\n    " + menuSub.Render("────────────────────────") + "\n\n")
	for i, name := range m.entries {
		desc := describe(name)
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-14s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-14s", name)), menuIdleDesc.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHint("j/k", "navigate") + keyHint("enter", "select") + keyHint("q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.selected)) + "\n    " + menuSub.Render(describe(m.selected)) + "\n    " + menuSub.Render("────────────────────────") + "\n\n")
	for i, name := range m.paramNames {
		valStr := fmt.Sprintf("%10.4g", m.params[name])
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-12s", name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuIdle.Render(fmt.Sprintf("  %-12s", name)), menuIdleDesc.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHint("j/k", "select") + keyHint("h/l", "adjust") + keyHint("s", "start") + keyHint("esc", "back") + "\n")
	return b.String()
}

func keyHint(key, action string) string {
	return menuKey.Render(key) + menuIdle.Render(" "+action+"  ")
}

// RunInteractive opens the picker on the alternate screen with mouse input.
func RunInteractive(logger *log.Logger) error {
	_, err := tea.NewProgram(NewPicker(logger), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// RunLive opens the live view directly on eng.
func RunLive(eng *engine.Engine, scenario string, logger *log.Logger) error {
	_, err := tea.NewProgram(NewModel(eng, scenario, logger), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
