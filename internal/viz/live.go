package viz

import (
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/engine"
	"github.com/san-kum/quantasim/internal/export"
	"github.com/san-kum/quantasim/internal/particle"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	panelWidth      = 50
	historyCapacity = 600
	frameRate       = 60
	gifWidth        = 480
	gifDelay        = 3 // 100ths of a second

	// DestroyRadius is the field radius cleared by a destroy action.
	DestroyRadius = 50.0
	// CreateBurst is the number of particles a create action drops.
	CreateBurst = 10
	// MeasureRadius is how far a measure action looks for a particle.
	MeasureRadius = 50.0
	cursorStep    = 2 // dots per cursor key press
)

// Mode is what a click or Enter does at the cursor.
type Mode int

const (
	ModeGravity Mode = iota
	ModeCreate
	ModeDestroy
	ModeMeasure
)

var modeNames = [...]string{"gravity", "create", "destroy", "measure"}

func (m Mode) String() string { return modeNames[m] }

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model drives an engine at the terminal frame rate and maps keys and
// mouse input onto engine calls.
type Model struct {
	eng   *engine.Engine
	start time.Time
	log   *log.Logger

	width, height int
	canvas        *Canvas

	mode       Mode
	typeIdx    int
	repel      bool
	scenarios  []string
	scenario   int
	lastWell   string
	dragging   bool
	cursorX    int // canvas dots
	cursorY    int
	measured   string
	message    string
	showHelp   bool
	fieldW     float64
	fieldH     float64
	energyHist []float64
	countHist  []float64

	recorder  *export.Recorder
	recording bool
}

// NewModel wraps eng. scenario names the preset currently loaded, if any.
func NewModel(eng *engine.Engine, scenario string, logger *log.Logger) Model {
	w, h := eng.Bounds()
	names := config.ListScenarios()
	idx := -1
	for i, n := range names {
		if n == scenario {
			idx = i
		}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := Model{
		eng:        eng,
		start:      time.Now(),
		log:        logger,
		width:      defaultWidth,
		height:     defaultHeight,
		canvas:     NewCanvas(defaultWidth, defaultHeight),
		scenarios:  names,
		scenario:   idx,
		fieldW:     w,
		fieldH:     h,
		energyHist: make([]float64, 0, historyCapacity),
		countHist:  make([]float64, 0, historyCapacity),
	}
	m.cursorX, m.cursorY = m.canvas.Size()
	m.cursorX /= 2
	m.cursorY /= 2
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			m.stopRecording()
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		m.eng.Step(float64(time.Time(msg).Sub(m.start)) / float64(time.Millisecond))
		if m.eng.Running() {
			m.record()
		}
		m.draw()
		if m.recording {
			m.recorder.Capture(m.eng.Particles(), m.eng.GravityWells())
		}
		return m, tick()
	}
	return m, nil
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	m.message = ""
	switch key {
	case "q", "ctrl+c":
		return true
	case " ":
		if m.eng.Running() {
			m.eng.Pause()
		} else {
			m.eng.Resume()
		}
	case "r":
		m.eng.Reset()
		m.resetHistory()
	case "c":
		m.eng.Clear()
		m.resetHistory()
	case "tab":
		m.mode = (m.mode + 1) % Mode(len(modeNames))
	case "p":
		m.typeIdx = (m.typeIdx + 1) % len(particle.Types)
	case "n":
		m.repel = !m.repel
	case "s":
		m.nextScenario()
	case "w":
		m.placeWell()
	case "enter":
		m.act()
	case "up", "k":
		m.moveCursor(0, -cursorStep)
	case "down", "j":
		m.moveCursor(0, cursorStep)
	case "left", "h":
		m.moveCursor(-cursorStep, 0)
	case "right", "l":
		m.moveCursor(cursorStep, 0)
	case "x":
		on := !m.eng.Config().CollisionDetection
		m.patch(config.Patch{CollisionDetection: &on})
	case "b":
		approx := config.ApproxBarnesHut
		if m.eng.Config().Approximation == config.ApproxBarnesHut {
			approx = config.ApproxPairwise
		}
		m.patch(config.Patch{Approximation: &approx})
	case "+", "=":
		m.scaleTemperature(1.25)
	case "-", "_":
		m.scaleTemperature(0.8)
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recorder = export.NewRecorder(m.fieldW, m.fieldH, gifWidth, gifDelay)
			m.recording = true
		}
	case "e":
		m.exportSnapshot()
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	return false
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	// the canvas is offset by the left padding of canvasStyle
	col, row := msg.X-1, msg.Y
	if col < 0 || row < 0 || col >= m.width || row >= m.height {
		return
	}
	m.cursorX, m.cursorY = col*2, row*4

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.act()
		m.dragging = m.mode == ModeGravity
	case tea.MouseActionMotion:
		if m.dragging && m.lastWell != "" {
			x, y := m.cursorField()
			m.eng.UpdateGravityWell(m.lastWell, x, y)
		}
	case tea.MouseActionRelease:
		m.dragging = false
	}
}

// act performs the current mode's action at the cursor.
func (m *Model) act() {
	x, y := m.cursorField()
	switch m.mode {
	case ModeGravity:
		m.placeWell()
	case ModeCreate:
		t := particle.Types[m.typeIdx]
		m.eng.AddParticlesAt(t, CreateBurst, x, y)
		m.message = fmt.Sprintf("+%d %s", CreateBurst, t)
	case ModeDestroy:
		n := m.eng.RemoveParticlesInArea(x, y, DestroyRadius)
		m.message = fmt.Sprintf("destroyed %d", n)
	case ModeMeasure:
		m.measured = m.measure(x, y)
	}
}

func (m *Model) placeWell() {
	x, y := m.cursorField()
	strength := engine.DefaultWellStrength
	if m.repel {
		strength = -strength
	}
	w := m.eng.AddGravityWell(x, y, strength)
	m.lastWell = w.ID
	m.message = fmt.Sprintf("well at (%.0f, %.0f)", x, y)
}

// measure describes the particle nearest to (x, y) within MeasureRadius.
func (m *Model) measure(x, y float64) string {
	best, bestD := -1, MeasureRadius
	ps := m.eng.Particles()
	for i := range ps {
		d := math.Hypot(ps[i].X-x, ps[i].Y-y)
		if d <= bestD {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return "nothing within reach"
	}
	p := ps[best]
	return fmt.Sprintf("%s  v=%.3g m/s  E=%.3g J  q=%+.2f  age=%.2fs",
		p.Type, p.Speed(), p.Energy, p.Charge, p.Age)
}

func (m *Model) nextScenario() {
	if len(m.scenarios) == 0 {
		return
	}
	m.scenario = (m.scenario + 1) % len(m.scenarios)
	name := m.scenarios[m.scenario]
	s, err := config.GetScenario(name)
	if err == nil {
		err = m.eng.LoadScenario(s)
	}
	if err != nil {
		m.message = err.Error()
		return
	}
	m.lastWell = ""
	m.resetHistory()
	m.message = s.Name
}

func (m *Model) patch(p config.Patch) {
	if err := m.eng.UpdateConfig(p); err != nil {
		m.message = err.Error()
	}
}

func (m *Model) scaleTemperature(f float64) {
	t := m.eng.Config().Temperature * f
	if t < 1 && f > 1 {
		t = 1
	}
	m.patch(config.Patch{Temperature: &t})
}

func (m *Model) moveCursor(dx, dy int) {
	w, h := m.canvas.Size()
	m.cursorX = clampInt(m.cursorX+dx, 0, w-1)
	m.cursorY = clampInt(m.cursorY+dy, 0, h-1)
	if m.dragging && m.lastWell != "" {
		x, y := m.cursorField()
		m.eng.UpdateGravityWell(m.lastWell, x, y)
	}
}

// cursorField maps the cursor from canvas dots to field coordinates.
func (m *Model) cursorField() (float64, float64) {
	w, h := m.canvas.Size()
	return (float64(m.cursorX) + 0.5) / float64(w) * m.fieldW,
		(float64(m.cursorY) + 0.5) / float64(h) * m.fieldH
}

// toCanvas maps field coordinates to canvas dots.
func (m *Model) toCanvas(x, y float64) (int, int) {
	w, h := m.canvas.Size()
	return int(x / m.fieldW * float64(w)), int(y / m.fieldH * float64(h))
}

func (m *Model) resize(w, h int) {
	cw := w - panelWidth - 2
	ch := h - 1
	if cw < 20 || ch < 8 {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	dw, dh := m.canvas.Size()
	m.cursorX = clampInt(m.cursorX, 0, dw-1)
	m.cursorY = clampInt(m.cursorY, 0, dh-1)
}

func (m *Model) record() {
	s := m.eng.Stats()
	m.energyHist = appendCapped(m.energyHist, s.TotalEnergy)
	m.countHist = appendCapped(m.countHist, float64(s.ParticleCount))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) resetHistory() {
	m.energyHist = m.energyHist[:0]
	m.countHist = m.countHist[:0]
	m.measured = ""
}

func (m *Model) stopRecording() {
	if !m.recording {
		return
	}
	m.recording = false
	name := export.FileName("gif", time.Now())
	if err := m.recorder.Save(name); err != nil {
		m.message = err.Error()
		m.log.Printf("gif: %v", err)
		return
	}
	m.message = "saved " + name
	m.log.Printf("gif: %d frames to %s", m.recorder.Frames(), name)
}

func (m *Model) exportSnapshot() {
	now := time.Now()
	name := export.FileName("json", now)
	if err := export.WriteJSONFile(name, export.FromEngine(m.eng, true, now)); err != nil {
		m.message = err.Error()
		return
	}
	m.message = "saved " + name
}

func (m *Model) draw() {
	m.canvas.Clear()
	t := CurrentTheme

	for _, w := range m.eng.GravityWells() {
		cx, cy := m.toCanvas(w.X, w.Y)
		cw, _ := m.canvas.Size()
		r := int(w.Radius / m.fieldW * float64(cw))
		col := t.Attractor
		if w.Strength < 0 {
			col = t.Repeller
		}
		m.canvas.DrawCircle(cx, cy, r, col)
		m.canvas.DrawCircle(cx, cy, 1, col)
	}

	for _, p := range m.eng.Particles() {
		col := lipgloss.Color(p.Color)
		for i := 1; i < len(p.Trail); i++ {
			x0, y0 := m.toCanvas(p.Trail[i-1].X, p.Trail[i-1].Y)
			x1, y1 := m.toCanvas(p.Trail[i].X, p.Trail[i].Y)
			if absInt(x1-x0) > 4 || absInt(y1-y0) > 4 {
				continue
			}
			m.canvas.DrawLine(x0, y0, x1, y1, col)
		}
		x, y := m.toCanvas(p.X, p.Y)
		m.canvas.SetColor(x, y, col)
	}

	for d := -2; d <= 2; d++ {
		m.canvas.SetColor(m.cursorX+d, m.cursorY, t.Accent)
		m.canvas.SetColor(m.cursorX, m.cursorY+d, t.Accent)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	stats := m.eng.Stats()
	cfg := m.eng.Config()
	var s strings.Builder

	title := "QUANTASIM"
	if m.scenario >= 0 && m.scenario < len(m.scenarios) {
		title += " · " + m.scenarios[m.scenario]
	}
	s.WriteString(headerStyle.Render(GradientText(title, CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.eng.Running() {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recording {
		status += "  " + StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Frames()))
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(logScale(m.energyHist),
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("log10 energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Population") + SparklineChart(m.countHist, 30) + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", stats.ParticleCount))
	row("Energy", fmt.Sprintf("%.3e J", stats.TotalEnergy))
	row("Temperature", fmt.Sprintf("%.0f K", stats.Temperature))
	row("Entropy", fmt.Sprintf("%.3f", stats.Entropy))
	row("Avg speed", fmt.Sprintf("%.3e m/s", stats.AvgVelocity))
	row("Collisions", fmt.Sprintf("%d (%.1f/s)", stats.TotalCollisions, stats.CollisionRate))
	row("Sim time", fmt.Sprintf("%.2fs", stats.SimulatedTime))
	row("Age", fmt.Sprintf("%.1fs", stats.SystemAge))
	row("Forces", fmt.Sprintf("G×%.2f EM×%.2f %s", cfg.GravityStrength, cfg.EMForce, approxName(cfg)))
	row("Collide", onOff(cfg.CollisionDetection))

	s.WriteString("\n")
	counts := m.eng.CountByType()
	top := 0
	for _, n := range counts {
		if n > top {
			top = n
		}
	}
	for _, t := range particle.Types {
		c := particle.ConstantsFor(t)
		line := fmt.Sprintf("%-11s %s %5d", t, Bar(float64(counts[t]), float64(top), 16, lipgloss.Color(c.Color)), counts[t])
		if t == particle.Types[m.typeIdx] {
			s.WriteString(activeStyle.Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}

	s.WriteString("\n")
	mode := m.mode.String()
	if m.mode == ModeGravity && m.repel {
		mode += " (repel)"
	}
	row("Mode", activeStyle.Render(mode))
	if m.measured != "" {
		s.WriteString(valueStyle.Render(m.measured) + "\n")
	}
	if m.message != "" {
		s.WriteString(activeStyle.Render(m.message) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset C:Clear Q:Quit\nTab:Mode P:Type S:Scenario ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS           ║
╠══════════════════════════════════════════╣
║  Space     - Pause/Resume                ║
║  R / C     - Reset / Clear               ║
║  Tab       - Cycle mode                  ║
║  Enter     - Act at cursor (or click)    ║
║  Arrows    - Move cursor                 ║
║  W / N     - Place well / toggle repel   ║
║  P         - Cycle particle type         ║
║  S         - Next scenario               ║
║  X / B     - Collisions / Barnes-Hut     ║
║  + / -     - Temperature                 ║
║  G / E     - GIF recording / JSON export ║
║  T / ?     - Theme / this help           ║
║  Q         - Quit                        ║
╚══════════════════════════════════════════╝`

func logScale(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if v > 0 {
			out[i] = math.Log10(v)
		} else if i > 0 {
			out[i] = out[i-1]
		}
	}
	return out
}

func approxName(cfg config.SimulationConfig) string {
	if cfg.Approximation == config.ApproxBarnesHut {
		return "BH"
	}
	return "pairwise"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
