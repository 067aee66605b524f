package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/geo/r3"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/experiment"
	"github.com/san-kum/phrictl/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	historyCapacity = 600
	frameRate       = 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// history keeps the most recent samples reported by the simulator.
type history struct {
	trail   []r3.Vector
	scaling []float64
	force   []float64
}

func (h *history) OnStep(s *sim.Sample) {
	h.trail = appendCapped(h.trail, s.Position)
	h.scaling = appendCapped(h.scaling, s.ScalingFactor)
	h.force = appendCapped(h.force, s.Wrench.Linear().Norm())
}

func appendCapped[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

type marker struct {
	name   string
	x, y   *float64
	radius float64
}

type wall struct {
	normal r3.Vector
	offset float64
}

// Monitor is a bubbletea model stepping an experiment in real time.
type Monitor struct {
	cfg    *config.Config
	logger *zap.Logger

	exp     *experiment.Experiment
	hist    *history
	markers []marker
	walls   []wall
	view    Viewport

	theme  Theme
	styles Styles

	running       bool
	done          bool
	err           error
	stepsPerFrame int
	paramKeys     []string
	selected      int
	showHelp      bool
}

type MonitorOption func(*Monitor)

func WithMonitorLogger(logger *zap.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = logger }
}

func WithTheme(name string) MonitorOption {
	return func(m *Monitor) { m.theme = GetTheme(name) }
}

// NewMonitor builds the experiment described by cfg. The configuration is
// kept and rebuilt on reset.
func NewMonitor(cfg *config.Config, opts ...MonitorOption) (*Monitor, error) {
	m := &Monitor{
		cfg:     cfg,
		logger:  zap.NewNop(),
		theme:   Themes[0],
		running: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.styles = NewStyles(m.theme)
	if err := m.reset(); err != nil {
		return nil, err
	}
	return m, nil
}

// reset rebuilds the experiment and clears the history.
func (m *Monitor) reset() error {
	exp, err := experiment.Build(m.cfg, experiment.WithLogger(m.logger))
	if err != nil {
		return err
	}
	if err := exp.Rewind(); err != nil {
		return err
	}
	s := exp.Simulator()
	if err := s.Init(); err != nil {
		return err
	}
	m.exp = exp
	m.hist = &history{}
	s.AddObserver(m.hist)

	m.done, m.err = false, nil
	m.stepsPerFrame = max(1, int(math.Round(1/(frameRate*m.cfg.Run.Dt))))
	m.paramKeys = m.tunableParams()
	m.selected = min(m.selected, max(len(m.paramKeys)-1, 0))
	m.collectScene()
	return nil
}

// tunableParams lists every parameter handle except the robot state.
func (m *Monitor) tunableParams() []string {
	var keys []string
	for _, name := range m.exp.Params().Names() {
		if strings.HasPrefix(name, "robot.") {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

func (m *Monitor) collectScene() {
	params := m.exp.Params()
	m.markers = m.markers[:0]
	addObjects := func(owner string, objects []config.ObjectConfig) {
		for _, oc := range objects {
			x, errX := params.Lookup(owner + "." + oc.Name + ".x")
			y, errY := params.Lookup(owner + "." + oc.Name + ".y")
			if errX != nil || errY != nil {
				continue
			}
			m.markers = append(m.markers, marker{name: oc.Name, x: x, y: y, radius: oc.Threshold})
		}
	}
	for _, gc := range m.cfg.Generators {
		addObjects(gc.Name, gc.Objects)
	}
	for _, cc := range m.cfg.Constraints {
		addObjects(cc.Name, cc.Objects)
	}

	m.walls = m.walls[:0]
	for _, wc := range m.cfg.Driver.Walls {
		if len(wc.Normal) != 3 {
			continue
		}
		n := r3.Vector{X: wc.Normal[0], Y: wc.Normal[1], Z: wc.Normal[2]}
		if math.Hypot(n.X, n.Y) < 1e-9 {
			continue
		}
		m.walls = append(m.walls, wall{normal: n, offset: wc.Offset})
	}

	p := m.exp.Robot().Task.State.Pose.Position
	m.view = Viewport{MinX: p.X - 0.5, MaxX: p.X + 0.5, MinY: p.Y - 0.5, MaxY: p.Y + 0.5}
	for _, mk := range m.markers {
		m.view = m.view.Expand(*mk.x, *mk.y, math.Max(mk.radius, 0.1))
	}
}

// Experiment returns the experiment currently stepped.
func (m *Monitor) Experiment() *experiment.Experiment { return m.exp }
func (m *Monitor) Running() bool                      { return m.running }
func (m *Monitor) Done() bool                         { return m.done }
func (m *Monitor) Err() error                         { return m.err }

func (m *Monitor) Init() tea.Cmd { return tick() }

func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "n":
			m.advance(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "+", "=":
			m.stepsPerFrame *= 2
		case "-", "_":
			m.stepsPerFrame = max(1, m.stepsPerFrame/2)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

// advance steps the simulation up to n cycles, stopping at the configured
// duration or on the first cycle error.
func (m *Monitor) advance(n int) {
	if m.done || m.err != nil {
		return
	}
	s := m.exp.Simulator()
	for i := 0; i < n; i++ {
		if s.Time() >= m.cfg.Run.Duration-m.cfg.Run.Dt/2 {
			m.done = true
			m.running = false
			m.logger.Info("live run complete", zap.Int("cycles", s.Cycle()))
			return
		}
		if _, err := s.Step(); err != nil {
			m.err = err
			m.running = false
			m.logger.Error("cycle failed", zap.Error(err))
			return
		}
	}
	p := m.exp.Robot().Task.State.Pose.Position
	if !m.view.Contains(p.X, p.Y) {
		m.view = m.view.Expand(p.X, p.Y, 0.1)
	}
}

func (m *Monitor) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam moves the selected parameter by 5% of its magnitude, or by
// 0.01 when it is zero.
func (m *Monitor) adjustParam(dir float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	h, err := m.exp.Params().Lookup(m.paramKeys[m.selected])
	if err != nil {
		return
	}
	step := 0.05 * math.Abs(*h)
	if step == 0 || math.IsInf(step, 0) {
		step = 0.01
	}
	if !math.IsInf(*h, 0) {
		*h += dir * step
	}
}

func (m *Monitor) status() string {
	st := m.styles
	switch {
	case m.err != nil:
		return st.Stopped.Render("ERROR")
	case m.done:
		return st.Stopped.Render("DONE")
	case m.running:
		return st.Running.Render("RUNNING")
	default:
		return st.Paused.Render("PAUSED")
	}
}

func (m *Monitor) drawCanvas() string {
	c := NewCanvas(canvasWidth, canvasHeight, m.view)
	span := math.Hypot(m.view.MaxX-m.view.MinX, m.view.MaxY-m.view.MinY)
	for _, w := range m.walls {
		n := w.normal.Normalize()
		p := n.Mul(w.offset)
		dir := r3.Vector{X: -n.Y, Y: n.X}
		c.Segment(p.X-span*dir.X, p.Y-span*dir.Y, p.X+span*dir.X, p.Y+span*dir.Y)
	}
	for _, mk := range m.markers {
		c.Mark(*mk.x, *mk.y)
		if mk.radius > 0 {
			c.Circle(*mk.x, *mk.y, mk.radius)
		}
	}
	for _, p := range m.hist.trail {
		c.Plot(p.X, p.Y)
	}
	p := m.exp.Robot().Task.State.Pose.Position
	c.Mark(p.X, p.Y)
	return c.String()
}

func (m *Monitor) View() string {
	st := m.styles
	r := m.exp.Robot()
	s := m.exp.Simulator()
	row := func(label, value string) string {
		return st.Label.Render(label) + st.Value.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(st.Header.Render(strings.ToUpper(m.cfg.Name)) + "\n")
	b.WriteString(m.status())
	if m.err != nil {
		b.WriteString(" " + st.ErrorMsg.Render(m.err.Error()))
	}
	b.WriteString("\n\n")

	b.WriteString(row("Time", fmt.Sprintf("%.3fs / %.1fs", s.Time(), m.cfg.Run.Duration)))
	b.WriteString(row("Cycle", fmt.Sprintf("%d (x%d)", s.Cycle(), m.stepsPerFrame)))
	scaling := r.Control.ScalingFactor
	b.WriteString(st.Label.Render("Scaling") + st.Bar(scaling, 20) + st.Value.Render(fmt.Sprintf(" %.3f", scaling)) + "\n")
	p := r.Task.State.Pose.Position
	b.WriteString(row("Position", fmt.Sprintf("%+.3f %+.3f %+.3f", p.X, p.Y, p.Z)))
	v := r.Task.State.Twist.Linear()
	b.WriteString(row("Velocity", fmt.Sprintf("%+.3f %+.3f %+.3f", v.X, v.Y, v.Z)))
	f := r.Task.State.Wrench.Linear()
	b.WriteString(row("Force", fmt.Sprintf("%+.2f %+.2f %+.2f", f.X, f.Y, f.Z)))

	if len(m.hist.scaling) > 1 {
		chart := asciigraph.Plot(m.hist.scaling, asciigraph.Height(4), asciigraph.Width(36), asciigraph.Caption("scaling"))
		b.WriteString(st.Graph.Render(chart) + "\n")
	}
	b.WriteString(row("Force |f|", Sparkline(m.hist.force, 30)))

	b.WriteString("\nCONSTRAINTS\n")
	ctrl := m.exp.Controller()
	for _, name := range ctrl.ConstraintNames() {
		value, err := ctrl.ConstraintValue(name)
		if err != nil {
			continue
		}
		b.WriteString(row("  "+name, fmt.Sprintf("%.3f", value)))
	}

	if g := m.exp.Trajectories(); g != nil && g.Len() > 0 {
		b.WriteString("\nTRAJECTORIES\n")
		for _, name := range g.Names() {
			t, err := g.Get(name)
			if err != nil {
				continue
			}
			state := fmt.Sprintf("segment %d/%d", min(t.CurrentSegment()+1, t.SegmentCount()), t.SegmentCount())
			switch {
			case t.Finished():
				state = "finished"
			case t.Paused():
				state += " paused"
			}
			b.WriteString(row("  "+name, fmt.Sprintf("%+.3f %s", *t.Output(), state)))
		}
	}

	b.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) == 0 {
		b.WriteString(st.Label.Render("  (none)") + "\n")
	}
	lo, hi := paramWindow(len(m.paramKeys), m.selected, 8)
	params := m.exp.Params()
	for i := lo; i < hi; i++ {
		key := m.paramKeys[i]
		h, err := params.Lookup(key)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%-24s %.4g", key, *h)
		if i == m.selected {
			b.WriteString(st.Active.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.Value.Render(line) + "\n")
		}
	}
	b.WriteString(st.Help.Render("SP:Pause N:Step R:Reset Q:Quit\nTab/↑↓:Tune +/-:Speed T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.Canvas.Render(m.drawCanvas()), st.Panel.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

// paramWindow returns the index range of at most size entries around the
// selection.
func paramWindow(n, selected, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	lo := max(0, min(selected-size/2, n-size))
	return lo, lo + size
}

const helpText = `
  Space   pause or resume
  N       single cycle
  R       rebuild and restart
  Tab     next parameter
  Up/K    increase parameter by 5%
  Down/J  decrease parameter by 5%
  + / -   double or halve cycles per frame
  T       next theme
  Q       quit
`

// RunMonitor runs the monitor full screen until the user quits.
func RunMonitor(m *Monitor) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
