package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/trajectory"
)

// ErrUnknownSeries indicates a series name no sample field matches.
var ErrUnknownSeries = errors.New("viz: unknown series")

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
}

var (
	twistSeries  = []string{"vx", "vy", "vz", "wx", "wy", "wz"}
	wrenchSeries = []string{"fx", "fy", "fz", "tx", "ty", "tz"}
)

// SeriesNames lists the series Series accepts besides q<i> and dq<i>.
func SeriesNames() []string {
	names := []string{"x", "y", "z"}
	names = append(names, twistSeries...)
	names = append(names, wrenchSeries...)
	for _, n := range twistSeries {
		names = append(names, "cmd."+n)
	}
	return append(names, "force", "speed", "scaling")
}

// Series extracts one named quantity from every sample.
func Series(samples []sim.Sample, name string) ([]float64, error) {
	get, err := accessor(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(samples))
	for i := range samples {
		out[i] = get(&samples[i])
	}
	return out, nil
}

func accessor(name string) (func(*sim.Sample) float64, error) {
	switch name {
	case "x":
		return func(s *sim.Sample) float64 { return s.Position.X }, nil
	case "y":
		return func(s *sim.Sample) float64 { return s.Position.Y }, nil
	case "z":
		return func(s *sim.Sample) float64 { return s.Position.Z }, nil
	case "force":
		return func(s *sim.Sample) float64 { return s.Wrench.Linear().Norm() }, nil
	case "speed":
		return func(s *sim.Sample) float64 { return s.Twist.Linear().Norm() }, nil
	case "scaling":
		return func(s *sim.Sample) float64 { return s.ScalingFactor }, nil
	}
	if i := indexOf(twistSeries, name); i >= 0 {
		return func(s *sim.Sample) float64 { return s.Twist[i] }, nil
	}
	if i := indexOf(wrenchSeries, name); i >= 0 {
		return func(s *sim.Sample) float64 { return s.Wrench[i] }, nil
	}
	if rest, ok := strings.CutPrefix(name, "cmd."); ok {
		if i := indexOf(twistSeries, rest); i >= 0 {
			return func(s *sim.Sample) float64 { return s.Command[i] }, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "dq"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 {
			return func(s *sim.Sample) float64 { return at(s.JointCommand, i) }, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "q"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 {
			return func(s *sim.Sample) float64 { return at(s.Joints, i) }, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownSeries, "%q", name)
}

func at(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// PlotOptions sizes a chart.
type PlotOptions struct {
	Width  int
	Height int
}

func (o PlotOptions) graphOptions(caption string, n int) []asciigraph.Option {
	opts := []asciigraph.Option{
		asciigraph.Height(max(o.Height, 2)),
		asciigraph.Caption(caption),
	}
	if o.Width > 0 {
		opts = append(opts, asciigraph.Width(o.Width))
	}
	if n > 1 {
		opts = append(opts, asciigraph.SeriesColors(seriesColors[:min(n, len(seriesColors))]...))
	}
	return opts
}

// PlotSamples charts the named series of a run against the sample index.
func PlotSamples(samples []sim.Sample, names []string, o PlotOptions) (string, error) {
	if len(samples) < 2 {
		return "", fmt.Errorf("viz: need at least 2 samples, got %d", len(samples))
	}
	if len(names) == 0 {
		return "", errors.Wrap(ErrUnknownSeries, "no series")
	}
	data := make([][]float64, 0, len(names))
	for _, name := range names {
		values, err := Series(samples, name)
		if err != nil {
			return "", err
		}
		data = append(data, values)
	}
	caption := fmt.Sprintf("%s over %.3gs", legend(names), samples[len(samples)-1].Time-samples[0].Time)
	return asciigraph.PlotMany(data, o.graphOptions(caption, len(data))...), nil
}

// legend pairs each name with its series color, first to last.
func legend(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	colors := []string{"blue", "red", "green", "yellow"}
	parts := make([]string, len(names))
	for i, n := range names {
		c := "default"
		if i < len(colors) {
			c = colors[i]
		}
		parts[i] = fmt.Sprintf("%s (%s)", n, c)
	}
	return strings.Join(parts, ", ")
}

// TrajectoryCurves computes the generator's parameters, samples every
// trajectory output until all are finished or limit samples are taken, then
// rewinds the generator. Curves are returned in registration order.
func TrajectoryCurves(g *trajectory.Generator, limit int) ([]string, [][]float64, error) {
	if err := g.ComputeParameters(); err != nil {
		return nil, nil, err
	}
	names := g.Names()
	outputs := make([]*float64, len(names))
	for i, name := range names {
		t, err := g.Get(name)
		if err != nil {
			return nil, nil, err
		}
		outputs[i] = t.Output()
	}

	curves := make([][]float64, len(names))
	for n := 0; n < limit; n++ {
		done := g.Compute()
		for i, out := range outputs {
			curves[i] = append(curves[i], *out)
		}
		if done {
			break
		}
	}
	return names, curves, g.ComputeParameters()
}

// PlotTrajectories charts every trajectory of the generator.
func PlotTrajectories(g *trajectory.Generator, limit int, o PlotOptions) (string, error) {
	names, curves, err := TrajectoryCurves(g, limit)
	if err != nil {
		return "", err
	}
	if len(curves) == 0 {
		return "", errors.New("viz: no trajectories")
	}
	caption := fmt.Sprintf("%s, sync %s", legend(names), g.Sync())
	return asciigraph.PlotMany(curves, o.graphOptions(caption, len(curves))...), nil
}

// Sparkline renders values as a single line of block characters.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	if len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
