package viz

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/san-kum/phrictl/internal/sim"
	"github.com/san-kum/phrictl/internal/trajectory"
)

func samples() []sim.Sample {
	out := make([]sim.Sample, 3)
	for i := range out {
		v := float64(i)
		out[i] = sim.Sample{
			Time:          0.1 * v,
			Position:      r3.Vector{X: v, Y: -v},
			ScalingFactor: 1 - 0.25*v,
			Joints:        []float64{v, 2 * v},
			JointCommand:  []float64{-v},
		}
		out[i].Wrench[0] = 3 * v
		out[i].Wrench[1] = 4 * v
		out[i].Command[1] = 0.5 * v
	}
	return out
}

func TestSeries(t *testing.T) {
	s := samples()
	cases := map[string][]float64{
		"x":       {0, 1, 2},
		"y":       {0, -1, -2},
		"fx":      {0, 3, 6},
		"force":   {0, 5, 10},
		"scaling": {1, 0.75, 0.5},
		"q1":      {0, 2, 4},
		"dq0":     {0, -1, -2},
		"q5":      {0, 0, 0},
		"cmd.vy":  {0, 0.5, 1},
	}
	for name, want := range cases {
		got, err := Series(s, name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldResemble, want)
	}

	for _, name := range []string{"w", "cmd.x", "qa", ""} {
		_, err := Series(s, name)
		test.That(t, errors.Is(err, ErrUnknownSeries), test.ShouldBeTrue)
	}
}

func TestSeriesNames(t *testing.T) {
	for _, name := range SeriesNames() {
		_, err := Series(samples(), name)
		test.That(t, err, test.ShouldBeNil)
	}
}

func TestPlotSamples(t *testing.T) {
	out, err := PlotSamples(samples(), []string{"x", "scaling"}, PlotOptions{Width: 20, Height: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "x (blue), scaling (red)")

	_, err = PlotSamples(samples()[:1], []string{"x"}, PlotOptions{})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = PlotSamples(samples(), nil, PlotOptions{})
	test.That(t, errors.Is(err, ErrUnknownSeries), test.ShouldBeTrue)
}

func TestTrajectoryCurves(t *testing.T) {
	traj := trajectory.New(trajectory.NewPoint(0, 0, 0), 0.1)
	test.That(t, traj.AddPathTo(trajectory.NewPoint(1, 0, 0), 1, 100), test.ShouldBeNil)
	g := trajectory.NewGenerator(trajectory.NoSync)
	test.That(t, g.Add("x", traj, false), test.ShouldBeNil)

	names, curves, err := TrajectoryCurves(g, 1000)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldResemble, []string{"x"})
	curve := curves[0]
	test.That(t, curve[0], test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, curve[len(curve)-1], test.ShouldAlmostEqual, 1.0, 1e-9)
	for i := 1; i < len(curve); i++ {
		test.That(t, curve[i], test.ShouldBeGreaterThanOrEqualTo, curve[i-1]-1e-12)
	}

	test.That(t, *traj.PositionOutput(), test.ShouldEqual, 0.0)
	test.That(t, traj.Finished(), test.ShouldBeFalse)

	_, curves, err = TrajectoryCurves(g, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(curves[0]), test.ShouldEqual, 3)

	out, err := PlotTrajectories(g, 1000, PlotOptions{Height: 5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "sync none")
}

func TestSparkline(t *testing.T) {
	test.That(t, Sparkline([]float64{0, 1}, 4), test.ShouldEqual, "▁█")
	test.That(t, Sparkline([]float64{0, 0.5, 1}, 2), test.ShouldEqual, "▁█")
	test.That(t, Sparkline(nil, 3), test.ShouldEqual, "───")
	test.That(t, Sparkline([]float64{1}, 0), test.ShouldEqual, "")
	test.That(t, strings.Count(Sparkline([]float64{2, 2, 2}, 3), "▁"), test.ShouldEqual, 3)
}
