package trajectory

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/phrictl/internal/registry"
)

// Sync selects how the registered trajectories are aligned in time.
type Sync int

const (
	// NoSync keeps every trajectory's own minimum segment times.
	NoSync Sync = iota
	// SyncWaypoints pads segment i of every trajectory to the slowest
	// segment i, so all trajectories reach each waypoint together.
	SyncWaypoints
	// SyncTrajectory pads every segment of a trajectory uniformly so all
	// trajectories end together.
	SyncTrajectory
)

func (s Sync) String() string {
	switch s {
	case SyncWaypoints:
		return "waypoints"
	case SyncTrajectory:
		return "trajectory"
	default:
		return "none"
	}
}

func ParseSync(s string) (Sync, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return NoSync, nil
	case "waypoints":
		return SyncWaypoints, nil
	case "trajectory":
		return SyncTrajectory, nil
	}
	return NoSync, fmt.Errorf("trajectory: unknown synchronization %q", s)
}

// Generator drives a set of named trajectories with a common synchronization.
type Generator struct {
	sync         Sync
	trajectories *registry.Ordered[*Trajectory]
	logger       *zap.Logger
}

type GeneratorOption func(*Generator)

func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

func NewGenerator(sync Sync, opts ...GeneratorOption) *Generator {
	g := &Generator{
		sync:         sync,
		trajectories: registry.New[*Trajectory](),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Sync() Sync        { return g.sync }
func (g *Generator) SetSync(sync Sync) { g.sync = sync }
func (g *Generator) Len() int          { return g.trajectories.Len() }
func (g *Generator) Names() []string   { return g.trajectories.Names() }

// Add registers t under name. With force an existing entry is replaced.
func (g *Generator) Add(name string, t *Trajectory, force bool) error {
	return errors.Wrap(g.trajectories.Add(name, t, force), "trajectory")
}

func (g *Generator) Remove(name string) error {
	_, err := g.trajectories.Remove(name)
	return errors.Wrap(err, "trajectory")
}

func (g *Generator) Get(name string) (*Trajectory, error) {
	t, err := g.trajectories.Get(name)
	return t, errors.Wrap(err, "trajectory")
}

// ComputeParameters solves every trajectory's timings, applies the
// synchronization padding and solves the final polynomials. Timing failures
// of all trajectories are reported together.
func (g *Generator) ComputeParameters() error {
	var err error
	for name, t := range g.trajectories.All() {
		if e := t.ComputeTimings(); e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "trajectory %q", name))
		}
	}
	if err != nil {
		return err
	}

	items := g.trajectories.Items()
	switch g.sync {
	case SyncWaypoints:
		segments := 0
		for _, t := range items {
			segments = max(segments, t.SegmentCount())
		}
		for i := 0; i < segments; i++ {
			slowest := 0.0
			for _, t := range items {
				slowest = math.Max(slowest, t.SegmentMinimumTime(i))
			}
			for _, t := range items {
				t.SetPaddingTime(i, slowest-t.SegmentMinimumTime(i))
			}
		}
	case SyncTrajectory:
		slowest := 0.0
		for _, t := range items {
			slowest = math.Max(slowest, t.MinimumTime())
		}
		for _, t := range items {
			padding := (slowest - t.MinimumTime()) / float64(t.SegmentCount())
			for i := 0; i < t.SegmentCount(); i++ {
				t.SetPaddingTime(i, padding)
			}
		}
	default:
		for _, t := range items {
			for i := 0; i < t.SegmentCount(); i++ {
				t.SetPaddingTime(i, 0)
			}
		}
	}

	for name, t := range g.trajectories.All() {
		if e := t.ComputeParameters(); e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "trajectory %q", name))
			continue
		}
		g.logger.Debug("trajectory timed",
			zap.String("name", name),
			zap.String("sync", g.sync.String()),
			zap.Float64("minimum_time", t.MinimumTime()),
			zap.Float64("duration", t.Duration()))
	}
	return err
}

// Compute advances every trajectory by one sample and reports whether all
// of them are finished. When synchronized, a trajectory paused by error
// tracking holds all the others.
func (g *Generator) Compute() bool {
	items := g.trajectories.Items()
	if g.sync == NoSync {
		done := true
		for _, t := range items {
			done = t.Compute() && done
		}
		return done
	}

	paused := false
	for _, t := range items {
		if t.checkTracking() {
			paused = true
		}
	}
	if paused {
		for _, t := range items {
			t.hold()
		}
		return false
	}

	done := true
	for _, t := range items {
		done = t.advance() && done
	}
	return done
}
