package sim

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/phrictl/internal/controller"
	"github.com/san-kum/phrictl/internal/driver"
	"github.com/san-kum/phrictl/internal/dynamo"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/trajectory"
)

// Simulator runs the control loop: scenario events, driver read,
// trajectories, safety controller, driver send.
type Simulator struct {
	robot        *robot.Robot
	driver       driver.Driver
	controller   *controller.SafetyController
	trajectories *trajectory.Generator
	scenario     Scenario
	metrics      []Metric
	observers    []Observer
	logger       *zap.Logger

	cycle  int
	time   float64
	sample Sample
}

type Option func(*Simulator)

func WithTrajectories(g *trajectory.Generator) Option {
	return func(s *Simulator) { s.trajectories = g }
}

func WithScenario(sc Scenario) Option {
	return func(s *Simulator) { s.scenario = sc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

func New(r *robot.Robot, drv driver.Driver, ctrl *controller.SafetyController, opts ...Option) *Simulator {
	s := &Simulator{
		robot:      r,
		driver:     drv,
		controller: ctrl,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop(),
		sample: Sample{
			Joints:       make([]float64, r.JointCount()),
			JointCommand: make([]float64, r.JointCount()),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Robot() *robot.Robot                      { return s.robot }
func (s *Simulator) Controller() *controller.SafetyController { return s.controller }
func (s *Simulator) Time() float64                            { return s.time }
func (s *Simulator) Cycle() int                               { return s.cycle }

// Sample returns the sample of the last cycle.
func (s *Simulator) Sample() *Sample { return &s.sample }

// Init resets the driver, the clock and the metrics.
func (s *Simulator) Init() error {
	s.cycle = 0
	s.time = 0
	for _, m := range s.metrics {
		m.Reset()
	}
	if err := s.driver.Init(); err != nil {
		return &dynamo.CycleError{Cycle: 0, Time: 0, Wrapped: err}
	}
	return nil
}

// Step runs one control cycle and reports whether every trajectory is finished.
func (s *Simulator) Step() (bool, error) {
	wrap := func(err error) error {
		return &dynamo.CycleError{Cycle: s.cycle, Time: s.time, Wrapped: err}
	}

	if s.scenario != nil {
		if err := s.scenario.Apply(s.time); err != nil {
			return false, wrap(err)
		}
	}
	if err := s.driver.Read(); err != nil {
		return false, wrap(err)
	}
	done := true
	if s.trajectories != nil {
		done = s.trajectories.Compute()
	}
	if err := s.controller.Compute(); err != nil {
		return false, wrap(err)
	}
	if err := s.driver.Send(); err != nil {
		return false, wrap(err)
	}

	s.record()
	for _, m := range s.metrics {
		m.Observe(&s.sample)
	}
	for _, obs := range s.observers {
		obs.OnStep(&s.sample)
	}

	s.cycle++
	s.time = float64(s.cycle) * s.robot.Control.TimeStep
	return done, nil
}

func (s *Simulator) record() {
	r := s.robot
	s.sample.Time = s.time
	s.sample.Position = r.Task.State.Pose.Position
	s.sample.Twist = r.Task.State.Twist
	s.sample.Command = r.Task.Command.Twist
	s.sample.Wrench = r.Task.State.Wrench
	s.sample.ScalingFactor = r.Control.ScalingFactor
	copy(s.sample.Joints, r.Joints.State.Position)
	copy(s.sample.JointCommand, r.Joints.Command.Velocity)
}

// Run initializes the simulation and steps it for cfg.Duration.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	s.robot.Control.TimeStep = cfg.Dt
	decimation := max(cfg.Decimation, 1)

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Samples: make([]Sample, 0, steps/decimation+1),
		Metrics: make(map[string]float64),
	}

	if err := s.Init(); err != nil {
		return nil, err
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if _, err := s.Step(); err != nil {
			s.logger.Error("cycle failed", zap.Error(err))
			return result, err
		}
		result.Cycles++

		if i%decimation == 0 {
			result.Samples = append(result.Samples, s.sample.clone())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Info("run complete",
		zap.Int("cycles", result.Cycles),
		zap.Float64("duration", s.time),
		zap.Any("metrics", result.Metrics))
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func (s Sample) clone() Sample {
	s.Joints = append([]float64(nil), s.Joints...)
	s.JointCommand = append([]float64(nil), s.JointCommand...)
	return s
}
