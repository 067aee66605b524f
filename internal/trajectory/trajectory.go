package trajectory

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/phrictl/internal/polynomial"
)

// OutputType selects which quantities Compute writes.
type OutputType int

const (
	All OutputType = iota
	Position
	Velocity
	Acceleration
)

func (o OutputType) String() string {
	switch o {
	case Position:
		return "position"
	case Velocity:
		return "velocity"
	case Acceleration:
		return "acceleration"
	default:
		return "all"
	}
}

func ParseOutputType(s string) (OutputType, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return All, nil
	case "position":
		return Position, nil
	case "velocity":
		return Velocity, nil
	case "acceleration":
		return Acceleration, nil
	}
	return All, fmt.Errorf("trajectory: unknown output type %q", s)
}

type segment struct {
	maxVelocity     float64
	maxAcceleration float64
	fixed           bool

	minimumTime float64
	paddingTime float64
	currentTime float64

	poly polynomial.Quintic
}

func (s *segment) duration() float64 { return s.minimumTime + s.paddingTime }

// Trajectory is a sequence of waypoints joined by quintic segments, sampled
// once per Compute call.
type Trajectory struct {
	sampleTime float64
	outputType OutputType
	limits     Limits

	points   []Point
	segments []segment
	current  int

	position     *float64
	velocity     *float64
	acceleration *float64

	tracking *tracking
}

type Option func(*Trajectory)

func WithOutputType(o OutputType) Option {
	return func(t *Trajectory) { t.outputType = o }
}

// WithTargets makes Compute write into the given variables. Nil targets keep
// the trajectory's own storage.
func WithTargets(position, velocity, acceleration *float64) Option {
	return func(t *Trajectory) {
		if position != nil {
			t.position = position
		}
		if velocity != nil {
			t.velocity = velocity
		}
		if acceleration != nil {
			t.acceleration = acceleration
		}
	}
}

func WithLimits(l Limits) Option {
	return func(t *Trajectory) { t.limits = l }
}

func New(start Point, sampleTime float64, opts ...Option) *Trajectory {
	t := &Trajectory{
		sampleTime:   sampleTime,
		limits:       DefaultLimits(),
		points:       []Point{start},
		position:     new(float64),
		velocity:     new(float64),
		acceleration: new(float64),
	}
	for _, opt := range opts {
		opt(t)
	}
	*t.position = *start.Y
	return t
}

// AddPathTo appends a free-time segment whose duration is the shortest one
// respecting the given limits.
func (t *Trajectory) AddPathTo(to Point, maxVelocity, maxAcceleration float64) error {
	if !(maxVelocity > 0) || !(maxAcceleration > 0) {
		return errors.Wrapf(ErrInvalidLimits, "velocity %g, acceleration %g", maxVelocity, maxAcceleration)
	}
	t.points = append(t.points, to)
	t.segments = append(t.segments, segment{maxVelocity: maxVelocity, maxAcceleration: maxAcceleration})
	return nil
}

// AddTimedPathTo appends a fixed-time segment.
func (t *Trajectory) AddTimedPathTo(to Point, duration float64) error {
	if duration < 0 || math.IsNaN(duration) {
		return errors.Wrapf(ErrInvalidDuration, "%g", duration)
	}
	t.points = append(t.points, to)
	t.segments = append(t.segments, segment{fixed: true, minimumTime: duration})
	return nil
}

// TrackError pauses the trajectory while |output - reference| reaches
// threshold and resumes it once the error drops below threshold*hysteresis.
// On resume the current segment is replanned from the reference with zero
// velocity and acceleration.
func (t *Trajectory) TrackError(reference *float64, threshold, hysteresis float64) error {
	if reference == nil || !(threshold > 0) || !(hysteresis > 0 && hysteresis <= 1) {
		return errors.Wrapf(ErrInvalidTracking, "threshold %g, hysteresis %g", threshold, hysteresis)
	}
	t.tracking = &tracking{reference: reference, threshold: threshold, hysteresis: hysteresis}
	return nil
}

func (t *Trajectory) DisableErrorTracking() { t.tracking = nil }

// Paused reports whether error tracking currently holds the trajectory.
func (t *Trajectory) Paused() bool { return t.tracking != nil && t.tracking.paused }

func (t *Trajectory) SampleTime() float64      { return t.sampleTime }
func (t *Trajectory) OutputType() OutputType   { return t.outputType }
func (t *Trajectory) SegmentCount() int        { return len(t.segments) }
func (t *Trajectory) CurrentSegment() int      { return t.current }
func (t *Trajectory) Finished() bool           { return t.current >= len(t.segments) }
func (t *Trajectory) PositionOutput() *float64 { return t.position }
func (t *Trajectory) VelocityOutput() *float64 { return t.velocity }

func (t *Trajectory) AccelerationOutput() *float64 { return t.acceleration }

// Output returns the variable matching the output type, the position for All.
func (t *Trajectory) Output() *float64 {
	switch t.outputType {
	case Velocity:
		return t.velocity
	case Acceleration:
		return t.acceleration
	default:
		return t.position
	}
}

// SegmentMinimumTime returns the minimum duration of segment i, zero past the
// last segment.
func (t *Trajectory) SegmentMinimumTime(i int) float64 {
	if i < 0 || i >= len(t.segments) {
		return 0
	}
	return t.segments[i].minimumTime
}

// SegmentDuration returns the minimum plus padding duration of segment i.
func (t *Trajectory) SegmentDuration(i int) float64 {
	if i < 0 || i >= len(t.segments) {
		return 0
	}
	return t.segments[i].duration()
}

func (t *Trajectory) SetPaddingTime(i int, padding float64) {
	if i >= 0 && i < len(t.segments) {
		t.segments[i].paddingTime = padding
	}
}

// MinimumTime returns the sum of the segments' minimum durations.
func (t *Trajectory) MinimumTime() float64 {
	total := 0.0
	for i := range t.segments {
		total += t.segments[i].minimumTime
	}
	return total
}

// Duration returns the sum of the segments' padded durations.
func (t *Trajectory) Duration() float64 {
	total := 0.0
	for i := range t.segments {
		total += t.segments[i].duration()
	}
	return total
}

func (t *Trajectory) validate() error {
	if len(t.segments) < 1 {
		return ErrTooFewPoints
	}
	if !(t.sampleTime > 0) {
		return errors.Wrapf(ErrInvalidSampleTime, "%g", t.sampleTime)
	}
	return nil
}

// ComputeTimings solves the minimum duration of every free-time segment.
func (t *Trajectory) ComputeTimings() error {
	if err := t.validate(); err != nil {
		return err
	}
	for i := range t.segments {
		s := &t.segments[i]
		if s.fixed {
			continue
		}
		d, err := minimumTime(t.points[i].at(0), t.points[i+1].at(0), s.maxVelocity, s.maxAcceleration, t.limits)
		if err != nil {
			return errors.Wrapf(err, "segment %d", i)
		}
		s.minimumTime = d
	}
	return nil
}

// ComputeParameters solves every segment's polynomial over its padded
// duration and rewinds the trajectory.
func (t *Trajectory) ComputeParameters() error {
	if err := t.validate(); err != nil {
		return err
	}
	for i := range t.segments {
		s := &t.segments[i]
		s.poly = polynomial.NewQuintic(t.points[i].at(0), t.points[i+1].at(s.duration()))
		s.currentTime = 0
	}
	t.current = 0
	if t.tracking != nil {
		t.tracking.paused = false
	}
	*t.position = *t.points[0].Y
	*t.velocity = *t.points[0].DY
	*t.acceleration = *t.points[0].D2Y
	return nil
}

// Compute writes the current sample and advances the clock by one sample
// time. It returns true once the last segment has been completed; the
// outputs then hold the final waypoint.
func (t *Trajectory) Compute() bool {
	if t.Finished() {
		return true
	}
	if t.checkTracking() {
		t.hold()
		return false
	}
	return t.advance()
}

func (t *Trajectory) advance() bool {
	if t.Finished() {
		return true
	}
	s := &t.segments[t.current]
	for s.currentTime > s.duration() {
		remainder := s.currentTime - s.duration()
		t.current++
		if t.Finished() {
			t.write(s, s.duration())
			return true
		}
		s = &t.segments[t.current]
		s.currentTime = remainder
	}
	t.write(s, s.currentTime)
	s.currentTime += t.sampleTime
	return false
}

func (t *Trajectory) write(s *segment, x float64) {
	switch t.outputType {
	case Position:
		*t.position = s.poly.Eval(x)
	case Velocity:
		*t.velocity = s.poly.Velocity(x)
	case Acceleration:
		*t.acceleration = s.poly.Acceleration(x)
	default:
		*t.position = s.poly.Eval(x)
		*t.velocity = s.poly.Velocity(x)
		*t.acceleration = s.poly.Acceleration(x)
	}
}

func (t *Trajectory) hold() {
	*t.velocity = 0
	*t.acceleration = 0
}

// checkTracking updates the error tracking state and reports whether the
// trajectory is paused.
func (t *Trajectory) checkTracking() bool {
	if t.tracking == nil || t.Finished() {
		return false
	}
	wasPaused := t.tracking.paused
	paused := t.tracking.update(*t.position)
	if wasPaused && !paused {
		t.replan()
	}
	return paused
}

// replan restarts the current segment from the tracked reference at rest.
func (t *Trajectory) replan() {
	s := &t.segments[t.current]
	from := polynomial.Point{Y: *t.tracking.reference}
	to := t.points[t.current+1].at(0)

	d := s.duration()
	if !s.fixed {
		if m, err := minimumTime(from, to, s.maxVelocity, s.maxAcceleration, t.limits); err == nil {
			d = m + s.paddingTime
		}
	}
	to.X = d
	s.poly = polynomial.NewQuintic(from, to)
	s.minimumTime = d - s.paddingTime
	s.currentTime = 0
	*t.position = from.Y
}

type tracking struct {
	reference  *float64
	threshold  float64
	hysteresis float64
	paused     bool
}

func (tr *tracking) update(output float64) bool {
	e := math.Abs(output - *tr.reference)
	if tr.paused {
		if e < tr.threshold*tr.hysteresis {
			tr.paused = false
		}
	} else if e >= tr.threshold {
		tr.paused = true
	}
	return tr.paused
}
