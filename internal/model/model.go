package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/signal"
)

const (
	DefaultMaxDamping     = 0.1
	DefaultSigmaThreshold = 0.05
)

// Model refreshes the kinematic part of a robot's state once per cycle:
// control point pose, transformations, Jacobian and its inverse, and the
// measured control point twist and acceleration.
type Model struct {
	kin Kinematics

	maxDamping     float64
	sigmaThreshold float64

	svd   mat.SVD
	u, v  mat.Dense
	sigma []float64

	lambda   float64
	sigmaMin float64

	jointVelocity *mat.VecDense
	baseTwist     *mat.VecDense
	twist         *mat.VecDense
	derivator     *signal.Derivator
}

type Option func(*Model)

// WithDamping configures the damped least squares inverse: the damping
// factor grows from 0 to maxDamping as the smallest singular value falls
// from sigmaThreshold to 0.
func WithDamping(maxDamping, sigmaThreshold float64) Option {
	return func(m *Model) {
		m.maxDamping = maxDamping
		m.sigmaThreshold = sigmaThreshold
	}
}

func New(kin Kinematics, opts ...Option) *Model {
	m := &Model{
		kin:            kin,
		maxDamping:     DefaultMaxDamping,
		sigmaThreshold: DefaultSigmaThreshold,
		sigma:          make([]float64, min(6, kin.JointCount())),
		jointVelocity:  mat.NewVecDense(kin.JointCount(), nil),
		baseTwist:      mat.NewVecDense(6, nil),
		twist:          mat.NewVecDense(6, nil),
		derivator:      signal.NewDerivator(6),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Kinematics() Kinematics { return m.kin }

// Damping returns the damping factor used by the last inversion.
func (m *Model) Damping() float64 { return m.lambda }

// SmallestSingularValue returns the smallest singular value of the last Jacobian.
func (m *Model) SmallestSingularValue() float64 { return m.sigmaMin }

// Update recomputes the robot's kinematic state from its joint state.
func (m *Model) Update(r *robot.Robot) error {
	if r.JointCount() != m.kin.JointCount() {
		return errors.Wrapf(ErrDimensionMismatch, "robot has %d joints, %s has %d",
			r.JointCount(), m.kin.Name(), m.kin.JointCount())
	}
	q := r.Joints.State.Position
	pose := &r.Task.State.Pose

	m.kin.Forward(q, pose)
	pose.FillTransformation(r.Control.Transformation)
	pose.FillSpatialTransformation(r.Control.SpatialTransformation)
	m.kin.Jacobian(q, r.Control.Jacobian)

	if err := m.invert(r.Control.Jacobian, r.Control.JacobianInverse); err != nil {
		return err
	}

	copy(m.jointVelocity.RawVector().Data, r.Joints.State.Velocity)
	m.baseTwist.MulVec(r.Control.Jacobian, m.jointVelocity)
	m.twist.MulVec(r.Control.SpatialTransformation.T(), m.baseTwist)
	copy(r.Task.State.Twist[:], m.twist.RawVector().Data)
	m.derivator.Derive(r.Task.State.Twist[:], r.Task.State.Acceleration[:], r.Control.TimeStep)
	return nil
}

// invert writes the damped least squares inverse V·diag(σ/(σ²+λ²))·Uᵀ of
// jac into dst. Without damping it is the pseudo-inverse.
func (m *Model) invert(jac, dst *mat.Dense) error {
	if !m.svd.Factorize(jac, mat.SVDThin) {
		return ErrFactorization
	}
	m.svd.UTo(&m.u)
	m.svd.VTo(&m.v)
	m.sigma = m.svd.Values(m.sigma)

	m.sigmaMin = m.sigma[len(m.sigma)-1]
	lambda2 := 0.0
	if m.sigmaMin < m.sigmaThreshold {
		ratio := m.sigmaMin / m.sigmaThreshold
		lambda2 = m.maxDamping * m.maxDamping * (1 - ratio*ratio)
	}
	m.lambda = math.Sqrt(lambda2)

	rows, cols := dst.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum := 0.0
			for k, s := range m.sigma {
				den := s*s + lambda2
				if den == 0 {
					continue
				}
				sum += m.v.At(i, k) * (s / den) * m.u.At(j, k)
			}
			dst.Set(i, j, sum)
		}
	}
	return nil
}

// Reset clears the acceleration estimate.
func (m *Model) Reset() { m.derivator.Reset() }
