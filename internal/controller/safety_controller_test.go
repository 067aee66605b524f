package controller_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phrictl/internal/constraint"
	"github.com/san-kum/phrictl/internal/controller"
	"github.com/san-kum/phrictl/internal/generator"
	"github.com/san-kum/phrictl/internal/robot"
	"github.com/san-kum/phrictl/internal/spatial"
)

func constant(v float64) constraint.Constraint {
	return constraint.NewFunc(func(*robot.Robot) float64 { return v })
}

var _ = Describe("SafetyController", func() {
	var (
		r    *robot.Robot
		ctrl *controller.SafetyController
	)

	BeforeEach(func() {
		r = robot.New("arm", 6)
		r.SetIdentityKinematics()
		ctrl = controller.New(r)
	})

	Context("without a robot", func() {
		It("rejects registrations and cycles", func() {
			unbound := controller.New(nil)
			err := unbound.AddConstraint("c", constant(0.5))
			Expect(errors.Is(err, controller.ErrUnboundRobot)).To(BeTrue())
			Expect(errors.Is(unbound.Compute(), controller.ErrUnboundRobot)).To(BeTrue())
			Expect(unbound.ScalingFactor()).To(Equal(1.0))
		})

		It("accepts registrations once bound", func() {
			unbound := controller.New(nil)
			unbound.SetRobot(r)
			Expect(unbound.AddConstraint("c", constant(0.5))).To(Succeed())
		})
	})

	Context("with no generators", func() {
		It("commands zero with a unit scaling factor", func() {
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Control.ScalingFactor).To(Equal(1.0))
			Expect(r.Task.Command.Twist.IsZero()).To(BeTrue())
			Expect(r.Joints.Command.Velocity).To(HaveEach(0.0))
		})
	})

	Context("registries", func() {
		It("refuses duplicate names within a category", func() {
			target := spatial.Twist{}
			Expect(ctrl.AddVelocityGenerator("v", generator.NewVelocityProxy(&target, spatial.ControlPoint))).To(Succeed())
			err := ctrl.AddVelocityGenerator("v", generator.NewVelocityProxy(&target, spatial.ControlPoint))
			Expect(errors.Is(err, controller.ErrDuplicateID)).To(BeTrue())
		})

		It("allows the same name in different categories", func() {
			twist, wrench := spatial.Twist{}, spatial.Wrench{}
			Expect(ctrl.AddVelocityGenerator("x", generator.NewVelocityProxy(&twist, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.AddForceGenerator("x", generator.NewForceProxy(&wrench, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.AddConstraint("x", constant(1))).To(Succeed())
		})

		It("reports unknown names", func() {
			Expect(errors.Is(ctrl.RemoveConstraint("missing"), controller.ErrNotFound)).To(BeTrue())
			_, err := ctrl.GetForceGenerator("missing")
			Expect(errors.Is(err, controller.ErrNotFound)).To(BeTrue())
			_, err = ctrl.ConstraintValue("missing")
			Expect(errors.Is(err, controller.ErrNotFound)).To(BeTrue())
		})

		It("restores the previous state after add then remove", func() {
			target := spatial.Twist{0.1}
			Expect(ctrl.Compute()).To(Succeed())
			before := r.Task.Command.Twist

			Expect(ctrl.AddConstraint("half", constant(0.5))).To(Succeed())
			Expect(ctrl.AddVelocityGenerator("v", generator.NewVelocityProxy(&target, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Task.Command.Twist[0]).To(BeNumerically("~", 0.05, 1e-12))

			Expect(ctrl.RemoveConstraint("half")).To(Succeed())
			Expect(ctrl.RemoveVelocityGenerator("v")).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Task.Command.Twist).To(Equal(before))
			Expect(ctrl.ConstraintNames()).To(Equal([]string{controller.DefaultConstraintName}))
		})

		It("dispatches Add on the item type", func() {
			twist := spatial.Twist{}
			Expect(ctrl.Add("v", generator.NewVelocityProxy(&twist, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.Add("q", generator.NewJointVelocityProxy(make([]float64, 6)))).To(Succeed())
			Expect(ctrl.Add("t", generator.NewTorqueProxy(make([]float64, 6)))).To(Succeed())
			Expect(ctrl.Add("c", constant(1))).To(Succeed())
			Expect(errors.Is(ctrl.Add("s", "nope"), controller.ErrUnsupported)).To(BeTrue())

			names := ctrl.GeneratorNames()
			Expect(names["velocity"]).To(Equal([]string{"v"}))
			Expect(names["joint_velocity"]).To(Equal([]string{"q"}))
			Expect(names["joint_torque"]).To(Equal([]string{"t"}))
		})

		It("keeps the default constraint after RemoveAll", func() {
			Expect(ctrl.AddConstraint("zero", constant(0))).To(Succeed())
			ctrl.RemoveAll()
			Expect(ctrl.ConstraintNames()).To(Equal([]string{controller.DefaultConstraintName}))
			Expect(ctrl.Compute()).To(Succeed())
			Expect(ctrl.ScalingFactor()).To(Equal(1.0))
		})
	})

	Context("scaling", func() {
		It("uses the minimum constraint regardless of order", func() {
			values := []float64{0.7, 0.3, 0.9}
			for i, v := range values {
				Expect(ctrl.AddConstraint(string(rune('a'+i)), constant(v))).To(Succeed())
			}
			Expect(ctrl.Compute()).To(Succeed())
			forward := ctrl.ScalingFactor()

			ctrl.RemoveAll()
			for i := len(values) - 1; i >= 0; i-- {
				Expect(ctrl.AddConstraint(string(rune('a'+i)), constant(values[i]))).To(Succeed())
			}
			Expect(ctrl.Compute()).To(Succeed())
			Expect(ctrl.ScalingFactor()).To(Equal(forward))
			Expect(forward).To(Equal(0.3))

			v, err := ctrl.ConstraintValue("c")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(0.9))
		})

		It("stops on an undefined constraint value", func() {
			target := spatial.Twist{0.2}
			Expect(ctrl.AddVelocityGenerator("motion", generator.NewVelocityProxy(&target, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.AddConstraint("broken", constant(math.NaN()))).To(Succeed())
			Expect(ctrl.AddConstraint("loose", constant(0.8))).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())

			Expect(ctrl.ScalingFactor()).To(Equal(0.0))
			Expect(r.Task.Command.Twist[0]).To(Equal(0.0))
			Expect(r.Joints.Command.Velocity[0]).To(Equal(0.0))

			Expect(ctrl.RemoveConstraint("broken")).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(ctrl.ScalingFactor()).To(Equal(0.8))
		})

		It("sums generators of a category", func() {
			a, b := spatial.Twist{0.1, 0.2}, spatial.Twist{0.3, 0, 0.1}
			Expect(ctrl.AddVelocityGenerator("a", generator.NewVelocityProxy(&a, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.AddVelocityGenerator("b", generator.NewVelocityProxy(&b, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Task.Command.Twist[0]).To(BeNumerically("~", 0.4, 1e-12))
			Expect(r.Task.Command.Twist[1]).To(BeNumerically("~", 0.2, 1e-12))
			Expect(r.Task.Command.Twist[2]).To(BeNumerically("~", 0.1, 1e-12))
			Expect(r.Joints.Command.Velocity[0]).To(BeNumerically("~", 0.4, 1e-12))
		})

		It("maps forces to velocities through the damping", func() {
			wrench := spatial.Wrench{10}
			r.Control.Task.Damping = spatial.Vector6{100, 100, 100, 100, 100, 100}
			Expect(ctrl.AddForceGenerator("f", generator.NewForceProxy(&wrench, spatial.ControlPoint))).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Task.Command.Twist[0]).To(BeNumerically("~", 0.1, 1e-12))
			Expect(r.Control.Task.TotalForce[0]).To(BeNumerically("~", 10, 1e-12))
			Expect(r.Control.Joints.TotalForce[0]).To(BeNumerically("~", 10, 1e-12))
		})

		It("projects joint velocities into the task space", func() {
			qd := []float64{0, 0.5, 0, 0, 0, 0}
			Expect(ctrl.AddJointVelocityGenerator("q", generator.NewJointVelocityProxy(qd))).To(Succeed())
			Expect(ctrl.AddConstraint("half", constant(0.5))).To(Succeed())
			Expect(ctrl.Compute()).To(Succeed())
			Expect(r.Joints.Command.Velocity[1]).To(BeNumerically("~", 0.25, 1e-12))
			Expect(r.Task.Command.Twist[1]).To(BeNumerically("~", 0.25, 1e-12))
		})
	})

	Context("emergency stop", func() {
		It("stops on contact and resumes after release", func() {
			target := spatial.Twist{0.2}
			Expect(ctrl.AddVelocityGenerator("motion", generator.NewVelocityProxy(&target, spatial.ControlPoint))).To(Succeed())

			estop, err := constraint.NewEmergencyStop(constraint.CheckBoth,
				&constraint.Threshold{Activation: 25, Deactivation: 5},
				&constraint.Threshold{Activation: 5, Deactivation: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(ctrl.AddConstraint("stop", estop)).To(Succeed())

			steps := []struct {
				force float64
				want  float64
			}{
				{0, 0.2},
				{30, 0},
				{15, 0},
				{4, 0.2},
			}
			for _, s := range steps {
				r.Task.State.Wrench = spatial.Wrench{s.force}
				Expect(ctrl.Compute()).To(Succeed())
				Expect(r.Task.Command.Twist[0]).To(BeNumerically("~", s.want, 1e-12), "force %v", s.force)
			}
		})
	})
})
