package experiment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/generator"
	"github.com/san-kum/phrictl/internal/metrics"
)

func preset(t *testing.T, kinematics, name string) *config.Config {
	t.Helper()
	cfg := config.GetPreset(kinematics, name)
	if cfg == nil {
		t.Fatalf("missing preset %s/%s", kinematics, name)
	}
	return cfg
}

func TestBuildPresets(t *testing.T) {
	for _, kin := range config.ListKinematics() {
		for _, name := range config.ListPresets(kin) {
			t.Run(kin+"/"+name, func(t *testing.T) {
				cfg := preset(t, kin, name)
				cfg.Run.Duration = 0.2

				exp, err := Build(cfg)
				if err != nil {
					t.Fatalf("build failed: %v", err)
				}
				result, err := exp.Run(context.Background())
				if err != nil {
					t.Fatalf("run failed: %v", err)
				}
				if result.Cycles != 40 {
					t.Errorf("expected 40 cycles, got %d", result.Cycles)
				}
				for _, m := range cfg.Metrics.Names {
					if _, ok := result.Metrics[m]; !ok {
						t.Errorf("missing metric %s", m)
					}
				}
			})
		}
	}
}

func TestEmergencyStopScenario(t *testing.T) {
	exp, err := Build(preset(t, "gantry", "estop"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// stopped while pushed between t=1 and t=1.5 of a 3s run
	if v := result.Metrics["stop_ratio"]; math.Abs(v-1.0/6.0) > 0.005 {
		t.Errorf("expected stop ratio ~0.167, got %f", v)
	}
	if v := result.Metrics["peak_force"]; math.Abs(v-40) > 1e-9 {
		t.Errorf("expected peak force 40, got %f", v)
	}

	last := result.Samples[len(result.Samples)-1]
	if last.ScalingFactor != 1 {
		t.Errorf("expected the stop to be released, got scaling %f", last.ScalingFactor)
	}
	// 2.5s of motion at 0.1 m/s, minus the actuator lag
	if math.Abs(last.Position.Y-0.25) > 0.01 {
		t.Errorf("expected y ~0.25, got %f", last.Position.Y)
	}
}

func TestSeparationDistanceSlowsDown(t *testing.T) {
	exp, err := Build(preset(t, "gantry", "separation"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	x := exp.Robot().Task.State.Pose.Position.X
	if x < 0.6 || x > 0.8 {
		t.Errorf("expected the robot to stop short of 0.8, got %f", x)
	}
	if v := result.Metrics["mean_scaling"]; v >= 1 {
		t.Errorf("expected scaled commands, got mean scaling %f", v)
	}
}

func TestBuildSeparationDistanceInner(t *testing.T) {
	exp, err := Build(preset(t, "gantry", "separation"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, err := exp.Controller().GetConstraint("separation"); err != nil {
		t.Errorf("expected the separation constraint to be registered: %v", err)
	}
	if _, err := exp.Params().Lookup("separation.operator.x"); err != nil {
		t.Errorf("expected the object handle: %v", err)
	}

	cfg := preset(t, "gantry", "separation")
	cfg.Constraints[0].Inner.Type = "jerk"
	if _, err := Build(cfg); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType for the inner constraint, got %v", err)
	}
}

func TestTrajectoryPreset(t *testing.T) {
	exp, err := Build(preset(t, "gantry", "trajectory"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if exp.Trajectories() == nil || exp.Trajectories().Len() != 2 {
		t.Fatal("expected two trajectories")
	}

	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	pos := exp.Robot().Task.State.Pose.Position
	if math.Abs(pos.X) > 0.02 || math.Abs(pos.Y-0.2) > 0.02 {
		t.Errorf("expected the robot at (0, 0.2), got (%f, %f)", pos.X, pos.Y)
	}
	x, err := exp.Trajectories().Get("x")
	if err != nil {
		t.Fatal(err)
	}
	if !x.Finished() {
		t.Error("expected trajectory x to be finished")
	}
}

func TestParams(t *testing.T) {
	exp, err := Build(preset(t, "gantry", "separation"))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	params := exp.Params()

	for _, name := range []string{"move.x", "move.rz", "separation.operator.x", "speed.max", "env.fx", "env.q3", "robot.x", "robot.q0", "robot.fx", "damping.x"} {
		if _, err := params.Lookup(name); err != nil {
			t.Errorf("missing param %s", name)
		}
	}

	if err := params.Set("move.x", 0.2); err != nil {
		t.Fatal(err)
	}
	g, err := exp.Controller().GetVelocityGenerator("move")
	if err != nil {
		t.Fatal(err)
	}
	if got := g.(*generator.VelocityProxy).Target()[0]; got != 0.2 {
		t.Errorf("expected target 0.2 through the handle, got %f", got)
	}

	if err := params.Set("warp.x", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if names := params.Names(); names[0] != "damping.rx" {
		t.Errorf("expected sorted names, got %v", names[:3])
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"unknown generator", func(c *config.Config) {
			c.Generators = []config.GeneratorConfig{{Name: "g", Type: "warp"}}
		}, ErrUnknownType},
		{"unknown constraint", func(c *config.Config) {
			c.Constraints = []config.ConstraintConfig{{Name: "c", Type: "karma"}}
		}, ErrUnknownType},
		{"bad target", func(c *config.Config) {
			c.Generators = []config.GeneratorConfig{{Name: "g", Type: "velocity_proxy", Target: []float64{1, 2}}}
		}, ErrBadValues},
		{"bad joint limits", func(c *config.Config) {
			c.Constraints = []config.ConstraintConfig{{Name: "c", Type: "joint_velocity", Limits: []float64{1}}}
		}, ErrBadValues},
		{"unknown bind", func(c *config.Config) {
			c.Trajectories.Items = []config.TrajectoryConfig{{
				Name: "t", Bind: "nothing.x",
				Segments: []config.SegmentConfig{{Duration: 1}},
			}}
		}, ErrUnknownParam},
		{"unknown event param", func(c *config.Config) {
			c.Scenario[0].Param = "nothing.x"
		}, ErrUnknownParam},
		{"invalid config", func(c *config.Config) {
			c.Run.Dt = -1
		}, config.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := preset(t, "gantry", "estop")
			tt.mutate(cfg)
			if _, err := Build(cfg); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestWithMetrics(t *testing.T) {
	cfg := preset(t, "gantry", "estop")
	cfg.Run.Duration = 0.1

	exp, err := Build(cfg, WithMetrics(metrics.NewJointEffort()))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Metrics) != 1 {
		t.Errorf("expected only joint_effort, got %v", result.Metrics)
	}

	meta := exp.Metadata()
	if meta.Name != "estop" || meta.Joints != 4 || meta.Kinematics != "gantry" || meta.Sync != "" {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestTypes(t *testing.T) {
	if len(GeneratorTypes()) != len(generatorFactories()) || len(ConstraintTypes()) != len(constraintFactories()) {
		t.Error("type lists do not match the registries")
	}
}
