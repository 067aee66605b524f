package config

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Robot.Kinematics != "gantry" {
		t.Errorf("expected kinematics gantry, got %s", cfg.Robot.Kinematics)
	}
	if cfg.Run.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Run.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, kin := range ListKinematics() {
		for _, name := range ListPresets(kin) {
			t.Run(kin+"/"+name, func(t *testing.T) {
				cfg := GetPreset(kin, name)
				if cfg == nil {
					t.Fatal("expected preset, got nil")
				}
				if cfg.Robot.Kinematics != kin {
					t.Errorf("expected kinematics %s, got %s", kin, cfg.Robot.Kinematics)
				}
				if err := cfg.Validate(); err != nil {
					t.Errorf("invalid preset: %v", err)
				}
			})
		}
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg := GetPreset("gantry", "estop")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	cfg.Constraints[0].Params["force_activation"] = 1

	again := GetPreset("gantry", "estop")
	if again.Constraints[0].Params["force_activation"] != 30 {
		t.Error("preset modified through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("gantry", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "estop") != nil {
		t.Error("expected nil for nonexistent kinematics")
	}
	if FindPreset("push") == nil {
		t.Error("expected push preset")
	}
}

func TestGetPresetReturnsCopies(t *testing.T) {
	cfg := GetPreset("gantry", "estop")
	cfg.Name = "changed"
	cfg.Constraints = nil

	again := GetPreset("gantry", "estop")
	if again.Name != "estop" || len(again.Constraints) == 0 {
		t.Errorf("preset changed through a returned copy: %+v", again)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("gantry")
	if len(presets) == 0 {
		t.Error("expected presets for gantry")
	}
	if presets[0] != "estop" {
		t.Errorf("expected sorted presets, got %v", presets)
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent kinematics")
	}
}

func TestJointCount(t *testing.T) {
	tests := []struct {
		kinematics string
		links      []float64
		expected   int
	}{
		{"gantry", nil, 4},
		{"planar_arm", []float64{1, 1}, 2},
		{"planar_arm", []float64{0.5, 0.4, 0.3}, 3},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Robot.Kinematics = tt.kinematics
		cfg.Robot.Links = tt.links
		if n := cfg.JointCount(); n != tt.expected {
			t.Errorf("%s: expected %d joints, got %d", tt.kinematics, tt.expected, n)
		}
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name: wall
robot:
  kinematics: planar_arm
  links: [0.5, 0.5]
  task_damping: [.inf, .inf, 10, 10, 10, 10]
run:
  duration: 2
constraints:
  - name: stop
    type: emergency_stop
    mode: both
    params: {force_activation: 30, force_deactivation: 5}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Name != "wall" || cfg.JointCount() != 2 {
		t.Errorf("unexpected config %+v", cfg.Robot)
	}
	if !math.IsInf(cfg.Robot.TaskDamping[0], 1) {
		t.Errorf("expected infinite damping, got %f", cfg.Robot.TaskDamping[0])
	}
	if cfg.Run.Duration != 2 || cfg.Run.Dt != DefaultDt {
		t.Errorf("expected defaults under the file, got %+v", cfg.Run)
	}
	if cfg.Constraints[0].Params["force_activation"] != 30 {
		t.Errorf("unexpected constraint %+v", cfg.Constraints[0])
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("gantry", "trajectory")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Trajectories.Sync != "waypoints" || len(loaded.Trajectories.Items) != 2 {
		t.Errorf("unexpected trajectories %+v", loaded.Trajectories)
	}
	if loaded.Trajectories.Items[0].Tracking.Reference != "robot.x" {
		t.Errorf("unexpected tracking %+v", loaded.Trajectories.Items[0].Tracking)
	}
}

func TestValidateAggregates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Run.Dt = 0
	cfg.Robot.Kinematics = "hexapod"
	cfg.Driver.Integrator = "verlet"
	cfg.Generators = []GeneratorConfig{{Name: "a"}, {Name: "a"}}
	cfg.Constraints = []ConstraintConfig{{Name: "default"}, {Name: "sep", Type: "separation_distance"}}
	cfg.Metrics.Names = []string{"jerk"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	errs := multierr.Errors(err)
	if len(errs) != 7 {
		t.Errorf("expected 7 errors, got %d: %v", len(errs), err)
	}
	for _, want := range []string{"run.dt", "hexapod", "verlet", `duplicate generator "a"`, "reserved", "inner constraint", "jerk"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidateTrajectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trajectories = TrajectoriesConfig{
		Sync: "sometimes",
		Items: []TrajectoryConfig{
			{Name: "x", Output: "jerk", Segments: []SegmentConfig{{MaxVelocity: 1}}},
			{Name: "y", Bind: "move.y", Segments: []SegmentConfig{{Duration: 1}}, Tracking: &TrackingConfig{Reference: "robot.y", Threshold: 1, Hysteresis: 2}},
		},
	}

	errs := multierr.Errors(cfg.Validate())
	// sync, output, bind, segment limits, tracking
	if len(errs) != 5 {
		t.Errorf("expected 5 errors, got %d: %v", len(errs), errs)
	}
}

func TestSetParam(t *testing.T) {
	cfg := GetPreset("gantry", "separation")

	tests := []struct {
		path  string
		value float64
		check func() float64
	}{
		{"run.dt", 0.002, func() float64 { return cfg.Run.Dt }},
		{"controller.lambda", 0.2, func() float64 { return cfg.Controller.Lambda }},
		{"driver.deadband", 0.5, func() float64 { return cfg.Driver.Deadband }},
		{"move.gain", 3, func() float64 { return cfg.Generators[0].Params["gain"] }},
		{"separation.inner.max", 0.4, func() float64 { return cfg.Constraints[0].Inner.Params["max"] }},
	}

	for _, tt := range tests {
		if err := cfg.SetParam(tt.path, tt.value); err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		if got := tt.check(); got != tt.value {
			t.Errorf("%s: expected %f, got %f", tt.path, tt.value, got)
		}
	}

	for _, path := range []string{"nobody.max", "run", "move."} {
		if err := cfg.SetParam(path, 1); !errors.Is(err, ErrUnknownParam) {
			t.Errorf("%s: expected ErrUnknownParam, got %v", path, err)
		}
	}
}
