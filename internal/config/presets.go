package config

import (
	"sort"

	"github.com/san-kum/phrictl/internal/automation"
)

// presets holds ready-made setups indexed by kinematics then name. They are
// only handed out as copies.
var presets = map[string]map[string]*Config{
	"gantry": {
		"estop":         estopPreset(),
		"separation":    separationPreset(),
		"force_control": forceControlPreset(),
		"trajectory":    trajectoryPreset(),
	},
	"planar_arm": {
		"potential_field": potentialFieldPreset(),
		"push":            pushPreset(),
	},
}

func base(name string) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	return cfg
}

func damping(v float64) []float64 { return []float64{v, v, v, v, v, v} }

// estopPreset moves along y while someone pushes the robot for half a
// second.
func estopPreset() *Config {
	cfg := base("estop")
	cfg.Generators = []GeneratorConfig{
		{Name: "move", Type: "velocity_proxy", Frame: "base", Target: []float64{0, 0.1, 0, 0, 0, 0}},
	}
	cfg.Constraints = []ConstraintConfig{
		{Name: "estop", Type: "emergency_stop", Mode: "force", Params: map[string]float64{
			"force_activation":   30,
			"force_deactivation": 5,
		}},
	}
	cfg.Scenario = []automation.Event{
		{At: 1, Until: 1.5, Param: "env.fx", Value: 40},
	}
	cfg.Run.Duration = 3
	return cfg
}

// separationPreset slows down while approaching an obstacle.
func separationPreset() *Config {
	cfg := base("separation")
	cfg.Generators = []GeneratorConfig{
		{Name: "move", Type: "velocity_proxy", Frame: "base", Target: []float64{0.1, 0, 0, 0, 0, 0}},
	}
	cfg.Constraints = []ConstraintConfig{
		{
			Name:    "separation",
			Type:    "separation_distance",
			Frame:   "base",
			Objects: []ObjectConfig{{Name: "operator", Position: []float64{1, 0, 0}}},
			Inner:   &ConstraintConfig{Name: "speed", Type: "velocity"},
			Interpolator: &InterpolatorConfig{
				Type:       "linear",
				From:       PointConfig{X: 0.2, Y: 0},
				To:         PointConfig{X: 0.6, Y: 0.1},
				Saturation: true,
			},
		},
	}
	cfg.Run.Duration = 10
	return cfg
}

// forceControlPreset regulates the contact force against a wall.
func forceControlPreset() *Config {
	cfg := base("force_control")
	cfg.Driver.Walls = []WallConfig{{Normal: []float64{-1, 0, 0}, Offset: -0.1, Stiffness: 1000}}
	cfg.Generators = []GeneratorConfig{
		{
			Name:      "contact",
			Type:      "force_control",
			Target:    []float64{10, 0, 0, 0, 0, 0},
			Params:    map[string]float64{"kp": 0.005, "kd": 0.0001, "cutoff": 10},
			Selection: []bool{true, false, false, false, false, false},
		},
	}
	cfg.Constraints = []ConstraintConfig{
		{Name: "force_limit", Type: "force", Params: map[string]float64{"max": 20}},
	}
	cfg.Metrics.ForceThreshold = 12
	cfg.Metrics.Names = append(cfg.Metrics.Names, "force_compliance")
	return cfg
}

// trajectoryPreset follows synchronized x/y trajectories through a
// stiffness generator and pauses when the tracking error grows.
func trajectoryPreset() *Config {
	cfg := base("trajectory")
	cfg.Robot.TaskDamping = damping(100)
	cfg.Generators = []GeneratorConfig{
		{Name: "track", Type: "stiffness", Target: []float64{0, 0, 0, 0}, Params: map[string]float64{
			"stiffness":     800,
			"rot_stiffness": 50,
		}},
		{Name: "comply", Type: "external_force"},
	}
	cfg.Constraints = []ConstraintConfig{
		{Name: "speed", Type: "velocity", Params: map[string]float64{"max": 0.3}},
	}
	cfg.Trajectories = TrajectoriesConfig{
		Sync: "waypoints",
		Items: []TrajectoryConfig{
			{
				Name:   "x",
				Output: "position",
				Bind:   "track.x",
				Segments: []SegmentConfig{
					{To: PointConfig{Y: 0.3}, MaxVelocity: 0.2, MaxAcceleration: 0.5},
					{To: PointConfig{Y: 0}, MaxVelocity: 0.2, MaxAcceleration: 0.5},
				},
				Tracking: &TrackingConfig{Reference: "robot.x", Threshold: 0.05, Hysteresis: 0.5},
			},
			{
				Name:   "y",
				Output: "position",
				Bind:   "track.y",
				Segments: []SegmentConfig{
					{To: PointConfig{Y: 0.1}, MaxVelocity: 0.2, MaxAcceleration: 0.5},
					{To: PointConfig{Y: 0.2}, Duration: 1},
				},
			},
		},
	}
	cfg.Scenario = []automation.Event{
		{At: 1, Until: 1.4, Param: "env.fx", Value: -20},
	}
	cfg.Run.Duration = 8
	return cfg
}

// potentialFieldPreset drives an arm toward a goal around an obstacle.
func potentialFieldPreset() *Config {
	cfg := base("potential_field")
	cfg.Robot.Kinematics = "planar_arm"
	cfg.Robot.Links = []float64{0.5, 0.4, 0.3}
	cfg.Robot.InitialPosition = []float64{0.3, 0.5, 0.4}
	cfg.Robot.TaskDamping = damping(50)
	cfg.Generators = []GeneratorConfig{
		{
			Name:  "field",
			Type:  "potential_field",
			Frame: "base",
			Objects: []ObjectConfig{
				{Name: "goal", Type: "attractive", Frame: "base", Position: []float64{0.6, 0.5, 0}, Gain: 10},
				{Name: "obstacle", Type: "repulsive", Frame: "base", Position: []float64{0.8, 0.2, 0}, Gain: 0.5, Threshold: 0.2},
			},
		},
	}
	cfg.Constraints = []ConstraintConfig{
		{Name: "joint_speed", Type: "joint_velocity", Limits: []float64{1, 1, 1}},
	}
	cfg.Run.Duration = 6
	return cfg
}

// pushPreset makes an arm comply with a push while limiting its energy.
func pushPreset() *Config {
	cfg := base("push")
	cfg.Robot.Kinematics = "planar_arm"
	cfg.Robot.Links = []float64{0.5, 0.4, 0.3}
	cfg.Robot.InitialPosition = []float64{0.3, 0.5, 0.4}
	cfg.Robot.TaskDamping = damping(20)
	cfg.Generators = []GeneratorConfig{
		{Name: "comply", Type: "external_force"},
	}
	cfg.Constraints = []ConstraintConfig{
		{Name: "energy", Type: "kinetic_energy", Params: map[string]float64{"mass": 2, "max": 0.1}},
		{Name: "power", Type: "power", Params: map[string]float64{"max": 5}},
	}
	cfg.Scenario = []automation.Event{
		{At: 0.5, Until: 1.5, Param: "env.fx", Value: 15},
	}
	cfg.Metrics.Names = append(cfg.Metrics.Names, "peak_kinetic_energy")
	cfg.Metrics.Mass = 2
	cfg.Run.Duration = 3
	return cfg
}

// GetPreset returns a copy of the named preset, nil when it does not exist.
func GetPreset(kinematics, preset string) *Config {
	group, ok := presets[kinematics]
	if !ok {
		return nil
	}
	cfg, ok := group[preset]
	if !ok {
		return nil
	}
	out, err := cfg.Clone()
	if err != nil {
		return nil
	}
	return out
}

// FindPreset looks a preset up by name across kinematics.
func FindPreset(preset string) *Config {
	for kin := range presets {
		if cfg := GetPreset(kin, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(kinematics string) []string {
	group, ok := presets[kinematics]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListKinematics() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
