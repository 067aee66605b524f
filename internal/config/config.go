package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phrictl/internal/automation"
	"github.com/san-kum/phrictl/internal/logging"
)

const (
	DefaultDt           = 0.005
	DefaultDuration     = 5.0
	DefaultKinematics   = "gantry"
	DefaultIntegrator   = "rk4"
	DefaultTimeConstant = 0.02
	DefaultLambda       = 0.1
	DefaultSigma        = 0.05
)

type Config struct {
	Name         string             `yaml:"name"`
	Robot        RobotConfig        `yaml:"robot"`
	Driver       DriverConfig       `yaml:"driver"`
	Controller   ControllerConfig   `yaml:"controller"`
	Generators   []GeneratorConfig  `yaml:"generators"`
	Constraints  []ConstraintConfig `yaml:"constraints"`
	Trajectories TrajectoriesConfig `yaml:"trajectories"`
	Scenario     []automation.Event `yaml:"scenario"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Run          RunConfig          `yaml:"run"`
	Logging      logging.Config     `yaml:"logging"`
}

type RobotConfig struct {
	Name            string    `yaml:"name"`
	Kinematics      string    `yaml:"kinematics"`
	Links           []float64 `yaml:"links"`
	InitialPosition []float64 `yaml:"initial_position"`
	// TaskDamping has six values; an empty list keeps the infinite default.
	TaskDamping  []float64 `yaml:"task_damping"`
	JointDamping []float64 `yaml:"joint_damping"`
}

type DriverConfig struct {
	Integrator   string       `yaml:"integrator"`
	TimeConstant float64      `yaml:"time_constant"`
	Deadband     float64      `yaml:"deadband"`
	Walls        []WallConfig `yaml:"walls"`
}

type WallConfig struct {
	Normal    []float64 `yaml:"normal"`
	Offset    float64   `yaml:"offset"`
	Stiffness float64   `yaml:"stiffness"`
}

type ControllerConfig struct {
	Verbose        bool    `yaml:"verbose"`
	Lambda         float64 `yaml:"lambda"`
	SigmaThreshold float64 `yaml:"sigma_threshold"`
}

// GeneratorConfig describes one generator. Type selects the builder; the
// meaning of Target and Params depends on it.
type GeneratorConfig struct {
	Name    string             `yaml:"name"`
	Type    string             `yaml:"type"`
	Frame   string             `yaml:"frame"`
	Target  []float64          `yaml:"target"`
	Params  map[string]float64 `yaml:"params"`
	Objects []ObjectConfig     `yaml:"objects"`
	// Selection lists the axes under force control.
	Selection []bool `yaml:"selection"`
	// TargetType is environment or robot for force control.
	TargetType string `yaml:"target_type"`
}

type ObjectConfig struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Frame     string    `yaml:"frame"`
	Position  []float64 `yaml:"position"`
	Gain      float64   `yaml:"gain"`
	Threshold float64   `yaml:"threshold"`
}

// ConstraintConfig describes one constraint. SeparationDistance constraints
// carry an Inner constraint whose limit is driven by the Interpolator.
type ConstraintConfig struct {
	Name         string              `yaml:"name"`
	Type         string              `yaml:"type"`
	Frame        string              `yaml:"frame"`
	Mode         string              `yaml:"mode"`
	Params       map[string]float64  `yaml:"params"`
	Limits       []float64           `yaml:"limits"`
	Deactivation []float64           `yaml:"deactivation"`
	Objects      []ObjectConfig      `yaml:"objects"`
	Inner        *ConstraintConfig   `yaml:"inner"`
	Interpolator *InterpolatorConfig `yaml:"interpolator"`
}

type InterpolatorConfig struct {
	Type       string      `yaml:"type"`
	From       PointConfig `yaml:"from"`
	To         PointConfig `yaml:"to"`
	Saturation bool        `yaml:"saturation"`
}

type PointConfig struct {
	X   float64 `yaml:"x"`
	Y   float64 `yaml:"y"`
	DY  float64 `yaml:"dy"`
	D2Y float64 `yaml:"d2y"`
}

type TrajectoriesConfig struct {
	Sync  string             `yaml:"sync"`
	Items []TrajectoryConfig `yaml:"items"`
}

// TrajectoryConfig writes its output into the parameter named by Bind.
type TrajectoryConfig struct {
	Name     string          `yaml:"name"`
	Output   string          `yaml:"output"`
	Bind     string          `yaml:"bind"`
	Start    PointConfig     `yaml:"start"`
	Segments []SegmentConfig `yaml:"segments"`
	Tracking *TrackingConfig `yaml:"tracking"`
}

// SegmentConfig is a timed segment when Duration is set, a free-time one
// bounded by MaxVelocity and MaxAcceleration otherwise.
type SegmentConfig struct {
	To              PointConfig `yaml:"to"`
	MaxVelocity     float64     `yaml:"max_velocity"`
	MaxAcceleration float64     `yaml:"max_acceleration"`
	Duration        float64     `yaml:"duration"`
}

type TrackingConfig struct {
	Reference  string  `yaml:"reference"`
	Threshold  float64 `yaml:"threshold"`
	Hysteresis float64 `yaml:"hysteresis"`
}

type MetricsConfig struct {
	Names          []string `yaml:"names"`
	ForceThreshold float64  `yaml:"force_threshold"`
	Mass           float64  `yaml:"mass"`
}

type RunConfig struct {
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Decimation int     `yaml:"decimation"`
	Store      string  `yaml:"store"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Robot: RobotConfig{
			Name:       "robot",
			Kinematics: DefaultKinematics,
		},
		Driver: DriverConfig{
			Integrator:   DefaultIntegrator,
			TimeConstant: DefaultTimeConstant,
		},
		Controller: ControllerConfig{
			Lambda:         DefaultLambda,
			SigmaThreshold: DefaultSigma,
		},
		Metrics: MetricsConfig{
			Names:          []string{"mean_scaling", "stop_ratio", "peak_force", "command_effort"},
			ForceThreshold: 50,
			Mass:           1,
		},
		Run: RunConfig{
			Dt:         DefaultDt,
			Duration:   DefaultDuration,
			Decimation: 1,
			Store:      "runs",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// JointCount is the number of joints implied by the kinematics.
func (c *Config) JointCount() int {
	switch c.Robot.Kinematics {
	case "planar_arm":
		return len(c.Robot.Links)
	default:
		return 4
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "config: clone")
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, "config: clone")
	}
	return out, nil
}
