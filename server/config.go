package server

import (
	"fmt"
	"os"

	"github.com/Team-Elite-2025/midas/defense"
	"gopkg.in/yaml.v3"
)

// Feed selector values for Config.Feed.
const (
	FeedSim    = "sim"
	FeedRemote = "remote"
)

// Config is the host configuration, loaded from YAML with every field
// optional. The defense block maps onto the core tunables; everything
// else configures the control loop and its collaborators.
type Config struct {
	Addr    string `yaml:"addr" json:"addr"`
	TickHz  int    `yaml:"tick_hz" json:"tick_hz"`
	Feed    string `yaml:"feed" json:"feed"`
	Verbose bool   `yaml:"verbose" json:"verbose"`

	Sim     SimConfig     `yaml:"sim" json:"sim"`
	Kafka   KafkaConfig   `yaml:"kafka" json:"kafka"`
	Defense DefenseConfig `yaml:"defense" json:"defense"`
}

// SimConfig parameterizes the built-in scripted match used when no real
// vision feed is attached.
type SimConfig struct {
	BallStart     VecConfig   `yaml:"ball_start" json:"ball_start"`
	BallDrift     VecConfig   `yaml:"ball_drift" json:"ball_drift"`
	OpponentStart VecConfig   `yaml:"opponent_start" json:"opponent_start"`
	OpponentVel   VecConfig   `yaml:"opponent_vel" json:"opponent_vel"`
	Teammates     []VecConfig `yaml:"teammates" json:"teammates"`
	GoalCenter    VecConfig   `yaml:"goal_center" json:"goal_center"`
	GuardPoint    VecConfig   `yaml:"guard_point" json:"guard_point"`
	BoxHalfWidth  float64     `yaml:"box_half_width" json:"box_half_width"`
	BoxHalfHeight float64     `yaml:"box_half_height" json:"box_half_height"`
	ArrivalRadius float64     `yaml:"arrival_radius" json:"arrival_radius"`
}

// KafkaConfig enables publishing trace records to a fleet telemetry topic.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Brokers []string `yaml:"brokers" json:"brokers"`
	Topic   string   `yaml:"topic" json:"topic"`
}

// DefenseConfig mirrors defense.Config with YAML tags so the tunables can
// live in the same file as the host settings.
type DefenseConfig struct {
	InterceptThreshold float64 `yaml:"intercept_threshold" json:"intercept_threshold"`
	CorrectionGain     float64 `yaml:"correction_gain" json:"correction_gain"`
	PredictionHorizon  float64 `yaml:"prediction_horizon" json:"prediction_horizon"`
	ClearanceRadius    float64 `yaml:"clearance_radius" json:"clearance_radius"`
	CurveSamples       int     `yaml:"curve_samples" json:"curve_samples"`
	GoalieSpeed        float64 `yaml:"goalie_speed" json:"goalie_speed"`
}

// VecConfig is a YAML-friendly 2D point.
type VecConfig struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

func (v VecConfig) vec() defense.Vec2 {
	return defense.Vec2{X: v.X, Y: v.Y}
}

// ToCore converts the YAML block into the core tunables. Range clamping
// happens inside the core at arbiter construction.
func (c DefenseConfig) ToCore() defense.Config {
	return defense.Config{
		InterceptThreshold: c.InterceptThreshold,
		CorrectionGain:     c.CorrectionGain,
		PredictionHorizon:  c.PredictionHorizon,
		ClearanceRadius:    c.ClearanceRadius,
		CurveSamples:       c.CurveSamples,
		GoalieSpeed:        c.GoalieSpeed,
	}
}

// DefaultConfig returns the configuration used when no file is supplied.
// The sim parameters reproduce the reference match: ball drifting from
// (0, 6), one rival closing from (1, 5), a teammate upfield and the goal
// at (0, -20).
func DefaultConfig() *Config {
	core := defense.DefaultConfig()
	return &Config{
		Addr:   ":8080",
		TickHz: 10,
		Feed:   FeedSim,
		Sim: SimConfig{
			BallStart:     VecConfig{X: 0, Y: 6},
			BallDrift:     VecConfig{X: 0.1, Y: -0.2},
			OpponentStart: VecConfig{X: 1, Y: 5},
			OpponentVel:   VecConfig{X: 0.2, Y: -0.1},
			Teammates:     []VecConfig{{X: -5, Y: 10}},
			GoalCenter:    VecConfig{X: 0, Y: -20},
			GuardPoint:    VecConfig{X: 0, Y: 0},
			BoxHalfWidth:  10,
			BoxHalfHeight: 20,
			ArrivalRadius: 0.25,
		},
		Kafka: KafkaConfig{
			Topic: "midas.trace",
		},
		Defense: DefenseConfig{
			InterceptThreshold: core.InterceptThreshold,
			CorrectionGain:     core.CorrectionGain,
			PredictionHorizon:  core.PredictionHorizon,
			ClearanceRadius:    core.ClearanceRadius,
			CurveSamples:       core.CurveSamples,
			GoalieSpeed:        core.GoalieSpeed,
		},
	}
}

// LoadConfig reads path on top of the defaults. An empty path returns the
// defaults untouched.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the host cannot run with. Core tunables are
// not checked here; the arbiter clamps those itself and reports the
// clamps as diagnostics.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TickHz < 1 || c.TickHz > 1000 {
		return fmt.Errorf("tick_hz %d out of range [1, 1000]", c.TickHz)
	}
	switch c.Feed {
	case FeedSim, FeedRemote:
	default:
		return fmt.Errorf("feed %q must be %q or %q", c.Feed, FeedSim, FeedRemote)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled without brokers")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka enabled without a topic")
	}
	if c.Sim.ArrivalRadius < 0 {
		return fmt.Errorf("sim arrival_radius must be non-negative")
	}
	return nil
}

// Geometry builds the per-tick target geometry from the sim parameters.
func (sc SimConfig) Geometry() defense.TargetGeometry {
	teammates := make([]defense.Vec2, len(sc.Teammates))
	for i, tm := range sc.Teammates {
		teammates[i] = tm.vec()
	}
	return defense.TargetGeometry{
		TargetBox:  defense.CenteredBox(defense.Vec2{}, sc.BoxHalfWidth, sc.BoxHalfHeight),
		GoalCenter: sc.GoalCenter.vec(),
		GuardPoint: sc.GuardPoint.vec(),
		Teammates:  teammates,
	}
}
