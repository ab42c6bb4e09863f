package robot

import (
	"encoding/json"
	"fmt"
	"os"
)

const DefaultConfigFile = "quadruped.json"

// Output kinds.
const (
	OutputNone    = "none"
	OutputFeetech = "feetech"
	OutputPWM     = "pwm"
)

// Config holds the robot configuration
type Config struct {
	Output          OutputConfig `json:"output"`
	Joints          Calibration  `json:"joints,omitempty"`
	Gait            GaitConfig   `json:"gait,omitzero"`
	Hz              int          `json:"hz,omitempty"`
	SpeedMultiplier float64      `json:"speed_multiplier,omitempty"`
}

// OutputConfig selects the physical output sink
type OutputConfig struct {
	Kind     string `json:"kind"`
	Port     string `json:"port,omitempty"`
	BaudRate int    `json:"baud_rate,omitempty"`
}

// GaitConfig overrides gait constants. Zero fields keep the defaults.
type GaitConfig struct {
	CenterFemur    float64 `json:"center_femur,omitempty"`
	SwingAmplitude float64 `json:"swing_amplitude,omitempty"`
	PlantKnee      float64 `json:"plant_knee,omitempty"`
	LiftKnee       float64 `json:"lift_knee,omitempty"`
	BasePeriod     float64 `json:"base_period,omitempty"`
	TurnBias       float64 `json:"turn_bias,omitempty"`
}

// DefaultConfig returns a configuration with no output and stock calibration
func DefaultConfig() *Config {
	return &Config{
		Output:          OutputConfig{Kind: OutputNone},
		Joints:          DefaultCalibration(),
		Hz:              50,
		SpeedMultiplier: 1,
	}
}

// IsCalibrated returns true if every joint has calibration data
func (c *Config) IsCalibrated() bool {
	return len(c.Joints) == NumJoints
}

// CheckOutput verifies that the joint calibration suits the configured output.
// Bus servos need every joint calibrated to raw positions; PWM needs a
// hardware channel and a duty period for every wired joint.
func (c *Config) CheckOutput() error {
	switch c.Output.Kind {
	case "", OutputNone:
		return nil
	case OutputFeetech:
		if c.Output.Port == "" {
			return fmt.Errorf("feetech output has no port")
		}
		if !c.IsCalibrated() {
			return fmt.Errorf("feetech output needs all %d joints calibrated, have %d", NumJoints, len(c.Joints))
		}
		for _, j := range AllJoints() {
			if d := c.Joints[j].DutyPeriod; d != 0 {
				return fmt.Errorf("joint %s: duty period %d is not valid for a bus servo", j, d)
			}
		}
		return nil
	case OutputPWM:
		_, err := pwmPinsFor(c.Joints)
		return err
	default:
		return fmt.Errorf("unknown output kind %q", c.Output.Kind)
	}
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Joints = nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Joints.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}
