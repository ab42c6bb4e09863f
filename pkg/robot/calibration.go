package robot

import (
	"encoding/json"
	"fmt"
	"math"
)

// Defaults for a hobby servo driven with a 50 Hz pulse of 500-2500 µs over 180°.
const (
	DefaultMinAngle   = 0.0
	DefaultMaxAngle   = 180.0
	DefaultCenter     = 90.0
	DefaultTravel     = 180.0
	DefaultPulseMinUS = 500
	DefaultPulseMaxUS = 2500
	DefaultPeriodUS   = 20000 // 50 Hz

	// Default rates, in revolutions per second, taken from the servo speed table.
	femurRevsPerSec = 0.15
	kneeRevsPerSec  = 0.12
)

// JointCalibration holds calibration data for a single joint.
type JointCalibration struct {
	ID       int     `json:"id"` // bus servo ID or PWM pin
	Inverted bool    `json:"inverted"`
	MinAngle float64 `json:"min_angle"`
	MaxAngle float64 `json:"max_angle"`
	Center   float64 `json:"center"`
	MaxRate  float64 `json:"max_rate"` // degrees per second

	// Physical output at 0° and at Travel°. Pulse width in µs for PWM servos, position ticks for bus servos.
	OutputMin int     `json:"output_min"`
	OutputMax int     `json:"output_max"`
	Travel    float64 `json:"travel"`
	// DutyPeriod, in µs, converts the output pulse into a 16-bit duty value. Zero leaves the output as is.
	DutyPeriod int `json:"duty_period,omitempty"`
}

// Calibration holds calibration data for all joints, keyed by joint.
type Calibration map[JointID]JointCalibration

// DefaultJointCalibration returns the stock calibration for a joint.
func DefaultJointCalibration(j JointID) JointCalibration {
	rate := femurRevsPerSec * 360
	if j.IsKnee() {
		rate = kneeRevsPerSec * 360
	}
	return JointCalibration{
		ID:         int(j) + 1,
		MinAngle:   DefaultMinAngle,
		MaxAngle:   DefaultMaxAngle,
		Center:     DefaultCenter,
		MaxRate:    rate,
		OutputMin:  DefaultPulseMinUS,
		OutputMax:  DefaultPulseMaxUS,
		Travel:     DefaultTravel,
		DutyPeriod: DefaultPeriodUS,
	}
}

// DefaultCalibration returns stock calibration for every joint.
func DefaultCalibration() Calibration {
	cal := make(Calibration, NumJoints)
	for _, j := range AllJoints() {
		cal[j] = DefaultJointCalibration(j)
	}
	return cal
}

// Validate checks every joint in the calibration.
func (c Calibration) Validate() error {
	for j, jc := range c {
		if err := jc.Validate(); err != nil {
			return fmt.Errorf("joint %s: %w", j, err)
		}
	}
	return nil
}

// Resolve returns a dense per-joint table, filling missing joints with defaults.
func (c Calibration) Resolve() [NumJoints]JointCalibration {
	var out [NumJoints]JointCalibration
	for _, j := range AllJoints() {
		jc, ok := c[j]
		if !ok {
			jc = DefaultJointCalibration(j)
		}
		out[j] = jc.withDefaults(j)
	}
	return out
}

// UnmarshalJSON decodes a joint entry. An absent center key keeps the default center.
func (c *JointCalibration) UnmarshalJSON(data []byte) error {
	type plain JointCalibration
	p := plain{Center: DefaultCenter}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = JointCalibration(p)
	return nil
}

// Validate checks that the limits and rate are usable. A zero rate selects the
// joint's default rate.
func (c JointCalibration) Validate() error {
	if c.MinAngle > c.MaxAngle {
		return fmt.Errorf("invalid limits: min (%g) greater than max (%g)", c.MinAngle, c.MaxAngle)
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("invalid max rate %g", c.MaxRate)
	}
	if c.Travel < 0 || c.DutyPeriod < 0 {
		return fmt.Errorf("invalid output mapping: travel %g, duty period %d", c.Travel, c.DutyPeriod)
	}
	return nil
}

// withDefaults fills zero-valued fields and orders the limits.
func (c JointCalibration) withDefaults(j JointID) JointCalibration {
	if c.MinAngle == 0 && c.MaxAngle == 0 {
		c.MinAngle, c.MaxAngle = DefaultMinAngle, DefaultMaxAngle
	}
	if c.MinAngle > c.MaxAngle {
		c.MinAngle, c.MaxAngle = c.MaxAngle, c.MinAngle
	}
	if c.MaxRate <= 0 {
		c.MaxRate = DefaultJointCalibration(j).MaxRate
	}
	if c.Travel <= 0 {
		c.Travel = DefaultTravel
	}
	if c.OutputMin == 0 && c.OutputMax == 0 {
		c.OutputMin, c.OutputMax = DefaultPulseMinUS, DefaultPulseMaxUS
	}
	c.Center = c.Clamp(c.Center)
	return c
}

// Clamp limits an angle to [MinAngle, MaxAngle]. NaN maps to the center.
func (c JointCalibration) Clamp(angle float64) float64 {
	if math.IsNaN(angle) {
		angle = c.Center
		if math.IsNaN(angle) {
			angle = c.MinAngle
		}
	}
	return max(c.MinAngle, min(c.MaxAngle, angle))
}

// PhysicalValue converts a logical angle into the calibrated output value.
// Inversion mirrors the angle within the joint limits before mapping the servo
// travel linearly onto the output range.
func (c JointCalibration) PhysicalValue(angle float64) int {
	angle = c.Clamp(angle)
	if c.Inverted {
		angle = c.MaxAngle - (angle - c.MinAngle)
	}

	travel := c.Travel
	if travel <= 0 {
		travel = DefaultTravel
	}
	out := float64(c.OutputMin) + angle/travel*float64(c.OutputMax-c.OutputMin)

	if c.DutyPeriod > 0 {
		return int(out / float64(c.DutyPeriod) * 65535)
	}
	return int(math.Round(out))
}
