// Package gait generates the diagonal walking gait for the quadruped.
//
// Legs are split into two diagonal groups whose swing phases are half a cycle
// apart: group A is front-right and back-left, group B is front-left and
// back-right. Each femur follows a sine around the center angle and each knee
// lifts the foot only during the forward half of its group's swing.
package gait

import (
	"math"

	"github.com/gwillem/quadruped/pkg/robot"
)

// Params holds the gait constants, in degrees and seconds.
type Params struct {
	CenterFemur    float64
	SwingAmplitude float64
	PlantKnee      float64
	LiftKnee       float64
	BasePeriod     float64 // seconds per cycle at speed 1
	TurnBias       float64 // femur offset at full turn
}

// DefaultParams returns the stock gait constants.
func DefaultParams() Params {
	return Params{
		CenterFemur:    90,
		SwingAmplitude: 25,
		PlantKnee:      180,
		LiftKnee:       110,
		BasePeriod:     0.8,
		TurnBias:       15,
	}
}

// ParamsFromConfig applies non-zero overrides on top of the defaults.
func ParamsFromConfig(c robot.GaitConfig) Params {
	p := DefaultParams()
	override := func(dst *float64, v float64) {
		if v != 0 && !math.IsNaN(v) {
			*dst = v
		}
	}
	override(&p.CenterFemur, c.CenterFemur)
	override(&p.SwingAmplitude, c.SwingAmplitude)
	override(&p.PlantKnee, c.PlantKnee)
	override(&p.LiftKnee, c.LiftKnee)
	override(&p.TurnBias, c.TurnBias)
	if c.BasePeriod > 0 {
		p.BasePeriod = c.BasePeriod
	}
	return p
}

// Group A swings with the gait phase, group B half a cycle later.
var (
	groupA = [2]robot.LegID{robot.FrontRight, robot.BackLeft}
	groupB = [2]robot.LegID{robot.FrontLeft, robot.BackRight}
)

// Synthesize returns the target angle of every joint at the given phase.
// direction is +1 forward, -1 backward, 0 in place; turn in [-1, 1] arcs the
// walk by biasing the right femurs against the left ones.
func Synthesize(p Params, phase float64, direction int, turn float64) robot.Angles {
	phaseA := wrap(phase)
	phaseB := wrap(phaseA + 0.5)
	bias := p.TurnBias * turn

	var out robot.Angles
	for i, legs := range [2][2]robot.LegID{groupA, groupB} {
		ph := phaseA
		if i == 1 {
			ph = phaseB
		}
		s := math.Sin(2 * math.Pi * ph)
		femur := p.CenterFemur + p.SwingAmplitude*s*float64(direction)
		knee := p.PlantKnee + max(0, s)*(p.LiftKnee-p.PlantKnee)

		for _, leg := range legs {
			f, k, _ := leg.Joints()
			if f.IsRight() {
				out[f] = femur - bias
			} else {
				out[f] = femur + bias
			}
			out[k] = knee
		}
	}
	return out
}

func wrap(phase float64) float64 {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		return 0
	}
	phase = math.Mod(phase, 1)
	if phase < 0 {
		phase++
	}
	if phase >= 1 {
		phase = 0
	}
	return phase
}
