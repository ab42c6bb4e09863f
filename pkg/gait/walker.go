package gait

import (
	"math"

	"github.com/gwillem/quadruped/pkg/robot"
)

// Walk speed limits, as multiples of the base cadence.
const (
	MinSpeed = 0.1
	MaxSpeed = 4.0
)

// State is the walking state.
type State struct {
	Active    bool
	Phase     float64 // [0, 1)
	Direction int     // -1, 0 or +1
	Turn      float64 // [-1, 1]
	Speed     float64 // > 0
}

// Walker advances the gait phase and produces joint targets.
type Walker struct {
	params Params
	state  State
}

// NewWalker creates an inactive walker.
func NewWalker(p Params) *Walker {
	if !(p.BasePeriod > 0) {
		p.BasePeriod = DefaultParams().BasePeriod
	}
	return &Walker{params: p, state: State{Speed: 1}}
}

// Params returns the gait constants.
func (w *Walker) Params() Params { return w.params }

// State returns a copy of the walking state.
func (w *Walker) State() State { return w.state }

// Active reports whether the walker is running.
func (w *Walker) Active() bool { return w.state.Active }

// Start activates walking. Inputs are clamped: direction to its sign, turn to
// [-1, 1] and speed to [MinSpeed, MaxSpeed]. The phase continues from where
// the previous walk stopped.
func (w *Walker) Start(direction int, turn, speed float64) {
	w.state.Active = true
	w.state.Direction = sign(direction)
	w.state.Turn = clampTurn(turn)
	w.state.Speed = clampSpeed(speed)
}

// Stop deactivates walking.
func (w *Walker) Stop() {
	w.state.Active = false
}

// Advance moves the phase forward by dt seconds and returns the joint targets
// for the new phase. It returns false when the walker is inactive.
func (w *Walker) Advance(dt float64) (robot.Angles, bool) {
	if !w.state.Active {
		return robot.Angles{}, false
	}
	if dt > 0 && !math.IsInf(dt, 0) {
		period := w.params.BasePeriod / w.state.Speed
		w.state.Phase = wrap(w.state.Phase + dt/period)
	}
	return w.Angles(), true
}

// Angles returns the joint targets at the current phase.
func (w *Walker) Angles() robot.Angles {
	return Synthesize(w.params, w.state.Phase, w.state.Direction, w.state.Turn)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clampTurn(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return max(-1, min(1, t))
}

func clampSpeed(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return max(MinSpeed, min(MaxSpeed, s))
}
