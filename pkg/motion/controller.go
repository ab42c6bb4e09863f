// Package motion turns motion intents into joint targets for the quadruped.
//
// A Controller is in exactly one of three modes. Idle leaves targets alone,
// Walking feeds the gait synthesizer into the actuators every update, and
// Sequenced plays a keyframe queue. Walking takes precedence: starting a walk
// abandons a running sequence, and sequences requested while walking are
// dropped. SetPose interrupts either mode.
//
// The controller is not safe for concurrent use. It is meant to be driven
// from a single loop calling Update at a fixed cadence.
package motion

import (
	"math"

	"github.com/gwillem/quadruped/pkg/gait"
	"github.com/gwillem/quadruped/pkg/robot"
)

// Mode is the active motion mode.
type Mode int

// Motion modes.
const (
	Idle Mode = iota
	Walking
	Sequenced
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Walking:
		return "walking"
	case Sequenced:
		return "sequenced"
	default:
		return "unknown"
	}
}

// Config holds configuration for the controller.
type Config struct {
	Calibration     robot.Calibration
	Gait            gait.Params
	SpeedMultiplier float64 // scales every joint's max rate; 0 means 1
	Sink            robot.Sink
	Logf            func(format string, args ...any)
}

// Controller owns the actuators and the motion mode.
type Controller struct {
	bank   *robot.Bank
	walker *gait.Walker
	seq    *Sequencer
	mode   Mode
	logf   func(format string, args ...any)
}

// NewController creates an idle controller with every joint at its center.
func NewController(cfg Config) *Controller {
	if cfg.Gait == (gait.Params{}) {
		cfg.Gait = gait.DefaultParams()
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	bank := robot.NewBank(cfg.Calibration, cfg.Sink)
	if cfg.SpeedMultiplier > 0 {
		bank.SetSpeedMultiplier(cfg.SpeedMultiplier)
	}
	bank.SetErrorFunc(func(id robot.JointID, err error) {
		logf("Output error on %s: %v", id, err)
	})

	return &Controller{
		bank:   bank,
		walker: gait.NewWalker(cfg.Gait),
		seq:    NewSequencer(bank),
		mode:   Idle,
		logf:   logf,
	}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Bank exposes the actuators for inspection.
func (c *Controller) Bank() *robot.Bank { return c.bank }

// Gait returns the walking state.
func (c *Controller) Gait() gait.State { return c.walker.State() }

// Phase returns the gait phase in [0, 1).
func (c *Controller) Phase() float64 { return c.walker.State().Phase }

// StartWalk switches to walking. A running sequence is abandoned.
func (c *Controller) StartWalk(direction int, turn, speed float64) {
	if c.mode == Sequenced {
		c.seq.Cancel()
		c.logf("Sequence abandoned for walk")
	}
	c.walker.Start(direction, turn, speed)
	c.mode = Walking
}

// Forward walks straight ahead.
func (c *Controller) Forward(speed float64) { c.StartWalk(1, 0, speed) }

// Backward walks straight back.
func (c *Controller) Backward(speed float64) { c.StartWalk(-1, 0, speed) }

// Left walks forward arcing left.
func (c *Controller) Left(speed float64) { c.StartWalk(1, -1, speed) }

// Right walks forward arcing right.
func (c *Controller) Right(speed float64) { c.StartWalk(1, 1, speed) }

// StopWalk ends a walk and moves the joints back to the standing pose.
// It does nothing unless walking.
func (c *Controller) StopWalk() {
	if c.mode != Walking {
		return
	}
	c.walker.Stop()
	c.mode = Idle
	stand, _ := LookupPose(PoseStand)
	c.bank.SetMany(stand, false)
}

// SetPose cancels any walk or sequence and applies a named pose.
// Unknown names are ignored.
func (c *Controller) SetPose(name string, immediate bool) {
	pose, ok := LookupPose(name)
	if !ok {
		c.logf("Unknown pose %q", name)
		return
	}
	c.stopModes()
	c.bank.SetMany(pose, immediate)
}

// EnqueueSequence plays a named gesture. Unknown names are ignored.
func (c *Controller) EnqueueSequence(name string) {
	frames, ok := LookupGesture(name)
	if !ok {
		c.logf("Unknown gesture %q", name)
		return
	}
	c.EnqueueKeyframes(frames)
}

// EnqueueKeyframes plays an explicit keyframe list, replacing any running
// sequence. While walking the request is dropped.
func (c *Controller) EnqueueKeyframes(frames []Keyframe) {
	if c.mode == Walking {
		c.logf("Sequence dropped while walking")
		return
	}
	if len(frames) == 0 {
		return
	}
	c.seq.Enqueue(frames)
	if c.seq.Active() {
		c.mode = Sequenced
	}
}

// CancelSequence stops a running sequence, leaving joints where they are.
func (c *Controller) CancelSequence() {
	if c.mode != Sequenced {
		return
	}
	c.seq.Cancel()
	c.mode = Idle
}

// StopAll cancels walking and sequences without moving any joint.
func (c *Controller) StopAll() {
	c.stopModes()
}

// SetJointAngle sets one joint by name or short code. Unknown names are ignored.
// While walking or sequenced the next update may overwrite it.
func (c *Controller) SetJointAngle(name string, angle float64, immediate bool) {
	id, ok := robot.ParseJoint(name)
	if !ok {
		c.logf("Unknown joint %q", name)
		return
	}
	c.bank.Set(id, angle, immediate)
}

// SetLeg sets the femur and knee of one leg, named FR, FL, BR or BL.
// Unknown legs are ignored.
func (c *Controller) SetLeg(name string, femur, knee float64, immediate bool) {
	leg, ok := robot.ParseLeg(name)
	if !ok {
		c.logf("Unknown leg %q", name)
		return
	}
	c.bank.SetGroup(leg, femur, knee, immediate)
}

// CenterAll moves every joint to its calibrated center at once.
func (c *Controller) CenterAll() {
	c.bank.CenterAll(true)
}

// DetachAll releases every joint.
func (c *Controller) DetachAll() {
	c.bank.DetachAll()
}

// AttachAll re-enables every joint at its current angle.
func (c *Controller) AttachAll() {
	c.bank.AttachAll()
}

// JointAngles returns the commanded angle of every joint.
func (c *Controller) JointAngles() robot.Angles {
	return c.bank.CurrentAngles()
}

// TargetAngles returns the target angle of every joint.
func (c *Controller) TargetAngles() robot.Angles {
	return c.bank.TargetAngles()
}

// Update advances the active mode by dt seconds, then steps the actuators.
// It reports whether any joint is still interpolating.
func (c *Controller) Update(dt float64) bool {
	if !(dt > 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	switch c.mode {
	case Walking:
		if angles, ok := c.walker.Advance(dt); ok {
			c.bank.SetMany(angles.Pose(), true)
		}
	case Sequenced:
		c.seq.Tick(dt)
		if !c.seq.Active() {
			c.mode = Idle
		}
	}

	return c.bank.StepAll(dt)
}

func (c *Controller) stopModes() {
	c.walker.Stop()
	c.seq.Cancel()
	c.mode = Idle
}
