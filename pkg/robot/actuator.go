package robot

import "math"

// SettleTolerance is the distance, in degrees, below which a joint counts as at its target.
const SettleTolerance = 0.5

// Actuator is the motion model of one joint: calibration plus current and target angle.
// Both angles stay within the calibrated limits after every call.
type Actuator struct {
	id       JointID
	cal      JointCalibration
	current  float64
	target   float64
	speed    float64 // rate multiplier
	detached bool

	sink    Sink
	onError ErrorFunc
}

// NewActuator creates a configured actuator. A nil sink disables output.
func NewActuator(id JointID, cal JointCalibration, sink Sink) *Actuator {
	a := &Actuator{
		id:    id,
		speed: 1,
		sink:  sink,
	}
	a.Configure(cal)
	return a
}

// ID returns the joint this actuator drives.
func (a *Actuator) ID() JointID { return a.id }

// Calibration returns the active calibration.
func (a *Actuator) Calibration() JointCalibration { return a.cal }

// Current returns the commanded angle.
func (a *Actuator) Current() float64 { return a.current }

// Target returns the angle the actuator is moving toward.
func (a *Actuator) Target() float64 { return a.target }

// Attached reports whether output is enabled.
func (a *Actuator) Attached() bool { return !a.detached }

// SetSpeedMultiplier scales the max rate. Non-positive values are ignored.
func (a *Actuator) SetSpeedMultiplier(m float64) {
	if m > 0 && !math.IsInf(m, 0) {
		a.speed = m
	}
}

// SetErrorFunc installs the handler for sink errors.
func (a *Actuator) SetErrorFunc(fn ErrorFunc) {
	a.onError = fn
}

// Configure applies calibration and resets both angles to the center.
func (a *Actuator) Configure(cal JointCalibration) {
	a.cal = cal.withDefaults(a.id)
	a.current = a.cal.Center
	a.target = a.cal.Center
	a.emit()
}

// SetTarget clamps angle into the limits and makes it the target.
// With immediate the current angle jumps there as well.
func (a *Actuator) SetTarget(angle float64, immediate bool) {
	a.target = a.cal.Clamp(angle)
	if immediate {
		a.current = a.target
		a.emit()
	}
}

// Step moves the current angle toward the target by at most MaxRate*dt degrees.
// It returns false once the joint has settled.
func (a *Actuator) Step(dt float64) bool {
	diff := a.target - a.current
	if math.Abs(diff) < SettleTolerance {
		return false
	}
	if !(dt > 0) {
		return true
	}

	maxStep := a.cal.MaxRate * a.speed * dt
	step := max(-maxStep, min(maxStep, diff))
	a.current = a.cal.Clamp(a.current + step)
	a.emit()
	return true
}

// PhysicalValue returns the calibrated output for the current angle.
func (a *Actuator) PhysicalValue() int {
	return a.cal.PhysicalValue(a.current)
}

// Detach releases the joint without touching its angles.
func (a *Actuator) Detach() {
	a.detached = true
	if a.sink == nil {
		return
	}
	if err := a.sink.Release(a.id); err != nil {
		a.report(err)
	}
}

// Attach re-enables output and re-sends the current angle.
func (a *Actuator) Attach() {
	a.detached = false
	a.emit()
}

func (a *Actuator) emit() {
	if a.detached || a.sink == nil {
		return
	}
	if err := a.sink.WriteCalibratedValue(a.id, a.PhysicalValue()); err != nil {
		a.report(err)
	}
}

func (a *Actuator) report(err error) {
	if a.onError != nil {
		a.onError(a.id, err)
	}
}
