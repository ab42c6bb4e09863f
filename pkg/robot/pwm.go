package robot

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// PWM timing: a 16-bit duty cycle at the 50 Hz servo frame rate.
const (
	pwmFrameHz   = 50
	pwmCycleLen  = 65535
	pwmClockFreq = pwmFrameHz * pwmCycleLen
)

// Hardware PWM channel of each Raspberry Pi pin. Pins on one channel carry the same pulse.
var pwmChannels = map[int]int{
	12: 0,
	18: 0,
	13: 1,
	19: 1,
}

// PWMSink drives hobby servos from Raspberry Pi hardware PWM pins. The joint
// calibration ID is the BCM pin number and the written value is a 16-bit duty.
// The Pi has two PWM channels, so at most two joints can be wired; joints with
// ID 0 are not wired and their writes are dropped.
type PWMSink struct {
	pins   [NumJoints]rpio.Pin
	mapped [NumJoints]bool
}

// OpenPWM maps the GPIO registers and configures a PWM pin for every wired joint.
func OpenPWM(cal Calibration) (*PWMSink, error) {
	pins, err := pwmPinsFor(cal)
	if err != nil {
		return nil, err
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}

	s := &PWMSink{}
	for _, j := range AllJoints() {
		if pins[j] == 0 {
			continue
		}
		pin := rpio.Pin(pins[j])
		pin.Mode(rpio.Pwm)
		pin.Freq(pwmClockFreq)
		s.pins[j] = pin
		s.mapped[j] = true
	}
	return s, nil
}

// pwmPinsFor returns the pin of every wired joint, 0 for unwired ones. Each
// wired joint needs its own hardware channel and a duty period.
func pwmPinsFor(cal Calibration) ([NumJoints]int, error) {
	var pins [NumJoints]int
	owners := make(map[int]JointID)
	for _, j := range AllJoints() {
		jc, ok := cal[j]
		if !ok || jc.ID == 0 {
			continue
		}
		ch, ok := pwmChannels[jc.ID]
		if !ok {
			return pins, fmt.Errorf("joint %s: pin %d has no hardware PWM", j, jc.ID)
		}
		if other, taken := owners[ch]; taken {
			return pins, fmt.Errorf("joint %s: pin %d shares PWM channel %d with %s", j, jc.ID, ch, other)
		}
		if jc.DutyPeriod <= 0 {
			return pins, fmt.Errorf("joint %s: pwm output needs a duty period", j)
		}
		owners[ch] = j
		pins[j] = jc.ID
	}
	if len(owners) == 0 {
		return pins, fmt.Errorf("no joint is wired to a PWM pin")
	}
	return pins, nil
}

// Close unmaps the GPIO registers.
func (s *PWMSink) Close() error {
	return rpio.Close()
}

// WriteCalibratedValue sets the duty cycle of the joint's pin.
func (s *PWMSink) WriteCalibratedValue(id JointID, value int) error {
	if !id.Valid() {
		return fmt.Errorf("write %s: unknown joint", id)
	}
	if !s.mapped[id] {
		return nil
	}
	duty := uint32(max(0, min(pwmCycleLen, value)))
	s.pins[id].DutyCycle(duty, pwmCycleLen)
	return nil
}

// Release stops the pulse train so the servo goes limp.
func (s *PWMSink) Release(id JointID) error {
	if !id.Valid() {
		return fmt.Errorf("release %s: unknown joint", id)
	}
	if !s.mapped[id] {
		return nil
	}
	s.pins[id].DutyCycle(0, pwmCycleLen)
	return nil
}
