package robot

import (
	"strings"
	"testing"
)

func pwmJoint(pin int) JointCalibration {
	jc := DefaultJointCalibration(FrontRightFemur)
	jc.ID = pin
	return jc
}

func TestPWMPinsFor(t *testing.T) {
	cal := Calibration{
		FrontRightFemur: pwmJoint(12),
		FrontLeftFemur:  pwmJoint(19),
		BackLeftKnee:    pwmJoint(0),
	}

	pins, err := pwmPinsFor(cal)
	if err != nil {
		t.Fatalf("pwmPinsFor: %v", err)
	}
	if pins[FrontRightFemur] != 12 || pins[FrontLeftFemur] != 19 {
		t.Errorf("pins = %v", pins)
	}
	if pins[BackLeftKnee] != 0 || pins[FrontRightKnee] != 0 {
		t.Errorf("unwired joints got pins: %v", pins)
	}
}

func TestPWMPinsFor_Rejects(t *testing.T) {
	noDuty := pwmJoint(13)
	noDuty.DutyPeriod = 0

	tests := []struct {
		name string
		cal  Calibration
		want string
	}{
		{"default ids", DefaultCalibration(), "front_right_femur: pin 1 has no hardware PWM"},
		{"shared channel", Calibration{FrontRightFemur: pwmJoint(12), BackLeftKnee: pwmJoint(18)}, "back_left_knee: pin 18 shares PWM channel 0 with front_right_femur"},
		{"third joint", Calibration{FrontRightFemur: pwmJoint(12), FrontRightKnee: pwmJoint(13), FrontLeftFemur: pwmJoint(19)}, "shares PWM channel 1"},
		{"no duty period", Calibration{FrontRightFemur: noDuty}, "needs a duty period"},
		{"nothing wired", Calibration{FrontRightFemur: pwmJoint(0)}, "no joint is wired"},
	}

	for _, tt := range tests {
		_, err := pwmPinsFor(tt.cal)
		if err == nil {
			t.Errorf("%s: pwmPinsFor succeeded, want error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error = %q, want %q", tt.name, err, tt.want)
		}
	}
}
