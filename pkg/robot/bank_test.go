package robot

import (
	"math"
	"testing"
)

func TestBank_SetManyIgnoresUnknown(t *testing.T) {
	b := NewBank(DefaultCalibration(), nil)
	before := b.CurrentAngles()

	b.SetMany(Pose{
		{Joint: FrontRightFemur, Angle: 60},
		{Joint: JointID(42), Angle: 10},
		{Joint: JointID(-1), Angle: 10},
		{Joint: BackLeftKnee, Angle: 500},
	}, true)

	got := b.CurrentAngles()
	for _, j := range AllJoints() {
		want := before[j]
		switch j {
		case FrontRightFemur:
			want = 60
		case BackLeftKnee:
			want = 180
		}
		if got[j] != want {
			t.Errorf("%s = %f, want %f", j, got[j], want)
		}
	}
}

func TestBank_SetGroup(t *testing.T) {
	b := NewBank(DefaultCalibration(), nil)

	b.SetGroup(BackRight, 70, 150, true)
	angles := b.CurrentAngles()
	if angles[BackRightFemur] != 70 || angles[BackRightKnee] != 150 {
		t.Errorf("back right leg = (%f, %f), want (70, 150)", angles[BackRightFemur], angles[BackRightKnee])
	}

	before := b.CurrentAngles()
	b.SetGroup(LegID(9), 10, 10, true)
	if b.CurrentAngles() != before {
		t.Error("SetGroup with unknown leg changed angles")
	}
}

func TestBank_StepAll(t *testing.T) {
	b := NewBank(DefaultCalibration(), nil)
	b.SetMany(Pose{{Joint: FrontRightFemur, Angle: 100}, {Joint: FrontRightKnee, Angle: 100}}, false)

	targets := b.TargetAngles()
	if targets[FrontRightFemur] != 100 || targets[FrontRightKnee] != 100 {
		t.Errorf("targets = %v", targets)
	}

	elapsed := 0.0
	for b.StepAll(0.02) {
		elapsed += 0.02
		if elapsed > 5 {
			t.Fatal("bank never settled")
		}
	}

	current := b.CurrentAngles()
	for _, j := range []JointID{FrontRightFemur, FrontRightKnee} {
		if math.Abs(current[j]-100) >= SettleTolerance {
			t.Errorf("%s settled at %f, want ~100", j, current[j])
		}
	}
	if b.StepAll(0.02) {
		t.Error("StepAll reported movement after settling")
	}
}

func TestBank_CenterAll(t *testing.T) {
	cal := DefaultCalibration()
	knee := cal[BackLeftKnee]
	knee.Center = 170
	cal[BackLeftKnee] = knee

	b := NewBank(cal, nil)
	b.SetAll(20, true)
	b.CenterAll(true)

	angles := b.CurrentAngles()
	if angles[BackLeftKnee] != 170 {
		t.Errorf("back_left_knee = %f, want 170", angles[BackLeftKnee])
	}
	if angles[FrontRightFemur] != 90 {
		t.Errorf("front_right_femur = %f, want 90", angles[FrontRightFemur])
	}
}

func TestBank_DetachAttachAll(t *testing.T) {
	sink := newRecordingSink()
	b := NewBank(DefaultCalibration(), sink)

	b.DetachAll()
	for _, j := range AllJoints() {
		if !sink.released[j] {
			t.Errorf("%s not released", j)
		}
	}

	before := b.CurrentAngles()
	b.AttachAll()
	if b.CurrentAngles() != before {
		t.Error("AttachAll changed angles")
	}
	for _, j := range AllJoints() {
		if sink.released[j] {
			t.Errorf("%s still released", j)
		}
	}
}

func TestBank_Joint(t *testing.T) {
	b := NewBank(nil, nil)
	if b.Joint(BackLeftKnee) == nil {
		t.Error("Joint(back_left_knee) = nil")
	}
	if b.Joint(JointID(8)) != nil {
		t.Error("Joint(8) should be nil")
	}
}
