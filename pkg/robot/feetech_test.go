package robot

import (
	"slices"
	"testing"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// newOfflineFeetech builds a sink without a bus for bookkeeping tests.
func newOfflineFeetech() *FeetechSink {
	s := &FeetechSink{pending: make(feetech.PositionMap)}
	for _, j := range AllJoints() {
		s.ids[j] = int(j) + 1
	}
	return s
}

// sent mimics a successful Flush.
func (s *FeetechSink) sent(disable, enable []JointID) {
	for _, j := range disable {
		s.torque[j] = false
	}
	for _, j := range enable {
		s.torque[j] = true
	}
	clear(s.pending)
}

func TestFeetechSink_TorquePlan(t *testing.T) {
	s := newOfflineFeetech()

	disable, enable := s.torquePlan()
	if len(disable) != 0 || len(enable) != 0 {
		t.Errorf("fresh sink plan = %v, %v, want nothing", disable, enable)
	}

	for _, j := range AllJoints() {
		s.WriteCalibratedValue(j, 2048)
	}
	disable, enable = s.torquePlan()
	if len(disable) != 0 || !slices.Equal(enable, AllJoints()) {
		t.Errorf("first write plan = %v, %v, want every joint enabled", disable, enable)
	}
	s.sent(disable, enable)

	// One detached joint loses torque on its own.
	s.Release(FrontRightKnee)
	disable, enable = s.torquePlan()
	if !slices.Equal(disable, []JointID{FrontRightKnee}) || len(enable) != 0 {
		t.Errorf("release plan = %v, %v, want front_right_knee disabled", disable, enable)
	}
	s.sent(disable, enable)

	// Released joints stay limp without touching the others.
	s.WriteCalibratedValue(BackLeftFemur, 1000)
	disable, enable = s.torquePlan()
	if len(disable) != 0 || len(enable) != 0 {
		t.Errorf("write to powered joint plan = %v, %v, want nothing", disable, enable)
	}
	if _, ok := s.pending[s.ids[FrontRightKnee]]; ok {
		t.Error("released joint has a pending position")
	}
	s.sent(disable, enable)

	s.WriteCalibratedValue(FrontRightKnee, 3000)
	disable, enable = s.torquePlan()
	if len(disable) != 0 || !slices.Equal(enable, []JointID{FrontRightKnee}) {
		t.Errorf("reattach plan = %v, %v, want front_right_knee enabled", disable, enable)
	}
}

func TestFeetechSink_UnknownJoint(t *testing.T) {
	s := newOfflineFeetech()
	if err := s.WriteCalibratedValue(JointID(9), 1); err == nil {
		t.Error("WriteCalibratedValue accepted an unknown joint")
	}
	if err := s.Release(JointID(-1)); err == nil {
		t.Error("Release accepted an unknown joint")
	}
}
