package robot

import (
	"encoding/json"
	"testing"
)

func TestParseJoint(t *testing.T) {
	tests := []struct {
		in   string
		want JointID
		ok   bool
	}{
		{"front_right_femur", FrontRightFemur, true},
		{"R1", FrontRightFemur, true},
		{"r3", FrontRightKnee, true},
		{"L2", BackLeftFemur, true},
		{" BACK_LEFT_KNEE ", BackLeftKnee, true},
		{"ZZ", -1, false},
		{"", -1, false},
	}

	for _, tt := range tests {
		got, ok := ParseJoint(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseJoint(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestJointID_Sides(t *testing.T) {
	for _, j := range AllJoints() {
		if j.IsKnee() != (j%2 == 1) {
			t.Errorf("%s IsKnee = %v", j, j.IsKnee())
		}
	}
	if !BackRightKnee.IsRight() || FrontLeftFemur.IsRight() {
		t.Error("IsRight misclassified joints")
	}
	if JointID(8).Code() != "" || JointID(8).Valid() {
		t.Error("JointID(8) should be invalid")
	}
}

func TestLegJoints(t *testing.T) {
	tests := []struct {
		leg         LegID
		femur, knee JointID
	}{
		{FrontRight, FrontRightFemur, FrontRightKnee},
		{FrontLeft, FrontLeftFemur, FrontLeftKnee},
		{BackRight, BackRightFemur, BackRightKnee},
		{BackLeft, BackLeftFemur, BackLeftKnee},
	}

	for _, tt := range tests {
		femur, knee, ok := tt.leg.Joints()
		if !ok || femur != tt.femur || knee != tt.knee {
			t.Errorf("%s.Joints() = %s, %s, %v", tt.leg, femur, knee, ok)
		}
	}

	if _, _, ok := LegID(4).Joints(); ok {
		t.Error("LegID(4).Joints() should fail")
	}
	if leg, ok := ParseLeg("bl"); !ok || leg != BackLeft {
		t.Errorf("ParseLeg(bl) = %v, %v", leg, ok)
	}
}

func TestAngles_Map(t *testing.T) {
	var a Angles
	a[FrontLeftKnee] = 42

	m := a.Map()
	if len(m) != NumJoints {
		t.Fatalf("Map has %d entries, want %d", len(m), NumJoints)
	}
	if m["front_left_knee"] != 42 {
		t.Errorf("front_left_knee = %f, want 42", m["front_left_knee"])
	}
}

func TestJointID_JSONKey(t *testing.T) {
	in := map[JointID]int{FrontRightFemur: 1, BackLeftKnee: 8}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out map[JointID]int
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out[FrontRightFemur] != 1 || out[BackLeftKnee] != 8 {
		t.Errorf("round trip = %v (json %s)", out, data)
	}
}
