package robot

import (
	"math"
	"testing"
)

func TestJointCalibration_Clamp(t *testing.T) {
	cal := JointCalibration{MinAngle: 20, MaxAngle: 160, Center: 90}

	tests := []struct {
		angle    float64
		expected float64
	}{
		{-45, 20},
		{0, 20},
		{20, 20},
		{90, 90},
		{160, 160},
		{999, 160},
		{math.Inf(1), 160},
		{math.Inf(-1), 20},
		{math.NaN(), 90}, // NaN -> center
	}

	for _, tt := range tests {
		got := cal.Clamp(tt.angle)
		if got != tt.expected {
			t.Errorf("Clamp(%f) = %f, want %f", tt.angle, got, tt.expected)
		}
	}
}

func TestJointCalibration_PhysicalValue(t *testing.T) {
	cal := DefaultJointCalibration(FrontRightFemur)

	tests := []struct {
		angle    float64
		expected int
	}{
		{0, 1638},   // 500µs
		{90, 4915},  // 1500µs
		{180, 8191}, // 2500µs
		{-10, 1638}, // clamped
	}

	for _, tt := range tests {
		got := cal.PhysicalValue(tt.angle)
		if got != tt.expected {
			t.Errorf("PhysicalValue(%f) = %d, want %d", tt.angle, got, tt.expected)
		}
	}
}

func TestJointCalibration_PhysicalValueInverted(t *testing.T) {
	cal := DefaultJointCalibration(BackLeftKnee)
	cal.DutyPeriod = 0 // report pulse width
	cal.Inverted = true

	tests := []struct {
		angle    float64
		expected int
	}{
		{0, 2500},
		{45, 2000},
		{90, 1500},
		{180, 500},
	}

	for _, tt := range tests {
		got := cal.PhysicalValue(tt.angle)
		if got != tt.expected {
			t.Errorf("PhysicalValue(%f) = %d, want %d", tt.angle, got, tt.expected)
		}
	}
}

func TestJointCalibration_PhysicalValueTicks(t *testing.T) {
	cal := JointCalibration{
		MinAngle:  0,
		MaxAngle:  180,
		Center:    90,
		OutputMin: 1024,
		OutputMax: 3072,
		Travel:    180,
	}

	if got := cal.PhysicalValue(90); got != 2048 {
		t.Errorf("PhysicalValue(90) = %d, want 2048", got)
	}
	if got := cal.PhysicalValue(0); got != 1024 {
		t.Errorf("PhysicalValue(0) = %d, want 1024", got)
	}
}

func TestJointCalibration_Validate(t *testing.T) {
	good := DefaultJointCalibration(FrontLeftFemur)
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}

	bad := good
	bad.MinAngle, bad.MaxAngle = 150, 30
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject min > max")
	}

	bad = good
	bad.MaxRate = -1
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject a negative rate")
	}

	zero := good
	zero.MaxRate = 0
	if err := zero.Validate(); err != nil {
		t.Errorf("Validate() on zero rate: %v", err)
	}
	if got := (Calibration{FrontLeftFemur: zero}).Resolve()[FrontLeftFemur].MaxRate; math.Abs(got-54) > 1e-9 {
		t.Errorf("zero rate resolved to %f, want default 54", got)
	}
}

func TestDefaultCalibration_Rates(t *testing.T) {
	cal := DefaultCalibration()
	if len(cal) != NumJoints {
		t.Fatalf("DefaultCalibration has %d joints, want %d", len(cal), NumJoints)
	}
	if got := cal[FrontRightFemur].MaxRate; math.Abs(got-54) > 1e-9 {
		t.Errorf("femur rate = %f, want 54", got)
	}
	if got := cal[FrontRightKnee].MaxRate; math.Abs(got-43.2) > 1e-9 {
		t.Errorf("knee rate = %f, want 43.2", got)
	}
}

func TestCalibration_Resolve(t *testing.T) {
	cal := Calibration{
		FrontRightFemur: {ID: 7, MinAngle: 30, MaxAngle: 150, Center: 10, MaxRate: 90},
	}

	resolved := cal.Resolve()
	fr := resolved[FrontRightFemur]
	if fr.ID != 7 || fr.MaxRate != 90 {
		t.Errorf("Resolve kept wrong values: %+v", fr)
	}
	if fr.Center != 30 {
		t.Errorf("Resolve center = %f, want clamped 30", fr.Center)
	}
	if fr.OutputMin != DefaultPulseMinUS || fr.Travel != DefaultTravel {
		t.Errorf("Resolve did not fill output defaults: %+v", fr)
	}

	bl := resolved[BackLeftKnee]
	if bl != DefaultJointCalibration(BackLeftKnee) {
		t.Errorf("missing joint resolved to %+v, want defaults", bl)
	}
}
