package gait

import (
	"math"
	"testing"

	"github.com/gwillem/quadruped/pkg/robot"
)

const tolerance = 1e-9

func TestSynthesize_PhaseZero(t *testing.T) {
	got := Synthesize(DefaultParams(), 0, 1, 0)

	for _, j := range robot.AllJoints() {
		want := 90.0
		if j.IsKnee() {
			want = 180
		}
		if math.Abs(got[j]-want) > 1e-6 {
			t.Errorf("%s = %f, want %f", j, got[j], want)
		}
	}
}

func TestSynthesize_QuarterPhase(t *testing.T) {
	got := Synthesize(DefaultParams(), 0.25, 1, 0)

	// Group A at the top of its forward swing with the foot lifted,
	// group B at the back of its swing with the foot planted.
	tests := []struct {
		joint robot.JointID
		want  float64
	}{
		{robot.FrontRightFemur, 115},
		{robot.BackLeftFemur, 115},
		{robot.FrontRightKnee, 110},
		{robot.BackLeftKnee, 110},
		{robot.FrontLeftFemur, 65},
		{robot.BackRightFemur, 65},
		{robot.FrontLeftKnee, 180},
		{robot.BackRightKnee, 180},
	}

	for _, tt := range tests {
		if math.Abs(got[tt.joint]-tt.want) > 1e-6 {
			t.Errorf("%s = %f, want %f", tt.joint, got[tt.joint], tt.want)
		}
	}
}

func TestSynthesize_GroupSymmetry(t *testing.T) {
	p := DefaultParams()
	pairs := [][2]robot.JointID{
		// group B joint, group A joint on the same side of the gait
		{robot.FrontLeftFemur, robot.FrontRightFemur},
		{robot.BackRightFemur, robot.BackLeftFemur},
		{robot.FrontLeftKnee, robot.FrontRightKnee},
		{robot.BackRightKnee, robot.BackLeftKnee},
	}

	for _, dir := range []int{-1, 0, 1} {
		for phase := 0.0; phase < 1; phase += 0.05 {
			now := Synthesize(p, phase, dir, 0)
			later := Synthesize(p, math.Mod(phase+0.5, 1), dir, 0)
			for _, pair := range pairs {
				if math.Abs(now[pair[0]]-later[pair[1]]) > 1e-6 {
					t.Errorf("dir=%d phase=%.2f: %s=%f, %s at +0.5 = %f",
						dir, phase, pair[0], now[pair[0]], pair[1], later[pair[1]])
				}
			}
		}
	}
}

func TestSynthesize_TurnBias(t *testing.T) {
	p := DefaultParams()
	straight := Synthesize(p, 0.3, 1, 0)

	for _, turn := range []float64{-1, -0.5, 0.5, 1} {
		turned := Synthesize(p, 0.3, 1, turn)
		for _, j := range robot.AllJoints() {
			delta := turned[j] - straight[j]
			want := 0.0
			if !j.IsKnee() {
				want = p.TurnBias * turn
				if j.IsRight() {
					want = -want
				}
			}
			if math.Abs(delta-want) > tolerance {
				t.Errorf("turn=%.1f %s: bias %f, want %f", turn, j, delta, want)
			}
		}
	}

	// Increasing turn moves the two sides by equal and opposite amounts.
	a := Synthesize(p, 0.7, 1, 0.2)
	b := Synthesize(p, 0.7, 1, 0.6)
	right := b[robot.FrontRightFemur] - a[robot.FrontRightFemur]
	left := b[robot.FrontLeftFemur] - a[robot.FrontLeftFemur]
	if right >= 0 || left <= 0 || math.Abs(right+left) > tolerance {
		t.Errorf("turn increase: right %f, left %f", right, left)
	}
}

func TestSynthesize_KneeStaysPlantedOnBackSwing(t *testing.T) {
	p := DefaultParams()
	for phase := 0.55; phase < 1; phase += 0.05 {
		got := Synthesize(p, phase, 1, 0)
		if got[robot.FrontRightKnee] != p.PlantKnee {
			t.Errorf("phase %.2f: front_right_knee = %f, want planted %f", phase, got[robot.FrontRightKnee], p.PlantKnee)
		}
	}
}

func TestSynthesize_DirectionZero(t *testing.T) {
	got := Synthesize(DefaultParams(), 0.25, 0, 0)
	for _, j := range robot.AllJoints() {
		if !j.IsKnee() && math.Abs(got[j]-90) > tolerance {
			t.Errorf("%s = %f, want 90 when marking time", j, got[j])
		}
	}
	if got[robot.FrontRightKnee] != 110 {
		t.Errorf("front_right_knee = %f, want lifted 110", got[robot.FrontRightKnee])
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.5, 0.5},
		{-0.25, 0.75},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := wrap(tt.in); math.Abs(got-tt.want) > tolerance {
			t.Errorf("wrap(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestParamsFromConfig(t *testing.T) {
	p := ParamsFromConfig(robot.GaitConfig{SwingAmplitude: 30, BasePeriod: -1})
	if p.SwingAmplitude != 30 {
		t.Errorf("swing = %f, want 30", p.SwingAmplitude)
	}
	if p.BasePeriod != 0.8 || p.PlantKnee != 180 {
		t.Errorf("defaults lost: %+v", p)
	}
}
