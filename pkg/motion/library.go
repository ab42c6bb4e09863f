package motion

import (
	"slices"
	"strings"

	"github.com/gwillem/quadruped/pkg/robot"
)

// Standing angles.
const (
	StandFemur = 90.0
	StandKnee  = 180.0
)

// Pose names.
const (
	PoseNeutral = "neutral"
	PoseStand   = "stand"
	PoseSit     = "sit"
	PoseTall    = "tall"
	PoseCrouch  = "crouch"
)

// Gesture names.
const (
	GestureWave   = "wave"
	GestureBow    = "bow"
	GestureShake  = "shake"
	GestureWiggle = "wiggle"
)

// legPose builds a full pose with every femur at femur and every knee at knee.
func legPose(femur, knee float64) robot.Pose {
	pose := make(robot.Pose, 0, robot.NumJoints)
	for _, j := range robot.AllJoints() {
		angle := femur
		if j.IsKnee() {
			angle = knee
		}
		pose = append(pose, robot.JointAngle{Joint: j, Angle: angle})
	}
	return pose
}

var poses = map[string]robot.Pose{
	PoseNeutral: legPose(90, 90),
	PoseStand:   legPose(StandFemur, StandKnee),
	PoseSit:     legPose(90, 45),
	PoseTall:    legPose(90, 180),
	PoseCrouch:  legPose(90, 120),
}

// LookupPose returns a copy of the named pose.
func LookupPose(name string) (robot.Pose, bool) {
	p, ok := poses[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return slices.Clone(p), true
}

// PoseNames returns the known pose names, sorted.
func PoseNames() []string {
	names := make([]string, 0, len(poses))
	for name := range poses {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Shorthands for the joints used by gestures.
const (
	r1 = robot.FrontRightFemur
	r3 = robot.FrontRightKnee
	l1 = robot.FrontLeftFemur
	l3 = robot.FrontLeftKnee
	r2 = robot.BackRightFemur
	r4 = robot.BackRightKnee
	l2 = robot.BackLeftFemur
	l4 = robot.BackLeftKnee
)

func frame(d float64, angles ...robot.JointAngle) Keyframe {
	return Keyframe{Pose: robot.Pose(angles), Duration: d}
}

func at(j robot.JointID, angle float64) robot.JointAngle {
	return robot.JointAngle{Joint: j, Angle: angle}
}

func repeat(n int, frames ...Keyframe) []Keyframe {
	out := make([]Keyframe, 0, n*len(frames))
	for range n {
		out = append(out, frames...)
	}
	return out
}

var gestures = map[string]func() []Keyframe{
	// Raise the front right foot and wave it twice.
	GestureWave: func() []Keyframe {
		return []Keyframe{
			frame(0.3, at(r1, 90), at(r3, 45)),
			frame(0.2, at(r1, 60)),
			frame(0.2, at(r1, 120)),
			frame(0.2, at(r1, 60)),
			frame(0.2, at(r1, 120)),
			frame(0.3, at(r1, 90), at(r3, StandKnee)),
		}
	},
	// Dip the front, hold, stand up.
	GestureBow: func() []Keyframe {
		return []Keyframe{
			frame(0.5, at(r3, 120), at(l3, 120), at(r4, 160), at(l4, 160)),
			frame(0.5),
			{Pose: poses[PoseStand], Duration: 0.5},
		}
	},
	GestureShake: func() []Keyframe {
		frames := repeat(3,
			frame(0.15, at(r1, 70), at(r2, 70), at(l1, 110), at(l2, 110)),
			frame(0.15, at(r1, 110), at(r2, 110), at(l1, 70), at(l2, 70)),
		)
		return append(frames, Keyframe{Pose: poses[PoseStand], Duration: 0.3})
	},
	GestureWiggle: func() []Keyframe {
		frames := repeat(3,
			frame(0.1, at(r2, 70), at(l2, 110)),
			frame(0.1, at(r2, 110), at(l2, 70)),
		)
		return append(frames, frame(0.2, at(r2, 90), at(l2, 90)))
	},
}

// LookupGesture returns the keyframes of the named gesture.
func LookupGesture(name string) ([]Keyframe, bool) {
	build, ok := gestures[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return build(), true
}

// GestureNames returns the known gesture names, sorted.
func GestureNames() []string {
	names := make([]string, 0, len(gestures))
	for name := range gestures {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
