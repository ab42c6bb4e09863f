// Package robot provides the joint actuator model for the quadruped.
package robot

import (
	"fmt"
	"strings"
)

// JointID identifies one of the eight joints. Values are dense so they can index arrays.
type JointID int

// Joints of the quadruped, femur then knee for each leg.
const (
	FrontRightFemur JointID = iota
	FrontRightKnee
	FrontLeftFemur
	FrontLeftKnee
	BackRightFemur
	BackRightKnee
	BackLeftFemur
	BackLeftKnee

	NumJoints = 8
)

var jointNames = [NumJoints]string{
	"front_right_femur",
	"front_right_knee",
	"front_left_femur",
	"front_left_knee",
	"back_right_femur",
	"back_right_knee",
	"back_left_femur",
	"back_left_knee",
}

// Short codes used by the legacy servo wiring tables.
var jointCodes = [NumJoints]string{
	"R1", "R3", "L1", "L3", "R2", "R4", "L2", "L4",
}

// AllJoints returns all joints in index order.
func AllJoints() []JointID {
	joints := make([]JointID, NumJoints)
	for i := range joints {
		joints[i] = JointID(i)
	}
	return joints
}

// Valid reports whether j names one of the eight joints.
func (j JointID) Valid() bool {
	return j >= 0 && j < NumJoints
}

func (j JointID) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Code returns the short wiring code (R1..L4).
func (j JointID) Code() string {
	if !j.Valid() {
		return ""
	}
	return jointCodes[j]
}

// IsKnee reports whether the joint lifts a foot.
func (j JointID) IsKnee() bool {
	return j.Valid() && j%2 == 1
}

// IsRight reports whether the joint is on the right side of the body.
func (j JointID) IsRight() bool {
	switch j {
	case FrontRightFemur, FrontRightKnee, BackRightFemur, BackRightKnee:
		return true
	}
	return false
}

// ParseJoint resolves a role name ("front_right_femur") or short code ("R1").
func ParseJoint(s string) (JointID, bool) {
	s = strings.TrimSpace(s)
	for i := range NumJoints {
		if strings.EqualFold(s, jointNames[i]) || strings.EqualFold(s, jointCodes[i]) {
			return JointID(i), true
		}
	}
	return -1, false
}

// MarshalText implements encoding.TextMarshaler so JointID can key JSON maps.
func (j JointID) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *JointID) UnmarshalText(text []byte) error {
	id, ok := ParseJoint(string(text))
	if !ok {
		return fmt.Errorf("unknown joint %q", text)
	}
	*j = id
	return nil
}

// LegID identifies a leg.
type LegID int

// Legs of the quadruped.
const (
	FrontRight LegID = iota
	FrontLeft
	BackRight
	BackLeft

	NumLegs = 4
)

var legNames = [NumLegs]string{"FR", "FL", "BR", "BL"}

// legJoints maps each leg to its (femur, knee) pair.
var legJoints = [NumLegs][2]JointID{
	FrontRight: {FrontRightFemur, FrontRightKnee},
	FrontLeft:  {FrontLeftFemur, FrontLeftKnee},
	BackRight:  {BackRightFemur, BackRightKnee},
	BackLeft:   {BackLeftFemur, BackLeftKnee},
}

// Valid reports whether l names one of the four legs.
func (l LegID) Valid() bool {
	return l >= 0 && l < NumLegs
}

func (l LegID) String() string {
	if !l.Valid() {
		return fmt.Sprintf("leg(%d)", int(l))
	}
	return legNames[l]
}

// Joints returns the femur and knee of the leg.
func (l LegID) Joints() (femur, knee JointID, ok bool) {
	if !l.Valid() {
		return -1, -1, false
	}
	return legJoints[l][0], legJoints[l][1], true
}

// ParseLeg resolves a leg name such as "FR".
func ParseLeg(s string) (LegID, bool) {
	for i := range NumLegs {
		if strings.EqualFold(strings.TrimSpace(s), legNames[i]) {
			return LegID(i), true
		}
	}
	return -1, false
}

// JointAngle is a single joint target.
type JointAngle struct {
	Joint JointID
	Angle float64
}

// Pose is a sparse set of joint targets. Joints not listed are left untouched.
type Pose []JointAngle

// Angles is a full snapshot of all joint angles, indexed by JointID.
type Angles [NumJoints]float64

// Map returns the snapshot keyed by joint name.
func (a Angles) Map() map[string]float64 {
	m := make(map[string]float64, NumJoints)
	for i, v := range a {
		m[jointNames[i]] = v
	}
	return m
}

// Pose converts a full snapshot into a pose covering every joint.
func (a Angles) Pose() Pose {
	p := make(Pose, NumJoints)
	for i, v := range a {
		p[i] = JointAngle{Joint: JointID(i), Angle: v}
	}
	return p
}
