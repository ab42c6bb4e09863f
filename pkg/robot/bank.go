package robot

// Bank holds the actuators of all eight joints.
type Bank struct {
	joints [NumJoints]*Actuator
}

// NewBank creates an actuator for every joint. Joints missing from cal use defaults.
func NewBank(cal Calibration, sink Sink) *Bank {
	resolved := cal.Resolve()
	b := &Bank{}
	for _, j := range AllJoints() {
		b.joints[j] = NewActuator(j, resolved[j], sink)
	}
	return b
}

// Joint returns the actuator for id, or nil if id is unknown.
func (b *Bank) Joint(id JointID) *Actuator {
	if !id.Valid() {
		return nil
	}
	return b.joints[id]
}

// SetSpeedMultiplier scales the max rate of every joint.
func (b *Bank) SetSpeedMultiplier(m float64) {
	for _, a := range b.joints {
		a.SetSpeedMultiplier(m)
	}
}

// SetErrorFunc installs the sink error handler on every joint.
func (b *Bank) SetErrorFunc(fn ErrorFunc) {
	for _, a := range b.joints {
		a.SetErrorFunc(fn)
	}
}

// Set sets the target of a single joint. Unknown joints are ignored.
func (b *Bank) Set(id JointID, angle float64, immediate bool) {
	if a := b.Joint(id); a != nil {
		a.SetTarget(angle, immediate)
	}
}

// SetMany applies every entry of the pose. Unknown joints are ignored.
func (b *Bank) SetMany(pose Pose, immediate bool) {
	for _, ja := range pose {
		b.Set(ja.Joint, ja.Angle, immediate)
	}
}

// SetGroup sets both joints of a leg.
func (b *Bank) SetGroup(leg LegID, femurAngle, kneeAngle float64, immediate bool) {
	femur, knee, ok := leg.Joints()
	if !ok {
		return
	}
	b.Set(femur, femurAngle, immediate)
	b.Set(knee, kneeAngle, immediate)
}

// SetAll sets every joint to the same angle.
func (b *Bank) SetAll(angle float64, immediate bool) {
	for _, a := range b.joints {
		a.SetTarget(angle, immediate)
	}
}

// CenterAll moves every joint to its calibrated center.
func (b *Bank) CenterAll(immediate bool) {
	for _, a := range b.joints {
		a.SetTarget(a.Calibration().Center, immediate)
	}
}

// StepAll advances every joint and reports whether any is still moving.
func (b *Bank) StepAll(dt float64) bool {
	moving := false
	for _, a := range b.joints {
		if a.Step(dt) {
			moving = true
		}
	}
	return moving
}

// CurrentAngles returns a snapshot of the commanded angles.
func (b *Bank) CurrentAngles() Angles {
	var out Angles
	for i, a := range b.joints {
		out[i] = a.Current()
	}
	return out
}

// TargetAngles returns a snapshot of the target angles.
func (b *Bank) TargetAngles() Angles {
	var out Angles
	for i, a := range b.joints {
		out[i] = a.Target()
	}
	return out
}

// DetachAll releases every joint.
func (b *Bank) DetachAll() {
	for _, a := range b.joints {
		a.Detach()
	}
}

// AttachAll re-enables every joint at its current angle.
func (b *Bank) AttachAll() {
	for _, a := range b.joints {
		a.Attach()
	}
}
