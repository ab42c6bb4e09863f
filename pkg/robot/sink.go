package robot

import "context"

// Sink receives calibrated output values for joints.
type Sink interface {
	// WriteCalibratedValue sends the value produced by JointCalibration.PhysicalValue.
	WriteCalibratedValue(id JointID, value int) error
	// Release stops driving the joint so it can move freely.
	Release(id JointID) error
}

// Flusher is implemented by sinks that buffer writes until the end of a tick.
type Flusher interface {
	Flush(ctx context.Context) error
}

// ErrorFunc is called when a sink rejects a write. Output errors never stop motion.
type ErrorFunc func(id JointID, err error)
