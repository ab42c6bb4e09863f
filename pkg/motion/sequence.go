package motion

import (
	"math"

	"github.com/gwillem/quadruped/pkg/robot"
)

// timeEpsilon absorbs float drift when summing tick durations.
const timeEpsilon = 1e-9

// Keyframe is a timed partial pose. An empty pose holds the previous one.
type Keyframe struct {
	Pose     robot.Pose
	Duration float64 // seconds
}

// Duration returns the total length of a keyframe list in seconds.
func Duration(frames []Keyframe) float64 {
	total := 0.0
	for _, f := range frames {
		if f.Duration > 0 && !math.IsInf(f.Duration, 0) {
			total += f.Duration
		}
	}
	return total
}

// Sequencer plays a queue of keyframes onto a bank, in order.
type Sequencer struct {
	bank    *robot.Bank
	queue   []Keyframe
	current Keyframe
	elapsed float64
	active  bool
}

// NewSequencer creates an idle sequencer writing to bank.
func NewSequencer(bank *robot.Bank) *Sequencer {
	return &Sequencer{bank: bank}
}

// Active reports whether keyframes are still playing.
func (s *Sequencer) Active() bool { return s.active }

// Remaining returns the number of keyframes queued after the current one.
func (s *Sequencer) Remaining() int { return len(s.queue) }

// Enqueue replaces the queue and applies the first keyframe right away.
// An empty list leaves the sequencer inactive. Negative or non-finite
// durations count as zero.
func (s *Sequencer) Enqueue(frames []Keyframe) {
	s.queue = make([]Keyframe, len(frames))
	for i, f := range frames {
		if !(f.Duration > 0) || math.IsInf(f.Duration, 0) {
			f.Duration = 0
		}
		s.queue[i] = f
	}
	s.elapsed = 0
	s.active = s.next()
}

// Tick advances playback by dt seconds. Excess time carries into the next
// keyframe, so zero-length keyframes are passed through within the same tick.
func (s *Sequencer) Tick(dt float64) {
	if !s.active {
		return
	}
	if dt > 0 && !math.IsInf(dt, 0) {
		s.elapsed += dt
	}
	for s.active && s.elapsed+timeEpsilon >= s.current.Duration {
		s.elapsed = max(0, s.elapsed-s.current.Duration)
		s.active = s.next()
	}
}

// Cancel drops the queue. Angles already applied stay where they are.
func (s *Sequencer) Cancel() {
	s.queue = nil
	s.current = Keyframe{}
	s.elapsed = 0
	s.active = false
}

// next pops the head of the queue and applies it.
func (s *Sequencer) next() bool {
	if len(s.queue) == 0 {
		s.current = Keyframe{}
		s.elapsed = 0
		return false
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
	if len(s.current.Pose) > 0 {
		s.bank.SetMany(s.current.Pose, true)
	}
	return true
}
