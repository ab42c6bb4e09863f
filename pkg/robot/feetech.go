package robot

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.uber.org/multierr"
)

const DefaultBaudRate = 1_000_000

// FeetechSink drives joints wired to a Feetech STS bus. Writes are buffered and
// sent as one sync write per Flush. Releasing a joint drops that servo's torque
// on the next Flush; writing to it again restores torque.
type FeetechSink struct {
	bus    *feetech.Bus
	group  *feetech.ServoGroup
	servos [NumJoints]*feetech.ServoGroup
	ids    [NumJoints]int

	pending  feetech.PositionMap
	released [NumJoints]bool
	torque   [NumJoints]bool
}

// OpenFeetech creates and initializes a bus connection.
func OpenFeetech(port string, baudRate int, cal Calibration) (*FeetechSink, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: baudRate,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	return NewFeetechSink(bus, cal), nil
}

// NewFeetechSink drives the joints in cal over an open bus. Closing the sink
// closes the bus.
func NewFeetechSink(bus *feetech.Bus, cal Calibration) *FeetechSink {
	resolved := cal.Resolve()
	s := &FeetechSink{
		bus:     bus,
		pending: make(feetech.PositionMap, NumJoints),
	}
	ids := make([]int, 0, NumJoints)
	for _, j := range AllJoints() {
		s.ids[j] = resolved[j].ID
		s.servos[j] = feetech.NewServoGroupByIDs(bus, resolved[j].ID)
		ids = append(ids, resolved[j].ID)
	}
	s.group = feetech.NewServoGroupByIDs(bus, ids...)
	return s
}

// Close closes the bus connection.
func (s *FeetechSink) Close() error {
	return s.bus.Close()
}

// WriteCalibratedValue queues a raw position for the joint.
func (s *FeetechSink) WriteCalibratedValue(id JointID, value int) error {
	if !id.Valid() {
		return fmt.Errorf("write %s: unknown joint", id)
	}
	s.pending[s.ids[id]] = value
	s.released[id] = false
	return nil
}

// Release marks the joint as free. Its torque is dropped on the next Flush.
func (s *FeetechSink) Release(id JointID) error {
	if !id.Valid() {
		return fmt.Errorf("release %s: unknown joint", id)
	}
	delete(s.pending, s.ids[id])
	s.released[id] = true
	return nil
}

// Flush applies torque changes and sends queued positions.
func (s *FeetechSink) Flush(ctx context.Context) error {
	disable, enable := s.torquePlan()
	err := multierr.Combine(
		s.setTorque(ctx, disable, false),
		s.setTorque(ctx, enable, true),
	)

	if len(s.pending) > 0 {
		// Write using sync write
		if werr := s.group.SetPositions(ctx, s.pending); werr != nil {
			err = multierr.Append(err, fmt.Errorf("write positions: %w", werr))
		}
		clear(s.pending)
	}
	return err
}

// torquePlan lists the released joints that still hold torque and the written
// joints that have none.
func (s *FeetechSink) torquePlan() (disable, enable []JointID) {
	for _, j := range AllJoints() {
		if s.released[j] {
			if s.torque[j] {
				disable = append(disable, j)
			}
			continue
		}
		if _, ok := s.pending[s.ids[j]]; ok && !s.torque[j] {
			enable = append(enable, j)
		}
	}
	return disable, enable
}

// setTorque switches torque for joints, with one group write when every joint changes.
func (s *FeetechSink) setTorque(ctx context.Context, joints []JointID, on bool) error {
	if len(joints) == 0 {
		return nil
	}

	toggle := func(g *feetech.ServoGroup) error {
		if on {
			return g.EnableAll(ctx)
		}
		return g.DisableAll(ctx)
	}
	state := "disable"
	if on {
		state = "enable"
	}

	if len(joints) == NumJoints {
		if err := toggle(s.group); err != nil {
			return fmt.Errorf("%s torque: %w", state, err)
		}
		for _, j := range joints {
			s.torque[j] = on
		}
		return nil
	}

	var errs error
	for _, j := range joints {
		if err := toggle(s.servos[j]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s torque on %s: %w", state, j, err))
			continue
		}
		s.torque[j] = on
	}
	return errs
}

// ReadPositions reads raw positions from all servos, keyed by joint.
func (s *FeetechSink) ReadPositions(ctx context.Context) (map[JointID]int, error) {
	raw, err := s.group.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	positions := make(map[JointID]int, len(raw))
	for _, j := range AllJoints() {
		if pos, ok := raw[s.ids[j]]; ok {
			positions[j] = pos
		}
	}
	return positions, nil
}
