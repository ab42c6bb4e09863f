// Package drive runs the motion controller in a fixed-rate control loop.
package drive

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/gwillem/quadruped/pkg/gait"
	"github.com/gwillem/quadruped/pkg/motion"
	"github.com/gwillem/quadruped/pkg/robot"
)

// State is a snapshot published after every tick.
type State struct {
	Angles    robot.Angles
	Targets   robot.Angles
	Mode      motion.Mode
	Phase     float64
	Moving    bool
	Timestamp time.Time
	Error     error
}

// Command is run on the control loop goroutine with exclusive access to the controller.
type Command func(c *motion.Controller)

// Driver owns the motion controller and calls Update at a fixed rate.
type Driver struct {
	ctrl  *motion.Controller
	sink  robot.Sink
	clock clock.Clock
	hz    int

	mu      sync.Mutex
	running bool
	cmdCh   chan Command
	stateCh chan State
	logCh   chan string
}

// Config holds configuration for the driver.
type Config struct {
	Calibration     robot.Calibration
	Gait            gait.Params
	SpeedMultiplier float64
	Sink            robot.Sink  // nil runs without output
	Clock           clock.Clock // nil uses the wall clock
	Hz              int
}

// New creates a driver. The controller starts idle with every joint centered.
func New(cfg Config) *Driver {
	if cfg.Hz <= 0 {
		cfg.Hz = 50
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	d := &Driver{
		sink:    cfg.Sink,
		clock:   cfg.Clock,
		hz:      cfg.Hz,
		cmdCh:   make(chan Command, 16),
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}
	d.ctrl = motion.NewController(motion.Config{
		Calibration:     cfg.Calibration,
		Gait:            cfg.Gait,
		SpeedMultiplier: cfg.SpeedMultiplier,
		Sink:            cfg.Sink,
		Logf:            d.log,
	})
	return d
}

// Close releases every joint and closes the output sink if it holds resources.
// Call it after Start has returned.
func (d *Driver) Close() error {
	d.ctrl.StopAll()
	d.ctrl.DetachAll()
	err := d.flush(context.Background())

	if c, ok := d.sink.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	if err != nil {
		return fmt.Errorf("close errors: %w", err)
	}
	return nil
}

// States returns a channel that receives state updates.
func (d *Driver) States() <-chan State {
	return d.stateCh
}

// Logs returns a channel that receives log messages.
func (d *Driver) Logs() <-chan string {
	return d.logCh
}

// Hz returns the control frequency.
func (d *Driver) Hz() int {
	return d.hz
}

// Do queues a command for the control loop. It reports false if the queue is full.
func (d *Driver) Do(cmd Command) bool {
	select {
	case d.cmdCh <- cmd:
		return true
	default:
		d.log("Command dropped: queue full")
		return false
	}
}

func (d *Driver) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", d.clock.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case d.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs the control loop until ctx is done. Joints are attached on start
// and released on shutdown.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("already running")
	}
	d.running = true
	d.mu.Unlock()

	d.ctrl.AttachAll()
	d.flush(ctx)

	ticker := d.clock.Ticker(time.Second / time.Duration(d.hz))
	defer ticker.Stop()
	d.log("Control loop started at %d Hz", d.hz)

	last := d.clock.Now()
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			d.step(ctx, dt, now)
		}
	}
}

func (d *Driver) step(ctx context.Context, dt float64, now time.Time) {
	d.drain()
	moving := d.ctrl.Update(dt)
	err := d.flush(ctx)

	d.sendState(State{
		Angles:    d.ctrl.JointAngles(),
		Targets:   d.ctrl.TargetAngles(),
		Mode:      d.ctrl.Mode(),
		Phase:     d.ctrl.Phase(),
		Moving:    moving,
		Timestamp: now,
		Error:     err,
	})
}

// drain runs every queued command.
func (d *Driver) drain() {
	for {
		select {
		case cmd := <-d.cmdCh:
			cmd(d.ctrl)
		default:
			return
		}
	}
}

func (d *Driver) flush(ctx context.Context) error {
	f, ok := d.sink.(robot.Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(ctx); err != nil {
		d.log("Write error: %v", err)
		return err
	}
	return nil
}

func (d *Driver) sendState(s State) {
	select {
	case d.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-d.stateCh:
		default:
		}
		d.stateCh <- s
	}
}

func (d *Driver) shutdown() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	d.ctrl.StopAll()
	d.ctrl.DetachAll()
	if err := d.flush(context.Background()); err != nil {
		d.log("Warning: failed to release joints: %v", err)
	} else {
		d.log("Joints released")
	}
	d.log("Control loop stopped")
}
