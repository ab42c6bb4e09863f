package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gwillem/quadruped/pkg/drive"
	"github.com/gwillem/quadruped/pkg/motion"
)

type PlayCommand struct {
	Hz       int           `long:"hz" description:"Control loop frequency (default from config)"`
	Speed    float64       `long:"speed" default:"1" description:"Walk speed"`
	WalkTime time.Duration `long:"walk-time" default:"2s" description:"How long each walk action lasts"`
	Timeout  time.Duration `long:"timeout" default:"1m" description:"Give up after this long"`

	Args struct {
		Actions []string `positional-arg-name:"action" required:"1" description:"Pose, gesture or walk direction (forward, backward, left, right)"`
	} `positional-args:"yes"`
}

// walkActions maps a walk action to the controller call that starts it.
var walkActions = map[string]func(c *motion.Controller, speed float64){
	"forward":  (*motion.Controller).Forward,
	"backward": (*motion.Controller).Backward,
	"left":     (*motion.Controller).Left,
	"right":    (*motion.Controller).Right,
}

func (c *PlayCommand) Execute(args []string) error {
	actions, err := parseActions(c.Args.Actions)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return err
	}
	drv, err := newDriver(cfg, c.Hz)
	if err != nil {
		return err
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	// Logs are printed until the loop has shut down
	loopCtx, stopLoop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		done <- drv.Start(loopCtx)
		close(stopped)
	}()
	logsDone := make(chan struct{})
	go func() {
		printLogs(drv, stopped)
		close(logsDone)
	}()
	defer func() { <-logsDone }()

	for _, action := range actions {
		fmt.Printf("> %s\n", action)
		if err := c.run(ctx, drv, action); err != nil {
			stopLoop()
			<-done
			return err
		}
	}

	stopLoop()
	if err := <-done; err != nil && err != context.Canceled {
		log.Printf("Driver error: %v", err)
	}
	return nil
}

// parseActions normalizes and validates action names.
func parseActions(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		_, isPose := motion.LookupPose(a)
		_, isGesture := motion.LookupGesture(a)
		_, isWalk := walkActions[a]
		if !isPose && !isGesture && !isWalk {
			return nil, fmt.Errorf("unknown action %q (poses: %s; gestures: %s; walks: forward, backward, left, right)",
				a, strings.Join(motion.PoseNames(), ", "), strings.Join(motion.GestureNames(), ", "))
		}
		out = append(out, a)
	}
	return out, nil
}

func (c *PlayCommand) run(ctx context.Context, drv *drive.Driver, action string) error {
	if start, ok := walkActions[action]; ok {
		speed := c.Speed
		if err := apply(ctx, drv, func(ctrl *motion.Controller) { start(ctrl, speed) }); err != nil {
			return err
		}
		select {
		case <-time.After(c.WalkTime):
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := apply(ctx, drv, func(ctrl *motion.Controller) { ctrl.StopWalk() }); err != nil {
			return err
		}
		return waitSettled(ctx, drv)
	}

	if _, ok := motion.LookupPose(action); ok {
		if err := apply(ctx, drv, func(ctrl *motion.Controller) { ctrl.SetPose(action, false) }); err != nil {
			return err
		}
		return waitSettled(ctx, drv)
	}

	if err := apply(ctx, drv, func(ctrl *motion.Controller) { ctrl.EnqueueSequence(action) }); err != nil {
		return err
	}
	return waitSettled(ctx, drv)
}

// apply runs cmd on the control loop and waits until it has been executed.
func apply(ctx context.Context, drv *drive.Driver, cmd drive.Command) error {
	applied := make(chan struct{})
	ok := drv.Do(func(ctrl *motion.Controller) {
		cmd(ctrl)
		close(applied)
	})
	if !ok {
		return fmt.Errorf("command queue full")
	}
	select {
	case <-applied:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Discard a state published before the command ran
	select {
	case <-drv.States():
	default:
	}
	return nil
}

// waitSettled blocks until the controller is idle and no joint is moving.
func waitSettled(ctx context.Context, drv *drive.Driver) error {
	for {
		select {
		case s := <-drv.States():
			if s.Mode == motion.Idle && !s.Moving {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// printLogs prints driver logs until stopped is closed, then flushes the rest.
func printLogs(drv *drive.Driver, stopped <-chan struct{}) {
	for {
		select {
		case msg := <-drv.Logs():
			fmt.Println(msg)
		case <-stopped:
			for {
				select {
				case msg := <-drv.Logs():
					fmt.Println(msg)
				default:
					return
				}
			}
		}
	}
}
