package main

import (
	"fmt"
	"os"

	"github.com/gwillem/quadruped/pkg/drive"
	"github.com/gwillem/quadruped/pkg/gait"
	"github.com/gwillem/quadruped/pkg/robot"
)

// loadConfig reads the configuration, falling back to defaults when the file is missing.
func loadConfig(path string) (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(path)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return robot.DefaultConfig(), nil
	}
	return nil, fmt.Errorf("load %s: %w", path, err)
}

// openSink opens the output configured in cfg. A nil sink runs the robot dry.
func openSink(cfg *robot.Config) (robot.Sink, error) {
	if err := cfg.CheckOutput(); err != nil {
		return nil, fmt.Errorf("%w (run 'quadruped setup' first)", err)
	}
	switch cfg.Output.Kind {
	case robot.OutputFeetech:
		s, err := robot.OpenFeetech(cfg.Output.Port, cfg.Output.BaudRate, cfg.Joints)
		if err != nil {
			return nil, err
		}
		return s, nil
	case robot.OutputPWM:
		s, err := robot.OpenPWM(cfg.Joints)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}

// newDriver builds a driver for the configured output.
func newDriver(cfg *robot.Config, hz int) (*drive.Driver, error) {
	sink, err := openSink(cfg)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if hz <= 0 {
		hz = cfg.Hz
	}
	return drive.New(drive.Config{
		Calibration:     cfg.Joints,
		Gait:            gait.ParamsFromConfig(cfg.Gait),
		SpeedMultiplier: cfg.SpeedMultiplier,
		Sink:            sink,
		Hz:              hz,
	}), nil
}
