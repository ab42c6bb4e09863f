// Package quadruped provides motion control for eight-servo quadruped robots.
//
// Each leg has a femur and a knee joint. The controller drives the joints in
// one of three modes: idle (joints glide toward their targets), walking (a
// trot gait synthesized from a phase oscillator) or sequenced (a queue of
// timed keyframes such as a wave or a bow).
//
// # Installation
//
//	go install github.com/gwillem/quadruped/cmd/quadruped@latest
//
// # Usage
//
// Run setup to detect the servo bus and calibrate the joints:
//
//	quadruped setup
//
// Then drive the robot from the keyboard:
//
//	quadruped drive
//
// Or run poses and gestures without a terminal UI:
//
//	quadruped play stand wave forward sit
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/quadruped: CLI with setup, drive and play commands
//   - pkg/robot: Joints, calibration, actuators, output sinks and configuration
//   - pkg/gait: Trot gait synthesis and the walk oscillator
//   - pkg/motion: Keyframe sequencer, pose and gesture library, motion controller
//   - pkg/drive: Fixed-rate control loop around the motion controller
package quadruped
