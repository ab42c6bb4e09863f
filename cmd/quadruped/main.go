package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config string `short:"c" long:"config" default:"quadruped.json" description:"Configuration file"`

	Setup SetupCommand `command:"setup" description:"Scan for the servo bus and calibrate the joints"`
	Drive DriveCommand `command:"drive" description:"Drive the robot from the keyboard"`
	Play  PlayCommand  `command:"play" description:"Run a pose or gesture and exit"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Quadruped - motion control CLI for eight-servo walking robots"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
