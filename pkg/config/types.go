package config

import (
	"github.com/cfoust/mocap/pkg/receiver"
	"github.com/cfoust/mocap/pkg/rig"
)

type RigConfig struct {
	rig.Options `yaml:",inline"`
	// Put the scene back into its original pose when the receiver stops.
	ResetOnStop bool `yaml:"resetOnStop"`
}

type FrameConfig struct {
	// Updates per second.
	Rate int `yaml:"rate"`
}

type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type Config struct {
	Receiver receiver.Config `yaml:"receiver"`
	Rig      RigConfig       `yaml:"rig"`
	Frame    FrameConfig     `yaml:"frame"`
	Monitor  MonitorConfig   `yaml:"monitor"`
}
