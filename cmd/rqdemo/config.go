package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/rq"
)

// demoConfig is the --config file layout. Flags given on the command line
// override it.
//
//	queue:
//	  tick_interval: 5ms
//	  latency: 50ms
//	producers: 8
//	ops: 500
//	width: 1024
//	height: 768
//	executor: software
type demoConfig struct {
	Queue     rq.Config `yaml:"queue"`
	Producers int       `yaml:"producers"`
	Ops       int       `yaml:"ops"`
	Width     int       `yaml:"width"`
	Height    int       `yaml:"height"`
	Executor  string    `yaml:"executor"`
}

func defaultDemoConfig() demoConfig {
	return demoConfig{
		Producers: 4,
		Ops:       200,
		Width:     800,
		Height:    600,
		Executor:  "software",
	}
}

// loadDemoConfig reads path over the defaults.
func loadDemoConfig(path string) (demoConfig, error) {
	c := defaultDemoConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

func (c demoConfig) validate() error {
	if c.Producers <= 0 {
		return fmt.Errorf("producers must be positive, got %d", c.Producers)
	}
	if c.Ops < 0 {
		return fmt.Errorf("ops must not be negative, got %d", c.Ops)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	return c.Queue.Validate()
}
