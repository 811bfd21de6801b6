package rq

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the declarative form of the queue options, for embedding in
// application config files. Zero fields take the package defaults.
//
//	tick_interval: 5ms
//	latency: 50ms
//	initial_capacity: 65536
type Config struct {
	TickInterval    time.Duration `yaml:"tick_interval"`
	Latency         time.Duration `yaml:"latency"`
	InitialCapacity int           `yaml:"initial_capacity"`
}

// ParseConfig decodes YAML into a Config and validates it.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("rq: parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rq: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks the config after defaults are applied.
func (c Config) Validate() error {
	o := defaultOptions()
	for _, opt := range c.Options() {
		opt(&o)
	}
	return o.validate()
}

// Options converts the config into queue options. Zero fields produce no
// option.
func (c Config) Options() []Option {
	var opts []Option
	if c.TickInterval != 0 {
		opts = append(opts, WithTickInterval(c.TickInterval))
	}
	if c.Latency != 0 {
		opts = append(opts, WithLatency(c.Latency))
	}
	if c.InitialCapacity != 0 {
		opts = append(opts, WithInitialCapacity(c.InitialCapacity))
	}
	return opts
}
