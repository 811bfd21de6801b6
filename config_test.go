package rq

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("tick_interval: 5ms\nlatency: 50ms\ninitial_capacity: 4096\n"))
	require.NoError(t, err)
	assert.Equal(t, Config{
		TickInterval:    5 * time.Millisecond,
		Latency:         50 * time.Millisecond,
		InitialCapacity: 4096,
	}, c)

	o := defaultOptions()
	for _, opt := range c.Options() {
		opt(&o)
	}
	assert.Equal(t, 5*time.Millisecond, o.tick)
	assert.Equal(t, 50*time.Millisecond, o.latency)
	assert.Equal(t, 4096, o.capacity)
	assert.Equal(t, 10, o.threshold())
}

func TestParseConfigDefaults(t *testing.T) {
	c, err := ParseConfig([]byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, c.Options())

	o := defaultOptions()
	assert.Equal(t, DefaultTickInterval, o.tick)
	assert.Equal(t, DefaultLatency, o.latency)
	assert.Equal(t, 10, o.threshold())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"malformed", "tick_interval: [", false},
		{"bad duration", "latency: soon", false},
		{"latency below default tick", "latency: 1ms", true},
		{"negative tick", "tick_interval: -1ms", true},
		{"negative capacity", "initial_capacity: -5", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("latency: 200ms\n"), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, c.Latency)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
