// Package config loads the optional YAML startup file of the bridge.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config mirrors the command-line flags. Zero values keep the bridge defaults.
type Config struct {
	ClientName    string     `yaml:"client_name"`
	Backend       string     `yaml:"backend"`     // gomidi, coremidi, winmm, discard
	Destination   string     `yaml:"destination"` // substring of the output name
	Order         string     `yaml:"order"`       // lifo, fifo
	InitBatch     int        `yaml:"init_batch"`  // negative writes the whole sequence in one cycle
	NoStartServer bool       `yaml:"no_start_server"`
	StatusBuffer  int        `yaml:"status_buffer"`
	Log           LogConfig  `yaml:"log"`
	Host          HostConfig `yaml:"host"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error, fatal
	File  string `yaml:"file"`
}

// HostConfig contains the processing cycle settings.
type HostConfig struct {
	OutPort     string `yaml:"out_port"`
	InPort      string `yaml:"in_port"`
	SampleRate  int    `yaml:"sample_rate"`
	CycleFrames int    `yaml:"cycle_frames"`
	MaxEvents   int    `yaml:"max_events"`
	MaxBytes    int    `yaml:"max_bytes"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be corrected by defaults.
func Validate(cfg *Config) error {
	switch cfg.Backend {
	case "", contracts.BackendGoMIDI, contracts.BackendCoreMIDI, contracts.BackendWinMM, contracts.BackendDiscard:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, cfg.Backend)
	}
	if cfg.Order != "" {
		if _, ok := contracts.ParseQueueOrder(cfg.Order); !ok {
			return fmt.Errorf("%w: order must be lifo or fifo, got %q", ErrInvalid, cfg.Order)
		}
	}
	if cfg.Log.Level != "" {
		if _, ok := contracts.ParseLogLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("%w: unknown log level %q", ErrInvalid, cfg.Log.Level)
		}
	}
	if cfg.StatusBuffer < 0 {
		return fmt.Errorf("%w: status_buffer must not be negative", ErrInvalid)
	}
	h := cfg.Host
	if h.SampleRate < 0 || h.CycleFrames < 0 || h.MaxEvents < 0 || h.MaxBytes < 0 {
		return fmt.Errorf("%w: host values must not be negative", ErrInvalid)
	}
	return nil
}

// Options converts the file into bridge options. Unset fields are skipped so
// the bridge defaults apply.
func (c *Config) Options() []contracts.Option {
	opts := []contracts.Option{
		contracts.WithHostConfig(contracts.HostConfig{
			ClientName:    c.ClientName,
			OutPortName:   c.Host.OutPort,
			InPortName:    c.Host.InPort,
			NoStartServer: c.NoStartServer,
			SampleRate:    c.Host.SampleRate,
			CycleFrames:   c.Host.CycleFrames,
			MaxEvents:     c.Host.MaxEvents,
			MaxBytes:      c.Host.MaxBytes,
		}),
		contracts.WithSinkConfig(contracts.SinkConfig{Backend: c.Backend, Destination: c.Destination}),
	}
	if order, ok := contracts.ParseQueueOrder(c.Order); ok {
		opts = append(opts, contracts.WithQueueOrder(order))
	}
	if c.InitBatch != 0 {
		opts = append(opts, contracts.WithInitBatch(c.InitBatch))
	}
	if c.StatusBuffer != 0 {
		opts = append(opts, contracts.WithStatusBuffer(c.StatusBuffer))
	}
	if level, ok := contracts.ParseLogLevel(c.Log.Level); ok {
		opts = append(opts, contracts.WithLogLevel(level))
	}
	if c.Log.File != "" {
		opts = append(opts, contracts.WithLogFile(c.Log.File))
	}
	return opts
}
