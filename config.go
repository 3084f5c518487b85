package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// backendURLEnv overrides Backend.URL when set.
const backendURLEnv = "QSIMDECK_BACKEND_URL"

// Config holds all application settings. It is read from a YAML file; any
// field left out keeps its default.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Simulation SimulationConfig `yaml:"simulation"`
	Editor     EditorConfig     `yaml:"editor"`
	Log        LogConfig        `yaml:"log"`
}

// BackendConfig locates the simulation service.
type BackendConfig struct {
	// URL is the service root (default "http://localhost:8000").
	URL string `yaml:"url"`

	// TimeoutSec bounds each request; 0 disables the client timeout.
	TimeoutSec int `yaml:"timeout_sec"`
}

// SimulationConfig holds the parameters sent with each run.
type SimulationConfig struct {
	Shots                int     `yaml:"shots"`
	Noisy                bool    `yaml:"noisy"`
	GateErrorProb        float64 `yaml:"gate_error_prob"`
	MeasurementErrorProb float64 `yaml:"measurement_error_prob"`
	QrispShots           int     `yaml:"qrisp_shots"`
}

// EditorConfig sets up the grid.
type EditorConfig struct {
	Qubits      int    `yaml:"qubits"`
	Columns     int    `yaml:"columns"`
	InitialCode string `yaml:"initial_code"`
}

// LogConfig controls diagnostic logging. The terminal belongs to the UI, so
// logs only go to a file; an empty File disables logging.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// RunOptions converts the simulation settings for BuildRequest. Noise
// probabilities are only sent when noisy mode is on.
func (s SimulationConfig) RunOptions(noisy bool) RunOptions {
	opts := RunOptions{Shots: s.Shots}
	if noisy {
		opts.Noisy = true
		opts.GateErrorProb = s.GateErrorProb
		opts.MeasurementErrorProb = s.MeasurementErrorProb
	}
	return opts
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Backend.URL == "" {
		c.Backend.URL = "http://localhost:8000"
	}
	if c.Backend.TimeoutSec == 0 {
		c.Backend.TimeoutSec = 30
	}
	if c.Simulation.Shots == 0 {
		c.Simulation.Shots = 1000
	}
	if c.Simulation.GateErrorProb == 0 && c.Simulation.MeasurementErrorProb == 0 {
		c.Simulation.GateErrorProb = 0.05
		c.Simulation.MeasurementErrorProb = 0.1
	}
	if c.Simulation.QrispShots == 0 {
		c.Simulation.QrispShots = 1000
	}
	if c.Editor.Qubits == 0 {
		c.Editor.Qubits = 2
	}
	if c.Editor.Columns == 0 {
		c.Editor.Columns = 10
	}
	if c.Editor.InitialCode == "" {
		c.Editor.InitialCode = "H 0\nCNOT 0 1\n"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Backend.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("backend.timeout_sec must not be negative, got %d", c.Backend.TimeoutSec))
	}
	if c.Simulation.Shots < 1 {
		errs = append(errs, fmt.Errorf("simulation.shots must be at least 1, got %d", c.Simulation.Shots))
	}
	if c.Simulation.QrispShots < 1 {
		errs = append(errs, fmt.Errorf("simulation.qrisp_shots must be at least 1, got %d", c.Simulation.QrispShots))
	}
	if p := c.Simulation.GateErrorProb; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("simulation.gate_error_prob must be within [0, 1], got %g", p))
	}
	if p := c.Simulation.MeasurementErrorProb; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("simulation.measurement_error_prob must be within [0, 1], got %g", p))
	}
	if c.Editor.Qubits < 1 {
		errs = append(errs, fmt.Errorf("editor.qubits must be at least 1, got %d", c.Editor.Qubits))
	}
	if c.Editor.Columns < 1 {
		errs = append(errs, fmt.Errorf("editor.columns must be at least 1, got %d", c.Editor.Columns))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML configuration file. An empty path yields the
// defaults. The backend URL environment variable wins over the file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if url := os.Getenv(backendURLEnv); url != "" {
		cfg.Backend.URL = url
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the application logger from the log settings.
func NewLogger(lc LogConfig) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.OutputPaths = []string{lc.File}
	zc.ErrorOutputPaths = []string{lc.File}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}
