package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qsimdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(backendURLEnv, "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, "http://localhost:8000", cfg.Backend.URL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 1000, cfg.Simulation.Shots)
	assert.Equal(t, 0.05, cfg.Simulation.GateErrorProb)
	assert.Equal(t, 0.1, cfg.Simulation.MeasurementErrorProb)
	assert.Equal(t, 2, cfg.Editor.Qubits)
	assert.Equal(t, "H 0\nCNOT 0 1\n", cfg.Editor.InitialCode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(backendURLEnv, "")
	path := writeConfig(t, `
backend:
  url: http://sim.internal:9000
simulation:
  shots: 250
  noisy: true
  gate_error_prob: 0.2
editor:
  qubits: 4
  initial_code: |
    X 3
log:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://sim.internal:9000", cfg.Backend.URL)
	assert.Equal(t, 30, cfg.Backend.TimeoutSec, "unset fields keep defaults")
	assert.Equal(t, 250, cfg.Simulation.Shots)
	assert.True(t, cfg.Simulation.Noisy)
	assert.Equal(t, 0.2, cfg.Simulation.GateErrorProb)
	assert.Zero(t, cfg.Simulation.MeasurementErrorProb, "only defaulted when both are unset")
	assert.Equal(t, 4, cfg.Editor.Qubits)
	assert.Equal(t, "X 3\n", cfg.Editor.InitialCode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv(backendURLEnv, "http://from-env:1234")
	path := writeConfig(t, "backend:\n  url: http://from-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:1234", cfg.Backend.URL)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(backendURLEnv, "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config")

	_, err = LoadConfig(writeConfig(t, "backend: [not, a, map]\n"))
	assert.ErrorContains(t, err, "parsing config")

	_, err = LoadConfig(writeConfig(t, `
backend:
  timeout_sec: -1
simulation:
  shots: -5
  measurement_error_prob: 1.5
log:
  level: loud
`))
	require.Error(t, err)
	for _, want := range []string{
		"invalid config",
		"backend.timeout_sec",
		"simulation.shots",
		"simulation.measurement_error_prob",
		"log.level",
	} {
		assert.ErrorContains(t, err, want)
	}
}

func TestRunOptions(t *testing.T) {
	sc := DefaultConfig().Simulation

	quiet := sc.RunOptions(false)
	assert.Equal(t, RunOptions{Shots: 1000}, quiet)

	noisy := sc.RunOptions(true)
	assert.True(t, noisy.Noisy)
	assert.Equal(t, 0.05, noisy.GateErrorProb)
	assert.Equal(t, 0.1, noisy.MeasurementErrorProb)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "info"})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Info("dropped")

	path := filepath.Join(t.TempDir(), "qsimdeck.log")
	log, err = NewLogger(LogConfig{File: path, Level: "debug"})
	require.NoError(t, err)
	log.Debug("backend request")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"backend request"`)

	_, err = NewLogger(LogConfig{File: path, Level: "chatty"})
	assert.Error(t, err)
}
