// Package config loads tool settings from a TOML file.
//
// A config file looks like:
//
//	trace = true
//	trace_file = "run.log"
//
//	[vm]
//	program = 2000
//	labels = 200
//	memory = 200
//	call_depth = 64
//	steps = 100000
//
// Every key is optional. Omitted vm bounds fall back to the machine's
// documented defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"plzero/pkg/vm"
)

// Config carries the settings shared by the compiler driver and the
// TAC runner.
type Config struct {
	VM        vm.Limits
	Trace     bool
	TraceFile string
}

// Default returns the built-in configuration: default machine bounds,
// no tracing.
func Default() Config {
	return Config{}
}

// fileConfig is the TOML shape. It is kept apart from Config so the
// file format can use snake_case keys without tagging vm types.
type fileConfig struct {
	VM struct {
		Program   int `toml:"program"`
		Labels    int `toml:"labels"`
		Memory    int `toml:"memory"`
		CallDepth int `toml:"call_depth"`
		Steps     int `toml:"steps"`
	} `toml:"vm"`
	Trace     bool   `toml:"trace"`
	TraceFile string `toml:"trace_file"`
}

// Load reads a TOML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return Config{
		VM: vm.Limits{
			Program:   fc.VM.Program,
			Labels:    fc.VM.Labels,
			Memory:    fc.VM.Memory,
			CallDepth: fc.VM.CallDepth,
			Steps:     fc.VM.Steps,
		},
		Trace:     fc.Trace,
		TraceFile: fc.TraceFile,
	}, nil
}
