// Package config replaces the source compiler's module-level mutable
// flags (lazy_declarations, use_static_objects, …) with a single
// explicit record threaded through the compilation unit and the VM.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the canonical extension for Ace source files.
const SourceFileExt = ".ace"

// Version is the toolchain version string; acerun has no flag that
// prints it.
var Version = "0.1.0"

// IsTestMode is flipped by test binaries that want deterministic,
// environment-independent output (e.g. generic type-variable names).
var IsTestMode = false

// Config bundles every tunable that the original source scattered
// across global flags and `#define`s.
type Config struct {
	// MaxRegisters bounds the emitter's per-context register counter
	//.
	MaxRegisters int `yaml:"max_registers"`
	// MaxStackValues bounds each VM thread's operand stack.
	MaxStackValues int `yaml:"max_stack_values"`
	// MaxThreads bounds the number of cooperative VM threads.
	MaxThreads int `yaml:"max_threads"`
	// HeapFloor/HeapCeiling bound the geometric GC threshold growth
	//.
	HeapFloor   int `yaml:"heap_floor"`
	HeapCeiling int `yaml:"heap_ceiling"`
	// LibraryPaths are additional search directories for native
	// libraries named by a `use library […]` directive.
	LibraryPaths []string `yaml:"library_paths"`
	// StrictMode mirrors the `use strict` directive's "future
	// tightening flag".
	StrictMode bool `yaml:"strict_mode"`
}

// Defaults returns the configuration the reference toolchain ships
// with, matching the concrete defaults calls out.
func Defaults() *Config {
	return &Config{
		MaxRegisters:   8,
		MaxStackValues: 20000,
		MaxThreads:     8,
		HeapFloor:      20,
		HeapCeiling:    1000,
	}
}

// Load reads a YAML config file, falling back to Defaults() for any
// zero-valued field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.MaxRegisters == 0 {
		c.MaxRegisters = d.MaxRegisters
	}
	if c.MaxStackValues == 0 {
		c.MaxStackValues = d.MaxStackValues
	}
	if c.MaxThreads == 0 {
		c.MaxThreads = d.MaxThreads
	}
	if c.HeapFloor == 0 {
		c.HeapFloor = d.HeapFloor
	}
	if c.HeapCeiling == 0 {
		c.HeapCeiling = d.HeapCeiling
	}
}
