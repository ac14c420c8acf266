// Package config provides YAML-driven sweep configuration for MTSA runs,
// mirroring core/program.go's direct use of gopkg.in/yaml.v3 for
// structured simulation input.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SweepConfig names one simulation's orchestrator-level parameters: the
// array shape, the input distribution, the buffer policy, and whether to
// run with full tracing enabled.
type SweepConfig struct {
	ThreadNumber    int     `yaml:"threadNumber"`
	ArraySize       int     `yaml:"arraySize"`
	Sparsity        float64 `yaml:"sparsity"`
	IsLimitedBuffer bool    `yaml:"isLimitedBuffer"`
	BufferDepth     int     `yaml:"bufferDepth"`
	InputMultiplier int64   `yaml:"inputMultiplier"`
	LoggingNow      bool    `yaml:"loggingNow"`
}

// DefaultSweepConfig returns a small, unlimited-buffer configuration
// suitable as a starting point for a YAML file.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ThreadNumber:    4,
		ArraySize:       4,
		Sparsity:        0.3,
		IsLimitedBuffer: false,
		BufferDepth:     -1,
		InputMultiplier: 9,
		LoggingNow:      false,
	}
}

// Validate checks the fields the distilled spec requires of a buffer_depth
// and array shape before a SweepConfig reaches systolic.NewArray.
func (c SweepConfig) Validate() error {
	if c.ThreadNumber < 1 {
		return fmt.Errorf("config: threadNumber must be >= 1, got %d", c.ThreadNumber)
	}
	if c.ArraySize < 1 {
		return fmt.Errorf("config: arraySize must be >= 1, got %d", c.ArraySize)
	}
	if c.Sparsity < 0 || c.Sparsity > 1 {
		return fmt.Errorf("config: sparsity must be in [0,1], got %f", c.Sparsity)
	}
	if c.IsLimitedBuffer && c.BufferDepth < 2 {
		return fmt.Errorf("config: bufferDepth must be >= 2 when isLimitedBuffer is set, got %d", c.BufferDepth)
	}
	if c.InputMultiplier < 1 {
		return fmt.Errorf("config: inputMultiplier must be >= 1, got %d", c.InputMultiplier)
	}
	return nil
}

// SweepFile is the top-level shape of a YAML sweep file: a named batch of
// SweepConfig entries run back-to-back by `mtsa sweep`.
type SweepFile struct {
	Runs []SweepConfig `yaml:"runs"`
}

// LoadSweepFile reads and parses a YAML sweep file from path.
func LoadSweepFile(path string) (SweepFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SweepFile{}, fmt.Errorf("config: reading sweep file: %w", err)
	}

	var f SweepFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return SweepFile{}, fmt.Errorf("config: parsing sweep file: %w", err)
	}

	for i, run := range f.Runs {
		if err := run.Validate(); err != nil {
			return SweepFile{}, fmt.Errorf("config: run %d: %w", i, err)
		}
	}

	return f, nil
}

// LoadSweepConfig reads a single SweepConfig from a YAML file, for `mtsa
// run --config`.
func LoadSweepConfig(path string) (SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SweepConfig{}, fmt.Errorf("config: reading config file: %w", err)
	}

	c := DefaultSweepConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return SweepConfig{}, fmt.Errorf("config: parsing config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return SweepConfig{}, err
	}
	return c, nil
}

// WriteSweepConfig writes c to path as YAML, letting a generated or
// flag-assembled SweepConfig be saved for later reuse via `mtsa run --config`.
func WriteSweepConfig(path string, c SweepConfig) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing config file: %w", err)
	}
	return nil
}
