package systolic

import "fmt"

// ConfigError reports a construction-time validation failure: a shape
// mismatch between the west/north operand tensors, or an invalid buffer
// depth. These are always returned to the caller, never panicked — they are
// input-validation failures, not programmer errors.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "systolic: invalid configuration: " + e.Reason
}

func newConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// InvariantError reports a runtime condition the simulator's own design
// guarantees can never happen from the public API — e.g. a thread id
// outside 0..T-1 reaching a buffer. Encountering one is an implementation
// bug, not a caller mistake, so it is always fatal: code that finds one
// should panic with it, the same way the teacher's dummy.NonExist
// implementations panic loudly rather than silently returning a zero value.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "systolic: invariant violated: " + e.Reason
}

func newInvariantError(format string, args ...any) *InvariantError {
	return &InvariantError{Reason: fmt.Sprintf(format, args...)}
}
