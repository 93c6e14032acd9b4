package scatter

import (
	"errors"
	"fmt"
)

// InputError reports an unusable dataset.
type InputError struct {
	Index int // index of the offending point, or -1
	Msg   string
	Err   error // underlying cause, may be nil
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return "scatter: " + e.Msg
	}
	return fmt.Sprintf("scatter: point %d: %s", e.Index, e.Msg)
}

func (e *InputError) Unwrap() error { return e.Err }

// IsInput reports whether err is or wraps an *InputError.
func IsInput(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// ConfigError reports an out of range configuration value.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scatter: config %s: %s", e.Field, e.Msg)
}

// IsConfig reports whether err is or wraps a *ConfigError.
func IsConfig(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// InvariantError reports an internal inconsistency in the layout.
// It indicates a bug rather than bad input.
type InvariantError struct {
	Err error
}

func (e *InvariantError) Error() string { return "scatter: internal error: " + e.Err.Error() }

func (e *InvariantError) Unwrap() error { return e.Err }

// IsInvariant reports whether err is or wraps an *InvariantError.
func IsInvariant(err error) bool {
	var e *InvariantError
	return errors.As(err, &e)
}
