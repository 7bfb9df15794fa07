// Package errkind defines the error kinds shared across package
// boundaries — ConfigError, DeviceError, OutputError, ContextError,
// CustomCallbackError — as concrete exported types, so a caller can
// both errors.Is against a package-local sentinel and inspect
// kind-specific fields (device path, callback name).
//
// Only OutputError and "no devices remain" escape the engine's run
// loop; everything else is absorbed and logged at its boundary
// component.
package errkind

import "fmt"

// ConfigError reports an invalid combo string, unknown key name, duplicate
// modifier, or unknown provider, discovered while building a rule set.
// The engine refuses to start when this occurs during load.
type ConfigError struct {
	Where string // e.g. "modmap", "keymap", "add_modifier"
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Where, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DeviceError reports failure to grab or read an input device. For a
// single device this is logged and the device is dropped; if no devices
// remain the engine exits with status 1.
type DeviceError struct {
	Path string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error on %s: %v", e.Path, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// OutputError reports failure to emit a synthetic event on the Sink. It
// is fatal: the engine performs an orderly shutdown that releases any
// held_output keys before propagating.
type OutputError struct {
	Key string
	Err error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("output error emitting %s: %v", e.Key, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }

// ContextError reports a context provider's failure to produce a
// snapshot. It is recovered locally: the caller substitutes an empty
// Context and predicates evaluate against empty strings.
type ContextError struct {
	Provider string
	Err      error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("context error from provider %s: %v", e.Provider, e.Err)
}

func (e *ContextError) Unwrap() error { return e.Err }

// CustomCallbackError reports a panic or error from a Custom action. It
// is isolated: logged, treated as a no-op action, engine state is left
// unchanged.
type CustomCallbackError struct {
	Name string
	Err  error
}

func (e *CustomCallbackError) Error() string {
	return fmt.Sprintf("custom callback %q failed: %v", e.Name, e.Err)
}

func (e *CustomCallbackError) Unwrap() error { return e.Err }
