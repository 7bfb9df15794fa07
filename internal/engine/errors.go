package engine

import "errors"

// Engine errors.
var (
	// ErrAlreadyRunning is returned by Run if the Engine is already
	// executing its event loop.
	ErrAlreadyRunning = errors.New("engine: already running")

	// ErrNotRunning is returned by Reload when called before
	// Run or after the loop has exited.
	ErrNotRunning = errors.New("engine: not running")

	// ErrNoSource is returned by New if no device.Source is supplied.
	ErrNoSource = errors.New("engine: no input source")

	// ErrNoSink is returned by New if no device.Sink is supplied.
	ErrNoSink = errors.New("engine: no output sink")

	// errEjected is used internally to unwind Run's select loop on
	// emergency eject; it never escapes Run.
	errEjected = errors.New("engine: emergency eject")
)
