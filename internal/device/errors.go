package device

import "errors"

// ErrNoDevices is returned when every selected device has failed to open
// or grab, and no source of input events remains. The engine's run loop
// treats this as fatal.
var ErrNoDevices = errors.New("device: no input devices available")
