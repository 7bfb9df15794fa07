// Package device grabs raw key events from kernel input devices and
// re-emits a transformed stream through a synthetic input device. It is
// the only package that talks to evdev/uinput directly; everything
// above it sees only the Source/Sink interfaces.
package device

import (
	"context"

	"github.com/dshills/keyremap/internal/keycode"
)

// Source grabs one or more input devices exclusively and yields
// KeyEvents in kernel arrival order. Repeat events never reach a Source
// consumer — they are synthesized downstream by the kernel from output
// presses.
type Source interface {
	// Events returns the channel of KeyEvents. It is closed when the
	// Source has no devices left to read from (every grabbed device
	// failed or was removed).
	Events() <-chan keycode.KeyEvent

	// Errors returns per-device errors as they occur. A Source keeps
	// running after a device error; it only stops once every device has
	// failed.
	Errors() <-chan error

	// LEDState reports the current CapsLock/NumLock indicator state, read
	// from whichever grabbed device last reported it. Used to populate
	// Context.CapslockOn/NumlockOn.
	LEDState() (capslock, numlock bool)

	// Close ungrabs and closes every device.
	Close() error
}

// Sink owns a single synthetic input device. EvdevSink registers it by
// cloning a template keyboard, so its key set is that keyboard's key
// set: keys the template does not advertise are not registered on the
// synthetic device. The engine calls Sync after
// every logical action boundary; on Close the Sink guarantees release of
// every key it still holds pressed.
type Sink interface {
	Press(key keycode.Key) error
	Release(key keycode.Key) error
	Sync() error

	// Held returns the set of keys this Sink currently believes are
	// pressed on the synthetic device.
	Held() map[keycode.Key]bool

	// Close releases every held key, then destroys the synthetic device.
	Close() error
}

// DeviceInfo describes one enumerable input device, for --list-devices
// style tooling that wants names without grabbing anything.
type DeviceInfo struct {
	Path string
	Name string
}

// Lister is implemented by concrete backends (evdev) that can enumerate
// devices without opening them exclusively.
type Lister interface {
	List(ctx context.Context) ([]DeviceInfo, error)
}
