// Package enginecfg is the ambient options surface the engine needs
// regardless of how its rule set was built: timeouts, throttle delays,
// the eject/dump keys, device selection, and context-provider
// selection. It knows nothing about modmaps, keymaps, or predicates —
// those live in internal/ruleset and are handed to the engine as
// already-built data.
package enginecfg

import (
	"time"

	"github.com/dshills/keyremap/internal/keycode"
)

// Default values.
const (
	DefaultMultipurposeTimeout = time.Second
	DefaultSuspendTimeout      = time.Second
	DefaultKeyPreDelayMs       = 0
	DefaultKeyPostDelayMs      = 0
	MaxThrottleDelayMs         = 150

	DefaultDumpDiagnosticsKey = keycode.KeyF15
	DefaultEmergencyEjectKey  = keycode.KeyF16
)

// SessionType selects the windowing protocol family a context provider
// targets.
type SessionType string

const (
	SessionX11     SessionType = "x11"
	SessionWayland SessionType = "wayland"
)

// Desktop selects the Wayland compositor/desktop family. Ignored when
// SessionType is SessionX11.
type Desktop string

const (
	DesktopWlroots  Desktop = "wlroots"
	DesktopKDE      Desktop = "kde"
	DesktopCosmic   Desktop = "cosmic"
	DesktopGnome    Desktop = "gnome"
	DesktopCinnamon Desktop = "cinnamon"
	DesktopHyprland Desktop = "hyprland"
	DesktopSway     Desktop = "sway"
)

// Options is the ambient options surface an Engine is constructed
// with.
type Options struct {
	MultipurposeTimeout time.Duration
	SuspendTimeout      time.Duration

	// SubmapTimeout bounds how long an entered submap waits for its next
	// combo. Zero means no inactivity window: the submap persists until
	// the next key press.
	SubmapTimeout time.Duration

	KeyPreDelayMs  int
	KeyPostDelayMs int

	DumpDiagnosticsKey keycode.Key
	EmergencyEjectKey  keycode.Key

	DevicePaths []string

	Session SessionType
	Desktop Desktop
}

// Option configures Options during construction.
type Option func(*Options)

// WithMultipurposeTimeout overrides the multipurpose-key decision
// timeout.
func WithMultipurposeTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.MultipurposeTimeout = d
		}
	}
}

// WithSuspendTimeout overrides the suspend-buffer commit timeout.
func WithSuspendTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.SuspendTimeout = d
		}
	}
}

// WithSubmapTimeout sets an inactivity window after which an entered
// submap expires on its own.
func WithSubmapTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.SubmapTimeout = d
		}
	}
}

// WithThrottleDelays overrides the pre/post key-emission delays, each
// clamped to [0, MaxThrottleDelayMs].
func WithThrottleDelays(preMs, postMs int) Option {
	return func(o *Options) {
		o.KeyPreDelayMs = clampThrottle(preMs)
		o.KeyPostDelayMs = clampThrottle(postMs)
	}
}

func clampThrottle(ms int) int {
	if ms < 0 {
		return 0
	}
	if ms > MaxThrottleDelayMs {
		return MaxThrottleDelayMs
	}
	return ms
}

// WithDumpDiagnosticsKey overrides the key that triggers a
// diagnostics-dump.
func WithDumpDiagnosticsKey(k keycode.Key) Option {
	return func(o *Options) { o.DumpDiagnosticsKey = k }
}

// WithEmergencyEjectKey overrides the key that triggers an emergency
// eject.
func WithEmergencyEjectKey(k keycode.Key) Option {
	return func(o *Options) { o.EmergencyEjectKey = k }
}

// WithDevicePaths sets the explicit list of input device paths to
// grab.
func WithDevicePaths(paths ...string) Option {
	return func(o *Options) { o.DevicePaths = paths }
}

// WithContextProvider selects the context provider by session type and
// desktop.
func WithContextProvider(session SessionType, desktop Desktop) Option {
	return func(o *Options) {
		o.Session = session
		o.Desktop = desktop
	}
}

// New returns Options populated with defaults, then applies opts in
// order.
func New(opts ...Option) Options {
	o := Options{
		MultipurposeTimeout: DefaultMultipurposeTimeout,
		SuspendTimeout:      DefaultSuspendTimeout,
		KeyPreDelayMs:       DefaultKeyPreDelayMs,
		KeyPostDelayMs:      DefaultKeyPostDelayMs,
		DumpDiagnosticsKey:  DefaultDumpDiagnosticsKey,
		EmergencyEjectKey:   DefaultEmergencyEjectKey,
		Session:             SessionX11,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
