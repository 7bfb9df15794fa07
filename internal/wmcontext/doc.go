// Package wmcontext supplies the window/device context snapshot rule
// predicates evaluate against: an immutable {wm_class, wm_name,
// device_name, capslock_on, numlock_on} value, read once per key press
// and cached for the duration of that press's rule resolution.
//
// The engine depends only on the Provider interface; it never knows
// which desktop environment it is running under. Concrete providers are
// selected once at startup from the session_type/wl_desktop_env pair
// and must be non-blocking or bounded — a provider that cannot produce
// a snapshot in time returns an empty Context rather than stalling the
// event loop.
package wmcontext
