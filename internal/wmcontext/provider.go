package wmcontext

import (
	"context"
	"fmt"
	"log/slog"
)

// SessionType is the display protocol the engine was told to expect at
// startup.
type SessionType string

const (
	SessionX11     SessionType = "x11"
	SessionWayland SessionType = "wayland"
)

// Desktop identifies a Wayland compositor/desktop shell, used to pick the
// concrete Provider when SessionType is SessionWayland.
type Desktop string

const (
	DesktopWlroots   Desktop = "wlroots"
	DesktopHyprland  Desktop = "hyprland"
	DesktopSway      Desktop = "sway"
	DesktopKDE       Desktop = "kde"
	DesktopCosmic    Desktop = "cosmic"
	DesktopGnome     Desktop = "gnome"
	DesktopCinnamon  Desktop = "cinnamon"
)

// Select returns the Provider for the given session type and, for
// Wayland sessions, desktop shell. Unrecognized combinations fall back
// to the no-op provider rather than failing: a provider that cannot
// identify itself degrades to empty Contexts, it does not refuse to
// start.
func Select(session SessionType, desktop Desktop) Provider {
	log := slog.Default().With("component", "wmcontext")

	switch session {
	case SessionX11:
		return newX11Provider(log)
	case SessionWayland:
		switch desktop {
		case DesktopHyprland:
			return newHyprlandProvider(log)
		case DesktopSway:
			return newSwayProvider(log)
		case DesktopWlroots:
			return newWlrootsProvider(log)
		case DesktopGnome:
			return newDBusProvider(log, gnomeDBusSpec)
		case DesktopKDE:
			return newDBusProvider(log, kdeDBusSpec)
		case DesktopCinnamon:
			return newDBusProvider(log, cinnamonDBusSpec)
		case DesktopCosmic:
			return newDBusProvider(log, cosmicDBusSpec)
		}
	}

	log.Warn("no context provider for session/desktop, using empty provider",
		"session", session, "desktop", desktop)
	return Noop{}
}

// Noop is the fallback Provider: it always returns Empty. Used when no
// concrete provider applies, or wired directly by callers (tests, --check
// validation runs) that have no window system at all.
type Noop struct{}

// Snapshot implements Provider.
func (Noop) Snapshot(context.Context) Context { return Empty }

// recoverSnapshot wraps a provider-specific snapshot function so a
// panic (from a buggy exec/dbus code path) degrades to Empty instead of
// crashing the event loop.
func recoverSnapshot(log *slog.Logger, name string, fn func() (Context, error)) (result Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("context provider panicked", "provider", name, "recover", fmt.Sprint(r))
			result = Empty
		}
	}()
	ctx, err := fn()
	if err != nil {
		log.Debug("context provider failed", "provider", name, "err", err)
		return Empty
	}
	return ctx
}
