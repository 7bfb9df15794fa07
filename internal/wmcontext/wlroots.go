package wmcontext

import (
	"context"
	"log/slog"
)

// wlrootsProvider is the generic fallback for wlroots-based compositors
// that expose no richer IPC of their own: in practice most of them ship
// a sway-IPC-compatible socket, so reusing the sway wire client (which
// reads the socket path from $SWAYSOCK only) is a reasonable
// best-effort default. On failure
// it returns an empty Context like any other provider.
type wlrootsProvider struct {
	log *slog.Logger
}

func newWlrootsProvider(log *slog.Logger) *wlrootsProvider {
	return &wlrootsProvider{log: log.With("provider", "wlroots")}
}

// Snapshot implements Provider.
func (p *wlrootsProvider) Snapshot(ctx context.Context) Context {
	return recoverSnapshot(p.log, "wlroots", func() (Context, error) {
		return swaySnapshot(ctx)
	})
}
