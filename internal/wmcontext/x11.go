package wmcontext

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// x11Provider resolves {wm_class, wm_name} via xdotool, falling back
// to xprop when xdotool is unavailable.
type x11Provider struct {
	log        *slog.Logger
	hasXdotool bool
}

func newX11Provider(log *slog.Logger) *x11Provider {
	_, err := exec.LookPath("xdotool")
	return &x11Provider{log: log.With("provider", "x11"), hasXdotool: err == nil}
}

// Snapshot implements Provider.
func (p *x11Provider) Snapshot(ctx context.Context) Context {
	return recoverSnapshot(p.log, "x11", func() (Context, error) {
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		if p.hasXdotool {
			if c, err := p.viaXdotool(cctx); err == nil {
				return c, nil
			}
		}
		return p.viaXprop(cctx)
	})
}

func (p *x11Provider) viaXdotool(ctx context.Context) (Context, error) {
	idOut, err := exec.CommandContext(ctx, "xdotool", "getactivewindow").Output()
	if err != nil {
		return Empty, err
	}
	id := strings.TrimSpace(string(idOut))

	var name, class string
	if out, err := exec.CommandContext(ctx, "xdotool", "getwindowname", id).Output(); err == nil {
		name = strings.TrimSpace(string(out))
	}
	if out, err := exec.CommandContext(ctx, "xdotool", "getwindowclassname", id).Output(); err == nil {
		class = strings.TrimSpace(string(out))
	}
	return Context{WMClass: class, WMName: name}, nil
}

func (p *x11Provider) viaXprop(ctx context.Context) (Context, error) {
	out, err := exec.CommandContext(ctx, "xprop", "-root", "_NET_ACTIVE_WINDOW").Output()
	if err != nil {
		return Empty, err
	}
	parts := strings.Fields(string(out))
	if len(parts) == 0 {
		return Empty, errors.New("xprop: no active window id")
	}
	id := parts[len(parts)-1]
	if !strings.HasPrefix(id, "0x") {
		return Empty, errors.New("xprop: malformed window id")
	}
	if _, err := strconv.ParseInt(strings.TrimPrefix(id, "0x"), 16, 64); err != nil {
		return Empty, errors.New("xprop: malformed window id")
	}

	propOut, err := exec.CommandContext(ctx, "xprop", "-id", id, "WM_NAME", "WM_CLASS").Output()
	if err != nil {
		return Empty, err
	}

	var c Context
	for _, line := range strings.Split(string(propOut), "\n") {
		switch {
		case strings.HasPrefix(line, "WM_NAME"):
			c.WMName = quotedValue(line)
		case strings.HasPrefix(line, "WM_CLASS"):
			// WM_CLASS(STRING) = "instance", "class" — the class (second
			// quoted field) is the conventional wm_class value.
			if idx := strings.LastIndex(line, ", \""); idx != -1 {
				c.WMClass = quotedValue(line[idx+2:])
			} else {
				c.WMClass = quotedValue(line)
			}
		}
	}
	return c, nil
}

func quotedValue(s string) string {
	start := strings.Index(s, "\"")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "\"")
	if end <= start {
		return ""
	}
	return s[start+1 : end]
}
