package wmcontext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"
)

// hyprlandProvider queries the compositor's IPC socket directly
// (".socket.sock", the same request/response socket `hyprctl` itself
// uses) for the active window's class and title.
type hyprlandProvider struct {
	log *slog.Logger
}

func newHyprlandProvider(log *slog.Logger) *hyprlandProvider {
	return &hyprlandProvider{log: log.With("provider", "hyprland")}
}

// Snapshot implements Provider.
func (p *hyprlandProvider) Snapshot(ctx context.Context) Context {
	return recoverSnapshot(p.log, "hyprland", func() (Context, error) {
		sock, err := hyprlandSocketPath()
		if err != nil {
			return Empty, err
		}
		reply, err := queryUnixSocket(ctx, sock, "j/activewindow", 100*time.Millisecond)
		if err != nil {
			return Empty, err
		}

		var resp struct {
			Class string `json:"class"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(reply, &resp); err != nil {
			return Empty, fmt.Errorf("decoding hyprctl reply: %w", err)
		}
		return Context{WMClass: resp.Class, WMName: resp.Title}, nil
	})
}

func hyprlandSocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", errors.New("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}
	return filepath.Join(runtimeDir, "hypr", sig, ".socket.sock"), nil
}

// queryUnixSocket sends command as a single write to a request/response
// unix socket and returns the full reply, bounded by deadline.
func queryUnixSocket(ctx context.Context, path, command string, deadline time.Duration) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(deadline))
	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	if len(buf) == 0 {
		return nil, errors.New("empty ipc reply")
	}
	return buf, nil
}
