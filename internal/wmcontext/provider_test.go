package wmcontext

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestSelectFallsBackToNoop(t *testing.T) {
	tests := []struct {
		session SessionType
		desktop Desktop
	}{
		{"", ""},
		{"mir", ""},
		{SessionWayland, "enlightenment"},
	}
	for _, tt := range tests {
		p := Select(tt.session, tt.desktop)
		if _, ok := p.(Noop); !ok {
			t.Errorf("Select(%q, %q) = %T, want Noop", tt.session, tt.desktop, p)
		}
	}
}

func TestSelectKnownProviders(t *testing.T) {
	tests := []struct {
		session SessionType
		desktop Desktop
	}{
		{SessionX11, ""},
		{SessionWayland, DesktopHyprland},
		{SessionWayland, DesktopSway},
		{SessionWayland, DesktopWlroots},
		{SessionWayland, DesktopGnome},
		{SessionWayland, DesktopKDE},
		{SessionWayland, DesktopCinnamon},
		{SessionWayland, DesktopCosmic},
	}
	for _, tt := range tests {
		p := Select(tt.session, tt.desktop)
		if p == nil {
			t.Errorf("Select(%q, %q) = nil", tt.session, tt.desktop)
			continue
		}
		if _, ok := p.(Noop); ok {
			t.Errorf("Select(%q, %q) fell back to Noop", tt.session, tt.desktop)
		}
	}
}

func TestNoopSnapshotIsEmpty(t *testing.T) {
	got := Noop{}.Snapshot(context.Background())
	if got != Empty {
		t.Errorf("Noop.Snapshot = %+v, want Empty", got)
	}
}

func TestRecoverSnapshotOnPanic(t *testing.T) {
	got := recoverSnapshot(slog.Default(), "test", func() (Context, error) {
		panic("provider bug")
	})
	if got != Empty {
		t.Errorf("panicking provider should yield Empty, got %+v", got)
	}
}

func TestRecoverSnapshotOnError(t *testing.T) {
	got := recoverSnapshot(slog.Default(), "test", func() (Context, error) {
		return Context{WMClass: "partial"}, errors.New("ipc down")
	})
	if got != Empty {
		t.Errorf("failing provider should yield Empty, got %+v", got)
	}
}

func TestRecoverSnapshotPassthrough(t *testing.T) {
	want := Context{WMClass: "kitty", WMName: "vim"}
	got := recoverSnapshot(slog.Default(), "test", func() (Context, error) {
		return want, nil
	})
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
