package enginecfg

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keyremap/internal/errkind"
	"github.com/dshills/keyremap/internal/keycode"
)

// tomlDoc mirrors the on-disk TOML shape exactly. This loader knows
// nothing about modmaps/keymaps, only the ambient options surface.
type tomlDoc struct {
	Timeouts struct {
		MultipurposeSeconds float64 `toml:"multipurpose"`
		SuspendSeconds      float64 `toml:"suspend"`
		SubmapSeconds       float64 `toml:"submap"`
	} `toml:"timeouts"`

	ThrottleDelays struct {
		KeyPreDelayMs  int `toml:"key_pre_delay_ms"`
		KeyPostDelayMs int `toml:"key_post_delay_ms"`
	} `toml:"throttle_delays"`

	DumpDiagnosticsKey string `toml:"dump_diagnostics_key"`
	EmergencyEjectKey  string `toml:"emergency_eject_key"`

	Devices []string `toml:"devices"`

	Context struct {
		Session string `toml:"session_type"`
		Desktop string `toml:"wl_desktop_env"`
	} `toml:"context"`
}

// LoadOptions reads path as TOML and returns the resulting Options,
// starting from New()'s defaults and overriding only the fields the
// file sets. A missing file is not an error: New()'s defaults are
// returned unchanged.
func LoadOptions(path string) (Options, error) {
	opts := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, &errkind.ConfigError{Where: path, Err: fmt.Errorf("reading options file: %w", err)}
	}

	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return opts, &errkind.ConfigError{Where: path, Err: fmt.Errorf("parsing options file: %w", err)}
	}

	if doc.Timeouts.MultipurposeSeconds > 0 {
		opts.MultipurposeTimeout = time.Duration(doc.Timeouts.MultipurposeSeconds * float64(time.Second))
	}
	if doc.Timeouts.SuspendSeconds > 0 {
		opts.SuspendTimeout = time.Duration(doc.Timeouts.SuspendSeconds * float64(time.Second))
	}
	if doc.Timeouts.SubmapSeconds > 0 {
		opts.SubmapTimeout = time.Duration(doc.Timeouts.SubmapSeconds * float64(time.Second))
	}
	opts.KeyPreDelayMs = clampThrottle(doc.ThrottleDelays.KeyPreDelayMs)
	opts.KeyPostDelayMs = clampThrottle(doc.ThrottleDelays.KeyPostDelayMs)

	if doc.DumpDiagnosticsKey != "" {
		k := keycode.KeyFromName(doc.DumpDiagnosticsKey)
		if k == keycode.KeyNone {
			return opts, &errkind.ConfigError{Where: path, Err: fmt.Errorf("unknown dump_diagnostics_key %q", doc.DumpDiagnosticsKey)}
		}
		opts.DumpDiagnosticsKey = k
	}
	if doc.EmergencyEjectKey != "" {
		k := keycode.KeyFromName(doc.EmergencyEjectKey)
		if k == keycode.KeyNone {
			return opts, &errkind.ConfigError{Where: path, Err: fmt.Errorf("unknown emergency_eject_key %q", doc.EmergencyEjectKey)}
		}
		opts.EmergencyEjectKey = k
	}

	if len(doc.Devices) > 0 {
		opts.DevicePaths = doc.Devices
	}

	if doc.Context.Session != "" {
		opts.Session = SessionType(doc.Context.Session)
	}
	if doc.Context.Desktop != "" {
		opts.Desktop = Desktop(doc.Context.Desktop)
	}

	return opts, nil
}
