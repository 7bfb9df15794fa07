// Package diag serializes a point-in-time snapshot of engine state to
// JSON for the diagnostics-dump timer category. It deliberately
// produces data, not a rendered UI.
package diag

import (
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// HeldKey describes one physically or synthetically held key at dump
// time.
type HeldKey struct {
	Key  string `json:"key"`
	Side string `json:"side,omitempty"`
}

// MultipurposeState describes one dual-role key currently tracked by
// the multipurpose resolver.
type MultipurposeState struct {
	Key   string `json:"key"`
	State string `json:"state"` // Idle, Undecided, DecidedTap, DecidedMod
}

// SuspendedModifier describes one modifier currently withheld in the
// suspend buffer.
type SuspendedModifier struct {
	Modifier    string    `json:"modifier"`
	Side        string    `json:"side,omitempty"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// Snapshot is the plain-data view of EngineState this package
// serializes. It carries no behavior and no reference back to the
// engine package, so engine can depend on diag without a cycle.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	HeldInput  []HeldKey `json:"held_input"`
	HeldOutput []HeldKey `json:"held_output"`

	Multipurpose []MultipurposeState `json:"multipurpose"`
	Suspended    []SuspendedModifier `json:"suspended"`

	ActiveSubmap    string `json:"active_submap,omitempty"`
	EngineSuspended bool   `json:"engine_suspended"`
	NextKeyMode     string `json:"next_key_mode,omitempty"`

	PendingTimers int `json:"pending_timers"`

	ActiveContext struct {
		WMClass    string `json:"wm_class"`
		WMName     string `json:"wm_name"`
		DeviceName string `json:"device_name"`
		CapslockOn bool   `json:"capslock_on"`
		NumlockOn  bool   `json:"numlock_on"`
	} `json:"active_context"`
}

// Dump renders s as pretty-printed JSON, built incrementally with
// sjson so optional sections can be set or skipped field by field.
func Dump(s Snapshot) ([]byte, error) {
	doc := "{}"
	var err error

	set := func(path string, value any) {
		if err != nil {
			return
		}
		doc, err = sjson.Set(doc, path, value)
	}

	set("timestamp", s.Timestamp.Format(time.RFC3339Nano))
	set("held_input", s.HeldInput)
	set("held_output", s.HeldOutput)
	set("multipurpose", s.Multipurpose)
	set("suspended", s.Suspended)
	set("active_submap", s.ActiveSubmap)
	set("engine_suspended", s.EngineSuspended)
	set("next_key_mode", s.NextKeyMode)
	set("pending_timers", s.PendingTimers)
	set("active_context.wm_class", s.ActiveContext.WMClass)
	set("active_context.wm_name", s.ActiveContext.WMName)
	set("active_context.device_name", s.ActiveContext.DeviceName)
	set("active_context.capslock_on", s.ActiveContext.CapslockOn)
	set("active_context.numlock_on", s.ActiveContext.NumlockOn)

	if err != nil {
		return nil, err
	}
	return pretty.Pretty([]byte(doc)), nil
}

// Get extracts a single field from a previously-produced dump by
// gjson path, used by --check-style tooling that wants one value
// without decoding the whole snapshot.
func Get(dump []byte, path string) gjson.Result {
	return gjson.GetBytes(dump, path)
}
