package engine

import (
	"time"

	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/timer"
)

// dualRoleState is one of the four multipurpose-key states.
type dualRoleState int

const (
	stateIdle dualRoleState = iota
	stateUndecided
	stateDecidedTap
	stateDecidedMod
)

func (s dualRoleState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateUndecided:
		return "Undecided"
	case stateDecidedTap:
		return "DecidedTap"
	case stateDecidedMod:
		return "DecidedMod"
	default:
		return "unknown"
	}
}

// multipurposeState tracks one currently-pressed dual-role key.
type multipurposeState struct {
	physKey keycode.Key
	entry   ruleset.MultipurposeEntry
	state   dualRoleState
	timerID timer.ID

	// outKey is the physical key emitted for the hold role once the key
	// decides as a modifier; zero until then.
	outKey keycode.Key
}

// suspendedModifier is one modifier key-down withheld in the suspend
// buffer, in the order it was suspended.
type suspendedModifier struct {
	physKey     keycode.Key
	effKey      keycode.Key
	mod         keycode.Modifier
	side        keycode.Side
	timerID     timer.ID
	suspendedAt time.Time
}

// nextKeyMode is armed by EscapeNext/IgnoreNext and consumed by exactly
// one subsequent key-down.
type nextKeyMode int

const (
	nextKeyNone nextKeyMode = iota
	nextKeyEscape
	nextKeyIgnore
)

func (m nextKeyMode) String() string {
	switch m {
	case nextKeyEscape:
		return "escape"
	case nextKeyIgnore:
		return "ignore"
	default:
		return ""
	}
}

// EngineState holds every piece of mutable state the resolution pipeline
// consults. All of it is mutated only from the run loop goroutine.
type EngineState struct {
	// heldInput is the set of physical keys currently held, keyed by
	// their raw (pre-modmap) Key.
	heldInput map[keycode.Key]bool

	// heldOutput mirrors every key currently pressed on the synthetic
	// device, maintained alongside the Sink's own bookkeeping so the
	// output sequencer can compute set differences without a round trip.
	heldOutput map[keycode.Key]bool

	// effective records, per held physical key, the modmap substitution
	// applied at press time, so the matching release resolves to the same
	// key even if the focused window changed in between.
	effective map[keycode.Key]keycode.Key

	// ignored marks keys whose press was consumed by IgnoreNext; their
	// release is dropped too.
	ignored map[keycode.Key]bool

	multipurpose map[keycode.Key]*multipurposeState
	suspended    []*suspendedModifier

	activeSubmap     *ruleset.Keymap
	submapTimerID    timer.ID
	submapTimerArmed bool

	// binds maps an input trigger key to the output modifier keys a Bind
	// action is keeping held until that trigger is released.
	binds map[keycode.Key][]keycode.Key

	nextKey nextKeyMode

	ejecting bool // set once emergency eject has begun shutdown
}

// newEngineState returns a zero-valued, ready-to-use EngineState.
func newEngineState() *EngineState {
	return &EngineState{
		heldInput:    make(map[keycode.Key]bool),
		heldOutput:   make(map[keycode.Key]bool),
		effective:    make(map[keycode.Key]keycode.Key),
		ignored:      make(map[keycode.Key]bool),
		multipurpose: make(map[keycode.Key]*multipurposeState),
		binds:        make(map[keycode.Key][]keycode.Key),
	}
}

// HeldInputKeys returns a snapshot of currently-held physical keys, for
// diagnostics.
func (s *EngineState) HeldInputKeys() []keycode.Key {
	out := make([]keycode.Key, 0, len(s.heldInput))
	for k := range s.heldInput {
		out = append(out, k)
	}
	return out
}

// HeldOutputKeys returns a snapshot of currently-pressed synthetic keys,
// for diagnostics.
func (s *EngineState) HeldOutputKeys() []keycode.Key {
	out := make([]keycode.Key, 0, len(s.heldOutput))
	for k := range s.heldOutput {
		out = append(out, k)
	}
	return out
}

// clearSubmap drops the active submap and disarms its timeout, if any.
func (s *EngineState) clearSubmap(sched *timer.Scheduler) {
	if s.submapTimerArmed {
		sched.Cancel(s.submapTimerID)
		s.submapTimerArmed = false
	}
	s.activeSubmap = nil
}
