// Package action defines the tagged variant of high-level operations a
// matched combo or multi-purpose decision can trigger. Concrete types
// implement the Action marker interface; the output sequencer
// (internal/engine) is the only consumer that switches on the concrete
// type.
package action

import "github.com/dshills/keyremap/internal/keycode"

// Action is the closed set of things a keymap entry or a multipurpose
// decision can produce. Nested keymaps are modeled as a tagged variant
// (EnterSubmap) rather than as recursive data of the same shape as the
// outer map, to avoid an implicit cycle.
type Action interface {
	actionMarker()
}

// EmitCombo presses the combo's modifiers, presses and releases its key,
// then releases the modifiers.
type EmitCombo struct {
	Combo keycode.Combo
}

func (EmitCombo) actionMarker() {}

// Sequence executes its children in order, with modifier bracketing
// recomputed between each one.
type Sequence struct {
	Actions []Action
}

func (Sequence) actionMarker() {}

// EnterSubmap pushes a nested Keymap as the active submap. Immediately,
// if non-nil, runs once as this submap is entered. Keymap is declared as
// `any` here and asserted to *ruleset.Keymap by the engine, to avoid a
// cyclic import between action and ruleset (ruleset.Action values are
// this package's Action, and ruleset.Keymap values are looked up by the
// engine, which imports both).
type EnterSubmap struct {
	Keymap      any
	Immediately Action
}

func (EnterSubmap) actionMarker() {}

// EscapeNext marks the next physical key-down to be emitted verbatim,
// bypassing every rule.
type EscapeNext struct{}

func (EscapeNext) actionMarker() {}

// IgnoreNext marks the next physical key-down to be dropped entirely.
type IgnoreNext struct{}

func (IgnoreNext) actionMarker() {}

// Bind emits Combo like EmitCombo, but keeps the combo's output
// modifiers held on the synthetic device for as long as the input
// trigger key stays physically held — used for OS-level app switchers.
type Bind struct {
	Combo keycode.Combo
}

func (Bind) actionMarker() {}

// Custom invokes a host-provided hook. Its return value, if it produces
// an Action, is executed recursively by the output sequencer. Failures
// are isolated: logged, treated as a no-op, engine state unchanged.
type Custom struct {
	Name string
	Hook Hook
}

func (Custom) actionMarker() {}

// Hook is the capability a Custom action invokes. The engine calls it
// with the Context active at combo-resolution time (an `any` to avoid a
// cyclic import on wmcontext.Context). Implementations must be bounded
// and best-effort — GoFunc for host-typed callbacks, and luahook.Hook
// for the sandboxed Lua variant, are the two this module ships.
type Hook interface {
	Invoke(ctx any) (Action, error)
}

// GoFunc adapts a plain Go function to Hook, for hosts that prefer a
// small, typed set of callbacks over arbitrary scripting.
type GoFunc func(ctx any) (Action, error)

// Invoke implements Hook.
func (f GoFunc) Invoke(ctx any) (Action, error) { return f(ctx) }
