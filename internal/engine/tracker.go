package engine

import (
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// sideFlags records which physical side(s) of a modifier role are
// currently held.
type sideFlags struct {
	Left, Right bool
}

// ModifierState is the modifier tracker's computed view of held input: a
// mask of logical roles currently held, plus left/right identity per
// role so combos with LCtrl/RCtrl side constraints can be distinguished
// from unsided Ctrl.
type ModifierState struct {
	Mask  keycode.Modifier
	sides map[keycode.Modifier]sideFlags
}

// Satisfies reports whether the currently-held sides for mod satisfy a
// combo's side constraint want. SideEither always satisfies; SideLeft or
// SideRight requires that specific physical key to be among those held.
func (ms ModifierState) Satisfies(mod keycode.Modifier, want keycode.Side) bool {
	if want == keycode.SideEither {
		return true
	}
	flags := ms.sides[mod]
	if want == keycode.SideLeft {
		return flags.Left
	}
	return flags.Right
}

// add folds one more held role into the state. SideEither marks both
// sides held, which is how side-less roles (custom modifiers, dual-role
// hold roles without a side) satisfy any side constraint.
func (ms *ModifierState) add(mod keycode.Modifier, side keycode.Side) {
	ms.Mask = ms.Mask.With(mod)
	flags := ms.sides[mod]
	switch side {
	case keycode.SideLeft:
		flags.Left = true
	case keycode.SideRight:
		flags.Right = true
	default:
		flags.Left, flags.Right = true, true
	}
	ms.sides[mod] = flags
}

// builtinPhysicalModifier maps a physical modifier key to its logical
// role and side. Only Ctrl/Alt/Shift/Super carry a dedicated evdev
// scancode in this keycode set; Fn has no standalone physical key here
// and can only be reached via a custom modifier registration or modmap
// substitution onto one of these four.
func builtinPhysicalModifier(key keycode.Key) (keycode.Modifier, keycode.Side, bool) {
	switch key {
	case keycode.KeyLeftCtrl:
		return keycode.ModifierCtrl, keycode.SideLeft, true
	case keycode.KeyRightCtrl:
		return keycode.ModifierCtrl, keycode.SideRight, true
	case keycode.KeyLeftShift:
		return keycode.ModifierShift, keycode.SideLeft, true
	case keycode.KeyRightShift:
		return keycode.ModifierShift, keycode.SideRight, true
	case keycode.KeyLeftAlt:
		return keycode.ModifierAlt, keycode.SideLeft, true
	case keycode.KeyRightAlt:
		return keycode.ModifierAlt, keycode.SideRight, true
	case keycode.KeyLeftMeta:
		return keycode.ModifierSuper, keycode.SideLeft, true
	case keycode.KeyRightMeta:
		return keycode.ModifierSuper, keycode.SideRight, true
	default:
		return keycode.ModNone, keycode.SideEither, false
	}
}

// ComputeModifierState filters heldInput through the active modmap (so a
// key remapped onto a modifier role counts as that modifier) and the
// rule set's custom modifier definitions, producing the current logical
// modifier mask with per-role side identity.
//
// Custom modifiers carry no left/right distinction — a rule set
// registers a set of physical keys for one role without per-key side
// tags — so a held custom modifier satisfies SideLeft and SideRight as
// well as SideEither.
func ComputeModifierState(ctx *wmcontext.Context, heldInput map[keycode.Key]bool, modmap *ruleset.Modmap, set *ruleset.Set) ModifierState {
	ms := ModifierState{sides: make(map[keycode.Modifier]sideFlags)}

	for key := range heldInput {
		effective := key
		if modmap != nil {
			effective = modmap.Resolve(ctx, key)
		}

		if mod, side, ok := builtinPhysicalModifier(effective); ok {
			ms.add(mod, side)
			continue
		}

		if set != nil {
			if mod, ok := set.CustomModifierForKey(effective); ok {
				ms.add(mod, keycode.SideEither)
			}
		}
	}

	return ms
}

// IsModifierKey reports whether key (after modmap substitution) plays a
// modifier role, builtin or custom.
func IsModifierKey(ctx *wmcontext.Context, key keycode.Key, modmap *ruleset.Modmap, set *ruleset.Set) bool {
	effective := key
	if modmap != nil {
		effective = modmap.Resolve(ctx, key)
	}
	if _, _, ok := builtinPhysicalModifier(effective); ok {
		return true
	}
	if set != nil {
		if _, ok := set.CustomModifierForKey(effective); ok {
			return true
		}
	}
	return false
}
