package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/errkind"
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/timer"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// runAction renders one high-level action into synthetic events.
// trigger is the physical key whose press produced the action; Bind uses
// it to decide when to let go of retained modifiers.
func (e *Engine) runAction(ctx *wmcontext.Context, trigger keycode.Key, act action.Action) error {
	switch a := act.(type) {
	case nil:
		return nil

	case action.EmitCombo:
		return e.emitCombo(ctx, a.Combo, false, trigger)

	case action.Bind:
		return e.emitCombo(ctx, a.Combo, true, trigger)

	case action.Sequence:
		for _, child := range a.Actions {
			if err := e.runAction(ctx, trigger, child); err != nil {
				return err
			}
		}
		return nil

	case action.EnterSubmap:
		km, ok := a.Keymap.(*ruleset.Keymap)
		if !ok {
			e.log.Error("submap action carries a non-keymap value", "type", fmt.Sprintf("%T", a.Keymap))
			return nil
		}
		e.st.clearSubmap(e.sched)
		e.st.activeSubmap = km
		if e.opts.SubmapTimeout > 0 {
			e.st.submapTimerID = e.sched.Arm(e.opts.SubmapTimeout, timer.CategorySubmapTimeout, nil)
			e.st.submapTimerArmed = true
		}
		e.log.Debug("submap entered", "submap", km.Name)
		if a.Immediately != nil {
			return e.runAction(ctx, trigger, a.Immediately)
		}
		return nil

	case action.EscapeNext:
		e.st.nextKey = nextKeyEscape
		return nil

	case action.IgnoreNext:
		e.st.nextKey = nextKeyIgnore
		return nil

	case action.Custom:
		return e.runAction(ctx, trigger, e.invokeCustom(ctx, a))

	default:
		e.log.Warn("unknown action type", "type", fmt.Sprintf("%T", act))
		return nil
	}
}

// emitCombo renders a combo to the synthetic device: modifier set
// difference against current output, bracketed key press/release with
// throttle delays, then restoration of the previous modifier state. A
// bound combo keeps its added modifiers held until the trigger key's
// physical release.
func (e *Engine) emitCombo(ctx *wmcontext.Context, combo keycode.Combo, bind bool, trigger keycode.Key) error {
	st := e.st

	desired := make(map[keycode.Key]bool)
	for bit := keycode.Modifier(1); bit != 0; bit <<= 1 {
		if !combo.Mods.Has(bit) {
			continue
		}
		k := e.keyForModifier(bit, combo.SideFor(bit))
		if k == keycode.KeyNone {
			e.log.Warn("no physical key for modifier role", "mod", bit)
			continue
		}
		desired[k] = true
	}

	var toRelease, toPress []keycode.Key
	for k := range st.heldOutput {
		if !e.isOutputModifier(k) || desired[k] || e.bindHolds(k) {
			continue
		}
		toRelease = append(toRelease, k)
	}
	for k := range desired {
		if !st.heldOutput[k] {
			toPress = append(toPress, k)
		}
	}
	sortKeys(toRelease)
	sortKeys(toPress)

	if len(toRelease) > 0 {
		for _, k := range toRelease {
			if err := e.releaseOut(k); err != nil {
				return err
			}
		}
		if err := e.syncOut(); err != nil {
			return err
		}
	}
	if len(toPress) > 0 {
		for _, k := range toPress {
			if err := e.pressOut(k); err != nil {
				return err
			}
		}
		if err := e.syncOut(); err != nil {
			return err
		}
	}

	e.throttle(e.opts.KeyPreDelayMs)
	if err := e.pressOut(combo.Key); err != nil {
		return err
	}
	if err := e.syncOut(); err != nil {
		return err
	}
	if err := e.releaseOut(combo.Key); err != nil {
		return err
	}
	if err := e.syncOut(); err != nil {
		return err
	}
	e.throttle(e.opts.KeyPostDelayMs)

	if bind {
		st.binds[trigger] = append(st.binds[trigger], toPress...)
	} else {
		// Modifiers added only for this combo come back off; ones whose
		// role the user is physically holding stay down and release when
		// the real key does.
		ms := e.modifierState(ctx)
		var drop []keycode.Key
		for _, k := range toPress {
			if mod, _, ok := builtinPhysicalModifier(k); ok && ms.Mask.Has(mod) {
				continue
			}
			if mod, ok := e.set.CustomModifierForKey(k); ok && ms.Mask.Has(mod) {
				continue
			}
			drop = append(drop, k)
		}
		if len(drop) > 0 {
			for _, k := range drop {
				if err := e.releaseOut(k); err != nil {
					return err
				}
			}
			if err := e.syncOut(); err != nil {
				return err
			}
		}
	}

	// Anything temporarily released for the combo comes back.
	if len(toRelease) > 0 {
		for _, k := range toRelease {
			if err := e.pressOut(k); err != nil {
				return err
			}
		}
		if err := e.syncOut(); err != nil {
			return err
		}
	}
	return nil
}

// invokeCustom calls a host hook, isolating any failure: an error or
// panic is logged as a callback error and the action degrades to no-op.
func (e *Engine) invokeCustom(ctx *wmcontext.Context, a action.Custom) (result action.Action) {
	if a.Hook == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			kerr := &errkind.CustomCallbackError{Name: a.Name, Err: fmt.Errorf("panic: %v", r)}
			e.log.Error("custom callback panicked", "err", kerr)
			result = nil
		}
	}()

	payload := map[string]any{
		"wm_class":    ctx.WMClass,
		"wm_name":     ctx.WMName,
		"device_name": ctx.DeviceName,
		"capslock_on": ctx.CapslockOn,
		"numlock_on":  ctx.NumlockOn,
	}
	act, err := a.Hook.Invoke(payload)
	if err != nil {
		kerr := &errkind.CustomCallbackError{Name: a.Name, Err: err}
		e.log.Error("custom callback failed", "err", kerr)
		return nil
	}
	return act
}

func (e *Engine) throttle(ms int) {
	if ms > 0 {
		e.sleep(time.Duration(ms) * time.Millisecond)
	}
}

func sortKeys(keys []keycode.Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}
