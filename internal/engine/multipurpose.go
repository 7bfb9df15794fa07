package engine

import (
	"time"

	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/timer"
)

// enterUndecided starts tracking a freshly pressed dual-role key and
// arms its decision timer.
func (e *Engine) enterUndecided(physKey keycode.Key, entry ruleset.MultipurposeEntry) {
	timeout := e.opts.MultipurposeTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	mp := &multipurposeState{
		physKey: physKey,
		entry:   entry,
		state:   stateUndecided,
	}
	mp.timerID = e.sched.Arm(timeout, timer.CategoryMultipurpose, physKey)
	e.st.multipurpose[physKey] = mp
	e.log.Debug("multipurpose key undecided", "key", physKey)
}

// decideUndecidedAsMod transitions every still-undecided dual-role key
// to its modifier role. Called when any other physical key is pressed,
// and when another dual-role key's tap emission counts as such a press,
// so the modifier press reaches the output before the new key is
// processed.
func (e *Engine) decideUndecidedAsMod() error {
	for _, mp := range e.st.multipurpose {
		if mp.state != stateUndecided {
			continue
		}
		if err := e.decideMod(mp); err != nil {
			return err
		}
	}
	return nil
}

// decideMod commits one dual-role key to its modifier role and emits the
// modifier press.
func (e *Engine) decideMod(mp *multipurposeState) error {
	e.sched.Cancel(mp.timerID)
	mp.state = stateDecidedMod
	mp.outKey = e.keyForModifier(mp.entry.Hold, mp.entry.HoldSide)
	if mp.outKey == keycode.KeyNone {
		e.log.Warn("no physical key for hold role", "key", mp.physKey, "mod", mp.entry.Hold)
		return nil
	}
	e.log.Debug("multipurpose key decided", "key", mp.physKey, "mode", "hold")
	if err := e.pressOut(mp.outKey); err != nil {
		return err
	}
	return e.syncOut()
}

// multipurposeRelease handles the physical release of a tracked
// dual-role key.
func (e *Engine) multipurposeRelease(mp *multipurposeState) error {
	delete(e.st.multipurpose, mp.physKey)

	switch mp.state {
	case stateUndecided:
		// Released before anything else happened: it was a tap.
		e.sched.Cancel(mp.timerID)
		mp.state = stateDecidedTap
		e.log.Debug("multipurpose key decided", "key", mp.physKey, "mode", "tap")

		// The tap emission is itself a key press as far as any other
		// undecided dual-role key is concerned. A modifier-role decision
		// never counts; an actual tap emission does.
		if err := e.decideUndecidedAsMod(); err != nil {
			return err
		}
		if err := e.commitSuspended(); err != nil {
			return err
		}
		return e.emitTap(mp)

	case stateDecidedMod:
		if mp.outKey == keycode.KeyNone || !e.st.heldOutput[mp.outKey] {
			return nil
		}
		if err := e.releaseOut(mp.outKey); err != nil {
			return err
		}
		return e.syncOut()

	default:
		return nil
	}
}

// emitTap renders a tap decision. A bare-key tap is a plain keystroke —
// it keeps whatever modifiers are already down on output, unlike a
// combo emission, which brackets them away. Anything richer than a
// bare key runs through the full sequencer.
func (e *Engine) emitTap(mp *multipurposeState) error {
	if ec, ok := mp.entry.Tap.(action.EmitCombo); ok && ec.Combo.Mods.IsEmpty() {
		if err := e.pressOut(ec.Combo.Key); err != nil {
			return err
		}
		if err := e.syncOut(); err != nil {
			return err
		}
		if err := e.releaseOut(ec.Combo.Key); err != nil {
			return err
		}
		return e.syncOut()
	}
	return e.runAction(&e.curCtx, mp.physKey, mp.entry.Tap)
}

// multipurposeTimeout fires when a dual-role key has been held past its
// decision window with nothing else pressed: it becomes its modifier.
func (e *Engine) multipurposeTimeout(key keycode.Key, id timer.ID) error {
	mp, ok := e.st.multipurpose[key]
	if !ok || mp.timerID != id || mp.state != stateUndecided {
		return nil // stale firing, already resolved
	}
	return e.decideMod(mp)
}
