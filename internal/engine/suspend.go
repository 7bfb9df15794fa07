package engine

import (
	"time"

	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/timer"
)

// suspendModifier withholds a modifier key-down instead of emitting it,
// so a later remapped combo can absorb it. The press commits on timeout,
// on an unmapped key press, or as a press/release pair if the modifier
// is released bare.
func (e *Engine) suspendModifier(phys, eff keycode.Key, mod keycode.Modifier, side keycode.Side, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	s := &suspendedModifier{
		physKey:     phys,
		effKey:      eff,
		mod:         mod,
		side:        side,
		suspendedAt: at,
	}
	s.timerID = e.sched.Arm(e.opts.SuspendTimeout, timer.CategorySuspend, phys)
	e.st.suspended = append(e.st.suspended, s)
	e.log.Debug("modifier suspended", "key", phys, "mod", mod)
}

// suspendedIndexOf returns the queue position of phys, or -1.
func (e *Engine) suspendedIndexOf(phys keycode.Key) int {
	for i, s := range e.st.suspended {
		if s.physKey == phys {
			return i
		}
	}
	return -1
}

// commitSuspended emits every withheld modifier press, in input order,
// and empties the queue. The keys stay held on output until their
// physical release.
func (e *Engine) commitSuspended() error {
	st := e.st
	if len(st.suspended) == 0 {
		return nil
	}
	queue := st.suspended
	st.suspended = nil
	for _, s := range queue {
		e.sched.Cancel(s.timerID)
		e.log.Debug("suspended modifier committed", "key", s.physKey)
		if err := e.pressOut(s.effKey); err != nil {
			return err
		}
	}
	return e.syncOut()
}

// commitSuspendedThrough commits withheld presses from the head of the
// queue through the one whose suspend timer fired. Presses always commit
// in input order, so everything suspended earlier goes first.
func (e *Engine) commitSuspendedThrough(id timer.ID) error {
	st := e.st
	last := -1
	for i, s := range st.suspended {
		if s.timerID == id {
			last = i
			break
		}
	}
	if last == -1 {
		return nil // already committed or discarded
	}

	commit := st.suspended[:last+1]
	st.suspended = append([]*suspendedModifier(nil), st.suspended[last+1:]...)
	for _, s := range commit {
		e.sched.Cancel(s.timerID)
		e.log.Debug("suspended modifier committed", "key", s.physKey, "reason", "timeout")
		if err := e.pressOut(s.effKey); err != nil {
			return err
		}
	}
	return e.syncOut()
}

// discardSuspended drops every withheld press: a remapped combo fired
// and consumed the input modifiers, so they are never emitted. The keys
// remain physically held and keep contributing to the modifier mask for
// subsequent lookups.
func (e *Engine) discardSuspended() error {
	st := e.st
	if len(st.suspended) == 0 {
		return nil
	}
	for _, s := range st.suspended {
		e.sched.Cancel(s.timerID)
		e.log.Debug("suspended modifier discarded", "key", s.physKey)
	}
	st.suspended = nil
	return nil
}

// bareTap resolves a modifier that was released before anything else
// happened: its press and release are emitted back to back so the bare
// tap reaches applications.
func (e *Engine) bareTap(i int) error {
	st := e.st
	s := st.suspended[i]
	st.suspended = append(st.suspended[:i:i], st.suspended[i+1:]...)
	e.sched.Cancel(s.timerID)
	e.log.Debug("bare modifier tap", "key", s.physKey)

	if err := e.pressOut(s.effKey); err != nil {
		return err
	}
	if err := e.syncOut(); err != nil {
		return err
	}
	if err := e.releaseOut(s.effKey); err != nil {
		return err
	}
	return e.syncOut()
}
