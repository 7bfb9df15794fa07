package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dshills/keyremap/enginecfg"
	"github.com/dshills/keyremap/internal/device"
	"github.com/dshills/keyremap/internal/diag"
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/ruleset"
	"github.com/dshills/keyremap/internal/timer"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// snapshotTimeout bounds one context-provider call so a stalled provider
// cannot stall key processing.
const snapshotTimeout = 100 * time.Millisecond

// Engine owns the transformation pipeline between one Source and one
// Sink. All state mutation happens on the goroutine running Run.
type Engine struct {
	opts enginecfg.Options
	log  *slog.Logger

	src  device.Source
	sink device.Sink
	prov wmcontext.Provider

	sched *timer.Scheduler
	st    *EngineState
	set   *ruleset.Set

	// curCtx is the context snapshot taken at the most recent key press,
	// reused for the remainder of that press's resolution.
	curCtx wmcontext.Context

	reloadCh chan *ruleset.Set
	running  atomic.Bool

	// sleep is swapped out by tests; throttle delays default to zero so
	// production paths rarely hit it.
	sleep func(time.Duration)
}

// New builds an Engine over src and sink. prov may be nil (no window
// context; predicates over context fields never match) and set may be
// nil (identity rule set).
func New(src device.Source, sink device.Sink, prov wmcontext.Provider, set *ruleset.Set, opts enginecfg.Options, log *slog.Logger) (*Engine, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if sink == nil {
		return nil, ErrNoSink
	}
	if prov == nil {
		prov = wmcontext.Noop{}
	}
	if set == nil {
		set = ruleset.NewSet()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		opts:     opts,
		log:      log.With("component", "engine"),
		src:      src,
		sink:     sink,
		prov:     prov,
		sched:    timer.New(nil),
		st:       newEngineState(),
		set:      set,
		reloadCh: make(chan *ruleset.Set, 1),
		sleep:    time.Sleep,
	}, nil
}

// Run executes the event loop until ctx is cancelled, the Source runs
// out of devices, the emergency-eject key is received, or a fatal output
// error occurs. On every exit path each synthetic press is matched by a
// release before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)
	defer e.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case set := <-e.reloadCh:
			e.applyRuleSet(set)
		case ev, ok := <-e.src.Events():
			if !ok {
				return device.ErrNoDevices
			}
			if err := e.handleEvent(ev); err != nil {
				if errors.Is(err, errEjected) {
					return nil
				}
				return err
			}
		case err := <-e.src.Errors():
			// The Source drops the failing device itself; the loop only
			// ends once the event channel closes.
			e.log.Warn("input device dropped", "err", err)
		case f := <-e.sched.Fired():
			if err := e.handleTimer(f); err != nil {
				if errors.Is(err, errEjected) {
					return nil
				}
				return err
			}
		}
	}
}

// Reload swaps in a freshly built rule set between input events without
// re-grabbing devices or recreating the synthetic output device.
func (e *Engine) Reload(set *ruleset.Set) error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	select {
	case e.reloadCh <- set:
	default:
		// An unconsumed earlier reload is superseded.
		select {
		case <-e.reloadCh:
		default:
		}
		e.reloadCh <- set
	}
	return nil
}

func (e *Engine) applyRuleSet(set *ruleset.Set) {
	if set == nil {
		set = ruleset.NewSet()
	}
	e.set = set
	// The old set's submaps are meaningless under the new tables.
	e.st.clearSubmap(e.sched)
	e.log.Info("rule set reloaded")
}

// handleEvent dispatches one input event. Repeat events never normally
// reach here, but are dropped defensively.
func (e *Engine) handleEvent(ev keycode.KeyEvent) error {
	switch ev.Action {
	case keycode.Press:
		return e.handlePress(ev)
	case keycode.Release:
		return e.handleRelease(ev)
	default:
		return nil
	}
}

func (e *Engine) handlePress(ev keycode.KeyEvent) error {
	st := e.st
	if st.ejecting {
		return nil
	}
	key := ev.Key

	switch key {
	case e.opts.EmergencyEjectKey:
		return e.eject()
	case e.opts.DumpDiagnosticsKey:
		e.dumpDiagnostics()
		return nil
	}

	st.heldInput[key] = true
	ctx := e.refreshContext(ev)

	// A new physical press decides every still-undecided dual-role key
	// as its modifier before the new key is processed.
	if err := e.decideUndecidedAsMod(); err != nil {
		return err
	}

	switch st.nextKey {
	case nextKeyEscape:
		st.nextKey = nextKeyNone
		st.effective[key] = key
		if err := e.commitSuspended(); err != nil {
			return err
		}
		if err := e.pressOut(key); err != nil {
			return err
		}
		return e.syncOut()
	case nextKeyIgnore:
		st.nextKey = nextKeyNone
		st.ignored[key] = true
		return nil
	}

	eff := e.set.Modmap.Resolve(ctx, key)
	st.effective[key] = eff

	if entry, ok := e.set.MultipurposeModmap.Lookup(ctx, eff); ok {
		e.enterUndecided(key, entry)
		return nil
	}

	if mod, side, ok := e.modifierRole(eff); ok {
		e.suspendModifier(key, eff, mod, side, ev.Timestamp)
		return nil
	}

	return e.resolveCombo(ctx, key, eff)
}

func (e *Engine) handleRelease(ev keycode.KeyEvent) error {
	st := e.st
	if st.ejecting {
		return nil
	}
	key := ev.Key

	delete(st.heldInput, key)
	eff, haveEff := st.effective[key]
	delete(st.effective, key)
	if !haveEff {
		eff = key
	}

	if st.ignored[key] {
		delete(st.ignored, key)
		return nil
	}

	if mp, ok := st.multipurpose[key]; ok {
		return e.multipurposeRelease(mp)
	}

	if i := e.suspendedIndexOf(key); i >= 0 {
		return e.bareTap(i)
	}

	if held, ok := st.binds[key]; ok {
		delete(st.binds, key)
		for _, k := range held {
			if err := e.releaseOut(k); err != nil {
				return err
			}
		}
		if len(held) > 0 {
			if err := e.syncOut(); err != nil {
				return err
			}
		}
	}

	if st.heldOutput[eff] {
		if err := e.releaseOut(eff); err != nil {
			return err
		}
		return e.syncOut()
	}
	return nil
}

// resolveCombo runs a non-modifier key-down through the keymap stack.
func (e *Engine) resolveCombo(ctx *wmcontext.Context, key, eff keycode.Key) error {
	st := e.st
	ms := e.modifierState(ctx)
	satisfies := func(mod keycode.Modifier, side keycode.Side) bool {
		return ms.Satisfies(mod, side)
	}

	// Submap first: it is consumed by this single lookup whether or not
	// it matches.
	if sub := st.activeSubmap; sub != nil {
		st.clearSubmap(e.sched)
		if a, ok := ruleset.Match(sub.Compose(ctx), ms.Mask, eff, satisfies); ok {
			e.log.Debug("submap combo matched", "submap", sub.Name, "key", eff)
			if err := e.discardSuspended(); err != nil {
				return err
			}
			return e.runAction(ctx, key, a)
		}
	}

	if a, ok := ruleset.Match(e.set.Keymap.Compose(ctx), ms.Mask, eff, satisfies); ok {
		e.log.Debug("combo matched", "key", eff, "mask", ms.Mask)
		if err := e.discardSuspended(); err != nil {
			return err
		}
		return e.runAction(ctx, key, a)
	}

	// Unmapped: every withheld modifier commits, then the key itself
	// passes through verbatim.
	if err := e.commitSuspended(); err != nil {
		return err
	}
	if err := e.pressOut(eff); err != nil {
		return err
	}
	return e.syncOut()
}

func (e *Engine) handleTimer(f timer.Fired) error {
	if e.st.ejecting {
		return nil
	}
	switch f.Category {
	case timer.CategoryMultipurpose:
		key, _ := f.Key.(keycode.Key)
		return e.multipurposeTimeout(key, f.ID)
	case timer.CategorySuspend:
		return e.commitSuspendedThrough(f.ID)
	case timer.CategorySubmapTimeout:
		if e.st.submapTimerArmed && e.st.submapTimerID == f.ID {
			e.st.submapTimerArmed = false
			e.st.activeSubmap = nil
			e.log.Debug("submap expired")
		}
		return nil
	case timer.CategoryDiagnosticsDump:
		e.dumpDiagnostics()
		return nil
	case timer.CategoryEmergencyEject:
		return e.eject()
	default:
		return nil
	}
}

// eject releases everything held on output, disarms all timers, and
// unwinds the run loop.
func (e *Engine) eject() error {
	st := e.st
	st.ejecting = true
	e.sched.CancelAll()

	released := 0
	for k := range st.heldOutput {
		if err := e.sink.Release(k); err != nil {
			e.log.Error("eject: release failed", "key", k, "err", err)
		}
		delete(st.heldOutput, k)
		released++
	}
	if released > 0 {
		if err := e.sink.Sync(); err != nil {
			e.log.Error("eject: sync failed", "err", err)
		}
	}
	e.log.Warn("emergency eject: all output keys released")
	return errEjected
}

// shutdown is the orderly exit path shared by every way Run can return:
// any still-held output key is released so the synthetic device never
// leaves a key stuck down.
func (e *Engine) shutdown() {
	e.sched.CancelAll()
	st := e.st
	released := 0
	for k := range st.heldOutput {
		if err := e.sink.Release(k); err != nil {
			e.log.Error("shutdown: release failed", "key", k, "err", err)
		}
		delete(st.heldOutput, k)
		released++
	}
	if released > 0 {
		if err := e.sink.Sync(); err != nil {
			e.log.Error("shutdown: sync failed", "err", err)
		}
	}
}

// refreshContext takes the per-press context snapshot, folding in the
// event's device name and the Source's LED state.
func (e *Engine) refreshContext(ev keycode.KeyEvent) *wmcontext.Context {
	cctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	c := e.prov.Snapshot(cctx)
	c.DeviceName = ev.DeviceName
	c.CapslockOn, c.NumlockOn = e.src.LEDState()
	e.curCtx = c
	return &e.curCtx
}

// modifierRole reports the logical role eff carries, builtin or custom.
func (e *Engine) modifierRole(eff keycode.Key) (keycode.Modifier, keycode.Side, bool) {
	if mod, side, ok := builtinPhysicalModifier(eff); ok {
		return mod, side, true
	}
	if mod, ok := e.set.CustomModifierForKey(eff); ok {
		return mod, keycode.SideEither, true
	}
	return keycode.ModNone, keycode.SideEither, false
}

// modifierState computes the current logical modifier mask from held
// input keys, excluding dual-role keys still tracked by the multipurpose
// resolver and adding back the hold roles of those already decided as
// modifiers. Withheld (suspended) modifiers count: they are physically
// held, and whether they commit or are discarded is decided by the
// lookup their mask participates in.
func (e *Engine) modifierState(ctx *wmcontext.Context) ModifierState {
	st := e.st
	held := st.heldInput
	if len(st.multipurpose) > 0 {
		held = make(map[keycode.Key]bool, len(st.heldInput))
		for k := range st.heldInput {
			if _, tracked := st.multipurpose[k]; !tracked {
				held[k] = true
			}
		}
	}

	ms := ComputeModifierState(ctx, held, e.set.Modmap, e.set)
	for _, mp := range st.multipurpose {
		if mp.state == stateDecidedMod {
			ms.add(mp.entry.Hold, mp.entry.HoldSide)
		}
	}
	return ms
}

// keyForModifier picks the physical key to press for a modifier role,
// honoring a side constraint. Preference order: a key already down on
// output for the role, then a physically held input key carrying it (so
// the synthetic press mirrors the real key and its release lines up),
// then the role's canonical key.
func (e *Engine) keyForModifier(mod keycode.Modifier, side keycode.Side) keycode.Key {
	st := e.st
	for k := range st.heldOutput {
		if m, s, ok := builtinPhysicalModifier(k); ok && m == mod && sideCompatible(s, side) {
			return k
		}
	}
	for phys := range st.heldInput {
		eff, ok := st.effective[phys]
		if !ok {
			eff = phys
		}
		if m, s, ok := builtinPhysicalModifier(eff); ok && m == mod && sideCompatible(s, side) {
			return eff
		}
	}

	switch mod {
	case keycode.ModifierCtrl:
		return pick(side, keycode.KeyLeftCtrl, keycode.KeyRightCtrl)
	case keycode.ModifierShift:
		return pick(side, keycode.KeyLeftShift, keycode.KeyRightShift)
	case keycode.ModifierAlt:
		return pick(side, keycode.KeyLeftAlt, keycode.KeyRightAlt)
	case keycode.ModifierSuper:
		return pick(side, keycode.KeyLeftMeta, keycode.KeyRightMeta)
	}
	if keys := e.set.KeysForModifier(mod); len(keys) > 0 {
		return keys[0]
	}
	return keycode.KeyNone
}

func pick(side keycode.Side, left, right keycode.Key) keycode.Key {
	if side == keycode.SideRight {
		return right
	}
	return left
}

func sideCompatible(have, want keycode.Side) bool {
	return want == keycode.SideEither || have == want
}

// isOutputModifier reports whether k, as currently pressed on the
// synthetic device, plays a modifier role.
func (e *Engine) isOutputModifier(k keycode.Key) bool {
	if _, _, ok := builtinPhysicalModifier(k); ok {
		return true
	}
	_, ok := e.set.CustomModifierForKey(k)
	return ok
}

// bindHolds reports whether k is being kept down by an active Bind.
func (e *Engine) bindHolds(k keycode.Key) bool {
	for _, keys := range e.st.binds {
		for _, held := range keys {
			if held == k {
				return true
			}
		}
	}
	return false
}

// pressOut emits a synthetic press and records it in held_output.
func (e *Engine) pressOut(k keycode.Key) error {
	if err := e.sink.Press(k); err != nil {
		return err
	}
	e.st.heldOutput[k] = true
	return nil
}

// releaseOut emits a synthetic release and clears it from held_output.
func (e *Engine) releaseOut(k keycode.Key) error {
	if err := e.sink.Release(k); err != nil {
		return err
	}
	delete(e.st.heldOutput, k)
	return nil
}

func (e *Engine) syncOut() error {
	return e.sink.Sync()
}

// DumpDiagnostics serializes the current engine state. Also invoked by
// the diagnostics key and the diagnostics timer category.
func (e *Engine) DumpDiagnostics() ([]byte, error) {
	st := e.st
	snap := diag.Snapshot{Timestamp: time.Now()}

	for _, k := range st.HeldInputKeys() {
		snap.HeldInput = append(snap.HeldInput, diag.HeldKey{Key: k.String()})
	}
	for _, k := range st.HeldOutputKeys() {
		snap.HeldOutput = append(snap.HeldOutput, diag.HeldKey{Key: k.String()})
	}
	for key, mp := range st.multipurpose {
		snap.Multipurpose = append(snap.Multipurpose, diag.MultipurposeState{
			Key:   key.String(),
			State: mp.state.String(),
		})
	}
	for _, s := range st.suspended {
		snap.Suspended = append(snap.Suspended, diag.SuspendedModifier{
			Modifier:    s.mod.String(),
			SuspendedAt: s.suspendedAt,
		})
	}
	if st.activeSubmap != nil {
		snap.ActiveSubmap = st.activeSubmap.Name
	}
	snap.EngineSuspended = st.ejecting
	snap.NextKeyMode = st.nextKey.String()
	snap.PendingTimers = e.sched.Pending()
	snap.ActiveContext.WMClass = e.curCtx.WMClass
	snap.ActiveContext.WMName = e.curCtx.WMName
	snap.ActiveContext.DeviceName = e.curCtx.DeviceName
	snap.ActiveContext.CapslockOn = e.curCtx.CapslockOn
	snap.ActiveContext.NumlockOn = e.curCtx.NumlockOn

	return diag.Dump(snap)
}

func (e *Engine) dumpDiagnostics() {
	out, err := e.DumpDiagnostics()
	if err != nil {
		e.log.Error("diagnostics dump failed", "err", err)
		return
	}
	e.log.Info("diagnostics dump", "state", string(out))
}
