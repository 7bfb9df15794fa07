package ruleset

import (
	"errors"
	"testing"

	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/wmcontext"
)

func TestModmapFirstMatchWins(t *testing.T) {
	m := NewModmap()
	m.Add("first", nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyLeftCtrl})
	m.Add("second", nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyEsc})

	if got := m.Resolve(&wmcontext.Empty, keycode.KeyCapsLock); got != keycode.KeyLeftCtrl {
		t.Errorf("Resolve(CapsLock) = %v, want LeftCtrl", got)
	}
}

func TestModmapPassesThroughUnmapped(t *testing.T) {
	m := NewModmap()
	m.Add("caps", nil, map[keycode.Key]keycode.Key{keycode.KeyCapsLock: keycode.KeyLeftCtrl})

	if got := m.Resolve(&wmcontext.Empty, keycode.KeyA); got != keycode.KeyA {
		t.Errorf("Resolve(A) = %v, want A", got)
	}
}

func TestModmapPredicateScoping(t *testing.T) {
	m := NewModmap()
	m.Add("terminal-only", WMClassGlob("kitty"), map[keycode.Key]keycode.Key{
		keycode.KeyCapsLock: keycode.KeyEsc,
	})
	m.Add("everywhere", nil, map[keycode.Key]keycode.Key{
		keycode.KeyCapsLock: keycode.KeyLeftCtrl,
	})

	kitty := &wmcontext.Context{WMClass: "kitty"}
	if got := m.Resolve(kitty, keycode.KeyCapsLock); got != keycode.KeyEsc {
		t.Errorf("in kitty: Resolve(CapsLock) = %v, want Esc", got)
	}
	if got := m.Resolve(&wmcontext.Empty, keycode.KeyCapsLock); got != keycode.KeyLeftCtrl {
		t.Errorf("elsewhere: Resolve(CapsLock) = %v, want LeftCtrl", got)
	}
}

func TestMultipurposeLookup(t *testing.T) {
	m := NewMultipurposeModmap()
	m.Add("enter", nil, map[keycode.Key]MultipurposeEntry{
		keycode.KeyEnter: {Hold: keycode.ModifierCtrl, HoldSide: keycode.SideRight},
	})

	entry, ok := m.Lookup(&wmcontext.Empty, keycode.KeyEnter)
	if !ok {
		t.Fatal("expected a lookup hit")
	}
	if entry.Hold != keycode.ModifierCtrl || entry.HoldSide != keycode.SideRight {
		t.Errorf("entry = %+v", entry)
	}

	if _, ok := m.Lookup(&wmcontext.Empty, keycode.KeySpace); ok {
		t.Error("unexpected hit for an untracked key")
	}
}

func TestKeymapComposeEarlierShadowsLater(t *testing.T) {
	k := NewKeymap("root")
	k.Add("first", nil, []Binding{
		{Combo: keycode.MustParse("Ctrl-S"), Action: action.EmitCombo{Combo: keycode.MustParse("F1")}},
	})
	k.Add("second", nil, []Binding{
		{Combo: keycode.MustParse("Ctrl-S"), Action: action.EmitCombo{Combo: keycode.MustParse("F2")}},
		{Combo: keycode.MustParse("Ctrl-T"), Action: action.EmitCombo{Combo: keycode.MustParse("F3")}},
	})

	composed := k.Compose(&wmcontext.Empty)
	if len(composed) != 2 {
		t.Fatalf("composed %d bindings, want 2", len(composed))
	}

	anySide := func(keycode.Modifier, keycode.Side) bool { return true }
	act, ok := Match(composed, keycode.ModifierCtrl, keycode.KeyS, anySide)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := act.(action.EmitCombo).Combo.Key; got != keycode.KeyF1 {
		t.Errorf("earlier rule should shadow later: got %v, want F1", got)
	}
}

func TestMatchExactSideShadowsUnsided(t *testing.T) {
	composed := []Binding{
		{Combo: keycode.MustParse("Ctrl-A"), Action: action.EmitCombo{Combo: keycode.MustParse("F1")}},
		{Combo: keycode.MustParse("LCtrl-A"), Action: action.EmitCombo{Combo: keycode.MustParse("F2")}},
	}

	leftHeld := func(mod keycode.Modifier, side keycode.Side) bool {
		return side != keycode.SideRight
	}
	act, ok := Match(composed, keycode.ModifierCtrl, keycode.KeyA, leftHeld)
	if !ok {
		t.Fatal("expected a match")
	}
	if got := act.(action.EmitCombo).Combo.Key; got != keycode.KeyF2 {
		t.Errorf("exact-side binding should win: got %v, want F2", got)
	}

	rightHeld := func(mod keycode.Modifier, side keycode.Side) bool {
		return side != keycode.SideLeft
	}
	act, ok = Match(composed, keycode.ModifierCtrl, keycode.KeyA, rightHeld)
	if !ok {
		t.Fatal("expected the unsided fallback to match")
	}
	if got := act.(action.EmitCombo).Combo.Key; got != keycode.KeyF1 {
		t.Errorf("unsided binding should match right ctrl: got %v, want F1", got)
	}
}

func TestMatchRequiresExactMask(t *testing.T) {
	composed := []Binding{
		{Combo: keycode.MustParse("Ctrl-S"), Action: action.EmitCombo{Combo: keycode.MustParse("F1")}},
	}
	anySide := func(keycode.Modifier, keycode.Side) bool { return true }

	if _, ok := Match(composed, keycode.ModifierCtrl|keycode.ModifierShift, keycode.KeyS, anySide); ok {
		t.Error("a superset mask must not match")
	}
	if _, ok := Match(composed, keycode.ModNone, keycode.KeyS, anySide); ok {
		t.Error("an empty mask must not match a modified combo")
	}
}

func TestSetCustomModifiers(t *testing.T) {
	s := NewSet()
	bit, err := s.AddCustomModifier("hyper", []string{"hyp"}, []keycode.Key{keycode.KeyCapsLock})
	if err != nil {
		t.Fatalf("AddCustomModifier: %v", err)
	}
	if bit < keycode.Modifier(1)<<keycode.CustomModifierBase {
		t.Errorf("bit %v below the custom base", bit)
	}

	if got, ok := s.ResolveCustomModifier("hyp"); !ok || got != bit {
		t.Errorf("ResolveCustomModifier(hyp) = (%v, %v)", got, ok)
	}
	if got, ok := s.CustomModifierForKey(keycode.KeyCapsLock); !ok || got != bit {
		t.Errorf("CustomModifierForKey(CapsLock) = (%v, %v)", got, ok)
	}
	if keys := s.KeysForModifier(bit); len(keys) != 1 || keys[0] != keycode.KeyCapsLock {
		t.Errorf("KeysForModifier = %v", keys)
	}

	if _, err := s.AddCustomModifier("hyper", nil, nil); err == nil {
		t.Error("duplicate name should be rejected")
	}
	if _, err := s.AddCustomModifier("ctrl", nil, nil); err == nil {
		t.Error("builtin collision should be rejected")
	}
}

func TestCompileExpr(t *testing.T) {
	tests := []struct {
		expr string
		ctx  wmcontext.Context
		want bool
	}{
		{`wm_class == "firefox"`, wmcontext.Context{WMClass: "firefox"}, true},
		{`wm_class == "firefox*"`, wmcontext.Context{WMClass: "firefox-esr"}, true},
		{`wm_class == "firefox"`, wmcontext.Context{WMClass: "kitty"}, false},
		{`!wm_class == "kitty"`, wmcontext.Context{WMClass: "firefox"}, true},
		{`wm_class == "kitty" || wm_class == "alacritty"`, wmcontext.Context{WMClass: "alacritty"}, true},
		{`wm_class == "kitty" && wm_name == "vim*"`, wmcontext.Context{WMClass: "kitty", WMName: "vim main.go"}, true},
		{`wm_class == "kitty" && wm_name == "vim*"`, wmcontext.Context{WMClass: "kitty", WMName: "htop"}, false},
		{`device_name == "AT Translated*"`, wmcontext.Context{DeviceName: "AT Translated Set 2 keyboard"}, true},
		{`capslock_on == "true"`, wmcontext.Context{CapslockOn: true}, true},
		{``, wmcontext.Context{}, true},
	}

	for _, tt := range tests {
		p, err := CompileExpr(tt.expr)
		if err != nil {
			t.Errorf("CompileExpr(%q): %v", tt.expr, err)
			continue
		}
		if got := p(&tt.ctx); got != tt.want {
			t.Errorf("CompileExpr(%q)(%+v) = %v, want %v", tt.expr, tt.ctx, got, tt.want)
		}
	}
}

func TestCompileExprErrors(t *testing.T) {
	for _, expr := range []string{"wm_class", `frobnicate == "x"`} {
		if _, err := CompileExpr(expr); err == nil {
			t.Errorf("CompileExpr(%q): expected an error", expr)
		}
	}
}

func TestValidateEmptyKeymap(t *testing.T) {
	s := NewSet()
	err := s.Validate()
	var empty *ErrEmptyKeymap
	if !errors.As(err, &empty) {
		t.Fatalf("Validate = %v, want ErrEmptyKeymap", err)
	}
}

func TestValidateNestedSubmap(t *testing.T) {
	sub := NewKeymap("empty-sub")
	root := NewKeymap("root")
	root.Add("outer", nil, []Binding{{
		Combo:  keycode.MustParse("Ctrl-X"),
		Action: action.EnterSubmap{Keymap: sub},
	}})

	err := root.Validate()
	var empty *ErrEmptyKeymap
	if !errors.As(err, &empty) {
		t.Fatalf("Validate = %v, want nested ErrEmptyKeymap", err)
	}
	if empty.Name != "empty-sub" {
		t.Errorf("error names %q, want empty-sub", empty.Name)
	}
}
