package keycode

import (
	"errors"
	"testing"
)

func TestParseSimpleKey(t *testing.T) {
	c, err := Parse("A", nil)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", "A", err)
	}
	if c.Key != KeyA || c.Mods != ModNone {
		t.Errorf("Parse(%q) = %#v, want Key=A Mods=None", "A", c)
	}
}

func TestParseModifiedCombo(t *testing.T) {
	tests := []struct {
		spec     string
		wantMods Modifier
		wantKey  Key
	}{
		{"Ctrl-S", ModifierCtrl, KeyS},
		{"C-S", ModifierCtrl, KeyS},
		{"Alt-F4", ModifierAlt, KeyF4},
		{"Ctrl-Shift-P", ModifierCtrl | ModifierShift, KeyP},
		{"Super-Space", ModifierSuper, KeySpace},
		{"Cmd-S", ModifierSuper, KeyS},
		{"Win-S", ModifierSuper, KeyS},
	}

	for _, tt := range tests {
		c, err := Parse(tt.spec, nil)
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.spec, err)
			continue
		}
		if c.Mods != tt.wantMods || c.Key != tt.wantKey {
			t.Errorf("Parse(%q) = {Mods:%v Key:%v}, want {Mods:%v Key:%v}",
				tt.spec, c.Mods, c.Key, tt.wantMods, tt.wantKey)
		}
	}
}

func TestParseSideConstraints(t *testing.T) {
	c, err := Parse("LCtrl-C", nil)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if c.SideFor(ModifierCtrl) != SideLeft {
		t.Errorf("SideFor(Ctrl) = %v, want SideLeft", c.SideFor(ModifierCtrl))
	}

	c2, err := Parse("RCtrl-C", nil)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if c2.SideFor(ModifierCtrl) != SideRight {
		t.Errorf("SideFor(Ctrl) = %v, want SideRight", c2.SideFor(ModifierCtrl))
	}

	c3, err := Parse("Ctrl-C", nil)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if c3.SideFor(ModifierCtrl) != SideEither {
		t.Errorf("SideFor(Ctrl) = %v, want SideEither", c3.SideFor(ModifierCtrl))
	}
}

func TestParseCustomModifier(t *testing.T) {
	resolver := func(name string) (Modifier, bool) {
		if name == "hyper" {
			return Modifier(1 << CustomModifierBase), true
		}
		return ModNone, false
	}

	c, err := Parse("Hyper-X", resolver)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if c.Mods != Modifier(1<<CustomModifierBase) || c.Key != KeyX {
		t.Errorf("Parse(Hyper-X) = %#v", c)
	}

	if _, err := Parse("Hyper-X", nil); !errors.Is(err, ErrInvalidCombo) {
		t.Errorf("Parse(Hyper-X) with nil resolver: err = %v, want ErrInvalidCombo", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"Ctrl-",
		"Ctrl-Ctrl-A",
		"Frobnicate-A",
		"Ctrl-Xyzzy123",
	}
	for _, spec := range tests {
		if _, err := Parse(spec, nil); !errors.Is(err, ErrInvalidCombo) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidCombo", spec, err)
		}
	}
}

func TestComboRoundTrip(t *testing.T) {
	tests := []string{"A", "Ctrl-S", "Ctrl-Alt-Delete", "LCtrl-C", "RShift-Tab"}
	for _, spec := range tests {
		c, err := Parse(spec, nil)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", spec, err)
		}
		c2, err := Parse(c.String(), nil)
		if err != nil {
			t.Fatalf("re-parsing %q (from %q) error = %v", c.String(), spec, err)
		}
		if !c.Equal(c2) {
			t.Errorf("round trip %q -> %q -> %#v, not equal to original %#v", spec, c.String(), c2, c)
		}
	}
}
