package ruleset

import (
	"github.com/dshills/keyremap/internal/errkind"
	"github.com/dshills/keyremap/internal/keycode"
)

// Set bundles everything one loaded configuration contributes to the
// engine: the modmap, multipurpose modmap, top-level keymap, and any
// custom modifier roles. It is the unit the engine swaps on Reload.
type Set struct {
	Modmap             *Modmap
	MultipurposeModmap *MultipurposeModmap
	Keymap             *Keymap

	customModifiers map[string]*CustomModifier
	nextCustomBit   keycode.Modifier
}

// NewSet returns an empty Set with empty sub-tables, ready to be filled
// by a config loader.
func NewSet() *Set {
	return &Set{
		Modmap:             NewModmap(),
		MultipurposeModmap: NewMultipurposeModmap(),
		Keymap:             NewKeymap("root"),
		customModifiers:    make(map[string]*CustomModifier),
		nextCustomBit:      keycode.Modifier(1) << keycode.CustomModifierBase,
	}
}

// AddCustomModifier registers a new modifier role named name, aliased
// by aliases, backed by the physical keys in keys. It returns the newly
// assigned Modifier bit.
func (s *Set) AddCustomModifier(name string, aliases []string, keys []keycode.Key) (keycode.Modifier, error) {
	if _, builtin := keycode.BuiltinModifierFromName(name); builtin {
		return keycode.ModNone, &errkind.ConfigError{Where: "add_modifier", Err: &ErrDuplicateModifier{Name: name}}
	}
	if _, exists := s.customModifiers[name]; exists {
		return keycode.ModNone, &errkind.ConfigError{Where: "add_modifier", Err: &ErrDuplicateModifier{Name: name}}
	}
	for _, alias := range aliases {
		if _, exists := s.customModifiers[alias]; exists {
			return keycode.ModNone, &errkind.ConfigError{Where: "add_modifier", Err: &ErrDuplicateModifier{Name: alias}}
		}
	}

	bit := s.nextCustomBit
	s.nextCustomBit <<= 1

	cm := &CustomModifier{Name: name, Aliases: aliases, Bit: bit, Keys: keys}
	s.customModifiers[name] = cm
	for _, alias := range aliases {
		s.customModifiers[alias] = cm
	}
	return bit, nil
}

// ResolveCustomModifier looks up a custom modifier by name or alias.
func (s *Set) ResolveCustomModifier(name string) (keycode.Modifier, bool) {
	cm, ok := s.customModifiers[name]
	if !ok {
		return keycode.ModNone, false
	}
	return cm.Bit, true
}

// CustomModifierForKey returns the custom modifier bit that key
// carries, if any key registered via AddCustomModifier matches it. The
// modifier tracker uses it to extend held input with rule-set-defined
// roles.
func (s *Set) CustomModifierForKey(key keycode.Key) (keycode.Modifier, bool) {
	for _, cm := range s.customModifiers {
		for _, k := range cm.Keys {
			if k == key {
				return cm.Bit, true
			}
		}
	}
	return keycode.ModNone, false
}

// KeysForModifier returns the physical keys registered for a custom
// modifier bit, or nil when mod is not a registered custom modifier.
func (s *Set) KeysForModifier(mod keycode.Modifier) []keycode.Key {
	for _, cm := range s.customModifiers {
		if cm.Bit == mod {
			return cm.Keys
		}
	}
	return nil
}

// Validate checks the keymap (and its nested submaps) for internal
// consistency, backing the CLI's --check flag. The modmap and
// multipurpose-modmap tables are not checked.
func (s *Set) Validate() error {
	if s.Keymap != nil {
		if err := s.Keymap.Validate(); err != nil {
			return &errkind.ConfigError{Where: "keymap", Err: err}
		}
	}
	return nil
}
