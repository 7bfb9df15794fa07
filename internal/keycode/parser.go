package keycode

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCombo is the sentinel wrapped by every combo parse failure:
// unknown tokens, duplicate modifiers, or a missing base key.
var ErrInvalidCombo = errors.New("invalid combo")

// Parse parses a combo string of the form "(<Mod>-)*<Key>" into a Combo.
// Modifier tokens accept the aliases in BuiltinModifierFromName plus an
// optional leading "L"/"R" side prefix ("LCtrl", "RShift"). Key tokens
// resolve case-insensitively against the Key enumeration via KeyFromName.
//
// custom, if non-nil, resolves modifier tokens that are not one of the
// five built-in roles, typically against a rule set's custom modifier
// table; pass nil when no custom modifiers are registered.
func Parse(spec string, custom ModifierResolver) (Combo, error) {
	tokens := strings.Split(spec, "-")
	if len(tokens) == 0 || tokens[len(tokens)-1] == "" {
		return Combo{}, fmt.Errorf("%w: %q: missing base key", ErrInvalidCombo, spec)
	}

	keyTok := tokens[len(tokens)-1]
	modTokens := tokens[:len(tokens)-1]

	key := KeyFromName(keyTok)
	if key == KeyNone {
		return Combo{}, fmt.Errorf("%w: %q: unknown key %q", ErrInvalidCombo, spec, keyTok)
	}

	combo := Combo{Key: key}
	seen := make(map[Modifier]bool, len(modTokens))

	for _, tok := range modTokens {
		if tok == "" {
			return Combo{}, fmt.Errorf("%w: %q: empty modifier token", ErrInvalidCombo, spec)
		}

		side := SideEither
		mod, ok := BuiltinModifierFromName(tok)
		if !ok && len(tok) > 1 {
			switch tok[0] {
			case 'L', 'l':
				if m, sided := BuiltinModifierFromName(tok[1:]); sided {
					mod, ok, side = m, true, SideLeft
				}
			case 'R', 'r':
				if m, sided := BuiltinModifierFromName(tok[1:]); sided {
					mod, ok, side = m, true, SideRight
				}
			}
		}
		// Custom modifiers have no side concept; resolve against the
		// full, unstripped token.
		if !ok && custom != nil {
			mod, ok = custom(foldName(tok))
		}
		if !ok {
			return Combo{}, fmt.Errorf("%w: %q: unknown modifier %q", ErrInvalidCombo, spec, tok)
		}

		if seen[mod] {
			return Combo{}, fmt.Errorf("%w: %q: duplicate modifier %q", ErrInvalidCombo, spec, tok)
		}
		seen[mod] = true

		combo.Mods = combo.Mods.With(mod)
		if side != SideEither {
			combo.Sides = append(combo.Sides, SidedModifier{Mod: mod, Side: side})
		}
	}

	return combo, nil
}

// ModifierResolver resolves a case-folded modifier token that did not match
// one of the five built-in roles, typically against a rule set's
// add_modifier table.
type ModifierResolver func(foldedName string) (Modifier, bool)

// MustParse parses spec with no custom modifier resolver and panics on
// error. Reserved for known-valid specs in tests and initialization code.
func MustParse(spec string) Combo {
	c, err := Parse(spec, nil)
	if err != nil {
		panic(err)
	}
	return c
}
