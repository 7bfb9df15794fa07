package keycode

import "fmt"

// SidedModifier names one modifier role within a Combo, optionally
// constrained to its left or right physical key.
type SidedModifier struct {
	Mod  Modifier
	Side Side
}

// Combo is a modifier mask plus a base key, with optional per-modifier
// side constraints.
type Combo struct {
	// Mods is the logical OR of every modifier role required, regardless
	// of side.
	Mods Modifier

	// Sides holds the side constraint for each sided modifier token that
	// appeared in the parsed spec (e.g. "LCtrl" contributes
	// {ModifierCtrl, SideLeft}). A modifier present in Mods but absent
	// from Sides matches either side.
	Sides []SidedModifier

	// Key is the base key.
	Key Key
}

// SideFor returns the side constraint for mod, or SideEither if mod has no
// explicit side constraint in this combo.
func (c Combo) SideFor(mod Modifier) Side {
	for _, sm := range c.Sides {
		if sm.Mod == mod {
			return sm.Side
		}
	}
	return SideEither
}

// Equal reports whether two combos denote the same mask, key, and side
// constraints (order of Sides does not matter).
func (c Combo) Equal(other Combo) bool {
	if c.Mods != other.Mods || c.Key != other.Key {
		return false
	}
	if len(c.Sides) != len(other.Sides) {
		return false
	}
	for _, sm := range c.Sides {
		if other.SideFor(sm.Mod) != sm.Side {
			return false
		}
	}
	return true
}

// String formats c in the canonical "(<Mod>-)*<Key>" form accepted by
// Parse, using side-qualified tokens ("LCtrl") where a side constraint is
// present.
func (c Combo) String() string {
	s := ""
	for _, e := range builtinModifierNames {
		if !c.Mods.Has(e.mod) {
			continue
		}
		tok := e.name
		switch c.SideFor(e.mod) {
		case SideLeft:
			tok = "L" + tok
		case SideRight:
			tok = "R" + tok
		}
		s += tok + "-"
	}
	return s + c.Key.String()
}

func (c Combo) GoString() string {
	return fmt.Sprintf("Combo(%s)", c.String())
}
