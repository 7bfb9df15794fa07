package ruleset

import (
	"fmt"
	"sort"

	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/keycode"
)

// Rule pairs a Predicate guard with the payload an ordered-list rule
// table carries — a Modmap maps Key to Key, a MultipurposeModmap maps
// Key to a MultipurposeEntry, a Keymap maps Combo to action.Action.
type Rule[T any] struct {
	Name      string
	Predicate Predicate
	Entries   map[keycode.Key]T
}

// lookup returns r's payload for key and whether r contains key. It does
// not evaluate r.Predicate; callers check that first.
func (r Rule[T]) lookup(key keycode.Key) (T, bool) {
	v, ok := r.Entries[key]
	return v, ok
}

// MultipurposeEntry describes one dual-role key's tap/hold behavior:
// Tap fires if the key is released before the multipurpose timeout with
// nothing else pressed meanwhile; Hold (plus HoldSide) is the modifier
// role it assumes otherwise.
type MultipurposeEntry struct {
	Tap      action.Action
	Hold     keycode.Modifier
	HoldSide keycode.Side
	// Timeout overrides the engine-wide multipurpose timeout for this
	// key when non-zero.
	Timeout int64 // milliseconds; 0 means "use the engine default"
}

// CustomModifier is a rule-set-defined modifier role registered via
// Set.AddCustomModifier: it names a Modifier bit above
// keycode.CustomModifierBase and the set of physical keys that hold it.
type CustomModifier struct {
	Name    string
	Aliases []string
	Bit     keycode.Modifier
	Keys    []keycode.Key
}

// comboKey returns a canonical, collision-free map key for c, covering
// custom modifier bits that keycode.Combo.String() does not render
// (its formatting only walks the five built-in roles).
func comboKey(c keycode.Combo) string {
	sides := append([]keycode.SidedModifier(nil), c.Sides...)
	sort.Slice(sides, func(i, j int) bool { return sides[i].Mod < sides[j].Mod })
	return fmt.Sprintf("%d:%d:%v", c.Mods, c.Key, sides)
}
