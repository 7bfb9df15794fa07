package keycode

// Modifier identifies a logical modifier role: Control, Alt, Shift, Super,
// Fn, or a user-defined role such as Hyper. Built-in roles
// occupy the low bits; custom modifiers registered by a rule set are
// assigned bits starting at CustomModifierBase.
type Modifier uint32

// ModNone is the zero value: no modifiers held.
const ModNone Modifier = 0

const (
	modCtrlBit  = 0
	modAltBit   = 1
	modShiftBit = 2
	modSuperBit = 3
	modFnBit    = 4

	// CustomModifierBase is the first bit available to rule-set-defined
	// modifiers registered via AddCustomModifier. Bits below this
	// are reserved for the five built-in roles.
	CustomModifierBase = 8
)

const (
	// ModifierCtrl is the Control role.
	ModifierCtrl Modifier = 1 << modCtrlBit
	// ModifierAlt is the Alt role.
	ModifierAlt Modifier = 1 << modAltBit
	// ModifierShift is the Shift role.
	ModifierShift Modifier = 1 << modShiftBit
	// ModifierSuper is the Super/Win/Cmd role.
	ModifierSuper Modifier = 1 << modSuperBit
	// ModifierFn is the Fn role.
	ModifierFn Modifier = 1 << modFnBit
)

// Side constrains a modifier reference to a particular physical key when a
// combo names "LCtrl" or "RCtrl" instead of the unsided "Ctrl".
type Side uint8

const (
	// SideEither matches either the left or right physical key for the role.
	SideEither Side = iota
	SideLeft
	SideRight
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return mod != ModNone && m&mod == mod
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns m with mod removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty reports whether no modifier bits are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// builtinModifierNames lists the five built-in roles in canonical order,
// used both for String() and for combo formatting.
var builtinModifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModifierCtrl, "Ctrl"},
	{ModifierAlt, "Alt"},
	{ModifierShift, "Shift"},
	{ModifierSuper, "Super"},
	{ModifierFn, "Fn"},
}

// modifierAliases maps every accepted alias spelling (already case-folded)
// onto its canonical built-in Modifier.
var modifierAliases = map[string]Modifier{
	"ctrl":    ModifierCtrl,
	"control": ModifierCtrl,
	"c":       ModifierCtrl,
	"alt":     ModifierAlt,
	"shift":   ModifierShift,
	"super":   ModifierSuper,
	"win":     ModifierSuper,
	"command": ModifierSuper,
	"cmd":     ModifierSuper,
	"fn":      ModifierFn,
}

// BuiltinModifierFromName resolves a built-in modifier alias, case folded.
// Returns (ModNone, false) for unknown tokens or custom-modifier names
// (those are resolved by the rule set's custom modifier table instead).
func BuiltinModifierFromName(name string) (Modifier, bool) {
	mod, ok := modifierAliases[foldName(name)]
	return mod, ok
}

// String renders m using the canonical built-in names, hyphen-joined, in
// the fixed Ctrl-Alt-Shift-Super-Fn order.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}
	s := ""
	for _, e := range builtinModifierNames {
		if m.Has(e.mod) {
			if s != "" {
				s += "-"
			}
			s += e.name
		}
	}
	return s
}
