package ruleset

import (
	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// Binding pairs one Combo with the Action it triggers.
type Binding struct {
	Combo  keycode.Combo
	Action action.Action
}

// keymapRule is one predicate-guarded table of bindings contributed to a
// Keymap. Matching rules are composed into one lookup, earlier entries
// shadowing later ones for duplicate combos.
type keymapRule struct {
	Name      string
	Predicate Predicate
	Bindings  []Binding
}

// Keymap is a named, possibly-nested rule table: a top-level Keymap is
// the outer combo→action lookup; a Keymap reachable only via
// action.EnterSubmap is a multi-stroke submap awaiting its second combo.
type Keymap struct {
	Name  string
	rules []keymapRule
}

// NewKeymap returns an empty, named Keymap ready for Add.
func NewKeymap(name string) *Keymap {
	return &Keymap{Name: name}
}

// Add appends a predicate-guarded binding table. Earlier-added tables
// shadow later ones for duplicate combos once composed.
func (k *Keymap) Add(name string, pred Predicate, bindings []Binding) *Keymap {
	if pred == nil {
		pred = Always
	}
	k.rules = append(k.rules, keymapRule{Name: name, Predicate: pred, Bindings: bindings})
	return k
}

// Compose filters k's rule tables by ctx and flattens them into one
// ordered binding list, dropping exact-duplicate combos in favor of the
// earlier rule. The engine calls Compose on every combo lookup; the
// result is not cached.
func (k *Keymap) Compose(ctx *wmcontext.Context) []Binding {
	var out []Binding
	seen := make(map[string]bool)
	for _, r := range k.rules {
		if !r.Predicate(ctx) {
			continue
		}
		for _, b := range r.Bindings {
			ck := comboKey(b.Combo)
			if seen[ck] {
				continue // earlier rule already claimed this combo
			}
			seen[ck] = true
			out = append(out, b)
		}
	}
	return out
}

// Match resolves (mods, key) against a composed binding list. satisfies
// reports whether the physically held side state for a modifier role
// meets a binding's side constraint (SideEither always does). Among
// matching bindings, one with more side constraints shadows an unsided
// equivalent; remaining ties go to the earlier composed binding.
func Match(composed []Binding, mods keycode.Modifier, key keycode.Key, satisfies func(keycode.Modifier, keycode.Side) bool) (action.Action, bool) {
	bestIdx := -1
	bestSides := -1
	for i, b := range composed {
		if b.Combo.Mods != mods || b.Combo.Key != key {
			continue
		}
		ok := true
		for _, sm := range b.Combo.Sides {
			if !satisfies(sm.Mod, sm.Side) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(b.Combo.Sides) > bestSides {
			bestIdx, bestSides = i, len(b.Combo.Sides)
		}
	}
	if bestIdx == -1 {
		return nil, false
	}
	return composed[bestIdx].Action, true
}

// Validate reports a configuration error if k (or any nested submap
// reachable from its bindings) has no bindings at all.
func (k *Keymap) Validate() error {
	if len(k.rules) == 0 {
		return &ErrEmptyKeymap{Name: k.Name}
	}
	hasBindings := false
	for _, r := range k.rules {
		if len(r.Bindings) > 0 {
			hasBindings = true
		}
		for _, b := range r.Bindings {
			if sub, ok := b.Action.(action.EnterSubmap); ok {
				if nested, ok := sub.Keymap.(*Keymap); ok {
					if err := nested.Validate(); err != nil {
						return err
					}
				}
			}
		}
	}
	if !hasBindings {
		return &ErrEmptyKeymap{Name: k.Name}
	}
	return nil
}
