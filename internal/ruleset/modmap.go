package ruleset

import (
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// Modmap is the ordered list of predicate-guarded key-identity
// substitutions. The first matching rule containing the physical key
// wins; its mapping replaces the key identity before any other
// processing.
type Modmap struct {
	rules []Rule[keycode.Key]
}

// NewModmap returns an empty Modmap ready for Add.
func NewModmap() *Modmap {
	return &Modmap{}
}

// Add appends a predicate-guarded substitution table to the end of the
// list. Rules added earlier take precedence.
func (m *Modmap) Add(name string, pred Predicate, entries map[keycode.Key]keycode.Key) *Modmap {
	if pred == nil {
		pred = Always
	}
	m.rules = append(m.rules, Rule[keycode.Key]{Name: name, Predicate: pred, Entries: entries})
	return m
}

// Resolve returns the effective key for input, substituting it per the
// first matching rule that contains it, or input unchanged if none
// match.
func (m *Modmap) Resolve(ctx *wmcontext.Context, input keycode.Key) keycode.Key {
	for _, r := range m.rules {
		if !r.Predicate(ctx) {
			continue
		}
		if out, ok := r.lookup(input); ok {
			return out
		}
	}
	return input
}
