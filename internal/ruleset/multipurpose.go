package ruleset

import (
	"github.com/dshills/keyremap/internal/keycode"
	"github.com/dshills/keyremap/internal/wmcontext"
)

// MultipurposeModmap is the ordered list of predicate-guarded dual-role
// key tables. The first matching rule containing the physical key wins;
// that key enters the multipurpose state machine.
type MultipurposeModmap struct {
	rules []Rule[MultipurposeEntry]
}

// NewMultipurposeModmap returns an empty MultipurposeModmap ready for Add.
func NewMultipurposeModmap() *MultipurposeModmap {
	return &MultipurposeModmap{}
}

// Add appends a predicate-guarded dual-role table. Earlier entries take
// precedence.
func (m *MultipurposeModmap) Add(name string, pred Predicate, entries map[keycode.Key]MultipurposeEntry) *MultipurposeModmap {
	if pred == nil {
		pred = Always
	}
	m.rules = append(m.rules, Rule[MultipurposeEntry]{Name: name, Predicate: pred, Entries: entries})
	return m
}

// Lookup returns the dual-role entry for key under ctx, if any rule
// containing it currently matches.
func (m *MultipurposeModmap) Lookup(ctx *wmcontext.Context, key keycode.Key) (MultipurposeEntry, bool) {
	for _, r := range m.rules {
		if !r.Predicate(ctx) {
			continue
		}
		if entry, ok := r.lookup(key); ok {
			return entry, true
		}
	}
	return MultipurposeEntry{}, false
}
