package ruleset

import (
	"strings"

	"github.com/tidwall/match"

	"github.com/dshills/keyremap/internal/wmcontext"
)

// Predicate decides whether a rule applies to the Context active at
// combo-resolution time. A nil Predicate always matches.
type Predicate func(ctx *wmcontext.Context) bool

// Always is the nil-equivalent Predicate that always matches.
func Always(*wmcontext.Context) bool { return true }

// WMClassGlob matches when ctx.WMClass satisfies the glob pattern
// (e.g. "firefox*").
func WMClassGlob(pattern string) Predicate {
	return func(ctx *wmcontext.Context) bool {
		return match.Match(ctx.WMClass, pattern)
	}
}

// WMNameGlob matches when ctx.WMName satisfies the glob pattern.
func WMNameGlob(pattern string) Predicate {
	return func(ctx *wmcontext.Context) bool {
		return match.Match(ctx.WMName, pattern)
	}
}

// DeviceNameGlob matches when ctx.DeviceName satisfies the glob
// pattern, so a rule can key on the physical keyboard's product string
// (a laptop's built-in keyboard vs an external one), not just window
// context.
func DeviceNameGlob(pattern string) Predicate {
	return func(ctx *wmcontext.Context) bool {
		return match.Match(ctx.DeviceName, pattern)
	}
}

// And composes predicates with logical AND.
func And(preds ...Predicate) Predicate {
	return func(ctx *wmcontext.Context) bool {
		for _, p := range preds {
			if p != nil && !p(ctx) {
				return false
			}
		}
		return true
	}
}

// Or composes predicates with logical OR. An empty Or matches nothing.
func Or(preds ...Predicate) Predicate {
	return func(ctx *wmcontext.Context) bool {
		for _, p := range preds {
			if p != nil && p(ctx) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(ctx *wmcontext.Context) bool {
		return p == nil || !p(ctx)
	}
}

// CapslockOn / NumlockOn match the corresponding Context flags.
func CapslockOn(ctx *wmcontext.Context) bool { return ctx.CapslockOn }
func NumlockOn(ctx *wmcontext.Context) bool  { return ctx.NumlockOn }

// field is the subset of Context fields the string expression evaluator
// below understands.
type field string

const (
	fieldWMClass    field = "wm_class"
	fieldWMName     field = "wm_name"
	fieldDeviceName field = "device_name"
	fieldCapslock   field = "capslock_on"
	fieldNumlock    field = "numlock_on"
)

// CompileExpr compiles a small boolean expression over Context fields —
// &&, ||, !, == — into a Predicate. This is the common case for
// predicates supplied as strings rather than as Go closures.
//
// Grammar (no parentheses; the expression is split on "||" first, so
// "&&" binds tighter than "||"):
//
//	expr := clause (("&&" | "||") clause)*
//	clause := ["!"] comparison
//	comparison := field "==" quoted-string
func CompileExpr(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always, nil
	}

	if or := splitTop(expr, "||"); len(or) > 1 {
		preds := make([]Predicate, 0, len(or))
		for _, part := range or {
			p, err := CompileExpr(part)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		return Or(preds...), nil
	}

	if and := splitTop(expr, "&&"); len(and) > 1 {
		preds := make([]Predicate, 0, len(and))
		for _, part := range and {
			p, err := CompileExpr(part)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		return And(preds...), nil
	}

	negate := false
	if strings.HasPrefix(expr, "!") {
		negate = true
		expr = strings.TrimSpace(expr[1:])
	}

	p, err := compileComparison(expr)
	if err != nil {
		return nil, err
	}
	if negate {
		return Not(p), nil
	}
	return p, nil
}

func splitTop(expr, op string) []string {
	parts := strings.Split(expr, op)
	if len(parts) < 2 {
		return []string{expr}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func compileComparison(expr string) (Predicate, error) {
	idx := strings.Index(expr, "==")
	if idx == -1 {
		return nil, &ErrBadPredicate{Expr: expr, Reason: "expected field == value"}
	}
	fieldName := field(strings.TrimSpace(expr[:idx]))
	value := strings.Trim(strings.TrimSpace(expr[idx+2:]), `"'`)

	switch fieldName {
	case fieldWMClass:
		return WMClassGlob(value), nil
	case fieldWMName:
		return WMNameGlob(value), nil
	case fieldDeviceName:
		return DeviceNameGlob(value), nil
	case fieldCapslock:
		want := value == "true"
		return func(ctx *wmcontext.Context) bool { return ctx.CapslockOn == want }, nil
	case fieldNumlock:
		want := value == "true"
		return func(ctx *wmcontext.Context) bool { return ctx.NumlockOn == want }, nil
	default:
		return nil, &ErrBadPredicate{Expr: expr, Reason: "unknown field " + string(fieldName)}
	}
}
