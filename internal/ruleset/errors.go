package ruleset

import "fmt"

// ErrBadPredicate is returned by CompileExpr when a string predicate
// cannot be parsed, wrapped by the caller into errkind.ConfigError.
type ErrBadPredicate struct {
	Expr   string
	Reason string
}

func (e *ErrBadPredicate) Error() string {
	return fmt.Sprintf("ruleset: bad predicate %q: %s", e.Expr, e.Reason)
}

// ErrDuplicateModifier is returned by Set.AddCustomModifier when name
// collides with a builtin or an already-registered custom modifier.
type ErrDuplicateModifier struct {
	Name string
}

func (e *ErrDuplicateModifier) Error() string {
	return fmt.Sprintf("ruleset: modifier %q already registered", e.Name)
}

// ErrUnknownKey is returned when a rule references a Key name the
// keycode package does not recognize.
type ErrUnknownKey struct {
	Name string
}

func (e *ErrUnknownKey) Error() string {
	return fmt.Sprintf("ruleset: unknown key %q", e.Name)
}

// ErrEmptyKeymap is returned by Validate when a Keymap has no bindings
// — almost certainly a configuration mistake.
type ErrEmptyKeymap struct {
	Name string
}

func (e *ErrEmptyKeymap) Error() string {
	return fmt.Sprintf("ruleset: keymap %q has no bindings", e.Name)
}
