// Package ruleset holds the compiled modmap, multipurpose modmap, and
// keymap rule tables a configuration defines, plus the custom modifier
// registrations a rule set contributes. Each table is an ordered list
// of predicate-guarded entries; composition against a window context is
// pure and side-effect-free. Custom actions are the engine's problem,
// not this package's.
package ruleset
