package wmcontext

import "context"

// Context is the immutable snapshot consumed by rule predicates. The
// zero value is the "provider failed" context: every field empty or
// false, against which no field-specific predicate matches.
type Context struct {
	WMClass    string
	WMName     string
	DeviceName string
	CapslockOn bool
	NumlockOn  bool
}

// Provider supplies a Context snapshot on demand. Implementations must
// bound their own latency; the engine calls Snapshot synchronously from
// the event loop and cannot itself enforce a timeout beyond the one it
// gives each call via ctx.
type Provider interface {
	Snapshot(ctx context.Context) Context
}

// Empty is the context returned by the fallback provider and by any
// provider that fails to produce a real snapshot in time.
var Empty = Context{}
