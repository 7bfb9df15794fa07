// Package luahook implements action.Hook with a sandboxed gopher-lua
// callback. The source is compiled once; every invocation then runs on
// its own fresh LState with no filesystem, network, or shell access,
// cancelled through the state's context when it exceeds its wall-clock
// budget. Custom actions are a best-effort extension point whose
// failures must never corrupt engine state, so no Lua state outlives a
// single Invoke call.
package luahook

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/keyremap/internal/action"
	"github.com/dshills/keyremap/internal/keycode"
)

// DefaultTimeout bounds one invocation. The VM checks its context
// between instructions, so even a tight Lua loop with no Go calls is
// interrupted when the deadline passes. It is deliberately short: the
// callback runs on the hot path, once per matched key-down.
const DefaultTimeout = 25 * time.Millisecond

// Hook runs a compiled Lua function as an action.Hook. It holds only
// the compiled prototype; the LState executing it is created per
// invocation and closed before Invoke returns, so a timed-out call can
// never race a later one.
type Hook struct {
	name    string
	proto   *lua.FunctionProto
	timeout time.Duration
}

// Compile parses source as a Lua chunk and returns a Hook that calls it
// on every Invoke. The chunk must return a function value; Invoke
// reports an error when it returns anything else.
func Compile(name, source string) (*Hook, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, fmt.Errorf("luahook %q: parsing: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("luahook %q: compiling: %w", name, err)
	}
	return &Hook{
		name:    name,
		proto:   proto,
		timeout: DefaultTimeout,
	}, nil
}

// newSandboxedState builds the per-invocation LState: only the base,
// table, string, and math libraries, minus anything that loads code.
func newSandboxedState() *lua.LState {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, pair := range []struct {
		name string
		fn   func(*lua.LState) int
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		pair.fn(l)
	}
	stripDangerousGlobals(l)
	return l
}

// stripDangerousGlobals removes the functions that would let a Custom
// callback load arbitrary code or escape the sandbox.
func stripDangerousGlobals(l *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		l.SetGlobal(name, lua.LNil)
	}
}

// Invoke implements action.Hook. ctx is passed through as a Lua table
// with whatever fields the caller chooses to expose (the engine passes
// wm_class/wm_name/device_name); the callback's return value, if a
// table shaped like {combo="Ctrl-C"}, is decoded into an action.Action.
//
// The call runs synchronously on a state that lives only for this
// invocation: the deadline set on the state's context makes PCall
// return once the budget is spent, whether the script is spinning in
// Lua or blocked between Go calls, and the state is closed on the way
// out either way.
func (h *Hook) Invoke(ctx any) (action.Action, error) {
	l := newSandboxedState()
	defer l.Close()

	cctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	l.SetContext(cctx)

	// Run the chunk to obtain the callback it defines.
	l.Push(l.NewFunctionFromProto(h.proto))
	if err := l.PCall(0, 1, nil); err != nil {
		return nil, fmt.Errorf("luahook %q: %w", h.name, err)
	}
	fn, ok := l.Get(-1).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("luahook %q: chunk did not return a function", h.name)
	}
	l.Pop(1)

	l.Push(fn)
	pushContext(l, ctx)
	if err := l.PCall(1, 1, nil); err != nil {
		return nil, fmt.Errorf("luahook %q: %w", h.name, err)
	}

	ret := l.Get(-1)
	l.Pop(1)
	return decodeAction(ret)
}

func pushContext(l *lua.LState, ctx any) {
	t := l.NewTable()
	if m, ok := ctx.(map[string]any); ok {
		for k, v := range m {
			switch val := v.(type) {
			case string:
				l.SetField(t, k, lua.LString(val))
			case bool:
				l.SetField(t, k, lua.LBool(val))
			}
		}
	}
	l.Push(t)
}

// decodeAction reads a Lua return value shaped like {combo="Ctrl-C"} or
// {ignore=true} and turns it into the corresponding action.Action. Any
// other shape (nil, string, number) is treated as "no follow-up
// action" and simply not executed.
func decodeAction(v lua.LValue) (action.Action, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, nil
	}

	if comboStr, ok := tbl.RawGetString("combo").(lua.LString); ok {
		combo, err := keycode.Parse(string(comboStr), nil)
		if err != nil {
			return nil, fmt.Errorf("decoding returned combo: %w", err)
		}
		return action.EmitCombo{Combo: combo}, nil
	}
	if ignore, ok := tbl.RawGetString("ignore").(lua.LBool); ok && bool(ignore) {
		return action.IgnoreNext{}, nil
	}
	return nil, nil
}

var _ action.Hook = (*Hook)(nil)
