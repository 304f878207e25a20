package plugin

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/plugkit/event"
	plua "github.com/dshills/plugkit/plugin/lua"
)

// Unit is one loaded plugin: the instantiated table from a single source
// file, together with its own Lua state, injected context, and any event
// registrations discovered on it.
//
// A Unit belongs to exactly one Kind and does not outlive the LoadAll call
// that produced it; a later LoadAll on the same Kind closes it.
type Unit struct {
	name   string
	path   string
	state  *plua.State
	bridge *plua.Bridge
	table  *lua.LTable
	meta   Meta

	// Registration IDs on the Kind's registry, in binding declaration
	// order. Empty when the Kind has no registry wired.
	registrations []string

	// bindings counts declared event bindings, registered or not.
	bindings int
}

// Name returns the unit name, derived from its source filename.
func (u *Unit) Name() string {
	return u.name
}

// Path returns the source file the unit was loaded from.
func (u *Unit) Path() string {
	return u.path
}

// Meta returns the unit's declared metadata.
func (u *Unit) Meta() Meta {
	return u.meta
}

// Registrations returns the event registration IDs owned by this unit.
func (u *Unit) Registrations() []string {
	return append([]string{}, u.registrations...)
}

// Bindings returns the number of event bindings the unit declared,
// whether or not a registry was wired to receive them.
func (u *Unit) Bindings() int {
	return u.bindings
}

// Call invokes a function field of the plugin table with the table itself
// as receiver, converting arguments and results between Go and Lua.
func (u *Unit) Call(method string, args ...any) ([]any, error) {
	luaArgs := make([]lua.LValue, len(args))
	for i, arg := range args {
		luaArgs[i] = u.bridge.ToLua(arg)
	}

	results, err := u.state.CallTable(u.table, method, luaArgs...)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(results))
	for i, r := range results {
		out[i] = u.bridge.ToGo(r)
	}
	return out, nil
}

// Has reports whether the plugin table has a function field of that name.
func (u *Unit) Has(method string) bool {
	return u.table.RawGetString(method).Type() == lua.LTFunction
}

// Field returns a field of the plugin table as a Go value.
func (u *Unit) Field(name string) any {
	return u.bridge.ToGo(u.table.RawGetString(name))
}

// ContextValue returns an injected context value as the unit sees it,
// reading the ctx global of the unit's state.
func (u *Unit) ContextValue(key string) any {
	ctx, ok := u.state.Global("ctx").(*lua.LTable)
	if !ok {
		return nil
	}
	return u.bridge.ToGo(ctx.RawGetString(key))
}

// Close releases the unit's Lua state.
func (u *Unit) Close() error {
	return u.state.Close()
}

// listener adapts a named handler on the plugin table into an event
// listener. When invoked, the handler runs with the plugin table as
// receiver, so it sees the unit's injected context and any state the unit
// set up.
func (u *Unit) listener(handler string) event.Listener {
	return func(args ...any) error {
		_, err := u.Call(handler, args...)
		return err
	}
}
