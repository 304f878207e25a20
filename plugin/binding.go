package plugin

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/plugkit/plugin/lua"
)

// binding is one row of a plugin table's events array: an event name tied
// to a handler function on the table.
type binding struct {
	event   string
	handler string
}

// readBindings extracts the ordered event bindings from a plugin table.
// The events field, when present, must be an array of rows:
//
//	events = {
//	    { event = "buffer.saved", handler = "on_saved" },
//	    { handler = "on_close" }, -- event defaults to the handler name
//	}
//
// The array part of the table preserves declaration order, which fixes the
// registration order of the unit's listeners.
func readBindings(b *plua.Bridge, tbl *lua.LTable) ([]binding, error) {
	events, ok := b.TableTable(tbl, "events")
	if !ok {
		return nil, nil
	}

	n := events.Len()
	bindings := make([]binding, 0, n)
	for i := 1; i <= n; i++ {
		row, ok := events.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%w: events[%d] is not a table", ErrBadBinding, i)
		}

		handler, ok := b.TableString(row, "handler")
		if !ok || handler == "" {
			return nil, fmt.Errorf("%w: events[%d] has no handler", ErrBadBinding, i)
		}
		if tbl.RawGetString(handler).Type() != lua.LTFunction {
			return nil, fmt.Errorf("%w: handler %q is not a function", ErrBadBinding, handler)
		}

		name, ok := b.TableString(row, "event")
		if !ok || name == "" {
			name = handler
		}

		bindings = append(bindings, binding{event: name, handler: handler})
	}

	return bindings, nil
}
