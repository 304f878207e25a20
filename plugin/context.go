package plugin

import (
	"sort"

	plua "github.com/dshills/plugkit/plugin/lua"
)

// Context is the immutable bag of named values a Kind shares with every
// unit it instantiates. The value map is copied at construction; mutating
// the original map afterwards has no effect on the Context.
//
// Each unit receives its own materialization of the context, so a unit
// mutating its view does not affect siblings. Shared mutable Go values
// (injected as userdata) remain shared by reference.
type Context struct {
	values map[string]any
}

// NewContext creates a Context from the given values.
func NewContext(values map[string]any) Context {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Context{values: copied}
}

// Value returns a context value by name.
func (c Context) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the context value names in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of context values.
func (c Context) Len() int {
	return len(c.values)
}

// inject materializes the context as the ctx global of a unit's state.
// It runs before the unit's chunk, so plugin code can read ctx at load
// time. A ctx global the chunk would define itself is silently shadowed.
func (c Context) inject(s *plua.State, b *plua.Bridge) {
	s.SetGlobal("ctx", b.ToLua(c.values))
}
