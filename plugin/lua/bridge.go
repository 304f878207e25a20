package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua for a single state.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a Bridge for the given state.
func NewBridge(s *State) *Bridge {
	return &Bridge{L: s.L}
}

// ToLua converts a Go value to a Lua value. Unhandled types become
// userdata so they round-trip through ToGo unchanged.
func (b *Bridge) ToLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case []any:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, b.ToLua(e))
		}
		return t
	case []string:
		t := b.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, lua.LString(e))
		}
		return t
	case map[string]any:
		t := b.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, b.ToLua(e))
		}
		return t
	case map[string]string:
		t := b.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, lua.LString(e))
		}
		return t
	case lua.LValue:
		return val
	default:
		ud := b.L.NewUserData()
		ud.Value = v
		return ud
	}
}

// ToGo converts a Lua value to a Go value. Numbers with no fractional part
// become int64, tables become []any or map[string]any, functions become nil.
func (b *Bridge) ToGo(lv lua.LValue) any {
	return b.toGo(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // break the cycle
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a table to a slice when its keys are the contiguous
// integers 1..n, and to a map otherwise.
func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	total := 0
	t.ForEach(func(_, _ lua.LValue) {
		total++
	})

	if n > 0 && n == total {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGo(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, total)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = b.toGo(v, visited)
	})
	return m
}

// TableString returns a string field of a table.
func (b *Bridge) TableString(t *lua.LTable, key string) (string, bool) {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s), true
	}
	return "", false
}

// TableTable returns a table field of a table.
func (b *Bridge) TableTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	if tt, ok := t.RawGetString(key).(*lua.LTable); ok {
		return tt, true
	}
	return nil, false
}

// TableStrings returns a string-array field of a table.
func (b *Bridge) TableStrings(t *lua.LTable, key string) []string {
	tt, ok := b.TableTable(t, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, tt.Len())
	for i := 1; i <= tt.Len(); i++ {
		if s, ok := tt.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
