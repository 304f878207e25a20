package lua

import (
	"reflect"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func newTestBridge(t *testing.T) (*State, *Bridge) {
	t.Helper()
	s := NewState()
	t.Cleanup(func() { s.Close() })
	return s, NewBridge(s)
}

func TestBridge_ToLua_Scalars(t *testing.T) {
	_, b := newTestBridge(t)

	tests := []struct {
		name string
		in   any
		want lua.LValue
	}{
		{"nil", nil, lua.LNil},
		{"bool", true, lua.LTrue},
		{"int", 7, lua.LNumber(7)},
		{"int64", int64(9), lua.LNumber(9)},
		{"float", 2.5, lua.LNumber(2.5)},
		{"string", "hi", lua.LString("hi")},
		{"bytes", []byte("raw"), lua.LString("raw")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ToLua(tt.in); got != tt.want {
				t.Errorf("ToLua(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBridge_ToLua_Map(t *testing.T) {
	_, b := newTestBridge(t)

	v := b.ToLua(map[string]any{"n": 1, "s": "x"})
	tbl, ok := v.(*lua.LTable)
	if !ok {
		t.Fatalf("ToLua(map) = %T, want *lua.LTable", v)
	}
	if tbl.RawGetString("n") != lua.LNumber(1) {
		t.Errorf("n = %v, want 1", tbl.RawGetString("n"))
	}
	if tbl.RawGetString("s") != lua.LString("x") {
		t.Errorf("s = %v, want x", tbl.RawGetString("s"))
	}
}

func TestBridge_ToLua_Slice(t *testing.T) {
	_, b := newTestBridge(t)

	v := b.ToLua([]any{"a", 2})
	tbl, ok := v.(*lua.LTable)
	if !ok {
		t.Fatalf("ToLua(slice) = %T, want *lua.LTable", v)
	}
	if tbl.Len() != 2 {
		t.Errorf("len = %d, want 2", tbl.Len())
	}
	if tbl.RawGetInt(1) != lua.LString("a") {
		t.Errorf("[1] = %v, want a", tbl.RawGetInt(1))
	}
}

func TestBridge_ToLua_Userdata(t *testing.T) {
	_, b := newTestBridge(t)

	type opaque struct{ n int }
	v := &opaque{n: 3}

	lv := b.ToLua(v)
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		t.Fatalf("ToLua(struct ptr) = %T, want *lua.LUserData", lv)
	}
	if b.ToGo(ud) != v {
		t.Error("userdata should round-trip by reference")
	}
}

func TestBridge_ToGo_Scalars(t *testing.T) {
	_, b := newTestBridge(t)

	if got := b.ToGo(lua.LNumber(3)); got != int64(3) {
		t.Errorf("whole number = %v (%T), want int64(3)", got, got)
	}
	if got := b.ToGo(lua.LNumber(1.5)); got != 1.5 {
		t.Errorf("fractional number = %v, want 1.5", got)
	}
	if got := b.ToGo(lua.LString("s")); got != "s" {
		t.Errorf("string = %v, want s", got)
	}
	if got := b.ToGo(lua.LTrue); got != true {
		t.Errorf("bool = %v, want true", got)
	}
	if got := b.ToGo(lua.LNil); got != nil {
		t.Errorf("nil = %v, want nil", got)
	}
}

func TestBridge_ToGo_ArrayTable(t *testing.T) {
	s, b := newTestBridge(t)

	if err := s.DoString(`t = { "a", "b", "c" }`); err != nil {
		t.Fatal(err)
	}

	got := b.ToGo(s.Global("t"))
	want := []any{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToGo(array table) = %v, want %v", got, want)
	}
}

func TestBridge_ToGo_MapTable(t *testing.T) {
	s, b := newTestBridge(t)

	if err := s.DoString(`t = { name = "x", count = 2 }`); err != nil {
		t.Fatal(err)
	}

	got, ok := b.ToGo(s.Global("t")).(map[string]any)
	if !ok {
		t.Fatalf("ToGo(map table) is %T, want map[string]any", b.ToGo(s.Global("t")))
	}
	if got["name"] != "x" || got["count"] != int64(2) {
		t.Errorf("ToGo(map table) = %v", got)
	}
}

func TestBridge_ToGo_CircularTable(t *testing.T) {
	s, b := newTestBridge(t)

	if err := s.DoString(`t = { name = "loop" } t.self = t`); err != nil {
		t.Fatal(err)
	}

	// Must terminate; the cycle collapses to nil.
	got, ok := b.ToGo(s.Global("t")).(map[string]any)
	if !ok {
		t.Fatal("expected map")
	}
	if got["name"] != "loop" {
		t.Errorf("name = %v", got["name"])
	}
	if got["self"] != nil {
		t.Errorf("circular reference = %v, want nil", got["self"])
	}
}

func TestBridge_TableHelpers(t *testing.T) {
	s, b := newTestBridge(t)

	code := `t = { s = "str", sub = { 1 }, list = { "a", "b" }, n = 5 }`
	if err := s.DoString(code); err != nil {
		t.Fatal(err)
	}
	tbl := s.Global("t").(*lua.LTable)

	if v, ok := b.TableString(tbl, "s"); !ok || v != "str" {
		t.Errorf("TableString(s) = %q, %v", v, ok)
	}
	if _, ok := b.TableString(tbl, "n"); ok {
		t.Error("TableString(n) should be false for a number")
	}
	if _, ok := b.TableTable(tbl, "sub"); !ok {
		t.Error("TableTable(sub) should be true")
	}
	if got := b.TableStrings(tbl, "list"); len(got) != 2 || got[0] != "a" {
		t.Errorf("TableStrings(list) = %v", got)
	}
	if got := b.TableStrings(tbl, "missing"); got != nil {
		t.Errorf("TableStrings(missing) = %v, want nil", got)
	}
}
