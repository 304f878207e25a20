package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestNewState(t *testing.T) {
	s := NewState()
	defer s.Close()

	if s.IsClosed() {
		t.Error("new state should not be closed")
	}
}

func TestState_DoString(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`x = 1 + 2`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	v := s.Global("x")
	if n, ok := v.(lua.LNumber); !ok || n != 3 {
		t.Errorf("x = %v, want 3", v)
	}
}

func TestState_DoString_SyntaxError(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`this is not lua`); err == nil {
		t.Error("expected error for invalid Lua")
	}
}

func TestState_DoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.lua")
	if err := os.WriteFile(path, []byte(`answer = 42`), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewState()
	defer s.Close()

	if err := s.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if n, ok := s.Global("answer").(lua.LNumber); !ok || n != 42 {
		t.Errorf("answer = %v, want 42", s.Global("answer"))
	}
}

func TestState_DoFile_Missing(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoFile(filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestState_SafeLibrariesOnly(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, g := range []string{"io", "os", "debug", "package"} {
		if s.Global(g) != lua.LNil {
			t.Errorf("global %q should not be open", g)
		}
	}
	for _, g := range []string{"string", "table", "math"} {
		if s.Global(g) == lua.LNil {
			t.Errorf("global %q should be open", g)
		}
	}
}

func TestState_CallTable(t *testing.T) {
	s := NewState()
	defer s.Close()

	code := `
Thing = { total = 0 }
function Thing.add(self, n)
    self.total = self.total + n
    return self.total
end`
	if err := s.DoString(code); err != nil {
		t.Fatal(err)
	}

	tbl := s.Global("Thing").(*lua.LTable)

	results, err := s.CallTable(tbl, "add", lua.LNumber(5))
	if err != nil {
		t.Fatalf("CallTable() error = %v", err)
	}
	if len(results) != 1 || results[0] != lua.LNumber(5) {
		t.Errorf("results = %v, want [5]", results)
	}

	// Receiver state persists across calls.
	results, err = s.CallTable(tbl, "add", lua.LNumber(3))
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != lua.LNumber(8) {
		t.Errorf("second call = %v, want 8", results[0])
	}
}

func TestState_CallTable_NotFunction(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString(`Thing = { field = "value" }`); err != nil {
		t.Fatal(err)
	}
	tbl := s.Global("Thing").(*lua.LTable)

	if _, err := s.CallTable(tbl, "field"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("CallTable() error = %v, want ErrNotFunction", err)
	}
	if _, err := s.CallTable(tbl, "missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("CallTable() on missing field error = %v, want ErrNotFunction", err)
	}
}

func TestState_CallTable_RuntimeError(t *testing.T) {
	s := NewState()
	defer s.Close()

	code := `
Thing = {}
function Thing.fail(self)
    error("handler exploded")
end`
	if err := s.DoString(code); err != nil {
		t.Fatal(err)
	}
	tbl := s.Global("Thing").(*lua.LTable)

	if _, err := s.CallTable(tbl, "fail"); err == nil {
		t.Error("expected error from failing handler")
	}
}

func TestState_Close(t *testing.T) {
	s := NewState()

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !s.IsClosed() {
		t.Error("state should report closed")
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.DoString(`x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() after close error = %v, want ErrStateClosed", err)
	}
}
