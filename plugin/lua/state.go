package lua

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua LState for executing one plugin unit.
//
// The mutex serializes access from Go code. Lua execution itself is
// single-threaded and a running chunk cannot be interrupted.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// NewState creates a Lua state with only the safe standard libraries open.
func NewState() *State {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// io, os, debug, and package stay closed. Units compute over the
	// values the host hands them; they do not touch the system.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	return &State{L: L}
}

// DoFile executes a Lua file. The call blocks until the chunk completes
// or errors; panics inside the runtime are converted to errors.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.recovered(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua source string.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	return s.recovered(func() error {
		return s.L.DoString(code)
	})
}

// Global returns a global variable, or lua.LNil if the state is closed.
func (s *State) Global(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// CallTable invokes a function field of a table with the table itself as
// the first argument (method-call convention), returning all results.
func (s *State) CallTable(t *lua.LTable, field string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn := t.RawGetString(field)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: field %q is %s", ErrNotFunction, field, fn.Type())
	}

	top := s.L.GetTop()

	s.L.Push(fn)
	s.L.Push(t)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := s.recovered(func() error {
		return s.L.PCall(len(args)+1, lua.MultRet, nil)
	})
	if err != nil {
		return nil, err
	}

	nret := s.L.GetTop() - top
	if nret <= 0 {
		return nil, nil
	}
	results := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(nret)

	return results, nil
}

// recovered runs fn, converting a runtime panic into an error.
// Must be called with mu held.
func (s *State) recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the underlying Lua state. Further calls on the State
// return ErrStateClosed. Close is idempotent.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
