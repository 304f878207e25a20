package event

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// Listener handles a dispatched event. Every listener for an event receives
// the identical argument slice. Returning a non-nil error aborts the
// remaining listeners for that dispatch.
type Listener func(args ...any) error

// Registry manages named events and their listeners.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	strict   bool
	declared map[string]struct{}
	exact    map[string][]registration
	patterns []patternEntry

	// Monotonic registration counter. Dispatch order is global
	// registration order across exact and pattern listeners.
	seq uint64
}

// registration is one attached listener.
type registration struct {
	id  string
	seq uint64
	fn  Listener
}

// patternEntry is a listener attached to a glob pattern instead of an
// exact event name.
type patternEntry struct {
	registration
	pattern string
	matcher glob.Glob
}

// Option configures a Registry.
type Option func(*Registry)

// WithStrict requires event names to be declared before registration or
// dispatch. Strictness is fixed at construction.
func WithStrict() Option {
	return func(r *Registry) {
		r.strict = true
	}
}

// NewRegistry creates a new event registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		declared: make(map[string]struct{}),
		exact:    make(map[string][]registration),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strict reports whether the registry requires declared event names.
func (r *Registry) Strict() bool {
	return r.strict
}

// Declare adds event names to the declared set. Declaring a name twice is
// not an error and has no effect on existing listeners.
func (r *Registry) Declare(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if name == "" {
			return ErrInvalidName
		}
		r.declared[name] = struct{}{}
	}
	return nil
}

// Register appends a listener for an event name and returns a registration
// ID usable with Unregister. Registering the same function twice is allowed
// and results in it firing once per registration.
//
// On a strict registry, registering against an undeclared name fails with
// ErrUnknownEvent.
func (r *Registry) Register(name string, fn Listener) (string, error) {
	if name == "" {
		return "", ErrInvalidName
	}
	if fn == nil {
		return "", ErrNilListener
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.strict {
		if _, ok := r.declared[name]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownEvent, name)
		}
	}

	r.seq++
	reg := registration{id: uuid.NewString(), seq: r.seq, fn: fn}
	r.exact[name] = append(r.exact[name], reg)
	return reg.id, nil
}

// RegisterPattern appends a listener for every event whose name matches the
// glob pattern. Patterns use '.' as the segment separator: "buffer.*"
// matches "buffer.saved" but not "buffer.undo.redo".
//
// A pattern is not an event name, so pattern listeners are exempt from the
// strict-mode declare check; the check still applies to the name passed to
// Call.
func (r *Registry) RegisterPattern(pattern string, fn Listener) (string, error) {
	if pattern == "" {
		return "", ErrInvalidName
	}
	if fn == nil {
		return "", ErrNilListener
	}

	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entry := patternEntry{
		registration: registration{id: uuid.NewString(), seq: r.seq, fn: fn},
		pattern:      pattern,
		matcher:      g,
	}
	r.patterns = append(r.patterns, entry)
	return entry.id, nil
}

// Unregister removes the listener with the given registration ID.
// It returns false if no such registration exists.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, regs := range r.exact {
		for i, reg := range regs {
			if reg.id == id {
				r.exact[name] = append(regs[:i], regs[i+1:]...)
				if len(r.exact[name]) == 0 {
					delete(r.exact, name)
				}
				return true
			}
		}
	}

	for i, entry := range r.patterns {
		if entry.id == id {
			r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
			return true
		}
	}

	return false
}

// Call dispatches an event, invoking every matching listener synchronously
// in registration order with the identical arguments. A name with no
// listeners is a no-op.
//
// On a strict registry, calling an undeclared name fails with
// ErrUnknownEvent. The first listener error aborts the remaining listeners
// and is returned wrapped with the event name.
func (r *Registry) Call(name string, args ...any) error {
	if name == "" {
		return ErrInvalidName
	}

	// Snapshot under the read lock, invoke outside it. A listener that
	// re-enters the registry sees a consistent view and cannot deadlock
	// or corrupt the in-flight dispatch.
	r.mu.RLock()
	if r.strict {
		if _, ok := r.declared[name]; !ok {
			r.mu.RUnlock()
			return fmt.Errorf("%w: %q", ErrUnknownEvent, name)
		}
	}

	snapshot := make([]registration, 0, len(r.exact[name]))
	snapshot = append(snapshot, r.exact[name]...)
	for _, entry := range r.patterns {
		if entry.matcher.Match(name) {
			snapshot = append(snapshot, entry.registration)
		}
	}
	r.mu.RUnlock()

	if len(snapshot) == 0 {
		return nil
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].seq < snapshot[j].seq
	})

	for _, reg := range snapshot {
		if err := reg.fn(args...); err != nil {
			return fmt.Errorf("event %q: %w", name, err)
		}
	}
	return nil
}

// Declared returns the declared event names in sorted order.
func (r *Registry) Declared() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.declared))
	for name := range r.declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsDeclared reports whether an event name has been declared.
func (r *Registry) IsDeclared(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.declared[name]
	return ok
}

// Len returns the number of listeners registered for an exact event name.
// Pattern listeners are not counted.
func (r *Registry) Len(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.exact[name])
}

// Count returns the total number of registrations, exact and pattern.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.patterns)
	for _, regs := range r.exact {
		n += len(regs)
	}
	return n
}
