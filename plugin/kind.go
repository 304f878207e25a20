package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/plugkit/event"
	plua "github.com/dshills/plugkit/plugin/lua"
)

// kindNamePattern validates Kind names. The name doubles as the Lua global
// every unit defines, so it must be a Lua identifier.
var kindNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Kind is one category of plugin a host accepts. It orchestrates discovery,
// loading, instantiation, context injection, and event auto-registration
// for every unit under its load path.
//
// A Kind assumes a single logical owner goroutine; LoadAll and Close
// serialize on an internal mutex but listener dispatch order and unit
// lifetime are only meaningful to one owner.
type Kind struct {
	name     string
	loader   *Loader
	context  Context
	registry *event.Registry
	log      *slog.Logger
	disabled map[string]bool

	mu     sync.Mutex
	units  []*Unit
	byName map[string]*Unit
	closed bool
}

// KindOption configures a Kind.
type KindOption func(*Kind)

// WithContext sets the shared context injected into every unit.
func WithContext(values map[string]any) KindOption {
	return func(k *Kind) {
		k.context = NewContext(values)
	}
}

// WithRegistry wires an event registry to receive the units' declared
// event bindings. Without one, bindings are counted but never registered;
// LoadAll reports them at warn level.
func WithRegistry(r *event.Registry) KindOption {
	return func(k *Kind) {
		k.registry = r
	}
}

// WithLogger sets the logger used for batch-load reporting.
// The default logger discards everything.
func WithLogger(l *slog.Logger) KindOption {
	return func(k *Kind) {
		k.log = l
	}
}

// WithDisabled skips the named units during LoadAll.
func WithDisabled(names ...string) KindOption {
	return func(k *Kind) {
		for _, name := range names {
			k.disabled[name] = true
		}
	}
}

// NewKind creates a plugin kind. The name is the global table every unit
// must define and must be a valid Lua identifier.
func NewKind(name, loadPath string, opts ...KindOption) (*Kind, error) {
	if !kindNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKindName, name)
	}

	k := &Kind{
		name:     name,
		loader:   NewLoader(loadPath),
		context:  NewContext(nil),
		log:      slog.New(slog.DiscardHandler),
		disabled: make(map[string]bool),
		byName:   make(map[string]*Unit),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Name returns the kind's logical label.
func (k *Kind) Name() string {
	return k.name
}

// Context returns the shared context.
func (k *Kind) Context() Context {
	return k.context
}

// Registry returns the wired event registry, or nil.
func (k *Kind) Registry() *event.Registry {
	return k.registry
}

// Loader returns the underlying loader.
func (k *Kind) Loader() *Loader {
	return k.loader
}

// LoadResult is the outcome of one LoadAll batch: the units that loaded,
// in load order, and a (unit, error) record for each one that did not.
type LoadResult struct {
	Units    []*Unit
	Failures []UnitError
}

// LoadAll discovers and loads every unit under the load path. Units load
// in lexical filename order, except that a unit's declared dependencies
// load before it. A failing unit never aborts the batch: its error is
// recorded in the result and loading continues.
//
// Calling LoadAll again replaces the unit set; previous units are closed
// and their event registrations removed.
func (k *Kind) LoadAll(ctx context.Context) (*LoadResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrKindClosed
	}

	candidates, err := k.loader.Discover()
	if err != nil {
		return nil, err
	}

	k.closeUnitsLocked()

	byName := make(map[string]Candidate, len(candidates))
	order := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if k.disabled[c.Name] {
			k.log.Debug("plugin disabled, skipping", "kind", k.name, "plugin", c.Name)
			continue
		}
		byName[c.Name] = c
		order = append(order, c)
	}

	result := &LoadResult{}
	loading := make(map[string]bool)
	failed := make(map[string]bool)

	for _, c := range order {
		if err := ctx.Err(); err != nil {
			result.Units = append([]*Unit{}, k.units...)
			return result, err
		}
		// Already loaded as a dependency of an earlier unit.
		if _, ok := k.byName[c.Name]; ok {
			continue
		}
		_ = k.loadUnit(c, byName, loading, failed, result)
	}

	result.Units = append([]*Unit{}, k.units...)
	k.log.Info("plugin load complete",
		"kind", k.name, "loaded", len(result.Units), "failed", len(result.Failures))
	return result, nil
}

// loadUnit loads one candidate and, recursively, its dependencies.
// Failures are recorded in result and returned so a dependent unit can
// fail in turn.
func (k *Kind) loadUnit(c Candidate, byName map[string]Candidate, loading, failed map[string]bool, result *LoadResult) error {
	if _, ok := k.byName[c.Name]; ok {
		return nil
	}
	if failed[c.Name] {
		return fmt.Errorf("plugin %q previously failed", c.Name)
	}
	if loading[c.Name] {
		return fmt.Errorf("%w: %q", ErrCyclicDependency, c.Name)
	}
	loading[c.Name] = true
	defer delete(loading, c.Name)

	u, err := k.buildUnit(c, byName, loading, failed, result)
	if err != nil {
		failed[c.Name] = true
		result.Failures = append(result.Failures, UnitError{Name: c.Name, Path: c.Path, Err: err})
		k.log.Warn("plugin failed to load", "kind", k.name, "plugin", c.Name, "error", err)
		return err
	}

	k.units = append(k.units, u)
	k.byName[c.Name] = u
	k.log.Debug("plugin loaded", "kind", k.name, "plugin", c.Name, "bindings", u.bindings)
	return nil
}

// buildUnit instantiates a single unit: fresh state, context injection,
// chunk execution, shape check, metadata, dependencies, event bindings,
// and the optional setup call, in that order.
func (k *Kind) buildUnit(c Candidate, byName map[string]Candidate, loading, failed map[string]bool, result *LoadResult) (*Unit, error) {
	st := plua.NewState()
	br := plua.NewBridge(st)

	// Context goes in before the chunk runs so plugin code can read ctx
	// at load time.
	k.context.inject(st, br)

	if err := st.DoFile(c.Path); err != nil {
		st.Close()
		return nil, err
	}

	tbl, ok := st.Global(k.name).(*lua.LTable)
	if !ok {
		st.Close()
		return nil, fmt.Errorf("%w: expected global table %q", ErrBadShape, k.name)
	}

	meta, err := readMeta(br, tbl)
	if err != nil {
		st.Close()
		return nil, err
	}

	for _, dep := range meta.Depends {
		depC, ok := byName[dep]
		if !ok {
			st.Close()
			return nil, fmt.Errorf("%w: %q", ErrUnknownDependency, dep)
		}
		if err := k.loadUnit(depC, byName, loading, failed, result); err != nil {
			st.Close()
			return nil, fmt.Errorf("dependency %q: %w", dep, err)
		}
	}

	u := &Unit{
		name:   c.Name,
		path:   c.Path,
		state:  st,
		bridge: br,
		table:  tbl,
		meta:   meta,
	}

	if err := k.registerBindings(u, br, tbl); err != nil {
		k.unregisterUnit(u)
		st.Close()
		return nil, err
	}

	if tbl.RawGetString("setup").Type() == lua.LTFunction {
		if _, err := st.CallTable(tbl, "setup", st.Global("ctx")); err != nil {
			k.unregisterUnit(u)
			st.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return u, nil
}

// registerBindings scans the unit's events array and registers each row on
// the wired registry. With no registry, bindings are counted and dropped.
func (k *Kind) registerBindings(u *Unit, br *plua.Bridge, tbl *lua.LTable) error {
	bindings, err := readBindings(br, tbl)
	if err != nil {
		return err
	}

	for _, b := range bindings {
		u.bindings++
		if k.registry == nil {
			continue
		}
		id, err := k.registry.Register(b.event, u.listener(b.handler))
		if err != nil {
			return fmt.Errorf("event binding %q: %w", b.event, err)
		}
		u.registrations = append(u.registrations, id)
	}

	if k.registry == nil && u.bindings > 0 {
		k.log.Warn("event bindings declared but no registry wired",
			"kind", k.name, "plugin", u.name, "bindings", u.bindings)
	}
	return nil
}

// Units returns the units produced by the most recent LoadAll, in load order.
func (k *Kind) Units() []*Unit {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]*Unit{}, k.units...)
}

// Unit returns a loaded unit by name.
func (k *Kind) Unit(name string) (*Unit, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	u, ok := k.byName[name]
	return u, ok
}

// Count returns the number of loaded units.
func (k *Kind) Count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.units)
}

// Close releases every unit and removes their event registrations.
// The Kind cannot be used afterwards.
func (k *Kind) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closeUnitsLocked()
	k.closed = true
	return nil
}

// closeUnitsLocked tears down the current unit set. Must be called with
// mu held.
func (k *Kind) closeUnitsLocked() {
	for _, u := range k.units {
		k.unregisterUnit(u)
		u.Close()
	}
	k.units = nil
	k.byName = make(map[string]*Unit)
}

// unregisterUnit removes a unit's listeners from the registry.
func (k *Kind) unregisterUnit(u *Unit) {
	if k.registry == nil {
		return
	}
	for _, id := range u.registrations {
		k.registry.Unregister(id)
	}
	u.registrations = nil
}
