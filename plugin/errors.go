package plugin

import "errors"

// Plugin system errors.
var (
	// ErrBadShape is returned when a loaded unit does not define a table
	// named after its Kind.
	ErrBadShape = errors.New("unit does not define a plugin table")

	// ErrBadBinding is returned when an event binding row is missing its
	// handler or names a non-function field.
	ErrBadBinding = errors.New("malformed event binding")

	// ErrInvalidVersion is returned when a unit declares a version that
	// is not valid semver.
	ErrInvalidVersion = errors.New("invalid plugin version")

	// ErrUnknownDependency is returned when a unit depends on a plugin
	// not present under the load path.
	ErrUnknownDependency = errors.New("unknown plugin dependency")

	// ErrCyclicDependency is returned when plugin dependencies form a cycle.
	ErrCyclicDependency = errors.New("cyclic plugin dependency")

	// ErrInvalidKindName is returned when a Kind name is not a valid Lua
	// identifier.
	ErrInvalidKindName = errors.New("kind name must be a valid identifier")

	// ErrKindClosed is returned when using a Kind after Close.
	ErrKindClosed = errors.New("kind is closed")
)

// UnitError reports a single unit that failed to load. Unit failures are
// non-fatal to a LoadAll batch; they are collected in LoadResult.Failures.
type UnitError struct {
	// Name is the unit name derived from its filename.
	Name string

	// Path is the source file the unit was loaded from.
	Path string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e UnitError) Error() string {
	return "plugin " + e.Name + " (" + e.Path + "): " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e UnitError) Unwrap() error {
	return e.Err
}
