package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Candidate is a discovered plugin source file, not yet loaded.
type Candidate struct {
	// Name is the unit name, the filename without its .lua extension.
	Name string

	// Path is the absolute or loader-relative path to the source file.
	Path string
}

// Loader enumerates plugin source files under one or more directories.
type Loader struct {
	paths []string
}

// NewLoader creates a loader over the given search paths, checked in order.
func NewLoader(paths ...string) *Loader {
	return &Loader{paths: paths}
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath appends a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover returns every .lua file under the search paths, sorted by unit
// name so two runs over an unchanged directory yield the same order.
// Files whose names start with an underscore are skipped. When the same
// unit name appears under multiple paths, the first path wins. A missing
// directory is not an error.
func (l *Loader) Discover() ([]Candidate, error) {
	seen := make(map[string]Candidate)

	for _, basePath := range l.paths {
		entries, err := os.ReadDir(basePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if filepath.Ext(name) != ".lua" || strings.HasPrefix(name, "_") {
				continue
			}
			unit := strings.TrimSuffix(name, ".lua")
			if _, ok := seen[unit]; ok {
				continue
			}
			seen[unit] = Candidate{Name: unit, Path: filepath.Join(basePath, name)}
		}
	}

	candidates := make([]Candidate, 0, len(seen))
	for _, c := range seen {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	return candidates, nil
}
