package plugin

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/plugkit/plugin/lua"
)

// Meta is the optional metadata a unit declares on its plugin table.
type Meta struct {
	// HumanName is a display name, from the table's name field.
	HumanName string

	// Description is a short description of the unit.
	Description string

	// Author is the unit author.
	Author string

	// Version is the unit version. When present it must be valid semver.
	Version string

	// Depends lists unit names that must load before this one.
	Depends []string
}

// readMeta extracts metadata from a plugin table. Every field is optional,
// but a version that does not parse as semver fails the unit.
func readMeta(b *plua.Bridge, tbl *lua.LTable) (Meta, error) {
	var m Meta

	m.HumanName, _ = b.TableString(tbl, "name")
	m.Description, _ = b.TableString(tbl, "description")
	m.Author, _ = b.TableString(tbl, "author")
	m.Depends = b.TableStrings(tbl, "depends")

	if v, ok := b.TableString(tbl, "version"); ok {
		if _, err := semver.NewVersion(v); err != nil {
			return Meta{}, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		m.Version = v
	}

	return m, nil
}
