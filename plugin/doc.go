// Package plugin discovers, loads, and instantiates Lua plugin units from a
// directory, injecting host-supplied shared context and auto-registering
// event listeners the units declare.
//
// A host defines a Kind for each category of plugin it accepts. A Kind names
// the global table every unit must define, the directory units are loaded
// from, the shared context they receive, and optionally the event registry
// their declared bindings attach to:
//
//	reg := event.NewRegistry(event.WithStrict())
//	reg.Declare("buffer.saved")
//
//	kind, err := plugin.NewKind("Addon", "./addons",
//	    plugin.WithContext(map[string]any{"app_name": "demo"}),
//	    plugin.WithRegistry(reg),
//	)
//	result, err := kind.LoadAll(ctx)
//
// A unit is a single .lua file. It reads its injected context through the
// ctx global and declares itself as a table named after its Kind:
//
//	Addon = {
//	    name = "greeter",
//	    version = "1.0.0",
//	    events = {
//	        { event = "buffer.saved", handler = "on_saved" },
//	    },
//	}
//
//	function Addon.on_saved(self, path)
//	    print(ctx.app_name .. " saved " .. path)
//	end
//
// The events array is scanned in declaration order, so listener call order
// is reproducible across runs. LoadAll is resilient to bad units: a file
// that fails to load, defines no plugin table, or declares an invalid
// binding is reported in LoadResult.Failures and the batch continues.
package plugin
