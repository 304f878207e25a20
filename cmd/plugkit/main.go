// Package main is the plugkit host runner: it loads a directory of Lua
// plugin units and dispatches events to them from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dshills/plugkit/event"
	"github.com/dshills/plugkit/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	dir        string
	kind       string
	call       string
	strict     bool
	list       bool
	verbose    bool
}

func run() int {
	opts, args, showVersion := parseFlags()

	if showVersion {
		fmt.Printf("plugkit %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.logLevel, opts.verbose)

	var regOpts []event.Option
	if cfg.strict {
		regOpts = append(regOpts, event.WithStrict())
	}
	reg := event.NewRegistry(regOpts...)
	if err := reg.Declare(cfg.declare...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	kind, err := plugin.NewKind(cfg.kind, cfg.paths[0],
		plugin.WithContext(cfg.context),
		plugin.WithRegistry(reg),
		plugin.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer kind.Close()

	for _, p := range cfg.paths[1:] {
		kind.Loader().AddPath(p)
	}

	result, err := kind.LoadAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load plugins: %v\n", err)
		return 1
	}

	for _, fail := range result.Failures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", fail)
	}

	if opts.list {
		for _, u := range result.Units {
			meta := u.Meta()
			line := u.Name()
			if meta.Version != "" {
				line += " " + meta.Version
			}
			if meta.Description != "" {
				line += " - " + meta.Description
			}
			fmt.Println(line)
		}
	}

	if opts.call != "" {
		if err := reg.Call(opts.call, parseArgs(args)...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	return 0
}

func parseFlags() (options, []string, bool) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.dir, "dir", "", "Plugin directory (overrides config paths)")
	flag.StringVar(&opts.kind, "kind", "", "Plugin table name (overrides config)")
	flag.StringVar(&opts.call, "call", "", "Event to dispatch after loading")
	flag.BoolVar(&opts.strict, "strict", false, "Require declared event names")
	flag.BoolVar(&opts.list, "list", false, "List loaded plugins")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	return opts, flag.Args(), showVersion
}

// config holds the resolved runner configuration.
type config struct {
	kind     string
	paths    []string
	context  map[string]any
	strict   bool
	declare  []string
	logLevel string
}

// loadConfig merges the JSON config file with command-line overrides.
func loadConfig(opts options) (config, error) {
	cfg := config{
		kind:     "Plugin",
		logLevel: "warn",
	}

	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return config{}, fmt.Errorf("config: %w", err)
		}
		if !gjson.ValidBytes(data) {
			return config{}, fmt.Errorf("config: %s is not valid JSON", opts.configPath)
		}

		if v := gjson.GetBytes(data, "kind"); v.Exists() {
			cfg.kind = v.String()
		}
		for _, p := range gjson.GetBytes(data, "paths").Array() {
			cfg.paths = append(cfg.paths, p.String())
		}
		if v := gjson.GetBytes(data, "context"); v.IsObject() {
			if m, ok := v.Value().(map[string]any); ok {
				cfg.context = m
			}
		}
		cfg.strict = gjson.GetBytes(data, "events.strict").Bool()
		for _, e := range gjson.GetBytes(data, "events.declare").Array() {
			cfg.declare = append(cfg.declare, e.String())
		}
		if v := gjson.GetBytes(data, "logging.level"); v.Exists() {
			cfg.logLevel = v.String()
		}
	}

	if opts.dir != "" {
		cfg.paths = []string{opts.dir}
	}
	if opts.kind != "" {
		cfg.kind = opts.kind
	}
	if opts.strict {
		cfg.strict = true
	}

	if len(cfg.paths) == 0 {
		return config{}, fmt.Errorf("no plugin directory: use -dir or a config file with paths")
	}
	return cfg, nil
}

func newLogger(level string, verbose bool) *slog.Logger {
	lvl := slog.LevelWarn
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// parseArgs converts positional event arguments to typed values so Lua
// handlers see numbers and booleans, not strings.
func parseArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, s := range raw {
		switch {
		case s == "true":
			args[i] = true
		case s == "false":
			args[i] = false
		default:
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				args[i] = n
			} else if f, err := strconv.ParseFloat(s, 64); err == nil {
				args[i] = f
			} else {
				args[i] = s
			}
		}
	}
	return args
}
