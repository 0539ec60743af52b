package app

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// Commands understood by App.Run.
const (
	CommandGenerate = "generate"
	CommandCheck    = "check"
	CommandBuild    = "build"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	// Paths are declaration files or directories.
	Paths []string

	LogFormat string
	LogLevel  string

	// generate
	OutDir  string
	Suffix  string
	Package string
	NoGuard bool
	Watch   bool

	// build
	TypeName string
	// Sets are `name=expression` assignments, applied in order.
	Sets []string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandGenerate, CommandCheck, CommandBuild:
	case "":
		return nil, errors.New("a command is required")
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Command == CommandBuild {
		if cfg.TypeName == "" {
			return nil, errors.New("build needs the struct to build, set --type")
		}
		for _, set := range cfg.Sets {
			name, _, ok := strings.Cut(set, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("invalid --set %q: want name=expression", set)
			}
		}
	}

	if cfg.Package != "" && (!token.IsIdentifier(cfg.Package) || cfg.Package == "_") {
		return nil, fmt.Errorf("invalid --package %q: not a Go package name", cfg.Package)
	}

	if cfg.Command != CommandGenerate && (cfg.Watch || cfg.OutDir != "" || cfg.NoGuard) {
		return nil, fmt.Errorf("--watch, --out and --no-guard only apply to generate")
	}

	return &cfg, nil
}
