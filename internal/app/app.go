package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	loader config.Loader
	config *Config
}

// NewApp is the constructor for the main application. Command output goes to
// outW and logs to logW, so `build` output stays machine-readable.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		logger: logger,
		loader: loader,
		config: cfg,
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CommandGenerate:
		if a.config.Watch {
			err = a.watch(ctx)
		} else {
			_, err = a.generate(ctx)
		}
	case CommandCheck:
		err = a.check(ctx)
	case CommandBuild:
		err = a.build(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

// load reads and compiles every declaration under the configured paths.
func (a *App) load(ctx context.Context) (*registry.Registry, error) {
	model, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load declarations: %w", err)
	}
	a.logger.Debug("Declarations loaded and translated into unified model.", "files", len(model.Files))

	reg := registry.New()
	if err := reg.LoadModel(ctx, model); err != nil {
		return nil, fmt.Errorf("invalid declarations:\n%w", err)
	}
	if reg.Len() == 0 {
		a.logger.Warn("No struct declarations found.", "paths", a.config.Paths)
	}
	return reg, nil
}
