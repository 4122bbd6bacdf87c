package app

import (
	"io"
	"log/slog"

	"github.com/vk/fablec/internal/compiler"
	"github.com/vk/fablec/internal/depgraph"
	"github.com/vk/fablec/internal/hcladapter"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
	src    depgraph.Source
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. src may be nil,
// in which case sources are read from disk.
func NewApp(outW, errW io.Writer, cfg *Config, src depgraph.Source) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	if src == nil {
		src = hcladapter.NewLoader()
	}

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		config: cfg,
		src:    src,
	}
}

// compileOptions builds the per-run compiler options.
func (a *App) compileOptions() []compiler.Option {
	return []compiler.Option{compiler.WithSource(a.src)}
}
