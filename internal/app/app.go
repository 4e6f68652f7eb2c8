package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/hetgrid/internal/config"
	"github.com/vk/hetgrid/internal/ctxlog"
	"github.com/vk/hetgrid/internal/device"
	"github.com/vk/hetgrid/internal/dispatch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	model  *config.Model
	queue  device.Queue
	report *dispatch.Report
}

// Option customizes App construction.
type Option func(*App)

// WithQueue injects a device queue, replacing the default simulated
// device. This is primarily for testing.
func WithQueue(q device.Queue) Option {
	return func(a *App) { a.queue = q }
}

// NewApp is the constructor for the main application. It returns a
// fully initialized App instance with its own isolated logger, the
// loaded run model, and a bound device queue. A failure to load
// configuration is a fatal startup error and panics; the CLI boundary
// recovers it into a clean exit.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.RunPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	if appConfig.WorkersOverride > 0 {
		logger.Debug("Overriding worker count from CLI.", "workers", appConfig.WorkersOverride)
		model.Run.Workers = appConfig.WorkersOverride
	}
	if appConfig.VerboseOverride {
		model.Run.Verbose = true
	}

	a := &App{
		outW:   outW,
		logger: logger,
		model:  model,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.queue == nil {
		a.queue = device.NewSim(device.WithLanes(model.Run.Device.Lanes))
	}
	logger.Debug("Device queue bound.", "device", a.queue.Name(), "lanes", model.Run.Device.Lanes)

	return a
}

// Model returns the loaded run model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Report returns the outcome of the last completed run, or nil if no
// run has completed. This is primarily for testing.
func (a *App) Report() *dispatch.Report {
	return a.report
}
