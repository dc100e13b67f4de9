// Package app provides the main application structure and lifecycle management.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/admin"
	"github.com/Raikerian/go-media-mixer/internal/config"
	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/internal/sink"
	"github.com/Raikerian/go-media-mixer/internal/synth"
)

// Application represents the main application with its lifecycle.
type Application struct {
	app *fx.App
}

// New creates a new Application with the provided modules and options.
func New(modules ...fx.Option) *Application {
	// Combine all provided modules with lifecycle management
	options := append(modules, fx.Invoke(registerLifecycleHooks))

	app := fx.New(options...)

	return &Application{
		app: app,
	}
}

// Run starts the application and blocks until it's stopped.
func (a *Application) Run() {
	a.app.Run()
}

// Start starts the application without blocking.
func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

// Err returns any error encountered while building the dependency graph.
func (a *Application) Err() error {
	return a.app.Err()
}

// LifecycleParams holds the components started and stopped with the
// application.
type LifecycleParams struct {
	fx.In
	LC     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.Logger
	Mixer  *mixer.Mixer
	Output *sink.Counter
	Feeder *synth.Feeder
	Admin  *admin.Server
}

// registerLifecycleHooks sets up the application lifecycle hooks. The
// output sink is attached before the clock starts and producers begin only
// once the mixer is running.
func registerLifecycleHooks(params LifecycleParams) {
	logger := params.Logger
	m := params.Mixer

	params.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting application: Starting mixer and producers")

			if err := m.SetCallback(params.Output); err != nil {
				logger.Error("Failed to attach output", zap.Error(err))

				return err
			}
			params.Output.Start()

			if err := m.Start(params.Cfg.Mixer.EnableAudio, params.Cfg.Mixer.EnableVideo); err != nil {
				logger.Error("Failed to start mixer", zap.Error(err))

				return err
			}
			params.Feeder.Start()

			logger.Info("Application started successfully", zap.String("mixer_id", m.ID()))

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping application: Stopping producers and mixer")

			if err := params.Feeder.Stop(ctx); err != nil {
				logger.Error("Failed to stop producers", zap.Error(err))
			}

			if err := m.Close(); err != nil {
				logger.Error("Failed to stop mixer", zap.Error(err))

				return err
			}
			params.Output.Stop()

			logger.Info("Application stopped successfully")

			return nil
		},
	})
}
