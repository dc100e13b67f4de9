// Package infrastructure provides core infrastructure components and their Fx modules.
package infrastructure

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/config"
	pkginfra "github.com/Raikerian/go-media-mixer/pkg/infrastructure"
)

// LoggerModule provides logging infrastructure.
var LoggerModule = fx.Module("logger",
	fx.Provide(NewZapLogger),
)

// MetricsModule provides the process-wide Prometheus registry, exposed both
// as a Registerer for components and as a Gatherer for the scrape handler.
var MetricsModule = fx.Module("metrics",
	fx.Provide(
		NewMetricsRegistry,
		func(r *prometheus.Registry) prometheus.Registerer { return r },
		func(r *prometheus.Registry) prometheus.Gatherer { return r },
	),
)

// NewZapLoggerParams holds dependencies for NewZapLogger.
type NewZapLoggerParams struct {
	fx.In
	Cfg *config.Config
	LC  fx.Lifecycle
}

// NewZapLogger creates and configures a new Zap logger.
func NewZapLogger(params NewZapLoggerParams) (*zap.Logger, error) {
	zapConfig, err := zapConfigFor(params.Cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	params.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync on stderr returns EINVAL/ENOTTY on some platforms.
			_ = logger.Sync()
			return nil
		},
	})

	return logger, nil
}

// zapConfigFor maps a log level name to a zap configuration: development
// output for debug, JSON production output otherwise.
func zapConfigFor(level string) (zap.Config, error) {
	switch level {
	case "debug":
		return zap.NewDevelopmentConfig(), nil
	case "", "info", "warn", "error":
	default:
		return zap.Config{}, fmt.Errorf("unknown log level %q", level)
	}

	zapConfig := zap.NewProductionConfig()
	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return zap.Config{}, err
		}
	}
	zapConfig.Level = lvl
	return zapConfig, nil
}

// NewMetricsRegistry creates a registry preloaded with the Go runtime and
// process collectors.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewFxLoggerAdapter creates a new Fx logger adapter using the public package.
func NewFxLoggerAdapter(logger *zap.Logger) fxevent.Logger {
	return pkginfra.NewFxLoggerAdapter(logger)
}

// NewFxPrinter creates a new Fx printer adapter using the public package.
func NewFxPrinter(logger *zap.Logger) fx.Printer {
	return pkginfra.NewFxPrinter(logger)
}
