// Package main provides the entry point for the media mixer service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/Raikerian/go-media-mixer/internal/admin"
	"github.com/Raikerian/go-media-mixer/internal/app"
	"github.com/Raikerian/go-media-mixer/internal/config"
	"github.com/Raikerian/go-media-mixer/internal/infrastructure"
	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/internal/sink"
	"github.com/Raikerian/go-media-mixer/internal/synth"
	pkginfra "github.com/Raikerian/go-media-mixer/pkg/infrastructure"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// Create the application with all modules
	application := app.New(
		// Core modules
		config.Module,
		infrastructure.LoggerModule,
		infrastructure.MetricsModule,

		// Application modules
		mixer.Module,
		sink.Module,
		synth.Module,
		admin.Module,

		// Supply the config path
		fx.Supply(*configPath),

		// Configure Fx to use our Zap logger for its own internal logging
		fx.WithLogger(pkginfra.NewFxLoggerAdapter),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	err := application.Start(startCtx)
	cancelStart()
	if err != nil {
		fmt.Printf("Error during startup: %v\n", err)
		os.Exit(1)
	}

	// Block until a signal is received
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Printf("Received signal: %s, initiating shutdown.\n", sig)

	// Give the application 30 seconds to shut down gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = application.Stop(shutdownCtx)
	cancel()

	if err != nil {
		fmt.Printf("Error during shutdown: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Application has shut down gracefully.")
}
