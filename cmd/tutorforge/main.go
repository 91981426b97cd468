// Command tutorforge rewrites documents as tutorials for a chosen audience.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/tutorforge/internal/adapters/driven/ai"
	"github.com/custodia-labs/tutorforge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tutorforge/internal/adapters/driving/cli"
	"github.com/custodia-labs/tutorforge/internal/app"
	"github.com/custodia-labs/tutorforge/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// cobra reports command errors itself.
	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(store)

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService, ai.NewConfigValidator())

	var application *app.App
	defer func() {
		if application != nil {
			_ = application.Close()
		}
	}()

	cli.SetRuntimeLoader(func(ctx context.Context) (*cli.Runtime, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, err
		}
		a, err := app.New(ctx, *settings, app.Options{})
		if err != nil {
			return nil, err
		}
		application = a
		return &cli.Runtime{
			Convert:   a.Convert,
			Knowledge: a.Indexer,
			OutputDir: settings.Paths.OutputDir,
		}, nil
	})

	return cli.Execute(ctx)
}
