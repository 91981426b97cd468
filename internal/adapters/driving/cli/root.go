// Package cli provides the cobra command tree for tutorforge.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tutorforge/internal/core/ports/driven"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// Runtime holds the services that need the assembled application:
// AI backends, the knowledge store and the artifact writer.
type Runtime struct {
	Convert   driving.ConvertService
	Knowledge driving.KnowledgeService

	// OutputDir is where conversions write their artifacts.
	OutputDir string
}

// RuntimeLoader assembles the runtime on first use.
type RuntimeLoader func(ctx context.Context) (*Runtime, error)

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	configValidator driven.AIConfigValidator

	appRuntime    *Runtime
	runtimeLoader RuntimeLoader
)

var rootCmd = &cobra.Command{
	Use:   "tutorforge",
	Short: "Rewrite documents as tutorials for a target audience",
	Long: `TutorForge turns a web page, PDF or text file into a tutorial written
for a chosen audience. It cleans the input, extracts a glossary, rewrites
the content with background from your knowledge folder, has a critic review
the draft, illustrates it, and renders Markdown, HTML and PDF.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline stages and warnings")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service and the provider validator
// used by the settings commands. validator may be nil.
func SetSettingsService(svc driving.SettingsService, validator driven.AIConfigValidator) {
	settingsService = svc
	configValidator = validator
}

// SetRuntimeLoader sets how the runtime is assembled when a command needs it.
func SetRuntimeLoader(loader RuntimeLoader) {
	runtimeLoader = loader
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime returns the runtime, assembling it on first use.
func loadRuntime(ctx context.Context) (*Runtime, error) {
	if appRuntime != nil {
		return appRuntime, nil
	}
	if runtimeLoader == nil {
		return nil, errors.New("services not configured")
	}

	rt, err := runtimeLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising services: %w", err)
	}
	appRuntime = rt
	return rt, nil
}
