package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/chatgpt-extension-packager/internal/config"
	"github.com/oshokin/chatgpt-extension-packager/internal/logger"
	"github.com/oshokin/chatgpt-extension-packager/internal/service/packager"
	"github.com/oshokin/chatgpt-extension-packager/internal/version"
)

// errUnknownLogLevel indicates the --log-level flag value is not recognized.
var errUnknownLogLevel = errors.New("unknown logging level")

var (
	// configPath to the configuration YAML file.
	configPath string

	// buildDir overrides the build directory from settings.
	buildDir string

	// outputDir overrides the output directory from settings.
	outputDir string

	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd represents the base command for packaging the extension build.
	rootCmd = &cobra.Command{
		Use:   "extension-packager",
		Short: "Package the ChatGPT extension build for Chrome Web Store submission",
		Long: `Packages a pre-built ChatGPT extension directory into a store-ready ZIP archive.

Reads version and name from manifest.json in the build directory, keeps only the
essential extension files plus everything under assets paths, and writes them into
chatgpt-extension-v{version}.zip. The result is checked against the Chrome Web Store
100 MB upload limit and its contents are reported along with submission steps.

Run it with no arguments from the project root; settings and flags only override defaults.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%s: %w", logLevel, errUnknownLogLevel)
			}

			logger.SetLevel(level)

			options := &packager.Options{
				ConfigPath: configPath,
				BuildDir:   buildDir,
				OutputDir:  outputDir,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the extension-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&buildDir, "build-dir", "b", "",
		"directory with the pre-built extension (defaults to \"build\")")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory to place the package archive in (defaults to the current directory)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error, fatal)")
}
