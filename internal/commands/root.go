// Package commands holds the assetmix command line.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"assetmix/internal/config"
	"assetmix/internal/log"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetmix",
	Short: "Asset allocation dashboard",
	Long: `assetmix serves a small web page for tracking holdings by category,
comparing them with a recommended allocation and recording snapshots over
time. All data lives in a separate asset service reached over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file (default: .env when present)")
}

// setup reads the env file and the environment, lets override adjust the
// result from flags, validates it and installs the configured logger as the
// slog default.
func setup(ctx context.Context, override func(*config.Config)) (*config.Config, *log.Logger, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := log.New(cfg.LoggerConfig())
	slog.SetDefault(logger.Logger)
	return cfg, logger, nil
}
