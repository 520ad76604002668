package main

import (
	"prio/internal/config"
	"prio/internal/logging"
	"prio/internal/version"

	"github.com/spf13/cobra"
)

var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "prio",
	Short: "prio - effort-aware test prioritization",
	Long: `prio ranks test targets by expected value per unit of effort and picks
the best plan that fits a sprint budget. It runs as an HTTP service or
directly from the command line against a request file.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("prio version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"Path to config file (default: ./prio.json)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human, json")
}

// loadConfig loads the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds a logger from the config, with CLI flags taking
// precedence over the config file.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}

	return logging.NewLogger(logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(format),
	})
}
