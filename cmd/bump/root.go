package main

import (
	"os"

	"bump/internal/config"
	"bump/internal/logging"
	"bump/internal/version"

	"github.com/spf13/cobra"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "bump",
	Short: "bump - semantic version increment resolution",
	Long: `bump reads the commit messages reachable from the branch head, matches
them against configurable directive patterns, and resolves the semantic
version increment (major, minor, patch or none) the history calls for.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("bump version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository path (default: discovered from the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}

// resolveLogLevel determines the effective log level from CLI flag, env
// var, and config. Precedence: --log-level > BUMP_LOG_LEVEL > config.
func resolveLogLevel(cfg *config.Config) logging.LogLevel {
	if logLevelFlag != "" {
		return logging.ParseLevel(logLevelFlag)
	}
	if env := os.Getenv("BUMP_LOG_LEVEL"); env != "" {
		return logging.ParseLevel(env)
	}
	if cfg != nil && cfg.Logging.Level != "" {
		return logging.ParseLevel(cfg.Logging.Level)
	}
	return logging.WarnLevel
}
