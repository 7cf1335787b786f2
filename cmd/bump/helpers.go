package main

import (
	"fmt"
	"os"

	"bump/internal/config"
	"bump/internal/logging"
	"bump/internal/repostate"
)

// getRepoRoot returns the repository root for the current invocation.
// The --repo flag wins; otherwise the root is discovered upward from
// the working directory.
func getRepoRoot() (string, error) {
	start := repoFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = cwd
	}
	return repostate.GetRepoRoot(start)
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// newLogger creates a logger honoring the configured format and the
// log level precedence chain.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg != nil && cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  resolveLogLevel(cfg),
	})
}

// mustLoadConfig loads and validates the layered configuration or
// exits on error. Resolution must not run against a config the user
// wrote but we could not honor.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
