package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bump/internal/directive"
)

var (
	configBranch string
	configFormat string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged configuration",
	Long: `Show the configuration after merging defaults, the user config, and
the project config.

With --branch, branch rules are applied and the effective settings for
that branch are shown instead.`,
	Run: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configBranch, "branch", "", "Show the effective configuration for a branch")
	configCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)

	var doc interface{} = cfg
	if configBranch != "" {
		eff, err := cfg.ForBranch(configBranch, directive.NewCache())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		doc = eff
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format: %s\n", configFormat)
		os.Exit(1)
	}
}
