package main

import (
	"fmt"
	"os"
	"path/filepath"

	"bump/internal/config"

	"github.com/spf13/cobra"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize bump configuration",
	Long:  "Creates a starter bump.yaml at the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing bump.yaml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return err
	}

	configPath := filepath.Join(repoRoot, config.ProjectFileYAML)
	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Idempotent behavior: already initialized is success (CI-friendly)
		fmt.Println("bump already initialized.")
		fmt.Printf("Configuration at: %s\n", configPath)
		fmt.Println("\nRun 'bump init --force' to overwrite.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(repoRoot); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	fmt.Println("bump initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'bump doctor' to check your setup")
	fmt.Println("  2. Run 'bump resolve' to compute the next version")

	return nil
}
