package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bump/internal/backends/git"
	"bump/internal/config"
	"bump/internal/directive"
	"bump/internal/errors"
	"bump/internal/logging"
	"bump/internal/repostate"
)

var (
	doctorFormat string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose bump issues",
	Long: `Diagnose repository and configuration issues.

Checks that a git repository is present, the head commit resolves, the
configuration parses and validates, every configured pattern compiles,
and reports which branch rule applies to the current branch.`,
	Run: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorResponseCLI contains diagnostic results for CLI output
type DoctorResponseCLI struct {
	Healthy bool             `json:"healthy"`
	Checks  []DoctorCheckCLI `json:"checks"`
}

// DoctorCheckCLI represents a single diagnostic check
type DoctorCheckCLI struct {
	Name           string         `json:"name"`
	Status         string         `json:"status"` // "pass", "warn", "fail"
	Message        string         `json:"message"`
	SuggestedFixes []FixActionCLI `json:"suggestedFixes,omitempty"`
}

// FixActionCLI represents a suggested fix
type FixActionCLI struct {
	Type        string `json:"type"`
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Safe        bool   `json:"safe"`
}

func runDoctor(cmd *cobra.Command, args []string) {
	resp := &DoctorResponseCLI{Healthy: true}

	start := repoFlag
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		start = cwd
	}

	repoRoot, repoErr := repostate.GetRepoRoot(start)
	if repoErr != nil {
		resp.add("repository", "fail", repoErr.Error(), fixesFrom(repoErr))
		// Config can still be inspected where the command was run.
		repoRoot = start
	} else {
		resp.add("repository", "pass", fmt.Sprintf("Git repository at %s", repoRoot), nil)
	}

	cfg := checkConfig(resp, repoRoot)
	if cfg != nil {
		checkPatterns(resp, cfg)
	}

	if repoErr == nil {
		checkHead(resp, repoRoot)
		if cfg != nil {
			checkBranch(resp, repoRoot, cfg)
		}
	}

	output, err := FormatResponse(resp, OutputFormat(doctorFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)

	if !resp.Healthy {
		os.Exit(1)
	}
}

func (r *DoctorResponseCLI) add(name, status, message string, fixes []FixActionCLI) {
	if status == "fail" {
		r.Healthy = false
	}
	r.Checks = append(r.Checks, DoctorCheckCLI{
		Name:           name,
		Status:         status,
		Message:        message,
		SuggestedFixes: fixes,
	})
}

func checkConfig(resp *DoctorResponseCLI, repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		resp.add("config", "fail", err.Error(), nil)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		fixes := []FixActionCLI{{
			Type:        "editConfig",
			Description: "Edit bump.yaml and correct the reported field",
			Safe:        true,
		}}
		resp.add("config", "fail", err.Error(), fixes)
		return nil
	}

	if path, ok := config.ProjectConfigPath(repoRoot); ok {
		resp.add("config", "pass", fmt.Sprintf("Loaded %s", path), nil)
	} else {
		resp.add("config", "pass", "No project config; using defaults", nil)
	}
	return cfg
}

func checkPatterns(resp *DoctorResponseCLI, cfg *config.Config) {
	cache := directive.NewCache()
	compiled := 0

	compile := func(pattern string) error {
		if pattern == "" {
			return nil
		}
		if _, err := cache.Get(pattern); err != nil {
			return err
		}
		compiled++
		return nil
	}

	for _, p := range []string{cfg.Patterns.Major, cfg.Patterns.Minor, cfg.Patterns.Patch, cfg.Patterns.None} {
		if err := compile(p); err != nil {
			resp.add("patterns", "fail", err.Error(), fixesFrom(err))
			return
		}
	}
	for _, rule := range cfg.Branches {
		for _, p := range []string{rule.Match, rule.Patterns.Major, rule.Patterns.Minor, rule.Patterns.Patch, rule.Patterns.None} {
			if err := compile(p); err != nil {
				resp.add("patterns", "fail", err.Error(), fixesFrom(err))
				return
			}
		}
	}

	if compiled == 0 {
		resp.add("patterns", "pass", "No custom patterns; using built-in defaults", nil)
		return
	}
	resp.add("patterns", "pass", fmt.Sprintf("%d custom patterns compiled", compiled), nil)
}

func checkHead(resp *DoctorResponseCLI, repoRoot string) {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
	})

	repo, err := git.Open(repoRoot, logger)
	if err != nil {
		resp.add("head", "fail", err.Error(), fixesFrom(err))
		return
	}

	head, err := repo.Head()
	if err != nil {
		resp.add("head", "fail", err.Error(), fixesFrom(err))
		return
	}
	if head == nil {
		resp.add("head", "warn", "Repository has no commits yet", nil)
		return
	}

	sha := head.Sha
	if len(sha) > 12 {
		sha = sha[:12]
	}
	resp.add("head", "pass", fmt.Sprintf("Head at %s", sha), nil)
}

func checkBranch(resp *DoctorResponseCLI, repoRoot string, cfg *config.Config) {
	branch := repostate.CurrentBranch(repoRoot)
	if branch == "" {
		resp.add("branch", "warn", "Detached head; branch rules will not apply", nil)
		return
	}
	if len(cfg.Branches) == 0 {
		resp.add("branch", "pass", fmt.Sprintf("On %s; no branch rules configured", branch), nil)
		return
	}

	cache := directive.NewCache()
	for i := range cfg.Branches {
		re, err := cache.Get(cfg.Branches[i].Match)
		if err != nil {
			// Reported by the patterns check.
			return
		}
		if re.MatchString(branch) {
			resp.add("branch", "pass",
				fmt.Sprintf("Branch %s matches rule %d (%s)", branch, i, cfg.Branches[i].Match), nil)
			return
		}
	}
	resp.add("branch", "pass", fmt.Sprintf("No rule matches %s; top-level settings apply", branch), nil)
}

// fixesFrom extracts suggested fixes from a structured error.
func fixesFrom(err error) []FixActionCLI {
	var bumpErr *errors.BumpError
	if !stderrors.As(err, &bumpErr) {
		return nil
	}
	fixes := make([]FixActionCLI, 0, len(bumpErr.SuggestedFixes))
	for _, f := range bumpErr.SuggestedFixes {
		fixes = append(fixes, FixActionCLI{
			Type:        string(f.Type),
			Command:     f.Command,
			Description: f.Description,
			URL:         f.URL,
			Safe:        f.Safe,
		})
	}
	return fixes
}
