package main

import (
	"fmt"
	"os"
	"time"

	"github.com/blang/semver/v4"
	"github.com/spf13/cobra"

	"bump/internal/backends/git"
	"bump/internal/directive"
	"bump/internal/errors"
	"bump/internal/history"
	"bump/internal/repostate"
	"bump/internal/resolve"
)

var (
	resolveBaseVersion string
	resolveBaseCommit  string
	resolveBranch      string
	resolveNoIncrement bool
	resolveFormat      string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the version increment from commit history",
	Long: `Resolve the semantic version increment for the current branch head.

Commit messages between the base commit (exclusive) and the head are
matched against the configured directive patterns; the largest match
wins. When no message carries a directive, the configured default
increment applies.

Examples:
  bump resolve --base-version 1.4.2 --base-commit v1.4.2^{commit}
  bump resolve --base-version 0.3.0 --format json
  bump resolve --no-increment    # head is already released`,
	Run: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveBaseVersion, "base-version", "0.1.0", "Prior semantic version to increment from")
	resolveCmd.Flags().StringVar(&resolveBaseCommit, "base-commit", "", "Commit the base version derives from (rev or sha)")
	resolveCmd.Flags().StringVar(&resolveBranch, "branch", "", "Branch name for rule matching (default: detected)")
	resolveCmd.Flags().BoolVar(&resolveNoIncrement, "no-increment", false, "Do not apply the default increment when messages are silent")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(resolveCmd)
}

// ResolveFacts is the payload of a resolve response.
type ResolveFacts struct {
	BaseVersion  string `json:"baseVersion"`
	BaseCommit   string `json:"baseCommit,omitempty"`
	HeadCommit   string `json:"headCommit,omitempty"`
	Branch       string `json:"branch,omitempty"`
	Mode         string `json:"mode"`
	Increment    string `json:"increment,omitempty"`
	HasIncrement bool   `json:"hasIncrement"`
	NextVersion  string `json:"nextVersion"`
}

func runResolve(cmd *cobra.Command, args []string) {
	start := time.Now()
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	baseVer, err := semver.Parse(resolveBaseVersion)
	if err != nil {
		badVersion := errors.NewBumpError(errors.InvalidVersion,
			fmt.Sprintf("Invalid base version '%s'", resolveBaseVersion), err, nil)
		fmt.Fprintf(os.Stderr, "Error: %v\n", badVersion)
		os.Exit(1)
	}

	branch := resolveBranch
	if branch == "" {
		branch = repostate.CurrentBranch(repoRoot)
	}

	cache := directive.NewCache()
	eff, err := cfg.ForBranch(branch, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	settings, err := eff.Settings(cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repo, err := git.Open(repoRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	head, err := repo.Head()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving head: %v\n", err)
		os.Exit(1)
	}

	var baseCommit *history.Commit
	if resolveBaseCommit != "" {
		baseCommit, err = repo.ResolveCommit(resolveBaseCommit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving base commit: %v\n", err)
			os.Exit(1)
		}
	}

	engine := resolve.NewEngine(history.NewProvider(repo))
	inc, ok, err := engine.Resolve(
		resolve.Context{
			Head:     head,
			Mode:     settings.Mode,
			Patterns: settings.Patterns,
			Default:  settings.Default,
		},
		resolve.BaseVersion{
			Version:         baseVer,
			Source:          baseCommit,
			ShouldIncrement: !resolveNoIncrement,
		},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving increment: %v\n", err)
		os.Exit(1)
	}

	next := baseVer
	if ok {
		next = inc.Apply(baseVer)
	}

	facts := &ResolveFacts{
		BaseVersion:  baseVer.String(),
		Branch:       branch,
		Mode:         string(settings.Mode),
		HasIncrement: ok,
		NextVersion:  next.String(),
	}
	if baseCommit != nil {
		facts.BaseCommit = baseCommit.Sha
	}
	if head != nil {
		facts.HeadCommit = head.Sha
	}
	if ok {
		facts.Increment = inc.String()
	}

	state, stateErr := repostate.ComputeRepoState(repoRoot)
	if stateErr != nil {
		state = nil
	}
	resp := NewResponse(facts, state, measureDuration(start))
	if stateErr != nil {
		resp.AddWarning("repo state unavailable: " + stateErr.Error())
	}
	if head == nil {
		resp.AddWarning("repository has no commits yet")
	}

	output, err := FormatResponse(resp, OutputFormat(resolveFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Resolution complete", map[string]interface{}{
		"increment":  facts.Increment,
		"next":       facts.NextVersion,
		"durationMs": resp.Provenance.QueryDurationMs,
	})
}
