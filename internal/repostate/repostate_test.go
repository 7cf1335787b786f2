package repostate

import (
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initTestRepo creates a git repository with one commit and returns
// its path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitRun(t, dir, "init", "-q", "-b", "main")
	gitRun(t, dir, "commit", "-q", "--allow-empty", "-m", "initial commit")
	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

func TestHashString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string returns empty hash",
			input:    "",
			expected: EmptyHash,
		},
		{
			name:     "simple string",
			input:    "hello",
			expected: fmt.Sprintf("%x", sha256.Sum256([]byte("hello"))),
		},
		{
			name:     "multiline string",
			input:    "line1\nline2\nline3",
			expected: fmt.Sprintf("%x", sha256.Sum256([]byte("line1\nline2\nline3"))),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := hashString(tc.input)
			if result != tc.expected {
				t.Errorf("hashString(%q) = %q, expected %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestComputeRepoStateID(t *testing.T) {
	// Test with known inputs
	headCommit := "abc123"
	stagedHash := "staged123"
	workingHash := "working123"
	untrackedHash := "untracked123"

	result := computeRepoStateID(headCommit, stagedHash, workingHash, untrackedHash)

	// Verify it's a valid SHA256 hash (64 hex characters)
	if len(result) != 64 {
		t.Errorf("Expected 64 character hash, got %d characters", len(result))
	}

	// Verify consistency - same inputs should produce same output
	result2 := computeRepoStateID(headCommit, stagedHash, workingHash, untrackedHash)
	if result != result2 {
		t.Error("computeRepoStateID not consistent for same inputs")
	}

	// Verify different inputs produce different outputs
	result3 := computeRepoStateID("different", stagedHash, workingHash, untrackedHash)
	if result == result3 {
		t.Error("Different inputs should produce different hashes")
	}
}

func TestEmptyHashConstant(t *testing.T) {
	// Verify EmptyHash is the SHA256 of empty string
	expected := fmt.Sprintf("%x", sha256.Sum256([]byte("")))
	if EmptyHash != expected {
		t.Errorf("EmptyHash = %q, expected %q (SHA256 of empty string)", EmptyHash, expected)
	}
}

func TestIsGitRepository(t *testing.T) {
	t.Run("valid git repository", func(t *testing.T) {
		repoRoot := initTestRepo(t)
		if !IsGitRepository(repoRoot) {
			t.Errorf("Expected %s to be a git repository", repoRoot)
		}
	})

	t.Run("non-git directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		if IsGitRepository(tmpDir) {
			t.Errorf("Expected %s to NOT be a git repository", tmpDir)
		}
	})
}

func TestGetRepoRoot(t *testing.T) {
	repoRoot := initTestRepo(t)

	t.Run("from repo root", func(t *testing.T) {
		root, err := GetRepoRoot(repoRoot)
		if err != nil {
			t.Fatalf("GetRepoRoot failed: %v", err)
		}
		if resolveSymlinks(t, root) != resolveSymlinks(t, repoRoot) {
			t.Errorf("GetRepoRoot(%s) = %s, expected %s", repoRoot, root, repoRoot)
		}
	})

	t.Run("from subdirectory", func(t *testing.T) {
		subdir := filepath.Join(repoRoot, "pkg")
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			t.Fatalf("Failed to create subdirectory: %v", err)
		}

		root, err := GetRepoRoot(subdir)
		if err != nil {
			t.Fatalf("GetRepoRoot from subdir failed: %v", err)
		}
		if resolveSymlinks(t, root) != resolveSymlinks(t, repoRoot) {
			t.Errorf("GetRepoRoot(%s) = %s, expected %s", subdir, root, repoRoot)
		}
	})

	t.Run("non-git directory returns error", func(t *testing.T) {
		tmpDir := t.TempDir()
		_, err := GetRepoRoot(tmpDir)
		if err == nil {
			t.Error("Expected error for non-git directory")
		}
	})
}

// resolveSymlinks normalizes paths for comparison; on some systems the
// temp dir sits behind a symlink and git reports the resolved path.
func resolveSymlinks(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}

func TestCurrentBranch(t *testing.T) {
	t.Run("on a branch", func(t *testing.T) {
		repoRoot := initTestRepo(t)
		if got := CurrentBranch(repoRoot); got != "main" {
			t.Errorf("CurrentBranch() = %q, want %q", got, "main")
		}
	})

	t.Run("detached head", func(t *testing.T) {
		repoRoot := initTestRepo(t)
		gitRun(t, repoRoot, "checkout", "-q", "--detach")
		if got := CurrentBranch(repoRoot); got != "" {
			t.Errorf("CurrentBranch() on detached head = %q, want empty", got)
		}
	})

	t.Run("non-git directory", func(t *testing.T) {
		if got := CurrentBranch(t.TempDir()); got != "" {
			t.Errorf("CurrentBranch() outside a repo = %q, want empty", got)
		}
	})
}

func TestComputeRepoState(t *testing.T) {
	t.Run("computes state for valid repo", func(t *testing.T) {
		repoRoot := initTestRepo(t)

		state, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("ComputeRepoState failed: %v", err)
		}

		// Verify all fields are populated
		if state.RepoStateID == "" {
			t.Error("RepoStateID should not be empty")
		}
		if len(state.HeadCommit) != 40 {
			t.Errorf("HeadCommit should be 40 char SHA, got %d chars", len(state.HeadCommit))
		}
		if state.Branch != "main" {
			t.Errorf("Branch = %q, want %q", state.Branch, "main")
		}
		if state.StagedDiffHash != EmptyHash {
			t.Error("StagedDiffHash should be the empty hash for a clean repo")
		}
		if state.WorkingTreeDiffHash != EmptyHash {
			t.Error("WorkingTreeDiffHash should be the empty hash for a clean repo")
		}
		if state.UntrackedListHash != EmptyHash {
			t.Error("UntrackedListHash should be the empty hash for a clean repo")
		}
		if state.Dirty {
			t.Error("A fresh repo should not be dirty")
		}
		if state.ComputedAt == "" {
			t.Error("ComputedAt should not be empty")
		}
	})

	t.Run("returns error for non-git directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		_, err := ComputeRepoState(tmpDir)
		if err == nil {
			t.Error("Expected error for non-git directory")
		}
	})

	t.Run("untracked file marks repo dirty", func(t *testing.T) {
		repoRoot := initTestRepo(t)
		if err := os.WriteFile(filepath.Join(repoRoot, "scratch.txt"), []byte("wip\n"), 0o644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}

		state, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("ComputeRepoState failed: %v", err)
		}
		if !state.Dirty {
			t.Error("Repo with untracked files should be dirty")
		}
		if state.UntrackedListHash == EmptyHash {
			t.Error("UntrackedListHash should change with untracked files")
		}
	})

	t.Run("unborn branch has empty head", func(t *testing.T) {
		repoRoot := t.TempDir()
		gitRun(t, repoRoot, "init", "-q", "-b", "main")

		state, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("ComputeRepoState on empty repo failed: %v", err)
		}
		if state.HeadCommit != "" {
			t.Errorf("HeadCommit = %q, want empty for unborn branch", state.HeadCommit)
		}
		if state.Branch != "main" {
			t.Errorf("Branch = %q, want %q", state.Branch, "main")
		}
	})

	t.Run("state consistency", func(t *testing.T) {
		repoRoot := initTestRepo(t)

		state1, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("First ComputeRepoState failed: %v", err)
		}

		state2, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("Second ComputeRepoState failed: %v", err)
		}

		if state1.RepoStateID != state2.RepoStateID {
			t.Errorf("RepoStateID changed between calls: %s vs %s", state1.RepoStateID, state2.RepoStateID)
		}
		if state1.HeadCommit != state2.HeadCommit {
			t.Errorf("HeadCommit changed between calls: %s vs %s", state1.HeadCommit, state2.HeadCommit)
		}
	})

	t.Run("new commit changes state id", func(t *testing.T) {
		repoRoot := initTestRepo(t)

		before, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("ComputeRepoState failed: %v", err)
		}

		gitRun(t, repoRoot, "commit", "-q", "--allow-empty", "-m", "another commit")

		after, err := ComputeRepoState(repoRoot)
		if err != nil {
			t.Fatalf("ComputeRepoState failed: %v", err)
		}
		if before.RepoStateID == after.RepoStateID {
			t.Error("RepoStateID should change when a commit is added")
		}
	})
}

func TestGitHelperFunctions(t *testing.T) {
	repoRoot := initTestRepo(t)

	t.Run("gitRevParse HEAD", func(t *testing.T) {
		result, err := gitRevParse(repoRoot, "HEAD")
		if err != nil {
			t.Fatalf("gitRevParse failed: %v", err)
		}

		// Should be a 40 character SHA
		if len(result) != 40 {
			t.Errorf("Expected 40 char SHA, got %d chars: %s", len(result), result)
		}
	})

	t.Run("gitDiff cached", func(t *testing.T) {
		if _, err := gitDiff(repoRoot, "--cached"); err != nil {
			t.Fatalf("gitDiff --cached failed: %v", err)
		}
	})

	t.Run("gitDiff HEAD", func(t *testing.T) {
		if _, err := gitDiff(repoRoot, "HEAD"); err != nil {
			t.Fatalf("gitDiff HEAD failed: %v", err)
		}
	})

	t.Run("gitLsFilesOthers", func(t *testing.T) {
		if _, err := gitLsFilesOthers(repoRoot); err != nil {
			t.Fatalf("gitLsFilesOthers failed: %v", err)
		}
	})

	t.Run("gitRevParse invalid ref", func(t *testing.T) {
		_, err := gitRevParse(repoRoot, "invalid-ref-that-does-not-exist-xyz123")
		if err == nil {
			t.Error("Expected error for invalid ref")
		}
	})
}
