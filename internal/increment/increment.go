// Package increment defines the vocabulary of semantic-version bumps.
// An Increment is the magnitude of a bump (none, patch, minor, major),
// totally ordered so that conflicting signals can be reduced by max.
// A Mode controls whether commit-message scanning participates in a
// resolution at all.
package increment

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Increment represents the magnitude of a semantic-version bump.
// The declaration order is the total order: None < Patch < Minor < Major.
type Increment int

const (
	// None records that a commit or branch explicitly asked for no bump.
	// Distinct from "no signal at all", which callers express as a
	// missing Increment.
	None Increment = iota
	// Patch bumps the patch component.
	Patch
	// Minor bumps the minor component and resets patch.
	Minor
	// Major bumps the major component and resets minor and patch.
	Major
)

// String returns the configuration-facing name of the increment.
func (i Increment) String() string {
	switch i {
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "unknown"
	}
}

// Parse converts a configuration value into an Increment.
// Matching is case-insensitive. The empty string is not a valid
// increment; callers model "unconfigured" before calling Parse.
func Parse(s string) (Increment, error) {
	switch strings.ToLower(s) {
	case "none":
		return None, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return None, fmt.Errorf("invalid increment '%s': must be one of: none, patch, minor, major", s)
	}
}

// ValidValues returns all valid increment strings in ascending order.
func ValidValues() []string {
	return []string{"none", "patch", "minor", "major"}
}

// Max returns the larger of two increments under the total order.
func Max(a, b Increment) Increment {
	if a > b {
		return a
	}
	return b
}

// Apply returns v bumped by the increment. Major and Minor reset the
// lower components; a real bump drops any pre-release and build
// metadata. None returns v unchanged.
func (i Increment) Apply(v semver.Version) semver.Version {
	out := v
	switch i {
	case Major:
		out.Major++
		out.Minor = 0
		out.Patch = 0
	case Minor:
		out.Minor++
		out.Patch = 0
	case Patch:
		out.Patch++
	default:
		return out
	}
	out.Pre = nil
	out.Build = nil
	return out
}

// Mode controls whether and how commit messages participate in
// increment resolution.
type Mode string

const (
	// ModeEnabled scans every commit in the range for directives.
	ModeEnabled Mode = "enabled"
	// ModeDisabled skips commit-message scanning entirely; the commit
	// range is never walked.
	ModeDisabled Mode = "disabled"
	// ModeMergeMessageOnly restricts scanning to merge commits.
	ModeMergeMessageOnly Mode = "merge-message-only"
)

// ParseMode parses a string into a Mode. The empty string yields
// ModeEnabled, the historical default.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "enabled":
		return ModeEnabled, nil
	case "disabled":
		return ModeDisabled, nil
	case "merge-message-only":
		return ModeMergeMessageOnly, nil
	default:
		return ModeEnabled, fmt.Errorf("invalid mode '%s': must be one of: enabled, disabled, merge-message-only", s)
	}
}

// ValidModes returns all valid mode strings.
func ValidModes() []string {
	return []string{"enabled", "disabled", "merge-message-only"}
}
