// Package resolve decides how much to bump a version for a given span
// of commit history.
//
// The engine reconciles two signals: directives found in commit
// messages and the branch's configured default increment. It is a pure
// function of its inputs and emits no logging; callers surface results
// and diagnostics however suits them.
package resolve

import (
	"github.com/blang/semver/v4"

	"bump/internal/directive"
	"bump/internal/history"
	"bump/internal/increment"
)

var versionOne = semver.MustParse("1.0.0")

// Context carries the head commit under evaluation and the effective
// branch settings for one resolution.
type Context struct {
	// Head is the commit being versioned, usually the branch tip.
	Head *history.Commit
	// Mode controls whether commit messages are scanned at all.
	Mode increment.Mode
	// Patterns are the active directive patterns.
	Patterns directive.PatternSet
	// Default is the branch-configured increment policy. Nil means the
	// branch configures no default.
	Default *increment.Increment
}

// BaseVersion is the previously established version and where it came
// from.
type BaseVersion struct {
	// Version is the prior semantic version.
	Version semver.Version
	// Source is the commit the version was derived from. Nil when no
	// source commit is known.
	Source *history.Commit
	// ShouldIncrement reports whether the branch policy alone calls
	// for a bump when commit messages are silent.
	ShouldIncrement bool
}

// Engine resolves version increments over a history provider.
type Engine struct {
	provider *history.Provider
}

// NewEngine creates an engine over the given provider. The provider
// carries the per-session history cache, so reuse the same engine for
// repeated resolutions against one repository.
func NewEngine(provider *history.Provider) *Engine {
	return &Engine{provider: provider}
}

// Resolve determines the increment to apply on top of base. The
// boolean is false when neither commit messages nor branch policy call
// for any increment.
//
// Precedence: when messages are silent, the configured default applies
// only if the base version asks for an increment. When a message
// directive is present, a pre-1.0 base version caps it at minor, the
// configured default floors it if ShouldIncrement is set, and it wins
// otherwise. A directive can therefore never downgrade below the
// branch policy, and a pre-1.0 project never jumps to a major release
// from a commit message alone.
func (e *Engine) Resolve(ctx Context, base BaseVersion) (increment.Increment, bool, error) {
	msg, msgPresent, err := e.messageIncrement(ctx, base)
	if err != nil {
		return increment.None, false, err
	}

	if !msgPresent {
		if base.ShouldIncrement && ctx.Default != nil {
			return *ctx.Default, true, nil
		}
		return increment.None, false, nil
	}

	if msg > increment.Minor && base.Version.LT(versionOne) {
		msg = increment.Minor
	}

	if base.ShouldIncrement && ctx.Default != nil && msg < *ctx.Default {
		return *ctx.Default, true, nil
	}
	return msg, true, nil
}

// messageIncrement scans the commit range between the base source and
// head and reduces directive matches to their maximum. Disabled mode
// returns absent without walking any history. Zero matches across the
// range also return absent; an explicit none directive is a match and
// yields a present None.
func (e *Engine) messageIncrement(ctx Context, base BaseVersion) (increment.Increment, bool, error) {
	if ctx.Mode == increment.ModeDisabled {
		return increment.None, false, nil
	}

	mergesOnly := ctx.Mode == increment.ModeMergeMessageOnly
	commits, err := e.provider.Between(base.Source, ctx.Head, mergesOnly)
	if err != nil {
		return increment.None, false, err
	}

	result := increment.None
	found := false
	for c := range commits {
		inc, matched := ctx.Patterns.Classify(c.Message)
		if !matched {
			continue
		}
		found = true
		result = increment.Max(result, inc)
		if result == increment.Major {
			// Nothing outranks major; stop walking.
			break
		}
	}

	if !found {
		return increment.None, false, nil
	}
	return result, true, nil
}
