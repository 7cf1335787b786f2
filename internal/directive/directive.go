// Package directive matches version directives in commit messages.
//
// A directive is a marker such as "+semver: minor" that authors put in
// a commit message to steer the next version bump. Patterns are regular
// expressions, compiled case-insensitively and cached per pattern text.
package directive

import (
	"fmt"
	"regexp"
	"sync"

	"bump/internal/errors"
	"bump/internal/increment"
)

// Default pattern texts, one per increment. They accept the common
// GitVersion-style spellings ("+semver: breaking" and "+semver: major"
// both request a major bump).
const (
	DefaultMajorPattern = `\+semver:\s?(breaking|major)`
	DefaultMinorPattern = `\+semver:\s?(feature|minor)`
	DefaultPatchPattern = `\+semver:\s?(fix|patch)`
	DefaultNonePattern  = `\+semver:\s?(none|skip)`
)

var (
	defaultMajor = regexp.MustCompile("(?i)" + DefaultMajorPattern)
	defaultMinor = regexp.MustCompile("(?i)" + DefaultMinorPattern)
	defaultPatch = regexp.MustCompile("(?i)" + DefaultPatchPattern)
	defaultNone  = regexp.MustCompile("(?i)" + DefaultNonePattern)
)

// PatternSet holds one compiled pattern per increment kind.
type PatternSet struct {
	Major *regexp.Regexp
	Minor *regexp.Regexp
	Patch *regexp.Regexp
	None  *regexp.Regexp
}

// Defaults returns the built-in pattern set. The patterns are compiled
// once at process start and shared between callers.
func Defaults() PatternSet {
	return PatternSet{
		Major: defaultMajor,
		Minor: defaultMinor,
		Patch: defaultPatch,
		None:  defaultNone,
	}
}

// Classify inspects a commit message and reports the highest-priority
// directive it contains. Priority runs major, minor, patch, none; the
// first matching pattern decides even when several would match.
//
// The boolean is false when no pattern matched at all. An explicit
// none directive is a match: it returns (None, true), which callers
// must keep distinct from the no-directive case.
func (s PatternSet) Classify(message string) (increment.Increment, bool) {
	switch {
	case s.Major.MatchString(message):
		return increment.Major, true
	case s.Minor.MatchString(message):
		return increment.Minor, true
	case s.Patch.MatchString(message):
		return increment.Patch, true
	case s.None.MatchString(message):
		return increment.None, true
	}
	return increment.None, false
}

// Overrides carries user-supplied pattern texts. Empty fields keep the
// built-in defaults.
type Overrides struct {
	Major string
	Minor string
	Patch string
	None  string
}

// Cache compiles patterns on first use and hands out the shared
// compiled instance on every later request for the same text. Safe for
// concurrent use.
type Cache struct {
	patterns sync.Map // pattern text -> *regexp.Regexp
}

// NewCache returns a cache pre-seeded with the built-in default
// patterns, so requests for a default text reuse the shared instance.
func NewCache() *Cache {
	c := &Cache{}
	c.patterns.Store(DefaultMajorPattern, defaultMajor)
	c.patterns.Store(DefaultMinorPattern, defaultMinor)
	c.patterns.Store(DefaultPatchPattern, defaultPatch)
	c.patterns.Store(DefaultNonePattern, defaultNone)
	return c
}

// Get returns the compiled form of pattern, compiling and storing it on
// first sight. Matching is case-insensitive regardless of the pattern
// text. Concurrent callers racing on the same new pattern all receive
// the instance that won the store; the losing compiles are discarded.
// Failed compiles are not cached.
func (c *Cache) Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := c.patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, errors.NewBumpError(
			errors.InvalidPattern,
			fmt.Sprintf("cannot compile pattern '%s'", pattern),
			err,
			errors.GetSuggestedFixes(errors.InvalidPattern),
		).WithDetails(map[string]string{"pattern": pattern})
	}

	actual, _ := c.patterns.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// PatternSet resolves a full set of patterns, applying overrides where
// given and defaults elsewhere. The first invalid override aborts with
// an invalid-pattern error naming the offending text.
func (c *Cache) PatternSet(o Overrides) (PatternSet, error) {
	set := Defaults()

	var err error
	if o.Major != "" {
		if set.Major, err = c.Get(o.Major); err != nil {
			return PatternSet{}, err
		}
	}
	if o.Minor != "" {
		if set.Minor, err = c.Get(o.Minor); err != nil {
			return PatternSet{}, err
		}
	}
	if o.Patch != "" {
		if set.Patch, err = c.Get(o.Patch); err != nil {
			return PatternSet{}, err
		}
	}
	if o.None != "" {
		if set.None, err = c.Get(o.None); err != nil {
			return PatternSet{}, err
		}
	}
	return set, nil
}
