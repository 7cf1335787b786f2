package directive

import (
	"sync"
	"testing"

	"bump/internal/errors"
	"bump/internal/increment"
)

func TestDefaultsClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    increment.Increment
		matched bool
	}{
		{"major", "+semver: major", increment.Major, true},
		{"breaking", "+semver: breaking", increment.Major, true},
		{"no space", "+semver:major", increment.Major, true},
		{"uppercase", "+SEMVER: BREAKING", increment.Major, true},
		{"minor", "+semver: minor", increment.Minor, true},
		{"feature", "+semver: feature", increment.Minor, true},
		{"patch", "+semver: patch", increment.Patch, true},
		{"fix", "+semver: fix", increment.Patch, true},
		{"none", "+semver: none", increment.None, true},
		{"skip", "+semver: skip", increment.None, true},
		{"mid message", "Fix parser crash\n\n+semver: minor", increment.Minor, true},
		{"plain message", "Fix parser crash", increment.None, false},
		{"missing plus", "semver: major", increment.None, false},
		{"two spaces", "+semver:  major", increment.None, false},
		{"empty", "", increment.None, false},
	}

	set := Defaults()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := set.Classify(tt.message)
			if got != tt.want || matched != tt.matched {
				t.Errorf("Classify(%q) = (%v, %v), want (%v, %v)",
					tt.message, got, matched, tt.want, tt.matched)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	set := Defaults()

	tests := []struct {
		name    string
		message string
		want    increment.Increment
	}{
		{"major beats patch", "+semver: major\n+semver: patch", increment.Major},
		{"major beats none", "+semver: none\n+semver: major", increment.Major},
		{"minor beats patch", "+semver: fix\n+semver: feature", increment.Minor},
		{"patch beats none", "+semver: skip\n+semver: fix", increment.Patch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := set.Classify(tt.message)
			if !matched {
				t.Fatalf("Classify(%q) did not match", tt.message)
			}
			if got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestCacheGet(t *testing.T) {
	cache := NewCache()

	first, err := cache.Get(`bump:(major)`)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := cache.Get(`bump:(major)`)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if first != second {
		t.Error("Get should return the same compiled instance for the same text")
	}
	if !first.MatchString("bump:major") {
		t.Error("compiled pattern should match its own text")
	}
}

func TestCacheGetCaseInsensitive(t *testing.T) {
	cache := NewCache()

	re, err := cache.Get(`release-note`)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !re.MatchString("RELEASE-NOTE attached") {
		t.Error("patterns should match case-insensitively")
	}
}

func TestCacheGetDefaultsShared(t *testing.T) {
	cache := NewCache()

	re, err := cache.Get(DefaultMajorPattern)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if re != Defaults().Major {
		t.Error("default pattern text should resolve to the shared default instance")
	}
}

func TestCacheGetInvalid(t *testing.T) {
	cache := NewCache()

	_, err := cache.Get(`(unclosed`)
	if err == nil {
		t.Fatal("Get should fail for an invalid pattern")
	}

	code, ok := errors.CodeOf(err)
	if !ok || code != errors.InvalidPattern {
		t.Errorf("CodeOf() = (%v, %v), want (%v, true)", code, ok, errors.InvalidPattern)
	}

	// A second request fails again; failures are not cached.
	if _, err := cache.Get(`(unclosed`); err == nil {
		t.Error("repeated Get of an invalid pattern should fail again")
	}

	// The cache stays usable after a failed compile.
	if _, err := cache.Get(`valid`); err != nil {
		t.Errorf("Get after failure error = %v", err)
	}
}

func TestCachePatternSet(t *testing.T) {
	cache := NewCache()

	set, err := cache.PatternSet(Overrides{Minor: `semver\(minor\)`})
	if err != nil {
		t.Fatalf("PatternSet() error = %v", err)
	}

	if got, matched := set.Classify("semver(minor)"); !matched || got != increment.Minor {
		t.Errorf("Classify with override = (%v, %v), want (minor, true)", got, matched)
	}
	if got, matched := set.Classify("+semver: minor"); matched {
		t.Errorf("overridden minor pattern should not match the default text, got (%v, %v)", got, matched)
	}
	if got, matched := set.Classify("+semver: major"); !matched || got != increment.Major {
		t.Errorf("non-overridden patterns should keep defaults, got (%v, %v)", got, matched)
	}
}

func TestCachePatternSetInvalid(t *testing.T) {
	cache := NewCache()

	_, err := cache.PatternSet(Overrides{Patch: `[`})
	if err == nil {
		t.Fatal("PatternSet should fail for an invalid override")
	}
	if code, ok := errors.CodeOf(err); !ok || code != errors.InvalidPattern {
		t.Errorf("CodeOf() = (%v, %v), want (%v, true)", code, ok, errors.InvalidPattern)
	}
}

func TestCacheConcurrent(t *testing.T) {
	cache := NewCache()
	const workers = 16

	var wg sync.WaitGroup
	got := make(chan interface{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			re, err := cache.Get(`shared-pattern`)
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			got <- re
		}()
	}
	wg.Wait()
	close(got)

	var first interface{}
	for re := range got {
		if first == nil {
			first = re
			continue
		}
		if re != first {
			t.Error("concurrent callers should receive the same compiled instance")
		}
	}
}
