// Package history provides cached access to reachable commit history
// and range selection between two commits.
package history

import (
	"iter"
	"sync"
	"time"
)

// Commit is one commit in a repository's history.
type Commit struct {
	Sha     string    `json:"sha"`
	Message string    `json:"message"`
	Parents []string  `json:"parents,omitempty"`
	Author  string    `json:"author,omitempty"`
	When    time.Time `json:"when,omitempty"`
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.Parents) > 1
}

// Repository enumerates commit history from a head.
type Repository interface {
	// ReachableFrom returns every commit reachable from the given sha,
	// ordered parents before children. The last element is the head
	// commit itself.
	ReachableFrom(headSha string) ([]Commit, error)
}

// Provider serves reachable history with a single-slot cache keyed by
// head sha. Repeated lookups for the same head reuse the cached slice;
// a lookup for a different head replaces the slot. Safe for concurrent
// use. Providers are meant to live for one resolution session; create
// a fresh one per run rather than sharing across repositories.
type Provider struct {
	repo Repository

	mu         sync.Mutex
	cachedHead string
	cached     []Commit
	hasCache   bool
}

// NewProvider creates a provider over the given repository.
func NewProvider(repo Repository) *Provider {
	return &Provider{repo: repo}
}

// ReachableFrom returns the history reachable from head, oldest first
// with head as the final element. A nil head yields an empty history
// without consulting the repository. The returned slice is shared with
// the cache; callers must treat it as read-only.
func (p *Provider) ReachableFrom(head *Commit) ([]Commit, error) {
	if head == nil {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasCache && p.cachedHead == head.Sha {
		return p.cached, nil
	}

	commits, err := p.repo.ReachableFrom(head.Sha)
	if err != nil {
		return nil, err
	}

	p.cachedHead = head.Sha
	p.cached = commits
	p.hasCache = true
	return commits, nil
}

// Between returns the commits strictly after base up to and including
// head, oldest first, as a lazy sequence. The walk skips through base
// inclusively, so base itself is never part of the range. A nil base,
// a nil head, or a base that is not reachable from head all produce an
// empty sequence. With mergesOnly set, only merge commits are yielded.
func (p *Provider) Between(base, head *Commit, mergesOnly bool) (iter.Seq[Commit], error) {
	empty := func(yield func(Commit) bool) {}

	if base == nil || head == nil {
		return empty, nil
	}

	commits, err := p.ReachableFrom(head)
	if err != nil {
		return nil, err
	}

	baseSha := base.Sha
	return func(yield func(Commit) bool) {
		seen := false
		for _, c := range commits {
			if !seen {
				if c.Sha == baseSha {
					seen = true
				}
				continue
			}
			if mergesOnly && !c.IsMerge() {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}, nil
}
