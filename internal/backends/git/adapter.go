package git

import (
	stderrors "errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"bump/internal/errors"
	"bump/internal/history"
	"bump/internal/logging"
)

const (
	// BackendID is the unique identifier for the Git backend
	BackendID = "git"
)

// Repository reads commit history from an on-disk git repository. It
// implements history.Repository for the resolution engine and adds the
// head and revision lookups the CLI needs.
type Repository struct {
	path   string
	repo   *gogit.Repository
	logger *logging.Logger
}

// Open opens the repository at path, searching parent directories for
// the .git directory the way git itself does.
func Open(path string, logger *logging.Logger) (*Repository, error) {
	if logger == nil {
		return nil, errors.NewBumpError(
			errors.InternalError,
			"Logger is required for the git backend",
			nil,
			nil,
		)
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.NewBumpError(
			errors.RepositoryUnavailable,
			fmt.Sprintf("cannot open git repository at %s", path),
			err,
			errors.GetSuggestedFixes(errors.RepositoryUnavailable),
		)
	}

	logger.Info("Git backend initialized", map[string]interface{}{
		"backend": BackendID,
		"path":    path,
	})

	return &Repository{path: path, repo: repo, logger: logger}, nil
}

// ID returns the backend identifier
func (r *Repository) ID() string {
	return BackendID
}

// Path returns the path the repository was opened from.
func (r *Repository) Path() string {
	return r.path
}

// Head returns the commit the repository head points to. A repository
// without commits (unborn branch) yields nil without error.
func (r *Repository) Head() (*history.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.NewBumpError(
			errors.RepositoryUnavailable,
			"cannot resolve repository head",
			err,
			nil,
		)
	}
	return r.commitAt(ref.Hash())
}

// ResolveCommit resolves a revision expression (sha, ref name, HEAD~1
// and friends) to the commit it names.
func (r *Repository) ResolveCommit(rev string) (*history.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, errors.NewBumpError(
			errors.ObjectNotFound,
			fmt.Sprintf("cannot resolve '%s' to a commit", rev),
			err,
			errors.GetSuggestedFixes(errors.ObjectNotFound),
		)
	}
	return r.commitAt(*hash)
}

// ReachableFrom implements history.Repository. It walks parent links
// from the given head and returns the commits in topological order,
// oldest ancestors first with the head as the final element.
func (r *Repository) ReachableFrom(headSha string) ([]history.Commit, error) {
	start, err := r.repo.CommitObject(plumbing.NewHash(headSha))
	if err != nil {
		return nil, errors.NewBumpError(
			errors.ObjectNotFound,
			fmt.Sprintf("commit %s not found", headSha),
			err,
			errors.GetSuggestedFixes(errors.ObjectNotFound),
		)
	}

	// Iterative depth-first walk emitting parents before children.
	type frame struct {
		commit *object.Commit
		next   int
	}
	stack := []*frame{{commit: start}}
	visited := map[plumbing.Hash]bool{start.Hash: true}

	var out []history.Commit
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next < len(top.commit.ParentHashes) {
			parentHash := top.commit.ParentHashes[top.next]
			top.next++
			if visited[parentHash] {
				continue
			}
			visited[parentHash] = true

			parent, err := r.repo.CommitObject(parentHash)
			if err != nil {
				if stderrors.Is(err, plumbing.ErrObjectNotFound) {
					// Shallow clones lack objects past the cutoff;
					// treat the missing parent as a root.
					continue
				}
				return nil, errors.NewBumpError(
					errors.ObjectNotFound,
					fmt.Sprintf("cannot load parent commit %s", parentHash),
					err,
					errors.GetSuggestedFixes(errors.ObjectNotFound),
				)
			}
			stack = append(stack, &frame{commit: parent})
			continue
		}

		out = append(out, toCommit(top.commit))
		stack = stack[:len(stack)-1]
	}

	r.logger.Debug("Walked reachable history", map[string]interface{}{
		"head":  headSha,
		"count": len(out),
	})

	return out, nil
}

func toCommit(c *object.Commit) history.Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, h := range c.ParentHashes {
		parents[i] = h.String()
	}
	return history.Commit{
		Sha:     c.Hash.String(),
		Message: c.Message,
		Parents: parents,
		Author:  c.Author.Name,
		When:    c.Author.When,
	}
}
