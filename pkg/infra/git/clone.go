package git

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
)

// CloneEngine materializes working trees from remote repositories. The
// scratch directory for throwaway clones is explicit construction state, not
// a process global; the caller owns its lifecycle.
type CloneEngine struct {
	scratchDir string
	remoteURL  func(*model.Repository) string
}

// Option customizes a CloneEngine
type Option func(*CloneEngine)

// WithRemoteURL overrides how a repository resolves to a remote address.
// Tests use this to clone from local fixture paths.
func WithRemoteURL(fn func(*model.Repository) string) Option {
	return func(e *CloneEngine) { e.remoteURL = fn }
}

// NewCloneEngine creates a CloneEngine using scratchDir for disposable
// clones. An empty scratchDir falls back to the system temp directory.
func NewCloneEngine(scratchDir string, opts ...Option) *CloneEngine {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	e := &CloneEngine{
		scratchDir: scratchDir,
		remoteURL:  func(r *model.Repository) string { return r.URL() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clone checks out ref from repo into dest and strips the version control
// metadata, leaving a plain working tree. An empty ref means repo.Reference.
// Submodules declared at the pinned commit are materialized recursively.
//
// dest must be exclusively owned by the caller; concurrent clones into the
// same path are not coordinated.
func (e *CloneEngine) Clone(ctx context.Context, repo *model.Repository, dest, ref string) error {
	if ref == "" {
		ref = repo.Reference
	}
	if ref == "" {
		ref = types.DefaultReference
	}

	logger := ctxlog.From(ctx)
	logger.Info("Cloning repository", "owner", repo.Owner, "name", repo.Name, "ref", ref, "dest", dest)

	remote := e.remoteURL(repo)
	r, err := gogit.PlainCloneContext(ctx, dest, false, &gogit.CloneOptions{
		URL:  remote,
		Tags: gogit.AllTags,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clone repository", goerr.V("owner", repo.Owner), goerr.V("name", repo.Name))
	}

	// Peel the named reference down to its commit. The underlying error is
	// joined in so storage failures stay distinguishable from a missing ref.
	hash, err := r.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return goerr.Wrap(errors.Join(types.ErrReferenceNotFound, err), "cannot resolve reference",
			goerr.V("ref", ref), goerr.V("owner", repo.Owner), goerr.V("name", repo.Name))
	}

	branch := plumbing.NewBranchReferenceName(types.WorkBranch)
	if err := r.Storer.SetReference(plumbing.NewHashReference(branch, *hash)); err != nil {
		return goerr.Wrap(err, "failed to create work branch", goerr.V("ref", ref))
	}

	worktree, err := r.Worktree()
	if err != nil {
		return goerr.Wrap(err, "failed to open worktree")
	}
	if err := worktree.Checkout(&gogit.CheckoutOptions{Branch: branch, Force: true}); err != nil {
		return goerr.Wrap(err, "failed to check out work branch", goerr.V("ref", ref))
	}

	if err := e.RecursiveClone(ctx, dest); err != nil {
		return err
	}

	return stripMetadata(dest)
}

// stripMetadata deletes every .git entry under root: the top level repository
// directory and the gitfiles submodule worktrees use to point back at their
// parent's module store.
func stripMetadata(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return goerr.Wrap(err, "failed to walk working tree", goerr.V("path", path))
		}
		if d.Name() != gogit.GitDirName {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return goerr.Wrap(err, "failed to remove git metadata", goerr.V("path", path))
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
}

// RecursiveClone materializes every submodule declared by the repository at
// path, depth first in declaration order. Each level must be fully updated
// before its own children can be resolved, because a submodule may itself
// declare further submodules.
func (e *CloneEngine) RecursiveClone(ctx context.Context, path string) error {
	r, err := gogit.PlainOpen(path)
	if err != nil {
		return goerr.Wrap(err, "failed to open repository", goerr.V("path", path))
	}

	worktree, err := r.Worktree()
	if err != nil {
		return goerr.Wrap(err, "failed to open worktree", goerr.V("path", path))
	}

	submodules, err := worktree.Submodules()
	if err != nil {
		return goerr.Wrap(err, "failed to enumerate submodules", goerr.V("path", path))
	}

	for _, sub := range submodules {
		subPath := sub.Config().Path
		ctxlog.From(ctx).Debug("Updating submodule", "path", subPath, "parent", path)

		if err := sub.UpdateContext(ctx, &gogit.SubmoduleUpdateOptions{Init: true}); err != nil {
			return goerr.Wrap(err, "failed to update submodule",
				goerr.V("submodule", subPath), goerr.V("parent", path))
		}
		if err := e.RecursiveClone(ctx, filepath.Join(path, subPath)); err != nil {
			return err
		}
	}

	return nil
}

// ListReferences enumerates every reference name the remote advertises. It
// performs a throwaway clone under the scratch directory just to read the
// refs, which is wasteful but keeps the transfer logic in one place; the
// clone is deleted before returning.
func (e *CloneEngine) ListReferences(ctx context.Context, repo *model.Repository) ([]string, error) {
	dir, err := os.MkdirTemp(e.scratchDir, "houston-refs-")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create scratch directory")
	}
	defer os.RemoveAll(dir)

	r, err := gogit.PlainCloneContext(ctx, dir, true, &gogit.CloneOptions{
		URL:  e.remoteURL(repo),
		Tags: gogit.AllTags,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to clone repository", goerr.V("owner", repo.Owner), goerr.V("name", repo.Name))
	}

	iter, err := r.References()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read references")
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name() == plumbing.HEAD {
			return nil
		}
		names = append(names, ref.Name().String())
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to iterate references")
	}

	return names, nil
}
