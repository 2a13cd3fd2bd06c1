package git_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/m-mizutani/gt"

	"github.com/ahavic1/houston/pkg/domain/model"
	"github.com/ahavic1/houston/pkg/domain/types"
	gitinfra "github.com/ahavic1/houston/pkg/infra/git"
)

func signature() *object.Signature {
	return &object.Signature{
		Name:  "houston",
		Email: "houston@example.com",
		When:  time.Now(),
	}
}

// initFixture builds a local repository with two commits on master, a
// lightweight tag 1.0.0 at the first commit and an annotated tag 2.0.0 at the
// second.
func initFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	gt.NoError(t, err)

	worktree, err := repo.Worktree()
	gt.NoError(t, err)

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# widget\n"), 0644))
	_, err = worktree.Add("README.md")
	gt.NoError(t, err)
	first, err := worktree.Commit("initial", &gogit.CommitOptions{Author: signature()})
	gt.NoError(t, err)

	_, err = repo.CreateTag("1.0.0", first, nil)
	gt.NoError(t, err)

	gt.NoError(t, os.WriteFile(filepath.Join(dir, "main.c"), []byte("int main(void) { return 0; }\n"), 0644))
	_, err = worktree.Add("main.c")
	gt.NoError(t, err)
	second, err := worktree.Commit("add main", &gogit.CommitOptions{Author: signature()})
	gt.NoError(t, err)

	_, err = repo.CreateTag("2.0.0", second, &gogit.CreateTagOptions{
		Tagger:  signature(),
		Message: "release 2.0.0",
	})
	gt.NoError(t, err)

	return dir
}

func fixtureEngine(fixture, scratch string) *gitinfra.CloneEngine {
	return gitinfra.NewCloneEngine(scratch,
		gitinfra.WithRemoteURL(func(*model.Repository) string { return fixture }))
}

func testRepo() *model.Repository {
	return &model.Repository{
		Host: "github.com", Owner: "acme", Name: "widget",
		Reference: types.DefaultReference,
	}
}

func TestCloneEngine_Clone_Tag(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)
	dest := filepath.Join(t.TempDir(), "work")

	engine := fixtureEngine(fixture, t.TempDir())
	gt.NoError(t, engine.Clone(ctx, testRepo(), dest, "refs/tags/1.0.0"))

	// Tree matches the tagged commit
	_, err := os.Stat(filepath.Join(dest, "README.md"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, "main.c"))
	gt.Error(t, err)

	// No version control metadata left behind
	_, err = os.Stat(filepath.Join(dest, ".git"))
	gt.Error(t, err)
}

func TestCloneEngine_Clone_AnnotatedTagIsPeeled(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)
	dest := filepath.Join(t.TempDir(), "work")

	engine := fixtureEngine(fixture, t.TempDir())
	gt.NoError(t, engine.Clone(ctx, testRepo(), dest, "refs/tags/2.0.0"))

	_, err := os.Stat(filepath.Join(dest, "main.c"))
	gt.NoError(t, err)
}

func TestCloneEngine_Clone_DefaultReference(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)
	dest := filepath.Join(t.TempDir(), "work")

	engine := fixtureEngine(fixture, t.TempDir())
	gt.NoError(t, engine.Clone(ctx, testRepo(), dest, ""))

	// Empty ref falls back to the repository's primary branch
	_, err := os.Stat(filepath.Join(dest, "main.c"))
	gt.NoError(t, err)
}

func TestCloneEngine_Clone_UnknownReference(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)
	dest := filepath.Join(t.TempDir(), "work")

	engine := fixtureEngine(fixture, t.TempDir())
	err := engine.Clone(ctx, testRepo(), dest, "refs/tags/9.9.9")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrReferenceNotFound))

	// The resolver's own error stays reachable for diagnosis
	gt.True(t, errors.Is(err, plumbing.ErrReferenceNotFound))
}

func TestStripMetadata_NestedEntries(t *testing.T) {
	root := t.TempDir()

	// Shape of a worktree with one materialized submodule: a .git directory
	// at the top and a .git pointer file inside the submodule
	gt.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(root, ".git", "config"), []byte("[core]\n"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# widget\n"), 0644))

	gt.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "codec"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "lib", "codec", ".git"),
		[]byte("gitdir: ../../.git/modules/codec\n"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "lib", "codec", "codec.c"), []byte("/* codec */\n"), 0644))

	gt.NoError(t, gitinfra.StripMetadata(root))

	for _, gone := range []string{
		filepath.Join(root, ".git"),
		filepath.Join(root, "lib", "codec", ".git"),
	} {
		_, err := os.Stat(gone)
		gt.Error(t, err)
	}
	for _, kept := range []string{
		filepath.Join(root, "README.md"),
		filepath.Join(root, "lib", "codec", "codec.c"),
	} {
		_, err := os.Stat(kept)
		gt.NoError(t, err)
	}
}

func TestCloneEngine_RecursiveClone_NoSubmodules(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)

	engine := fixtureEngine(fixture, t.TempDir())
	gt.NoError(t, engine.RecursiveClone(ctx, fixture))
}

func TestCloneEngine_ListReferences(t *testing.T) {
	ctx := context.Background()
	fixture := initFixture(t)
	scratch := t.TempDir()

	engine := fixtureEngine(fixture, scratch)
	refs, err := engine.ListReferences(ctx, testRepo())
	gt.NoError(t, err)

	found := map[string]bool{}
	for _, name := range refs {
		found[name] = true
	}
	gt.True(t, found["refs/tags/1.0.0"])
	gt.True(t, found["refs/tags/2.0.0"])

	// The throwaway clone leaves no residue in the scratch dir
	entries, err := os.ReadDir(scratch)
	gt.NoError(t, err)
	gt.Number(t, len(entries)).Equal(0)
}
