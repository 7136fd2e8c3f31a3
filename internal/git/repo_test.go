package git_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"branchflow.dev/branchflow/internal/git"
	"branchflow.dev/branchflow/testhelpers"
)

func TestGetRepoRootFrom(t *testing.T) {
	scene := testhelpers.NewScene(t)

	root, err := git.GetRepoRootFrom(scene.Dir)
	require.NoError(t, err)
	require.Equal(t, scene.Dir, root)

	// Nested directories resolve to the same root.
	nested := filepath.Join(scene.Dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	root, err = git.GetRepoRootFrom(nested)
	require.NoError(t, err)
	require.Equal(t, scene.Dir, root)
}

func TestGetRepoRootFromOutsideRepository(t *testing.T) {
	_, err := git.GetRepoRootFrom(t.TempDir())
	require.Error(t, err)
}

func TestCurrentBranch(t *testing.T) {
	scene := testhelpers.NewScene(t)

	name, err := git.CurrentBranch(scene.Dir)
	require.NoError(t, err)
	require.Equal(t, "master", name)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("hotfix/r1-fix"))
	name, err = git.CurrentBranch(scene.Dir)
	require.NoError(t, err)
	require.Equal(t, "hotfix/r1-fix", name)
}
