package gitmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepoWithCommit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model", "energy.py"), []byte("E = m()\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("model/energy.py")
	require.NoError(t, err)
	_, err = wt.Commit("add model", &git.CommitOptions{
		Author: &object.Signature{Name: "auditor", Email: "auditor@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestCollectRepositoryMetadata(t *testing.T) {
	dir := initRepoWithCommit(t)

	md, err := Collect(dir)
	require.NoError(t, err)
	require.NotNil(t, md)

	require.NotNil(t, md.CommitHash)
	assert.Len(t, *md.CommitHash, 40)
	require.NotNil(t, md.BranchName)
	assert.Equal(t, "", md.Subfolder)
}

func TestCollectSubfolder(t *testing.T) {
	dir := initRepoWithCommit(t)

	md, err := Collect(filepath.Join(dir, "model"))
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, "model", md.Subfolder)
}

func TestCollectOutsideRepository(t *testing.T) {
	md, err := Collect(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestCollectEmptyFolder(t *testing.T) {
	_, err := Collect("")
	assert.Error(t, err)
}
