package gitinfo_test

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipegate/pipegate/internal/adapters/outbound/gitinfo"
)

func TestCommitHash_NotARepository(t *testing.T) {
	adapter := gitinfo.New()

	assert.False(t, adapter.IsGitRepo(t.TempDir()))

	_, err := adapter.CommitHash(t.TempDir())
	assert.Error(t, err)
}

func TestCommitHash_ReadsHead(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author:            &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		AllowEmptyCommits: true,
	})
	require.NoError(t, err)

	adapter := gitinfo.New()
	assert.True(t, adapter.IsGitRepo(dir))

	got, err := adapter.CommitHash(dir)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), got)
}
