package gitpub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, workDir, relPath, contents string) {
	t.Helper()
	full := filepath.Join(workDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(contents), 0o644))
}

func headCommit(t *testing.T, bareDir string) *gitCommit {
	t.Helper()
	bare, err := git.PlainOpen(bareDir)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	commit, err := bare.CommitObject(ref.Hash())
	require.NoError(t, err)
	return &gitCommit{Message: commit.Message, Name: commit.Author.Name, Email: commit.Author.Email}
}

type gitCommit struct {
	Message string
	Name    string
	Email   string
}

func TestPublishCommitsAndPushes(t *testing.T) {
	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	workDir := t.TempDir()
	relPath := filepath.Join("data", "raw", "covid_historical_data.parquet")
	writeSnapshot(t, workDir, relPath, "snapshot-v1")

	repo := New(Config{
		WorkDir:   workDir,
		RemoteURL: remoteDir,
		Name:      "Data Bot",
		Email:     "bot@example.com",
	})
	repo.now = func() time.Time {
		return time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, repo.Publish(relPath, "COVID-19 data update 2024-05-01 12:00:00"))

	commit := headCommit(t, remoteDir)
	assert.Equal(t, "COVID-19 data update 2024-05-01 12:00:00", commit.Message)
	assert.Equal(t, "Data Bot", commit.Name)
	assert.Equal(t, "bot@example.com", commit.Email)
}

func TestPublishReusesInitializedRepo(t *testing.T) {
	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)

	workDir := t.TempDir()
	relPath := filepath.Join("data", "raw", "covid_historical_data.parquet")

	repo := New(Config{
		WorkDir:   workDir,
		RemoteURL: remoteDir,
		Name:      "Data Bot",
		Email:     "bot@example.com",
	})

	writeSnapshot(t, workDir, relPath, "snapshot-v1")
	require.NoError(t, repo.Publish(relPath, "first update"))

	// Second run against the now-existing repository and remote.
	writeSnapshot(t, workDir, relPath, "snapshot-v2")
	require.NoError(t, repo.Publish(relPath, "second update"))

	commit := headCommit(t, remoteDir)
	assert.Equal(t, "second update", commit.Message)
}

func TestPublishPushFailure(t *testing.T) {
	workDir := t.TempDir()
	relPath := "covid.parquet"
	writeSnapshot(t, workDir, relPath, "snapshot")

	// The remote path exists but holds no repository; commit succeeds
	// locally, the push surfaces the failure.
	repo := New(Config{
		WorkDir:   workDir,
		RemoteURL: t.TempDir(),
		Name:      "Data Bot",
		Email:     "bot@example.com",
	})

	err := repo.Publish(relPath, "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "push")
}
