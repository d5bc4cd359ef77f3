package gitpub

import (
	"errors"
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Config carries everything needed to commit and push a snapshot file.
// It is read once at startup and passed in explicitly; the transform core
// never sees it.
type Config struct {
	// WorkDir is the repository work tree the output file is written under.
	WorkDir string

	RemoteURL string

	// Token is used as HTTP basic-auth credential for http(s) remotes.
	// Local and ssh remotes ignore it.
	Token string

	// Committer identity.
	Name  string
	Email string
}

// Repo publishes written snapshot files to a git remote: init/open the
// repository, ensure the origin remote, stage, commit, push.
type Repo struct {
	cfg Config
	now func() time.Time
}

// New creates a publisher for the given repository configuration.
func New(cfg Config) *Repo {
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	return &Repo{cfg: cfg, now: time.Now}
}

// Publish stages path (relative to the work tree), commits it under the
// configured identity, and pushes the current branch to origin. The
// repository is initialized on first use. Any failing step surfaces as an
// error; there is no retry and no rollback of the written file.
func (r *Repo) Publish(path, commitMessage string) error {
	repo, err := r.open()
	if err != nil {
		return err
	}

	if err := r.ensureRemote(repo); err != nil {
		return fmt.Errorf("configure remote: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open work tree: %w", err)
	}

	if _, err := wt.Add(path); err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}

	sig := &object.Signature{
		Name:  r.cfg.Name,
		Email: r.cfg.Email,
		When:  r.now(),
	}
	if _, err := wt.Commit(commitMessage, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	opts := &git.PushOptions{RemoteName: git.DefaultRemoteName}
	if r.cfg.Token != "" && strings.HasPrefix(r.cfg.RemoteURL, "http") {
		opts.Auth = &githttp.BasicAuth{Username: r.cfg.Name, Password: r.cfg.Token}
	}
	if err := repo.Push(opts); err != nil {
		return fmt.Errorf("push to %s: %w", r.cfg.RemoteURL, err)
	}

	return nil
}

func (r *Repo) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(r.cfg.WorkDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(r.cfg.WorkDir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

func (r *Repo) ensureRemote(repo *git.Repository) error {
	_, err := repo.Remote(git.DefaultRemoteName)
	if errors.Is(err, git.ErrRemoteNotFound) {
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{r.cfg.RemoteURL},
		})
	}
	return err
}
