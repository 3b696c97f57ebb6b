package vcs

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"patina/pkg/models"
)

// GitRepo reads history and snapshots from a local git repository via
// go-git.
type GitRepo struct {
	repo *git.Repository

	// go-git object access is not safe for concurrent use from a
	// single Repository handle.
	mu sync.Mutex
}

// Open opens the repository at path, detecting .git in parent
// directories.
func Open(path string) (*GitRepo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return &GitRepo{repo: repo}, nil
}

// Commits walks the log from HEAD and converts each commit into the
// feed record, including changed paths and line stats.
func (r *GitRepo) Commits(ctx context.Context, limit int) ([]models.Commit, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []models.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, toCommit(c))
		if limit > 0 && len(commits) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

// toCommit converts a go-git commit. Stats failures (e.g. on the root
// commit of odd histories) degrade to an empty file list rather than
// failing the walk.
func toCommit(c *object.Commit) models.Commit {
	commit := models.Commit{
		SHA:         c.Hash.String(),
		Subject:     subjectOf(c.Message),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		AuthorDate:  c.Author.When,
	}

	stats, err := c.Stats()
	if err != nil {
		return commit
	}
	for _, fs := range stats {
		commit.Files = append(commit.Files, fs.Name)
		commit.Insertions += fs.Addition
		commit.Deletions += fs.Deletion
	}
	return commit
}

func subjectOf(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSpace(message)
}

// Get returns the content of path at the given commit. Missing and
// deleted paths, binary blobs, and non-UTF-8 content all report
// ok=false.
func (r *GitRepo) Get(sha, path string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	commit, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, false
	}
	file, err := commit.File(path)
	if err != nil {
		return nil, false
	}
	if binary, err := file.IsBinary(); err != nil || binary {
		return nil, false
	}
	contents, err := file.Contents()
	if err != nil || !utf8.ValidString(contents) {
		return nil, false
	}
	return []byte(contents), true
}

var (
	_ History   = (*GitRepo)(nil)
	_ Snapshots = (*GitRepo)(nil)
)
