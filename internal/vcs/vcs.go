// Package vcs provides the git-backed history and snapshot providers.
package vcs

import (
	"context"

	"patina/pkg/models"
)

// History produces the ordered raw commit feed, most recent first.
type History interface {
	// Commits returns up to limit commits starting at HEAD. A limit
	// of zero means the full history.
	Commits(ctx context.Context, limit int) ([]models.Commit, error)
}

// Snapshots provides file content at a specific revision. Absent,
// deleted, and binary paths are reported with ok=false, never an
// error.
type Snapshots interface {
	Get(sha, path string) ([]byte, bool)
}
