// Package trend folds per-file extraction results over candidate fix
// commits into a month-bucketed running state and finalizes it into
// the run summary.
package trend

import (
	"context"
	"errors"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"patina/internal/cache"
	"patina/pkg/extract"
	"patina/pkg/models"
	"patina/pkg/parser"
)

// Snapshots is the provider contract for file content at a revision.
// Implementations must report absent, deleted, and binary paths with
// ok=false rather than an error.
type Snapshots interface {
	Get(sha, path string) ([]byte, bool)
}

// Tick receives progress callbacks, one per processed commit.
type Tick func()

// Analyzer aggregates extraction results across candidate commits.
type Analyzer struct {
	maxFilesPerCommit int
	workers           int
	sampleSize        int
	excludePrefixes   []string
	tick              Tick
	cache             *cache.Store
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxFilesPerCommit caps the number of changed paths inspected per
// commit. The cap takes a deterministic prefix of the commit's file
// list, applied before any snapshot is fetched.
func WithMaxFilesPerCommit(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxFilesPerCommit = n
		}
	}
}

// WithWorkers sets the number of concurrent commit workers. One worker
// means strictly sequential processing.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithSampleSize retains up to n non-empty per-file results on the
// state for illustrative output.
func WithSampleSize(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.sampleSize = n
		}
	}
}

// WithExcludePrefixes skips changed paths under the given directory
// prefixes before the per-commit cap is applied.
func WithExcludePrefixes(prefixes []string) Option {
	return func(a *Analyzer) {
		a.excludePrefixes = prefixes
	}
}

// WithTick sets a per-commit progress callback.
func WithTick(tick Tick) Option {
	return func(a *Analyzer) {
		a.tick = tick
	}
}

// New creates a trend analyzer with the default caps.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxFilesPerCommit: 30,
		workers:           1,
		sampleSize:        0,
		excludePrefixes:   []string{"tests/", "docs/"},
		cache:             cache.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes the candidate commits and returns the accumulated
// state. Per-file failures never abort the run; they become counters.
func (a *Analyzer) Run(ctx context.Context, candidates []models.Commit, snaps Snapshots) (*State, error) {
	if a.workers <= 1 {
		return a.runSequential(ctx, candidates, snaps)
	}
	return a.runParallel(ctx, candidates, snaps)
}

func (a *Analyzer) runSequential(ctx context.Context, candidates []models.Commit, snaps Snapshots) (*State, error) {
	state := NewState()
	extractor := extract.New()
	defer extractor.Close()

	for _, commit := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.processCommit(ctx, commit, snaps, extractor, state)
		if a.tick != nil {
			a.tick()
		}
	}
	return state, nil
}

// runParallel computes one partial state per commit and merges them in
// candidate order. Merging is commutative, so the final state matches
// the sequential result regardless of completion order.
func (a *Analyzer) runParallel(ctx context.Context, candidates []models.Commit, snaps Snapshots) (*State, error) {
	partials := make([]*State, len(candidates))
	p := pool.New().WithMaxGoroutines(a.workers)

	for i, commit := range candidates {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			// Each worker owns its extractor; the tree-sitter
			// parser is not safe to share.
			extractor := extract.New()
			defer extractor.Close()

			partial := NewState()
			a.processCommit(ctx, commit, snaps, extractor, partial)
			partials[i] = partial
			if a.tick != nil {
				a.tick()
			}
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := NewState()
	for _, partial := range partials {
		state.Merge(partial)
	}
	// Partials each retain up to sampleSize results; re-cap after the
	// ordered merge so parallel runs sample the same files as
	// sequential ones.
	if a.sampleSize > 0 && len(state.Samples) > a.sampleSize {
		state.Samples = state.Samples[:a.sampleSize]
	}
	return state, nil
}

// processCommit folds one commit's files into state.
func (a *Analyzer) processCommit(ctx context.Context, commit models.Commit, snaps Snapshots, extractor *extract.Extractor, state *State) {
	bucket := state.bucket(commit.Month())

	for _, path := range a.selectPaths(commit.Files) {
		text, ok := snaps.Get(commit.SHA, path)
		if !ok {
			state.SkippedFiles++
			continue
		}

		result, err := a.analyzeSnapshot(ctx, extractor, models.Snapshot{SHA: commit.SHA, Path: path, Text: text})
		if err != nil {
			state.SkippedFiles++
			continue
		}

		state.FilesAnalyzed++
		state.SecurityHits += result.SecurityIssuesPotential
		bucket.FilesSeen++
		for id, n := range result.PatternHits {
			bucket.PatternHitCounts[id] += n
		}
		if a.sampleSize > 0 && len(state.Samples) < a.sampleSize && !result.Empty() {
			state.Samples = append(state.Samples, result)
		}
	}

	bucket.CommitsSeen++
	bucket.ChangeSize += commit.ChangeSize()
	state.CommitsAnalyzed++
	state.ChangeSizes = append(state.ChangeSizes, float64(commit.ChangeSize()))
}

// analyzeSnapshot runs the extractor, memoized by content hash so
// blobs recurring across commits parse once.
func (a *Analyzer) analyzeSnapshot(ctx context.Context, extractor *extract.Extractor, snap models.Snapshot) (models.FileAnalysisResult, error) {
	key := cache.Key(snap.Text)
	if cached, parseErr, ok := a.cache.Get(key); ok {
		if parseErr {
			return models.FileAnalysisResult{FilePath: snap.Path}, extract.ErrParse
		}
		cached.FilePath = snap.Path
		return cached, nil
	}

	result, err := extractor.Analyze(ctx, snap)
	a.cache.Put(key, result, errors.Is(err, extract.ErrParse))
	return result, err
}

// selectPaths filters a commit's changed paths to analyzable Python
// sources outside excluded directories, then takes the deterministic
// capped prefix.
func (a *Analyzer) selectPaths(files []string) []string {
	var selected []string
	for _, path := range files {
		if !parser.IsPythonPath(path) {
			// Unsupported files yield empty results anyway;
			// skipping them here avoids pointless snapshot
			// fetches.
			continue
		}
		if a.excluded(path) {
			continue
		}
		selected = append(selected, path)
		if len(selected) == a.maxFilesPerCommit {
			break
		}
	}
	return selected
}

func (a *Analyzer) excluded(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, prefix := range a.excludePrefixes {
		if strings.HasPrefix(normalized, prefix) || strings.Contains(normalized, "/"+prefix) {
			return true
		}
	}
	return false
}
