package trend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patina/pkg/models"
)

// mapSnapshots is a snapshot provider backed by a map keyed sha:path.
type mapSnapshots struct {
	files map[string]string
}

func (m mapSnapshots) Get(sha, path string) ([]byte, bool) {
	text, ok := m.files[sha+":"+path]
	if !ok {
		return nil, false
	}
	return []byte(text), true
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
}

func fixCommit(sha string, when time.Time, files ...string) models.Commit {
	return models.Commit{
		SHA:        sha,
		Subject:    "fix: something",
		AuthorDate: when,
		Files:      files,
		Insertions: 5,
		Deletions:  5,
	}
}

func TestRunFoldsPatternHits(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2021, time.March), "a.py", "b.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:a.py": "eval(x)\neval(y)\n",
		"c1:b.py": "def ok():\n    pass\n",
	}}

	state, err := New().Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	assert.Equal(t, 1, state.CommitsAnalyzed)
	assert.Equal(t, 2, state.FilesAnalyzed)
	assert.Equal(t, 2, state.SecurityHits)
	assert.Equal(t, 0, state.SkippedFiles)

	bucket, ok := state.Buckets["2021-03"]
	require.True(t, ok)
	assert.Equal(t, 1, bucket.CommitsSeen)
	assert.Equal(t, 2, bucket.FilesSeen)
	assert.Equal(t, 2, bucket.PatternHitCounts["danger_eval"])
}

func TestRunCountsAbsentAndUnparseable(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2022, time.June), "gone.py", "broken.py", "good.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:broken.py": "def broken(:\n",
		"c1:good.py":   "exec(cmd)\n",
	}}

	state, err := New().Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	assert.Equal(t, 2, state.SkippedFiles) // absent + parse error
	assert.Equal(t, 1, state.FilesAnalyzed)
	assert.Equal(t, 1, state.SecurityHits)
}

func TestRunSecurityHitConservation(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2022, time.January), "a.py"),
		fixCommit("c2", date(2022, time.February), "b.py"),
		fixCommit("c3", date(2022, time.February), "c.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:a.py": "eval(x)\n",
		"c2:b.py": "import pickle\npickle.loads(blob)\nos.system(cmd)\n",
		"c3:c.py": "def clean():\n    return 1\n",
	}}

	state, err := New().Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	summary := Finalize(state, 10)
	total := 0
	for _, bucket := range summary.MonthlyTrend {
		for id, n := range bucket.PatternHitCounts {
			if id == "danger_eval" || id == "danger_pickle_loads" || id == "danger_os_system" {
				total += n
			}
		}
	}
	assert.Equal(t, 3, summary.TotalSecurityHits)
	assert.Equal(t, summary.TotalSecurityHits, total)
}

func TestRunEnforcesFileCap(t *testing.T) {
	files := []string{"a.py", "b.py", "c.py", "d.py"}
	commits := []models.Commit{
		fixCommit("c1", date(2023, time.May), files...),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:a.py": "eval(a)\n",
		"c1:b.py": "eval(b)\n",
		"c1:c.py": "eval(c)\n",
		"c1:d.py": "eval(d)\n",
	}}

	a := New(WithMaxFilesPerCommit(2))
	state, err := a.Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	// Deterministic prefix: a.py and b.py only.
	assert.Equal(t, 2, state.FilesAnalyzed)
	assert.Equal(t, 2, state.SecurityHits)
}

func TestRunSkipsExcludedAndNonPython(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2023, time.May),
			"tests/test_app.py", "docs/conf.py", "image.png", "src/app.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:src/app.py": "eval(x)\n",
	}}

	state, err := New().Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	// Filtered paths are never fetched, so nothing counts as skipped.
	assert.Equal(t, 0, state.SkippedFiles)
	assert.Equal(t, 1, state.FilesAnalyzed)
}

func TestRunCommitWithNoEligibleFiles(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2020, time.July), "README.md"),
	}

	state, err := New().Run(context.Background(), commits, mapSnapshots{})
	require.NoError(t, err)

	assert.Equal(t, 1, state.CommitsAnalyzed)
	bucket, ok := state.Buckets["2020-07"]
	require.True(t, ok)
	assert.Equal(t, 1, bucket.CommitsSeen)
	assert.Equal(t, 0, bucket.FilesSeen)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	var commits []models.Commit
	snaps := mapSnapshots{files: map[string]string{}}
	months := []time.Month{time.January, time.February, time.March, time.April}
	for i, m := range months {
		sha := string(rune('a' + i))
		commits = append(commits,
			fixCommit(sha+"1", date(2021, m), "x.py"),
			fixCommit(sha+"2", date(2021, m), "y.py", "z.py"),
		)
		snaps.files[sha+"1:x.py"] = "eval(x)\nexec(y)\n"
		snaps.files[sha+"2:y.py"] = "import os\nos.popen(cmd)\n"
		snaps.files[sha+"2:z.py"] = "def f():\n    pass\n"
	}

	sequential, err := New(WithWorkers(1)).Run(context.Background(), commits, snaps)
	require.NoError(t, err)
	parallel, err := New(WithWorkers(4)).Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	assert.Equal(t, Finalize(sequential, 10), Finalize(parallel, 10))
}

func TestFinalizeMonthlyTrendSorted(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2021, time.March), "a.py"),
		fixCommit("c2", date(2021, time.January), "a.py"),
		fixCommit("c3", date(2020, time.December), "a.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:a.py": "eval(x)\n",
		"c2:a.py": "eval(x)\n",
		"c3:a.py": "eval(x)\n",
	}}

	state, err := New().Run(context.Background(), commits, snaps)
	require.NoError(t, err)
	summary := Finalize(state, 10)

	require.Len(t, summary.MonthlyTrend, 3)
	assert.Equal(t, "2020-12", summary.MonthlyTrend[0].Month)
	assert.Equal(t, "2021-01", summary.MonthlyTrend[1].Month)
	assert.Equal(t, "2021-03", summary.MonthlyTrend[2].Month)
}

func TestFinalizeTopPatternTieBreak(t *testing.T) {
	state := NewState()
	b := state.bucket("2022-01")
	b.PatternHitCounts["danger_exec"] = 3
	b.PatternHitCounts["danger_eval"] = 3
	b.PatternHitCounts["dynamic_getattr"] = 7

	summary := Finalize(state, 10)

	require.Len(t, summary.TopPatterns, 3)
	assert.Equal(t, "dynamic_getattr", summary.TopPatterns[0].PatternID)
	// Equal counts rank lexically by pattern ID.
	assert.Equal(t, "danger_eval", summary.TopPatterns[1].PatternID)
	assert.Equal(t, "danger_exec", summary.TopPatterns[2].PatternID)
}

func TestFinalizeTopPatternsTruncated(t *testing.T) {
	state := NewState()
	b := state.bucket("2022-01")
	b.PatternHitCounts["danger_eval"] = 5
	b.PatternHitCounts["danger_exec"] = 4
	b.PatternHitCounts["danger_yaml_load"] = 3

	summary := Finalize(state, 2)
	require.Len(t, summary.TopPatterns, 2)
	assert.Equal(t, "danger_eval", summary.TopPatterns[0].PatternID)
}

func TestFinalizeChangeSizeStats(t *testing.T) {
	state := NewState()
	state.ChangeSizes = []float64{30, 10, 40, 20}

	summary := Finalize(state, 10)

	assert.Equal(t, 100, summary.ChangeSize.Total)
	assert.InDelta(t, 25.0, summary.ChangeSize.Mean, 1e-9)
	assert.InDelta(t, 20.0, summary.ChangeSize.Median, 1e-9)
	assert.InDelta(t, 40.0, summary.ChangeSize.P90, 1e-9)
}

func TestStateMergeCommutative(t *testing.T) {
	build := func() (*State, *State) {
		a := NewState()
		a.CommitsAnalyzed = 2
		a.SecurityHits = 3
		ab := a.bucket("2021-01")
		ab.CommitsSeen = 2
		ab.PatternHitCounts["danger_eval"] = 3

		b := NewState()
		b.CommitsAnalyzed = 1
		b.SecurityHits = 1
		bb := b.bucket("2021-01")
		bb.CommitsSeen = 1
		bb.PatternHitCounts["danger_eval"] = 1
		bb2 := b.bucket("2021-02")
		bb2.CommitsSeen = 1
		return a, b
	}

	first, second := build()
	first.Merge(second)

	third, fourth := build()
	fourth.Merge(third)

	assert.Equal(t, Finalize(first, 10), Finalize(fourth, 10))
}

func TestRunSampleRetention(t *testing.T) {
	commits := []models.Commit{
		fixCommit("c1", date(2021, time.May), "a.py", "b.py", "c.py"),
	}
	snaps := mapSnapshots{files: map[string]string{
		"c1:a.py": "eval(x)\n",
		"c1:b.py": "exec(y)\n",
		"c1:c.py": "eval(z)\n",
	}}

	state, err := New(WithSampleSize(2)).Run(context.Background(), commits, snaps)
	require.NoError(t, err)

	require.Len(t, state.Samples, 2)
	assert.Equal(t, "a.py", state.Samples[0].FilePath)
	assert.Equal(t, "b.py", state.Samples[1].FilePath)
}
