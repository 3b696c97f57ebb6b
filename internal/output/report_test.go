package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patina/pkg/models"
)

func sampleSummary() *models.AnalysisSummary {
	return &models.AnalysisSummary{
		TotalCommitsAnalyzed: 4,
		TotalFilesAnalyzed:   9,
		TotalSecurityHits:    5,
		SkippedCommits:       12,
		SkippedFiles:         2,
		CandidatesTotal:      4,
		FixCommitRatio:       0.25,
		TopPatterns: []models.TopPattern{
			{PatternID: "danger_eval", Count: 3},
			{PatternID: "dynamic_getattr", Count: 2},
		},
		MonthlyTrend: []models.MonthlyBucket{
			{
				Month:            "2023-01",
				CommitsSeen:      2,
				FilesSeen:        5,
				PatternHitCounts: map[string]int{"danger_eval": 2, "dynamic_getattr": 1},
				ChangeSize:       40,
			},
			{
				Month:            "2023-02",
				CommitsSeen:      2,
				FilesSeen:        4,
				PatternHitCounts: map[string]int{"danger_eval": 1, "dynamic_getattr": 1},
				ChangeSize:       18,
			},
		},
		ChangeSize: models.ChangeSizeStats{Total: 58, Mean: 14.5, Median: 12, P90: 25},
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatMarkdown, ParseFormat("md"))
	assert.Equal(t, FormatMarkdown, ParseFormat("markdown"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("anything else"))
}

func TestRenderDataIsSummaryVerbatim(t *testing.T) {
	summary := sampleSummary()
	report := NewReport(summary)

	assert.Same(t, summary, report.RenderData())
}

func TestRenderDataJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(NewReport(sampleSummary()).RenderData())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, field := range []string{
		"total_commits_analyzed",
		"total_files_analyzed",
		"total_security_hits",
		"skipped_commits",
		"skipped_files",
		"top_patterns",
		"monthly_trend",
	} {
		assert.Contains(t, decoded, field)
	}

	trend, ok := decoded["monthly_trend"].([]any)
	require.True(t, ok)
	require.Len(t, trend, 2)
	first, ok := trend[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2023-01", first["month"])
	assert.Contains(t, first, "pattern_hit_counts")
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(sampleSummary()).RenderText(&buf, false))
	out := buf.String()

	assert.Contains(t, out, "Fix Pattern Analysis")
	assert.Contains(t, out, "Monthly Trend")
	assert.Contains(t, out, "danger_eval")
	assert.Contains(t, out, "2023-01")
	assert.Contains(t, out, "Skipped Commits: 12")
	assert.Contains(t, out, "Fix commit ratio: 0.250")
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReport(sampleSummary()).RenderMarkdown(&buf))
	out := buf.String()

	assert.Contains(t, out, "## Fix Pattern Analysis")
	assert.Contains(t, out, "## Monthly Trend")
	assert.Contains(t, out, "| Pattern | Hits |")
	assert.Contains(t, out, "| danger_eval | 3 |")
	assert.Contains(t, out, "| 2023-02 | 2 | 4 | 2 | 18 |")
}

func TestFormatterJSONOutput(t *testing.T) {
	path := t.TempDir() + "/report.json"
	f, err := NewFormatter(FormatJSON, path, true)
	require.NoError(t, err)

	require.NoError(t, f.Output(NewReport(sampleSummary())))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.AnalysisSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 4, decoded.TotalCommitsAnalyzed)
	require.Len(t, decoded.TopPatterns, 2)
	assert.Equal(t, "danger_eval", decoded.TopPatterns[0].PatternID)
}

func TestPatternRowsColorOnlyDanger(t *testing.T) {
	report := NewReport(sampleSummary())
	rows := report.patternRows(true)

	require.Len(t, rows, 2)
	// Dynamic patterns stay uncolored even in color mode.
	assert.Equal(t, "dynamic_getattr", rows[1][0])
	assert.True(t, strings.Contains(rows[0][0], "danger_eval"))
}

func TestTotalHits(t *testing.T) {
	assert.Equal(t, 0, totalHits(nil))
	assert.Equal(t, 6, totalHits(map[string]int{"a": 1, "b": 2, "c": 3}))
}
