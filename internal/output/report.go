package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"patina/pkg/models"
)

// Report wraps an AnalysisSummary for rendering. JSON output carries
// the summary verbatim; text and markdown output show the ranked
// patterns and the monthly trend as tables.
type Report struct {
	Summary *models.AnalysisSummary
}

// NewReport creates a report over a finalized summary.
func NewReport(summary *models.AnalysisSummary) *Report {
	return &Report{Summary: summary}
}

// RenderData implements Renderable.
func (r *Report) RenderData() any {
	return r.Summary
}

// RenderText implements Renderable.
func (r *Report) RenderText(w io.Writer, colored bool) error {
	s := r.Summary

	sectionTitle(w, "Fix Pattern Analysis", colored)
	writeTable(w,
		[]string{"Pattern", "Hits"},
		r.patternRows(colored),
		[]string{
			fmt.Sprintf("Commits: %d", s.TotalCommitsAnalyzed),
			fmt.Sprintf("Security Hits: %d", s.TotalSecurityHits),
		},
	)

	sectionTitle(w, "Monthly Trend", colored)
	writeTable(w,
		r.trendHeaders(),
		r.trendRows(),
		[]string{
			fmt.Sprintf("Files: %d", s.TotalFilesAnalyzed),
			fmt.Sprintf("Skipped Commits: %d", s.SkippedCommits),
			fmt.Sprintf("Skipped Files: %d", s.SkippedFiles),
		},
	)

	fmt.Fprintf(w, "Change size: total %d, mean %.1f, median %.1f, p90 %.1f\n",
		s.ChangeSize.Total, s.ChangeSize.Mean, s.ChangeSize.Median, s.ChangeSize.P90)
	fmt.Fprintf(w, "Fix commit ratio: %.3f (%d candidates)\n",
		s.FixCommitRatio, s.CandidatesTotal)
	return nil
}

// RenderMarkdown implements Renderable.
func (r *Report) RenderMarkdown(w io.Writer) error {
	s := r.Summary

	fmt.Fprintf(w, "## Fix Pattern Analysis\n\n")
	writeMarkdownTable(w, []string{"Pattern", "Hits"}, r.patternRows(false))

	fmt.Fprintf(w, "## Monthly Trend\n\n")
	writeMarkdownTable(w, r.trendHeaders(), r.trendRows())

	fmt.Fprintf(w, "Commits analyzed: %d, files analyzed: %d, security hits: %d, skipped commits: %d, skipped files: %d\n",
		s.TotalCommitsAnalyzed, s.TotalFilesAnalyzed, s.TotalSecurityHits, s.SkippedCommits, s.SkippedFiles)
	return nil
}

func (r *Report) patternRows(colored bool) [][]string {
	rows := make([][]string, 0, len(r.Summary.TopPatterns))
	for _, tp := range r.Summary.TopPatterns {
		id := tp.PatternID
		if colored && strings.HasPrefix(id, "danger_") {
			id = color.RedString(id)
		}
		rows = append(rows, []string{id, fmt.Sprintf("%d", tp.Count)})
	}
	return rows
}

func (r *Report) trendHeaders() []string {
	return []string{"Month", "Commits", "Files", "Pattern Hits", "Change Size"}
}

func (r *Report) trendRows() [][]string {
	rows := make([][]string, 0, len(r.Summary.MonthlyTrend))
	for _, b := range r.Summary.MonthlyTrend {
		rows = append(rows, []string{
			b.Month,
			fmt.Sprintf("%d", b.CommitsSeen),
			fmt.Sprintf("%d", b.FilesSeen),
			fmt.Sprintf("%d", totalHits(b.PatternHitCounts)),
			fmt.Sprintf("%d", b.ChangeSize),
		})
	}
	return rows
}

// totalHits sums a bucket's per-pattern hit counts.
func totalHits(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
