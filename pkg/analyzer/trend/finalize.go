package trend

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"patina/pkg/models"
)

// DefaultTopN is the default length of the ranked pattern list.
const DefaultTopN = 10

// Finalize turns the running state into the run summary. It is pure:
// no snapshot is re-touched. Ranking and trend ordering are computed
// here, after all merges, never incrementally.
func Finalize(state *State, topN int) *models.AnalysisSummary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	summary := &models.AnalysisSummary{
		TotalCommitsAnalyzed: state.CommitsAnalyzed,
		TotalFilesAnalyzed:   state.FilesAnalyzed,
		TotalSecurityHits:    state.SecurityHits,
		SkippedFiles:         state.SkippedFiles,
		TopPatterns:          topPatterns(state, topN),
		MonthlyTrend:         monthlyTrend(state),
		ChangeSize:           changeSizeStats(state.ChangeSizes),
		Samples:              state.Samples,
	}
	return summary
}

// topPatterns sums each pattern's hits across all monthly buckets and
// ranks descending by count, ties broken by ascending pattern ID so
// the ordering is reproducible across runs and worker counts.
func topPatterns(state *State, topN int) []models.TopPattern {
	totals := make(map[string]int)
	for _, bucket := range state.Buckets {
		for id, n := range bucket.PatternHitCounts {
			totals[id] += n
		}
	}

	ranked := make([]models.TopPattern, 0, len(totals))
	for id, n := range totals {
		ranked = append(ranked, models.TopPattern{PatternID: id, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].PatternID < ranked[j].PatternID
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// monthlyTrend orders the buckets ascending by calendar month,
// irrespective of processing order.
func monthlyTrend(state *State) []models.MonthlyBucket {
	trend := make([]models.MonthlyBucket, 0, len(state.Buckets))
	for _, bucket := range state.Buckets {
		trend = append(trend, *bucket)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Month < trend[j].Month
	})
	return trend
}

// changeSizeStats computes line-change volume statistics over the
// analyzed commits.
func changeSizeStats(sizes []float64) models.ChangeSizeStats {
	if len(sizes) == 0 {
		return models.ChangeSizeStats{}
	}

	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	sort.Float64s(sorted)

	total := 0.0
	for _, v := range sorted {
		total += v
	}

	return models.ChangeSizeStats{
		Total:  int(total),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}
