package models

// MonthlyBucket aggregates counters for one calendar month of fix
// commit activity.
type MonthlyBucket struct {
	Month            string         `json:"month"`
	CommitsSeen      int            `json:"commits_seen"`
	FilesSeen        int            `json:"files_seen"`
	PatternHitCounts map[string]int `json:"pattern_hit_counts"`
	ChangeSize       int            `json:"change_size"`
}

// TopPattern is one entry of the globally ranked pattern list.
type TopPattern struct {
	PatternID string `json:"pattern_id"`
	Count     int    `json:"count"`
}

// ChangeSizeStats summarizes the line-change volume of the analyzed
// commits.
type ChangeSizeStats struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// AnalysisSummary is the sole artifact of a run, handed to the report
// sink. MonthlyTrend is always sorted ascending by month and
// TopPatterns descending by count with ties broken by pattern ID.
type AnalysisSummary struct {
	TotalCommitsAnalyzed int                  `json:"total_commits_analyzed"`
	TotalFilesAnalyzed   int                  `json:"total_files_analyzed"`
	TotalSecurityHits    int                  `json:"total_security_hits"`
	SkippedCommits       int                  `json:"skipped_commits"`
	SkippedFiles         int                  `json:"skipped_files"`
	CandidatesTotal      int                  `json:"candidates_total"`
	FixCommitRatio       float64              `json:"fix_commit_ratio"`
	TopPatterns          []TopPattern         `json:"top_patterns"`
	MonthlyTrend         []MonthlyBucket      `json:"monthly_trend"`
	ChangeSize           ChangeSizeStats      `json:"change_size"`
	Samples              []FileAnalysisResult `json:"samples,omitempty"`
}
