package models

// FileAnalysisResult holds the pattern and structure metrics extracted
// from a single file snapshot.
type FileAnalysisResult struct {
	FilePath                string         `json:"file_path"`
	PatternsFound           []string       `json:"patterns_found"`
	PatternHits             map[string]int `json:"pattern_hit_counts,omitempty"`
	SecurityIssuesPotential int            `json:"security_issues_potential"`
	ComplexityScore         int            `json:"complexity_score"`
	FunctionCount           int            `json:"function_count"`
	ClassCount              int            `json:"class_count"`
	ImportCount             int            `json:"import_count"`
}

// Empty reports whether the result carries no signal at all, as is the
// case for unsupported file types and absent snapshots.
func (r FileAnalysisResult) Empty() bool {
	return len(r.PatternsFound) == 0 &&
		r.SecurityIssuesPotential == 0 &&
		r.ComplexityScore == 0 &&
		r.FunctionCount == 0 &&
		r.ClassCount == 0 &&
		r.ImportCount == 0
}
