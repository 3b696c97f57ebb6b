package trend

import (
	"patina/pkg/models"
)

// State is the running aggregate of one run (or one worker's share of
// it). It is an explicit accumulator value: workers never share a
// State, they merge partials.
type State struct {
	CommitsAnalyzed int
	FilesAnalyzed   int
	SecurityHits    int
	SkippedFiles    int
	Buckets         map[string]*models.MonthlyBucket
	ChangeSizes     []float64
	Samples         []models.FileAnalysisResult
}

// NewState creates an empty accumulator.
func NewState() *State {
	return &State{Buckets: make(map[string]*models.MonthlyBucket)}
}

// bucket returns the monthly bucket for a month key, creating it on
// first use.
func (s *State) bucket(month string) *models.MonthlyBucket {
	b, ok := s.Buckets[month]
	if !ok {
		b = &models.MonthlyBucket{
			Month:            month,
			PatternHitCounts: make(map[string]int),
		}
		s.Buckets[month] = b
	}
	return b
}

// Merge folds another partial state into s. The reduction is
// associative and commutative (integer addition per counter, per
// pattern, per month), so the merged result is identical regardless
// of worker count or completion order.
func (s *State) Merge(other *State) {
	if other == nil {
		return
	}
	s.CommitsAnalyzed += other.CommitsAnalyzed
	s.FilesAnalyzed += other.FilesAnalyzed
	s.SecurityHits += other.SecurityHits
	s.SkippedFiles += other.SkippedFiles
	s.ChangeSizes = append(s.ChangeSizes, other.ChangeSizes...)
	s.Samples = append(s.Samples, other.Samples...)

	for month, ob := range other.Buckets {
		b := s.bucket(month)
		b.CommitsSeen += ob.CommitsSeen
		b.FilesSeen += ob.FilesSeen
		b.ChangeSize += ob.ChangeSize
		for id, n := range ob.PatternHitCounts {
			b.PatternHitCounts[id] += n
		}
	}
}
