// Package selector filters raw commit history down to candidate fix
// commits.
package selector

import (
	"strings"

	"patina/pkg/models"
)

// DefaultKeywords is the built-in fix heuristic keyword set.
var DefaultKeywords = []string{"fix", "bug", "security", "vuln", "cve", "patch", "error"}

// Select returns the candidate fix commits in input order, truncated
// to maxCommits, along with the number of commits not selected. A
// commit is a candidate iff its subject contains any keyword,
// case-insensitively. Once the cap is reached remaining commits are
// counted as skipped without inspecting their subjects. The function
// is pure metadata filtering; no snapshot or network work happens
// here.
func Select(commits []models.Commit, maxCommits int, keywords []string) ([]models.Commit, int) {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	var candidates []models.Commit
	for i, c := range commits {
		if maxCommits > 0 && len(candidates) >= maxCommits {
			return candidates, len(commits) - i + skippedSoFar(i, len(candidates))
		}
		if matches(c.Subject, lowered) {
			candidates = append(candidates, c)
		}
	}
	return candidates, len(commits) - len(candidates)
}

// skippedSoFar counts the inspected commits that did not match.
func skippedSoFar(inspected, selected int) int {
	return inspected - selected
}

func matches(subject string, loweredKeywords []string) bool {
	s := strings.ToLower(subject)
	for _, k := range loweredKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
