// Package cache memoizes per-snapshot extraction results within a run.
// Fix histories revisit the same blobs across commits; keying by
// content hash avoids re-parsing identical snapshots.
package cache

import (
	"encoding/hex"
	"sync"

	"github.com/zeebo/blake3"

	"patina/pkg/models"
)

// Store is an in-memory result cache keyed by content hash. Safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	result   models.FileAnalysisResult
	parseErr bool
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Key computes a BLAKE3 content hash as a hex string.
func Key(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for a key. The cached result carries
// no file path; callers overlay their own. The second return reports
// whether the original extraction failed to parse, the third whether
// the key was present.
func (s *Store) Get(key string) (models.FileAnalysisResult, bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e.result, e.parseErr, ok
}

// Put stores an extraction outcome. The file path is stripped so the
// entry is valid for any path carrying the same content.
func (s *Store) Put(key string, result models.FileAnalysisResult, parseErr bool) {
	result.FilePath = ""
	s.mu.Lock()
	s.entries[key] = entry{result: result, parseErr: parseErr}
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
