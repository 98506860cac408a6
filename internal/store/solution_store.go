package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetabler-api/internal/domain"
)

// Entry is one cached best solution with its publish timestamp.
type Entry struct {
	Solution  *domain.Solution
	UpdatedAt time.Time
}

// SolutionStore keeps the latest best solution per term id. Publishes are
// atomic per key and monotonically non-worsening, so a worker's improving
// publish can never be overwritten by a stale one.
type SolutionStore struct {
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]Entry

	now func() time.Time
}

// NewSolutionStore builds a store whose entries expire after ttl.
func NewSolutionStore(ttl time.Duration, logger *zap.Logger) *SolutionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolutionStore{
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Publish stores the solution unless a strictly better one is already cached.
// Returns true when the entry was written.
func (s *SolutionStore) Publish(termID string, sol *domain.Solution) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[termID]; ok && existing.Solution.Score.BetterThan(sol.Score) {
		return false
	}
	s.entries[termID] = Entry{Solution: sol, UpdatedAt: s.now()}
	return true
}

// Get returns the cached entry for a term, expiring it lazily when stale.
func (s *SolutionStore) Get(termID string) (Entry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[termID]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if s.now().Sub(entry.UpdatedAt) <= s.ttl {
		return entry, true
	}
	// Re-check under the write lock so a publish that landed after the
	// staleness check above is never discarded.
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok = s.entries[termID]
	if !ok {
		return Entry{}, false
	}
	if s.now().Sub(entry.UpdatedAt) > s.ttl {
		delete(s.entries, termID)
		return Entry{}, false
	}
	return entry, true
}

// Delete discards the entry for a term.
func (s *SolutionStore) Delete(termID string) {
	s.mu.Lock()
	delete(s.entries, termID)
	s.mu.Unlock()
}

// Len reports the number of live entries.
func (s *SolutionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper purges expired entries every interval until ctx is cancelled,
// bounding memory held by abandoned jobs.
func (s *SolutionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Sweep removes entries older than the TTL and returns how many were purged.
func (s *SolutionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for termID, entry := range s.entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(s.entries, termID)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("swept expired solutions", zap.Int("removed", removed))
	}
	return removed
}
