package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetabler-api/internal/domain"
)

func scoredSolution(termID string, hard, soft int) *domain.Solution {
	sol := domain.NewSolution(termID)
	sol.Score = domain.Score{Hard: hard, Soft: soft}
	return sol
}

func TestPublishRejectsWorseSolution(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)

	require.True(t, s.Publish("term-1", scoredSolution("term-1", 0, -4)))
	assert.False(t, s.Publish("term-1", scoredSolution("term-1", -1, 0)), "worse hard score must be rejected")
	assert.False(t, s.Publish("term-1", scoredSolution("term-1", 0, -7)), "worse soft score must be rejected")

	entry, ok := s.Get("term-1")
	require.True(t, ok)
	assert.Equal(t, domain.Score{Hard: 0, Soft: -4}, entry.Solution.Score)
}

func TestPublishAcceptsEqualAndBetterSolutions(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)

	require.True(t, s.Publish("term-1", scoredSolution("term-1", -2, 0)))
	assert.True(t, s.Publish("term-1", scoredSolution("term-1", -2, 0)), "equal score replaces the entry")
	assert.True(t, s.Publish("term-1", scoredSolution("term-1", 0, -9)))

	entry, ok := s.Get("term-1")
	require.True(t, ok)
	assert.Equal(t, domain.Score{Hard: 0, Soft: -9}, entry.Solution.Score)
}

func TestEntriesAreIsolatedPerTerm(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)

	s.Publish("term-1", scoredSolution("term-1", 0, 0))
	s.Publish("term-2", scoredSolution("term-2", -3, 0))
	assert.Equal(t, 2, s.Len())

	s.Delete("term-1")
	_, ok := s.Get("term-1")
	assert.False(t, ok)
	_, ok = s.Get("term-2")
	assert.True(t, ok)
}

func TestGetExpiresStaleEntryLazily(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Publish("term-1", scoredSolution("term-1", 0, 0))

	current = current.Add(59 * time.Second)
	_, ok := s.Get("term-1")
	assert.True(t, ok)

	current = current.Add(2 * time.Second)
	_, ok = s.Get("term-1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len(), "expired entry is removed on read")
}

func TestGetKeepsPublishLandingDuringLazyExpiry(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)
	base := time.Now()
	s.now = func() time.Time { return base }

	require.True(t, s.Publish("term-1", scoredSolution("term-1", -5, 0)))

	// Get reads the clock for the first staleness check without holding the
	// lock; publish an improvement at exactly that point so it races the
	// expiry of the old entry.
	calls := 0
	s.now = func() time.Time {
		calls++
		if calls == 1 {
			require.True(t, s.Publish("term-1", scoredSolution("term-1", 0, 0)))
		}
		return base.Add(2 * time.Minute)
	}

	entry, ok := s.Get("term-1")
	require.True(t, ok, "a publish landing during expiry must not be dropped")
	assert.Equal(t, domain.Score{Hard: 0, Soft: 0}, entry.Solution.Score)
	assert.Equal(t, 1, s.Len())
}

func TestSweepPurgesOnlyExpiredEntries(t *testing.T) {
	s := NewSolutionStore(time.Minute, nil)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Publish("old", scoredSolution("old", 0, 0))
	current = current.Add(2 * time.Minute)
	s.Publish("fresh", scoredSolution("fresh", 0, 0))

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("fresh")
	assert.True(t, ok)
}
