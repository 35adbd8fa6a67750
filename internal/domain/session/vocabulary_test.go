package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueForReviewOrdering(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-48 * time.Hour)
	later := now.Add(-1 * time.Hour)

	s := NewSession("u1", now)
	s.Vocabulary = []VocabularyItem{
		{Word: "recent", LastReview: &later},
		{Word: "fresh"}, // never reviewed
		{Word: "stale", LastReview: &earlier},
		{Word: "done", Mastered: true},
	}

	due := s.DueForReview(10)
	require.Len(t, due, 3)

	// Never-reviewed words surface first, then least recently reviewed.
	assert.Equal(t, "fresh", due[0].Word)
	assert.Equal(t, "stale", due[1].Word)
	assert.Equal(t, "recent", due[2].Word)
}

func TestDueForReviewExcludesMastered(t *testing.T) {
	s := NewSession("u1", time.Now())
	s.Vocabulary = []VocabularyItem{
		{Word: "uno", Mastered: true},
		{Word: "dos", Mastered: true},
	}

	assert.Empty(t, s.DueForReview(10))
}

func TestDueForReviewLimit(t *testing.T) {
	s := NewSession("u1", time.Now())
	for _, w := range []string{"a", "b", "c", "d", "e"} {
		s.Vocabulary = append(s.Vocabulary, VocabularyItem{Word: w})
	}

	assert.Len(t, s.DueForReview(3), 3)
	assert.Nil(t, s.DueForReview(0))
}
