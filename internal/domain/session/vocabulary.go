package session

import (
	"sort"
)

// DueForReview selects up to limit unmastered words for spaced review,
// ordered so the least recently reviewed come first. Words never reviewed
// sort before everything else.
func (s *Session) DueForReview(limit int) []VocabularyItem {
	if limit <= 0 {
		return nil
	}

	due := make([]VocabularyItem, 0, len(s.Vocabulary))
	for _, v := range s.Vocabulary {
		if !v.Mastered {
			due = append(due, v)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].LastReview, due[j].LastReview
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due
}
