package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("u1", now)

	assert.Equal(t, UserID("u1"), s.UserID)
	assert.Equal(t, LanguageEnglish, s.Language)
	assert.Equal(t, ModeCasual, s.Mode)
	assert.Equal(t, LevelBeginner, s.ProficiencyLevel)
	assert.Empty(t, s.ConversationHistory)
	assert.Empty(t, s.Vocabulary)
	assert.Equal(t, 0, s.Progress.Points)
	assert.Equal(t, 0, s.Progress.Streak)
	assert.Len(t, s.Goals, 3)
	assert.False(t, s.Settings.DailyReminder)
	assert.Equal(t, "09:00", s.Settings.ReminderTime)
}

func TestRecordMessageBoundsHistory(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)

	for i := 0; i < 30; i++ {
		s.RecordMessage("hello", "hi there")
	}

	assert.Len(t, s.ConversationHistory, MaxHistoryTurns)
	assert.Equal(t, 30, s.Progress.MessagesCount)
	// The bound keeps the newest turns, so the last entry is the latest
	// assistant reply.
	assert.Equal(t, RoleAssistant, s.ConversationHistory[MaxHistoryTurns-1].Role)
}

func TestRecentTurns(t *testing.T) {
	s := NewSession("u1", time.Now())
	s.RecordMessage("one", "reply one")
	s.RecordMessage("two", "reply two")

	turns := s.RecentTurns(2)
	require.Len(t, turns, 2)
	assert.Equal(t, "two", turns[0].Content)
	assert.Equal(t, "reply two", turns[1].Content)

	assert.Len(t, s.RecentTurns(100), 4)
	assert.Nil(t, s.RecentTurns(0))
}

func TestResetConversationKeepsProgress(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.RecordMessage("hola", "¡hola!")
	s.AddVocabulary("hola", now)
	s.AddPoints(40)
	s.Progress.Streak = 7

	s.ResetConversation()

	assert.Empty(t, s.ConversationHistory)
	assert.Equal(t, 0, s.Progress.MessagesCount)
	assert.Len(t, s.Vocabulary, 1)
	assert.Equal(t, 40, s.Progress.Points)
	assert.Equal(t, 7, s.Progress.Streak)
}

func TestRecordActivityStreak(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	day2Later := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)
	day10 := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	s := NewSession("u1", day1)

	// First-ever activity starts the streak at 1.
	assert.Equal(t, 1, s.RecordActivity(day1))

	// Next calendar day increments.
	assert.Equal(t, 2, s.RecordActivity(day2))

	// Same day again is idempotent.
	assert.Equal(t, 2, s.RecordActivity(day2Later))
	assert.Equal(t, 2, s.Progress.Streak)

	// A gap of two or more days resets to 1.
	assert.Equal(t, 1, s.RecordActivity(day10))
}

func TestApplyAnalysis(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	score := 85
	points := 10

	earned := s.ApplyAnalysis(&Analysis{
		DetectedLevel:  LevelIntermediate,
		VocabularyUsed: []string{"gato", "perro"},
		GrammarScore:   &score,
		PointsEarned:   &points,
	}, now)

	assert.Equal(t, 10, earned)
	assert.Equal(t, LevelIntermediate, s.ProficiencyLevel)
	assert.Equal(t, 85, s.Progress.GrammarScore)
	assert.Equal(t, 10, s.Progress.Points)
	assert.Len(t, s.Vocabulary, 2)
	assert.Equal(t, 2, s.Progress.VocabularyCount)
}

func TestApplyAnalysisIgnoresInvalidFields(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.Progress.GrammarScore = 70
	badScore := 150

	earned := s.ApplyAnalysis(&Analysis{
		DetectedLevel: "wizard",
		GrammarScore:  &badScore,
	}, now)

	assert.Equal(t, 0, earned)
	assert.Equal(t, LevelBeginner, s.ProficiencyLevel)
	assert.Equal(t, 70, s.Progress.GrammarScore)

	assert.Equal(t, 0, s.ApplyAnalysis(nil, now))
}

func TestApplyAnalysisOverwritesNotSmooths(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	high, low := 90, 30

	s.ApplyAnalysis(&Analysis{GrammarScore: &high, DetectedLevel: LevelAdvanced}, now)
	s.ApplyAnalysis(&Analysis{GrammarScore: &low, DetectedLevel: LevelBeginner}, now)

	// Last analysis wins outright.
	assert.Equal(t, 30, s.Progress.GrammarScore)
	assert.Equal(t, LevelBeginner, s.ProficiencyLevel)
}

func TestRecordReviewMastery(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.AddVocabulary("hola", now)
	s.Vocabulary[0].ReviewCount = 2

	item, err := s.RecordReview("hola", true, now)
	require.NoError(t, err)

	assert.Equal(t, 3, item.ReviewCount)
	assert.True(t, item.Mastered)
	require.NotNil(t, item.LastReview)
}

func TestRecordReviewIncorrectNeverMasters(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.AddVocabulary("hola", now)

	for i := 0; i < 5; i++ {
		item, err := s.RecordReview("hola", false, now)
		require.NoError(t, err)
		assert.False(t, item.Mastered)
	}
	assert.Equal(t, 5, s.Vocabulary[0].ReviewCount)
}

func TestRecordReviewMasteryNeverReverts(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.AddVocabulary("hola", now)
	s.Vocabulary[0].ReviewCount = 3
	s.Vocabulary[0].Mastered = true

	item, err := s.RecordReview("hola", false, now)
	require.NoError(t, err)
	assert.True(t, item.Mastered)
}

func TestRecordReviewUnknownWord(t *testing.T) {
	s := NewSession("u1", time.Now())

	_, err := s.RecordReview("ghost", true, time.Now())
	assert.Error(t, err)
}

func TestAddVocabularySkipsBlankWords(t *testing.T) {
	now := time.Now()
	s := NewSession("u1", now)
	s.AddVocabulary("  ", now)
	s.AddVocabulary("", now)
	s.AddVocabulary(" gato ", now)

	require.Len(t, s.Vocabulary, 1)
	assert.Equal(t, "gato", s.Vocabulary[0].Word)
}

func TestUserIDMasked(t *testing.T) {
	assert.Equal(t, "User 6789", UserID("123456789").Masked())
	assert.Equal(t, "User 42", UserID("42").Masked())
}
