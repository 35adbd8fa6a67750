// Package session contains the per-user learning session model: conversation
// history, progress counters, streaks, vocabulary, and quiz state.
// This is the core of the business logic - there are no external dependencies here.
package session

import (
	"strings"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// UserID is an opaque stable user identifier, typically the Telegram user ID
// rendered as a string.
type UserID string

// IsValid checks that the UserID is non-empty.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// String returns the string representation of the user ID.
func (u UserID) String() string {
	return string(u)
}

// Masked returns the last 4 characters of the ID, for display when the
// transport cannot resolve a real name.
func (u UserID) Masked() string {
	s := string(u)
	if len(s) <= 4 {
		return "User " + s
	}
	return "User " + s[len(s)-4:]
}

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser is a turn written by the learner.
	RoleUser Role = "user"
	// RoleAssistant is a turn written by the AI tutor.
	RoleAssistant Role = "assistant"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Language is the target language the user is learning.
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageGerman     Language = "german"
	LanguageJapanese   Language = "japanese"
	LanguageItalian    Language = "italian"
	LanguagePortuguese Language = "portuguese"
	LanguageMandarin   Language = "mandarin"
	LanguageKorean     Language = "korean"
	LanguageArabic     Language = "arabic"
)

// SupportedLanguages lists every language the bot can teach, in menu order.
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
	LanguageJapanese,
	LanguageItalian,
	LanguagePortuguese,
	LanguageMandarin,
	LanguageKorean,
	LanguageArabic,
}

// IsValid checks that the language is supported.
func (l Language) IsValid() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

// String returns the string representation of the language.
func (l Language) String() string {
	return string(l)
}

// Mode determines the conversation style of the tutor.
type Mode string

const (
	// ModeCasual is free-form everyday conversation practice.
	ModeCasual Mode = "casual"
	// ModeStructured is lesson-like practice with explicit corrections.
	ModeStructured Mode = "structured"
)

// IsValid checks that the mode is known.
func (m Mode) IsValid() bool {
	return m == ModeCasual || m == ModeStructured
}

// ProficiencyLevel is the user's current skill level in the target language.
type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "beginner"
	LevelIntermediate ProficiencyLevel = "intermediate"
	LevelAdvanced     ProficiencyLevel = "advanced"
)

// IsValid checks that the level is known.
func (p ProficiencyLevel) IsValid() bool {
	return p == LevelBeginner || p == LevelIntermediate || p == LevelAdvanced
}

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// MaxHistoryTurns bounds the stored conversation history. Older turns
	// are dropped when new ones arrive.
	MaxHistoryTurns = 20

	// ContextTurns is how many recent turns are sent to the tutor as context.
	ContextTurns = 10

	// MasteryReviewCount is the minimum review count (post-increment) at
	// which a correctly answered word becomes mastered.
	MasteryReviewCount = 3

	// GrammarScoreMin and GrammarScoreMax bound the tutor's grammar score.
	GrammarScoreMin = 0
	GrammarScoreMax = 100
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Turn is a single conversation message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Progress holds the user's accumulated learning metrics.
type Progress struct {
	VocabularyCount int       `json:"vocabularyCount"`
	GrammarScore    int       `json:"grammarScore"`
	MessagesCount   int       `json:"messagesCount"`
	Streak          int       `json:"streak"`
	LastActiveDate  time.Time `json:"lastActiveDate"`
	Points          int       `json:"points"`
}

// VocabularyItem is a word the user has encountered, with its review history.
type VocabularyItem struct {
	Word        string     `json:"word"`
	AddedAt     time.Time  `json:"addedAt"`
	ReviewCount int        `json:"reviewCount"`
	LastReview  *time.Time `json:"lastReview,omitempty"`
	Mastered    bool       `json:"mastered"`
}

// Settings holds per-user preferences.
type Settings struct {
	DailyReminder bool   `json:"dailyReminder"`
	ReminderTime  string `json:"reminderTime"`
}

// Session is the per-user durable record of learning state. It is mutated
// only through its methods; persistence is the repository's concern.
type Session struct {
	UserID              UserID           `json:"userId"`
	Language            Language         `json:"language"`
	Mode                Mode             `json:"mode"`
	ProficiencyLevel    ProficiencyLevel `json:"proficiencyLevel"`
	ConversationHistory []Turn           `json:"conversationHistory"`
	Progress            Progress         `json:"progress"`
	Goals               []string         `json:"goals"`
	Vocabulary          []VocabularyItem `json:"vocabulary"`
	Settings            Settings         `json:"settings"`
	ActiveQuiz          *Quiz            `json:"activeQuiz,omitempty"`
	QuizIndex           int              `json:"quizIndex"`
}

// DefaultGoals are the initial learning objectives for a fresh session.
// The UI language of the bot is Indonesian.
var DefaultGoals = []string{
	"Menguasai salam dan perkenalan dasar",
	"Mempelajari konjugasi kata kerja present tense",
	"Membangun kosakata sehari-hari (100 kata)",
}

// NewSession materializes a session with default values for a first-time user.
func NewSession(userID UserID, now time.Time) *Session {
	goals := make([]string, len(DefaultGoals))
	copy(goals, DefaultGoals)

	return &Session{
		UserID:              userID,
		Language:            LanguageEnglish,
		Mode:                ModeCasual,
		ProficiencyLevel:    LevelBeginner,
		ConversationHistory: []Turn{},
		Progress: Progress{
			LastActiveDate: now,
		},
		Goals:      goals,
		Vocabulary: []VocabularyItem{},
		Settings: Settings{
			DailyReminder: false,
			ReminderTime:  "09:00",
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CONVERSATION
// ══════════════════════════════════════════════════════════════════════════════

// AppendTurn adds a single turn to the history, dropping the oldest entries
// beyond MaxHistoryTurns.
func (s *Session) AppendTurn(role Role, content string) {
	s.ConversationHistory = append(s.ConversationHistory, Turn{Role: role, Content: content})
	if n := len(s.ConversationHistory); n > MaxHistoryTurns {
		s.ConversationHistory = s.ConversationHistory[n-MaxHistoryTurns:]
	}
}

// RecordMessage appends a completed user/assistant exchange and increments
// the message counter.
func (s *Session) RecordMessage(userText, assistantText string) {
	s.AppendTurn(RoleUser, userText)
	s.AppendTurn(RoleAssistant, assistantText)
	s.Progress.MessagesCount++
}

// RecentTurns returns up to n most recent turns for tutor context.
func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.ConversationHistory) == 0 {
		return nil
	}
	if len(s.ConversationHistory) <= n {
		return s.ConversationHistory
	}
	return s.ConversationHistory[len(s.ConversationHistory)-n:]
}

// ResetConversation clears the history and the message counter. Vocabulary,
// streak, and points are kept.
func (s *Session) ResetConversation() {
	s.ConversationHistory = []Turn{}
	s.Progress.MessagesCount = 0
}

// ══════════════════════════════════════════════════════════════════════════════
// STREAK & POINTS
// ══════════════════════════════════════════════════════════════════════════════

// RecordActivity updates the daily streak based on the UTC calendar day of
// now versus the last active date. Calling it twice on the same day is a
// no-op. Returns the resulting streak.
func (s *Session) RecordActivity(now time.Time) int {
	last := s.Progress.LastActiveDate

	if s.Progress.Streak > 0 && timeutil.SameDay(last, now) {
		return s.Progress.Streak
	}

	if s.Progress.Streak > 0 && timeutil.IsYesterday(last, now) {
		s.Progress.Streak++
	} else {
		s.Progress.Streak = 1
	}
	s.Progress.LastActiveDate = now
	return s.Progress.Streak
}

// AddPoints increases the accumulated points and returns the new total.
func (s *Session) AddPoints(delta int) int {
	s.Progress.Points += delta
	return s.Progress.Points
}

// ══════════════════════════════════════════════════════════════════════════════
// TUTOR ANALYSIS
// ══════════════════════════════════════════════════════════════════════════════

// Analysis is the tutor's structured feedback on a user message. Every field
// is optional: the tutor is a partially-trustworthy collaborator and absent
// or invalid fields are simply ignored.
type Analysis struct {
	Feedback       string           `json:"feedback,omitempty"`
	DetectedLevel  ProficiencyLevel `json:"detectedLevel,omitempty"`
	VocabularyUsed []string         `json:"vocabularyUsed,omitempty"`
	GrammarScore   *int             `json:"grammarScore,omitempty"`
	PointsEarned   *int             `json:"pointsEarned,omitempty"`
}

// IsEmpty reports whether the analysis carries no usable fields.
func (a *Analysis) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.Feedback == "" && a.DetectedLevel == "" &&
		len(a.VocabularyUsed) == 0 && a.GrammarScore == nil && a.PointsEarned == nil
}

// ApplyAnalysis folds the tutor's feedback into the session. The detected
// level and grammar score overwrite the stored values, the last analysis
// wins. Returns the points earned so the caller can propagate the new total
// to the leaderboard.
func (s *Session) ApplyAnalysis(a *Analysis, now time.Time) int {
	if a == nil {
		return 0
	}

	if a.DetectedLevel.IsValid() {
		s.ProficiencyLevel = a.DetectedLevel
	}
	if a.GrammarScore != nil {
		score := *a.GrammarScore
		if score >= GrammarScoreMin && score <= GrammarScoreMax {
			s.Progress.GrammarScore = score
		}
	}
	for _, word := range a.VocabularyUsed {
		s.AddVocabulary(word, now)
	}

	earned := 0
	if a.PointsEarned != nil && *a.PointsEarned > 0 {
		earned = *a.PointsEarned
		s.AddPoints(earned)
	}
	return earned
}

// ══════════════════════════════════════════════════════════════════════════════
// VOCABULARY
// ══════════════════════════════════════════════════════════════════════════════

// AddVocabulary appends a new vocabulary item with default review state.
// Duplicate words are tolerated as separate entries; reviews always match
// the first entry with the given word.
func (s *Session) AddVocabulary(word string, now time.Time) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	s.Vocabulary = append(s.Vocabulary, VocabularyItem{
		Word:    word,
		AddedAt: now,
	})
	s.Progress.VocabularyCount = len(s.Vocabulary)
}

// RecordReview records the outcome of reviewing a word. The review count
// always increments and the review time updates; mastery is reached only
// when the answer was correct and the incremented count is at least
// MasteryReviewCount. Mastery never reverts. Returns the updated item, or
// an error if the word is not in the vocabulary.
func (s *Session) RecordReview(word string, correct bool, now time.Time) (*VocabularyItem, error) {
	for i := range s.Vocabulary {
		if s.Vocabulary[i].Word != word {
			continue
		}
		item := &s.Vocabulary[i]
		item.ReviewCount++
		t := now
		item.LastReview = &t
		if correct && item.ReviewCount >= MasteryReviewCount {
			item.Mastered = true
		}
		return item, nil
	}
	return nil, shared.WrapError("session", "RecordReview", shared.ErrNotFound,
		"word not in vocabulary", nil)
}

// MasteredCount returns how many vocabulary items are mastered.
func (s *Session) MasteredCount() int {
	n := 0
	for _, v := range s.Vocabulary {
		if v.Mastered {
			n++
		}
	}
	return n
}
