package session

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ MODEL
// ══════════════════════════════════════════════════════════════════════════════

// QuestionType is the kind of quiz question generated for a word.
type QuestionType string

const (
	// QuestionTranslation asks for the meaning of the word.
	QuestionTranslation QuestionType = "translation"
	// QuestionUsage asks the user to build a sentence with the word.
	QuestionUsage QuestionType = "usage"
)

// QuizQuestion is a single generated question. Immutable after generation.
type QuizQuestion struct {
	Word     string       `json:"word"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
}

// Quiz is an ordered set of questions generated once per quiz start and
// consumed sequentially through Session.QuizIndex.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
	StartedAt time.Time      `json:"startedAt"`
}

// Len returns the number of questions.
func (q *Quiz) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Questions)
}

const (
	// DefaultQuizSize is how many questions a quiz draws from the vocabulary.
	DefaultQuizSize = 5

	// PointsPerCorrectAnswer is awarded for each correctly answered question.
	PointsPerCorrectAnswer = 5

	// QuizCompletionBonus is awarded once when the final question is answered.
	QuizCompletionBonus = 25
)

// GenerateQuiz draws a uniform-random subset of count words without
// replacement and renders one question per word. The question type is chosen
// independently with equal probability. Mastered words are eligible on equal
// footing with unmastered ones.
func GenerateQuiz(vocabulary []VocabularyItem, count int, now time.Time) (*Quiz, error) {
	if len(vocabulary) == 0 {
		return nil, shared.ErrNoVocabulary
	}
	if count <= 0 {
		count = DefaultQuizSize
	}
	if count > len(vocabulary) {
		count = len(vocabulary)
	}

	perm := rand.Perm(len(vocabulary))
	questions := make([]QuizQuestion, 0, count)
	for _, idx := range perm[:count] {
		word := vocabulary[idx].Word
		qt := QuestionTranslation
		if rand.Intn(2) == 1 {
			qt = QuestionUsage
		}
		questions = append(questions, QuizQuestion{
			Word:     word,
			Type:     qt,
			Question: renderQuestion(qt, word),
		})
	}

	return &Quiz{Questions: questions, StartedAt: now}, nil
}

// renderQuestion renders the fixed Indonesian template for a question type.
func renderQuestion(qt QuestionType, word string) string {
	if qt == QuestionUsage {
		return fmt.Sprintf("Buat kalimat menggunakan kata %q", word)
	}
	return fmt.Sprintf("Apa arti kata %q?", word)
}

// GradeAnswer performs the deliberately lenient grading: case-insensitive
// substring containment in either direction after trimming whitespace.
func GradeAnswer(expectedWord, userAnswer string) bool {
	answer := strings.ToLower(strings.TrimSpace(userAnswer))
	expected := strings.ToLower(strings.TrimSpace(expectedWord))
	if answer == "" || expected == "" {
		return false
	}
	return strings.Contains(answer, expected) || strings.Contains(expected, answer)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ PROGRESSION
// ══════════════════════════════════════════════════════════════════════════════

// QuizState describes where the session is in the quiz flow.
type QuizState int

const (
	// QuizIdle means no quiz is running.
	QuizIdle QuizState = iota
	// QuizInProgress means a question awaits an answer.
	QuizInProgress
)

// QuizStatus reports the current quiz state of a session.
func (s *Session) QuizStatus() QuizState {
	if s.ActiveQuiz == nil || s.QuizIndex >= s.ActiveQuiz.Len() {
		return QuizIdle
	}
	return QuizInProgress
}

// CurrentQuestion returns the question awaiting an answer, or an error when
// no quiz is in progress.
func (s *Session) CurrentQuestion() (*QuizQuestion, error) {
	if s.QuizStatus() != QuizInProgress {
		return nil, shared.ErrNoQuizActive
	}
	return &s.ActiveQuiz.Questions[s.QuizIndex], nil
}

// StartQuiz generates a fresh quiz over the current vocabulary and sets the
// cursor to the first question. Any prior quiz is discarded.
func (s *Session) StartQuiz(count int, now time.Time) (*QuizQuestion, error) {
	quiz, err := GenerateQuiz(s.Vocabulary, count, now)
	if err != nil {
		return nil, err
	}
	s.ActiveQuiz = quiz
	s.QuizIndex = 0
	return &quiz.Questions[0], nil
}

// SkipQuiz abandons the active quiz with no penalty.
func (s *Session) SkipQuiz() {
	s.ActiveQuiz = nil
	s.QuizIndex = 0
}

// AnswerResult describes the outcome of answering the current quiz question.
type AnswerResult struct {
	Correct       bool
	Word          string
	Mastered      bool
	PointsAwarded int
	QuizComplete  bool
	NextQuestion  *QuizQuestion
}

// AnswerQuiz grades the answer to the current question and advances the
// state machine. A correct answer awards PointsPerCorrectAnswer, records a
// successful review, and moves to the next question; finishing the last
// question additionally awards QuizCompletionBonus and clears the quiz. An
// incorrect answer records the failed review and leaves the cursor in place
// so the question repeats.
func (s *Session) AnswerQuiz(answer string, now time.Time) (*AnswerResult, error) {
	question, err := s.CurrentQuestion()
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Word: question.Word}
	result.Correct = GradeAnswer(question.Word, answer)

	item, err := s.RecordReview(question.Word, result.Correct, now)
	if err != nil {
		// The quiz was generated from the vocabulary, so the word must
		// still exist; a miss means the session record is inconsistent.
		return nil, err
	}
	result.Mastered = item.Mastered

	if !result.Correct {
		return result, nil
	}

	result.PointsAwarded = PointsPerCorrectAnswer
	if s.QuizIndex+1 < s.ActiveQuiz.Len() {
		s.QuizIndex++
		result.NextQuestion = &s.ActiveQuiz.Questions[s.QuizIndex]
	} else {
		result.QuizComplete = true
		result.PointsAwarded += QuizCompletionBonus
		s.ActiveQuiz = nil
		s.QuizIndex = 0
	}
	s.AddPoints(result.PointsAwarded)

	return result, nil
}
