package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/persistence/memory"
)

// mockTutor returns a canned reply, or fails on demand.
type mockTutor struct {
	reply    string
	analysis *session.Analysis
	err      error
	calls    int
}

func (m *mockTutor) Chat(ctx context.Context, s *session.Session, userMessage string) (string, *session.Analysis, error) {
	m.calls++
	if m.err != nil {
		return "", nil, m.err
	}
	return m.reply, m.analysis, nil
}

type testHarness struct {
	orch    *Orchestrator
	tutor   *mockTutor
	board   *memory.LeaderboardRepository
	limiter *memory.RateLimiter
	ledger  *ProgressLedger
}

func newHarness(t *testing.T, policy ratelimit.Policy) *testHarness {
	t.Helper()
	board := memory.NewLeaderboardRepository()
	ledger := NewProgressLedger(memory.NewSessionRepository(), board, nil)
	tutor := &mockTutor{reply: "¡Muy bien!"}
	limiter := memory.NewRateLimiter()

	return &testHarness{
		orch:    NewOrchestrator(ledger, limiter, tutor, nil, policy, nil),
		tutor:   tutor,
		board:   board,
		limiter: limiter,
		ledger:  ledger,
	}
}

func TestConverseHappyPath(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())
	score := 75
	points := 8
	h.tutor.analysis = &session.Analysis{
		Feedback:       "Coba gunakan kata sambung",
		DetectedLevel:  session.LevelIntermediate,
		VocabularyUsed: []string{"bien"},
		GrammarScore:   &score,
		PointsEarned:   &points,
	}

	res, err := h.orch.Converse(ctx, "u1", "hola, ¿cómo estás?")
	require.NoError(t, err)

	assert.Equal(t, "¡Muy bien!", res.Reply)
	assert.Equal(t, "Coba gunakan kata sambung", res.Feedback)
	assert.Equal(t, 1, res.Streak)
	assert.False(t, res.RateLimited)

	s, err := h.ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, s.ConversationHistory, 2)
	assert.Equal(t, 1, s.Progress.MessagesCount)
	assert.Equal(t, session.LevelIntermediate, s.ProficiencyLevel)
	assert.Equal(t, 75, s.Progress.GrammarScore)
	assert.Equal(t, 8, s.Progress.Points)
	assert.Len(t, s.Vocabulary, 1)

	entry, err := h.board.Rank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, entry.Score)
}

func TestConverseRateLimited(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.Policy{MaxAttempts: 2, Window: 60 * time.Second})

	for i := 0; i < 2; i++ {
		_, err := h.orch.Converse(ctx, "u1", "hola")
		require.NoError(t, err)
	}

	res, err := h.orch.Converse(ctx, "u1", "hola")
	require.NoError(t, err)
	assert.True(t, res.RateLimited)
	assert.Greater(t, res.WaitSeconds, 0)
	assert.Empty(t, res.Reply)

	// The rejected message never reached the tutor.
	assert.Equal(t, 2, h.tutor.calls)
}

func TestConverseTutorFailureKeepsUserTurnOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())
	h.tutor.err = errors.New("upstream down")

	_, err := h.orch.Converse(ctx, "u1", "bonjour")
	require.Error(t, err)

	s, err := h.ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)

	// The user's turn was committed before the call; nothing else was.
	require.Len(t, s.ConversationHistory, 1)
	assert.Equal(t, session.RoleUser, s.ConversationHistory[0].Role)
	assert.Equal(t, 0, s.Progress.MessagesCount)
	assert.Equal(t, 0, s.Progress.Points)

	// The streak update survives the failure.
	assert.Equal(t, 1, s.Progress.Streak)
}

func TestConverseEmptyMessage(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.orch.Converse(context.Background(), "u1", "   ")
	assert.True(t, errors.Is(err, shared.ErrEmptyValue))
}

func TestConverseDuringQuizGradesAnswer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.ledger.ApplyAnalysis(ctx, "u1", &session.Analysis{
		VocabularyUsed: []string{"gato"},
	})
	require.NoError(t, err)

	first, err := h.orch.StartQuiz(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, "gato", first.Word)

	res, err := h.orch.Converse(ctx, "u1", "gato means cat")
	require.NoError(t, err)

	require.NotNil(t, res.Quiz)
	assert.True(t, res.Quiz.Correct)
	assert.True(t, res.Quiz.QuizComplete)

	// Quiz answers never reach the tutor.
	assert.Equal(t, 0, h.tutor.calls)
}

func TestConverseDuringQuizSkipWord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.ledger.ApplyAnalysis(ctx, "u1", &session.Analysis{
		VocabularyUsed: []string{"gato", "perro"},
	})
	require.NoError(t, err)

	_, err = h.orch.StartQuiz(ctx, "u1", 2)
	require.NoError(t, err)

	res, err := h.orch.Converse(ctx, "u1", "lewati")
	require.NoError(t, err)
	assert.True(t, res.QuizSkipped)

	s, err := h.ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.QuizIdle, s.QuizStatus())
	assert.Equal(t, 0, s.Progress.Points)
}

func TestQuizFlowAwardsPointsAndBonus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.ledger.ApplyAnalysis(ctx, "u1", &session.Analysis{
		VocabularyUsed: []string{"uno", "dos"},
	})
	require.NoError(t, err)

	first, err := h.orch.StartQuiz(ctx, "u1", 2)
	require.NoError(t, err)

	// Wrong answer repeats the question without points.
	res, err := h.orch.AnswerQuiz(ctx, "u1", "zzzzzz")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	res, err = h.orch.AnswerQuiz(ctx, "u1", first.Word)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	require.NotNil(t, res.NextQuestion)

	res, err = h.orch.AnswerQuiz(ctx, "u1", res.NextQuestion.Word)
	require.NoError(t, err)
	assert.True(t, res.QuizComplete)

	s, err := h.ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)
	expected := 2*session.PointsPerCorrectAnswer + session.QuizCompletionBonus
	assert.Equal(t, expected, s.Progress.Points)

	entry, err := h.board.Rank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, expected, entry.Score)
}

func TestStartQuizWithoutVocabulary(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.orch.StartQuiz(context.Background(), "u1", 5)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestAnswerQuizWithoutActiveQuiz(t *testing.T) {
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.orch.AnswerQuiz(context.Background(), "u1", "hola")
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestSetLanguageValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	require.NoError(t, h.orch.SetLanguage(ctx, "u1", session.LanguageJapanese))

	s, err := h.orch.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.LanguageJapanese, s.Language)

	assert.Error(t, h.orch.SetLanguage(ctx, "u1", "klingon"))
}

func TestSetModeAndReminder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	require.NoError(t, h.orch.SetMode(ctx, "u1", session.ModeStructured))
	require.NoError(t, h.orch.SetDailyReminder(ctx, "u1", true))

	s, err := h.orch.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeStructured, s.Mode)
	assert.True(t, s.Settings.DailyReminder)

	assert.Error(t, h.orch.SetMode(ctx, "u1", "chaotic"))
}

func TestTopAndMyRank(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.ledger.AddPoints(ctx, "u1", 50)
	require.NoError(t, err)
	_, err = h.ledger.AddPoints(ctx, "u2", 80)
	require.NoError(t, err)

	top, err := h.orch.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "u2", top[0].UserID)

	entry, err := h.orch.MyRank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Rank)

	_, err = h.orch.MyRank(ctx, "ghost")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestReviewWords(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.ledger.ApplyAnalysis(ctx, "u1", &session.Analysis{
		VocabularyUsed: []string{"eins", "zwei", "drei"},
	})
	require.NoError(t, err)

	words, err := h.orch.ReviewWords(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, words, 2)
}

func TestResetKeepsVocabularyAndPoints(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, ratelimit.DefaultPolicy())

	_, err := h.orch.Converse(ctx, "u1", "hallo")
	require.NoError(t, err)
	_, err = h.ledger.AddPoints(ctx, "u1", 5)
	require.NoError(t, err)

	require.NoError(t, h.orch.Reset(ctx, "u1"))

	s, err := h.orch.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.ConversationHistory)
	assert.Equal(t, 0, s.Progress.MessagesCount)
	assert.Equal(t, 5, s.Progress.Points)
}
