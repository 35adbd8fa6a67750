package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/infrastructure/persistence/memory"
)

func newTestLedger(t *testing.T) (*ProgressLedger, *memory.LeaderboardRepository) {
	t.Helper()
	board := memory.NewLeaderboardRepository()
	return NewProgressLedger(memory.NewSessionRepository(), board, nil), board
}

func TestLedgerGetOrCreateSession(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	s, err := ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID("u1"), s.UserID)

	_, err = ledger.GetOrCreateSession(ctx, "  ")
	assert.Error(t, err)
}

func TestLedgerRecordMessageTruncatesHistory(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	var last *session.Session
	for i := 0; i < 15; i++ {
		s, err := ledger.RecordMessage(ctx, "u1", "q", "a")
		require.NoError(t, err)
		last = s
	}

	assert.Len(t, last.ConversationHistory, session.MaxHistoryTurns)
	assert.Equal(t, 15, last.Progress.MessagesCount)
}

func TestLedgerAddPointsPropagatesToLeaderboard(t *testing.T) {
	ctx := context.Background()
	ledger, board := newTestLedger(t)

	total, err := ledger.AddPoints(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	total, err = ledger.AddPoints(ctx, "u1", 15)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	entry, err := board.Rank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 25, entry.Score)
}

func TestLedgerAddPointsPenalty(t *testing.T) {
	ctx := context.Background()
	ledger, board := newTestLedger(t)

	_, err := ledger.AddPoints(ctx, "u1", 10)
	require.NoError(t, err)

	total, err := ledger.AddPoints(ctx, "u1", -3)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	entry, err := board.Rank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, entry.Score)
}

func TestLedgerApplyAnalysisPropagatesPoints(t *testing.T) {
	ctx := context.Background()
	ledger, board := newTestLedger(t)
	points := 12

	s, err := ledger.ApplyAnalysis(ctx, "u1", &session.Analysis{
		VocabularyUsed: []string{"hund", "katze"},
		PointsEarned:   &points,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, s.Progress.Points)
	assert.Len(t, s.Vocabulary, 2)

	entry, err := board.Rank(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, entry.Score)
}

func TestLedgerUpdateStreakScenario(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	day10 := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

	ledger.SetClock(func() time.Time { return day1 })
	streak, err := ledger.UpdateStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// Day after last activity increments.
	ledger.SetClock(func() time.Time { return day2 })
	streak, err = ledger.UpdateStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	// Same day again is idempotent.
	streak, err = ledger.UpdateStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	// A gap resets to 1.
	ledger.SetClock(func() time.Time { return day10 })
	streak, err = ledger.UpdateStreak(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestLedgerResetConversationKeepsEverythingElse(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(t)

	_, err := ledger.RecordMessage(ctx, "u1", "hola", "¡hola!")
	require.NoError(t, err)
	_, err = ledger.AddPoints(ctx, "u1", 30)
	require.NoError(t, err)

	require.NoError(t, ledger.ResetConversation(ctx, "u1"))

	s, err := ledger.GetOrCreateSession(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.ConversationHistory)
	assert.Equal(t, 0, s.Progress.MessagesCount)
	assert.Equal(t, 30, s.Progress.Points)
}
