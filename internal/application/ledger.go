// Package application composes the domain and infrastructure layers into
// the operations the Telegram transport calls: the progress ledger and the
// session orchestrator.
package application

import (
	"context"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// ProgressLedger owns the session record, streak computation, and point
// accumulation. Every points change is propagated to the leaderboard inside
// the same serialized per-user update, so a user's leaderboard score never
// lags a completed points operation.
type ProgressLedger struct {
	sessions session.Repository
	board    leaderboard.Repository
	log      *logger.Logger
	now      func() time.Time
}

// NewProgressLedger creates a ledger over the given repositories.
func NewProgressLedger(sessions session.Repository, board leaderboard.Repository, log *logger.Logger) *ProgressLedger {
	if log == nil {
		log = logger.Default()
	}
	return &ProgressLedger{
		sessions: sessions,
		board:    board,
		log:      log.With(logger.Component("ledger")),
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (l *ProgressLedger) SetClock(now func() time.Time) {
	l.now = now
}

// GetOrCreateSession returns the user's session, materializing defaults for
// first-time users. Absence is never an error.
func (l *ProgressLedger) GetOrCreateSession(ctx context.Context, userID session.UserID) (*session.Session, error) {
	if !userID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	return l.sessions.GetOrCreate(ctx, userID)
}

// update runs fn inside the per-user serialized update and propagates the
// resulting points total to the leaderboard before the update commits.
func (l *ProgressLedger) update(ctx context.Context, userID session.UserID, fn session.UpdateFunc) (*session.Session, error) {
	if !userID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	return l.sessions.Update(ctx, userID, func(s *session.Session) error {
		before := s.Progress.Points
		if err := fn(s); err != nil {
			return err
		}
		if s.Progress.Points != before {
			if err := l.board.SetScore(ctx, userID.String(), s.Progress.Points); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordMessage appends a completed user/assistant exchange to the history
// (bounded to the most recent turns) and increments the message counter.
func (l *ProgressLedger) RecordMessage(ctx context.Context, userID session.UserID, userText, assistantText string) (*session.Session, error) {
	return l.update(ctx, userID, func(s *session.Session) error {
		s.RecordMessage(userText, assistantText)
		return nil
	})
}

// ApplyAnalysis folds the tutor's structured feedback into the session and
// propagates any earned points.
func (l *ProgressLedger) ApplyAnalysis(ctx context.Context, userID session.UserID, a *session.Analysis) (*session.Session, error) {
	return l.update(ctx, userID, func(s *session.Session) error {
		s.ApplyAnalysis(a, l.now())
		return nil
	})
}

// UpdateStreak records today's activity and returns the resulting streak.
// Idempotent within one UTC calendar day.
func (l *ProgressLedger) UpdateStreak(ctx context.Context, userID session.UserID) (int, error) {
	s, err := l.update(ctx, userID, func(s *session.Session) error {
		s.RecordActivity(l.now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.Progress.Streak, nil
}

// AddPoints adds delta to the user's points and returns the new total. A
// negative delta is a penalty. The leaderboard reflects the new total by
// the time this returns.
func (l *ProgressLedger) AddPoints(ctx context.Context, userID session.UserID, delta int) (int, error) {
	s, err := l.update(ctx, userID, func(s *session.Session) error {
		s.AddPoints(delta)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return s.Progress.Points, nil
}

// ResetConversation clears the history and message counter. Vocabulary,
// streak, and points are untouched.
func (l *ProgressLedger) ResetConversation(ctx context.Context, userID session.UserID) error {
	_, err := l.update(ctx, userID, func(s *session.Session) error {
		s.ResetConversation()
		return nil
	})
	if err == nil {
		l.log.Info("conversation reset", logger.UserID(userID.String()))
	}
	return err
}
