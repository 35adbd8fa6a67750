package application

import (
	"context"
	"strings"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/leaderboard"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/ratelimit"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// Tutor is the external AI tutor. Chat returns the natural-language reply
// and the optional structured analysis; a nil analysis means the tutor
// omitted it or produced something unusable.
type Tutor interface {
	Chat(ctx context.Context, s *session.Session, userMessage string) (string, *session.Analysis, error)
}

// Analytics counts daily events. Failures are advisory and never block a
// user interaction.
type Analytics interface {
	Track(ctx context.Context, event string) error
}

// NopAnalytics discards all events.
type NopAnalytics struct{}

// Track implements Analytics.
func (NopAnalytics) Track(ctx context.Context, event string) error { return nil }

// Analytics event names.
const (
	EventMessage         = "message"
	EventRateLimited     = "rate_limited"
	EventTutorError      = "tutor_error"
	EventQuizStarted     = "quiz_started"
	EventQuizCompleted   = "quiz_completed"
	EventLanguageChanged = "language_changed"
	EventReset           = "reset"
)

// skipWords are the freeform inputs that abandon an active quiz.
var skipWords = map[string]bool{
	"skip":   true,
	"lewati": true,
	"batal":  true,
}

// ══════════════════════════════════════════════════════════════════════════════
// ORCHESTRATOR
// ══════════════════════════════════════════════════════════════════════════════

// Orchestrator is the façade the transport layer calls. It composes the
// rate limiter, the progress ledger, the quiz flow, and the tutor per user
// action, returning plain data for the transport to format.
type Orchestrator struct {
	ledger    *ProgressLedger
	limiter   ratelimit.Limiter
	tutor     Tutor
	analytics Analytics
	policy    ratelimit.Policy
	log       *logger.Logger
	now       func() time.Time
}

// NewOrchestrator wires the orchestrator. A nil analytics falls back to
// NopAnalytics.
func NewOrchestrator(
	ledger *ProgressLedger,
	limiter ratelimit.Limiter,
	tutor Tutor,
	analytics Analytics,
	policy ratelimit.Policy,
	log *logger.Logger,
) *Orchestrator {
	if analytics == nil {
		analytics = NopAnalytics{}
	}
	if log == nil {
		log = logger.Default()
	}
	return &Orchestrator{
		ledger:    ledger,
		limiter:   limiter,
		tutor:     tutor,
		analytics: analytics,
		policy:    policy,
		log:       log.With(logger.Component("orchestrator")),
		now:       time.Now,
	}
}

// SetClock overrides the time source for the orchestrator and its ledger,
// for tests.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.now = now
	o.ledger.SetClock(now)
}

func (o *Orchestrator) track(ctx context.Context, event string) {
	if err := o.analytics.Track(ctx, event); err != nil {
		o.log.Warn("analytics tracking failed", logger.Event(event), logger.Err(err))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CONVERSATION
// ══════════════════════════════════════════════════════════════════════════════

// ConverseResult is the plain-data outcome of handling one freeform message.
// Exactly one of the three shapes is populated: a rate-limit rejection, a
// quiz interaction, or a tutor exchange.
type ConverseResult struct {
	// RateLimited with WaitSeconds set when the message was rejected.
	RateLimited bool
	WaitSeconds int

	// Quiz is set when the message was consumed by an active quiz, either
	// as an answer or as a skip.
	Quiz        *session.AnswerResult
	QuizSkipped bool

	// Tutor exchange fields.
	Reply    string
	Feedback string
	Streak   int
}

// Converse handles a freeform user message. While a quiz is in progress the
// text is treated as a quiz answer (or a skip) and never forwarded to the
// tutor. Otherwise the message is admitted through the rate limiter, the
// user's turn is committed to history before the tutor call, and on success
// the assistant turn and analysis are committed together. A failed tutor
// call leaves the session with the user turn only, so the next attempt
// starts clean.
func (o *Orchestrator) Converse(ctx context.Context, userID session.UserID, text string) (*ConverseResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, shared.ErrEmptyMessage
	}

	s, err := o.ledger.GetOrCreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.QuizStatus() == session.QuizInProgress {
		return o.handleQuizMessage(ctx, userID, text)
	}

	limit, err := o.limiter.Check(ctx, userID.String(), o.policy)
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		o.track(ctx, EventRateLimited)
		return &ConverseResult{RateLimited: true, WaitSeconds: limit.WaitSeconds}, nil
	}

	// Commit the streak update and the user's turn before the long tutor
	// call, so a tutor failure cannot lose them.
	s, err = o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.RecordActivity(o.now())
		s.AppendTurn(session.RoleUser, text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reply, analysis, err := o.tutor.Chat(ctx, s, text)
	if err != nil {
		o.track(ctx, EventTutorError)
		return nil, err
	}

	s, err = o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.AppendTurn(session.RoleAssistant, reply)
		s.Progress.MessagesCount++
		s.ApplyAnalysis(analysis, o.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.track(ctx, EventMessage)

	result := &ConverseResult{
		Reply:  reply,
		Streak: s.Progress.Streak,
	}
	if analysis != nil {
		result.Feedback = analysis.Feedback
	}
	return result, nil
}

// handleQuizMessage consumes a freeform message while a quiz is active.
func (o *Orchestrator) handleQuizMessage(ctx context.Context, userID session.UserID, text string) (*ConverseResult, error) {
	if skipWords[strings.ToLower(strings.TrimSpace(text))] {
		if err := o.SkipQuiz(ctx, userID); err != nil {
			return nil, err
		}
		return &ConverseResult{QuizSkipped: true}, nil
	}

	answer, err := o.AnswerQuiz(ctx, userID, text)
	if err != nil {
		return nil, err
	}
	return &ConverseResult{Quiz: answer}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// StartQuiz generates a fresh quiz from the user's vocabulary and returns
// the first question. Any prior quiz is discarded.
func (o *Orchestrator) StartQuiz(ctx context.Context, userID session.UserID, count int) (*session.QuizQuestion, error) {
	var first *session.QuizQuestion
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		q, err := s.StartQuiz(count, o.now())
		if err != nil {
			return err
		}
		first = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.track(ctx, EventQuizStarted)
	return first, nil
}

// AnswerQuiz grades the answer to the current question, advancing the quiz
// and awarding points per the progression rules.
func (o *Orchestrator) AnswerQuiz(ctx context.Context, userID session.UserID, answer string) (*session.AnswerResult, error) {
	var result *session.AnswerResult
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		r, err := s.AnswerQuiz(answer, o.now())
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.QuizComplete {
		o.track(ctx, EventQuizCompleted)
	}
	return result, nil
}

// SkipQuiz abandons the active quiz with no penalty.
func (o *Orchestrator) SkipQuiz(ctx context.Context, userID session.UserID) error {
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.SkipQuiz()
		return nil
	})
	return err
}

// ReviewWords returns up to limit unmastered words due for review, least
// recently reviewed first.
func (o *Orchestrator) ReviewWords(ctx context.Context, userID session.UserID, limit int) ([]session.VocabularyItem, error) {
	s, err := o.ledger.GetOrCreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.DueForReview(limit), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS & PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// SetLanguage switches the user's target language.
func (o *Orchestrator) SetLanguage(ctx context.Context, userID session.UserID, lang session.Language) error {
	if !lang.IsValid() {
		return shared.ErrInvalidLanguage
	}
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.Language = lang
		return nil
	})
	if err == nil {
		o.track(ctx, EventLanguageChanged)
	}
	return err
}

// SetMode switches the conversation mode.
func (o *Orchestrator) SetMode(ctx context.Context, userID session.UserID, mode session.Mode) error {
	if !mode.IsValid() {
		return shared.ErrInvalidMode
	}
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.Mode = mode
		return nil
	})
	return err
}

// SetDailyReminder toggles the daily practice reminder.
func (o *Orchestrator) SetDailyReminder(ctx context.Context, userID session.UserID, enabled bool) error {
	_, err := o.ledger.update(ctx, userID, func(s *session.Session) error {
		s.Settings.DailyReminder = enabled
		return nil
	})
	return err
}

// Progress returns the user's session for display.
func (o *Orchestrator) Progress(ctx context.Context, userID session.UserID) (*session.Session, error) {
	return o.ledger.GetOrCreateSession(ctx, userID)
}

// Reset clears the conversation history and message counter only.
func (o *Orchestrator) Reset(ctx context.Context, userID session.UserID) error {
	if err := o.ledger.ResetConversation(ctx, userID); err != nil {
		return err
	}
	o.track(ctx, EventReset)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD
// ══════════════════════════════════════════════════════════════════════════════

// Top returns the n highest-ranked entries.
func (o *Orchestrator) Top(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		n = leaderboard.DefaultTopCount
	}
	return o.ledger.board.Top(ctx, n)
}

// MyRank returns the user's leaderboard entry, or shared.ErrUserNotRanked
// when the user has never earned points.
func (o *Orchestrator) MyRank(ctx context.Context, userID session.UserID) (*leaderboard.Entry, error) {
	return o.ledger.board.Rank(ctx, userID.String())
}
