// Package scheduler runs the bot's background jobs: the hourly daily-reminder
// sweep and the nightly analytics rollup.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lingua-hub/lingua-tutor-hub/internal/application"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
)

// Notifier delivers a practice reminder to a user. Implemented by the
// Telegram transport.
type Notifier interface {
	SendReminder(userID session.UserID, dueWords int) error
}

// ReminderSource enumerates users who opted into reminders and reports how
// many words each has waiting for review.
type ReminderSource interface {
	// UsersWithRemindersAt returns users whose reminder time falls in the
	// given UTC hour.
	UsersWithRemindersAt(ctx context.Context, hour int) ([]session.UserID, error)

	// DueWordCount returns how many unmastered words await review.
	DueWordCount(ctx context.Context, userID session.UserID) (int, error)
}

// AnalyticsReader reads back daily counters for the rollup log.
type AnalyticsReader interface {
	Count(ctx context.Context, event string, day time.Time) (int64, error)
}

// Archiver copies daily counters into long-term storage before the Redis
// retention window expires them.
type Archiver interface {
	Upsert(ctx context.Context, event string, day time.Time, count int64) error
}

// jobTimeout bounds each background job run.
const jobTimeout = 2 * time.Minute

// Scheduler manages the periodic jobs.
type Scheduler struct {
	sched     *gocron.Scheduler
	source    ReminderSource
	notifier  Notifier
	analytics AnalyticsReader
	archive   Archiver
	log       *logger.Logger
}

// New creates a scheduler. The analytics reader may be nil, which disables
// the rollup job; the archiver may be nil, which limits the rollup to
// logging.
func New(source ReminderSource, notifier Notifier, analytics AnalyticsReader, archive Archiver, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default()
	}
	return &Scheduler{
		sched:     gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		analytics: analytics,
		archive:   archive,
		log:       log.With(logger.Component("scheduler")),
	}
}

// Start registers the jobs and runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.sched.Every(1).Hour().Do(s.sendReminders)
	if s.analytics != nil {
		s.sched.Every(1).Day().At("00:10").Do(s.rollupAnalytics)
	}
	s.sched.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.sched.Stop()
}

// sendReminders notifies users whose reminder time falls in the current
// UTC hour and who have words due for review.
func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	hour := time.Now().UTC().Hour()
	users, err := s.source.UsersWithRemindersAt(ctx, hour)
	if err != nil {
		s.log.Error("reminder sweep failed", logger.Err(err))
		return
	}

	sent := 0
	for _, userID := range users {
		due, err := s.source.DueWordCount(ctx, userID)
		if err != nil {
			s.log.Warn("due word count failed", logger.UserID(userID.String()), logger.Err(err))
			continue
		}
		if due == 0 {
			continue
		}
		if err := s.notifier.SendReminder(userID, due); err != nil {
			s.log.Warn("reminder delivery failed", logger.UserID(userID.String()), logger.Err(err))
			continue
		}
		sent++
	}

	if len(users) > 0 {
		s.log.Info("reminder sweep done",
			logger.Int("candidates", len(users)),
			logger.Int("sent", sent))
	}
}

// rollupAnalytics logs yesterday's event counters.
func (s *Scheduler) rollupAnalytics() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	events := []string{
		application.EventMessage,
		application.EventRateLimited,
		application.EventTutorError,
		application.EventQuizStarted,
		application.EventQuizCompleted,
		application.EventLanguageChanged,
		application.EventReset,
	}

	fields := make([]logger.Field, 0, len(events))
	for _, event := range events {
		n, err := s.analytics.Count(ctx, event, yesterday)
		if err != nil {
			s.log.Warn("counter read failed", logger.Event(event), logger.Err(err))
			continue
		}
		fields = append(fields, logger.F(event, n))

		if s.archive != nil {
			if err := s.archive.Upsert(ctx, event, yesterday, n); err != nil {
				s.log.Warn("counter archive failed", logger.Event(event), logger.Err(err))
			}
		}
	}

	s.log.Info("daily analytics rollup", fields...)
}
