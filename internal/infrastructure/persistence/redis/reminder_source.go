package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// reminderScanCount is the SCAN batch size for the reminder sweep.
const reminderScanCount = 100

// UsersWithRemindersAt scans session records and returns the users whose
// daily reminder is enabled and scheduled in the given UTC hour. The sweep
// runs hourly in the background, so a full keyspace scan is acceptable.
func (r *SessionRepository) UsersWithRemindersAt(ctx context.Context, hour int) ([]session.UserID, error) {
	var users []session.UserID

	iter := r.store.Client().Scan(ctx, 0, PrefixSession+"*", reminderScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID := session.UserID(strings.TrimPrefix(key, PrefixSession))

		s, err := r.Get(ctx, userID)
		if err != nil {
			// A record can expire between SCAN and GET.
			continue
		}
		if !s.Settings.DailyReminder {
			continue
		}
		if reminderHour(s.Settings.ReminderTime) == hour {
			users = append(users, userID)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, shared.WrapError("session", "UsersWithRemindersAt",
			shared.ErrExternalService, "session scan failed", err)
	}

	return users, nil
}

// DueWordCount returns how many unmastered words await review.
func (r *SessionRepository) DueWordCount(ctx context.Context, userID session.UserID) (int, error) {
	s, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}

	due := 0
	for _, v := range s.Vocabulary {
		if !v.Mastered {
			due++
		}
	}
	return due, nil
}

// reminderHour parses the hour out of an "HH:MM" reminder time, returning
// -1 for malformed values so they never match.
func reminderHour(t string) int {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) == 0 {
		return -1
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	return h
}
