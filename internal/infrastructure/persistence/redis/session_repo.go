package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// unlockScript releases a lock only if it still holds our token, so an
// expired lock re-acquired by another request is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	lockRetryDelay    = 50 * time.Millisecond
	lockRetryAttempts = 40
)

// SessionRepository persists sessions as JSON under "session:<userId>" with
// a 30-day TTL refreshed on every write. Read-modify-write cycles are
// serialized per user with a SetNX lock.
type SessionRepository struct {
	store *Store
	ttl   time.Duration
}

// NewSessionRepository creates a session repository over the given store.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store, ttl: TTLSession}
}

func sessionKey(userID session.UserID) string {
	return PrefixSession + userID.String()
}

func sessionLockKey(userID session.UserID) string {
	return PrefixLock + PrefixSession + userID.String()
}

// Get returns the stored session or shared.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, userID session.UserID) (*session.Session, error) {
	var s session.Session
	err := r.store.GetJSON(ctx, sessionKey(userID), &s)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, shared.WrapError("session", "Get", shared.ErrExternalService,
			"failed to load session", err)
	}
	return &s, nil
}

// GetOrCreate returns the stored session, materializing defaults when the
// user has never interacted before. Absence is not an error.
func (r *SessionRepository) GetOrCreate(ctx context.Context, userID session.UserID) (*session.Session, error) {
	s, err := r.Get(ctx, userID)
	if err == nil {
		return s, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return session.NewSession(userID, time.Now()), nil
	}
	return nil, err
}

// Save persists the session and refreshes its TTL.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	if err := r.store.SetJSON(ctx, sessionKey(s.UserID), s, r.ttl); err != nil {
		return shared.WrapError("session", "Save", shared.ErrExternalService,
			"failed to save session", err)
	}
	return nil
}

// Update runs fn under a per-user lock and persists the result. The lock
// serializes concurrent read-modify-write cycles from the same user; cycles
// for different users proceed independently.
func (r *SessionRepository) Update(ctx context.Context, userID session.UserID, fn session.UpdateFunc) (*session.Session, error) {
	token, err := r.acquireLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer r.releaseLock(ctx, userID, token)

	s, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the session record.
func (r *SessionRepository) Delete(ctx context.Context, userID session.UserID) error {
	if err := r.store.Delete(ctx, sessionKey(userID)); err != nil {
		return shared.WrapError("session", "Delete", shared.ErrExternalService,
			"failed to delete session", err)
	}
	return nil
}

// acquireLock takes the per-user update lock, retrying briefly before
// giving up with ErrSessionLockHeld.
func (r *SessionRepository) acquireLock(ctx context.Context, userID session.UserID) (string, error) {
	token := uuid.NewString()
	key := sessionLockKey(userID)

	for attempt := 0; attempt < lockRetryAttempts; attempt++ {
		ok, err := r.store.SetNX(ctx, key, token, TTLUpdateLock)
		if err != nil {
			return "", shared.WrapError("session", "Update", shared.ErrExternalService,
				"failed to acquire session lock", err)
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	return "", shared.ErrSessionLockHeld
}

func (r *SessionRepository) releaseLock(ctx context.Context, userID session.UserID, token string) {
	// Best effort: an unreleased lock expires on its own TTL.
	_ = unlockScript.Run(ctx, r.store.Client(), []string{sessionLockKey(userID)}, token).Err()
}
