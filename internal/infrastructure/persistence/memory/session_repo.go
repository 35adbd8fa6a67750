// Package memory provides in-process implementations of the storage
// contracts. They back unit tests and local development without Redis; the
// mutex gives them the same per-user serialization the Redis repositories
// get from locks and scripts.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

// SessionRepository stores sessions in a map guarded by a mutex. Sessions
// are deep-copied on the way in and out so callers never share state with
// the store.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[session.UserID]*session.Session
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[session.UserID]*session.Session),
	}
}

func cloneSession(s *session.Session) *session.Session {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out session.Session
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return &out
}

// Get returns the stored session or shared.ErrSessionNotFound.
func (r *SessionRepository) Get(ctx context.Context, userID session.UserID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

// GetOrCreate returns the stored session or materializes defaults.
func (r *SessionRepository) GetOrCreate(ctx context.Context, userID session.UserID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[userID]; ok {
		return cloneSession(s), nil
	}
	return session.NewSession(userID, time.Now()), nil
}

// Save persists the session.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[s.UserID] = cloneSession(s)
	return nil
}

// Update performs a serialized read-modify-write for one user.
func (r *SessionRepository) Update(ctx context.Context, userID session.UserID, fn session.UpdateFunc) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s *session.Session
	if stored, ok := r.sessions[userID]; ok {
		s = cloneSession(stored)
	} else {
		s = session.NewSession(userID, time.Now())
	}

	if err := fn(s); err != nil {
		return nil, err
	}

	r.sessions[userID] = cloneSession(s)
	return s, nil
}

// Delete removes the session record.
func (r *SessionRepository) Delete(ctx context.Context, userID session.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	return nil
}
