package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
)

func TestSessionGetMissing(t *testing.T) {
	r := NewSessionRepository()

	_, err := r.Get(context.Background(), "u1")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestSessionGetOrCreateMaterializesDefaults(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	s, err := r.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, session.UserID("u1"), s.UserID)
	assert.Equal(t, session.LanguageEnglish, s.Language)

	// Materializing does not persist until Save.
	_, err = r.Get(ctx, "u1")
	assert.Error(t, err)
}

func TestSessionSaveAndGetIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	s, err := r.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, s))

	// Mutating the returned copy must not affect the stored record.
	s.AddPoints(999)

	stored, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Progress.Points)
}

func TestSessionUpdate(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	updated, err := r.Update(ctx, "u1", func(s *session.Session) error {
		s.AddPoints(10)
		s.RecordMessage("hola", "¡hola!")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Progress.Points)

	stored, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Progress.Points)
	assert.Equal(t, 1, stored.Progress.MessagesCount)
}

func TestSessionUpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	boom := errors.New("boom")
	_, err := r.Update(ctx, "u1", func(s *session.Session) error {
		s.AddPoints(10)
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	// Nothing was persisted.
	_, err = r.Get(ctx, "u1")
	assert.Error(t, err)
}

func TestSessionDelete(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRepository()

	s, err := r.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, r.Save(ctx, s))
	require.NoError(t, r.Delete(ctx, "u1"))

	_, err = r.Get(ctx, "u1")
	assert.Error(t, err)
}
