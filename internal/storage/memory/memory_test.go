package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/BariVakhidov/academyhub/internal/storage/memory"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	username := gofakeit.Username()

	_, err := s.User(ctx, username)
	require.ErrorIs(t, err, storage.ErrUserNotFound)

	saved, err := s.SaveUser(ctx, username, []byte("hash"))
	require.NoError(t, err)
	assert.Equal(t, username, saved.Username)

	got, err := s.User(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	_, err = s.SaveUser(ctx, username, []byte("other"))
	require.ErrorIs(t, err, storage.ErrUserExists)
}

func TestFailedLoginAttempts(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	key := gofakeit.UUID()

	_, err := s.FailedLoginAttempts(ctx, key)
	require.ErrorIs(t, err, storage.ErrAttemptsNotFound)

	record := models.AttemptRecord{Timestamp: time.Now().UTC(), Count: 3}
	require.NoError(t, s.SaveFailedLoginAttempts(ctx, key, record))

	got, err := s.FailedLoginAttempts(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, record, got)

	require.NoError(t, s.RemoveFailedLoginAttempts(ctx, key))
	_, err = s.FailedLoginAttempts(ctx, key)
	require.ErrorIs(t, err, storage.ErrAttemptsNotFound)
}
