package sqlite_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/BariVakhidov/academyhub/internal/storage/sqlite"
	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "academyhub.db")
	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "1_init.up.sql"))
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	return s
}

func TestSaveUser_User(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	username := gofakeit.Username()

	saved, err := s.SaveUser(ctx, username, []byte("hash"))
	require.NoError(t, err)

	got, err := s.User(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, []byte("hash"), got.PassHash)
}

func TestSaveUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	username := gofakeit.Username()

	_, err := s.SaveUser(ctx, username, []byte("hash"))
	require.NoError(t, err)

	_, err = s.SaveUser(ctx, username, []byte("hash"))
	require.ErrorIs(t, err, storage.ErrUserExists)
}

func TestUser_NotFound(t *testing.T) {
	_, err := newStorage(t).User(context.Background(), gofakeit.Username())
	require.ErrorIs(t, err, storage.ErrUserNotFound)
}
