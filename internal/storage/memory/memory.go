package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/google/uuid"
)

// Storage keeps users and attempt records in process memory.
type Storage struct {
	mu       sync.RWMutex
	users    map[string]models.User
	attempts map[string]models.AttemptRecord
}

func New() *Storage {
	return &Storage{
		users:    make(map[string]models.User),
		attempts: make(map[string]models.AttemptRecord),
	}
}

func (s *Storage) SaveUser(_ context.Context, username string, passHash []byte) (models.User, error) {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	user := models.User{ID: uuid.New(), Username: username, PassHash: passHash}
	s.users[username] = user

	return user, nil
}

func (s *Storage) User(_ context.Context, username string) (models.User, error) {
	const op = "storage.memory.User"

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return user, nil
}

func (s *Storage) FailedLoginAttempts(_ context.Context, key string) (models.AttemptRecord, error) {
	const op = "storage.memory.FailedLoginAttempts"

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.attempts[key]
	if !ok {
		return models.AttemptRecord{}, fmt.Errorf("%s: %w", op, storage.ErrAttemptsNotFound)
	}

	return record, nil
}

func (s *Storage) SaveFailedLoginAttempts(_ context.Context, key string, record models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[key] = record

	return nil
}

func (s *Storage) RemoveFailedLoginAttempts(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, key)

	return nil
}
