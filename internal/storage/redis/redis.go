package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "failedLogin:"

// Storage persists attempt records so a lockout survives console restarts.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr string, ttl time.Duration) *Storage {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return &Storage{client: client, ttl: ttl}
}

func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.redis.Ping"

	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) FailedLoginAttempts(ctx context.Context, key string) (models.AttemptRecord, error) {
	const op = "storage.redis.FailedLoginAttempts"

	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AttemptRecord{}, fmt.Errorf("%s: %w", op, storage.ErrAttemptsNotFound)
		}

		return models.AttemptRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	var record models.AttemptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.AttemptRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return record, nil
}

func (s *Storage) RemoveFailedLoginAttempts(ctx context.Context, key string) error {
	const op = "storage.redis.RemoveFailedLoginAttempts"

	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) SaveFailedLoginAttempts(ctx context.Context, key string, record models.AttemptRecord) error {
	const op = "storage.redis.SaveFailedLoginAttempts"

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Stop() error {
	const op = "storage.redis.Stop"

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
