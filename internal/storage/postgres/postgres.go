package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BariVakhidov/academyhub/internal/domain/converter"
	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/storage"
	storageModel "github.com/BariVakhidov/academyhub/internal/storage/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Storage struct {
	dbpool *pgxpool.Pool
}

func New(ctx context.Context, dbAddr string) (*Storage, error) {
	const op = "storage.postgres.New"

	dbpool, err := pgxpool.New(ctx, dbAddr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{dbpool: dbpool}, nil
}

func (s *Storage) SaveUser(ctx context.Context, username string, passHash []byte) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := "INSERT INTO users(id,username,pass_hash) VALUES(@userId,@username,@passHash) RETURNING id,username,pass_hash"
	args := pgx.NamedArgs{
		"userId":   uuid.New(),
		"username": username,
		"passHash": passHash,
	}

	rows, err := s.dbpool.Query(ctx, query, args)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[storageModel.User])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return converter.ToUserFromStorage(user), nil
}

func (s *Storage) User(ctx context.Context, username string) (models.User, error) {
	const op = "storage.postgres.User"

	rows, err := s.dbpool.Query(ctx, "SELECT id,username,pass_hash FROM users WHERE username=$1", username)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[storageModel.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return converter.ToUserFromStorage(user), nil
}

func (s *Storage) Stop() error {
	s.dbpool.Close()
	return nil
}
