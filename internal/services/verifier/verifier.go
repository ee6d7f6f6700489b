package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BariVakhidov/academyhub/internal/domain/models"
	"github.com/BariVakhidov/academyhub/internal/lib/logger/sl"
	"github.com/BariVakhidov/academyhub/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrUserExists = errors.New("user exists")

type UserSaver interface {
	SaveUser(ctx context.Context, username string, passHash []byte) (models.User, error)
}

type UserProvider interface {
	User(ctx context.Context, username string) (models.User, error)
}

// Service checks credentials against stored bcrypt hashes and registers accounts.
type Service struct {
	log          *slog.Logger
	userSaver    UserSaver
	userProvider UserProvider
	cost         int
}

// New returns a new instance of the verifier Service
func New(log *slog.Logger, userSaver UserSaver, userProvider UserProvider) *Service {
	return &Service{
		log:          log,
		userSaver:    userSaver,
		userProvider: userProvider,
		cost:         bcrypt.DefaultCost,
	}
}

// WithCost changes the bcrypt cost used for new hashes.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

// Verify reports whether the password matches. An unknown user is a mismatch, not an error.
func (s *Service) Verify(ctx context.Context, username string, password string) (bool, error) {
	const op = "verifier.Verify"
	log := s.log.With(slog.String("op", op))

	user, err := s.userProvider.User(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return false, nil
		}

		log.Error("failed to get user", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Warn("invalid credentials")
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (s *Service) RegisterUser(ctx context.Context, username string, password string) (uuid.UUID, error) {
	const op = "verifier.RegisterUser"
	log := s.log.With(slog.String("op", op))
	log.Info("registering new user")

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		log.Error("failed to generate passwordHash", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.userSaver.SaveUser(ctx, username, passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user exists")
			return uuid.Nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered")

	return user.ID, nil
}
