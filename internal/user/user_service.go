package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"wikicms/db"
	"wikicms/internal/metrics"
	"wikicms/models"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

// Credentials is a username/password pair
type Credentials struct {
	Username string
	Password string
}

// SeedUsers are registered, in order, before any request is served
var SeedUsers = []Credentials{
	{Username: "hora", Password: "123"},
	{Username: "lani", Password: "456"},
}

type UserService struct {
	Repository db.UserRepository
	dbManager  *db.DBManager
	logger     *zap.SugaredLogger
}

func NewUserService(repo db.UserRepository, dbManager *db.DBManager, logger *zap.SugaredLogger) *UserService {
	return &UserService{
		Repository: repo,
		dbManager:  dbManager,
		logger:     logger,
	}
}

// Seed registers SeedUsers, skipping names that already exist
func (s *UserService) Seed(ctx context.Context) error {
	for _, c := range SeedUsers {
		_, err := s.Register(ctx, c.Username, c.Password)
		if err != nil && !errors.Is(err, ErrDuplicateUsername) {
			return fmt.Errorf("seed user %q: %w", c.Username, err)
		}
	}
	return nil
}

func (s *UserService) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return s.find(func() (*models.User, error) {
		return s.Repository.FindByCredentials(ctx, username, password)
	})
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.find(func() (*models.User, error) {
		return s.Repository.FindByUsername(ctx, username)
	})
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.find(func() (*models.User, error) {
		return s.Repository.FindByID(ctx, id)
	})
}

func (s *UserService) find(lookup func() (*models.User, error)) (*models.User, error) {
	u, err := s.dbManager.FindUser(lookup)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Register creates a user under the next free identifier. It fails with
// ErrDuplicateUsername when the username is already registered.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.dbManager.CreateUserIfAbsent(s.Repository, ctx, username, password)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("register user %q: %w", username, err)
	}

	s.logger.Infow("User registered", "id", u.ID, "username", u.Username)
	if count, err := s.dbManager.CountUsers(s.Repository, ctx); err == nil {
		metrics.UpdateUsersTotal(count)
	}
	return u, nil
}

// Count returns the number of registered users
func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.dbManager.CountUsers(s.Repository, ctx)
}
