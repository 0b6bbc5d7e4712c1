// Package auth implements the login state machine. A visitor is either
// Anonymous or Authenticated(userID); every transition takes the current
// session.State and returns the next one, leaving persistence to the caller.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"wikicms/internal/metrics"
	"wikicms/internal/session"
	"wikicms/internal/user"
	"wikicms/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Users is the part of the user store the state machine depends on
type Users interface {
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// EventRecorder receives an entry for every account transition
type EventRecorder interface {
	Record(ctx context.Context, eventType models.EEventLogType, articleID, userID string)
}

type AuthService struct {
	users  Users
	events EventRecorder
	logger *zap.SugaredLogger
}

// NewAuthService creates the service. events may be nil.
func NewAuthService(users Users, events EventRecorder, logger *zap.SugaredLogger) *AuthService {
	return &AuthService{users: users, events: events, logger: logger}
}

// Login moves to Authenticated when the credentials match a user. On a
// mismatch it returns ErrInvalidCredentials together with the unchanged state.
func (s *AuthService) Login(ctx context.Context, current session.State, username, password string) (session.State, *models.User, error) {
	u, err := s.users.FindByCredentials(ctx, username, password)
	if errors.Is(err, user.ErrNotFound) {
		s.logger.Infow("Login failed", "username", username)
		metrics.RecordAuthAttempt("login", false)
		s.record(ctx, models.LoginFailed, "")
		return current, nil, ErrInvalidCredentials
	}
	if err != nil {
		return current, nil, err
	}

	s.logger.Infow("Login succeeded", "user_id", u.ID)
	metrics.RecordAuthAttempt("login", true)
	s.record(ctx, models.UserLoggedIn, u.ID)
	return session.Authenticated(u.ID), u, nil
}

// Register creates the user and authenticates it in the same step. A taken
// username returns user.ErrDuplicateUsername and the unchanged state.
func (s *AuthService) Register(ctx context.Context, current session.State, username, password string) (session.State, *models.User, error) {
	u, err := s.users.Register(ctx, username, password)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			metrics.RecordAuthAttempt("register", false)
		}
		return current, nil, err
	}

	metrics.RecordAuthAttempt("register", true)
	s.record(ctx, models.UserRegistered, u.ID)
	return session.Authenticated(u.ID), u, nil
}

// Logout always yields Anonymous, so repeating it is harmless
func (s *AuthService) Logout(ctx context.Context, current session.State) session.State {
	if current.IsAuthenticated() {
		s.logger.Infow("Logout", "user_id", current.UserID)
		s.record(ctx, models.UserLoggedOut, current.UserID)
	}
	return session.Anonymous
}

// CurrentUser resolves the session owner for display. It returns nil for
// anonymous sessions and for IDs that no longer resolve.
func (s *AuthService) CurrentUser(ctx context.Context, current session.State) *models.User {
	if !current.IsAuthenticated() {
		return nil
	}
	u, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warnw("Failed to resolve session user", "user_id", current.UserID, "error", err)
		}
		return nil
	}
	return u
}

func (s *AuthService) record(ctx context.Context, eventType models.EEventLogType, userID string) {
	if s.events != nil {
		s.events.Record(ctx, eventType, "", userID)
	}
}
