package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
	"github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/session"
	apperrors "github.com/freee021022/onconet/pkg/errors"
	"github.com/freee021022/onconet/pkg/security"
)

const (
	msgUsernameTaken      = "Username already taken"
	msgEmailRegistered    = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
)

type Service struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	sessions *session.Manager
	auditor  *audit.Service
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, sessions *session.Manager, auditor *audit.Service) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		auditor:  auditor,
	}
}

// Register creates the user and starts a session for it. The lookups give
// the friendly error in the common case; the store's uniqueness constraint
// decides races.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, string, error) {
	if _, err := s.users.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, "", apperrors.NewBadRequest(msgUsernameTaken, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.NewInternal(err)
	}
	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, "", apperrors.NewBadRequest(msgEmailRegistered, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.NewInternal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", apperrors.NewInternal(err)
	}

	user := req.NewUser(hash)
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, "", apperrors.NewBadRequest(msgUsernameTaken, err)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, "", apperrors.NewBadRequest(msgEmailRegistered, err)
		}
		return nil, "", apperrors.NewInternal(fmt.Errorf("failed to create user: %w", err))
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Str("user_type", user.UserType).Msg("user registered")

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials. An unknown username and a wrong password
// produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	if username == "" || password == "" {
		return nil, "", apperrors.NewBadRequest("Username and password required", nil)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperrors.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, "", apperrors.NewInternal(err)
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		s.auditor.Log(ctx, user.ID, model.AuditActionLogin, model.AuditResourceSession, 0, model.AuditStatusDenied)
		return nil, "", apperrors.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout ends the session named by token.
func (s *Service) Logout(ctx context.Context, userID int64, token string) error {
	if err := s.sessions.End(ctx, token); err != nil {
		return apperrors.NewInternal(err)
	}
	if userID != 0 {
		s.auditor.Log(ctx, userID, model.AuditActionLogout, model.AuditResourceSession, 0, model.AuditStatusSuccess)
	}
	return nil
}

func (s *Service) startSession(ctx context.Context, userID int64) (string, error) {
	token, _, err := s.sessions.Start(ctx, userID)
	if err != nil {
		return "", apperrors.NewInternal(err)
	}
	s.auditor.Log(ctx, userID, model.AuditActionLogin, model.AuditResourceSession, 0, model.AuditStatusSuccess)
	return token, nil
}
