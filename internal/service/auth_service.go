// internal/service/auth_service.go
package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"frogpad/pkg/auth"
)

// AuthService implements the minimal email/password flow: signup stores a
// bcrypt hash, login verifies it. No session or token is issued.
type AuthService struct {
	users     UserStore
	passwords *auth.PasswordManager
	logger    *zap.Logger
}

func NewAuthService(users UserStore, passwords *auth.PasswordManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*UserView, error) {
	if email == "" || password == "" {
		return nil, wrapInvalid("email and password are required")
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, wrapInvalid(err.Error())
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return nil, wrapInvalid(err.Error())
		}
		return nil, err
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID))
	return &UserView{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*UserView, error) {
	if email == "" || password == "" {
		return nil, wrapInvalid("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.passwords.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &UserView{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
