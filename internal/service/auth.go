package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"vocabsheet/internal/repository"

	"go.uber.org/zap"
)

// ErrWrongPassword is returned by Login when the password does not match
var ErrWrongPassword = errors.New("wrong password")

// AuthService gates the bot behind a shared password
type AuthService struct {
	userRepo    repository.UserRepository
	botPassword []byte
	logger      *zap.Logger
}

// NewAuthService creates an auth service. An empty password rejects every login.
func NewAuthService(userRepo repository.UserRepository, botPassword string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		botPassword: []byte(botPassword),
		logger:      logger,
	}
}

// Status registers userID on first contact and reports whether it may use the bot
func (s *AuthService) Status(userID int64) (bool, error) {
	if err := s.userRepo.EnsureUserExists(userID); err != nil {
		return false, fmt.Errorf("failed to register user %d: %w", userID, err)
	}

	authorized, err := s.userRepo.IsAuthorized(userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	return authorized, nil
}

// Login authorizes userID when password matches; otherwise it returns ErrWrongPassword
func (s *AuthService) Login(userID int64, password string) error {
	if !s.passwordMatches(password) {
		s.logger.Info("Rejected login", zap.Int64("user_id", userID))
		return ErrWrongPassword
	}

	if err := s.userRepo.AuthorizeUser(userID); err != nil {
		return fmt.Errorf("failed to authorize user %d: %w", userID, err)
	}

	s.logger.Info("User authorized", zap.Int64("user_id", userID))
	return nil
}

func (s *AuthService) passwordMatches(password string) bool {
	if len(s.botPassword) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), s.botPassword) == 1
}
