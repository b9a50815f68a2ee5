package service

import (
	"context"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository"
	"campus-booking/internal/repository/base"
	"campus-booking/internal/token"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *token.Manager
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, tokens *token.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index closes the race between the existence check
		// and the insert; exactly one registration survives.
		if base.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, model.Role, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		s.logger.Debug("login for unknown email", zap.String("email", email))
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("login with wrong password", zap.Int64("user_id", user.ID))
		return "", "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Sign(user.ID, user.Role)
	if err != nil {
		return "", "", err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return signed, user.Role, nil
}
