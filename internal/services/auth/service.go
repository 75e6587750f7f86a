package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurapay/internal/models"
	"aurapay/internal/repositories"
	"aurapay/internal/services/wallet"
	"aurapay/internal/utils"
	"aurapay/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxFailedLogins = 5

type service struct {
	users   repositories.UserRepository
	wallets wallet.Service
	logger  *zap.Logger
}

// NewService wires authentication over the user repository. Registration also
// provisions the user's wallet so every account can receive deposits.
func NewService(users repositories.UserRepository, wallets wallet.Service, logger *zap.Logger) Service {
	return &service{users: users, wallets: wallets, logger: logger}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !validation.ValidatePassword(in.Password) {
		return nil, ErrWeakPassword
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.GetByEmail(in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: string(hashed),
		Name:     in.Name,
		Phone:    in.Phone,
		Role:     "user",
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	w, err := s.wallets.CreateWallet(ctx, user.ID, in.Currency)
	if err != nil {
		return nil, fmt.Errorf("provisioning wallet: %w", err)
	}
	user.WalletID = &w.ID
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("linking wallet: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*TokenPair, *models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.users.GetByEmail(in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if user.Status == models.UserStatusSuspended {
		return nil, nil, ErrAccountSuspended
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			user.Status = models.UserStatusSuspended
			s.logger.Warn("account suspended after repeated failures",
				zap.Uint("user_id", user.ID))
		}
		if uerr := s.users.Update(user); uerr != nil {
			s.logger.Error("recording failed login", zap.Error(uerr))
		}
		return nil, nil, ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LastLoginAt = time.Now()
	if err := s.users.Update(user); err != nil {
		s.logger.Error("recording login", zap.Error(err))
	}

	access, refresh, err := utils.GenerateTokens(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing tokens: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, user, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	// A bumped version means logout or password change since issuance.
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	if user.Status == models.UserStatusSuspended {
		return nil, ErrAccountSuspended
	}

	access, refresh, err := utils.GenerateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) Logout(ctx context.Context, userID uint) error {
	if err := s.users.IncrementTokenVersion(userID); err != nil {
		return fmt.Errorf("revoking tokens: %w", err)
	}
	s.logger.Info("user logged out", zap.Uint("user_id", userID))
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, in ChangePasswordInput) error {
	if !validation.ValidatePassword(in.NewPassword) {
		return ErrWeakPassword
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.Password = string(hashed)
	user.TokenVersion++
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password changed", zap.Uint("user_id", userID))
	return nil
}
