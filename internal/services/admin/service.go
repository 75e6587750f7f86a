// Package admin exposes the back-office operations: user management and
// platform statistics. Every entry point sits behind the admin role check in
// the middleware layer.
package admin

import (
	"context"
	"errors"
	"fmt"

	"aurapay/internal/models"
	"aurapay/internal/repositories"

	"go.uber.org/zap"
)

// Service errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSelfDemotion   = errors.New("admins cannot change their own role")
	ErrSelfSuspension = errors.New("admins cannot suspend themselves")
)

// Stats is the platform snapshot for the admin dashboard.
type Stats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalCards         int64 `json:"total_cards"`
	PendingDeposits    int64 `json:"pending_deposits"`
	SuccessfulDeposits int64 `json:"successful_deposits"`
	FailedDeposits     int64 `json:"failed_deposits"`
	DepositVolume      int64 `json:"deposit_volume"` // minor units
}

type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdateUserRole(ctx context.Context, actorID, userID uint, role string) (*models.User, error)
	ToggleUserStatus(ctx context.Context, actorID, userID uint, reason string) (*models.User, error)
	ListCards(ctx context.Context, limit, offset int) ([]models.Card, int64, error)
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	users    repositories.UserRepository
	wallets  repositories.WalletRepository
	cards    repositories.CardRepository
	deposits repositories.DepositRepository
	logger   *zap.Logger
}

func NewService(
	users repositories.UserRepository,
	wallets repositories.WalletRepository,
	cards repositories.CardRepository,
	deposits repositories.DepositRepository,
	logger *zap.Logger,
) Service {
	return &service{users: users, wallets: wallets, cards: cards, deposits: deposits, logger: logger}
}

func (s *service) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.users.GetPaginated(limit, offset)
}

func (s *service) UpdateUserRole(ctx context.Context, actorID, userID uint, role string) (*models.User, error) {
	if role != "user" && role != "admin" {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrSelfDemotion
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Role = role
	user.TokenVersion++ // force re-issue so permissions take effect
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}

	s.logger.Info("user role updated",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", userID),
		zap.String("role", role))
	return user, nil
}

func (s *service) ToggleUserStatus(ctx context.Context, actorID, userID uint, reason string) (*models.User, error) {
	if actorID == userID {
		return nil, ErrSelfSuspension
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Status == models.UserStatusActive {
		user.Status = models.UserStatusSuspended
		user.TokenVersion++
	} else {
		user.Status = models.UserStatusActive
		user.FailedLoginAttempts = 0
	}
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	s.logger.Info("user status toggled",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", userID),
		zap.String("status", user.Status),
		zap.String("reason", reason))
	return user, nil
}

func (s *service) ListCards(ctx context.Context, limit, offset int) ([]models.Card, int64, error) {
	return s.cards.GetCardsPaginated(limit, offset)
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if _, stats.TotalCards, err = s.cards.GetCardsPaginated(1, 0); err != nil {
		return nil, fmt.Errorf("counting cards: %w", err)
	}
	if stats.PendingDeposits, err = s.deposits.CountByStatus(models.DepositStatusPendingVerification); err != nil {
		return nil, fmt.Errorf("counting pending deposits: %w", err)
	}
	if stats.SuccessfulDeposits, err = s.deposits.CountByStatus(models.DepositStatusVerifiedSuccess); err != nil {
		return nil, fmt.Errorf("counting successful deposits: %w", err)
	}
	if stats.FailedDeposits, err = s.deposits.CountByStatus(models.DepositStatusVerifiedFailed); err != nil {
		return nil, fmt.Errorf("counting failed deposits: %w", err)
	}
	if stats.DepositVolume, err = s.wallets.SumTransactionVolume(models.TransactionTypeDeposit); err != nil {
		return nil, fmt.Errorf("summing deposit volume: %w", err)
	}
	return stats, nil
}
