package wallet

import (
	"context"
	"fmt"
	"strings"

	"aurapay/internal/models"
	"aurapay/internal/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	wallets repositories.WalletRepository
	cfg     Config
	logger  *zap.Logger
}

// NewService wires a wallet service over the repository layer.
func NewService(wallets repositories.WalletRepository, cfg Config, logger *zap.Logger) Service {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultCurrency
	}
	if cfg.MaxTransactionAmount == 0 {
		cfg.MaxTransactionAmount = DefaultMaxTransactionAmount
	}
	if cfg.MinTransactionAmount == 0 {
		cfg.MinTransactionAmount = DefaultMinTransactionAmount
	}
	return &service{wallets: wallets, cfg: cfg, logger: logger}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil {
		if err == repositories.ErrWalletNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("fetching wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	currency = strings.ToUpper(currency)
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	wallet := &models.Wallet{
		UserID:   userID,
		Balance:  0,
		Currency: currency,
		Status:   models.WalletStatusActive,
	}
	if err := s.wallets.Create(wallet); err != nil {
		return nil, fmt.Errorf("creating wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) CreditInTx(tx *gorm.DB, userID uint, amount int64, currency, reference, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	entry := &models.Transaction{
		Type:        models.TransactionTypeDeposit,
		ReceiverID:  userID,
		Amount:      amount,
		Currency:    strings.ToUpper(currency),
		Status:      "completed",
		Reference:   reference,
		Description: description,
	}
	if err := s.wallets.CreditTx(tx, userID, amount, entry); err != nil {
		switch err {
		case repositories.ErrWalletNotFound:
			return ErrWalletNotFound
		case repositories.ErrWalletCurrencyMismatch:
			return ErrCurrencyMismatch
		}
		return fmt.Errorf("crediting wallet: %w", err)
	}
	s.logger.Info("wallet credited",
		zap.Uint("user_id", userID),
		zap.Int64("amount", amount),
		zap.String("reference", reference))
	return nil
}

func (s *service) Withdraw(ctx context.Context, userID uint, amount int64, description string) (*models.Wallet, error) {
	if err := s.validateAmount(amount); err != nil {
		return nil, err
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet.Status == models.WalletStatusLocked {
		return nil, ErrWalletLocked
	}

	entry := &models.Transaction{
		Type:        models.TransactionTypeWithdrawal,
		SenderID:    userID,
		Amount:      amount,
		Currency:    wallet.Currency,
		Status:      "completed",
		Description: description,
	}
	err = s.wallets.ExecuteInTransaction(func(tx *gorm.DB) error {
		return s.wallets.DebitTx(tx, userID, amount, entry)
	})
	if err != nil {
		if err == repositories.ErrInsufficientBalance {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("withdrawal: %w", err)
	}

	s.logger.Info("withdrawal completed",
		zap.Uint("user_id", userID),
		zap.Int64("amount", amount))
	return s.GetWallet(ctx, userID)
}

func (s *service) Transfer(ctx context.Context, fromUserID, toUserID uint, amount int64, description string) error {
	if fromUserID == toUserID {
		return ErrSelfTransfer
	}
	if err := s.validateAmount(amount); err != nil {
		return err
	}

	from, err := s.GetWallet(ctx, fromUserID)
	if err != nil {
		return err
	}
	if from.Status == models.WalletStatusLocked {
		return ErrWalletLocked
	}

	err = s.wallets.ExecuteInTransaction(func(tx *gorm.DB) error {
		debit := &models.Transaction{
			Type:        models.TransactionTypeTransfer,
			SenderID:    fromUserID,
			ReceiverID:  toUserID,
			Amount:      amount,
			Currency:    from.Currency,
			Status:      "completed",
			Description: description,
			Metadata:    models.NewJSON(map[string]interface{}{"counterparty_id": toUserID}),
		}
		if err := s.wallets.DebitTx(tx, fromUserID, amount, debit); err != nil {
			return err
		}
		credit := &models.Transaction{
			Type:        models.TransactionTypeTransfer,
			SenderID:    fromUserID,
			ReceiverID:  toUserID,
			Amount:      amount,
			Currency:    from.Currency,
			Status:      "completed",
			Description: description,
			Metadata:    models.NewJSON(map[string]interface{}{"counterparty_id": fromUserID}),
		}
		return s.wallets.CreditTx(tx, toUserID, amount, credit)
	})
	if err != nil {
		switch err {
		case repositories.ErrInsufficientBalance:
			return ErrInsufficientBalance
		case repositories.ErrWalletNotFound:
			return ErrWalletNotFound
		case repositories.ErrWalletCurrencyMismatch:
			return ErrCurrencyMismatch
		}
		return fmt.Errorf("transfer: %w", err)
	}

	s.logger.Info("transfer completed",
		zap.Uint("from", fromUserID),
		zap.Uint("to", toUserID),
		zap.Int64("amount", amount))
	return nil
}

func (s *service) validateAmount(amount int64) error {
	if amount < s.cfg.MinTransactionAmount || amount > s.cfg.MaxTransactionAmount {
		return ErrInvalidAmount
	}
	return nil
}
