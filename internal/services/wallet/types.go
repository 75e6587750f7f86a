package wallet

import (
	"context"

	"aurapay/internal/models"

	"gorm.io/gorm"
)

// Service defines the wallet ledger operations. Amounts are minor units.
type Service interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error)

	// CreditInTx applies a credit inside an enclosing database transaction.
	// The deposit verification flow uses this so the balance change commits
	// atomically with the deposit state transition.
	CreditInTx(tx *gorm.DB, userID uint, amount int64, currency, reference, description string) error

	Withdraw(ctx context.Context, userID uint, amount int64, description string) (*models.Wallet, error)
	Transfer(ctx context.Context, fromUserID, toUserID uint, amount int64, description string) error
}

// Config holds wallet limits. Zero values fall back to defaults.
type Config struct {
	DefaultCurrency      string
	MaxTransactionAmount int64 // minor units
	MinTransactionAmount int64
	WithdrawalFeePercent float64
}

// Default configuration values, minor units.
const (
	DefaultCurrency             = "USD"
	DefaultMaxTransactionAmount = 50_000_00
	DefaultMinTransactionAmount = 1_00
)
