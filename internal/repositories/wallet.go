package repositories

import (
	"errors"

	"aurapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository handles wallet persistence. Balance-affecting methods take
// the enclosing *gorm.DB so callers can compose them into one transaction
// with the state change that justifies the movement.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByUserID(userID uint) (*models.Wallet, error)
	Update(wallet *models.Wallet) error
	// CreditTx locks the wallet row and applies a credit plus ledger entry
	// inside the supplied transaction.
	CreditTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error
	// DebitTx is CreditTx's mirror; fails on insufficient balance.
	DebitTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error
	ExecuteInTransaction(fn func(tx *gorm.DB) error) error
	SumTransactionVolume(txType string) (int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	return r.db.Create(wallet).Error
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) Update(wallet *models.Wallet) error {
	return r.db.Save(wallet).Error
}

// ErrInsufficientBalance is returned by DebitTx when the wallet cannot cover
// the amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrWalletCurrencyMismatch is returned when a ledger entry's currency does
// not match the wallet it would move. Minor units of different currencies
// must never mix on one balance.
var ErrWalletCurrencyMismatch = errors.New("wallet currency mismatch")

func (r *walletRepository) CreditTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error {
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return err
	}
	if entry.Currency != wallet.Currency {
		return ErrWalletCurrencyMismatch
	}

	wallet.Balance += amount
	if err := tx.Save(&wallet).Error; err != nil {
		return err
	}
	return tx.Create(entry).Error
}

func (r *walletRepository) DebitTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error {
	var wallet models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return err
	}

	if entry.Currency != wallet.Currency {
		return ErrWalletCurrencyMismatch
	}
	if wallet.Balance < amount {
		return ErrInsufficientBalance
	}
	wallet.Balance -= amount
	if err := tx.Save(&wallet).Error; err != nil {
		return err
	}
	return tx.Create(entry).Error
}

func (r *walletRepository) ExecuteInTransaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *walletRepository) SumTransactionVolume(txType string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", txType, "completed").
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
