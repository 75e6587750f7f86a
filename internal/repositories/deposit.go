package repositories

import (
	"context"
	"errors"
	"strings"

	"aurapay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepositRepository persists deposit intents. Verification runs under a row
// lock on tx_ref so concurrent verify calls for the same deposit serialize at
// the database, which is the only safeguard that holds across instances.
type DepositRepository interface {
	Create(deposit *models.Deposit) error
	GetByTxRef(txRef string) (*models.Deposit, error)
	GetByProviderTxID(providerTxID string) (*models.Deposit, error)
	Update(deposit *models.Deposit) error
	ListByUser(userID uint, limit, offset int) ([]models.Deposit, int64, error)
	CountByStatus(status string) (int64, error)
	// WithLockedDeposit loads the deposit FOR UPDATE inside a transaction and
	// hands it to fn together with the transaction handle.
	WithLockedDeposit(ctx context.Context, txRef string, fn func(tx *gorm.DB, d *models.Deposit) error) error
	// SaveTx persists the deposit inside the supplied transaction.
	SaveTx(tx *gorm.DB, deposit *models.Deposit) error
}

type depositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(deposit *models.Deposit) error {
	if err := r.db.Create(deposit).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateTxRef
		}
		return err
	}
	return nil
}

func (r *depositRepository) GetByTxRef(txRef string) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := r.db.Where("tx_ref = ?", txRef).First(&deposit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

func (r *depositRepository) GetByProviderTxID(providerTxID string) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := r.db.Where("provider_tx_id = ?", providerTxID).First(&deposit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

func (r *depositRepository) Update(deposit *models.Deposit) error {
	return r.db.Save(deposit).Error
}

func (r *depositRepository) ListByUser(userID uint, limit, offset int) ([]models.Deposit, int64, error) {
	var deposits []models.Deposit
	var total int64

	q := r.db.Model(&models.Deposit{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Limit(limit).Offset(offset).Order("created_at DESC").Find(&deposits).Error
	return deposits, total, err
}

func (r *depositRepository) CountByStatus(status string) (int64, error) {
	var total int64
	err := r.db.Model(&models.Deposit{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

func (r *depositRepository) SaveTx(tx *gorm.DB, deposit *models.Deposit) error {
	return tx.Save(deposit).Error
}

func (r *depositRepository) WithLockedDeposit(ctx context.Context, txRef string, fn func(tx *gorm.DB, d *models.Deposit) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deposit models.Deposit
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tx_ref = ?", txRef).First(&deposit).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepositNotFound
			}
			return err
		}
		return fn(tx, &deposit)
	})
}
