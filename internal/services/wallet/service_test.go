package wallet

import (
	"context"
	"testing"

	"aurapay/internal/models"
	"aurapay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) Create(wallet *models.Wallet) error {
	return m.Called(wallet).Error(0)
}

func (m *mockWalletRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if w, ok := args.Get(0).(*models.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletRepo) Update(wallet *models.Wallet) error {
	return m.Called(wallet).Error(0)
}

func (m *mockWalletRepo) CreditTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error {
	return m.Called(tx, userID, amount, entry).Error(0)
}

func (m *mockWalletRepo) DebitTx(tx *gorm.DB, userID uint, amount int64, entry *models.Transaction) error {
	return m.Called(tx, userID, amount, entry).Error(0)
}

func (m *mockWalletRepo) ExecuteInTransaction(fn func(tx *gorm.DB) error) error {
	m.Called()
	return fn(nil)
}

func (m *mockWalletRepo) SumTransactionVolume(txType string) (int64, error) {
	args := m.Called(txType)
	return args.Get(0).(int64), args.Error(1)
}

func newWalletService(repo *mockWalletRepo) Service {
	return NewService(repo, Config{}, zap.NewNop())
}

func activeWallet(balance int64) *models.Wallet {
	return &models.Wallet{ID: 1, UserID: 7, Balance: balance, Currency: "USD", Status: models.WalletStatusActive}
}

func TestCreateWalletDefaultsCurrency(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("Create", mock.MatchedBy(func(w *models.Wallet) bool {
		return w.Currency == "USD" && w.Balance == 0 && w.Status == models.WalletStatusActive
	})).Return(nil)

	w, err := svc.CreateWallet(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", w.Currency)
}

func TestCreateWalletRejectsBadCurrency(t *testing.T) {
	svc := newWalletService(new(mockWalletRepo))

	_, err := svc.CreateWallet(context.Background(), 7, "DOLLARS")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestCreditInTxRecordsLedgerEntry(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("CreditTx", mock.Anything, uint(7), int64(25000), mock.MatchedBy(func(e *models.Transaction) bool {
		return e.Type == models.TransactionTypeDeposit &&
			e.ReceiverID == 7 && e.Amount == 25000 && e.Reference == "FLU-7-1-x"
	})).Return(nil)

	err := svc.CreditInTx(nil, 7, 25000, "USD", "FLU-7-1-x", "deposit via flutterwave")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreditInTxRejectsNonPositive(t *testing.T) {
	svc := newWalletService(new(mockWalletRepo))

	assert.ErrorIs(t, svc.CreditInTx(nil, 7, 0, "USD", "r", ""), ErrInvalidAmount)
	assert.ErrorIs(t, svc.CreditInTx(nil, 7, -100, "USD", "r", ""), ErrInvalidAmount)
}

func TestCreditInTxRejectsCurrencyMismatch(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("CreditTx", mock.Anything, uint(7), int64(25000), mock.MatchedBy(func(e *models.Transaction) bool {
		return e.Currency == "NGN"
	})).Return(repositories.ErrWalletCurrencyMismatch)

	err := svc.CreditInTx(nil, 7, 25000, "ngn", "FLU-7-1-x", "deposit via flutterwave")
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("GetByUserID", uint(7)).Return(activeWallet(100), nil)
	repo.On("ExecuteInTransaction").Return(nil)
	repo.On("DebitTx", mock.Anything, uint(7), int64(5000), mock.Anything).
		Return(repositories.ErrInsufficientBalance)

	_, err := svc.Withdraw(context.Background(), 7, 5000, "rent")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestWithdrawLockedWallet(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	locked := activeWallet(10000)
	locked.Status = models.WalletStatusLocked
	repo.On("GetByUserID", uint(7)).Return(locked, nil)

	_, err := svc.Withdraw(context.Background(), 7, 5000, "rent")
	assert.ErrorIs(t, err, ErrWalletLocked)
	repo.AssertNotCalled(t, "DebitTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferDebitsAndCredits(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("GetByUserID", uint(7)).Return(activeWallet(100000), nil)
	repo.On("ExecuteInTransaction").Return(nil)
	repo.On("DebitTx", mock.Anything, uint(7), int64(2500), mock.MatchedBy(func(e *models.Transaction) bool {
		return e.Metadata["counterparty_id"] == uint(9)
	})).Return(nil).Once()
	repo.On("CreditTx", mock.Anything, uint(9), int64(2500), mock.MatchedBy(func(e *models.Transaction) bool {
		return e.Metadata["counterparty_id"] == uint(7)
	})).Return(nil).Once()

	err := svc.Transfer(context.Background(), 7, 9, 2500, "lunch")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTransferRejectsReceiverCurrencyMismatch(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	repo.On("GetByUserID", uint(7)).Return(activeWallet(100000), nil)
	repo.On("ExecuteInTransaction").Return(nil)
	repo.On("DebitTx", mock.Anything, uint(7), int64(2500), mock.Anything).Return(nil)
	repo.On("CreditTx", mock.Anything, uint(9), int64(2500), mock.Anything).
		Return(repositories.ErrWalletCurrencyMismatch)

	err := svc.Transfer(context.Background(), 7, 9, 2500, "lunch")
	assert.ErrorIs(t, err, ErrCurrencyMismatch, "the transaction rolls back, no one-sided debit")
}

func TestTransferToSelf(t *testing.T) {
	svc := newWalletService(new(mockWalletRepo))

	err := svc.Transfer(context.Background(), 7, 7, 2500, "")
	assert.ErrorIs(t, err, ErrSelfTransfer)
}

func TestAmountLimits(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := newWalletService(repo)

	_, err := svc.Withdraw(context.Background(), 7, 50, "below minimum")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Withdraw(context.Background(), 7, 10_000_000_00, "above maximum")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
