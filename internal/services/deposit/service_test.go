package deposit

import (
	"context"
	"testing"
	"time"

	"aurapay/internal/models"
	"aurapay/internal/providers"
	"aurapay/internal/repositories"
	"aurapay/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockDepositRepo struct {
	mock.Mock
}

func (m *mockDepositRepo) Create(d *models.Deposit) error {
	return m.Called(d).Error(0)
}

func (m *mockDepositRepo) GetByTxRef(txRef string) (*models.Deposit, error) {
	args := m.Called(txRef)
	if d, ok := args.Get(0).(*models.Deposit); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDepositRepo) GetByProviderTxID(providerTxID string) (*models.Deposit, error) {
	args := m.Called(providerTxID)
	if d, ok := args.Get(0).(*models.Deposit); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDepositRepo) Update(d *models.Deposit) error {
	return m.Called(d).Error(0)
}

func (m *mockDepositRepo) ListByUser(userID uint, limit, offset int) ([]models.Deposit, int64, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]models.Deposit), args.Get(1).(int64), args.Error(2)
}

func (m *mockDepositRepo) CountByStatus(status string) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDepositRepo) SaveTx(tx *gorm.DB, d *models.Deposit) error {
	return m.Called(tx, d).Error(0)
}

func (m *mockDepositRepo) WithLockedDeposit(ctx context.Context, txRef string, fn func(tx *gorm.DB, d *models.Deposit) error) error {
	args := m.Called(ctx, txRef)
	if args.Error(1) != nil {
		return args.Error(1)
	}
	return fn(nil, args.Get(0).(*models.Deposit))
}

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w, ok := args.Get(0).(*models.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) CreateWallet(ctx context.Context, userID uint, currency string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	if w, ok := args.Get(0).(*models.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) CreditInTx(tx *gorm.DB, userID uint, amount int64, currency, reference, description string) error {
	return m.Called(tx, userID, amount, currency, reference, description).Error(0)
}

func (m *mockWalletService) Withdraw(ctx context.Context, userID uint, amount int64, description string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, description)
	if w, ok := args.Get(0).(*models.Wallet); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) Transfer(ctx context.Context, fromUserID, toUserID uint, amount int64, description string) error {
	return m.Called(ctx, fromUserID, toUserID, amount, description).Error(0)
}

type mockPaymentProvider struct {
	mock.Mock
	name string
}

func (m *mockPaymentProvider) Name() string { return m.name }

func (m *mockPaymentProvider) InitiatePayment(ctx context.Context, in providers.PaymentRequest) (*providers.PaymentSession, error) {
	args := m.Called(ctx, in)
	if s, ok := args.Get(0).(*providers.PaymentSession); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentProvider) VerifyPayment(ctx context.Context, ref providers.VerifyRef) (*providers.PaymentVerification, error) {
	args := m.Called(ctx, ref)
	if v, ok := args.Get(0).(*providers.PaymentVerification); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(t *testing.T, provider *mockPaymentProvider) (*service, *mockDepositRepo, *mockWalletService) {
	t.Helper()
	repo := new(mockDepositRepo)
	wallets := new(mockWalletService)
	registry := providers.NewRegistry()
	if provider != nil {
		registry.RegisterPayment(provider)
	}
	svc := NewService(repo, registry, wallets, Config{RedirectURL: "https://pay.example/cb"}, zap.NewNop()).(*service)
	return svc, repo, wallets
}

func pendingDeposit(createdAt time.Time) *models.Deposit {
	return &models.Deposit{
		ID:        1,
		UserID:    7,
		TxRef:     "FLU-7-1700000000000-ab12cd34",
		Provider:  "flutterwave",
		Amount:    25000,
		Currency:  "USD",
		Status:    models.DepositStatusRedirected,
		CreatedAt: createdAt,
	}
}

func TestVerifyCreditsWalletOnSuccess(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		ProviderTxID: "flw-991",
		Amount:       25000,
		Currency:     "USD",
		Succeeded:    true,
		RawStatus:    "successful",
	}, nil).Once()
	wallets.On("CreditInTx", mock.Anything, uint(7), int64(25000), "USD", d.TxRef, mock.Anything).
		Return(nil).Once()

	result, err := svc.Verify(context.Background(), d.TxRef, "flw-991")
	require.NoError(t, err)

	assert.True(t, result.Credited)
	assert.Equal(t, models.DepositStatusVerifiedSuccess, result.Status)
	assert.Equal(t, models.DepositStatusVerifiedSuccess, d.Status)
	assert.NotNil(t, d.VerifiedAt)
	wallets.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestVerifyIsIdempotentOnceSettled(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	settled := pendingDeposit(time.Now())
	settled.Status = models.DepositStatusVerifiedSuccess
	repo.On("WithLockedDeposit", mock.Anything, settled.TxRef).Return(settled, nil)

	result, err := svc.Verify(context.Background(), settled.TxRef, "")
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusVerifiedSuccess, result.Status)
	assert.False(t, result.Credited, "a settled deposit is never credited again")
	provider.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
	wallets.AssertNotCalled(t, "CreditInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyFailsClosedOnAmountMismatch(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    100, // provider says 1.00, deposit says 250.00
		Currency:  "USD",
		Succeeded: true,
	}, nil)

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusVerifiedFailed, result.Status)
	assert.False(t, result.Credited)
	assert.Contains(t, d.FailureReason, "mismatch")
	wallets.AssertNotCalled(t, "CreditInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyFailsClosedOnCurrencyMismatch(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    25000,
		Currency:  "NGN",
		Succeeded: true,
	}, nil)

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusVerifiedFailed, result.Status)
	wallets.AssertNotCalled(t, "CreditInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyFailsClosedOnWalletCurrencyMismatch(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	// Provider and deposit agree on NGN, but the user's wallet is not NGN.
	d := pendingDeposit(time.Now())
	d.Currency = "NGN"
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    25000,
		Currency:  "NGN",
		Succeeded: true,
		RawStatus: "successful",
	}, nil)
	wallets.On("CreditInTx", mock.Anything, uint(7), int64(25000), "NGN", d.TxRef, mock.Anything).
		Return(wallet.ErrCurrencyMismatch).Once()

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusVerifiedFailed, result.Status)
	assert.False(t, result.Credited)
	assert.Contains(t, d.FailureReason, "wallet")
}

func TestVerifyStillProcessingInsideWindow(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, _ := newTestService(t, provider)

	d := pendingDeposit(time.Now().Add(-5 * time.Minute))
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(nil, &providers.NotFoundError{Provider: "flutterwave", Resource: "transaction", ID: d.TxRef})

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.True(t, result.Processing)
	assert.Equal(t, models.DepositStatusPendingVerification, d.Status, "still re-checkable")
}

func TestVerifyExpiresAfterPendingWindow(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, _ := newTestService(t, provider)

	d := pendingDeposit(time.Now().Add(-16 * time.Minute))
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(nil, &providers.NotFoundError{Provider: "flutterwave", Resource: "transaction", ID: d.TxRef})

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.False(t, result.Processing)
	assert.Equal(t, models.DepositStatusVerifiedFailed, result.Status)
}

func TestVerifyKeepsPendingOnNetworkError(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, _ := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).
		Return(nil, &providers.NetworkError{Provider: "flutterwave", Timeout: true})

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.True(t, result.Processing)
	assert.Equal(t, models.DepositStatusPendingVerification, d.Status)
}

func TestVerifyKeepsPendingOnProviderPendingStatus(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	// Old enough that a not-found would expire it; a pending status must not.
	d := pendingDeposit(time.Now().Add(-30 * time.Minute))
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    25000,
		Currency:  "USD",
		Succeeded: false,
		Pending:   true,
		RawStatus: "pending",
	}, nil)

	result, err := svc.Verify(context.Background(), d.TxRef, "")
	require.NoError(t, err)

	assert.True(t, result.Processing)
	assert.Equal(t, models.DepositStatusPendingVerification, d.Status, "stays re-checkable")
	wallets.AssertNotCalled(t, "CreditInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyByRefResolvesProviderTxID(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	d.ProviderTxID = "flw-991"
	repo.On("GetByTxRef", "flw-991").Return(nil, repositories.ErrDepositNotFound)
	repo.On("GetByProviderTxID", "flw-991").Return(d, nil)
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    25000,
		Currency:  "USD",
		Succeeded: true,
		RawStatus: "successful",
	}, nil)
	wallets.On("CreditInTx", mock.Anything, uint(7), int64(25000), "USD", d.TxRef, mock.Anything).
		Return(nil).Once()

	result, err := svc.VerifyByRef(context.Background(), 7, "flw-991")
	require.NoError(t, err)
	assert.True(t, result.Credited)
}

func TestVerifyByRefRejectsForeignDeposit(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, _ := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("GetByTxRef", d.TxRef).Return(d, nil)

	_, err := svc.VerifyByRef(context.Background(), 99, d.TxRef)
	assert.ErrorIs(t, err, ErrNotDepositOwner)
	provider.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything)
}

func TestVerifyIgnoresRedirectStatusParam(t *testing.T) {
	// The redirect URL carries no trusted status; Verify always asks the
	// provider. A provider-reported failure settles as failed even when the
	// caller arrived via a "successful" redirect.
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, wallets := newTestService(t, provider)

	d := pendingDeposit(time.Now())
	repo.On("WithLockedDeposit", mock.Anything, d.TxRef).Return(d, nil)
	repo.On("SaveTx", mock.Anything, d).Return(nil)
	provider.On("VerifyPayment", mock.Anything, mock.Anything).Return(&providers.PaymentVerification{
		Amount:    25000,
		Currency:  "USD",
		Succeeded: false,
		RawStatus: "failed",
	}, nil)

	result, err := svc.Verify(context.Background(), d.TxRef, "flw-991")
	require.NoError(t, err)

	assert.Equal(t, models.DepositStatusVerifiedFailed, result.Status)
	wallets.AssertNotCalled(t, "CreditInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateHappyPath(t *testing.T) {
	provider := &mockPaymentProvider{name: "flutterwave"}
	svc, repo, _ := newTestService(t, provider)

	user := &models.User{Email: "a@b.co"}
	user.ID = 7

	repo.On("Create", mock.AnythingOfType("*models.Deposit")).Return(nil)
	repo.On("Update", mock.AnythingOfType("*models.Deposit")).Return(nil)
	provider.On("InitiatePayment", mock.Anything, mock.MatchedBy(func(in providers.PaymentRequest) bool {
		return in.Amount == 25000 && in.Currency == "USD" &&
			in.CustomerEmail == "a@b.co" && in.RedirectURL == "https://pay.example/cb"
	})).Return(&providers.PaymentSession{ProviderRef: "flw-991", CheckoutURL: "https://checkout/x"}, nil)

	result, err := svc.Initiate(context.Background(), user, InitiateInput{
		Provider: "flutterwave",
		Amount:   25000,
		Currency: "usd",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout/x", result.CheckoutURL)
	assert.NotEmpty(t, result.TxRef)
	assert.Equal(t, "USD", result.Currency)
	provider.AssertExpectations(t)
}

func TestInitiateUnknownProvider(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	user := &models.User{}
	user.ID = 7
	_, err := svc.Initiate(context.Background(), user, InitiateInput{
		Provider: "nope",
		Amount:   25000,
		Currency: "USD",
	})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestInitiateRejectsOutOfRangeAmount(t *testing.T) {
	svc, _, _ := newTestService(t, &mockPaymentProvider{name: "flutterwave"})

	user := &models.User{}
	user.ID = 7
	_, err := svc.Initiate(context.Background(), user, InitiateInput{
		Provider: "flutterwave",
		Amount:   50,
		Currency: "USD",
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewTxRefShape(t *testing.T) {
	ref := newTxRef("flutterwave", 42, time.UnixMilli(1700000000000))
	assert.Regexp(t, `^FLU-42-1700000000000-[0-9a-f]{8}$`, ref)
}
