package deposit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurapay/internal/models"
	"aurapay/internal/providers"
	"aurapay/internal/repositories"
	"aurapay/internal/services/wallet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	deposits repositories.DepositRepository
	registry *providers.Registry
	wallets  wallet.Service
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the deposit flow over the provider registry and the
// wallet ledger.
func NewService(
	deposits repositories.DepositRepository,
	registry *providers.Registry,
	wallets wallet.Service,
	cfg Config,
	logger *zap.Logger,
) Service {
	if cfg.PendingWindow == 0 {
		cfg.PendingWindow = DefaultPendingWindow
	}
	if cfg.MinAmount == 0 {
		cfg.MinAmount = DefaultMinAmount
	}
	if cfg.MaxAmount == 0 {
		cfg.MaxAmount = DefaultMaxAmount
	}
	return &service{
		deposits: deposits,
		registry: registry,
		wallets:  wallets,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) Initiate(ctx context.Context, user *models.User, in InitiateInput) (*InitiateResult, error) {
	if in.Amount < s.cfg.MinAmount || in.Amount > s.cfg.MaxAmount {
		return nil, ErrInvalidAmount
	}
	in.Currency = strings.ToUpper(in.Currency)
	if len(in.Currency) != 3 {
		return nil, ErrInvalidCurrency
	}
	provider, err := s.registry.Payment(in.Provider)
	if err != nil {
		return nil, ErrUnknownProvider
	}

	txRef := newTxRef(in.Provider, user.ID, s.now())
	record := &models.Deposit{
		UserID:   user.ID,
		TxRef:    txRef,
		Provider: provider.Name(),
		Amount:   in.Amount,
		Currency: in.Currency,
		Status:   models.DepositStatusInitiated,
	}
	if err := s.deposits.Create(record); err != nil {
		return nil, fmt.Errorf("recording deposit: %w", err)
	}

	session, err := provider.InitiatePayment(ctx, providers.PaymentRequest{
		TxRef:         txRef,
		Amount:        in.Amount,
		Currency:      in.Currency,
		CustomerEmail: user.Email,
		RedirectURL:   s.cfg.RedirectURL,
		Description:   "wallet deposit",
	})
	if err != nil {
		record.Status = models.DepositStatusVerifiedFailed
		record.FailureReason = "checkout creation failed"
		if uerr := s.deposits.Update(record); uerr != nil {
			s.logger.Error("marking failed deposit", zap.String("tx_ref", txRef), zap.Error(uerr))
		}
		if providers.IsRetryable(err) {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("initiating payment: %w", err)
	}

	record.Status = models.DepositStatusRedirected
	record.ProviderTxID = session.ProviderRef
	record.CheckoutURL = session.CheckoutURL
	if err := s.deposits.Update(record); err != nil {
		return nil, fmt.Errorf("updating deposit: %w", err)
	}

	s.logger.Info("deposit initiated",
		zap.String("tx_ref", txRef),
		zap.String("provider", provider.Name()),
		zap.Int64("amount", in.Amount),
		zap.String("currency", in.Currency))

	return &InitiateResult{
		TxRef:       txRef,
		CheckoutURL: session.CheckoutURL,
		Provider:    provider.Name(),
		Amount:      in.Amount,
		Currency:    in.Currency,
	}, nil
}

// Verify runs under a row lock on the deposit so concurrent callbacks for the
// same tx_ref serialize. The provider call happens inside the lock; that keeps
// the credit and the terminal state transition in one transaction, which is
// what guarantees the wallet moves at most once.
func (s *service) Verify(ctx context.Context, txRef string, providerTxID string) (*VerifyResult, error) {
	var result *VerifyResult
	err := s.deposits.WithLockedDeposit(ctx, txRef, func(tx *gorm.DB, d *models.Deposit) error {
		if d.IsTerminal() {
			result = s.settledResult(d)
			return nil
		}

		provider, err := s.registry.Payment(d.Provider)
		if err != nil {
			return err
		}

		if d.Status != models.DepositStatusPendingVerification {
			d.Status = models.DepositStatusPendingVerification
			if err := s.deposits.SaveTx(tx, d); err != nil {
				return err
			}
		}
		if providerTxID != "" && d.ProviderTxID == "" {
			d.ProviderTxID = providerTxID
		}

		verification, err := provider.VerifyPayment(ctx, providers.VerifyRef{
			TxRef:        d.TxRef,
			ProviderTxID: d.ProviderTxID,
		})
		if err != nil {
			return s.handleVerifyError(tx, d, err, &result)
		}

		return s.settle(tx, d, verification, &result)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	return result, nil
}

// handleVerifyError decides what a provider error means for the deposit.
// Transient errors leave it pending; a definitive "not found" after the
// pending window marks it failed.
func (s *service) handleVerifyError(tx *gorm.DB, d *models.Deposit, err error, out **VerifyResult) error {
	var notFound *providers.NotFoundError
	if errors.As(err, &notFound) {
		if s.now().Sub(d.CreatedAt) < s.cfg.PendingWindow {
			if serr := s.deposits.SaveTx(tx, d); serr != nil {
				return serr
			}
			*out = s.processingResult(d)
			return nil
		}
		d.Status = models.DepositStatusVerifiedFailed
		d.FailureReason = "transaction not found at provider"
		if serr := s.deposits.SaveTx(tx, d); serr != nil {
			return serr
		}
		s.logger.Warn("deposit expired unconfirmed", zap.String("tx_ref", d.TxRef))
		*out = s.settledResult(d)
		return nil
	}

	if providers.IsRetryable(err) {
		if serr := s.deposits.SaveTx(tx, d); serr != nil {
			return serr
		}
		s.logger.Warn("deposit verification unreachable",
			zap.String("tx_ref", d.TxRef), zap.Error(err))
		*out = s.processingResult(d)
		return nil
	}
	return fmt.Errorf("verifying deposit %s: %w", d.TxRef, err)
}

// settle applies the provider's answer. Amount or currency disagreement fails
// closed: the deposit is marked failed for review and the wallet is untouched.
func (s *service) settle(tx *gorm.DB, d *models.Deposit, v *providers.PaymentVerification, out **VerifyResult) error {
	if v.ProviderTxID != "" {
		d.ProviderTxID = v.ProviderTxID
	}

	// A pending status at the provider is not an answer. The deposit stays
	// re-checkable no matter how old it is; providers can settle late.
	if v.Pending {
		if err := s.deposits.SaveTx(tx, d); err != nil {
			return err
		}
		s.logger.Info("deposit still pending at provider",
			zap.String("tx_ref", d.TxRef), zap.String("provider_status", v.RawStatus))
		*out = s.processingResult(d)
		return nil
	}

	if !v.Succeeded {
		d.Status = models.DepositStatusVerifiedFailed
		d.FailureReason = "provider reported " + v.RawStatus
		now := s.now()
		d.VerifiedAt = &now
		if err := s.deposits.SaveTx(tx, d); err != nil {
			return err
		}
		s.logger.Info("deposit failed at provider",
			zap.String("tx_ref", d.TxRef), zap.String("provider_status", v.RawStatus))
		*out = s.settledResult(d)
		return nil
	}

	if v.Amount != d.Amount || !strings.EqualFold(v.Currency, d.Currency) {
		d.Status = models.DepositStatusVerifiedFailed
		d.FailureReason = fmt.Sprintf("mismatch: provider reported %d %s, expected %d %s",
			v.Amount, v.Currency, d.Amount, d.Currency)
		now := s.now()
		d.VerifiedAt = &now
		if err := s.deposits.SaveTx(tx, d); err != nil {
			return err
		}
		s.logger.Error("deposit amount mismatch",
			zap.String("tx_ref", d.TxRef),
			zap.Int64("expected_amount", d.Amount),
			zap.String("expected_currency", d.Currency),
			zap.Int64("reported_amount", v.Amount),
			zap.String("reported_currency", v.Currency))
		*out = s.settledResult(d)
		return nil
	}

	if err := s.wallets.CreditInTx(tx, d.UserID, d.Amount, d.Currency, d.TxRef, "deposit via "+d.Provider); err != nil {
		if errors.Is(err, wallet.ErrCurrencyMismatch) {
			d.Status = models.DepositStatusVerifiedFailed
			d.FailureReason = "deposit currency does not match wallet"
			now := s.now()
			d.VerifiedAt = &now
			if serr := s.deposits.SaveTx(tx, d); serr != nil {
				return serr
			}
			s.logger.Error("deposit currency does not match wallet",
				zap.String("tx_ref", d.TxRef), zap.String("currency", d.Currency))
			*out = s.settledResult(d)
			return nil
		}
		return err
	}
	d.Status = models.DepositStatusVerifiedSuccess
	now := s.now()
	d.VerifiedAt = &now
	if err := s.deposits.SaveTx(tx, d); err != nil {
		return err
	}

	s.logger.Info("deposit credited",
		zap.String("tx_ref", d.TxRef),
		zap.Uint("user_id", d.UserID),
		zap.Int64("amount", d.Amount),
		zap.String("currency", d.Currency))

	res := s.settledResult(d)
	res.Credited = true
	*out = res
	return nil
}

func (s *service) settledResult(d *models.Deposit) *VerifyResult {
	return &VerifyResult{
		TxRef:    d.TxRef,
		Status:   d.Status,
		Reason:   d.FailureReason,
		Amount:   d.Amount,
		Currency: d.Currency,
	}
}

func (s *service) processingResult(d *models.Deposit) *VerifyResult {
	return &VerifyResult{
		TxRef:      d.TxRef,
		Status:     d.Status,
		Processing: true,
		Amount:     d.Amount,
		Currency:   d.Currency,
	}
}

// VerifyByRef resolves a caller-supplied reference, which may be either the
// merchant tx_ref or the provider's transaction id, checks ownership and runs
// Verify on the matching deposit.
func (s *service) VerifyByRef(ctx context.Context, userID uint, ref string) (*VerifyResult, error) {
	d, err := s.deposits.GetByTxRef(ref)
	if errors.Is(err, repositories.ErrDepositNotFound) {
		d, err = s.deposits.GetByProviderTxID(ref)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrNotDepositOwner
	}

	providerTxID := ""
	if ref != d.TxRef {
		providerTxID = ref
	}
	return s.Verify(ctx, d.TxRef, providerTxID)
}

func (s *service) Status(ctx context.Context, userID uint, txRef string) (*models.Deposit, error) {
	d, err := s.deposits.GetByTxRef(txRef)
	if err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, err
	}
	if d.UserID != userID {
		return nil, ErrNotDepositOwner
	}
	return d, nil
}

func (s *service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, int64, error) {
	return s.deposits.ListByUser(userID, limit, offset)
}

// newTxRef builds the merchant reference sent to providers. It is unique per
// attempt and safe to expose in redirect URLs.
func newTxRef(provider string, userID uint, at time.Time) string {
	prefix := strings.ToUpper(provider)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	short := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%d-%s", prefix, userID, at.UnixMilli(), short)
}
