package deposit

import (
	"context"
	"time"

	"aurapay/internal/models"
)

// Service drives the deposit lifecycle:
//
//	initiated -> redirected -> pending_verification -> verified_success
//	                                                -> verified_failed
//
// The two verified states are terminal. Verify is safe to call any number of
// times for the same reference; the wallet is credited at most once.
type Service interface {
	Initiate(ctx context.Context, user *models.User, in InitiateInput) (*InitiateResult, error)
	// Verify settles a deposit against the provider's authoritative answer.
	// It is the single entry point for both the redirect callback and manual
	// re-checks; any status carried on the redirect URL is ignored.
	Verify(ctx context.Context, txRef string, providerTxID string) (*VerifyResult, error)
	// VerifyByRef accepts either the tx_ref or the provider transaction id
	// and enforces that the deposit belongs to userID before verifying.
	VerifyByRef(ctx context.Context, userID uint, ref string) (*VerifyResult, error)
	Status(ctx context.Context, userID uint, txRef string) (*models.Deposit, error)
	List(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, int64, error)
}

// InitiateInput is the user's deposit request. Amount is minor units.
type InitiateInput struct {
	Provider string `json:"provider" validate:"required"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// InitiateResult carries the hosted checkout the caller redirects to.
type InitiateResult struct {
	TxRef       string `json:"tx_ref"`
	CheckoutURL string `json:"checkout_url"`
	Provider    string `json:"provider"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// VerifyResult is the settled (or still-pending) outcome of a verification.
type VerifyResult struct {
	TxRef      string `json:"tx_ref"`
	Status     string `json:"status"`
	Credited   bool   `json:"credited"`
	Processing bool   `json:"processing"`
	Reason     string `json:"reason,omitempty"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// Config holds deposit tuning. Zero values fall back to defaults.
type Config struct {
	// RedirectURL is where providers send the user after checkout.
	RedirectURL string
	// PendingWindow is how long an unconfirmed deposit is reported as still
	// processing before a provider "not found" marks it failed.
	PendingWindow time.Duration
	MinAmount     int64
	MaxAmount     int64
}

// Defaults, minor units.
const (
	DefaultPendingWindow = 15 * time.Minute
	DefaultMinAmount     = 1_00
	DefaultMaxAmount     = 10_000_00
)
