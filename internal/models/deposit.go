package models

import "time"

// Deposit states. The two verified states are terminal.
const (
	DepositStatusInitiated           = "initiated"
	DepositStatusRedirected          = "redirected"
	DepositStatusPendingVerification = "pending_verification"
	DepositStatusVerifiedSuccess     = "verified_success"
	DepositStatusVerifiedFailed      = "verified_failed"
)

// Deposit is the local record of a deposit intent. TxRef is the sole
// correlation key with the provider's asynchronous confirmation; the unique
// index on it is what makes verification idempotent across instances.
type Deposit struct {
	ID            uint   `gorm:"primarykey"`
	UserID        uint   `gorm:"not null;index"`
	TxRef         string `gorm:"not null;uniqueIndex"`
	Provider      string `gorm:"not null"`
	ProviderTxID  string `gorm:"index"`
	Amount        int64  `gorm:"not null"` // requested amount, minor units
	Currency      string `gorm:"size:3;not null"`
	Status        string `gorm:"not null;default:'initiated'"`
	FailureReason string
	CheckoutURL   string
	VerifiedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal reports whether the deposit reached a verified end state.
func (d *Deposit) IsTerminal() bool {
	return d.Status == DepositStatusVerifiedSuccess || d.Status == DepositStatusVerifiedFailed
}
