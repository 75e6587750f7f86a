package models

import (
	"time"
)

// Ledger entry types.
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
	TransactionTypeFee        = "fee"
)

// Transaction is a ledger entry recording a wallet balance movement.
// Amounts are minor units; the row is append-only.
type Transaction struct {
	ID          uint   `gorm:"primarykey"`
	Type        string `gorm:"not null"`
	SenderID    uint   `gorm:"index"`
	ReceiverID  uint   `gorm:"index"`
	Amount      int64  `gorm:"not null"`
	Currency    string `gorm:"size:3;default:'USD'"`
	Description string
	Status      string `gorm:"not null;default:'completed'"`
	Reference   string `gorm:"index"` // txRef or provider reference for correlation
	Metadata    JSON   `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
