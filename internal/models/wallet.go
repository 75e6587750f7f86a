package models

import (
	"time"
)

// Wallet holds a user balance in minor units of its currency.
// Balances only move through repository methods that record a ledger entry.
type Wallet struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"uniqueIndex;not null"`
	Balance      int64  `gorm:"not null;default:0"`
	Currency     string `gorm:"size:3;default:'USD'"`
	Status       string `gorm:"default:'active'"`
	StatusReason string `gorm:"default:''"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Wallet statuses.
const (
	WalletStatusActive = "active"
	WalletStatusLocked = "locked"
)
