package models

import "time"

// Card form factors.
const (
	CardFormFactorVirtual  = "virtual"
	CardFormFactorPhysical = "physical"
)

// Card statuses. Canceled is terminal.
const (
	CardStatusCreated   = "created"
	CardStatusActive    = "active"
	CardStatusSuspended = "suspended"
	CardStatusCanceled  = "canceled"
)

// Card mirrors the display subset of a provider-issued card. The provider is
// the source of truth; the PAN is never stored here.
type Card struct {
	ID           uint   `gorm:"primarykey"`
	UserID       uint   `gorm:"not null;index"`
	Provider     string `gorm:"not null;index"`
	ProviderID   string `gorm:"not null;uniqueIndex"` // provider-scoped card id
	CardholderID string `gorm:"not null;index"`
	FormFactor   string `gorm:"not null"`
	LastFour     string `gorm:"size:4;not null"`
	ExpiryMonth  int    `gorm:"not null"`
	ExpiryYear   int    `gorm:"not null"`
	Brand        string
	Currency     string `gorm:"size:3;default:'USD'"`
	Status       string `gorm:"default:'created'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Cardholder stores the provider-issued cardholder id for a user. One record
// per user per provider; immutable after creation.
type Cardholder struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"not null;index;uniqueIndex:idx_cardholder_user_provider"`
	Provider   string `gorm:"not null;uniqueIndex:idx_cardholder_user_provider"`
	ProviderID string `gorm:"not null"`
	Name       string
	Email      string
	CreatedAt  time.Time
}

// IsTerminal reports whether no further status transitions are accepted.
func (c *Card) IsTerminal() bool {
	return c.Status == CardStatusCanceled
}
