package card

import (
	"context"

	"aurapay/internal/models"
	"aurapay/internal/providers"
)

// Service issues cards through the configured providers and keeps a local
// mirror of every card for listing, ownership checks and lifecycle
// enforcement.
type Service interface {
	CreateCard(ctx context.Context, user *models.User, in CreateCardInput) (*CardView, error)
	ListCards(ctx context.Context, userID uint) ([]CardView, error)
	GetCard(ctx context.Context, userID uint, cardID string) (*CardView, error)
	// GetCardDetails returns the full PAN and CVV of a virtual card. The
	// response is never cached and the sensitive fields are never persisted.
	GetCardDetails(ctx context.Context, userID uint, cardID string) (*CardView, error)
	UpdateStatus(ctx context.Context, userID uint, cardID, status string) (*CardView, error)
	ListTransactions(ctx context.Context, userID uint, cardID string, opts providers.ListOptions) (*providers.TransactionPage, error)
}

// CreateCardInput carries the card request plus the cardholder identity needed
// when this user has no cardholder at the chosen provider yet.
type CreateCardInput struct {
	Provider              string `json:"provider" validate:"required"`
	FormFactor            string `json:"form_factor" validate:"required,oneof=virtual physical"`
	Currency              string `json:"currency" validate:"required,len=3"`
	SpendingLimit         int64  `json:"spending_limit" validate:"gte=0"`
	SpendingLimitInterval string `json:"spending_limit_interval" validate:"omitempty,oneof=daily weekly monthly"`

	HolderName  string `json:"holder_name" validate:"required"`
	HolderPhone string `json:"holder_phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// CardView is the card shape returned to handlers. Number and CVV are set
// only on the create response and on GetCardDetails, both for virtual cards.
type CardView struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	FormFactor  string `json:"form_factor"`
	Status      string `json:"status"`
	LastFour    string `json:"last_four"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Brand       string `json:"brand"`
	Currency    string `json:"currency"`

	Number string `json:"number,omitempty"`
	CVV    string `json:"cvv,omitempty"`
}
