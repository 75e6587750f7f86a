// Package providers defines the internal contract for third-party card-issuing
// and payment processors and the normalized shapes their responses are mapped
// into. Callers depend only on the CardProvider and PaymentProvider interfaces;
// one adapter package per provider implements them.
package providers

import (
	"context"
	"net/http"
	"time"
)

// CardStatus is the internal card lifecycle status shared across providers.
type CardStatus string

const (
	CardStatusActive    CardStatus = "active"
	CardStatusSuspended CardStatus = "suspended"
	CardStatusCanceled  CardStatus = "canceled"
)

// FormFactor distinguishes virtual from physical cards.
type FormFactor string

const (
	FormFactorVirtual  FormFactor = "virtual"
	FormFactorPhysical FormFactor = "physical"
)

// CardholderInput is the identity handed to a provider when creating a
// cardholder. Name and Email are required everywhere; Address is required by
// some providers and validated by the adapter that needs it.
type CardholderInput struct {
	Name    string
	Email   string
	Phone   string
	Address Address
}

type Address struct {
	Line1      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Cardholder is a provider-scoped identity record.
type Cardholder struct {
	ID    string
	Name  string
	Email string
}

// CardInput describes the card to issue.
type CardInput struct {
	CardholderID string
	FormFactor   FormFactor
	Currency     string
	// SpendingLimit caps spend per interval in minor units; zero means no cap.
	SpendingLimit         int64
	SpendingLimitInterval string // e.g. "daily", "monthly"
}

// Card is the normalized card shape. Sensitive is populated only on the
// create response for virtual cards and must never be logged or persisted.
type Card struct {
	ID           string
	CardholderID string
	FormFactor   FormFactor
	Status       CardStatus
	LastFour     string
	ExpiryMonth  int
	ExpiryYear   int
	Brand        string
	Currency     string
	Sensitive    *SensitiveDetails
}

// SensitiveDetails carries the full PAN and CVV of a virtual card. The json
// and String markers exist so the struct cannot leak through encoders or logs.
type SensitiveDetails struct {
	Number string `json:"-"`
	CVV    string `json:"-"`
}

// String implements fmt.Stringer so accidental formatting stays redacted.
func (s *SensitiveDetails) String() string { return "[redacted]" }

// Transaction is a normalized provider-reported card event.
type Transaction struct {
	ID         string
	CardID     string
	Amount     int64 // minor units, negative for reversals
	Currency   string
	Status     string
	Merchant   string
	OccurredAt time.Time
}

// ListOptions controls transaction listing. Cursor is opaque to callers; each
// adapter maps it onto its own pagination scheme.
type ListOptions struct {
	From   time.Time
	To     time.Time
	Limit  int
	Cursor string
}

// TransactionPage is one page of transactions with an opaque continuation
// cursor. Empty NextCursor means the listing is exhausted.
type TransactionPage struct {
	Transactions []Transaction
	NextCursor   string
}

// CardProvider is the capability set every card-issuing adapter implements.
type CardProvider interface {
	Name() string
	CreateCardholder(ctx context.Context, in CardholderInput) (*Cardholder, error)
	CreateCard(ctx context.Context, in CardInput) (*Card, error)
	GetCard(ctx context.Context, cardID string) (*Card, error)
	// GetCardDetails returns the card with Sensitive populated for virtual
	// cards. Access control and rate limiting happen above this layer.
	GetCardDetails(ctx context.Context, cardID string) (*Card, error)
	UpdateCardStatus(ctx context.Context, cardID string, status CardStatus) (*Card, error)
	ListTransactions(ctx context.Context, cardID string, opts ListOptions) (*TransactionPage, error)
}

// PaymentRequest asks a provider for a hosted checkout session.
type PaymentRequest struct {
	TxRef         string
	Amount        int64 // minor units
	Currency      string
	CustomerEmail string
	RedirectURL   string
	Description   string
}

// PaymentSession is the provider-hosted checkout the user is redirected to.
type PaymentSession struct {
	ProviderRef string
	CheckoutURL string
}

// PaymentVerification is the provider's authoritative answer for a
// transaction. Succeeded reflects the provider status only; amount and
// currency matching is the caller's job and must fail closed. Pending marks
// statuses that can still settle either way and must not be treated as final.
type PaymentVerification struct {
	ProviderTxID string
	TxRef        string
	Amount       int64 // minor units as confirmed by the provider
	Currency     string
	Succeeded    bool
	Pending      bool
	RawStatus    string
}

// VerifyRef identifies the transaction to verify. ProviderTxID wins when both
// are present; TxRef covers providers that key on the merchant reference.
type VerifyRef struct {
	TxRef        string
	ProviderTxID string
}

// PaymentProvider is the capability set every deposit processor implements.
type PaymentProvider interface {
	Name() string
	InitiatePayment(ctx context.Context, in PaymentRequest) (*PaymentSession, error)
	VerifyPayment(ctx context.Context, ref VerifyRef) (*PaymentVerification, error)
}

// DefaultTimeout bounds every provider HTTP call.
const DefaultTimeout = 15 * time.Second

// NewHTTPClient returns the shared client configuration for REST adapters.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
