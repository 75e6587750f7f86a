// Package stripeissuing adapts the Stripe Issuing API to the internal
// provider contract using the official stripe-go client.
package stripeissuing

import (
	"context"
	"errors"
	"strings"
	"time"

	"aurapay/internal/providers"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"go.uber.org/zap"
)

const providerName = "stripe"

type Client struct {
	api *client.API
	log *zap.Logger
}

// New builds a Stripe Issuing client with its own API handle; the global
// stripe key is deliberately not touched.
func New(secretKey string, log *zap.Logger) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, log: log.Named("stripe")}
}

func (c *Client) Name() string { return providerName }

func (c *Client) CreateCardholder(ctx context.Context, in providers.CardholderInput) (*providers.Cardholder, error) {
	if in.Name == "" || in.Email == "" {
		return nil, &providers.ValidationError{Provider: providerName, Message: "cardholder name and email are required"}
	}
	if in.Address.Line1 == "" || in.Address.Country == "" {
		// Stripe requires a billing address for issuing cardholders.
		return nil, &providers.ValidationError{Provider: providerName, Message: "cardholder billing address is required"}
	}

	params := &stripe.IssuingCardholderParams{
		Name:        stripe.String(in.Name),
		Email:       stripe.String(in.Email),
		Type:        stripe.String("individual"),
		PhoneNumber: stripe.String(in.Phone),
		Billing: &stripe.IssuingCardholderBillingParams{
			Address: &stripe.AddressParams{
				Line1:      stripe.String(in.Address.Line1),
				City:       stripe.String(in.Address.City),
				State:      stripe.String(in.Address.State),
				PostalCode: stripe.String(in.Address.PostalCode),
				Country:    stripe.String(in.Address.Country),
			},
		},
	}
	params.Context = ctx

	var holder *stripe.IssuingCardholder
	err := providers.Retry(ctx, c.log, "create_cardholder", func() error {
		var err error
		holder, err = c.api.IssuingCardholders.New(params)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}

	return &providers.Cardholder{ID: holder.ID, Name: holder.Name, Email: holder.Email}, nil
}

func (c *Client) CreateCard(ctx context.Context, in providers.CardInput) (*providers.Card, error) {
	params := &stripe.IssuingCardParams{
		Cardholder: stripe.String(in.CardholderID),
		Currency:   stripe.String(strings.ToLower(in.Currency)),
		Type:       stripe.String(string(in.FormFactor)),
		Status:     stripe.String("active"),
	}
	if in.SpendingLimit > 0 {
		interval := in.SpendingLimitInterval
		if interval == "" {
			interval = "monthly"
		}
		params.SpendingControls = &stripe.IssuingCardSpendingControlsParams{
			SpendingLimits: []*stripe.IssuingCardSpendingControlsSpendingLimitParams{{
				Amount:   stripe.Int64(in.SpendingLimit),
				Interval: stripe.String(interval),
			}},
		}
	}
	if in.FormFactor == providers.FormFactorVirtual {
		// Full PAN and CVC are only surfaced on this create response.
		params.AddExpand("number")
		params.AddExpand("cvc")
	}
	params.Context = ctx

	var card *stripe.IssuingCard
	err := providers.Retry(ctx, c.log, "create_card", func() error {
		var err error
		card, err = c.api.IssuingCards.New(params)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(card, in.FormFactor == providers.FormFactorVirtual), nil
}

func (c *Client) GetCard(ctx context.Context, cardID string) (*providers.Card, error) {
	params := &stripe.IssuingCardParams{}
	params.Context = ctx

	var card *stripe.IssuingCard
	err := providers.Retry(ctx, c.log, "get_card", func() error {
		var err error
		card, err = c.api.IssuingCards.Get(cardID, params)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(card, false), nil
}

func (c *Client) GetCardDetails(ctx context.Context, cardID string) (*providers.Card, error) {
	params := &stripe.IssuingCardParams{}
	params.AddExpand("number")
	params.AddExpand("cvc")
	params.Context = ctx

	var card *stripe.IssuingCard
	err := providers.Retry(ctx, c.log, "get_card_details", func() error {
		var err error
		card, err = c.api.IssuingCards.Get(cardID, params)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(card, true), nil
}

func (c *Client) UpdateCardStatus(ctx context.Context, cardID string, status providers.CardStatus) (*providers.Card, error) {
	params := &stripe.IssuingCardParams{Status: stripe.String(stripeStatus(status))}
	params.Context = ctx

	var card *stripe.IssuingCard
	err := providers.Retry(ctx, c.log, "update_card_status", func() error {
		var err error
		card, err = c.api.IssuingCards.Update(cardID, params)
		return mapError(err)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(card, false), nil
}

func (c *Client) ListTransactions(ctx context.Context, cardID string, opts providers.ListOptions) (*providers.TransactionPage, error) {
	params := &stripe.IssuingTransactionListParams{Card: stripe.String(cardID)}
	params.Context = ctx
	if opts.Limit > 0 {
		params.Limit = stripe.Int64(int64(opts.Limit))
	}
	if opts.Cursor != "" {
		params.StartingAfter = stripe.String(opts.Cursor)
	}
	if !opts.From.IsZero() || !opts.To.IsZero() {
		rng := &stripe.RangeQueryParams{}
		if !opts.From.IsZero() {
			rng.GreaterThanOrEqual = opts.From.Unix()
		}
		if !opts.To.IsZero() {
			rng.LesserThanOrEqual = opts.To.Unix()
		}
		params.CreatedRange = rng
	}

	page := &providers.TransactionPage{}
	err := providers.Retry(ctx, c.log, "list_transactions", func() error {
		page.Transactions = page.Transactions[:0]
		page.NextCursor = ""

		iter := c.api.IssuingTransactions.List(params)
		for iter.Next() {
			tx := iter.IssuingTransaction()
			merchant := ""
			if tx.MerchantData != nil {
				merchant = tx.MerchantData.Name
			}
			page.Transactions = append(page.Transactions, providers.Transaction{
				ID:         tx.ID,
				CardID:     cardID,
				Amount:     tx.Amount,
				Currency:   string(tx.Currency),
				Status:     string(tx.Type),
				Merchant:   merchant,
				OccurredAt: time.Unix(tx.Created, 0).UTC(),
			})
		}
		if err := iter.Err(); err != nil {
			return mapError(err)
		}
		if meta := iter.Meta(); meta != nil && meta.HasMore && len(page.Transactions) > 0 {
			page.NextCursor = page.Transactions[len(page.Transactions)-1].ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func stripeStatus(status providers.CardStatus) string {
	// Stripe models suspension as "inactive".
	if status == providers.CardStatusSuspended {
		return "inactive"
	}
	return string(status)
}

func normalizeCard(card *stripe.IssuingCard, includeSensitive bool) *providers.Card {
	out := &providers.Card{
		ID:          card.ID,
		FormFactor:  providers.FormFactor(card.Type),
		Status:      normalizeStatus(card.Status),
		LastFour:    card.Last4,
		ExpiryMonth: int(card.ExpMonth),
		ExpiryYear:  int(card.ExpYear),
		Brand:       card.Brand,
		Currency:    strings.ToUpper(string(card.Currency)),
	}
	if card.Cardholder != nil {
		out.CardholderID = card.Cardholder.ID
	}
	if includeSensitive && card.Number != "" {
		out.Sensitive = &providers.SensitiveDetails{Number: card.Number, CVV: card.CVC}
	}
	return out
}

func normalizeStatus(status stripe.IssuingCardStatus) providers.CardStatus {
	switch status {
	case stripe.IssuingCardStatusInactive:
		return providers.CardStatusSuspended
	case stripe.IssuingCardStatusCanceled:
		return providers.CardStatusCanceled
	default:
		return providers.CardStatusActive
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		switch {
		case sErr.HTTPStatusCode == 401 || sErr.HTTPStatusCode == 403:
			return &providers.AuthError{Provider: providerName, Err: err}
		case sErr.HTTPStatusCode == 404:
			return &providers.NotFoundError{Provider: providerName, Resource: "resource", ID: string(sErr.Code)}
		case sErr.HTTPStatusCode >= 500:
			return &providers.NetworkError{Provider: providerName, Err: err}
		case sErr.Type == stripe.ErrorTypeCard:
			return &providers.DeclineError{Provider: providerName, Code: string(sErr.Code), Reason: sErr.Msg}
		default:
			return &providers.ValidationError{Provider: providerName, Message: sErr.Msg}
		}
	}
	return providers.WrapTransport(providerName, err)
}
