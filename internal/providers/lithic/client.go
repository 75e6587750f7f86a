// Package lithic adapts the Lithic card-issuing REST API to the internal
// provider contract. Requests authenticate with a static API key header.
package lithic

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aurapay/internal/providers"

	"go.uber.org/zap"
)

const providerName = "lithic"

type Config struct {
	APIKey  string
	BaseURL string
	// Production disables the sandbox-only simulation endpoint.
	Production bool
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: providers.NewHTTPClient(),
		log:  log.Named("lithic"),
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": c.cfg.APIKey}
}

func (c *Client) CreateCardholder(ctx context.Context, in providers.CardholderInput) (*providers.Cardholder, error) {
	if in.Name == "" || in.Email == "" {
		return nil, &providers.ValidationError{Provider: providerName, Message: "cardholder name and email are required"}
	}
	first, last := splitName(in.Name)
	payload := map[string]interface{}{
		"individual": map[string]interface{}{
			"first_name":   first,
			"last_name":    last,
			"email":        in.Email,
			"phone_number": in.Phone,
			"address": map[string]string{
				"address1":    in.Address.Line1,
				"city":        in.Address.City,
				"state":       in.Address.State,
				"postal_code": in.Address.PostalCode,
				"country":     in.Address.Country,
			},
		},
		"workflow": "KYC_BASIC",
	}

	var resp struct {
		Token string `json:"token"`
	}
	err := providers.Retry(ctx, c.log, "create_account_holder", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodPost,
			c.cfg.BaseURL+"/account_holders", c.headers(), payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &providers.Cardholder{ID: resp.Token, Name: in.Name, Email: in.Email}, nil
}

type cardResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	State    string `json:"state"`
	LastFour string `json:"last_four"`
	ExpMonth string `json:"exp_month"`
	ExpYear  string `json:"exp_year"`
	PAN      string `json:"pan"`
	CVV      string `json:"cvv"`
}

func (c *Client) CreateCard(ctx context.Context, in providers.CardInput) (*providers.Card, error) {
	payload := map[string]interface{}{
		"type":          lithicFormFactor(in.FormFactor),
		"account_token": in.CardholderID,
		"state":         "OPEN",
	}
	if in.SpendingLimit > 0 {
		duration := strings.ToUpper(in.SpendingLimitInterval)
		if duration == "" || duration == "DAILY" {
			// Lithic has no daily duration; the closest bound is per-transaction.
			duration = "TRANSACTION"
		}
		payload["spend_limit"] = in.SpendingLimit
		payload["spend_limit_duration"] = duration
	}

	var resp cardResponse
	err := providers.Retry(ctx, c.log, "create_card", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodPost,
			c.cfg.BaseURL+"/cards", c.headers(), payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp, in.CardholderID, in.FormFactor == providers.FormFactorVirtual), nil
}

func (c *Client) GetCard(ctx context.Context, cardID string) (*providers.Card, error) {
	var resp cardResponse
	err := providers.Retry(ctx, c.log, "get_card", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodGet,
			c.cfg.BaseURL+"/cards/"+url.PathEscape(cardID), c.headers(), nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp, "", false), nil
}

func (c *Client) GetCardDetails(ctx context.Context, cardID string) (*providers.Card, error) {
	var resp cardResponse
	err := providers.Retry(ctx, c.log, "get_card_details", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodGet,
			c.cfg.BaseURL+"/cards/"+url.PathEscape(cardID), c.headers(), nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp, "", true), nil
}

func (c *Client) UpdateCardStatus(ctx context.Context, cardID string, status providers.CardStatus) (*providers.Card, error) {
	payload := map[string]string{"state": lithicState(status)}
	var resp cardResponse
	err := providers.Retry(ctx, c.log, "update_card_status", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodPatch,
			c.cfg.BaseURL+"/cards/"+url.PathEscape(cardID), c.headers(), payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp, "", false), nil
}

type transactionsResponse struct {
	Data []struct {
		Token     string `json:"token"`
		CardToken string `json:"card_token"`
		Amount    int64  `json:"amount"`
		Status    string `json:"status"`
		Merchant  struct {
			Descriptor string `json:"descriptor"`
		} `json:"merchant"`
		Created string `json:"created"`
	} `json:"data"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

func (c *Client) ListTransactions(ctx context.Context, cardID string, opts providers.ListOptions) (*providers.TransactionPage, error) {
	page := 1
	if opts.Cursor != "" {
		n, err := strconv.Atoi(opts.Cursor)
		if err != nil {
			return nil, &providers.ValidationError{Provider: providerName, Message: "invalid pagination cursor"}
		}
		page = n
	}

	q := url.Values{}
	q.Set("card_token", cardID)
	q.Set("page", strconv.Itoa(page))
	if opts.Limit > 0 {
		q.Set("page_size", strconv.Itoa(opts.Limit))
	}
	if !opts.From.IsZero() {
		q.Set("begin", opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		q.Set("end", opts.To.UTC().Format(time.RFC3339))
	}

	var resp transactionsResponse
	err := providers.Retry(ctx, c.log, "list_transactions", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodGet,
			c.cfg.BaseURL+"/transactions?"+q.Encode(), c.headers(), nil, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := &providers.TransactionPage{}
	for _, item := range resp.Data {
		occurred, _ := time.Parse(time.RFC3339, item.Created)
		out.Transactions = append(out.Transactions, providers.Transaction{
			ID:         item.Token,
			CardID:     item.CardToken,
			Amount:     item.Amount,
			Currency:   "USD",
			Status:     strings.ToLower(item.Status),
			Merchant:   item.Merchant.Descriptor,
			OccurredAt: occurred,
		})
	}
	if resp.Page < resp.TotalPages {
		out.NextCursor = strconv.Itoa(page + 1)
	}
	return out, nil
}

// SimulateAuthorization posts a sandbox authorization against a card. Refused
// outright in production configuration.
func (c *Client) SimulateAuthorization(ctx context.Context, pan string, amount int64, descriptor string) (string, error) {
	if c.cfg.Production {
		return "", &providers.ValidationError{Provider: providerName, Message: "transaction simulation is not available in production"}
	}
	payload := map[string]interface{}{
		"pan":        pan,
		"amount":     amount,
		"descriptor": descriptor,
	}
	var resp struct {
		Token string `json:"token"`
	}
	err := providers.Retry(ctx, c.log, "simulate_authorization", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodPost,
			c.cfg.BaseURL+"/simulate/authorize", c.headers(), payload, &resp)
	})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func lithicFormFactor(f providers.FormFactor) string {
	if f == providers.FormFactorPhysical {
		return "PHYSICAL"
	}
	return "VIRTUAL"
}

func lithicState(status providers.CardStatus) string {
	switch status {
	case providers.CardStatusActive:
		return "OPEN"
	case providers.CardStatusSuspended:
		return "PAUSED"
	default:
		return "CLOSED"
	}
}

func normalizeCard(resp *cardResponse, cardholderID string, includeSensitive bool) *providers.Card {
	month, _ := strconv.Atoi(resp.ExpMonth)
	year, _ := strconv.Atoi(resp.ExpYear)
	out := &providers.Card{
		ID:           resp.Token,
		CardholderID: cardholderID,
		FormFactor:   providers.FormFactor(strings.ToLower(resp.Type)),
		Status:       normalizeState(resp.State),
		LastFour:     resp.LastFour,
		ExpiryMonth:  month,
		ExpiryYear:   year,
		Currency:     "USD",
	}
	if includeSensitive && resp.PAN != "" {
		out.Sensitive = &providers.SensitiveDetails{Number: resp.PAN, CVV: resp.CVV}
	}
	return out
}

func normalizeState(state string) providers.CardStatus {
	switch strings.ToUpper(state) {
	case "OPEN":
		return providers.CardStatusActive
	case "PAUSED":
		return providers.CardStatusSuspended
	default:
		return providers.CardStatusCanceled
	}
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], parts[1]
}
