// Package airwallex adapts the Airwallex Issuing REST API to the internal
// provider contract. Authentication is a bearer token obtained from the login
// endpoint and cached until its stated expiry.
package airwallex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"aurapay/internal/providers"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const providerName = "airwallex"

type Config struct {
	ClientID string
	APIKey   string
	BaseURL  string
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func New(cfg Config, log *zap.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: providers.NewHTTPClient(),
		log:  log.Named("airwallex"),
	}
}

func (c *Client) Name() string { return providerName }

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// authenticate obtains a bearer token, reusing the cached one until a minute
// before its stated expiry.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	var resp loginResponse
	err := providers.JSONRequest(ctx, c.http, providerName, http.MethodPost,
		c.cfg.BaseURL+"/api/v1/authentication/login",
		map[string]string{"x-client-id": c.cfg.ClientID, "x-api-key": c.cfg.APIKey},
		nil, &resp)
	if err != nil {
		var ve *providers.ValidationError
		if errors.As(err, &ve) {
			err = &providers.AuthError{Provider: providerName, Err: errors.New(ve.Message)}
		}
		return "", err
	}
	if resp.Token == "" {
		return "", &providers.AuthError{Provider: providerName, Err: errors.New("empty token in login response")}
	}

	c.token = resp.Token
	c.tokenExpiry = time.Now().Add(25 * time.Minute)
	if t, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
		c.tokenExpiry = t
	}
	c.log.Debug("obtained access token", zap.Time("expires_at", c.tokenExpiry))
	return c.token, nil
}

// invalidateToken forces a fresh login on the next call.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do executes an authenticated request, re-authenticating once if the cached
// token was rejected.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	call := func() error {
		token, err := c.authenticate(ctx)
		if err != nil {
			return err
		}
		return providers.JSONRequest(ctx, c.http, providerName, method,
			c.cfg.BaseURL+path,
			map[string]string{"Authorization": "Bearer " + token},
			body, out)
	}

	err := call()
	var ae *providers.AuthError
	if errors.As(err, &ae) {
		c.invalidateToken()
		err = call()
	}
	return err
}

type cardholderResponse struct {
	CardholderID string `json:"cardholder_id"`
	Name         struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"individual"`
	Email string `json:"email"`
}

func (c *Client) CreateCardholder(ctx context.Context, in providers.CardholderInput) (*providers.Cardholder, error) {
	if in.Name == "" || in.Email == "" {
		return nil, &providers.ValidationError{Provider: providerName, Message: "cardholder name and email are required"}
	}
	first, last := splitName(in.Name)
	payload := map[string]interface{}{
		"email": in.Email,
		"type":  "INDIVIDUAL",
		"individual": map[string]interface{}{
			"name": map[string]string{"first_name": first, "last_name": last},
			"address": map[string]string{
				"line1":    in.Address.Line1,
				"city":     in.Address.City,
				"state":    in.Address.State,
				"postcode": in.Address.PostalCode,
				"country":  in.Address.Country,
			},
		},
	}

	var resp cardholderResponse
	err := providers.Retry(ctx, c.log, "create_cardholder", func() error {
		return c.do(ctx, http.MethodPost, "/api/v1/issuing/cardholders/create", payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &providers.Cardholder{ID: resp.CardholderID, Name: in.Name, Email: resp.Email}, nil
}

type cardResponse struct {
	CardID      string `json:"card_id"`
	CardStatus  string `json:"card_status"`
	FormFactor  string `json:"form_factor"`
	MaskedPan   string `json:"masked_card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Brand       string `json:"brand"`
	Currency    string `json:"currency"`
	Cardholder  string `json:"cardholder_id"`
}

type cardDetailsResponse struct {
	CardNumber  string `json:"card_number"`
	CVV         string `json:"cvv"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
}

func (c *Client) CreateCard(ctx context.Context, in providers.CardInput) (*providers.Card, error) {
	payload := map[string]interface{}{
		"cardholder_id":   in.CardholderID,
		"form_factor":     strings.ToUpper(string(in.FormFactor)),
		"issue_to":        "CARDHOLDER",
		"currency":        strings.ToUpper(in.Currency),
		"purpose":         "COMMERCIAL",
		"is_personalized": false,
		"request_id":      fmt.Sprintf("card-%d", time.Now().UnixNano()),
	}
	if in.SpendingLimit > 0 {
		interval := strings.ToUpper(in.SpendingLimitInterval)
		if interval == "" {
			interval = "PER_TRANSACTION"
		}
		payload["authorization_controls"] = map[string]interface{}{
			"transaction_limits": map[string]interface{}{
				"currency": strings.ToUpper(in.Currency),
				"limits": []map[string]interface{}{{
					"amount":   providers.MajorUnits(in.SpendingLimit),
					"interval": interval,
				}},
			},
		}
	}

	var resp cardResponse
	err := providers.Retry(ctx, c.log, "create_card", func() error {
		return c.do(ctx, http.MethodPost, "/api/v1/issuing/cards/create", payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	card := normalizeCard(&resp)

	// Virtual PANs come from the details endpoint, surfaced once on create.
	if in.FormFactor == providers.FormFactorVirtual {
		var details cardDetailsResponse
		err = providers.Retry(ctx, c.log, "get_card_details", func() error {
			return c.do(ctx, http.MethodGet, "/api/v1/issuing/cards/"+url.PathEscape(resp.CardID)+"/details", nil, &details)
		})
		if err != nil {
			return nil, err
		}
		card.Sensitive = &providers.SensitiveDetails{Number: details.CardNumber, CVV: details.CVV}
		if n := len(details.CardNumber); n >= 4 && card.LastFour == "" {
			card.LastFour = details.CardNumber[n-4:]
		}
	}
	return card, nil
}

func (c *Client) GetCard(ctx context.Context, cardID string) (*providers.Card, error) {
	var resp cardResponse
	err := providers.Retry(ctx, c.log, "get_card", func() error {
		return c.do(ctx, http.MethodGet, "/api/v1/issuing/cards/"+url.PathEscape(cardID), nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp), nil
}

func (c *Client) GetCardDetails(ctx context.Context, cardID string) (*providers.Card, error) {
	card, err := c.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	var details cardDetailsResponse
	err = providers.Retry(ctx, c.log, "get_card_details", func() error {
		return c.do(ctx, http.MethodGet, "/api/v1/issuing/cards/"+url.PathEscape(cardID)+"/details", nil, &details)
	})
	if err != nil {
		return nil, err
	}
	card.Sensitive = &providers.SensitiveDetails{Number: details.CardNumber, CVV: details.CVV}
	return card, nil
}

func (c *Client) UpdateCardStatus(ctx context.Context, cardID string, status providers.CardStatus) (*providers.Card, error) {
	payload := map[string]interface{}{"card_status": airwallexStatus(status)}
	var resp cardResponse
	err := providers.Retry(ctx, c.log, "update_card_status", func() error {
		return c.do(ctx, http.MethodPost, "/api/v1/issuing/cards/"+url.PathEscape(cardID)+"/update", payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return normalizeCard(&resp), nil
}

type transactionsResponse struct {
	Items []struct {
		TransactionID string `json:"transaction_id"`
		CardID        string `json:"card_id"`
		Amount        string `json:"transaction_amount"`
		Currency      string `json:"transaction_currency"`
		Status        string `json:"status"`
		Merchant      struct {
			Name string `json:"name"`
		} `json:"merchant"`
		CreatedAt string `json:"transaction_date"`
	} `json:"items"`
	HasMore bool `json:"has_more"`
}

func (c *Client) ListTransactions(ctx context.Context, cardID string, opts providers.ListOptions) (*providers.TransactionPage, error) {
	pageNum := 0
	if opts.Cursor != "" {
		n, err := strconv.Atoi(opts.Cursor)
		if err != nil {
			return nil, &providers.ValidationError{Provider: providerName, Message: "invalid pagination cursor"}
		}
		pageNum = n
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{}
	q.Set("card_id", cardID)
	q.Set("page_num", strconv.Itoa(pageNum))
	q.Set("page_size", strconv.Itoa(limit))
	if !opts.From.IsZero() {
		q.Set("from_created_at", opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		q.Set("to_created_at", opts.To.UTC().Format(time.RFC3339))
	}

	var resp transactionsResponse
	err := providers.Retry(ctx, c.log, "list_transactions", func() error {
		return c.do(ctx, http.MethodGet, "/api/v1/issuing/transactions?"+q.Encode(), nil, &resp)
	})
	if err != nil {
		return nil, err
	}

	page := &providers.TransactionPage{}
	for _, item := range resp.Items {
		amount := int64(0)
		if d, err := decimal.NewFromString(item.Amount); err == nil {
			amount = providers.MinorUnits(d)
		}
		occurred, _ := time.Parse(time.RFC3339, item.CreatedAt)
		page.Transactions = append(page.Transactions, providers.Transaction{
			ID:         item.TransactionID,
			CardID:     item.CardID,
			Amount:     amount,
			Currency:   item.Currency,
			Status:     strings.ToLower(item.Status),
			Merchant:   item.Merchant.Name,
			OccurredAt: occurred,
		})
	}
	if resp.HasMore {
		page.NextCursor = strconv.Itoa(pageNum + 1)
	}
	return page, nil
}

func airwallexStatus(status providers.CardStatus) string {
	switch status {
	case providers.CardStatusActive:
		return "ACTIVE"
	case providers.CardStatusSuspended:
		return "INACTIVE"
	default:
		return "CLOSED"
	}
}

func normalizeCard(resp *cardResponse) *providers.Card {
	lastFour := ""
	if n := len(resp.MaskedPan); n >= 4 {
		lastFour = resp.MaskedPan[n-4:]
	}
	return &providers.Card{
		ID:           resp.CardID,
		CardholderID: resp.Cardholder,
		FormFactor:   providers.FormFactor(strings.ToLower(resp.FormFactor)),
		Status:       normalizeStatus(resp.CardStatus),
		LastFour:     lastFour,
		ExpiryMonth:  resp.ExpiryMonth,
		ExpiryYear:   resp.ExpiryYear,
		Brand:        resp.Brand,
		Currency:     resp.Currency,
	}
}

func normalizeStatus(s string) providers.CardStatus {
	switch strings.ToUpper(s) {
	case "ACTIVE":
		return providers.CardStatusActive
	case "INACTIVE":
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
