// Package flutterwave adapts the Flutterwave v3 REST API to the internal
// payment-provider contract: hosted payment links for deposits and
// server-side transaction verification. Direct card charges use the 3DES
// payload encryption Flutterwave requires.
package flutterwave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"aurapay/internal/providers"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const providerName = "flutterwave"

type Config struct {
	SecretKey     string
	PublicKey     string
	EncryptionKey string
	BaseURL       string
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
		log:  log.Named("flutterwave"),
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.SecretKey}
}

// envelope is the common Flutterwave response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) InitiatePayment(ctx context.Context, in providers.PaymentRequest) (*providers.PaymentSession, error) {
	payload := map[string]interface{}{
		"tx_ref":       in.TxRef,
		"amount":       providers.MajorUnits(in.Amount),
		"currency":     in.Currency,
		"redirect_url": in.RedirectURL,
		"customer": map[string]string{
			"email": in.CustomerEmail,
		},
		"customizations": map[string]string{
			"title": in.Description,
		},
	}

	var env envelope
	err := providers.Retry(ctx, c.log, "initiate_payment", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodPost,
			c.cfg.BaseURL+"/v3/payments", c.headers(), payload, &env)
	})
	if err != nil {
		return nil, err
	}
	if env.Status != "success" {
		return nil, &providers.DeclineError{Provider: providerName, Code: env.Status, Reason: env.Message}
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Link == "" {
		return nil, &providers.ValidationError{Provider: providerName, Message: "payment link missing from response"}
	}
	return &providers.PaymentSession{ProviderRef: in.TxRef, CheckoutURL: data.Link}, nil
}

type verifyData struct {
	ID       json.Number `json:"id"`
	TxRef    string      `json:"tx_ref"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Status   string      `json:"status"`
}

func (c *Client) VerifyPayment(ctx context.Context, ref providers.VerifyRef) (*providers.PaymentVerification, error) {
	path := "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(ref.TxRef)
	if ref.ProviderTxID != "" {
		path = "/v3/transactions/" + url.PathEscape(ref.ProviderTxID) + "/verify"
	}

	var env envelope
	err := providers.Retry(ctx, c.log, "verify_payment", func() error {
		return providers.JSONRequest(ctx, c.http, providerName, http.MethodGet,
			c.cfg.BaseURL+path, c.headers(), nil, &env)
	})
	if err != nil {
		return nil, err
	}
	if env.Status != "success" {
		return nil, &providers.NotFoundError{Provider: providerName, Resource: "transaction", ID: ref.TxRef}
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &providers.ValidationError{Provider: providerName, Message: "malformed verification response"}
	}

	amount := int64(0)
	if d, err := decimal.NewFromString(data.Amount.String()); err == nil {
		amount = providers.MinorUnits(d)
	}

	return &providers.PaymentVerification{
		ProviderTxID: data.ID.String(),
		TxRef:        data.TxRef,
		Amount:       amount,
		Currency:     data.Currency,
		Succeeded:    strings.EqualFold(data.Status, "successful"),
		Pending:      strings.EqualFold(data.Status, "pending"),
		RawStatus:    data.Status,
	}, nil
}
