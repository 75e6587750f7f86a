// Package binance adapts Binance Pay to the internal payment-provider
// contract. Every request is signed with HMAC-SHA512 over timestamp, nonce
// and body.
package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"aurapay/internal/providers"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const providerName = "binance"

type Config struct {
	APIKey     string
	SecretKey  string
	MerchantID string
	BaseURL    string
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
		log:  log.Named("binance"),
	}
}

func (c *Client) Name() string { return providerName }

// envelope is the Binance Pay response wrapper. Status SUCCESS with code
// "000000" marks a successful call.
type envelope struct {
	Status   string          `json:"status"`
	Code     string          `json:"code"`
	ErrorMsg string          `json:"errorMessage"`
	Data     json.RawMessage `json:"data"`
}

// post executes a signed Binance Pay call. The signature covers the exact
// serialized body, so this bypasses the generic JSON helper.
func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", providerName, err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	nonce := newNonce()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", providerName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("BinancePay-Timestamp", timestamp)
	req.Header.Set("BinancePay-Nonce", nonce)
	req.Header.Set("BinancePay-Certificate-SN", c.cfg.APIKey)
	req.Header.Set("BinancePay-Signature", sign(c.cfg.SecretKey, timestamp, nonce, body))

	resp, err := c.http.Do(req)
	if err != nil {
		return providers.WrapTransport(providerName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return providers.WrapTransport(providerName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providers.ClassifyHTTP(providerName, resp.StatusCode, string(data))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", providerName, err)
	}
	if env.Status != "SUCCESS" {
		return &providers.DeclineError{Provider: providerName, Code: env.Code, Reason: env.ErrorMsg}
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: decode response data: %w", providerName, err)
		}
	}
	return nil
}

func (c *Client) InitiatePayment(ctx context.Context, in providers.PaymentRequest) (*providers.PaymentSession, error) {
	payload := map[string]interface{}{
		"env":             map[string]string{"terminalType": "WEB"},
		"merchantTradeNo": in.TxRef,
		"orderAmount":     providers.MajorUnits(in.Amount),
		"currency":        in.Currency,
		"description":     in.Description,
		"goodsDetails": []map[string]interface{}{{
			"goodsType":        "02",
			"goodsCategory":    "Z000",
			"referenceGoodsId": in.TxRef,
			"goodsName":        "Wallet deposit",
		}},
		"returnUrl": in.RedirectURL,
	}

	var data struct {
		PrepayID    string `json:"prepayId"`
		CheckoutURL string `json:"checkoutUrl"`
	}
	err := providers.Retry(ctx, c.log, "initiate_payment", func() error {
		return c.post(ctx, "/binancepay/openapi/v2/order", payload, &data)
	})
	if err != nil {
		return nil, err
	}
	return &providers.PaymentSession{ProviderRef: data.PrepayID, CheckoutURL: data.CheckoutURL}, nil
}

type queryData struct {
	PrepayID        string `json:"prepayId"`
	MerchantTradeNo string `json:"merchantTradeNo"`
	Status          string `json:"status"`
	OrderAmount     string `json:"orderAmount"`
	Currency        string `json:"currency"`
}

func (c *Client) VerifyPayment(ctx context.Context, ref providers.VerifyRef) (*providers.PaymentVerification, error) {
	payload := map[string]string{}
	if ref.ProviderTxID != "" {
		payload["prepayId"] = ref.ProviderTxID
	} else {
		payload["merchantTradeNo"] = ref.TxRef
	}

	var data queryData
	err := providers.Retry(ctx, c.log, "verify_payment", func() error {
		return c.post(ctx, "/binancepay/openapi/v2/order/query", payload, &data)
	})
	if err != nil {
		return nil, err
	}

	amount := int64(0)
	if d, err := decimal.NewFromString(data.OrderAmount); err == nil {
		amount = providers.MinorUnits(d)
	}

	return &providers.PaymentVerification{
		ProviderTxID: data.PrepayID,
		TxRef:        data.MerchantTradeNo,
		Amount:       amount,
		Currency:     data.Currency,
		Succeeded:    data.Status == "PAID",
		Pending:      data.Status == "INITIAL" || data.Status == "PENDING",
		RawStatus:    data.Status,
	}, nil
}
