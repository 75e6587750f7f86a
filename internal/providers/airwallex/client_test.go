package airwallex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aurapay/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{ClientID: "cid", APIKey: "key", BaseURL: srv.URL}, zap.NewNop()), srv
}

func TestAuthenticateCachesToken(t *testing.T) {
	var logins int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&logins, 1)
		assert.Equal(t, "cid", r.Header.Get("x-client-id"))
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(loginResponse{
			Token:     "tok-1",
			ExpiresAt: time.Now().Add(30 * time.Minute).Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/api/v1/issuing/cards/card_1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(cardResponse{CardID: "card_1", CardStatus: "ACTIVE", FormFactor: "VIRTUAL"})
	})

	client, _ := newTestClient(t, mux)

	_, err := client.GetCard(context.Background(), "card_1")
	require.NoError(t, err)
	_, err = client.GetCard(context.Background(), "card_1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&logins), "token is reused across calls")
}

func TestDoReauthenticatesOnceOnRejectedToken(t *testing.T) {
	var logins, cardCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&logins, 1)
		token := "stale"
		if n > 1 {
			token = "fresh"
		}
		json.NewEncoder(w).Encode(loginResponse{Token: token})
	})
	mux.HandleFunc("/api/v1/issuing/cards/card_1", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cardCalls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(cardResponse{CardID: "card_1", CardStatus: "ACTIVE", FormFactor: "VIRTUAL"})
	})

	client, _ := newTestClient(t, mux)

	card, err := client.GetCard(context.Background(), "card_1")
	require.NoError(t, err)
	assert.Equal(t, "card_1", card.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&logins), "exactly one re-login")
	assert.Equal(t, int32(2), atomic.LoadInt32(&cardCalls))
}

func TestGetCardDetailsPopulatesSensitive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/authentication/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(loginResponse{Token: "tok"})
	})
	mux.HandleFunc("/api/v1/issuing/cards/card_1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cardResponse{
			CardID: "card_1", CardStatus: "ACTIVE", FormFactor: "VIRTUAL",
			MaskedPan: "**** **** **** 4242",
		})
	})
	mux.HandleFunc("/api/v1/issuing/cards/card_1/details", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cardDetailsResponse{CardNumber: "4111111111114242", CVV: "123"})
	})

	client, _ := newTestClient(t, mux)

	card, err := client.GetCardDetails(context.Background(), "card_1")
	require.NoError(t, err)
	require.NotNil(t, card.Sensitive)
	assert.Equal(t, "4111111111114242", card.Sensitive.Number)
	assert.Equal(t, "123", card.Sensitive.CVV)
	assert.Equal(t, "4242", card.LastFour)
	assert.Equal(t, "[redacted]", card.Sensitive.String())
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, providers.CardStatusActive, normalizeStatus("ACTIVE"))
	assert.Equal(t, providers.CardStatusSuspended, normalizeStatus("INACTIVE"))
	assert.Equal(t, providers.CardStatusCanceled, normalizeStatus("CLOSED"))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Ada Lovelace")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Equal(t, "Cher", last)
}
