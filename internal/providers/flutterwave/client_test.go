package flutterwave

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"aurapay/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{SecretKey: "sk_test", BaseURL: srv.URL}, zap.NewNop())
}

func TestInitiatePaymentReturnsCheckoutLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/payments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"status":"success","message":"ok","data":{"link":"https://checkout.flutterwave.com/pay/x"}}`)
	})
	client := newTestClient(t, mux)

	session, err := client.InitiatePayment(context.Background(), providers.PaymentRequest{
		TxRef:    "FLU-7-1-x",
		Amount:   25000,
		Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.flutterwave.com/pay/x", session.CheckoutURL)
	assert.Equal(t, "FLU-7-1-x", session.ProviderRef)
}

func TestVerifyPaymentNormalizesAmount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/transactions/991/verify", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","data":{"id":991,"tx_ref":"FLU-7-1-x","amount":250.00,"currency":"USD","status":"successful"}}`)
	})
	client := newTestClient(t, mux)

	v, err := client.VerifyPayment(context.Background(), providers.VerifyRef{ProviderTxID: "991"})
	require.NoError(t, err)

	assert.True(t, v.Succeeded)
	assert.Equal(t, int64(25000), v.Amount, "decimal major units become minor units")
	assert.Equal(t, "USD", v.Currency)
	assert.Equal(t, "991", v.ProviderTxID)
	assert.Equal(t, "FLU-7-1-x", v.TxRef)
}

func TestVerifyPaymentByReference(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/transactions/verify_by_reference", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "FLU-7-1-x", r.URL.Query().Get("tx_ref"))
		fmt.Fprint(w, `{"status":"success","data":{"id":991,"tx_ref":"FLU-7-1-x","amount":"250.00","currency":"USD","status":"failed"}}`)
	})
	client := newTestClient(t, mux)

	v, err := client.VerifyPayment(context.Background(), providers.VerifyRef{TxRef: "FLU-7-1-x"})
	require.NoError(t, err)

	assert.False(t, v.Succeeded, "only the literal successful status succeeds")
	assert.Equal(t, "failed", v.RawStatus)
}

func TestVerifyPaymentUnknownReference(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/transactions/verify_by_reference", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","message":"No transaction was found for this id"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.VerifyPayment(context.Background(), providers.VerifyRef{TxRef: "missing"})
	var notFound *providers.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
