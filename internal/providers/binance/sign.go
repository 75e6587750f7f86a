package binance

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

const nonceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newNonce returns a 32-character random nonce per the Binance Pay spec.
func newNonce() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	var b strings.Builder
	for _, c := range buf {
		b.WriteByte(nonceAlphabet[int(c)%len(nonceAlphabet)])
	}
	return b.String()
}

// sign computes the Binance Pay request signature: uppercase hex of
// HMAC-SHA512 over "timestamp\nnonce\nbody\n".
func sign(secretKey, timestamp, nonce string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write([]byte(nonce))
	mac.Write([]byte("\n"))
	mac.Write(body)
	mac.Write([]byte("\n"))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
