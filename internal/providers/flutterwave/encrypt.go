package flutterwave

import (
	"bytes"
	"crypto/des"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// EncryptPayload encrypts a direct-charge card payload with the account's
// 3DES key, as Flutterwave requires: DES-EDE3 in ECB mode with PKCS#5
// padding, base64-encoded.
func EncryptPayload(encryptionKey string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode charge payload: %w", err)
	}
	return encrypt3DES(encryptionKey, data)
}

func encrypt3DES(key string, plaintext []byte) (string, error) {
	block, err := des.NewTripleDESCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("invalid encryption key: %w", err)
	}

	padded := pkcs5Pad(plaintext, block.BlockSize())
	out := make([]byte, len(padded))
	// ECB: each block encrypted independently. Mandated by the provider's
	// charge API; not a choice this package gets to make.
	for i := 0; i < len(padded); i += block.BlockSize() {
		block.Encrypt(out[i:i+block.BlockSize()], padded[i:i+block.BlockSize()])
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

func pkcs5Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}
