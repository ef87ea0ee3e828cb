package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/perceptlab/staircase/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.DataSink
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts record values
// with AES-GCM before they reach the underlying sink. Record keys stay in
// the clear so data remains addressable.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.DataSink) ports.DataSink {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) AddData(ctx context.Context, key string, value any) error {
	plainText, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record value: %w", err)
	}

	cipherText, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt record value: %w", err)
	}

	return m.next.AddData(ctx, key, base64.StdEncoding.EncodeToString(cipherText))
}

// Records reads back through the underlying sink and decrypts each value,
// trying the active key first and then the fallback keys. It fails when the
// underlying sink cannot be read back.
func (m *encryptionMiddleware) Records(ctx context.Context) ([]ports.Record, error) {
	rec, ok := m.next.(ports.RecordingSink)
	if !ok {
		return nil, errors.New("underlying sink does not support reading records")
	}

	records, err := rec.Records(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ports.Record, len(records))
	for i, r := range records {
		encoded, ok := r.Value.(string)
		if !ok {
			return nil, fmt.Errorf("record %q: value is not an encrypted string", r.Key)
		}
		cipherText, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Key, err)
		}

		plainText, err := m.decryptAny(cipherText)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Key, err)
		}

		var value any
		if err := json.Unmarshal(plainText, &value); err != nil {
			return nil, fmt.Errorf("record %q: %w", r.Key, err)
		}
		out[i] = ports.Record{Key: r.Key, Value: value}
	}
	return out, nil
}

// decryptAny tries the active key, then each fallback key in order.
func (m *encryptionMiddleware) decryptAny(cipherText []byte) ([]byte, error) {
	keys := append([][]byte{m.config.ActiveKey}, m.config.FallbackKeys...)
	var lastErr error
	for _, key := range keys {
		plainText, err := decrypt(cipherText, key)
		if err == nil {
			return plainText, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no key could decrypt the record: %w", lastErr)
}

func encrypt(plainText, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plainText, nil), nil
}

func decrypt(cipherText, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, sealed := cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
