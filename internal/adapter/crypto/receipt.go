package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"

	"gitlab.com/agfdbk.net/internal/config"
	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var _ primary.ReceiptSealer = (*SecretboxSealer)(nil)

const nonceSize = 24

// tokenEncoding rejects non-zero padding bits so every token has exactly one spelling
var tokenEncoding = base64.RawURLEncoding.Strict()

// SecretboxSealer authenticates and encrypts receipts with one symmetric key.
// Tokens are base64url(nonce || box).
type SecretboxSealer struct {
	key [32]byte
}

// NewSecretboxSealer reads a hex encoded 32 byte key. An empty key yields a
// random one, so tokens do not survive a restart.
func NewSecretboxSealer(cfg *config.ReceiptCfg) (*SecretboxSealer, error) {
	s := &SecretboxSealer{}
	if cfg.SecretKey == "" {
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, fmt.Errorf("failed to generate receipt key: %w", err)
		}
		return s, nil
	}

	raw, err := hex.DecodeString(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("receipt key is not hex: %w", err)
	}
	if len(raw) != len(s.key) {
		return nil, fmt.Errorf("receipt key must be %d bytes, got %d", len(s.key), len(raw))
	}
	copy(s.key[:], raw)
	return s, nil
}

func (s *SecretboxSealer) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return tokenEncoding.EncodeToString(sealed), nil
}

func (s *SecretboxSealer) Open(token string) ([]byte, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidReceipt, err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: token too short", errs.ErrInvalidReceipt)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errs.ErrInvalidReceipt
	}
	return plaintext, nil
}
