package primary

import (
	"context"

	"gitlab.com/agfdbk.net/internal/domain"
)

// JWTService verifies the bearer tokens the web layer is called with
type JWTService interface {
	GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error)
	VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error)
	DecodeTokenPayload(ctx context.Context, token string) (domain.AuthPayload, error)
}

// ReceiptSealer seals receipt text so it can later be recovered and
// trusted without a database lookup.
type ReceiptSealer interface {
	Seal(plaintext []byte) (string, error)
	Open(token string) ([]byte, error)
}
