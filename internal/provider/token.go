package provider

import (
	"crypto/hmac"
	"net/http"

	"github.com/smslease/smslease/internal/domain/model"
)

// TokenHeader carries the shared secret for providers without body signing.
const TokenHeader = "X-Webhook-Token"

// TokenProvider authenticates deliveries by a shared-secret header.
type TokenProvider struct {
	name   string
	secret []byte
}

// NewTokenProvider constructs a shared-token adapter.
func NewTokenProvider(name, secret string) *TokenProvider {
	return &TokenProvider{name: name, secret: []byte(secret)}
}

func (p *TokenProvider) Name() string {
	return p.name
}

// Verify compares the token header against the secret in constant time.
func (p *TokenProvider) Verify(header http.Header, _ []byte) error {
	token := header.Get(TokenHeader)
	if token == "" {
		return unauthorized("missing token")
	}
	if !hmac.Equal([]byte(token), p.secret) {
		return unauthorized("token mismatch")
	}
	return nil
}

func (p *TokenProvider) Parse(body []byte) (*model.InboundSMS, error) {
	return parsePayload(body)
}
